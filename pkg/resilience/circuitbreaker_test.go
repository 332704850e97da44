package resilience

import (
	"errors"
	"testing"
	"time"

	"character-chat/backend/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errDownstream = errors.New("downstream failed")

func newTestBreaker(failureThreshold uint, retryTimeout time.Duration) *CircuitBreaker {
	return New(Config{
		Name:             "test",
		FailureThreshold: failureThreshold,
		SuccessThreshold: 1,
		RetryTimeout:     retryTimeout,
	}, logger.New(logger.Config{Level: "error"}))
}

func TestBreakerPassesThroughWhileClosed(t *testing.T) {
	cb := newTestBreaker(3, time.Minute)

	err := cb.Execute(func() error { return nil })
	require.NoError(t, err)
	assert.Equal(t, StateClosed, cb.GetState())

	err = cb.Execute(func() error { return errDownstream })
	assert.ErrorIs(t, err, errDownstream)
	assert.Equal(t, StateClosed, cb.GetState())
}

func TestBreakerOpensAfterThreshold(t *testing.T) {
	cb := newTestBreaker(3, time.Minute)

	for i := 0; i < 3; i++ {
		_ = cb.Execute(func() error { return errDownstream })
	}
	assert.Equal(t, StateOpen, cb.GetState())

	// Open circuit short-circuits without calling the function.
	called := false
	err := cb.Execute(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)
}

func TestBreakerRecoversThroughHalfOpen(t *testing.T) {
	cb := newTestBreaker(1, time.Millisecond)

	_ = cb.Execute(func() error { return errDownstream })
	require.Equal(t, StateOpen, cb.GetState())

	time.Sleep(5 * time.Millisecond)

	err := cb.Execute(func() error { return nil })
	require.NoError(t, err)
	assert.Equal(t, StateClosed, cb.GetState())
}

func TestBreakerReopensOnHalfOpenFailure(t *testing.T) {
	cb := newTestBreaker(1, time.Millisecond)

	_ = cb.Execute(func() error { return errDownstream })
	time.Sleep(5 * time.Millisecond)

	_ = cb.Execute(func() error { return errDownstream })
	assert.Equal(t, StateOpen, cb.GetState())
}

func TestBreakerSuccessResetsFailureCount(t *testing.T) {
	cb := newTestBreaker(2, time.Minute)

	_ = cb.Execute(func() error { return errDownstream })
	_ = cb.Execute(func() error { return nil })
	_ = cb.Execute(func() error { return errDownstream })

	// Failures were not consecutive, so the circuit stays closed.
	assert.Equal(t, StateClosed, cb.GetState())
}
