package llm

import (
	"context"

	"character-chat/backend/pkg/resilience"
)

// breakerClient wraps a Client with a circuit breaker so a misbehaving
// provider fails fast instead of holding every chat turn until timeout.
type breakerClient struct {
	inner   Client
	breaker *resilience.CircuitBreaker
}

// WithBreaker wraps client with the given circuit breaker.
func WithBreaker(client Client, breaker *resilience.CircuitBreaker) Client {
	return &breakerClient{inner: client, breaker: breaker}
}

// Ping forwards health probes to the wrapped client. Probes do not count
// toward the breaker's failure budget.
func (c *breakerClient) Ping(ctx context.Context) error {
	if pinger, ok := c.inner.(Pinger); ok {
		return pinger.Ping(ctx)
	}
	return nil
}

func (c *breakerClient) Complete(ctx context.Context, messages []Message) (string, error) {
	var reply string
	err := c.breaker.Execute(func() error {
		var innerErr error
		reply, innerErr = c.inner.Complete(ctx, messages)
		return innerErr
	})
	if err != nil {
		return "", err
	}
	return reply, nil
}
