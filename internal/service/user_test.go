package service

import (
	"context"
	"testing"
	"time"

	"character-chat/backend/internal/models"
	"character-chat/backend/pkg/jwt"

	apperrors "character-chat/backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserFixture(t *testing.T) (*UserService, *fakeUserStore) {
	t.Helper()
	users := newFakeUserStore()
	return NewUserService(users, jwt.NewService("test-secret", time.Hour)), users
}

func seedStaffUser(t *testing.T, users *fakeUserStore, email, password string) *models.User {
	t.Helper()
	hash, err := models.HashPassword(password)
	require.NoError(t, err)
	user := &models.User{Name: "Admin", Email: email, Password: hash, IsStaff: true, IsActive: true}
	require.NoError(t, users.Create(context.Background(), user))
	return user
}

func TestLoginSucceeds(t *testing.T) {
	svc, users := newUserFixture(t)
	seedStaffUser(t, users, "admin@example.com", "s3cret")

	user, token, err := svc.Login(context.Background(), &models.LoginRequest{Email: "admin@example.com", Password: "s3cret"})
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.True(t, user.IsStaff)

	// LastLogin is persisted.
	stored, err := users.GetByEmail(context.Background(), "admin@example.com")
	require.NoError(t, err)
	assert.False(t, stored.LastLogin.IsZero())
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, users := newUserFixture(t)
	seedStaffUser(t, users, "admin@example.com", "s3cret")

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{name: "unknown email", email: "nobody@example.com", password: "s3cret"},
		{name: "wrong password", email: "admin@example.com", password: "wrong"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.Login(context.Background(), &models.LoginRequest{Email: tt.email, Password: tt.password})
			require.Error(t, err)
			assert.Equal(t, "INVALID_CREDENTIALS", err.(*apperrors.AppError).Code)
		})
	}
}

func TestLoginRejectsInactiveAccount(t *testing.T) {
	svc, users := newUserFixture(t)
	user := seedStaffUser(t, users, "admin@example.com", "s3cret")
	user.IsActive = false
	require.NoError(t, users.Update(context.Background(), user))

	_, _, err := svc.Login(context.Background(), &models.LoginRequest{Email: "admin@example.com", Password: "s3cret"})
	require.Error(t, err)
	assert.Equal(t, "INVALID_CREDENTIALS", err.(*apperrors.AppError).Code)
}

func TestEnsureStaffUser(t *testing.T) {
	svc, users := newUserFixture(t)

	require.NoError(t, svc.EnsureStaffUser(context.Background(), "Admin", "admin@example.com", "s3cret"))

	created, err := users.GetByEmail(context.Background(), "admin@example.com")
	require.NoError(t, err)
	assert.True(t, created.IsStaff)

	// Idempotent on re-run.
	require.NoError(t, svc.EnsureStaffUser(context.Background(), "Admin", "admin@example.com", "other"))
	again, err := users.GetByEmail(context.Background(), "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)
}

func TestEnsureStaffUserSkipsWhenUnconfigured(t *testing.T) {
	svc, users := newUserFixture(t)

	require.NoError(t, svc.EnsureStaffUser(context.Background(), "Admin", "", ""))
	assert.Zero(t, users.nextID)
}
