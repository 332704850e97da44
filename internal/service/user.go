package service

import (
	"context"
	"time"

	"character-chat/backend/internal/models"
	"character-chat/backend/internal/store"
	"character-chat/backend/pkg/jwt"

	apperrors "character-chat/backend/pkg/errors"
)

// UserService handles staff accounts. Only the admin surface is
// authenticated; chat is anonymous.
type UserService struct {
	users store.UserStore
	jwt   *jwt.Service
}

// NewUserService creates a new user service.
func NewUserService(users store.UserStore, jwtService *jwt.Service) *UserService {
	return &UserService{users: users, jwt: jwtService}
}

// Login authenticates a staff user and returns a signed token. Inactive
// accounts are rejected the same way as bad credentials.
func (s *UserService) Login(ctx context.Context, req *models.LoginRequest) (*models.User, string, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if err == store.ErrNotFound {
			return nil, "", apperrors.NewUnauthorizedError("INVALID_CREDENTIALS", "Invalid email or password")
		}
		return nil, "", err
	}

	if !user.IsActive || !models.CheckPasswordHash(req.Password, user.Password) {
		return nil, "", apperrors.NewUnauthorizedError("INVALID_CREDENTIALS", "Invalid email or password")
	}

	token, err := s.jwt.GenerateToken(user.ID, user.Email, user.IsStaff)
	if err != nil {
		return nil, "", err
	}

	user.LastLogin = time.Now()
	if err := s.users.Update(ctx, user); err != nil {
		return nil, "", err
	}

	return user, token, nil
}

// GetByID returns a user by id.
func (s *UserService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if err == store.ErrNotFound {
			return nil, apperrors.NewNotFoundError("USER_NOT_FOUND", "User does not exist")
		}
		return nil, err
	}
	return user, nil
}

// EnsureStaffUser creates a staff account when none exists with the email.
// Used at startup to bootstrap the first admin from the environment.
func (s *UserService) EnsureStaffUser(ctx context.Context, name, email, password string) error {
	if email == "" || password == "" {
		return nil
	}

	_, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if err != store.ErrNotFound {
		return err
	}

	user := &models.User{
		Name:     name,
		Email:    email,
		Password: password,
		IsStaff:  true,
		IsActive: true,
	}
	return s.users.Create(ctx, user)
}
