// Package services composes the storage, hashing and messaging layers into
// the operations the HTTP handlers call.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"fintrack/internal/auth"
	"fintrack/internal/core"
	"fintrack/internal/storage"
)

var (
	// ErrEmailTaken reports a registration conflict. Distinguishable so
	// the caller can answer 409.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials covers both unknown email and wrong password.
	// Deliberately one error: callers must not be able to tell which
	// emails exist.
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// AuthService owns registration and login.
type AuthService struct {
	users *storage.UserStore
}

func NewAuthService(users *storage.UserStore) *AuthService {
	return &AuthService{users: users}
}

// Register creates an account: normalize the email, refuse a duplicate,
// derive the credential, insert. The returned view never carries the
// credential.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (core.User, error) {
	email = core.NormalizeEmail(email)
	name = strings.TrimSpace(name)

	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return core.User{}, fmt.Errorf("check existing email: %w", err)
	}
	if existing != nil {
		return core.User{}, ErrEmailTaken
	}

	credential, err := auth.Derive(password)
	if err != nil {
		return core.User{}, fmt.Errorf("derive credential: %w", err)
	}

	user, err := s.users.Create(ctx, name, email, credential)
	if err != nil {
		// The unique constraint is the last line of defense; a race past
		// the pre-check still surfaces as a conflict.
		if errors.Is(err, storage.ErrDuplicateEmail) {
			return core.User{}, ErrEmailTaken
		}
		return core.User{}, fmt.Errorf("create user: %w", err)
	}

	slog.InfoContext(ctx, "User registered", "id", user.ID, "email", user.Email)
	return user.Public(), nil
}

// Login verifies a password against the stored credential. Unknown email
// and wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (core.User, error) {
	email = core.NormalizeEmail(email)

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return core.User{}, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return core.User{}, ErrInvalidCredentials
	}
	if !auth.Verify(password, user.PasswordHash) {
		return core.User{}, ErrInvalidCredentials
	}

	slog.InfoContext(ctx, "User logged in", "id", user.ID)
	return user.Public(), nil
}
