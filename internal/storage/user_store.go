package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"fintrack/internal/core"
)

// ErrDuplicateEmail reports an insert that collided with the unique email
// constraint. Callers pre-check with FindByEmail, but the constraint is the
// last line of defense.
var ErrDuplicateEmail = errors.New("email already registered")

// UserStore persists account records. Emails arriving here are already
// normalized (trimmed, lowercased) by the service layer.
type UserStore struct {
	db *sql.DB
}

// UserRecord is a stored account including its password credential. Only
// the storage and service layers see this type; handlers get core.User.
type UserRecord struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Public strips the credential off, leaving the view safe to return.
func (u *UserRecord) Public() core.User {
	return core.User{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

// FindByEmail looks up one account by normalized email. Absent is
// (nil, nil), not an error.
func (s *UserStore) FindByEmail(ctx context.Context, email string) (*UserRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, created_at, updated_at
		 FROM users WHERE email = ? LIMIT 1`, email)

	var u UserRecord
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &u, nil
}

// Create inserts a new account. A duplicate normalized email surfaces as
// ErrDuplicateEmail.
func (s *UserStore) Create(ctx context.Context, name, email, passwordHash string) (*UserRecord, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (name, email, password_hash, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		name, email, passwordHash, now, now)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("user insert id: %w", err)
	}

	return &UserRecord{
		ID:           id,
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// isUniqueViolation matches the driver's unique-constraint failure text.
// modernc.org/sqlite reports these as "UNIQUE constraint failed: <col>".
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
