package identity

import (
	"context"
	"time"
)

// User is chef-circle's account record.
//
// A user authenticates through at least one credential path: a password hash
// or an external Google id. Neither is required at the schema level, so
// callers creating users must supply one; CreateUser enforces this.
type User struct {
	ID        string
	Email     string
	EmailNorm string

	GoogleID     *string
	PasswordHash *string

	Name           string
	ProfilePicture *string

	ResetPasswordToken   *string // SHA-256 hex of the reset token, never the token itself
	ResetPasswordExpires *time.Time

	UnitSystem string // "metric" or "imperial"

	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateUserInput describes a registration request.
// Exactly the fields the signup flow knows; PasswordHash is already encoded
// by cmd/security/password.
type CreateUserInput struct {
	Email        string
	Name         string
	PasswordHash *string
	GoogleID     *string
	Now          time.Time
}

// Store is the user persistence boundary.
type Store interface {
	// CreateUser inserts a new user row. A duplicate email yields a
	// ConflictError with Field "email".
	CreateUser(ctx context.Context, in CreateUserInput) (User, error)

	// GetUserByEmail loads a user by normalized email. Missing user is
	// ErrNotFound, an expected outcome during login, not a fault.
	GetUserByEmail(ctx context.Context, email string) (User, error)

	// GetUserByID loads a user by id.
	GetUserByID(ctx context.Context, id string) (User, error)

	// SetResetToken stores the hashed password-reset token and its expiry.
	SetResetToken(ctx context.Context, userID string, hashHex string, expiresAt time.Time) error

	// ClearResetToken removes any pending reset token (idempotent).
	ClearResetToken(ctx context.Context, userID string) error
}
