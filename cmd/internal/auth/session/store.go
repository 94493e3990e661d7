package session

import (
	"context"
	"time"

	"github.com/Abdelrahmanaman/chef-circle/cmd/identity"
)

// Session mirrors a sessions row. The id is the SHA-256 hex digest of the
// client's token; the token itself never appears here.
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Store abstracts session persistence.
//
// Renew and the deletes are idempotent single-row operations: concurrent
// validations racing to renew or delete the same session must observe a
// no-op, not an error.
type Store interface {
	// Create inserts a new session row. An id collision surfaces as a plain
	// error (astronomically unlikely at 160-bit token entropy; treated as an
	// infrastructure fault, not a retryable condition).
	Create(ctx context.Context, id, userID string, expiresAt time.Time) (Session, error)

	// FindWithUser loads a session joined with its owning user.
	// Zero rows is ErrSessionNotFound, an expected outcome for invalid or
	// stale tokens.
	FindWithUser(ctx context.Context, id string) (Session, identity.User, error)

	// Renew updates the expiry in place.
	Renew(ctx context.Context, id string, expiresAt time.Time) error

	// DeleteByID removes one session (lazy expiry cleanup).
	DeleteByID(ctx context.Context, id string) error

	// DeleteAllForUser removes every session owned by a user (logout).
	DeleteAllForUser(ctx context.Context, userID string) error
}
