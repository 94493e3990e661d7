package session

import (
	"context"
	"time"

	"github.com/Abdelrahmanaman/chef-circle/cmd/identity"
)

// Service implements the session lifecycle: issue at login/registration,
// validate on every authenticated request, invalidate at logout.
type Service struct {
	cfg   Config
	store Store

	// now is injectable for tests.
	now func() time.Time
}

// Result is a successful validation: the live session and its owner.
// Renewed reports whether this validation slid the expiry, so callers can
// refresh the client cookie only when something changed.
type Result struct {
	Session Session
	User    identity.User
	Renewed bool
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithClock overrides the service clock (tests).
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService constructs a Service with the provided configuration and store.
func NewService(cfg Config, store Store, opts ...ServiceOption) *Service {
	s := &Service{
		cfg:   cfg,
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(s)
	}
	return s
}

// Issue creates a fresh session for a user and returns the plain token.
//
// The token is handed to the client exactly once (cookie) and must never be
// logged or persisted; only its derived id reaches the store.
func (s *Service) Issue(ctx context.Context, userID string) (string, Session, error) {
	plain, err := GenerateToken(s.cfg.TokenBytes)
	if err != nil {
		return "", Session{}, err
	}

	expiresAt := s.now().Add(s.cfg.Lifetime)

	sess, err := s.store.Create(ctx, DeriveID(plain), userID, expiresAt)
	if err != nil {
		return "", Session{}, err
	}

	return plain, sess, nil
}

// Validate resolves a token to its session and user.
//
// State machine per call:
//  1. Unknown id               -> ErrSessionNotFound.
//  2. now >= expiresAt         -> delete the row (lazy Expired->Deleted
//     transition), ErrSessionNotFound. Idempotent: a second validation with
//     the same token lands in case 1.
//  3. now >= expiresAt-window  -> slide expiry to now+Lifetime and persist.
//  4. Otherwise                -> return as-is.
func (s *Service) Validate(ctx context.Context, token string) (Result, error) {
	if token == "" {
		return Result{}, ErrSessionNotFound
	}

	id := DeriveID(token)

	sess, user, err := s.store.FindWithUser(ctx, id)
	if err != nil {
		return Result{}, err
	}

	now := s.now()

	if !now.Before(sess.ExpiresAt) {
		// Concurrent validations may race to delete; DeleteByID is a no-op
		// on an already-deleted row.
		if err := s.store.DeleteByID(ctx, id); err != nil {
			return Result{}, err
		}
		return Result{}, ErrSessionNotFound
	}

	renewed := false
	if !now.Before(sess.ExpiresAt.Add(-s.cfg.RenewalWindow)) {
		sess.ExpiresAt = now.Add(s.cfg.Lifetime)
		if err := s.store.Renew(ctx, id, sess.ExpiresAt); err != nil {
			return Result{}, err
		}
		renewed = true
	}

	return Result{Session: sess, User: user, Renewed: renewed}, nil
}

// Invalidate deletes a single session by id (idempotent).
func (s *Service) Invalidate(ctx context.Context, sessionID string) error {
	return s.store.DeleteByID(ctx, sessionID)
}

// InvalidateAllForUser deletes every session a user holds, across devices.
func (s *Service) InvalidateAllForUser(ctx context.Context, userID string) error {
	return s.store.DeleteAllForUser(ctx, userID)
}
