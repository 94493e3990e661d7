package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Abdelrahmanaman/chef-circle/cmd/identity"
)

// PostgresStore implements Store over PostgreSQL (sessions joined with users).
// The pool is owned by the caller.
type PostgresStore struct {
	pool   *pgxpool.Pool
	schema string
}

// PostgresOption configures the store.
type PostgresOption func(*PostgresStore) error

// WithSchema sets the Postgres schema (default "public").
func WithSchema(schema string) PostgresOption {
	return func(s *PostgresStore) error {
		schema = strings.TrimSpace(schema)
		if schema == "" {
			return fmt.Errorf("session: empty schema")
		}
		s.schema = schema
		return nil
	}
}

// NewPostgresStore creates a Postgres-backed session store.
func NewPostgresStore(pool *pgxpool.Pool, opts ...PostgresOption) (*PostgresStore, error) {
	st := &PostgresStore{pool: pool, schema: "public"}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(st); err != nil {
			return nil, err
		}
	}
	if st.pool == nil {
		return nil, fmt.Errorf("session: nil pool")
	}
	return st, nil
}

func (s *PostgresStore) ident(name string) string {
	return pgx.Identifier{s.schema, name}.Sanitize()
}

// Create inserts a new session row.
func (s *PostgresStore) Create(ctx context.Context, id, userID string, expiresAt time.Time) (Session, error) {
	if err := ctx.Err(); err != nil {
		return Session{}, err
	}

	now := time.Now().UTC()

	_, err := s.pool.Exec(ctx, `
		INSERT INTO `+s.ident("sessions")+` (id, user_id, expires_at, created_at)
		VALUES ($1, $2, $3, $4)
	`, id, userID, expiresAt, now)
	if err != nil {
		return Session{}, err
	}

	return Session{
		ID:        id,
		UserID:    userID,
		ExpiresAt: expiresAt,
		CreatedAt: now,
	}, nil
}

// FindWithUser loads a session and its owning user in one round trip.
func (s *PostgresStore) FindWithUser(ctx context.Context, id string) (Session, identity.User, error) {
	if err := ctx.Err(); err != nil {
		return Session{}, identity.User{}, err
	}

	var (
		sess Session
		u    identity.User
	)

	err := s.pool.QueryRow(ctx, `
		SELECT
			s.id, s.user_id, s.expires_at, s.created_at,
			u.id, u.email, u.email_norm, u.google_id, u.password_hash, u.name,
			u.profile_picture, u.reset_password_token, u.reset_password_expires,
			u.unit_system, u.created_at, u.updated_at
		FROM `+s.ident("sessions")+` s
		JOIN `+s.ident("users")+` u ON u.id = s.user_id
		WHERE s.id = $1
	`, id).Scan(
		&sess.ID,
		&sess.UserID,
		&sess.ExpiresAt,
		&sess.CreatedAt,
		&u.ID,
		&u.Email,
		&u.EmailNorm,
		&u.GoogleID,
		&u.PasswordHash,
		&u.Name,
		&u.ProfilePicture,
		&u.ResetPasswordToken,
		&u.ResetPasswordExpires,
		&u.UnitSystem,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Session{}, identity.User{}, ErrSessionNotFound
	}
	if err != nil {
		return Session{}, identity.User{}, err
	}

	return sess, u, nil
}

// Renew updates expires_at for a session. Renewing a row that a concurrent
// validation already deleted affects zero rows and is a no-op.
func (s *PostgresStore) Renew(ctx context.Context, id string, expiresAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := s.pool.Exec(ctx, `
		UPDATE `+s.ident("sessions")+`
		SET expires_at = $2
		WHERE id = $1
	`, id, expiresAt)
	return err
}

// DeleteByID removes a single session (idempotent).
func (s *PostgresStore) DeleteByID(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := s.pool.Exec(ctx, `
		DELETE FROM `+s.ident("sessions")+`
		WHERE id = $1
	`, id)
	return err
}

// DeleteAllForUser removes all sessions for a user (idempotent).
func (s *PostgresStore) DeleteAllForUser(ctx context.Context, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := s.pool.Exec(ctx, `
		DELETE FROM `+s.ident("sessions")+`
		WHERE user_id = $1
	`, userID)
	return err
}
