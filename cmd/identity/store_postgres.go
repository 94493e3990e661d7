package identity

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements Store over PostgreSQL.
//
// Design notes:
// - The pgx pool is owned by the caller; this store must NOT close it.
// - Schema/table identifiers are safely quoted to avoid SQL injection via identifiers.
// - Errors are mapped to identity sentinel kinds where appropriate.
type PostgresStore struct {
	pool   *pgxpool.Pool
	schema string
}

// PostgresOption configures the store.
type PostgresOption func(*PostgresStore) error

var pgIdentRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// WithSchema sets the Postgres schema used by the store (default "public").
// The schema name is validated to be a legal PostgreSQL identifier.
func WithSchema(schema string) PostgresOption {
	return func(s *PostgresStore) error {
		schema = strings.TrimSpace(schema)
		if schema == "" {
			return fmt.Errorf("identity: empty schema")
		}
		if !pgIdentRe.MatchString(schema) {
			return fmt.Errorf("identity: invalid schema identifier")
		}
		s.schema = schema
		return nil
	}
}

// NewPostgresStore constructs a PostgresStore with secure defaults.
func NewPostgresStore(pool *pgxpool.Pool, opts ...PostgresOption) (*PostgresStore, error) {
	st := &PostgresStore{
		pool:   pool,
		schema: "public",
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(st); err != nil {
			return nil, err
		}
	}
	if st.pool == nil {
		return nil, fmt.Errorf("identity: nil pool")
	}
	return st, nil
}

const userColumns = `id, email, email_norm, google_id, password_hash, name, profile_picture,
	        reset_password_token, reset_password_expires, unit_system, created_at, updated_at`

// CreateUser inserts a new user row.
func (s *PostgresStore) CreateUser(ctx context.Context, in CreateUserInput) (User, error) {
	const op = "identity.CreateUser"

	if s == nil || s.pool == nil {
		return User{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "nil store"}
	}
	if err := ctx.Err(); err != nil {
		return User{}, err
	}

	email := strings.TrimSpace(in.Email)
	name := strings.TrimSpace(in.Name)
	if email == "" {
		return User{}, pgInvalid(op, "email is required")
	}
	if name == "" {
		return User{}, pgInvalid(op, "name is required")
	}
	// A user without any credential path could never authenticate.
	if in.PasswordHash == nil && in.GoogleID == nil {
		return User{}, pgInvalid(op, "password hash or google id is required")
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	emailNorm := NormalizeEmail(email)

	userID, err := NewULID(now)
	if err != nil {
		return User{}, err
	}

	users := pgIdent(s.schema, "users")

	_, err = s.pool.Exec(ctx,
		`INSERT INTO `+users+` (
		     id, email, email_norm, google_id, password_hash, name, unit_system, created_at, updated_at
		   ) VALUES ($1, $2, $3, $4, $5, $6, 'metric', $7, $7)`,
		userID,
		email,
		emailNorm,
		pgTrimPtr(in.GoogleID),
		in.PasswordHash,
		name,
		now,
	)
	if err != nil {
		if field, ok := pgClassifyUniqueViolation(err); ok {
			return User{}, ConflictError{Op: op, Field: field}
		}
		return User{}, err
	}

	return User{
		ID:           userID,
		Email:        email,
		EmailNorm:    emailNorm,
		GoogleID:     pgTrimPtr(in.GoogleID),
		PasswordHash: in.PasswordHash,
		Name:         name,
		UnitSystem:   "metric",
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// GetUserByEmail loads a user by normalized email.
func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (User, error) {
	const op = "identity.GetUserByEmail"

	if s == nil || s.pool == nil {
		return User{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "nil store"}
	}
	if err := ctx.Err(); err != nil {
		return User{}, err
	}

	emailNorm := NormalizeEmail(email)
	if emailNorm == "" {
		return User{}, pgInvalid(op, "email is required")
	}

	users := pgIdent(s.schema, "users")

	row := s.pool.QueryRow(ctx,
		`SELECT `+userColumns+`
		   FROM `+users+`
		  WHERE email_norm = $1`,
		emailNorm,
	)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, NotFoundError{Op: op, Resource: "user"}
		}
		return User{}, err
	}
	return u, nil
}

// GetUserByID loads a user by id.
func (s *PostgresStore) GetUserByID(ctx context.Context, id string) (User, error) {
	const op = "identity.GetUserByID"

	if s == nil || s.pool == nil {
		return User{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: "nil store"}
	}
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	if strings.TrimSpace(id) == "" {
		return User{}, pgInvalid(op, "missing user id")
	}

	users := pgIdent(s.schema, "users")

	row := s.pool.QueryRow(ctx,
		`SELECT `+userColumns+`
		   FROM `+users+`
		  WHERE id = $1`,
		id,
	)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, NotFoundError{Op: op, Resource: "user"}
		}
		return User{}, err
	}
	return u, nil
}

// SetResetToken stores the hashed reset token and expiry for a user.
func (s *PostgresStore) SetResetToken(ctx context.Context, userID string, hashHex string, expiresAt time.Time) error {
	const op = "identity.SetResetToken"

	if s == nil || s.pool == nil {
		return OpError{Op: op, Kind: ErrInvalidInput, Msg: "nil store"}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(userID) == "" {
		return pgInvalid(op, "missing user id")
	}
	if strings.TrimSpace(hashHex) == "" {
		return pgInvalid(op, "missing token hash")
	}

	users := pgIdent(s.schema, "users")

	ct, err := s.pool.Exec(ctx,
		`UPDATE `+users+`
		    SET reset_password_token = $1,
		        reset_password_expires = $2,
		        updated_at = now()
		  WHERE id = $3`,
		hashHex, expiresAt, userID,
	)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return NotFoundError{Op: op, Resource: "user"}
	}
	return nil
}

// ClearResetToken removes any pending reset token (idempotent).
func (s *PostgresStore) ClearResetToken(ctx context.Context, userID string) error {
	const op = "identity.ClearResetToken"

	if s == nil || s.pool == nil {
		return OpError{Op: op, Kind: ErrInvalidInput, Msg: "nil store"}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(userID) == "" {
		return pgInvalid(op, "missing user id")
	}

	users := pgIdent(s.schema, "users")

	_, err := s.pool.Exec(ctx,
		`UPDATE `+users+`
		    SET reset_password_token = NULL,
		        reset_password_expires = NULL,
		        updated_at = now()
		  WHERE id = $1`,
		userID,
	)
	return err
}

// ---- helpers ----

// scanUser scans the canonical user column set.
func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(
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
	if err != nil {
		return User{}, err
	}
	return u, nil
}

// pgTrimPtr trims a string pointer, returning nil if result is empty.
func pgTrimPtr(p *string) *string {
	if p == nil {
		return nil
	}
	s := strings.TrimSpace(*p)
	if s == "" {
		return nil
	}
	return &s
}

// pgInvalid standardizes invalid input errors.
func pgInvalid(op, msg string) error {
	return OpError{Op: op, Kind: ErrInvalidInput, Msg: msg}
}

// pgIdent safely quotes a schema-qualified identifier: "schema"."name".
func pgIdent(schema, name string) string {
	return pgx.Identifier{schema, name}.Sanitize()
}

func pgClassifyUniqueViolation(err error) (field string, ok bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return "", false
	}
	if pgErr.Code != "23505" { // unique_violation
		return "", false
	}

	// Prefer stable schema constraint names; fall back to substring matching.
	c := strings.ToLower(strings.TrimSpace(pgErr.ConstraintName))
	switch c {
	case "uq_users_email_norm":
		return "email", true
	case "uq_users_google_id":
		return "google_id", true
	default:
		switch {
		case strings.Contains(c, "email"):
			return "email", true
		case strings.Contains(c, "google"):
			return "google_id", true
		}
		return "", true
	}
}
