package social

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Abdelrahmanaman/chef-circle/cmd/identity"
)

// PostgresStore implements Store over PostgreSQL. The pool is owned by the
// caller.
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
			return fmt.Errorf("social: empty schema")
		}
		s.schema = schema
		return nil
	}
}

// NewPostgresStore creates a Postgres-backed social store.
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
		return nil, fmt.Errorf("social: nil pool")
	}
	return st, nil
}

func (s *PostgresStore) ident(name string) string {
	return pgx.Identifier{s.schema, name}.Sanitize()
}

// pgIsForeignKeyViolation reports a 23503, meaning the referenced recipe or
// user row does not exist.
func pgIsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

// Favorite saves a recipe; a repeat save hits the composite pk and is a no-op.
func (s *PostgresStore) Favorite(ctx context.Context, userID, recipeID string, now time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO `+s.ident("favorites")+` (user_id, recipe_id, favorited_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, recipe_id) DO NOTHING
	`, userID, recipeID, now)
	if pgIsForeignKeyViolation(err) {
		return ErrNotFound
	}
	return err
}

// Unfavorite removes a saved recipe (idempotent).
func (s *PostgresStore) Unfavorite(ctx context.Context, userID, recipeID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := s.pool.Exec(ctx, `
		DELETE FROM `+s.ident("favorites")+`
		WHERE user_id = $1 AND recipe_id = $2
	`, userID, recipeID)
	return err
}

// ListFavorites returns a user's saved recipes, most recent first.
func (s *PostgresStore) ListFavorites(ctx context.Context, userID string) ([]Favorite, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT f.recipe_id, r.title, r.image_urls, f.favorited_at
		FROM `+s.ident("favorites")+` f
		JOIN `+s.ident("recipes")+` r ON r.id = f.recipe_id
		WHERE f.user_id = $1
		ORDER BY f.favorited_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Favorite
	for rows.Next() {
		var f Favorite
		if err := rows.Scan(&f.RecipeID, &f.Title, &f.ImageURLs, &f.FavoritedAt); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

const reviewColumns = `id, user_id, recipe_id, rating, comment, created_at, updated_at`

// UpsertReview inserts a review or replaces the user's earlier one for the
// same recipe.
func (s *PostgresStore) UpsertReview(ctx context.Context, in ReviewInput) (Review, error) {
	if err := ctx.Err(); err != nil {
		return Review{}, err
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	id, err := identity.NewULID(now)
	if err != nil {
		return Review{}, err
	}

	row := s.pool.QueryRow(ctx, `
		INSERT INTO `+s.ident("reviews")+` (id, user_id, recipe_id, rating, comment, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (user_id, recipe_id) DO UPDATE
		SET rating = EXCLUDED.rating,
		    comment = EXCLUDED.comment,
		    updated_at = EXCLUDED.updated_at
		RETURNING `+reviewColumns, id, in.UserID, in.RecipeID, in.Rating, in.Comment, now)

	var rv Review
	err = row.Scan(&rv.ID, &rv.UserID, &rv.RecipeID, &rv.Rating, &rv.Comment, &rv.CreatedAt, &rv.UpdatedAt)
	if pgIsForeignKeyViolation(err) {
		return Review{}, ErrNotFound
	}
	if err != nil {
		return Review{}, err
	}
	return rv, nil
}

// ListReviews returns all reviews for a recipe, newest first.
func (s *PostgresStore) ListReviews(ctx context.Context, recipeID string) ([]Review, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT `+reviewColumns+`
		FROM `+s.ident("reviews")+`
		WHERE recipe_id = $1
		ORDER BY created_at DESC
	`, recipeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Review
	for rows.Next() {
		var rv Review
		if err := rows.Scan(&rv.ID, &rv.UserID, &rv.RecipeID, &rv.Rating, &rv.Comment, &rv.CreatedAt, &rv.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}

// AddComment appends a comment to a recipe.
func (s *PostgresStore) AddComment(ctx context.Context, in CommentInput) (Comment, error) {
	if err := ctx.Err(); err != nil {
		return Comment{}, err
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	id, err := identity.NewULID(now)
	if err != nil {
		return Comment{}, err
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO `+s.ident("comments")+` (id, user_id, recipe_id, comment, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
	`, id, in.UserID, in.RecipeID, in.Comment, now)
	if pgIsForeignKeyViolation(err) {
		return Comment{}, ErrNotFound
	}
	if err != nil {
		return Comment{}, err
	}

	return Comment{
		ID:        id,
		UserID:    in.UserID,
		RecipeID:  in.RecipeID,
		Comment:   in.Comment,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// ListComments returns all comments on a recipe, oldest first.
func (s *PostgresStore) ListComments(ctx context.Context, recipeID string) ([]Comment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, recipe_id, comment, created_at, updated_at
		FROM `+s.ident("comments")+`
		WHERE recipe_id = $1
		ORDER BY created_at
	`, recipeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Comment
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.UserID, &c.RecipeID, &c.Comment, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

const subscriptionColumns = `id, subscriber_id, creator_id, subscribed_at, subscription_end_date, is_active`

// Subscribe activates a subscription; a resubscribe reuses the existing row.
func (s *PostgresStore) Subscribe(ctx context.Context, subscriberID, creatorID string, now time.Time) (Subscription, error) {
	if err := ctx.Err(); err != nil {
		return Subscription{}, err
	}
	if subscriberID == creatorID {
		return Subscription{}, ErrSelfSubscribe
	}

	id, err := identity.NewULID(now)
	if err != nil {
		return Subscription{}, err
	}

	row := s.pool.QueryRow(ctx, `
		INSERT INTO `+s.ident("subscriptions")+` (id, subscriber_id, creator_id, subscribed_at, is_active)
		VALUES ($1, $2, $3, $4, TRUE)
		ON CONFLICT (subscriber_id, creator_id) DO UPDATE
		SET is_active = TRUE,
		    subscription_end_date = NULL,
		    subscribed_at = EXCLUDED.subscribed_at
		RETURNING `+subscriptionColumns, id, subscriberID, creatorID, now)

	var sub Subscription
	err = row.Scan(&sub.ID, &sub.SubscriberID, &sub.CreatorID, &sub.SubscribedAt, &sub.SubscriptionEndDate, &sub.IsActive)
	if pgIsForeignKeyViolation(err) {
		return Subscription{}, ErrNotFound
	}
	if err != nil {
		return Subscription{}, err
	}
	return sub, nil
}

// Unsubscribe deactivates a subscription (idempotent).
func (s *PostgresStore) Unsubscribe(ctx context.Context, subscriberID, creatorID string, now time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := s.pool.Exec(ctx, `
		UPDATE `+s.ident("subscriptions")+`
		SET is_active = FALSE,
		    subscription_end_date = $3
		WHERE subscriber_id = $1 AND creator_id = $2 AND is_active
	`, subscriberID, creatorID, now)
	return err
}
