package recipe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
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
			return fmt.Errorf("recipe: empty schema")
		}
		s.schema = schema
		return nil
	}
}

// NewPostgresStore creates a Postgres-backed recipe store.
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
		return nil, fmt.Errorf("recipe: nil pool")
	}
	return st, nil
}

func (s *PostgresStore) ident(name string) string {
	return pgx.Identifier{s.schema, name}.Sanitize()
}

const recipeColumns = `id, creator_id, title, description, image_urls, servings, total_time,
	        ingredients, instructions, is_public, created_at, updated_at`

// Create inserts a new recipe.
func (s *PostgresStore) Create(ctx context.Context, in CreateInput) (Recipe, error) {
	if err := ctx.Err(); err != nil {
		return Recipe{}, err
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	id, err := identity.NewULID(now)
	if err != nil {
		return Recipe{}, err
	}

	ingredients, err := json.Marshal(in.Ingredients)
	if err != nil {
		return Recipe{}, err
	}
	instructions, err := json.Marshal(in.Instructions)
	if err != nil {
		return Recipe{}, err
	}

	images := in.ImageURLs
	if images == nil {
		images = []string{}
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO `+s.ident("recipes")+` (
		    id, creator_id, title, description, image_urls, servings, total_time,
		    ingredients, instructions, is_public, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
	`, id, in.CreatorID, in.Title, in.Description, images, in.Servings, in.TotalTime,
		ingredients, instructions, in.IsPublic, now)
	if err != nil {
		return Recipe{}, err
	}

	creator := in.CreatorID
	return Recipe{
		ID:           id,
		CreatorID:    &creator,
		Title:        in.Title,
		Description:  in.Description,
		ImageURLs:    images,
		Servings:     in.Servings,
		TotalTime:    in.TotalTime,
		Ingredients:  in.Ingredients,
		Instructions: in.Instructions,
		IsPublic:     in.IsPublic,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// GetByID loads one recipe regardless of visibility.
func (s *PostgresStore) GetByID(ctx context.Context, id string) (Recipe, error) {
	if err := ctx.Err(); err != nil {
		return Recipe{}, err
	}

	row := s.pool.QueryRow(ctx, `
		SELECT `+recipeColumns+`
		FROM `+s.ident("recipes")+`
		WHERE id = $1
	`, id)

	r, err := scanRecipe(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Recipe{}, ErrRecipeNotFound
	}
	if err != nil {
		return Recipe{}, err
	}
	return r, nil
}

// Update applies a partial update and returns the new row.
func (s *PostgresStore) Update(ctx context.Context, id string, in UpdateInput) (Recipe, error) {
	if err := ctx.Err(); err != nil {
		return Recipe{}, err
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	sets := []string{}
	args := []any{id}

	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if in.Title != nil {
		add("title", *in.Title)
	}
	if in.Description != nil {
		add("description", *in.Description)
	}
	if in.ImageURLs != nil {
		add("image_urls", *in.ImageURLs)
	}
	if in.Servings != nil {
		add("servings", *in.Servings)
	}
	if in.TotalTime != nil {
		add("total_time", *in.TotalTime)
	}
	if in.Ingredients != nil {
		b, err := json.Marshal(*in.Ingredients)
		if err != nil {
			return Recipe{}, err
		}
		add("ingredients", b)
	}
	if in.Instructions != nil {
		b, err := json.Marshal(*in.Instructions)
		if err != nil {
			return Recipe{}, err
		}
		add("instructions", b)
	}
	if in.IsPublic != nil {
		add("is_public", *in.IsPublic)
	}

	if len(sets) == 0 {
		// Nothing to change; return the current row.
		return s.GetByID(ctx, id)
	}

	add("updated_at", now)

	row := s.pool.QueryRow(ctx, `
		UPDATE `+s.ident("recipes")+`
		SET `+strings.Join(sets, ", ")+`
		WHERE id = $1
		RETURNING `+recipeColumns, args...)

	r, err := scanRecipe(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Recipe{}, ErrRecipeNotFound
	}
	if err != nil {
		return Recipe{}, err
	}
	return r, nil
}

// Delete removes a recipe. Deleting a missing row is ErrRecipeNotFound.
func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tag, err := s.pool.Exec(ctx, `
		DELETE FROM `+s.ident("recipes")+`
		WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRecipeNotFound
	}
	return nil
}

// ListPublic pages through public recipes ordered by id.
func (s *PostgresStore) ListPublic(ctx context.Context, cursor string, limit int) ([]Recipe, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT `+recipeColumns+`
		FROM `+s.ident("recipes")+`
		WHERE is_public AND id > $1
		ORDER BY id
		LIMIT $2
	`, cursor, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Recipe
	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func scanRecipe(row pgx.Row) (Recipe, error) {
	var (
		r            Recipe
		ingredients  []byte
		instructions []byte
	)
	err := row.Scan(
		&r.ID,
		&r.CreatorID,
		&r.Title,
		&r.Description,
		&r.ImageURLs,
		&r.Servings,
		&r.TotalTime,
		&ingredients,
		&instructions,
		&r.IsPublic,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		return Recipe{}, err
	}
	if err := json.Unmarshal(ingredients, &r.Ingredients); err != nil {
		return Recipe{}, err
	}
	if err := json.Unmarshal(instructions, &r.Instructions); err != nil {
		return Recipe{}, err
	}
	return r, nil
}
