package recipe

import (
	"context"
	"time"
)

// CreateInput carries a validated new recipe.
type CreateInput struct {
	CreatorID    string
	Title        string
	Description  *string
	ImageURLs    []string
	Servings     int
	TotalTime    int
	Ingredients  []Ingredient
	Instructions []string
	IsPublic     bool
	Now          time.Time
}

// UpdateInput is a partial update; nil fields are left untouched.
type UpdateInput struct {
	Title        *string
	Description  *string
	ImageURLs    *[]string
	Servings     *int
	TotalTime    *int
	Ingredients  *[]Ingredient
	Instructions *[]string
	IsPublic     *bool
	Now          time.Time
}

// Store is the persistence boundary for recipes.
type Store interface {
	Create(ctx context.Context, in CreateInput) (Recipe, error)

	// GetByID loads any recipe, public or private; visibility is the
	// caller's concern. Missing rows are ErrRecipeNotFound.
	GetByID(ctx context.Context, id string) (Recipe, error)

	Update(ctx context.Context, id string, in UpdateInput) (Recipe, error)
	Delete(ctx context.Context, id string) error

	// ListPublic returns up to limit public recipes with id greater than
	// cursor, ordered by id. An empty cursor starts from the beginning.
	ListPublic(ctx context.Context, cursor string, limit int) ([]Recipe, error)
}
