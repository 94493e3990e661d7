package recipe

import "time"

// Units accepted for an ingredient quantity.
var Units = []string{"g", "kg", "ml", "L", "tsp", "tbsp", "cup"}

// Ingredient is one entry of a recipe's ingredient list, stored as jsonb.
type Ingredient struct {
	Name     string  `json:"name" validate:"required,min=1"`
	Quantity float64 `json:"quantity" validate:"gte=0"`
	Unit     string  `json:"unit" validate:"required,oneof=g kg ml L tsp tbsp cup"`
}

// Recipe is the persisted recipe row.
type Recipe struct {
	ID           string       `json:"id"`
	CreatorID    *string      `json:"creator_id"`
	Title        string       `json:"title"`
	Description  *string      `json:"description"`
	ImageURLs    []string     `json:"image_urls"`
	Servings     int          `json:"servings"`
	TotalTime    int          `json:"total_time"`
	Ingredients  []Ingredient `json:"ingredients"`
	Instructions []string     `json:"instructions"`
	IsPublic     bool         `json:"is_public"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// Visible reports whether a viewer may read this recipe. Private recipes are
// visible only to their creator.
func (r Recipe) Visible(viewerID string) bool {
	if r.IsPublic {
		return true
	}
	return r.CreatorID != nil && *r.CreatorID == viewerID
}

// OwnedBy reports whether userID may modify this recipe.
func (r Recipe) OwnedBy(userID string) bool {
	return r.CreatorID != nil && *r.CreatorID == userID
}
