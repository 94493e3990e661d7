package social

import (
	"errors"
	"time"
)

var (
	// ErrNotFound marks an operation against a missing recipe or user.
	ErrNotFound = errors.New("social: not found")

	// ErrSelfSubscribe rejects subscribing to oneself.
	ErrSelfSubscribe = errors.New("social: cannot subscribe to yourself")
)

// Favorite is one saved recipe, joined with enough of the recipe to render a
// list entry.
type Favorite struct {
	RecipeID    string    `json:"recipe_id"`
	Title       string    `json:"title"`
	ImageURLs   []string  `json:"image_urls"`
	FavoritedAt time.Time `json:"favorited_at"`
}

// Review is a rated opinion on a recipe; one per user and recipe.
type Review struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	RecipeID  string    `json:"recipe_id"`
	Rating    int       `json:"rating"`
	Comment   *string   `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Comment is free-form discussion on a recipe.
type Comment struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	RecipeID  string    `json:"recipe_id"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Subscription links a subscriber to a creator. Unsubscribing deactivates the
// row; resubscribing reactivates it.
type Subscription struct {
	ID                  string     `json:"id"`
	SubscriberID        string     `json:"subscriber_id"`
	CreatorID           string     `json:"creator_id"`
	SubscribedAt        time.Time  `json:"subscribed_at"`
	SubscriptionEndDate *time.Time `json:"subscription_end_date"`
	IsActive            bool       `json:"is_active"`
}
