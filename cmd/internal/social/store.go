package social

import (
	"context"
	"time"
)

// ReviewInput carries a validated review.
type ReviewInput struct {
	UserID   string
	RecipeID string
	Rating   int
	Comment  *string
	Now      time.Time
}

// CommentInput carries a validated comment.
type CommentInput struct {
	UserID   string
	RecipeID string
	Comment  string
	Now      time.Time
}

// Store is the persistence boundary for social features.
type Store interface {
	// Favorite saves a recipe for a user. Saving twice is a no-op; an
	// unknown recipe is ErrNotFound.
	Favorite(ctx context.Context, userID, recipeID string, now time.Time) error

	// Unfavorite removes a saved recipe (idempotent).
	Unfavorite(ctx context.Context, userID, recipeID string) error

	ListFavorites(ctx context.Context, userID string) ([]Favorite, error)

	// UpsertReview creates a user's review of a recipe or replaces their
	// previous one.
	UpsertReview(ctx context.Context, in ReviewInput) (Review, error)

	ListReviews(ctx context.Context, recipeID string) ([]Review, error)

	AddComment(ctx context.Context, in CommentInput) (Comment, error)

	ListComments(ctx context.Context, recipeID string) ([]Comment, error)

	// Subscribe activates a subscription, reactivating a previously
	// cancelled one. Subscribing to oneself is ErrSelfSubscribe.
	Subscribe(ctx context.Context, subscriberID, creatorID string, now time.Time) (Subscription, error)

	// Unsubscribe deactivates a subscription and stamps its end date
	// (idempotent).
	Unsubscribe(ctx context.Context, subscriberID, creatorID string, now time.Time) error
}
