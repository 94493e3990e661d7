// Package social implements the community features around recipes: favorites,
// reviews, comments, and creator subscriptions.
package social
