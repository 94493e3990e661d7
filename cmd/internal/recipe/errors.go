package recipe

import "errors"

var (
	// ErrRecipeNotFound marks a lookup that matched no row. Listing an empty
	// page reports it too, mirroring the public API contract.
	ErrRecipeNotFound = errors.New("recipe not found")
)
