package token

import "errors"

// Public, stable errors for callers.
var (
	ErrTokenTooSmall = errors.New("token entropy below minimum")
)
