package password

import "errors"

// Public, stable errors for callers. The HTTP layer maps these to the
// user-facing policy messages.
var (
	ErrPasswordTooShort = errors.New("password shorter than policy minimum")
	ErrPasswordTooLong  = errors.New("password longer than policy maximum")
	ErrWeakPassword     = errors.New("password missing required character classes")
	ErrInvalidHash      = errors.New("malformed argon2id hash")
)
