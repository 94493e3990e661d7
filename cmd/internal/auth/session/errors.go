package session

import "errors"

var (
	// ErrSessionNotFound is returned when a token does not resolve to a live
	// session: unknown id, or a session deleted after lazy expiry. Callers
	// treat it as "unauthenticated", never as a fault.
	ErrSessionNotFound = errors.New("session not found")

	// ErrConfig is returned for invalid configuration.
	ErrConfig = errors.New("invalid config")
)
