package session

import (
	"github.com/Abdelrahmanaman/chef-circle/cmd/security/token"
)

// GenerateToken returns a new opaque session token: nBytes of entropy from
// crypto/rand, encoded as lower-case unpadded base-32. The token goes to the
// client in a cookie and is never stored server-side.
func GenerateToken(nBytes int) (string, error) {
	return token.NewOpaque(nBytes)
}

// DeriveID maps a token to its storage key: lower-case hex of SHA-256(token).
// Deterministic and one-way; the sessions table is keyed by this value.
func DeriveID(plain string) string {
	return token.HashSHA256Hex(plain)
}
