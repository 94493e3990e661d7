package token

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base32"
	"encoding/hex"
	"time"
)

// MinBytes is the smallest allowed entropy for an opaque token (160 bits).
const MinBytes = 20

// base32Lower encodes without padding using a lower-case alphabet, matching
// the cookie-safe token format.
var base32Lower = base32.NewEncoding("abcdefghijklmnopqrstuvwxyz234567").WithPadding(base32.NoPadding)

// NewOpaque draws nBytes from crypto/rand and encodes them as a lower-case,
// unpadded base-32 string. nBytes below MinBytes is rejected.
func NewOpaque(nBytes int) (string, error) {
	if nBytes < MinBytes {
		return "", ErrTokenTooSmall
	}
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base32Lower.EncodeToString(b), nil
}

// HashSHA256Hex returns the lower-case hex SHA-256 digest of s.
// This is the value used as a storage key; it is deterministic and one-way.
func HashSHA256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// Reset is an issued password-reset token: the plain value goes into the
// email link, the digest and expiry go into the users row.
type Reset struct {
	Plain     string
	HashHex   string
	ExpiresAt time.Time
}

// NewReset issues a password-reset token valid for ttl from now.
func NewReset(now time.Time, nBytes int, ttl time.Duration) (Reset, error) {
	plain, err := NewOpaque(nBytes)
	if err != nil {
		return Reset{}, err
	}
	return Reset{
		Plain:     plain,
		HashHex:   HashSHA256Hex(plain),
		ExpiresAt: now.Add(ttl),
	}, nil
}
