package identity

import "strings"

// NormalizeEmail performs case-insensitive canonicalization.
// Lookup and uniqueness both operate on the normalized form.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
