// Package token provides opaque bearer-token primitives for chef-circle.
//
// Tokens are high-entropy random strings handed to clients (session cookies,
// password-reset links). Only a one-way SHA-256 hex digest of a token is ever
// stored server-side, so a database compromise alone cannot forge a valid
// bearer credential.
package token
