// Package identity persists chef-circle user accounts.
//
// It owns the users table: registration, credential lookup for login, and the
// password-reset token columns. Password hashing itself lives in
// cmd/security/password; this package only stores and returns encoded hashes.
//
// Errors follow a stable Op + Kind contract (OpError, ConflictError,
// NotFoundError) so HTTP boundaries can map them to status codes with
// errors.Is/As instead of string matching.
package identity
