// Package session implements chef-circle's cookie-session core.
//
// A session is a single authenticated browser/device instance. The client
// holds an opaque random token (the bearer credential); the database holds
// only the SHA-256 hex digest of that token as the session id, so a database
// compromise alone cannot forge valid sessions.
//
// Expiry is a sliding window: validation in the back half of a session's
// 30-day lifetime extends it to a fresh 30 days, and expired sessions are
// deleted lazily on the next validation (no background sweeper).
package session
