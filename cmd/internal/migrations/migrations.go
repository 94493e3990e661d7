// Package migrations holds the embedded goose SQL migrations that define the
// database schema.
package migrations

import "embed"

// Migrations is the embedded migration set, applied with goose at startup.
//
//go:embed *.sql
var Migrations embed.FS
