package app

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Abdelrahmanaman/chef-circle/cmd/internal/migrations"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// RunMigrations applies the embedded goose migrations against cfg.DatabaseURL.
// goose drives a database/sql connection, so it opens its own short-lived
// handle via the pgx stdlib driver rather than borrowing from the pool.
func RunMigrations(ctx context.Context, cfg Config, log Logger) error {
	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("migrate: open: %w", err)
	}
	defer func() { _ = db.Close() }()

	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("migrate: dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("migrate: up: %w", err)
	}

	version, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return fmt.Errorf("migrate: version: %w", err)
	}

	log.Info("db.migrated", "version", version)
	return nil
}
