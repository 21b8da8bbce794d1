package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Statements are kept to the subset of SQL shared by PostgreSQL and SQLite
// so both drivers run the same migrations and repository queries.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS labels (
		image_filename TEXT PRIMARY KEY,
		image_path     TEXT NOT NULL DEFAULT '',
		boxes          TEXT NOT NULL,
		box_count      INTEGER NOT NULL DEFAULT 0,
		landmark_count INTEGER NOT NULL DEFAULT 0,
		updated_at     TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS landmark_schemas (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		landmarks   TEXT NOT NULL,
		created_at  TIMESTAMP NOT NULL,
		updated_at  TIMESTAMP NOT NULL
	)`,
}

func Migrate(ctx context.Context, db *sqlx.DB) error {
	for i, stmt := range migrations {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}
