package db

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
)

//go:embed schema.sql
var schema string

// Migrate creates every table and index that does not exist yet. The schema
// is idempotent so it runs on each start.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// Reset drops all application tables. Used by the seed command.
func Reset(ctx context.Context, db *sql.DB) error {
	const query = `DROP TABLE IF EXISTS saved_items, reviews, order_items, orders, addresses, products, categories, profiles, users CASCADE`
	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to drop tables: %w", err)
	}
	return nil
}
