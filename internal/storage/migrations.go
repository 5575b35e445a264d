package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 3

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS orders (
					hash TEXT PRIMARY KEY,
					number TEXT NOT NULL,
					name TEXT NOT NULL,
					shopify_id TEXT NOT NULL DEFAULT '',
					email TEXT NOT NULL DEFAULT '',
					financial_status TEXT NOT NULL DEFAULT '',
					paid_at TEXT NOT NULL DEFAULT '',
					item_name TEXT NOT NULL,
					item_quantity INTEGER NOT NULL DEFAULT 1,
					item_price REAL NOT NULL DEFAULT 0,
					ship_name TEXT NOT NULL DEFAULT '',
					ship_line1 TEXT NOT NULL DEFAULT '',
					ship_line2 TEXT NOT NULL DEFAULT '',
					ship_city TEXT NOT NULL DEFAULT '',
					ship_zip TEXT NOT NULL DEFAULT '',
					ship_province TEXT NOT NULL DEFAULT '',
					ship_country TEXT NOT NULL DEFAULT '',
					ship_phone TEXT NOT NULL DEFAULT '',
					material TEXT NOT NULL,
					size_band TEXT NOT NULL,
					bundle INTEGER NOT NULL DEFAULT 0,
					region TEXT NOT NULL,
					imported_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_orders_number ON orders(number)`,
				`CREATE INDEX idx_orders_region ON orders(region)`,
				`CREATE INDEX idx_orders_imported ON orders(imported_at)`,

				`CREATE TABLE IF NOT EXISTS product_overrides (
					line_item_name TEXT PRIMARY KEY,
					material TEXT NOT NULL,
					size_band TEXT NOT NULL,
					bundle INTEGER NOT NULL DEFAULT 0,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Add export run audit trail",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS export_runs (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					started_at DATETIME NOT NULL,
					source TEXT NOT NULL,
					total_orders INTEGER NOT NULL DEFAULT 0,
					singapore INTEGER NOT NULL DEFAULT 0,
					us_canada INTEGER NOT NULL DEFAULT 0,
					international INTEGER NOT NULL DEFAULT 0,
					manifest_path TEXT NOT NULL DEFAULT '',
					courier_path TEXT NOT NULL DEFAULT '',
					labels_url TEXT NOT NULL DEFAULT ''
				)`,
				`CREATE INDEX idx_export_runs_started ON export_runs(started_at)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     3,
		Description: "Store the full province name for courier manifests",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`ALTER TABLE orders ADD COLUMN ship_province_name TEXT NOT NULL DEFAULT ''`)
			return err
		},
	},
}

// Migrate runs all pending database migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	// Get current version
	var currentVersion int
	err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	// Apply migrations
	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		// Update version
		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	// Verify we're at the expected schema version
	var finalVersion int
	err = s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&finalVersion)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}
