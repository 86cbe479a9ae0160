// Reelview - Movie Reviews and Catalog Curation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelview

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tomtom215/reelview/internal/logging"
)

// Migration is a data fix applied once on top of the base schema. Table
// shapes live in database_schema.go; migrations only rewrite rows.
type Migration struct {
	Version     int
	Name        string
	Description string
	SQL         string
	AppliedAt   time.Time // zero until applied
}

// migrations is append-only. Versions must stay contiguous from 1.
var migrations = []Migration{
	{Version: 1, Name: "lowercase_user_emails",
		Description: "Store emails lowercased so lookups compare normalized values",
		SQL:         `UPDATE users SET email = lower(email) WHERE email <> lower(email)`},
	{Version: 2, Name: "backfill_review_updated_at",
		Description: "Reviews written before edit tracking take their creation time",
		SQL:         `UPDATE reviews SET updated_at = created_at WHERE updated_at IS NULL`},
	{Version: 3, Name: "clear_expired_verification_tokens",
		Description: "Confirmed accounts keep no verification token",
		SQL:         `UPDATE users SET verification_token = NULL, token_expiry = NULL WHERE is_confirmed AND verification_token IS NOT NULL`},
}

// runVersionedMigrations applies each pending migration together with its
// schema_migrations row in one transaction.
func (db *DB) runVersionedMigrations() error {
	ctx, cancel := schemaContext()
	defer cancel()

	if _, err := db.conn.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version     INTEGER PRIMARY KEY,
			name        VARCHAR NOT NULL,
			description VARCHAR,
			applied_at  TIMESTAMP NOT NULL
		)`); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	current, err := db.GetCurrentSchemaVersion(ctx)
	if err != nil {
		return err
	}

	applied := 0
	for _, m := range migrations[min(current, len(migrations)):] {
		err := db.withTx(ctx, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
				return err
			}
			_, err := tx.ExecContext(ctx,
				`INSERT INTO schema_migrations (version, name, description, applied_at) VALUES (?, ?, ?, ?)`,
				m.Version, m.Name, m.Description, time.Now().UTC())
			return err
		})
		if err != nil {
			return fmt.Errorf("migration v%d (%s): %w", m.Version, m.Name, err)
		}
		applied++
	}
	if applied > 0 {
		logging.Info().Int("applied", applied).Int("version", current+applied).Msg("Database migrated")
	}
	return nil
}

// GetCurrentSchemaVersion is the highest applied migration, 0 for none.
func (db *DB) GetCurrentSchemaVersion(ctx context.Context) (int, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var version int
	if err := db.conn.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}

// GetMigrationHistory lists applied migrations, oldest first.
func (db *DB) GetMigrationHistory(ctx context.Context) (history []Migration, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT version, name, COALESCE(description, ''), applied_at FROM schema_migrations ORDER BY version`)
	if err != nil {
		return nil, fmt.Errorf("failed to query migrations: %w", err)
	}
	defer closeWithLog(rows, "rows")

	for rows.Next() {
		var m Migration
		if err := rows.Scan(&m.Version, &m.Name, &m.Description, &m.AppliedAt); err != nil {
			return nil, fmt.Errorf("failed to scan migration: %w", err)
		}
		history = append(history, m)
	}
	return history, rows.Err()
}
