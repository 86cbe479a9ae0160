// Reelview - Movie Reviews and Catalog Curation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelview

package database

import (
	"context"
	"fmt"
	"time"
)

func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates the core tables. Timestamps are written by the
// application in UTC.
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, q := range tableCreationQueries {
		if _, err := db.conn.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	return nil
}

var tableCreationQueries = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id VARCHAR PRIMARY KEY,
		email VARCHAR NOT NULL,
		username VARCHAR NOT NULL,
		password_hash VARCHAR,
		role VARCHAR NOT NULL DEFAULT 'USER',
		provider VARCHAR NOT NULL DEFAULT 'LOCAL',
		provider_id VARCHAR,
		is_confirmed BOOLEAN NOT NULL DEFAULT false,
		verification_token VARCHAR,
		token_expiry TIMESTAMP,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS movies (
		id VARCHAR PRIMARY KEY,
		title VARCHAR NOT NULL,
		overview VARCHAR NOT NULL DEFAULT '',
		release_date TIMESTAMP,
		runtime INTEGER,
		genres JSON,
		poster_path VARCHAR NOT NULL DEFAULT '',
		director VARCHAR NOT NULL DEFAULT '',
		production_companies JSON,
		producers JSON,
		cast_members JSON,
		tmdb_id VARCHAR,
		imdb_id VARCHAR,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS reviews (
		id VARCHAR PRIMARY KEY,
		movie_id VARCHAR NOT NULL,
		user_id VARCHAR NOT NULL,
		rating INTEGER NOT NULL DEFAULT 0,
		comment VARCHAR NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS favorites (
		user_id VARCHAR NOT NULL,
		movie_id VARCHAR NOT NULL,
		created_at TIMESTAMP NOT NULL,
		PRIMARY KEY (user_id, movie_id)
	)`,
}

// createIndexes only indexes columns that are never updated; DuckDB rewrites
// updates of indexed columns as delete+insert.
func (db *DB) createIndexes() error {
	ctx, cancel := schemaContext()
	defer cancel()

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_reviews_movie_id ON reviews(movie_id)`,
		`CREATE INDEX IF NOT EXISTS idx_reviews_user_id ON reviews(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_movies_created_at ON movies(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_users_created_at ON users(created_at)`,
	}
	for _, q := range indexes {
		if _, err := db.conn.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}
