// Reelview - Movie Reviews and Catalog Curation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelview

package database

import (
	"context"
	"fmt"

	"github.com/tomtom215/reelview/internal/models"
)

// AddFavorite puts the movie on the user's list. It reports true when the
// pair was already present, in which case nothing changes.
func (db *DB) AddFavorite(ctx context.Context, userID, movieID string) (existed bool, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer observe("insert", "favorites")(&err)

	existed, err = db.IsFavorite(ctx, userID, movieID)
	if err != nil || existed {
		return existed, err
	}
	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO favorites (user_id, movie_id, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT DO NOTHING`, userID, movieID, newTimestamp())
	if err != nil {
		return false, fmt.Errorf("failed to add favorite: %w", err)
	}
	return false, nil
}

// RemoveFavorite takes the movie off the user's list and reports whether it
// was there.
func (db *DB) RemoveFavorite(ctx context.Context, userID, movieID string) (removed bool, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer observe("delete", "favorites")(&err)

	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM favorites WHERE user_id = ? AND movie_id = ?`, userID, movieID)
	if err != nil {
		return false, fmt.Errorf("failed to remove favorite: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n > 0, nil
}

// IsFavorite reports whether the movie is on the user's list.
func (db *DB) IsFavorite(ctx context.Context, userID, movieID string) (bool, error) {
	return db.exists(ctx,
		`SELECT COUNT(*) FROM favorites WHERE user_id = ? AND movie_id = ?`, userID, movieID)
}

// ListFavoriteMovies returns the user's favorites, most recently added first.
func (db *DB) ListFavoriteMovies(ctx context.Context, userID string) ([]models.MovieRef, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, `
		SELECT m.id, m.title, m.poster_path
		FROM favorites f
		JOIN movies m ON m.id = f.movie_id
		WHERE f.user_id = ?
		ORDER BY f.created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query favorites: %w", err)
	}
	defer closeWithLog(rows, "rows")

	movies := []models.MovieRef{}
	for rows.Next() {
		var m models.MovieRef
		if err := rows.Scan(&m.ID, &m.Title, &m.PosterPath); err != nil {
			return nil, fmt.Errorf("failed to scan favorite: %w", err)
		}
		movies = append(movies, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating favorites: %w", err)
	}
	return movies, nil
}
