// Reelview - Movie Reviews and Catalog Curation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelview

package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/tomtom215/reelview/internal/models"
)

const reviewColumns = `id, movie_id, user_id, rating, comment, created_at, COALESCE(updated_at, created_at)`

func scanReview(row rowScanner) (*models.Review, error) {
	var r models.Review
	if err := row.Scan(&r.ID, &r.MovieID, &r.UserID, &r.Rating, &r.Comment, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	return &r, nil
}

// CreateReview inserts r, filling in ID and timestamps.
func (db *DB) CreateReview(ctx context.Context, r *models.Review) (err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer observe("insert", "reviews")(&err)

	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	now := newTimestamp()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.UpdatedAt = r.CreatedAt

	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO reviews (id, movie_id, user_id, rating, comment, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.MovieID, r.UserID, r.Rating, r.Comment, r.CreatedAt, r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert review: %w", err)
	}
	return nil
}

// GetReview returns ErrNotFound when absent.
func (db *DB) GetReview(ctx context.Context, id string) (*models.Review, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	r, err := scanReview(db.conn.QueryRowContext(ctx, `SELECT `+reviewColumns+` FROM reviews WHERE id = ?`, id))
	if err != nil {
		return nil, lookupError(err, "get", "review")
	}
	return r, nil
}

// FindUserReview returns the user's review of a movie, preferring a rated
// one over a comment-only one. ErrNotFound when the user has none.
func (db *DB) FindUserReview(ctx context.Context, movieID, userID string) (*models.Review, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	r, err := scanReview(db.conn.QueryRowContext(ctx, `
		SELECT `+reviewColumns+` FROM reviews
		WHERE movie_id = ? AND user_id = ?
		ORDER BY (rating > 0) DESC, created_at ASC
		LIMIT 1`, movieID, userID))
	if err != nil {
		return nil, lookupError(err, "find", "review")
	}
	return r, nil
}

// ListReviewsByMovie returns a movie's reviews newest first, each with its
// author's id and username.
func (db *DB) ListReviewsByMovie(ctx context.Context, movieID string) (reviews []models.Review, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer observe("select", "reviews")(&err)

	rows, err := db.conn.QueryContext(ctx, `
		SELECT r.id, r.movie_id, r.user_id, r.rating, r.comment, r.created_at,
			COALESCE(r.updated_at, r.created_at), COALESCE(u.username, '')
		FROM reviews r
		LEFT JOIN users u ON u.id = r.user_id
		WHERE r.movie_id = ?
		ORDER BY r.created_at DESC`, movieID)
	if err != nil {
		return nil, fmt.Errorf("failed to query reviews: %w", err)
	}
	defer closeWithLog(rows, "rows")

	reviews = []models.Review{}
	for rows.Next() {
		var r models.Review
		var username string
		if err = rows.Scan(&r.ID, &r.MovieID, &r.UserID, &r.Rating, &r.Comment,
			&r.CreatedAt, &r.UpdatedAt, &username); err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		r.User = &models.UserRef{ID: r.UserID, Username: username}
		reviews = append(reviews, r)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reviews: %w", err)
	}
	return reviews, nil
}

// UpdateReview applies the non-nil fields of upd.
func (db *DB) UpdateReview(ctx context.Context, id string, upd models.ReviewUpdate) (err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer observe("update", "reviews")(&err)

	sets := []string{"updated_at = ?"}
	args := []any{newTimestamp()}
	if upd.Comment != nil {
		sets = append(sets, "comment = ?")
		args = append(args, *upd.Comment)
	}
	if upd.Rating != nil {
		sets = append(sets, "rating = ?")
		args = append(args, *upd.Rating)
	}
	args = append(args, id)

	result, err := db.conn.ExecContext(ctx,
		`UPDATE reviews SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("failed to update review: %w", err)
	}
	return checkRowsAffected(result, "review")
}

// DeleteReview returns ErrNotFound when absent.
func (db *DB) DeleteReview(ctx context.Context, id string) (err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer observe("delete", "reviews")(&err)

	result, err := db.conn.ExecContext(ctx, `DELETE FROM reviews WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}
	return checkRowsAffected(result, "review")
}
