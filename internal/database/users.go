// Reelview - Movie Reviews and Catalog Curation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelview

package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/reelview/internal/models"
)

const userColumns = `id, email, username, password_hash, role, provider, provider_id,
	is_confirmed, verification_token, token_expiry, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	var role, provider string
	if err := row.Scan(
		&u.ID, &u.Email, &u.Username, &u.PasswordHash, &role, &provider, &u.ProviderID,
		&u.IsConfirmed, &u.VerificationToken, &u.TokenExpiry, &u.CreatedAt, &u.UpdatedAt,
	); err != nil {
		return nil, err
	}
	u.Role = models.Role(role)
	u.Provider = models.Provider(provider)
	return &u, nil
}

// CreateUser inserts u, filling in ID and timestamps when unset. The email is
// stored lowercased.
func (db *DB) CreateUser(ctx context.Context, u *models.User) (err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer observe("insert", "users")(&err)

	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	if u.Role == "" {
		u.Role = models.RoleUser
	}
	if u.Provider == "" {
		u.Provider = models.ProviderLocal
	}
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	now := newTimestamp()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now

	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.Username, u.PasswordHash, string(u.Role), string(u.Provider), u.ProviderID,
		u.IsConfirmed, u.VerificationToken, u.TokenExpiry, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func (db *DB) getUser(ctx context.Context, where string, arg any) (*models.User, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	u, err := scanUser(db.conn.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE `+where, arg))
	if err != nil {
		return nil, lookupError(err, "get", "user")
	}
	return u, nil
}

// GetUserByID returns ErrNotFound when no user has that id.
func (db *DB) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return db.getUser(ctx, "id = ?", id)
}

// GetUserByEmail looks the user up case-insensitively.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return db.getUser(ctx, "email = lower(?)", strings.TrimSpace(email))
}

// GetUserByVerificationToken returns the user holding a pending token.
func (db *DB) GetUserByVerificationToken(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, fmt.Errorf("user: %w", ErrNotFound)
	}
	return db.getUser(ctx, "verification_token = ?", token)
}

// EmailTaken reports whether another user (not excludeID) uses email.
func (db *DB) EmailTaken(ctx context.Context, email, excludeID string) (bool, error) {
	return db.exists(ctx, `SELECT COUNT(*) FROM users WHERE email = lower(?) AND id <> ?`,
		strings.TrimSpace(email), excludeID)
}

// UsernameTaken reports whether another user (not excludeID) uses username.
func (db *DB) UsernameTaken(ctx context.Context, username, excludeID string) (bool, error) {
	return db.exists(ctx, `SELECT COUNT(*) FROM users WHERE username = ? AND id <> ?`,
		username, excludeID)
}

func (db *DB) exists(ctx context.Context, query string, args ...any) (bool, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var n int
	if err := db.conn.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return false, fmt.Errorf("failed to check existence: %w", err)
	}
	return n > 0, nil
}

// UpdateUser applies the non-nil fields of upd.
func (db *DB) UpdateUser(ctx context.Context, id string, upd models.UserUpdate) (err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer observe("update", "users")(&err)

	sets := []string{"updated_at = ?"}
	args := []any{newTimestamp()}
	if upd.Username != nil {
		sets = append(sets, "username = ?")
		args = append(args, *upd.Username)
	}
	if upd.Email != nil {
		sets = append(sets, "email = lower(?)")
		args = append(args, strings.TrimSpace(*upd.Email))
	}
	if upd.PasswordHash != nil {
		sets = append(sets, "password_hash = ?")
		args = append(args, *upd.PasswordHash)
	}
	if upd.Role != nil {
		sets = append(sets, "role = ?")
		args = append(args, string(*upd.Role))
	}
	args = append(args, id)

	result, err := db.conn.ExecContext(ctx,
		`UPDATE users SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return checkRowsAffected(result, "user")
}

// ConfirmUser marks the email confirmed and clears the verification token.
func (db *DB) ConfirmUser(ctx context.Context, id string) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	result, err := db.conn.ExecContext(ctx, `
		UPDATE users
		SET is_confirmed = true, verification_token = NULL, token_expiry = NULL, updated_at = ?
		WHERE id = ?`, newTimestamp(), id)
	if err != nil {
		return fmt.Errorf("failed to confirm user: %w", err)
	}
	return checkRowsAffected(result, "user")
}

// SetVerificationToken stores a new pending email-confirmation token.
func (db *DB) SetVerificationToken(ctx context.Context, id, token string, expiry time.Time) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	result, err := db.conn.ExecContext(ctx, `
		UPDATE users SET verification_token = ?, token_expiry = ?, updated_at = ?
		WHERE id = ?`, token, expiry.UTC(), newTimestamp(), id)
	if err != nil {
		return fmt.Errorf("failed to set verification token: %w", err)
	}
	return checkRowsAffected(result, "user")
}

// DeleteUser removes the user together with their reviews and favorites.
func (db *DB) DeleteUser(ctx context.Context, id string) (err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer observe("delete", "users")(&err)

	return db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM reviews WHERE user_id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete user reviews: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM favorites WHERE user_id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete user favorites: %w", err)
		}
		result, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}
		return checkRowsAffected(result, "user")
	})
}

// ListUsers returns every user with their review count, newest first.
func (db *DB) ListUsers(ctx context.Context) ([]models.UserSummary, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, `
		SELECT u.id, u.email, u.username, u.role, u.provider, u.is_confirmed, u.created_at,
			(SELECT COUNT(*) FROM reviews r WHERE r.user_id = u.id) AS review_count
		FROM users u
		ORDER BY u.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer closeWithLog(rows, "rows")

	users := []models.UserSummary{}
	for rows.Next() {
		var s models.UserSummary
		var role, provider string
		if err := rows.Scan(&s.ID, &s.Email, &s.Username, &role, &provider,
			&s.IsConfirmed, &s.CreatedAt, &s.ReviewCount); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		s.Role = models.Role(role)
		s.Provider = models.Provider(provider)
		users = append(users, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}
	return users, nil
}

// UserReviews returns the user's reviews, newest first, with the reviewed
// movie's id and title.
func (db *DB) UserReviews(ctx context.Context, userID string) ([]models.UserReview, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, `
		SELECT r.id, r.movie_id, r.user_id, r.rating, r.comment, r.created_at,
			COALESCE(r.updated_at, r.created_at), m.id, m.title, m.poster_path
		FROM reviews r
		JOIN movies m ON m.id = r.movie_id
		WHERE r.user_id = ?
		ORDER BY r.created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query user reviews: %w", err)
	}
	defer closeWithLog(rows, "rows")

	reviews := []models.UserReview{}
	for rows.Next() {
		var ur models.UserReview
		if err := rows.Scan(&ur.ID, &ur.MovieID, &ur.UserID, &ur.Rating, &ur.Comment,
			&ur.CreatedAt, &ur.UpdatedAt, &ur.Movie.ID, &ur.Movie.Title, &ur.Movie.PosterPath); err != nil {
			return nil, fmt.Errorf("failed to scan user review: %w", err)
		}
		reviews = append(reviews, ur)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user reviews: %w", err)
	}
	return reviews, nil
}
