// Reelview - Movie Reviews and Catalog Curation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelview

package database

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/tomtom215/reelview/internal/models"
)

// movieSelect reads movies with their rating aggregates. Only reviews with
// rating > 0 contribute.
const movieSelect = `
	SELECT m.id, m.title, m.overview, m.release_date, m.runtime,
		m.genres::VARCHAR, m.poster_path, m.director,
		m.production_companies::VARCHAR, m.producers::VARCHAR, m.cast_members::VARCHAR,
		m.tmdb_id, m.imdb_id, m.created_at, m.updated_at,
		COALESCE(r.avg_rating, 0), COALESCE(r.rating_count, 0)
	FROM movies m
	LEFT JOIN (
		SELECT movie_id, ROUND(AVG(rating), 1) AS avg_rating, COUNT(*) AS rating_count
		FROM reviews
		WHERE rating > 0
		GROUP BY movie_id
	) r ON r.movie_id = m.id`

func scanMovie(row rowScanner) (*models.Movie, error) {
	var m models.Movie
	var genres, companies, producers, cast sql.NullString
	if err := row.Scan(
		&m.ID, &m.Title, &m.Overview, &m.ReleaseDate, &m.Runtime,
		&genres, &m.PosterPath, &m.Director,
		&companies, &producers, &cast,
		&m.TMDBID, &m.IMDBID, &m.CreatedAt, &m.UpdatedAt,
		&m.RatingsAverage, &m.RatingsCount,
	); err != nil {
		return nil, err
	}

	var err error
	if m.Genres, err = unmarshalList(genres); err != nil {
		return nil, err
	}
	if m.ProductionCompanies, err = unmarshalList(companies); err != nil {
		return nil, err
	}
	if m.Producers, err = unmarshalList(producers); err != nil {
		return nil, err
	}
	if m.Cast, err = unmarshalList(cast); err != nil {
		return nil, err
	}
	return &m, nil
}

// CreateMovie inserts m, filling in ID and timestamps.
func (db *DB) CreateMovie(ctx context.Context, m *models.Movie) (err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer observe("insert", "movies")(&err)

	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	now := newTimestamp()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = now

	lists := make([]string, 4)
	for i, l := range [][]string{m.Genres, m.ProductionCompanies, m.Producers, m.Cast} {
		if lists[i], err = marshalList(l); err != nil {
			return err
		}
	}

	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO movies (
			id, title, overview, release_date, runtime, genres, poster_path, director,
			production_companies, producers, cast_members, tmdb_id, imdb_id, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.Title, m.Overview, m.ReleaseDate, m.Runtime, lists[0], m.PosterPath, m.Director,
		lists[1], lists[2], lists[3], m.TMDBID, m.IMDBID, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert movie: %w", err)
	}
	return nil
}

func (db *DB) getMovie(ctx context.Context, where string, arg any) (*models.Movie, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	m, err := scanMovie(db.conn.QueryRowContext(ctx, movieSelect+` WHERE `+where, arg))
	if err != nil {
		return nil, lookupError(err, "get", "movie")
	}
	return m, nil
}

// GetMovieByID returns ErrNotFound when absent.
func (db *DB) GetMovieByID(ctx context.Context, id string) (*models.Movie, error) {
	return db.getMovie(ctx, "m.id = ?", id)
}

// GetMovieByTMDBID returns the catalog movie imported from that TMDB id.
func (db *DB) GetMovieByTMDBID(ctx context.Context, tmdbID string) (*models.Movie, error) {
	if tmdbID == "" {
		return nil, fmt.Errorf("movie: %w", ErrNotFound)
	}
	return db.getMovie(ctx, "m.tmdb_id = ?", tmdbID)
}

// ListMovies returns movies matching filter, newest first.
//
// Search matches title or overview case-insensitively. Genre and Producer
// match list entries exactly. A Year that is not a number is ignored.
func (db *DB) ListMovies(ctx context.Context, filter models.MovieFilter) (movies []models.Movie, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer observe("select", "movies")(&err)

	var where []string
	var args []any

	if s := strings.TrimSpace(filter.Search); s != "" {
		where = append(where, `(contains(lower(m.title), lower(?)) OR contains(lower(m.overview), lower(?)))`)
		args = append(args, s, s)
	}
	if filter.Genre != "" {
		where = append(where, `list_contains(from_json(m.genres, '["VARCHAR"]'), ?)`)
		args = append(args, filter.Genre)
	}
	if filter.Producer != "" {
		where = append(where, `list_contains(from_json(m.producers, '["VARCHAR"]'), ?)`)
		args = append(args, filter.Producer)
	}
	if year, convErr := strconv.Atoi(strings.TrimSpace(filter.Year)); convErr == nil {
		where = append(where, `year(m.release_date) = ?`)
		args = append(args, year)
	}

	query := movieSelect
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY m.created_at DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query movies: %w", err)
	}
	defer closeWithLog(rows, "rows")

	movies = []models.Movie{}
	for rows.Next() {
		m, scanErr := scanMovie(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan movie: %w", scanErr)
		}
		movies = append(movies, *m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating movies: %w", err)
	}
	return movies, nil
}

// MovieFilterOptions returns the distinct genres and producers (sorted) and
// release years (newest first) present in the catalog.
func (db *DB) MovieFilterOptions(ctx context.Context) (*models.MovieFilterOptions, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	genres, err := db.distinctListValues(ctx, "genres")
	if err != nil {
		return nil, err
	}
	producers, err := db.distinctListValues(ctx, "producers")
	if err != nil {
		return nil, err
	}

	rows, err := db.conn.QueryContext(ctx, `
		SELECT DISTINCT year(release_date) AS y
		FROM movies
		WHERE release_date IS NOT NULL
		ORDER BY y DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query release years: %w", err)
	}
	defer closeWithLog(rows, "rows")

	years := []string{}
	for rows.Next() {
		var y int64
		if err := rows.Scan(&y); err != nil {
			return nil, fmt.Errorf("failed to scan year: %w", err)
		}
		years = append(years, strconv.FormatInt(y, 10))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating years: %w", err)
	}

	return &models.MovieFilterOptions{Genres: genres, Producers: producers, Years: years}, nil
}

// distinctListValues unnests a JSON list column. column is a fixed
// identifier, never user input.
func (db *DB) distinctListValues(ctx context.Context, column string) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT DISTINCT v FROM (
			SELECT unnest(from_json(`+column+`, '["VARCHAR"]')) AS v FROM movies
		) WHERE v IS NOT NULL AND v <> ''
		ORDER BY v`)
	if err != nil {
		return nil, fmt.Errorf("failed to query distinct %s: %w", column, err)
	}
	defer closeWithLog(rows, "rows")

	values := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", column, err)
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

// UpdateMovie applies the non-nil fields of upd.
func (db *DB) UpdateMovie(ctx context.Context, id string, upd models.MovieUpdate) (err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer observe("update", "movies")(&err)

	sets := []string{"updated_at = ?"}
	args := []any{newTimestamp()}
	add := func(column string, value any) {
		sets = append(sets, column+" = ?")
		args = append(args, value)
	}
	addList := func(column string, values *[]string) error {
		if values == nil {
			return nil
		}
		encoded, err := marshalList(*values)
		if err != nil {
			return err
		}
		add(column, encoded)
		return nil
	}

	if upd.Title != nil {
		add("title", *upd.Title)
	}
	if upd.Overview != nil {
		add("overview", *upd.Overview)
	}
	if upd.ReleaseDate != nil {
		add("release_date", *upd.ReleaseDate)
	}
	if upd.Runtime != nil {
		add("runtime", *upd.Runtime)
	}
	if upd.PosterPath != nil {
		add("poster_path", *upd.PosterPath)
	}
	if upd.Director != nil {
		add("director", *upd.Director)
	}
	if upd.TMDBID != nil {
		add("tmdb_id", *upd.TMDBID)
	}
	if upd.IMDBID != nil {
		add("imdb_id", *upd.IMDBID)
	}
	for column, values := range map[string]*[]string{
		"genres":               upd.Genres,
		"production_companies": upd.ProductionCompanies,
		"producers":            upd.Producers,
		"cast_members":         upd.Cast,
	} {
		if err = addList(column, values); err != nil {
			return err
		}
	}
	args = append(args, id)

	result, err := db.conn.ExecContext(ctx,
		`UPDATE movies SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("failed to update movie: %w", err)
	}
	return checkRowsAffected(result, "movie")
}

// DeleteMovie removes the movie together with its reviews and favorites.
func (db *DB) DeleteMovie(ctx context.Context, id string) (err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	defer observe("delete", "movies")(&err)

	return db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM reviews WHERE movie_id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete movie reviews: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM favorites WHERE movie_id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete movie favorites: %w", err)
		}
		result, err := tx.ExecContext(ctx, `DELETE FROM movies WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to delete movie: %w", err)
		}
		return checkRowsAffected(result, "movie")
	})
}

// CountMovies returns the catalog size.
func (db *DB) CountMovies(ctx context.Context) (int, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var n int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM movies`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count movies: %w", err)
	}
	return n, nil
}
