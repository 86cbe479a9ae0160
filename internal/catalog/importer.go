// Reelview - Movie Reviews and Catalog Curation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelview

// Package catalog brings TMDB titles into the local movie catalog.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tomtom215/reelview/internal/database"
	"github.com/tomtom215/reelview/internal/logging"
	"github.com/tomtom215/reelview/internal/metrics"
	"github.com/tomtom215/reelview/internal/models"
	"github.com/tomtom215/reelview/internal/tmdb"
)

// ErrInvalidTMDBID is returned for an empty or non-numeric TMDB id.
var ErrInvalidTMDBID = errors.New("invalid TMDB id")

// MovieStore is the subset of the database the importer writes to.
type MovieStore interface {
	GetMovieByTMDBID(ctx context.Context, tmdbID string) (*models.Movie, error)
	CreateMovie(ctx context.Context, m *models.Movie) error
}

// Source fetches a title and its credits.
type Source interface {
	DetailsWithCredits(ctx context.Context, id string) (*tmdb.MovieDetails, *tmdb.Credits, error)
}

// Result describes one import.
type Result struct {
	Movie *models.Movie
	// Existed is true when the title was already in the catalog and
	// nothing was written.
	Existed bool
}

// Importer copies TMDB titles into the catalog.
type Importer struct {
	store  MovieStore
	source Source
}

// NewImporter creates an importer writing to store.
func NewImporter(store MovieStore, source Source) *Importer {
	return &Importer{store: store, source: source}
}

// Import adds the TMDB title tmdbID to the catalog. A title already present
// is returned unchanged with Existed set.
func (i *Importer) Import(ctx context.Context, tmdbID string) (*Result, error) {
	tmdbID = strings.TrimSpace(tmdbID)
	if !validTMDBID(tmdbID) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTMDBID, tmdbID)
	}

	existing, err := i.store.GetMovieByTMDBID(ctx, tmdbID)
	if err == nil {
		return &Result{Movie: existing, Existed: true}, nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		return nil, err
	}

	details, credits, err := i.source.DetailsWithCredits(ctx, tmdbID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch TMDB movie %s: %w", tmdbID, err)
	}
	movie := tmdb.ToMovie(details, credits)
	if movie.TMDBID == nil {
		movie.TMDBID = &tmdbID
	}
	if err := i.store.CreateMovie(ctx, movie); err != nil {
		return nil, err
	}

	metrics.RecordMovieImport()
	logging.Ctx(ctx).Info().
		Str("movie_id", movie.ID).
		Str("tmdb_id", tmdbID).
		Str("title", movie.Title).
		Msg("Imported movie from TMDB")
	return &Result{Movie: movie}, nil
}

func validTMDBID(id string) bool {
	if id == "" {
		return false
	}
	for _, c := range id {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
