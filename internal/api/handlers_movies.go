// Reelview - Movie Reviews and Catalog Curation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelview

package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/tomtom215/reelview/internal/audit"
	"github.com/tomtom215/reelview/internal/database"
	"github.com/tomtom215/reelview/internal/logging"
	"github.com/tomtom215/reelview/internal/metrics"
	"github.com/tomtom215/reelview/internal/models"
)

// MovieExistsWarning is returned with the existing movie when a create
// names a tmdbId already in the catalog.
const MovieExistsWarning = "exists"

// CreateMovieResponse is the 200 body of a create that hit an existing tmdbId.
type CreateMovieResponse struct {
	Movie   *models.Movie `json:"movie"`
	Warning string        `json:"warning"`
}

// ListMovies handles GET /api/movies. With meta=true it returns the filter
// options instead of movies.
func (h *Handler) ListMovies(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	q := r.URL.Query()

	if q.Get("meta") == "true" {
		opts, err := h.db.MovieFilterOptions(r.Context())
		if err != nil {
			respondDBError(w, r, err, "")
			return
		}
		respondSuccess(w, http.StatusOK, opts, start)
		return
	}

	movies, err := h.db.ListMovies(r.Context(), models.MovieFilter{
		Search:   q.Get("search"),
		Genre:    q.Get("genre"),
		Producer: q.Get("producer"),
		Year:     q.Get("year"),
		Limit:    getIntParam(r, "limit", 0),
	})
	if err != nil {
		respondDBError(w, r, err, "")
		return
	}
	respondSuccess(w, http.StatusOK, movies, start)
}

// GetMovie handles GET /api/movies/{id}.
func (h *Handler) GetMovie(w http.ResponseWriter, r *http.Request) {
	movie, err := h.db.GetMovieByID(r.Context(), r.PathValue("id"))
	if err != nil {
		respondDBError(w, r, err, "Movie not found")
		return
	}
	respondOK(w, movie)
}

// CreateMovie handles POST /api/movies.
func (h *Handler) CreateMovie(w http.ResponseWriter, r *http.Request) {
	var req MovieRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if req.Title == nil || strings.TrimSpace(*req.Title) == "" {
		respondBadRequest(w, r, "title is required")
		return
	}

	movie, err := req.toMovie()
	if err != nil {
		respondBadRequest(w, r, err.Error())
		return
	}

	if movie.TMDBID != nil {
		existing, err := h.db.GetMovieByTMDBID(r.Context(), *movie.TMDBID)
		switch {
		case err == nil:
			respondOK(w, CreateMovieResponse{Movie: existing, Warning: MovieExistsWarning})
			return
		case !errors.Is(err, database.ErrNotFound):
			respondDBError(w, r, err, "")
			return
		}
	}

	if err := h.db.CreateMovie(r.Context(), movie); err != nil {
		respondDBError(w, r, err, "")
		return
	}
	metrics.RecordMovieImport()
	logging.Ctx(r.Context()).Info().Str("movie_id", movie.ID).Str("title", movie.Title).Msg("Movie created")
	h.recordAudit(r, audit.EventTypeMovieCreated, movieTarget(movie.ID, movie.Title), "")
	respondSuccess(w, http.StatusCreated, movie, time.Time{})
}

// UpdateMovie handles PUT /api/movies/{id}.
func (h *Handler) UpdateMovie(w http.ResponseWriter, r *http.Request) {
	var req MovieRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		respondBadRequest(w, r, "title must not be empty")
		return
	}

	upd, err := req.toUpdate()
	if err != nil {
		respondBadRequest(w, r, err.Error())
		return
	}

	id := r.PathValue("id")
	if !upd.Empty() {
		if err := h.db.UpdateMovie(r.Context(), id, upd); err != nil {
			respondDBError(w, r, err, "Movie not found")
			return
		}
	}
	movie, err := h.db.GetMovieByID(r.Context(), id)
	if err != nil {
		respondDBError(w, r, err, "Movie not found")
		return
	}
	if !upd.Empty() {
		h.recordAudit(r, audit.EventTypeMovieUpdated, movieTarget(movie.ID, movie.Title), "")
	}
	respondOK(w, movie)
}

// DeleteMovie handles DELETE /api/movies/{id}.
func (h *Handler) DeleteMovie(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.db.DeleteMovie(r.Context(), id); err != nil {
		respondDBError(w, r, err, "Movie not found")
		return
	}
	h.recordAudit(r, audit.EventTypeMovieDeleted, movieTarget(id, ""), "")
	w.WriteHeader(http.StatusNoContent)
}

func movieTarget(id, title string) *audit.Target {
	return &audit.Target{ID: id, Type: "movie", Name: title}
}

func (req *MovieRequest) toMovie() (*models.Movie, error) {
	m := &models.Movie{
		Title:               strings.TrimSpace(deref(req.Title)),
		Overview:            deref(req.Overview),
		Runtime:             req.Runtime,
		PosterPath:          deref(req.PosterPath),
		Director:            deref(req.Director),
		Genres:              derefList(req.Genres),
		ProductionCompanies: derefList(req.ProductionCompanies),
		Producers:           derefList(req.Producers),
		Cast:                derefList(req.Cast),
		TMDBID:              nonEmpty(req.TMDBID),
		IMDBID:              nonEmpty(req.IMDBID),
	}
	if req.ReleaseDate != nil {
		date, err := models.ParseReleaseDate(*req.ReleaseDate)
		if err != nil {
			return nil, err
		}
		m.ReleaseDate = date
	}
	return m, nil
}

func (req *MovieRequest) toUpdate() (models.MovieUpdate, error) {
	upd := models.MovieUpdate{
		Overview:            req.Overview,
		Runtime:             req.Runtime,
		Genres:              req.Genres,
		PosterPath:          req.PosterPath,
		Director:            req.Director,
		ProductionCompanies: req.ProductionCompanies,
		Producers:           req.Producers,
		Cast:                req.Cast,
		TMDBID:              nonEmpty(req.TMDBID),
		IMDBID:              nonEmpty(req.IMDBID),
	}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		upd.Title = &title
	}
	if req.ReleaseDate != nil && strings.TrimSpace(*req.ReleaseDate) != "" {
		date, err := models.ParseReleaseDate(*req.ReleaseDate)
		if err != nil {
			return upd, err
		}
		upd.ReleaseDate = date
	}
	return upd, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefList(l *[]string) []string {
	if l == nil {
		return []string{}
	}
	return *l
}

// nonEmpty drops blank optional identifiers.
func nonEmpty(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
