// Reelview - Movie Reviews and Catalog Curation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelview

package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/tomtom215/reelview/internal/models"
	"github.com/tomtom215/reelview/internal/tmdb"
)

// TMDBDetailsResponse is returned by GET /api/admin/tmdb/details/{id}.
type TMDBDetailsResponse struct {
	Details *tmdb.MovieDetails `json:"details"`
	Credits *tmdb.Credits      `json:"credits"`
}

// SearchTMDB handles GET /api/admin/tmdb/search?q=&page=.
func (h *Handler) SearchTMDB(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		respondOK(w, &tmdb.SearchResults{Results: []tmdb.MovieSummary{}})
		return
	}

	results, err := h.tmdb.SearchMovies(r.Context(), q, getPageParam(r))
	if err != nil {
		respondTMDBError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, results, start)
}

// RecentTMDB handles GET /api/admin/tmdb/recent?page=: TMDB's popular list.
func (h *Handler) RecentTMDB(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	results, err := h.tmdb.PopularMovies(r.Context(), getPageParam(r))
	if err != nil {
		respondTMDBError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, results, start)
}

// TMDBDetails handles GET /api/admin/tmdb/details/{id}.
func (h *Handler) TMDBDetails(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	details, credits, err := h.tmdb.DetailsWithCredits(r.Context(), r.PathValue("id"))
	if err != nil {
		respondTMDBError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, TMDBDetailsResponse{Details: details, Credits: credits}, start)
}

// respondTMDBError reports any TMDB failure as a 502. The upstream message
// is passed through since it only reaches administrators.
func respondTMDBError(w http.ResponseWriter, r *http.Request, err error) {
	respondError(w, r, http.StatusBadGateway, models.ErrCodeExternalService, err.Error(), err)
}
