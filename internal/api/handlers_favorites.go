// Reelview - Movie Reviews and Catalog Curation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelview

package api

import (
	"net/http"

	"github.com/tomtom215/reelview/internal/auth"
)

// FavoriteResponse reports the outcome of a favorites change.
type FavoriteResponse struct {
	MovieID string `json:"movieId"`
	Message string `json:"message"`
}

// ListFavorites handles GET /api/favorites.
func (h *Handler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	subject, err := auth.RequireAuth(r.Context())
	if err != nil {
		auth.WriteGuardError(w, r, err)
		return
	}
	movies, err := h.db.ListFavoriteMovies(r.Context(), subject.ID)
	if err != nil {
		respondDBError(w, r, err, "")
		return
	}
	respondOK(w, movies)
}

// AddFavorite handles POST /api/favorites.
func (h *Handler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	subject, ok := h.requireAccount(w, r)
	if !ok {
		return
	}
	var req FavoriteRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if _, err := h.db.GetMovieByID(r.Context(), req.MovieID); err != nil {
		respondDBError(w, r, err, "Movie not found")
		return
	}
	existed, err := h.db.AddFavorite(r.Context(), subject.ID, req.MovieID)
	if err != nil {
		respondDBError(w, r, err, "")
		return
	}

	msg := "Added to favorites"
	if existed {
		msg = "Already in favorites"
	}
	respondOK(w, FavoriteResponse{MovieID: req.MovieID, Message: msg})
}

// RemoveFavorite handles DELETE /api/favorites.
func (h *Handler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	subject, err := auth.RequireAuth(r.Context())
	if err != nil {
		auth.WriteGuardError(w, r, err)
		return
	}
	var req FavoriteRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	removed, err := h.db.RemoveFavorite(r.Context(), subject.ID, req.MovieID)
	if err != nil {
		respondDBError(w, r, err, "")
		return
	}
	if !removed {
		respondNotFound(w, r, "Movie is not in your favorites")
		return
	}
	respondOK(w, FavoriteResponse{MovieID: req.MovieID, Message: "Removed from favorites"})
}
