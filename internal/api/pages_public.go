// Reelview - Movie Reviews and Catalog Curation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelview

package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/tomtom215/reelview/internal/auth"
	"github.com/tomtom215/reelview/internal/database"
	"github.com/tomtom215/reelview/internal/logging"
	"github.com/tomtom215/reelview/internal/models"
	"github.com/tomtom215/reelview/internal/reviews"
	"github.com/tomtom215/reelview/internal/tmdb"
	"github.com/tomtom215/reelview/internal/views"
)

// homeMovieCount is how many recent titles the home page shows.
const homeMovieCount = 6

// HomePage handles GET /.
func (h *Handler) HomePage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		h.NotFoundPage(w, r)
		return
	}
	movies, err := h.db.ListMovies(r.Context(), models.MovieFilter{Limit: homeMovieCount})
	if err != nil {
		h.renderServerError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, views.PageHome, views.NewPage(r, "Accueil", views.HomeData{Movies: movies}))
}

// MoviesPage handles GET /movies.
func (h *Handler) MoviesPage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.MovieFilter{
		Search:   strings.TrimSpace(q.Get("search")),
		Genre:    q.Get("genre"),
		Producer: q.Get("producer"),
		Year:     q.Get("year"),
	}

	movies, err := h.db.ListMovies(r.Context(), filter)
	if err != nil {
		h.renderServerError(w, r, err)
		return
	}
	opts, err := h.db.MovieFilterOptions(r.Context())
	if err != nil {
		h.renderServerError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, views.PageMovies, views.NewPage(r, "Films", views.MoviesData{
		Movies:  movies,
		Options: opts,
		Filter:  filter,
	}))
}

// MoviePage handles GET /movies/{id}. The id is tried as a catalog id, then
// as a TMDB id; titles missing from the catalog are shown from TMDB.
func (h *Handler) MoviePage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	movie, inCatalog, err := h.findMovie(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			h.renderMessage(w, r, http.StatusNotFound, "Ce film est introuvable.")
			return
		}
		h.renderServerError(w, r, err)
		return
	}

	data := views.MovieData{Movie: movie, InCatalog: inCatalog}
	if inCatalog {
		if err := h.loadMovieActivity(ctx, &data); err != nil {
			h.renderServerError(w, r, err)
			return
		}
	}
	h.render(w, r, http.StatusOK, views.PageMovie, views.NewPage(r, movie.Title, data))
}

// findMovie resolves a movie page id. A TMDB failure is reported as
// database.ErrNotFound so the page answers 404.
func (h *Handler) findMovie(ctx context.Context, id string) (*models.Movie, bool, error) {
	movie, err := h.db.GetMovieByID(ctx, id)
	if err == nil {
		return movie, true, nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		return nil, false, err
	}
	movie, err = h.db.GetMovieByTMDBID(ctx, id)
	if err == nil {
		return movie, true, nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		return nil, false, err
	}

	if h.tmdb == nil {
		return nil, false, database.ErrNotFound
	}
	details, credits, err := h.tmdb.DetailsWithCredits(ctx, id)
	if err != nil {
		logging.Ctx(ctx).Debug().Err(err).Str("id", id).Msg("Movie not found on TMDB")
		return nil, false, database.ErrNotFound
	}
	movie = tmdb.ToMovie(details, credits)
	movie.RatingsAverage = tmdb.VoteToFiveStar(details.VoteAverage)
	movie.RatingsCount = details.VoteCount
	return movie, false, nil
}

// loadMovieActivity fills reviews, summary and the viewer's own state.
func (h *Handler) loadMovieActivity(ctx context.Context, data *views.MovieData) error {
	list, err := h.db.ListReviewsByMovie(ctx, data.Movie.ID)
	if err != nil {
		return err
	}
	data.Reviews = list
	data.Summary = reviews.Summarize(list)

	subject := auth.GetAuthSubject(ctx)
	if subject == nil {
		return nil
	}
	for i := range list {
		if list[i].UserID == subject.ID {
			data.MyReview = &list[i]
			break
		}
	}
	data.IsFavorite, err = h.db.IsFavorite(ctx, subject.ID, data.Movie.ID)
	return err
}

// ReviewForm handles POST /movies/{id}/reviews.
func (h *Handler) ReviewForm(w http.ResponseWriter, r *http.Request) {
	subject, err := h.currentAccount(w, r)
	if err != nil {
		h.renderServerError(w, r, err)
		return
	}
	if subject == nil {
		redirectToLogin(w, r)
		return
	}
	movieID := r.PathValue("id")
	moviePath := "/movies/" + movieID

	rating := parseIntParam(r.PostFormValue("rating"), -1)
	if !reviews.ValidRating(rating) {
		redirectFlash(w, r, moviePath, views.FlashInvalidRating)
		return
	}

	_, _, err = h.upsertReview(r.Context(), subject.ID, movieID, rating, r.PostFormValue("comment"))
	switch {
	case errors.Is(err, database.ErrNotFound):
		h.renderMessage(w, r, http.StatusNotFound, "Ce film est introuvable.")
	case err != nil:
		h.renderServerError(w, r, err)
	default:
		redirectFlash(w, r, moviePath, views.FlashReviewSaved)
	}
}

// ReviewDeleteForm handles POST /movies/{id}/reviews/{reviewId}/delete.
func (h *Handler) ReviewDeleteForm(w http.ResponseWriter, r *http.Request) {
	subject := auth.GetAuthSubject(r.Context())
	if subject == nil {
		redirectToLogin(w, r)
		return
	}
	reviewID := r.PathValue("reviewId")

	_, err := h.authoredReview(r.Context(), reviewID, subject.ID)
	if err == nil {
		err = h.db.DeleteReview(r.Context(), reviewID)
	}
	switch {
	case errors.Is(err, errNotReviewAuthor):
		h.renderMessage(w, r, http.StatusForbidden, "Vous ne pouvez supprimer que vos propres avis.")
	case errors.Is(err, database.ErrNotFound):
		h.renderMessage(w, r, http.StatusNotFound, "Cet avis est introuvable.")
	case err != nil:
		h.renderServerError(w, r, err)
	default:
		redirectFlash(w, r, "/movies/"+r.PathValue("id"), views.FlashReviewDeleted)
	}
}

// FavoriteForm handles POST /movies/{id}/favorite with action=add|remove and
// an optional local "next" path.
func (h *Handler) FavoriteForm(w http.ResponseWriter, r *http.Request) {
	subject, err := h.currentAccount(w, r)
	if err != nil {
		h.renderServerError(w, r, err)
		return
	}
	if subject == nil {
		redirectToLogin(w, r)
		return
	}
	ctx := r.Context()
	movieID := r.PathValue("id")
	next := localPath(r.PostFormValue("next"), "/movies/"+movieID)

	var flash string
	switch r.PostFormValue("action") {
	case "remove":
		_, err = h.db.RemoveFavorite(ctx, subject.ID, movieID)
		flash = views.FlashFavoriteRemoved
	default:
		if _, err = h.db.GetMovieByID(ctx, movieID); err == nil {
			_, err = h.db.AddFavorite(ctx, subject.ID, movieID)
		}
		flash = views.FlashFavoriteAdded
	}

	switch {
	case errors.Is(err, database.ErrNotFound):
		h.renderMessage(w, r, http.StatusNotFound, "Ce film est introuvable.")
	case err != nil:
		h.renderServerError(w, r, err)
	default:
		redirectFlash(w, r, next, flash)
	}
}
