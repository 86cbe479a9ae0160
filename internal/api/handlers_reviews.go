// Reelview - Movie Reviews and Catalog Curation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelview

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/tomtom215/reelview/internal/auth"
	"github.com/tomtom215/reelview/internal/database"
	"github.com/tomtom215/reelview/internal/metrics"
	"github.com/tomtom215/reelview/internal/models"
	"github.com/tomtom215/reelview/internal/reviews"
)

// ReviewListResponse is a movie's reviews with their aggregate.
type ReviewListResponse struct {
	Reviews []models.Review      `json:"reviews"`
	Summary models.ReviewSummary `json:"summary"`
}

// errNotReviewAuthor is returned when a review is changed by someone else.
var errNotReviewAuthor = errors.New("not the review author")

// ListReviews handles GET /api/reviews?movieId= and GET /api/reviews/{movieId}.
func (h *Handler) ListReviews(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	movieID := r.PathValue("movieId")
	if movieID == "" {
		movieID = r.URL.Query().Get("movieId")
	}
	if movieID == "" {
		respondBadRequest(w, r, "movieId is required")
		return
	}

	list, err := h.db.ListReviewsByMovie(r.Context(), movieID)
	if err != nil {
		respondDBError(w, r, err, "")
		return
	}
	respondSuccess(w, http.StatusOK, ReviewListResponse{
		Reviews: list,
		Summary: reviews.Summarize(list),
	}, start)
}

// CreateReview handles POST /api/reviews. A user who already rated the
// movie has that review replaced instead.
func (h *Handler) CreateReview(w http.ResponseWriter, r *http.Request) {
	subject, ok := h.requireAccount(w, r)
	if !ok {
		return
	}

	var req CreateReviewRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	review, created, err := h.upsertReview(r.Context(), subject.ID, req.MovieID, req.Rating, req.Comment)
	if err != nil {
		respondDBError(w, r, err, "Movie not found")
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	respondSuccess(w, status, review, time.Time{})
}

// upsertReview applies the create-or-replace rule shared by the JSON API
// and the review form. A missing movie yields database.ErrNotFound.
func (h *Handler) upsertReview(ctx context.Context, userID, movieID string, rating int, comment string) (*models.Review, bool, error) {
	if _, err := h.db.GetMovieByID(ctx, movieID); err != nil {
		return nil, false, err
	}
	comment = reviews.ClampComment(comment)

	existing, err := h.db.FindUserReview(ctx, movieID, userID)
	switch {
	case err == nil && existing.Rating > 0:
		if err := h.db.UpdateReview(ctx, existing.ID, models.ReviewUpdate{Rating: &rating, Comment: &comment}); err != nil {
			return nil, false, err
		}
		updated, err := h.db.GetReview(ctx, existing.ID)
		if err != nil {
			return nil, false, err
		}
		metrics.RecordReview(false)
		return updated, false, nil
	case err != nil && !errors.Is(err, database.ErrNotFound):
		return nil, false, err
	}

	review := &models.Review{MovieID: movieID, UserID: userID, Rating: rating, Comment: comment}
	if err := h.db.CreateReview(ctx, review); err != nil {
		return nil, false, err
	}
	metrics.RecordReview(true)
	return review, true, nil
}

// UpdateReview handles PATCH /api/reviews.
func (h *Handler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	subject, err := auth.RequireAuth(r.Context())
	if err != nil {
		auth.WriteGuardError(w, r, err)
		return
	}

	var req UpdateReviewRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	upd := models.ReviewUpdate{Rating: req.Rating}
	if req.Comment != nil {
		comment := reviews.ClampComment(*req.Comment)
		upd.Comment = &comment
	}
	if upd.Empty() {
		respondBadRequest(w, r, "Nothing to update")
		return
	}

	if _, err := h.authoredReview(r.Context(), req.ID, subject.ID); err != nil {
		h.respondReviewError(w, r, err)
		return
	}
	if err := h.db.UpdateReview(r.Context(), req.ID, upd); err != nil {
		respondDBError(w, r, err, "Review not found")
		return
	}
	review, err := h.db.GetReview(r.Context(), req.ID)
	if err != nil {
		respondDBError(w, r, err, "Review not found")
		return
	}
	respondOK(w, review)
}

// DeleteReview handles DELETE /api/reviews.
func (h *Handler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	subject, err := auth.RequireAuth(r.Context())
	if err != nil {
		auth.WriteGuardError(w, r, err)
		return
	}

	var req DeleteReviewRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if _, err := h.authoredReview(r.Context(), req.ID, subject.ID); err != nil {
		h.respondReviewError(w, r, err)
		return
	}
	if err := h.db.DeleteReview(r.Context(), req.ID); err != nil {
		respondDBError(w, r, err, "Review not found")
		return
	}
	respondOK(w, map[string]interface{}{"id": req.ID, "deleted": true})
}

// authoredReview loads a review and checks that userID wrote it.
func (h *Handler) authoredReview(ctx context.Context, id, userID string) (*models.Review, error) {
	review, err := h.db.GetReview(ctx, id)
	if err != nil {
		return nil, err
	}
	if review.UserID != userID {
		return nil, errNotReviewAuthor
	}
	return review, nil
}

func (h *Handler) respondReviewError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, errNotReviewAuthor) {
		respondForbidden(w, r, "Access denied")
		return
	}
	respondDBError(w, r, err, "Review not found")
}
