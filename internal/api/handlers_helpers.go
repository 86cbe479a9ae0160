// Reelview - Movie Reviews and Catalog Curation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelview

package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/tomtom215/reelview/internal/auth"
	"github.com/tomtom215/reelview/internal/database"
	"github.com/tomtom215/reelview/internal/logging"
	"github.com/tomtom215/reelview/internal/models"
)

var errAccountRemoved = &auth.GuardError{
	Status:  http.StatusUnauthorized,
	Code:    models.ErrCodeAuthRequired,
	Message: "Account no longer exists",
}

// currentAccount returns the session subject after confirming its account
// still exists. A session that outlived its account is destroyed and the
// request is treated as anonymous (nil, nil). Handlers that write rows
// owned by the user call it instead of auth.RequireAuth alone.
func (h *Handler) currentAccount(w http.ResponseWriter, r *http.Request) (*auth.AuthSubject, error) {
	subject := auth.GetAuthSubject(r.Context())
	if subject == nil {
		return nil, nil
	}
	_, err := h.db.GetUserByID(r.Context(), subject.ID)
	switch {
	case errors.Is(err, database.ErrNotFound):
		logging.Ctx(r.Context()).Info().Msg("Session of a deleted account ended")
		if err := h.sessions.Destroy(w, r); err != nil {
			logging.Ctx(r.Context()).Warn().Err(err).Msg("Failed to destroy session")
		}
		return nil, nil
	case err != nil:
		return nil, err
	}
	return subject, nil
}

// requireAccount is currentAccount for the JSON API: anonymous requests and
// removed accounts get 401.
func (h *Handler) requireAccount(w http.ResponseWriter, r *http.Request) (*auth.AuthSubject, bool) {
	subject, err := h.currentAccount(w, r)
	switch {
	case err != nil:
		respondDBError(w, r, err, "")
		return nil, false
	case subject == nil:
		guardErr := error(errAccountRemoved)
		if _, err := auth.RequireAuth(r.Context()); err != nil {
			guardErr = err
		}
		auth.WriteGuardError(w, r, guardErr)
		return nil, false
	}
	return subject, true
}

// getIntParam reads an integer query parameter, falling back to
// defaultValue when it is absent or malformed.
func getIntParam(r *http.Request, key string, defaultValue int) int {
	return parseIntParam(r.URL.Query().Get(key), defaultValue)
}

// parseIntParam parses value, returning defaultValue for "" or garbage.
func parseIntParam(value string, defaultValue int) int {
	value = strings.TrimSpace(value)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

// getPageParam returns ?page= as a positive page number.
func getPageParam(r *http.Request) int {
	page := getIntParam(r, "page", 1)
	if page < 1 {
		return 1
	}
	return page
}

// parseCommaSeparated splits a form value such as "Drama, Crime" into its
// trimmed non-empty parts. It never returns nil.
func parseCommaSeparated(value string) []string {
	result := []string{}
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// optionalString returns nil for a blank value.
func optionalString(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}
