// Reelview - Movie Reviews and Catalog Curation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelview

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/reelview/internal/database"
	"github.com/tomtom215/reelview/internal/logging"
	"github.com/tomtom215/reelview/internal/models"
	"github.com/tomtom215/reelview/internal/validation"
)

// respondJSON writes an envelope with the given status.
func respondJSON(w http.ResponseWriter, status int, response *models.APIResponse) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")

	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// respondSuccess wraps data in a success envelope. start, when non-zero,
// fills metadata.query_time_ms.
func respondSuccess(w http.ResponseWriter, status int, data interface{}, start time.Time) {
	resp := models.NewSuccessResponse(data)
	if !start.IsZero() {
		resp.Metadata.QueryTimeMS = time.Since(start).Milliseconds()
	}
	respondJSON(w, status, &resp)
}

// respondOK is respondSuccess with 200 and no timing.
func respondOK(w http.ResponseWriter, data interface{}) {
	respondSuccess(w, http.StatusOK, data, time.Time{})
}

// respondError sends an error envelope. err, when set, is logged and never
// shown to the client.
func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string, err error) {
	if err != nil {
		logging.Ctx(r.Context()).Error().
			Str("code", code).
			Str("path", r.URL.Path).
			Str("error", logging.SanitizeLogValue(err.Error())).
			Msg("API error")
	}
	resp := models.NewErrorResponse(code, message, nil)
	respondJSON(w, status, &resp)
}

// respondValidation sends the 400 produced by request validation.
func respondValidation(w http.ResponseWriter, apiErr *models.APIError) {
	resp := models.NewErrorResponse(apiErr.Code, apiErr.Message, apiErr.Details)
	respondJSON(w, http.StatusBadRequest, &resp)
}

// respondBadRequest is a 400 VALIDATION_ERROR with message.
func respondBadRequest(w http.ResponseWriter, r *http.Request, message string) {
	respondError(w, r, http.StatusBadRequest, models.ErrCodeValidation, message, nil)
}

// respondNotFound is a 404 NOT_FOUND with message.
func respondNotFound(w http.ResponseWriter, r *http.Request, message string) {
	respondError(w, r, http.StatusNotFound, models.ErrCodeNotFound, message, nil)
}

// respondForbidden is a 403 FORBIDDEN with message.
func respondForbidden(w http.ResponseWriter, r *http.Request, message string) {
	respondError(w, r, http.StatusForbidden, models.ErrCodeForbidden, message, nil)
}

// respondDBError maps database.ErrNotFound to 404 with notFound as message
// and anything else to a 500 DATABASE_ERROR.
func respondDBError(w http.ResponseWriter, r *http.Request, err error, notFound string) {
	if errors.Is(err, database.ErrNotFound) {
		respondNotFound(w, r, notFound)
		return
	}
	respondError(w, r, http.StatusInternalServerError, models.ErrCodeDatabase, "A database error occurred", err)
}

// decodeJSON reads the request body into v. An invalid body gets a 400
// INVALID_JSON and false.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, r, http.StatusBadRequest, models.ErrCodeInvalidJSON, "Invalid JSON body", nil)
		return false
	}
	return true
}

// validateRequest validates v with the shared validator. On failure it
// writes the 400 and returns false.
func validateRequest(w http.ResponseWriter, v interface{}) bool {
	if verr := validation.ValidateStruct(v); verr != nil {
		respondValidation(w, verr.ToAPIError())
		return false
	}
	return true
}

// decodeAndValidate is decodeJSON followed by validateRequest.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	return decodeJSON(w, r, v) && validateRequest(w, v)
}
