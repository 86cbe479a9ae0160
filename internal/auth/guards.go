// Reelview - Movie Reviews and Catalog Curation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelview

package auth

import (
	"context"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/tomtom215/reelview/internal/logging"
	"github.com/tomtom215/reelview/internal/models"
)

// GuardError is a rejected access check with the HTTP status to return.
type GuardError struct {
	Status  int
	Code    string
	Message string
}

func (e *GuardError) Error() string {
	return e.Message
}

var (
	errUnauthenticated = &GuardError{
		Status:  http.StatusUnauthorized,
		Code:    models.ErrCodeAuthRequired,
		Message: "Authentication required",
	}
	errNotAdmin = &GuardError{
		Status:  http.StatusForbidden,
		Code:    models.ErrCodeForbidden,
		Message: "Admin access required",
	}
	errNotOwner = &GuardError{
		Status:  http.StatusForbidden,
		Code:    models.ErrCodeForbidden,
		Message: "Access denied",
	}
	errNotConfirmed = &GuardError{
		Status:  http.StatusForbidden,
		Code:    models.ErrCodeForbidden,
		Message: "Email confirmation required",
	}
)

// RequireAuth returns the session subject, or a 401 GuardError.
func RequireAuth(ctx context.Context) (*AuthSubject, error) {
	subject := GetAuthSubject(ctx)
	if subject == nil {
		return nil, errUnauthenticated
	}
	return subject, nil
}

// RequireAdmin returns the subject when it holds the ADMIN role.
func RequireAdmin(ctx context.Context) (*AuthSubject, error) {
	subject, err := RequireAuth(ctx)
	if err != nil {
		return nil, err
	}
	if !subject.IsAdmin() {
		return nil, errNotAdmin
	}
	return subject, nil
}

// Ownership is the outcome of CheckOwnership.
type Ownership struct {
	Subject *AuthSubject
	IsOwner bool
	IsAdmin bool
}

// CheckOwnership allows the owner of userID and administrators.
func CheckOwnership(ctx context.Context, userID string) (*Ownership, error) {
	subject, err := RequireAuth(ctx)
	if err != nil {
		return nil, err
	}
	o := &Ownership{
		Subject: subject,
		IsOwner: subject.ID == userID,
		IsAdmin: subject.IsAdmin(),
	}
	if !o.IsOwner && !o.IsAdmin {
		return nil, errNotOwner
	}
	return o, nil
}

// RequireConfirmedEmail returns the subject when its email is verified.
func RequireConfirmedEmail(ctx context.Context) (*AuthSubject, error) {
	subject, err := RequireAuth(ctx)
	if err != nil {
		return nil, err
	}
	if !subject.IsConfirmed {
		return nil, errNotConfirmed
	}
	return subject, nil
}

// RequireAuthMiddleware rejects anonymous requests with 401.
func RequireAuthMiddleware(next http.Handler) http.Handler {
	return guardMiddleware(RequireAuth, next)
}

// RequireAdminMiddleware rejects non-admin requests.
func RequireAdminMiddleware(next http.Handler) http.Handler {
	return guardMiddleware(RequireAdmin, next)
}

// RequireConfirmedEmailMiddleware rejects sessions whose email is not verified.
func RequireConfirmedEmailMiddleware(next http.Handler) http.Handler {
	return guardMiddleware(RequireConfirmedEmail, next)
}

// RequireOwnershipMiddleware checks ownership of the user ID returned by
// param, typically a chi URL parameter.
func RequireOwnershipMiddleware(param func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, err := CheckOwnership(r.Context(), param(r)); err != nil {
				WriteGuardError(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func guardMiddleware(check func(context.Context) (*AuthSubject, error), next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := check(r.Context()); err != nil {
			WriteGuardError(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// WriteGuardError writes err as a JSON error envelope. Errors that are not
// a *GuardError are reported as 500.
func WriteGuardError(w http.ResponseWriter, r *http.Request, err error) {
	ge, ok := err.(*GuardError)
	if !ok {
		ge = &GuardError{
			Status:  http.StatusInternalServerError,
			Code:    models.ErrCodeInternal,
			Message: "Internal server error",
		}
	}
	writeErrorEnvelope(w, r, ge.Status, ge.Code, ge.Message)
}

func writeErrorEnvelope(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(models.NewErrorResponse(code, message, nil)); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to encode error response")
	}
}
