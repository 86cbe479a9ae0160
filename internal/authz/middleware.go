// Reelview - Movie Reviews and Catalog Curation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelview

package authz

import (
	"net/http"

	"github.com/tomtom215/reelview/internal/auth"
	"github.com/tomtom215/reelview/internal/logging"
	"github.com/tomtom215/reelview/internal/metrics"
	"github.com/tomtom215/reelview/internal/models"
)

// Middleware provides authorization middleware using Casbin.
type Middleware struct {
	enforcer *Enforcer
}

// NewMiddleware creates a new authorization middleware.
func NewMiddleware(enforcer *Enforcer) *Middleware {
	return &Middleware{
		enforcer: enforcer,
	}
}

// Authorize allows the request when the session role may perform action on
// object. It must run after auth.SessionManager.Authenticate.
func (m *Middleware) Authorize(object, action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subject, err := auth.RequireAuth(r.Context())
			if err != nil {
				auth.WriteGuardError(w, r, err)
				return
			}

			allowed, err := m.enforcer.Enforce(string(subject.Role), object, action)
			if err != nil {
				logging.Ctx(r.Context()).Error().Err(err).Msg("Authorization error")
				auth.WriteGuardError(w, r, err)
				return
			}
			metrics.RecordAuthzDecision(allowed)

			if !allowed {
				logging.Ctx(r.Context()).Debug().
					Str("user_id", subject.ID).
					Str("role", string(subject.Role)).
					Str("object", object).
					Str("action", action).
					Msg("Authorization denied")
				auth.WriteGuardError(w, r, &auth.GuardError{
					Status:  http.StatusForbidden,
					Code:    models.ErrCodeForbidden,
					Message: "Forbidden: insufficient permissions",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// AuthorizeMethod maps the HTTP method to an action and authorizes it on object.
func (m *Middleware) AuthorizeMethod(object string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			m.Authorize(object, methodToAction(r.Method))(next).ServeHTTP(w, r)
		})
	}
}

// methodToAction maps HTTP methods to Casbin actions.
func methodToAction(method string) string {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return ActionRead
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return ActionWrite
	case http.MethodDelete:
		return ActionDelete
	default:
		return ActionRead
	}
}
