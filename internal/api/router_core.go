// Reelview - Movie Reviews and Catalog Curation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelview

package api

import (
	"github.com/tomtom215/reelview/internal/auth"
	"github.com/tomtom215/reelview/internal/authz"
	"github.com/tomtom215/reelview/internal/logging"
)

// RouterDeps are the request-scoped components the router installs.
type RouterDeps struct {
	// Sessions resolves the session cookie on every request. Required.
	Sessions *auth.SessionManager

	// Authz guards catalog, review and user writes. Required.
	Authz *authz.Middleware

	// AdminBearer guards the TMDB proxy. Required.
	AdminBearer *auth.AdminBearer

	// CSRF protects form posts. Nil disables the check.
	CSRF *auth.CSRFMiddleware

	// Google mounts /api/auth/google/* when set.
	Google *auth.GoogleFlow

	// Middleware provides CORS and rate limits. Nil uses the defaults.
	Middleware *ChiMiddleware
}

// Router sets up HTTP routes using the Chi router.
type Router struct {
	handler       *Handler
	deps          RouterDeps
	chiMiddleware *ChiMiddleware
}

// NewRouter creates the router. Call SetupChi to build the http.Handler.
func NewRouter(handler *Handler, deps RouterDeps) *Router {
	chiMw := deps.Middleware
	if chiMw == nil {
		chiMw = NewChiMiddleware(nil)
	}
	if deps.Google == nil {
		logging.Info().Msg("Google sign-in disabled")
	}
	if deps.CSRF == nil {
		logging.Warn().Msg("CSRF protection disabled")
	}
	return &Router{
		handler:       handler,
		deps:          deps,
		chiMiddleware: chiMw,
	}
}
