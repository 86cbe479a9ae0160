// Reelview - Movie Reviews and Catalog Curation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelview

/*
Package api provides the HTTP layer for Reelview: the JSON API under /api and
the server-rendered pages.

Key Components:

  - Router: Chi route table and global middleware stack
  - Handler: JSON handlers (handlers_*.go) and page handlers (pages_*.go)
  - Response formatting: the models.APIResponse envelope
  - ChiMiddleware: CORS and per-endpoint rate limits (go-chi/cors, httprate)

API Categories:

1. Auth (/api/auth/):
  - register, verify, resendVerification, login, logout, session
  - Google sign-in (google/login, google/callback) when configured

2. Catalog (/api/movies, /api/reviews, /api/favorites):
  - movie reads are public; writes need the catalog permission
  - a review is replaced when its author already rated the movie
  - favorites belong to the session user

3. Users (/api/users):
  - list, create and delete are admin operations
  - read and update check ownership; /me addresses the session user

4. Admin TMDB (/api/admin/tmdb/):
  - search, recent and details, behind the shared admin bearer
  - upstream failures answer 502 EXTERNAL_SERVICE_ERROR

5. Operational:
  - /health/live, /health/ready, /metrics

Pages:

Pages render through the views package and sit behind auth.PageGuard:
/admin requires the ADMIN role, account pages require a session, and the
catalog, sign-in and verification pages are public. Form posts carry the
CSRF token and answer with a 303 redirect carrying a flash code.

Response Format:

	{
	  "status": "success",
	  "data": {...},
	  "metadata": {"timestamp": "2026-01-15T10:30:00Z", "query_time_ms": 3}
	}

	{
	  "status": "error",
	  "error": {"code": "NOT_FOUND", "message": "Movie not found"}
	}

Middleware Stack:

  - RequestID, RealIP, Recoverer
  - AccessLog and PrometheusMetrics
  - CORS, SecurityHeaders, Compression
  - session resolution, then CSRF for form posts
  - rate limits per route group

See Also:

  - internal/auth: sessions, guards, CSRF, Google sign-in
  - internal/authz: Casbin policy
  - internal/views: page templates
*/
package api
