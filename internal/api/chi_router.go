// Reelview - Movie Reviews and Catalog Curation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelview

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/reelview/internal/auth"
	"github.com/tomtom215/reelview/internal/authz"
	"github.com/tomtom215/reelview/internal/middleware"
)

// SetupChi configures all HTTP routes.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()
	h := router.handler

	// ========================
	// Global Middleware Stack
	// ========================
	r.Use(middleware.RequestID)        // X-Request-ID and request-scoped logger
	r.Use(chimiddleware.RealIP)        // Extract real IP from X-Forwarded-For
	r.Use(chimiddleware.Recoverer)     // Recover from panics
	r.Use(middleware.AccessLog)        // One line per request
	r.Use(middleware.PrometheusMetrics)
	r.Use(router.chiMiddleware.CORS()) // CORS must be global to handle OPTIONS preflight
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.Compression)
	r.Use(router.deps.Sessions.Authenticate)
	if router.deps.CSRF != nil {
		r.Use(router.deps.CSRF.Protect)
	}

	r.NotFound(h.NotFoundPage)

	// ========================
	// Operational Endpoints
	// ========================
	r.Route("/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Get("/live", h.HealthLive)
		r.Get("/ready", h.HealthReady)
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		router.registerAuthRoutes(r)
		router.registerCatalogRoutes(r)
		router.registerUserRoutes(r)
		router.registerTMDBRoutes(r)
		r.With(router.deps.Authz.Authorize(authz.ObjectAudit, authz.ActionRead)).Get("/admin/audit", h.ListAuditEvents)
	})

	router.registerPageRoutes(r)
	return r
}

// registerAuthRoutes adds /api/auth. Login has the strictest limit.
func (router *Router) registerAuthRoutes(r chi.Router) {
	h := router.handler
	r.Route("/auth", func(r chi.Router) {
		r.With(router.chiMiddleware.RateLimitLogin()).Post("/login", h.Login)

		r.Group(func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimitAuth())
			r.Post("/register", h.Register)
			r.Get("/verify", h.VerifyEmail)
			r.Post("/resendVerification", h.ResendVerification)
		})

		r.Post("/logout", h.Logout)
		r.Get("/session", h.Session)

		if google := router.deps.Google; google != nil {
			r.Get("/google/login", google.LoginHandler())
			r.Get("/google/callback", google.CallbackHandler())
		}
	})
}

// registerCatalogRoutes adds movies, reviews and favorites. Writes go
// through the Casbin policy; review authorship is checked by the handlers.
func (router *Router) registerCatalogRoutes(r chi.Router) {
	h := router.handler
	az := router.deps.Authz

	r.Route("/movies", func(r chi.Router) {
		r.Get("/", h.ListMovies)
		r.Get("/{id}", h.GetMovie)
		r.With(az.Authorize(authz.ObjectCatalog, authz.ActionWrite)).Post("/", h.CreateMovie)
		r.With(az.Authorize(authz.ObjectCatalog, authz.ActionWrite)).Put("/{id}", h.UpdateMovie)
		r.With(az.Authorize(authz.ObjectCatalog, authz.ActionDelete)).Delete("/{id}", h.DeleteMovie)
	})

	r.Route("/reviews", func(r chi.Router) {
		r.Get("/", h.ListReviews)
		r.Get("/{movieId}", h.ListReviews)
		r.With(az.AuthorizeMethod(authz.ObjectReviews)).Post("/", h.CreateReview)
		r.With(az.AuthorizeMethod(authz.ObjectReviews)).Patch("/", h.UpdateReview)
		r.With(az.AuthorizeMethod(authz.ObjectReviews)).Delete("/", h.DeleteReview)
	})

	r.Route("/favorites", func(r chi.Router) {
		r.Get("/", h.ListFavorites)
		r.Post("/", h.AddFavorite)
		r.Delete("/", h.RemoveFavorite)
	})
}

// registerUserRoutes adds /api/users. Listing, creation and deletion are
// admin operations; single-account reads and updates check ownership.
func (router *Router) registerUserRoutes(r chi.Router) {
	h := router.handler
	az := router.deps.Authz

	r.Route("/users", func(r chi.Router) {
		r.Get("/me", h.GetMe)
		r.Put("/me", h.UpdateMe)

		r.With(az.Authorize(authz.ObjectUsers, authz.ActionRead)).Get("/", h.ListUsers)
		r.With(az.Authorize(authz.ObjectUsers, authz.ActionWrite)).Post("/", h.CreateUser)
		r.Get("/{id}", h.GetUser)
		r.Put("/{id}", h.UpdateUser)
		r.With(az.Authorize(authz.ObjectUsers, authz.ActionDelete)).Delete("/{id}", h.DeleteUser)
	})
}

// registerTMDBRoutes adds the admin TMDB proxy behind the shared bearer.
func (router *Router) registerTMDBRoutes(r chi.Router) {
	h := router.handler
	r.Route("/admin/tmdb", func(r chi.Router) {
		r.Use(router.deps.AdminBearer.Middleware)
		r.Use(router.chiMiddleware.RateLimitTMDB())
		r.Get("/search", h.SearchTMDB)
		r.Get("/recent", h.RecentTMDB)
		r.Get("/details/{id}", h.TMDBDetails)
	})
}

// registerPageRoutes adds the server-rendered pages behind the page guard.
func (router *Router) registerPageRoutes(r chi.Router) {
	h := router.handler
	limits := router.chiMiddleware

	r.Group(func(r chi.Router) {
		r.Use(auth.PageGuard)

		r.Get("/", h.HomePage)
		r.Get("/movies", h.MoviesPage)
		r.Get("/movies/{id}", h.MoviePage)
		r.Post("/movies/{id}/reviews", h.ReviewForm)
		r.Post("/movies/{id}/reviews/{reviewId}/delete", h.ReviewDeleteForm)
		r.Post("/movies/{id}/favorite", h.FavoriteForm)

		r.Get("/login", h.LoginPage)
		r.With(limits.RateLimitLogin()).Post("/login", h.LoginForm)
		r.Get("/register", h.RegisterPage)
		r.With(limits.RateLimitAuth()).Post("/register", h.RegisterForm)
		r.Post("/logout", h.LogoutForm)
		r.Get("/verify", h.VerifyPage)
		r.With(limits.RateLimitAuth()).Post("/verify", h.VerifyForm)
		r.Get("/verified", h.VerifiedPage)

		r.Get("/profile", h.ProfilePage)
		r.Post("/profile", h.ProfileForm)
		r.Get("/favorites", h.FavoritesPage)

		r.Route("/admin", func(r chi.Router) {
			r.Get("/", h.AdminDashboardPage)
			r.Get("/movies", h.AdminMoviesPage)
			r.Get("/movies/{id}/edit", h.AdminMovieEditPage)
			r.Post("/movies/{id}/edit", h.AdminMovieEditForm)
			r.Post("/movies/{id}/delete", h.AdminMovieDeleteForm)
			r.Get("/users", h.AdminUsersPage)
			r.Get("/users/new", h.AdminUserNewPage)
			r.Post("/users/new", h.AdminUserNewForm)
			r.Post("/users/{id}/role", h.AdminUserRoleForm)
			r.Post("/users/{id}/delete", h.AdminUserDeleteForm)
			r.Get("/tmdb", h.AdminTMDBPage)
			r.With(limits.RateLimitTMDB()).Post("/tmdb/import", h.AdminTMDBImportForm)
		})
	})
}
