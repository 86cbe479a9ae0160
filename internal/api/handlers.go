// Reelview - Movie Reviews and Catalog Curation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelview

package api

import (
	"context"
	"time"

	"github.com/tomtom215/reelview/internal/audit"
	"github.com/tomtom215/reelview/internal/auth"
	"github.com/tomtom215/reelview/internal/catalog"
	"github.com/tomtom215/reelview/internal/config"
	"github.com/tomtom215/reelview/internal/database"
	"github.com/tomtom215/reelview/internal/logging"
	"github.com/tomtom215/reelview/internal/mailer"
	"github.com/tomtom215/reelview/internal/tmdb"
	"github.com/tomtom215/reelview/internal/views"
)

// Handler contains dependencies for API and page handlers.
//
// Handler methods are split across files by resource:
//   - handlers_movies.go, handlers_reviews.go, handlers_favorites.go
//   - handlers_users.go, handlers_auth.go
//   - handlers_tmdb.go: admin TMDB proxy
//   - handlers_health.go: liveness and readiness
//   - handlers_audit.go: moderation trail
//   - pages_*.go: server-rendered HTML
type Handler struct {
	db            *database.DB
	tmdb          *tmdb.Client
	mailer        mailer.Sender
	sessions      *auth.SessionManager
	authenticator *auth.Authenticator
	importer      *catalog.Importer
	views         *views.Renderer
	security      *logging.SecurityLogger
	audit         *audit.Logger
	config        *config.Config
	startTime     time.Time
}

// NewHandler creates the handler set. tmdbClient must not be nil; an
// unconfigured client answers tmdb.ErrNotConfigured.
//
// Example:
//
//	handler := api.NewHandler(db, tmdbClient, mail, sessions, renderer, cfg)
//	router := api.NewRouter(handler, routerDeps)
//	srv := &http.Server{Handler: router.SetupChi()}
func NewHandler(db *database.DB, tmdbClient *tmdb.Client, mail mailer.Sender, sessions *auth.SessionManager, renderer *views.Renderer, cfg *config.Config) *Handler {
	return &Handler{
		db:            db,
		tmdb:          tmdbClient,
		mailer:        mail,
		sessions:      sessions,
		authenticator: auth.NewAuthenticator(db),
		importer:      catalog.NewImporter(db, tmdbClient),
		views:         renderer,
		security:      logging.NewSecurityLogger(),
		config:        cfg,
		startTime:     time.Now(),
	}
}

// Authenticator exposes the credential checker, shared with the Google flow.
func (h *Handler) Authenticator() *auth.Authenticator {
	return h.authenticator
}

// sendVerification mails a verification token. Failures are logged and
// returned; registration ignores them, resend reports them.
func (h *Handler) sendVerification(ctx context.Context, email, token string) error {
	if h.mailer == nil {
		return nil
	}
	if err := h.mailer.SendVerificationEmail(ctx, email, token); err != nil {
		logging.Ctx(ctx).Error().Err(err).Str("email", logging.SanitizeEmail(email)).Msg("Failed to send verification email")
		return err
	}
	return nil
}
