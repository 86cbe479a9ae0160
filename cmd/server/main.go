// Reelview - Movie Reviews and Catalog Curation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelview

package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload" // load .env before config.Load reads the environment

	"github.com/tomtom215/reelview/internal/api"
	"github.com/tomtom215/reelview/internal/audit"
	"github.com/tomtom215/reelview/internal/auth"
	"github.com/tomtom215/reelview/internal/authz"
	"github.com/tomtom215/reelview/internal/config"
	"github.com/tomtom215/reelview/internal/database"
	"github.com/tomtom215/reelview/internal/logging"
	"github.com/tomtom215/reelview/internal/mailer"
	"github.com/tomtom215/reelview/internal/models"
	"github.com/tomtom215/reelview/internal/supervisor"
	"github.com/tomtom215/reelview/internal/supervisor/services"
	"github.com/tomtom215/reelview/internal/tmdb"
	"github.com/tomtom215/reelview/internal/views"
)

//nolint:gocyclo // Main initialization function with sequential setup steps
func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().Msg("Starting Reelview with supervisor tree")
	logging.Info().Str("config", cfg.String()).Msg("Configuration loaded")

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Str("path", cfg.Database.Path).Msg("Database initialized successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if admin := cfg.Security.BootstrapAdmin; admin.Email != "" {
		user, created, err := auth.EnsureAccount(ctx, db, auth.AccountSpec{
			Email:    admin.Email,
			Username: admin.Username,
			Password: admin.Password,
			Role:     models.RoleAdmin,
		})
		if err != nil {
			logging.Error().Err(err).Str("email", admin.Email).Msg("Failed to bootstrap admin account")
		} else {
			logging.Info().Str("user_id", user.ID).Bool("created", created).Msg("Bootstrap admin account ready")
		}
	}

	secret := cfg.Security.SessionSecret
	if secret == "" {
		secret = randomSecret()
		logging.Warn().Msg("NEXTAUTH_SECRET is not set; using a random secret, sessions will not survive a restart")
	}

	codec, err := auth.NewJWTSessionCodec(secret, cfg.Security.SessionMaxAge)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize session codec")
	}

	strategy := auth.SessionStrategy(cfg.Security.SessionStrategy)
	var store auth.ClosableSessionStore
	if strategy == auth.StrategyStore {
		store, err = auth.NewSessionStore(auth.SessionStoreType(cfg.Security.SessionStore), cfg.Security.SessionStorePath)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to initialize session store")
		}
		defer func() {
			if err := store.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing session store")
			}
		}()
		logging.Info().Str("store", cfg.Security.SessionStore).Msg("Server-side sessions enabled")
	}

	var sessionStore auth.SessionStore
	if store != nil {
		sessionStore = store
	}
	sessions, err := auth.NewSessionManager(auth.SessionManagerConfig{
		Strategy:     strategy,
		MaxAge:       cfg.Security.SessionMaxAge,
		CookieSecure: cfg.Security.CookieSecure,
	}, codec, sessionStore)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize session manager")
	}

	enforcer, err := authz.NewEnforcer(authz.EnforcerConfig{
		ModelPath:  cfg.Security.Casbin.ModelPath,
		PolicyPath: cfg.Security.Casbin.PolicyPath,
		CacheTTL:   cfg.Security.Casbin.CacheTTL,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize authorization")
	}

	renderer, err := views.New()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to parse templates")
	}

	tmdbClient := tmdb.NewClient(&cfg.TMDB)
	mail := mailer.New(cfg.Mail, cfg.Server.BaseURL)
	if !cfg.Mail.Enabled() {
		logging.Warn().Msg("EMAIL_USER is not set; verification emails will only be logged")
	}

	handler := api.NewHandler(db, tmdbClient, mail, sessions, renderer, cfg)

	auditStore := audit.NewDuckDBStore(db.Conn())
	if err := auditStore.CreateTable(ctx); err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize audit table")
	}
	auditLog := audit.NewLogger(auditStore, audit.DefaultConfig())
	handler.SetAuditLogger(auditLog)

	deps := api.RouterDeps{
		Sessions:    sessions,
		Authz:       authz.NewMiddleware(enforcer),
		AdminBearer: auth.NewAdminBearer(cfg.Security.AdminBearer),
		Middleware: api.NewChiMiddlewareFromSecurity(
			cfg.Security.CORSOrigins,
			cfg.Security.RateLimitReqs,
			cfg.Security.RateLimitWindow,
			cfg.Security.RateLimitDisabled,
		),
	}
	if cfg.Security.CSRFEnabled {
		deps.CSRF = auth.NewCSRFMiddleware(&auth.CSRFConfig{CookieSecure: cfg.Security.CookieSecure})
	}
	if google := cfg.Security.Google; google.Enabled() {
		flow, err := auth.NewGoogleFlow(ctx, auth.GoogleConfig{
			ClientID:     google.ClientID,
			ClientSecret: google.ClientSecret,
			IssuerURL:    google.IssuerURL,
			BaseURL:      cfg.Server.BaseURL,
			CookieSecret: secret,
			CookieSecure: cfg.Security.CookieSecure,
		}, handler.Authenticator(), sessions)
		if err != nil {
			// Password sign-in keeps working without Google.
			logging.Error().Err(err).Msg("Failed to initialize Google sign-in")
		} else {
			deps.Google = flow
			logging.Info().Msg("Google sign-in enabled")
		}
	}

	router := api.NewRouter(handler, deps)
	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.SetupChi(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       2 * time.Minute,
	}

	// === SUPERVISOR TREE ===

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	tree.AddDataService(auditLog)
	logging.Info().Msg("Audit logger added to supervisor tree")

	if store != nil {
		tree.AddDataService(services.NewSessionCleanupService(store, services.DefaultCleanupInterval))
		logging.Info().Msg("Session cleanup service added to supervisor tree")
	}

	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	unstopped, err := tree.Run(ctx)
	if err != nil {
		logging.Error().Err(err).Msg("Supervisor tree error")
	}
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}

// randomSecret returns 32 random bytes, hex encoded.
func randomSecret() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		logging.Fatal().Err(err).Msg("Failed to generate session secret")
	}
	return hex.EncodeToString(buf)
}
