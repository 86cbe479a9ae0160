// Reelview - Movie Reviews and Catalog Curation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelview

// Package config loads Reelview configuration.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: built-in values from defaultConfig
//  2. Config File: optional YAML file (CONFIG_PATH, config.yaml, /etc/reelview/config.yaml)
//  3. Environment Variables: override any setting
//
// Environment variable names follow the original deployment (NEXTAUTH_URL,
// NEXTAUTH_SECRET, TMDB_API_KEY, EMAIL_USER, ...) and are mapped onto the
// nested koanf keys by envTransformFunc.
package config

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Security SecurityConfig `koanf:"security"`
	TMDB     TMDBConfig     `koanf:"tmdb"`
	Mail     MailConfig     `koanf:"mail"`
	Backup   BackupConfig   `koanf:"backup"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port        int           `koanf:"port"`
	Host        string        `koanf:"host"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"` // development, staging, production
	BaseURL     string        `koanf:"base_url"`    // public origin used in email links and OAuth redirects
}

// Addr returns host:port for http.Server.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"` // 0 = runtime.NumCPU()
}

// SecurityConfig holds session, access-control and rate limiting settings.
type SecurityConfig struct {
	SessionSecret    string        `koanf:"session_secret"`
	SessionStrategy  string        `koanf:"session_strategy"` // jwt or store
	SessionStore     string        `koanf:"session_store"`    // memory or badger
	SessionStorePath string        `koanf:"session_store_path"`
	SessionMaxAge    time.Duration `koanf:"session_max_age"`
	CookieSecure     bool          `koanf:"cookie_secure"`
	CSRFEnabled      bool          `koanf:"csrf_enabled"`

	// AdminBearer is the shared secret expected in "Authorization: Bearer <secret>"
	// on the TMDB admin endpoints.
	AdminBearer string `koanf:"admin_bearer"`

	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`

	Casbin         CasbinConfig         `koanf:"casbin"`
	Google         GoogleConfig         `koanf:"google"`
	BootstrapAdmin BootstrapAdminConfig `koanf:"bootstrap_admin"`
}

// CasbinConfig holds authorization settings. Empty paths use the embedded
// model and policy.
type CasbinConfig struct {
	ModelPath  string        `koanf:"model_path"`
	PolicyPath string        `koanf:"policy_path"`
	CacheTTL   time.Duration `koanf:"cache_ttl"`
}

// GoogleConfig enables "Sign in with Google" when ClientID is set.
type GoogleConfig struct {
	ClientID     string `koanf:"client_id"`
	ClientSecret string `koanf:"client_secret"`
	IssuerURL    string `koanf:"issuer_url"`
}

// Enabled reports whether Google sign-in is configured.
func (g GoogleConfig) Enabled() bool {
	return g.ClientID != ""
}

// BootstrapAdminConfig describes an ADMIN account created at startup when
// no user with that email exists.
type BootstrapAdminConfig struct {
	Email    string `koanf:"email"`
	Password string `koanf:"password"`
	Username string `koanf:"username"`
}

// TMDBConfig holds The Movie Database client settings.
type TMDBConfig struct {
	APIKey        string        `koanf:"api_key"`
	Authorization string        `koanf:"authorization"`
	BaseURL       string        `koanf:"base_url"`
	Timeout       time.Duration `koanf:"timeout"`
	CacheTTL      time.Duration `koanf:"cache_ttl"`
	RateLimit     float64       `koanf:"rate_limit"` // requests per second
}

// MailConfig holds SMTP settings. An empty Username selects log-only delivery.
type MailConfig struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
	FromName string `koanf:"from_name"`
}

// Enabled reports whether SMTP delivery is configured.
func (m MailConfig) Enabled() bool {
	return m.Username != ""
}

// BackupConfig holds settings for reelctl backup archives.
//
// Environment Variables:
//   - BACKUP_DIR: archive directory (default: data/backups)
//   - BACKUP_MAX_COUNT: archives kept by prune, 0 for no limit (default: 10)
//   - BACKUP_MIN_COUNT: archives never pruned (default: 1)
//   - BACKUP_MAX_AGE: archives older than this are pruned, 0 to disable (default: 720h)
type BackupConfig struct {
	Dir      string        `koanf:"dir"`
	MaxCount int           `koanf:"max_count"`
	MinCount int           `koanf:"min_count"`
	MaxAge   time.Duration `koanf:"max_age"`
}

// LoggingConfig holds logging settings for zerolog.
//
// Environment Variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: true/false (default: false)
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// IsProduction reports whether ENVIRONMENT=production.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// String renders the config with secrets masked, for startup logging.
func (c *Config) String() string {
	return fmt.Sprintf(
		"server=%s env=%s db=%s session=%s/%s tmdb=%t smtp=%t google=%t",
		c.Server.Addr(), c.Server.Environment, c.Database.Path,
		c.Security.SessionStrategy, c.Security.SessionStore,
		c.TMDB.APIKey != "" || c.TMDB.Authorization != "",
		c.Mail.Enabled(), c.Security.Google.Enabled(),
	)
}
