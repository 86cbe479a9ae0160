// Reelview - Movie Reviews and Catalog Curation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelview

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the config file locations, in order of priority.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/reelview/config.yaml",
	"/etc/reelview/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        3000,
			Host:        "0.0.0.0",
			Timeout:     30 * time.Second,
			Environment: "development",
			BaseURL:     "http://localhost:3000",
		},
		Database: DatabaseConfig{
			Path:      "data/reelview.duckdb",
			MaxMemory: "1GB",
			Threads:   0,
		},
		Security: SecurityConfig{
			SessionSecret:     "",
			SessionStrategy:   "jwt",
			SessionStore:      "memory",
			SessionStorePath:  "data/sessions",
			SessionMaxAge:     30 * 24 * time.Hour,
			CookieSecure:      false,
			CSRFEnabled:       true,
			AdminBearer:       "admin",
			CORSOrigins:       []string{},
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
			Casbin: CasbinConfig{
				CacheTTL: 5 * time.Minute,
			},
			Google: GoogleConfig{
				IssuerURL: "https://accounts.google.com",
			},
		},
		TMDB: TMDBConfig{
			BaseURL:   "https://api.themoviedb.org/3",
			Timeout:   10 * time.Second,
			CacheTTL:  10 * time.Minute,
			RateLimit: 40,
		},
		Mail: MailConfig{
			Host:     "smtp.gmail.com",
			Port:     587,
			FromName: "App Support",
		},
		Backup: BackupConfig{
			Dir:      "data/backups",
			MaxCount: 10,
			MinCount: 1,
			MaxAge:   30 * 24 * time.Hour,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load reads configuration from defaults, the optional YAML file and the
// environment, then validates it. Precedence: ENV > File > Defaults.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	cfg.Server.BaseURL = strings.TrimRight(cfg.Server.BaseURL, "/")
	cfg.TMDB.BaseURL = strings.TrimRight(cfg.TMDB.BaseURL, "/")

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths are parsed from comma-separated env values.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps lowercased environment variable names to koanf paths.
// Unmapped variables are ignored so the process environment cannot pollute
// the config tree.
var envMappings = map[string]string{
	// Server
	"http_host":    "server.host",
	"http_port":    "server.port",
	"http_timeout": "server.timeout",
	"environment":  "server.environment",
	"nextauth_url": "server.base_url",
	"base_url":     "server.base_url",

	// Database
	"database_path":     "database.path",
	"duckdb_max_memory": "database.max_memory",
	"duckdb_threads":    "database.threads",

	// Sessions
	"nextauth_secret":    "security.session_secret",
	"session_secret":     "security.session_secret",
	"session_strategy":   "security.session_strategy",
	"session_store":      "security.session_store",
	"session_store_path": "security.session_store_path",
	"session_max_age":    "security.session_max_age",
	"cookie_secure":      "security.cookie_secure",
	"csrf_enabled":       "security.csrf_enabled",

	// Access
	"admin_bearer":        "security.admin_bearer",
	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"casbin_model_path":   "security.casbin.model_path",
	"casbin_policy_path":  "security.casbin.policy_path",
	"casbin_cache_ttl":    "security.casbin.cache_ttl",

	// Google sign-in
	"google_client_id":     "security.google.client_id",
	"google_client_secret": "security.google.client_secret",
	"google_issuer_url":    "security.google.issuer_url",

	"bootstrap_admin_email":    "security.bootstrap_admin.email",
	"bootstrap_admin_password": "security.bootstrap_admin.password",
	"bootstrap_admin_username": "security.bootstrap_admin.username",

	// TMDB
	"tmdb_api_key":       "tmdb.api_key",
	"tmdb_authorization": "tmdb.authorization",
	"tmdb_base_url":      "tmdb.base_url",
	"tmdb_timeout":       "tmdb.timeout",
	"tmdb_cache_ttl":     "tmdb.cache_ttl",
	"tmdb_rate_limit":    "tmdb.rate_limit",

	// Mail
	"email_host":      "mail.host",
	"email_port":      "mail.port",
	"email_user":      "mail.username",
	"email_pass":      "mail.password",
	"email_from_name": "mail.from_name",

	// Backup
	"backup_dir":       "backup.dir",
	"backup_max_count": "backup.max_count",
	"backup_min_count": "backup.min_count",
	"backup_max_age":   "backup.max_age",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf paths.
//
// Examples:
//   - NEXTAUTH_SECRET -> security.session_secret
//   - TMDB_API_KEY -> tmdb.api_key
//   - EMAIL_USER -> mail.username
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
