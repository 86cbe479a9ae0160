// Reelview - Movie Reviews and Catalog Curation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelview

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()

	if cfg.Server.Port != 3000 {
		t.Errorf("Server.Port = %d, want 3000", cfg.Server.Port)
	}
	if cfg.Server.BaseURL != "http://localhost:3000" {
		t.Errorf("Server.BaseURL = %q", cfg.Server.BaseURL)
	}
	if cfg.Security.SessionStrategy != "jwt" {
		t.Errorf("Security.SessionStrategy = %q, want jwt", cfg.Security.SessionStrategy)
	}
	if cfg.Security.SessionMaxAge != 30*24*time.Hour {
		t.Errorf("Security.SessionMaxAge = %v, want 720h", cfg.Security.SessionMaxAge)
	}
	if cfg.Security.AdminBearer != "admin" {
		t.Errorf("Security.AdminBearer = %q, want admin", cfg.Security.AdminBearer)
	}
	if cfg.TMDB.BaseURL != "https://api.themoviedb.org/3" {
		t.Errorf("TMDB.BaseURL = %q", cfg.TMDB.BaseURL)
	}
	if cfg.Mail.Host != "smtp.gmail.com" || cfg.Mail.Port != 587 {
		t.Errorf("Mail = %s:%d, want smtp.gmail.com:587", cfg.Mail.Host, cfg.Mail.Port)
	}
	if cfg.Mail.FromName != "App Support" {
		t.Errorf("Mail.FromName = %q", cfg.Mail.FromName)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	t.Parallel()

	tests := []struct {
		env  string
		want string
	}{
		{"NEXTAUTH_URL", "server.base_url"},
		{"NEXTAUTH_SECRET", "security.session_secret"},
		{"SESSION_SECRET", "security.session_secret"},
		{"TMDB_API_KEY", "tmdb.api_key"},
		{"TMDB_AUTHORIZATION", "tmdb.authorization"},
		{"EMAIL_USER", "mail.username"},
		{"EMAIL_PASS", "mail.password"},
		{"ADMIN_BEARER", "security.admin_bearer"},
		{"DISABLE_RATE_LIMIT", "security.rate_limit_disabled"},
		{"GOOGLE_CLIENT_ID", "security.google.client_id"},
		{"LOG_LEVEL", "logging.level"},
		{"PATH", ""},
		{"HOME", ""},
	}
	for _, tt := range tests {
		if got := envTransformFunc(tt.env); got != tt.want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", tt.env, got, tt.want)
		}
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, "")
	t.Setenv("HTTP_PORT", "8080")
	t.Setenv("NEXTAUTH_URL", "https://reviews.example.com/")
	t.Setenv("TMDB_API_KEY", "abc123")
	t.Setenv("SESSION_MAX_AGE", "48h")
	t.Setenv("CORS_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("EMAIL_USER", "support@example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Server.BaseURL != "https://reviews.example.com" {
		t.Errorf("Server.BaseURL = %q, trailing slash should be trimmed", cfg.Server.BaseURL)
	}
	if cfg.TMDB.APIKey != "abc123" {
		t.Errorf("TMDB.APIKey = %q", cfg.TMDB.APIKey)
	}
	if cfg.Security.SessionMaxAge != 48*time.Hour {
		t.Errorf("SessionMaxAge = %v, want 48h", cfg.Security.SessionMaxAge)
	}
	if len(cfg.Security.CORSOrigins) != 2 || cfg.Security.CORSOrigins[1] != "https://b.example.com" {
		t.Errorf("CORSOrigins = %v", cfg.Security.CORSOrigins)
	}
	if !cfg.Mail.Enabled() {
		t.Error("Mail should be enabled when EMAIL_USER is set")
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "reelview.yaml")
	content := []byte("server:\n  port: 9090\ntmdb:\n  rate_limit: 5\nlogging:\n  level: debug\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090 from file", cfg.Server.Port)
	}
	if cfg.TMDB.RateLimit != 5 {
		t.Errorf("TMDB.RateLimit = %v, want 5", cfg.TMDB.RateLimit)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, env should win over file", cfg.Logging.Level)
	}
}
