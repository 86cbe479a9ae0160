// Reelview - Movie Reviews and Catalog Curation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelview

package config

import (
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"defaults", func(c *Config) {}, ""},
		{"port zero", func(c *Config) { c.Server.Port = 0 }, "HTTP_PORT"},
		{"port too large", func(c *Config) { c.Server.Port = 70000 }, "HTTP_PORT"},
		{"bad strategy", func(c *Config) { c.Security.SessionStrategy = "cookie" }, "SESSION_STRATEGY"},
		{"bad store", func(c *Config) { c.Security.SessionStore = "redis" }, "SESSION_STORE"},
		{
			"production without secret",
			func(c *Config) { c.Server.Environment = "production" },
			"NEXTAUTH_SECRET",
		},
		{
			"production store strategy without secret",
			func(c *Config) {
				c.Server.Environment = "production"
				c.Security.SessionStrategy = "store"
			},
			"",
		},
		{
			"production with long secret",
			func(c *Config) {
				c.Server.Environment = "production"
				c.Security.SessionSecret = strings.Repeat("s", MinSessionSecretLength)
			},
			"",
		},
		{"empty admin bearer", func(c *Config) { c.Security.AdminBearer = "" }, "ADMIN_BEARER"},
		{"relative tmdb url", func(c *Config) { c.TMDB.BaseURL = "/3" }, "TMDB_BASE_URL"},
		{"google without secret", func(c *Config) { c.Security.Google.ClientID = "id" }, "GOOGLE_CLIENT_SECRET"},
		{"negative backup count", func(c *Config) { c.Backup.MaxCount = -1 }, "BACKUP_MAX_COUNT"},
		{"backup floor above ceiling", func(c *Config) { c.Backup.MinCount = 20 }, "BACKUP_MIN_COUNT"},
		{"unlimited backups", func(c *Config) { c.Backup.MaxCount = 0; c.Backup.MinCount = 5 }, ""},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, "LOG_LEVEL"},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "LOG_FORMAT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}

func TestServerAddr(t *testing.T) {
	t.Parallel()

	s := ServerConfig{Host: "127.0.0.1", Port: 3000}
	if got := s.Addr(); got != "127.0.0.1:3000" {
		t.Errorf("Addr() = %q", got)
	}
}
