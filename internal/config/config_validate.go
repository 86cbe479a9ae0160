// Reelview - Movie Reviews and Catalog Curation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelview

package config

import (
	"fmt"
	"net/url"

	"github.com/tomtom215/reelview/internal/logging"
)

// MinSessionSecretLength is the shortest NEXTAUTH_SECRET accepted in production.
const MinSessionSecretLength = 32

var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	if err := c.validateTMDB(); err != nil {
		return err
	}
	if err := c.validateMail(); err != nil {
		return err
	}
	if err := c.validateBackup(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if _, err := url.ParseRequestURI(c.Server.BaseURL); err != nil {
		return fmt.Errorf("NEXTAUTH_URL must be an absolute URL: %w", err)
	}
	return nil
}

func (c *Config) validateSecurity() error {
	switch c.Security.SessionStrategy {
	case "jwt", "store":
	default:
		return fmt.Errorf("SESSION_STRATEGY must be one of: jwt, store")
	}

	switch c.Security.SessionStore {
	case "memory", "badger":
	default:
		return fmt.Errorf("SESSION_STORE must be one of: memory, badger")
	}
	if c.Security.SessionStore == "badger" && c.Security.SessionStorePath == "" {
		return fmt.Errorf("SESSION_STORE_PATH is required when SESSION_STORE=badger")
	}

	if c.IsProduction() && c.Security.SessionStrategy == "jwt" &&
		len(c.Security.SessionSecret) < MinSessionSecretLength {
		return fmt.Errorf("NEXTAUTH_SECRET must be at least %d characters in production", MinSessionSecretLength)
	}

	if c.Security.SessionMaxAge <= 0 {
		return fmt.Errorf("SESSION_MAX_AGE must be positive")
	}

	if c.Security.AdminBearer == "" {
		return fmt.Errorf("ADMIN_BEARER must not be empty")
	}

	if !c.Security.RateLimitDisabled && c.Security.RateLimitReqs < 1 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be at least 1")
	}

	if c.Security.Google.Enabled() && c.Security.Google.ClientSecret == "" {
		return fmt.Errorf("GOOGLE_CLIENT_SECRET is required when GOOGLE_CLIENT_ID is set")
	}
	return nil
}

func (c *Config) validateTMDB() error {
	u, err := url.Parse(c.TMDB.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("TMDB_BASE_URL must be an absolute URL")
	}
	if c.TMDB.Timeout <= 0 {
		return fmt.Errorf("TMDB_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) validateMail() error {
	if c.Mail.Enabled() && (c.Mail.Port < 1 || c.Mail.Port > 65535) {
		return fmt.Errorf("EMAIL_PORT must be between 1 and 65535")
	}
	return nil
}

func (c *Config) validateBackup() error {
	if c.Backup.MaxCount < 0 || c.Backup.MinCount < 0 {
		return fmt.Errorf("BACKUP_MAX_COUNT and BACKUP_MIN_COUNT must not be negative")
	}
	if c.Backup.MaxCount > 0 && c.Backup.MinCount > c.Backup.MaxCount {
		return fmt.Errorf("BACKUP_MIN_COUNT (%d) must not exceed BACKUP_MAX_COUNT (%d)", c.Backup.MinCount, c.Backup.MaxCount)
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}
