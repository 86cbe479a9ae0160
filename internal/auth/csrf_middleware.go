// Reelview - Movie Reviews and Catalog Curation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelview

package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/tomtom215/reelview/internal/logging"
	"github.com/tomtom215/reelview/internal/models"
)

// CSRF protection errors
var (
	// ErrCSRFTokenMissing indicates no CSRF token was provided.
	ErrCSRFTokenMissing = errors.New("CSRF token missing")

	// ErrCSRFTokenInvalid indicates the submitted token does not match the cookie.
	ErrCSRFTokenInvalid = errors.New("CSRF token invalid")
)

const csrfTokenContextKey contextKey = "csrf_token"

// CSRFConfig holds configuration for CSRF protection middleware.
type CSRFConfig struct {
	// CookieName is the name of the CSRF cookie (default: "_csrf").
	CookieName string

	// HeaderName is the HTTP header carrying the token (default: "X-CSRF-Token").
	HeaderName string

	// FormFieldName is the form field carrying the token (default: "csrf_token").
	FormFieldName string

	CookieSecure bool

	// TokenTTL is the cookie lifetime (default: 24h).
	TokenTTL time.Duration

	// ExemptPaths are path prefixes that skip validation.
	ExemptPaths []string
}

// DefaultCSRFConfig returns the defaults used by the server.
func DefaultCSRFConfig() *CSRFConfig {
	return &CSRFConfig{
		CookieName:    "_csrf",
		HeaderName:    "X-CSRF-Token",
		FormFieldName: "csrf_token",
		TokenTTL:      24 * time.Hour,
	}
}

// CSRFMiddleware protects form posts with the double-submit cookie pattern:
// the token stored in the cookie must be echoed in a form field or header.
// JSON requests are exempt; browsers cannot send them cross-site without CORS.
type CSRFMiddleware struct {
	config   *CSRFConfig
	security *logging.SecurityLogger
}

// NewCSRFMiddleware creates a new CSRF protection middleware.
func NewCSRFMiddleware(config *CSRFConfig) *CSRFMiddleware {
	if config == nil {
		config = DefaultCSRFConfig()
	}
	defaults := DefaultCSRFConfig()
	if config.CookieName == "" {
		config.CookieName = defaults.CookieName
	}
	if config.HeaderName == "" {
		config.HeaderName = defaults.HeaderName
	}
	if config.FormFieldName == "" {
		config.FormFieldName = defaults.FormFieldName
	}
	if config.TokenTTL == 0 {
		config.TokenTTL = defaults.TokenTTL
	}
	return &CSRFMiddleware{
		config:   config,
		security: logging.NewSecurityLogger(),
	}
}

// Protect issues the token cookie and validates unsafe requests. The
// current token is available to handlers through CSRFToken.
func (m *CSRFMiddleware) Protect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.isExemptPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		token := m.cookieToken(r)
		if isSafeMethod(r.Method) || isJSONRequest(r) {
			if token == "" {
				var err error
				if token, err = generateCSRFToken(); err != nil {
					logging.Ctx(r.Context()).Error().Err(err).Msg("CSRF: failed to generate token")
					http.Error(w, "Internal server error", http.StatusInternalServerError)
					return
				}
				m.setTokenCookie(w, token)
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), csrfTokenContextKey, token)))
			return
		}

		if err := m.validate(r, token); err != nil {
			m.security.LogCSRFFailure(ClientIP(r), r.UserAgent(), r.URL.Path)
			writeErrorEnvelope(w, r, http.StatusForbidden, models.ErrCodeForbidden, err.Error())
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), csrfTokenContextKey, token)))
	})
}

// CSRFToken returns the token to embed in rendered forms.
func CSRFToken(ctx context.Context) string {
	token, _ := ctx.Value(csrfTokenContextKey).(string)
	return token
}

func (m *CSRFMiddleware) validate(r *http.Request, cookieToken string) error {
	if cookieToken == "" {
		return ErrCSRFTokenMissing
	}
	submitted := r.Header.Get(m.config.HeaderName)
	if submitted == "" {
		submitted = r.PostFormValue(m.config.FormFieldName)
	}
	if submitted == "" {
		return ErrCSRFTokenMissing
	}
	if subtle.ConstantTimeCompare([]byte(cookieToken), []byte(submitted)) != 1 {
		return ErrCSRFTokenInvalid
	}
	return nil
}

func (m *CSRFMiddleware) cookieToken(r *http.Request) string {
	cookie, err := r.Cookie(m.config.CookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func (m *CSRFMiddleware) setTokenCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.config.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.config.TokenTTL.Seconds()),
		Secure:   m.config.CookieSecure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (m *CSRFMiddleware) isExemptPath(path string) bool {
	for _, exempt := range m.config.ExemptPaths {
		if strings.HasPrefix(path, exempt) {
			return true
		}
	}
	return false
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	}
	return false
}

func isJSONRequest(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}

func generateCSRFToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
