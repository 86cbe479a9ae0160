// Reelview - Movie Reviews and Catalog Curation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelview

package auth

import (
	"crypto/subtle"
	"net/http"

	"github.com/tomtom215/reelview/internal/logging"
	"github.com/tomtom215/reelview/internal/models"
)

// DefaultAdminBearer is the shared secret used when none is configured.
const DefaultAdminBearer = "admin"

// AdminBearer guards the TMDB admin proxy with a static shared secret.
type AdminBearer struct {
	expected []byte
	security *logging.SecurityLogger
}

// NewAdminBearer expects "Authorization: Bearer <secret>".
func NewAdminBearer(secret string) *AdminBearer {
	if secret == "" {
		secret = DefaultAdminBearer
	}
	return &AdminBearer{
		expected: []byte("Bearer " + secret),
		security: logging.NewSecurityLogger(),
	}
}

// Check reports whether the request carries the exact expected header.
func (a *AdminBearer) Check(r *http.Request) bool {
	return subtle.ConstantTimeCompare([]byte(r.Header.Get("Authorization")), a.expected) == 1
}

// Middleware rejects requests failing Check with 401.
func (a *AdminBearer) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.Check(r) {
			a.security.LogAdminBearerRejected(ClientIP(r), r.URL.Path)
			writeErrorEnvelope(w, r, http.StatusUnauthorized, models.ErrCodeAuthRequired, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}
