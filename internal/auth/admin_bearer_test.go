// Reelview - Movie Reviews and Catalog Curation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelview

package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestAdminBearer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		secret string
		header string
		want   int
	}{
		{"default secret", "", "Bearer admin", http.StatusOK},
		{"configured secret", "s3cret", "Bearer s3cret", http.StatusOK},
		{"default rejected when configured", "s3cret", "Bearer admin", http.StatusUnauthorized},
		{"missing header", "s3cret", "", http.StatusUnauthorized},
		{"wrong scheme", "s3cret", "Basic s3cret", http.StatusUnauthorized},
		{"lowercase scheme", "s3cret", "bearer s3cret", http.StatusUnauthorized},
		{"trailing space", "s3cret", "Bearer s3cret ", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h := NewAdminBearer(tt.secret).Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))
			req := httptest.NewRequest(http.MethodGet, "/api/admin/tmdb/search?q=alien", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
			if tt.want == http.StatusUnauthorized && !strings.Contains(rec.Body.String(), `"Unauthorized"`) {
				t.Errorf("body = %s", rec.Body.String())
			}
		})
	}
}
