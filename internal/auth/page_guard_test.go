// Reelview - Movie Reviews and Catalog Curation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelview

package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClassifyPage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want PageAccess
	}{
		{"/", PagePublic},
		{"/login", PagePublic},
		{"/register", PagePublic},
		{"/movies", PagePublic},
		{"/movies/42", PagePublic},
		{"/verify", PagePublic},
		{"/verified", PagePublic},
		{"/api/auth/session", PagePublic},
		{"/api/movies/42", PagePublic},
		{"/admin", PageAdmin},
		{"/admin/users", PageAdmin},
		{"/favorites", PageSession},
		{"/profile", PageSession},
		{"/moviesx", PageSession},
		{"/dashboard", PageSession},
		{"/administrator", PageSession},
	}
	for _, tt := range tests {
		if got := ClassifyPage(tt.path); got != tt.want {
			t.Errorf("ClassifyPage(%q) = %d, want %d", tt.path, got, tt.want)
		}
	}
}

func TestPageGuard(t *testing.T) {
	t.Parallel()

	h := PageGuard(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name     string
		path     string
		subject  *AuthSubject
		want     int
		location string
	}{
		{"public anonymous", "/movies", nil, http.StatusOK, ""},
		{"profile anonymous", "/profile", nil, http.StatusFound, "/login"},
		{"profile signed in", "/profile", testSubject(), http.StatusOK, ""},
		{"favorites unconfirmed", "/favorites", unconfirmed(), http.StatusOK, ""},
		{"admin anonymous", "/admin", nil, http.StatusFound, "/"},
		{"admin as user", "/admin/movies", testSubject(), http.StatusFound, "/"},
		{"admin as admin", "/admin/movies", admin(), http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodGet, tt.path, nil).WithContext(ctxWith(tt.subject))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
			if loc := rec.Header().Get("Location"); loc != tt.location {
				t.Errorf("Location = %q, want %q", loc, tt.location)
			}
		})
	}
}
