// Reelview - Movie Reviews and Catalog Curation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelview

package auth

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func csrfHandler() (http.Handler, *string) {
	var seen string
	h := NewCSRFMiddleware(nil).Protect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = CSRFToken(r.Context())
		w.WriteHeader(http.StatusOK)
	}))
	return h, &seen
}

func TestCSRF_IssuesTokenOnSafeRequest(t *testing.T) {
	t.Parallel()

	h, seen := csrfHandler()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/login", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != "_csrf" {
		t.Fatalf("cookies = %+v", cookies)
	}
	if *seen == "" || *seen != cookies[0].Value {
		t.Errorf("context token %q does not match cookie %q", *seen, cookies[0].Value)
	}

	// An existing cookie is reused.
	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if len(rec.Result().Cookies()) != 0 {
		t.Error("existing token should not be reissued")
	}
	if *seen != cookies[0].Value {
		t.Error("existing token should be exposed to handlers")
	}
}

func TestCSRF_FormPosts(t *testing.T) {
	t.Parallel()

	const token = "known-token"
	tests := []struct {
		name      string
		cookie    string
		formToken string
		header    string
		want      int
	}{
		{"matching form field", token, token, "", http.StatusOK},
		{"matching header", token, "", token, http.StatusOK},
		{"no cookie", "", token, "", http.StatusForbidden},
		{"no submitted token", token, "", "", http.StatusForbidden},
		{"mismatch", token, "forged", "", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h, _ := csrfHandler()

			form := url.Values{"comment": {"great"}}
			if tt.formToken != "" {
				form.Set("csrf_token", tt.formToken)
			}
			req := httptest.NewRequest(http.MethodPost, "/movies/1/reviews", strings.NewReader(form.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "_csrf", Value: tt.cookie})
			}
			if tt.header != "" {
				req.Header.Set("X-CSRF-Token", tt.header)
			}

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestCSRF_JSONAndExemptRequests(t *testing.T) {
	t.Parallel()

	h, _ := csrfHandler()
	req := httptest.NewRequest(http.MethodPost, "/api/reviews", strings.NewReader(`{"movieId":"m1"}`))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("JSON request status = %d, want 200", rec.Code)
	}

	exempt := NewCSRFMiddleware(&CSRFConfig{ExemptPaths: []string{"/api/admin/"}}).Protect(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }))
	rec = httptest.NewRecorder()
	exempt.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/admin/tmdb/search", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("exempt path status = %d, want 200", rec.Code)
	}
}
