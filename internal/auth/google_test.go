// Reelview - Movie Reviews and Catalog Curation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelview

package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/goccy/go-json"
)

// newDiscoveryServer serves a minimal OpenID provider configuration.
func newDiscoveryServer(t *testing.T) *httptest.Server {
	t.Helper()
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/.well-known/openid-configuration" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"issuer":                 srv.URL,
			"authorization_endpoint": srv.URL + "/authorize",
			"token_endpoint":         srv.URL + "/token",
			"userinfo_endpoint":      srv.URL + "/userinfo",
			"jwks_uri":               srv.URL + "/keys",
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNewGoogleFlow_RequiresClientID(t *testing.T) {
	t.Parallel()

	_, err := NewGoogleFlow(context.Background(), GoogleConfig{}, NewAuthenticator(newFakeUsers()), newJWTManager(t))
	if err == nil {
		t.Error("missing client id should fail")
	}
}

func TestGoogleFlow_LoginRedirect(t *testing.T) {
	t.Parallel()

	srv := newDiscoveryServer(t)
	flow, err := NewGoogleFlow(context.Background(), GoogleConfig{
		ClientID:     "client-123",
		ClientSecret: "shh",
		IssuerURL:    srv.URL,
		BaseURL:      "http://localhost:3000/",
		CookieSecret: testSecret,
	}, NewAuthenticator(newFakeUsers()), newJWTManager(t))
	if err != nil {
		t.Fatalf("NewGoogleFlow: %v", err)
	}

	rec := httptest.NewRecorder()
	flow.LoginHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/auth/google/login", nil))

	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}
	loc, err := url.Parse(rec.Header().Get("Location"))
	if err != nil {
		t.Fatalf("parse Location: %v", err)
	}
	if !strings.HasPrefix(loc.String(), srv.URL+"/authorize") {
		t.Errorf("Location = %s", loc)
	}

	q := loc.Query()
	if q.Get("client_id") != "client-123" {
		t.Errorf("client_id = %q", q.Get("client_id"))
	}
	if q.Get("redirect_uri") != "http://localhost:3000"+GoogleCallbackPath {
		t.Errorf("redirect_uri = %q", q.Get("redirect_uri"))
	}
	for _, scope := range []string{"openid", "email", "profile"} {
		if !strings.Contains(q.Get("scope"), scope) {
			t.Errorf("scope %q missing from %q", scope, q.Get("scope"))
		}
	}
	if q.Get("state") == "" {
		t.Error("state parameter missing")
	}
	if q.Get("code_challenge") == "" {
		t.Error("PKCE challenge missing")
	}
	if len(rec.Result().Cookies()) == 0 {
		t.Error("state cookie not set")
	}
}

func TestClientIP(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.7:5123"
	if got := ClientIP(req); got != "203.0.113.7" {
		t.Errorf("ClientIP = %q", got)
	}
	req.RemoteAddr = "203.0.113.7"
	if got := ClientIP(req); got != "203.0.113.7" {
		t.Errorf("ClientIP without port = %q", got)
	}
}
