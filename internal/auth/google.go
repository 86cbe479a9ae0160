// Reelview - Movie Reviews and Catalog Curation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelview

package auth

import (
	"context"
	"crypto/sha256"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/zitadel/oidc/v3/pkg/client/rp"
	httphelper "github.com/zitadel/oidc/v3/pkg/http"
	"github.com/zitadel/oidc/v3/pkg/oidc"

	"github.com/tomtom215/reelview/internal/logging"
	"github.com/tomtom215/reelview/internal/metrics"
	"github.com/tomtom215/reelview/internal/models"
)

// DefaultGoogleIssuer is Google's OpenID Connect issuer.
const DefaultGoogleIssuer = "https://accounts.google.com"

// GoogleCallbackPath is where Google redirects after consent.
const GoogleCallbackPath = "/api/auth/google/callback"

var googleScopes = []string{oidc.ScopeOpenID, oidc.ScopeEmail, oidc.ScopeProfile}

// GoogleConfig configures the Google sign-in flow.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	IssuerURL    string

	// BaseURL is the public origin of the application; the redirect URL is
	// BaseURL + GoogleCallbackPath.
	BaseURL string

	// CookieSecret seeds the keys of the state and PKCE cookies.
	CookieSecret string
	CookieSecure bool

	// HTTPClient is used for discovery and token exchange. Optional.
	HTTPClient *http.Client
}

// GoogleFlow runs the authorization code flow with PKCE against Google.
type GoogleFlow struct {
	rp       rp.RelyingParty
	auth     *Authenticator
	sessions *SessionManager
	security *logging.SecurityLogger
}

// NewGoogleFlow discovers the issuer and builds the relying party.
func NewGoogleFlow(ctx context.Context, cfg GoogleConfig, authenticator *Authenticator, sessions *SessionManager) (*GoogleFlow, error) {
	if cfg.ClientID == "" {
		return nil, fmt.Errorf("google client id is required")
	}
	if cfg.IssuerURL == "" {
		cfg.IssuerURL = DefaultGoogleIssuer
	}

	hashKey := sha256.Sum256([]byte("reelview-oidc-hash:" + cfg.CookieSecret))
	encryptKey := sha256.Sum256([]byte("reelview-oidc-enc:" + cfg.CookieSecret))
	var cookieOpts []httphelper.CookieHandlerOpt
	if !cfg.CookieSecure {
		cookieOpts = append(cookieOpts, httphelper.WithUnsecure())
	}
	cookieHandler := httphelper.NewCookieHandler(hashKey[:], encryptKey[:], cookieOpts...)

	options := []rp.Option{
		rp.WithCookieHandler(cookieHandler),
		rp.WithPKCE(cookieHandler),
	}
	if cfg.HTTPClient != nil {
		options = append(options, rp.WithHTTPClient(cfg.HTTPClient))
	}

	redirectURL := strings.TrimRight(cfg.BaseURL, "/") + GoogleCallbackPath
	relyingParty, err := rp.NewRelyingPartyOIDC(ctx,
		cfg.IssuerURL,
		cfg.ClientID,
		cfg.ClientSecret,
		redirectURL,
		googleScopes,
		options...,
	)
	if err != nil {
		return nil, fmt.Errorf("create relying party: %w", err)
	}

	return &GoogleFlow{
		rp:       relyingParty,
		auth:     authenticator,
		sessions: sessions,
		security: logging.NewSecurityLogger(),
	}, nil
}

// LoginHandler redirects the browser to Google's consent screen.
func (f *GoogleFlow) LoginHandler() http.HandlerFunc {
	return rp.AuthURLHandler(func() string { return uuid.New().String() }, f.rp)
}

// CallbackHandler completes the code exchange, signs the user in and
// redirects to the home page.
func (f *GoogleFlow) CallbackHandler() http.HandlerFunc {
	return rp.CodeExchangeHandler(f.onTokens, f.rp)
}

func (f *GoogleFlow) onTokens(w http.ResponseWriter, r *http.Request, tokens *oidc.Tokens[*oidc.IDTokenClaims], _ string, _ rp.RelyingParty) {
	ip := ClientIP(r)
	claims := tokens.IDTokenClaims
	if claims == nil {
		f.security.LogLoginFailure("", string(models.ProviderGoogle), ip, "missing id token")
		http.Redirect(w, r, "/login?error=google", http.StatusFound)
		return
	}

	profile := GoogleProfile{
		Subject: claims.Subject,
		Email:   claims.Email,
		Name:    claims.Name,
	}
	user, created, err := f.auth.ResolveGoogleUser(r.Context(), profile)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Google sign-in failed")
		f.security.LogLoginFailure(profile.Email, string(models.ProviderGoogle), ip, "provisioning failed")
		http.Redirect(w, r, "/login?error=google", http.StatusFound)
		return
	}
	if created {
		f.security.LogRegistration(user.ID, user.Email, string(user.Provider), ip)
	}

	if err := f.sessions.Issue(w, r, SubjectFromUser(user)); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to issue session")
		http.Redirect(w, r, "/login?error=google", http.StatusFound)
		return
	}
	metrics.RecordLoginAttempt(string(models.ProviderGoogle), true)
	f.security.LogLoginSuccess(user.ID, user.Email, string(models.ProviderGoogle), ip)
	http.Redirect(w, r, "/", http.StatusFound)
}

// ClientIP returns the host part of the request's remote address.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
