// Reelview - Movie Reviews and Catalog Curation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelview

package auth

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/tomtom215/reelview/internal/cache"
	"github.com/tomtom215/reelview/internal/logging"
)

// SessionStrategy selects how sessions are carried.
type SessionStrategy string

const (
	// StrategyJWT keeps the whole session in a signed cookie.
	StrategyJWT SessionStrategy = "jwt"

	// StrategyStore keeps an opaque ID in the cookie and the session server-side.
	StrategyStore SessionStrategy = "store"
)

// DefaultSessionCookieName is the cookie carrying the session.
const DefaultSessionCookieName = "reelview_session"

// revocationCapacity bounds the jwt revocation list. An entry outlives every
// token it can reject, since it is kept for MaxAge.
const revocationCapacity = 10000

// SessionManagerConfig holds configuration for the session manager.
type SessionManagerConfig struct {
	Strategy   SessionStrategy
	CookieName string
	MaxAge     time.Duration

	// CookieSecure sets the Secure flag on the cookie.
	CookieSecure bool
}

// SessionManager issues, resolves and destroys sessions.
type SessionManager struct {
	config SessionManagerConfig
	codec  *JWTSessionCodec
	store  SessionStore

	// revoked maps a user ID to the time RevokeUser ran (jwt strategy).
	revoked *cache.Cache[time.Time]
}

// NewSessionManager creates a session manager. The jwt strategy needs codec,
// the store strategy needs store.
func NewSessionManager(cfg SessionManagerConfig, codec *JWTSessionCodec, store SessionStore) (*SessionManager, error) {
	if cfg.CookieName == "" {
		cfg.CookieName = DefaultSessionCookieName
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = 30 * 24 * time.Hour
	}

	switch cfg.Strategy {
	case StrategyJWT, "":
		cfg.Strategy = StrategyJWT
		if codec == nil {
			return nil, errors.New("jwt session strategy requires a codec")
		}
	case StrategyStore:
		if store == nil {
			return nil, errors.New("store session strategy requires a session store")
		}
	default:
		return nil, fmt.Errorf("unknown session strategy %q", cfg.Strategy)
	}

	m := &SessionManager{config: cfg, codec: codec, store: store}
	if cfg.Strategy == StrategyJWT {
		m.revoked = cache.New[time.Time]("session_revocations", cfg.MaxAge, revocationCapacity)
	}
	return m, nil
}

// Strategy returns the active session strategy.
func (m *SessionManager) Strategy() SessionStrategy {
	return m.config.Strategy
}

// Store returns the backing session store, or nil for the jwt strategy.
func (m *SessionManager) Store() SessionStore {
	if m.config.Strategy != StrategyStore {
		return nil
	}
	return m.store
}

// CookieName returns the configured session cookie name.
func (m *SessionManager) CookieName() string {
	return m.config.CookieName
}

// Authenticate resolves the session cookie and places the AuthSubject in the
// request context. Requests without a valid session continue anonymously;
// the guards decide whether that is acceptable.
func (m *SessionManager) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject := m.resolve(r)
		if subject == nil {
			next.ServeHTTP(w, r)
			return
		}
		ctx := logging.ContextWithUserID(ContextWithSubject(r.Context(), subject), subject.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// resolve returns the subject for the request's session cookie, or nil.
func (m *SessionManager) resolve(r *http.Request) *AuthSubject {
	cookie, err := r.Cookie(m.config.CookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}

	if m.config.Strategy == StrategyJWT {
		subject, err := m.codec.Decode(cookie.Value)
		if err != nil {
			logging.Ctx(r.Context()).Debug().Err(err).Msg("Rejected session token")
			return nil
		}
		if m.isRevoked(subject) {
			logging.Ctx(r.Context()).Debug().Str("user_id", subject.ID).Msg("Rejected revoked session token")
			return nil
		}
		return subject
	}

	session, err := m.store.Get(r.Context(), cookie.Value)
	if err != nil {
		if !errors.Is(err, ErrSessionNotFound) && !errors.Is(err, ErrSessionExpired) {
			logging.Ctx(r.Context()).Error().Err(err).Msg("Session lookup error")
		}
		return nil
	}

	newExpiry := time.Now().Add(m.config.MaxAge)
	if err := m.store.Touch(r.Context(), session.ID, newExpiry); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to touch session")
	} else {
		session.ExpiresAt = newExpiry
	}
	return session.ToAuthSubject()
}

// Issue starts a session for subject and sets the cookie. Any session the
// request already carries is discarded first.
func (m *SessionManager) Issue(w http.ResponseWriter, r *http.Request, subject *AuthSubject) error {
	if m.config.Strategy == StrategyJWT {
		token, err := m.codec.Encode(subject)
		if err != nil {
			return err
		}
		m.setCookie(w, token)
		return nil
	}

	if cookie, err := r.Cookie(m.config.CookieName); err == nil && cookie.Value != "" {
		if err := m.store.Delete(r.Context(), cookie.Value); err != nil {
			logging.Ctx(r.Context()).Warn().Err(err).Msg("Failed to delete previous session")
		}
	}

	session, err := NewSession(subject, m.config.MaxAge)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	if err := m.store.Create(r.Context(), session); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	subject.SessionID = session.ID
	subject.ExpiresAt = session.ExpiresAt.Unix()
	m.setCookie(w, session.ID)
	return nil
}

// Refresh re-issues the session with updated subject data, for example after
// a profile change or an email confirmation.
func (m *SessionManager) Refresh(w http.ResponseWriter, r *http.Request, subject *AuthSubject) error {
	return m.Issue(w, r, subject)
}

// Destroy ends the request's session and clears the cookie.
func (m *SessionManager) Destroy(w http.ResponseWriter, r *http.Request) error {
	defer m.clearCookie(w)

	if m.config.Strategy != StrategyStore {
		return nil
	}
	cookie, err := r.Cookie(m.config.CookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}
	return m.store.Delete(r.Context(), cookie.Value)
}

// RevokeUser signs userID out everywhere. Stored sessions are deleted; for
// the jwt strategy every token signed up to now is rejected from here on.
// The jwt revocation list lives in memory, so a restart forgets it.
func (m *SessionManager) RevokeUser(r *http.Request, userID string) {
	if m.config.Strategy != StrategyStore {
		m.revoked.Set(userID, time.Now())
		logging.Ctx(r.Context()).Debug().Str("user_id", userID).Msg("Revoked session tokens")
		return
	}
	n, err := m.store.DeleteByUserID(r.Context(), userID)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Str("user_id", userID).Msg("Failed to revoke sessions")
		return
	}
	logging.Ctx(r.Context()).Debug().Int("count", n).Str("user_id", userID).Msg("Revoked sessions")
}

// isRevoked reports whether a jwt subject was signed no later than the last
// RevokeUser for its user. Token times have one-second resolution, so a
// token signed in the same second as the revocation is rejected too.
func (m *SessionManager) isRevoked(subject *AuthSubject) bool {
	at, ok := m.revoked.Get(subject.ID)
	return ok && subject.IssuedAt <= at.Unix()
}

func (m *SessionManager) setCookie(w http.ResponseWriter, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.config.CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(m.config.MaxAge.Seconds()),
		Secure:   m.config.CookieSecure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (m *SessionManager) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.config.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Secure:   m.config.CookieSecure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
