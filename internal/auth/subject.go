// Reelview - Movie Reviews and Catalog Curation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelview

package auth

import (
	"context"
	"errors"
	"time"

	"github.com/tomtom215/reelview/internal/models"
)

// Standard authentication errors
var (
	// ErrInvalidCredentials is returned for an unknown email, a wrong
	// password, or an account without a password (Google-only accounts).
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrEmailNotConfirmed is returned when the password matches but the
	// address has not been verified yet.
	ErrEmailNotConfirmed = errors.New("email not confirmed")

	// ErrMissingCredentials is returned when email or password is empty.
	ErrMissingCredentials = errors.New("email and password are required")
)

type contextKey string

// AuthSubjectContextKey holds the *AuthSubject of the current request.
const AuthSubjectContextKey contextKey = "auth_subject"

// AuthSubject is the signed-in user as carried by the session.
type AuthSubject struct {
	ID          string          `json:"id"`
	Email       string          `json:"email"`
	Username    string          `json:"username"`
	Role        models.Role     `json:"role"`
	Provider    models.Provider `json:"provider"`
	IsConfirmed bool            `json:"isConfirmed"`

	// SessionID is set for store-backed sessions only.
	SessionID string `json:"-"`

	// ExpiresAt is the session expiry as a Unix timestamp.
	ExpiresAt int64 `json:"-"`

	// IssuedAt is when a jwt session was signed, as a Unix timestamp.
	IssuedAt int64 `json:"-"`
}

// SubjectFromUser builds the session subject for u.
func SubjectFromUser(u *models.User) *AuthSubject {
	return &AuthSubject{
		ID:          u.ID,
		Email:       u.Email,
		Username:    u.Username,
		Role:        u.Role,
		Provider:    u.Provider,
		IsConfirmed: u.IsConfirmed,
	}
}

// IsAdmin reports whether the subject has the ADMIN role.
func (s *AuthSubject) IsAdmin() bool {
	return s != nil && s.Role == models.RoleAdmin
}

// HasRole checks if the subject has a specific role.
func (s *AuthSubject) HasRole(role string) bool {
	if s == nil || role == "" {
		return false
	}
	return string(s.Role) == role
}

// IsExpired checks if the session has expired.
func (s *AuthSubject) IsExpired() bool {
	if s.ExpiresAt == 0 {
		return false
	}
	return time.Now().Unix() > s.ExpiresAt
}

// ContextWithSubject returns a copy of ctx carrying subject.
func ContextWithSubject(ctx context.Context, subject *AuthSubject) context.Context {
	return context.WithValue(ctx, AuthSubjectContextKey, subject)
}

// GetAuthSubject returns the subject stored in ctx, or nil for anonymous
// requests.
func GetAuthSubject(ctx context.Context) *AuthSubject {
	subject, _ := ctx.Value(AuthSubjectContextKey).(*AuthSubject)
	return subject
}
