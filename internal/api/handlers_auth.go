// Reelview - Movie Reviews and Catalog Curation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelview

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/tomtom215/reelview/internal/audit"
	"github.com/tomtom215/reelview/internal/auth"
	"github.com/tomtom215/reelview/internal/database"
	"github.com/tomtom215/reelview/internal/logging"
	"github.com/tomtom215/reelview/internal/metrics"
	"github.com/tomtom215/reelview/internal/models"
)

// RegisterResponse is returned by POST /api/auth/register.
type RegisterResponse struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

// errAlreadyConfirmed is returned when a verification email is requested for
// a confirmed account.
var errAlreadyConfirmed = errors.New("email already verified")

// Register handles POST /api/auth/register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.registerUser(r, req)
	if err != nil {
		var conflict *userConflict
		if errors.As(err, &conflict) {
			respondBadRequest(w, r, conflict.message)
			return
		}
		respondError(w, r, http.StatusInternalServerError, models.ErrCodeInternal, "Registration failed", err)
		return
	}
	respondSuccess(w, http.StatusCreated, RegisterResponse{
		ID:       user.ID,
		Email:    user.Email,
		Username: user.Username,
	}, time.Time{})
}

// registerUser creates an unconfirmed LOCAL account and mails its
// verification link. A mail failure does not fail the registration.
// Duplicate email or username yields a *userConflict.
func (h *Handler) registerUser(r *http.Request, req RegisterRequest) (*models.User, error) {
	ctx := r.Context()
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := h.userConflicts(r, "", &email, &req.Username); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	token, expiry, err := auth.NewVerificationToken(time.Now())
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Email:             email,
		Username:          req.Username,
		PasswordHash:      &hash,
		Role:              models.RoleUser,
		Provider:          models.ProviderLocal,
		VerificationToken: &token,
		TokenExpiry:       &expiry,
	}
	if err := h.db.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	metrics.RecordRegistration(string(models.ProviderLocal))
	h.security.LogRegistration(user.ID, user.Email, string(user.Provider), auth.ClientIP(r))

	// Delivery problems are already logged; the user can ask for a resend.
	_ = h.sendVerification(ctx, user.Email, token)
	return user, nil
}

// VerifyEmail handles GET /api/auth/verify?token=. On success it redirects
// to /verified with 303.
func (h *Handler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		respondBadRequest(w, r, "Token is required")
		return
	}

	user, err := h.db.GetUserByVerificationToken(r.Context(), token)
	if errors.Is(err, database.ErrNotFound) {
		h.security.LogEmailVerification("", false, "unknown token")
		respondBadRequest(w, r, "Invalid or expired token")
		return
	}
	if err != nil {
		respondDBError(w, r, err, "")
		return
	}
	if user.TokenExpiry == nil || time.Now().After(*user.TokenExpiry) {
		h.security.LogEmailVerification(user.ID, false, "expired token")
		respondBadRequest(w, r, "Invalid or expired token")
		return
	}

	if err := h.db.ConfirmUser(r.Context(), user.ID); err != nil {
		respondDBError(w, r, err, "User not found")
		return
	}
	h.security.LogEmailVerification(user.ID, true, "")

	if subject := auth.GetAuthSubject(r.Context()); subject != nil && subject.ID == user.ID {
		user.IsConfirmed = true
		if err := h.sessions.Refresh(w, r, auth.SubjectFromUser(user)); err != nil {
			logging.Ctx(r.Context()).Warn().Err(err).Msg("Failed to refresh session after verification")
		}
	}
	http.Redirect(w, r, "/verified", http.StatusSeeOther)
}

// ResendVerification handles POST /api/auth/resendVerification.
func (h *Handler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	subject, err := auth.RequireAuth(r.Context())
	if err != nil {
		auth.WriteGuardError(w, r, err)
		return
	}

	err = h.resendVerification(r.Context(), subject.ID)
	switch {
	case errors.Is(err, errAlreadyConfirmed):
		respondBadRequest(w, r, "Email already verified")
	case errors.Is(err, database.ErrNotFound):
		respondNotFound(w, r, "User not found")
	case err != nil:
		respondError(w, r, http.StatusInternalServerError, models.ErrCodeExternalService, "Failed to send verification email", err)
	default:
		respondOK(w, map[string]interface{}{"sent": true})
	}
}

func (h *Handler) resendVerification(ctx context.Context, userID string) error {
	user, err := h.db.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.IsConfirmed {
		return errAlreadyConfirmed
	}
	token, expiry, err := auth.NewVerificationToken(time.Now())
	if err != nil {
		return err
	}
	if err := h.db.SetVerificationToken(ctx, user.ID, token, expiry); err != nil {
		return err
	}
	if err := h.sendVerification(ctx, user.Email, token); err != nil {
		return fmt.Errorf("failed to send verification email: %w", err)
	}
	return nil
}

// Login handles POST /api/auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	subject, err := h.signIn(w, r, req.Email, req.Password)
	switch {
	case errors.Is(err, auth.ErrMissingCredentials):
		respondBadRequest(w, r, "Email and password are required")
	case errors.Is(err, auth.ErrInvalidCredentials):
		respondError(w, r, http.StatusUnauthorized, models.ErrCodeAuthRequired, "Invalid email or password", nil)
	case errors.Is(err, auth.ErrEmailNotConfirmed):
		respondForbidden(w, r, "Please confirm your email before signing in")
	case err != nil:
		respondError(w, r, http.StatusInternalServerError, models.ErrCodeInternal, "Login failed", err)
	default:
		respondOK(w, subject)
	}
}

// signIn checks credentials and issues the session cookie.
func (h *Handler) signIn(w http.ResponseWriter, r *http.Request, email, password string) (*auth.AuthSubject, error) {
	ip := auth.ClientIP(r)
	provider := string(models.ProviderLocal)

	user, err := h.authenticator.Login(r.Context(), email, password)
	if err != nil {
		h.security.LogLoginFailure(email, provider, ip, err.Error())
		if !errors.Is(err, auth.ErrMissingCredentials) {
			h.audit.Record(r, &audit.Event{
				Type:        audit.EventTypeLoginFailure,
				Severity:    audit.SeverityWarning,
				Outcome:     audit.OutcomeFailure,
				Actor:       audit.Actor{Name: strings.ToLower(strings.TrimSpace(email))},
				Description: err.Error(),
			})
		}
		return nil, err
	}
	subject := auth.SubjectFromUser(user)
	if err := h.sessions.Issue(w, r, subject); err != nil {
		return nil, fmt.Errorf("failed to issue session: %w", err)
	}
	h.security.LogLoginSuccess(user.ID, user.Email, provider, ip)
	h.audit.Record(r, &audit.Event{
		Type:  audit.EventTypeLoginSuccess,
		Actor: audit.Actor{ID: user.ID, Name: user.Username, Role: string(user.Role)},
	})
	return subject, nil
}

// Logout handles POST /api/auth/logout.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.signOut(w, r)
	respondOK(w, map[string]interface{}{"loggedOut": true})
}

func (h *Handler) signOut(w http.ResponseWriter, r *http.Request) {
	if subject := auth.GetAuthSubject(r.Context()); subject != nil {
		h.security.LogLogout(subject.ID, auth.ClientIP(r))
	}
	if err := h.sessions.Destroy(w, r); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Failed to destroy session")
	}
}

// Session handles GET /api/auth/session: the session user, or null.
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	respondOK(w, auth.GetAuthSubject(r.Context()))
}
