// Reelview - Movie Reviews and Catalog Curation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelview

package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/tomtom215/reelview/internal/audit"
	"github.com/tomtom215/reelview/internal/auth"
	"github.com/tomtom215/reelview/internal/logging"
	"github.com/tomtom215/reelview/internal/metrics"
	"github.com/tomtom215/reelview/internal/models"
)

// UserResponse is the account block returned after a create or update.
type UserResponse struct {
	ID       string      `json:"id"`
	Email    string      `json:"email"`
	Username string      `json:"username"`
	Role     models.Role `json:"role"`
}

func userResponse(u *models.User) UserResponse {
	return UserResponse{ID: u.ID, Email: u.Email, Username: u.Username, Role: u.Role}
}

// userConflict carries the message shown for a duplicate email or username.
type userConflict struct {
	message string
}

func (c *userConflict) Error() string {
	return c.message
}

var (
	errRoleChangeForbidden = errors.New("only administrators can change roles")
	errNothingToUpdate     = errors.New("nothing to update")
)

// ListUsers handles GET /api/users.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if _, err := auth.RequireAdmin(r.Context()); err != nil {
		auth.WriteGuardError(w, r, err)
		return
	}
	users, err := h.db.ListUsers(r.Context())
	if err != nil {
		respondDBError(w, r, err, "")
		return
	}
	respondSuccess(w, http.StatusOK, users, start)
}

// CreateUser handles POST /api/users. Accounts made by an administrator are
// confirmed immediately.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	if _, err := auth.RequireAdmin(r.Context()); err != nil {
		auth.WriteGuardError(w, r, err)
		return
	}

	var req CreateUserRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	user, err := h.createUser(r, req)
	if err != nil {
		h.respondUserError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusCreated, userResponse(user), time.Time{})
}

// createUser adds a confirmed LOCAL account for an administrator.
func (h *Handler) createUser(r *http.Request, req CreateUserRequest) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := h.userConflicts(r, "", &email, &req.Username); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	role := models.RoleUser
	if req.Role != "" {
		role = models.Role(req.Role)
	}
	user := &models.User{
		Email:        email,
		Username:     req.Username,
		PasswordHash: &hash,
		Role:         role,
		Provider:     models.ProviderLocal,
		IsConfirmed:  true,
	}
	if err := h.db.CreateUser(r.Context(), user); err != nil {
		return nil, err
	}
	metrics.RecordRegistration(string(models.ProviderLocal))
	logging.Ctx(r.Context()).Info().Str("user_id", user.ID).Str("role", string(role)).Msg("User created by admin")
	h.recordAudit(r, audit.EventTypeUserCreated, userTarget(user), "Role "+string(role))
	return user, nil
}

// GetUser handles GET /api/users/{id}: the account and its reviews, for the
// owner or an administrator.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := auth.CheckOwnership(r.Context(), id); err != nil {
		auth.WriteGuardError(w, r, err)
		return
	}
	h.writeProfile(w, r, id)
}

// GetMe handles GET /api/users/me.
func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	subject, err := auth.RequireAuth(r.Context())
	if err != nil {
		auth.WriteGuardError(w, r, err)
		return
	}
	h.writeProfile(w, r, subject.ID)
}

func (h *Handler) writeProfile(w http.ResponseWriter, r *http.Request, id string) {
	start := time.Now()
	user, err := h.db.GetUserByID(r.Context(), id)
	if err != nil {
		respondDBError(w, r, err, "User not found")
		return
	}
	reviews, err := h.db.UserReviews(r.Context(), id)
	if err != nil {
		respondDBError(w, r, err, "")
		return
	}
	respondSuccess(w, http.StatusOK, models.UserProfile{User: *user, Reviews: reviews}, start)
}

// UpdateUser handles PUT /api/users/{id}. Only administrators may change a
// role.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	ownership, err := auth.CheckOwnership(r.Context(), id)
	if err != nil {
		auth.WriteGuardError(w, r, err)
		return
	}
	h.updateUser(w, r, ownership.Subject, id)
}

// UpdateMe handles PUT /api/users/me.
func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	subject, err := auth.RequireAuth(r.Context())
	if err != nil {
		auth.WriteGuardError(w, r, err)
		return
	}
	h.updateUser(w, r, subject, subject.ID)
}

func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request, actor *auth.AuthSubject, id string) {
	var req UpdateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.dropBlank()
	if !validateRequest(w, &req) {
		return
	}
	user, err := h.applyUserUpdate(w, r, actor, id, req)
	if err != nil {
		h.respondUserError(w, r, err)
		return
	}
	respondOK(w, userResponse(user))
}

// applyUserUpdate changes account id on behalf of actor. When the actor
// edits their own account the session is re-issued so it carries the new
// username, email and role; other accounts lose their sessions on a role or
// password change.
func (h *Handler) applyUserUpdate(w http.ResponseWriter, r *http.Request, actor *auth.AuthSubject, id string, req UpdateUserRequest) (*models.User, error) {
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		req.Email = &email
	}
	if err := h.userConflicts(r, id, req.Email, req.Username); err != nil {
		return nil, err
	}

	upd := models.UserUpdate{Username: req.Username, Email: req.Email}
	if req.Role != nil {
		if !actor.IsAdmin() {
			return nil, errRoleChangeForbidden
		}
		role := models.Role(*req.Role)
		upd.Role = &role
	}
	if req.Password != nil {
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		upd.PasswordHash = &hash
	}
	if upd.Empty() {
		return nil, errNothingToUpdate
	}

	if err := h.db.UpdateUser(r.Context(), id, upd); err != nil {
		return nil, err
	}
	user, err := h.db.GetUserByID(r.Context(), id)
	if err != nil {
		return nil, err
	}

	if user.ID == actor.ID {
		if err := h.sessions.Refresh(w, r, auth.SubjectFromUser(user)); err != nil {
			logging.Ctx(r.Context()).Warn().Err(err).Msg("Failed to refresh session after profile update")
		}
	} else if upd.Role != nil || upd.PasswordHash != nil {
		h.sessions.RevokeUser(r, user.ID)
	}

	switch {
	case upd.Role != nil:
		h.recordAudit(r, audit.EventTypeRoleChanged, userTarget(user), "Role "+string(*upd.Role))
	case user.ID != actor.ID:
		h.recordAudit(r, audit.EventTypeUserUpdated, userTarget(user), "")
	}
	return user, nil
}

// respondUserError maps createUser and applyUserUpdate failures.
func (h *Handler) respondUserError(w http.ResponseWriter, r *http.Request, err error) {
	var conflict *userConflict
	switch {
	case errors.As(err, &conflict):
		respondError(w, r, http.StatusConflict, models.ErrCodeConflict, conflict.message, nil)
	case errors.Is(err, errRoleChangeForbidden):
		respondForbidden(w, r, "Only administrators can change roles")
	case errors.Is(err, errNothingToUpdate):
		respondBadRequest(w, r, "Nothing to update")
	default:
		respondDBError(w, r, err, "User not found")
	}
}

// DeleteUser handles DELETE /api/users/{id}. Administrators cannot delete
// their own account.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	subject, err := auth.RequireAdmin(r.Context())
	if err != nil {
		auth.WriteGuardError(w, r, err)
		return
	}
	id := r.PathValue("id")
	if id == subject.ID {
		respondBadRequest(w, r, "You cannot delete your own account")
		return
	}
	if err := h.db.DeleteUser(r.Context(), id); err != nil {
		respondDBError(w, r, err, "User not found")
		return
	}
	h.sessions.RevokeUser(r, id)
	logging.Ctx(r.Context()).Info().Str("user_id", id).Str("admin_id", subject.ID).Msg("User deleted")
	h.recordAudit(r, audit.EventTypeUserDeleted, &audit.Target{ID: id, Type: "user"}, "")
	respondOK(w, map[string]interface{}{"id": id, "deleted": true})
}

func userTarget(u *models.User) *audit.Target {
	return &audit.Target{ID: u.ID, Type: "user", Name: u.Username}
}

// userConflicts returns a *userConflict when email or username already
// belongs to an account other than excludeID. Nil values are skipped.
func (h *Handler) userConflicts(r *http.Request, excludeID string, email, username *string) error {
	if username != nil {
		taken, err := h.db.UsernameTaken(r.Context(), *username, excludeID)
		if err != nil {
			return err
		}
		if taken {
			return &userConflict{message: "Username already taken"}
		}
	}
	if email != nil {
		taken, err := h.db.EmailTaken(r.Context(), *email, excludeID)
		if err != nil {
			return err
		}
		if taken {
			return &userConflict{message: "Email already in use"}
		}
	}
	return nil
}
