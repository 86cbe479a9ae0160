// Reelview - Movie Reviews and Catalog Curation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelview

package api

import (
	"errors"
	"net/http"

	"github.com/tomtom215/reelview/internal/auth"
	"github.com/tomtom215/reelview/internal/database"
	"github.com/tomtom215/reelview/internal/logging"
	"github.com/tomtom215/reelview/internal/models"
	"github.com/tomtom215/reelview/internal/validation"
	"github.com/tomtom215/reelview/internal/views"
)

// LoginPage handles GET /login. Signed-in visitors go home.
func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	if auth.GetAuthSubject(r.Context()) != nil {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	h.render(w, r, http.StatusOK, views.PageLogin, views.NewPage(r, "Connexion", views.FormData{}))
}

// LoginForm handles POST /login.
func (h *Handler) LoginForm(w http.ResponseWriter, r *http.Request) {
	form := formValues(r, "email")
	_, err := h.signIn(w, r, r.PostFormValue("email"), r.PostFormValue("password"))
	if err == nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	status, msg := http.StatusInternalServerError, "La connexion a échoué. Réessayez plus tard."
	switch {
	case errors.Is(err, auth.ErrMissingCredentials):
		status, msg = http.StatusBadRequest, "Email et mot de passe requis."
	case errors.Is(err, auth.ErrInvalidCredentials):
		status, msg = http.StatusUnauthorized, "Email ou mot de passe incorrect."
	case errors.Is(err, auth.ErrEmailNotConfirmed):
		status, msg = http.StatusForbidden, "Confirmez votre adresse email avant de vous connecter."
	default:
		logging.Ctx(r.Context()).Error().Err(err).Msg("Login failed")
	}
	h.render(w, r, status, views.PageLogin, views.NewPage(r, "Connexion", form).WithError(msg))
}

// RegisterPage handles GET /register.
func (h *Handler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	if auth.GetAuthSubject(r.Context()) != nil {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	h.render(w, r, http.StatusOK, views.PageRegister, views.NewPage(r, "Inscription", views.FormData{}))
}

// RegisterForm handles POST /register. The new account is signed in
// unconfirmed so it can ask for another verification email.
func (h *Handler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	form := formValues(r, "email", "username")
	fail := func(status int, msg string) {
		h.render(w, r, status, views.PageRegister, views.NewPage(r, "Inscription", form).WithError(msg))
	}

	req := RegisterRequest{
		Email:           form.Value("email"),
		Username:        form.Value("username"),
		Password:        r.PostFormValue("password"),
		ConfirmPassword: r.PostFormValue("confirmPassword"),
	}
	if req.Password != req.ConfirmPassword {
		fail(http.StatusBadRequest, "Les mots de passe ne correspondent pas.")
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		fail(http.StatusBadRequest, verr.Error())
		return
	}

	user, err := h.registerUser(r, req)
	if err != nil {
		var conflict *userConflict
		if errors.As(err, &conflict) {
			fail(http.StatusBadRequest, conflict.message)
			return
		}
		logging.Ctx(r.Context()).Error().Err(err).Msg("Registration failed")
		fail(http.StatusInternalServerError, "L'inscription a échoué. Réessayez plus tard.")
		return
	}

	if err := h.sessions.Issue(w, r, auth.SubjectFromUser(user)); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Failed to sign in new account")
		redirectFlash(w, r, "/login", views.FlashRegistered)
		return
	}
	redirectFlash(w, r, "/verify", views.FlashRegistered)
}

// LogoutForm handles POST /logout.
func (h *Handler) LogoutForm(w http.ResponseWriter, r *http.Request) {
	h.signOut(w, r)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// VerifyPage handles GET /verify.
func (h *Handler) VerifyPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, views.PageVerify, views.NewPage(r, "Confirmez votre email", nil))
}

// VerifyForm handles POST /verify: a new verification email.
func (h *Handler) VerifyForm(w http.ResponseWriter, r *http.Request) {
	subject := auth.GetAuthSubject(r.Context())
	if subject == nil {
		redirectToLogin(w, r)
		return
	}

	err := h.resendVerification(r.Context(), subject.ID)
	switch {
	case errors.Is(err, errAlreadyConfirmed):
		http.Redirect(w, r, "/verified", http.StatusSeeOther)
	case errors.Is(err, database.ErrNotFound):
		h.renderMessage(w, r, http.StatusNotFound, "Compte introuvable.")
	case err != nil:
		page := views.NewPage(r, "Confirmez votre email", nil).WithError("L'email n'a pas pu être envoyé. Réessayez plus tard.")
		h.render(w, r, http.StatusBadGateway, views.PageVerify, page)
	default:
		redirectFlash(w, r, "/verify", views.FlashVerifySent)
	}
}

// VerifiedPage handles GET /verified.
func (h *Handler) VerifiedPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, views.PageVerified, views.NewPage(r, "Email confirmé", nil))
}

// ProfilePage handles GET /profile.
func (h *Handler) ProfilePage(w http.ResponseWriter, r *http.Request) {
	subject := auth.GetAuthSubject(r.Context())
	if subject == nil {
		redirectToLogin(w, r)
		return
	}
	h.renderProfile(w, r, http.StatusOK, subject.ID, "")
}

func (h *Handler) renderProfile(w http.ResponseWriter, r *http.Request, status int, userID, errMsg string) {
	user, err := h.db.GetUserByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			h.renderMessage(w, r, http.StatusNotFound, "Compte introuvable.")
			return
		}
		h.renderServerError(w, r, err)
		return
	}
	list, err := h.db.UserReviews(r.Context(), userID)
	if err != nil {
		h.renderServerError(w, r, err)
		return
	}
	page := views.NewPage(r, "Mon profil", views.ProfileData{
		Profile: &models.UserProfile{User: *user, Reviews: list},
	})
	h.render(w, r, status, views.PageProfile, page.WithError(errMsg))
}

// ProfileForm handles POST /profile. Blank fields are left unchanged.
func (h *Handler) ProfileForm(w http.ResponseWriter, r *http.Request) {
	subject := auth.GetAuthSubject(r.Context())
	if subject == nil {
		redirectToLogin(w, r)
		return
	}

	form := formValues(r, "username", "email")
	req := UpdateUserRequest{
		Username: optionalString(form.Value("username")),
		Email:    optionalString(form.Value("email")),
		Password: optionalString(r.PostFormValue("password")),
	}
	if req.Username != nil && *req.Username == subject.Username {
		req.Username = nil
	}
	if req.Email != nil && *req.Email == subject.Email {
		req.Email = nil
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		h.renderProfile(w, r, http.StatusBadRequest, subject.ID, verr.Error())
		return
	}

	_, err := h.applyUserUpdate(w, r, subject, subject.ID, req)
	var conflict *userConflict
	switch {
	case err == nil, errors.Is(err, errNothingToUpdate):
		redirectFlash(w, r, "/profile", views.FlashProfileSaved)
	case errors.As(err, &conflict):
		h.renderProfile(w, r, http.StatusConflict, subject.ID, conflict.message)
	default:
		h.renderServerError(w, r, err)
	}
}

// FavoritesPage handles GET /favorites.
func (h *Handler) FavoritesPage(w http.ResponseWriter, r *http.Request) {
	subject := auth.GetAuthSubject(r.Context())
	if subject == nil {
		redirectToLogin(w, r)
		return
	}
	movies, err := h.db.ListFavoriteMovies(r.Context(), subject.ID)
	if err != nil {
		h.renderServerError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, views.PageFavorites, views.NewPage(r, "Mes favoris", views.FavoritesData{Movies: movies}))
}
