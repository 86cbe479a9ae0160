// Reelview - Movie Reviews and Catalog Curation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelview

package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/tomtom215/reelview/internal/audit"
	"github.com/tomtom215/reelview/internal/auth"
	"github.com/tomtom215/reelview/internal/catalog"
	"github.com/tomtom215/reelview/internal/database"
	"github.com/tomtom215/reelview/internal/logging"
	"github.com/tomtom215/reelview/internal/models"
	"github.com/tomtom215/reelview/internal/tmdb"
	"github.com/tomtom215/reelview/internal/validation"
	"github.com/tomtom215/reelview/internal/views"
)

// Admin pages sit behind auth.PageGuard, which already requires the ADMIN
// role; form handlers still read the subject for self-checks.

// AdminDashboardPage handles GET /admin.
func (h *Handler) AdminDashboardPage(w http.ResponseWriter, r *http.Request) {
	movies, err := h.db.CountMovies(r.Context())
	if err != nil {
		h.renderServerError(w, r, err)
		return
	}
	users, err := h.db.ListUsers(r.Context())
	if err != nil {
		h.renderServerError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, views.PageAdminDashboard, views.NewPage(r, "Dashboard", views.AdminDashboardData{
		MovieCount:     movies,
		UserCount:      len(users),
		TMDBConfigured: h.tmdb != nil && h.tmdb.Configured(),
	}))
}

// AdminMoviesPage handles GET /admin/movies.
func (h *Handler) AdminMoviesPage(w http.ResponseWriter, r *http.Request) {
	movies, err := h.db.ListMovies(r.Context(), models.MovieFilter{Search: r.URL.Query().Get("search")})
	if err != nil {
		h.renderServerError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, views.PageAdminMovies, views.NewPage(r, "Films", views.AdminMoviesData{Movies: movies}))
}

// AdminMovieEditPage handles GET /admin/movies/{id}/edit.
func (h *Handler) AdminMovieEditPage(w http.ResponseWriter, r *http.Request) {
	h.renderMovieEdit(w, r, http.StatusOK, "")
}

func (h *Handler) renderMovieEdit(w http.ResponseWriter, r *http.Request, status int, errMsg string) {
	movie, err := h.db.GetMovieByID(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			h.renderMessage(w, r, http.StatusNotFound, "Ce film est introuvable.")
			return
		}
		h.renderServerError(w, r, err)
		return
	}
	page := views.NewPage(r, "Modifier "+movie.Title, views.AdminMovieEditData{Movie: movie})
	h.render(w, r, status, views.PageAdminMovieEdit, page.WithError(errMsg))
}

// AdminMovieEditForm handles POST /admin/movies/{id}/edit.
func (h *Handler) AdminMovieEditForm(w http.ResponseWriter, r *http.Request) {
	req := movieRequestFromForm(r)
	if req.Title == nil || *req.Title == "" {
		h.renderMovieEdit(w, r, http.StatusBadRequest, "Le titre est obligatoire.")
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		h.renderMovieEdit(w, r, http.StatusBadRequest, verr.Error())
		return
	}
	upd, err := req.toUpdate()
	if err != nil {
		h.renderMovieEdit(w, r, http.StatusBadRequest, err.Error())
		return
	}

	id := r.PathValue("id")
	err = h.db.UpdateMovie(r.Context(), id, upd)
	switch {
	case errors.Is(err, database.ErrNotFound):
		h.renderMessage(w, r, http.StatusNotFound, "Ce film est introuvable.")
	case err != nil:
		h.renderServerError(w, r, err)
	default:
		h.recordAudit(r, audit.EventTypeMovieUpdated, movieTarget(id, *req.Title), "")
		redirectFlash(w, r, "/admin/movies", views.FlashMovieSaved)
	}
}

// movieRequestFromForm reads the admin movie form. List fields are comma
// separated; a blank runtime leaves the stored one unchanged.
func movieRequestFromForm(r *http.Request) MovieRequest {
	field := func(name string) *string {
		v := strings.TrimSpace(r.PostFormValue(name))
		return &v
	}
	list := func(name string) *[]string {
		v := parseCommaSeparated(r.PostFormValue(name))
		return &v
	}
	req := MovieRequest{
		Title:       field("title"),
		Overview:    field("overview"),
		ReleaseDate: field("releaseDate"),
		PosterPath:  field("posterPath"),
		Director:    field("director"),
		Genres:      list("genres"),
		Producers:   list("producers"),
		Cast:        list("cast"),
	}
	if raw := strings.TrimSpace(r.PostFormValue("runtime")); raw != "" {
		runtime := parseIntParam(raw, -1)
		req.Runtime = &runtime
	}
	return req
}

// AdminMovieDeleteForm handles POST /admin/movies/{id}/delete.
func (h *Handler) AdminMovieDeleteForm(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	err := h.db.DeleteMovie(r.Context(), id)
	switch {
	case errors.Is(err, database.ErrNotFound):
		h.renderMessage(w, r, http.StatusNotFound, "Ce film est introuvable.")
	case err != nil:
		h.renderServerError(w, r, err)
	default:
		logging.Ctx(r.Context()).Info().Str("movie_id", id).Msg("Movie deleted")
		h.recordAudit(r, audit.EventTypeMovieDeleted, movieTarget(id, ""), "")
		redirectFlash(w, r, "/admin/movies", views.FlashMovieDeleted)
	}
}

// AdminUsersPage handles GET /admin/users.
func (h *Handler) AdminUsersPage(w http.ResponseWriter, r *http.Request) {
	users, err := h.db.ListUsers(r.Context())
	if err != nil {
		h.renderServerError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, views.PageAdminUsers, views.NewPage(r, "Utilisateurs", views.AdminUsersData{Users: users}))
}

// AdminUserDeleteForm handles POST /admin/users/{id}/delete.
func (h *Handler) AdminUserDeleteForm(w http.ResponseWriter, r *http.Request) {
	subject := auth.GetAuthSubject(r.Context())
	id := r.PathValue("id")
	if subject == nil || id == subject.ID {
		h.renderMessage(w, r, http.StatusBadRequest, "Vous ne pouvez pas supprimer votre propre compte.")
		return
	}

	err := h.db.DeleteUser(r.Context(), id)
	switch {
	case errors.Is(err, database.ErrNotFound):
		h.renderMessage(w, r, http.StatusNotFound, "Compte introuvable.")
	case err != nil:
		h.renderServerError(w, r, err)
	default:
		h.sessions.RevokeUser(r, id)
		logging.Ctx(r.Context()).Info().Str("user_id", id).Str("admin_id", subject.ID).Msg("User deleted")
		h.recordAudit(r, audit.EventTypeUserDeleted, &audit.Target{ID: id, Type: "user"}, "")
		redirectFlash(w, r, "/admin/users", views.FlashUserDeleted)
	}
}

// AdminUserRoleForm handles POST /admin/users/{id}/role.
func (h *Handler) AdminUserRoleForm(w http.ResponseWriter, r *http.Request) {
	subject := auth.GetAuthSubject(r.Context())
	if subject == nil {
		redirectToLogin(w, r)
		return
	}
	role := r.PostFormValue("role")
	req := UpdateUserRequest{Role: &role}
	if verr := validation.ValidateStruct(&req); verr != nil {
		h.renderMessage(w, r, http.StatusBadRequest, verr.Error())
		return
	}

	_, err := h.applyUserUpdate(w, r, subject, r.PathValue("id"), req)
	switch {
	case errors.Is(err, database.ErrNotFound):
		h.renderMessage(w, r, http.StatusNotFound, "Compte introuvable.")
	case err != nil:
		h.renderServerError(w, r, err)
	default:
		redirectFlash(w, r, "/admin/users", views.FlashRoleChanged)
	}
}

// AdminUserNewPage handles GET /admin/users/new.
func (h *Handler) AdminUserNewPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, views.PageAdminUserNew, views.NewPage(r, "Nouvel utilisateur", views.FormData{}))
}

// AdminUserNewForm handles POST /admin/users/new.
func (h *Handler) AdminUserNewForm(w http.ResponseWriter, r *http.Request) {
	form := formValues(r, "email", "username", "role")
	fail := func(status int, msg string) {
		h.render(w, r, status, views.PageAdminUserNew, views.NewPage(r, "Nouvel utilisateur", form).WithError(msg))
	}

	req := CreateUserRequest{
		Email:    form.Value("email"),
		Username: form.Value("username"),
		Password: r.PostFormValue("password"),
		Role:     form.Value("role"),
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		fail(http.StatusBadRequest, verr.Error())
		return
	}

	_, err := h.createUser(r, req)
	var conflict *userConflict
	switch {
	case errors.As(err, &conflict):
		fail(http.StatusConflict, conflict.message)
	case err != nil:
		h.renderServerError(w, r, err)
	default:
		redirectFlash(w, r, "/admin/users", views.FlashUserCreated)
	}
}

// AdminTMDBPage handles GET /admin/tmdb?q=&page=. Without a query it lists
// popular titles.
func (h *Handler) AdminTMDBPage(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	data := views.AdminTMDBData{Query: query, Page: getPageParam(r)}
	page := views.NewPage(r, "Import TMDB", data)

	if h.tmdb == nil || !h.tmdb.Configured() {
		page.Error = "TMDB n'est pas configuré."
		h.render(w, r, http.StatusOK, views.PageAdminTMDB, page)
		return
	}

	var results *tmdb.SearchResults
	var err error
	if query == "" {
		results, err = h.tmdb.PopularMovies(r.Context(), data.Page)
	} else {
		results, err = h.tmdb.SearchMovies(r.Context(), query, data.Page)
	}
	if err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Str("query", query).Msg("TMDB listing failed")
		page.Error = "TMDB est indisponible pour le moment."
		h.render(w, r, http.StatusBadGateway, views.PageAdminTMDB, page)
		return
	}
	data.Results = results
	page.Data = data
	h.render(w, r, http.StatusOK, views.PageAdminTMDB, page)
}

// AdminTMDBImportForm handles POST /admin/tmdb/import.
func (h *Handler) AdminTMDBImportForm(w http.ResponseWriter, r *http.Request) {
	result, err := h.importer.Import(r.Context(), r.PostFormValue("tmdbId"))
	switch {
	case errors.Is(err, catalog.ErrInvalidTMDBID):
		h.renderMessage(w, r, http.StatusBadRequest, "Identifiant TMDB invalide.")
	case err != nil:
		logging.Ctx(r.Context()).Warn().Err(err).Msg("TMDB import failed")
		h.renderMessage(w, r, http.StatusBadGateway, "L'import depuis TMDB a échoué.")
	case result.Existed:
		redirectFlash(w, r, "/movies/"+result.Movie.ID, views.FlashMovieExists)
	default:
		h.recordAudit(r, audit.EventTypeMovieImported, movieTarget(result.Movie.ID, result.Movie.Title),
			"TMDB "+deref(result.Movie.TMDBID))
		redirectFlash(w, r, "/movies/"+result.Movie.ID, views.FlashMovieImported)
	}
}
