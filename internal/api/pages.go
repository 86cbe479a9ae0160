// Reelview - Movie Reviews and Catalog Curation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelview

package api

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/tomtom215/reelview/internal/logging"
	"github.com/tomtom215/reelview/internal/views"
)

// render executes a page. Templates render into a buffer, so on failure
// nothing has been written yet and a plain 500 can still be sent.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, name string, page *views.Page) {
	if err := h.views.Render(w, status, name, page); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Str("page", name).Msg("Failed to render page")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// renderMessage shows msg on the not-found page with the given status.
func (h *Handler) renderMessage(w http.ResponseWriter, r *http.Request, status int, msg string) {
	h.render(w, r, status, views.PageNotFound, views.NewPage(r, http.StatusText(status), msg))
}

// renderServerError logs err and shows a generic failure page.
func (h *Handler) renderServerError(w http.ResponseWriter, r *http.Request, err error) {
	logging.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("Page request failed")
	h.renderMessage(w, r, http.StatusInternalServerError, "Une erreur est survenue. Réessayez plus tard.")
}

// NotFoundPage is the router's fallback for unknown paths. API paths keep
// the JSON envelope.
func (h *Handler) NotFoundPage(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		respondNotFound(w, r, "Route not found")
		return
	}
	h.renderMessage(w, r, http.StatusNotFound, "Cette page n'existe pas.")
}

// redirectFlash sends a 303 to path carrying a flash code.
func redirectFlash(w http.ResponseWriter, r *http.Request, path, flash string) {
	if flash != "" {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		path += sep + views.FlashParam + "=" + url.QueryEscape(flash)
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// redirectToLogin sends anonymous form posts to the sign-in page.
func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// localPath returns next when it is a same-site absolute path, else fallback.
func localPath(next, fallback string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, "\\") {
		return fallback
	}
	return next
}

// formValues copies the named fields of a parsed form, for re-rendering.
func formValues(r *http.Request, fields ...string) views.FormData {
	values := make(map[string]string, len(fields))
	for _, f := range fields {
		values[f] = strings.TrimSpace(r.PostFormValue(f))
	}
	return views.FormData{Values: values}
}
