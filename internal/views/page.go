// Reelview - Movie Reviews and Catalog Curation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelview

package views

import (
	"net/http"

	"github.com/tomtom215/reelview/internal/auth"
)

// FlashParam is the query parameter carrying a flash code after a redirect.
const FlashParam = "flash"

// Flash codes understood by the layout.
const (
	FlashReviewSaved     = "review_saved"
	FlashReviewDeleted   = "review_deleted"
	FlashInvalidRating   = "invalid_rating"
	FlashFavoriteAdded   = "favorite_added"
	FlashFavoriteRemoved = "favorite_removed"
	FlashProfileSaved    = "profile_saved"
	FlashVerifySent      = "verify_sent"
	FlashRegistered      = "registered"
	FlashMovieSaved      = "movie_saved"
	FlashMovieDeleted    = "movie_deleted"
	FlashMovieImported   = "movie_imported"
	FlashMovieExists     = "movie_exists"
	FlashUserCreated     = "user_created"
	FlashUserDeleted     = "user_deleted"
	FlashRoleChanged     = "role_changed"
)

var flashMessages = map[string]string{
	FlashReviewSaved:     "Votre avis a été enregistré.",
	FlashReviewDeleted:   "Votre avis a été supprimé.",
	FlashInvalidRating:   "La note doit être comprise entre 0 et 5.",
	FlashFavoriteAdded:   "Film ajouté à vos favoris.",
	FlashFavoriteRemoved: "Film retiré de vos favoris.",
	FlashProfileSaved:    "Profil mis à jour.",
	FlashVerifySent:      "Un nouvel email de confirmation vous a été envoyé.",
	FlashRegistered:      "Compte créé. Vérifiez votre boîte mail pour confirmer votre adresse.",
	FlashMovieSaved:      "Film enregistré.",
	FlashMovieDeleted:    "Film supprimé.",
	FlashMovieImported:   "Film importé depuis TMDB.",
	FlashMovieExists:     "Ce film est déjà dans le catalogue.",
	FlashUserCreated:     "Utilisateur créé.",
	FlashUserDeleted:     "Utilisateur supprimé.",
	FlashRoleChanged:     "Rôle mis à jour.",
}

// FlashMessage returns the text for code, or "" for unknown codes.
func FlashMessage(code string) string {
	return flashMessages[code]
}

// Page is the value every template is executed with.
type Page struct {
	Title     string
	Path      string
	Subject   *auth.AuthSubject
	CSRFToken string
	Flash     string
	Error     string
	Data      interface{}
}

// NewPage builds the page for r: session subject, CSRF token and any
// flash message carried by the query string.
func NewPage(r *http.Request, title string, data interface{}) *Page {
	return &Page{
		Title:     title,
		Path:      r.URL.Path,
		Subject:   auth.GetAuthSubject(r.Context()),
		CSRFToken: auth.CSRFToken(r.Context()),
		Flash:     FlashMessage(r.URL.Query().Get(FlashParam)),
		Data:      data,
	}
}

// WithError sets the inline error message and returns p.
func (p *Page) WithError(msg string) *Page {
	p.Error = msg
	return p
}

// IsAdmin reports whether the viewer is an administrator.
func (p *Page) IsAdmin() bool {
	return p.Subject != nil && p.Subject.IsAdmin()
}

// NeedsConfirmation reports whether the confirm-email banner is shown.
func (p *Page) NeedsConfirmation() bool {
	return p.Subject != nil && !p.Subject.IsConfirmed
}
