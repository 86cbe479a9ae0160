// Reelview - Movie Reviews and Catalog Curation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelview

package auth

import (
	"net/http"
	"strings"
)

// PageAccess is the rule applying to an HTML path.
type PageAccess int

const (
	// PagePublic needs no session.
	PagePublic PageAccess = iota
	// PageSession needs any session; anonymous visitors go to /login.
	PageSession
	// PageAdmin needs the ADMIN role; everyone else goes to /.
	PageAdmin
)

var publicPagePrefixes = []string{"/login", "/register", "/movies", "/verify", "/verified", "/static"}

var publicAPIPrefixes = []string{"/api/auth", "/api/movies"}

// ClassifyPage returns the access rule for path.
func ClassifyPage(path string) PageAccess {
	if path == "/admin" || strings.HasPrefix(path, "/admin/") {
		return PageAdmin
	}
	if path == "/" {
		return PagePublic
	}
	for _, p := range publicPagePrefixes {
		if matchesPrefix(path, p) {
			return PagePublic
		}
	}
	for _, p := range publicAPIPrefixes {
		if strings.HasPrefix(path, p) {
			return PagePublic
		}
	}
	return PageSession
}

// matchesPrefix reports whether path is prefix itself or below it.
func matchesPrefix(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

// PageGuard redirects HTML requests that do not satisfy ClassifyPage.
// It must run after SessionManager.Authenticate.
func PageGuard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject := GetAuthSubject(r.Context())
		switch ClassifyPage(r.URL.Path) {
		case PageAdmin:
			if !subject.IsAdmin() {
				http.Redirect(w, r, "/", http.StatusFound)
				return
			}
		case PageSession:
			if subject == nil {
				http.Redirect(w, r, "/login", http.StatusFound)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
