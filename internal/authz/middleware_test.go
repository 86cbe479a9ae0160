// Reelview - Movie Reviews and Catalog Curation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelview

package authz

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tomtom215/reelview/internal/auth"
	"github.com/tomtom215/reelview/internal/models"
)

func withRole(role models.Role) context.Context {
	return auth.ContextWithSubject(context.Background(), &auth.AuthSubject{
		ID:   "user-1",
		Role: role,
	})
}

func TestMiddleware_Authorize(t *testing.T) {
	t.Parallel()

	mw := NewMiddleware(setupEnforcer(t))
	handler := mw.Authorize(ObjectCatalog, ActionWrite)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	tests := []struct {
		name string
		ctx  context.Context
		want int
	}{
		{"anonymous", context.Background(), http.StatusUnauthorized},
		{"user", withRole(models.RoleUser), http.StatusForbidden},
		{"admin", withRole(models.RoleAdmin), http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodPost, "/api/movies", nil).WithContext(tt.ctx)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestMiddleware_AuthorizeMethod(t *testing.T) {
	t.Parallel()

	mw := NewMiddleware(setupEnforcer(t))
	handler := mw.AuthorizeMethod(ObjectCatalog)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		method string
		role   models.Role
		want   int
	}{
		{http.MethodGet, models.RoleUser, http.StatusOK},
		{http.MethodPut, models.RoleUser, http.StatusForbidden},
		{http.MethodDelete, models.RoleUser, http.StatusForbidden},
		{http.MethodDelete, models.RoleAdmin, http.StatusOK},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, "/api/movies/1", nil).WithContext(withRole(tt.role))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != tt.want {
			t.Errorf("%s as %s: status %d, want %d", tt.method, tt.role, rec.Code, tt.want)
		}
	}
}

func TestMethodToAction(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		http.MethodGet:    ActionRead,
		http.MethodHead:   ActionRead,
		http.MethodPost:   ActionWrite,
		http.MethodPatch:  ActionWrite,
		http.MethodDelete: ActionDelete,
		"PROPFIND":        ActionRead,
	}
	for method, want := range tests {
		if got := methodToAction(method); got != want {
			t.Errorf("methodToAction(%s) = %s, want %s", method, got, want)
		}
	}
}
