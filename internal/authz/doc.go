// Reelview - Movie Reviews and Catalog Curation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelview

// Package authz provides role-based authorization using Casbin.
//
// The embedded model is plain RBAC. The embedded policy defines two roles,
// USER and ADMIN, where ADMIN inherits USER. Objects are catalog, users and
// reviews; actions are read, write and delete.
//
// Middleware.Authorize guards chi route groups:
//
//	r.With(authzMW.Authorize(authz.ObjectCatalog, authz.ActionWrite)).Post("/api/movies", h.CreateMovie)
//
// Model and policy files configured through CASBIN_MODEL_PATH and
// CASBIN_POLICY_PATH replace the embedded defaults.
package authz
