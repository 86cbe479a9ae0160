// Reelview - Movie Reviews and Catalog Curation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelview

/*
Package middleware provides HTTP middleware components for the application.

Every middleware has the chi signature func(http.Handler) http.Handler:

  - RequestID: request and correlation IDs for logging.Ctx
  - AccessLog: one zerolog line per request
  - PrometheusMetrics: request count, latency and in-flight gauge, labelled
    with the chi route pattern
  - Compression: gzip for clients that accept it
  - SecurityHeaders: nosniff, frame denial and a CSP allowing TMDB images

Typical stack, outermost first:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog)
	r.Use(middleware.PrometheusMetrics)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.Compression)

Authentication and authorization middleware live in the auth and authz
packages.
*/
package middleware
