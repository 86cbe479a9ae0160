// Reelview - Movie Reviews and Catalog Curation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelview

package middleware

import (
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

const compressionLevel = 5

// compressibleTypes are the response types worth compressing: pages,
// their assets and the JSON API. Posters are external URLs.
var compressibleTypes = []string{
	"text/html",
	"text/css",
	"text/plain",
	"application/json",
	"application/javascript",
	"image/svg+xml",
}

// Compression gzips or deflates compressible responses for clients that
// accept it. /metrics is served as is; promhttp negotiates its own encoding.
func Compression(next http.Handler) http.Handler {
	compressed := chimiddleware.Compress(compressionLevel, compressibleTypes...)(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}
		compressed.ServeHTTP(w, r)
	})
}
