// Reelview - Movie Reviews and Catalog Curation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelview

package tmdb

import "strings"

// ImageBaseURL is the TMDB image CDN prefix.
const ImageBaseURL = "https://image.tmdb.org/t/p/"

// DefaultImageSize is used when ImageURL gets no size.
const DefaultImageSize = "w500"

// ImageURL returns the CDN URL for a poster or backdrop path. Absolute URLs
// pass through unchanged and an empty path gives "".
func ImageURL(path, size string) string {
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if size == "" {
		size = DefaultImageSize
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return ImageBaseURL + size + path
}
