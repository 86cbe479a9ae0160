// Reelview - Movie Reviews and Catalog Curation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelview

package views

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/tomtom215/reelview/internal/tmdb"
)

var funcMap = template.FuncMap{
	"image":     tmdb.ImageURL,
	"poster":    poster,
	"stars":     stars,
	"join":      strings.Join,
	"date":      formatDate,
	"deref":     deref,
	"fiveStar":  tmdb.VoteToFiveStar,
	"oneDec":    oneDecimal,
	"ratings":   func() []int { return []int{5, 4, 3, 2, 1} },
	"yearOf":    yearOf,
	"initial":   initial,
	"add":       func(a, b int) int { return a + b },
	"hasPrefix": strings.HasPrefix,
}

// poster returns the w500 poster URL for path, or "" without a poster.
func poster(path string) string {
	return tmdb.ImageURL(path, tmdb.DefaultImageSize)
}

// stars renders a 0-5 rating as filled and empty stars.
func stars(rating int) string {
	if rating < 0 {
		rating = 0
	}
	if rating > 5 {
		rating = 5
	}
	return strings.Repeat("★", rating) + strings.Repeat("☆", 5-rating)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02/01/2006")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func oneDecimal(v float64) string {
	return fmt.Sprintf("%.1f", v)
}

// yearOf extracts the year of a TMDB "YYYY-MM-DD" date.
func yearOf(date string) string {
	if len(date) < 4 {
		return ""
	}
	return date[:4]
}

func initial(name string) string {
	for _, r := range name {
		return strings.ToUpper(string(r))
	}
	return "?"
}
