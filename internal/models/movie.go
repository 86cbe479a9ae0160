// Reelview - Movie Reviews and Catalog Curation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelview

package models

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Movie is a catalog entry. RatingsAverage and RatingsCount are derived from
// reviews with a rating above zero and are never stored.
type Movie struct {
	ID                  string     `json:"id"`
	Title               string     `json:"title"`
	Overview            string     `json:"overview"`
	ReleaseDate         *time.Time `json:"releaseDate"`
	Runtime             *int       `json:"runtime"`
	Genres              []string   `json:"genres"`
	PosterPath          string     `json:"posterPath"`
	Director            string     `json:"director"`
	ProductionCompanies []string   `json:"productionCompanies"`
	Producers           []string   `json:"producers"`
	Cast                []string   `json:"cast"`
	TMDBID              *string    `json:"tmdbId"`
	IMDBID              *string    `json:"imdbId"`
	RatingsAverage      float64    `json:"ratingsAverage"`
	RatingsCount        int        `json:"ratingsCount"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}

// Year returns the release year, or "" when the release date is unknown.
func (m *Movie) Year() string {
	if m.ReleaseDate == nil {
		return ""
	}
	return fmt.Sprintf("%d", m.ReleaseDate.Year())
}

// RuntimeLabel formats the runtime as "2h 15mins", or "45mins" under an
// hour. Unknown runtimes give "".
func (m *Movie) RuntimeLabel() string {
	if m.Runtime == nil || *m.Runtime <= 0 {
		return ""
	}
	if *m.Runtime < 60 {
		return fmt.Sprintf("%dmins", *m.Runtime)
	}
	return fmt.Sprintf("%dh %dmins", *m.Runtime/60, *m.Runtime%60)
}

// FirstGenre returns the first genre or "".
func (m *Movie) FirstGenre() string {
	if len(m.Genres) == 0 {
		return ""
	}
	return m.Genres[0]
}

// RatingOutOfTen converts the five-star average to a ten-point score with
// one decimal.
func (m *Movie) RatingOutOfTen() float64 {
	return math.Round(m.RatingsAverage*2*10) / 10
}

// MovieRef is the short movie block used in favorites and profile listings.
// PosterPath is always present, empty when the movie has no poster.
type MovieRef struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	PosterPath string `json:"posterPath"`
}

// MovieFilter narrows ListMovies. Empty fields are ignored.
type MovieFilter struct {
	Search   string
	Genre    string
	Producer string
	Year     string
	Limit    int
}

// MovieFilterOptions lists the values offered by the catalog filters.
type MovieFilterOptions struct {
	Genres    []string `json:"genres"`
	Producers []string `json:"producers"`
	Years     []string `json:"years"`
}

// MovieUpdate is a partial update; nil fields are left unchanged.
type MovieUpdate struct {
	Title               *string
	Overview            *string
	ReleaseDate         *time.Time
	Runtime             *int
	Genres              *[]string
	PosterPath          *string
	Director            *string
	ProductionCompanies *[]string
	Producers           *[]string
	Cast                *[]string
	TMDBID              *string
	IMDBID              *string
}

// Empty reports whether the update changes nothing.
func (u MovieUpdate) Empty() bool {
	return u.Title == nil && u.Overview == nil && u.ReleaseDate == nil && u.Runtime == nil &&
		u.Genres == nil && u.PosterPath == nil && u.Director == nil &&
		u.ProductionCompanies == nil && u.Producers == nil && u.Cast == nil &&
		u.TMDBID == nil && u.IMDBID == nil
}

// releaseDateLayouts are accepted by ParseReleaseDate, most specific first.
var releaseDateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"2006",
}

// ParseReleaseDate parses a release date as sent by forms, the JSON API and
// TMDB. An empty string yields nil.
func ParseReleaseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range releaseDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, fmt.Errorf("invalid release date %q", s)
}
