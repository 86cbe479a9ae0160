// Reelview - Movie Reviews and Catalog Curation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelview

package tmdb

import (
	"math"
	"strconv"

	"github.com/tomtom215/reelview/internal/models"
)

// MaxCastMembers is how many cast names are imported per movie.
const MaxCastMembers = 8

// ToMovie maps TMDB details and credits to a catalog movie. credits may be nil.
// The returned movie has no ID yet.
func ToMovie(details *MovieDetails, credits *Credits) *models.Movie {
	m := &models.Movie{
		Title:               details.Title,
		Overview:            details.Overview,
		PosterPath:          details.PosterPath,
		Genres:              make([]string, 0, len(details.Genres)),
		ProductionCompanies: make([]string, 0, len(details.ProductionCompanies)),
		Producers:           []string{},
		Cast:                []string{},
	}

	if date, err := models.ParseReleaseDate(details.ReleaseDate); err == nil {
		m.ReleaseDate = date
	}
	if details.Runtime > 0 {
		runtime := details.Runtime
		m.Runtime = &runtime
	}
	if details.ID != 0 {
		id := strconv.Itoa(details.ID)
		m.TMDBID = &id
	}
	if details.IMDBID != "" {
		imdb := details.IMDBID
		m.IMDBID = &imdb
	}
	for _, g := range details.Genres {
		m.Genres = append(m.Genres, g.Name)
	}
	for _, c := range details.ProductionCompanies {
		m.ProductionCompanies = append(m.ProductionCompanies, c.Name)
	}

	if credits == nil {
		return m
	}
	for _, c := range credits.Crew {
		switch c.Job {
		case "Director":
			if m.Director == "" {
				m.Director = c.Name
			}
		case "Producer":
			m.Producers = append(m.Producers, c.Name)
		}
	}
	for i, c := range credits.Cast {
		if i == MaxCastMembers {
			break
		}
		m.Cast = append(m.Cast, c.Name)
	}
	return m
}

// VoteToFiveStar converts a TMDB vote average (0-10) to the five-star scale
// with one decimal.
func VoteToFiveStar(vote float64) float64 {
	return math.Round(vote/2*10) / 10
}
