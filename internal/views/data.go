// Reelview - Movie Reviews and Catalog Curation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelview

package views

import (
	"github.com/tomtom215/reelview/internal/models"
	"github.com/tomtom215/reelview/internal/tmdb"
)

// Page names, one per file under templates/pages.
const (
	PageHome           = "home"
	PageMovies         = "movies"
	PageMovie          = "movie"
	PageLogin          = "login"
	PageRegister       = "register"
	PageVerify         = "verify"
	PageVerified       = "verified"
	PageProfile        = "profile"
	PageFavorites      = "favorites"
	PageNotFound       = "not_found"
	PageAdminDashboard = "admin_dashboard"
	PageAdminMovies    = "admin_movies"
	PageAdminMovieEdit = "admin_movie_edit"
	PageAdminUsers     = "admin_users"
	PageAdminUserNew   = "admin_user_new"
	PageAdminTMDB      = "admin_tmdb"
)

// HomeData feeds the home page.
type HomeData struct {
	Movies []models.Movie
}

// MoviesData feeds the filterable catalog list.
type MoviesData struct {
	Movies  []models.Movie
	Options *models.MovieFilterOptions
	Filter  models.MovieFilter
}

// MovieData feeds a movie page. InCatalog is false for titles shown
// straight from TMDB; those cannot be reviewed or favorited.
type MovieData struct {
	Movie      *models.Movie
	InCatalog  bool
	Reviews    []models.Review
	Summary    models.ReviewSummary
	IsFavorite bool
	MyReview   *models.Review
}

// FormData repopulates a form after a failed submission.
type FormData struct {
	Values map[string]string
}

// Value returns the submitted value for field.
func (f FormData) Value(field string) string {
	return f.Values[field]
}

// ProfileData feeds the profile page.
type ProfileData struct {
	Profile *models.UserProfile
}

// FavoritesData feeds the favorites page.
type FavoritesData struct {
	Movies []models.MovieRef
}

// AdminDashboardData feeds the admin landing page.
type AdminDashboardData struct {
	MovieCount     int
	UserCount      int
	TMDBConfigured bool
}

// AdminMoviesData feeds the admin movie list.
type AdminMoviesData struct {
	Movies []models.Movie
}

// AdminMovieEditData feeds the admin movie form.
type AdminMovieEditData struct {
	Movie *models.Movie
}

// AdminUsersData feeds the admin user list.
type AdminUsersData struct {
	Users []models.UserSummary
}

// AdminTMDBData feeds the TMDB search and import page. An empty Query shows
// the popular list.
type AdminTMDBData struct {
	Query   string
	Page    int
	Results *tmdb.SearchResults
}

// HasNext reports whether another results page exists.
func (d AdminTMDBData) HasNext() bool {
	return d.Results != nil && d.Page < d.Results.TotalPages
}
