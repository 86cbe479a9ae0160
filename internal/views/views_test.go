// Reelview - Movie Reviews and Catalog Curation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelview

package views

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/reelview/internal/auth"
	"github.com/tomtom215/reelview/internal/models"
	"github.com/tomtom215/reelview/internal/tmdb"
)

func newRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := New()
	require.NoError(t, err)
	return r
}

func render(t *testing.T, r *Renderer, name string, page *Page) *goquery.Document {
	t.Helper()
	w := httptest.NewRecorder()
	require.NoError(t, r.Render(w, http.StatusOK, name, page))
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	doc, err := goquery.NewDocumentFromReader(w.Body)
	require.NoError(t, err)
	return doc
}

func intPtr(n int) *int       { return &n }
func strPtr(s string) *string { return &s }

func sampleMovie() models.Movie {
	release := time.Date(1999, time.March, 31, 0, 0, 0, 0, time.UTC)
	return models.Movie{
		ID:             "m1",
		Title:          "The Matrix",
		Overview:       "A hacker learns the truth.",
		ReleaseDate:    &release,
		Runtime:        intPtr(136),
		Genres:         []string{"Action", "Science Fiction"},
		PosterPath:     "/matrix.jpg",
		Director:       "Lana Wachowski",
		Cast:           []string{"Keanu Reeves", "Carrie-Anne Moss"},
		TMDBID:         strPtr("603"),
		RatingsAverage: 4.5,
		RatingsCount:   2,
	}
}

func member(confirmed bool) *auth.AuthSubject {
	return &auth.AuthSubject{ID: "u1", Username: "neo", Email: "neo@example.com", Role: models.RoleUser, IsConfirmed: confirmed}
}

func TestNew_ParsesEveryPage(t *testing.T) {
	t.Parallel()
	r := newRenderer(t)

	for _, name := range []string{
		PageHome, PageMovies, PageMovie, PageLogin, PageRegister, PageVerify, PageVerified,
		PageProfile, PageFavorites, PageNotFound, PageAdminDashboard, PageAdminMovies,
		PageAdminMovieEdit, PageAdminUsers, PageAdminUserNew, PageAdminTMDB,
	} {
		assert.True(t, r.Has(name), "page %s not parsed", name)
	}
}

func TestRender_UnknownPage(t *testing.T) {
	t.Parallel()
	r := newRenderer(t)
	w := httptest.NewRecorder()

	err := r.Render(w, http.StatusOK, "nope", &Page{})
	assert.True(t, errors.Is(err, ErrUnknownPage))
	assert.Zero(t, w.Body.Len(), "nothing may be written on error")
}

func TestRender_Home(t *testing.T) {
	t.Parallel()
	r := newRenderer(t)

	doc := render(t, r, PageHome, &Page{Title: "Accueil", Path: "/", Data: HomeData{Movies: []models.Movie{sampleMovie()}}})

	cards := doc.Find("a.movie-card")
	require.Equal(t, 1, cards.Length())
	assert.Equal(t, "/movies/m1", cards.AttrOr("href", ""))
	assert.Equal(t, "1999", cards.Find(".year").Text())
	assert.Equal(t, "2h 16mins", cards.Find(".runtime").Text())
	assert.Equal(t, "★ 9.0", cards.Find(".rating").Text())
	assert.Equal(t, "Action", cards.Find(".tag").Text())
	assert.Equal(t, "https://image.tmdb.org/t/p/w500/matrix.jpg", cards.Find("img").AttrOr("src", ""))

	// Anonymous header offers sign-in.
	assert.Equal(t, 1, doc.Find(`header a[href="/login"]`).Length())
	assert.Zero(t, doc.Find("#confirm-email-banner").Length())
}

func TestRender_LayoutForSessions(t *testing.T) {
	t.Parallel()
	r := newRenderer(t)

	doc := render(t, r, PageHome, &Page{Subject: member(false), CSRFToken: "tok", Data: HomeData{}})
	assert.Equal(t, 1, doc.Find("#confirm-email-banner").Length())
	assert.Equal(t, "tok", doc.Find(`form[action="/logout"] input[name="csrf_token"]`).AttrOr("value", ""))
	assert.Zero(t, doc.Find(`a[href="/admin"]`).Length())
	assert.Contains(t, doc.Find(".empty").Text(), "Aucun film")

	admin := &auth.AuthSubject{ID: "a1", Username: "root", Role: models.RoleAdmin, IsConfirmed: true}
	doc = render(t, r, PageHome, &Page{Subject: admin, Data: HomeData{}})
	assert.Zero(t, doc.Find("#confirm-email-banner").Length())
	assert.Equal(t, 1, doc.Find(`a[href="/admin"]`).Length())
}

func TestRender_MovieForMember(t *testing.T) {
	t.Parallel()
	r := newRenderer(t)
	movie := sampleMovie()
	reviews := []models.Review{
		{ID: "r1", MovieID: "m1", UserID: "u1", Rating: 5, Comment: "Whoa.", User: &models.UserRef{ID: "u1", Username: "neo"}},
		{ID: "r2", MovieID: "m1", UserID: "u2", Rating: 4, Comment: "Great", User: &models.UserRef{ID: "u2", Username: "trinity"}},
	}
	data := MovieData{
		Movie:     &movie,
		InCatalog: true,
		Reviews:   reviews,
		Summary: models.ReviewSummary{Average: 4.5, Count: 2, Total: 2, Distribution: []models.StarCount{
			{Star: 5, Count: 1, Percentage: 50}, {Star: 4, Count: 1, Percentage: 50},
			{Star: 3}, {Star: 2}, {Star: 1},
		}},
		IsFavorite: true,
		MyReview:   &reviews[0],
	}

	doc := render(t, r, PageMovie, &Page{Subject: member(true), CSRFToken: "tok", Data: data})

	assert.Equal(t, "The Matrix", doc.Find(".movie-info h1").Text())
	assert.Equal(t, "remove", doc.Find(`.favorite-toggle input[name="action"]`).AttrOr("value", ""))
	assert.Equal(t, "5", doc.Find(`#rating option[selected]`).AttrOr("value", ""))
	assert.Equal(t, "Whoa.", doc.Find("#comment").Text())
	assert.Equal(t, 2, doc.Find(".review").Length())
	// Only the member's own review can be deleted.
	assert.Equal(t, 1, doc.Find(`#review-r1 form[action="/movies/m1/reviews/r1/delete"]`).Length())
	assert.Zero(t, doc.Find(`#review-r2 form`).Length())
	assert.Equal(t, 5, doc.Find(".distribution li").Length())
}

func TestRender_MovieFromTMDB(t *testing.T) {
	t.Parallel()
	r := newRenderer(t)
	movie := sampleMovie()
	movie.ID = ""

	doc := render(t, r, PageMovie, &Page{Subject: member(true), Data: MovieData{Movie: &movie}})

	assert.Equal(t, 1, doc.Find(".tmdb-only").Length())
	assert.Zero(t, doc.Find(".review-form").Length())
	assert.Zero(t, doc.Find(".favorite-toggle").Length())
}

func TestRender_FormsKeepValues(t *testing.T) {
	t.Parallel()
	r := newRenderer(t)

	page := (&Page{CSRFToken: "tok", Data: FormData{Values: map[string]string{"email": "neo@example.com", "username": "neo"}}}).
		WithError("Les mots de passe ne correspondent pas")
	doc := render(t, r, PageRegister, page)

	assert.Equal(t, "neo@example.com", doc.Find("#email").AttrOr("value", ""))
	assert.Equal(t, "neo", doc.Find("#username").AttrOr("value", ""))
	assert.Equal(t, "", doc.Find("#password").AttrOr("value", ""))
	assert.Contains(t, doc.Find(".error").Text(), "mots de passe")
	assert.Equal(t, "tok", doc.Find(`input[name="csrf_token"]`).AttrOr("value", ""))
}

func TestRender_AdminTMDBPagination(t *testing.T) {
	t.Parallel()
	r := newRenderer(t)
	admin := &auth.AuthSubject{ID: "a1", Username: "root", Role: models.RoleAdmin, IsConfirmed: true}
	data := AdminTMDBData{
		Query: "matrix",
		Page:  2,
		Results: &tmdb.SearchResults{
			Page:       2,
			TotalPages: 3,
			Results:    []tmdb.MovieSummary{{ID: 603, Title: "The Matrix", ReleaseDate: "1999-03-31", VoteAverage: 8.2}},
		},
	}

	doc := render(t, r, PageAdminTMDB, &Page{Subject: admin, Data: data})

	result := doc.Find(".tmdb-result")
	require.Equal(t, 1, result.Length())
	assert.Equal(t, "603", result.AttrOr("data-tmdb-id", ""))
	assert.Equal(t, "603", result.Find(`input[name="tmdbId"]`).AttrOr("value", ""))
	assert.Contains(t, result.Text(), "★ 4.1")
	assert.Equal(t, 2, doc.Find(".pagination a").Length())
}

func TestNewPage(t *testing.T) {
	t.Parallel()
	req := httptest.NewRequest("GET", "/movies/m1?flash="+FlashReviewSaved, nil)

	page := NewPage(req, "Film", nil)
	assert.Equal(t, "/movies/m1", page.Path)
	assert.Equal(t, FlashMessage(FlashReviewSaved), page.Flash)
	assert.Nil(t, page.Subject)
	assert.False(t, page.IsAdmin())
	assert.False(t, page.NeedsConfirmation())

	req = httptest.NewRequest("GET", "/?flash=unknown", nil)
	assert.Empty(t, NewPage(req, "", nil).Flash)
}

func TestStars(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "★★★☆☆", stars(3))
	assert.Equal(t, "☆☆☆☆☆", stars(-1))
	assert.Equal(t, "★★★★★", stars(9))
	assert.Equal(t, 5, strings.Count(stars(0), "☆"))
}
