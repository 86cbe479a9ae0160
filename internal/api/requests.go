// Reelview - Movie Reviews and Catalog Curation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelview

package api

import "strings"

// Request bodies of the JSON API. Validation tags use go-playground/validator
// with the custom "rating" and "username" tags registered by the validation
// package; messages name the JSON field.

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// MovieRequest is the body of POST /api/movies and PUT /api/movies/{id}.
// Every field is optional on update.
type MovieRequest struct {
	Title               *string   `json:"title"`
	Overview            *string   `json:"overview"`
	ReleaseDate         *string   `json:"releaseDate"`
	Runtime             *int      `json:"runtime" validate:"omitempty,min=0"`
	Genres              *[]string `json:"genres"`
	PosterPath          *string   `json:"posterPath"`
	Director            *string   `json:"director"`
	ProductionCompanies *[]string `json:"productionCompanies"`
	Producers           *[]string `json:"producers"`
	Cast                *[]string `json:"cast"`
	TMDBID              *string   `json:"tmdbId"`
	IMDBID              *string   `json:"imdbId"`
}

// CreateReviewRequest is the body of POST /api/reviews.
type CreateReviewRequest struct {
	MovieID string `json:"movieId" validate:"required"`
	Rating  int    `json:"rating" validate:"rating"`
	Comment string `json:"comment"`
}

// UpdateReviewRequest is the body of PATCH /api/reviews.
type UpdateReviewRequest struct {
	ID      string  `json:"id" validate:"required"`
	Comment *string `json:"comment"`
	Rating  *int    `json:"rating" validate:"omitempty,rating"`
}

// DeleteReviewRequest is the body of DELETE /api/reviews.
type DeleteReviewRequest struct {
	ID string `json:"id" validate:"required"`
}

// FavoriteRequest is the body of POST and DELETE /api/favorites.
type FavoriteRequest struct {
	MovieID string `json:"movieId" validate:"required"`
}

// CreateUserRequest is the body of POST /api/users.
type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Username string `json:"username" validate:"required,username,max=50"`
	Role     string `json:"role" validate:"omitempty,oneof=USER ADMIN"`
}

// UpdateUserRequest is the body of PUT /api/users/{id} and /api/users/me.
type UpdateUserRequest struct {
	Username *string `json:"username" validate:"omitempty,username,max=50"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Password *string `json:"password" validate:"omitempty,min=8"`
	Role     *string `json:"role" validate:"omitempty,oneof=USER ADMIN"`
}

// dropBlank treats blank fields as absent, so {"username":""} leaves the
// username alone instead of clearing it.
func (req *UpdateUserRequest) dropBlank() {
	for _, field := range []**string{&req.Username, &req.Email, &req.Password, &req.Role} {
		if *field != nil && strings.TrimSpace(**field) == "" {
			*field = nil
		}
	}
}

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
	Username        string `json:"username" validate:"required,username,max=50"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
