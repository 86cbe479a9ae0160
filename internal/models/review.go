// Reelview - Movie Reviews and Catalog Curation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelview

package models

import (
	"time"
)

// Review is a user's rating and comment on a movie. Rating 0 is a
// comment-only review and is excluded from averages.
type Review struct {
	ID        string    `json:"id"`
	MovieID   string    `json:"movieId"`
	UserID    string    `json:"userId"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	User      *UserRef  `json:"user,omitempty"`
}

// ReviewUpdate is a partial update; nil fields are left unchanged.
type ReviewUpdate struct {
	Comment *string
	Rating  *int
}

// Empty reports whether the update changes nothing.
func (u ReviewUpdate) Empty() bool {
	return u.Comment == nil && u.Rating == nil
}

// StarCount is one bar of the rating distribution.
type StarCount struct {
	Star       int     `json:"star"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// ReviewSummary aggregates a movie's reviews.
//
// Count is the number of rated reviews (rating > 0); Total includes
// comment-only reviews. Distribution lists stars 5 down to 1.
type ReviewSummary struct {
	Average      float64     `json:"average"`
	Count        int         `json:"count"`
	Total        int         `json:"total"`
	Distribution []StarCount `json:"distribution"`
}

// Favorite marks a movie on a user's favorites list.
type Favorite struct {
	UserID    string    `json:"userId"`
	MovieID   string    `json:"movieId"`
	CreatedAt time.Time `json:"createdAt"`
}
