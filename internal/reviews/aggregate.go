// Reelview - Movie Reviews and Catalog Curation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelview

// Package reviews holds the rules shared by the JSON API and the HTML pages
// for review ratings, comments and per-movie summaries.
package reviews

import (
	"math"
	"unicode/utf8"

	"github.com/tomtom215/reelview/internal/models"
)

const (
	// MaxRating is the highest star rating. Zero marks a comment-only review.
	MaxRating = 5

	// MaxCommentLength is the comment limit in runes.
	MaxCommentLength = 1000
)

// ValidRating reports whether r is in 0..MaxRating.
func ValidRating(r int) bool {
	return r >= 0 && r <= MaxRating
}

// ClampComment truncates comment to MaxCommentLength runes.
func ClampComment(comment string) string {
	if utf8.RuneCountInString(comment) <= MaxCommentLength {
		return comment
	}
	runes := []rune(comment)
	return string(runes[:MaxCommentLength])
}

// Summarize computes the average and the 5..1 star distribution over the
// reviews that carry a rating. Comment-only reviews only count toward Total.
func Summarize(list []models.Review) models.ReviewSummary {
	var counts [MaxRating + 1]int
	rated, sum := 0, 0
	for i := range list {
		r := list[i].Rating
		if r <= 0 || r > MaxRating {
			continue
		}
		counts[r]++
		rated++
		sum += r
	}

	summary := models.ReviewSummary{
		Count:        rated,
		Total:        len(list),
		Distribution: make([]models.StarCount, 0, MaxRating),
	}
	if rated > 0 {
		summary.Average = roundTo(float64(sum)/float64(rated), 1)
	}
	for star := MaxRating; star >= 1; star-- {
		sc := models.StarCount{Star: star, Count: counts[star]}
		if rated > 0 {
			sc.Percentage = float64(counts[star]) / float64(rated) * 100
		}
		summary.Distribution = append(summary.Distribution, sc)
	}
	return summary
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
