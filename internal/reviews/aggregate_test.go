// Reelview - Movie Reviews and Catalog Curation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelview

package reviews

import (
	"math"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/tomtom215/reelview/internal/models"
)

func ratings(rs ...int) []models.Review {
	out := make([]models.Review, len(rs))
	for i, r := range rs {
		out[i] = models.Review{Rating: r}
	}
	return out
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		reviews    []models.Review
		wantAvg    float64
		wantCount  int
		wantTotal  int
		wantCounts [5]int // stars 5..1
	}{
		{"empty", nil, 0, 0, 0, [5]int{}},
		{"comment only", ratings(0, 0), 0, 0, 2, [5]int{}},
		{"mixed", ratings(5, 4, 4, 0), 4.3, 3, 4, [5]int{1, 2, 0, 0, 0}},
		{"all stars", ratings(1, 2, 3, 4, 5), 3, 5, 5, [5]int{1, 1, 1, 1, 1}},
		{"rounds half up", ratings(4, 5, 5, 5), 4.8, 4, 4, [5]int{3, 1, 0, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Summarize(tt.reviews)
			if got.Average != tt.wantAvg {
				t.Errorf("Average = %v, want %v", got.Average, tt.wantAvg)
			}
			if got.Count != tt.wantCount || got.Total != tt.wantTotal {
				t.Errorf("Count/Total = %d/%d, want %d/%d", got.Count, got.Total, tt.wantCount, tt.wantTotal)
			}
			if len(got.Distribution) != 5 {
				t.Fatalf("distribution has %d entries, want 5", len(got.Distribution))
			}
			for i, sc := range got.Distribution {
				if sc.Star != 5-i {
					t.Errorf("distribution[%d].Star = %d, want %d", i, sc.Star, 5-i)
				}
				if sc.Count != tt.wantCounts[i] {
					t.Errorf("star %d count = %d, want %d", sc.Star, sc.Count, tt.wantCounts[i])
				}
			}
		})
	}
}

func TestSummarize_Percentages(t *testing.T) {
	t.Parallel()
	got := Summarize(ratings(5, 4, 4, 0))
	want := map[int]float64{5: 100.0 / 3, 4: 200.0 / 3, 3: 0, 2: 0, 1: 0}
	for _, sc := range got.Distribution {
		if math.Abs(sc.Percentage-want[sc.Star]) > 1e-9 {
			t.Errorf("star %d percentage = %v, want %v", sc.Star, sc.Percentage, want[sc.Star])
		}
	}
	for _, sc := range Summarize(ratings(0)).Distribution {
		if sc.Percentage != 0 {
			t.Errorf("unrated movie has percentage %v for star %d", sc.Percentage, sc.Star)
		}
	}
}

func TestClampComment(t *testing.T) {
	t.Parallel()

	short := "Un film magnifique"
	if got := ClampComment(short); got != short {
		t.Errorf("short comment changed: %q", got)
	}

	long := strings.Repeat("é", MaxCommentLength+10)
	got := ClampComment(long)
	if n := utf8.RuneCountInString(got); n != MaxCommentLength {
		t.Errorf("clamped length = %d runes, want %d", n, MaxCommentLength)
	}
	if !utf8.ValidString(got) {
		t.Error("clamping must not split a rune")
	}
}

func TestValidRating(t *testing.T) {
	t.Parallel()
	for r, want := range map[int]bool{-1: false, 0: true, 1: true, 5: true, 6: false} {
		if got := ValidRating(r); got != want {
			t.Errorf("ValidRating(%d) = %v, want %v", r, got, want)
		}
	}
}
