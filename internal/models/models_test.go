// Reelview - Movie Reviews and Catalog Curation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelview

package models

import (
	"testing"
	"time"
)

func intPtr(i int) *int { return &i }

func TestMovie_DisplayHelpers(t *testing.T) {
	t.Parallel()

	release := time.Date(1979, 5, 25, 0, 0, 0, 0, time.UTC)
	m := &Movie{
		ReleaseDate:    &release,
		Runtime:        intPtr(117),
		Genres:         []string{"Horror", "Science Fiction"},
		RatingsAverage: 4.25,
	}

	if got := m.Year(); got != "1979" {
		t.Errorf("Year() = %q, want 1979", got)
	}
	if got := m.RuntimeLabel(); got != "1h 57mins" {
		t.Errorf("RuntimeLabel() = %q, want 1h 57mins", got)
	}
	if got := m.FirstGenre(); got != "Horror" {
		t.Errorf("FirstGenre() = %q, want Horror", got)
	}
	if got := m.RatingOutOfTen(); got != 8.5 {
		t.Errorf("RatingOutOfTen() = %v, want 8.5", got)
	}

	short := 45
	if got := (&Movie{Runtime: &short}).RuntimeLabel(); got != "45mins" {
		t.Errorf("RuntimeLabel() = %q, want 45mins", got)
	}

	empty := &Movie{}
	if empty.Year() != "" || empty.RuntimeLabel() != "" || empty.FirstGenre() != "" {
		t.Error("expected empty labels for a movie without metadata")
	}
}

func TestParseReleaseDate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		year    int
		wantNil bool
		wantErr bool
	}{
		{"", 0, true, false},
		{"1999-03-31", 1999, false, false},
		{"2010-07-16T00:00:00Z", 2010, false, false},
		{"1984", 1984, false, false},
		{"not a date", 0, true, true},
	}
	for _, tt := range tests {
		got, err := ParseReleaseDate(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseReleaseDate(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if tt.wantNil {
			if got != nil {
				t.Errorf("ParseReleaseDate(%q) = %v, want nil", tt.in, got)
			}
			continue
		}
		if got == nil || got.Year() != tt.year {
			t.Errorf("ParseReleaseDate(%q) = %v, want year %d", tt.in, got, tt.year)
		}
	}
}

func TestRoleValid(t *testing.T) {
	t.Parallel()

	if !RoleUser.Valid() || !RoleAdmin.Valid() {
		t.Error("USER and ADMIN must be valid")
	}
	if Role("admin").Valid() {
		t.Error("roles are case-sensitive")
	}
}
