// Reelview - Movie Reviews and Catalog Curation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelview

package auth

import (
	"testing"
	"time"
)

func TestHashPassword(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("correct horse")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "correct horse" {
		t.Fatal("hash must not equal the password")
	}
	if !CheckPassword(hash, "correct horse") {
		t.Error("CheckPassword rejected the right password")
	}
	if CheckPassword(hash, "wrong horse") {
		t.Error("CheckPassword accepted a wrong password")
	}
	if CheckPassword("not-a-hash", "correct horse") {
		t.Error("CheckPassword accepted a malformed hash")
	}
}

func TestNewVerificationToken(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	token, expiry, err := NewVerificationToken(now)
	if err != nil {
		t.Fatalf("NewVerificationToken: %v", err)
	}
	if len(token) != 64 {
		t.Errorf("token length = %d, want 64", len(token))
	}
	if want := now.Add(24 * time.Hour); !expiry.Equal(want) {
		t.Errorf("expiry = %v, want %v", expiry, want)
	}

	other, _, err := NewVerificationToken(now)
	if err != nil {
		t.Fatalf("NewVerificationToken: %v", err)
	}
	if other == token {
		t.Error("two tokens should differ")
	}
}
