// Reelview - Movie Reviews and Catalog Curation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelview

package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tomtom215/reelview/internal/models"
)

const testSecret = "test-secret-that-is-at-least-32-characters"

func TestNewJWTSessionCodec_RequiresSecret(t *testing.T) {
	t.Parallel()

	if _, err := NewJWTSessionCodec("", time.Hour); err == nil {
		t.Error("empty secret should be rejected")
	}
}

func TestJWTSessionCodec_RoundTrip(t *testing.T) {
	t.Parallel()

	codec, err := NewJWTSessionCodec(testSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewJWTSessionCodec: %v", err)
	}

	in := testSubject()
	in.Role = models.RoleAdmin
	token, err := codec.Encode(in)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if in.ExpiresAt == 0 {
		t.Error("Encode should stamp ExpiresAt")
	}

	out, err := codec.Decode(token)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if out.ID != in.ID || out.Email != in.Email || out.Username != in.Username {
		t.Errorf("identity mismatch: %+v", out)
	}
	if out.Role != models.RoleAdmin || out.Provider != models.ProviderLocal || !out.IsConfirmed {
		t.Errorf("attributes mismatch: %+v", out)
	}
	if out.ExpiresAt != in.ExpiresAt {
		t.Errorf("ExpiresAt = %d, want %d", out.ExpiresAt, in.ExpiresAt)
	}
}

func TestJWTSessionCodec_Rejects(t *testing.T) {
	t.Parallel()

	codec, _ := NewJWTSessionCodec(testSecret, time.Hour)
	otherCodec, _ := NewJWTSessionCodec("another-secret-of-sufficient-length!!", time.Hour)
	foreign, _ := otherCodec.Encode(testSubject())

	expiredCodec, _ := NewJWTSessionCodec(testSecret, -time.Minute)
	expired, _ := expiredCodec.Encode(testSubject())

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none token: %v", err)
	}

	noSubject, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		Username: "ghost",
	}).SignedString([]byte(testSecret))

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not.a.token"},
		{"wrong secret", foreign},
		{"alg none", unsigned},
		{"missing subject", noSubject},
		{"expired", expired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := codec.Decode(tt.token); err == nil {
				t.Errorf("Decode(%s) succeeded", tt.name)
			}
		})
	}

	if _, err := codec.Decode(expired); !errors.Is(err, ErrSessionExpired) {
		t.Errorf("expired token error = %v, want ErrSessionExpired", err)
	}
}
