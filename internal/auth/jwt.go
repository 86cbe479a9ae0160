// Reelview - Movie Reviews and Catalog Curation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelview

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tomtom215/reelview/internal/models"
)

// Claims is the session payload of the jwt strategy.
type Claims struct {
	Email       string          `json:"email"`
	Username    string          `json:"username"`
	Role        models.Role     `json:"role"`
	Provider    models.Provider `json:"provider"`
	IsConfirmed bool            `json:"isConfirmed"`
	jwt.RegisteredClaims
}

// JWTSessionCodec signs and verifies session tokens.
type JWTSessionCodec struct {
	secret []byte
	maxAge time.Duration
}

// NewJWTSessionCodec creates a codec signing with secret. Tokens expire
// after maxAge.
func NewJWTSessionCodec(secret string, maxAge time.Duration) (*JWTSessionCodec, error) {
	if secret == "" {
		return nil, errors.New("session secret is required but was empty")
	}
	return &JWTSessionCodec{
		secret: []byte(secret),
		maxAge: maxAge,
	}, nil
}

// Encode returns a signed HS256 token for subject. The subject's ExpiresAt
// is set to the token expiry.
func (c *JWTSessionCodec) Encode(subject *AuthSubject) (string, error) {
	now := time.Now()
	expires := now.Add(c.maxAge)

	claims := &Claims{
		Email:       subject.Email,
		Username:    subject.Username,
		Role:        subject.Role,
		Provider:    subject.Provider,
		IsConfirmed: subject.IsConfirmed,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject.ID,
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	subject.ExpiresAt = expires.Unix()
	subject.IssuedAt = now.Unix()
	return signed, nil
}

// Decode validates token and returns the subject it carries.
func (c *JWTSessionCodec) Decode(token string) (*AuthSubject, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrSessionExpired
		}
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return nil, errors.New("invalid token claims")
	}

	subject := &AuthSubject{
		ID:          claims.Subject,
		Email:       claims.Email,
		Username:    claims.Username,
		Role:        claims.Role,
		Provider:    claims.Provider,
		IsConfirmed: claims.IsConfirmed,
	}
	if claims.ExpiresAt != nil {
		subject.ExpiresAt = claims.ExpiresAt.Unix()
	}
	if claims.IssuedAt != nil {
		subject.IssuedAt = claims.IssuedAt.Unix()
	}
	return subject, nil
}
