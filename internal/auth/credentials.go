// Reelview - Movie Reviews and Catalog Curation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelview

package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/tomtom215/reelview/internal/database"
	"github.com/tomtom215/reelview/internal/metrics"
	"github.com/tomtom215/reelview/internal/models"
)

// maxUsernameAttempts bounds the numeric suffixes tried for Google usernames.
const maxUsernameAttempts = 100

// UserStore is the subset of the database used for sign-in.
type UserStore interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UsernameTaken(ctx context.Context, username, excludeID string) (bool, error)
	CreateUser(ctx context.Context, u *models.User) error
}

// Authenticator verifies credentials and provisions external accounts.
type Authenticator struct {
	users UserStore
}

// NewAuthenticator creates an authenticator backed by users.
func NewAuthenticator(users UserStore) *Authenticator {
	return &Authenticator{users: users}
}

// Login checks an email and password pair.
func (a *Authenticator) Login(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	user, err := a.login(ctx, email, password)
	metrics.RecordLoginAttempt(string(models.ProviderLocal), err == nil)
	return user, err
}

func (a *Authenticator) login(ctx context.Context, email, password string) (*models.User, error) {
	user, err := a.users.GetUserByEmail(ctx, email)
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user.PasswordHash == nil || *user.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if !user.IsConfirmed {
		return nil, ErrEmailNotConfirmed
	}
	if !CheckPassword(*user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// GoogleProfile is the identity returned by Google's ID token.
type GoogleProfile struct {
	Subject string
	Email   string
	Name    string
}

// ResolveGoogleUser returns the account for profile, creating a confirmed
// USER account on first sign-in. created reports whether an account was made.
func (a *Authenticator) ResolveGoogleUser(ctx context.Context, profile GoogleProfile) (user *models.User, created bool, err error) {
	email := strings.ToLower(strings.TrimSpace(profile.Email))
	if email == "" {
		return nil, false, errors.New("google profile has no email")
	}

	user, err = a.users.GetUserByEmail(ctx, email)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		return nil, false, fmt.Errorf("failed to look up user: %w", err)
	}

	username, err := a.uniqueUsername(ctx, googleUsername(profile))
	if err != nil {
		return nil, false, err
	}

	sub := profile.Subject
	user = &models.User{
		Email:       email,
		Username:    username,
		Role:        models.RoleUser,
		Provider:    models.ProviderGoogle,
		ProviderID:  &sub,
		IsConfirmed: true,
	}
	if err := a.users.CreateUser(ctx, user); err != nil {
		return nil, false, fmt.Errorf("failed to create google user: %w", err)
	}
	metrics.RecordRegistration(string(models.ProviderGoogle))
	return user, true, nil
}

// googleUsername is the profile name, or the email local part without one.
func googleUsername(profile GoogleProfile) string {
	if name := strings.TrimSpace(profile.Name); name != "" {
		return name
	}
	local, _, _ := strings.Cut(profile.Email, "@")
	return local
}

// uniqueUsername returns base, or base followed by the first free number.
func (a *Authenticator) uniqueUsername(ctx context.Context, base string) (string, error) {
	candidate := base
	for i := 1; i <= maxUsernameAttempts; i++ {
		taken, err := a.users.UsernameTaken(ctx, candidate, "")
		if err != nil {
			return "", fmt.Errorf("failed to check username: %w", err)
		}
		if !taken {
			return candidate, nil
		}
		candidate = base + strconv.Itoa(i)
	}
	return "", fmt.Errorf("no free username for %q", base)
}
