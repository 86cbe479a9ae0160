// Reelview - Movie Reviews and Catalog Curation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelview

package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tomtom215/reelview/internal/database"
	"github.com/tomtom215/reelview/internal/models"
)

// AccountStore adds the account changes needed to provision administrators.
type AccountStore interface {
	UserStore
	UpdateUser(ctx context.Context, id string, upd models.UserUpdate) error
	ConfirmUser(ctx context.Context, id string) error
}

// AccountSpec describes a LOCAL account to provision.
type AccountSpec struct {
	Email    string
	Username string
	Password string
	Role     models.Role
}

// EnsureAccount creates the account described by spec, confirmed, or brings
// an existing account with the same email up to spec.Role and confirms it.
// The password of an existing account is left alone. created reports
// whether a new account was made.
func EnsureAccount(ctx context.Context, store AccountStore, spec AccountSpec) (user *models.User, created bool, err error) {
	email := strings.ToLower(strings.TrimSpace(spec.Email))
	if email == "" {
		return nil, false, errors.New("email is required")
	}
	role := spec.Role
	if role == "" {
		role = models.RoleUser
	}

	existing, err := store.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		return existing, false, promote(ctx, store, existing, role)
	case !errors.Is(err, database.ErrNotFound):
		return nil, false, fmt.Errorf("failed to look up %s: %w", email, err)
	}

	if len(spec.Password) < MinPasswordLength {
		return nil, false, fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	}
	username := strings.TrimSpace(spec.Username)
	if username == "" {
		username = email[:strings.IndexByte(email+"@", '@')]
	}
	taken, err := store.UsernameTaken(ctx, username, "")
	if err != nil {
		return nil, false, err
	}
	if taken {
		return nil, false, fmt.Errorf("username %q is already taken", username)
	}

	hash, err := HashPassword(spec.Password)
	if err != nil {
		return nil, false, err
	}
	user = &models.User{
		Email:        email,
		Username:     username,
		PasswordHash: &hash,
		Role:         role,
		Provider:     models.ProviderLocal,
		IsConfirmed:  true,
	}
	if err := store.CreateUser(ctx, user); err != nil {
		return nil, false, err
	}
	return user, true, nil
}

func promote(ctx context.Context, store AccountStore, user *models.User, role models.Role) error {
	if user.Role != role && role == models.RoleAdmin {
		if err := store.UpdateUser(ctx, user.ID, models.UserUpdate{Role: &role}); err != nil {
			return err
		}
		user.Role = role
	}
	if !user.IsConfirmed {
		if err := store.ConfirmUser(ctx, user.ID); err != nil {
			return err
		}
		user.IsConfirmed = true
	}
	return nil
}
