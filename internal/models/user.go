// Reelview - Movie Reviews and Catalog Curation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelview

// Package models provides the data structures shared by the Reelview
// database, service and HTTP layers.
package models

import (
	"time"
)

// Role is a user's access level.
type Role string

// Roles recognised by the authorization policy.
const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Provider identifies how an account signs in.
type Provider string

// Account providers.
const (
	ProviderLocal  Provider = "LOCAL"
	ProviderGoogle Provider = "GOOGLE"
)

// User is a registered account. Email is stored lowercased.
//
// PasswordHash is nil for accounts created through Google sign-in.
// VerificationToken and TokenExpiry are set while an email confirmation is
// pending.
type User struct {
	ID                string     `json:"id"`
	Email             string     `json:"email"`
	Username          string     `json:"username"`
	PasswordHash      *string    `json:"-"`
	Role              Role       `json:"role"`
	Provider          Provider   `json:"provider"`
	ProviderID        *string    `json:"providerId,omitempty"`
	IsConfirmed       bool       `json:"isConfirmed"`
	VerificationToken *string    `json:"-"`
	TokenExpiry       *time.Time `json:"-"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

// IsAdmin reports whether the user holds the ADMIN role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// UserUpdate is a partial update; nil fields are left unchanged.
type UserUpdate struct {
	Username     *string
	Email        *string
	PasswordHash *string
	Role         *Role
}

// Empty reports whether the update changes nothing.
func (u UserUpdate) Empty() bool {
	return u.Username == nil && u.Email == nil && u.PasswordHash == nil && u.Role == nil
}

// UserRef is the author block embedded in review listings.
type UserRef struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// UserSummary is a row of the admin user list.
type UserSummary struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Username    string    `json:"username"`
	Role        Role      `json:"role"`
	Provider    Provider  `json:"provider"`
	IsConfirmed bool      `json:"isConfirmed"`
	ReviewCount int       `json:"reviewCount"`
	CreatedAt   time.Time `json:"createdAt"`
}

// UserProfile is a user together with the reviews they wrote.
type UserProfile struct {
	User
	Reviews []UserReview `json:"reviews"`
}

// UserReview is a review as listed on its author's profile.
type UserReview struct {
	Review
	Movie MovieRef `json:"movie"`
}
