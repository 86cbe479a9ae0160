// Reelview - Movie Reviews and Catalog Curation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelview

package audit

import (
	"context"
	"time"

	"github.com/goccy/go-json"
)

// EventType categorizes audit events.
type EventType string

const (
	// Authentication events
	EventTypeLoginSuccess EventType = "auth.login"
	EventTypeLoginFailure EventType = "auth.login_failed"

	// Account administration events
	EventTypeUserCreated EventType = "user.created"
	EventTypeUserUpdated EventType = "user.updated"
	EventTypeRoleChanged EventType = "user.role_changed"
	EventTypeUserDeleted EventType = "user.deleted"

	// Catalog curation events
	EventTypeMovieCreated  EventType = "movie.created"
	EventTypeMovieImported EventType = "movie.imported"
	EventTypeMovieUpdated  EventType = "movie.updated"
	EventTypeMovieDeleted  EventType = "movie.deleted"
)

// Severity indicates the severity level of an audit event.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
)

// Outcome indicates whether an action succeeded or failed.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// Event is one entry of the moderation trail.
type Event struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	Severity  Severity  `json:"severity"`
	Outcome   Outcome   `json:"outcome"`

	// Actor who performed the action.
	Actor Actor `json:"actor"`

	// Target of the action (optional).
	Target *Target `json:"target,omitempty"`

	// Source of the request.
	Source Source `json:"source"`

	// Description provides human-readable details.
	Description string `json:"description"`

	// Metadata contains event-specific details.
	Metadata json.RawMessage `json:"metadata,omitempty"`

	// RequestID from the originating HTTP request.
	RequestID string `json:"requestId,omitempty"`
}

// Actor represents who performed an action. Failed sign-ins carry the
// attempted email as Name and no ID.
type Actor struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
	Role string `json:"role,omitempty"`
}

// Target represents the object of an action.
type Target struct {
	ID   string `json:"id"`
	Type string `json:"type"` // user or movie
	Name string `json:"name,omitempty"`
}

// Source represents where a request originated.
type Source struct {
	IPAddress string `json:"ipAddress,omitempty"`
	UserAgent string `json:"userAgent,omitempty"`
}

// Store defines the interface for audit event persistence.
type Store interface {
	// Save persists an audit event.
	Save(ctx context.Context, event *Event) error

	// Query retrieves events matching the filter, newest first.
	Query(ctx context.Context, filter QueryFilter) ([]Event, error)

	// Count returns the number of events matching the filter, ignoring
	// Limit and Offset.
	Count(ctx context.Context, filter QueryFilter) (int64, error)

	// Delete removes events older than the cutoff.
	Delete(ctx context.Context, olderThan time.Time) (int64, error)
}

// QueryFilter defines filtering options for audit queries. Zero values
// match everything.
type QueryFilter struct {
	Types      []EventType
	ActorID    string
	TargetType string
	TargetID   string
	Since      *time.Time

	Limit  int
	Offset int
}

// MaxQueryLimit caps a single page of events.
const MaxQueryLimit = 500

// DefaultQueryFilter returns the newest 100 events.
func DefaultQueryFilter() QueryFilter {
	return QueryFilter{Limit: 100}
}

// normalized clamps Limit into 1..MaxQueryLimit and Offset to >= 0.
func (f QueryFilter) normalized() QueryFilter {
	if f.Limit <= 0 {
		f.Limit = DefaultQueryFilter().Limit
	}
	if f.Limit > MaxQueryLimit {
		f.Limit = MaxQueryLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}
