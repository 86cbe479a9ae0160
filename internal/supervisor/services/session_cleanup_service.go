// Reelview - Movie Reviews and Catalog Curation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelview

package services

import (
	"context"
	"time"

	"github.com/tomtom215/reelview/internal/logging"
)

// DefaultCleanupInterval is used when no interval is given.
const DefaultCleanupInterval = 15 * time.Minute

// ExpiredSessionStore is satisfied by the auth session stores.
type ExpiredSessionStore interface {
	CleanupExpired(ctx context.Context) (int, error)
}

// SessionCleanupService periodically drops expired server-side sessions.
// It is only needed with the store session strategy; signed JWT cookies
// expire on their own.
type SessionCleanupService struct {
	store    ExpiredSessionStore
	interval time.Duration
	name     string
}

// NewSessionCleanupService sweeps store every interval.
func NewSessionCleanupService(store ExpiredSessionStore, interval time.Duration) *SessionCleanupService {
	if interval <= 0 {
		interval = DefaultCleanupInterval
	}
	return &SessionCleanupService{
		store:    store,
		interval: interval,
		name:     "session-cleanup",
	}
}

// Serve implements suture.Service. Sweep errors are logged and the loop
// keeps running.
func (s *SessionCleanupService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *SessionCleanupService) sweep(ctx context.Context) {
	removed, err := s.store.CleanupExpired(ctx)
	switch {
	case err != nil:
		logging.Warn().Err(err).Msg("Session cleanup failed")
	case removed > 0:
		logging.Info().Int("removed", removed).Msg("Expired sessions removed")
	}
}

// String names the service in supervisor events.
func (s *SessionCleanupService) String() string {
	return s.name
}
