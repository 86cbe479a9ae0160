// Reelview - Movie Reviews and Catalog Curation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelview

package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/tomtom215/reelview/internal/models"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
)

// sessionIDBytes gives 64 hex characters of session ID.
const sessionIDBytes = 32

// Session is the server-side record behind a "store" strategy cookie. It
// snapshots the subject at sign-in; profile changes re-issue the session.
type Session struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	Email       string          `json:"email"`
	Username    string          `json:"username"`
	Role        models.Role     `json:"role"`
	Provider    models.Provider `json:"provider"`
	IsConfirmed bool            `json:"is_confirmed"`

	CreatedAt      time.Time `json:"created_at"`
	ExpiresAt      time.Time `json:"expires_at"`
	LastAccessedAt time.Time `json:"last_accessed_at"`
}

// NewSession opens a session for subject that lasts ttl.
func NewSession(subject *AuthSubject, ttl time.Duration) (*Session, error) {
	id, err := randomHex(sessionIDBytes)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	s := &Session{ID: id, CreatedAt: now, LastAccessedAt: now, ExpiresAt: now.Add(ttl)}
	s.UserID, s.Email, s.Username = subject.ID, subject.Email, subject.Username
	s.Role, s.Provider, s.IsConfirmed = subject.Role, subject.Provider, subject.IsConfirmed
	return s, nil
}

func (s *Session) IsExpired() bool {
	return !time.Now().Before(s.ExpiresAt)
}

// ToAuthSubject is the request-context view of the session.
func (s *Session) ToAuthSubject() *AuthSubject {
	return &AuthSubject{
		ID:          s.UserID,
		Email:       s.Email,
		Username:    s.Username,
		Role:        s.Role,
		Provider:    s.Provider,
		IsConfirmed: s.IsConfirmed,
		SessionID:   s.ID,
		ExpiresAt:   s.ExpiresAt.Unix(),
	}
}

// SessionStore persists sessions for the "store" strategy. Get reports
// ErrSessionExpired for a session past its expiry that has not been
// cleaned up yet; Update and Touch report ErrSessionNotFound for unknown
// IDs. Deleting an unknown ID succeeds.
type SessionStore interface {
	Create(ctx context.Context, session *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Update(ctx context.Context, session *Session) error
	Delete(ctx context.Context, id string) error
	// DeleteByUserID signs a user out everywhere.
	DeleteByUserID(ctx context.Context, userID string) (int, error)
	// Touch slides the expiry forward on use.
	Touch(ctx context.Context, id string, newExpiry time.Time) error
	CleanupExpired(ctx context.Context) (int, error)
}

// MemorySessionStore keeps sessions in process memory, indexed by ID and by
// user. Callers always receive copies. Nothing survives a restart.
type MemorySessionStore struct {
	mu     sync.RWMutex
	byID   map[string]Session
	byUser map[string]map[string]struct{}
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		byID:   make(map[string]Session),
		byUser: make(map[string]map[string]struct{}),
	}
}

func (s *MemorySessionStore) Create(_ context.Context, session *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(*session)
	return nil
}

func (s *MemorySessionStore) Get(_ context.Context, id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.byID[id]
	switch {
	case !ok:
		return nil, ErrSessionNotFound
	case session.IsExpired():
		return nil, ErrSessionExpired
	}
	return &session, nil
}

func (s *MemorySessionStore) Update(_ context.Context, session *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[session.ID]; !ok {
		return ErrSessionNotFound
	}
	s.put(*session)
	return nil
}

func (s *MemorySessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remove(id)
	return nil
}

func (s *MemorySessionStore) DeleteByUserID(_ context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := s.byUser[userID]
	n := len(ids)
	for id := range ids {
		s.remove(id)
	}
	return n, nil
}

func (s *MemorySessionStore) Touch(_ context.Context, id string, newExpiry time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.byID[id]
	if !ok {
		return ErrSessionNotFound
	}
	session.LastAccessedAt = time.Now()
	session.ExpiresAt = newExpiry
	s.byID[id] = session
	return nil
}

func (s *MemorySessionStore) CleanupExpired(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, session := range s.byID {
		if session.IsExpired() {
			s.remove(id)
			n++
		}
	}
	return n, nil
}

// Close satisfies ClosableSessionStore.
func (s *MemorySessionStore) Close() error { return nil }

// Len counts stored sessions, including expired ones not yet cleaned up.
func (s *MemorySessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

// put must be called with mu held. A session whose owner changed is moved
// between user indexes.
func (s *MemorySessionStore) put(session Session) {
	if old, ok := s.byID[session.ID]; ok && old.UserID != session.UserID {
		s.unindex(old)
	}
	s.byID[session.ID] = session
	ids := s.byUser[session.UserID]
	if ids == nil {
		ids = make(map[string]struct{})
		s.byUser[session.UserID] = ids
	}
	ids[session.ID] = struct{}{}
}

// remove must be called with mu held.
func (s *MemorySessionStore) remove(id string) {
	if session, ok := s.byID[id]; ok {
		delete(s.byID, id)
		s.unindex(session)
	}
}

func (s *MemorySessionStore) unindex(session Session) {
	ids := s.byUser[session.UserID]
	delete(ids, session.ID)
	if len(ids) == 0 {
		delete(s.byUser, session.UserID)
	}
}
