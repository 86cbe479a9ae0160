// Reelview - Movie Reviews and Catalog Curation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelview

package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/reelview/internal/models"
)

func testSubject() *AuthSubject {
	return &AuthSubject{
		ID:          "user-1",
		Email:       "ripley@example.com",
		Username:    "ripley",
		Role:        models.RoleUser,
		Provider:    models.ProviderLocal,
		IsConfirmed: true,
	}
}

// storeFactories lists every SessionStore implementation under test.
func storeFactories(t *testing.T) map[string]func() SessionStore {
	return map[string]func() SessionStore{
		"memory": func() SessionStore {
			return NewMemorySessionStore()
		},
		"badger": func() SessionStore {
			store, err := OpenBadgerSessionStore("")
			if err != nil {
				t.Fatalf("OpenBadgerSessionStore: %v", err)
			}
			t.Cleanup(func() { _ = store.Close() })
			return store
		},
	}
}

func TestSessionStore_Lifecycle(t *testing.T) {
	for name, newStore := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := newStore()

			session, err := NewSession(testSubject(), time.Hour)
			if err != nil {
				t.Fatalf("NewSession: %v", err)
			}
			if len(session.ID) != 64 {
				t.Errorf("session id length = %d, want 64", len(session.ID))
			}
			if err := store.Create(ctx, session); err != nil {
				t.Fatalf("Create: %v", err)
			}

			got, err := store.Get(ctx, session.ID)
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if got.UserID != "user-1" || got.Username != "ripley" || got.Role != models.RoleUser {
				t.Errorf("Get returned %+v", got)
			}

			got.Username = "ellen"
			if err := store.Update(ctx, got); err != nil {
				t.Fatalf("Update: %v", err)
			}
			got, _ = store.Get(ctx, session.ID)
			if got.Username != "ellen" {
				t.Errorf("Username after update = %q, want ellen", got.Username)
			}

			newExpiry := time.Now().Add(2 * time.Hour).Truncate(time.Second)
			if err := store.Touch(ctx, session.ID, newExpiry); err != nil {
				t.Fatalf("Touch: %v", err)
			}
			got, _ = store.Get(ctx, session.ID)
			if !got.ExpiresAt.Equal(newExpiry) {
				t.Errorf("ExpiresAt = %v, want %v", got.ExpiresAt, newExpiry)
			}

			if err := store.Delete(ctx, session.ID); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			if _, err := store.Get(ctx, session.ID); !errors.Is(err, ErrSessionNotFound) {
				t.Errorf("Get after delete error = %v, want ErrSessionNotFound", err)
			}
			if err := store.Delete(ctx, session.ID); err != nil {
				t.Errorf("deleting a missing session should succeed, got %v", err)
			}
		})
	}
}

func TestSessionStore_MissingSession(t *testing.T) {
	for name, newStore := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := newStore()

			if _, err := store.Get(ctx, "nope"); !errors.Is(err, ErrSessionNotFound) {
				t.Errorf("Get error = %v, want ErrSessionNotFound", err)
			}
			if err := store.Update(ctx, &Session{ID: "nope", ExpiresAt: time.Now().Add(time.Hour)}); !errors.Is(err, ErrSessionNotFound) {
				t.Errorf("Update error = %v, want ErrSessionNotFound", err)
			}
			if err := store.Touch(ctx, "nope", time.Now().Add(time.Hour)); !errors.Is(err, ErrSessionNotFound) {
				t.Errorf("Touch error = %v, want ErrSessionNotFound", err)
			}
		})
	}
}

func TestSessionStore_ExpiryAndCleanup(t *testing.T) {
	for name, newStore := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := newStore()

			expired, _ := NewSession(testSubject(), -time.Minute)
			live, _ := NewSession(testSubject(), time.Hour)
			for _, s := range []*Session{expired, live} {
				if err := store.Create(ctx, s); err != nil {
					t.Fatalf("Create: %v", err)
				}
			}

			if _, err := store.Get(ctx, expired.ID); !errors.Is(err, ErrSessionExpired) {
				t.Errorf("Get expired error = %v, want ErrSessionExpired", err)
			}

			n, err := store.CleanupExpired(ctx)
			if err != nil {
				t.Fatalf("CleanupExpired: %v", err)
			}
			if n != 1 {
				t.Errorf("CleanupExpired removed %d, want 1", n)
			}
			if _, err := store.Get(ctx, live.ID); err != nil {
				t.Errorf("live session lost: %v", err)
			}
		})
	}
}

func TestSessionStore_DeleteByUserID(t *testing.T) {
	for name, newStore := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := newStore()

			other := testSubject()
			other.ID = "user-2"

			a, _ := NewSession(testSubject(), time.Hour)
			b, _ := NewSession(testSubject(), time.Hour)
			c, _ := NewSession(other, time.Hour)
			for _, s := range []*Session{a, b, c} {
				if err := store.Create(ctx, s); err != nil {
					t.Fatalf("Create: %v", err)
				}
			}

			n, err := store.DeleteByUserID(ctx, "user-1")
			if err != nil {
				t.Fatalf("DeleteByUserID: %v", err)
			}
			if n != 2 {
				t.Errorf("DeleteByUserID removed %d, want 2", n)
			}
			if _, err := store.Get(ctx, a.ID); !errors.Is(err, ErrSessionNotFound) {
				t.Errorf("session a still present: %v", err)
			}
			if _, err := store.Get(ctx, c.ID); err != nil {
				t.Errorf("other user's session lost: %v", err)
			}
		})
	}
}

func TestMemorySessionStore_ReturnsCopies(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemorySessionStore()
	session, _ := NewSession(testSubject(), time.Hour)
	if err := store.Create(ctx, session); err != nil {
		t.Fatalf("Create: %v", err)
	}

	session.Username = "mutated"
	got, _ := store.Get(ctx, session.ID)
	if got.Username != "ripley" {
		t.Errorf("stored session changed through caller pointer: %q", got.Username)
	}
	got.Username = "mutated"
	again, _ := store.Get(ctx, session.ID)
	if again.Username != "ripley" {
		t.Errorf("stored session changed through returned pointer: %q", again.Username)
	}
}

func TestNewSessionStore(t *testing.T) {
	t.Parallel()

	store, err := NewSessionStore(SessionStoreMemory, "")
	if err != nil {
		t.Fatalf("NewSessionStore(memory): %v", err)
	}
	if _, ok := store.(*MemorySessionStore); !ok {
		t.Errorf("memory store type = %T", store)
	}
	_ = store.Close()

	store, err = NewSessionStore(SessionStoreBadger, t.TempDir())
	if err != nil {
		t.Fatalf("NewSessionStore(badger): %v", err)
	}
	if _, ok := store.(*BadgerSessionStore); !ok {
		t.Errorf("badger store type = %T", store)
	}
	if err := store.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}

	if _, err := NewSessionStore("redis", ""); err == nil {
		t.Error("unknown store type should fail")
	}
}

func TestSession_ToAuthSubject(t *testing.T) {
	t.Parallel()

	session, _ := NewSession(testSubject(), time.Hour)
	subject := session.ToAuthSubject()
	if subject.ID != "user-1" || subject.SessionID != session.ID || !subject.IsConfirmed {
		t.Errorf("ToAuthSubject = %+v", subject)
	}
	if subject.ExpiresAt != session.ExpiresAt.Unix() {
		t.Errorf("ExpiresAt = %d, want %d", subject.ExpiresAt, session.ExpiresAt.Unix())
	}
}
