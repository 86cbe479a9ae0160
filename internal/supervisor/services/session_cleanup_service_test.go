// Reelview - Movie Reviews and Catalog Curation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelview

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/reelview/internal/auth"
	"github.com/tomtom215/reelview/internal/models"
)

type fakeSessionStore struct {
	calls atomic.Int32
	err   error
	swept chan struct{}
}

func newFakeSessionStore(err error) *fakeSessionStore {
	return &fakeSessionStore{err: err, swept: make(chan struct{}, 8)}
}

func (f *fakeSessionStore) CleanupExpired(context.Context) (int, error) {
	f.calls.Add(1)
	select {
	case f.swept <- struct{}{}:
	default:
	}
	if f.err != nil {
		return 0, f.err
	}
	return 2, nil
}

func (f *fakeSessionStore) waitSweeps(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-f.swept:
		case <-time.After(2 * time.Second):
			t.Fatalf("only %d of %d sweeps ran", i, n)
		}
	}
}

func TestNewSessionCleanupService(t *testing.T) {
	svc := NewSessionCleanupService(newFakeSessionStore(nil), 0)
	assert.Equal(t, DefaultCleanupInterval, svc.interval)
	assert.Equal(t, "session-cleanup", svc.String())

	svc = NewSessionCleanupService(newFakeSessionStore(nil), time.Minute)
	assert.Equal(t, time.Minute, svc.interval)
}

func TestSessionCleanupService_Serve(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"sweeps until canceled", nil},
		{"keeps running after a store error", errors.New("disk full")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeSessionStore(tt.err)
			svc := NewSessionCleanupService(store, 10*time.Millisecond)

			ctx, cancel := context.WithCancel(context.Background())
			errCh := make(chan error, 1)
			go func() { errCh <- svc.Serve(ctx) }()

			store.waitSweeps(t, 2)
			cancel()

			select {
			case err := <-errCh:
				assert.ErrorIs(t, err, context.Canceled)
			case <-time.After(2 * time.Second):
				t.Fatal("Serve did not return after cancel")
			}
			assert.GreaterOrEqual(t, store.calls.Load(), int32(2))
		})
	}
}

func TestSessionCleanupService_MemoryStore(t *testing.T) {
	ctx := context.Background()
	store := auth.NewMemorySessionStore()
	t.Cleanup(func() { _ = store.Close() })

	subject := &auth.AuthSubject{ID: "user-1", Username: "ripley", Role: models.RoleUser}
	expired, err := auth.NewSession(subject, -time.Minute)
	require.NoError(t, err)
	live, err := auth.NewSession(subject, time.Hour)
	require.NoError(t, err)
	require.NoError(t, store.Create(ctx, expired))
	require.NoError(t, store.Create(ctx, live))

	svc := NewSessionCleanupService(store, 10*time.Millisecond)
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		_ = svc.Serve(runCtx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return store.Len() == 1 }, 2*time.Second, 10*time.Millisecond)
	cancel()
	<-done

	_, err = store.Get(ctx, live.ID)
	assert.NoError(t, err)
}
