// Reelview - Movie Reviews and Catalog Curation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelview

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

// SessionStoreType defines the type of session storage backend.
type SessionStoreType string

const (
	// SessionStoreMemory keeps sessions in process memory.
	SessionStoreMemory SessionStoreType = "memory"

	// SessionStoreBadger persists sessions in BadgerDB.
	SessionStoreBadger SessionStoreType = "badger"
)

// Session storage key prefixes
const (
	badgerSessionKeyPrefix     = "session:"
	badgerSessionUserKeyPrefix = "session_user:"
)

// ClosableSessionStore is a SessionStore owning resources that must be released.
type ClosableSessionStore interface {
	SessionStore
	Close() error
}

// NewSessionStore opens the store named by storeType. An empty type means memory.
// For badger, path is the data directory; an empty path opens an in-memory
// badger instance.
func NewSessionStore(storeType SessionStoreType, path string) (ClosableSessionStore, error) {
	switch storeType {
	case "", SessionStoreMemory:
		return NewMemorySessionStore(), nil
	case SessionStoreBadger:
		store, err := OpenBadgerSessionStore(path)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown session store %q", storeType)
	}
}

// BadgerSessionStore is a BadgerDB-backed SessionStore.
// Entries carry a badger TTL matching the session expiry, so stale sessions
// disappear even if cleanup never runs.
type BadgerSessionStore struct {
	db *badger.DB
}

// OpenBadgerSessionStore opens (or creates) a badger database at path.
func OpenBadgerSessionStore(path string) (*BadgerSessionStore, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}
	return &BadgerSessionStore{db: db}, nil
}

func sessionKey(id string) []byte {
	return []byte(badgerSessionKeyPrefix + id)
}

func sessionUserKey(userID, id string) []byte {
	return []byte(badgerSessionUserKeyPrefix + userID + ":" + id)
}

// put writes the session and its user index with a TTL ending at expiry.
func (s *BadgerSessionStore) put(txn *badger.Txn, session *Session) error {
	ttl := time.Until(session.ExpiresAt)
	if ttl < time.Minute {
		ttl = time.Minute
	}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := txn.SetEntry(badger.NewEntry(sessionKey(session.ID), data).WithTTL(ttl)); err != nil {
		return fmt.Errorf("set session: %w", err)
	}
	userEntry := badger.NewEntry(sessionUserKey(session.UserID, session.ID), []byte(session.ID)).WithTTL(ttl)
	if err := txn.SetEntry(userEntry); err != nil {
		return fmt.Errorf("set user mapping: %w", err)
	}
	return nil
}

func readSession(txn *badger.Txn, id string) (*Session, error) {
	item, err := txn.Get(sessionKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	var session Session
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &session)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &session, nil
}

// Create stores a new session.
func (s *BadgerSessionStore) Create(_ context.Context, session *Session) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return s.put(txn, session)
	})
}

// Get retrieves a session by ID.
func (s *BadgerSessionStore) Get(_ context.Context, id string) (*Session, error) {
	var session *Session
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		session, err = readSession(txn, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	if session.IsExpired() {
		return nil, ErrSessionExpired
	}
	return session, nil
}

// Update replaces an existing session.
func (s *BadgerSessionStore) Update(_ context.Context, session *Session) error {
	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := readSession(txn, session.ID); err != nil {
			return err
		}
		return s.put(txn, session)
	})
}

// Delete removes a session by ID.
func (s *BadgerSessionStore) Delete(_ context.Context, id string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return deleteSession(txn, id)
	})
}

func deleteSession(txn *badger.Txn, id string) error {
	session, err := readSession(txn, id)
	if errors.Is(err, ErrSessionNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := txn.Delete(sessionKey(id)); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if err := txn.Delete(sessionUserKey(session.UserID, id)); err != nil {
		return fmt.Errorf("delete user mapping: %w", err)
	}
	return nil
}

// DeleteByUserID removes all sessions for a user.
func (s *BadgerSessionStore) DeleteByUserID(_ context.Context, userID string) (int, error) {
	var ids []string
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(badgerSessionUserKeyPrefix + userID + ":")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := it.Item().Value(func(val []byte) error {
				ids = append(ids, string(val))
				return nil
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("list user sessions: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		for _, id := range ids {
			if err := deleteSession(txn, id); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}

// Touch updates the session's last accessed time and extends expiry.
func (s *BadgerSessionStore) Touch(_ context.Context, id string, newExpiry time.Time) error {
	return s.db.Update(func(txn *badger.Txn) error {
		session, err := readSession(txn, id)
		if err != nil {
			return err
		}
		session.LastAccessedAt = time.Now()
		session.ExpiresAt = newExpiry
		return s.put(txn, session)
	})
}

// CleanupExpired removes expired sessions that badger has not dropped yet.
func (s *BadgerSessionStore) CleanupExpired(_ context.Context) (int, error) {
	var expired []string
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(badgerSessionKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var session Session
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &session)
			}); err != nil {
				continue
			}
			if session.IsExpired() {
				expired = append(expired, session.ID)
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("scan sessions: %w", err)
	}
	if len(expired) == 0 {
		return 0, nil
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		for _, id := range expired {
			if err := deleteSession(txn, id); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(expired), nil
}

// Close closes the underlying database.
func (s *BadgerSessionStore) Close() error {
	return s.db.Close()
}
