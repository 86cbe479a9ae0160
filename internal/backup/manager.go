// Reelview - Movie Reviews and Catalog Curation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelview

package backup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/reelview/internal/logging"
)

var (
	// ErrInMemoryDatabase is returned by Create for a database without a file.
	ErrInMemoryDatabase = errors.New("in-memory database cannot be backed up")

	// ErrNotFound is returned when no archive matches a reference.
	ErrNotFound = errors.New("backup not found")

	// ErrCorrupt is returned when an archive fails checksum verification.
	ErrCorrupt = errors.New("backup archive is corrupt")
)

const (
	filePrefix = "reelview-"
	fileSuffix = ".tar.gz"
)

// Source is the database being archived. *database.DB satisfies it.
type Source interface {
	Path() string
	Checkpoint(ctx context.Context) error
	RecordCounts(ctx context.Context) (map[string]int64, error)
}

// Config controls where archives live and how many Prune keeps.
type Config struct {
	Dir      string
	MaxCount int           // 0 keeps any number
	MinCount int           // newest archives never pruned
	MaxAge   time.Duration // 0 disables age-based pruning
}

// File is one archived file.
type File struct {
	Path     string `json:"path"`
	Size     int64  `json:"size"`
	Checksum string `json:"checksum"`
}

// Backup describes one archive.
type Backup struct {
	ID        string           `json:"id"`
	CreatedAt time.Time        `json:"created_at"`
	Note      string           `json:"note,omitempty"`
	Source    string           `json:"source"`
	Records   map[string]int64 `json:"records,omitempty"`
	Files     []File           `json:"files"`
	Duration  time.Duration    `json:"duration"`

	// Set from the file system, not stored in the archive.
	FileName string `json:"-"`
	FileSize int64  `json:"-"`
}

// Manager creates and maintains archives in one directory.
type Manager struct {
	cfg Config
	db  Source
}

// NewManager creates the archive directory if needed. db may be nil for
// operations that do not read the live database (List, Verify, Restore,
// Prune).
func NewManager(cfg Config, db Source) (*Manager, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("backup directory is required")
	}
	if err := os.MkdirAll(cfg.Dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}
	return &Manager{cfg: cfg, db: db}, nil
}

// Create checkpoints the database and archives its files.
func (m *Manager) Create(ctx context.Context, note string) (b *Backup, err error) {
	if m.db == nil {
		return nil, fmt.Errorf("database connection not available")
	}
	dbPath := m.db.Path()
	if dbPath == "" || dbPath == ":memory:" {
		return nil, ErrInMemoryDatabase
	}

	start := time.Now()
	if err := m.db.Checkpoint(ctx); err != nil {
		logging.Warn().Err(err).Msg("Checkpoint failed, backup may miss recent writes")
	}

	b = &Backup{
		ID:        uuid.New().String(),
		CreatedAt: start.UTC(),
		Note:      note,
		Source:    dbPath,
	}
	if counts, err := m.db.RecordCounts(ctx); err == nil {
		b.Records = counts
	} else {
		logging.Warn().Err(err).Msg("Failed to count records for backup metadata")
	}
	b.FileName = fmt.Sprintf("%s%s-%s%s", filePrefix, b.CreatedAt.Format("20060102-150405"), b.ID[:8], fileSuffix)

	finalPath := filepath.Join(m.cfg.Dir, b.FileName)
	tmpPath := finalPath + ".tmp"
	defer func() {
		if err != nil {
			_ = os.Remove(tmpPath)
		}
	}()

	if err := writeArchive(tmpPath, dbPath, b, start); err != nil {
		return nil, err
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		return nil, fmt.Errorf("failed to finalize backup: %w", err)
	}
	b.FileSize = fileSize(finalPath)

	logging.Info().
		Str("backup_id", b.ID).
		Str("file", b.FileName).
		Int64("size", b.FileSize).
		Dur("duration", b.Duration).
		Msg("Backup created")
	return b, nil
}

// List returns the readable archives, newest first.
func (m *Manager) List() ([]*Backup, error) {
	entries, err := os.ReadDir(m.cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	var backups []*Backup
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
			continue
		}
		path := filepath.Join(m.cfg.Dir, name)
		b, err := readMetadata(path)
		if err != nil {
			logging.Warn().Err(err).Str("file", name).Msg("Skipping unreadable backup archive")
			continue
		}
		b.FileName = name
		b.FileSize = fileSize(path)
		backups = append(backups, b)
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].CreatedAt.After(backups[j].CreatedAt)
	})
	return backups, nil
}

// Find resolves ref, a backup ID, an ID prefix of at least 8 characters or
// an archive file name.
func (m *Manager) Find(ref string) (*Backup, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, ErrNotFound
	}
	backups, err := m.List()
	if err != nil {
		return nil, err
	}

	var match *Backup
	for _, b := range backups {
		if b.ID == ref || b.FileName == ref {
			return b, nil
		}
		if len(ref) >= 8 && strings.HasPrefix(b.ID, ref) {
			if match != nil {
				return nil, fmt.Errorf("backup reference %q is ambiguous", ref)
			}
			match = b
		}
	}
	if match == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
	}
	return match, nil
}

// Verify recomputes the checksum of every file in the archive.
func (m *Manager) Verify(ref string) error {
	b, err := m.Find(ref)
	if err != nil {
		return err
	}
	return verifyArchive(filepath.Join(m.cfg.Dir, b.FileName), b)
}

// Restore verifies the archive and writes its database file to target.
// An existing target is replaced only when overwrite is set.
func (m *Manager) Restore(ref, target string, overwrite bool) error {
	b, err := m.Find(ref)
	if err != nil {
		return err
	}
	if !overwrite && fileExists(target) {
		return fmt.Errorf("%s already exists", target)
	}
	path := filepath.Join(m.cfg.Dir, b.FileName)
	if err := verifyArchive(path, b); err != nil {
		return err
	}
	if err := extractDatabase(path, target); err != nil {
		return err
	}
	logging.Info().Str("backup_id", b.ID).Str("target", target).Msg("Backup restored")
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func fileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}
