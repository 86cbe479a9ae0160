// Reelview - Movie Reviews and Catalog Curation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelview

package backup

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource is a database file with canned row counts.
type fakeSource struct {
	path        string
	checkpoints int
}

func (f *fakeSource) Path() string { return f.path }

func (f *fakeSource) Checkpoint(context.Context) error {
	f.checkpoints++
	return nil
}

func (f *fakeSource) RecordCounts(context.Context) (map[string]int64, error) {
	return map[string]int64{"movies": 3, "users": 2}, nil
}

func newTestManager(t *testing.T, cfg Config) (*Manager, *fakeSource) {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "data", "reelview.duckdb")
	require.NoError(t, os.MkdirAll(filepath.Dir(dbPath), 0o750))
	require.NoError(t, os.WriteFile(dbPath, []byte("duckdb file contents"), 0o600))

	cfg.Dir = filepath.Join(dir, "backups")
	src := &fakeSource{path: dbPath}
	m, err := NewManager(cfg, src)
	require.NoError(t, err)
	return m, src
}

func TestCreateListVerify(t *testing.T) {
	t.Parallel()
	m, src := newTestManager(t, Config{})

	b, err := m.Create(context.Background(), "before upgrade")
	require.NoError(t, err)
	assert.Equal(t, 1, src.checkpoints)
	assert.FileExists(t, filepath.Join(m.cfg.Dir, b.FileName))
	assert.Positive(t, b.FileSize)
	require.Len(t, b.Files, 1)
	assert.Equal(t, archiveDatabase, b.Files[0].Path)

	list, err := m.List()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, b.ID, list[0].ID)
	assert.Equal(t, "before upgrade", list[0].Note)
	assert.Equal(t, int64(3), list[0].Records["movies"])

	require.NoError(t, m.Verify(b.ID))
	require.NoError(t, m.Verify(b.ID[:8]))
	require.NoError(t, m.Verify(b.FileName))

	err = m.Verify("nonexistent")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreate_IncludesWAL(t *testing.T) {
	t.Parallel()
	m, src := newTestManager(t, Config{})
	require.NoError(t, os.WriteFile(src.path+".wal", []byte("wal"), 0o600))

	b, err := m.Create(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, b.Files, 2)
	assert.Equal(t, archiveWAL, b.Files[1].Path)
}

func TestCreate_InMemory(t *testing.T) {
	t.Parallel()
	m, err := NewManager(Config{Dir: t.TempDir()}, &fakeSource{path: ":memory:"})
	require.NoError(t, err)

	_, err = m.Create(context.Background(), "")
	assert.ErrorIs(t, err, ErrInMemoryDatabase)
}

func TestRestore(t *testing.T) {
	t.Parallel()
	m, src := newTestManager(t, Config{})
	b, err := m.Create(context.Background(), "")
	require.NoError(t, err)

	target := filepath.Join(t.TempDir(), "restored", "reelview.duckdb")
	require.NoError(t, m.Restore(b.ID, target, false))
	got, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "duckdb file contents", string(got))

	err = m.Restore(b.ID, target, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	require.NoError(t, os.WriteFile(target+".wal", []byte("stale"), 0o600))
	require.NoError(t, os.WriteFile(src.path, []byte("changed"), 0o600))
	require.NoError(t, m.Restore(b.ID, target, true))
	got, err = os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "duckdb file contents", string(got))
	assert.NoFileExists(t, target+".wal")
}

func TestVerify_DetectsTampering(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	m, err := NewManager(Config{Dir: dir}, nil)
	require.NoError(t, err)

	meta := &Backup{
		ID:        "0123456789abcdef",
		CreatedAt: time.Now().UTC(),
		Files:     []File{{Path: archiveDatabase, Size: 8, Checksum: "not-the-real-sum"}},
	}
	writeTestArchive(t, filepath.Join(dir, "reelview-tampered.tar.gz"), map[string]string{archiveDatabase: "tampered"}, meta)

	err = m.Verify(meta.ID)
	assert.ErrorIs(t, err, ErrCorrupt)

	err = m.Restore(meta.ID, filepath.Join(dir, "out.duckdb"), false)
	assert.ErrorIs(t, err, ErrCorrupt)
	assert.NoFileExists(t, filepath.Join(dir, "out.duckdb"))
}

func TestList_SkipsUnreadable(t *testing.T) {
	t.Parallel()
	m, _ := newTestManager(t, Config{})
	_, err := m.Create(context.Background(), "")
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(m.cfg.Dir, "reelview-broken.tar.gz"), []byte("not gzip"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(m.cfg.Dir, "notes.txt"), []byte("ignored"), 0o600))

	list, err := m.List()
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestSelectExpired(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	var backups []*Backup
	for i := range 6 {
		backups = append(backups, &Backup{
			ID:        string(rune('a' + i)),
			CreatedAt: now.Add(-time.Duration(i) * 24 * time.Hour),
		})
	}

	ids := func(bs []*Backup) []string {
		out := make([]string, 0, len(bs))
		for _, b := range bs {
			out = append(out, b.ID)
		}
		return out
	}

	tests := []struct {
		name   string
		policy Config
		want   []string
	}{
		{"no limits", Config{}, []string{}},
		{"max count", Config{MaxCount: 4}, []string{"e", "f"}},
		{"max age", Config{MaxAge: 72 * time.Hour}, []string{"e", "f"}},
		{"age and count", Config{MaxAge: 72 * time.Hour, MaxCount: 2}, []string{"e", "f", "c", "d"}},
		{"min count protects old", Config{MaxAge: time.Hour, MinCount: 3}, []string{"d", "e", "f"}},
		{"min count above max count", Config{MaxCount: 1, MinCount: 2}, []string{"c", "d", "e", "f"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.ElementsMatch(t, tt.want, ids(selectExpired(backups, tt.policy, now)))
		})
	}
}

func TestPrune(t *testing.T) {
	t.Parallel()
	m, _ := newTestManager(t, Config{MaxCount: 2})
	for range 3 {
		_, err := m.Create(context.Background(), "")
		require.NoError(t, err)
	}
	before, err := m.List()
	require.NoError(t, err)
	require.Len(t, before, 3)

	deleted, err := m.Prune(time.Now())
	require.NoError(t, err)
	require.Len(t, deleted, 1)
	assert.Equal(t, before[2].ID, deleted[0].ID)

	after, err := m.List()
	require.NoError(t, err)
	assert.Len(t, after, 2)
	_, err = m.Find(deleted[0].ID)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func writeTestArchive(t *testing.T, path string, files map[string]string, meta *Backup) {
	t.Helper()
	out, err := os.Create(path)
	require.NoError(t, err)
	gz := gzip.NewWriter(out)
	tw := tar.NewWriter(gz)

	write := func(name string, data []byte) {
		require.NoError(t, tw.WriteHeader(&tar.Header{Name: name, Size: int64(len(data)), Mode: 0o640, Typeflag: tar.TypeReg}))
		_, err := tw.Write(data)
		require.NoError(t, err)
	}
	for name, body := range files {
		write(name, []byte(body))
	}
	data, err := json.Marshal(meta)
	require.NoError(t, err)
	write(archiveMetadata, data)

	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
	require.NoError(t, out.Close())
}
