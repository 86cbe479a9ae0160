// Reelview - Movie Reviews and Catalog Curation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelview

// Package backup writes, verifies, restores and prunes archives of the
// DuckDB database file.
//
// # Archive Layout
//
//	reelview-{20060102-150405}-{id8}.tar.gz
//	├── database/reelview.duckdb
//	├── database/reelview.duckdb.wal   (only when present after checkpoint)
//	└── backup-metadata.json           (id, note, row counts, SHA-256 per file)
//
// The metadata entry is written last, so an archive cut short by a crash
// has no metadata and is skipped by List.
//
// # Retention
//
// Prune keeps the MinCount newest archives unconditionally, removes the
// rest once they are older than MaxAge, then trims the oldest survivors
// until at most MaxCount remain.
//
// # Usage
//
//	m, err := backup.NewManager(backup.Config{Dir: cfg.Backup.Dir, MaxCount: 10, MinCount: 1}, db)
//	b, err := m.Create(ctx, "before upgrade")
//	err = m.Verify(b.ID)
//	err = m.Restore(b.ID, "data/restored.duckdb", false)
//
// DuckDB holds an exclusive lock on its file, so archives are taken and
// restored by reelctl while the server is stopped.
package backup
