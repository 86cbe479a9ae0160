// Reelview - Movie Reviews and Catalog Curation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelview

package backup

import (
	"archive/tar"
	"compress/gzip"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
)

const (
	archiveDatabase = "database/reelview.duckdb"
	archiveWAL      = "database/reelview.duckdb.wal"
	archiveMetadata = "backup-metadata.json"
)

// archiveWriters chains file -> gzip -> tar.
type archiveWriters struct {
	tarWriter *tar.Writer
	closers   []io.Closer
}

// Close closes all writers in reverse order, returning the first error.
func (aw *archiveWriters) Close() error {
	var firstErr error
	for i := len(aw.closers) - 1; i >= 0; i-- {
		if err := aw.closers[i].Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

//nolint:gosec // G304: path is built from the configured backup directory
func setupArchiveWriters(path string) (*archiveWriters, error) {
	out, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o640)
	if err != nil {
		return nil, fmt.Errorf("failed to create backup file: %w", err)
	}
	gz, err := gzip.NewWriterLevel(out, gzip.BestCompression)
	if err != nil {
		out.Close() //nolint:errcheck // Best effort cleanup on error
		return nil, fmt.Errorf("failed to create gzip writer: %w", err)
	}
	tw := tar.NewWriter(gz)
	return &archiveWriters{tarWriter: tw, closers: []io.Closer{out, gz, tw}}, nil
}

// writeArchive writes the database file, its WAL when present, and the
// metadata entry last.
func writeArchive(path, dbPath string, b *Backup, start time.Time) (err error) {
	aw, err := setupArchiveWriters(path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := aw.Close(); err == nil {
			err = closeErr
		}
	}()

	if err := addFile(aw.tarWriter, dbPath, archiveDatabase, b); err != nil {
		return fmt.Errorf("failed to add database file: %w", err)
	}
	if walPath := dbPath + ".wal"; fileExists(walPath) {
		if err := addFile(aw.tarWriter, walPath, archiveWAL, b); err != nil {
			return fmt.Errorf("failed to add WAL file: %w", err)
		}
	}

	b.Duration = time.Since(start)
	return addMetadata(aw.tarWriter, b)
}

//nolint:gosec // G304: srcPath is the configured database path
func addFile(tw *tar.Writer, srcPath, destPath string, b *Backup) error {
	file, err := os.Open(srcPath)
	if err != nil {
		return err
	}
	defer file.Close() //nolint:errcheck // read-only

	info, err := file.Stat()
	if err != nil {
		return err
	}
	header, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return err
	}
	header.Name = destPath
	if err := tw.WriteHeader(header); err != nil {
		return err
	}

	hasher := sha256.New()
	n, err := io.Copy(io.MultiWriter(tw, hasher), file)
	if err != nil {
		return err
	}
	b.Files = append(b.Files, File{
		Path:     destPath,
		Size:     n,
		Checksum: hex.EncodeToString(hasher.Sum(nil)),
	})
	return nil
}

func addMetadata(tw *tar.Writer, b *Backup) error {
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal backup metadata: %w", err)
	}
	header := &tar.Header{
		Name:    archiveMetadata,
		Size:    int64(len(data)),
		Mode:    0o640,
		ModTime: b.CreatedAt,
	}
	if err := tw.WriteHeader(header); err != nil {
		return fmt.Errorf("failed to write metadata header: %w", err)
	}
	if _, err := tw.Write(data); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}
	return nil
}

// walkArchive calls fn for every regular entry of a gzip tar archive.
//
//nolint:gosec // G304: path is inside the configured backup directory
func walkArchive(path string, fn func(header *tar.Header, r io.Reader) error) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close() //nolint:errcheck // read-only

	gz, err := gzip.NewReader(file)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	defer gz.Close() //nolint:errcheck // read-only

	tr := tar.NewReader(gz)
	for {
		header, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		if header.Typeflag != tar.TypeReg {
			continue
		}
		if err := fn(header, tr); err != nil {
			return err
		}
	}
}

// readMetadata returns the metadata entry of an archive.
func readMetadata(path string) (*Backup, error) {
	var b *Backup
	err := walkArchive(path, func(header *tar.Header, r io.Reader) error {
		if header.Name != archiveMetadata {
			return nil
		}
		b = &Backup{}
		if err := json.NewDecoder(r).Decode(b); err != nil {
			return fmt.Errorf("%w: metadata: %v", ErrCorrupt, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, fmt.Errorf("%w: no metadata entry", ErrCorrupt)
	}
	return b, nil
}

// verifyArchive hashes every entry listed in b.Files and compares sizes
// and checksums.
func verifyArchive(path string, b *Backup) error {
	seen := make(map[string]bool, len(b.Files))
	expected := make(map[string]File, len(b.Files))
	for _, f := range b.Files {
		expected[f.Path] = f
	}

	err := walkArchive(path, func(header *tar.Header, r io.Reader) error {
		want, ok := expected[header.Name]
		if !ok {
			return nil
		}
		hasher := sha256.New()
		n, err := io.Copy(hasher, r)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrCorrupt, header.Name, err)
		}
		if n != want.Size || hex.EncodeToString(hasher.Sum(nil)) != want.Checksum {
			return fmt.Errorf("%w: checksum mismatch for %s", ErrCorrupt, header.Name)
		}
		seen[header.Name] = true
		return nil
	})
	if err != nil {
		return err
	}
	for name := range expected {
		if !seen[name] {
			return fmt.Errorf("%w: missing %s", ErrCorrupt, name)
		}
	}
	return nil
}

// extractDatabase writes the archived database to target, and its WAL to
// target.wal. A WAL left next to target by an earlier database is removed
// when the archive has none.
func extractDatabase(path, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return fmt.Errorf("failed to create restore directory: %w", err)
	}

	var restoredWAL bool
	err := walkArchive(path, func(header *tar.Header, r io.Reader) error {
		switch header.Name {
		case archiveDatabase:
			return writeFileAtomic(target, r)
		case archiveWAL:
			restoredWAL = true
			return writeFileAtomic(target+".wal", r)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if !restoredWAL {
		if err := os.Remove(target + ".wal"); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to remove stale WAL: %w", err)
		}
	}
	return nil
}

//nolint:gosec // G304: target is chosen by the operator
func writeFileAtomic(target string, r io.Reader) (err error) {
	tmp := target + ".restore"
	out, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o640)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", tmp, err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp)
		}
	}()

	if _, err := io.Copy(out, r); err != nil {
		out.Close() //nolint:errcheck // already failing
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, target)
}
