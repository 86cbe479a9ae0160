// Reelview - Movie Reviews and Catalog Curation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelview

package backup

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/tomtom215/reelview/internal/logging"
)

// Prune deletes the archives the retention policy no longer keeps and
// returns them.
func (m *Manager) Prune(now time.Time) ([]*Backup, error) {
	backups, err := m.List()
	if err != nil {
		return nil, err
	}

	toDelete := selectExpired(backups, m.cfg, now)
	var deleted []*Backup
	var freed int64
	for _, b := range toDelete {
		err := os.Remove(filepath.Join(m.cfg.Dir, b.FileName))
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return deleted, fmt.Errorf("failed to delete %s: %w", b.FileName, err)
		}
		deleted = append(deleted, b)
		freed += b.FileSize
	}

	if len(deleted) > 0 {
		logging.Info().Int("deleted", len(deleted)).Int64("freed_bytes", freed).Msg("Backup retention applied")
	}
	return deleted, nil
}

// selectExpired applies the retention rules in order: the MinCount newest
// are kept, archives older than MaxAge are dropped, then the oldest
// survivors are dropped until MaxCount remain.
func selectExpired(backups []*Backup, policy Config, now time.Time) []*Backup {
	sorted := make([]*Backup, len(backups))
	copy(sorted, backups)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})

	minCount := max(policy.MinCount, 0)
	var kept, expired []*Backup
	for i, b := range sorted {
		if i >= minCount && policy.MaxAge > 0 && b.CreatedAt.Before(now.Add(-policy.MaxAge)) {
			expired = append(expired, b)
			continue
		}
		kept = append(kept, b)
	}

	if policy.MaxCount > 0 && len(kept) > policy.MaxCount {
		limit := max(policy.MaxCount, minCount)
		if len(kept) > limit {
			expired = append(expired, kept[limit:]...)
		}
	}
	return expired
}
