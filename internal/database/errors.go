// Reelview - Movie Reviews and Catalog Curation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelview

package database

import (
	"database/sql"
	"errors"
	"fmt"
	"io"

	"github.com/tomtom215/reelview/internal/logging"
)

// ErrNotFound is wrapped by every lookup, update or delete that matched no
// row. Test with errors.Is; the message names the entity ("movie: not found").
var ErrNotFound = errors.New("not found")

// lookupError converts a single-row query error. sql.ErrNoRows becomes
// ErrNotFound so callers never depend on database/sql.
func lookupError(err error, verb, entity string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", entity, ErrNotFound)
	}
	return fmt.Errorf("failed to %s %s: %w", verb, entity, err)
}

// checkRowsAffected turns a write that matched nothing into ErrNotFound.
func checkRowsAffected(result sql.Result, entity string) error {
	n, err := result.RowsAffected()
	switch {
	case err != nil:
		return fmt.Errorf("failed to read rows affected: %w", err)
	case n == 0:
		return fmt.Errorf("%s: %w", entity, ErrNotFound)
	}
	return nil
}

// closeWithLog is deferred on result sets; a failed close is only logged.
func closeWithLog(c io.Closer, what string) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		logging.Warn().Err(err).Str("resource", what).Msg("Close failed")
	}
}

// closeQuietly is for error paths that already return a better error.
func closeQuietly(c io.Closer) {
	if c != nil {
		_ = c.Close() //nolint:errcheck // error path
	}
}
