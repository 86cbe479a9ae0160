// Reelview - Movie Reviews and Catalog Curation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelview

package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/reelview/internal/config"
	"github.com/tomtom215/reelview/internal/database"
	"github.com/tomtom215/reelview/internal/models"
)

const (
	matrixDetails = `{"id":603,"title":"The Matrix","overview":"A hacker learns the truth.","release_date":"1999-03-31","runtime":136,` +
		`"genres":[{"id":28,"name":"Action"}],"production_companies":[{"id":1,"name":"Warner Bros."}],` +
		`"poster_path":"/matrix.jpg","vote_average":8.2,"vote_count":20000,"imdb_id":"tt0133093"}`
	matrixCredits = `{"id":603,"cast":[{"id":1,"name":"Keanu Reeves","character":"Neo","order":0}],` +
		`"crew":[{"id":2,"name":"Lana Wachowski","job":"Director"}]}`
)

// setup points the global config at a fresh database file and returns a
// command whose output is captured.
func setup(t *testing.T) (*cobra.Command, *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()
	cfg = &config.Config{
		Database: config.DatabaseConfig{Path: filepath.Join(dir, "reelview.duckdb"), MaxMemory: "256MB", Threads: 1},
		Backup:   config.BackupConfig{Dir: filepath.Join(dir, "backups"), MaxCount: 1},
	}
	t.Cleanup(func() { cfg = nil })

	out := &bytes.Buffer{}
	cmd := &cobra.Command{}
	cmd.SetOut(out)
	cmd.SetContext(context.Background())
	return cmd, out
}

func setUserFlags(t *testing.T, email, username, password string, admin bool) {
	t.Helper()
	userEmail, userName, userPassword, userAdmin = email, username, password, admin
	t.Cleanup(func() { userEmail, userName, userPassword, userAdmin = "", "", "", false })
}

func setTMDBIDs(t *testing.T, ids ...string) {
	t.Helper()
	movieTMDBIDs = ids
	t.Cleanup(func() { movieTMDBIDs = nil })
}

func TestMigrate(t *testing.T) {
	cmd, out := setup(t)

	require.NoError(t, runMigrate(cmd, nil))
	assert.Contains(t, out.String(), "Schema up to date")
	assert.Regexp(t, `\(version [1-9][0-9]*, 0 movies\)`, out.String())

	// Reopening an existing database is a no-op.
	out.Reset()
	require.NoError(t, runMigrate(cmd, nil))
	assert.Contains(t, out.String(), "Schema up to date")
}

func TestUserCreateAndPromote(t *testing.T) {
	cmd, out := setup(t)

	setUserFlags(t, "Ripley@Example.com", "", "nostromo-1979", false)
	require.NoError(t, runUserCreate(cmd, nil))
	assert.Contains(t, out.String(), "Created ripley@example.com (ripley, USER)")

	out.Reset()
	setUserFlags(t, "ripley@example.com", "", "", false)
	require.NoError(t, runUserPromote(cmd, nil))
	assert.Contains(t, out.String(), "Promoted ripley@example.com to ADMIN")

	out.Reset()
	setUserFlags(t, "RIPLEY@example.com", "", "", false)
	require.NoError(t, runUserPromote(cmd, nil))
	assert.Contains(t, out.String(), "already ADMIN")

	out.Reset()
	require.NoError(t, runUserList(cmd, nil))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "EMAIL")
	assert.Contains(t, lines[1], "ripley@example.com")
	assert.Contains(t, lines[1], string(models.RoleAdmin))
}

func TestUserCreate_Errors(t *testing.T) {
	cmd, _ := setup(t)

	setUserFlags(t, "", "", "long-enough", false)
	assert.ErrorContains(t, runUserCreate(cmd, nil), "email is required")

	setUserFlags(t, "a@example.com", "", "short", true)
	assert.ErrorContains(t, runUserCreate(cmd, nil), "at least 8")

	setUserFlags(t, "nobody@example.com", "", "", false)
	assert.ErrorContains(t, runUserPromote(cmd, nil), "no account")
}

func TestMovieImport(t *testing.T) {
	cmd, out := setup(t)

	mux := http.NewServeMux()
	serve := func(body string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, body)
		}
	}
	mux.HandleFunc("/movie/603", serve(matrixDetails))
	mux.HandleFunc("/movie/603/credits", serve(matrixCredits))
	srv := httptest.NewServer(mux)
	defer srv.Close()
	cfg.TMDB = config.TMDBConfig{APIKey: "testkey", BaseURL: srv.URL}

	setTMDBIDs(t, "603")
	require.NoError(t, runMovieImport(cmd, nil))
	assert.Contains(t, out.String(), "ADDED 603: The Matrix")

	out.Reset()
	setTMDBIDs(t, "603", "abc")
	err := runMovieImport(cmd, nil)
	require.ErrorContains(t, err, "1 of 2 imports failed")
	assert.Contains(t, out.String(), "SKIP  603: The Matrix")
	assert.Contains(t, out.String(), "FAIL  abc")
}

func TestBackupLifecycle(t *testing.T) {
	cmd, out := setup(t)
	t.Cleanup(func() { backupNote, backupTarget, backupOverwrite = "", "", false })

	setUserFlags(t, "dallas@example.com", "dallas", "nostromo-1979", false)
	require.NoError(t, runUserCreate(cmd, nil))

	backupNote = "first"
	out.Reset()
	require.NoError(t, runBackupCreate(cmd, nil))
	require.Contains(t, out.String(), "Created reelview-")
	id := strings.TrimSpace(out.String()[strings.Index(out.String(), "id=")+3:])
	require.Len(t, id, 36)

	out.Reset()
	require.NoError(t, runBackupList(cmd, nil))
	assert.Contains(t, out.String(), "NOTE")
	assert.Contains(t, out.String(), id[:8])
	assert.Contains(t, out.String(), "first")

	out.Reset()
	require.NoError(t, runBackupVerify(cmd, []string{id[:8]}))
	assert.Contains(t, out.String(), "OK")

	err := runBackupRestore(cmd, []string{id})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	backupTarget = filepath.Join(t.TempDir(), "restored.duckdb")
	out.Reset()
	require.NoError(t, runBackupRestore(cmd, []string{id}))
	assert.Contains(t, out.String(), "Restored")

	restored, err := database.New(&config.DatabaseConfig{Path: backupTarget, MaxMemory: "256MB", Threads: 1})
	require.NoError(t, err)
	user, err := restored.GetUserByEmail(context.Background(), "dallas@example.com")
	require.NoError(t, err)
	assert.Equal(t, "dallas", user.Username)
	require.NoError(t, restored.Close())

	backupNote = "second"
	require.NoError(t, runBackupCreate(cmd, nil))
	out.Reset()
	require.NoError(t, runBackupPrune(cmd, nil))
	assert.Contains(t, out.String(), "1 archives removed")

	err = runBackupVerify(cmd, []string{id})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
