// Reelview - Movie Reviews and Catalog Curation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelview

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tomtom215/reelview/internal/catalog"
	"github.com/tomtom215/reelview/internal/tmdb"
)

var movieTMDBIDs []string

var movieCmd = &cobra.Command{
	Use:   "movie",
	Short: "Manage the catalog",
}

var movieImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Import titles from TMDB",
	Long: `Import one or more titles from TMDB into the catalog.

	reelctl movie import --tmdb-id 603 --tmdb-id 604,605

Titles already in the catalog are skipped. Every id is attempted; the
command fails if any import failed.`,
	Args: cobra.NoArgs,
	RunE: runMovieImport,
}

func runMovieImport(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer closeDB(db)

	importer := catalog.NewImporter(db, tmdb.NewClient(&cfg.TMDB))
	out := cmd.OutOrStdout()

	failed := 0
	for _, id := range movieTMDBIDs {
		res, err := importer.Import(cmd.Context(), id)
		if err != nil {
			failed++
			fmt.Fprintf(out, "FAIL  %s: %v\n", id, err)
			continue
		}
		status := "ADDED"
		if res.Existed {
			status = "SKIP "
		}
		fmt.Fprintf(out, "%s %s: %s id=%s\n", status, id, res.Movie.Title, res.Movie.ID)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d imports failed", failed, len(movieTMDBIDs))
	}
	return nil
}

func init() {
	movieImportCmd.Flags().StringSliceVar(&movieTMDBIDs, "tmdb-id", nil, "TMDB movie id, repeatable (required)")
	_ = movieImportCmd.MarkFlagRequired("tmdb-id")

	movieCmd.AddCommand(movieImportCmd)
}
