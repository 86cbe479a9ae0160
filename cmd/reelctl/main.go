// Reelview - Movie Reviews and Catalog Curation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelview

// Command reelctl runs administrative tasks against a Reelview database
// without starting the server: schema migration, account provisioning,
// catalog imports from TMDB and database backups.
//
// It reads the same configuration as the server (.env, config.yaml and the
// environment). Stop the server first; DuckDB allows a single writer process.
package main

import (
	"fmt"
	"os"

	_ "github.com/joho/godotenv/autoload" // load .env before config.Load reads the environment
	"github.com/spf13/cobra"

	"github.com/tomtom215/reelview/internal/config"
	"github.com/tomtom215/reelview/internal/database"
	"github.com/tomtom215/reelview/internal/logging"
)

var (
	// Global flags
	dbPath  string
	verbose bool

	// cfg is loaded once per invocation by rootCmd.PersistentPreRunE.
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:           "reelctl",
	Short:         "Administer a Reelview installation",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		if dbPath != "" {
			loaded.Database.Path = dbPath
		}
		level := "warn"
		if verbose {
			level = "debug"
		}
		logging.Init(logging.Config{Level: level, Format: "console"})
		cfg = loaded
		return nil
	},
}

// migrateCmd opens the database, which applies pending migrations.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or upgrade the database schema",
	Args:  cobra.NoArgs,
	RunE:  runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer closeDB(db)

	version, err := db.GetCurrentSchemaVersion(cmd.Context())
	if err != nil {
		return err
	}
	movies, err := db.CountMovies(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Schema up to date at %s (version %d, %d movies)\n", cfg.Database.Path, version, movies)
	return nil
}

func openDB() (*database.DB, error) {
	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", cfg.Database.Path, err)
	}
	return db, nil
}

func closeDB(db *database.DB) {
	if err := db.Close(); err != nil {
		logging.Error().Err(err).Msg("Error closing database")
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "DuckDB file (default: DATABASE_PATH)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(movieCmd)
	rootCmd.AddCommand(backupCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
