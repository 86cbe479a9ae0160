// Reelview - Movie Reviews and Catalog Curation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelview

package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomtom215/reelview/internal/backup"
)

var (
	backupNote      string
	backupTarget    string
	backupOverwrite bool
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Archive and restore the database",
	Long: `Archives are gzip tarballs of the DuckDB file with SHA-256 checksums,
written to BACKUP_DIR. Retention is set by BACKUP_MAX_COUNT,
BACKUP_MIN_COUNT and BACKUP_MAX_AGE.`,
}

var backupCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Checkpoint the database and write a new archive",
	Args:  cobra.NoArgs,
	RunE:  runBackupCreate,
}

var backupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archives, newest first",
	Args:  cobra.NoArgs,
	RunE:  runBackupList,
}

var backupVerifyCmd = &cobra.Command{
	Use:   "verify <id>",
	Short: "Check the checksums of an archive",
	Args:  cobra.ExactArgs(1),
	RunE:  runBackupVerify,
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore <id>",
	Short: "Write the database from an archive",
	Long: `Verify an archive and write its database file to --to, which defaults
to DATABASE_PATH. An existing file is only replaced with --force.

	reelctl backup restore 1f2e3d4c --force`,
	Args: cobra.ExactArgs(1),
	RunE: runBackupRestore,
}

var backupPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete archives outside the retention policy",
	Args:  cobra.NoArgs,
	RunE:  runBackupPrune,
}

// backupManager opens the archive directory. db is only needed by create.
func backupManager(src backup.Source) (*backup.Manager, error) {
	return backup.NewManager(backup.Config{
		Dir:      cfg.Backup.Dir,
		MaxCount: cfg.Backup.MaxCount,
		MinCount: cfg.Backup.MinCount,
		MaxAge:   cfg.Backup.MaxAge,
	}, src)
}

func runBackupCreate(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer closeDB(db)

	m, err := backupManager(db)
	if err != nil {
		return err
	}
	b, err := m.Create(cmd.Context(), backupNote)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created %s (%d bytes) id=%s\n", b.FileName, b.FileSize, b.ID)
	return nil
}

func runBackupList(cmd *cobra.Command, args []string) error {
	m, err := backupManager(nil)
	if err != nil {
		return err
	}
	backups, err := m.List()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCREATED\tSIZE\tMOVIES\tUSERS\tNOTE")
	for _, b := range backups {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%s\n",
			b.ID[:min(8, len(b.ID))], b.CreatedAt.Local().Format(time.DateTime), b.FileSize,
			b.Records["movies"], b.Records["users"], b.Note)
	}
	return w.Flush()
}

func runBackupVerify(cmd *cobra.Command, args []string) error {
	m, err := backupManager(nil)
	if err != nil {
		return err
	}
	if err := m.Verify(args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "OK %s\n", args[0])
	return nil
}

func runBackupRestore(cmd *cobra.Command, args []string) error {
	m, err := backupManager(nil)
	if err != nil {
		return err
	}
	target := backupTarget
	if target == "" {
		target = cfg.Database.Path
	}
	if err := m.Restore(args[0], target, backupOverwrite); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Restored %s to %s\n", args[0], target)
	return nil
}

func runBackupPrune(cmd *cobra.Command, args []string) error {
	m, err := backupManager(nil)
	if err != nil {
		return err
	}
	deleted, err := m.Prune(time.Now())
	for _, b := range deleted {
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", b.FileName)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d archives removed\n", len(deleted))
	return nil
}

func init() {
	backupCreateCmd.Flags().StringVar(&backupNote, "note", "", "Free text stored with the archive")
	backupRestoreCmd.Flags().StringVar(&backupTarget, "to", "", "Restore target (default: DATABASE_PATH)")
	backupRestoreCmd.Flags().BoolVar(&backupOverwrite, "force", false, "Replace an existing database file")

	backupCmd.AddCommand(backupCreateCmd, backupListCmd, backupVerifyCmd, backupRestoreCmd, backupPruneCmd)
}
