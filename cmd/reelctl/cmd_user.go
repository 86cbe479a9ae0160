// Reelview - Movie Reviews and Catalog Curation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelview

package main

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tomtom215/reelview/internal/auth"
	"github.com/tomtom215/reelview/internal/database"
	"github.com/tomtom215/reelview/internal/models"
)

var (
	userEmail    string
	userName     string
	userPassword string
	userAdmin    bool
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage accounts",
}

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a confirmed LOCAL account",
	Long: `Create a confirmed LOCAL account.

If an account with the email already exists it is confirmed and, with
--admin, promoted. Its password is not changed.`,
	Args: cobra.NoArgs,
	RunE: runUserCreate,
}

var userPromoteCmd = &cobra.Command{
	Use:   "promote",
	Short: "Grant the ADMIN role to an existing account",
	Args:  cobra.NoArgs,
	RunE:  runUserPromote,
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List accounts, newest first",
	Args:  cobra.NoArgs,
	RunE:  runUserList,
}

func runUserCreate(cmd *cobra.Command, args []string) error {
	role := models.RoleUser
	if userAdmin {
		role = models.RoleAdmin
	}

	db, err := openDB()
	if err != nil {
		return err
	}
	defer closeDB(db)

	user, created, err := auth.EnsureAccount(cmd.Context(), db, auth.AccountSpec{
		Email:    userEmail,
		Username: userName,
		Password: userPassword,
		Role:     role,
	})
	if err != nil {
		return err
	}
	verb := "Updated"
	if created {
		verb = "Created"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s, %s) id=%s\n", verb, user.Email, user.Username, user.Role, user.ID)
	return nil
}

func runUserPromote(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer closeDB(db)

	email := strings.ToLower(strings.TrimSpace(userEmail))
	user, err := db.GetUserByEmail(cmd.Context(), email)
	if errors.Is(err, database.ErrNotFound) {
		return fmt.Errorf("no account with email %s", email)
	}
	if err != nil {
		return err
	}
	if user.IsAdmin() {
		fmt.Fprintf(cmd.OutOrStdout(), "%s is already ADMIN\n", user.Email)
		return nil
	}

	role := models.RoleAdmin
	if err := db.UpdateUser(cmd.Context(), user.ID, models.UserUpdate{Role: &role}); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Promoted %s to ADMIN\n", user.Email)
	return nil
}

func runUserList(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer closeDB(db)

	users, err := db.ListUsers(cmd.Context())
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "EMAIL\tUSERNAME\tROLE\tPROVIDER\tCONFIRMED\tREVIEWS")
	for _, u := range users {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\t%d\n", u.Email, u.Username, u.Role, u.Provider, u.IsConfirmed, u.ReviewCount)
	}
	return tw.Flush()
}

func init() {
	userCreateCmd.Flags().StringVar(&userEmail, "email", "", "Account email (required)")
	userCreateCmd.Flags().StringVar(&userName, "username", "", "Username (default: local part of the email)")
	userCreateCmd.Flags().StringVar(&userPassword, "password", "", "Password, 8+ characters")
	userCreateCmd.Flags().BoolVar(&userAdmin, "admin", false, "Grant the ADMIN role")
	_ = userCreateCmd.MarkFlagRequired("email")

	userPromoteCmd.Flags().StringVar(&userEmail, "email", "", "Account email (required)")
	_ = userPromoteCmd.MarkFlagRequired("email")

	userCmd.AddCommand(userCreateCmd)
	userCmd.AddCommand(userPromoteCmd)
	userCmd.AddCommand(userListCmd)
}
