package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/octabyte/dietician-client/admin"
	"github.com/octabyte/dietician-client/httpclient"
	"github.com/octabyte/dietician-client/roles"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "User and role management (admin accounts only)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var adminUsersCmd = &cobra.Command{
	Use:   "users",
	Short: "List users",
	RunE: func(cmd *cobra.Command, args []string) error {
		role, _ := cmd.Flags().GetString("role")
		page, _ := cmd.Flags().GetInt("page")
		size, _ := cmd.Flags().GetInt("size")

		a, err := newApp()
		if err != nil {
			return err
		}
		if err := a.restoreSession(cmd); err != nil {
			return err
		}

		svc := admin.NewService(a.client)
		result, err := svc.Users(cmd.Context(), strings.ToUpper(role), page, size)
		if err != nil {
			return fmt.Errorf("%s", httpclient.Message(err, "Could not list users"))
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tEMAIL\tROLE\tACTIVE\tVERIFIED")
		for _, u := range result.Content {
			fmt.Fprintf(w, "%d\t%s\t%s\t%v\t%v\n", u.ID, u.Email, u.RoleCode, u.IsActive, u.EmailVerified)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "page %d/%d, %d users total\n",
			result.Number+1, result.TotalPages, result.TotalElements)
		return nil
	},
}

var adminRolesCmd = &cobra.Command{
	Use:   "roles",
	Short: "List roles, using the cached snapshot when the backend is unreachable",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		if err := a.restoreSession(cmd); err != nil {
			return err
		}

		cache := roles.NewCache(a.client, a.store)
		cache.Load(cmd.Context())

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tCODE\tNAME")
		for _, r := range cache.All() {
			fmt.Fprintf(w, "%d\t%s\t%s\n", r.ID, r.RoleCode, r.RoleName)
		}
		return w.Flush()
	},
}

var adminSetStatusCmd = &cobra.Command{
	Use:   "set-status <user-id>",
	Short: "Activate or deactivate an account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		active, _ := cmd.Flags().GetBool("active")

		var userID uint64
		if _, err := fmt.Sscanf(args[0], "%d", &userID); err != nil {
			return fmt.Errorf("invalid user id %q", args[0])
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		if err := a.restoreSession(cmd); err != nil {
			return err
		}

		svc := admin.NewService(a.client)
		msg, err := svc.SetUserStatus(cmd.Context(), userID, active)
		if err != nil {
			return fmt.Errorf("%s", httpclient.Message(err, "Status change failed"))
		}
		fmt.Fprintln(cmd.OutOrStdout(), msg)
		return nil
	},
}

func init() {
	adminUsersCmd.Flags().String("role", "", "filter by role code (ADMIN, DIETICIAN, PATIENT)")
	adminUsersCmd.Flags().Int("page", 0, "zero-based page number")
	adminUsersCmd.Flags().Int("size", 20, "page size")

	adminSetStatusCmd.Flags().Bool("active", true, "target state")

	adminCmd.AddCommand(adminUsersCmd, adminRolesCmd, adminSetStatusCmd)
	rootCmd.AddCommand(adminCmd)
}
