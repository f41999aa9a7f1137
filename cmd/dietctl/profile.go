package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/octabyte/dietician-client/httpclient"
	"github.com/octabyte/dietician-client/profile"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "View and edit the signed-in user's profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		if err := a.restoreSession(cmd); err != nil {
			return err
		}
		snap := a.session.Snapshot()
		if !snap.IsAuthenticated {
			return fmt.Errorf("not signed in")
		}

		svc := profile.NewService(a.client)
		p, err := svc.Get(cmd.Context(), snap.User.ID)
		if err != nil {
			return fmt.Errorf("%s", httpclient.Message(err, "Could not load profile"))
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Name:   %s\n", p.FullName)
		fmt.Fprintf(out, "Email:  %s\n", p.Email)
		fmt.Fprintf(out, "Phone:  %s\n", p.FullPhoneNumber)
		fmt.Fprintf(out, "Gender: %s\n", p.Gender)
		fmt.Fprintf(out, "Born:   %s\n", p.DateOfBirth)
		return nil
	},
}

var profilePhotoCmd = &cobra.Command{
	Use:   "photo <file>",
	Short: "Upload a profile photo",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		if err := a.restoreSession(cmd); err != nil {
			return err
		}
		snap := a.session.Snapshot()
		if !snap.IsAuthenticated {
			return fmt.Errorf("not signed in")
		}

		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		svc := profile.NewService(a.client)
		resp, err := svc.UploadPhoto(cmd.Context(), snap.User.ID, filepath.Base(args[0]), f)
		if err != nil {
			return fmt.Errorf("%s", httpclient.Message(err, "Upload failed"))
		}
		if err := a.session.UpdateProfilePictureURL(cmd.Context(), resp.ProfilePhotoURL); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Uploaded: %s\n", resp.ProfilePhotoURL)
		return nil
	},
}

func init() {
	profileCmd.AddCommand(profileShowCmd, profilePhotoCmd)
	rootCmd.AddCommand(profileCmd)
}
