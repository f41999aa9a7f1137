package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/octabyte/dietician-client/httpclient"
	echohttp "github.com/octabyte/dietician-client/interfaces/http/echo"
	"github.com/octabyte/dietician-client/models"
	"github.com/octabyte/dietician-client/oauth"
	"github.com/octabyte/dietician-client/utils/logger"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with email and password",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")

		a, err := newApp()
		if err != nil {
			return err
		}

		err = a.session.Login(cmd.Context(), models.LoginRequest{Email: email, Password: password})
		if err != nil {
			return fmt.Errorf("%s", httpclient.Message(err, "Login failed"))
		}

		snap := a.session.Snapshot()
		fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (%s)\n", snap.User.Email, snap.User.Role)
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account; an OTP is emailed for verification",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")
		fullName, _ := cmd.Flags().GetString("full-name")

		a, err := newApp()
		if err != nil {
			return err
		}

		msg, err := a.session.Register(cmd.Context(), models.RegisterRequest{
			Email:    email,
			Password: password,
			FullName: fullName,
		})
		if err != nil {
			return fmt.Errorf("%s", httpclient.Message(err, "Registration failed"))
		}
		fmt.Fprintln(cmd.OutOrStdout(), msg)
		return nil
	},
}

var verifyOtpCmd = &cobra.Command{
	Use:   "verify-otp",
	Short: "Verify the emailed code and finish signing in",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		code, _ := cmd.Flags().GetString("code")

		a, err := newApp()
		if err != nil {
			return err
		}

		err = a.session.VerifyOtp(cmd.Context(), models.VerifyOtpRequest{Email: email, OtpCode: code})
		if err != nil {
			return fmt.Errorf("%s", httpclient.Message(err, "Verification failed"))
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Email verified; you are signed in.")
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and clear stored tokens",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		if err := a.restoreSession(cmd); err != nil {
			logger.LogWarnf("Session restore failed before logout: %v", err)
		}
		if err := a.session.Logout(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
		return nil
	},
}

var meCmd = &cobra.Command{
	Use:   "me",
	Short: "Show the current session",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		if err := a.restoreSession(cmd); err != nil {
			return fmt.Errorf("%s", httpclient.Message(err, "Could not restore session"))
		}

		snap := a.session.Snapshot()
		if !snap.IsAuthenticated {
			fmt.Fprintln(cmd.OutOrStdout(), "Not signed in.")
			return nil
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Email:    %s\n", snap.User.Email)
		fmt.Fprintf(out, "Name:     %s\n", snap.User.FullName)
		fmt.Fprintf(out, "Role:     %s\n", snap.User.Role)
		fmt.Fprintf(out, "Verified: %v\n", snap.User.EmailVerified)
		if len(snap.User.Actions) > 0 {
			fmt.Fprintf(out, "Actions:  %v\n", snap.User.Actions)
		}
		return nil
	},
}

var googleLoginCmd = &cobra.Command{
	Use:   "google-login",
	Short: "Sign in through Google in a browser",
	Long: `Starts a local callback server, prints the provider URL to open in a
browser, and waits for the redirect. Once the code comes back and is
exchanged, the tokens are stored and the command exits.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		listen, _ := cmd.Flags().GetString("listen")
		wait, _ := cmd.Flags().GetDuration("wait")

		a, err := newApp()
		if err != nil {
			return err
		}
		if a.cfg.GoogleClientID == "" {
			return fmt.Errorf("DIETICIAN_GOOGLE_CLIENT_ID is not set")
		}

		srv := echohttp.NewCallbackServer(a.cfg, a.client, a.store)
		go func() {
			if err := srv.Start(listen); err != nil && err != http.ErrServerClosed {
				logger.LogErrorf("Callback server stopped: %v", err)
			}
		}()
		defer func() { _ = srv.Shutdown(cmd.Context()) }()

		fmt.Fprintf(cmd.OutOrStdout(), "Open this URL in a browser:\n\n  http://%s/oauth/google/start\n\nWaiting for sign-in", listen)

		bridge := oauth.NewBridge(a.store, a.tokens, a.client)
		deadline := time.Now().Add(wait)
		for time.Now().Before(deadline) {
			select {
			case <-cmd.Context().Done():
				return cmd.Context().Err()
			case <-time.After(time.Second):
			}
			fmt.Fprint(cmd.OutOrStdout(), ".")

			migrated, err := bridge.Run(cmd.Context())
			if err != nil {
				return fmt.Errorf("\nsign-in could not be completed: %w", err)
			}
			if migrated {
				fmt.Fprintln(cmd.OutOrStdout())
				if err := a.session.CheckAuthStatus(cmd.Context()); err != nil {
					return err
				}
				snap := a.session.Snapshot()
				if snap.User != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", snap.User.Email)
				}
				return nil
			}
		}
		fmt.Fprintln(cmd.OutOrStdout())
		return fmt.Errorf("timed out after %s waiting for the browser sign-in", wait)
	},
}

var changePasswordCmd = &cobra.Command{
	Use:   "change-password",
	Short: "Change the password of the signed-in account",
	RunE: func(cmd *cobra.Command, args []string) error {
		current, _ := cmd.Flags().GetString("current")
		newPassword, _ := cmd.Flags().GetString("new")

		a, err := newApp()
		if err != nil {
			return err
		}
		if err := a.restoreSession(cmd); err != nil {
			return err
		}

		msg, err := a.session.ChangePassword(cmd.Context(), models.ChangePasswordRequest{
			CurrentPassword: current,
			NewPassword:     newPassword,
		})
		if err != nil {
			return fmt.Errorf("%s", httpclient.Message(err, "Password change failed"))
		}
		fmt.Fprintln(cmd.OutOrStdout(), msg)
		return nil
	},
}

func init() {
	loginCmd.Flags().String("email", "", "account email")
	loginCmd.Flags().String("password", "", "account password")
	_ = loginCmd.MarkFlagRequired("email")
	_ = loginCmd.MarkFlagRequired("password")

	registerCmd.Flags().String("email", "", "account email")
	registerCmd.Flags().String("password", "", "account password")
	registerCmd.Flags().String("full-name", "", "display name")
	_ = registerCmd.MarkFlagRequired("email")
	_ = registerCmd.MarkFlagRequired("password")

	verifyOtpCmd.Flags().String("email", "", "account email")
	verifyOtpCmd.Flags().String("code", "", "six digit code from the email")
	_ = verifyOtpCmd.MarkFlagRequired("email")
	_ = verifyOtpCmd.MarkFlagRequired("code")

	googleLoginCmd.Flags().String("listen", "127.0.0.1:8765", "address for the local callback server")
	googleLoginCmd.Flags().Duration("wait", 3*time.Minute, "how long to wait for the browser")

	changePasswordCmd.Flags().String("current", "", "current password")
	changePasswordCmd.Flags().String("new", "", "new password")
	_ = changePasswordCmd.MarkFlagRequired("current")
	_ = changePasswordCmd.MarkFlagRequired("new")

	rootCmd.AddCommand(loginCmd, registerCmd, verifyOtpCmd, logoutCmd, meCmd, googleLoginCmd, changePasswordCmd)
}
