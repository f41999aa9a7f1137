package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/octabyte/dietician-client/audit"
	"github.com/octabyte/dietician-client/auth"
	"github.com/octabyte/dietician-client/config"
	"github.com/octabyte/dietician-client/httpclient"
	"github.com/octabyte/dietician-client/oauth"
	"github.com/octabyte/dietician-client/session"
	"github.com/octabyte/dietician-client/storage"
	"github.com/octabyte/dietician-client/utils/logger"
)

var rootCmd = &cobra.Command{
	Use:   "dietctl",
	Short: "Command-line client for the dietician backend",
	Long: `dietctl drives the dietician backend from a terminal: sign in with
a password or through Google, inspect the current session, manage your
profile and, with an admin account, manage users and roles.

Configuration comes from DIETICIAN_* environment variables:
  DIETICIAN_API_BASE_URL      backend base URL (default http://localhost:8080/api)
  DIETICIAN_GOOGLE_CLIENT_ID  OAuth client for 'dietctl google-login'
  DIETICIAN_OAUTH_REDIRECT_URI  callback URL registered with the provider
  DIETICIAN_STATE_FILE        where tokens are kept between runs`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// app bundles everything a subcommand needs. Built once per invocation.
type app struct {
	cfg     *config.Config
	store   storage.KeyValue
	tokens  *auth.TokenStore
	client  *httpclient.Client
	session *session.Controller
}

func newApp() (*app, error) {
	logger.Init(&logger.Config{
		Level:   os.Getenv("DIETICIAN_LOG_LEVEL"),
		Env:     os.Getenv("DIETICIAN_ENV"),
		AppName: "dietctl",
	})

	cfg := config.FromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	store, err := openStateStore()
	if err != nil {
		return nil, err
	}

	tokens := auth.NewTokenStore(store)
	client := httpclient.New(cfg, tokens)
	a := &app{
		cfg:     cfg,
		store:   store,
		tokens:  tokens,
		client:  client,
		session: session.NewController(client, tokens, audit.NopSink{}),
	}
	return a, nil
}

// restoreSession migrates a pending browser login if one is waiting,
// then restores the session from stored tokens.
func (a *app) restoreSession(cmd *cobra.Command) error {
	bridge := oauth.NewBridge(a.store, a.tokens, a.client)
	if migrated, err := bridge.Run(cmd.Context()); err != nil {
		logger.LogWarnf("Pending sign-in could not be migrated: %v", err)
	} else if migrated {
		fmt.Fprintln(cmd.OutOrStdout(), "Picked up browser sign-in.")
	}
	return a.session.CheckAuthStatus(cmd.Context())
}

func openStateStore() (storage.KeyValue, error) {
	path := os.Getenv("DIETICIAN_STATE_FILE")
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("cannot locate home directory: %w", err)
		}
		path = filepath.Join(home, ".dietician", "state.json")
	}
	return storage.NewFile(path), nil
}
