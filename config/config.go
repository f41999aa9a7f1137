package config

import (
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
)

// Storage keys shared by the token store, the role cache and the OAuth
// bridge. Kept identical to the original mobile client so both can talk to
// the same backing store during migration.
const (
	AccessTokenKey  = "@dietician_access_token"
	RefreshTokenKey = "@dietician_refresh_token"
	UserDataKey     = "@dietician_user_data"
	RolesKey        = "@dietician_roles"
	OAuthBundleKey  = "oauth_tokens"
)

const (
	DefaultBaseURL = "http://localhost:8080/api"
	DefaultTimeout = 30 * time.Second

	OTPLength = 6
	OTPExpiry = 5 * time.Minute

	// Pending OAuth bundles older than this are discarded unconsumed.
	OAuthBundleTTL = 5 * time.Minute

	// Cached role lists are considered fresh for this long.
	RolesCacheTTL = 24 * time.Hour
)

type Config struct {
	// BaseURL is the backend API root, e.g. "http://localhost:8080/api".
	BaseURL string `validate:"required,url"`
	// Timeout applies to every outgoing request.
	Timeout time.Duration `validate:"required"`
	// GoogleClientID identifies the app in the OAuth redirect flow.
	GoogleClientID string
	// OAuthRedirectURI is where the provider sends the user back.
	OAuthRedirectURI string `validate:"omitempty,url"`
}

func (cfg *Config) Validate() error {
	return validator.New(validator.WithRequiredStructEnabled()).Struct(cfg)
}

// FromEnv builds a Config from DIETICIAN_* environment variables, falling
// back to development defaults. Read once at startup; changes to the
// environment afterwards are not observed.
func FromEnv() *Config {
	cfg := &Config{
		BaseURL:          envOr("DIETICIAN_API_BASE_URL", DefaultBaseURL),
		Timeout:          DefaultTimeout,
		GoogleClientID:   os.Getenv("DIETICIAN_GOOGLE_CLIENT_ID"),
		OAuthRedirectURI: os.Getenv("DIETICIAN_OAUTH_REDIRECT_URI"),
	}

	if raw := os.Getenv("DIETICIAN_API_TIMEOUT_SECONDS"); raw != "" {
		if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
			cfg.Timeout = time.Duration(secs) * time.Second
		}
	}

	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
