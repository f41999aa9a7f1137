package oauth

import (
	"context"

	"golang.org/x/oauth2"

	"github.com/octabyte/dietician-client/config"
	"github.com/octabyte/dietician-client/httpclient"
	"github.com/octabyte/dietician-client/models"
)

// googleEndpoint avoids the x/oauth2/google subpackage; only the two URLs
// are needed since the code exchange happens on the backend.
var googleEndpoint = oauth2.Endpoint{
	AuthURL:  "https://accounts.google.com/o/oauth2/auth",
	TokenURL: "https://oauth2.googleapis.com/token",
}

// GoogleAuthURL builds the provider authorization URL that starts the
// redirect dance. The state value must be verified on the way back.
func GoogleAuthURL(cfg *config.Config, state string) string {
	oc := &oauth2.Config{
		ClientID:    cfg.GoogleClientID,
		RedirectURL: cfg.OAuthRedirectURI,
		Scopes:      []string{"openid", "email", "profile"},
		Endpoint:    googleEndpoint,
	}
	return oc.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// Exchange trades the provider's authorization code for a backend token
// pair. The token exchange with Google itself happens server-side.
func Exchange(ctx context.Context, client *httpclient.Client, code, redirectURI string) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	err := client.Post(ctx, "/auth/oauth2/exchange", models.OAuthExchangeRequest{
		Code:        code,
		RedirectURI: redirectURI,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}
