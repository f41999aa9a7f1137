// Package echohttp hosts the small loopback server that completes the
// browser half of a delegated login. It sends the user to the provider,
// receives the redirect, exchanges the code at the backend and deposits
// the resulting token pair as a pending bundle for the bridge to pick up.
package echohttp

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/octabyte/dietician-client/config"
	"github.com/octabyte/dietician-client/httpclient"
	"github.com/octabyte/dietician-client/models"
	"github.com/octabyte/dietician-client/oauth"
	"github.com/octabyte/dietician-client/storage"
	"github.com/octabyte/dietician-client/utils"
	"github.com/octabyte/dietician-client/utils/logger"
)

const stateCookie = "oauth_state"

// stateTTL bounds how long a started login may sit before the redirect
// comes back.
const stateTTL = 10 * time.Minute

type CallbackServer struct {
	echo   *echo.Echo
	cfg    *config.Config
	client *httpclient.Client
	temp   storage.KeyValue
}

// NewCallbackServer wires the /oauth routes onto a fresh echo instance.
// The temp store is the same one the oauth.Bridge reads from.
func NewCallbackServer(cfg *config.Config, client *httpclient.Client, temp storage.KeyValue) *CallbackServer {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.Recover())

	s := &CallbackServer{echo: e, cfg: cfg, client: client, temp: temp}
	e.GET("/oauth/google/start", s.start)
	e.GET("/oauth/google/callback", s.callback)
	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	return s
}

// Start blocks serving on addr until Shutdown or a listener error.
func (s *CallbackServer) Start(addr string) error {
	return s.echo.Start(addr)
}

func (s *CallbackServer) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Handler exposes the router for tests and for embedding into an
// existing mux.
func (s *CallbackServer) Handler() http.Handler {
	return s.echo
}

func (s *CallbackServer) start(c echo.Context) error {
	state, err := newState()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "could not generate state")
	}

	c.SetCookie(&http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/oauth",
		MaxAge:   int(stateTTL / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return c.Redirect(http.StatusFound, oauth.GoogleAuthURL(s.cfg, state))
}

func (s *CallbackServer) callback(c echo.Context) error {
	if errCode := c.QueryParam("error"); errCode != "" {
		logger.LogWarnf("Provider returned an error on callback: %s", errCode)
		return c.String(http.StatusBadRequest, "Sign-in was cancelled or rejected by the provider.")
	}

	code := c.QueryParam("code")
	if code == "" {
		return c.String(http.StatusBadRequest, "Missing authorization code.")
	}

	cookie, err := c.Cookie(stateCookie)
	if err != nil || cookie.Value == "" || cookie.Value != c.QueryParam("state") {
		return c.String(http.StatusBadRequest, "State mismatch; please start the sign-in again.")
	}

	resp, err := oauth.Exchange(c.Request().Context(), s.client, code, s.cfg.OAuthRedirectURI)
	if err != nil {
		logger.LogErrorf("Code exchange failed: %v", err)
		return c.String(http.StatusBadGateway, httpclient.Message(err, "Sign-in failed. Please try again."))
	}

	bundle := models.PendingOAuthBundle{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		User:         resp.User,
		Timestamp:    time.Now().UnixMilli(),
	}
	raw, err := utils.StructToBytes(bundle)
	if err != nil {
		return c.String(http.StatusInternalServerError, "Could not persist sign-in result.")
	}
	if err := s.temp.Set(c.Request().Context(), config.OAuthBundleKey, string(raw)); err != nil {
		logger.LogErrorf("Storing pending bundle failed: %v", err)
		return c.String(http.StatusInternalServerError, "Could not persist sign-in result.")
	}

	// Expire the state cookie; the login it guarded is done.
	c.SetCookie(&http.Cookie{Name: stateCookie, Value: "", Path: "/oauth", MaxAge: -1})

	return c.HTML(http.StatusOK, "<html><body>Sign-in complete. You can return to the application.</body></html>")
}

func newState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
