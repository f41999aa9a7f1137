package echohttp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/octabyte/dietician-client/auth"
	"github.com/octabyte/dietician-client/config"
	"github.com/octabyte/dietician-client/httpclient"
	"github.com/octabyte/dietician-client/models"
	"github.com/octabyte/dietician-client/storage"
	"github.com/octabyte/dietician-client/utils"
)

func newCallbackServer(t *testing.T, backend http.Handler) (*CallbackServer, storage.KeyValue) {
	t.Helper()

	api := httptest.NewServer(backend)
	t.Cleanup(api.Close)

	cfg := &config.Config{
		BaseURL:          api.URL,
		Timeout:          5 * time.Second,
		GoogleClientID:   "client-123",
		OAuthRedirectURI: "http://127.0.0.1:8765/oauth/google/callback",
	}
	client := httpclient.New(cfg, auth.NewTokenStore(storage.NewMemory()))
	temp := storage.NewMemory()
	return NewCallbackServer(cfg, client, temp), temp
}

func TestStartRedirectsToProvider(t *testing.T) {
	srv, _ := newCallbackServer(t, http.NewServeMux())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/oauth/google/start", nil)
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusFound, rec.Code)
	location := rec.Header().Get("Location")
	assert.Contains(t, location, "accounts.google.com")
	assert.Contains(t, location, "client_id=client-123")

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "oauth_state", cookies[0].Name)
	assert.NotEmpty(t, cookies[0].Value)
	assert.Contains(t, location, "state="+cookies[0].Value)
}

func TestCallbackDepositsBundle(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/oauth2/exchange", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"accessToken": "OAT", "refreshToken": "ORT", "tokenType": "Bearer",
			"user": {"id": 7, "email": "g@b.com", "role": "PATIENT"}
		}`))
	})

	srv, temp := newCallbackServer(t, mux)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/oauth/google/callback?code=abc&state=s1", nil)
	req.AddCookie(&http.Cookie{Name: "oauth_state", Value: "s1"})
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	raw, err := temp.Get(context.Background(), config.OAuthBundleKey)
	require.NoError(t, err)

	var bundle models.PendingOAuthBundle
	require.NoError(t, utils.BytesToStruct([]byte(raw), &bundle))
	assert.Equal(t, "OAT", bundle.AccessToken)
	assert.Equal(t, "ORT", bundle.RefreshToken)
	require.NotNil(t, bundle.User)
	assert.Equal(t, "g@b.com", bundle.User.Email)
	assert.InDelta(t, time.Now().UnixMilli(), bundle.Timestamp, float64(5*time.Second/time.Millisecond))
}

func TestCallbackRejectsStateMismatch(t *testing.T) {
	srv, temp := newCallbackServer(t, http.NewServeMux())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/oauth/google/callback?code=abc&state=evil", nil)
	req.AddCookie(&http.Cookie{Name: "oauth_state", Value: "good"})
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	_, err := temp.Get(context.Background(), config.OAuthBundleKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestCallbackProviderError(t *testing.T) {
	srv, _ := newCallbackServer(t, http.NewServeMux())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/oauth/google/callback?error=access_denied", nil)
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "cancelled")
}

func TestCallbackExchangeFailureSurfacesMessage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/oauth2/exchange", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Invalid authorization code"}`))
	})

	srv, temp := newCallbackServer(t, mux)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/oauth/google/callback?code=bad&state=s1", nil)
	req.AddCookie(&http.Cookie{Name: "oauth_state", Value: "s1"})
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid authorization code")
	_, err := temp.Get(context.Background(), config.OAuthBundleKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
