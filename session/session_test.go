package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/octabyte/dietician-client/audit"
	"github.com/octabyte/dietician-client/auth"
	"github.com/octabyte/dietician-client/config"
	"github.com/octabyte/dietician-client/httpclient"
	"github.com/octabyte/dietician-client/models"
	"github.com/octabyte/dietician-client/storage"
)

const loginResponse = `{
	"accessToken": "AT1",
	"refreshToken": "RT1",
	"tokenType": "Bearer",
	"expiresIn": 900,
	"user": {"id": 1, "email": "a@b.com", "role": "PATIENT", "emailVerified": true, "actions": ["VIEW_PATIENT"]}
}`

type recordingSink struct {
	events []audit.Event
}

func (r *recordingSink) Emit(_ context.Context, e audit.Event) error {
	r.events = append(r.events, e)
	return nil
}

func (r *recordingSink) Close() error { return nil }

type SessionTestSuite struct {
	suite.Suite
	mux        *http.ServeMux
	server     *httptest.Server
	tokens     *auth.TokenStore
	controller *Controller
	sink       *recordingSink
	ctx        context.Context
}

func (s *SessionTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.mux = http.NewServeMux()
	s.server = httptest.NewServer(s.mux)

	s.tokens = auth.NewTokenStore(storage.NewMemory())
	client := httpclient.New(&config.Config{BaseURL: s.server.URL, Timeout: 5 * time.Second}, s.tokens)
	s.sink = &recordingSink{}
	s.controller = NewController(client, s.tokens, s.sink)
}

func (s *SessionTestSuite) TearDownTest() {
	s.server.Close()
}

func (s *SessionTestSuite) jsonHandler(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func (s *SessionTestSuite) TestInitialStateIsLoading() {
	snap := s.controller.Snapshot()
	s.True(snap.IsLoading)
	s.False(snap.IsAuthenticated)
	s.Nil(snap.User)
}

func (s *SessionTestSuite) TestLoginPersistsBeforeFlagFlips() {
	s.mux.HandleFunc("/auth/login", s.jsonHandler(http.StatusOK, loginResponse))

	var sawAuthenticated bool
	s.controller.Subscribe(func(snap Snapshot) {
		if snap.IsAuthenticated {
			sawAuthenticated = true
			// Tokens must already be durable when observers see the flip.
			access, err := s.tokens.GetAccessToken(s.ctx)
			s.Require().NoError(err)
			s.Equal("AT1", access)
		}
	})

	err := s.controller.Login(s.ctx, models.LoginRequest{Email: "a@b.com", Password: "Secret123"})
	s.Require().NoError(err)
	s.True(sawAuthenticated)

	snap := s.controller.Snapshot()
	s.True(snap.IsAuthenticated)
	s.Require().NotNil(snap.User)
	s.EqualValues(1, snap.User.ID)
	s.Equal("a@b.com", snap.User.Email)

	refresh, _ := s.tokens.GetRefreshToken(s.ctx)
	s.Equal("RT1", refresh)

	cached, err := s.tokens.GetCachedUser(s.ctx)
	s.Require().NoError(err)
	s.Require().NotNil(cached)
	s.EqualValues(1, cached.ID)

	s.Require().Len(s.sink.events, 1)
	s.Equal(audit.EventLogin, s.sink.events[0].Type)
}

func (s *SessionTestSuite) TestLoginFailurePropagatesBackendError() {
	s.mux.HandleFunc("/auth/login", s.jsonHandler(http.StatusUnauthorized, `{"message":"Invalid credentials"}`))

	err := s.controller.Login(s.ctx, models.LoginRequest{Email: "a@b.com", Password: "wrong"})
	s.Require().Error(err)
	s.Equal("Invalid credentials", err.Error())

	snap := s.controller.Snapshot()
	s.False(snap.IsAuthenticated)
	s.Nil(snap.User)
}

func (s *SessionTestSuite) TestLoginRejectsInvalidInputLocally() {
	err := s.controller.Login(s.ctx, models.LoginRequest{Email: "not-an-email", Password: "x"})
	s.Error(err)
}

func (s *SessionTestSuite) TestRegisterReturnsMessageWithoutAuthenticating() {
	s.mux.HandleFunc("/auth/register", s.jsonHandler(http.StatusOK, `{"message":"Verification code sent"}`))

	msg, err := s.controller.Register(s.ctx, models.RegisterRequest{
		Email:    "new@b.com",
		Password: "Secret123",
		FullName: "New User",
	})
	s.Require().NoError(err)
	s.Equal("Verification code sent", msg)
	s.False(s.controller.Snapshot().IsAuthenticated)
}

func (s *SessionTestSuite) TestVerifyOtpBehavesLikeLogin() {
	s.mux.HandleFunc("/auth/verify-email", s.jsonHandler(http.StatusOK, loginResponse))

	err := s.controller.VerifyOtp(s.ctx, models.VerifyOtpRequest{Email: "a@b.com", OtpCode: "123456"})
	s.Require().NoError(err)
	s.True(s.controller.Snapshot().IsAuthenticated)

	access, _ := s.tokens.GetAccessToken(s.ctx)
	s.Equal("AT1", access)

	s.Require().Len(s.sink.events, 1)
	s.Equal(audit.EventOTPVerified, s.sink.events[0].Type)
}

func (s *SessionTestSuite) TestVerifyOtpIncorrectCode() {
	s.mux.HandleFunc("/auth/verify-email", s.jsonHandler(http.StatusBadRequest, `{"message":"Incorrect OTP code"}`))

	err := s.controller.VerifyOtp(s.ctx, models.VerifyOtpRequest{Email: "a@b.com", OtpCode: "000000"})
	s.Require().Error(err)
	s.Equal("Incorrect OTP code", err.Error())
	s.False(s.controller.Snapshot().IsAuthenticated)
}

func (s *SessionTestSuite) TestResendOtpLeavesStateAlone() {
	s.mux.HandleFunc("/auth/resend-otp", s.jsonHandler(http.StatusOK, `{"message":"Code resent"}`))

	msg, err := s.controller.ResendOtp(s.ctx, "a@b.com")
	s.Require().NoError(err)
	s.Equal("Code resent", msg)
	s.False(s.controller.Snapshot().IsAuthenticated)
}

func (s *SessionTestSuite) TestLogoutClearsStateOnBackendSuccess() {
	s.loginFirst()
	s.mux.HandleFunc("/auth/logout", s.jsonHandler(http.StatusOK, `{"message":"ok"}`))

	s.Require().NoError(s.controller.Logout(s.ctx))
	s.assertLoggedOut()
}

func (s *SessionTestSuite) TestLogoutClearsStateOnBackendFailure() {
	s.loginFirst()
	s.mux.HandleFunc("/auth/logout", s.jsonHandler(http.StatusInternalServerError, `{"message":"boom"}`))

	s.Require().NoError(s.controller.Logout(s.ctx))
	s.assertLoggedOut()
}

func (s *SessionTestSuite) TestCheckAuthStatusRestoresCachedSession() {
	err := s.tokens.SetAuth(s.ctx, &models.AuthResponse{
		AccessToken:  "AT1",
		RefreshToken: "RT1",
		User:         &models.User{ID: 1, Email: "a@b.com", Role: "PATIENT"},
	})
	s.Require().NoError(err)

	s.Require().NoError(s.controller.CheckAuthStatus(s.ctx))

	snap := s.controller.Snapshot()
	s.False(snap.IsLoading)
	s.True(snap.IsAuthenticated)
	s.Require().NotNil(snap.User)
	s.Equal("a@b.com", snap.User.Email)
}

func (s *SessionTestSuite) TestCheckAuthStatusWithEmptyStore() {
	s.Require().NoError(s.controller.CheckAuthStatus(s.ctx))

	snap := s.controller.Snapshot()
	s.False(snap.IsLoading)
	s.False(snap.IsAuthenticated)
	s.Nil(snap.User)
}

func (s *SessionTestSuite) TestCheckAuthStatusFetchesUserWhenCacheEmpty() {
	s.mux.HandleFunc("/auth/me", s.jsonHandler(http.StatusOK, `{"id":7,"email":"x@y.com","role":"DIETICIAN"}`))
	s.Require().NoError(s.tokens.SetTokens(s.ctx, "AT1", "RT1"))

	s.Require().NoError(s.controller.CheckAuthStatus(s.ctx))

	snap := s.controller.Snapshot()
	s.True(snap.IsAuthenticated)
	s.Require().NotNil(snap.User)
	s.EqualValues(7, snap.User.ID)

	cached, err := s.tokens.GetCachedUser(s.ctx)
	s.Require().NoError(err)
	s.Require().NotNil(cached)
	s.Equal("x@y.com", cached.Email)
}

func (s *SessionTestSuite) TestRefreshUserUpdatesSnapshotAndCache() {
	s.loginFirst()
	s.mux.HandleFunc("/auth/me", s.jsonHandler(http.StatusOK, `{"id":1,"email":"a@b.com","role":"PATIENT","fullName":"Updated Name"}`))

	s.Require().NoError(s.controller.RefreshUser(s.ctx))

	snap := s.controller.Snapshot()
	s.True(snap.IsAuthenticated)
	s.Equal("Updated Name", snap.User.FullName)

	cached, _ := s.tokens.GetCachedUser(s.ctx)
	s.Equal("Updated Name", cached.FullName)
}

func (s *SessionTestSuite) TestHandleOAuthCallback() {
	var gotAuth atomic.Value
	s.mux.HandleFunc("/auth/me", func(w http.ResponseWriter, r *http.Request) {
		gotAuth.Store(r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":3,"email":"g@b.com","role":"PATIENT"}`))
	})

	err := s.controller.HandleOAuthCallback(s.ctx, "OAT", "ORT")
	s.Require().NoError(err)

	s.Equal("Bearer OAT", gotAuth.Load())

	snap := s.controller.Snapshot()
	s.True(snap.IsAuthenticated)
	s.Equal("g@b.com", snap.User.Email)

	access, _ := s.tokens.GetAccessToken(s.ctx)
	refresh, _ := s.tokens.GetRefreshToken(s.ctx)
	s.Equal("OAT", access)
	s.Equal("ORT", refresh)
}

func (s *SessionTestSuite) TestUpdateProfilePictureURL() {
	s.loginFirst()

	s.Require().NoError(s.controller.UpdateProfilePictureURL(s.ctx, "/files/profiles/1.jpg"))

	snap := s.controller.Snapshot()
	s.Equal("/files/profiles/1.jpg", snap.User.ProfilePictureURL)

	cached, _ := s.tokens.GetCachedUser(s.ctx)
	s.Equal("/files/profiles/1.jpg", cached.ProfilePictureURL)
}

func (s *SessionTestSuite) TestUpdateAuthTokensAfterEmailChange() {
	s.loginFirst()

	err := s.controller.UpdateAuthTokens(s.ctx, "new@b.com", "AT9", "RT9")
	s.Require().NoError(err)

	snap := s.controller.Snapshot()
	s.True(snap.IsAuthenticated)
	s.Equal("new@b.com", snap.User.Email)

	access, _ := s.tokens.GetAccessToken(s.ctx)
	refresh, _ := s.tokens.GetRefreshToken(s.ctx)
	s.Equal("AT9", access)
	s.Equal("RT9", refresh)

	cached, _ := s.tokens.GetCachedUser(s.ctx)
	s.Equal("new@b.com", cached.Email)
}

func (s *SessionTestSuite) TestHasActionFailsClosed() {
	s.False(s.controller.HasAction("VIEW_PATIENT"))

	s.loginFirst()
	s.True(s.controller.HasAction("VIEW_PATIENT"))
	s.False(s.controller.HasAction("DELETE_PATIENT"))
}

func (s *SessionTestSuite) TestUnsubscribeStopsNotifications() {
	s.mux.HandleFunc("/auth/login", s.jsonHandler(http.StatusOK, loginResponse))

	var calls int
	unsubscribe := s.controller.Subscribe(func(Snapshot) { calls++ })
	unsubscribe()

	s.Require().NoError(s.controller.Login(s.ctx, models.LoginRequest{Email: "a@b.com", Password: "Secret123"}))
	s.Zero(calls)
}

func (s *SessionTestSuite) loginFirst() {
	s.mux.HandleFunc("/auth/login", s.jsonHandler(http.StatusOK, loginResponse))
	s.Require().NoError(s.controller.Login(s.ctx, models.LoginRequest{Email: "a@b.com", Password: "Secret123"}))
	s.sink.events = nil
}

func (s *SessionTestSuite) assertLoggedOut() {
	snap := s.controller.Snapshot()
	s.False(snap.IsAuthenticated)
	s.Nil(snap.User)

	access, err := s.tokens.GetAccessToken(s.ctx)
	s.Require().NoError(err)
	s.Empty(access)

	s.Require().Len(s.sink.events, 1)
	s.Equal(audit.EventLogout, s.sink.events[0].Type)
}

func TestSessionTestSuite(t *testing.T) {
	suite.Run(t, new(SessionTestSuite))
}

func TestControllerDefaultsToNopSink(t *testing.T) {
	tokens := auth.NewTokenStore(storage.NewMemory())
	client := httpclient.New(&config.Config{BaseURL: "http://localhost:1", Timeout: time.Second}, tokens)

	controller := NewController(client, tokens, nil)
	require.NotNil(t, controller)
	assert.True(t, controller.Snapshot().IsLoading)
}
