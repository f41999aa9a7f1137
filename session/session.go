// Package session owns the in-memory authentication state and the
// operations that mutate it. State changes are pushed to subscribers; the
// token store is always written before the authenticated flag flips, so no
// observer sees authenticated=true with absent tokens.
package session

import (
	"context"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/octabyte/dietician-client/audit"
	"github.com/octabyte/dietician-client/auth"
	"github.com/octabyte/dietician-client/httpclient"
	"github.com/octabyte/dietician-client/models"
	"github.com/octabyte/dietician-client/utils/logger"
)

// Snapshot is the observable session state handed to subscribers.
type Snapshot struct {
	User            *models.User
	IsAuthenticated bool
	// IsLoading is true only until the startup check completes.
	IsLoading bool
}

type Listener func(Snapshot)

// Controller coordinates the token store, the request pipeline and the
// in-memory session state. One instance per process.
//
// Operations do not serialize against each other: a RefreshUser completing
// after a Logout can resurrect the cached user in memory (last writer
// wins). Acceptable for a single-user client; callers that care should
// cancel in-flight contexts on logout.
type Controller struct {
	client *httpclient.Client
	tokens *auth.TokenStore
	sink   audit.Sink

	validate *validator.Validate

	mu            sync.RWMutex
	user          *models.User
	authenticated bool
	loading       bool

	listenerMu sync.Mutex
	listeners  map[int]Listener
	nextID     int
}

func NewController(client *httpclient.Client, tokens *auth.TokenStore, sink audit.Sink) *Controller {
	if sink == nil {
		sink = audit.NopSink{}
	}
	return &Controller{
		client:    client,
		tokens:    tokens,
		sink:      sink,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		loading:   true,
		listeners: make(map[int]Listener),
	}
}

// Subscribe registers a listener for state changes and returns an
// unsubscribe func. The listener is invoked after each transition with a
// point-in-time snapshot.
func (c *Controller) Subscribe(l Listener) func() {
	c.listenerMu.Lock()
	defer c.listenerMu.Unlock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = l
	return func() {
		c.listenerMu.Lock()
		defer c.listenerMu.Unlock()
		delete(c.listeners, id)
	}
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Snapshot{User: c.user, IsAuthenticated: c.authenticated, IsLoading: c.loading}
}

// CheckAuthStatus is the startup check: a stored access token restores the
// cached user and flips to authenticated, otherwise the session settles
// unauthenticated. Run the OAuth bridge first so a pending bundle is
// already migrated when this reads the store.
func (c *Controller) CheckAuthStatus(ctx context.Context) error {
	token, err := c.tokens.GetAccessToken(ctx)
	if err != nil {
		c.setState(nil, false, false)
		return err
	}

	if token == "" {
		c.setState(nil, false, false)
		return nil
	}

	user, err := c.tokens.GetCachedUser(ctx)
	if err != nil {
		logger.LogWarn("failed to read cached user during startup check", zap.Error(err))
	}
	if user == nil {
		// Token without a snapshot (e.g. interrupted migration): fetch,
		// so authenticated never settles with a nil user. The store is
		// left intact on failure so the next startup can retry.
		var fetched models.User
		if err := c.client.Get(ctx, "/auth/me", nil, &fetched); err != nil {
			c.setState(nil, false, false)
			return err
		}
		if err := c.tokens.SetCachedUser(ctx, &fetched); err != nil {
			logger.LogWarn("failed to cache user fetched during startup check", zap.Error(err))
		}
		user = &fetched
	}
	c.setState(user, true, false)
	return nil
}

// Login authenticates with credentials. The token pair and user snapshot
// are persisted before the authenticated flag flips. Backend errors
// propagate untouched for the caller to present.
func (c *Controller) Login(ctx context.Context, req models.LoginRequest) error {
	if err := c.validate.Struct(req); err != nil {
		return err
	}

	var resp models.AuthResponse
	if err := c.client.Post(ctx, "/auth/login", req, &resp); err != nil {
		return err
	}
	if err := c.tokens.SetAuth(ctx, &resp); err != nil {
		return err
	}

	c.setState(resp.User, true, false)
	c.emit(ctx, audit.EventLogin, resp.User)
	return nil
}

// Register creates an account. It does not authenticate; the user still
// has to verify the OTP sent to their email.
func (c *Controller) Register(ctx context.Context, req models.RegisterRequest) (string, error) {
	if err := c.validate.Struct(req); err != nil {
		return "", err
	}

	var resp models.MessageResponse
	if err := c.client.Post(ctx, "/auth/register", req, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// VerifyOtp confirms the emailed code and behaves like Login on success.
func (c *Controller) VerifyOtp(ctx context.Context, req models.VerifyOtpRequest) error {
	if err := c.validate.Struct(req); err != nil {
		return err
	}

	var resp models.AuthResponse
	if err := c.client.Post(ctx, "/auth/verify-email", req, &resp); err != nil {
		return err
	}
	if err := c.tokens.SetAuth(ctx, &resp); err != nil {
		return err
	}

	c.setState(resp.User, true, false)
	c.emit(ctx, audit.EventOTPVerified, resp.User)
	return nil
}

// ResendOtp requests a fresh code. Session state is unaffected.
func (c *Controller) ResendOtp(ctx context.Context, email string) (string, error) {
	req := models.ResendOtpRequest{Email: email}
	if err := c.validate.Struct(req); err != nil {
		return "", err
	}

	var resp models.MessageResponse
	if err := c.client.Post(ctx, "/auth/resend-otp", req, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// Logout invalidates the session server-side best-effort, then always
// clears the token store and in-memory state regardless of the backend
// outcome.
func (c *Controller) Logout(ctx context.Context) error {
	prev := c.Snapshot().User

	if err := c.client.Post(ctx, "/auth/logout", nil, nil); err != nil {
		logger.LogWarn("backend logout failed, clearing local session anyway", zap.Error(err))
	}

	clearErr := c.tokens.ClearAll(ctx)
	c.setState(nil, false, false)
	c.emit(ctx, audit.EventLogout, prev)
	return clearErr
}

// RefreshUser re-fetches /auth/me and updates both the cached snapshot and
// the in-memory user. The authenticated flag is untouched.
func (c *Controller) RefreshUser(ctx context.Context) error {
	var user models.User
	if err := c.client.Get(ctx, "/auth/me", nil, &user); err != nil {
		return err
	}
	if err := c.tokens.SetCachedUser(ctx, &user); err != nil {
		return err
	}

	c.mu.Lock()
	c.user = &user
	c.mu.Unlock()
	c.notify()
	return nil
}

// HandleOAuthCallback completes a delegated login: persists the pair,
// makes the pipeline use it immediately, then fetches and caches the user.
func (c *Controller) HandleOAuthCallback(ctx context.Context, accessToken, refreshToken string) error {
	if err := c.tokens.SetTokens(ctx, accessToken, refreshToken); err != nil {
		return err
	}
	c.client.SetDefaultBearer(accessToken)

	var user models.User
	if err := c.client.Get(ctx, "/auth/me", nil, &user); err != nil {
		return err
	}
	if err := c.tokens.SetCachedUser(ctx, &user); err != nil {
		return err
	}

	c.setState(&user, true, false)
	c.emit(ctx, audit.EventOAuthMigrated, &user)
	return nil
}

// UpdateProfilePictureURL patches the cached user after a photo upload.
func (c *Controller) UpdateProfilePictureURL(ctx context.Context, photoURL string) error {
	return c.mutateUser(ctx, func(u *models.User) {
		u.ProfilePictureURL = photoURL
	})
}

// UpdateUserEmail patches the cached user after a verified email change.
func (c *Controller) UpdateUserEmail(ctx context.Context, email string) error {
	return c.mutateUser(ctx, func(u *models.User) {
		u.Email = email
	})
}

// UpdateAuthTokens persists a new token pair issued after an email change
// and rebinds the cached user to the new address. Skipping this after the
// backend rotates email-bound tokens leaves subsequent requests
// authenticating as the old identity.
func (c *Controller) UpdateAuthTokens(ctx context.Context, email, accessToken, refreshToken string) error {
	if err := c.tokens.SetTokens(ctx, accessToken, refreshToken); err != nil {
		return err
	}
	if err := c.mutateUser(ctx, func(u *models.User) {
		u.Email = email
	}); err != nil {
		return err
	}

	c.emit(ctx, audit.EventTokensRotated, c.Snapshot().User)
	return nil
}

// ChangePassword rotates the password for the logged-in user.
func (c *Controller) ChangePassword(ctx context.Context, req models.ChangePasswordRequest) (string, error) {
	if err := c.validate.Struct(req); err != nil {
		return "", err
	}

	var resp models.MessageResponse
	if err := c.client.Post(ctx, "/auth/change-password", req, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// HasAction reports whether the current user holds the action code.
// Fails closed: no user loaded means no permission.
func (c *Controller) HasAction(code string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.user.HasAction(code)
}

func (c *Controller) mutateUser(ctx context.Context, fn func(*models.User)) error {
	c.mu.Lock()
	if c.user == nil {
		c.mu.Unlock()
		return nil
	}
	updated := *c.user
	fn(&updated)
	c.user = &updated
	c.mu.Unlock()

	if err := c.tokens.SetCachedUser(ctx, &updated); err != nil {
		return err
	}
	c.notify()
	return nil
}

func (c *Controller) setState(user *models.User, authenticated, loading bool) {
	c.mu.Lock()
	c.user = user
	c.authenticated = authenticated
	c.loading = loading
	c.mu.Unlock()
	c.notify()
}

func (c *Controller) notify() {
	snap := c.Snapshot()

	c.listenerMu.Lock()
	listeners := make([]Listener, 0, len(c.listeners))
	for _, l := range c.listeners {
		listeners = append(listeners, l)
	}
	c.listenerMu.Unlock()

	for _, l := range listeners {
		l(snap)
	}
}

func (c *Controller) emit(ctx context.Context, eventType audit.EventType, user *models.User) {
	var id uint64
	var email string
	if user != nil {
		id = user.ID
		email = user.Email
	}
	if err := c.sink.Emit(ctx, audit.NewEvent(eventType, id, email)); err != nil {
		logger.LogWarn("audit emit failed", zap.String("event", string(eventType)), zap.Error(err))
	}
}
