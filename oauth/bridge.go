// Package oauth covers the delegated-login plumbing: building the provider
// authorization URL, exchanging the redirect code at the backend, and the
// one-shot bridge that moves tokens deposited by the redirect-completion
// page into the SDK's own token store.
package oauth

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/octabyte/dietician-client/auth"
	"github.com/octabyte/dietician-client/config"
	"github.com/octabyte/dietician-client/httpclient"
	"github.com/octabyte/dietician-client/models"
	"github.com/octabyte/dietician-client/storage"
	"github.com/octabyte/dietician-client/utils"
	"github.com/octabyte/dietician-client/utils/logger"
)

// Bridge migrates a PendingOAuthBundle from the transient store into the
// token store. Run it once at startup, before the session controller's
// CheckAuthStatus, so the startup check sees the migrated tokens.
type Bridge struct {
	temp   storage.KeyValue
	tokens *auth.TokenStore
	client *httpclient.Client
	now    func() time.Time

	mu        sync.Mutex
	processed bool
}

func NewBridge(temp storage.KeyValue, tokens *auth.TokenStore, client *httpclient.Client) *Bridge {
	return &Bridge{temp: temp, tokens: tokens, client: client, now: time.Now}
}

// Run consumes a pending bundle if one exists. It reports whether a
// migration happened. A bridge processes a bundle at most once per process
// lifetime; later calls are no-ops even if a bundle reappears.
func (b *Bridge) Run(ctx context.Context) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.processed {
		return false, nil
	}

	raw, err := b.temp.Get(ctx, config.OAuthBundleKey)
	if errors.Is(err, storage.ErrNotFound) || (err == nil && raw == "") {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	// A bundle was found; whatever happens next, this process will not
	// look at another one.
	b.processed = true

	var bundle models.PendingOAuthBundle
	if err := utils.BytesToStruct([]byte(raw), &bundle); err != nil {
		b.discard(ctx)
		return false, err
	}

	if bundle.Age(b.now()) > config.OAuthBundleTTL {
		logger.LogInfo("discarding expired oauth bundle")
		b.discard(ctx)
		return false, nil
	}

	refresh := bundle.RefreshToken
	if refresh == "" {
		// Completion pages from providers without refresh grants only
		// carry an access token.
		refresh = bundle.AccessToken
	}

	if err := b.tokens.SetTokens(ctx, bundle.AccessToken, refresh); err != nil {
		b.discard(ctx)
		return false, err
	}
	if bundle.User != nil {
		if err := b.tokens.SetCachedUser(ctx, bundle.User); err != nil {
			b.discard(ctx)
			return false, err
		}
	}

	b.client.SetDefaultBearer(bundle.AccessToken)
	b.discard(ctx)

	logger.LogInfo("oauth bundle migrated into token store")
	return true, nil
}

// discard removes the bundle so a failed migration is not retried forever.
func (b *Bridge) discard(ctx context.Context) {
	if err := b.temp.Remove(ctx, config.OAuthBundleKey); err != nil {
		logger.LogWarn("failed to remove oauth bundle from transient store", zap.Error(err))
	}
}
