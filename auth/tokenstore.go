// Package auth holds the persisted credential slots shared by the request
// pipeline and the session controller.
package auth

import (
	"context"
	"errors"

	"github.com/octabyte/dietician-client/config"
	"github.com/octabyte/dietician-client/models"
	"github.com/octabyte/dietician-client/storage"
	"github.com/octabyte/dietician-client/utils"
)

// TokenStore wraps the key-value store with three named slots: access
// token, refresh token and the cached user snapshot. Absent slots read as
// empty values, not errors; store failures propagate untouched.
type TokenStore struct {
	kv storage.KeyValue
}

func NewTokenStore(kv storage.KeyValue) *TokenStore {
	return &TokenStore{kv: kv}
}

// GetAccessToken returns the stored access token, or "" when none is set.
func (s *TokenStore) GetAccessToken(ctx context.Context) (string, error) {
	return s.get(ctx, config.AccessTokenKey)
}

// GetRefreshToken returns the stored refresh token, or "" when none is set.
func (s *TokenStore) GetRefreshToken(ctx context.Context) (string, error) {
	return s.get(ctx, config.RefreshTokenKey)
}

// GetCachedUser returns the point-in-time user snapshot persisted on the
// last login/verify/OAuth completion, or nil when none is cached. The
// snapshot may be stale between refreshes; that is accepted.
func (s *TokenStore) GetCachedUser(ctx context.Context) (*models.User, error) {
	raw, err := s.get(ctx, config.UserDataKey)
	if err != nil || raw == "" {
		return nil, err
	}

	var user models.User
	if err := utils.BytesToStruct([]byte(raw), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// SetTokens overwrites both token slots in one batch write. Partial
// failure surfaces as an error, which callers treat as total failure.
func (s *TokenStore) SetTokens(ctx context.Context, access, refresh string) error {
	return s.kv.MultiSet(ctx, []storage.Pair{
		{Key: config.AccessTokenKey, Value: access},
		{Key: config.RefreshTokenKey, Value: refresh},
	})
}

// SetAccessToken replaces only the access slot; the refresh-on-401 path
// uses this so a rotating access token leaves the refresh token intact.
func (s *TokenStore) SetAccessToken(ctx context.Context, access string) error {
	return s.kv.Set(ctx, config.AccessTokenKey, access)
}

func (s *TokenStore) SetCachedUser(ctx context.Context, user *models.User) error {
	raw, err := utils.StructToBytes(user)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, config.UserDataKey, string(raw))
}

// SetAuth persists a full auth response (both tokens plus the user
// snapshot) in one batch write.
func (s *TokenStore) SetAuth(ctx context.Context, resp *models.AuthResponse) error {
	raw, err := utils.StructToBytes(resp.User)
	if err != nil {
		return err
	}
	return s.kv.MultiSet(ctx, []storage.Pair{
		{Key: config.AccessTokenKey, Value: resp.AccessToken},
		{Key: config.RefreshTokenKey, Value: resp.RefreshToken},
		{Key: config.UserDataKey, Value: string(raw)},
	})
}

// ClearAll removes all three slots. Used on logout and on failed refresh.
func (s *TokenStore) ClearAll(ctx context.Context) error {
	return s.kv.Remove(ctx, config.AccessTokenKey, config.RefreshTokenKey, config.UserDataKey)
}

func (s *TokenStore) get(ctx context.Context, key string) (string, error) {
	v, err := s.kv.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return "", nil
	}
	return v, err
}
