package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/octabyte/dietician-client/models"
	"github.com/octabyte/dietician-client/storage"
)

func TestTokenRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewTokenStore(storage.NewMemory())

	require.NoError(t, store.SetTokens(ctx, "AT1", "RT1"))

	access, err := store.GetAccessToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "AT1", access)

	refresh, err := store.GetRefreshToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "RT1", refresh)
}

func TestEmptyStoreReadsAsAbsent(t *testing.T) {
	ctx := context.Background()
	store := NewTokenStore(storage.NewMemory())

	access, err := store.GetAccessToken(ctx)
	require.NoError(t, err)
	assert.Empty(t, access)

	user, err := store.GetCachedUser(ctx)
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestSetAccessTokenKeepsRefreshSlot(t *testing.T) {
	ctx := context.Background()
	store := NewTokenStore(storage.NewMemory())

	require.NoError(t, store.SetTokens(ctx, "AT1", "RT1"))
	require.NoError(t, store.SetAccessToken(ctx, "AT2"))

	access, err := store.GetAccessToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "AT2", access)

	refresh, err := store.GetRefreshToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "RT1", refresh)
}

func TestCachedUserSnapshot(t *testing.T) {
	ctx := context.Background()
	store := NewTokenStore(storage.NewMemory())

	user := &models.User{
		ID:            1,
		Email:         "a@b.com",
		Role:          "PATIENT",
		EmailVerified: true,
		Actions:       []string{"VIEW_PATIENT"},
	}
	require.NoError(t, store.SetCachedUser(ctx, user))

	got, err := store.GetCachedUser(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, user.Email, got.Email)
	assert.Equal(t, user.Actions, got.Actions)
}

func TestSetAuthPersistsAllSlots(t *testing.T) {
	ctx := context.Background()
	store := NewTokenStore(storage.NewMemory())

	resp := &models.AuthResponse{
		AccessToken:  "AT1",
		RefreshToken: "RT1",
		User:         &models.User{ID: 1, Email: "a@b.com", Role: "PATIENT"},
	}
	require.NoError(t, store.SetAuth(ctx, resp))

	access, _ := store.GetAccessToken(ctx)
	refresh, _ := store.GetRefreshToken(ctx)
	user, err := store.GetCachedUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, "AT1", access)
	assert.Equal(t, "RT1", refresh)
	require.NotNil(t, user)
	assert.EqualValues(t, 1, user.ID)
}

func TestClearAll(t *testing.T) {
	ctx := context.Background()
	store := NewTokenStore(storage.NewMemory())

	require.NoError(t, store.SetAuth(ctx, &models.AuthResponse{
		AccessToken:  "AT1",
		RefreshToken: "RT1",
		User:         &models.User{ID: 1},
	}))
	require.NoError(t, store.ClearAll(ctx))

	access, err := store.GetAccessToken(ctx)
	require.NoError(t, err)
	assert.Empty(t, access)

	refresh, err := store.GetRefreshToken(ctx)
	require.NoError(t, err)
	assert.Empty(t, refresh)

	user, err := store.GetCachedUser(ctx)
	require.NoError(t, err)
	assert.Nil(t, user)
}

type failingKV struct {
	storage.KeyValue
	err error
}

func (f *failingKV) MultiSet(context.Context, []storage.Pair) error { return f.err }

func TestSetTokensPropagatesStoreFailure(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("disk full")
	store := NewTokenStore(&failingKV{KeyValue: storage.NewMemory(), err: boom})

	err := store.SetTokens(ctx, "AT1", "RT1")
	assert.ErrorIs(t, err, boom)
}
