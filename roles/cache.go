// Package roles keeps the backend-driven role list available offline: a
// persisted snapshot with a freshness window, refreshed from the backend
// when stale, with a constant fallback table matching the backend seed
// data so authorization UIs never block on the network.
package roles

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/octabyte/dietician-client/config"
	"github.com/octabyte/dietician-client/httpclient"
	"github.com/octabyte/dietician-client/models"
	"github.com/octabyte/dietician-client/storage"
	"github.com/octabyte/dietician-client/utils"
	"github.com/octabyte/dietician-client/utils/logger"
)

// Fallback mirrors the backend's seeded roles. Used when neither the
// persisted snapshot nor the backend is available.
func Fallback() []models.Role {
	return []models.Role{
		{ID: 1, RoleCode: "ADMIN", RoleName: "Administrator"},
		{ID: 2, RoleCode: "DIETICIAN", RoleName: "Dietician"},
		{ID: 3, RoleCode: "PATIENT", RoleName: "Patient"},
	}
}

type snapshot struct {
	Roles     []models.Role `json:"roles"`
	Timestamp int64         `json:"timestamp"`
}

type Cache struct {
	client *httpclient.Client
	kv     storage.KeyValue
	ttl    time.Duration
	now    func() time.Time

	mu    sync.RWMutex
	roles []models.Role
}

func NewCache(client *httpclient.Client, kv storage.KeyValue) *Cache {
	return &Cache{
		client: client,
		kv:     kv,
		ttl:    config.RolesCacheTTL,
		now:    time.Now,
	}
}

// Load primes the cache: a fresh persisted snapshot wins outright; a stale
// or missing one installs the fallback table immediately and then tries
// the backend best-effort, so callers always have a role list afterwards.
func (c *Cache) Load(ctx context.Context) {
	raw, err := c.kv.Get(ctx, config.RolesKey)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		logger.LogWarn("failed to read persisted role snapshot", zap.Error(err))
	}

	if raw != "" {
		age := c.now().Sub(time.UnixMilli(gjson.Get(raw, "timestamp").Int()))
		if age < c.ttl {
			var snap snapshot
			if uerr := utils.BytesToStruct([]byte(raw), &snap); uerr == nil && len(snap.Roles) > 0 {
				c.set(snap.Roles)
				return
			}
		}
	}

	c.set(Fallback())
	if rerr := c.Refresh(ctx); rerr != nil {
		logger.LogWarn("role refresh failed, serving fallback table", zap.Error(rerr))
	}
}

// Refresh fetches the role list from the backend and persists a fresh
// snapshot. The in-memory list only changes on a non-empty response.
func (c *Cache) Refresh(ctx context.Context) error {
	var fetched []models.Role
	if err := c.client.Get(ctx, "/admin/roles", nil, &fetched); err != nil {
		return err
	}
	if len(fetched) == 0 {
		return nil
	}

	c.set(fetched)

	raw, err := utils.StructToBytes(snapshot{Roles: fetched, Timestamp: c.now().UnixMilli()})
	if err != nil {
		return err
	}
	return c.kv.Set(ctx, config.RolesKey, string(raw))
}

// All returns the current role list.
func (c *Cache) All() []models.Role {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Role, len(c.roles))
	copy(out, c.roles)
	return out
}

// ByCode looks up a role by its code, e.g. "DIETICIAN".
func (c *Cache) ByCode(code string) (models.Role, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, r := range c.roles {
		if r.RoleCode == code {
			return r, true
		}
	}
	return models.Role{}, false
}

// ByID looks up a role by its backend ID.
func (c *Cache) ByID(id uint64) (models.Role, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, r := range c.roles {
		if r.ID == id {
			return r, true
		}
	}
	return models.Role{}, false
}

// Codes returns the role codes in list order.
func (c *Cache) Codes() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	codes := make([]string, len(c.roles))
	for i, r := range c.roles {
		codes[i] = r.RoleCode
	}
	return codes
}

// DisplayName resolves a role code to its human name, falling back to the
// code itself for unknown roles.
func (c *Cache) DisplayName(code string) string {
	if r, ok := c.ByCode(code); ok {
		return r.RoleName
	}
	return code
}

func (c *Cache) set(roles []models.Role) {
	c.mu.Lock()
	c.roles = roles
	c.mu.Unlock()
}
