// Package storage provides the durable key-value store backing the token
// store, the role cache and the OAuth bridge. Implementations must keep
// values across process restarts when durability is expected of them; the
// in-memory store exists for tests and for embedders that manage their own
// persistence.
package storage

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound is returned by Get for absent keys.
var ErrNotFound = errors.New("storage: key not found")

// Pair is a key-value pair for batch writes.
type Pair struct {
	Key   string
	Value string
}

// KeyValue is the asynchronous string store the SDK persists into. All
// methods take a context because implementations may be remote.
type KeyValue interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	// MultiSet writes all pairs; implementations should make partial
	// failure visible so callers can treat it as total failure.
	MultiSet(ctx context.Context, pairs []Pair) error
	Remove(ctx context.Context, keys ...string) error
}

// Memory is a process-local KeyValue, safe for concurrent use.
type Memory struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

func (m *Memory) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *Memory) MultiSet(_ context.Context, pairs []Pair) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range pairs {
		m.data[p.Key] = p.Value
	}
	return nil
}

func (m *Memory) Remove(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}
