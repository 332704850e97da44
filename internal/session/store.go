// Package session models the per-browser-session key-value state that binds
// characters to conversations. The binding store is passed into the
// conversation manager as an explicit capability rather than read from
// ambient request state.
package session

import (
	"context"
	"fmt"
	"time"

	"character-chat/backend/pkg/cache"
)

// Store is the request-scoped session state of one browser session.
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set writes the value for key.
	Set(ctx context.Context, key, value string) error
}

// Backend persists session state across requests, keyed by session ID.
type Backend interface {
	Get(ctx context.Context, sessionID, key string) (string, bool, error)
	Set(ctx context.Context, sessionID, key, value string) error
}

// scoped is a Store bound to a single session ID.
type scoped struct {
	backend   Backend
	sessionID string
}

// ForSession returns the Store view of one session.
func ForSession(backend Backend, sessionID string) Store {
	return &scoped{backend: backend, sessionID: sessionID}
}

func (s *scoped) Get(ctx context.Context, key string) (string, bool, error) {
	return s.backend.Get(ctx, s.sessionID, key)
}

func (s *scoped) Set(ctx context.Context, key, value string) error {
	return s.backend.Set(ctx, s.sessionID, key, value)
}

// MemoryBackend keeps session state in process memory. Used in tests and in
// redis-less development setups; state does not survive a restart. Entries
// expire with a sliding TTL, mirroring the redis backend.
type MemoryBackend struct {
	entries *cache.Cache
}

// NewMemoryBackend creates an in-memory backend with no expiry.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{entries: cache.New(0, 0)}
}

// NewMemoryBackendTTL creates an in-memory backend whose entries expire.
func NewMemoryBackendTTL(ttl time.Duration) *MemoryBackend {
	return &MemoryBackend{entries: cache.New(ttl, ttl)}
}

func memoryKey(sessionID, key string) string {
	return fmt.Sprintf("%s\x00%s", sessionID, key)
}

func (m *MemoryBackend) Get(ctx context.Context, sessionID, key string) (string, bool, error) {
	value, ok := m.entries.Get(memoryKey(sessionID, key))
	if !ok {
		return "", false, nil
	}
	// Sliding expiry, matching the redis backend.
	m.entries.Touch(memoryKey(sessionID, key))
	return value.(string), true, nil
}

func (m *MemoryBackend) Set(ctx context.Context, sessionID, key, value string) error {
	m.entries.Set(memoryKey(sessionID, key), value)
	return nil
}
