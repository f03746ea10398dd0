// Package session persists the authenticated session and user preferences
// between runs and drives login, logout and restore.
package session

import (
	"context"
	"sync"
)

// Storage is a small string key/value store. Get reports ok=false for a
// missing key; Remove of a missing key is not an error.
type Storage interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Keys the client persists.
const (
	KeySession      = "session"
	KeyLanguage     = "language"
	KeyCalendarSync = "googleCalendarSync"

	// Legacy keys written by earlier client revisions. They are migrated into
	// KeySession on Restore and then removed.
	legacyKeyAuthToken   = "authToken"
	legacyKeyAccessToken = "access_token"
	legacyKeyCurrentUser = "currentUser"
)

// MemoryStorage keeps values in process memory.
type MemoryStorage struct {
	mu     sync.Mutex
	values map[string]string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: map[string]string{}}
}

func (m *MemoryStorage) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryStorage) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	m.values[key] = value
	m.mu.Unlock()
	return nil
}

func (m *MemoryStorage) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.values, key)
	m.mu.Unlock()
	return nil
}

// Keys lists the stored keys; used by tests.
func (m *MemoryStorage) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.values))
	for k := range m.values {
		out = append(out, k)
	}
	return out
}
