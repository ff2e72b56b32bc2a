// Package mocks provides mock implementations of port interfaces for testing.
// Each mock keeps in-memory state, records calls for verification, and
// supports error injection for failure scenarios.
package mocks

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/kindmind-health/therapy-platform/assignment-service/internal/core/domain"
	"github.com/kindmind-health/therapy-platform/assignment-service/internal/core/ports"
)

type PutEntityCall struct {
	EntityType domain.EntityType
	ID         string
	Value      []byte
}

// MockEntityCache implements ports.EntityCache in memory.
type MockEntityCache struct {
	mu       sync.RWMutex
	entities map[string][]byte
	lists    map[string][]byte

	// Call tracking for verification
	PutEntityCalls      []PutEntityCall
	DeleteEntityCalls   []string
	InvalidateListCalls []string

	// Error injection
	GetEntityError      error
	PutEntityError      error
	DeleteEntityError   error
	GetListError        error
	PutListError        error
	InvalidateListError error
}

var _ ports.EntityCache = (*MockEntityCache)(nil)

func NewMockEntityCache() *MockEntityCache {
	return &MockEntityCache{
		entities: make(map[string][]byte),
		lists:    make(map[string][]byte),
	}
}

func cacheKey(entityType domain.EntityType, id string) string {
	return string(entityType) + ":" + id
}

func (m *MockEntityCache) GetEntity(ctx context.Context, entityType domain.EntityType, id string) ([]byte, error) {
	if m.GetEntityError != nil {
		return nil, m.GetEntityError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	raw, ok := m.entities[cacheKey(entityType, id)]
	if !ok {
		return nil, domain.ErrEntityNotFound
	}
	out := make([]byte, len(raw))
	copy(out, raw)
	return out, nil
}

func (m *MockEntityCache) PutEntity(ctx context.Context, entityType domain.EntityType, id string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.PutEntityCalls = append(m.PutEntityCalls, PutEntityCall{EntityType: entityType, ID: id, Value: value})

	if m.PutEntityError != nil {
		return m.PutEntityError
	}

	stored := make([]byte, len(value))
	copy(stored, value)
	m.entities[cacheKey(entityType, id)] = stored
	return nil
}

func (m *MockEntityCache) DeleteEntity(ctx context.Context, entityType domain.EntityType, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.DeleteEntityCalls = append(m.DeleteEntityCalls, cacheKey(entityType, id))

	if m.DeleteEntityError != nil {
		return m.DeleteEntityError
	}

	delete(m.entities, cacheKey(entityType, id))
	return nil
}

func (m *MockEntityCache) GetList(ctx context.Context, name string) ([]byte, error) {
	if m.GetListError != nil {
		return nil, m.GetListError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	raw, ok := m.lists[name]
	if !ok {
		return nil, domain.ErrEntityNotFound
	}
	return raw, nil
}

func (m *MockEntityCache) PutList(ctx context.Context, name string, value []byte) error {
	if m.PutListError != nil {
		return m.PutListError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.lists[name] = value
	return nil
}

func (m *MockEntityCache) InvalidateList(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.InvalidateListCalls = append(m.InvalidateListCalls, name)

	if m.InvalidateListError != nil {
		return m.InvalidateListError
	}

	delete(m.lists, name)
	return nil
}

// SeedEntity stores a marshalled entity for test setup.
func (m *MockEntityCache) SeedEntity(t *testing.T, entityType domain.EntityType, id string, v any) {
	t.Helper()

	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("seed entity %s/%s: %v", entityType, id, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entities[cacheKey(entityType, id)] = raw
}

// EntityBytes returns the raw cached value, or nil when absent.
func (m *MockEntityCache) EntityBytes(entityType domain.EntityType, id string) []byte {
	m.mu.RLock()
	defer m.mu.RUnlock()

	raw, ok := m.entities[cacheKey(entityType, id)]
	if !ok {
		return nil
	}
	out := make([]byte, len(raw))
	copy(out, raw)
	return out
}

// EntityAs unmarshals the cached value into out, failing the test when the
// entity is absent or malformed.
func (m *MockEntityCache) EntityAs(t *testing.T, entityType domain.EntityType, id string, out any) {
	t.Helper()

	raw := m.EntityBytes(entityType, id)
	if raw == nil {
		t.Fatalf("entity %s/%s not in cache", entityType, id)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		t.Fatalf("unmarshal cached %s/%s: %v", entityType, id, err)
	}
}

// HasList reports whether a list view is currently cached.
func (m *MockEntityCache) HasList(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.lists[name]
	return ok
}
