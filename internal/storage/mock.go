package storage

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/DanJbk/tilequest/pkg/world"
)

// MockStorage is a mock implementation of Storage for testing.
type MockStorage struct {
	mu        sync.RWMutex
	sessions  map[uuid.UUID]*world.Snapshot
	pingError error
	saveError error
}

// Ensure MockStorage implements Storage interface
var _ Storage = (*MockStorage)(nil)

// NewMockStorage creates a new mock storage.
func NewMockStorage() *MockStorage {
	return &MockStorage{
		sessions: make(map[uuid.UUID]*world.Snapshot),
	}
}

// SetPingError configures the mock to fail on ping with the given error.
func (m *MockStorage) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = err
}

// SetSaveError configures the mock to fail on SaveSession.
func (m *MockStorage) SetSaveError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveError = err
}

// Ping mocks storage ping.
func (m *MockStorage) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pingError
}

// Close mocks storage close.
func (m *MockStorage) Close() error {
	return nil
}

// SaveSession stores the snapshot in memory.
func (m *MockStorage) SaveSession(ctx context.Context, id uuid.UUID, snap *world.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveError != nil {
		return m.saveError
	}
	m.sessions[id] = snap
	return nil
}

// LoadSession returns a stored snapshot, or (nil, nil) when absent.
func (m *MockStorage) LoadSession(ctx context.Context, id uuid.UUID) (*world.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[id], nil
}

// DeleteSession removes a stored snapshot.
func (m *MockStorage) DeleteSession(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}
