package services

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/jwebster45206/route-agent/pkg/milestone"
)

// MockStorage implements Storage in memory for testing and for the
// read-only console, which must never touch a live progress record.
type MockStorage struct {
	mu      sync.Mutex
	records map[uuid.UUID]milestone.ProgressState

	// SaveProgressFunc overrides SaveProgress when set.
	SaveProgressFunc func(ctx context.Context, ps *milestone.ProgressState) error
}

var _ Storage = (*MockStorage)(nil)

func NewMockStorage() *MockStorage {
	return &MockStorage{
		records: make(map[uuid.UUID]milestone.ProgressState),
	}
}

func (m *MockStorage) Ping(ctx context.Context) error { return nil }

func (m *MockStorage) Close() error { return nil }

func (m *MockStorage) SaveProgress(ctx context.Context, ps *milestone.ProgressState) error {
	if m.SaveProgressFunc != nil {
		return m.SaveProgressFunc(ctx, ps)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *ps
	cp.Completed = append([]string{}, ps.Completed...)
	m.records[ps.RunID] = cp
	return nil
}

func (m *MockStorage) LoadProgress(ctx context.Context, runID uuid.UUID) (*milestone.ProgressState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ps, ok := m.records[runID]
	if !ok {
		return nil, nil
	}
	cp := ps
	cp.Completed = append([]string{}, ps.Completed...)
	return &cp, nil
}

func (m *MockStorage) DeleteProgress(ctx context.Context, runID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, runID)
	return nil
}
