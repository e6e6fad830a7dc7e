package resultcache

import (
	"context"
	"slices"
	"sync"

	"github.com/pageza/recipefinder/backend/internal/types"
)

// MemoryStore keeps slots in process memory. Used for tests and single-node development.
type MemoryStore struct {
	mu    sync.Mutex
	slots map[string][]types.RecipeRecord
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{slots: make(map[string][]types.RecipeRecord)}
}

func (m *MemoryStore) Store(_ context.Context, sessionID string, records []types.RecipeRecord) error {
	if sessionID == "" {
		return ErrNoSession
	}
	if records == nil {
		records = []types.RecipeRecord{}
	}
	m.mu.Lock()
	m.slots[sessionID] = slices.Clone(records)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) TakeAndClear(_ context.Context, sessionID string) ([]types.RecipeRecord, bool, error) {
	if sessionID == "" {
		return nil, false, ErrNoSession
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	records, ok := m.slots[sessionID]
	delete(m.slots, sessionID)
	return records, ok, nil
}
