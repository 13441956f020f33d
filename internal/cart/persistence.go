package cart

import (
	"context"
	"errors"
	"sync"
)

// ErrStateNotFound signals that no cart state is stored under the given key.
var ErrStateNotFound = errors.New("cart state not found")

// Persistence is the swappable storage port for cart state. The store treats
// every Load failure as an absent cart and every Save failure as non-fatal,
// so adapters only need to report errors faithfully.
type Persistence interface {
	Load(ctx context.Context, key string) (*State, error)
	Save(ctx context.Context, key string, state *State) error
	Delete(ctx context.Context, key string) error
}

// MemoryPersistence keeps cart state in process memory. Used for tests and
// the "memory" backend.
type MemoryPersistence struct {
	mu     sync.RWMutex
	states map[string]State
}

// NewMemoryPersistence returns an empty in-memory adapter.
func NewMemoryPersistence() *MemoryPersistence {
	return &MemoryPersistence{states: make(map[string]State)}
}

func (m *MemoryPersistence) Load(ctx context.Context, key string) (*State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	state, ok := m.states[key]
	if !ok {
		return nil, ErrStateNotFound
	}
	cloned := state.clone()
	return &cloned, nil
}

func (m *MemoryPersistence) Save(ctx context.Context, key string, state *State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[key] = state.clone()
	return nil
}

func (m *MemoryPersistence) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, key)
	return nil
}
