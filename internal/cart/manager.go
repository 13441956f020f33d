package cart

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/multierr"

	"github.com/mercagoods/storefront-backend/pkg/logger"
	"github.com/mercagoods/storefront-backend/pkg/metrics"
)

// Manager hands out one Store per session, restoring persisted state on first
// access.
type Manager struct {
	mu     sync.Mutex
	stores map[string]*Store

	pricing Pricing
	policy  QuantityPolicy
	persist Persistence
	logg    *logger.Logger
	metrics *metrics.CartMetrics
}

// ManagerParams wires the manager's collaborators.
type ManagerParams struct {
	Pricing     Pricing
	Policy      QuantityPolicy
	Persistence Persistence
	Logger      *logger.Logger
	Metrics     *metrics.CartMetrics
}

// NewManager builds a session-keyed cart registry.
func NewManager(params ManagerParams) (*Manager, error) {
	if params.Persistence == nil {
		return nil, fmt.Errorf("cart persistence is required")
	}
	if params.Policy == "" {
		params.Policy = ClampToStock
	}
	return &Manager{
		stores:  make(map[string]*Store),
		pricing: params.Pricing,
		policy:  params.Policy,
		persist: params.Persistence,
		logg:    params.Logger,
		metrics: params.Metrics,
	}, nil
}

// StoreFor returns the cart store for a session, creating and restoring it on
// first use.
func (m *Manager) StoreFor(ctx context.Context, sessionID string) (*Store, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if store, ok := m.stores[sessionID]; ok {
		return store, nil
	}

	store, err := NewStore(ctx, StoreParams{
		Key:         sessionID,
		Pricing:     m.pricing,
		Policy:      m.policy,
		Persistence: m.persist,
		Logger:      m.logg,
		Metrics:     m.metrics,
	})
	if err != nil {
		return nil, err
	}
	m.stores[sessionID] = store
	return store, nil
}

// SaveAll flushes every live cart, combining failures. Called on shutdown.
func (m *Manager) SaveAll(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs error
	for _, store := range m.stores {
		if err := store.Save(ctx); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}
