package cart

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()

	mgr, err := NewManager(ManagerParams{
		Pricing:     testPricing(),
		Policy:      ClampToStock,
		Persistence: NewMemoryPersistence(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return mgr
}

func TestManagerReturnsSameStorePerSession(t *testing.T) {
	t.Parallel()

	mgr := newTestManager(t)

	a, err := mgr.StoreFor(context.Background(), "session-a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := mgr.StoreFor(context.Background(), "session-a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a != b {
		t.Fatal("expected the same store instance for a session")
	}
}

func TestManagerIsolatesSessions(t *testing.T) {
	t.Parallel()

	mgr := newTestManager(t)

	a, _ := mgr.StoreFor(context.Background(), "session-a")
	b, _ := mgr.StoreFor(context.Background(), "session-b")

	if _, err := a.AddItem(context.Background(), snapshotWithStock(5), 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(b.Items()) != 0 {
		t.Fatal("expected session-b cart to stay empty")
	}
}

func TestManagerRestoresPersistedCart(t *testing.T) {
	t.Parallel()

	persist := NewMemoryPersistence()
	state := State{
		Items:   []LineItem{{ID: "x", Price: decimal.NewFromFloat(12), Quantity: 1}},
		Summary: ZeroSummary(),
	}
	if err := persist.Save(context.Background(), "returning", &state); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mgr, err := NewManager(ManagerParams{
		Pricing:     testPricing(),
		Persistence: persist,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	store, err := mgr.StoreFor(context.Background(), "returning")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.Items()) != 1 {
		t.Fatal("expected persisted cart restored on first access")
	}
}

func TestManagerRequiresPersistence(t *testing.T) {
	t.Parallel()

	if _, err := NewManager(ManagerParams{Pricing: testPricing()}); err == nil {
		t.Fatal("expected error when persistence is missing")
	}
}

func TestManagerSaveAll(t *testing.T) {
	t.Parallel()

	mgr := newTestManager(t)
	store, _ := mgr.StoreFor(context.Background(), "session-a")
	if _, err := store.AddItem(context.Background(), snapshotWithStock(5), 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := mgr.SaveAll(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
