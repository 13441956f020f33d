package orders

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mercagoods/storefront-backend/pkg/db/models"
	"github.com/mercagoods/storefront-backend/pkg/errors"
	"github.com/mercagoods/storefront-backend/pkg/pagination"
)

type stubOrderRepo struct {
	orders []models.Order
	byID   map[uuid.UUID]*models.Order
	err    error
}

func (s *stubOrderRepo) WithTx(tx *gorm.DB) Repository {
	return s
}

func (s *stubOrderRepo) Create(ctx context.Context, order *models.Order) error {
	s.orders = append(s.orders, *order)
	return s.err
}

func (s *stubOrderRepo) List(ctx context.Context, identity Identity, cursor *pagination.Cursor, limit int) ([]models.Order, error) {
	if s.err != nil {
		return nil, s.err
	}
	if limit > len(s.orders) {
		limit = len(s.orders)
	}
	return s.orders[:limit], nil
}

func (s *stubOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if s.err != nil {
		return nil, s.err
	}
	order, ok := s.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return order, nil
}

func makeOrders(n int, sessionID string) []models.Order {
	now := time.Now().UTC()
	out := make([]models.Order, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, models.Order{
			ID:        uuid.New(),
			SessionID: sessionID,
			CreatedAt: now.Add(-time.Duration(i) * time.Minute),
		})
	}
	return out
}

func TestListOrdersReturnsNextCursorWhenMorePagesExist(t *testing.T) {
	repo := &stubOrderRepo{orders: makeOrders(3, "session-a")}
	svc := NewService(repo)

	result, err := svc.ListOrders(context.Background(), Identity{SessionID: "session-a"}, "", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Orders) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(result.Orders))
	}
	if result.NextCursor == "" {
		t.Fatal("expected next cursor to be set")
	}
}

func TestListOrdersOmitsCursorOnLastPage(t *testing.T) {
	repo := &stubOrderRepo{orders: makeOrders(2, "session-a")}
	svc := NewService(repo)

	result, err := svc.ListOrders(context.Background(), Identity{SessionID: "session-a"}, "", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.NextCursor != "" {
		t.Fatalf("expected empty cursor, got %q", result.NextCursor)
	}
}

func TestListOrdersRejectsMalformedCursor(t *testing.T) {
	svc := NewService(&stubOrderRepo{})

	_, err := svc.ListOrders(context.Background(), Identity{SessionID: "session-a"}, "not-base64!", 10)
	if err == nil {
		t.Fatal("expected error")
	}
	if typed := errors.As(err); typed == nil || typed.Code() != errors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGetOrderMapsMissingRecordToNotFound(t *testing.T) {
	svc := NewService(&stubOrderRepo{byID: map[uuid.UUID]*models.Order{}})

	_, err := svc.GetOrder(context.Background(), Identity{SessionID: "session-a"}, uuid.New())
	if typed := errors.As(err); typed == nil || typed.Code() != errors.CodeNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestGetOrderHidesOrdersOwnedByOthers(t *testing.T) {
	id := uuid.New()
	otherUser := uuid.New()
	repo := &stubOrderRepo{byID: map[uuid.UUID]*models.Order{
		id: {ID: id, SessionID: "session-b", UserID: &otherUser},
	}}
	svc := NewService(repo)

	_, err := svc.GetOrder(context.Background(), Identity{SessionID: "session-a"}, id)
	if typed := errors.As(err); typed == nil || typed.Code() != errors.CodeNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestGetOrderAllowsUserMatchAcrossSessions(t *testing.T) {
	id := uuid.New()
	userID := uuid.New()
	repo := &stubOrderRepo{byID: map[uuid.UUID]*models.Order{
		id: {ID: id, SessionID: "session-old", UserID: &userID},
	}}
	svc := NewService(repo)

	order, err := svc.GetOrder(context.Background(), Identity{SessionID: "session-new", UserID: &userID}, id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.ID != id {
		t.Fatalf("expected order %s, got %s", id, order.ID)
	}
}

func TestListOrdersWrapsRepositoryFailures(t *testing.T) {
	repo := &stubOrderRepo{err: fmt.Errorf("connection reset")}
	svc := NewService(repo)

	_, err := svc.ListOrders(context.Background(), Identity{SessionID: "session-a"}, "", 10)
	if typed := errors.As(err); typed == nil || typed.Code() != errors.CodeInternal {
		t.Fatalf("expected internal error, got %v", err)
	}
}
