package orders

import (
	"context"
	gerrors "errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mercagoods/storefront-backend/pkg/db/models"
	"github.com/mercagoods/storefront-backend/pkg/errors"
	"github.com/mercagoods/storefront-backend/pkg/pagination"
)

// Service exposes order history for a shopper.
type Service interface {
	ListOrders(ctx context.Context, identity Identity, cursor string, limit int) (*ListResult, error)
	GetOrder(ctx context.Context, identity Identity, id uuid.UUID) (*models.Order, error)
}

// ListResult is one page of orders plus the cursor for the next one.
type ListResult struct {
	Orders     []models.Order
	NextCursor string
}

type service struct {
	repo Repository
}

// NewService builds the orders service.
func NewService(repo Repository) Service {
	if repo == nil {
		panic("orders: repository is required")
	}
	return &service{repo: repo}
}

func (s *service) ListOrders(ctx context.Context, identity Identity, cursor string, limit int) (*ListResult, error) {
	limit = pagination.NormalizeLimit(limit)

	parsed, err := pagination.ParseCursor(cursor)
	if err != nil {
		return nil, errors.Wrap(errors.CodeValidation, err, "invalid cursor")
	}

	rows, err := s.repo.List(ctx, identity, parsed, pagination.LimitWithBuffer(limit))
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to list orders")
	}

	result := &ListResult{Orders: rows}
	if len(rows) > limit {
		result.Orders = rows[:limit]
		last := result.Orders[limit-1]
		result.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return result, nil
}

func (s *service) GetOrder(ctx context.Context, identity Identity, id uuid.UUID) (*models.Order, error) {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if gerrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New(errors.CodeNotFound, "order not found")
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to load order")
	}
	if !owns(identity, order) {
		// Reported as not found so an order id leaks nothing across sessions.
		return nil, errors.New(errors.CodeNotFound, "order not found")
	}
	return order, nil
}

func owns(identity Identity, order *models.Order) bool {
	if order.SessionID == identity.SessionID {
		return true
	}
	if identity.UserID != nil && order.UserID != nil && *order.UserID == *identity.UserID {
		return true
	}
	return false
}
