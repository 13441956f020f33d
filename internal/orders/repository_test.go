package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mercagoods/storefront-backend/pkg/db/models"
	"github.com/mercagoods/storefront-backend/pkg/enums"
	"github.com/mercagoods/storefront-backend/pkg/pagination"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Order{}, &models.OrderLineItem{}))
	return db
}

func createOrder(t *testing.T, db *gorm.DB, sessionID string, userID *uuid.UUID, createdAt time.Time) models.Order {
	t.Helper()

	order := models.Order{
		ID:            uuid.New(),
		SessionID:     sessionID,
		UserID:        userID,
		Status:        enums.OrderStatusPending,
		Currency:      enums.CurrencyUSD,
		PaymentMethod: enums.PaymentMethodCard,
		Subtotal:      decimal.NewFromFloat(49.99),
		Discount:      decimal.Zero,
		Tax:           decimal.NewFromFloat(5.00),
		Shipping:      decimal.NewFromFloat(10.00),
		Total:         decimal.NewFromFloat(64.99),
		Items: []models.OrderLineItem{{
			ProductID: uuid.New(),
			Name:      "Wireless Headphones",
			SKU:       "SKU-HP-01",
			UnitPrice: decimal.NewFromFloat(49.99),
			Quantity:  1,
			LineTotal: decimal.NewFromFloat(49.99),
		}},
		PlacedAt:  createdAt,
		CreatedAt: createdAt,
	}
	require.NoError(t, db.Create(&order).Error)
	return order
}

func TestRepositoryListScopedToSession(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	now := time.Now().UTC()

	mine := createOrder(t, db, "session-a", nil, now)
	createOrder(t, db, "session-b", nil, now.Add(-time.Minute))

	orders, err := repo.List(context.Background(), Identity{SessionID: "session-a"}, nil, 10)
	require.NoError(t, err)

	require.Len(t, orders, 1)
	assert.Equal(t, mine.ID, orders[0].ID)
	require.Len(t, orders[0].Items, 1)
	assert.Equal(t, "Wireless Headphones", orders[0].Items[0].Name)
}

func TestRepositoryListIncludesUserOrdersFromOtherSessions(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	now := time.Now().UTC()
	userID := uuid.New()

	createOrder(t, db, "session-phone", &userID, now)
	createOrder(t, db, "session-laptop", &userID, now.Add(-time.Minute))
	createOrder(t, db, "session-stranger", nil, now.Add(-2*time.Minute))

	orders, err := repo.List(context.Background(), Identity{SessionID: "session-laptop", UserID: &userID}, nil, 10)
	require.NoError(t, err)

	assert.Len(t, orders, 2)
}

func TestRepositoryListCursorPagination(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	now := time.Now().UTC()

	for i := 0; i < 3; i++ {
		createOrder(t, db, "session-a", nil, now.Add(-time.Duration(i)*time.Minute))
	}

	identity := Identity{SessionID: "session-a"}
	first, err := repo.List(context.Background(), identity, nil, 2)
	require.NoError(t, err)
	require.Len(t, first, 2)

	cursor := &pagination.Cursor{CreatedAt: first[1].CreatedAt, ID: first[1].ID}
	second, err := repo.List(context.Background(), identity, cursor, 2)
	require.NoError(t, err)

	require.Len(t, second, 1)
	assert.True(t, second[0].CreatedAt.Before(first[1].CreatedAt))
}

func TestRepositoryGetByID(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	created := createOrder(t, db, "session-a", nil, time.Now().UTC())

	order, err := repo.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, order.ID)
	assert.Len(t, order.Items, 1)

	_, err = repo.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
