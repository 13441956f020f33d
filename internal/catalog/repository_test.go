package catalog

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

func setupCatalogTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Product{}, &models.ProductVariant{}))
	return db
}

func createProduct(t *testing.T, db *gorm.DB, name string, category enums.ProductCategory, price float64, createdAt time.Time) models.Product {
	t.Helper()

	product := models.Product{
		ID:        uuid.New(),
		SKU:       "SKU-" + uuid.NewString()[:8],
		Name:      name,
		Category:  category,
		Price:     decimal.NewFromFloat(price),
		Stock:     10,
		IsActive:  true,
		CreatedAt: createdAt,
	}
	require.NoError(t, db.Create(&product).Error)
	return product
}

func TestRepositoryListFiltersByCategory(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	now := time.Now().UTC()

	createProduct(t, db, "Lamp", enums.ProductCategoryHome, 30, now)
	createProduct(t, db, "Headphones", enums.ProductCategoryElectronics, 70, now.Add(-time.Minute))

	category := enums.ProductCategoryHome
	products, err := repo.List(context.Background(), ListFilter{Category: &category}, nil, 10)
	require.NoError(t, err)

	require.Len(t, products, 1)
	assert.Equal(t, "Lamp", products[0].Name)
}

func TestRepositoryListFiltersByPriceRange(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	now := time.Now().UTC()

	createProduct(t, db, "Cheap", enums.ProductCategoryBooks, 5, now)
	createProduct(t, db, "Mid", enums.ProductCategoryBooks, 25, now.Add(-time.Minute))
	createProduct(t, db, "Expensive", enums.ProductCategoryBooks, 250, now.Add(-2*time.Minute))

	minPrice := decimal.NewFromInt(10)
	maxPrice := decimal.NewFromInt(100)
	products, err := repo.List(context.Background(), ListFilter{MinPrice: &minPrice, MaxPrice: &maxPrice}, nil, 10)
	require.NoError(t, err)

	require.Len(t, products, 1)
	assert.Equal(t, "Mid", products[0].Name)
}

func TestRepositoryListSearchMatchesNameAndDescription(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	now := time.Now().UTC()

	createProduct(t, db, "Oak Desk Lamp", enums.ProductCategoryHome, 60, now)
	other := createProduct(t, db, "Chair", enums.ProductCategoryHome, 90, now.Add(-time.Minute))
	require.NoError(t, db.Model(&other).Update("description", "matches lamp searches too").Error)

	products, err := repo.List(context.Background(), ListFilter{Search: "LAMP"}, nil, 10)
	require.NoError(t, err)

	assert.Len(t, products, 2)
}

func TestRepositoryListCursorPagination(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	base := time.Now().UTC().Add(-time.Hour)

	for i := 0; i < 5; i++ {
		createProduct(t, db, "Item", enums.ProductCategoryBooks, 10, base.Add(time.Duration(i)*time.Minute))
	}

	firstPage, err := repo.List(context.Background(), ListFilter{}, nil, 3)
	require.NoError(t, err)
	require.Len(t, firstPage, 3)

	cursor := &pagination.Cursor{CreatedAt: firstPage[2].CreatedAt, ID: firstPage[2].ID}
	secondPage, err := repo.List(context.Background(), ListFilter{}, cursor, 3)
	require.NoError(t, err)

	require.Len(t, secondPage, 2)
	for _, p := range secondPage {
		assert.True(t, p.CreatedAt.Before(firstPage[2].CreatedAt))
	}
}

func TestRepositoryListSkipsInactiveProducts(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)

	inactive := createProduct(t, db, "Hidden", enums.ProductCategoryBooks, 10, time.Now().UTC())
	require.NoError(t, db.Model(&inactive).Update("is_active", false).Error)

	products, err := repo.List(context.Background(), ListFilter{}, nil, 10)
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestRepositoryGetByIDPreloadsVariants(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)

	product := createProduct(t, db, "Tee", enums.ProductCategoryClothing, 18, time.Now().UTC())
	variant := models.ProductVariant{
		ProductID: product.ID,
		SKU:       "TEE-S",
		Name:      "Small",
		Price:     decimal.NewFromFloat(18),
		Stock:     3,
	}
	require.NoError(t, db.Create(&variant).Error)

	got, err := repo.GetByID(context.Background(), product.ID)
	require.NoError(t, err)

	require.Len(t, got.Variants, 1)
	assert.Equal(t, "TEE-S", got.Variants[0].SKU)
}

func TestRepositoryGetVariantScopedToProduct(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)

	product := createProduct(t, db, "Tee", enums.ProductCategoryClothing, 18, time.Now().UTC())
	otherProduct := createProduct(t, db, "Hat", enums.ProductCategoryClothing, 12, time.Now().UTC())
	variant := models.ProductVariant{
		ProductID: product.ID,
		SKU:       "TEE-M",
		Name:      "Medium",
		Price:     decimal.NewFromFloat(18),
		Stock:     5,
	}
	require.NoError(t, db.Create(&variant).Error)

	got, err := repo.GetVariant(context.Background(), product.ID, variant.ID)
	require.NoError(t, err)
	assert.Equal(t, variant.ID, got.ID)

	_, err = repo.GetVariant(context.Background(), otherProduct.ID, variant.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestSeedDevIsIdempotent(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)

	require.NoError(t, SeedDev(context.Background(), repo))
	first, err := repo.Count(context.Background())
	require.NoError(t, err)
	require.Positive(t, first)

	require.NoError(t, SeedDev(context.Background(), repo))
	second, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
