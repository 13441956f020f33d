package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mercagoods/storefront-backend/internal/catalog"
	"github.com/mercagoods/storefront-backend/pkg/db/models"
	"github.com/mercagoods/storefront-backend/pkg/enums"
	"github.com/mercagoods/storefront-backend/pkg/pagination"
)

type recordingCatalog struct {
	stubCatalog
	lastInput catalog.ListInput
}

func (s *recordingCatalog) ListProducts(ctx context.Context, input catalog.ListInput) (*catalog.ListResult, error) {
	s.lastInput = input
	return s.stubCatalog.ListProducts(ctx, input)
}

func decimalFromString(t *testing.T, value string) decimal.Decimal {
	t.Helper()

	parsed, err := decimal.NewFromString(value)
	if err != nil {
		t.Fatalf("parse decimal %q: %v", value, err)
	}
	return parsed
}

func TestProductListPassesFilterAndLimit(t *testing.T) {
	product := testProduct()
	svc := &recordingCatalog{stubCatalog: stubCatalog{
		products: map[uuid.UUID]*models.Product{product.ID: product},
	}}
	handler := ProductList(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/products?limit=5&category=electronics&min_price=10&max_price=99.99&search=head", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.lastInput.Page.Limit != 5 {
		t.Fatalf("expected limit 5, got %d", svc.lastInput.Page.Limit)
	}
	if svc.lastInput.Filter.Category == nil || *svc.lastInput.Filter.Category != enums.ProductCategoryElectronics {
		t.Fatalf("expected electronics filter, got %+v", svc.lastInput.Filter.Category)
	}
	if svc.lastInput.Filter.MinPrice == nil || !svc.lastInput.Filter.MinPrice.Equal(decimalFromString(t, "10")) {
		t.Fatalf("unexpected min price %+v", svc.lastInput.Filter.MinPrice)
	}
	if svc.lastInput.Filter.MaxPrice == nil || !svc.lastInput.Filter.MaxPrice.Equal(decimalFromString(t, "99.99")) {
		t.Fatalf("unexpected max price %+v", svc.lastInput.Filter.MaxPrice)
	}
	if svc.lastInput.Filter.Search != "head" {
		t.Fatalf("unexpected search %q", svc.lastInput.Filter.Search)
	}
}

func TestProductListDefaultsLimit(t *testing.T) {
	svc := &recordingCatalog{}
	handler := ProductList(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if svc.lastInput.Page.Limit != pagination.DefaultLimit {
		t.Fatalf("expected default limit, got %d", svc.lastInput.Page.Limit)
	}
}

func TestProductListRejectsUnknownCategory(t *testing.T) {
	handler := ProductList(&stubCatalog{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/products?category=vehicles", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestProductListRejectsBadPrice(t *testing.T) {
	handler := ProductList(&stubCatalog{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/products?min_price=free", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestProductDetailRejectsBadID(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/products/{productID}", ProductDetail(&stubCatalog{}, nil))

	req := httptest.NewRequest(http.MethodGet, "/products/not-a-uuid", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestProductDetailMapsNotFound(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/products/{productID}", ProductDetail(&stubCatalog{}, nil))

	req := httptest.NewRequest(http.MethodGet, "/products/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
}
