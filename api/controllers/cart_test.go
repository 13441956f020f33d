package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mercagoods/storefront-backend/api/middleware"
	cartsvc "github.com/mercagoods/storefront-backend/internal/cart"
	"github.com/mercagoods/storefront-backend/internal/catalog"
	"github.com/mercagoods/storefront-backend/pkg/db/models"
	pkgerrors "github.com/mercagoods/storefront-backend/pkg/errors"
	"github.com/mercagoods/storefront-backend/pkg/types"
)

type stubCatalog struct {
	products map[uuid.UUID]*models.Product
	variants map[uuid.UUID]*models.ProductVariant
}

func (s *stubCatalog) ListProducts(ctx context.Context, input catalog.ListInput) (*catalog.ListResult, error) {
	result := &catalog.ListResult{}
	for _, p := range s.products {
		result.Products = append(result.Products, *p)
	}
	return result, nil
}

func (s *stubCatalog) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, ok := s.products[id]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return product, nil
}

func (s *stubCatalog) GetVariant(ctx context.Context, productID, variantID uuid.UUID) (*models.ProductVariant, error) {
	variant, ok := s.variants[variantID]
	if !ok || variant.ProductID != productID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product variant not found")
	}
	return variant, nil
}

func newTestManager(t *testing.T) *cartsvc.Manager {
	t.Helper()

	manager, err := cartsvc.NewManager(cartsvc.ManagerParams{
		Pricing: cartsvc.Pricing{
			TaxRate:               decimal.NewFromFloat(0.10),
			ShippingFlatFee:       decimal.NewFromFloat(10),
			FreeShippingThreshold: decimal.NewFromFloat(100),
		},
		Persistence: cartsvc.NewMemoryPersistence(),
	})
	if err != nil {
		t.Fatalf("build manager: %v", err)
	}
	return manager
}

func testProduct() *models.Product {
	return &models.Product{
		ID:    uuid.New(),
		SKU:   "SKU-HP-01",
		Name:  "Wireless Headphones",
		Price: decimal.NewFromFloat(49.99),
		Stock: 10,
	}
}

func withSession(req *http.Request, sessionID string) *http.Request {
	return req.WithContext(middleware.WithSessionID(req.Context(), sessionID))
}

func decodeCart(t *testing.T, body *bytes.Buffer) cartResponse {
	t.Helper()

	var envelope struct {
		Data cartResponse `json:"data"`
	}
	if err := json.NewDecoder(body).Decode(&envelope); err != nil {
		t.Fatalf("decode cart response: %v", err)
	}
	return envelope.Data
}

func newCartTestRouter(manager *cartsvc.Manager, catalogSvc catalog.Service) http.Handler {
	r := chi.NewRouter()
	r.Post("/cart/items", CartAddItem(manager, catalogSvc, nil))
	r.Patch("/cart/items/{itemID}", CartUpdateItem(manager, nil))
	r.Delete("/cart/items/{itemID}", CartRemoveItem(manager, nil))
	return r
}

func TestCartAddItemMergesQuantities(t *testing.T) {
	manager := newTestManager(t)
	product := testProduct()
	catalogSvc := &stubCatalog{products: map[uuid.UUID]*models.Product{product.ID: product}}
	handler := CartAddItem(manager, catalogSvc, nil)

	add := func() cartResponse {
		payload := map[string]any{"product_id": product.ID.String(), "quantity": 1}
		raw, _ := json.Marshal(payload)
		req := withSession(httptest.NewRequest(http.MethodPost, "/cart/items", bytes.NewReader(raw)), "session-a")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
		}
		return decodeCart(t, rec.Body)
	}

	add()
	cart := add()

	if len(cart.Items) != 1 {
		t.Fatalf("expected a single merged line, got %d", len(cart.Items))
	}
	if cart.Items[0].Quantity != 2 {
		t.Fatalf("expected quantity 2, got %d", cart.Items[0].Quantity)
	}
	if cart.Summary.TotalItems != 2 {
		t.Fatalf("expected total items 2, got %d", cart.Summary.TotalItems)
	}
}

func TestCartAddItemUnknownProduct(t *testing.T) {
	manager := newTestManager(t)
	handler := CartAddItem(manager, &stubCatalog{products: map[uuid.UUID]*models.Product{}}, nil)

	payload := map[string]any{"product_id": uuid.NewString(), "quantity": 1}
	raw, _ := json.Marshal(payload)
	req := withSession(httptest.NewRequest(http.MethodPost, "/cart/items", bytes.NewReader(raw)), "session-a")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
}

func TestCartAddItemRejectsZeroQuantity(t *testing.T) {
	manager := newTestManager(t)
	product := testProduct()
	handler := CartAddItem(manager, &stubCatalog{products: map[uuid.UUID]*models.Product{product.ID: product}}, nil)

	payload := map[string]any{"product_id": product.ID.String(), "quantity": 0}
	raw, _ := json.Marshal(payload)
	req := withSession(httptest.NewRequest(http.MethodPost, "/cart/items", bytes.NewReader(raw)), "session-a")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestCartUpdateItemRemovesOnZero(t *testing.T) {
	manager := newTestManager(t)
	product := testProduct()
	catalogSvc := &stubCatalog{products: map[uuid.UUID]*models.Product{product.ID: product}}

	addPayload, _ := json.Marshal(map[string]any{"product_id": product.ID.String(), "quantity": 2})
	addReq := withSession(httptest.NewRequest(http.MethodPost, "/cart/items", bytes.NewReader(addPayload)), "session-a")
	addRec := httptest.NewRecorder()
	CartAddItem(manager, catalogSvc, nil).ServeHTTP(addRec, addReq)
	added := decodeCart(t, addRec.Body)

	router := newCartTestRouter(manager, catalogSvc)
	updPayload, _ := json.Marshal(map[string]any{"quantity": 0})
	updReq := withSession(httptest.NewRequest(http.MethodPatch, "/cart/items/"+added.Items[0].ID, bytes.NewReader(updPayload)), "session-a")
	updRec := httptest.NewRecorder()
	router.ServeHTTP(updRec, updReq)

	if updRec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", updRec.Code)
	}
	cart := decodeCart(t, updRec.Body)
	if len(cart.Items) != 0 {
		t.Fatalf("expected empty cart, got %d items", len(cart.Items))
	}
}

func TestCartClearRetainsCheckoutFields(t *testing.T) {
	manager := newTestManager(t)
	product := testProduct()
	catalogSvc := &stubCatalog{products: map[uuid.UUID]*models.Product{product.ID: product}}

	addPayload, _ := json.Marshal(map[string]any{"product_id": product.ID.String(), "quantity": 1})
	addReq := withSession(httptest.NewRequest(http.MethodPost, "/cart/items", bytes.NewReader(addPayload)), "session-a")
	CartAddItem(manager, catalogSvc, nil).ServeHTTP(httptest.NewRecorder(), addReq)

	methodPayload, _ := json.Marshal(map[string]any{"method": "card"})
	methodReq := withSession(httptest.NewRequest(http.MethodPut, "/cart/payment-method", bytes.NewReader(methodPayload)), "session-a")
	CartSetPaymentMethod(manager, nil).ServeHTTP(httptest.NewRecorder(), methodReq)

	clearReq := withSession(httptest.NewRequest(http.MethodDelete, "/cart", nil), "session-a")
	clearRec := httptest.NewRecorder()
	CartClear(manager, nil).ServeHTTP(clearRec, clearReq)

	cart := decodeCart(t, clearRec.Body)
	if len(cart.Items) != 0 {
		t.Fatalf("expected cleared items, got %d", len(cart.Items))
	}
	if cart.PaymentMethod == nil {
		t.Fatal("expected payment method to survive the clear")
	}
	if !cart.Summary.Total.IsZero() {
		t.Fatalf("expected zero total, got %s", cart.Summary.Total)
	}
}

func TestCartSetAddressesRequiresPayload(t *testing.T) {
	manager := newTestManager(t)
	handler := CartSetAddresses(manager, nil)

	req := withSession(httptest.NewRequest(http.MethodPut, "/cart/addresses", bytes.NewReader([]byte(`{}`))), "session-a")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestCartSetAddressesStoresShipping(t *testing.T) {
	manager := newTestManager(t)
	handler := CartSetAddresses(manager, nil)

	payload, _ := json.Marshal(map[string]any{"shipping": types.Address{
		FullName:   "Ada Shopper",
		Line1:      "1 Market St",
		City:       "Springfield",
		PostalCode: "12345",
		Country:    "US",
	}})
	req := withSession(httptest.NewRequest(http.MethodPut, "/cart/addresses", bytes.NewReader(payload)), "session-a")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	cart := decodeCart(t, rec.Body)
	if cart.ShippingAddress == nil || cart.ShippingAddress.City != "Springfield" {
		t.Fatalf("expected shipping address to be stored, got %+v", cart.ShippingAddress)
	}
}

func TestCartSessionsAreIsolated(t *testing.T) {
	manager := newTestManager(t)
	product := testProduct()
	catalogSvc := &stubCatalog{products: map[uuid.UUID]*models.Product{product.ID: product}}

	addPayload, _ := json.Marshal(map[string]any{"product_id": product.ID.String(), "quantity": 1})
	addReq := withSession(httptest.NewRequest(http.MethodPost, "/cart/items", bytes.NewReader(addPayload)), "session-a")
	CartAddItem(manager, catalogSvc, nil).ServeHTTP(httptest.NewRecorder(), addReq)

	fetchReq := withSession(httptest.NewRequest(http.MethodGet, "/cart", nil), "session-b")
	fetchRec := httptest.NewRecorder()
	CartFetch(manager, nil).ServeHTTP(fetchRec, fetchReq)

	cart := decodeCart(t, fetchRec.Body)
	if len(cart.Items) != 0 {
		t.Fatalf("expected session-b cart to be empty, got %d items", len(cart.Items))
	}
}
