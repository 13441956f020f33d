package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mercagoods/storefront-backend/api/middleware"
	"github.com/mercagoods/storefront-backend/api/responses"
	"github.com/mercagoods/storefront-backend/api/validators"
	cartsvc "github.com/mercagoods/storefront-backend/internal/cart"
	"github.com/mercagoods/storefront-backend/internal/catalog"
	"github.com/mercagoods/storefront-backend/pkg/db/models"
	"github.com/mercagoods/storefront-backend/pkg/enums"
	pkgerrors "github.com/mercagoods/storefront-backend/pkg/errors"
	"github.com/mercagoods/storefront-backend/pkg/logger"
	"github.com/mercagoods/storefront-backend/pkg/types"
)

type addItemRequest struct {
	ProductID string  `json:"product_id" validate:"required,uuid"`
	VariantID *string `json:"variant_id,omitempty" validate:"omitempty,uuid"`
	Quantity  int     `json:"quantity" validate:"required,min=1"`
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type addressesRequest struct {
	Shipping *types.Address `json:"shipping,omitempty"`
	Billing  *types.Address `json:"billing,omitempty"`
}

type paymentMethodRequest struct {
	Method string `json:"method" validate:"required"`
}

type couponRequest struct {
	Code string `json:"code"`
}

// cartResponse is the full cart surface the storefront renders from.
type cartResponse struct {
	Items           []cartsvc.LineItem   `json:"items"`
	Summary         cartsvc.Summary      `json:"summary"`
	ShippingAddress *types.Address       `json:"shipping_address,omitempty"`
	BillingAddress  *types.Address       `json:"billing_address,omitempty"`
	PaymentMethod   *enums.PaymentMethod `json:"payment_method,omitempty"`
	CouponCode      *string              `json:"coupon_code,omitempty"`
}

func newCartResponse(state cartsvc.State) cartResponse {
	return cartResponse{
		Items:           state.Items,
		Summary:         state.Summary,
		ShippingAddress: state.ShippingAddress,
		BillingAddress:  state.BillingAddress,
		PaymentMethod:   state.PaymentMethod,
		CouponCode:      state.CouponCode,
	}
}

func sessionStore(r *http.Request, manager *cartsvc.Manager) (*cartsvc.Store, error) {
	sessionID := middleware.SessionIDFromContext(r.Context())
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "session context missing")
	}
	store, err := manager.StoreFor(r.Context(), sessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to open cart")
	}
	return store, nil
}

// CartFetch returns the session's cart items and summary.
func CartFetch(manager *cartsvc.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := sessionStore(r, manager)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(store.Snapshot()))
	}
}

// CartAddItem snapshots the product (and optional variant) from the catalog
// and merges it into the cart.
func CartAddItem(manager *cartsvc.Manager, catalogSvc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := sessionStore(r, manager)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload addItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := uuid.Parse(payload.ProductID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
			return
		}

		product, err := catalogSvc.GetProduct(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var variant *models.ProductVariant
		if payload.VariantID != nil && strings.TrimSpace(*payload.VariantID) != "" {
			variantID, err := uuid.Parse(*payload.VariantID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid variant id"))
				return
			}
			v, err := catalogSvc.GetVariant(r.Context(), productID, variantID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			variant = v
		}

		snapshot := cartsvc.SnapshotFromCatalog(product, variant)
		if _, err := store.AddItem(r.Context(), snapshot, payload.Quantity); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newCartResponse(store.Snapshot()))
	}
}

// CartUpdateItem sets a line item's quantity; zero or less removes the line.
func CartUpdateItem(manager *cartsvc.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := sessionStore(r, manager)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		itemID := chi.URLParam(r, "itemID")
		if err := store.UpdateQuantity(r.Context(), itemID, payload.Quantity); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartResponse(store.Snapshot()))
	}
}

// CartRemoveItem drops a line item; unknown ids are a no-op.
func CartRemoveItem(manager *cartsvc.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := sessionStore(r, manager)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store.RemoveItem(r.Context(), chi.URLParam(r, "itemID"))
		responses.WriteSuccess(w, newCartResponse(store.Snapshot()))
	}
}

// CartClear empties the item list while retaining checkout fields.
func CartClear(manager *cartsvc.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := sessionStore(r, manager)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store.Clear(r.Context())
		responses.WriteSuccess(w, newCartResponse(store.Snapshot()))
	}
}

// CartSetAddresses stores shipping and/or billing addresses on the cart.
func CartSetAddresses(manager *cartsvc.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := sessionStore(r, manager)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload addressesRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if payload.Shipping == nil && payload.Billing == nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "at least one address is required"))
			return
		}

		if payload.Shipping != nil {
			store.SetShippingAddress(r.Context(), *payload.Shipping)
		}
		if payload.Billing != nil {
			store.SetBillingAddress(r.Context(), *payload.Billing)
		}

		responses.WriteSuccess(w, newCartResponse(store.Snapshot()))
	}
}

// CartSetPaymentMethod stores the chosen payment method on the cart.
func CartSetPaymentMethod(manager *cartsvc.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := sessionStore(r, manager)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload paymentMethodRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		method, err := enums.ParsePaymentMethod(strings.TrimSpace(payload.Method))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method"))
			return
		}
		if err := store.SetPaymentMethod(r.Context(), method); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartResponse(store.Snapshot()))
	}
}

// CartSetCoupon records a coupon code on the cart. An empty code clears it.
func CartSetCoupon(manager *cartsvc.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := sessionStore(r, manager)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload couponRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store.SetCoupon(r.Context(), strings.TrimSpace(payload.Code))
		responses.WriteSuccess(w, newCartResponse(store.Snapshot()))
	}
}
