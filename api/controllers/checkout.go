package controllers

import (
	"net/http"

	"github.com/mercagoods/storefront-backend/api/middleware"
	"github.com/mercagoods/storefront-backend/api/responses"
	cartsvc "github.com/mercagoods/storefront-backend/internal/cart"
	checkoutsvc "github.com/mercagoods/storefront-backend/internal/checkout"
	"github.com/mercagoods/storefront-backend/internal/orders"
	pkgerrors "github.com/mercagoods/storefront-backend/pkg/errors"
	"github.com/mercagoods/storefront-backend/pkg/logger"
)

// Checkout places an order from the session cart.
func Checkout(svc checkoutsvc.Service, manager *cartsvc.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		store, err := sessionStore(r, manager)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		identity := orders.Identity{
			SessionID: middleware.SessionIDFromContext(r.Context()),
			UserID:    middleware.UserIDFromContext(r.Context()),
		}

		order, err := svc.Execute(r.Context(), identity, store)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}
