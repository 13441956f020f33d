package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mercagoods/storefront-backend/api/responses"
	"github.com/mercagoods/storefront-backend/api/validators"
	"github.com/mercagoods/storefront-backend/internal/catalog"
	"github.com/mercagoods/storefront-backend/pkg/enums"
	pkgerrors "github.com/mercagoods/storefront-backend/pkg/errors"
	"github.com/mercagoods/storefront-backend/pkg/logger"
	"github.com/mercagoods/storefront-backend/pkg/pagination"
)

// ProductList serves the browsable catalog with filters and cursor pagination.
func ProductList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filter, err := listFilterFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListProducts(r.Context(), catalog.ListInput{
			Filter: filter,
			Page: pagination.Params{
				Limit:  limit,
				Cursor: r.URL.Query().Get("cursor"),
			},
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// ProductDetail serves one product with its variants preloaded.
func ProductDetail(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		id, err := uuid.Parse(chi.URLParam(r, "productID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
			return
		}

		product, err := svc.GetProduct(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

func listFilterFromQuery(r *http.Request) (catalog.ListFilter, error) {
	var filter catalog.ListFilter

	if raw := strings.TrimSpace(r.URL.Query().Get("category")); raw != "" {
		category, err := enums.ParseProductCategory(raw)
		if err != nil {
			return catalog.ListFilter{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category")
		}
		filter.Category = &category
	}

	minRaw, err := validators.ParseQueryDecimalString(r, "min_price")
	if err != nil {
		return catalog.ListFilter{}, err
	}
	if minRaw != "" {
		value, err := decimal.NewFromString(minRaw)
		if err != nil {
			return catalog.ListFilter{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid min_price")
		}
		filter.MinPrice = &value
	}

	maxRaw, err := validators.ParseQueryDecimalString(r, "max_price")
	if err != nil {
		return catalog.ListFilter{}, err
	}
	if maxRaw != "" {
		value, err := decimal.NewFromString(maxRaw)
		if err != nil {
			return catalog.ListFilter{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid max_price")
		}
		filter.MaxPrice = &value
	}

	filter.Search = strings.TrimSpace(r.URL.Query().Get("search"))
	return filter, nil
}
