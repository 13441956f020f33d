package checkout

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"github.com/mercagoods/storefront-backend/internal/cart"
	"github.com/mercagoods/storefront-backend/internal/orders"
	"github.com/mercagoods/storefront-backend/pkg/db/models"
	"github.com/mercagoods/storefront-backend/pkg/enums"
	pkgerrors "github.com/mercagoods/storefront-backend/pkg/errors"
	"github.com/mercagoods/storefront-backend/pkg/logger"
	"github.com/mercagoods/storefront-backend/pkg/payments"
	"github.com/mercagoods/storefront-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service turns a session cart into a persisted order.
type Service interface {
	Execute(ctx context.Context, identity orders.Identity, store *cart.Store) (*models.Order, error)
}

type service struct {
	tx       txRunner
	orders   orders.Repository
	payments payments.Client
	validate *validator.Validate
	currency enums.Currency
	logg     *logger.Logger
}

// NewService builds the checkout service.
func NewService(
	tx txRunner,
	ordersRepo orders.Repository,
	paymentClient payments.Client,
	currency enums.Currency,
	logg *logger.Logger,
) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if paymentClient == nil {
		return nil, fmt.Errorf("payment client required")
	}
	if !currency.IsValid() {
		currency = enums.CurrencyUSD
	}
	return &service{
		tx:       tx,
		orders:   ordersRepo,
		payments: paymentClient,
		validate: validator.New(),
		currency: currency,
		logg:     logg,
	}, nil
}

func (s *service) Execute(ctx context.Context, identity orders.Identity, store *cart.Store) (*models.Order, error) {
	if store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is required")
	}

	snapshot := store.Snapshot()
	if len(snapshot.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	shipping, billing, err := s.resolveAddresses(snapshot)
	if err != nil {
		return nil, err
	}
	if snapshot.PaymentMethod == nil || !snapshot.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment method is required")
	}
	method := *snapshot.PaymentMethod

	paymentRef, err := s.payments.Capture(ctx, payments.Charge{
		Amount:   snapshot.Summary.Total,
		Currency: s.currency,
		Method:   method,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "payment capture failed")
	}

	order := s.buildOrder(identity, snapshot, shipping, billing, method, paymentRef)
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.orders.WithTx(tx).Create(ctx, order)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to persist order")
	}

	// Checkout owns the cart reset. Addresses and payment method survive the
	// clear so a repeat purchase starts pre-filled.
	store.Clear(ctx)

	if s.logg != nil {
		ctx = s.logg.WithFields(ctx, map[string]any{
			"order_id": order.ID.String(),
			"total":    order.Total.StringFixed(2),
		})
		s.logg.Info(ctx, "order placed")
	}
	return order, nil
}

func (s *service) resolveAddresses(snapshot cart.State) (types.Address, types.Address, error) {
	if snapshot.ShippingAddress == nil || snapshot.ShippingAddress.IsZero() {
		return types.Address{}, types.Address{}, pkgerrors.New(pkgerrors.CodeValidation, "shipping address is required")
	}
	shipping := *snapshot.ShippingAddress
	if err := s.validate.Struct(shipping); err != nil {
		return types.Address{}, types.Address{}, pkgerrors.
			New(pkgerrors.CodeValidation, "shipping address is incomplete").
			WithDetails(validationDetails(err))
	}

	billing := shipping
	if snapshot.BillingAddress != nil && !snapshot.BillingAddress.IsZero() {
		billing = *snapshot.BillingAddress
		if err := s.validate.Struct(billing); err != nil {
			return types.Address{}, types.Address{}, pkgerrors.
				New(pkgerrors.CodeValidation, "billing address is incomplete").
				WithDetails(validationDetails(err))
		}
	}
	return shipping, billing, nil
}

func (s *service) buildOrder(
	identity orders.Identity,
	snapshot cart.State,
	shipping, billing types.Address,
	method enums.PaymentMethod,
	paymentRef string,
) *models.Order {
	now := time.Now().UTC()
	order := &models.Order{
		SessionID:       identity.SessionID,
		UserID:          identity.UserID,
		Status:          enums.OrderStatusPaid,
		Currency:        s.currency,
		ShippingAddress: shipping,
		BillingAddress:  billing,
		PaymentMethod:   method,
		PaymentRef:      paymentRef,
		CouponCode:      snapshot.CouponCode,
		Subtotal:        snapshot.Summary.Subtotal,
		Discount:        snapshot.Summary.Discount,
		Tax:             snapshot.Summary.Tax,
		Shipping:        snapshot.Summary.Shipping,
		Total:           snapshot.Summary.Total,
		PlacedAt:        now,
	}
	for _, item := range snapshot.Items {
		order.Items = append(order.Items, models.OrderLineItem{
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Name:      item.Name,
			SKU:       item.SKU,
			Image:     item.Image,
			UnitPrice: item.Price,
			Quantity:  item.Quantity,
			LineTotal: item.LineTotal(),
		})
	}
	return order
}

func validationDetails(err error) []string {
	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) {
		return []string{err.Error()}
	}
	details := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		details = append(details, fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag()))
	}
	return details
}
