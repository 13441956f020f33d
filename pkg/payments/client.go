package payments

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mercagoods/storefront-backend/pkg/enums"
	"github.com/mercagoods/storefront-backend/pkg/logger"
)

// Charge describes a single payment capture request.
type Charge struct {
	Amount   decimal.Decimal
	Currency enums.Currency
	Method   enums.PaymentMethod
}

// Client is the payment gateway surface used during checkout.
type Client interface {
	Capture(ctx context.Context, charge Charge) (string, error)
}

// StubClient approves every charge and mints a synthetic payment reference.
// It stands in for a real gateway in development and test environments.
type StubClient struct {
	logg *logger.Logger
}

// NewStubClient builds the stub gateway.
func NewStubClient(logg *logger.Logger) *StubClient {
	return &StubClient{logg: logg}
}

func (c *StubClient) Capture(ctx context.Context, charge Charge) (string, error) {
	if charge.Amount.IsNegative() {
		return "", fmt.Errorf("charge amount cannot be negative")
	}
	ref := "pay_" + uuid.NewString()
	if c.logg != nil {
		ctx = c.logg.WithFields(ctx, map[string]any{
			"amount":   charge.Amount.StringFixed(2),
			"currency": charge.Currency.String(),
			"method":   charge.Method.String(),
			"ref":      ref,
		})
		c.logg.Info(ctx, "stub payment captured")
	}
	return ref, nil
}
