package cart

import (
	"time"

	"github.com/mercagoods/storefront-backend/pkg/enums"
	"github.com/mercagoods/storefront-backend/pkg/types"
)

// State is the full serialized form of a cart: the item list, its derived
// summary, and the checkout fields set independently of the items.
type State struct {
	Items           []LineItem           `json:"items"`
	Summary         Summary              `json:"summary"`
	ShippingAddress *types.Address       `json:"shipping_address,omitempty"`
	BillingAddress  *types.Address       `json:"billing_address,omitempty"`
	PaymentMethod   *enums.PaymentMethod `json:"payment_method,omitempty"`
	CouponCode      *string              `json:"coupon_code,omitempty"`
	LastUpdated     time.Time            `json:"last_updated"`
}

// EmptyState returns a fresh cart with a zeroed summary.
func EmptyState() State {
	return State{
		Items:   []LineItem{},
		Summary: ZeroSummary(),
	}
}

// clone returns a deep copy so callers can hold a snapshot without racing
// the store's mutations.
func (s State) clone() State {
	out := s
	out.Items = make([]LineItem, len(s.Items))
	copy(out.Items, s.Items)
	if s.ShippingAddress != nil {
		addr := *s.ShippingAddress
		out.ShippingAddress = &addr
	}
	if s.BillingAddress != nil {
		addr := *s.BillingAddress
		out.BillingAddress = &addr
	}
	if s.PaymentMethod != nil {
		method := *s.PaymentMethod
		out.PaymentMethod = &method
	}
	if s.CouponCode != nil {
		code := *s.CouponCode
		out.CouponCode = &code
	}
	return out
}
