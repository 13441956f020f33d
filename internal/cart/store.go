package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mercagoods/storefront-backend/pkg/enums"
	pkgerrors "github.com/mercagoods/storefront-backend/pkg/errors"
	"github.com/mercagoods/storefront-backend/pkg/logger"
	"github.com/mercagoods/storefront-backend/pkg/metrics"
	"github.com/mercagoods/storefront-backend/pkg/types"
)

// Store owns one cart. Every mutation recomputes the summary from the item
// list, bumps last_updated, and writes through the persistence port. A
// persistence failure is logged and swallowed: the in-memory state stays
// authoritative and the caller sees success.
type Store struct {
	mu      sync.Mutex
	key     string
	state   State
	pricing Pricing
	policy  QuantityPolicy
	persist Persistence
	logg    *logger.Logger
	metrics *metrics.CartMetrics
	now     func() time.Time
}

// StoreParams wires a Store's collaborators.
type StoreParams struct {
	Key         string
	Pricing     Pricing
	Policy      QuantityPolicy
	Persistence Persistence
	Logger      *logger.Logger
	Metrics     *metrics.CartMetrics
	Now         func() time.Time
}

// NewStore restores the cart stored under params.Key, falling back to an
// empty cart when nothing is stored or the payload does not decode.
func NewStore(ctx context.Context, params StoreParams) (*Store, error) {
	if params.Key == "" {
		return nil, fmt.Errorf("cart key is required")
	}
	if params.Persistence == nil {
		return nil, fmt.Errorf("cart persistence is required")
	}
	if params.Policy == "" {
		params.Policy = ClampToStock
	}
	if !params.Policy.IsValid() {
		return nil, fmt.Errorf("invalid quantity policy %q", params.Policy)
	}
	if params.Now == nil {
		params.Now = time.Now
	}

	s := &Store{
		key:     params.Key,
		pricing: params.Pricing,
		policy:  params.Policy,
		persist: params.Persistence,
		logg:    params.Logger,
		metrics: params.Metrics,
		now:     params.Now,
	}

	state, err := params.Persistence.Load(ctx, params.Key)
	switch {
	case err == nil:
		s.state = state.clone()
		// restored summaries are never trusted; recompute from the items
		s.state.Summary = ComputeSummary(s.state.Items, s.pricing)
	case errors.Is(err, ErrStateNotFound):
		s.state = EmptyState()
	default:
		if s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "cart_key", params.Key), "discarding unreadable cart state")
		}
		s.state = EmptyState()
	}

	return s, nil
}

// Policy exposes the active quantity policy so callers can assert on it.
func (s *Store) Policy() QuantityPolicy {
	return s.policy
}

// AddItem merges the snapshot into the cart: an existing line for the same
// product+variant has its quantity incremented, otherwise a new line is
// appended. Stock is not enforced here.
func (s *Store) AddItem(ctx context.Context, snap ItemSnapshot, quantity int) (LineItem, error) {
	if quantity < 1 {
		return LineItem{}, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	if snap.ProductID == uuid.Nil {
		return LineItem{}, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	id := snap.Key()

	if idx := s.indexOf(id); idx >= 0 {
		s.state.Items[idx].Quantity += quantity
		s.state.Items[idx].UpdatedAt = now
		s.commit(ctx, "add")
		return s.state.Items[idx], nil
	}

	item := LineItem{
		ID:            id,
		ProductID:     snap.ProductID,
		VariantID:     snap.VariantID,
		Name:          snap.Name,
		SKU:           snap.SKU,
		Price:         snap.Price,
		OriginalPrice: snap.OriginalPrice,
		Image:         snap.Image,
		Stock:         snap.Stock,
		WeightGrams:   snap.WeightGrams,
		IsAvailable:   snap.Stock > 0,
		Quantity:      quantity,
		AddedAt:       now,
		UpdatedAt:     now,
	}
	s.state.Items = append(s.state.Items, item)
	s.commit(ctx, "add")
	return item, nil
}

// UpdateQuantity sets the quantity for a line item. A quantity of zero or
// less removes the line. Under ClampToStock the request is silently capped at
// the snapshot stock; under RejectExceedsStock it fails instead. An unknown
// item id is a strict no-op: no recompute, no persistence write.
func (s *Store) UpdateQuantity(ctx context.Context, itemID string, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(itemID)
	if idx < 0 {
		return nil
	}

	if quantity <= 0 {
		s.removeAt(idx)
		s.commit(ctx, "update")
		return nil
	}

	item := &s.state.Items[idx]
	if quantity > item.Stock {
		switch s.policy {
		case RejectExceedsStock:
			return pkgerrors.New(pkgerrors.CodeValidation, "quantity exceeds available stock").
				WithDetails(map[string]any{"item_id": itemID, "stock": item.Stock})
		default:
			quantity = item.Stock
		}
	}

	// clamping against zero stock leaves nothing to keep
	if quantity <= 0 {
		s.removeAt(idx)
		s.commit(ctx, "update")
		return nil
	}

	item.Quantity = quantity
	item.UpdatedAt = s.now()
	s.commit(ctx, "update")
	return nil
}

// RemoveItem deletes the line item if present; unknown ids are a no-op.
func (s *Store) RemoveItem(ctx context.Context, itemID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(itemID)
	if idx < 0 {
		return
	}
	s.removeAt(idx)
	s.commit(ctx, "remove")
}

// Clear empties the item list and zeroes the summary. Addresses, payment
// method, and coupon are intentionally retained across a clear.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Items = []LineItem{}
	s.commit(ctx, "clear")
}

// SetShippingAddress stores the shipping address without cross-validation.
func (s *Store) SetShippingAddress(ctx context.Context, addr types.Address) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.ShippingAddress = &addr
	s.commit(ctx, "set_shipping_address")
}

// SetBillingAddress stores the billing address without cross-validation.
func (s *Store) SetBillingAddress(ctx context.Context, addr types.Address) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.BillingAddress = &addr
	s.commit(ctx, "set_billing_address")
}

// SetPaymentMethod stores the chosen payment method.
func (s *Store) SetPaymentMethod(ctx context.Context, method enums.PaymentMethod) error {
	if !method.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.PaymentMethod = &method
	s.commit(ctx, "set_payment_method")
	return nil
}

// SetCoupon records a coupon code. Discount math is reserved: the summary's
// discount stays zero regardless of the code.
func (s *Store) SetCoupon(ctx context.Context, code string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if code == "" {
		s.state.CouponCode = nil
	} else {
		s.state.CouponCode = &code
	}
	s.commit(ctx, "set_coupon")
}

// Items returns a copy of the line items in insertion order.
func (s *Store) Items() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]LineItem, len(s.state.Items))
	copy(items, s.state.Items)
	return items
}

// Item looks up a single line item by id.
func (s *Store) Item(itemID string) (LineItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if idx := s.indexOf(itemID); idx >= 0 {
		return s.state.Items[idx], true
	}
	return LineItem{}, false
}

// Contains reports whether a product+variant pair is already in the cart.
func (s *Store) Contains(productID uuid.UUID, variantID *uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.indexOf(LineItemID(productID, variantID)) >= 0
}

// TotalItems is the sum of quantities across all lines.
func (s *Store) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state.Summary.TotalItems
}

// ItemCount is the number of distinct lines.
func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state.Summary.ItemCount
}

// Summary returns the current derived summary.
func (s *Store) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state.Summary
}

// Snapshot returns a deep copy of the full cart state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state.clone()
}

// Save force-writes the current state, surfacing the error. Used at shutdown;
// regular mutations swallow persistence failures instead.
func (s *Store) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.persist.Save(ctx, s.key, &s.state)
}

// commit recomputes the summary, bumps last_updated, and writes through.
// Callers must hold s.mu.
func (s *Store) commit(ctx context.Context, operation string) {
	s.state.Summary = ComputeSummary(s.state.Items, s.pricing)
	s.state.LastUpdated = s.now()
	s.metrics.IncOperation(operation)

	if err := s.persist.Save(ctx, s.key, &s.state); err != nil {
		s.metrics.IncSaveFailure()
		if s.logg != nil {
			ctx = s.logg.WithFields(ctx, map[string]any{"cart_key": s.key, "operation": operation})
			s.logg.Error(ctx, "cart state not persisted", err)
		}
	}
}

func (s *Store) indexOf(itemID string) int {
	for i := range s.state.Items {
		if s.state.Items[i].ID == itemID {
			return i
		}
	}
	return -1
}

func (s *Store) removeAt(idx int) {
	s.state.Items = append(s.state.Items[:idx], s.state.Items[idx+1:]...)
}
