package cart

import "fmt"

// QuantityPolicy names how a quantity update that exceeds the snapshot stock
// is handled.
type QuantityPolicy string

const (
	// ClampToStock silently caps the requested quantity at the item's stock.
	ClampToStock QuantityPolicy = "clamp_to_stock"
	// RejectExceedsStock fails the update with a validation error instead.
	RejectExceedsStock QuantityPolicy = "reject_exceeds_stock"
)

// IsValid reports whether the value is a known QuantityPolicy.
func (p QuantityPolicy) IsValid() bool {
	return p == ClampToStock || p == RejectExceedsStock
}

// ParseQuantityPolicy converts raw input into a QuantityPolicy.
func ParseQuantityPolicy(value string) (QuantityPolicy, error) {
	policy := QuantityPolicy(value)
	if !policy.IsValid() {
		return "", fmt.Errorf("invalid quantity policy %q", value)
	}
	return policy, nil
}
