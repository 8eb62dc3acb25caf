// Package ordertype decides which order types a vendor accepts and which one
// checkout should preselect.
package ordertype

import "github.com/fjod/go_grocery/internal/domain"

type Resolution struct {
	OrderType domain.OrderType   `json:"order_type"`
	Allowed   []domain.OrderType `json:"allowed"`
	// Degenerate is set when the vendor supports neither type; OrderType then
	// falls back to takeaway.
	Degenerate bool `json:"degenerate,omitempty"`
}

// Resolve keeps previous when the vendor allows it, otherwise prefers delivery,
// then takeaway. A nil vendor (not loaded yet) leaves previous unchanged.
func Resolve(vendor *domain.Vendor, previous domain.OrderType) Resolution {
	if vendor == nil {
		return Resolution{OrderType: previous, Allowed: Allowed(nil)}
	}

	res := Resolution{Allowed: Allowed(vendor)}
	switch {
	case previous != "" && vendor.Supports(previous):
		res.OrderType = previous
	case vendor.ServiceTypes.Delivery:
		res.OrderType = domain.OrderTypeDelivery
	case vendor.ServiceTypes.Takeaway:
		res.OrderType = domain.OrderTypeTakeaway
	default:
		res.OrderType = domain.OrderTypeTakeaway
		res.Degenerate = true
	}
	return res
}

// IsAvailable is optimistic: without vendor data every type is available.
func IsAvailable(vendor *domain.Vendor, t domain.OrderType) bool {
	if vendor == nil {
		return true
	}
	return vendor.Supports(t)
}

func Allowed(vendor *domain.Vendor) []domain.OrderType {
	allowed := make([]domain.OrderType, 0, 2)
	for _, t := range []domain.OrderType{domain.OrderTypeDelivery, domain.OrderTypeTakeaway} {
		if IsAvailable(vendor, t) {
			allowed = append(allowed, t)
		}
	}
	return allowed
}
