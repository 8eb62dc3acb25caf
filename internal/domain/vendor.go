package domain

type ServiceTypes struct {
	Delivery bool `json:"delivery"`
	Takeaway bool `json:"takeaway"`
}

type Vendor struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	ServiceTypes ServiceTypes `json:"serviceTypes"`
}

// Supports reports whether the vendor offers the order type.
func (v *Vendor) Supports(t OrderType) bool {
	switch t {
	case OrderTypeDelivery:
		return v.ServiceTypes.Delivery
	case OrderTypeTakeaway:
		return v.ServiceTypes.Takeaway
	default:
		return false
	}
}
