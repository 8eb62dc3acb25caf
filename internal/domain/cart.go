package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartLineItem is a product in the cart. Prices are snapshots taken when the
// item was added and are never re-read from the catalog.
type CartLineItem struct {
	ProductID  string           `json:"product_id"`
	VendorID   string           `json:"vendor_id"`
	Name       string           `json:"name"`
	UnitPrice  decimal.Decimal  `json:"unit_price"`
	OfferPrice *decimal.Decimal `json:"offer_price,omitempty"`
	Quantity   int              `json:"quantity"`
	AddedAt    time.Time        `json:"added_at"`
}

// EffectivePrice is the price the customer sees: offer price when present, list price otherwise.
func (i CartLineItem) EffectivePrice() decimal.Decimal {
	if i.OfferPrice != nil {
		return *i.OfferPrice
	}
	return i.UnitPrice
}

func (i CartLineItem) Subtotal() decimal.Decimal {
	return i.EffectivePrice().Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart is one session's cart. Version counts committed writes and is the
// token for conditional updates in the repository.
type Cart struct {
	UserID    string         `json:"user_id"`
	Items     []CartLineItem `json:"items"`
	Version   int64          `json:"version"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// VendorID returns the vendor shared by all line items, or "" for an empty cart.
func (c *Cart) VendorID() string {
	if len(c.Items) == 0 {
		return ""
	}
	return c.Items[0].VendorID
}

// Find returns the index of the line item for productID, or -1.
func (c *Cart) Find(productID string) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func (c *Cart) TotalItemCount() int {
	total := 0
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}

func (c *Cart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// Clone returns a deep copy; callers outside the cart store only ever see clones.
func (c *Cart) Clone() *Cart {
	if c == nil {
		return nil
	}
	out := *c
	out.Items = make([]CartLineItem, len(c.Items))
	for i, item := range c.Items {
		if item.OfferPrice != nil {
			offer := *item.OfferPrice
			item.OfferPrice = &offer
		}
		out.Items[i] = item
	}
	return &out
}

// Product is the catalog view used to snapshot prices into the cart.
type Product struct {
	ID         string           `json:"id"`
	VendorID   string           `json:"vendor_id"`
	Name       string           `json:"name"`
	Price      decimal.Decimal  `json:"price"`
	OfferPrice *decimal.Decimal `json:"offer_price,omitempty"`
}
