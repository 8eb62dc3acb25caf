package cart

import (
	"fmt"
	"time"

	"github.com/fjod/go_grocery/internal/domain"
)

// MaxLineQuantity caps a single line item.
const MaxLineQuantity = 99

// MixedVendorPolicy decides what AddItem does when the product belongs to a
// different vendor than the items already in the cart.
type MixedVendorPolicy string

const (
	MixedVendorReject  MixedVendorPolicy = "reject"
	MixedVendorReplace MixedVendorPolicy = "replace"
)

func ParseMixedVendorPolicy(s string) (MixedVendorPolicy, error) {
	switch MixedVendorPolicy(s) {
	case MixedVendorReject, "":
		return MixedVendorReject, nil
	case MixedVendorReplace:
		return MixedVendorReplace, nil
	default:
		return "", fmt.Errorf("unknown mixed vendor policy %q", s)
	}
}

func addItem(c *domain.Cart, p domain.Product, quantity int, policy MixedVendorPolicy, now time.Time) error {
	if quantity <= 0 || quantity > MaxLineQuantity {
		return ErrInvalidQuantity
	}
	if p.ID == "" || p.VendorID == "" || p.Price.IsNegative() {
		return ErrInvalidProduct
	}

	if !c.IsEmpty() && c.VendorID() != p.VendorID {
		if policy != MixedVendorReplace {
			return fmt.Errorf("%w: cart vendor %s, product vendor %s", ErrMixedVendorCart, c.VendorID(), p.VendorID)
		}
		c.Items = nil
	}

	if i := c.Find(p.ID); i >= 0 {
		// keep the snapshot taken when the line was created
		if c.Items[i].Quantity+quantity > MaxLineQuantity {
			return ErrInvalidQuantity
		}
		c.Items[i].Quantity += quantity
		return nil
	}

	item := domain.CartLineItem{
		ProductID: p.ID,
		VendorID:  p.VendorID,
		Name:      p.Name,
		UnitPrice: p.Price,
		Quantity:  quantity,
		AddedAt:   now,
	}
	if p.OfferPrice != nil {
		offer := *p.OfferPrice
		item.OfferPrice = &offer
	}
	c.Items = append(c.Items, item)
	return nil
}

// updateQuantity removes the line when quantity <= 0.
func updateQuantity(c *domain.Cart, productID string, quantity int) error {
	i := c.Find(productID)
	if quantity <= 0 {
		if i >= 0 {
			removeAt(c, i)
		}
		return nil
	}
	if quantity > MaxLineQuantity {
		return ErrInvalidQuantity
	}
	if i < 0 {
		return ErrItemNotFound
	}
	c.Items[i].Quantity = quantity
	return nil
}

func removeItem(c *domain.Cart, productID string) {
	if i := c.Find(productID); i >= 0 {
		removeAt(c, i)
	}
}

func removeAt(c *domain.Cart, i int) {
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
}
