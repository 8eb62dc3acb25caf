package cart

import "errors"

var (
	ErrInvalidQuantity = errors.New("quantity must be between 1 and 99")
	ErrInvalidProduct  = errors.New("product must have an id, a vendor and a non-negative price")
	ErrMixedVendorCart = errors.New("cart already holds items from another vendor")
	ErrItemNotFound    = errors.New("item not found in cart")
	ErrCartBusy        = errors.New("cart is being changed elsewhere, try again")
)
