package checkout

import (
	"errors"
	"fmt"

	"github.com/fjod/go_grocery/internal/cart"
)

var (
	ErrNotAuthenticated     = errors.New("not authenticated")
	ErrEmptyCart            = errors.New("cart is empty, nothing to checkout")
	ErrIncompleteAddress    = errors.New("delivery address is incomplete")
	ErrOrderTypeUnavailable = errors.New("order type not offered by vendor")
	ErrAlreadySubmitting    = errors.New("order is already being submitted")
	ErrSubmissionTimeout    = errors.New("order submission timed out")
	ErrSubmissionRejected   = errors.New("order submission rejected")
	ErrNetwork              = errors.New("network error during order submission")
	ErrCartUnavailable      = errors.New("cart could not be loaded")
	IllegalTransitionError  = errors.New("illegal transition of checkout status")
)

// Error is what PlaceOrder returns on failure. Kind is one of the sentinels
// above (or cart.ErrMixedVendorCart); Message is the text shown to the user.
type Error struct {
	Kind    error
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%v: %v", e.Kind, e.Cause)
	}
	return e.Kind.Error()
}

func (e *Error) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Kind, e.Cause}
	}
	return []error{e.Kind}
}

var fallbackMessages = map[error]string{
	ErrNotAuthenticated:     "Please log in to place an order",
	ErrEmptyCart:            "Your cart is empty",
	ErrIncompleteAddress:    "Please use your current location, pick a saved address or fill in street, city, state and pincode",
	ErrOrderTypeUnavailable: "This store does not offer the selected order type",
	cart.ErrMixedVendorCart: "Your cart has items from more than one store",
	ErrAlreadySubmitting:    "Your order is already being placed",
	ErrSubmissionTimeout:    "Placing the order took too long, please try again",
	ErrSubmissionRejected:   "Order placement failed, try again",
	ErrNetwork:              "Network error, check your connection",
	ErrCartUnavailable:      "Something went wrong, please try again",
}

func newError(kind error, message string, cause error) *Error {
	if message == "" {
		message = fallbackMessages[kind]
	}
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// KindName is the stable identifier of a checkout failure used in the
// attempt ledger and in API error codes.
func KindName(err error) string {
	switch {
	case errors.Is(err, ErrNotAuthenticated):
		return "not_authenticated"
	case errors.Is(err, ErrEmptyCart):
		return "empty_cart"
	case errors.Is(err, ErrIncompleteAddress):
		return "incomplete_address"
	case errors.Is(err, ErrOrderTypeUnavailable):
		return "order_type_unavailable"
	case errors.Is(err, cart.ErrMixedVendorCart):
		return "mixed_vendor_cart"
	case errors.Is(err, ErrAlreadySubmitting):
		return "already_submitting"
	case errors.Is(err, ErrSubmissionTimeout):
		return "submission_timeout"
	case errors.Is(err, ErrSubmissionRejected):
		return "submission_rejected"
	case errors.Is(err, ErrNetwork):
		return "network_error"
	case err == nil:
		return ""
	default:
		return "internal"
	}
}
