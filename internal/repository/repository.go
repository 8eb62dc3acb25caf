package repository

import (
	"context"
	"errors"

	"github.com/fjod/go_grocery/internal/domain"
)

var (
	ErrCartNotFound = errors.New("cart not found")
	ErrCartConflict = errors.New("cart was changed concurrently")
)

// CartRepository stores the rehydratable cart snapshot of a session.
// Consumers define this interface, not the MongoDB implementation
type CartRepository interface {
	GetCart(ctx context.Context, userID string) (*domain.Cart, error)
	// UpsertCart stores cart only if the stored version is cart.Version-1
	// (no stored cart counts as version 0), else it returns ErrCartConflict.
	UpsertCart(ctx context.Context, cart *domain.Cart) error
}

// AttemptRepository is the checkout attempt ledger.
type AttemptRepository interface {
	RecordAttempt(ctx context.Context, attempt *domain.CheckoutAttempt) error
	ListAttempts(ctx context.Context, userID string, limit int) ([]*domain.CheckoutAttempt, error)
}
