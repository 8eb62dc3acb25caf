package cache

import (
	"context"
	"errors"

	"github.com/fjod/go_grocery/internal/domain"
)

type CartCache interface {
	Get(ctx context.Context, userID string) (*domain.Cart, error)
	Set(ctx context.Context, userID string, cart *domain.Cart) error
	// SetIfAbsent never replaces an entry; rehydration uses it so a slow
	// refill cannot overwrite a newer write-through.
	SetIfAbsent(ctx context.Context, userID string, cart *domain.Cart) error
	Delete(ctx context.Context, userID string) error
}

var ErrCacheMiss = errors.New("cache miss")
