package cart

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fjod/go_grocery/internal/cache"
	"github.com/fjod/go_grocery/internal/domain"
	"github.com/fjod/go_grocery/internal/repository"
	"golang.org/x/sync/singleflight"
)

// Store owns every session cart. Each session has its own mutex so a cart has
// a single writer per process at a time; readers get deep copies.
//
// Without a repository the carts live in the sessions map. With one, the
// repository is the source of truth: every mutation re-reads the stored cart
// and writes it back conditionally on its version, so instances sharing a
// repository never overwrite each other's changes.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*session

	repo   repository.CartRepository // nil keeps carts in memory only
	cache  cache.CartCache
	sfg    singleflight.Group // Prevents cache stampede on rehydration
	policy MixedVendorPolicy
	now    func() time.Time
	log    *slog.Logger
}

type session struct {
	mu   sync.Mutex
	refs int          // guarded by Store.mu
	cart *domain.Cart // in-memory carts only
}

// maxWriteAttempts bounds the re-read and retry loop on version conflicts.
const maxWriteAttempts = 5

type Option func(*Store)

func WithRepository(repo repository.CartRepository) Option {
	return func(s *Store) { s.repo = repo }
}

func WithCache(c cache.CartCache) Option {
	return func(s *Store) { s.cache = c }
}

func WithMixedVendorPolicy(p MixedVendorPolicy) Option {
	return func(s *Store) { s.policy = p }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.log = l }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		sessions: make(map[string]*session),
		policy:   MixedVendorReject,
		now:      time.Now,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	if s.repo != nil {
		return s.load(ctx, userID)
	}
	ss := s.acquire(userID)
	defer s.release(userID, ss)
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return ss.cart.Clone(), nil
}

func (s *Store) AddItem(ctx context.Context, userID string, product domain.Product, quantity int) (*domain.Cart, error) {
	return s.mutate(ctx, userID, func(c *domain.Cart) error {
		return addItem(c, product, quantity, s.policy, s.now())
	})
}

func (s *Store) UpdateQuantity(ctx context.Context, userID, productID string, quantity int) (*domain.Cart, error) {
	return s.mutate(ctx, userID, func(c *domain.Cart) error {
		return updateQuantity(c, productID, quantity)
	})
}

// RemoveItem is idempotent: removing an absent product is not an error.
func (s *Store) RemoveItem(ctx context.Context, userID, productID string) (*domain.Cart, error) {
	return s.mutate(ctx, userID, func(c *domain.Cart) error {
		removeItem(c, productID)
		return nil
	})
}

func (s *Store) Clear(ctx context.Context, userID string) error {
	_, err := s.mutate(ctx, userID, func(c *domain.Cart) error {
		c.Items = nil
		return nil
	})
	return err
}

// mutate applies fn to a copy and commits it only once it is stored, so a
// failed write leaves the cart unchanged.
func (s *Store) mutate(ctx context.Context, userID string, fn func(c *domain.Cart) error) (*domain.Cart, error) {
	ss := s.acquire(userID)
	defer s.release(userID, ss)
	ss.mu.Lock()
	defer ss.mu.Unlock()

	if s.repo == nil {
		next := ss.cart.Clone()
		if err := fn(next); err != nil {
			return nil, err
		}
		next.UpdatedAt = s.now()
		next.Version++
		ss.cart = next
		return next.Clone(), nil
	}

	for attempt := 1; attempt <= maxWriteAttempts; attempt++ {
		current, err := s.fetch(ctx, userID)
		if err != nil {
			return nil, err
		}
		next := current.Clone()
		if err := fn(next); err != nil {
			return nil, err
		}
		next.UpdatedAt = s.now()
		next.Version = current.Version + 1

		err = s.repo.UpsertCart(ctx, next.Clone())
		if errors.Is(err, repository.ErrCartConflict) {
			s.log.DebugContext(ctx, "cart changed concurrently, retrying", "user_id", userID, "attempt", attempt)
			continue
		}
		if err != nil {
			s.log.ErrorContext(ctx, "repo upsert cart failed", "user_id", userID, "error", err)
			return nil, fmt.Errorf("failed to save cart: %w", err)
		}
		s.writeThrough(next)
		return next.Clone(), nil
	}
	return nil, fmt.Errorf("%w: %w", ErrCartBusy, repository.ErrCartConflict)
}

// fetch reads the stored cart, bypassing the cache.
func (s *Store) fetch(ctx context.Context, userID string) (*domain.Cart, error) {
	c, err := s.repo.GetCart(ctx, userID)
	if errors.Is(err, repository.ErrCartNotFound) {
		return s.emptyCart(userID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	return c, nil
}

// writeThrough replaces the cached cart after a committed write. If that
// fails the entry is dropped instead of being left stale.
func (s *Store) writeThrough(c *domain.Cart) {
	if s.cache == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	err := s.cache.Set(ctx, c.UserID, c)
	if err == nil {
		return
	}
	s.log.Warn("cache set failed", "user_id", c.UserID, "error", err)
	if err := s.cache.Delete(ctx, c.UserID); err != nil {
		s.log.Warn("cache invalidate failed", "user_id", c.UserID, "error", err)
	}
}

func (s *Store) acquire(userID string) *session {
	s.mu.Lock()
	defer s.mu.Unlock()
	ss, ok := s.sessions[userID]
	if !ok {
		ss = &session{}
		if s.repo == nil {
			ss.cart = s.emptyCart(userID)
		}
		s.sessions[userID] = ss
	}
	ss.refs++
	return ss
}

// release forgets a session nobody holds once it has nothing worth keeping.
// Carts in a repository are never kept in memory.
func (s *Store) release(userID string, ss *session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ss.refs--
	if ss.refs == 0 && (ss.cart == nil || ss.cart.IsEmpty()) {
		delete(s.sessions, userID)
	}
}

// load reads a cart through the cache. A miss falls back to the repository
// and refills the cache before returning.
func (s *Store) load(ctx context.Context, userID string) (*domain.Cart, error) {
	v, err, _ := s.sfg.Do(userID, func() (interface{}, error) {
		if s.cache != nil {
			cart, err := s.cache.Get(ctx, userID)
			if err == nil {
				return cart, nil
			}
			if !errors.Is(err, cache.ErrCacheMiss) {
				s.log.WarnContext(ctx, "cache get failed", "user_id", userID, "error", err)
			}
		}

		cart, err := s.fetch(ctx, userID)
		if err != nil {
			return nil, err
		}

		if s.cache != nil && cart.Version > 0 {
			if err := s.cache.SetIfAbsent(ctx, userID, cart); err != nil {
				s.log.WarnContext(ctx, "cache refill failed", "user_id", userID, "error", err)
			}
		}
		return cart, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Cart).Clone(), nil
}

func (s *Store) emptyCart(userID string) *domain.Cart {
	now := s.now()
	return &domain.Cart{UserID: userID, CreatedAt: now, UpdatedAt: now}
}
