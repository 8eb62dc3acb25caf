package cart

import (
	"context"
	"sync"
	"time"

	"github.com/fjod/go_grocery/internal/cache"
	"github.com/fjod/go_grocery/internal/domain"
	"github.com/fjod/go_grocery/internal/repository"
)

// mockRepository enforces the same version check as the MongoDB repository
type mockRepository struct {
	m         sync.RWMutex
	carts     map[string]*domain.Cart
	err       error
	upserts   int
	conflicts int
	gets      int

	// beforeUpsert runs once, ahead of the next UpsertCart
	beforeUpsert func()
}

func newMockRepository() *mockRepository {
	return &mockRepository{carts: make(map[string]*domain.Cart)}
}

func (m *mockRepository) GetCart(_ context.Context, userID string) (*domain.Cart, error) {
	m.m.Lock()
	defer m.m.Unlock()
	m.gets++
	if m.err != nil {
		return nil, m.err
	}
	c, ok := m.carts[userID]
	if !ok {
		return nil, repository.ErrCartNotFound
	}
	return c.Clone(), nil
}

func (m *mockRepository) UpsertCart(_ context.Context, c *domain.Cart) error {
	m.m.Lock()
	hook := m.beforeUpsert
	m.beforeUpsert = nil
	m.m.Unlock()
	if hook != nil {
		hook()
	}

	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	var stored int64
	if existing, ok := m.carts[c.UserID]; ok {
		stored = existing.Version
	}
	if c.Version != stored+1 {
		m.conflicts++
		return repository.ErrCartConflict
	}
	m.upserts++
	m.carts[c.UserID] = c.Clone()
	return nil
}

// seed stores a cart as if some earlier writer had committed it
func (m *mockRepository) seed(c *domain.Cart) {
	m.m.Lock()
	defer m.m.Unlock()
	if c.Version == 0 {
		c.Version = 1
	}
	m.carts[c.UserID] = c.Clone()
}

func (m *mockRepository) setErr(err error) {
	m.m.Lock()
	defer m.m.Unlock()
	m.err = err
}

func (m *mockRepository) getCount() int {
	m.m.RLock()
	defer m.m.RUnlock()
	return m.gets
}

type mockCache struct {
	m       sync.RWMutex
	carts   map[string]*domain.Cart
	err     error
	deletes int
	// delay is slept before every write
	delay time.Duration
}

func newMockCache() *mockCache {
	return &mockCache{carts: make(map[string]*domain.Cart)}
}

func (m *mockCache) Get(_ context.Context, userID string) (*domain.Cart, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	c, ok := m.carts[userID]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return c.Clone(), nil
}

func (m *mockCache) Set(_ context.Context, userID string, c *domain.Cart) error {
	time.Sleep(m.delay)
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	m.carts[userID] = c.Clone()
	return nil
}

func (m *mockCache) SetIfAbsent(_ context.Context, userID string, c *domain.Cart) error {
	time.Sleep(m.delay)
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.carts[userID]; !ok {
		m.carts[userID] = c.Clone()
	}
	return nil
}

func (m *mockCache) Delete(_ context.Context, userID string) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.deletes++
	delete(m.carts, userID)
	return m.err
}

func (m *mockCache) has(userID string) bool {
	m.m.RLock()
	defer m.m.RUnlock()
	_, ok := m.carts[userID]
	return ok
}

func (m *mockCache) setErr(err error) {
	m.m.Lock()
	defer m.m.Unlock()
	m.err = err
}
