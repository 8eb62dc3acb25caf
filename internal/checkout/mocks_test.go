package checkout

import (
	"context"
	"errors"
	"sync"

	"github.com/fjod/go_grocery/internal/domain"
)

// MockSubmitter implements OrderSubmitter for testing
type MockSubmitter struct {
	mu      sync.Mutex
	Result  *domain.OrderResult
	Err     error
	Block   chan struct{} // when set, SubmitOrder waits for it to close
	Started chan struct{} // closed on the first call
	Calls   int
	Draft   *domain.OrderDraft
	Token   string
}

func (m *MockSubmitter) SubmitOrder(ctx context.Context, token string, draft *domain.OrderDraft) (*domain.OrderResult, error) {
	m.mu.Lock()
	m.Calls++
	m.Draft = draft
	m.Token = token
	if m.Calls == 1 && m.Started != nil {
		close(m.Started)
	}
	m.mu.Unlock()

	if m.Block != nil {
		select {
		case <-m.Block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return m.Result, m.Err
}

func (m *MockSubmitter) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls
}

// MockVendorLookup implements VendorLookup for testing
type MockVendorLookup struct {
	Vendor *domain.Vendor
	Err    error
	Calls  int
}

func (m *MockVendorLookup) GetVendor(_ context.Context, vendorID string) (*domain.Vendor, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Vendor == nil || m.Vendor.ID != vendorID {
		return nil, errors.New("vendor not found")
	}
	return m.Vendor, nil
}

// MockEmitter captures every notification
type MockEmitter struct {
	mu            sync.Mutex
	Notifications []domain.Notification
}

func (m *MockEmitter) Notify(_ context.Context, n domain.Notification) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Notifications = append(m.Notifications, n)
}

func (m *MockEmitter) all() []domain.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Notification(nil), m.Notifications...)
}

// MockCartStore implements CartStore with a failing Clear
type MockCartStore struct {
	Cart     *domain.Cart
	GetErr   error
	ClearErr error
	Cleared  int
}

func (m *MockCartStore) Get(_ context.Context, _ string) (*domain.Cart, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	return m.Cart.Clone(), nil
}

func (m *MockCartStore) Clear(_ context.Context, _ string) error {
	m.Cleared++
	return m.ClearErr
}
