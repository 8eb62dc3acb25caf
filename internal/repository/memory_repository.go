package repository

import (
	"context"
	"sync"

	"github.com/fjod/go_grocery/internal/domain"
)

// MemoryAttemptRepository keeps the attempt ledger in process memory when no
// Postgres is configured.
type MemoryAttemptRepository struct {
	mu       sync.RWMutex
	attempts map[string][]*domain.CheckoutAttempt // userID -> attempts, oldest first
}

func NewMemoryAttemptRepository() *MemoryAttemptRepository {
	return &MemoryAttemptRepository{attempts: make(map[string][]*domain.CheckoutAttempt)}
}

func (m *MemoryAttemptRepository) RecordAttempt(_ context.Context, a *domain.CheckoutAttempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *a
	m.attempts[a.UserID] = append(m.attempts[a.UserID], &stored)
	return nil
}

func (m *MemoryAttemptRepository) ListAttempts(_ context.Context, userID string, limit int) ([]*domain.CheckoutAttempt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	all := m.attempts[userID]
	out := make([]*domain.CheckoutAttempt, 0, min(limit, len(all)))
	for i := len(all) - 1; i >= 0 && len(out) < limit; i-- {
		a := *all[i]
		out = append(out, &a)
	}
	return out, nil
}
