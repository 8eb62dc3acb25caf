package notify

import (
	"context"
	"sync"

	"github.com/fjod/go_grocery/internal/domain"
)

// Latest remembers only the most recent notification per user.
type Latest struct {
	mu   sync.RWMutex
	last map[string]domain.Notification
}

func NewLatest() *Latest {
	return &Latest{last: make(map[string]domain.Notification)}
}

func (l *Latest) Notify(_ context.Context, n domain.Notification) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.last[n.UserID] = n
}

func (l *Latest) Get(userID string) (domain.Notification, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	n, ok := l.last[userID]
	return n, ok
}
