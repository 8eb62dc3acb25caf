// Package notify delivers user-visible checkout outcomes. Delivery is fire
// and forget: there is no retry and a newer message supersedes older ones.
package notify

import (
	"context"
	"log/slog"

	"github.com/fjod/go_grocery/internal/domain"
)

type Emitter interface {
	Notify(ctx context.Context, n domain.Notification)
}

// Fanout sends every notification to each emitter in order.
type Fanout []Emitter

func (f Fanout) Notify(ctx context.Context, n domain.Notification) {
	for _, e := range f {
		e.Notify(ctx, n)
	}
}

type LogEmitter struct {
	log *slog.Logger
}

func NewLogEmitter(log *slog.Logger) *LogEmitter {
	return &LogEmitter{log: log}
}

func (l *LogEmitter) Notify(ctx context.Context, n domain.Notification) {
	level := slog.LevelInfo
	if n.Severity == domain.SeverityError {
		level = slog.LevelWarn
	}
	l.log.Log(ctx, level, "user notification",
		"user_id", n.UserID,
		"severity", string(n.Severity),
		"message", n.Message)
}
