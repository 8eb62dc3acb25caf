package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/fjod/go_grocery/internal/domain"
	"github.com/segmentio/kafka-go"
)

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// Subscriber replays published notifications into a local emitter, so any
// instance can answer for the latest message of any user.
type Subscriber struct {
	reader  messageReader
	sink    Emitter
	log     *slog.Logger
	backoff time.Duration // pause after a failed read
}

// NewSubscriber reads NotificationsTopic. Every instance needs its own
// groupID to receive the full stream.
func NewSubscriber(log *slog.Logger, sink Emitter, groupID string, brokers ...string) *Subscriber {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    NotificationsTopic,
		GroupID:  groupID,
		MaxBytes: 10e6, // 10MB
	})
	return &Subscriber{reader: reader, sink: sink, log: log, backoff: time.Second}
}

func (s *Subscriber) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		err := s.consume(ctx)
		if errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			select {
			case <-ctx.Done():
				return
			case <-time.After(s.backoff):
			}
		}
	}
}

func (s *Subscriber) Close() error {
	return s.reader.Close()
}

func (s *Subscriber) consume(ctx context.Context) error {
	m, err := s.reader.ReadMessage(ctx)
	if err != nil {
		if ctx.Err() == nil && !errors.Is(err, io.EOF) {
			s.log.WarnContext(ctx, "error reading notification", "error", err)
		}
		return err
	}

	var n domain.Notification
	if err := json.Unmarshal(m.Value, &n); err != nil {
		s.log.WarnContext(ctx, "error parsing notification", "offset", m.Offset, "error", err)
		return nil
	}
	if n.UserID == "" {
		n.UserID = string(m.Key)
	}

	s.sink.Notify(ctx, n)
	return nil
}
