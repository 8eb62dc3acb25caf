package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/fjod/go_grocery/internal/domain"
	"github.com/fjod/go_grocery/internal/requestid"
	"github.com/segmentio/kafka-go"
)

const NotificationsTopic = "checkout-notifications"

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaEmitter publishes notifications keyed by user id, so one user's
// messages stay ordered within a partition.
type KafkaEmitter struct {
	writer  messageWriter
	timeout time.Duration
	log     *slog.Logger
}

func NewKafkaEmitter(log *slog.Logger, brokers ...string) *KafkaEmitter {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  NotificationsTopic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}
	return &KafkaEmitter{writer: w, timeout: 5 * time.Second, log: log}
}

func (k *KafkaEmitter) Notify(ctx context.Context, n domain.Notification) {
	payload, err := json.Marshal(n)
	if err != nil {
		k.log.ErrorContext(ctx, "failed to marshal notification", "user_id", n.UserID, "error", err)
		return
	}

	msg := kafka.Message{
		Key:   []byte(n.UserID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "severity", Value: []byte(n.Severity)},
		},
	}
	if id := requestid.FromContext(ctx); id != "" {
		msg.Headers = append(msg.Headers, kafka.Header{Key: "request-id", Value: []byte(id)})
	}

	// the request context may already be finished by the time we publish
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), k.timeout)
	defer cancel()
	if err := k.writer.WriteMessages(writeCtx, msg); err != nil {
		k.log.WarnContext(ctx, "failed to publish notification", "user_id", n.UserID, "error", err)
	}
}

func (k *KafkaEmitter) Close() error {
	return k.writer.Close()
}
