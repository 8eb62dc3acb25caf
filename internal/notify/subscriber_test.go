package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/fjod/go_grocery/internal/domain"
	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"gotest.tools/v3/assert"
)

// mockReader hands out queued messages, then err (io.EOF when unset)
type mockReader struct {
	mu       sync.Mutex
	messages []kafkaGo.Message
	err      error
	reads    int
	closed   bool
}

func (m *mockReader) ReadMessage(_ context.Context) (kafkaGo.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads++
	if len(m.messages) == 0 {
		if m.err != nil {
			return kafkaGo.Message{}, m.err
		}
		return kafkaGo.Message{}, io.EOF
	}
	msg := m.messages[0]
	m.messages = m.messages[1:]
	return msg, nil
}

func (m *mockReader) Close() error {
	m.closed = true
	return nil
}

func encode(t *testing.T, n domain.Notification) []byte {
	b, err := json.Marshal(n)
	require.NoError(t, err)
	return b
}

func TestSubscriber_FeedsLatest(t *testing.T) {
	latest := NewLatest()
	reader := &mockReader{messages: []kafkaGo.Message{
		{Key: []byte("user-1"), Value: encode(t, domain.Notification{UserID: "user-1", Message: "Order placement failed, try again", Severity: domain.SeverityError})},
		{Key: []byte("user-1"), Value: []byte("not json")},
		{Key: []byte("user-1"), Value: encode(t, domain.Notification{UserID: "user-1", Message: "Order placed successfully!", Severity: domain.SeveritySuccess})},
		{Key: []byte("user-2"), Value: encode(t, domain.Notification{Message: "Your cart is empty", Severity: domain.SeverityError})},
	}}
	sub := &Subscriber{reader: reader, sink: latest, log: quiet}

	sub.Run(context.Background())

	got, ok := latest.Get("user-1")
	require.True(t, ok)
	assert.Equal(t, "Order placed successfully!", got.Message)

	got, ok = latest.Get("user-2")
	require.True(t, ok, "user id falls back to the message key")
	assert.Equal(t, domain.SeverityError, got.Severity)

	require.NoError(t, sub.Close())
	assert.Assert(t, reader.closed)
}

func TestSubscriber_StopsOnCanceledContext(t *testing.T) {
	sub := &Subscriber{reader: &mockReader{}, sink: NewLatest(), log: quiet}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sub.Run(ctx)
}

func TestSubscriber_BacksOffAfterReadErrors(t *testing.T) {
	reader := &mockReader{err: errors.New("broker unreachable")}
	sub := &Subscriber{reader: reader, sink: NewLatest(), log: quiet, backoff: 20 * time.Millisecond}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	sub.Run(ctx)

	reader.mu.Lock()
	defer reader.mu.Unlock()
	assert.Assert(t, reader.reads >= 2, "reads=%d", reader.reads)
	assert.Assert(t, reader.reads <= 7, "reads=%d", reader.reads)
}

func TestSubscriber_Integration(t *testing.T) {
	broker, cleanup := setupKafka(t)
	defer cleanup()

	emitter := NewKafkaEmitter(quiet, broker)
	defer emitter.Close()

	latest := NewLatest()
	sub := NewSubscriber(quiet, latest, "notify-subscriber-test", broker)
	defer sub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	go sub.Run(ctx)

	emitter.Notify(ctx, domain.Notification{
		UserID:    "user-9",
		Message:   "Order placed successfully!",
		Severity:  domain.SeveritySuccess,
		CreatedAt: time.Now(),
	})

	require.Eventually(t, func() bool {
		_, ok := latest.Get("user-9")
		return ok
	}, 30*time.Second, 200*time.Millisecond)
}
