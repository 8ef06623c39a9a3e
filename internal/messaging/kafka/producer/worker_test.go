package producer

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"go-onboarding/internal/messaging/kafka"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeOutboxRepo struct {
	pending []kafka.OutboxEvent
	sent    []string
	failed  map[string]string
}

func (f *fakeOutboxRepo) WithTx(tx *sql.Tx) kafka.OutboxRepository { return f }
func (f *fakeOutboxRepo) Create(ctx context.Context, event kafka.OutboxEvent) error {
	f.pending = append(f.pending, event)
	return nil
}
func (f *fakeOutboxRepo) ListPending(ctx context.Context, limit int) ([]kafka.OutboxEvent, error) {
	if len(f.pending) > limit {
		return f.pending[:limit], nil
	}
	return f.pending, nil
}
func (f *fakeOutboxRepo) MarkSent(ctx context.Context, id string) error {
	f.sent = append(f.sent, id)
	return nil
}
func (f *fakeOutboxRepo) MarkFailed(ctx context.Context, id string, reason string) error {
	if f.failed == nil {
		f.failed = map[string]string{}
	}
	f.failed[id] = reason
	return nil
}
func (f *fakeOutboxRepo) DeleteSentBefore(ctx context.Context, before time.Time) (int64, error) {
	return 0, nil
}

type fakeWriter struct {
	WriteFn  func(msg kafkago.Message) error
	messages []kafkago.Message
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafkago.Message) error {
	for _, m := range msgs {
		if w.WriteFn != nil {
			if err := w.WriteFn(m); err != nil {
				return err
			}
		}
		w.messages = append(w.messages, m)
	}
	return nil
}

func TestProcessPendingEvents(t *testing.T) {
	ctx := context.Background()
	ok, err := kafka.NewOutboxEvent("hr.onboarding.lifecycle.v1", "onboarding", "ob-1", "APPROVED", "req-1", map[string]string{"status": "Approved"})
	assert.NoError(t, err)
	bad, err := kafka.NewOutboxEvent("hr.onboarding.lifecycle.v1", "onboarding", "ob-2", "TERMINATED", "", map[string]string{"status": "Terminated"})
	assert.NoError(t, err)

	repo := &fakeOutboxRepo{pending: []kafka.OutboxEvent{ok, bad}}
	writer := &fakeWriter{WriteFn: func(msg kafkago.Message) error {
		if string(msg.Key) == "ob-2" {
			return errors.New("broker unavailable")
		}
		return nil
	}}

	err = processPendingEvents(ctx, repo, writer, zap.NewNop(), 10)

	assert.NoError(t, err)
	assert.Equal(t, []string{ok.ID}, repo.sent)
	assert.Contains(t, repo.failed[bad.ID], "broker unavailable")

	assert.Len(t, writer.messages, 1)
	msg := writer.messages[0]
	assert.Equal(t, "ob-1", string(msg.Key))
	assert.Equal(t, "hr.onboarding.lifecycle.v1", msg.Topic)
	headers := map[string]string{}
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "APPROVED", headers["event_type"])
	assert.Equal(t, "req-1", headers["request_id"])
}

func TestNewOutboxEvent_Validation(t *testing.T) {
	_, err := kafka.NewOutboxEvent("", "onboarding", "ob-1", "APPROVED", "", map[string]string{})
	assert.Error(t, err)
}
