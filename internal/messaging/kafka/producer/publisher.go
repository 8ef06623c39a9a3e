package producer

import (
	"context"

	"go-onboarding/internal/messaging/kafka"

	kafkago "github.com/segmentio/kafka-go"
)

// MessageWriter is the part of *kafkago.Writer the relay needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
}

func toMessage(event kafka.OutboxEvent) kafkago.Message {
	headers := []kafkago.Header{
		{Key: "event_type", Value: []byte(event.EventType)},
		{Key: "aggregate_type", Value: []byte(event.AggregateType)},
		{Key: "outbox_id", Value: []byte(event.ID)},
	}
	if event.RequestID != "" {
		headers = append(headers, kafkago.Header{Key: "request_id", Value: []byte(event.RequestID)})
	}

	// Keyed by onboarding so one record's events stay ordered in a partition.
	return kafkago.Message{
		Topic:   event.Topic,
		Key:     []byte(event.AggregateID),
		Value:   event.Payload,
		Headers: headers,
	}
}

func publishEvent(ctx context.Context, writer MessageWriter, event kafka.OutboxEvent) error {
	return writer.WriteMessages(ctx, toMessage(event))
}
