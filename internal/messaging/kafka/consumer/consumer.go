package consumer

import (
	"context"
	"encoding/json"

	"go-onboarding/internal/events"
	"go-onboarding/internal/onboarding"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageReader is the part of *kafkago.Reader the consumer needs.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
}

// ConsumeOnboardingLifecycle keeps read models in step with the lifecycle
// stream. Every event invalidates the cached summary counts.
func ConsumeOnboardingLifecycle(
	ctx context.Context,
	reader MessageReader,
	rdb redis.Cmdable,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.onboarding_lifecycle")
	log.Info("onboarding lifecycle consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("onboarding lifecycle consumer stopped")
				return
			}
			log.Error("fetch onboarding lifecycle message failed", zap.Error(err))
			continue
		}

		var event events.OnboardingLifecycleEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode onboarding lifecycle event failed",
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		if err := rdb.Del(ctx, onboarding.SummaryCacheKey).Err(); err != nil {
			log.Error("invalidate onboarding summary failed",
				zap.String("onboarding_id", event.OnboardingID),
				zap.String("event_type", event.EventType),
				zap.Error(err),
			)
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit onboarding lifecycle message failed", zap.Error(err))
			continue
		}

		log.Debug("onboarding summary invalidated",
			zap.String("request_id", event.RequestID),
			zap.String("onboarding_id", event.OnboardingID),
			zap.String("event_type", event.EventType),
			zap.String("status", event.Status),
		)
	}
}
