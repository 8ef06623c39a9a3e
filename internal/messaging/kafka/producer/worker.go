package producer

import (
	"context"
	"time"

	"go-onboarding/internal/messaging/kafka"

	"go.uber.org/zap"
)

type WorkerConfig struct {
	PollInterval time.Duration
	BatchSize    int
	// SentRetention is how long delivered rows are kept before cleanup.
	SentRetention time.Duration
}

func ProcessOutboxEvents(
	ctx context.Context,
	repo kafka.OutboxRepository,
	writer MessageWriter,
	logger *zap.Logger,
	cfg WorkerConfig,
) {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 3 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.SentRetention <= 0 {
		cfg.SentRetention = 7 * 24 * time.Hour
	}

	log := logger.Named("kafka.producer.worker")
	ticker := time.NewTicker(cfg.PollInterval)
	defer ticker.Stop()
	cleanup := time.NewTicker(time.Hour)
	defer cleanup.Stop()

	log.Info("outbox worker started", zap.Duration("poll_interval", cfg.PollInterval))

	for {
		select {
		case <-ctx.Done():
			log.Info("outbox worker stopped")
			return
		case <-ticker.C:
			if err := processPendingEvents(ctx, repo, writer, log, cfg.BatchSize); err != nil {
				log.Error("process outbox events failed", zap.Error(err))
			}
		case <-cleanup.C:
			n, err := repo.DeleteSentBefore(ctx, time.Now().UTC().Add(-cfg.SentRetention))
			if err != nil {
				log.Error("outbox cleanup failed", zap.Error(err))
				continue
			}
			if n > 0 {
				log.Info("outbox cleanup removed sent events", zap.Int64("count", n))
			}
		}
	}
}

func processPendingEvents(
	ctx context.Context,
	repo kafka.OutboxRepository,
	writer MessageWriter,
	logger *zap.Logger,
	batchSize int,
) error {
	events, err := repo.ListPending(ctx, batchSize)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		return nil
	}

	logger.Debug("processing pending outbox events", zap.Int("count", len(events)))

	for _, event := range events {
		if err := publishEvent(ctx, writer, event); err != nil {
			logger.Error("publish outbox event failed",
				zap.String("outbox_id", event.ID),
				zap.String("event_type", event.EventType),
				zap.String("topic", event.Topic),
				zap.Int("retry_count", event.RetryCount),
				zap.Error(err),
			)
			if markErr := repo.MarkFailed(ctx, event.ID, err.Error()); markErr != nil {
				logger.Error("mark outbox failed failed", zap.String("outbox_id", event.ID), zap.Error(markErr))
			}
			continue
		}

		if err := repo.MarkSent(ctx, event.ID); err != nil {
			logger.Error("mark outbox sent failed",
				zap.String("outbox_id", event.ID),
				zap.Error(err),
			)
			continue
		}

		logger.Info("outbox event sent",
			zap.String("outbox_id", event.ID),
			zap.String("event_type", event.EventType),
			zap.String("aggregate_id", event.AggregateID),
		)
	}
	return nil
}
