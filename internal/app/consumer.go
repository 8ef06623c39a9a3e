package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go-onboarding/internal/events"
	"go-onboarding/internal/messaging/kafka/consumer"
	"go-onboarding/internal/shared/config"
	"go-onboarding/internal/shared/connection"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const summaryConsumerGroup = "go-onboarding-summary"

// RunConsumer drops the cached dashboard summary whenever an onboarding
// lifecycle event arrives.
func RunConsumer(cfg *config.Config) error {
	logger := zap.L().Named("app.consumer")

	if cfg.Kafka.Broker == "" {
		return fmt.Errorf("KAFKA_BROKER is required")
	}

	rdb, err := connection.ConnectRedisWithRetry(cfg.Redis.Addr, 5)
	if err != nil {
		return err
	}
	defer rdb.Close()

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        []string{cfg.Kafka.Broker},
		Topic:          events.OnboardingLifecycleTopic,
		GroupID:        summaryConsumerGroup,
		CommitInterval: 0,
		StartOffset:    kafkago.LastOffset,
	})
	defer reader.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		consumer.ConsumeOnboardingLifecycle(ctx, reader, rdb, logger)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("consumer shutting down")
	cancel()
	<-done

	return nil
}
