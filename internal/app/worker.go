package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-onboarding/internal/messaging/kafka"
	"go-onboarding/internal/messaging/kafka/producer"
	"go-onboarding/internal/shared/config"
	"go-onboarding/internal/shared/connection"

	"go.uber.org/zap"
)

// RunWorker relays pending outbox rows to Kafka until SIGINT or SIGTERM.
func RunWorker(cfg *config.Config) error {
	logger := zap.L().Named("app.worker")

	if cfg.Kafka.Broker == "" {
		return fmt.Errorf("KAFKA_BROKER is required")
	}

	gormDB, err := connection.ConnectGORMWithRetry(cfg.Database, 5)
	if err != nil {
		return err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	kafkaWriter, err := connection.ConnectKafkaWithRetry(cfg.Kafka.Broker, 5)
	if err != nil {
		return err
	}
	defer kafkaWriter.Close()

	outboxRepo := kafka.NewOutboxRepository(sqlDB)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		producer.ProcessOutboxEvents(ctx, outboxRepo, kafkaWriter, logger, producer.WorkerConfig{
			PollInterval:  3 * time.Second,
			BatchSize:     50,
			SentRetention: 7 * 24 * time.Hour,
		})
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("worker shutting down")
	cancel()
	<-done

	return nil
}
