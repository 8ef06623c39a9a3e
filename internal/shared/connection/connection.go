package connection

import (
	"context"
	"fmt"
	"log"
	"net"
	"strconv"
	"time"

	"go-onboarding/internal/shared/config"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const retryDelay = 5 * time.Second

func PostgresDSN(cfg config.DatabaseConfig) string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		cfg.Host, cfg.User, cfg.Password, cfg.Name, cfg.Port, cfg.SSLMode,
	)
}

func ConnectGORMWithRetry(cfg config.DatabaseConfig, maxRetries int) (*gorm.DB, error) {
	dsn := PostgresDSN(cfg)

	var lastErr error

	for i := 1; i <= maxRetries; i++ {
		db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err != nil {
			lastErr = err
			log.Printf("⚠️ GORM open failed (%d/%d): %v", i, maxRetries, err)
			time.Sleep(retryDelay)
			continue
		}

		sqlDB, err := db.DB()
		if err != nil {
			lastErr = err
			log.Printf("⚠️ get sql.DB failed (%d/%d): %v", i, maxRetries, err)
			time.Sleep(retryDelay)
			continue
		}

		if err := sqlDB.Ping(); err != nil {
			lastErr = err
			log.Printf("⚠️ DB ping failed (%d/%d): %v", i, maxRetries, err)
			time.Sleep(retryDelay)
			continue
		}

		// Pool config
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxLifetime(time.Hour)

		log.Println("✅ GORM connected to database")
		return db, nil
	}

	return nil, fmt.Errorf("database connection failed after %d retries: %w", maxRetries, lastErr)
}

func ConnectRedisWithRetry(addr string, maxRetries int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	var lastErr error
	for i := 1; i <= maxRetries; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err := rdb.Ping(ctx).Err()
		cancel()
		if err == nil {
			log.Println("✅ Connected to Redis")
			return rdb, nil
		}
		lastErr = err

		log.Printf("⚠️ Redis retry %d/%d failed: %v", i, maxRetries, err)
		time.Sleep(retryDelay)
	}

	_ = rdb.Close()
	return nil, fmt.Errorf("failed to connect redis: %w", lastErr)
}

// ConnectKafkaWithRetry dials the broker until it answers, then returns a
// writer that routes by message topic.
func ConnectKafkaWithRetry(broker string, maxRetries int) (*kafkago.Writer, error) {
	var lastErr error
	for i := 1; i <= maxRetries; i++ {
		conn, err := kafkago.Dial("tcp", broker)
		if err == nil {
			_ = conn.Close()
			log.Println("✅ Connected to Kafka")
			return &kafkago.Writer{
				Addr:                   kafkago.TCP(broker),
				Balancer:               &kafkago.Hash{},
				RequiredAcks:           kafkago.RequireAll,
				AllowAutoTopicCreation: true,
			}, nil
		}
		lastErr = err

		log.Printf("⚠️ Kafka retry %d/%d failed: %v", i, maxRetries, err)
		time.Sleep(retryDelay)
	}

	return nil, fmt.Errorf("failed to connect kafka: %w", lastErr)
}

// SMTPAddr joins host and port the way net/smtp expects.
func SMTPAddr(cfg config.SMTPConfig) string {
	port, err := strconv.Atoi(cfg.Port)
	if err != nil || port <= 0 {
		port = 587
	}
	return net.JoinHostPort(cfg.Host, strconv.Itoa(port))
}
