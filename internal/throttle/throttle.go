package throttle

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const otpKeyPrefix = "onboarding:otp:throttle:"

func OtpKey(onboardingID uuid.UUID) string {
	return otpKeyPrefix + onboardingID.String()
}

// OtpThrottle limits how often an OTP can be sent for one onboarding.
type OtpThrottle interface {
	// Acquire returns 0 when sending is allowed, otherwise the whole number
	// of seconds the caller has to wait.
	Acquire(ctx context.Context, onboardingID uuid.UUID) (int, error)
	// Release drops the window early, e.g. after the send itself failed.
	Release(ctx context.Context, onboardingID uuid.UUID)
}

type redisOtpThrottle struct {
	rdb      redis.Cmdable
	interval time.Duration
	logger   *zap.Logger
}

func NewRedisOtpThrottle(rdb redis.Cmdable, interval time.Duration, logger ...*zap.Logger) OtpThrottle {
	l := zap.L().Named("throttle.otp")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("throttle.otp")
	}
	return &redisOtpThrottle{rdb: rdb, interval: interval, logger: l}
}

func (t *redisOtpThrottle) Acquire(ctx context.Context, onboardingID uuid.UUID) (int, error) {
	if t.interval <= 0 {
		return 0, nil
	}

	key := OtpKey(onboardingID)
	ok, err := t.rdb.SetNX(ctx, key, "1", t.interval).Result()
	if err != nil {
		return 0, fmt.Errorf("otp throttle setnx: %w", err)
	}
	if ok {
		return 0, nil
	}

	ttl, err := t.rdb.PTTL(ctx, key).Result()
	if err != nil || ttl <= 0 {
		// The window is about to close; ask for a single second.
		return 1, nil
	}
	return int(math.Ceil(ttl.Seconds())), nil
}

func (t *redisOtpThrottle) Release(ctx context.Context, onboardingID uuid.UUID) {
	if t.interval <= 0 {
		return
	}
	if err := t.rdb.Del(ctx, OtpKey(onboardingID)).Err(); err != nil {
		t.logger.Warn("failed to release otp throttle",
			zap.String("onboarding_id", onboardingID.String()),
			zap.Error(err),
		)
	}
}
