package otp

import (
	"context"
	"errors"
	"time"

	"go-onboarding/internal/domain"
	onboardingerrors "go-onboarding/internal/onboarding/errors"
	"go-onboarding/internal/shared/clock"
	"go-onboarding/internal/shared/secure"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const CodeLength = 6

// Store holds the atomic OTP counters. Implementations must apply each call
// as a single conditional write.
type Store interface {
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Onboarding, error)
	// IncrementOtpAttempts adds one failed attempt for the OTP identified by
	// otpHash and stamps lockedAt when the new count reaches maxAttempts.
	// It returns domain.ErrConcurrentUpdate when the OTP was replaced or
	// locked in the meantime.
	IncrementOtpAttempts(ctx context.Context, id uuid.UUID, otpHash string, maxAttempts int, now time.Time) (int, *time.Time, error)
	// ResetOtpAttempts clears the counters of the OTP identified by otpHash.
	// It returns domain.ErrConcurrentUpdate when that OTP was replaced or
	// locked in the meantime.
	ResetOtpAttempts(ctx context.Context, id uuid.UUID, otpHash string, now time.Time) error
	// ReleaseOtpLock clears an elapsed lock only if lockedAt still equals the
	// observed value. The bool reports whether this call released it.
	ReleaseOtpLock(ctx context.Context, id uuid.UUID, lockedAt time.Time, now time.Time) (bool, error)
}

type Config struct {
	TTL          time.Duration
	MaxAttempts  int
	LockDuration time.Duration
}

type Manager struct {
	store  Store
	hasher secure.Hasher
	random secure.RandomSource
	clock  clock.Clock
	cfg    Config
	logger *zap.Logger
}

func NewManager(
	store Store,
	hasher secure.Hasher,
	random secure.RandomSource,
	clk clock.Clock,
	cfg Config,
	logger ...*zap.Logger,
) *Manager {
	l := zap.L().Named("otp.manager")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("otp.manager")
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	return &Manager{
		store:  store,
		hasher: hasher,
		random: random,
		clock:  clk,
		cfg:    cfg,
		logger: l,
	}
}

func (m *Manager) MaxAttempts() int {
	return m.cfg.MaxAttempts
}

// Issue sets a fresh OTP on o and returns the raw code for delivery.
// Persisting o is the caller's job.
func (m *Manager) Issue(o *domain.Onboarding) (string, error) {
	code, err := m.random.Digits(CodeLength)
	if err != nil {
		return "", err
	}

	now := m.clock.Now()
	hash := m.hasher.Sum(code)
	expiresAt := now.Add(m.cfg.TTL)
	o.OTP = domain.OTP{
		Hash:       &hash,
		ExpiresAt:  &expiresAt,
		Attempts:   0,
		LockedAt:   nil,
		LastSentAt: &now,
	}
	return code, nil
}

// Verify checks code against the OTP stored on o. A correct code stays valid
// until it expires; it is not consumed by a successful verification.
func (m *Manager) Verify(ctx context.Context, o *domain.Onboarding, code string) error {
	if !o.OTP.Present() {
		return onboardingerrors.ErrOtpNotIssued
	}

	now := m.clock.Now()
	if o.OTP.LockedAt != nil {
		if now.Sub(*o.OTP.LockedAt) < m.cfg.LockDuration {
			return onboardingerrors.ErrOtpLocked
		}
		fresh, err := m.releaseLock(ctx, o, now)
		if err != nil {
			return err
		}
		o = fresh
	}

	if o.OTP.ExpiresAt == nil || !o.OTP.ExpiresAt.After(now) {
		return onboardingerrors.ErrOtpExpired
	}

	if m.hasher.Equal(*o.OTP.Hash, m.hasher.Sum(code)) {
		if o.OTP.Attempts != 0 {
			if err := m.store.ResetOtpAttempts(ctx, o.ID, *o.OTP.Hash, now); err != nil {
				if errors.Is(err, domain.ErrConcurrentUpdate) {
					return m.lostRace(ctx, o.ID, now)
				}
				m.logger.Error("failed to reset otp attempts",
					zap.String("onboarding_id", o.ID.String()),
					zap.Error(err),
				)
				return err
			}
			o.OTP.Attempts = 0
			o.OTP.LockedAt = nil
		}
		return nil
	}

	attempts, lockedAt, err := m.store.IncrementOtpAttempts(ctx, o.ID, *o.OTP.Hash, m.cfg.MaxAttempts, now)
	if err != nil {
		if errors.Is(err, domain.ErrConcurrentUpdate) {
			return m.lostRace(ctx, o.ID, now)
		}
		m.logger.Error("failed to record otp attempt",
			zap.String("onboarding_id", o.ID.String()),
			zap.Error(err),
		)
		return err
	}
	o.OTP.Attempts = attempts
	o.OTP.LockedAt = lockedAt

	if lockedAt != nil || attempts >= m.cfg.MaxAttempts {
		m.logger.Warn("otp locked after failed attempts",
			zap.String("onboarding_id", o.ID.String()),
			zap.Int("attempts", attempts),
		)
		return onboardingerrors.ErrOtpMaxAttemptsExceeded
	}
	return onboardingerrors.OtpInvalid(m.cfg.MaxAttempts - attempts)
}

// releaseLock gives a new attempt budget once the lock window has passed.
// If another request released or re-locked first, the stored state wins.
func (m *Manager) releaseLock(ctx context.Context, o *domain.Onboarding, now time.Time) (*domain.Onboarding, error) {
	released, err := m.store.ReleaseOtpLock(ctx, o.ID, *o.OTP.LockedAt, now)
	if err != nil {
		return nil, err
	}
	if released {
		o.OTP.Attempts = 0
		o.OTP.LockedAt = nil
		return o, nil
	}

	fresh, err := m.store.FindByID(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	if !fresh.OTP.Present() {
		return nil, onboardingerrors.ErrOtpNotIssued
	}
	if fresh.OTP.LockedAt != nil && now.Sub(*fresh.OTP.LockedAt) < m.cfg.LockDuration {
		return nil, onboardingerrors.ErrOtpLocked
	}
	return fresh, nil
}

func (m *Manager) lostRace(ctx context.Context, id uuid.UUID, now time.Time) error {
	fresh, err := m.store.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if fresh.OTP.LockedAt != nil && now.Sub(*fresh.OTP.LockedAt) < m.cfg.LockDuration {
		return onboardingerrors.ErrOtpLocked
	}
	// The OTP was reissued while this attempt was in flight.
	return onboardingerrors.ErrOtpInvalid
}
