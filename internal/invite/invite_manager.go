package invite

import (
	"context"
	"errors"
	"time"

	"go-onboarding/internal/domain"
	onboardingerrors "go-onboarding/internal/onboarding/errors"
	"go-onboarding/internal/shared/clock"
	"go-onboarding/internal/shared/secure"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TokenBytes is the entropy of a raw invite token (256 bits).
const TokenBytes = 32

type Store interface {
	FindByInviteTokenHash(ctx context.Context, tokenHash string) (*domain.Onboarding, error)
}

type Manager struct {
	store  Store
	hasher secure.Hasher
	random secure.RandomSource
	clock  clock.Clock
	ttl    time.Duration
	logger *zap.Logger
}

func NewManager(
	store Store,
	hasher secure.Hasher,
	random secure.RandomSource,
	clk clock.Clock,
	ttl time.Duration,
	logger ...*zap.Logger,
) *Manager {
	l := zap.L().Named("invite.manager")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("invite.manager")
	}
	return &Manager{
		store:  store,
		hasher: hasher,
		random: random,
		clock:  clk,
		ttl:    ttl,
		logger: l,
	}
}

// Issue creates a fresh invite. The raw token is returned once for the
// outbound link and is never persisted.
func (m *Manager) Issue() (string, domain.Invite, error) {
	raw, err := m.random.Token(TokenBytes)
	if err != nil {
		return "", domain.Invite{}, err
	}

	now := m.clock.Now()
	hash := m.hasher.Sum(raw)
	expiresAt := now.Add(m.ttl)
	return raw, domain.Invite{
		TokenHash:  &hash,
		ExpiresAt:  &expiresAt,
		LastSentAt: &now,
	}, nil
}

// Rotate replaces the invite on o. Any previously issued raw token stops
// matching the stored hash. Persisting o is the caller's job.
func (m *Manager) Rotate(o *domain.Onboarding) (string, error) {
	raw, inv, err := m.Issue()
	if err != nil {
		return "", err
	}
	o.Invite = inv
	return raw, nil
}

// Validate resolves a raw token to its onboarding and checks that the
// employee may still use it.
func (m *Manager) Validate(ctx context.Context, raw string) (*domain.Onboarding, error) {
	if raw == "" {
		return nil, onboardingerrors.ErrInviteNotFound
	}

	hash := m.hasher.Sum(raw)
	o, err := m.store.FindByInviteTokenHash(ctx, hash)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, onboardingerrors.ErrInviteNotFound
		}
		m.logger.Error("invite lookup failed", zap.Error(err))
		return nil, err
	}
	if o == nil || !o.Invite.Present() || !m.hasher.Equal(*o.Invite.TokenHash, hash) {
		return nil, onboardingerrors.ErrInviteNotFound
	}

	if err := m.CheckUsable(o); err != nil {
		m.logger.Debug("invite rejected",
			zap.String("onboarding_id", o.ID.String()),
			zap.String("status", string(o.Status)),
			zap.Error(err),
		)
		return nil, err
	}
	return o, nil
}

// CheckUsable applies the expiry and status rules to an already resolved
// onboarding.
func (m *Manager) CheckUsable(o *domain.Onboarding) error {
	switch o.Status {
	case domain.StatusApproved:
		return onboardingerrors.ErrApproved
	case domain.StatusTerminated:
		return onboardingerrors.ErrTerminated
	}
	if o.Method != domain.MethodDigital || !o.Invite.Present() {
		return onboardingerrors.ErrInviteNotFound
	}
	if o.Invite.ExpiresAt == nil || !o.Invite.ExpiresAt.After(m.clock.Now()) {
		return onboardingerrors.ErrInviteExpired
	}
	return nil
}

// TokenHash exposes the digest used for storage so callers can bind other
// credentials (sessions) to the current invite.
func (m *Manager) TokenHash(raw string) string {
	return m.hasher.Sum(raw)
}

func (m *Manager) HashMatches(o *domain.Onboarding, tokenHash string) bool {
	return o.Invite.Present() && m.hasher.Equal(*o.Invite.TokenHash, tokenHash)
}
