package compensation

import (
	"context"
	"time"

	onboardingerrors "go-onboarding/internal/onboarding/errors"

	"go.uber.org/zap"
)

// Action pairs a persisted mutation with an external effect that cannot join
// the database transaction. Compensate must undo Mutate.
type Action struct {
	Name       string
	Mutate     func(ctx context.Context) error
	SideEffect func(ctx context.Context) error
	Compensate func(ctx context.Context) error
	OnSuccess  func(ctx context.Context)
}

type Runner struct {
	timeout time.Duration
	logger  *zap.Logger
}

func NewRunner(sideEffectTimeout time.Duration, logger ...*zap.Logger) *Runner {
	l := zap.L().Named("compensation.runner")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("compensation.runner")
	}
	return &Runner{timeout: sideEffectTimeout, logger: l}
}

// Run applies the action. A failed side effect triggers Compensate and is
// returned as EMAIL_DELIVERY_FAILED; a failed compensation is only logged.
func (r *Runner) Run(ctx context.Context, a Action) error {
	if err := a.Mutate(ctx); err != nil {
		return err
	}

	if a.SideEffect != nil {
		if err := r.sideEffect(ctx, a); err != nil {
			r.logger.Error("side effect failed, compensating",
				zap.String("action", a.Name),
				zap.Error(err),
			)
			r.compensate(ctx, a)
			return onboardingerrors.EmailDeliveryFailed(err)
		}
	}

	if a.OnSuccess != nil {
		a.OnSuccess(ctx)
	}
	return nil
}

func (r *Runner) sideEffect(ctx context.Context, a Action) error {
	if r.timeout <= 0 {
		return a.SideEffect(ctx)
	}
	sctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return a.SideEffect(sctx)
}

func (r *Runner) compensate(ctx context.Context, a Action) {
	if a.Compensate == nil {
		return
	}
	// The request may already be cancelled; the rollback still has to land.
	cctx := context.WithoutCancel(ctx)
	if err := a.Compensate(cctx); err != nil {
		r.logger.Error("compensation failed",
			zap.String("action", a.Name),
			zap.Error(err),
		)
	}
}
