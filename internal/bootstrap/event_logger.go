package bootstrap

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// ServerEvent is a process-level event such as startup or shutdown. It is
// unrelated to the per-onboarding audit trail.
type ServerEvent struct {
	Action  string
	Message string
	Meta    map[string]any
}

type EventLogger interface {
	Log(ctx context.Context, event ServerEvent)
}

type ZapEventLogger struct {
	logger *zap.Logger
}

func NewZapEventLogger(logger ...*zap.Logger) *ZapEventLogger {
	l := zap.L().Named("server.events")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("server.events")
	}
	return &ZapEventLogger{logger: l}
}

func (l *ZapEventLogger) Log(ctx context.Context, event ServerEvent) {
	l.logger.Info("server event",
		zap.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
		zap.String("action", event.Action),
		zap.String("message", event.Message),
		zap.Any("meta", event.Meta),
	)
}
