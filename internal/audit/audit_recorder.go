package audit

import (
	"context"
	"database/sql"
	"encoding/json"

	"go-onboarding/internal/domain"
	"go-onboarding/internal/events"
	"go-onboarding/internal/messaging/kafka"
	"go-onboarding/internal/shared/clock"
	"go-onboarding/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Entry describes one completed lifecycle action.
type Entry struct {
	OnboardingID uuid.UUID
	Subsidiary   domain.Subsidiary
	Status       domain.Status
	Action       domain.AuditAction
	Actor        domain.Actor
	Message      string
	Metadata     map[string]any
}

// Recorder appends to the audit trail. Record never reports failure to the
// caller: the action it describes has already happened.
type Recorder interface {
	Record(ctx context.Context, entry Entry)
}

type recorder struct {
	db     *sql.DB
	repo   Repository
	outbox kafka.OutboxRepository
	clock  clock.Clock
	logger *zap.Logger
}

// NewRecorder writes the audit row and, when outbox is set, the lifecycle
// event in one transaction.
func NewRecorder(db *sql.DB, repo Repository, outbox kafka.OutboxRepository, clk clock.Clock, logger ...*zap.Logger) Recorder {
	l := zap.L().Named("audit.recorder")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("audit.recorder")
	}
	return &recorder{
		db:     db,
		repo:   repo,
		outbox: outbox,
		clock:  clk,
		logger: l,
	}
}

func (r *recorder) Record(ctx context.Context, entry Entry) {
	rid := contextutil.GetRequestID(ctx)
	// Audit writes outlive a cancelled request.
	ctx = context.WithoutCancel(ctx)

	if err := r.record(ctx, rid, entry); err != nil {
		r.logger.Error("audit write failed",
			zap.String("request_id", rid),
			zap.String("onboarding_id", entry.OnboardingID.String()),
			zap.String("action", string(entry.Action)),
			zap.Error(err),
		)
		return
	}

	r.logger.Debug("audit recorded",
		zap.String("request_id", rid),
		zap.String("onboarding_id", entry.OnboardingID.String()),
		zap.String("action", string(entry.Action)),
	)
}

func (r *recorder) record(ctx context.Context, rid string, entry Entry) error {
	row, err := r.toRow(entry)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := r.repo.WithTx(tx).Create(ctx, row); err != nil {
		return err
	}

	if r.outbox != nil {
		event := events.OnboardingLifecycleEvent{
			EventType:    string(entry.Action),
			RequestID:    rid,
			OnboardingID: entry.OnboardingID.String(),
			Subsidiary:   string(entry.Subsidiary),
			Status:       string(entry.Status),
			ActorType:    string(entry.Actor.Type),
			ActorID:      entry.Actor.ID,
			OccurredAt:   row.CreatedAt,
		}
		outboxEvent, err := kafka.NewOutboxEvent(
			events.OnboardingLifecycleTopic,
			"onboarding",
			event.OnboardingID,
			event.EventType,
			rid,
			event,
		)
		if err != nil {
			return err
		}
		if err := r.outbox.WithTx(tx).Create(ctx, outboxEvent); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *recorder) toRow(entry Entry) (domain.AuditLogEntry, error) {
	metadata := entry.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	raw, err := json.Marshal(metadata)
	if err != nil {
		return domain.AuditLogEntry{}, err
	}

	row := domain.AuditLogEntry{
		ID:           uuid.New(),
		OnboardingID: entry.OnboardingID,
		Action:       entry.Action,
		ActorType:    entry.Actor.Type,
		ActorName:    entry.Actor.Name,
		ActorEmail:   entry.Actor.Email,
		Message:      entry.Message,
		Metadata:     raw,
		CreatedAt:    r.clock.Now(),
	}
	if entry.Actor.ID != "" {
		id := entry.Actor.ID
		row.ActorID = &id
	}
	return row, nil
}
