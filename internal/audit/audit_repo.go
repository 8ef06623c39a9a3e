package audit

import (
	"context"
	"database/sql"

	"go-onboarding/internal/domain"

	"github.com/google/uuid"
)

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, entry domain.AuditLogEntry) error
	ListByOnboarding(ctx context.Context, onboardingID uuid.UUID) ([]domain.AuditLogEntry, error)
}

type repository struct {
	db *sql.DB
	tx *sql.Tx
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

func (r *repository) Create(ctx context.Context, entry domain.AuditLogEntry) error {
	query := `
INSERT INTO audit_logs (
	id, onboarding_id, action, actor_type, actor_id, actor_name, actor_email, message, metadata, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
`
	metadata := []byte(entry.Metadata)
	if len(metadata) == 0 {
		metadata = []byte("{}")
	}
	_, err := r.execer().ExecContext(ctx, query,
		entry.ID, entry.OnboardingID, string(entry.Action), string(entry.ActorType),
		entry.ActorID, entry.ActorName, entry.ActorEmail, entry.Message, metadata, entry.CreatedAt,
	)
	return err
}

func (r *repository) ListByOnboarding(ctx context.Context, onboardingID uuid.UUID) ([]domain.AuditLogEntry, error) {
	query := `
SELECT id, onboarding_id, action, actor_type, actor_id, actor_name, actor_email, message, metadata, created_at
FROM audit_logs
WHERE onboarding_id = $1
ORDER BY created_at ASC, id ASC
`
	rows, err := r.db.QueryContext(ctx, query, onboardingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]domain.AuditLogEntry, 0)
	for rows.Next() {
		var (
			e        domain.AuditLogEntry
			action   string
			actor    string
			actorID  sql.NullString
			metadata []byte
		)
		if err := rows.Scan(
			&e.ID, &e.OnboardingID, &action, &actor, &actorID,
			&e.ActorName, &e.ActorEmail, &e.Message, &metadata, &e.CreatedAt,
		); err != nil {
			return nil, err
		}
		e.Action = domain.AuditAction(action)
		e.ActorType = domain.ActorType(actor)
		if actorID.Valid {
			e.ActorID = &actorID.String
		}
		e.Metadata = metadata
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *repository) execer() interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
} {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}
