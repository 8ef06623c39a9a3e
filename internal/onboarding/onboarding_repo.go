package onboarding

import (
	"context"
	"errors"
	"time"

	"go-onboarding/internal/domain"
	"go-onboarding/internal/tenant"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Column groups a lifecycle action may write. Identity, subsidiary, method
// and created_at are fixed at creation. The OTP counters are owned by the
// atomic OTP statements below and only an OTP issue or clear writes them here.
var (
	statusColumns       = []string{"status", "updated_at"}
	inviteColumns       = []string{"invite_token_hash", "invite_expires_at", "invite_last_sent_at"}
	otpColumns          = []string{"otp_hash", "otp_expires_at", "otp_attempts", "otp_locked_at", "otp_last_sent_at"}
	formColumns         = []string{"form_payload", "is_form_complete", "updated_at"}
	submitColumns       = []string{"submitted_at"}
	modificationColumns = []string{"modification_request_message", "modification_requested_at"}
	terminationColumns  = []string{"termination_type", "termination_reason", "terminated_at"}
	approvalColumns     = []string{"employee_number", "approved_at", "completed_at", "is_completed"}
)

// joinColumns joins groups into one select list without duplicates.
func joinColumns(groups ...[]string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, g := range groups {
		for _, c := range g {
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			out = append(out, c)
		}
	}
	return out
}

// errNoColumns guards against an update that would fall back to writing
// every field of the struct.
var errNoColumns = errors.New("onboarding update needs at least one column")

type StatusCount struct {
	Subsidiary domain.Subsidiary
	Status     domain.Status
	Count      int64
}

type ListParams struct {
	Subsidiary domain.Subsidiary
	Status     domain.Status
	Limit      int
	Offset     int
}

//go:generate mockgen -source=onboarding_repo.go -destination=mock/onboarding_repo_mock.go -package=mock
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Onboarding, error)
	FindByInviteTokenHash(ctx context.Context, tokenHash string) (*domain.Onboarding, error)
	Create(ctx context.Context, o *domain.Onboarding) error
	// UpdateIfStatus writes the named columns of o only while the stored
	// status still equals expected. Columns left out keep their stored
	// value. Zero rows matched is domain.ErrConcurrentUpdate.
	UpdateIfStatus(ctx context.Context, o *domain.Onboarding, expected domain.Status, columns []string) error
	Delete(ctx context.Context, id uuid.UUID) error
	// DeleteTerminated removes a terminated onboarding together with its
	// audit history.
	DeleteTerminated(ctx context.Context, id uuid.UUID) error
	EmployeeNumberTaken(ctx context.Context, subsidiary domain.Subsidiary, employeeNumber string, exclude uuid.UUID) (bool, error)
	IncrementOtpAttempts(ctx context.Context, id uuid.UUID, otpHash string, maxAttempts int, now time.Time) (int, *time.Time, error)
	// ResetOtpAttempts clears the counters of the OTP identified by otpHash
	// unless it was replaced or locked first, which is
	// domain.ErrConcurrentUpdate.
	ResetOtpAttempts(ctx context.Context, id uuid.UUID, otpHash string, now time.Time) error
	ReleaseOtpLock(ctx context.Context, id uuid.UUID, lockedAt time.Time, now time.Time) (bool, error)
	List(ctx context.Context, params ListParams) ([]domain.Onboarding, int64, error)
	CountByStatus(ctx context.Context) ([]StatusCount, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Onboarding, error) {
	var o domain.Onboarding
	err := r.db.WithContext(ctx).First(&o, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *repository) FindByInviteTokenHash(ctx context.Context, tokenHash string) (*domain.Onboarding, error) {
	var o domain.Onboarding
	err := r.db.WithContext(ctx).First(&o, "invite_token_hash = ?", tokenHash).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *repository) Create(ctx context.Context, o *domain.Onboarding) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *repository) UpdateIfStatus(ctx context.Context, o *domain.Onboarding, expected domain.Status, columns []string) error {
	if len(columns) == 0 {
		return errNoColumns
	}
	res := r.db.WithContext(ctx).
		Model(&domain.Onboarding{}).
		Where("id = ? AND status = ?", o.ID, expected).
		Select(columns).
		Updates(o)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrConcurrentUpdate
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Onboarding{}, "id = ?", id).Error
}

func (r *repository) DeleteTerminated(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND status = ?", id, domain.StatusTerminated).Delete(&domain.Onboarding{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrConcurrentUpdate
		}
		return tx.Where("onboarding_id = ?", id).Delete(&domain.AuditLogEntry{}).Error
	})
}

func (r *repository) EmployeeNumberTaken(ctx context.Context, subsidiary domain.Subsidiary, employeeNumber string, exclude uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Onboarding{}).
		Scopes(tenant.Scope(subsidiary)).
		Where("employee_number = ? AND id <> ?", employeeNumber, exclude).
		Count(&count).Error
	return count > 0, err
}

type otpCounter struct {
	OtpAttempts int
	OtpLockedAt *time.Time
}

// The CASE reads the pre-update otp_attempts, so otp_attempts + 1 is the new
// count in both SET expressions.
const incrementOtpAttemptsSQL = `
UPDATE onboardings
SET otp_attempts = otp_attempts + 1,
    otp_locked_at = CASE WHEN otp_attempts + 1 >= ? THEN ?::timestamptz ELSE NULL END,
    updated_at = ?
WHERE id = ? AND otp_hash = ? AND otp_locked_at IS NULL
RETURNING otp_attempts, otp_locked_at`

func (r *repository) IncrementOtpAttempts(ctx context.Context, id uuid.UUID, otpHash string, maxAttempts int, now time.Time) (int, *time.Time, error) {
	var out otpCounter
	res := r.db.WithContext(ctx).
		Raw(incrementOtpAttemptsSQL, maxAttempts, now, now, id, otpHash).
		Scan(&out)
	if res.Error != nil {
		return 0, nil, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, nil, domain.ErrConcurrentUpdate
	}
	return out.OtpAttempts, out.OtpLockedAt, nil
}

func (r *repository) ResetOtpAttempts(ctx context.Context, id uuid.UUID, otpHash string, now time.Time) error {
	res := r.db.WithContext(ctx).
		Exec(`UPDATE onboardings SET otp_attempts = 0, otp_locked_at = NULL, updated_at = ? WHERE id = ? AND otp_hash = ? AND otp_locked_at IS NULL`,
			now, id, otpHash)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrConcurrentUpdate
	}
	return nil
}

func (r *repository) ReleaseOtpLock(ctx context.Context, id uuid.UUID, lockedAt time.Time, now time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Exec(`UPDATE onboardings SET otp_attempts = 0, otp_locked_at = NULL, updated_at = ? WHERE id = ? AND otp_locked_at = ?`,
			now, id, lockedAt)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) List(ctx context.Context, params ListParams) ([]domain.Onboarding, int64, error) {
	q := r.db.WithContext(ctx).
		Model(&domain.Onboarding{}).
		Scopes(tenant.Scope(params.Subsidiary))
	if params.Status != "" {
		q = q.Where("status = ?", params.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []domain.Onboarding
	err := q.Order("created_at DESC").
		Limit(params.Limit).
		Offset(params.Offset).
		Find(&items).Error
	return items, total, err
}

func (r *repository) CountByStatus(ctx context.Context) ([]StatusCount, error) {
	var rows []StatusCount
	err := r.db.WithContext(ctx).
		Model(&domain.Onboarding{}).
		Select("subsidiary, status, COUNT(*) AS count").
		Group("subsidiary, status").
		Scan(&rows).Error
	return rows, err
}
