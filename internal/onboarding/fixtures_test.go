package onboarding_test

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"go-onboarding/internal/audit"
	"go-onboarding/internal/compensation"
	"go-onboarding/internal/domain"
	"go-onboarding/internal/invite"
	mailerMock "go-onboarding/internal/mailer/mock"
	"go-onboarding/internal/onboarding"
	"go-onboarding/internal/otp"
	"go-onboarding/internal/session"
	"go-onboarding/internal/shared/apperror"
	"go-onboarding/internal/shared/clock"
	"go-onboarding/internal/shared/secure"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"gorm.io/gorm"
)

const otpCode = "424242"

const completeIndiaForm = `{
	"personal": {
		"first_name": "Asha",
		"last_name": "Rao",
		"date_of_birth": "1994-02-11",
		"phone": "+919800000000",
		"address_line1": "12 MG Road",
		"city": "Bengaluru",
		"postal_code": "560001"
	},
	"bank": {"account_holder": "Asha Rao", "account_number": "0012345678"},
	"pan": "ABCDE1234F",
	"aadhaar": "123412341234",
	"ifsc": "HDFC0000123"
}`

const partialIndiaForm = `{"personal": {"first_name": "Asha"}}`

var start = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

var hr = domain.Actor{Type: domain.ActorHR, ID: "hr-1", Name: "Hana HR", Email: "hana@corp.test"}

// memRepo mirrors the conditional writes of the postgres repository.
type memRepo struct {
	mu     sync.Mutex
	rows   map[uuid.UUID]*domain.Onboarding
	counts int

	// onFind runs after a record was read, outside the lock.
	onFind func()
}

func newMemRepo() *memRepo {
	return &memRepo{rows: map[uuid.UUID]*domain.Onboarding{}}
}

func (r *memRepo) put(o *domain.Onboarding) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[o.ID] = o.Clone()
}

func (r *memRepo) get(t *testing.T, id uuid.UUID) *domain.Onboarding {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.rows[id]
	require.True(t, ok, "onboarding %s not stored", id)
	return o.Clone()
}

func (r *memRepo) exists(id uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.rows[id]
	return ok
}

func (r *memRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Onboarding, error) {
	r.mu.Lock()
	o, ok := r.rows[id]
	var cp *domain.Onboarding
	if ok {
		cp = o.Clone()
	}
	hook := r.onFind
	r.mu.Unlock()

	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if hook != nil {
		hook()
	}
	return cp, nil
}

func (r *memRepo) FindByInviteTokenHash(ctx context.Context, tokenHash string) (*domain.Onboarding, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.rows {
		if o.Invite.TokenHash != nil && *o.Invite.TokenHash == tokenHash {
			return o.Clone(), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memRepo) Create(ctx context.Context, o *domain.Onboarding) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[o.ID]; ok {
		return errors.New("duplicate key value violates unique constraint \"onboardings_pkey\"")
	}
	r.rows[o.ID] = o.Clone()
	return nil
}

func (r *memRepo) UpdateIfStatus(ctx context.Context, o *domain.Onboarding, expected domain.Status, columns []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(columns) == 0 {
		return errors.New("no columns to update")
	}
	cur, ok := r.rows[o.ID]
	if !ok || cur.Status != expected {
		return domain.ErrConcurrentUpdate
	}
	if o.EmployeeNumber != nil && slices.Contains(columns, "employee_number") {
		for id, other := range r.rows {
			if id != o.ID && other.Subsidiary == o.Subsidiary && other.EmployeeNumber != nil && *other.EmployeeNumber == *o.EmployeeNumber {
				return &pgconn.PgError{Code: "23505", ConstraintName: "uq_onboarding_employee_number"}
			}
		}
	}
	next := cur.Clone()
	copyColumns(next, o.Clone(), columns)
	r.rows[o.ID] = next
	return nil
}

// copyColumns mirrors a column-restricted UPDATE.
func copyColumns(dst, src *domain.Onboarding, columns []string) {
	for _, c := range columns {
		switch c {
		case "status":
			dst.Status = src.Status
		case "email":
			dst.Email = src.Email
		case "first_name":
			dst.FirstName = src.FirstName
		case "last_name":
			dst.LastName = src.LastName
		case "invite_token_hash":
			dst.Invite.TokenHash = src.Invite.TokenHash
		case "invite_expires_at":
			dst.Invite.ExpiresAt = src.Invite.ExpiresAt
		case "invite_last_sent_at":
			dst.Invite.LastSentAt = src.Invite.LastSentAt
		case "otp_hash":
			dst.OTP.Hash = src.OTP.Hash
		case "otp_expires_at":
			dst.OTP.ExpiresAt = src.OTP.ExpiresAt
		case "otp_attempts":
			dst.OTP.Attempts = src.OTP.Attempts
		case "otp_locked_at":
			dst.OTP.LockedAt = src.OTP.LockedAt
		case "otp_last_sent_at":
			dst.OTP.LastSentAt = src.OTP.LastSentAt
		case "employee_number":
			dst.EmployeeNumber = src.EmployeeNumber
		case "is_form_complete":
			dst.IsFormComplete = src.IsFormComplete
		case "is_completed":
			dst.IsCompleted = src.IsCompleted
		case "form_payload":
			dst.FormPayload = src.FormPayload
		case "modification_request_message":
			dst.ModificationRequestMessage = src.ModificationRequestMessage
		case "modification_requested_at":
			dst.ModificationRequestedAt = src.ModificationRequestedAt
		case "termination_type":
			dst.TerminationType = src.TerminationType
		case "termination_reason":
			dst.TerminationReason = src.TerminationReason
		case "terminated_at":
			dst.TerminatedAt = src.TerminatedAt
		case "updated_at":
			dst.UpdatedAt = src.UpdatedAt
		case "submitted_at":
			dst.SubmittedAt = src.SubmittedAt
		case "approved_at":
			dst.ApprovedAt = src.ApprovedAt
		case "completed_at":
			dst.CompletedAt = src.CompletedAt
		default:
			panic("unknown column " + c)
		}
	}
}

func (r *memRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, id)
	return nil
}

func (r *memRepo) DeleteTerminated(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.rows[id]
	if !ok || o.Status != domain.StatusTerminated {
		return domain.ErrConcurrentUpdate
	}
	delete(r.rows, id)
	return nil
}

func (r *memRepo) EmployeeNumberTaken(ctx context.Context, subsidiary domain.Subsidiary, employeeNumber string, exclude uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, o := range r.rows {
		if id != exclude && o.Subsidiary == subsidiary && o.EmployeeNumber != nil && *o.EmployeeNumber == employeeNumber {
			return true, nil
		}
	}
	return false, nil
}

func (r *memRepo) IncrementOtpAttempts(ctx context.Context, id uuid.UUID, otpHash string, maxAttempts int, now time.Time) (int, *time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.rows[id]
	if !ok || o.OTP.Hash == nil || *o.OTP.Hash != otpHash || o.OTP.LockedAt != nil {
		return 0, nil, domain.ErrConcurrentUpdate
	}
	o.OTP.Attempts++
	if o.OTP.Attempts >= maxAttempts {
		o.OTP.LockedAt = domain.TimePtr(now)
	}
	return o.OTP.Attempts, o.Clone().OTP.LockedAt, nil
}

func (r *memRepo) ResetOtpAttempts(ctx context.Context, id uuid.UUID, otpHash string, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.rows[id]
	if !ok || o.OTP.Hash == nil || *o.OTP.Hash != otpHash || o.OTP.LockedAt != nil {
		return domain.ErrConcurrentUpdate
	}
	o.OTP.Attempts = 0
	o.OTP.LockedAt = nil
	return nil
}

func (r *memRepo) ReleaseOtpLock(ctx context.Context, id uuid.UUID, lockedAt time.Time, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.rows[id]
	if !ok || o.OTP.LockedAt == nil || !o.OTP.LockedAt.Equal(lockedAt) {
		return false, nil
	}
	o.OTP.Attempts = 0
	o.OTP.LockedAt = nil
	return true, nil
}

func (r *memRepo) List(ctx context.Context, params onboarding.ListParams) ([]domain.Onboarding, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Onboarding
	for _, o := range r.rows {
		if params.Subsidiary != "" && o.Subsidiary != params.Subsidiary {
			continue
		}
		if params.Status != "" && o.Status != params.Status {
			continue
		}
		out = append(out, *o.Clone())
	}
	return out, int64(len(out)), nil
}

func (r *memRepo) CountByStatus(ctx context.Context) ([]onboarding.StatusCount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counts++
	counts := map[onboarding.StatusCount]int64{}
	for _, o := range r.rows {
		counts[onboarding.StatusCount{Subsidiary: o.Subsidiary, Status: o.Status}]++
	}
	var out []onboarding.StatusCount
	for k, n := range counts {
		k.Count = n
		out = append(out, k)
	}
	return out, nil
}

type fakeRecorder struct {
	mu      sync.Mutex
	entries []audit.Entry
}

func (f *fakeRecorder) Record(ctx context.Context, entry audit.Entry) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, entry)
}

func (f *fakeRecorder) actions() []domain.AuditAction {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.AuditAction, 0, len(f.entries))
	for _, e := range f.entries {
		out = append(out, e.Action)
	}
	return out
}

type fakeThrottle struct {
	wait     int
	err      error
	released []uuid.UUID
}

func (f *fakeThrottle) Acquire(ctx context.Context, id uuid.UUID) (int, error) {
	return f.wait, f.err
}

func (f *fakeThrottle) Release(ctx context.Context, id uuid.UUID) {
	f.released = append(f.released, id)
}

type fixedDigits struct {
	secure.RandomSource
}

func (fixedDigits) Digits(n int) (string, error) { return otpCode, nil }

type serviceDeps struct {
	repo      *memRepo
	mailer    *mailerMock.MockMailer
	audit     *fakeRecorder
	throttle  *fakeThrottle
	clock     *clock.Fixed
	invites   *invite.Manager
	sessions  *session.Issuer
	redismock redismock.ClientMock
	service   onboarding.Service
	employee  onboarding.EmployeeService
}

func setupServiceTest(t *testing.T) *serviceDeps {
	t.Helper()
	ctrl := gomock.NewController(t)

	hasher, err := secure.NewHMACHasher("test-secret")
	require.NoError(t, err)
	random := fixedDigits{RandomSource: secure.NewCryptoRandom()}

	clk := clock.NewFixed(start)
	repo := newMemRepo()
	sessions, err := session.NewIssuer("session-secret", clk)
	require.NoError(t, err)
	rdb, redisMock := redismock.NewClientMock()

	deps := &serviceDeps{
		repo:      repo,
		mailer:    mailerMock.NewMockMailer(ctrl),
		audit:     &fakeRecorder{},
		throttle:  &fakeThrottle{},
		clock:     clk,
		invites:   invite.NewManager(repo, hasher, random, clk, 7*24*time.Hour),
		sessions:  sessions,
		redismock: redisMock,
	}

	d := onboarding.Deps{
		Repo:    repo,
		Audit:   deps.audit,
		Invites: deps.invites,
		Otps: otp.NewManager(repo, hasher, random, clk, otp.Config{
			TTL:          10 * time.Minute,
			MaxAttempts:  3,
			LockDuration: 15 * time.Minute,
		}),
		Sessions:  sessions,
		Runner:    compensation.NewRunner(time.Second),
		Mailer:    deps.mailer,
		Throttle:  deps.throttle,
		Cache:     rdb,
		CacheTTL:  time.Minute,
		Clock:     clk,
		InviteURL: "https://onboarding.test/start",
	}
	deps.service = onboarding.NewService(d)
	deps.employee = onboarding.NewEmployeeService(d)
	return deps
}

// seedDigital stores a digital onboarding with a live invite and returns it
// together with the raw token.
func (d *serviceDeps) seedDigital(t *testing.T, mutate func(o *domain.Onboarding)) (*domain.Onboarding, string) {
	t.Helper()
	raw, inv, err := d.invites.Issue()
	require.NoError(t, err)

	o := &domain.Onboarding{
		ID:         uuid.New(),
		Subsidiary: domain.SubsidiaryIndia,
		Method:     domain.MethodDigital,
		Status:     domain.StatusInviteGenerated,
		Email:      "asha.rao@example.test",
		FirstName:  "Asha",
		LastName:   "Rao",
		Invite:     inv,
		CreatedAt:  start,
		UpdatedAt:  start,
	}
	if mutate != nil {
		mutate(o)
	}
	d.repo.put(o)
	return o, raw
}

func (d *serviceDeps) seedManual(t *testing.T, mutate func(o *domain.Onboarding)) *domain.Onboarding {
	t.Helper()
	o := &domain.Onboarding{
		ID:         uuid.New(),
		Subsidiary: domain.SubsidiaryIndia,
		Method:     domain.MethodManual,
		Status:     domain.StatusManualPDFSent,
		Email:      "ravi@example.test",
		FirstName:  "Ravi",
		CreatedAt:  start,
		UpdatedAt:  start,
	}
	if mutate != nil {
		mutate(o)
	}
	d.repo.put(o)
	return o
}

func submitted(o *domain.Onboarding) {
	o.Status = domain.StatusSubmitted
	o.IsFormComplete = true
	o.FormPayload = []byte(completeIndiaForm)
	o.SubmittedAt = domain.TimePtr(start)
}

func appCode(t *testing.T, err error) (string, int) {
	t.Helper()
	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	return appErr.Code, appErr.HTTPStatus
}
