package onboarding

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go-onboarding/internal/assets"
	"go-onboarding/internal/audit"
	"go-onboarding/internal/compensation"
	"go-onboarding/internal/domain"
	"go-onboarding/internal/invite"
	"go-onboarding/internal/mailer"
	onboardingerrors "go-onboarding/internal/onboarding/errors"
	"go-onboarding/internal/otp"
	"go-onboarding/internal/session"
	"go-onboarding/internal/shared/apperror"
	"go-onboarding/internal/shared/clock"
	"go-onboarding/internal/shared/contextutil"
	"go-onboarding/internal/throttle"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const SummaryCacheKey = "onboardings:summary"

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type Service interface {
	Create(ctx context.Context, actor domain.Actor, req CreateOnboardingRequest) (OnboardingResponse, error)
	GetByID(ctx context.Context, id string) (OnboardingResponse, error)
	List(ctx context.Context, filter ListFilter) ([]OnboardingResponse, int64, error)
	Summary(ctx context.Context) (SummaryResponse, error)
	ListAuditLogs(ctx context.Context, id string) ([]AuditLogResponse, error)
	ResendInvite(ctx context.Context, actor domain.Actor, id string) (OnboardingResponse, error)
	RequestModification(ctx context.Context, actor domain.Actor, id string, req RequestModificationRequest) (OnboardingResponse, error)
	ConfirmDetails(ctx context.Context, actor domain.Actor, id string) (OnboardingResponse, error)
	Approve(ctx context.Context, actor domain.Actor, id string, req ApproveRequest) (OnboardingResponse, error)
	Terminate(ctx context.Context, actor domain.Actor, id string, req TerminateRequest) (OnboardingResponse, error)
	Restore(ctx context.Context, actor domain.Actor, id string) (OnboardingResponse, error)
	CompleteForm(ctx context.Context, actor domain.Actor, id string, req FormRequest) (OnboardingResponse, error)
	Delete(ctx context.Context, actor domain.Actor, id string) error
}

// Deps are the collaborators of the lifecycle services. Assets, Throttle and
// Cache are optional.
type Deps struct {
	Repo      Repository
	AuditLogs audit.Repository
	Audit     audit.Recorder
	Invites   *invite.Manager
	Otps      *otp.Manager
	Sessions  *session.Issuer
	Runner    *compensation.Runner
	Mailer    mailer.Mailer
	Assets    assets.Store
	Throttle  throttle.OtpThrottle
	Cache     redis.Cmdable
	CacheTTL  time.Duration
	Clock     clock.Clock
	Validate  *validator.Validate
	// InviteURL is the employee page the raw invite token is appended to.
	InviteURL string
}

type service struct {
	repo      Repository
	auditLogs audit.Repository
	audit     audit.Recorder
	invites   *invite.Manager
	otps      *otp.Manager
	sessions  *session.Issuer
	runner    *compensation.Runner
	mailer    mailer.Mailer
	assets    assets.Store
	throttle  throttle.OtpThrottle
	cache     redis.Cmdable
	cacheTTL  time.Duration
	clock     clock.Clock
	validate  *validator.Validate
	inviteURL string
	sf        *singleflight.Group
	logger    *zap.Logger
}

func NewService(deps Deps, logger ...*zap.Logger) Service {
	return newService(deps, "onboarding.service", logger...)
}

func newService(deps Deps, name string, logger ...*zap.Logger) *service {
	l := zap.L().Named(name)
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named(name)
	}
	if deps.Clock == nil {
		deps.Clock = clock.Real{}
	}
	if deps.Validate == nil {
		deps.Validate = validator.New()
	}
	if deps.Assets == nil {
		deps.Assets = assets.NewNoopStore()
	}
	if deps.CacheTTL <= 0 {
		deps.CacheTTL = time.Minute
	}
	return &service{
		repo:      deps.Repo,
		auditLogs: deps.AuditLogs,
		audit:     deps.Audit,
		invites:   deps.Invites,
		otps:      deps.Otps,
		sessions:  deps.Sessions,
		runner:    deps.Runner,
		mailer:    deps.Mailer,
		assets:    deps.Assets,
		throttle:  deps.Throttle,
		cache:     deps.Cache,
		cacheTTL:  deps.CacheTTL,
		clock:     deps.Clock,
		validate:  deps.Validate,
		inviteURL: deps.InviteURL,
		sf:        &singleflight.Group{},
		logger:    l,
	}
}

func (s *service) Create(ctx context.Context, actor domain.Actor, req CreateOnboardingRequest) (OnboardingResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	sub := domain.Subsidiary(strings.ToUpper(req.Subsidiary))
	if !sub.Valid() {
		return OnboardingResponse{}, onboardingerrors.ErrInvalidSubsidiary
	}
	method := domain.Method(strings.ToUpper(req.Method))
	if !method.Valid() {
		return OnboardingResponse{}, onboardingerrors.ErrInvalidMethod
	}
	s.logger.Debug("create onboarding requested",
		zap.String("request_id", rid),
		zap.String("subsidiary", string(sub)),
		zap.String("method", string(method)),
	)

	now := s.clock.Now()
	o := &domain.Onboarding{
		ID:         uuid.New(),
		Subsidiary: sub,
		Method:     method,
		Status:     initialStatus(method),
		Email:      strings.ToLower(strings.TrimSpace(req.Email)),
		FirstName:  strings.TrimSpace(req.FirstName),
		LastName:   strings.TrimSpace(req.LastName),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	var rawToken string
	if method == domain.MethodDigital {
		raw, inv, err := s.invites.Issue()
		if err != nil {
			s.logger.Error("create onboarding issue invite failed", zap.String("request_id", rid), zap.Error(err))
			return OnboardingResponse{}, err
		}
		rawToken = raw
		o.Invite = inv
	}

	err := s.runner.Run(ctx, compensation.Action{
		Name: "create",
		Mutate: func(ctx context.Context) error {
			if err := s.repo.Create(ctx, o); err != nil {
				s.logger.Error("create onboarding persist failed", zap.String("request_id", rid), zap.Error(err))
				return mapRepositoryError(err)
			}
			return nil
		},
		SideEffect: func(ctx context.Context) error {
			to := mailer.RecipientOf(o)
			if method == domain.MethodDigital {
				return s.mailer.SendInvitation(ctx, to, s.inviteLink(rawToken), *o.Invite.ExpiresAt)
			}
			return s.mailer.SendManualForm(ctx, to, o.Subsidiary)
		},
		// No snapshot exists for a new record; undo by deleting it.
		Compensate: func(ctx context.Context) error {
			return s.repo.Delete(ctx, o.ID)
		},
		OnSuccess: s.recordFor(o, domain.AuditActionCreated, actor, "Onboarding created", map[string]any{
			"method": string(method),
		}),
	})
	if err != nil {
		return OnboardingResponse{}, err
	}

	s.logger.Info("create onboarding success",
		zap.String("request_id", rid),
		zap.String("onboarding_id", o.ID.String()),
		zap.String("status", string(o.Status)),
	)
	return mapToResponse(o), nil
}

func (s *service) GetByID(ctx context.Context, id string) (OnboardingResponse, error) {
	o, err := s.load(ctx, id)
	if err != nil {
		return OnboardingResponse{}, err
	}
	return mapToResponse(o), nil
}

func (s *service) List(ctx context.Context, filter ListFilter) ([]OnboardingResponse, int64, error) {
	params := ListParams{}
	if filter.Subsidiary != "" {
		params.Subsidiary = domain.Subsidiary(strings.ToUpper(filter.Subsidiary))
		if !params.Subsidiary.Valid() {
			return nil, 0, onboardingerrors.ErrInvalidSubsidiary
		}
	}
	if filter.Status != "" {
		params.Status = domain.Status(filter.Status)
		if !params.Status.Valid() {
			return nil, 0, onboardingerrors.ErrInvalidStatus
		}
	}

	page, size := normalizePage(filter.Page, filter.PageSize)
	params.Limit = size
	params.Offset = (page - 1) * size

	items, total, err := s.repo.List(ctx, params)
	if err != nil {
		s.logger.Error("list onboardings failed", zap.Error(err))
		return nil, 0, mapRepositoryError(err)
	}
	return mapToListResponse(items), total, nil
}

func normalizePage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return page, size
}

// Summary is cached in Redis. The lifecycle consumer drops the key whenever
// an onboarding changes, so the TTL only bounds staleness when it is down.
func (s *service) Summary(ctx context.Context) (SummaryResponse, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, SummaryCacheKey).Result(); err == nil {
			var resp SummaryResponse
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return resp, nil
			}
		}
	}

	v, err, _ := s.sf.Do(SummaryCacheKey, func() (interface{}, error) {
		rows, err := s.repo.CountByStatus(ctx)
		if err != nil {
			s.logger.Error("count onboardings by status failed", zap.Error(err))
			return nil, mapRepositoryError(err)
		}

		resp := SummaryResponse{BySubsidiary: map[string]map[string]int64{}}
		for _, row := range rows {
			sub := string(row.Subsidiary)
			if resp.BySubsidiary[sub] == nil {
				resp.BySubsidiary[sub] = map[string]int64{}
			}
			resp.BySubsidiary[sub][string(row.Status)] = row.Count
			resp.Total += row.Count
		}

		if s.cache != nil {
			if data, err := json.Marshal(resp); err == nil {
				if err := s.cache.Set(ctx, SummaryCacheKey, data, s.cacheTTL).Err(); err != nil {
					s.logger.Warn("cache onboarding summary failed", zap.Error(err))
				}
			}
		}
		return resp, nil
	})
	if err != nil {
		return SummaryResponse{}, err
	}
	return v.(SummaryResponse), nil
}

func (s *service) ListAuditLogs(ctx context.Context, id string) ([]AuditLogResponse, error) {
	o, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	entries, err := s.auditLogs.ListByOnboarding(ctx, o.ID)
	if err != nil {
		s.logger.Error("list audit logs failed", zap.String("onboarding_id", o.ID.String()), zap.Error(err))
		return nil, err
	}
	return mapToAuditResponse(entries), nil
}

func (s *service) ResendInvite(ctx context.Context, actor domain.Actor, id string) (OnboardingResponse, error) {
	o, err := s.load(ctx, id)
	if err != nil {
		return OnboardingResponse{}, err
	}
	if err := guardResendInvite(o); err != nil {
		return OnboardingResponse{}, err
	}

	snapshot := o.Clone()
	raw, err := s.invites.Rotate(o)
	if err != nil {
		return OnboardingResponse{}, err
	}
	o.OTP = domain.OTP{}
	o.UpdatedAt = s.clock.Now()

	err = s.runner.Run(ctx, compensation.Action{
		Name:   "resend_invite",
		Mutate: s.saveIfStatus(o, snapshot.Status, resendInviteColumns),
		SideEffect: func(ctx context.Context) error {
			return s.mailer.SendInvitation(ctx, mailer.RecipientOf(o), s.inviteLink(raw), *o.Invite.ExpiresAt)
		},
		Compensate: s.restoreSnapshot(snapshot, o.Status, resendInviteColumns),
		OnSuccess:  s.recordFor(o, domain.AuditActionInviteResent, actor, "Invite resent", nil),
	})
	if err != nil {
		return OnboardingResponse{}, err
	}
	return mapToResponse(o), nil
}

func (s *service) RequestModification(ctx context.Context, actor domain.Actor, id string, req RequestModificationRequest) (OnboardingResponse, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return OnboardingResponse{}, apperror.RequiredField("message")
	}

	o, err := s.load(ctx, id)
	if err != nil {
		return OnboardingResponse{}, err
	}
	if err := guardRequestModification(o); err != nil {
		return OnboardingResponse{}, err
	}

	snapshot := o.Clone()
	raw, err := s.invites.Rotate(o)
	if err != nil {
		return OnboardingResponse{}, err
	}
	now := s.clock.Now()
	o.OTP = domain.OTP{}
	o.Status = domain.StatusModificationRequested
	o.ModificationRequestMessage = &message
	o.ModificationRequestedAt = &now
	o.UpdatedAt = now

	err = s.runner.Run(ctx, compensation.Action{
		Name:   "request_modification",
		Mutate: s.saveIfStatus(o, snapshot.Status, requestModificationColumns),
		SideEffect: func(ctx context.Context) error {
			return s.mailer.SendModificationRequest(ctx, mailer.RecipientOf(o), message, s.inviteLink(raw))
		},
		Compensate: s.restoreSnapshot(snapshot, o.Status, requestModificationColumns),
		OnSuccess: s.recordFor(o, domain.AuditActionModificationRequested, actor, message, map[string]any{
			"from": string(snapshot.Status),
		}),
	})
	if err != nil {
		return OnboardingResponse{}, err
	}
	return mapToResponse(o), nil
}

func (s *service) ConfirmDetails(ctx context.Context, actor domain.Actor, id string) (OnboardingResponse, error) {
	o, err := s.load(ctx, id)
	if err != nil {
		return OnboardingResponse{}, err
	}
	if err := guardConfirmDetails(o); err != nil {
		return OnboardingResponse{}, err
	}

	snapshot := o.Clone()
	o.Status = domain.StatusDetailsConfirmed
	o.UpdatedAt = s.clock.Now()

	err = s.runner.Run(ctx, compensation.Action{
		Name:   "confirm_details",
		Mutate: s.saveIfStatus(o, snapshot.Status, statusColumns),
		SideEffect: func(ctx context.Context) error {
			return s.mailer.SendDetailsConfirmed(ctx, mailer.RecipientOf(o))
		},
		Compensate: s.restoreSnapshot(snapshot, o.Status, statusColumns),
		OnSuccess: s.recordFor(o, domain.AuditActionDetailsConfirmed, actor, "Details confirmed", map[string]any{
			"from": string(snapshot.Status),
		}),
	})
	if err != nil {
		return OnboardingResponse{}, err
	}
	return mapToResponse(o), nil
}

func (s *service) Approve(ctx context.Context, actor domain.Actor, id string, req ApproveRequest) (OnboardingResponse, error) {
	number := strings.TrimSpace(req.EmployeeNumber)
	if number == "" {
		return OnboardingResponse{}, apperror.RequiredField("employee_number")
	}

	o, err := s.load(ctx, id)
	if err != nil {
		return OnboardingResponse{}, err
	}
	if err := guardApprove(o); err != nil {
		return OnboardingResponse{}, err
	}

	// Fast path only; the unique constraint decides under a race.
	taken, err := s.repo.EmployeeNumberTaken(ctx, o.Subsidiary, number, o.ID)
	if err != nil {
		s.logger.Error("approve employee number check failed", zap.Error(err))
		return OnboardingResponse{}, mapRepositoryError(err)
	}
	if taken {
		return OnboardingResponse{}, onboardingerrors.ErrEmployeeNumberTaken
	}

	snapshot := o.Clone()
	now := s.clock.Now()
	o.Status = domain.StatusApproved
	o.EmployeeNumber = &number
	o.ApprovedAt = &now
	o.CompletedAt = &now
	o.IsCompleted = true
	o.UpdatedAt = now
	if o.Method == domain.MethodDigital {
		o.Invite = domain.Invite{}
		o.OTP = domain.OTP{}
	}

	err = s.runner.Run(ctx, compensation.Action{
		Name:   "approve",
		Mutate: s.saveIfStatus(o, snapshot.Status, approveColumns),
		SideEffect: func(ctx context.Context) error {
			return s.mailer.SendApproved(ctx, mailer.RecipientOf(o), number)
		},
		Compensate: s.restoreSnapshot(snapshot, o.Status, approveColumns),
		OnSuccess: s.recordFor(o, domain.AuditActionApproved, actor, "Onboarding approved", map[string]any{
			"from":            string(snapshot.Status),
			"employee_number": number,
		}),
	})
	if err != nil {
		return OnboardingResponse{}, err
	}
	return mapToResponse(o), nil
}

func (s *service) Terminate(ctx context.Context, actor domain.Actor, id string, req TerminateRequest) (OnboardingResponse, error) {
	termType := strings.TrimSpace(req.Type)
	if termType == "" {
		return OnboardingResponse{}, apperror.RequiredField("type")
	}

	o, err := s.load(ctx, id)
	if err != nil {
		return OnboardingResponse{}, err
	}
	if err := guardTerminate(o); err != nil {
		return OnboardingResponse{}, err
	}

	from := o.Status
	now := s.clock.Now()
	reason := strings.TrimSpace(req.Reason)
	o.Status = domain.StatusTerminated
	o.TerminationType = &termType
	o.TerminationReason = &reason
	o.TerminatedAt = &now
	o.UpdatedAt = now

	err = s.runner.Run(ctx, compensation.Action{
		Name:   "terminate",
		Mutate: s.saveIfStatus(o, from, terminateColumns),
		OnSuccess: s.recordFor(o, domain.AuditActionTerminated, actor, "Onboarding terminated", map[string]any{
			"from":   string(from),
			"type":   termType,
			"reason": reason,
		}),
	})
	if err != nil {
		return OnboardingResponse{}, err
	}
	return mapToResponse(o), nil
}

func (s *service) Restore(ctx context.Context, actor domain.Actor, id string) (OnboardingResponse, error) {
	o, err := s.load(ctx, id)
	if err != nil {
		return OnboardingResponse{}, err
	}
	if err := guardTerminated(o); err != nil {
		return OnboardingResponse{}, err
	}

	o.Status = restoredStatus(o)
	o.TerminationType = nil
	o.TerminationReason = nil
	o.TerminatedAt = nil
	o.UpdatedAt = s.clock.Now()

	err = s.runner.Run(ctx, compensation.Action{
		Name:   "restore",
		Mutate: s.saveIfStatus(o, domain.StatusTerminated, terminateColumns),
		OnSuccess: s.recordFor(o, domain.AuditActionRestored, actor, "Onboarding restored", map[string]any{
			"to": string(o.Status),
		}),
	})
	if err != nil {
		return OnboardingResponse{}, err
	}
	return mapToResponse(o), nil
}

func (s *service) CompleteForm(ctx context.Context, actor domain.Actor, id string, req FormRequest) (OnboardingResponse, error) {
	o, err := s.load(ctx, id)
	if err != nil {
		return OnboardingResponse{}, err
	}
	if err := guardCompleteForm(o); err != nil {
		return OnboardingResponse{}, err
	}

	form, err := domain.DecodeForm(o.Subsidiary, req.Form)
	if err != nil {
		return OnboardingResponse{}, onboardingerrors.ErrInvalidFormPayload.WithDetails(map[string]any{"error": err.Error()})
	}
	if !domain.FormComplete(s.validate, form) {
		return OnboardingResponse{}, onboardingerrors.ErrFormIncomplete
	}

	from := o.Status
	now := s.clock.Now()
	o.FormPayload = []byte(req.Form)
	o.IsFormComplete = true
	o.Status = submittedStatus(o)
	o.SubmittedAt = &now
	o.UpdatedAt = now

	err = s.runner.Run(ctx, compensation.Action{
		Name:   "complete_form",
		Mutate: s.saveIfStatus(o, from, submitFormColumns),
		OnSuccess: s.recordFor(o, domain.AuditActionSubmitted, actor, "Form completed by HR", map[string]any{
			"from": string(from),
		}),
	})
	if err != nil {
		return OnboardingResponse{}, err
	}
	return mapToResponse(o), nil
}

// Delete removes a terminated onboarding, its documents and its audit
// history. Nothing is recorded afterwards because the trail is gone with it.
func (s *service) Delete(ctx context.Context, actor domain.Actor, id string) error {
	o, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := guardTerminated(o); err != nil {
		return err
	}

	n, err := s.assets.DeleteForOnboarding(ctx, o.ID)
	if err != nil {
		s.logger.Error("delete onboarding assets failed",
			zap.String("onboarding_id", o.ID.String()),
			zap.Error(err),
		)
		return apperror.Wrap(err, apperror.CodeInternalError, "Documents could not be deleted", http.StatusInternalServerError)
	}

	if err := s.repo.DeleteTerminated(ctx, o.ID); err != nil {
		s.logger.Error("delete onboarding failed", zap.String("onboarding_id", o.ID.String()), zap.Error(err))
		return mapRepositoryError(err)
	}

	s.logger.Info("onboarding deleted",
		zap.String("request_id", contextutil.GetRequestID(ctx)),
		zap.String("onboarding_id", o.ID.String()),
		zap.String("actor_id", actor.ID),
		zap.Int("assets", n),
	)
	return nil
}

func (s *service) load(ctx context.Context, id string) (*domain.Onboarding, error) {
	oid, err := uuid.Parse(id)
	if err != nil {
		return nil, onboardingerrors.ErrInvalidOnboardingID
	}
	return s.loadByID(ctx, oid)
}

func (s *service) loadByID(ctx context.Context, id uuid.UUID) (*domain.Onboarding, error) {
	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("load onboarding failed", zap.String("onboarding_id", id.String()), zap.Error(err))
		}
		return nil, mapRepositoryError(err)
	}
	return o, nil
}

// Per-action column lists. An action writes only the columns it changes and
// never the OTP counters it read earlier.
var (
	resendInviteColumns        = joinColumns(inviteColumns, otpColumns, []string{"updated_at"})
	requestModificationColumns = joinColumns(statusColumns, inviteColumns, otpColumns, modificationColumns)
	approveColumns             = joinColumns(statusColumns, approvalColumns, inviteColumns, otpColumns)
	terminateColumns           = joinColumns(statusColumns, terminationColumns)
	submitFormColumns          = joinColumns(statusColumns, formColumns, submitColumns)
	issueOtpColumns            = joinColumns(otpColumns, []string{"updated_at"})
	employeeSubmitColumns      = joinColumns(statusColumns, submitColumns)
)

func (s *service) saveIfStatus(o *domain.Onboarding, expected domain.Status, columns []string) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if err := s.repo.UpdateIfStatus(ctx, o, expected, columns); err != nil {
			if errors.Is(err, domain.ErrConcurrentUpdate) {
				s.logger.Info("onboarding changed concurrently",
					zap.String("onboarding_id", o.ID.String()),
					zap.String("expected", string(expected)),
					zap.String("target", string(o.Status)),
				)
			} else {
				s.logger.Error("persist onboarding failed", zap.String("onboarding_id", o.ID.String()), zap.Error(err))
			}
			return mapRepositoryError(err)
		}
		return nil
	}
}

// restoreSnapshot writes the same columns back from snapshot, but only over
// the state this action produced.
func (s *service) restoreSnapshot(snapshot *domain.Onboarding, current domain.Status, columns []string) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		return s.repo.UpdateIfStatus(ctx, snapshot, current, columns)
	}
}

func (s *service) recordFor(o *domain.Onboarding, action domain.AuditAction, actor domain.Actor, message string, metadata map[string]any) func(ctx context.Context) {
	return func(ctx context.Context) {
		if s.audit == nil {
			return
		}
		s.audit.Record(ctx, audit.Entry{
			OnboardingID: o.ID,
			Subsidiary:   o.Subsidiary,
			Status:       o.Status,
			Action:       action,
			Actor:        actor,
			Message:      message,
			Metadata:     metadata,
		})
	}
}

func (s *service) inviteLink(raw string) string {
	return s.inviteURL + "?token=" + url.QueryEscape(raw)
}
