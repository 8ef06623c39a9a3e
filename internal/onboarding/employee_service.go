package onboarding

import (
	"context"
	"errors"

	"go-onboarding/internal/access"
	"go-onboarding/internal/compensation"
	"go-onboarding/internal/domain"
	"go-onboarding/internal/mailer"
	onboardingerrors "go-onboarding/internal/onboarding/errors"
	"go-onboarding/internal/session"
	"go-onboarding/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EmployeeService backs the employee-facing channel: invite link, OTP
// challenge and the onboarding form.
type EmployeeService interface {
	VerifyInvite(ctx context.Context, req VerifyInviteRequest) (VerifyInviteResponse, error)
	VerifyOtp(ctx context.Context, req VerifyOtpRequest) (EmployeeOnboardingResponse, session.Cookie, error)
	GetOnboarding(ctx context.Context, cred EmployeeCredential) (EmployeeOnboardingResponse, error)
	SaveForm(ctx context.Context, cred EmployeeCredential, req FormRequest) (EmployeeOnboardingResponse, error)
	Submit(ctx context.Context, cred EmployeeCredential) (EmployeeOnboardingResponse, error)
}

func NewEmployeeService(deps Deps, logger ...*zap.Logger) EmployeeService {
	return newService(deps, "onboarding.employee_service", logger...)
}

func employeeActor(o *domain.Onboarding) domain.Actor {
	return domain.Actor{
		Type:  domain.ActorEmployee,
		ID:    o.ID.String(),
		Name:  o.FullName(),
		Email: o.Email,
	}
}

// VerifyInvite resolves the invite link and sends a fresh OTP.
func (s *service) VerifyInvite(ctx context.Context, req VerifyInviteRequest) (VerifyInviteResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	o, err := s.invites.Validate(ctx, req.Token)
	if err != nil {
		return VerifyInviteResponse{}, err
	}

	if s.throttle != nil {
		wait, err := s.throttle.Acquire(ctx, o.ID)
		if err != nil {
			// Redis being down must not lock employees out.
			s.logger.Warn("otp throttle unavailable", zap.String("request_id", rid), zap.Error(err))
		} else if wait > 0 {
			return VerifyInviteResponse{}, onboardingerrors.OtpThrottled(wait)
		}
	}

	snapshot := o.Clone()
	code, err := s.otps.Issue(o)
	if err != nil {
		s.releaseThrottle(ctx, o.ID)
		return VerifyInviteResponse{}, err
	}
	o.UpdatedAt = s.clock.Now()

	err = s.runner.Run(ctx, compensation.Action{
		Name:   "send_otp",
		Mutate: s.saveIfStatus(o, snapshot.Status, issueOtpColumns),
		SideEffect: func(ctx context.Context) error {
			return s.mailer.SendOTP(ctx, mailer.RecipientOf(o), code, *o.OTP.ExpiresAt)
		},
		Compensate: s.restoreSnapshot(snapshot, o.Status, issueOtpColumns),
		OnSuccess: s.recordFor(o, domain.AuditActionOtpSent, employeeActor(o), "Verification code sent", nil),
	})
	if err != nil {
		// No code reached the employee, so do not make them wait.
		s.releaseThrottle(ctx, o.ID)
		return VerifyInviteResponse{}, err
	}

	return VerifyInviteResponse{
		OnboardingID: o.ID.String(),
		FirstName:    o.FirstName,
		OtpSentTo:    maskEmail(o.Email),
		OtpExpiresAt: *o.OTP.ExpiresAt,
	}, nil
}

func (s *service) releaseThrottle(ctx context.Context, id uuid.UUID) {
	if s.throttle != nil {
		s.throttle.Release(ctx, id)
	}
}

// VerifyOtp checks the code and opens a session that lives exactly as long
// as the invite.
func (s *service) VerifyOtp(ctx context.Context, req VerifyOtpRequest) (EmployeeOnboardingResponse, session.Cookie, error) {
	o, err := s.invites.Validate(ctx, req.Token)
	if err != nil {
		return EmployeeOnboardingResponse{}, session.Cookie{}, err
	}

	if err := s.otps.Verify(ctx, o, req.Code); err != nil {
		return EmployeeOnboardingResponse{}, session.Cookie{}, err
	}

	cookie, err := s.sessions.Issue(o)
	if err != nil {
		return EmployeeOnboardingResponse{}, session.Cookie{}, err
	}

	s.recordFor(o, domain.AuditActionOtpVerified, employeeActor(o), "Verification code accepted", nil)(ctx)
	return mapToEmployeeResponse(o, s.clock.Now()), cookie, nil
}

func (s *service) GetOnboarding(ctx context.Context, cred EmployeeCredential) (EmployeeOnboardingResponse, error) {
	o, err := s.loadForEmployee(ctx, cred)
	if err != nil {
		return EmployeeOnboardingResponse{}, err
	}
	return mapToEmployeeResponse(o, s.clock.Now()), nil
}

// SaveForm stores a draft. Completeness is recorded but not required.
func (s *service) SaveForm(ctx context.Context, cred EmployeeCredential, req FormRequest) (EmployeeOnboardingResponse, error) {
	o, err := s.loadForEmployee(ctx, cred)
	if err != nil {
		return EmployeeOnboardingResponse{}, err
	}
	now := s.clock.Now()
	if !access.CanEdit(o, now) {
		return EmployeeOnboardingResponse{}, onboardingerrors.ErrFormReadOnly
	}

	form, err := domain.DecodeForm(o.Subsidiary, req.Form)
	if err != nil {
		return EmployeeOnboardingResponse{}, onboardingerrors.ErrInvalidFormPayload.WithDetails(map[string]any{"error": err.Error()})
	}

	o.FormPayload = []byte(req.Form)
	o.IsFormComplete = domain.FormComplete(s.validate, form)
	o.UpdatedAt = now

	err = s.runner.Run(ctx, compensation.Action{
		Name:   "save_form",
		Mutate: s.saveIfStatus(o, o.Status, formColumns),
		OnSuccess: s.recordFor(o, domain.AuditActionFormSaved, employeeActor(o), "Form saved", map[string]any{
			"complete": o.IsFormComplete,
		}),
	})
	if err != nil {
		return EmployeeOnboardingResponse{}, err
	}
	return mapToEmployeeResponse(o, now), nil
}

func (s *service) Submit(ctx context.Context, cred EmployeeCredential) (EmployeeOnboardingResponse, error) {
	o, err := s.loadForEmployee(ctx, cred)
	if err != nil {
		return EmployeeOnboardingResponse{}, err
	}
	if err := guardEmployeeSubmit(o); err != nil {
		return EmployeeOnboardingResponse{}, err
	}

	from := o.Status
	now := s.clock.Now()
	o.Status = submittedStatus(o)
	o.SubmittedAt = &now
	o.UpdatedAt = now

	err = s.runner.Run(ctx, compensation.Action{
		Name:   "submit",
		Mutate: s.saveIfStatus(o, from, employeeSubmitColumns),
		OnSuccess: s.recordFor(o, domain.AuditActionSubmitted, employeeActor(o), "Form submitted", map[string]any{
			"from": string(from),
		}),
	})
	if err != nil {
		return EmployeeOnboardingResponse{}, err
	}
	return mapToEmployeeResponse(o, now), nil
}

// loadForEmployee resolves a session credential. A session minted for an
// invite that has since been rotated no longer grants access.
func (s *service) loadForEmployee(ctx context.Context, cred EmployeeCredential) (*domain.Onboarding, error) {
	id, err := uuid.Parse(cred.OnboardingID)
	if err != nil {
		return nil, onboardingerrors.ErrSessionInvalid
	}
	o, err := s.loadByID(ctx, id)
	if err != nil {
		if errors.Is(err, onboardingerrors.ErrOnboardingNotFound) {
			return nil, onboardingerrors.ErrSessionInvalid
		}
		return nil, err
	}
	if !s.invites.HashMatches(o, cred.InviteHash) {
		// Approve clears the invite, so say why rather than "invalid".
		if err := s.invites.CheckUsable(o); err != nil && !errors.Is(err, onboardingerrors.ErrInviteNotFound) {
			return nil, err
		}
		return nil, onboardingerrors.ErrSessionInvalid
	}
	if err := s.invites.CheckUsable(o); err != nil {
		return nil, err
	}
	return o, nil
}
