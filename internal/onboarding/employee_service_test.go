package onboarding_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"go-onboarding/internal/domain"
	"go-onboarding/internal/mailer"
	"go-onboarding/internal/onboarding"
	onboardingerrors "go-onboarding/internal/onboarding/errors"
	"go-onboarding/internal/session"
	"go-onboarding/internal/shared/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// sendOtp runs the invite step so that an OTP is stored for o.
func (d *serviceDeps) sendOtp(t *testing.T, raw string) {
	t.Helper()
	d.mailer.EXPECT().SendOTP(gomock.Any(), gomock.Any(), otpCode, gomock.Any()).Return(nil)
	_, err := d.employee.VerifyInvite(context.Background(), onboarding.VerifyInviteRequest{Token: raw})
	require.NoError(t, err)
}

func (d *serviceDeps) credential(o *domain.Onboarding, raw string) onboarding.EmployeeCredential {
	return onboarding.EmployeeCredential{
		OnboardingID: o.ID.String(),
		InviteHash:   d.invites.TokenHash(raw),
	}
}

func TestEmployeeService_VerifyInvite(t *testing.T) {
	ctx := context.Background()

	t.Run("sends a code", func(t *testing.T) {
		deps := setupServiceTest(t)
		o, raw := deps.seedDigital(t, nil)
		deps.mailer.EXPECT().
			SendOTP(gomock.Any(), gomock.Any(), otpCode, start.Add(10*time.Minute)).
			Return(nil)

		resp, err := deps.employee.VerifyInvite(ctx, onboarding.VerifyInviteRequest{Token: raw})

		require.NoError(t, err)
		assert.Equal(t, o.ID.String(), resp.OnboardingID)
		assert.Equal(t, "a***@example.test", resp.OtpSentTo)
		assert.True(t, deps.repo.get(t, o.ID).OTP.Present())
		assert.Equal(t, []domain.AuditAction{domain.AuditActionOtpSent}, deps.audit.actions())
	})

	t.Run("unknown token", func(t *testing.T) {
		deps := setupServiceTest(t)

		_, err := deps.employee.VerifyInvite(ctx, onboarding.VerifyInviteRequest{Token: "nope"})

		assert.ErrorIs(t, err, onboardingerrors.ErrInviteNotFound)
	})

	t.Run("expired invite", func(t *testing.T) {
		deps := setupServiceTest(t)
		_, raw := deps.seedDigital(t, nil)
		deps.clock.Advance(8 * 24 * time.Hour)

		_, err := deps.employee.VerifyInvite(ctx, onboarding.VerifyInviteRequest{Token: raw})

		assert.ErrorIs(t, err, onboardingerrors.ErrInviteExpired)
	})

	t.Run("throttled", func(t *testing.T) {
		deps := setupServiceTest(t)
		_, raw := deps.seedDigital(t, nil)
		deps.throttle.wait = 42

		_, err := deps.employee.VerifyInvite(ctx, onboarding.VerifyInviteRequest{Token: raw})

		var appErr *apperror.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, onboardingerrors.ReasonOtpThrottled, appErr.Code)
		assert.Equal(t, 42, appErr.Details["retryAfterSeconds"])
	})

	t.Run("throttle unavailable still sends", func(t *testing.T) {
		deps := setupServiceTest(t)
		_, raw := deps.seedDigital(t, nil)
		deps.throttle.err = errors.New("redis: connection refused")
		deps.mailer.EXPECT().SendOTP(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

		_, err := deps.employee.VerifyInvite(ctx, onboarding.VerifyInviteRequest{Token: raw})

		assert.NoError(t, err)
	})

	t.Run("failed email drops the code and the throttle window", func(t *testing.T) {
		deps := setupServiceTest(t)
		o, raw := deps.seedDigital(t, nil)
		deps.mailer.EXPECT().
			SendOTP(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(errors.New("mailbox unavailable"))

		_, err := deps.employee.VerifyInvite(ctx, onboarding.VerifyInviteRequest{Token: raw})

		code, _ := appCode(t, err)
		assert.Equal(t, onboardingerrors.ReasonEmailDeliveryFailed, code)
		assert.False(t, deps.repo.get(t, o.ID).OTP.Present())
		assert.Empty(t, deps.audit.actions())
		assert.Len(t, deps.throttle.released, 1)
	})
}

func TestEmployeeService_VerifyOtp(t *testing.T) {
	ctx := context.Background()

	t.Run("opens a session bound to the invite", func(t *testing.T) {
		deps := setupServiceTest(t)
		o, raw := deps.seedDigital(t, nil)
		deps.sendOtp(t, raw)

		resp, cookie, err := deps.employee.VerifyOtp(ctx, onboarding.VerifyOtpRequest{Token: raw, Code: otpCode})

		require.NoError(t, err)
		assert.True(t, resp.Access.CanEdit)
		assert.Equal(t, session.CookieName, cookie.Name)
		assert.Equal(t, *o.Invite.ExpiresAt, cookie.ExpiresAt)

		claims, err := deps.sessions.Parse(cookie.Value)
		require.NoError(t, err)
		assert.Equal(t, o.ID.String(), claims.OnboardingID)
		assert.Equal(t, deps.invites.TokenHash(raw), claims.InviteHash)
		assert.Equal(t, []domain.AuditAction{domain.AuditActionOtpSent, domain.AuditActionOtpVerified}, deps.audit.actions())
	})

	t.Run("wrong code reports the remaining attempts", func(t *testing.T) {
		deps := setupServiceTest(t)
		_, raw := deps.seedDigital(t, nil)
		deps.sendOtp(t, raw)

		_, _, err := deps.employee.VerifyOtp(ctx, onboarding.VerifyOtpRequest{Token: raw, Code: "000000"})

		var appErr *apperror.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, onboardingerrors.ReasonOtpInvalid, appErr.Code)
		assert.Equal(t, 2, appErr.Details["remainingAttempts"])
	})

	t.Run("no code was sent", func(t *testing.T) {
		deps := setupServiceTest(t)
		_, raw := deps.seedDigital(t, nil)

		_, _, err := deps.employee.VerifyOtp(ctx, onboarding.VerifyOtpRequest{Token: raw, Code: otpCode})

		assert.ErrorIs(t, err, onboardingerrors.ErrOtpNotIssued)
	})
}

func TestEmployeeService_Session(t *testing.T) {
	ctx := context.Background()

	t.Run("valid", func(t *testing.T) {
		deps := setupServiceTest(t)
		o, raw := deps.seedDigital(t, nil)

		resp, err := deps.employee.GetOnboarding(ctx, deps.credential(o, raw))

		require.NoError(t, err)
		assert.Equal(t, string(domain.StatusInviteGenerated), resp.Status)
		assert.True(t, resp.Access.CanAccess)
	})

	t.Run("rotated invite orphans the session", func(t *testing.T) {
		deps := setupServiceTest(t)
		o, raw := deps.seedDigital(t, nil)
		cred := deps.credential(o, raw)

		stored := deps.repo.get(t, o.ID)
		_, err := deps.invites.Rotate(stored)
		require.NoError(t, err)
		deps.repo.put(stored)

		_, err = deps.employee.GetOnboarding(ctx, cred)

		assert.ErrorIs(t, err, onboardingerrors.ErrSessionInvalid)
	})

	t.Run("approved", func(t *testing.T) {
		deps := setupServiceTest(t)
		o, raw := deps.seedDigital(t, nil)
		cred := deps.credential(o, raw)

		stored := deps.repo.get(t, o.ID)
		stored.Status = domain.StatusApproved
		stored.Invite = domain.Invite{}
		deps.repo.put(stored)

		_, err := deps.employee.GetOnboarding(ctx, cred)

		assert.ErrorIs(t, err, onboardingerrors.ErrApproved)
	})

	t.Run("unknown onboarding", func(t *testing.T) {
		deps := setupServiceTest(t)

		_, err := deps.employee.GetOnboarding(ctx, onboarding.EmployeeCredential{
			OnboardingID: "5a8a5b0c-3f2d-4d8e-9c1b-7e0f6c4a2d19",
			InviteHash:   "x",
		})

		assert.ErrorIs(t, err, onboardingerrors.ErrSessionInvalid)
	})
}

func TestEmployeeService_FormLifecycle(t *testing.T) {
	ctx := context.Background()
	deps := setupServiceTest(t)
	o, raw := deps.seedDigital(t, nil)
	cred := deps.credential(o, raw)

	resp, err := deps.employee.SaveForm(ctx, cred, onboarding.FormRequest{Form: json.RawMessage(partialIndiaForm)})
	require.NoError(t, err)
	assert.False(t, resp.IsFormComplete)

	_, err = deps.employee.Submit(ctx, cred)
	assert.ErrorIs(t, err, onboardingerrors.ErrFormIncomplete)

	_, err = deps.employee.SaveForm(ctx, cred, onboarding.FormRequest{Form: json.RawMessage(`{"ssn": "123456789"}`)})
	assert.ErrorIs(t, err, onboardingerrors.ErrInvalidFormPayload)

	resp, err = deps.employee.SaveForm(ctx, cred, onboarding.FormRequest{Form: json.RawMessage(completeIndiaForm)})
	require.NoError(t, err)
	assert.True(t, resp.IsFormComplete)

	resp, err = deps.employee.Submit(ctx, cred)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusSubmitted), resp.Status)
	assert.True(t, resp.Access.IsReadOnly)

	_, err = deps.employee.SaveForm(ctx, cred, onboarding.FormRequest{Form: json.RawMessage(completeIndiaForm)})
	assert.ErrorIs(t, err, onboardingerrors.ErrFormReadOnly)

	// HR sends it back; the new link is what the employee uses next.
	var newRaw string
	deps.mailer.EXPECT().
		SendModificationRequest(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ mailer.Recipient, _ string, link string) error {
			newRaw = tokenFromLink(t, link)
			return nil
		})
	_, err = deps.service.RequestModification(ctx, hr, o.ID.String(), onboarding.RequestModificationRequest{Message: "Bank account is wrong"})
	require.NoError(t, err)

	_, err = deps.employee.GetOnboarding(ctx, cred)
	assert.ErrorIs(t, err, onboardingerrors.ErrSessionInvalid)

	cred = deps.credential(o, newRaw)
	got, err := deps.employee.GetOnboarding(ctx, cred)
	require.NoError(t, err)
	require.NotNil(t, got.ModificationRequestMessage)
	assert.Equal(t, "Bank account is wrong", *got.ModificationRequestMessage)
	assert.True(t, got.Access.CanEdit)

	resp, err = deps.employee.Submit(ctx, cred)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusResubmitted), resp.Status)
}

func TestEmployeeService_SaveFormKeepsOtpLock(t *testing.T) {
	ctx := context.Background()
	deps := setupServiceTest(t)
	o, raw := deps.seedDigital(t, nil)
	deps.sendOtp(t, raw)
	cred := deps.credential(o, raw)
	hash := *deps.repo.get(t, o.ID).OTP.Hash

	// A wrong code locks the OTP between the form read and its write.
	var once sync.Once
	deps.repo.onFind = func() {
		once.Do(func() {
			attempts, lockedAt, err := deps.repo.IncrementOtpAttempts(ctx, o.ID, hash, 1, start)
			require.NoError(t, err)
			require.Equal(t, 1, attempts)
			require.NotNil(t, lockedAt)
		})
	}

	_, err := deps.employee.SaveForm(ctx, cred, onboarding.FormRequest{Form: json.RawMessage(partialIndiaForm)})
	require.NoError(t, err)

	stored := deps.repo.get(t, o.ID)
	assert.JSONEq(t, partialIndiaForm, string(stored.FormPayload))
	require.NotNil(t, stored.OTP.LockedAt)
	assert.True(t, stored.OTP.LockedAt.Equal(start))
	assert.Equal(t, 1, stored.OTP.Attempts)
	assert.Equal(t, hash, *stored.OTP.Hash)
}
