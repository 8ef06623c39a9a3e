package onboarding_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"sync"
	"testing"
	"time"

	"go-onboarding/internal/domain"
	"go-onboarding/internal/mailer"
	"go-onboarding/internal/onboarding"
	onboardingerrors "go-onboarding/internal/onboarding/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func tokenFromLink(t *testing.T, link string) string {
	t.Helper()
	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "/start", u.Path)
	return u.Query().Get("token")
}

func TestOnboardingService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("digital sends an invitation", func(t *testing.T) {
		deps := setupServiceTest(t)

		var link string
		deps.mailer.EXPECT().
			SendInvitation(gomock.Any(), mailer.Recipient{Email: "asha.rao@example.test", Name: "Asha Rao"}, gomock.Any(), start.Add(7*24*time.Hour)).
			DoAndReturn(func(_ context.Context, _ mailer.Recipient, l string, _ time.Time) error {
				link = l
				return nil
			})

		resp, err := deps.service.Create(ctx, hr, onboarding.CreateOnboardingRequest{
			Subsidiary: "india",
			Method:     "digital",
			Email:      " Asha.Rao@Example.test ",
			FirstName:  "Asha",
			LastName:   "Rao",
		})

		require.NoError(t, err)
		assert.Equal(t, string(domain.StatusInviteGenerated), resp.Status)
		assert.Equal(t, "asha.rao@example.test", resp.Email)

		o, err := deps.invites.Validate(ctx, tokenFromLink(t, link))
		require.NoError(t, err)
		assert.Equal(t, resp.ID, o.ID.String())
		assert.Equal(t, []domain.AuditAction{domain.AuditActionCreated}, deps.audit.actions())
	})

	t.Run("manual sends the paper form", func(t *testing.T) {
		deps := setupServiceTest(t)

		deps.mailer.EXPECT().
			SendManualForm(gomock.Any(), gomock.Any(), domain.SubsidiaryCanada).
			Return(nil)

		resp, err := deps.service.Create(ctx, hr, onboarding.CreateOnboardingRequest{
			Subsidiary: "CANADA",
			Method:     "MANUAL",
			Email:      "li@example.test",
			FirstName:  "Li",
		})

		require.NoError(t, err)
		assert.Equal(t, string(domain.StatusManualPDFSent), resp.Status)
		assert.Nil(t, resp.Invite)
	})

	t.Run("failed invitation removes the record", func(t *testing.T) {
		deps := setupServiceTest(t)

		deps.mailer.EXPECT().
			SendInvitation(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(errors.New("smtp: 451 try again later"))

		_, err := deps.service.Create(ctx, hr, onboarding.CreateOnboardingRequest{
			Subsidiary: "US",
			Method:     "DIGITAL",
			Email:      "sam@example.test",
			FirstName:  "Sam",
		})

		code, status := appCode(t, err)
		assert.Equal(t, onboardingerrors.ReasonEmailDeliveryFailed, code)
		assert.Equal(t, http.StatusInternalServerError, status)

		items, total, err := deps.repo.List(ctx, onboarding.ListParams{})
		require.NoError(t, err)
		assert.Empty(t, items)
		assert.Zero(t, total)
		assert.Empty(t, deps.audit.actions())
	})

	t.Run("invalid subsidiary", func(t *testing.T) {
		deps := setupServiceTest(t)

		_, err := deps.service.Create(ctx, hr, onboarding.CreateOnboardingRequest{
			Subsidiary: "MARS",
			Method:     "DIGITAL",
		})

		assert.ErrorIs(t, err, onboardingerrors.ErrInvalidSubsidiary)
	})
}

func TestOnboardingService_GetByID(t *testing.T) {
	ctx := context.Background()
	deps := setupServiceTest(t)

	t.Run("malformed id", func(t *testing.T) {
		_, err := deps.service.GetByID(ctx, "not-a-uuid")
		assert.ErrorIs(t, err, onboardingerrors.ErrInvalidOnboardingID)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := deps.service.GetByID(ctx, "6f1c0a0e-5b1e-4a44-9d55-2f4f3a3b8c11")
		code, status := appCode(t, err)
		assert.Equal(t, onboardingerrors.ReasonOnboardingNotFound, code)
		assert.Equal(t, http.StatusNotFound, status)
	})

	t.Run("found", func(t *testing.T) {
		o, _ := deps.seedDigital(t, nil)

		resp, err := deps.service.GetByID(ctx, o.ID.String())

		require.NoError(t, err)
		assert.Equal(t, "Asha", resp.FirstName)
		require.NotNil(t, resp.Invite)
	})
}

func TestOnboardingService_ResendInvite(t *testing.T) {
	ctx := context.Background()

	t.Run("rotation revokes the previous link", func(t *testing.T) {
		deps := setupServiceTest(t)
		o, oldRaw := deps.seedDigital(t, func(o *domain.Onboarding) {
			o.OTP.Hash = domain.StringPtr("stale")
		})

		var link string
		deps.mailer.EXPECT().
			SendInvitation(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ mailer.Recipient, l string, _ time.Time) error {
				link = l
				return nil
			})

		_, err := deps.service.ResendInvite(ctx, hr, o.ID.String())
		require.NoError(t, err)

		_, err = deps.invites.Validate(ctx, oldRaw)
		assert.ErrorIs(t, err, onboardingerrors.ErrInviteNotFound)

		fresh, err := deps.invites.Validate(ctx, tokenFromLink(t, link))
		require.NoError(t, err)
		assert.Equal(t, o.ID, fresh.ID)
		assert.False(t, fresh.OTP.Present())
		assert.Equal(t, []domain.AuditAction{domain.AuditActionInviteResent}, deps.audit.actions())
	})

	t.Run("only before submission", func(t *testing.T) {
		deps := setupServiceTest(t)
		o, _ := deps.seedDigital(t, submitted)

		_, err := deps.service.ResendInvite(ctx, hr, o.ID.String())

		assert.ErrorIs(t, err, onboardingerrors.ErrStatusNotInviteGenerated)
	})

	t.Run("manual has no invite", func(t *testing.T) {
		deps := setupServiceTest(t)
		o := deps.seedManual(t, nil)

		_, err := deps.service.ResendInvite(ctx, hr, o.ID.String())

		assert.ErrorIs(t, err, onboardingerrors.ErrMethodNotDigital)
	})
}

func TestOnboardingService_RequestModification(t *testing.T) {
	ctx := context.Background()

	t.Run("success reopens the form with a new link", func(t *testing.T) {
		deps := setupServiceTest(t)
		o, oldRaw := deps.seedDigital(t, submitted)

		var link string
		deps.mailer.EXPECT().
			SendModificationRequest(gomock.Any(), gomock.Any(), "Please fix your PAN", gomock.Any()).
			DoAndReturn(func(_ context.Context, _ mailer.Recipient, _ string, l string) error {
				link = l
				return nil
			})

		resp, err := deps.service.RequestModification(ctx, hr, o.ID.String(), onboarding.RequestModificationRequest{
			Message: " Please fix your PAN ",
		})

		require.NoError(t, err)
		assert.Equal(t, string(domain.StatusModificationRequested), resp.Status)
		require.NotNil(t, resp.ModificationRequestMessage)
		assert.Equal(t, "Please fix your PAN", *resp.ModificationRequestMessage)

		_, err = deps.invites.Validate(ctx, oldRaw)
		assert.ErrorIs(t, err, onboardingerrors.ErrInviteNotFound)
		_, err = deps.invites.Validate(ctx, tokenFromLink(t, link))
		assert.NoError(t, err)
	})

	t.Run("failed email leaves the record untouched", func(t *testing.T) {
		deps := setupServiceTest(t)
		o, oldRaw := deps.seedDigital(t, submitted)
		before := deps.repo.get(t, o.ID)

		deps.mailer.EXPECT().
			SendModificationRequest(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(errors.New("connection reset"))

		_, err := deps.service.RequestModification(ctx, hr, o.ID.String(), onboarding.RequestModificationRequest{
			Message: "Please fix your PAN",
		})

		code, status := appCode(t, err)
		assert.Equal(t, onboardingerrors.ReasonEmailDeliveryFailed, code)
		assert.Equal(t, http.StatusInternalServerError, status)

		after := deps.repo.get(t, o.ID)
		assert.Equal(t, domain.StatusSubmitted, after.Status)
		assert.Equal(t, before.Invite, after.Invite)
		assert.Equal(t, before.OTP, after.OTP)
		assert.Nil(t, after.ModificationRequestMessage)
		assert.Nil(t, after.ModificationRequestedAt)

		_, err = deps.invites.Validate(ctx, oldRaw)
		assert.NoError(t, err)
		assert.Empty(t, deps.audit.actions())
	})

	t.Run("guards", func(t *testing.T) {
		deps := setupServiceTest(t)

		tests := []struct {
			name string
			seed func() string
			want error
		}{
			{
				name: "manual",
				seed: func() string {
					return deps.seedManual(t, submitted).ID.String()
				},
				want: onboardingerrors.ErrMethodNotDigital,
			},
			{
				name: "not submitted",
				seed: func() string {
					o, _ := deps.seedDigital(t, nil)
					return o.ID.String()
				},
				want: onboardingerrors.ErrStatusNotSubmitted,
			},
			{
				name: "approved",
				seed: func() string {
					o, _ := deps.seedDigital(t, func(o *domain.Onboarding) { o.Status = domain.StatusApproved })
					return o.ID.String()
				},
				want: onboardingerrors.ErrAlreadyApproved,
			},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := deps.service.RequestModification(ctx, hr, tt.seed(), onboarding.RequestModificationRequest{Message: "x"})
				assert.ErrorIs(t, err, tt.want)
			})
		}
	})
}

func TestOnboardingService_ConfirmDetails(t *testing.T) {
	ctx := context.Background()
	deps := setupServiceTest(t)

	t.Run("success", func(t *testing.T) {
		o, _ := deps.seedDigital(t, submitted)
		deps.mailer.EXPECT().SendDetailsConfirmed(gomock.Any(), gomock.Any()).Return(nil)

		resp, err := deps.service.ConfirmDetails(ctx, hr, o.ID.String())

		require.NoError(t, err)
		assert.Equal(t, string(domain.StatusDetailsConfirmed), resp.Status)
	})

	t.Run("requires a submission", func(t *testing.T) {
		o, _ := deps.seedDigital(t, nil)

		_, err := deps.service.ConfirmDetails(ctx, hr, o.ID.String())

		assert.ErrorIs(t, err, onboardingerrors.ErrStatusNotSubmitted)
	})
}

func TestOnboardingService_Approve(t *testing.T) {
	ctx := context.Background()

	t.Run("success clears employee credentials", func(t *testing.T) {
		deps := setupServiceTest(t)
		o, raw := deps.seedDigital(t, submitted)
		deps.mailer.EXPECT().SendApproved(gomock.Any(), gomock.Any(), "IN-0042").Return(nil)

		resp, err := deps.service.Approve(ctx, hr, o.ID.String(), onboarding.ApproveRequest{EmployeeNumber: "IN-0042"})

		require.NoError(t, err)
		assert.Equal(t, string(domain.StatusApproved), resp.Status)
		assert.True(t, resp.IsCompleted)

		stored := deps.repo.get(t, o.ID)
		assert.False(t, stored.Invite.Present())
		assert.NotNil(t, stored.ApprovedAt)
		_, err = deps.invites.Validate(ctx, raw)
		assert.Error(t, err)
	})

	t.Run("incomplete form", func(t *testing.T) {
		deps := setupServiceTest(t)
		o, _ := deps.seedDigital(t, func(o *domain.Onboarding) {
			o.Status = domain.StatusSubmitted
			o.FormPayload = []byte(partialIndiaForm)
		})

		_, err := deps.service.Approve(ctx, hr, o.ID.String(), onboarding.ApproveRequest{EmployeeNumber: "IN-0042"})

		code, status := appCode(t, err)
		assert.Equal(t, onboardingerrors.ReasonFormIncomplete, code)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, domain.StatusSubmitted, deps.repo.get(t, o.ID).Status)
	})

	t.Run("employee number already used in the subsidiary", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.seedDigital(t, func(o *domain.Onboarding) {
			o.Status = domain.StatusApproved
			o.EmployeeNumber = domain.StringPtr("IN-0042")
		})
		o, _ := deps.seedDigital(t, submitted)

		_, err := deps.service.Approve(ctx, hr, o.ID.String(), onboarding.ApproveRequest{EmployeeNumber: "IN-0042"})

		assert.ErrorIs(t, err, onboardingerrors.ErrEmployeeNumberTaken)
	})

	t.Run("failed email restores the submission", func(t *testing.T) {
		deps := setupServiceTest(t)
		o, raw := deps.seedDigital(t, submitted)
		deps.mailer.EXPECT().SendApproved(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("timeout"))

		_, err := deps.service.Approve(ctx, hr, o.ID.String(), onboarding.ApproveRequest{EmployeeNumber: "IN-0042"})

		assert.Error(t, err)
		stored := deps.repo.get(t, o.ID)
		assert.Equal(t, domain.StatusSubmitted, stored.Status)
		assert.Nil(t, stored.EmployeeNumber)
		assert.Nil(t, stored.ApprovedAt)
		_, err = deps.invites.Validate(ctx, raw)
		assert.NoError(t, err)
	})

	t.Run("missing employee number", func(t *testing.T) {
		deps := setupServiceTest(t)
		o, _ := deps.seedDigital(t, submitted)

		_, err := deps.service.Approve(ctx, hr, o.ID.String(), onboarding.ApproveRequest{EmployeeNumber: "  "})

		assert.Error(t, err)
		assert.Equal(t, domain.StatusSubmitted, deps.repo.get(t, o.ID).Status)
	})
}

func TestOnboardingService_ApproveTerminateRace(t *testing.T) {
	ctx := context.Background()
	deps := setupServiceTest(t)
	o, _ := deps.seedDigital(t, submitted)

	// Both requests read Submitted before either writes.
	var loaded sync.WaitGroup
	loaded.Add(2)
	deps.repo.onFind = func() {
		loaded.Done()
		loaded.Wait()
	}
	deps.mailer.EXPECT().SendApproved(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	var approveErr, terminateErr error
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, approveErr = deps.service.Approve(ctx, hr, o.ID.String(), onboarding.ApproveRequest{EmployeeNumber: "IN-7"})
	}()
	go func() {
		defer wg.Done()
		_, terminateErr = deps.service.Terminate(ctx, hr, o.ID.String(), onboarding.TerminateRequest{Type: "NO_SHOW"})
	}()
	wg.Wait()

	stored := deps.repo.get(t, o.ID)
	switch {
	case approveErr == nil:
		assert.ErrorIs(t, terminateErr, onboardingerrors.ErrStatusConflict)
		assert.Equal(t, domain.StatusApproved, stored.Status)
		assert.Nil(t, stored.TerminatedAt)
	case terminateErr == nil:
		assert.ErrorIs(t, approveErr, onboardingerrors.ErrStatusConflict)
		assert.Equal(t, domain.StatusTerminated, stored.Status)
		assert.Nil(t, stored.EmployeeNumber)
	default:
		t.Fatalf("no winner: approve=%v terminate=%v", approveErr, terminateErr)
	}
	assert.Len(t, deps.audit.actions(), 1)
}

func TestOnboardingService_TerminateAndRestore(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		manual bool
		mutate func(o *domain.Onboarding)
		want   domain.Status
	}{
		{
			name:   "approved before termination",
			mutate: func(o *domain.Onboarding) { o.ApprovedAt = domain.TimePtr(start); o.SubmittedAt = domain.TimePtr(start) },
			want:   domain.StatusApproved,
		},
		{
			name:   "submitted before termination",
			mutate: func(o *domain.Onboarding) { o.SubmittedAt = domain.TimePtr(start) },
			want:   domain.StatusSubmitted,
		},
		{
			name:   "manual never submitted",
			manual: true,
			want:   domain.StatusManualPDFSent,
		},
		{
			name: "digital never submitted",
			want: domain.StatusInviteGenerated,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps := setupServiceTest(t)
			terminated := func(o *domain.Onboarding) {
				o.Status = domain.StatusTerminated
				o.TerminatedAt = domain.TimePtr(start)
				o.TerminationType = domain.StringPtr("WITHDRAWN")
				if tt.mutate != nil {
					tt.mutate(o)
				}
			}
			var id string
			if tt.manual {
				id = deps.seedManual(t, terminated).ID.String()
			} else {
				o, _ := deps.seedDigital(t, terminated)
				id = o.ID.String()
			}

			resp, err := deps.service.Restore(ctx, hr, id)

			require.NoError(t, err)
			assert.Equal(t, string(tt.want), resp.Status)
			assert.Nil(t, resp.TerminatedAt)
			assert.Nil(t, resp.TerminationType)
		})
	}

	t.Run("restore requires termination", func(t *testing.T) {
		deps := setupServiceTest(t)
		o, _ := deps.seedDigital(t, nil)

		_, err := deps.service.Restore(ctx, hr, o.ID.String())

		assert.ErrorIs(t, err, onboardingerrors.ErrNotTerminated)
	})

	t.Run("terminate twice", func(t *testing.T) {
		deps := setupServiceTest(t)
		o, _ := deps.seedDigital(t, nil)

		resp, err := deps.service.Terminate(ctx, hr, o.ID.String(), onboarding.TerminateRequest{Type: "NO_SHOW", Reason: "did not reply"})
		require.NoError(t, err)
		assert.Equal(t, string(domain.StatusTerminated), resp.Status)

		_, err = deps.service.Terminate(ctx, hr, o.ID.String(), onboarding.TerminateRequest{Type: "NO_SHOW"})
		assert.ErrorIs(t, err, onboardingerrors.ErrAlreadyTerminated)
	})
}

func TestOnboardingService_CompleteForm(t *testing.T) {
	ctx := context.Background()

	t.Run("first completion submits", func(t *testing.T) {
		deps := setupServiceTest(t)
		o := deps.seedManual(t, nil)

		resp, err := deps.service.CompleteForm(ctx, hr, o.ID.String(), onboarding.FormRequest{Form: json.RawMessage(completeIndiaForm)})

		require.NoError(t, err)
		assert.Equal(t, string(domain.StatusSubmitted), resp.Status)
		assert.True(t, resp.IsFormComplete)
	})

	t.Run("after a modification request resubmits", func(t *testing.T) {
		deps := setupServiceTest(t)
		o := deps.seedManual(t, func(o *domain.Onboarding) {
			o.Status = domain.StatusModificationRequested
			o.SubmittedAt = domain.TimePtr(start)
		})

		resp, err := deps.service.CompleteForm(ctx, hr, o.ID.String(), onboarding.FormRequest{Form: json.RawMessage(completeIndiaForm)})

		require.NoError(t, err)
		assert.Equal(t, string(domain.StatusResubmitted), resp.Status)
	})

	t.Run("incomplete form", func(t *testing.T) {
		deps := setupServiceTest(t)
		o := deps.seedManual(t, nil)

		_, err := deps.service.CompleteForm(ctx, hr, o.ID.String(), onboarding.FormRequest{Form: json.RawMessage(partialIndiaForm)})

		assert.ErrorIs(t, err, onboardingerrors.ErrFormIncomplete)
		assert.Equal(t, domain.StatusManualPDFSent, deps.repo.get(t, o.ID).Status)
	})

	t.Run("digital onboardings are filled in by the employee", func(t *testing.T) {
		deps := setupServiceTest(t)
		o, _ := deps.seedDigital(t, nil)

		_, err := deps.service.CompleteForm(ctx, hr, o.ID.String(), onboarding.FormRequest{Form: json.RawMessage(completeIndiaForm)})

		assert.ErrorIs(t, err, onboardingerrors.ErrMethodNotManual)
	})
}

func TestOnboardingService_Delete(t *testing.T) {
	ctx := context.Background()
	deps := setupServiceTest(t)

	t.Run("only terminated", func(t *testing.T) {
		o, _ := deps.seedDigital(t, nil)

		err := deps.service.Delete(ctx, hr, o.ID.String())

		assert.ErrorIs(t, err, onboardingerrors.ErrNotTerminated)
		assert.True(t, deps.repo.exists(o.ID))
	})

	t.Run("success", func(t *testing.T) {
		o, _ := deps.seedDigital(t, func(o *domain.Onboarding) { o.Status = domain.StatusTerminated })

		err := deps.service.Delete(ctx, hr, o.ID.String())

		require.NoError(t, err)
		assert.False(t, deps.repo.exists(o.ID))
	})
}

func TestOnboardingService_List(t *testing.T) {
	ctx := context.Background()
	deps := setupServiceTest(t)
	deps.seedDigital(t, nil)
	deps.seedManual(t, nil)

	t.Run("filters by status", func(t *testing.T) {
		items, total, err := deps.service.List(ctx, onboarding.ListFilter{Status: string(domain.StatusManualPDFSent)})

		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
		require.Len(t, items, 1)
		assert.Equal(t, "MANUAL", items[0].Method)
	})

	t.Run("unknown status", func(t *testing.T) {
		_, _, err := deps.service.List(ctx, onboarding.ListFilter{Status: "Hired"})
		assert.ErrorIs(t, err, onboardingerrors.ErrInvalidStatus)
	})
}

func TestOnboardingService_Summary(t *testing.T) {
	ctx := context.Background()

	t.Run("cache miss counts and stores", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.seedDigital(t, nil)
		deps.seedDigital(t, nil)
		deps.seedManual(t, nil)

		want := onboarding.SummaryResponse{
			Total: 3,
			BySubsidiary: map[string]map[string]int64{
				"INDIA": {"InviteGenerated": 2, "ManualPDFSent": 1},
			},
		}
		data, err := json.Marshal(want)
		require.NoError(t, err)

		deps.redismock.ExpectGet(onboarding.SummaryCacheKey).RedisNil()
		deps.redismock.ExpectSet(onboarding.SummaryCacheKey, data, time.Minute).SetVal("OK")

		resp, err := deps.service.Summary(ctx)

		require.NoError(t, err)
		assert.Equal(t, want, resp)
		assert.NoError(t, deps.redismock.ExpectationsWereMet())
	})

	t.Run("cache hit skips the database", func(t *testing.T) {
		deps := setupServiceTest(t)
		cached, _ := json.Marshal(onboarding.SummaryResponse{Total: 9})
		deps.redismock.ExpectGet(onboarding.SummaryCacheKey).SetVal(string(cached))

		resp, err := deps.service.Summary(ctx)

		require.NoError(t, err)
		assert.EqualValues(t, 9, resp.Total)
		assert.Zero(t, deps.repo.counts)
	})
}
