package access_test

import (
	"testing"
	"time"

	"go-onboarding/internal/access"
	"go-onboarding/internal/domain"

	"github.com/stretchr/testify/assert"
)

var now = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func withInvite(status domain.Status, expiresAt time.Time) *domain.Onboarding {
	return &domain.Onboarding{
		Method: domain.MethodDigital,
		Status: status,
		Invite: domain.Invite{
			TokenHash: domain.StringPtr("hash"),
			ExpiresAt: domain.TimePtr(expiresAt),
		},
	}
}

func TestEvaluate(t *testing.T) {
	future := now.Add(time.Hour)

	tests := []struct {
		name     string
		o        *domain.Onboarding
		expected access.Decision
	}{
		{
			name:     "invite generated is editable",
			o:        withInvite(domain.StatusInviteGenerated, future),
			expected: access.Decision{CanAccess: true, CanEdit: true},
		},
		{
			name:     "modification requested is editable",
			o:        withInvite(domain.StatusModificationRequested, future),
			expected: access.Decision{CanAccess: true, CanEdit: true},
		},
		{
			name:     "submitted is read only",
			o:        withInvite(domain.StatusSubmitted, future),
			expected: access.Decision{CanAccess: true, IsReadOnly: true},
		},
		{
			name:     "resubmitted is read only",
			o:        withInvite(domain.StatusResubmitted, future),
			expected: access.Decision{CanAccess: true, IsReadOnly: true},
		},
		{
			name:     "details confirmed is read only",
			o:        withInvite(domain.StatusDetailsConfirmed, future),
			expected: access.Decision{CanAccess: true, IsReadOnly: true},
		},
		{
			name:     "approved is denied",
			o:        withInvite(domain.StatusApproved, future),
			expected: access.Decision{IsReadOnly: true},
		},
		{
			name:     "terminated is denied",
			o:        withInvite(domain.StatusTerminated, future),
			expected: access.Decision{IsReadOnly: true},
		},
		{
			name:     "expired at exactly now is denied",
			o:        withInvite(domain.StatusInviteGenerated, now),
			expected: access.Decision{IsReadOnly: true},
		},
		{
			name: "manual is denied",
			o: &domain.Onboarding{
				Method: domain.MethodManual,
				Status: domain.StatusManualPDFSent,
			},
			expected: access.Decision{IsReadOnly: true},
		},
		{
			name: "digital without invite is denied",
			o: &domain.Onboarding{
				Method: domain.MethodDigital,
				Status: domain.StatusInviteGenerated,
			},
			expected: access.Decision{IsReadOnly: true},
		},
		{
			name:     "nil onboarding is denied",
			o:        nil,
			expected: access.Decision{IsReadOnly: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, access.Evaluate(tt.o, now))
		})
	}
}

func TestCanEditImpliesCanAccess(t *testing.T) {
	statuses := []domain.Status{
		domain.StatusInviteGenerated, domain.StatusManualPDFSent, domain.StatusModificationRequested,
		domain.StatusSubmitted, domain.StatusResubmitted, domain.StatusDetailsConfirmed,
		domain.StatusApproved, domain.StatusTerminated,
	}
	for _, s := range statuses {
		for _, exp := range []time.Time{now.Add(-time.Minute), now, now.Add(time.Minute)} {
			o := withInvite(s, exp)
			if access.CanEdit(o, now) {
				assert.True(t, access.CanAccess(o, now), s)
				assert.False(t, access.IsReadOnly(o, now), s)
			}
		}
	}
}
