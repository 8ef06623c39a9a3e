// Package access derives what the employee-facing channel may do with an
// onboarding from its stored state. Nothing here mutates state.
package access

import (
	"time"

	"go-onboarding/internal/domain"
)

// CanAccess reports whether the employee may open the onboarding at all.
func CanAccess(o *domain.Onboarding, now time.Time) bool {
	if o == nil || o.Method != domain.MethodDigital || !o.Invite.Present() {
		return false
	}
	if o.Invite.ExpiresAt == nil || !o.Invite.ExpiresAt.After(now) {
		return false
	}
	return o.Status != domain.StatusApproved && o.Status != domain.StatusTerminated
}

// CanEdit reports whether the employee may change the form.
func CanEdit(o *domain.Onboarding, now time.Time) bool {
	if !CanAccess(o, now) {
		return false
	}
	return o.Status == domain.StatusInviteGenerated || o.Status == domain.StatusModificationRequested
}

func IsReadOnly(o *domain.Onboarding, now time.Time) bool {
	if !CanAccess(o, now) {
		return true
	}
	switch o.Status {
	case domain.StatusSubmitted, domain.StatusResubmitted, domain.StatusDetailsConfirmed:
		return true
	}
	return false
}

type Decision struct {
	CanAccess  bool `json:"canAccess"`
	CanEdit    bool `json:"canEdit"`
	IsReadOnly bool `json:"isReadOnly"`
}

func Evaluate(o *domain.Onboarding, now time.Time) Decision {
	return Decision{
		CanAccess:  CanAccess(o, now),
		CanEdit:    CanEdit(o, now),
		IsReadOnly: IsReadOnly(o, now),
	}
}
