package onboarding

import (
	"go-onboarding/internal/domain"
	onboardingerrors "go-onboarding/internal/onboarding/errors"
)

// Guards run after the record was loaded, so existence is already settled.
// Each checks terminal states first, then the action's own precondition,
// and none of them mutate.

func rejectTerminal(o *domain.Onboarding) error {
	switch o.Status {
	case domain.StatusApproved:
		return onboardingerrors.ErrAlreadyApproved
	case domain.StatusTerminated:
		return onboardingerrors.ErrAlreadyTerminated
	}
	return nil
}

func isSubmitted(s domain.Status) bool {
	return s == domain.StatusSubmitted || s == domain.StatusResubmitted
}

func guardResendInvite(o *domain.Onboarding) error {
	if err := rejectTerminal(o); err != nil {
		return err
	}
	if o.Method != domain.MethodDigital {
		return onboardingerrors.ErrMethodNotDigital
	}
	if o.Status != domain.StatusInviteGenerated {
		return onboardingerrors.ErrStatusNotInviteGenerated
	}
	return nil
}

func guardRequestModification(o *domain.Onboarding) error {
	if err := rejectTerminal(o); err != nil {
		return err
	}
	if o.Method != domain.MethodDigital {
		return onboardingerrors.ErrMethodNotDigital
	}
	if !isSubmitted(o.Status) {
		return onboardingerrors.ErrStatusNotSubmitted
	}
	if !o.IsFormComplete {
		return onboardingerrors.ErrFormIncomplete
	}
	return nil
}

func guardConfirmDetails(o *domain.Onboarding) error {
	if err := rejectTerminal(o); err != nil {
		return err
	}
	if !isSubmitted(o.Status) {
		return onboardingerrors.ErrStatusNotSubmitted
	}
	if !o.IsFormComplete {
		return onboardingerrors.ErrFormIncomplete
	}
	return nil
}

func guardApprove(o *domain.Onboarding) error {
	if err := rejectTerminal(o); err != nil {
		return err
	}
	if !o.IsFormComplete {
		return onboardingerrors.ErrFormIncomplete
	}
	return nil
}

func guardTerminate(o *domain.Onboarding) error {
	if o.Status == domain.StatusTerminated {
		return onboardingerrors.ErrAlreadyTerminated
	}
	return nil
}

func guardTerminated(o *domain.Onboarding) error {
	if o.Status != domain.StatusTerminated {
		return onboardingerrors.ErrNotTerminated
	}
	return nil
}

// guardEmployeeSubmit assumes the invite was already checked for use.
func guardEmployeeSubmit(o *domain.Onboarding) error {
	if err := rejectTerminal(o); err != nil {
		return err
	}
	if o.Status != domain.StatusInviteGenerated && o.Status != domain.StatusModificationRequested {
		return onboardingerrors.ErrStatusNotEditable
	}
	if !o.IsFormComplete {
		return onboardingerrors.ErrFormIncomplete
	}
	return nil
}

// guardCompleteForm covers HR entering a paper form on the employee's
// behalf. Completeness is checked against the decoded payload afterwards.
func guardCompleteForm(o *domain.Onboarding) error {
	if err := rejectTerminal(o); err != nil {
		return err
	}
	if o.Method != domain.MethodManual {
		return onboardingerrors.ErrMethodNotManual
	}
	if o.Status != domain.StatusManualPDFSent && o.Status != domain.StatusModificationRequested {
		return onboardingerrors.ErrStatusNotEditable
	}
	return nil
}

// submittedStatus is Resubmitted for every submission after the first.
func submittedStatus(o *domain.Onboarding) domain.Status {
	if o.SubmittedAt != nil {
		return domain.StatusResubmitted
	}
	return domain.StatusSubmitted
}

// restoredStatus infers where a terminated onboarding was before it was
// terminated from the milestones it had reached.
func restoredStatus(o *domain.Onboarding) domain.Status {
	switch {
	case o.ApprovedAt != nil:
		return domain.StatusApproved
	case o.SubmittedAt != nil:
		return domain.StatusSubmitted
	case o.Method == domain.MethodManual:
		return domain.StatusManualPDFSent
	default:
		return domain.StatusInviteGenerated
	}
}

func initialStatus(m domain.Method) domain.Status {
	if m == domain.MethodManual {
		return domain.StatusManualPDFSent
	}
	return domain.StatusInviteGenerated
}
