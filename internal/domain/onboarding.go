package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Status string

const (
	StatusInviteGenerated       Status = "InviteGenerated"
	StatusManualPDFSent         Status = "ManualPDFSent"
	StatusModificationRequested Status = "ModificationRequested"
	StatusSubmitted             Status = "Submitted"
	StatusResubmitted           Status = "Resubmitted"
	StatusDetailsConfirmed      Status = "DetailsConfirmed"
	StatusApproved              Status = "Approved"
	StatusTerminated            Status = "Terminated"
)

func (s Status) Valid() bool {
	switch s {
	case StatusInviteGenerated, StatusManualPDFSent, StatusModificationRequested,
		StatusSubmitted, StatusResubmitted, StatusDetailsConfirmed,
		StatusApproved, StatusTerminated:
		return true
	}
	return false
}

type Method string

const (
	MethodDigital Method = "DIGITAL"
	MethodManual  Method = "MANUAL"
)

func (m Method) Valid() bool {
	return m == MethodDigital || m == MethodManual
}

type Subsidiary string

const (
	SubsidiaryIndia  Subsidiary = "INDIA"
	SubsidiaryCanada Subsidiary = "CANADA"
	SubsidiaryUS     Subsidiary = "US"
)

func (s Subsidiary) Valid() bool {
	switch s {
	case SubsidiaryIndia, SubsidiaryCanada, SubsidiaryUS:
		return true
	}
	return false
}

// ErrConcurrentUpdate is returned by conditional writes that matched no row
// because another request changed the record first.
var ErrConcurrentUpdate = errors.New("onboarding changed concurrently")

// Invite is stored only as a hash; the raw token leaves the process once, in
// the invitation email.
type Invite struct {
	TokenHash  *string    `gorm:"type:varchar(64);uniqueIndex:uq_onboarding_invite_token_hash"`
	ExpiresAt  *time.Time `gorm:"type:timestamptz"`
	LastSentAt *time.Time `gorm:"type:timestamptz"`
}

func (i Invite) Present() bool {
	return i.TokenHash != nil
}

type OTP struct {
	Hash       *string    `gorm:"type:varchar(64)"`
	ExpiresAt  *time.Time `gorm:"type:timestamptz"`
	Attempts   int        `gorm:"not null;default:0"`
	LockedAt   *time.Time `gorm:"type:timestamptz"`
	LastSentAt *time.Time `gorm:"type:timestamptz"`
}

func (o OTP) Present() bool {
	return o.Hash != nil
}

type Onboarding struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Subsidiary Subsidiary `gorm:"type:varchar(20);not null;uniqueIndex:uq_onboarding_employee_number,priority:1;index:idx_onboardings_subsidiary_status,priority:1"`
	Method     Method     `gorm:"type:varchar(20);not null"`
	Status     Status     `gorm:"type:varchar(40);not null;index:idx_onboardings_subsidiary_status,priority:2"`

	Email     string `gorm:"type:varchar(255);not null"`
	FirstName string `gorm:"type:varchar(120);not null"`
	LastName  string `gorm:"type:varchar(120);not null"`

	Invite Invite `gorm:"embedded;embeddedPrefix:invite_"`
	OTP    OTP    `gorm:"embedded;embeddedPrefix:otp_"`

	EmployeeNumber *string `gorm:"type:varchar(50);uniqueIndex:uq_onboarding_employee_number,priority:2"`

	IsFormComplete bool           `gorm:"not null;default:false"`
	IsCompleted    bool           `gorm:"not null;default:false"`
	FormPayload    datatypes.JSON `gorm:"type:jsonb"`

	ModificationRequestMessage *string    `gorm:"type:text"`
	ModificationRequestedAt    *time.Time `gorm:"type:timestamptz"`

	TerminationType   *string    `gorm:"type:varchar(40)"`
	TerminationReason *string    `gorm:"type:text"`
	TerminatedAt      *time.Time `gorm:"type:timestamptz"`

	// UpdatedAt comes from the service clock, never from gorm.
	CreatedAt   time.Time
	UpdatedAt   time.Time  `gorm:"autoUpdateTime:false"`
	SubmittedAt *time.Time `gorm:"type:timestamptz"`
	ApprovedAt  *time.Time `gorm:"type:timestamptz"`
	CompletedAt *time.Time `gorm:"type:timestamptz"`
}

func (Onboarding) TableName() string {
	return "onboardings"
}

func (o *Onboarding) FullName() string {
	if o.LastName == "" {
		return o.FirstName
	}
	return o.FirstName + " " + o.LastName
}

// Clone returns a deep copy of every mutable field, used as the snapshot that
// compensation restores.
func (o *Onboarding) Clone() *Onboarding {
	cp := *o
	cp.Invite = Invite{
		TokenHash:  cloneString(o.Invite.TokenHash),
		ExpiresAt:  cloneTime(o.Invite.ExpiresAt),
		LastSentAt: cloneTime(o.Invite.LastSentAt),
	}
	cp.OTP = OTP{
		Hash:       cloneString(o.OTP.Hash),
		ExpiresAt:  cloneTime(o.OTP.ExpiresAt),
		Attempts:   o.OTP.Attempts,
		LockedAt:   cloneTime(o.OTP.LockedAt),
		LastSentAt: cloneTime(o.OTP.LastSentAt),
	}
	if o.FormPayload != nil {
		cp.FormPayload = append(datatypes.JSON(nil), o.FormPayload...)
	}
	cp.EmployeeNumber = cloneString(o.EmployeeNumber)
	cp.ModificationRequestMessage = cloneString(o.ModificationRequestMessage)
	cp.ModificationRequestedAt = cloneTime(o.ModificationRequestedAt)
	cp.TerminationType = cloneString(o.TerminationType)
	cp.TerminationReason = cloneString(o.TerminationReason)
	cp.TerminatedAt = cloneTime(o.TerminatedAt)
	cp.SubmittedAt = cloneTime(o.SubmittedAt)
	cp.ApprovedAt = cloneTime(o.ApprovedAt)
	cp.CompletedAt = cloneTime(o.CompletedAt)
	return &cp
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	s := *v
	return &s
}

func cloneTime(v *time.Time) *time.Time {
	if v == nil {
		return nil
	}
	t := *v
	return &t
}

func StringPtr(v string) *string { return &v }

func TimePtr(v time.Time) *time.Time { return &v }
