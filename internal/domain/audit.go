package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type AuditAction string

const (
	AuditActionCreated               AuditAction = "CREATED"
	AuditActionInviteResent          AuditAction = "INVITE_RESENT"
	AuditActionOtpSent               AuditAction = "OTP_SENT"
	AuditActionOtpVerified           AuditAction = "OTP_VERIFIED"
	AuditActionFormSaved             AuditAction = "FORM_SAVED"
	AuditActionSubmitted             AuditAction = "SUBMITTED"
	AuditActionModificationRequested AuditAction = "MODIFICATION_REQUESTED"
	AuditActionDetailsConfirmed      AuditAction = "DETAILS_CONFIRMED"
	AuditActionApproved              AuditAction = "APPROVED"
	AuditActionTerminated            AuditAction = "TERMINATED"
	AuditActionRestored              AuditAction = "RESTORED"
)

type ActorType string

const (
	ActorHR       ActorType = "HR"
	ActorEmployee ActorType = "EMPLOYEE"
	ActorSystem   ActorType = "SYSTEM"
)

// Actor identifies who performed an action.
type Actor struct {
	Type  ActorType
	ID    string
	Name  string
	Email string
}

func SystemActor() Actor {
	return Actor{Type: ActorSystem, Name: "system"}
}

// AuditLogEntry rows are append-only.
type AuditLogEntry struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey"`
	OnboardingID uuid.UUID      `gorm:"type:uuid;not null;index:idx_audit_logs_onboarding"`
	Action       AuditAction    `gorm:"type:varchar(40);not null"`
	ActorType    ActorType      `gorm:"type:varchar(20);not null"`
	ActorID      *string        `gorm:"type:varchar(64)"`
	ActorName    string         `gorm:"type:varchar(255)"`
	ActorEmail   string         `gorm:"type:varchar(255)"`
	Message      string         `gorm:"type:text"`
	Metadata     datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt    time.Time      `gorm:"index:idx_audit_logs_onboarding"`
}

func (AuditLogEntry) TableName() string {
	return "audit_logs"
}
