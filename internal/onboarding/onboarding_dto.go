package onboarding

import (
	"encoding/json"
	"strings"
	"time"

	"go-onboarding/internal/access"
	"go-onboarding/internal/domain"
)

type CreateOnboardingRequest struct {
	Subsidiary string `json:"subsidiary" binding:"required,oneof=INDIA CANADA US"`
	Method     string `json:"method" binding:"required,oneof=DIGITAL MANUAL"`
	Email      string `json:"email" binding:"required,email"`
	FirstName  string `json:"first_name" binding:"required"`
	LastName   string `json:"last_name"`
}

type RequestModificationRequest struct {
	Message string `json:"message" binding:"required"`
}

type ApproveRequest struct {
	EmployeeNumber string `json:"employee_number" binding:"required"`
}

type TerminateRequest struct {
	Type   string `json:"type" binding:"required"`
	Reason string `json:"reason"`
}

// FormRequest carries the subsidiary form as raw JSON; it is decoded into the
// subsidiary's form type by the service.
type FormRequest struct {
	Form json.RawMessage `json:"form" binding:"required"`
}

type ListFilter struct {
	Subsidiary string `form:"subsidiary"`
	Status     string `form:"status"`
	Page       int    `form:"page"`
	PageSize   int    `form:"page_size"`
}

type VerifyInviteRequest struct {
	Token string `json:"token" binding:"required"`
}

type VerifyOtpRequest struct {
	Token string `json:"token" binding:"required"`
	Code  string `json:"code" binding:"required,len=6,numeric"`
}

// EmployeeCredential is what the session cookie proves.
type EmployeeCredential struct {
	OnboardingID string
	InviteHash   string
}

type InviteResponse struct {
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	LastSentAt *time.Time `json:"last_sent_at,omitempty"`
}

type OtpResponse struct {
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	Attempts   int        `json:"attempts"`
	LockedAt   *time.Time `json:"locked_at,omitempty"`
	LastSentAt *time.Time `json:"last_sent_at,omitempty"`
}

type OnboardingResponse struct {
	ID             string          `json:"id"`
	Subsidiary     string          `json:"subsidiary"`
	Method         string          `json:"method"`
	Status         string          `json:"status"`
	Email          string          `json:"email"`
	FirstName      string          `json:"first_name"`
	LastName       string          `json:"last_name"`
	EmployeeNumber *string         `json:"employee_number,omitempty"`
	IsFormComplete bool            `json:"is_form_complete"`
	IsCompleted    bool            `json:"is_completed"`
	Form           json.RawMessage `json:"form,omitempty"`
	Invite         *InviteResponse `json:"invite,omitempty"`
	Otp            *OtpResponse    `json:"otp,omitempty"`

	ModificationRequestMessage *string    `json:"modification_request_message,omitempty"`
	ModificationRequestedAt    *time.Time `json:"modification_requested_at,omitempty"`

	TerminationType   *string    `json:"termination_type,omitempty"`
	TerminationReason *string    `json:"termination_reason,omitempty"`
	TerminatedAt      *time.Time `json:"terminated_at,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
	ApprovedAt  *time.Time `json:"approved_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// EmployeeOnboardingResponse is the employee-facing view. It never carries
// invite or OTP state.
type EmployeeOnboardingResponse struct {
	ID                         string          `json:"id"`
	Subsidiary                 string          `json:"subsidiary"`
	Status                     string          `json:"status"`
	FirstName                  string          `json:"first_name"`
	LastName                   string          `json:"last_name"`
	IsFormComplete             bool            `json:"is_form_complete"`
	Form                       json.RawMessage `json:"form,omitempty"`
	ModificationRequestMessage *string         `json:"modification_request_message,omitempty"`
	Access                     access.Decision `json:"access"`
}

type VerifyInviteResponse struct {
	OnboardingID string    `json:"onboarding_id"`
	FirstName    string    `json:"first_name"`
	OtpSentTo    string    `json:"otp_sent_to"`
	OtpExpiresAt time.Time `json:"otp_expires_at"`
}

type SummaryResponse struct {
	Total        int64                       `json:"total"`
	BySubsidiary map[string]map[string]int64 `json:"by_subsidiary"`
}

type AuditLogResponse struct {
	ID         string         `json:"id"`
	Action     string         `json:"action"`
	ActorType  string         `json:"actor_type"`
	ActorID    *string        `json:"actor_id,omitempty"`
	ActorName  string         `json:"actor_name"`
	ActorEmail string         `json:"actor_email,omitempty"`
	Message    string         `json:"message"`
	Metadata   map[string]any `json:"metadata"`
	CreatedAt  time.Time      `json:"created_at"`
}

func mapToResponse(o *domain.Onboarding) OnboardingResponse {
	resp := OnboardingResponse{
		ID:                         o.ID.String(),
		Subsidiary:                 string(o.Subsidiary),
		Method:                     string(o.Method),
		Status:                     string(o.Status),
		Email:                      o.Email,
		FirstName:                  o.FirstName,
		LastName:                   o.LastName,
		EmployeeNumber:             o.EmployeeNumber,
		IsFormComplete:             o.IsFormComplete,
		IsCompleted:                o.IsCompleted,
		Form:                       json.RawMessage(o.FormPayload),
		ModificationRequestMessage: o.ModificationRequestMessage,
		ModificationRequestedAt:    o.ModificationRequestedAt,
		TerminationType:            o.TerminationType,
		TerminationReason:          o.TerminationReason,
		TerminatedAt:               o.TerminatedAt,
		CreatedAt:                  o.CreatedAt,
		UpdatedAt:                  o.UpdatedAt,
		SubmittedAt:                o.SubmittedAt,
		ApprovedAt:                 o.ApprovedAt,
		CompletedAt:                o.CompletedAt,
	}
	if o.Invite.Present() {
		resp.Invite = &InviteResponse{ExpiresAt: o.Invite.ExpiresAt, LastSentAt: o.Invite.LastSentAt}
	}
	if o.OTP.Present() {
		resp.Otp = &OtpResponse{
			ExpiresAt:  o.OTP.ExpiresAt,
			Attempts:   o.OTP.Attempts,
			LockedAt:   o.OTP.LockedAt,
			LastSentAt: o.OTP.LastSentAt,
		}
	}
	return resp
}

func mapToListResponse(items []domain.Onboarding) []OnboardingResponse {
	out := make([]OnboardingResponse, 0, len(items))
	for i := range items {
		out = append(out, mapToResponse(&items[i]))
	}
	return out
}

func mapToEmployeeResponse(o *domain.Onboarding, now time.Time) EmployeeOnboardingResponse {
	return EmployeeOnboardingResponse{
		ID:                         o.ID.String(),
		Subsidiary:                 string(o.Subsidiary),
		Status:                     string(o.Status),
		FirstName:                  o.FirstName,
		LastName:                   o.LastName,
		IsFormComplete:             o.IsFormComplete,
		Form:                       json.RawMessage(o.FormPayload),
		ModificationRequestMessage: o.ModificationRequestMessage,
		Access:                     access.Evaluate(o, now),
	}
}

func mapToAuditResponse(entries []domain.AuditLogEntry) []AuditLogResponse {
	out := make([]AuditLogResponse, 0, len(entries))
	for _, e := range entries {
		metadata := map[string]any{}
		if len(e.Metadata) > 0 {
			_ = json.Unmarshal(e.Metadata, &metadata)
		}
		out = append(out, AuditLogResponse{
			ID:         e.ID.String(),
			Action:     string(e.Action),
			ActorType:  string(e.ActorType),
			ActorID:    e.ActorID,
			ActorName:  e.ActorName,
			ActorEmail: e.ActorEmail,
			Message:    e.Message,
			Metadata:   metadata,
			CreatedAt:  e.CreatedAt,
		})
	}
	return out
}

// maskEmail keeps the first character of the local part.
func maskEmail(email string) string {
	at := strings.IndexByte(email, '@')
	if at <= 1 {
		return email
	}
	return email[:1] + "***" + email[at:]
}
