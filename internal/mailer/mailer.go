package mailer

import (
	"context"
	"time"

	"go-onboarding/internal/domain"
)

type Recipient struct {
	Email string
	Name  string
}

func RecipientOf(o *domain.Onboarding) Recipient {
	return Recipient{Email: o.Email, Name: o.FullName()}
}

// Mailer delivers lifecycle notifications. Every method returns an error when
// the message was not accepted; callers do not retry.
//
//go:generate mockgen -source=mailer.go -destination=mock/mailer_mock.go -package=mock
type Mailer interface {
	SendInvitation(ctx context.Context, to Recipient, link string, expiresAt time.Time) error
	SendManualForm(ctx context.Context, to Recipient, subsidiary domain.Subsidiary) error
	SendOTP(ctx context.Context, to Recipient, code string, expiresAt time.Time) error
	SendModificationRequest(ctx context.Context, to Recipient, message, link string) error
	SendApproved(ctx context.Context, to Recipient, employeeNumber string) error
	SendDetailsConfirmed(ctx context.Context, to Recipient) error
}
