package mailer

import (
	"context"
	"time"

	"go-onboarding/internal/domain"

	"go.uber.org/zap"
)

// logMailer writes messages to the log instead of delivering them. Used when
// SMTP_HOST is not configured.
type logMailer struct {
	logger *zap.Logger
}

func NewLogMailer(logger ...*zap.Logger) Mailer {
	l := zap.L().Named("mailer.log")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("mailer.log")
	}
	return &logMailer{logger: l}
}

func (m *logMailer) SendInvitation(ctx context.Context, to Recipient, link string, expiresAt time.Time) error {
	return m.write(to, invitationMessage(to, link, expiresAt))
}

func (m *logMailer) SendManualForm(ctx context.Context, to Recipient, subsidiary domain.Subsidiary) error {
	return m.write(to, manualFormMessage(to, subsidiary))
}

func (m *logMailer) SendOTP(ctx context.Context, to Recipient, code string, expiresAt time.Time) error {
	return m.write(to, otpMessage(to, code, expiresAt))
}

func (m *logMailer) SendModificationRequest(ctx context.Context, to Recipient, note, link string) error {
	return m.write(to, modificationRequestMessage(to, note, link))
}

func (m *logMailer) SendApproved(ctx context.Context, to Recipient, employeeNumber string) error {
	return m.write(to, approvedMessage(to, employeeNumber))
}

func (m *logMailer) SendDetailsConfirmed(ctx context.Context, to Recipient) error {
	return m.write(to, detailsConfirmedMessage(to))
}

func (m *logMailer) write(to Recipient, msg message) error {
	m.logger.Info("mail",
		zap.String("to", to.Email),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.Body),
	)
	return nil
}
