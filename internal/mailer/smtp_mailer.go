package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"go-onboarding/internal/domain"

	"go.uber.org/zap"
)

type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

type smtpMailer struct {
	cfg    SMTPConfig
	logger *zap.Logger
}

func NewSMTPMailer(cfg SMTPConfig, logger ...*zap.Logger) Mailer {
	l := zap.L().Named("mailer.smtp")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("mailer.smtp")
	}
	return &smtpMailer{cfg: cfg, logger: l}
}

func (m *smtpMailer) SendInvitation(ctx context.Context, to Recipient, link string, expiresAt time.Time) error {
	return m.send(ctx, to, invitationMessage(to, link, expiresAt))
}

func (m *smtpMailer) SendManualForm(ctx context.Context, to Recipient, subsidiary domain.Subsidiary) error {
	return m.send(ctx, to, manualFormMessage(to, subsidiary))
}

func (m *smtpMailer) SendOTP(ctx context.Context, to Recipient, code string, expiresAt time.Time) error {
	return m.send(ctx, to, otpMessage(to, code, expiresAt))
}

func (m *smtpMailer) SendModificationRequest(ctx context.Context, to Recipient, note, link string) error {
	return m.send(ctx, to, modificationRequestMessage(to, note, link))
}

func (m *smtpMailer) SendApproved(ctx context.Context, to Recipient, employeeNumber string) error {
	return m.send(ctx, to, approvedMessage(to, employeeNumber))
}

func (m *smtpMailer) SendDetailsConfirmed(ctx context.Context, to Recipient) error {
	return m.send(ctx, to, detailsConfirmedMessage(to))
}

func (m *smtpMailer) send(ctx context.Context, to Recipient, msg message) error {
	addr := net.JoinHostPort(m.cfg.Host, m.cfg.Port)

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("smtp dial %s: %w", addr, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	c, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: m.cfg.Host, MinVersion: tls.VersionTLS12}); err != nil {
			return fmt.Errorf("smtp starttls: %w", err)
		}
	}
	if m.cfg.Username != "" {
		if err := c.Auth(smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}
	if err := c.Mail(m.cfg.From); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	if err := c.Rcpt(to.Email); err != nil {
		return fmt.Errorf("smtp rcpt: %w", err)
	}

	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(buildMIME(m.cfg.From, to.Email, msg)); err != nil {
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp close data: %w", err)
	}

	m.logger.Info("mail sent", zap.String("subject", msg.Subject), zap.String("to", to.Email))
	return c.Quit()
}

func buildMIME(from, to string, msg message) []byte {
	var sb strings.Builder
	sb.WriteString("From: " + from + "\r\n")
	sb.WriteString("To: " + to + "\r\n")
	sb.WriteString("Subject: " + msg.Subject + "\r\n")
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(strings.ReplaceAll(msg.Body, "\n", "\r\n"))
	return []byte(sb.String())
}
