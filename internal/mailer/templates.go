package mailer

import (
	"fmt"
	"strings"
	"time"

	"go-onboarding/internal/domain"
)

type message struct {
	Subject string
	Body    string
}

func greeting(to Recipient) string {
	if strings.TrimSpace(to.Name) == "" {
		return "Hello,"
	}
	return fmt.Sprintf("Hello %s,", to.Name)
}

func invitationMessage(to Recipient, link string, expiresAt time.Time) message {
	return message{
		Subject: "Complete your onboarding",
		Body: fmt.Sprintf("%s\n\nPlease complete your onboarding using the link below.\n\n%s\n\nThe link is valid until %s.\n",
			greeting(to), link, expiresAt.UTC().Format(time.RFC1123)),
	}
}

func manualFormMessage(to Recipient, subsidiary domain.Subsidiary) message {
	return message{
		Subject: "Your onboarding form",
		Body: fmt.Sprintf("%s\n\nHR will send you the %s onboarding form to fill in and return.\n",
			greeting(to), subsidiary),
	}
}

func otpMessage(to Recipient, code string, expiresAt time.Time) message {
	return message{
		Subject: "Your verification code",
		Body: fmt.Sprintf("%s\n\nYour verification code is %s. It expires at %s.\n",
			greeting(to), code, expiresAt.UTC().Format(time.Kitchen+" MST")),
	}
}

func modificationRequestMessage(to Recipient, note, link string) message {
	return message{
		Subject: "Changes requested on your onboarding",
		Body: fmt.Sprintf("%s\n\nHR asked for the following changes:\n\n%s\n\nUpdate your details here: %s\n",
			greeting(to), note, link),
	}
}

func approvedMessage(to Recipient, employeeNumber string) message {
	return message{
		Subject: "Your onboarding is approved",
		Body: fmt.Sprintf("%s\n\nYour onboarding has been approved. Your employee number is %s.\n",
			greeting(to), employeeNumber),
	}
}

func detailsConfirmedMessage(to Recipient) message {
	return message{
		Subject: "Your details have been confirmed",
		Body:    fmt.Sprintf("%s\n\nHR has reviewed and confirmed your onboarding details.\n", greeting(to)),
	}
}
