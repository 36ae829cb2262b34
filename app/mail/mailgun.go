package mail

import (
	"context"
	"fmt"
	"time"

	"github.com/mailgun/mailgun-go/v4"
)

type Email struct {
	Subject      string
	Body         string
	From         string
	To           []string
	Template     string
	TemplateVars map[string]any
}

type Mailer interface {
	SendMail(e *Email) error
}

type Mailgun struct {
	domain  string
	apiKey  string
	apiBase string
}

func NewMailer(domain, apiKey, apiBase string) *Mailgun {
	return &Mailgun{
		domain:  domain,
		apiKey:  apiKey,
		apiBase: apiBase,
	}
}

func (m *Mailgun) SendMail(e *Email) error {
	mg := mailgun.NewMailgun(m.domain, m.apiKey)
	mg.SetAPIBase(m.apiBase)

	message := mailgun.NewMessage(e.From, e.Subject, e.Body, e.To...)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	_, _, err := mg.Send(ctx, message)
	if err != nil {
		return err
	}

	return nil
}

// SendPasswordReset delivers the reset key to the account holder.
func (m *Mailgun) SendPasswordReset(to string, resetKey string) error {
	return m.SendMail(&Email{
		Subject: "Password reset",
		Body: fmt.Sprintf("A password reset was requested for your account.\n\n"+
			"Use the following key to set a new password: %s\n\n"+
			"If you did not request this, you can ignore this message.", resetKey),
		From: fmt.Sprintf("noreply@%s", m.domain),
		To:   []string{to},
	})
}
