package contact

import (
	"fmt"

	"github.com/resendlabs/resend-go"
)

// ResendSender sends through the Resend HTTP API.
type ResendSender struct {
	client *resend.Client
	from   string
	to     string
}

func NewResendSender(apiKey, from, to string) *ResendSender {
	if from == "" {
		from = "Portfolio <onboarding@resend.dev>"
	}
	return &ResendSender{
		client: resend.NewClient(apiKey),
		from:   from,
		to:     to,
	}
}

func (s *ResendSender) Name() string { return "resend" }

func (s *ResendSender) Send(m Message) error {
	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{s.to},
		Subject: m.subject(),
		Text:    m.body(),
		ReplyTo: m.Email,
	}
	if _, err := s.client.Emails.Send(params); err != nil {
		return fmt.Errorf("failed to send contact email via Resend: %w", err)
	}
	return nil
}
