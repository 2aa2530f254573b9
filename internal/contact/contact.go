// Package contact delivers messages from the portfolio's contact form.
package contact

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
)

var (
	// ErrInvalidMessage wraps validation failures.
	ErrInvalidMessage = errors.New("invalid contact message")
	// ErrNotConfigured is returned when no mail transport is set up.
	ErrNotConfigured = errors.New("contact form not configured")
)

const maxMessageLength = 5000

type Message struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// Validate trims the fields in place and checks them.
func (m *Message) Validate() error {
	m.Name = strings.TrimSpace(m.Name)
	m.Email = strings.TrimSpace(m.Email)
	m.Message = strings.TrimSpace(m.Message)

	switch {
	case m.Name == "":
		return fmt.Errorf("%w: name is required", ErrInvalidMessage)
	case m.Email == "":
		return fmt.Errorf("%w: email is required", ErrInvalidMessage)
	case m.Message == "":
		return fmt.Errorf("%w: message is required", ErrInvalidMessage)
	case len(m.Message) > maxMessageLength:
		return fmt.Errorf("%w: message is longer than %d characters", ErrInvalidMessage, maxMessageLength)
	case strings.ContainsAny(m.Name, "\r\n"):
		return fmt.Errorf("%w: name must be a single line", ErrInvalidMessage)
	}
	if addr, err := mail.ParseAddress(m.Email); err != nil || addr.Address != m.Email {
		return fmt.Errorf("%w: email address is not valid", ErrInvalidMessage)
	}
	return nil
}

func (m Message) subject() string {
	return fmt.Sprintf("Portfolio Contact: %s", m.Name)
}

func (m Message) body() string {
	return fmt.Sprintf(`
New contact form submission from your portfolio:

Name: %s
Email: %s
Message:
%s

---
Sent from your portfolio contact form
`, m.Name, m.Email, m.Message)
}

// Sender delivers a validated message.
type Sender interface {
	Send(m Message) error
	Name() string
}

// Options selects and configures a Sender.
type Options struct {
	ResendAPIKey string
	From         string
	To           string
	SMTPHost     string
	SMTPPort     string
	SMTPUser     string
	SMTPPass     string
}

// NewSender prefers Resend, then SMTP. It returns ErrNotConfigured when
// neither has credentials.
func NewSender(opts Options) (Sender, error) {
	if opts.To == "" {
		opts.To = opts.SMTPUser
	}
	if opts.ResendAPIKey != "" {
		if opts.To == "" {
			return nil, fmt.Errorf("%w: CONTACT_TO is required with Resend", ErrNotConfigured)
		}
		return NewResendSender(opts.ResendAPIKey, opts.From, opts.To), nil
	}
	if opts.SMTPUser != "" && opts.SMTPPass != "" {
		return NewSMTPSender(opts.SMTPHost, opts.SMTPPort, opts.SMTPUser, opts.SMTPPass, opts.To), nil
	}
	return nil, ErrNotConfigured
}
