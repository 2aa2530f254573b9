package contact

import (
	"fmt"
	"net/smtp"
)

// SMTPSender sends through an authenticated SMTP relay such as Gmail.
type SMTPSender struct {
	host string
	port string
	user string
	pass string
	to   string

	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPSender(host, port, user, pass, to string) *SMTPSender {
	if host == "" {
		host = "smtp.gmail.com"
	}
	if port == "" {
		port = "587"
	}
	return &SMTPSender{
		host:     host,
		port:     port,
		user:     user,
		pass:     pass,
		to:       to,
		sendMail: smtp.SendMail,
	}
}

func (s *SMTPSender) Name() string { return "smtp" }

func (s *SMTPSender) Send(m Message) error {
	msg := []byte("To: " + s.to + "\r\n" +
		"Subject: " + m.subject() + "\r\n" +
		"From: " + s.user + "\r\n" +
		"Reply-To: " + m.Email + "\r\n" +
		"\r\n" +
		m.body() + "\r\n")

	auth := smtp.PlainAuth("", s.user, s.pass, s.host)
	if err := s.sendMail(s.host+":"+s.port, auth, s.user, []string{s.to}, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
