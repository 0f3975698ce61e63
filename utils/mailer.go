package utils

import (
	"context"

	"gopkg.in/gomail.v2"
)

type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// SMTPMailer delivers HTML mail through an authenticated SMTP relay.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(host string, port int, user, pass string) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, user, pass),
		from:   user,
	}
}

func (m *SMTPMailer) Send(_ context.Context, to, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)
	return m.dialer.DialAndSend(msg)
}

type NopMailer struct{}

func (NopMailer) Send(context.Context, string, string, string) error { return nil }
