package mail

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

// Mailer sends account lifecycle mail. Delivery is best-effort; callers log
// failures instead of failing the request.
type Mailer interface {
	SendWelcome(to, username string) error
}

// SMTPMailer delivers mail through a plain SMTP endpoint.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(host string, port int, username, password, from string) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

func (m *SMTPMailer) SendWelcome(to, username string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Welcome to Market Board")
	msg.SetBody("text/plain", fmt.Sprintf("Account created for %s! You can now log in.", username))

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send welcome mail: %w", err)
	}
	return nil
}

// Disabled is used when no SMTP host is configured.
type Disabled struct{}

func (Disabled) SendWelcome(string, string) error { return nil }
