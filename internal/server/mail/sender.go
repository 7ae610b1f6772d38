// Package mail delivers the summary email over SMTP.
package mail

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/todokeeper/internal/server/config"
	"gopkg.in/gomail.v2"
)

// dialAndSend is a seam for tests.
var dialAndSend = func(d *gomail.Dialer, m ...*gomail.Message) error {
	return d.DialAndSend(m...)
}

// Message is a two-part (plain text and HTML) email to the configured recipient.
type Message struct {
	Subject string
	Text    string
	HTML    string
}

type SMTPSender struct {
	from   string
	to     string
	dialer *gomail.Dialer
}

func NewSMTPSender(cfg *config.Config) *SMTPSender {
	return &SMTPSender{
		from:   cfg.MailFrom,
		to:     cfg.MailTo,
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword),
	}
}

// Configured reports whether host, sender and recipient are all set.
func (s *SMTPSender) Configured() bool {
	return s.dialer.Host != "" && s.from != "" && s.to != ""
}

// Send builds and delivers msg. The context is only checked before dialling;
// gomail has no cancellation of its own.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if !s.Configured() {
		return fmt.Errorf("mail: sender not configured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", s.to)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Text)
	if msg.HTML != "" {
		m.AddAlternative("text/html", msg.HTML)
	}

	if err := dialAndSend(s.dialer, m); err != nil {
		return fmt.Errorf("mail: send: %w", err)
	}
	return nil
}
