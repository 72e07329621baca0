package service

import (
	"bitwise74/shop-api/config"
	"context"
	"errors"

	"gopkg.in/gomail.v2"
)

// Notification is one plain text email
type Notification struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Mailer delivers a single notification
type Mailer interface {
	Send(ctx context.Context, n Notification) error
}

// SMTPMailer sends through the configured SMTP relay, one connection per message
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(c config.Mail) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(c.Host, c.Port, c.Sender, c.Password),
		from:   c.Sender,
	}
}

func (m *SMTPMailer) Send(ctx context.Context, n Notification) error {
	if n.To == "" || n.To == m.from {
		return errors.New("invalid recipient address")
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", n.To)
	msg.SetHeader("Subject", n.Subject)
	msg.SetBody("text/plain", n.Body)

	return m.dialer.DialAndSend(msg)
}
