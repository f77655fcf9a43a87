package services

import (
	"context"
	"fmt"
	"html"

	"safeher/config"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

type mailDialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPMailer delivers alert emails over SMTP.
type SMTPMailer struct {
	dialer mailDialer
	from   string
	lg     *zap.Logger
}

func NewSMTPMailer(cfg config.MailConfig, lg *zap.Logger) *SMTPMailer {
	m := &SMTPMailer{from: cfg.From, lg: lg}
	if !cfg.Configured() {
		lg.Warn("Mail not configured, email alerts will be recorded as failed")
		return m
	}
	m.dialer = gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	return m
}

func (m *SMTPMailer) Configured() bool { return m.dialer != nil }

func (m *SMTPMailer) Send(ctx context.Context, address, subject, body string) (SendResult, error) {
	if m.dialer == nil {
		m.lg.Info("Email not sent, mail not configured", zap.String("to", address))
		return notConfigured, nil
	}
	if address == "" {
		return SendResult{}, fmt.Errorf("send email: no destination address")
	}

	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.from, "SafeHer Safety")
	msg.SetHeader("To", address)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)
	msg.AddAlternative("text/html", alertHTML(body))

	done := make(chan error, 1)
	go func() { done <- m.dialer.DialAndSend(msg) }()

	select {
	case <-ctx.Done():
		return SendResult{}, fmt.Errorf("send email: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			return SendResult{}, fmt.Errorf("send email: %w", err)
		}
		m.lg.Info("Email sent", zap.String("to", address))
		return SendResult{OK: true}, nil
	}
}

func alertHTML(body string) string {
	return `<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; background-color: #fff3f3; border: 2px solid #ef4444; border-radius: 10px;">
  <h2 style="color: #dc2626; margin-top: 0;">SafeHer Emergency Alert</h2>
  <div style="background-color: white; padding: 20px; border-radius: 5px; margin: 20px 0;">
    <pre style="white-space: pre-wrap; font-family: inherit;">` + html.EscapeString(body) + `</pre>
  </div>
  <p style="color: #666; font-size: 12px; text-align: center; margin-bottom: 0;">This is an automated emergency alert from SafeHer</p>
</div>`
}
