package services

import (
	"context"
	"fmt"
	"strings"

	"safeher/config"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"
)

type messageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// TwilioSMS sends SMS through Twilio. Without credentials every send returns
// a not-configured result.
type TwilioSMS struct {
	api         messageCreator
	from        string
	countryCode string
	lg          *zap.Logger
}

func NewTwilioSMS(cfg config.TwilioConfig, lg *zap.Logger) *TwilioSMS {
	s := &TwilioSMS{from: cfg.FromNumber, countryCode: cfg.CountryCode, lg: lg}
	if !cfg.Configured() {
		lg.Warn("Twilio not configured, SMS alerts will be recorded as failed")
		return s
	}
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})
	s.api = client.Api
	return s
}

func (s *TwilioSMS) Configured() bool { return s.api != nil }

func (s *TwilioSMS) Send(ctx context.Context, phone, message string) (SendResult, error) {
	if s.api == nil {
		s.lg.Info("SMS not sent, Twilio not configured", zap.String("to", MaskPhone(phone)))
		return notConfigured, nil
	}

	to := FormatE164(phone, s.countryCode)
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(s.from)
	params.SetBody(message)

	type result struct {
		msg *twilioApi.ApiV2010Message
		err error
	}
	done := make(chan result, 1)
	go func() {
		msg, err := s.api.CreateMessage(params)
		done <- result{msg, err}
	}()

	select {
	case <-ctx.Done():
		return SendResult{}, fmt.Errorf("send sms: %w", ctx.Err())
	case r := <-done:
		if r.err != nil {
			return SendResult{}, fmt.Errorf("send sms: %w", r.err)
		}
		sid := ""
		if r.msg != nil && r.msg.Sid != nil {
			sid = *r.msg.Sid
		}
		s.lg.Info("SMS sent", zap.String("to", MaskPhone(to)), zap.String("sid", sid))
		return SendResult{OK: true, ProviderID: sid}, nil
	}
}

// FormatE164 strips formatting and prefixes the country code onto bare
// 10-digit national numbers.
func FormatE164(phone, countryCode string) string {
	digits := DigitsOnly(phone)
	if len(digits) == 10 && countryCode != "" {
		digits = countryCode + digits
	}
	return "+" + digits
}

// MaskPhone keeps only the last four digits.
func MaskPhone(phone string) string {
	if len(phone) <= 4 {
		return "****"
	}
	return strings.Repeat("*", len(phone)-4) + phone[len(phone)-4:]
}
