package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"safeher/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

type fakeTwilio struct {
	params *twilioApi.CreateMessageParams
	err    error
	delay  time.Duration
}

func (f *fakeTwilio) CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error) {
	f.params = params
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.err != nil {
		return nil, f.err
	}
	sid := "SM123"
	return &twilioApi.ApiV2010Message{Sid: &sid}, nil
}

func TestFormatE164(t *testing.T) {
	assert.Equal(t, "+919876543210", FormatE164("98765-43210", "91"))
	assert.Equal(t, "+919876543210", FormatE164("+91 98765 43210", "91"))
	assert.Equal(t, "+14155550100", FormatE164("+1 415 555 0100", "91"))
}

func TestTwilioNotConfigured(t *testing.T) {
	sms := NewTwilioSMS(config.TwilioConfig{}, zap.NewNop())
	assert.False(t, sms.Configured())

	res, err := sms.Send(context.Background(), "9876543210", "help")
	require.NoError(t, err)
	assert.False(t, res.OK)
	assert.Equal(t, "not configured", res.Reason)
}

func TestTwilioSend(t *testing.T) {
	fake := &fakeTwilio{}
	sms := &TwilioSMS{api: fake, from: "+15550001111", countryCode: "91", lg: zap.NewNop()}

	res, err := sms.Send(context.Background(), "9876543210", "help")
	require.NoError(t, err)
	assert.True(t, res.OK)
	assert.Equal(t, "SM123", res.ProviderID)
	assert.Equal(t, "+919876543210", *fake.params.To)
	assert.Equal(t, "help", *fake.params.Body)
}

func TestTwilioSendError(t *testing.T) {
	sms := &TwilioSMS{api: &fakeTwilio{err: errors.New("invalid number")}, lg: zap.NewNop()}

	_, err := sms.Send(context.Background(), "9876543210", "help")
	assert.ErrorContains(t, err, "invalid number")
}

func TestTwilioSendTimeout(t *testing.T) {
	sms := &TwilioSMS{api: &fakeTwilio{delay: 200 * time.Millisecond}, lg: zap.NewNop()}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := sms.Send(ctx, "9876543210", "help")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

type fakeDialer struct {
	sent []*gomail.Message
	err  error
}

func (f *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	f.sent = append(f.sent, m...)
	return f.err
}

func TestMailerNotConfigured(t *testing.T) {
	m := NewSMTPMailer(config.MailConfig{Host: "smtp.gmail.com"}, zap.NewNop())

	res, err := m.Send(context.Background(), "a@example.com", "subj", "body")
	require.NoError(t, err)
	assert.False(t, res.OK)
}

func TestMailerSend(t *testing.T) {
	d := &fakeDialer{}
	m := &SMTPMailer{dialer: d, from: "alerts@example.com", lg: zap.NewNop()}

	res, err := m.Send(context.Background(), "mum@example.com", "EMERGENCY", "Riya may be in danger")
	require.NoError(t, err)
	assert.True(t, res.OK)
	require.Len(t, d.sent, 1)
	assert.Equal(t, []string{"mum@example.com"}, d.sent[0].GetHeader("To"))
	assert.Equal(t, []string{"EMERGENCY"}, d.sent[0].GetHeader("Subject"))
}

func TestMailerRequiresAddress(t *testing.T) {
	m := &SMTPMailer{dialer: &fakeDialer{}, lg: zap.NewNop()}

	_, err := m.Send(context.Background(), "", "subj", "body")
	assert.Error(t, err)
}

func TestMailerSendError(t *testing.T) {
	m := &SMTPMailer{dialer: &fakeDialer{err: errors.New("535 auth failed")}, lg: zap.NewNop()}

	_, err := m.Send(context.Background(), "a@example.com", "subj", "body")
	assert.ErrorContains(t, err, "535")
}

func TestFormatE164NationalNumberStartingWithCountryCode(t *testing.T) {
	assert.Equal(t, "+919123456789", FormatE164("9123456789", "91"))
}
