package usecase

import (
	"context"
	"fmt"
	"time"

	"safeher/apperrors"
	"safeher/model"
	"safeher/scheduler"
	"safeher/services"
	"safeher/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type DispatcherDeps struct {
	Sessions SessionStore
	Contacts ContactStore
	Alerts   AlertStore
	Users    UserFinder
	Crypto   Encryptor
	SMS      SMSSender
	Email    EmailSender
	Clock    scheduler.Clock
}

type DispatcherConfig struct {
	SendTimeout time.Duration
	Location    *time.Location
}

// Dispatcher fans an alert out to every active contact of the session owner
// and records the per-contact outcome.
type Dispatcher struct {
	DispatcherDeps
	cfg   DispatcherConfig
	lg    *zap.Logger
	newID func() string
}

func NewDispatcher(deps DispatcherDeps, cfg DispatcherConfig, lg *zap.Logger) *Dispatcher {
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 10 * time.Second
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if deps.Clock == nil {
		deps.Clock = scheduler.NewRealClock()
	}
	return &Dispatcher{DispatcherDeps: deps, cfg: cfg, lg: lg, newID: uuid.NewString}
}

func (d *Dispatcher) Dispatch(ctx context.Context, sessionID string, reason model.AlertReason, location *model.Location) (*model.Alert, error) {
	return d.DispatchWithMetadata(ctx, sessionID, reason, location, nil)
}

// DispatchWithMetadata sends the alert and persists it. Channel and contact
// failures only show up in the ledger. A nil alert means nothing was sent; a
// non-nil alert with an error means the sends happened but saving failed.
func (d *Dispatcher) DispatchWithMetadata(ctx context.Context, sessionID string, reason model.AlertReason, location *model.Location, meta *model.AlertMetadata) (*model.Alert, error) {
	session, err := d.Sessions.FindByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	user, err := d.Users.FindByID(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("load session owner: %w", err)
	}

	contacts, err := d.Contacts.ListActive(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("load contacts: %w", err)
	}
	if len(contacts) == 0 {
		d.lg.Warn("No emergency contacts found", zap.String("user_id", user.UserID), zap.String("session_id", sessionID))
	}

	if location == nil {
		location = session.LastKnown
	}

	now := d.Clock.Now()
	message := RenderAlertMessage(user.Name, reason, now, d.cfg.Location, session, location)
	subject := alertSubject(user.Name)

	ledger := make([]model.ContactDelivery, 0, len(contacts))
	for i := range contacts {
		ledger = append(ledger, d.notifyContact(ctx, &contacts[i], user, subject, message))
	}

	alert := &model.Alert{
		ID:            d.newID(),
		UserID:        session.UserID,
		SessionID:     session.ID,
		TriggerReason: reason,
		Location:      location,
		VehicleInfo: model.VehicleInfo{
			Type:   session.VehicleType,
			Number: session.VehicleNumber,
		},
		Message:          message,
		ContactsNotified: ledger,
		Status:           model.ComputeStatus(ledger),
		Metadata:         meta,
		CreatedAt:        now,
	}
	utils.TrackDispatch(string(reason), string(alert.Status))

	if err := d.Alerts.Create(ctx, alert); err != nil {
		d.lg.Error("Alert sent but not saved",
			zap.String("session_id", sessionID),
			zap.String("alert_id", alert.ID),
			zap.Error(err))
		return alert, apperrors.Persistence(err, "failed to save alert")
	}

	d.lg.Info("Alert dispatched",
		zap.String("session_id", sessionID),
		zap.String("alert_id", alert.ID),
		zap.String("reason", string(reason)),
		zap.String("status", string(alert.Status)),
		zap.Int("contacts", len(ledger)))
	return alert, nil
}

func (d *Dispatcher) notifyContact(ctx context.Context, contact *model.Contact, user *model.User, subject, message string) model.ContactDelivery {
	entry := model.ContactDelivery{
		ContactID:   contact.ID,
		Name:        contact.Name,
		SMSStatus:   model.DeliveryPending,
		EmailStatus: model.DeliveryPending,
	}

	phone, err := d.Crypto.Decrypt(contact.PhoneNumber)
	if err != nil {
		d.lg.Warn("Skipping contact, phone could not be decrypted",
			zap.String("contact_id", contact.ID), zap.Error(err))
		utils.TrackError("dispatch", "decrypt_failed")
		entry.SMSStatus = model.DeliveryFailed
		entry.EmailStatus = model.DeliveryFailed
		entry.SMSError = "phone number could not be decrypted"
		entry.EmailError = entry.SMSError
		return entry
	}
	entry.Phone = services.MaskPhone(phone)

	smsErr := d.attempt(ctx, "sms", func(ctx context.Context) (services.SendResult, error) {
		return d.SMS.Send(ctx, phone, message)
	})
	d.record(&entry.SMSStatus, &entry.SMSSentAt, &entry.SMSError, smsErr)

	address := contact.Email
	if address == "" {
		address = user.Email
	}
	emailErr := d.attempt(ctx, "email", func(ctx context.Context) (services.SendResult, error) {
		return d.Email.Send(ctx, address, subject, message)
	})
	d.record(&entry.EmailStatus, &entry.EmailSentAt, &entry.EmailError, emailErr)

	if smsErr != nil || emailErr != nil {
		d.lg.Warn("Delivery incomplete",
			zap.String("contact_id", contact.ID),
			zap.NamedError("sms_error", smsErr),
			zap.NamedError("email_error", emailErr))
	}
	return entry
}

// attempt runs one channel send under the per-channel timeout and folds a
// not-configured result into a delivery error.
func (d *Dispatcher) attempt(ctx context.Context, channel string, send func(context.Context) (services.SendResult, error)) error {
	ctx, cancel := context.WithTimeout(ctx, d.cfg.SendTimeout)
	defer cancel()

	res, err := send(ctx)
	switch {
	case err != nil:
		err = apperrors.Delivery(err, channel+" send failed")
	case !res.OK:
		err = apperrors.Delivery(nil, channel+" "+res.Reason)
	}

	if err != nil {
		utils.TrackDelivery(channel, string(model.DeliveryFailed))
		return err
	}
	utils.TrackDelivery(channel, string(model.DeliverySent))
	return nil
}

func (d *Dispatcher) record(status *model.DeliveryStatus, sentAt **time.Time, reason *string, err error) {
	if err != nil {
		*status = model.DeliveryFailed
		*reason = err.Error()
		return
	}
	at := d.Clock.Now()
	*status = model.DeliverySent
	*sentAt = &at
}
