package usecase

import (
	"context"
	"time"

	"safeher/model"
	"safeher/services"
)

type SessionStore interface {
	Create(ctx context.Context, s *model.Session) error
	FindByID(ctx context.Context, id string) (*model.Session, error)
	FindActiveByUser(ctx context.Context, userID string) (*model.Session, error)
	ListByUser(ctx context.Context, userID string, page, limit int) ([]model.Session, int64, error)
	FindActiveWithDeadlineBefore(ctx context.Context, cutoff time.Time) ([]model.Session, error)
	FindActiveWithDeadlineAfter(ctx context.Context, cutoff time.Time) ([]model.Session, error)
	UpdateStatus(ctx context.Context, id string, from model.SessionStatus, upd model.StatusUpdate) (bool, error)
	UpdateLocation(ctx context.Context, id string, loc model.Location) (bool, error)
}

type ContactStore interface {
	Create(ctx context.Context, c *model.Contact) error
	ListActive(ctx context.Context, userID string) ([]model.Contact, error)
	FindByID(ctx context.Context, userID, id string) (*model.Contact, error)
	CountActive(ctx context.Context, userID string) (int64, error)
	PhoneHashExists(ctx context.Context, userID, hash, excludeID string) (bool, error)
	Update(ctx context.Context, userID, id string, upd model.ContactUpdate) (*model.Contact, error)
	ClearPrimary(ctx context.Context, userID, keepID string) error
	SoftDelete(ctx context.Context, userID, id string) error
	SoftDeleteAll(ctx context.Context, userID string) (int64, error)
}

type AlertStore interface {
	Create(ctx context.Context, a *model.Alert) error
	FindByID(ctx context.Context, userID, id string) (*model.Alert, error)
	ListByUser(ctx context.Context, userID string, page, limit int) ([]model.Alert, int64, error)
	ListBySession(ctx context.Context, userID, sessionID string) ([]model.Alert, error)
	Delete(ctx context.Context, userID, id string) error
	DeleteAll(ctx context.Context, userID string) (int64, error)
	Stats(ctx context.Context, userID string) (*model.AlertStats, error)
}

type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByEmailOrPhone(ctx context.Context, email, phone string) (*model.User, error)
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
}

type UserFinder interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
}

// Encryptor fails with an apperrors.KindEncryption error on bad ciphertext.
type Encryptor interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

type PhoneCipher interface {
	Encryptor
	Hash(phone string) string
}

type SMSSender interface {
	Send(ctx context.Context, phone, message string) (services.SendResult, error)
}

type EmailSender interface {
	Send(ctx context.Context, address, subject, body string) (services.SendResult, error)
}

type AlertDispatcher interface {
	Dispatch(ctx context.Context, sessionID string, reason model.AlertReason, location *model.Location) (*model.Alert, error)
	DispatchWithMetadata(ctx context.Context, sessionID string, reason model.AlertReason, location *model.Location, meta *model.AlertMetadata) (*model.Alert, error)
}

type ExpiryScheduler interface {
	ScheduleExpiry(sessionID string, scheduledEnd time.Time)
	CancelExpiry(sessionID string)
}
