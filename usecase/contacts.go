package usecase

import (
	"context"
	"regexp"
	"strings"

	"safeher/apperrors"
	"safeher/dto"
	"safeher/model"
	"safeher/scheduler"
	"safeher/services"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const decryptFailedPhone = "Error decrypting"

var phone10 = regexp.MustCompile(`^[0-9]{10}$`)

type ContactService struct {
	Contacts ContactStore
	Cipher   PhoneCipher
	Clock    scheduler.Clock
	lg       *zap.Logger
}

func NewContactService(contacts ContactStore, cipher PhoneCipher, clock scheduler.Clock, lg *zap.Logger) *ContactService {
	if clock == nil {
		clock = scheduler.NewRealClock()
	}
	return &ContactService{Contacts: contacts, Cipher: cipher, Clock: clock, lg: lg}
}

func normalizePhone(raw string) (string, error) {
	phone := services.DigitsOnly(raw)
	if !phone10.MatchString(phone) {
		return "", apperrors.Validation("phone number must be 10 digits")
	}
	return phone, nil
}

func (s *ContactService) toResponse(c *model.Contact) dto.ContactResponse {
	phone, err := s.Cipher.Decrypt(c.PhoneNumber)
	if err != nil {
		s.lg.Warn("Failed to decrypt contact phone", zap.String("contact_id", c.ID), zap.Error(err))
		phone = decryptFailedPhone
	}
	return dto.ToContactResponse(c, phone)
}

// List returns active contacts, primary first then newest.
func (s *ContactService) List(ctx context.Context, userID string) ([]dto.ContactResponse, error) {
	contacts, err := s.Contacts.ListActive(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ContactResponse, 0, len(contacts))
	for i := range contacts {
		out = append(out, s.toResponse(&contacts[i]))
	}
	return out, nil
}

func (s *ContactService) Get(ctx context.Context, userID, id string) (*dto.ContactResponse, error) {
	c, err := s.Contacts.FindByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	resp := s.toResponse(c)
	return &resp, nil
}

func (s *ContactService) Create(ctx context.Context, userID string, req dto.CreateContactRequest) (*dto.ContactResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.Validation("name is required")
	}
	phone, err := normalizePhone(req.PhoneNumber)
	if err != nil {
		return nil, err
	}
	rel := model.RelationshipFamily
	if req.Relationship != "" {
		rel = model.Relationship(req.Relationship)
		if !rel.Valid() {
			return nil, apperrors.Validation("invalid relationship %q", req.Relationship)
		}
	}

	count, err := s.Contacts.CountActive(ctx, userID)
	if err != nil {
		return nil, err
	}
	if count >= model.MaxActiveContacts {
		return nil, apperrors.Validation("maximum %d emergency contacts allowed", model.MaxActiveContacts)
	}

	hash := s.Cipher.Hash(phone)
	exists, err := s.Contacts.PhoneHashExists(ctx, userID, hash, "")
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.Conflict("contact with this phone number already exists")
	}

	encrypted, err := s.Cipher.Encrypt(phone)
	if err != nil {
		return nil, err
	}

	primary := count == 0
	if req.IsPrimary != nil {
		primary = *req.IsPrimary || count == 0
	}

	now := s.Clock.Now()
	contact := &model.Contact{
		ID:           uuid.NewString(),
		UserID:       userID,
		Name:         name,
		Relationship: rel,
		PhoneNumber:  encrypted,
		PhoneHash:    hash,
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		IsPrimary:    primary,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Contacts.Create(ctx, contact); err != nil {
		return nil, err
	}
	if primary && count > 0 {
		if err := s.Contacts.ClearPrimary(ctx, userID, contact.ID); err != nil {
			return nil, err
		}
	}

	s.lg.Info("Contact created", zap.String("contact_id", contact.ID), zap.String("user_id", userID))
	resp := dto.ToContactResponse(contact, phone)
	return &resp, nil
}

func (s *ContactService) Update(ctx context.Context, userID, id string, req dto.UpdateContactRequest) (*dto.ContactResponse, error) {
	var upd model.ContactUpdate

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apperrors.Validation("name is required")
		}
		upd.Name = &name
	}
	if req.Relationship != nil {
		rel := model.Relationship(*req.Relationship)
		if !rel.Valid() {
			return nil, apperrors.Validation("invalid relationship %q", *req.Relationship)
		}
		upd.Relationship = &rel
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		upd.Email = &email
	}
	if req.PhoneNumber != nil {
		phone, err := normalizePhone(*req.PhoneNumber)
		if err != nil {
			return nil, err
		}
		hash := s.Cipher.Hash(phone)
		exists, err := s.Contacts.PhoneHashExists(ctx, userID, hash, id)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, apperrors.Conflict("contact with this phone number already exists")
		}
		encrypted, err := s.Cipher.Encrypt(phone)
		if err != nil {
			return nil, err
		}
		upd.PhoneNumber = &encrypted
		upd.PhoneHash = &hash
	}
	upd.IsPrimary = req.IsPrimary

	contact, err := s.Contacts.Update(ctx, userID, id, upd)
	if err != nil {
		return nil, err
	}
	if req.IsPrimary != nil && *req.IsPrimary {
		if err := s.Contacts.ClearPrimary(ctx, userID, id); err != nil {
			return nil, err
		}
	}

	resp := s.toResponse(contact)
	return &resp, nil
}

func (s *ContactService) Delete(ctx context.Context, userID, id string) error {
	if err := s.Contacts.SoftDelete(ctx, userID, id); err != nil {
		return err
	}
	s.lg.Info("Contact deleted", zap.String("contact_id", id), zap.String("user_id", userID))
	return nil
}

func (s *ContactService) DeleteAll(ctx context.Context, userID string) (int64, error) {
	return s.Contacts.SoftDeleteAll(ctx, userID)
}

func (s *ContactService) Count(ctx context.Context, userID string) (*dto.ContactCountResponse, error) {
	n, err := s.Contacts.CountActive(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &dto.ContactCountResponse{
		Count:      n,
		MaxAllowed: model.MaxActiveContacts,
		CanAddMore: n < model.MaxActiveContacts,
	}, nil
}
