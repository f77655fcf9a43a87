package dto

import (
	"time"

	"safeher/model"
)

type CreateContactRequest struct {
	Name         string `json:"name" binding:"required,min=1,max=100"`
	PhoneNumber  string `json:"phone_number" binding:"required,phone10"`
	Relationship string `json:"relationship" binding:"omitempty,oneof=family friend colleague other"`
	Email        string `json:"email" binding:"omitempty,email"`
	IsPrimary    *bool  `json:"is_primary"`
}

type UpdateContactRequest struct {
	Name         *string `json:"name" binding:"omitempty,min=1,max=100"`
	PhoneNumber  *string `json:"phone_number" binding:"omitempty,phone10"`
	Relationship *string `json:"relationship" binding:"omitempty,oneof=family friend colleague other"`
	Email        *string `json:"email" binding:"omitempty,email"`
	IsPrimary    *bool   `json:"is_primary"`
}

// ContactResponse carries the decrypted phone number.
type ContactResponse struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	Relationship model.Relationship `json:"relationship"`
	PhoneNumber  string             `json:"phone_number"`
	Email        string             `json:"email,omitempty"`
	IsPrimary    bool               `json:"is_primary"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

func ToContactResponse(c *model.Contact, phone string) ContactResponse {
	return ContactResponse{
		ID:           c.ID,
		Name:         c.Name,
		Relationship: c.Relationship,
		PhoneNumber:  phone,
		Email:        c.Email,
		IsPrimary:    c.IsPrimary,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

type ContactCountResponse struct {
	Count      int64 `json:"count"`
	MaxAllowed int   `json:"max_allowed"`
	CanAddMore bool  `json:"can_add_more"`
}
