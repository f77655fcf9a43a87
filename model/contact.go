package model

import "time"

type Relationship string

const (
	RelationshipFamily    Relationship = "family"
	RelationshipFriend    Relationship = "friend"
	RelationshipColleague Relationship = "colleague"
	RelationshipOther     Relationship = "other"
)

func (r Relationship) Valid() bool {
	switch r {
	case RelationshipFamily, RelationshipFriend, RelationshipColleague, RelationshipOther:
		return true
	}
	return false
}

const MaxActiveContacts = 5

// Contact is an emergency contact. PhoneNumber holds ciphertext only; PhoneHash
// is a keyed hash of the normalised number used for the duplicate check.
type Contact struct {
	ID           string       `bson:"_id" json:"id"`
	UserID       string       `bson:"user_id" json:"user_id"`
	Name         string       `bson:"name" json:"name"`
	Relationship Relationship `bson:"relationship" json:"relationship"`
	PhoneNumber  string       `bson:"phone_number" json:"-"`
	PhoneHash    string       `bson:"phone_hash" json:"-"`
	Email        string       `bson:"email,omitempty" json:"email,omitempty"`
	IsPrimary    bool         `bson:"is_primary" json:"is_primary"`
	IsActive     bool         `bson:"is_active" json:"is_active"`
	CreatedAt    time.Time    `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time    `bson:"updated_at" json:"updated_at"`
}

// ContactUpdate carries optional fields for a partial update.
type ContactUpdate struct {
	Name         *string
	Relationship *Relationship
	PhoneNumber  *string
	PhoneHash    *string
	Email        *string
	IsPrimary    *bool
}
