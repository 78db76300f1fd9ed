// Package profile manages the optional details each user keeps next to
// their account: phone number, bio, avatar and date of birth.
package profile

import (
	"time"

	"github.com/google/uuid"
)

type Profile struct {
	UserID         uuid.UUID  `json:"-"`
	PhoneNumber    string     `json:"phone_number"`
	Bio            string     `json:"bio"`
	AvatarKey      *string    `json:"-"`
	AvatarThumbKey *string    `json:"-"`
	DateOfBirth    *time.Time `json:"date_of_birth,omitempty"`
	CreatedAt      time.Time  `json:"created_at,omitempty"`
	UpdatedAt      time.Time  `json:"updated_at,omitempty"`
}

// HasAvatar reports whether an avatar has been stored
func (p *Profile) HasAvatar() bool {
	return p.AvatarKey != nil && *p.AvatarKey != ""
}

// UpdateRequest carries submitted profile changes. A nil field was not
// submitted and keeps its stored value.
type UpdateRequest struct {
	PhoneNumber *string
	Bio         *string
	// DateOfBirth is the raw YYYY-MM-DD value; an empty string clears it
	DateOfBirth *string
	Avatar      *AvatarUpload
	ClearAvatar bool
}

// AvatarUpload is an uploaded avatar file with its declared metadata
type AvatarUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Data        []byte
}
