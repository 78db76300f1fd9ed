package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Unique index names, matched against constraint violations
const (
	UsersUsernameKey   = "users_username_key"
	UsersEmailLowerKey = "users_email_lower_key"
	ProfilesUserIDKey  = "profiles_user_id_key"
)

// User is the users table row
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           uuid.UUID `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	Username     string    `bun:"username,notnull"`
	Email        string    `bun:"email,notnull"`
	PasswordHash string    `bun:"password_hash,notnull"`
	CreatedAt    time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt    time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// Profile is the profiles table row, one per user
type Profile struct {
	bun.BaseModel `bun:"table:profiles,alias:p"`

	ID             uuid.UUID  `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	UserID         uuid.UUID  `bun:"user_id,notnull,type:uuid"`
	PhoneNumber    string     `bun:"phone_number,notnull"`
	Bio            string     `bun:"bio,notnull"`
	AvatarKey      *string    `bun:"avatar_key"`
	AvatarThumbKey *string    `bun:"avatar_thumb_key"`
	DateOfBirth    *time.Time `bun:"date_of_birth,type:date"`
	CreatedAt      time.Time  `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt      time.Time  `bun:"updated_at,notnull,default:current_timestamp"`
}
