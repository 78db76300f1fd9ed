package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/redmonkez12/booking-project/internal/database"
)

var ErrNotFound = errors.New("profile not found")

// Repository handles profile persistence
type Repository struct {
	db bun.IDB
}

func NewRepository(db bun.IDB) *Repository {
	return &Repository{db: db}
}

// GetByUserID retrieves the profile owned by userID
func (r *Repository) GetByUserID(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	dbProfile := new(database.Profile)
	err := r.db.NewSelect().
		Model(dbProfile).
		Where("user_id = ?", userID).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	return mapDBProfileToModel(dbProfile), nil
}

// Upsert writes every profile field in a single statement, creating the row
// on first use
func (r *Repository) Upsert(ctx context.Context, p *Profile) (*Profile, error) {
	dbProfile := &database.Profile{
		UserID:         p.UserID,
		PhoneNumber:    p.PhoneNumber,
		Bio:            p.Bio,
		AvatarKey:      p.AvatarKey,
		AvatarThumbKey: p.AvatarThumbKey,
		DateOfBirth:    p.DateOfBirth,
	}

	_, err := r.db.NewInsert().
		Model(dbProfile).
		On("CONFLICT (user_id) DO UPDATE").
		Set("phone_number = EXCLUDED.phone_number").
		Set("bio = EXCLUDED.bio").
		Set("avatar_key = EXCLUDED.avatar_key").
		Set("avatar_thumb_key = EXCLUDED.avatar_thumb_key").
		Set("date_of_birth = EXCLUDED.date_of_birth").
		Set("updated_at = NOW()").
		Returning("*").
		Exec(ctx)

	if err != nil {
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}

	return mapDBProfileToModel(dbProfile), nil
}

func mapDBProfileToModel(dbp *database.Profile) *Profile {
	return &Profile{
		UserID:         dbp.UserID,
		PhoneNumber:    dbp.PhoneNumber,
		Bio:            dbp.Bio,
		AvatarKey:      dbp.AvatarKey,
		AvatarThumbKey: dbp.AvatarThumbKey,
		DateOfBirth:    dbp.DateOfBirth,
		CreatedAt:      dbp.CreatedAt,
		UpdatedAt:      dbp.UpdatedAt,
	}
}
