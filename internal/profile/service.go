package profile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/redmonkez12/booking-project/internal/logging"
	"github.com/redmonkez12/booking-project/internal/validation"
)

const invalidImageMessage = "Upload a valid image. The file you uploaded was either not an image or a corrupted image."

// Store persists profiles
type Store interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*Profile, error)
	Upsert(ctx context.Context, p *Profile) (*Profile, error)
}

// Service applies validated profile changes for the owning user
type Service struct {
	store      Store
	avatars    AvatarStore
	logger     *logging.Logger
	keyPrefix  string
	thumbSize  int
	presignTTL time.Duration
	now        func() time.Time
}

func NewService(store Store, avatars AvatarStore, logger *logging.Logger, keyPrefix string, thumbSize int, presignTTL time.Duration) *Service {
	return &Service{
		store:      store,
		avatars:    avatars,
		logger:     logger,
		keyPrefix:  keyPrefix,
		thumbSize:  thumbSize,
		presignTTL: presignTTL,
		now:        time.Now,
	}
}

// Get returns the user's profile, or an empty one if none was saved yet
func (s *Service) Get(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	p, err := s.store.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return &Profile{UserID: userID}, nil
		}
		return nil, err
	}
	return p, nil
}

// AvatarURLs returns short-lived links to the avatar and its thumbnail
func (s *Service) AvatarURLs(ctx context.Context, p *Profile) (string, string, error) {
	if !p.HasAvatar() {
		return "", "", nil
	}

	avatarURL, err := s.avatars.PresignURL(ctx, *p.AvatarKey, s.presignTTL)
	if err != nil {
		return "", "", fmt.Errorf("failed to presign avatar: %w", err)
	}

	var thumbURL string
	if p.AvatarThumbKey != nil {
		thumbURL, err = s.avatars.PresignURL(ctx, *p.AvatarThumbKey, s.presignTTL)
		if err != nil {
			return "", "", fmt.Errorf("failed to presign avatar thumbnail: %w", err)
		}
	}

	return avatarURL, thumbURL, nil
}

// Update validates every submitted field and stores them together. When any
// field fails, validation.Errors is returned and nothing is written.
func (s *Service) Update(ctx context.Context, userID uuid.UUID, req UpdateRequest) (*Profile, error) {
	current, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	next := *current
	next.UserID = userID
	errs := validation.Errors{}

	if req.PhoneNumber != nil {
		if phone, err := validation.Phone(*req.PhoneNumber); !errs.Add(err) {
			next.PhoneNumber = phone
		}
	}

	if req.Bio != nil {
		if bio, err := validation.Bio(*req.Bio); !errs.Add(err) {
			next.Bio = bio
		}
	}

	if req.DateOfBirth != nil {
		parsed, err := validation.ParseDateOfBirth(*req.DateOfBirth)
		if !errs.Add(err) {
			if dob, err := validation.DateOfBirth(parsed, s.now()); !errs.Add(err) {
				next.DateOfBirth = dob
			}
		}
	}

	var avatar *processedAvatar
	if req.Avatar != nil {
		avatar = s.checkAvatar(req.Avatar, errs)
	}

	if err := errs.Err(); err != nil {
		return nil, err
	}

	var uploaded []string
	switch {
	case avatar != nil:
		key, thumbKey := avatarKeys(s.keyPrefix, userID, avatar.ext)
		if err := s.avatars.Upload(ctx, key, avatar.contentType, avatar.data); err != nil {
			return nil, fmt.Errorf("failed to upload avatar: %w", err)
		}
		uploaded = append(uploaded, key)
		if err := s.avatars.Upload(ctx, thumbKey, "image/jpeg", avatar.thumbnail); err != nil {
			s.DeleteObjects(ctx, uploaded)
			return nil, fmt.Errorf("failed to upload avatar thumbnail: %w", err)
		}
		uploaded = append(uploaded, thumbKey)
		next.AvatarKey, next.AvatarThumbKey = &key, &thumbKey
	case req.ClearAvatar:
		next.AvatarKey, next.AvatarThumbKey = nil, nil
	}

	saved, err := s.store.Upsert(ctx, &next)
	if err != nil {
		s.DeleteObjects(ctx, uploaded)
		return nil, err
	}

	if avatar != nil || req.ClearAvatar {
		s.DeleteObjects(ctx, avatarObjects(current))
	}

	return saved, nil
}

// AvatarKeys returns the stored avatar objects of userID, if any
func (s *Service) AvatarKeys(ctx context.Context, userID uuid.UUID) ([]string, error) {
	p, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return avatarObjects(p), nil
}

func (s *Service) checkAvatar(upload *AvatarUpload, errs validation.Errors) *processedAvatar {
	_, err := validation.Avatar(&validation.AvatarFile{
		Filename:    upload.Filename,
		ContentType: upload.ContentType,
		Size:        upload.Size,
	})
	if errs.Add(err) {
		return nil
	}

	processed, err := processAvatar(upload, s.thumbSize)
	if err != nil {
		errs.Set(validation.FieldAvatar, invalidImageMessage)
		return nil
	}
	return processed
}

// DeleteObjects removes objects on a best-effort basis; leftovers are only logged
func (s *Service) DeleteObjects(ctx context.Context, keys []string) {
	for _, key := range keys {
		if err := s.avatars.Delete(ctx, key); err != nil {
			s.logger.Warn("failed to delete avatar object", "key", key, "error", err)
		}
	}
}

func avatarObjects(p *Profile) []string {
	var keys []string
	if p.AvatarKey != nil && *p.AvatarKey != "" {
		keys = append(keys, *p.AvatarKey)
	}
	if p.AvatarThumbKey != nil && *p.AvatarThumbKey != "" {
		keys = append(keys, *p.AvatarThumbKey)
	}
	return keys
}
