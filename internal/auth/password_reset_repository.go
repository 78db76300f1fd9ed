package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const passwordResetTokenTTL = 1 * time.Hour

var ErrPasswordResetTokenNotFound = errors.New("password reset token not found or expired")

// PasswordResetRepository stores single-use reset tokens under their hash
type PasswordResetRepository struct {
	client *redis.Client
}

func NewPasswordResetRepository(client *redis.Client) *PasswordResetRepository {
	return &PasswordResetRepository{client: client}
}

func (r *PasswordResetRepository) Store(ctx context.Context, userID uuid.UUID, token string) error {
	if err := r.client.Set(ctx, passwordResetKey(token), userID.String(), passwordResetTokenTTL).Err(); err != nil {
		return fmt.Errorf("failed to store password reset token: %w", err)
	}
	return nil
}

// Consume returns the user a token was issued for and deletes the token,
// so each token works at most once
func (r *PasswordResetRepository) Consume(ctx context.Context, token string) (uuid.UUID, error) {
	raw, err := r.client.GetDel(ctx, passwordResetKey(token)).Result()
	if errors.Is(err, redis.Nil) {
		return uuid.Nil, ErrPasswordResetTokenNotFound
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to read password reset token: %w", err)
	}

	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to parse user ID: %w", err)
	}
	return userID, nil
}

// Peek returns the user a token was issued for without using it up
func (r *PasswordResetRepository) Peek(ctx context.Context, token string) (uuid.UUID, error) {
	raw, err := r.client.Get(ctx, passwordResetKey(token)).Result()
	if errors.Is(err, redis.Nil) {
		return uuid.Nil, ErrPasswordResetTokenNotFound
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to read password reset token: %w", err)
	}

	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to parse user ID: %w", err)
	}
	return userID, nil
}

func passwordResetKey(token string) string {
	return fmt.Sprintf("password_reset:%s", hashToken(token))
}
