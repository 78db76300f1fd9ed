package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionRepository keeps server-side sessions in Redis
type SessionRepository struct {
	client *redis.Client
}

func NewSessionRepository(client *redis.Client) *SessionRepository {
	return &SessionRepository{client: client}
}

func sessionKey(sessionID uuid.UUID) string {
	return fmt.Sprintf("session:%s", sessionID.String())
}

func userSessionsKey(userID uuid.UUID) string {
	return fmt.Sprintf("user_sessions:%s", userID.String())
}

// Create stores a new session for userID that expires after ttl
func (r *SessionRepository) Create(ctx context.Context, userID uuid.UUID, ttl time.Duration) (uuid.UUID, error) {
	if ttl <= 0 {
		return uuid.Nil, fmt.Errorf("session ttl must be positive")
	}

	sessionID := uuid.New()
	key := sessionKey(sessionID)
	userKey := userSessionsKey(userID)

	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, key, map[string]any{
		"user_id":    userID.String(),
		"created_at": time.Now().Unix(),
	})
	pipe.Expire(ctx, key, ttl)
	// The index lives as long as the newest session
	pipe.SAdd(ctx, userKey, sessionID.String())
	pipe.Expire(ctx, userKey, ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("failed to store session: %w", err)
	}

	return sessionID, nil
}

// Get returns the owner of a live session
func (r *SessionRepository) Get(ctx context.Context, sessionID uuid.UUID) (uuid.UUID, error) {
	raw, err := r.client.HGet(ctx, sessionKey(sessionID), "user_id").Result()
	if errors.Is(err, redis.Nil) {
		return uuid.Nil, ErrSessionNotFound
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to get session: %w", err)
	}

	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("corrupt session %s: %w", sessionID, err)
	}
	return userID, nil
}

// Delete ends one session; deleting a missing session is not an error
func (r *SessionRepository) Delete(ctx context.Context, sessionID, userID uuid.UUID) error {
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, sessionKey(sessionID))
	pipe.SRem(ctx, userSessionsKey(userID), sessionID.String())

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteAllForUser ends every session of userID
func (r *SessionRepository) DeleteAllForUser(ctx context.Context, userID uuid.UUID) error {
	userKey := userSessionsKey(userID)

	ids, err := r.client.SMembers(ctx, userKey).Result()
	if err != nil {
		return fmt.Errorf("failed to list user sessions: %w", err)
	}

	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		sessionID, err := uuid.Parse(id)
		if err != nil {
			continue
		}
		keys = append(keys, sessionKey(sessionID))
	}
	keys = append(keys, userKey)

	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete user sessions: %w", err)
	}
	return nil
}

// hashToken keeps raw one-time tokens out of Redis keys
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// generateRandomToken creates a URL-safe random token
func generateRandomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
