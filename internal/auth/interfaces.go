package auth

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/redmonkez12/booking-project/internal/user"
)

// TokenService seals and opens the session token handed to clients
type TokenService interface {
	CreateToken(sessionID, userID uuid.UUID, duration time.Duration) (string, error)
	VerifyToken(tokenStr string) (*TokenClaims, error)
}

// UserStore is the account storage the flows depend on
type UserStore interface {
	Create(ctx context.Context, username, email, passwordHash string) (*user.User, error)
	GetByUsername(ctx context.Context, username string) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error
	Delete(ctx context.Context, userID uuid.UUID) error
}

// CredentialHasher hashes and checks passwords; password.Hasher implements it
type CredentialHasher interface {
	Hash(password string) (string, error)
	Verify(encodedHash, password string) bool
	VerifyDummy(password string)
}

// SessionStore persists server-side sessions
type SessionStore interface {
	Create(ctx context.Context, userID uuid.UUID, ttl time.Duration) (uuid.UUID, error)
	Get(ctx context.Context, sessionID uuid.UUID) (uuid.UUID, error)
	Delete(ctx context.Context, sessionID, userID uuid.UUID) error
	DeleteAllForUser(ctx context.Context, userID uuid.UUID) error
}

// ResetTokenStore keeps password reset tokens
type ResetTokenStore interface {
	Store(ctx context.Context, userID uuid.UUID, token string) error
	Peek(ctx context.Context, token string) (uuid.UUID, error)
	Consume(ctx context.Context, token string) (uuid.UUID, error)
}

type EmailService interface {
	SendWelcomeEmail(ctx context.Context, toEmail, username string) error
	SendPasswordResetEmail(ctx context.Context, toEmail, username, token string) error
}

// AvatarCleaner finds the stored avatar objects of an account and removes
// them once the account row is gone
type AvatarCleaner interface {
	AvatarKeys(ctx context.Context, userID uuid.UUID) ([]string, error)
	DeleteObjects(ctx context.Context, keys []string)
}

// RateLimiter is the subset of ratelimit.Limiter the handlers use
type RateLimiter interface {
	CheckIPRateLimitWithPurpose(ctx context.Context, ip, purpose string) (bool, error)
	RecordIPRequestWithPurpose(ctx context.Context, ip, purpose string) error
	CheckEmailCooldown(ctx context.Context, email string) (bool, error)
	SetEmailCooldown(ctx context.Context, email string) error
}
