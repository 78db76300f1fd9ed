package auth

import (
	"errors"
	"fmt"
	"time"

	"aidanwoods.dev/go-paseto"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// TokenClaims is what a session token carries. The token only points at the
// server-side session; ending that session invalidates the token.
type TokenClaims struct {
	SessionID uuid.UUID
	UserID    uuid.UUID
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// PasetoService seals session tokens with PASETO v4.local
type PasetoService struct {
	symmetricKey paseto.V4SymmetricKey
	now          func() time.Time
}

func NewPasetoService(symmetricKey []byte) (*PasetoService, error) {
	if len(symmetricKey) != 32 {
		return nil, fmt.Errorf("symmetric key must be exactly 32 bytes, got %d", len(symmetricKey))
	}

	key, err := paseto.V4SymmetricKeyFromBytes(symmetricKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create symmetric key: %w", err)
	}

	return &PasetoService{symmetricKey: key, now: time.Now}, nil
}

func (s *PasetoService) CreateToken(sessionID, userID uuid.UUID, duration time.Duration) (string, error) {
	now := s.now()

	token := paseto.NewToken()
	token.SetIssuedAt(now)
	token.SetNotBefore(now)
	token.SetExpiration(now.Add(duration))
	token.SetJti(sessionID.String())
	token.SetSubject(userID.String())

	return token.V4Encrypt(s.symmetricKey, nil), nil
}

func (s *PasetoService) VerifyToken(tokenStr string) (*TokenClaims, error) {
	parser := paseto.NewParserWithoutExpiryCheck()

	token, err := parser.ParseV4Local(s.symmetricKey, tokenStr, nil)
	if err != nil {
		return nil, ErrInvalidToken
	}

	expiresAt, err := token.GetExpiration()
	if err != nil {
		return nil, ErrInvalidToken
	}
	if !s.now().Before(expiresAt) {
		return nil, ErrExpiredToken
	}

	issuedAt, err := token.GetIssuedAt()
	if err != nil {
		return nil, ErrInvalidToken
	}

	sessionID, err := parseClaimID(token.GetJti())
	if err != nil {
		return nil, ErrInvalidToken
	}
	userID, err := parseClaimID(token.GetSubject())
	if err != nil {
		return nil, ErrInvalidToken
	}

	return &TokenClaims{
		SessionID: sessionID,
		UserID:    userID,
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
	}, nil
}

func parseClaimID(raw string, err error) (uuid.UUID, error) {
	if err != nil {
		return uuid.Nil, err
	}
	return uuid.Parse(raw)
}
