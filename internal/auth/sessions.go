package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/redmonkez12/booking-project/internal/user"
)

// Session is an established login
type Session struct {
	Token     string
	User      *user.User
	ExpiresAt time.Time
}

// Sessions binds users to sessions. Clients hold only a sealed token naming
// the session; the session record in the store is the source of truth.
type Sessions struct {
	store    SessionStore
	tokens   TokenService
	users    UserStore
	duration time.Duration
}

func NewSessions(store SessionStore, tokens TokenService, users UserStore, duration time.Duration) *Sessions {
	return &Sessions{
		store:    store,
		tokens:   tokens,
		users:    users,
		duration: duration,
	}
}

// Start opens a session for u and returns its token
func (s *Sessions) Start(ctx context.Context, u *user.User) (*Session, error) {
	sessionID, err := s.store.Create(ctx, u.ID, s.duration)
	if err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}

	token, err := s.tokens.CreateToken(sessionID, u.ID, s.duration)
	if err != nil {
		_ = s.store.Delete(ctx, sessionID, u.ID)
		return nil, fmt.Errorf("failed to create session token: %w", err)
	}

	return &Session{
		Token:     token,
		User:      u,
		ExpiresAt: time.Now().Add(s.duration),
	}, nil
}

// End closes the session named by token. Unknown or expired tokens are
// already logged out, so they are not an error.
func (s *Sessions) End(ctx context.Context, token string) error {
	claims, err := s.tokens.VerifyToken(token)
	if err != nil {
		return nil
	}
	return s.store.Delete(ctx, claims.SessionID, claims.UserID)
}

// EndAll closes every session of userID
func (s *Sessions) EndAll(ctx context.Context, userID uuid.UUID) error {
	return s.store.DeleteAllForUser(ctx, userID)
}

// CurrentUser returns the user behind token, or ErrUnauthenticated
func (s *Sessions) CurrentUser(ctx context.Context, token string) (*user.User, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}

	claims, err := s.tokens.VerifyToken(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	ownerID, err := s.store.Get(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}
	if ownerID != claims.UserID {
		return nil, ErrUnauthenticated
	}

	u, err := s.users.GetByID(ctx, ownerID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}

	return u, nil
}
