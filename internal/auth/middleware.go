package auth

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/redmonkez12/booking-project/internal/httputil"
	"github.com/redmonkez12/booking-project/internal/logging"
	"github.com/redmonkez12/booking-project/internal/user"
)

const LoginPath = "/users/login"

// CurrentUserFunc resolves a session token to its user
type CurrentUserFunc func(ctx context.Context, token string) (*user.User, error)

// Middleware attaches the signed-in user to requests
type Middleware struct {
	currentUser CurrentUserFunc
}

func NewMiddleware(currentUser CurrentUserFunc) *Middleware {
	return &Middleware{currentUser: currentUser}
}

// RequireAuth rejects requests without a live session. Browsers are sent to
// the login page, API clients get 401.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := logging.GetLoggerFromContext(r.Context())

		token, ok := tokenFromRequest(r)
		if !ok {
			httputil.RespondErrorWithCode(w, "invalid authorization header format", httputil.CodeInvalidAuthHeader, http.StatusUnauthorized)
			return
		}

		u, err := m.currentUser(r.Context(), token)
		if err != nil {
			if !errors.Is(err, ErrUnauthenticated) {
				logger.Error("failed to resolve session", "error", err.Error())
			}
			respondUnauthenticated(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(withUser(r.Context(), logger, u)))
	})
}

// LoadUser attaches the user when a valid session exists and lets every
// request through
func (m *Middleware) LoadUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := tokenFromRequest(r)
		if !ok || token == "" {
			next.ServeHTTP(w, r)
			return
		}

		u, err := m.currentUser(r.Context(), token)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		logger := logging.GetLoggerFromContext(r.Context())
		next.ServeHTTP(w, r.WithContext(withUser(r.Context(), logger, u)))
	})
}

func withUser(ctx context.Context, logger *logging.Logger, u *user.User) context.Context {
	ctx = user.WithUser(ctx, u)
	return logging.WithLogger(ctx, logger.WithFields(map[string]any{"user_id": u.ID.String()}))
}

func respondUnauthenticated(w http.ResponseWriter, r *http.Request) {
	if httputil.WantsHTML(r) {
		http.Redirect(w, r, LoginPath+"?next="+url.QueryEscape(r.URL.Path), http.StatusSeeOther)
		return
	}
	httputil.RespondErrorWithCode(w, "authentication required", httputil.CodeUnauthenticated, http.StatusUnauthorized)
}
