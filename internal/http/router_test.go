package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/redmonkez12/booking-project/internal/auth"
	"github.com/redmonkez12/booking-project/internal/config"
	"github.com/redmonkez12/booking-project/internal/logging"
	"github.com/redmonkez12/booking-project/internal/profile"
	"github.com/redmonkez12/booking-project/internal/user"
)

func newTestRouter(env string) http.Handler {
	cfg := &config.Config{Server: config.ServerConfig{Env: env}}
	noSession := func(context.Context, string) (*user.User, error) {
		return nil, auth.ErrUnauthenticated
	}
	return NewRouter(cfg, Handlers{
		Auth:           auth.NewHandler(nil, nil, false),
		AuthMiddleware: auth.NewMiddleware(noSession),
		Profile:        profile.NewHandler(nil),
	}, logging.NewDiscardLogger())
}

func serve(h http.Handler, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouter_Health(t *testing.T) {
	rec := serve(newTestRouter("prod"), http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "api is running")
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}

func TestRouter_HomeForVisitors(t *testing.T) {
	rec := serve(newTestRouter("prod"), http.MethodGet, "/", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"login_url":"/users/login"`)
}

func TestRouter_ProtectedRoutes(t *testing.T) {
	router := newTestRouter("prod")

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/users/profile"},
		{http.MethodPost, "/users/profile"},
		{http.MethodDelete, "/users/account"},
	} {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			rec := serve(router, tc.method, tc.path, nil)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
		})
	}

	rec := serve(router, http.MethodGet, "/users/profile", map[string]string{"Accept": "text/html"})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/users/login?next=%2Fusers%2Fprofile", rec.Header().Get("Location"))
}

func TestRouter_NotFound(t *testing.T) {
	rec := serve(newTestRouter("prod"), http.MethodGet, "/auth/login", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "NOT_FOUND")
}

func TestRouter_SwaggerOnlyInDevelopment(t *testing.T) {
	rec := serve(newTestRouter("prod"), http.MethodGet, "/swagger/index.html", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(newTestRouter("dev"), http.MethodGet, "/swagger/index.html", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "'unsafe-inline'")
}

func TestRouter_CORSPreflight(t *testing.T) {
	cfg := &config.Config{Server: config.ServerConfig{Env: "prod", TrustedOrigins: []string{"https://booking.example"}}}
	router := NewRouter(cfg, Handlers{
		Auth:           auth.NewHandler(nil, nil, false),
		AuthMiddleware: auth.NewMiddleware(nil),
		Profile:        profile.NewHandler(nil),
	}, logging.NewDiscardLogger())

	rec := serve(router, http.MethodOptions, "/users/login", map[string]string{
		"Origin":                        "https://booking.example",
		"Access-Control-Request-Method": http.MethodPost,
	})

	assert.Equal(t, "https://booking.example", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}
