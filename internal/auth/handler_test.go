package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/booking-project/internal/httputil"
	"github.com/redmonkez12/booking-project/internal/user"
)

type stubLimiter struct {
	exceeded   bool
	onCooldown bool
	recorded   []string
}

func (s *stubLimiter) CheckIPRateLimitWithPurpose(context.Context, string, string) (bool, error) {
	return s.exceeded, nil
}

func (s *stubLimiter) RecordIPRequestWithPurpose(_ context.Context, _ string, purpose string) error {
	s.recorded = append(s.recorded, purpose)
	return nil
}

func (s *stubLimiter) CheckEmailCooldown(context.Context, string) (bool, error) {
	return s.onCooldown, nil
}

func (s *stubLimiter) SetEmailCooldown(context.Context, string) error { return nil }

func newTestRouter(t *testing.T) (*testEnv, *stubLimiter, http.Handler) {
	t.Helper()
	env := newTestEnv(t)
	limiter := &stubLimiter{}
	h := NewHandler(env.service, limiter, false)
	mw := NewMiddleware(env.service.CurrentUser)

	r := chi.NewRouter()
	r.With(mw.LoadUser).Get("/", h.Home)
	r.Route("/users", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.Post("/password/forgot", h.ForgotPassword)
		r.Post("/password/reset", h.ResetPassword)
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireAuth)
			r.Get("/profile", func(w http.ResponseWriter, r *http.Request) {
				u, _ := user.FromContext(r.Context())
				httputil.RespondJSON(w, u, http.StatusOK)
			})
			r.Delete("/account", h.DeleteAccount)
		})
	})
	return env, limiter, r
}

func postForm(t *testing.T, h http.Handler, path string, values url.Values, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func postJSON(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) httputil.ErrorResponse {
	t.Helper()
	var resp httputil.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func registrationForm(username, email string) url.Values {
	return url.Values{
		"username":  {username},
		"email":     {email},
		"password1": {strongPassword},
		"password2": {strongPassword},
	}
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookieName {
			return c
		}
	}
	return nil
}

func TestHandler_RegisterThenDuplicateEmail(t *testing.T) {
	_, limiter, h := newTestRouter(t)

	rec := postForm(t, h, "/users/register", registrationForm("alice", "alice@example.com"), nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created httputil.RedirectResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, LoginPath, created.Redirect)
	assert.NotContains(t, rec.Body.String(), "password")

	rec = postForm(t, h, "/users/register", registrationForm("alice2", "ALICE@EXAMPLE.COM"), nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, httputil.CodeEmailAlreadyExists, resp.Code)
	assert.Empty(t, resp.Fields)
	assert.Equal(t, "alice2", resp.Form["username"])

	assert.Equal(t, []string{"register", "register"}, limiter.recorded)
}

func TestHandler_RegisterFieldErrorsKeepInputs(t *testing.T) {
	_, _, h := newTestRouter(t)

	form := registrationForm("bad name", "bob@example.com")
	form.Set("password2", "different")
	rec := postForm(t, h, "/users/register", form, nil)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, httputil.CodeValidationFailed, resp.Code)
	assert.Contains(t, resp.Fields, "password2")
	assert.Equal(t, "bad name", resp.Form["username"])
	assert.Equal(t, "bob@example.com", resp.Form["email"])
	assert.NotContains(t, resp.Form, "password1")
}

func TestHandler_RegisterTrimsBeforeLengthChecks(t *testing.T) {
	env, _, h := newTestRouter(t)
	longest := strings.Repeat("a", 150)

	rec := postForm(t, h, "/users/register", registrationForm(" "+longest+"\t", "  alice@example.com "), nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	created, err := env.users.GetByUsername(context.Background(), longest)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", created.Email)

	// one character over stays an error after trimming
	rec = postForm(t, h, "/users/register", registrationForm(" "+longest+"b ", "bob@example.com"), nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decodeError(t, rec).Fields, "username")
}

func TestHandler_RegisterBrowserRedirect(t *testing.T) {
	_, _, h := newTestRouter(t)

	rec := postForm(t, h, "/users/register", registrationForm("alice", "alice@example.com"), map[string]string{"Accept": "text/html"})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, LoginPath, rec.Header().Get("Location"))
}

func TestHandler_LoginMessagesAreIdentical(t *testing.T) {
	_, _, h := newTestRouter(t)
	postForm(t, h, "/users/register", registrationForm("alice", "alice@example.com"), nil)

	wrongPassword := postJSON(t, h, "/users/login", `{"identifier":"alice","password":"nope-nope"}`)
	unknownUser := postJSON(t, h, "/users/login", `{"identifier":"mallory","password":"nope-nope"}`)

	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, http.StatusUnauthorized, unknownUser.Code)
	assert.Equal(t, wrongPassword.Body.String(), unknownUser.Body.String())
	assert.Equal(t, InvalidCredentialsMessage, decodeError(t, wrongPassword).Error)
}

func TestHandler_SessionLifecycle(t *testing.T) {
	_, _, h := newTestRouter(t)
	postForm(t, h, "/users/register", registrationForm("alice", "alice@example.com"), nil)

	login := postForm(t, h, "/users/login", url.Values{"email": {"Alice@example.com"}, "password": {strongPassword}}, map[string]string{"Accept": "text/html"})
	require.Equal(t, http.StatusSeeOther, login.Code)
	assert.Equal(t, ProfilePath, login.Header().Get("Location"))
	cookie := sessionCookie(login)
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)

	// cookie grants access
	req := httptest.NewRequest(http.MethodGet, "/users/profile", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"username":"alice"`)

	// home knows who is signed in
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Contains(t, rec.Body.String(), `"authenticated":true`)

	// logout
	req = httptest.NewRequest(http.MethodPost, "/users/logout", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	cleared := sessionCookie(rec)
	require.NotNil(t, cleared)
	assert.Equal(t, -1, cleared.MaxAge)

	// the old cookie no longer works
	req = httptest.NewRequest(http.MethodGet, "/users/profile", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, httputil.CodeUnauthenticated, decodeError(t, rec).Code)
}

func TestHandler_BearerToken(t *testing.T) {
	_, _, h := newTestRouter(t)
	postForm(t, h, "/users/register", registrationForm("alice", "alice@example.com"), nil)

	login := postJSON(t, h, "/users/login", `{"username":"alice","password":"`+strongPassword+`"}`)
	require.Equal(t, http.StatusOK, login.Code)
	var body struct {
		Data LoginResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(login.Body.Bytes(), &body))
	require.NotEmpty(t, body.Data.Token)

	req := httptest.NewRequest(http.MethodGet, "/users/profile", nil)
	req.Header.Set("Authorization", "Bearer "+body.Data.Token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/users/profile", nil)
	req.Header.Set("Authorization", "Token "+body.Data.Token)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, httputil.CodeInvalidAuthHeader, decodeError(t, rec).Code)
}

func TestHandler_UnauthenticatedBrowserRedirect(t *testing.T) {
	_, _, h := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/users/profile", nil)
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/users/login?next=%2Fusers%2Fprofile", rec.Header().Get("Location"))
}

func TestHandler_DeleteAccount(t *testing.T) {
	env, _, h := newTestRouter(t)
	postForm(t, h, "/users/register", registrationForm("alice", "alice@example.com"), nil)
	login := postJSON(t, h, "/users/login", `{"identifier":"alice","password":"`+strongPassword+`"}`)
	cookie := sessionCookie(login)
	require.NotNil(t, cookie)

	req := httptest.NewRequest(http.MethodDelete, "/users/account", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	_, err := env.users.GetByUsername(context.Background(), "alice")
	assert.ErrorIs(t, err, user.ErrNotFound)
}

func TestHandler_RateLimited(t *testing.T) {
	_, limiter, h := newTestRouter(t)
	limiter.exceeded = true

	rec := postJSON(t, h, "/users/login", `{"identifier":"alice","password":"x"}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Empty(t, limiter.recorded)
}

func TestHandler_ForgotPassword(t *testing.T) {
	env, limiter, h := newTestRouter(t)
	postForm(t, h, "/users/register", registrationForm("alice", "alice@example.com"), nil)

	known := postJSON(t, h, "/users/password/forgot", `{"email":"alice@example.com"}`)
	unknown := postJSON(t, h, "/users/password/forgot", `{"email":"nobody@example.com"}`)
	assert.Equal(t, http.StatusOK, known.Code)
	assert.Equal(t, known.Body.String(), unknown.Body.String())

	env.service.Wait()
	var resets int
	for _, e := range env.emails.all() {
		if e.kind == "reset" {
			resets++
		}
	}
	assert.Equal(t, 1, resets)

	limiter.onCooldown = true
	rec := postJSON(t, h, "/users/password/forgot", `{"email":"alice@example.com"}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestHandler_ResetPasswordInvalidToken(t *testing.T) {
	_, _, h := newTestRouter(t)

	rec := postJSON(t, h, "/users/password/reset", `{"token":"nope","password1":"Sunny-Harbour-42","password2":"Sunny-Harbour-42"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, httputil.CodeInvalidResetToken, decodeError(t, rec).Code)

	rec = postJSON(t, h, "/users/password/reset", `{"token":"nope","password1":"a","password2":"b"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
