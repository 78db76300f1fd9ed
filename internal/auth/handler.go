package auth

import (
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/redmonkez12/booking-project/internal/httputil"
	"github.com/redmonkez12/booking-project/internal/logging"
	"github.com/redmonkez12/booking-project/internal/user"
	"github.com/redmonkez12/booking-project/internal/validation"
)

const (
	ProfilePath = "/users/profile"
	HomePath    = "/"
)

// Handler contains HTTP handlers for account endpoints
type Handler struct {
	service       *Service
	rateLimiter   RateLimiter
	secureCookies bool
}

func NewHandler(service *Service, rateLimiter RateLimiter, secureCookies bool) *Handler {
	return &Handler{
		service:       service,
		rateLimiter:   rateLimiter,
		secureCookies: secureCookies,
	}
}

// RegisterRequest is the sign-up form
type RegisterRequest struct {
	Username  string `json:"username" validate:"required,max=150"`
	Email     string `json:"email" validate:"required,max=254"`
	Password1 string `json:"password1" validate:"required"`
	Password2 string `json:"password2" validate:"required,eqfield=Password1"`
}

func (req *RegisterRequest) BindForm(values func(string) string) {
	req.Username = values(validation.FieldUsername)
	req.Email = values(validation.FieldEmail)
	req.Password1 = values(validation.FieldPassword1)
	req.Password2 = values(validation.FieldPassword2)
}

// trim strips surrounding whitespace before any length check, the way the
// field validators read the values
func (req *RegisterRequest) trim() {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
}

// form returns the inputs worth refilling; passwords are never echoed
func (req *RegisterRequest) form() map[string]string {
	return map[string]string{
		validation.FieldUsername: req.Username,
		validation.FieldEmail:    req.Email,
	}
}

// LoginRequest accepts a username or email as identifier. The older
// username and email fields are read when identifier is empty.
type LoginRequest struct {
	Identifier string `json:"identifier"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	Password   string `json:"password"`
}

func (req *LoginRequest) BindForm(values func(string) string) {
	req.Identifier = values("identifier")
	req.Username = values("username")
	req.Email = values("email")
	req.Password = values("password")
}

func (req *LoginRequest) identifier() string {
	for _, v := range []string{req.Identifier, req.Username, req.Email} {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,max=254"`
}

func (req *ForgotPasswordRequest) BindForm(values func(string) string) {
	req.Email = values("email")
}

func (req *ForgotPasswordRequest) trim() {
	req.Email = strings.TrimSpace(req.Email)
}

type ResetPasswordRequest struct {
	Token     string `json:"token" validate:"required"`
	Password1 string `json:"password1" validate:"required"`
	Password2 string `json:"password2" validate:"required,eqfield=Password1"`
}

func (req *ResetPasswordRequest) BindForm(values func(string) string) {
	req.Token = values("token")
	req.Password1 = values(validation.FieldPassword1)
	req.Password2 = values(validation.FieldPassword2)
}

// LoginResponse is returned to API clients; browsers get the cookie and a redirect
type LoginResponse struct {
	User      *user.User `json:"user"`
	Token     string     `json:"token"`
	TokenType string     `json:"token_type"`
	ExpiresAt time.Time  `json:"expires_at"`
}

// HomeResponse describes the landing page state
type HomeResponse struct {
	Authenticated bool       `json:"authenticated"`
	User          *user.User `json:"user,omitempty"`
	LoginURL      string     `json:"login_url,omitempty"`
	RegisterURL   string     `json:"register_url,omitempty"`
	ProfileURL    string     `json:"profile_url,omitempty"`
}

// Home is the landing page: the login entry point for visitors
// @Summary      Home
// @Description  Landing state for visitors and signed-in users
// @Tags         accounts
// @Produce      json
// @Success      200 {object} HomeResponse
// @Router       / [get]
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	if u, ok := user.FromContext(r.Context()); ok {
		httputil.RespondJSON(w, HomeResponse{Authenticated: true, User: u, ProfileURL: ProfilePath}, http.StatusOK)
		return
	}
	httputil.RespondJSON(w, HomeResponse{LoginURL: LoginPath, RegisterURL: "/users/register"}, http.StatusOK)
}

// Register handles sign-up
// @Summary      Register
// @Description  Create an account from username, email and a confirmed password
// @Tags         accounts
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Param        request body RegisterRequest true "Sign-up form"
// @Success      201 {object} httputil.RedirectResponse
// @Failure      400 {object} httputil.ErrorResponse "Invalid request body"
// @Failure      409 {object} httputil.ErrorResponse "Username taken or email exists"
// @Failure      422 {object} httputil.ErrorResponse "Field errors"
// @Failure      429 {object} httputil.ErrorResponse "Too many requests"
// @Router       /users/register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	ip := getClientIP(r)
	if h.limited(w, r, ip, "register") {
		return
	}

	var req RegisterRequest
	if err := httputil.Decode(r, &req); err != nil {
		logger.Warn("invalid registration request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	req.trim()
	logger = logger.WithFields(map[string]any{"username": req.Username})
	h.record(r, ip, "register")

	if fields := httputil.CheckRequest(&req); fields != nil {
		logger.Warn("registration rejected at form level", "fields", len(fields))
		httputil.RespondFieldErrors(w, fields, req.form())
		return
	}

	newUser, err := h.service.Register(r.Context(), req)
	state := RegistrationOutcome(err)
	if err != nil {
		var fieldErrs validation.Errors
		switch {
		case errors.Is(err, user.ErrDuplicateUsername):
			logger.Warn("registration rejected: username taken", "state", state)
			respondDuplicate(w, "The username is taken, please enter another username.", httputil.CodeUsernameTaken, req.form())
		case errors.Is(err, user.ErrDuplicateEmail):
			logger.Warn("registration rejected: email exists", "state", state)
			respondDuplicate(w, "An account with this email already exists.", httputil.CodeEmailAlreadyExists, req.form())
		case errors.As(err, &fieldErrs):
			logger.Warn("registration failed: validation error", "state", state, "fields", len(fieldErrs))
			httputil.RespondFieldErrors(w, fieldErrs, req.form())
		default:
			logger.Error("registration failed: internal error", "error", err.Error())
			httputil.RespondErrorWithCode(w, "failed to register user", httputil.CodeInternalError, http.StatusInternalServerError)
		}
		return
	}

	logger.Info("user registered successfully", "user_id", newUser.ID, "state", state)
	httputil.RespondRedirect(w, r, LoginPath, "Registration successful. You can now log in.", newUser, http.StatusCreated)
}

// Login handles sign-in by username or email
// @Summary      Log in
// @Description  Start a session. Browsers receive a session cookie and a redirect to the profile.
// @Tags         accounts
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Param        request body LoginRequest true "Credentials"
// @Success      200 {object} LoginResponse
// @Failure      400 {object} httputil.ErrorResponse "Invalid request body"
// @Failure      401 {object} httputil.ErrorResponse "Invalid credentials"
// @Failure      429 {object} httputil.ErrorResponse "Too many requests"
// @Router       /users/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	ip := getClientIP(r)
	if h.limited(w, r, ip, "login") {
		return
	}

	var req LoginRequest
	if err := httputil.Decode(r, &req); err != nil {
		logger.Warn("invalid login request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	h.record(r, ip, "login")

	session, err := h.service.Login(r.Context(), req.identifier(), req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			logger.Warn("login failed: invalid credentials")
			httputil.RespondErrorWithCode(w, InvalidCredentialsMessage, httputil.CodeInvalidCredentials, http.StatusUnauthorized)
			return
		}
		logger.Error("login failed: internal error", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to login", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("user logged in successfully", "user_id", session.User.ID)

	SetSessionCookie(w, session.Token, session.ExpiresAt, h.secureCookies)
	httputil.RespondRedirect(w, r, ProfilePath, "logged in", LoginResponse{
		User:      session.User,
		Token:     session.Token,
		TokenType: "Bearer",
		ExpiresAt: session.ExpiresAt,
	}, http.StatusOK)
}

// Logout ends the current session
// @Summary      Log out
// @Description  End the current session and clear the session cookie
// @Tags         accounts
// @Produce      json
// @Success      200 {object} httputil.RedirectResponse
// @Router       /users/logout [post]
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	if token, ok := tokenFromRequest(r); ok && token != "" {
		if err := h.service.Logout(r.Context(), token); err != nil {
			// The cookie is cleared regardless
			logger.Warn("failed to end session", "error", err)
		}
	}

	ClearSessionCookie(w, h.secureCookies)

	logger.Info("user logged out")
	httputil.RespondRedirect(w, r, HomePath, "logged out", nil, http.StatusOK)
}

// DeleteAccount removes the signed-in user's account
// @Summary      Delete account
// @Description  Delete the account, its profile and avatar, and end all sessions
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} httputil.RedirectResponse
// @Failure      401 {object} httputil.ErrorResponse "Not signed in"
// @Router       /users/account [delete]
func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	u, ok := user.FromContext(r.Context())
	if !ok {
		respondUnauthenticated(w, r)
		return
	}

	if err := h.service.DeleteAccount(r.Context(), u.ID); err != nil {
		logger.Error("account deletion failed", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to delete account", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	ClearSessionCookie(w, h.secureCookies)

	logger.Info("account deleted")
	httputil.RespondRedirect(w, r, HomePath, "account deleted", nil, http.StatusOK)
}

// ForgotPassword starts a password reset
// @Summary      Request password reset
// @Description  Mail a reset link. Always reports success so accounts cannot be probed.
// @Tags         accounts
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Param        request body ForgotPasswordRequest true "Email address"
// @Success      200 {object} map[string]string
// @Failure      400 {object} httputil.ErrorResponse "Invalid request body"
// @Failure      429 {object} httputil.ErrorResponse "Too many requests"
// @Router       /users/password/forgot [post]
func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req ForgotPasswordRequest
	if err := httputil.Decode(r, &req); err != nil {
		logger.Warn("invalid forgot password request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}
	req.trim()

	if fields := httputil.CheckRequest(&req); fields != nil {
		httputil.RespondFieldErrors(w, fields, nil)
		return
	}

	ip := getClientIP(r)
	if h.limited(w, r, ip, "password_reset") {
		return
	}

	onCooldown, err := h.rateLimiter.CheckEmailCooldown(r.Context(), req.Email)
	if err != nil {
		logger.Error("failed to check email cooldown", "error", err.Error())
	} else if onCooldown {
		logger.Warn("email on cooldown")
		httputil.RespondErrorWithCode(w, "please wait before requesting another reset", httputil.CodeCooldownActive, http.StatusTooManyRequests)
		return
	}

	h.record(r, ip, "password_reset")
	if err := h.rateLimiter.SetEmailCooldown(r.Context(), req.Email); err != nil {
		logger.Error("failed to set email cooldown", "error", err.Error())
	}

	_ = h.service.RequestPasswordReset(r.Context(), req.Email)

	httputil.RespondJSON(w, map[string]string{
		"message": "If an account exists with that email, a password reset link has been sent.",
	}, http.StatusOK)
}

// ResetPassword sets a new password using a reset token
// @Summary      Reset password
// @Description  Replace the password using a mailed token; ends every session of the account
// @Tags         accounts
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Param        request body ResetPasswordRequest true "Token and new password"
// @Success      200 {object} httputil.RedirectResponse
// @Failure      400 {object} httputil.ErrorResponse "Invalid or expired token"
// @Failure      422 {object} httputil.ErrorResponse "Field errors"
// @Router       /users/password/reset [post]
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req ResetPasswordRequest
	if err := httputil.Decode(r, &req); err != nil {
		logger.Warn("invalid reset password request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	if fields := httputil.CheckRequest(&req); fields != nil {
		httputil.RespondFieldErrors(w, fields, nil)
		return
	}

	err := h.service.ResetPassword(r.Context(), req)
	if err != nil {
		var fieldErrs validation.Errors
		switch {
		case errors.Is(err, ErrPasswordResetTokenNotFound):
			logger.Warn("password reset failed: invalid or expired token")
			httputil.RespondErrorWithCode(w, "invalid or expired reset token", httputil.CodeInvalidResetToken, http.StatusBadRequest)
		case errors.As(err, &fieldErrs):
			httputil.RespondFieldErrors(w, fieldErrs, nil)
		default:
			logger.Error("password reset failed: internal error", "error", err.Error())
			httputil.RespondErrorWithCode(w, "failed to reset password", httputil.CodeInternalError, http.StatusInternalServerError)
		}
		return
	}

	logger.Info("password reset successfully")
	httputil.RespondRedirect(w, r, LoginPath, "Password reset successfully. You can now log in with your new password.", nil, http.StatusOK)
}

// limited answers 429 when ip has used up its requests for purpose.
// Limiter failures let the request through.
func (h *Handler) limited(w http.ResponseWriter, r *http.Request, ip, purpose string) bool {
	logger := logging.GetLoggerFromContext(r.Context())

	exceeded, err := h.rateLimiter.CheckIPRateLimitWithPurpose(r.Context(), ip, purpose)
	if err != nil {
		logger.Error("failed to check IP rate limit", "error", err.Error())
		return false
	}
	if exceeded {
		logger.Warn("IP rate limit exceeded", "ip", ip, "purpose", purpose)
		httputil.RespondErrorWithCode(w, "too many requests, please try again later", httputil.CodeTooManyRequests, http.StatusTooManyRequests)
		return true
	}
	return false
}

func (h *Handler) record(r *http.Request, ip, purpose string) {
	if err := h.rateLimiter.RecordIPRequestWithPurpose(r.Context(), ip, purpose); err != nil {
		logging.GetLoggerFromContext(r.Context()).Error("failed to record IP request", "error", err.Error())
	}
}

func respondDuplicate(w http.ResponseWriter, message, code string, form map[string]string) {
	httputil.RespondJSON(w, httputil.ErrorResponse{
		Error: message,
		Code:  code,
		Form:  form,
	}, http.StatusConflict)
}

// getClientIP returns the caller's address; RealIP middleware has already
// applied forwarding headers to RemoteAddr
func getClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
