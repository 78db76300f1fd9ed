package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/redmonkez12/booking-project/internal/logging"
	"github.com/redmonkez12/booking-project/internal/password"
	"github.com/redmonkez12/booking-project/internal/user"
	"github.com/redmonkez12/booking-project/internal/validation"
)

// InvalidCredentialsMessage is shown for every failed login, whatever the cause
const InvalidCredentialsMessage = "Invalid username/email or password."

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("authentication required")
)

// RegistrationState is where a registration attempt ended up
type RegistrationState int

const (
	StateFormDisplayed RegistrationState = iota
	StateSubmitted
	StateValidated
	StateRejected
	StateCreated
)

func (s RegistrationState) String() string {
	switch s {
	case StateFormDisplayed:
		return "form_displayed"
	case StateSubmitted:
		return "submitted"
	case StateValidated:
		return "validated"
	case StateRejected:
		return "rejected"
	case StateCreated:
		return "created"
	default:
		return fmt.Sprintf("RegistrationState(%d)", int(s))
	}
}

// RegistrationOutcome maps the result of Register to its final state.
// Field errors send the user back to the form; duplicates reject the attempt.
func RegistrationOutcome(err error) RegistrationState {
	var fieldErrs validation.Errors
	switch {
	case err == nil:
		return StateCreated
	case errors.Is(err, user.ErrDuplicateIdentifier):
		return StateRejected
	case errors.As(err, &fieldErrs):
		return StateFormDisplayed
	default:
		return StateSubmitted
	}
}

// Service handles registration, login and account lifecycle
type Service struct {
	users        UserStore
	sessions     *Sessions
	resets       ResetTokenStore
	hasher       CredentialHasher
	policy       *password.Policy
	emailService EmailService
	avatars      AvatarCleaner
	logger       *logging.Logger

	// background tracks outgoing emails so shutdown can wait for them
	background sync.WaitGroup
}

func NewService(
	users UserStore,
	sessions *Sessions,
	resets ResetTokenStore,
	hasher CredentialHasher,
	policy *password.Policy,
	emailService EmailService,
	avatars AvatarCleaner,
	logger *logging.Logger,
) *Service {
	return &Service{
		users:        users,
		sessions:     sessions,
		resets:       resets,
		hasher:       hasher,
		policy:       policy,
		emailService: emailService,
		avatars:      avatars,
		logger:       logger,
	}
}

// Register validates a sign-up and creates the account. It returns
// validation.Errors for field problems and an error wrapping
// user.ErrDuplicateIdentifier when the username or email is taken.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*user.User, error) {
	errs := validation.Errors{}

	username, err := validation.Username(req.Username)
	errs.Add(err)

	email, err := validation.Email(ctx, req.Email, s.users.EmailExists)
	emailTaken := errors.Is(err, validation.ErrAlreadyExists)
	if err != nil && !emailTaken && !errs.Add(err) {
		return nil, err
	}

	s.checkNewPassword(errs, req.Password1, req.Password2, password.Attributes{Username: username, Email: email})

	if err := errs.Err(); err != nil {
		return nil, err
	}

	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return nil, user.ErrDuplicateUsername
	} else if !errors.Is(err, user.ErrNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if emailTaken {
		return nil, user.ErrDuplicateEmail
	}

	passwordHash, err := s.hasher.Hash(req.Password1)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	// A concurrent registration can still win here; the unique indexes
	// turn that into the same duplicate error
	newUser, err := s.users.Create(ctx, username, email, passwordHash)
	if err != nil {
		if errors.Is(err, user.ErrDuplicateIdentifier) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.goSend(ctx, "welcome", func(ctx context.Context) error {
		return s.emailService.SendWelcomeEmail(ctx, newUser.Email, newUser.Username)
	})

	return newUser, nil
}

// Login resolves identifier (username, or email when it contains @) and
// checks the password. Every failure is ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, identifier, pw string) (*Session, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || pw == "" {
		s.hasher.VerifyDummy(pw)
		return nil, ErrInvalidCredentials
	}

	var (
		account *user.User
		err     error
	)
	if strings.Contains(identifier, "@") {
		account, err = s.users.GetByEmail(ctx, identifier)
	} else {
		account, err = s.users.GetByUsername(ctx, identifier)
	}
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			s.hasher.VerifyDummy(pw)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !s.hasher.Verify(account.PasswordHash, pw) {
		return nil, ErrInvalidCredentials
	}

	return s.sessions.Start(ctx, account)
}

func (s *Service) Logout(ctx context.Context, token string) error {
	return s.sessions.End(ctx, token)
}

func (s *Service) CurrentUser(ctx context.Context, token string) (*user.User, error) {
	return s.sessions.CurrentUser(ctx, token)
}

// DeleteAccount removes the user, their profile and stored avatar, and
// ends all of their sessions. Avatar objects are removed only after the
// account row is gone, so a failed delete leaves a consistent profile.
func (s *Service) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	var avatarKeys []string
	if s.avatars != nil {
		keys, err := s.avatars.AvatarKeys(ctx, userID)
		if err != nil {
			s.logger.Warn("failed to look up avatars for account", "user_id", userID, "error", err)
		}
		avatarKeys = keys
	}

	if err := s.users.Delete(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}

	if len(avatarKeys) > 0 {
		s.avatars.DeleteObjects(ctx, avatarKeys)
	}

	if err := s.sessions.EndAll(ctx, userID); err != nil {
		s.logger.Warn("failed to end sessions of deleted account", "user_id", userID, "error", err)
	}
	return nil
}

// RequestPasswordReset mails a reset link when email belongs to an account.
// It never reports whether the account exists.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	account, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if !errors.Is(err, user.ErrNotFound) {
			s.logger.Warn("failed to get user for password reset", "error", err)
		}
		return nil
	}

	token, err := generateRandomToken()
	if err != nil {
		s.logger.Warn("failed to generate password reset token", "error", err)
		return nil
	}

	if err := s.resets.Store(ctx, account.ID, token); err != nil {
		s.logger.Warn("failed to store password reset token", "error", err)
		return nil
	}

	s.goSend(ctx, "password_reset", func(ctx context.Context) error {
		return s.emailService.SendPasswordResetEmail(ctx, account.Email, account.Username, token)
	})

	return nil
}

// ResetPassword replaces the password of the token's owner and ends every
// session of that user
func (s *Service) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	userID, err := s.resets.Peek(ctx, req.Token)
	if err != nil {
		return err
	}

	account, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return ErrPasswordResetTokenNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	errs := validation.Errors{}
	s.checkNewPassword(errs, req.Password1, req.Password2, password.Attributes{Username: account.Username, Email: account.Email})
	if err := errs.Err(); err != nil {
		return err
	}

	// Consume only once the new password is acceptable
	if _, err := s.resets.Consume(ctx, req.Token); err != nil {
		return err
	}

	passwordHash, err := s.hasher.Hash(req.Password1)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, account.ID, passwordHash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	if err := s.sessions.EndAll(ctx, account.ID); err != nil {
		s.logger.Warn("failed to end sessions after password reset", "user_id", account.ID, "error", err)
	}

	return nil
}

// Wait blocks until queued emails have been handed off
func (s *Service) Wait() {
	s.background.Wait()
}

func (s *Service) checkNewPassword(errs validation.Errors, password1, password2 string, attrs password.Attributes) {
	if password1 == "" {
		errs.Set(validation.FieldPassword1, "This field is required.")
		return
	}
	if password1 != password2 {
		errs.Set(validation.FieldPassword2, "The two password fields didn't match.")
		return
	}
	if problems := s.policy.Validate(password1, attrs); len(problems) > 0 {
		errs.Set(validation.FieldPassword2, strings.Join(problems, " "))
	}
}

// goSend runs send in the background, detached from the request's cancellation
func (s *Service) goSend(ctx context.Context, kind string, send func(ctx context.Context) error) {
	ctx = context.WithoutCancel(ctx)
	s.background.Add(1)
	go func() {
		defer s.background.Done()
		if err := send(ctx); err != nil {
			s.logger.Warn("failed to send email", "kind", kind, "error", err)
		}
	}()
}
