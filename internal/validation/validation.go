// Package validation holds the field-level rules applied to account and
// profile input before anything reaches storage.
package validation

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	MaxBioLength    = 500
	MaxAvatarBytes  = 2 * 1024 * 1024 // 2MB
	MaxEmailLength  = 254
	MinBirthYear    = 1900
	DateOfBirthForm = "2006-01-02"
)

// Field names as submitted by clients
const (
	FieldUsername    = "username"
	FieldEmail       = "email"
	FieldPassword1   = "password1"
	FieldPassword2   = "password2"
	FieldPhoneNumber = "phone_number"
	FieldBio         = "bio"
	FieldDateOfBirth = "date_of_birth"
	FieldAvatar      = "avatar"
)

var (
	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]{3,150}$`)

	// \s is ASCII whitespace only; Unicode spaces are rejected
	phonePattern = regexp.MustCompile(`^[0-9+()\-\s]{7,20}$`)
)

// ErrAlreadyExists marks an Error caused by a uniqueness lookup rather than syntax
var ErrAlreadyExists = errors.New("value already exists")

// Error is a single field-scoped validation failure
type Error struct {
	Field   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Errors maps field names to their messages. A nil or empty value means valid.
type Errors map[string]string

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+e[field])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add records err under its field if it is a validation error.
// It reports whether err was recorded.
func (e Errors) Add(err error) bool {
	var fieldErr *Error
	if !errors.As(err, &fieldErr) {
		return false
	}
	if _, exists := e[fieldErr.Field]; !exists {
		e[fieldErr.Field] = fieldErr.Message
	}
	return true
}

// Set records a message for field, keeping the first one reported
func (e Errors) Set(field, message string) {
	if _, exists := e[field]; !exists {
		e[field] = message
	}
}

// Err returns e as an error, or nil when there is nothing to report
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

func newError(field, message string) *Error {
	return &Error{Field: field, Message: message}
}

// EmailLookup reports whether an account already uses email (compared case-insensitively)
type EmailLookup func(ctx context.Context, email string) (bool, error)

// Username trims raw and checks length and charset
func Username(raw string) (string, error) {
	username := strings.TrimSpace(raw)
	if !usernamePattern.MatchString(username) {
		return "", newError(FieldUsername, "Username must be 3-150 chars and contain only letters, numbers, _ . -")
	}
	return username, nil
}

// Email trims and lowercases raw, then rejects empty, malformed and taken addresses.
// A lookup failure is returned as-is, not as a validation error.
func Email(ctx context.Context, raw string, lookup EmailLookup) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", newError(FieldEmail, "Email is required")
	}
	if len(email) > MaxEmailLength {
		return "", newError(FieldEmail, "Enter a valid email address")
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return "", newError(FieldEmail, "Enter a valid email address")
	}

	if lookup != nil {
		exists, err := lookup(ctx, email)
		if err != nil {
			return "", fmt.Errorf("failed to check email: %w", err)
		}
		if exists {
			return "", &Error{
				Field:   FieldEmail,
				Message: "An account with this email already exists",
				Err:     ErrAlreadyExists,
			}
		}
	}

	return email, nil
}

// Phone accepts an empty value or digits, spaces, +, -, and parentheses
func Phone(raw string) (string, error) {
	phone := strings.TrimSpace(raw)
	if phone == "" {
		return "", nil
	}
	if !phonePattern.MatchString(phone) {
		return "", newError(FieldPhoneNumber, "Enter a valid phone number (digits, spaces, +, -, parentheses).")
	}
	return phone, nil
}

// Bio trims raw and limits it to MaxBioLength characters
func Bio(raw string) (string, error) {
	bio := strings.TrimSpace(raw)
	if utf8.RuneCountInString(bio) > MaxBioLength {
		return "", newError(FieldBio, fmt.Sprintf("Bio must be at most %d characters long", MaxBioLength))
	}
	return bio, nil
}

// DateOfBirth rejects dates after today and years before MinBirthYear.
// Only the calendar date of value and today is compared.
func DateOfBirth(value *time.Time, today time.Time) (*time.Time, error) {
	if value == nil {
		return nil, nil
	}

	dob := truncateToDate(*value)
	if dob.After(truncateToDate(today)) {
		return nil, newError(FieldDateOfBirth, "Date of birth cannot be in the future")
	}
	if dob.Year() < MinBirthYear {
		return nil, newError(FieldDateOfBirth, fmt.Sprintf("Date of birth year must be %d or later", MinBirthYear))
	}

	return &dob, nil
}

// ParseDateOfBirth parses a YYYY-MM-DD form value; empty input means no date
func ParseDateOfBirth(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	dob, err := time.Parse(DateOfBirthForm, raw)
	if err != nil {
		return nil, newError(FieldDateOfBirth, "Enter a valid date (YYYY-MM-DD)")
	}
	return &dob, nil
}

// AvatarFile describes an uploaded avatar before it is stored
type AvatarFile struct {
	Filename    string
	ContentType string
	Size        int64
	Data        []byte
}

// Avatar checks the declared size and content type of an upload
func Avatar(file *AvatarFile) (*AvatarFile, error) {
	if file == nil {
		return nil, nil
	}
	if file.Size > MaxAvatarBytes {
		return nil, newError(FieldAvatar, "Avatar must be 2MB or smaller")
	}
	if file.ContentType != "" && !strings.HasPrefix(file.ContentType, "image/") {
		return nil, newError(FieldAvatar, "Avatar must be an image file")
	}
	return file, nil
}

func truncateToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
