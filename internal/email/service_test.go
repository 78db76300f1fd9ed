package email

import (
	"context"
	"errors"
	"net/smtp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/booking-project/internal/config"
)

type sentMail struct {
	addr string
	from string
	to   []string
	msg  string
}

func newTestService(host string, sendErr error) (*Service, *[]sentMail) {
	var sent []sentMail
	s := NewService(config.EmailConfig{
		SMTPHost:    host,
		SMTPPort:    "2525",
		SMTPUser:    "noreply@booking.test",
		FrontendURL: "https://booking.test",
	})
	s.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		sent = append(sent, sentMail{addr: addr, from: from, to: to, msg: string(msg)})
		return sendErr
	}
	return s, &sent
}

func TestSendWelcomeEmail(t *testing.T) {
	s, sent := newTestService("smtp.booking.test", nil)

	require.NoError(t, s.SendWelcomeEmail(context.Background(), "alice@example.com", "alice"))

	require.Len(t, *sent, 1)
	mail := (*sent)[0]
	assert.Equal(t, "smtp.booking.test:2525", mail.addr)
	assert.Equal(t, []string{"alice@example.com"}, mail.to)
	assert.Contains(t, mail.msg, "Subject: Welcome to Booking Project")
	assert.Contains(t, mail.msg, "Welcome, alice!")
	assert.Contains(t, mail.msg, "https://booking.test/users/profile")
}

func TestSendPasswordResetEmail(t *testing.T) {
	s, sent := newTestService("smtp.booking.test", nil)

	require.NoError(t, s.SendPasswordResetEmail(context.Background(), "alice@example.com", "alice", "tok123"))

	require.Len(t, *sent, 1)
	assert.Contains(t, (*sent)[0].msg, "https://booking.test/users/password/reset?token=tok123")
}

func TestEscapesUsername(t *testing.T) {
	s, sent := newTestService("smtp.booking.test", nil)

	require.NoError(t, s.SendWelcomeEmail(context.Background(), "x@example.com", "<b>x</b>"))
	assert.NotContains(t, (*sent)[0].msg, "<b>x</b>")
}

func TestSkipsWithoutSMTPHost(t *testing.T) {
	s, sent := newTestService("", nil)

	require.NoError(t, s.SendWelcomeEmail(context.Background(), "alice@example.com", "alice"))
	assert.Empty(t, *sent)
}

func TestSendFailure(t *testing.T) {
	s, _ := newTestService("smtp.booking.test", errors.New("connection refused"))

	err := s.SendWelcomeEmail(context.Background(), "alice@example.com", "alice")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}
