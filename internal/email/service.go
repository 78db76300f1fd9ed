// Package email sends account notifications over SMTP.
package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/redmonkez12/booking-project/internal/config"
	"github.com/redmonkez12/booking-project/internal/logging"
)

const layout = `{{define "layout"}}<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background-color: #0F766E; color: white; padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
        .content { background-color: #f9f9f9; padding: 30px; border-radius: 0 0 5px 5px; }
        .button { display: inline-block; background-color: #0F766E; color: white !important; padding: 12px 30px; text-decoration: none; border-radius: 5px; margin: 20px 0; }
        .footer { margin-top: 30px; font-size: 12px; color: #666; text-align: center; }
    </style>
</head>
<body>
    <div class="header"><h1>{{template "title" .}}</h1></div>
    <div class="content">{{template "content" .}}</div>
    <div class="footer"><p>&copy; Booking Project</p></div>
</body>
</html>{{end}}`

const welcomeTemplate = `{{define "title"}}Welcome, {{.Username}}!{{end}}
{{define "content"}}
        <p>Your booking account is ready. Sign in and complete your profile so hosts know who they are welcoming.</p>
        <a href="{{.Link}}" class="button" style="color: white !important;">Go to my profile</a>
{{end}}`

const passwordResetTemplate = `{{define "title"}}Password Reset Request{{end}}
{{define "content"}}
        <p>Someone asked to reset the password for {{.Username}}. Use the button below to choose a new one.</p>
        <a href="{{.Link}}" class="button" style="color: white !important;">Reset Password</a>
        <p>Or copy and paste this link into your browser:</p>
        <p style="word-break: break-all;">{{.Link}}</p>
        <p>The link expires in 1 hour. If you did not ask for this, ignore this email.</p>
{{end}}`

type message struct {
	Username string
	Link     string
}

// sendFunc matches smtp.SendMail
type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type Service struct {
	cfg       config.EmailConfig
	welcome   *template.Template
	reset     *template.Template
	send      sendFunc
	fromEmail string
}

func NewService(cfg config.EmailConfig) *Service {
	return &Service{
		cfg:       cfg,
		welcome:   template.Must(template.Must(template.New("welcome").Parse(layout)).Parse(welcomeTemplate)),
		reset:     template.Must(template.Must(template.New("reset").Parse(layout)).Parse(passwordResetTemplate)),
		send:      smtp.SendMail,
		fromEmail: cfg.SMTPUser,
	}
}

// SendWelcomeEmail greets a newly registered user.
// It is meant to run in its own goroutine.
func (s *Service) SendWelcomeEmail(ctx context.Context, toEmail, username string) error {
	return s.deliver(ctx, s.welcome, toEmail, "Welcome to Booking Project", message{
		Username: username,
		Link:     s.cfg.FrontendURL + "/users/profile",
	})
}

// SendPasswordResetEmail mails a single-use reset link
func (s *Service) SendPasswordResetEmail(ctx context.Context, toEmail, username, token string) error {
	return s.deliver(ctx, s.reset, toEmail, "Reset your password", message{
		Username: username,
		Link:     fmt.Sprintf("%s/users/password/reset?token=%s", s.cfg.FrontendURL, token),
	})
}

func (s *Service) deliver(ctx context.Context, tmpl *template.Template, to, subject string, data message) error {
	logger := logging.GetLoggerFromContext(ctx)

	var body bytes.Buffer
	if err := tmpl.ExecuteTemplate(&body, "layout", data); err != nil {
		return fmt.Errorf("render %s: %w", tmpl.Name(), err)
	}

	if s.cfg.SMTPHost == "" {
		logger.Info("smtp not configured, email skipped", "template", tmpl.Name(), "email", to)
		return nil
	}

	msg := []byte(fmt.Sprintf(
		"From: %s\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=UTF-8\r\n"+
			"\r\n"+
			"%s\r\n",
		s.fromEmail, to, subject, body.String(),
	))

	auth := smtp.PlainAuth("", s.cfg.SMTPUser, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	if err := s.send(addr, auth, s.fromEmail, []string{to}, msg); err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	logger.Info("email sent", "template", tmpl.Name(), "email", to)
	return nil
}
