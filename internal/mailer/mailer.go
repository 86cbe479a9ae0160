// Reelview - Movie Reviews and Catalog Curation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelview

// Package mailer sends account verification emails over SMTP.
package mailer

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html"
	"html/template"
	"net/url"
	"strings"
	"time"

	"github.com/tomtom215/reelview/internal/config"
	"github.com/tomtom215/reelview/internal/logging"
	"github.com/tomtom215/reelview/internal/metrics"
)

// VerificationSubject is the subject line of verification emails.
const VerificationSubject = "Confirmez votre adresse email"

// VerifyPath is the endpoint that consumes verification tokens.
const VerifyPath = "/api/auth/verify"

const (
	defaultFromName = "App Support"
	appName         = "Reelview"
)

//go:embed templates/*.html
var templateFS embed.FS

var verifyTemplate = template.Must(template.ParseFS(templateFS, "templates/verify.html"))

// Message is a single outgoing HTML email.
type Message struct {
	FromName string
	From     string
	To       string
	Subject  string
	HTML     string
}

// Transport delivers a rendered message.
type Transport interface {
	Send(ctx context.Context, msg *Message) error
}

// Sender is what the registration handlers depend on.
type Sender interface {
	SendVerificationEmail(ctx context.Context, to, token string) error
}

// Mailer renders templates and hands them to a Transport.
type Mailer struct {
	baseURL   string
	from      string
	fromName  string
	transport Transport
}

// New builds a Mailer. SMTP is used when cfg has a username, otherwise
// messages are only logged.
func New(cfg config.MailConfig, baseURL string) *Mailer {
	var transport Transport
	if cfg.Enabled() {
		transport = NewSMTPTransport(cfg)
	} else {
		transport = LogTransport{}
	}
	return NewWithTransport(cfg, baseURL, transport)
}

// NewWithTransport builds a Mailer around an explicit transport.
func NewWithTransport(cfg config.MailConfig, baseURL string, transport Transport) *Mailer {
	fromName := cfg.FromName
	if fromName == "" {
		fromName = defaultFromName
	}
	return &Mailer{
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		from:      cfg.Username,
		fromName:  fromName,
		transport: transport,
	}
}

// VerificationURL is the link embedded in verification emails.
func (m *Mailer) VerificationURL(token string) string {
	return m.baseURL + VerifyPath + "?token=" + url.QueryEscape(token)
}

// SendVerificationEmail renders and delivers the verification email for token.
func (m *Mailer) SendVerificationEmail(ctx context.Context, to, token string) error {
	var body bytes.Buffer
	err := verifyTemplate.Execute(&body, struct {
		AppName     string
		VerifyURL   string
		ExpiryHours int
	}{
		AppName:     appName,
		VerifyURL:   m.VerificationURL(token),
		ExpiryHours: 24,
	})
	if err != nil {
		return fmt.Errorf("failed to render verification email: %w", err)
	}

	start := time.Now()
	err = m.transport.Send(ctx, &Message{
		FromName: m.fromName,
		From:     m.from,
		To:       to,
		Subject:  VerificationSubject,
		HTML:     body.String(),
	})
	metrics.RecordMailSent("verification", err)
	if err != nil {
		return fmt.Errorf("failed to send verification email: %w", err)
	}

	logging.Ctx(ctx).Debug().
		Str("to", logging.SanitizeEmail(to)).
		Dur("duration", time.Since(start)).
		Msg("Verification email sent")
	return nil
}

// LogTransport logs messages instead of sending them. It is selected when
// SMTP is not configured so local sign-ups can still be verified.
type LogTransport struct{}

// Send implements Transport.
func (LogTransport) Send(ctx context.Context, msg *Message) error {
	logging.Ctx(ctx).Info().
		Str("to", logging.SanitizeEmail(msg.To)).
		Str("subject", msg.Subject).
		Str("link", extractLink(msg.HTML)).
		Msg("SMTP not configured, email not sent")
	return nil
}

// extractLink returns the first href in an HTML body.
func extractLink(body string) string {
	const marker = `href="`
	i := strings.Index(body, marker)
	if i < 0 {
		return ""
	}
	rest := body[i+len(marker):]
	if j := strings.IndexByte(rest, '"'); j >= 0 {
		return html.UnescapeString(rest[:j])
	}
	return ""
}
