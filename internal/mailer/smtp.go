// Reelview - Movie Reviews and Catalog Curation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelview

package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/tomtom215/reelview/internal/config"
)

// Gmail submission defaults.
const (
	DefaultSMTPHost = "smtp.gmail.com"
	DefaultSMTPPort = 587
)

// SMTPTransport delivers messages over SMTP with STARTTLS and PLAIN auth.
type SMTPTransport struct {
	host     string
	port     int
	username string
	password string
	timeout  time.Duration

	// tlsConfig overrides the STARTTLS config; tests use it to trust a
	// self-signed server.
	tlsConfig *tls.Config
}

// NewSMTPTransport creates a transport from cfg, filling in Gmail defaults.
func NewSMTPTransport(cfg config.MailConfig) *SMTPTransport {
	host := cfg.Host
	if host == "" {
		host = DefaultSMTPHost
	}
	port := cfg.Port
	if port == 0 {
		port = DefaultSMTPPort
	}
	return &SMTPTransport{
		host:     host,
		port:     port,
		username: cfg.Username,
		password: cfg.Password,
		timeout:  30 * time.Second,
	}
}

// Send implements Transport.
func (t *SMTPTransport) Send(ctx context.Context, msg *Message) error {
	addr := net.JoinHostPort(t.host, strconv.Itoa(t.port))

	dialer := &net.Dialer{Timeout: t.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer func() { _ = conn.Close() }() //nolint:errcheck // Best effort cleanup

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	} else {
		_ = conn.SetDeadline(time.Now().Add(t.timeout))
	}

	client, err := smtp.NewClient(conn, t.host)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer func() { _ = client.Close() }() //nolint:errcheck // Best effort cleanup

	if ok, _ := client.Extension("STARTTLS"); ok {
		tlsConfig := t.tlsConfig
		if tlsConfig == nil {
			tlsConfig = &tls.Config{ServerName: t.host, MinVersion: tls.VersionTLS12}
		}
		if err := client.StartTLS(tlsConfig); err != nil {
			return fmt.Errorf("failed to start TLS: %w", err)
		}
	}

	if t.username != "" && t.password != "" {
		if ok, _ := client.Extension("AUTH"); ok {
			auth := smtp.PlainAuth("", t.username, t.password, t.host)
			if err := client.Auth(auth); err != nil {
				return fmt.Errorf("SMTP authentication failed: %w", err)
			}
		}
	}

	if err := client.Mail(msg.From); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err := client.Rcpt(msg.To); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to start message: %w", err)
	}
	if _, err := w.Write([]byte(buildMessage(msg))); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close message: %w", err)
	}

	// The message is accepted once DATA closes.
	_ = client.Quit()
	return nil
}

// buildMessage renders RFC 5322 headers and an HTML body.
func buildMessage(msg *Message) string {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s <%s>\r\n", mime.QEncoding.Encode("utf-8", msg.FromName), msg.From)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	fmt.Fprintf(&b, "Date: %s\r\n", time.Now().UTC().Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(msg.HTML, "\n", "\r\n"))
	return b.String()
}
