package mailer

import (
	"context"
	"fmt"
	"log"
	"mime"
	"net/smtp"
	"strconv"
	"strings"

	"orgsite-backend/config"
)

// SMTPTransport sends through a relay with PLAIN auth (STARTTLS when offered).
type SMTPTransport struct {
	addr string
	from string
	auth smtp.Auth
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPTransport(cfg config.SMTPConfig) *SMTPTransport {
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return &SMTPTransport{
		addr: cfg.Host + ":" + strconv.Itoa(cfg.Port),
		from: cfg.From,
		auth: auth,
		send: smtp.SendMail,
	}
}

func buildMessage(from, to, subject, htmlBody string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(htmlBody)
	return []byte(b.String())
}

// Send gives up waiting when ctx ends; net/smtp itself cannot be interrupted.
func (t *SMTPTransport) Send(ctx context.Context, to, subject, htmlBody string) error {
	msg := buildMessage(t.from, to, subject, htmlBody)

	done := make(chan error, 1)
	go func() {
		done <- t.send(t.addr, t.auth, t.from, []string{to}, msg)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp send to %s: %w", to, err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("smtp send to %s: %w", to, ctx.Err())
	}
}

// LogTransport prints messages instead of sending them; used when no SMTP host is set.
type LogTransport struct {
	Logger *log.Logger
}

func (t LogTransport) Send(_ context.Context, to, subject, htmlBody string) error {
	logf := log.Printf
	if t.Logger != nil {
		logf = t.Logger.Printf
	}
	logf("mail (not sent) to=%s subject=%q bytes=%d", to, subject, len(htmlBody))
	return nil
}

// NewTransport picks SMTP when a host is configured.
func NewTransport(cfg config.SMTPConfig) Transport {
	if cfg.Host == "" {
		return LogTransport{}
	}
	return NewSMTPTransport(cfg)
}
