// Package notify holds notification sinks that leave the process. The in-app
// sink lives with the other postgres adapters.
package notify

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"net"
	"net/mail"
	"net/smtp"
	"strconv"
	"time"

	"ordertracker/internal/core/domain/model/kernel"
	"ordertracker/internal/core/ports"
)

// EmailChannel is the metrics label of the email sink.
const EmailChannel = "email"

// SMTPConfig addresses the relay used for outgoing mail.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// EmailSink implements ports.NotificationSink over SMTP. The recipient
// address travels in the payload's "email" key; payloads without one are
// ports.ErrRecipientUnreachable.
type EmailSink struct {
	config SMTPConfig
	from   mail.Address
}

func NewEmailSink(config SMTPConfig) (*EmailSink, error) {
	from, err := mail.ParseAddress(config.From)
	if err != nil {
		return nil, fmt.Errorf("parse sender address: %w", err)
	}
	return &EmailSink{config: config, from: *from}, nil
}

func (s *EmailSink) Channel() string {
	return EmailChannel
}

func (s *EmailSink) Send(ctx context.Context, _ kernel.UUID, templateKind string, payload map[string]any) error {
	email, _ := payload["email"].(string)
	if email == "" {
		return ports.ErrRecipientUnreachable
	}
	to, err := mail.ParseAddress(email)
	if err != nil {
		return fmt.Errorf("%w: %v", ports.ErrRecipientUnreachable, err)
	}

	subject, body := render(templateKind, payload)
	return s.deliver(ctx, to, composeMessage(s.from, *to, subject, body, time.Now()))
}

func (s *EmailSink) deliver(ctx context.Context, to *mail.Address, msg []byte) error {
	address := net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))

	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return fmt.Errorf("smtp connection failed: %w", err)
	}
	defer conn.Close()
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, s.config.Host)
	if err != nil {
		return fmt.Errorf("smtp client init failed: %w", err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err = client.StartTLS(&tls.Config{ServerName: s.config.Host}); err != nil {
			return fmt.Errorf("smtp STARTTLS failed: %w", err)
		}
	}
	if s.config.User != "" {
		auth := smtp.PlainAuth("", s.config.User, s.config.Password, s.config.Host)
		if err = client.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth failed: %w", err)
		}
	}

	if err = client.Mail(s.from.Address); err != nil {
		return fmt.Errorf("smtp MAIL failed: %w", err)
	}
	if err = client.Rcpt(to.Address); err != nil {
		return fmt.Errorf("smtp RCPT failed: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp DATA failed: %w", err)
	}
	if _, err = w.Write(msg); err != nil {
		_ = w.Close()
		return fmt.Errorf("smtp write failed: %w", err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("smtp DATA failed: %w", err)
	}

	return client.Quit()
}

func render(templateKind string, payload map[string]any) (subject, body string) {
	if templateKind != ports.TemplateOrderStageChanged {
		return "Order update", fmt.Sprintf("%v\r\n", payload)
	}

	subject = fmt.Sprintf("Order %v is now %v", payload["orderId"], payload["newStage"])
	body = fmt.Sprintf("Your order %v moved from %q to %q at %v.\r\n",
		payload["orderId"], payload["previousStage"], payload["newStage"], payload["changedAt"])
	return subject, body
}

func composeMessage(from, to mail.Address, subject, body string, at time.Time) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "From: %s\r\n", from.String())
	fmt.Fprintf(&buf, "To: %s\r\n", to.String())
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	fmt.Fprintf(&buf, "Date: %s\r\n", at.Format(time.RFC1123Z))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(body)
	return buf.Bytes()
}
