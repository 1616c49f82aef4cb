// Package mailer sends transactional email: the welcome message and password reset codes.
//
// Delivery is best effort. Send failures are logged and never returned to the API caller.
package mailer

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"mime"
	"net"
	"net/mail"
	"net/smtp"
	"strconv"
	"strings"
	"time"
)

type Message struct {
	To      string
	Subject string
	Body    string
}

// Transport delivers a single message
type Transport interface {
	Deliver(ctx context.Context, from string, msg Message) error
}

type Mailer struct {
	from      string
	transport Transport
	logger    *slog.Logger
}

// New returns a Mailer. When transport is nil messages are only logged.
func New(from string, transport Transport, logger *slog.Logger) *Mailer {
	if transport == nil {
		transport = LogTransport{logger: logger}
	}
	return &Mailer{
		from:      from,
		transport: transport,
		logger:    logger,
	}
}

// Send delivers msg. Errors are logged.
func (m *Mailer) Send(ctx context.Context, msg Message) {
	if err := m.transport.Deliver(ctx, m.from, msg); err != nil {
		m.logger.Error("email not sent",
			slog.String("to", msg.To),
			slog.String("subject", msg.Subject),
			slog.String("error", err.Error()),
		)
		return
	}
	m.logger.Info("email sent", slog.String("to", msg.To), slog.String("subject", msg.Subject))
}

func (m *Mailer) SendWelcome(ctx context.Context, to, name string) {
	m.Send(ctx, Message{
		To:      to,
		Subject: "Welcome to Shopfront",
		Body: fmt.Sprintf("Hi %s,\r\n\r\nYour Shopfront account has been created. You can now sign in with %s.\r\n",
			name, to),
	})
}

func (m *Mailer) SendPasswordReset(ctx context.Context, to, otp string, expiry time.Duration) {
	m.Send(ctx, Message{
		To:      to,
		Subject: "Your Shopfront password reset code",
		Body: fmt.Sprintf("Your password reset code is %s.\r\n\r\nThe code expires in %d minutes and can only be used once. If you did not ask to reset your password you can ignore this email.\r\n",
			otp, int(expiry.Minutes())),
	})
}

// GenerateOTP returns a random numeric code with the given number of digits
func GenerateOTP(digits int) (string, error) {
	if digits < 1 || digits > 18 {
		return "", fmt.Errorf("invalid OTP length %d", digits)
	}
	limit := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits)), nil)
	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", fmt.Errorf("error generating OTP: %w", err)
	}
	return fmt.Sprintf("%0*d", digits, n), nil
}

// LogTransport writes messages to the log instead of sending them (used when SMTP is not configured)
type LogTransport struct {
	logger *slog.Logger
}

func (t LogTransport) Deliver(ctx context.Context, from string, msg Message) error {
	t.logger.InfoContext(ctx, "email (smtp not configured)",
		slog.String("from", from),
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
		slog.String("body", msg.Body),
	)
	return nil
}

type SMTPTransport struct {
	addr string
	auth smtp.Auth
}

// NewSMTPTransport uses PLAIN auth when a username is supplied
func NewSMTPTransport(host string, port int, username, password string) *SMTPTransport {
	t := &SMTPTransport{addr: net.JoinHostPort(host, strconv.Itoa(port))}
	if username != "" {
		t.auth = smtp.PlainAuth("", username, password, host)
	}
	return t
}

func (t *SMTPTransport) Deliver(ctx context.Context, from string, msg Message) error {
	sender, err := mail.ParseAddress(from)
	if err != nil {
		return fmt.Errorf("invalid from address %q: %w", from, err)
	}
	recipient, err := mail.ParseAddress(msg.To)
	if err != nil {
		return fmt.Errorf("invalid to address %q: %w", msg.To, err)
	}

	data := buildMessage(sender, recipient, msg)

	// smtp.SendMail has no context support, run it so the caller is not held past its deadline
	done := make(chan error, 1)
	go func() {
		done <- smtp.SendMail(t.addr, t.auth, sender.Address, []string{recipient.Address}, data)
	}()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func buildMessage(from, to *mail.Address, msg Message) []byte {
	var b strings.Builder
	b.WriteString("From: " + from.String() + "\r\n")
	b.WriteString("To: " + to.String() + "\r\n")
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", msg.Subject) + "\r\n")
	b.WriteString("Date: " + time.Now().Format(time.RFC1123Z) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.Body)
	return []byte(b.String())
}
