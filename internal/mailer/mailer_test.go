package mailer

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"strings"
	"testing"
	"time"
)

type recordingTransport struct {
	messages []Message
	err      error
}

func (r *recordingTransport) Deliver(ctx context.Context, from string, msg Message) error {
	r.messages = append(r.messages, msg)
	return r.err
}

func TestGenerateOTP(t *testing.T) {
	seen := make(map[string]bool)
	for range 20 {
		otp, err := GenerateOTP(6)
		if err != nil {
			t.Fatalf("GenerateOTP() error = %v", err)
		}
		if len(otp) != 6 {
			t.Fatalf("otp %q has %d digits, want 6", otp, len(otp))
		}
		for _, c := range otp {
			if c < '0' || c > '9' {
				t.Fatalf("otp %q contains a non digit", otp)
			}
		}
		seen[otp] = true
	}
	if len(seen) < 2 {
		t.Error("expected different codes on each call")
	}

	if _, err := GenerateOTP(0); err == nil {
		t.Error("expected an error for zero digits")
	}
}

func TestSendFailureIsLoggedNotReturned(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))
	transport := &recordingTransport{err: errors.New("connection refused")}

	m := New("Shopfront <no-reply@shopfront.local>", transport, log)
	m.SendPasswordReset(context.Background(), "a@example.com", "123456", 15*time.Minute)

	if len(transport.messages) != 1 {
		t.Fatalf("expected 1 delivery attempt, got %d", len(transport.messages))
	}
	if !strings.Contains(transport.messages[0].Body, "123456") || !strings.Contains(transport.messages[0].Body, "15 minutes") {
		t.Errorf("unexpected body %q", transport.messages[0].Body)
	}
	if !strings.Contains(buf.String(), "email not sent") {
		t.Errorf("expected the failure to be logged, got %s", buf.String())
	}
}

func TestLogTransportIsDefault(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))

	m := New("no-reply@shopfront.local", nil, log)
	m.SendWelcome(context.Background(), "b@example.com", "Bea")

	out := buf.String()
	if !strings.Contains(out, "smtp not configured") || !strings.Contains(out, "b@example.com") {
		t.Errorf("expected the message to be logged, got %s", out)
	}
}

func TestBuildMessage(t *testing.T) {
	from := &mail.Address{Name: "Shopfront", Address: "no-reply@shopfront.local"}
	to := &mail.Address{Address: "c@example.com"}

	data := string(buildMessage(from, to, Message{Subject: "Réinitialiser", Body: "hello"}))

	if !strings.Contains(data, "To: <c@example.com>\r\n") {
		t.Errorf("missing To header: %q", data)
	}
	if !strings.Contains(data, "Subject: =?utf-8?q?") {
		t.Errorf("non ascii subject should be encoded: %q", data)
	}
	if !strings.HasSuffix(data, "\r\n\r\nhello") {
		t.Errorf("body should follow a blank line: %q", data)
	}
}
