package mailer

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestWriterSenderFormatsMessage(t *testing.T) {
	var buf bytes.Buffer
	s := NewWriterSender(&buf)

	err := s.Send(context.Background(), "ada@example.com", "Password reset", "code: ABC123")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"To: ada@example.com", "Subject: Password reset", "code: ABC123"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWriterSenderNilWriter(t *testing.T) {
	s := NewWriterSender(nil)
	if err := s.Send(context.Background(), "a@b.c", "s", "b"); err != nil {
		t.Fatalf("Send: %v", err)
	}
}

func TestNewSMTPSenderValidation(t *testing.T) {
	if _, err := NewSMTPSender(SMTPConfig{From: "noreply@example.com"}); err == nil {
		t.Error("missing address accepted")
	}
	if _, err := NewSMTPSender(SMTPConfig{Addr: "localhost:25"}); err == nil {
		t.Error("missing sender accepted")
	}
	if _, err := NewSMTPSender(SMTPConfig{Addr: "localhost:25", From: "noreply@example.com"}); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}
}
