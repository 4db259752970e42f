package mailer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/smtp"
	"strings"
	"sync"
)

// WriterSender writes each message to an io.Writer instead of delivering it.
// Useful in development, where the reset code ends up in the log.
type WriterSender struct {
	mu     sync.Mutex
	writer io.Writer
}

// NewWriterSender wraps w. A nil writer discards messages.
func NewWriterSender(w io.Writer) *WriterSender {
	return &WriterSender{writer: w}
}

func (s *WriterSender) Send(_ context.Context, to, subject, body string) error {
	if s.writer == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := fmt.Fprintf(s.writer, "To: %s\nSubject: %s\n\n%s\n", to, subject, body)
	return err
}

// SMTPConfig holds connection details for SMTPSender.
type SMTPConfig struct {
	// Addr is host:port of the SMTP server.
	Addr string
	// From is the envelope and header sender address.
	From string
	// Username and Password enable PLAIN auth when set. Host is derived from
	// Addr.
	Username string
	Password string
}

// SMTPSender delivers through a plain SMTP server.
type SMTPSender struct {
	config SMTPConfig
}

// NewSMTPSender validates the configuration and returns a sender.
func NewSMTPSender(cfg SMTPConfig) (*SMTPSender, error) {
	if cfg.Addr == "" {
		return nil, errors.New("smtp address is required")
	}
	if cfg.From == "" {
		return nil, errors.New("a sender address is required")
	}
	return &SMTPSender{config: cfg}, nil
}

func (s *SMTPSender) Send(_ context.Context, to, subject, body string) error {
	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", s.config.From)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	msg.WriteString(body)

	var auth smtp.Auth
	if s.config.Username != "" {
		host := s.config.Addr
		if i := strings.LastIndex(host, ":"); i >= 0 {
			host = host[:i]
		}
		auth = smtp.PlainAuth("", s.config.Username, s.config.Password, host)
	}

	return smtp.SendMail(s.config.Addr, auth, s.config.From, []string{to}, []byte(msg.String()))
}
