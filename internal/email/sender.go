package email

import (
	"context"
	"fmt"
	"log"
	"net/smtp"
	"strings"

	"github.com/Alilen9/renthub-sub001/internal/config"
)

// Sender delivers fault-workflow notification emails.
type Sender interface {
	Send(ctx context.Context, to []string, subject, body string) error
}

// NewSender picks an implementation: SMTP when a host is configured,
// otherwise a logging sender so development works without mail settings.
func NewSender(cfg *config.Config) Sender {
	if cfg.SmtpHost == "" {
		log.Println("SMTP host not configured, using logging email sender.")
		return &LoggingSender{cfg: cfg}
	}
	return &SMTPSender{
		cfg:  cfg,
		auth: smtp.PlainAuth("", cfg.SmtpUsername, cfg.SmtpPassword, cfg.SmtpHost),
		addr: fmt.Sprintf("%s:%d", cfg.SmtpHost, cfg.SmtpPort),
	}
}

// SMTPSender sends via net/smtp.
type SMTPSender struct {
	cfg  *config.Config
	auth smtp.Auth
	addr string
}

func (s *SMTPSender) Send(ctx context.Context, to []string, subject, body string) error {
	msg := buildMessage(s.cfg.SmtpFromAddress, to, subject, body)
	if err := smtp.SendMail(s.addr, s.auth, s.cfg.SmtpFromAddress, to, msg); err != nil {
		return fmt.Errorf("smtp error: %w", err)
	}
	log.Printf("Email sent to %v (Subject: %s)", to, subject)
	return nil
}

// LoggingSender logs instead of sending.
type LoggingSender struct {
	cfg *config.Config
}

func (s *LoggingSender) Send(ctx context.Context, to []string, subject, body string) error {
	log.Printf("--- Email (logged, not sent) ---")
	log.Printf("From: %s", s.cfg.SmtpFromAddress)
	log.Printf("To: %s", strings.Join(to, ", "))
	log.Printf("Subject: %s", subject)
	log.Println(body)
	log.Printf("--- End email ---")
	return nil
}

func buildMessage(from string, to []string, subject, body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=\"utf-8\"\r\n\r\n")
	b.WriteString(body)
	return []byte(b.String())
}
