package mail

import (
	"fmt"
	"log"
	"net/smtp"

	"coffee-platform/internal/config"
)

// Sender delivers transactional mail. Handlers depend on this interface so
// tests can swap in a recorder.
type Sender interface {
	SendOtp(to, code, purpose string) error
}

// SMTPSender sends through a plain SMTP relay.
type SMTPSender struct {
	cfg config.Config
}

func NewSMTPSender(cfg config.Config) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

// SendOtp mails a short numeric code. The code is the only secret in the
// message and is never logged.
func (m *SMTPSender) SendOtp(to, code, purpose string) error {
	sender := m.cfg.SMTPSender
	if sender == "" {
		sender = "no-reply@localhost"
	}

	subject := "Verify your email (OTP)"
	if purpose == "reset" {
		subject = "Reset password (OTP)"
	}

	var auth smtp.Auth
	if m.cfg.SMTPUsername != "" && m.cfg.SMTPPassword != "" {
		auth = smtp.PlainAuth("", m.cfg.SMTPUsername, m.cfg.SMTPPassword, m.cfg.SMTPHost)
	}

	addr := fmt.Sprintf("%s:%s", m.cfg.SMTPHost, m.cfg.SMTPPort)
	msg := []byte(
		fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n", sender, to, subject) +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/plain; charset=UTF-8\r\n\r\n" +
			fmt.Sprintf("Your OTP is %s", code),
	)

	if err := smtp.SendMail(addr, auth, sender, []string{to}, msg); err != nil {
		log.Printf("mail: SMTP send to %s failed: %v", to, err)
		return err
	}
	return nil
}
