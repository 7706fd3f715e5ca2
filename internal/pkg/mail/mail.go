package mail

import (
	"fmt"
	"html"
	"net/smtp"
	"strings"

	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/opad/internal/pkg/env"
)

// Sender delivers one HTML mail.
type Sender interface {
	Send(to, subject, body string) error
}

// SMTPSender sends mail through the SMTP_* settings.
type SMTPSender struct{}

func (SMTPSender) Send(to, subject, body string) error {
	return SendMail(to, subject, body)
}

// SendMail sends an HTML mail via SMTP
func SendMail(to string, subject string, body string) error {
	host := env.GetEnv("SMTP_HOST", "")
	port := env.GetEnv("SMTP_PORT", "")
	username := env.GetEnv("SMTP_USERNAME", "")
	password := env.GetEnv("SMTP_PASSWORD", "")
	sender := env.GetEnv("SMTP_SENDER", "")

	if host == "" {
		log.Warnf("[Mail] SMTP_HOST not set, dropping mail %q to %s", subject, to)
		return nil
	}
	if sender == "" {
		sender = fmt.Sprintf("no-reply@%s", "localhost")
		log.Infof("[Mail] SMTP_SENDER not set, using default sender: %s", sender)
	}

	var auth smtp.Auth
	if username != "" && password != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}

	addr := fmt.Sprintf("%s:%s", host, port)
	msg := BuildMessage(sender, to, subject, body)

	err := smtp.SendMail(addr, auth, sender, []string{to}, msg)
	if err != nil {
		log.Errorf("[Mail] SMTP send error: %v", err)
	} else {
		log.Infof("[Mail] Email sent to %s via %s", to, addr)
	}
	return err
}

// BuildMessage renders the raw RFC 5322 message.
func BuildMessage(from, to, subject, body string) []byte {
	return []byte(
		fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n", from, to, subject) +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/html; charset=UTF-8\r\n\r\n" +
			body,
	)
}

// PasswordResetMail returns subject and body of the reset mail.
func PasswordResetMail(resetURL string) (string, string) {
	var b strings.Builder
	b.WriteString("<p>Someone asked to reset the password of your One Photo A Day account.</p>")
	fmt.Fprintf(&b, `<p><a href="%s">Choose a new password</a></p>`, html.EscapeString(resetURL))
	b.WriteString("<p>The link is valid for one hour. If you did not ask for it you can ignore this mail.</p>")
	return "Reset your password", b.String()
}
