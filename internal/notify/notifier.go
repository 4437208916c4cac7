// Package notify delivers share, copy and revoke notifications to the
// affected user. Delivery happens strictly after the owning transaction has
// committed and never affects the operation's result: a lost email is
// acceptable, a rolled-back mutation that was announced is not.
package notify

import (
	"fmt"
	"log/slog"
	"net/smtp"
)

// Notifier sends a human-readable notification to a recipient email.
type Notifier interface {
	Send(toEmail, subject, body string) error
}

// Noop discards all notifications. Used in tests and when SMTP is not
// configured.
type Noop struct{}

func (Noop) Send(toEmail, subject, body string) error { return nil }

// SMTPNotifier sends notifications through a plain SMTP relay.
type SMTPNotifier struct {
	Host     string
	Port     int
	From     string
	Username string
	Password string
}

// Send delivers a single message. Errors are returned for logging only;
// callers must not fail their operation on them.
func (n *SMTPNotifier) Send(toEmail, subject, body string) error {
	addr := fmt.Sprintf("%s:%d", n.Host, n.Port)
	msg := []byte("From: " + n.From + "\r\n" +
		"To: " + toEmail + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"\r\n" +
		body + "\r\n")

	var a smtp.Auth
	if n.Username != "" {
		a = smtp.PlainAuth("", n.Username, n.Password, n.Host)
	}
	if err := smtp.SendMail(addr, a, n.From, []string{toEmail}, msg); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}
	return nil
}

// Async wraps Send in a goroutine so callers never block on delivery.
// Failures are logged and dropped.
func Async(n Notifier, toEmail, subject, body string) {
	go func() {
		if err := n.Send(toEmail, subject, body); err != nil {
			slog.Warn("notification delivery failed", "to", toEmail, "error", err)
		}
	}()
}
