package email

import (
	"fmt"
	"strings"

	"gopkg.in/gomail.v2"

	"trosc-backend/internal/config"
)

// Mailer sends transactional HTML email over SMTP. Delivery is at-most-once;
// callers decide what to do when Send fails.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewMailer(cfg *config.SMTPConfig) *Mailer {
	return &Mailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   cfg.From,
	}
}

func (m *Mailer) Send(to, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}

// SendWelcome greets a newly registered user.
func (m *Mailer) SendWelcome(to, name string) error {
	body := fmt.Sprintf(
		`<h1>Welcome, %s!</h1>
<p>We're thrilled to have you at Trosc.</p>`,
		firstName(name),
	)
	return m.Send(to, "Welcome to Trosc", body)
}

// SendPasswordReset mails the one-time reset link. The plaintext token inside
// resetURL is disclosed here and nowhere else.
func (m *Mailer) SendPasswordReset(to, name, resetURL string) error {
	body := fmt.Sprintf(
		`<p>Hello %s,</p>
<p>Forgot your password? Click the link below to reset it:</p>
<a href="%s">%s</a>
<p>If you didn't request this, please ignore this email.</p>`,
		firstName(name), resetURL, resetURL,
	)
	return m.Send(to, "Your password reset link (valid for 10 min)", body)
}

func firstName(name string) string {
	if i := strings.IndexByte(name, ' '); i > 0 {
		return name[:i]
	}
	return name
}
