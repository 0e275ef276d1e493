// Package mailer sends the daily evaluation report over SMTP.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/go-gomail/gomail"
	"github.com/rs/zerolog/log"

	"Vitabot/internal/config"
)

// SendTimeout bounds a single dial-and-send.
const SendTimeout = 15 * time.Second

// Sender abstracts gomail.Dialer so tests never open a socket.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type Mailer struct {
	from    string
	to      string
	sender  Sender
	timeout time.Duration
}

func New(cfg config.SMTP) *Mailer {
	return &Mailer{
		from:    cfg.From,
		to:      cfg.To,
		sender:  gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		timeout: SendTimeout,
	}
}

// WithSender replaces the SMTP dialer.
func (m *Mailer) WithSender(s Sender) *Mailer {
	m.sender = s
	return m
}

// SendReport mails body (Telegram Markdown) as a plain text part plus a minimal HTML part.
func (m *Mailer) SendReport(ctx context.Context, subject, body string) error {
	if m.to == "" {
		return errors.New("mailer: no recipient configured")
	}
	msg := m.BuildMessage(subject, body)

	errChan := make(chan error, 1)
	go func() {
		errChan <- m.sender.DialAndSend(msg)
	}()

	timer := time.NewTimer(m.timeout)
	defer timer.Stop()

	select {
	case err := <-errChan:
		if err != nil {
			log.Error().Err(err).Str("to", m.to).Msg("Failed to send report email")
			return fmt.Errorf("send report: %w", err)
		}
		log.Info().Str("to", m.to).Str("subject", subject).Msg("Report email sent")
		return nil
	case <-timer.C:
		log.Error().Str("to", m.to).Msg("Timeout sending report email")
		return fmt.Errorf("send report: email sending timeout")
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Mailer) BuildMessage(subject, body string) *gomail.Message {
	plain := stripMarkdown(body)

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", m.to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", plain)
	msg.AddAlternative("text/html", htmlBody(plain))
	return msg
}

func htmlBody(plain string) string {
	return fmt.Sprintf(`
		<html>
		<body style="font-family: Arial, sans-serif; line-height: 1.6;">
			<pre style="white-space: pre-wrap;">%s</pre>
		</body>
		</html>
	`, html.EscapeString(plain))
}

var markdownStripper = strings.NewReplacer(`\_`, `_`, `\*`, `*`, "\\`", "`", `\[`, `[`, `*`, ``, "`", ``)

// stripMarkdown drops legacy Markdown emphasis, keeping escaped literals.
func stripMarkdown(s string) string {
	return markdownStripper.Replace(s)
}
