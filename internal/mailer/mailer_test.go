package mailer

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-gomail/gomail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Vitabot/internal/config"
)

type fakeSender struct {
	err   error
	delay time.Duration
	sent  []*gomail.Message
}

func (f *fakeSender) DialAndSend(m ...*gomail.Message) error {
	time.Sleep(f.delay)
	f.sent = append(f.sent, m...)
	return f.err
}

func newMailer(s Sender) *Mailer {
	return New(config.SMTP{Host: "smtp.test", Port: 587, From: "bot@test", To: "me@test"}).WithSender(s)
}

func TestBuildMessage(t *testing.T) {
	m := newMailer(&fakeSender{})
	msg := m.BuildMessage("Evaluación", "*Total:* 500 kcal <b>")

	assert.Equal(t, []string{"bot@test"}, msg.GetHeader("From"))
	assert.Equal(t, []string{"me@test"}, msg.GetHeader("To"))

	var buf bytes.Buffer
	_, err := msg.WriteTo(&buf)
	require.NoError(t, err)
	raw := buf.String()
	assert.Contains(t, raw, "text/plain")
	assert.Contains(t, raw, "text/html")
	assert.Contains(t, raw, "Total: 500 kcal <b>")
	assert.NotContains(t, raw, "*Total:*")
	assert.Contains(t, htmlBody("500 <b>"), "500 &lt;b&gt;")
}

func TestStripMarkdown(t *testing.T) {
	assert.Equal(t, "a_b Total: x*y", stripMarkdown(`a\_b *Total:* x\*y`))
}

func TestSendReport(t *testing.T) {
	s := &fakeSender{}
	require.NoError(t, newMailer(s).SendReport(context.Background(), "s", "body"))
	assert.Len(t, s.sent, 1)
}

func TestSendReportError(t *testing.T) {
	s := &fakeSender{err: errors.New("auth failed")}
	err := newMailer(s).SendReport(context.Background(), "s", "body")
	assert.ErrorContains(t, err, "auth failed")
}

func TestSendReportTimeout(t *testing.T) {
	m := newMailer(&fakeSender{delay: 200 * time.Millisecond})
	m.timeout = 10 * time.Millisecond
	err := m.SendReport(context.Background(), "s", "body")
	assert.ErrorContains(t, err, "timeout")
}

func TestSendReportNoRecipient(t *testing.T) {
	m := New(config.SMTP{Host: "smtp.test"})
	assert.Error(t, m.SendReport(context.Background(), "s", "body"))
}
