package notification

import (
	"context"
	"errors"
	"testing"

	"charforge/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingMailer struct {
	sent []Mail
	err  error
}

func (m *recordingMailer) Send(_ context.Context, mail Mail) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, mail)
	return nil
}

func newTestGateway(t *testing.T, mailer Mailer, inbox string) *SMTPGateway {
	t.Helper()
	r, err := NewRenderer("https://charforge.example")
	require.NoError(t, err)
	return NewSMTPGateway(mailer, r, inbox)
}

func TestSMTPGateway_SendsToRecipient(t *testing.T) {
	mailer := &recordingMailer{}
	g := newTestGateway(t, mailer, "support@charforge.example")

	err := g.AccountSuspended(context.Background(), usecase.Recipient{Email: "bram@example.com", Name: "bram"}, "Repeated harassment in comments.")
	require.NoError(t, err)

	require.Len(t, mailer.sent, 1)
	m := mailer.sent[0]
	assert.Equal(t, "bram@example.com", m.To)
	assert.Equal(t, "bram", m.ToName)
	assert.Empty(t, m.ReplyTo)
	assert.Equal(t, "Your account has been suspended", m.Subject)
	assert.Contains(t, m.HTML, "Repeated harassment in comments.")
}

// 問い合わせは運営の受信箱へ送り、送信者に返信できるようにする
func TestSMTPGateway_ContactGoesToInbox(t *testing.T) {
	mailer := &recordingMailer{}
	g := newTestGateway(t, mailer, "support@charforge.example")

	err := g.ContactMessage(context.Background(), usecase.ContactMessage{
		Name:    "Aria",
		Email:   "aria@example.com",
		Subject: "Bug report",
		Message: "The gallery does not load on page 3.",
	})
	require.NoError(t, err)

	require.Len(t, mailer.sent, 1)
	m := mailer.sent[0]
	assert.Equal(t, "support@charforge.example", m.To)
	assert.Equal(t, "aria@example.com", m.ReplyTo)
	assert.Equal(t, "[Contact] Bug report", m.Subject)
	assert.Contains(t, m.HTML, "The gallery does not load on page 3.")
}

func TestSMTPGateway_ContactWithoutInbox(t *testing.T) {
	mailer := &recordingMailer{}
	g := newTestGateway(t, mailer, "")

	err := g.ContactMessage(context.Background(), usecase.ContactMessage{Name: "Aria", Email: "aria@example.com", Subject: "Hi", Message: "Hello there, team."})
	assert.Error(t, err)
	assert.Empty(t, mailer.sent)
}

func TestSMTPGateway_MailerFailure(t *testing.T) {
	g := newTestGateway(t, &recordingMailer{err: errors.New("connection refused")}, "")

	err := g.Welcome(context.Background(), usecase.Recipient{Email: "aria@example.com"})
	assert.ErrorContains(t, err, "connection refused")
}
