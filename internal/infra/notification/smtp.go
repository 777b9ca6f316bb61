package notification

import (
	"context"
	"fmt"

	"charforge/internal/config"
	"charforge/internal/usecase"

	"gopkg.in/gomail.v2"
)

// 送信するメール1通
type Mail struct {
	To      string
	ToName  string
	ReplyTo string
	Subject string
	HTML    string
}

// Mailer はメールを送る窓口（本番はgomail）
type Mailer interface {
	Send(ctx context.Context, m Mail) error
}

// GomailMailer はSMTPでメールを送る
type GomailMailer struct {
	dialer   *gomail.Dialer
	from     string
	fromName string
}

func NewGomailMailer(cfg config.SMTPConfig) *GomailMailer {
	return &GomailMailer{
		dialer:   gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:     cfg.From,
		fromName: cfg.FromName,
	}
}

func (m *GomailMailer) Send(ctx context.Context, mail Mail) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", msg.FormatAddress(m.from, m.fromName))
	if mail.ToName != "" {
		msg.SetHeader("To", msg.FormatAddress(mail.To, mail.ToName))
	} else {
		msg.SetHeader("To", mail.To)
	}
	if mail.ReplyTo != "" {
		msg.SetHeader("Reply-To", mail.ReplyTo)
	}
	msg.SetHeader("Subject", mail.Subject)
	msg.SetBody("text/html", mail.HTML)

	return m.dialer.DialAndSend(msg)
}

// SMTPGateway は通知をその場でメールにして送る。
// 問い合わせだけは運営の受信箱に送り、送信者を Reply-To にする。
type SMTPGateway struct {
	envelopeNotifier
	mailer   Mailer
	renderer *Renderer
	inbox    string
}

func NewSMTPGateway(mailer Mailer, renderer *Renderer, contactInbox string) *SMTPGateway {
	g := &SMTPGateway{mailer: mailer, renderer: renderer, inbox: contactInbox}
	g.envelopeNotifier = envelopeNotifier{deliver: g.Deliver}
	return g
}

var _ usecase.Notifier = (*SMTPGateway)(nil)

func (g *SMTPGateway) Deliver(ctx context.Context, env Envelope) error {
	subject, html, err := g.renderer.Render(env)
	if err != nil {
		return err
	}

	mail := Mail{
		To:      env.To.Email,
		ToName:  env.To.Name,
		Subject: subject,
		HTML:    html,
	}
	if env.Kind == usecase.NotifyContactMessage {
		if g.inbox == "" {
			return fmt.Errorf("contact inbox is not configured")
		}
		mail.To = g.inbox
		mail.ToName = ""
		mail.ReplyTo = env.To.Email
	}

	if err := g.mailer.Send(ctx, mail); err != nil {
		return fmt.Errorf("send %s mail: %w", env.Kind, err)
	}
	return nil
}
