// Package notification は usecase.Notifier の実装（SMTP送信・Redisキュー・ログ出力）。
//
// どの実装も通知を Envelope に詰めてから配送する。Redisキューに積んだ Envelope は
// Worker が取り出して SMTPGateway で送る。
package notification

import (
	"context"
	"time"

	"charforge/internal/usecase"

	"github.com/google/uuid"
)

// Envelope のパラメータ名
const (
	ParamCharacterName     = "character_name"
	ParamReason            = "reason"
	ParamToken             = "token"
	ParamTemporaryPassword = "temporary_password"
	ParamSubject           = "subject"
	ParamMessage           = "message"
)

// Envelope は配送単位の通知。Redisにはこれを JSON で積む。
type Envelope struct {
	ID        string                   `json:"id"`
	Kind      usecase.NotificationKind `json:"kind"`
	To        usecase.Recipient        `json:"to"`
	Params    map[string]string        `json:"params,omitempty"`
	CreatedAt time.Time                `json:"created_at"`
}

func (e Envelope) Param(key string) string {
	return e.Params[key]
}

// DeliverFunc は Envelope を実際に届ける
type DeliverFunc func(ctx context.Context, env Envelope) error

// envelopeNotifier は Notifier の各メソッドを Envelope に変換して deliver に渡す。
type envelopeNotifier struct {
	deliver DeliverFunc
}

func (n envelopeNotifier) send(ctx context.Context, kind usecase.NotificationKind, to usecase.Recipient, params map[string]string) error {
	return n.deliver(ctx, Envelope{
		ID:        uuid.NewString(),
		Kind:      kind,
		To:        to,
		Params:    params,
		CreatedAt: time.Now().UTC(),
	})
}

func (n envelopeNotifier) Welcome(ctx context.Context, to usecase.Recipient) error {
	return n.send(ctx, usecase.NotifyWelcome, to, nil)
}

func (n envelopeNotifier) PasswordReset(ctx context.Context, to usecase.Recipient, token string) error {
	return n.send(ctx, usecase.NotifyPasswordReset, to, map[string]string{ParamToken: token})
}

func (n envelopeNotifier) TemporaryPassword(ctx context.Context, to usecase.Recipient, temporaryPassword string) error {
	return n.send(ctx, usecase.NotifyTemporaryPassword, to, map[string]string{ParamTemporaryPassword: temporaryPassword})
}

func (n envelopeNotifier) CharacterApproved(ctx context.Context, to usecase.Recipient, characterName string) error {
	return n.send(ctx, usecase.NotifyCharacterApproved, to, map[string]string{ParamCharacterName: characterName})
}

func (n envelopeNotifier) CharacterRejected(ctx context.Context, to usecase.Recipient, characterName string, reason string) error {
	return n.send(ctx, usecase.NotifyCharacterRejected, to, map[string]string{
		ParamCharacterName: characterName,
		ParamReason:        reason,
	})
}

func (n envelopeNotifier) CommentApproved(ctx context.Context, to usecase.Recipient, characterName string) error {
	return n.send(ctx, usecase.NotifyCommentApproved, to, map[string]string{ParamCharacterName: characterName})
}

func (n envelopeNotifier) CommentRejected(ctx context.Context, to usecase.Recipient, characterName string, reason string) error {
	return n.send(ctx, usecase.NotifyCommentRejected, to, map[string]string{
		ParamCharacterName: characterName,
		ParamReason:        reason,
	})
}

func (n envelopeNotifier) AccountSuspended(ctx context.Context, to usecase.Recipient, reason string) error {
	return n.send(ctx, usecase.NotifyAccountSuspended, to, map[string]string{ParamReason: reason})
}

func (n envelopeNotifier) AccountReactivated(ctx context.Context, to usecase.Recipient) error {
	return n.send(ctx, usecase.NotifyAccountReactivated, to, nil)
}

func (n envelopeNotifier) AccountDeleted(ctx context.Context, to usecase.Recipient) error {
	return n.send(ctx, usecase.NotifyAccountDeleted, to, nil)
}

// 問い合わせは To に送信者を入れる（返信先）。宛先の受信箱は配送側が決める。
func (n envelopeNotifier) ContactMessage(ctx context.Context, msg usecase.ContactMessage) error {
	return n.send(ctx, usecase.NotifyContactMessage, usecase.Recipient{Email: msg.Email, Name: msg.Name}, map[string]string{
		ParamSubject: msg.Subject,
		ParamMessage: msg.Message,
	})
}
