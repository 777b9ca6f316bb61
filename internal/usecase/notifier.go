package usecase

import (
	"context"

	"charforge/internal/metrics"

	"go.uber.org/zap"
)

// 通知の宛先
type Recipient struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// 問い合わせフォームの内容
type ContactMessage struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// 通知の種類
type NotificationKind string

const (
	NotifyWelcome            NotificationKind = "welcome"
	NotifyPasswordReset      NotificationKind = "password_reset"
	NotifyTemporaryPassword  NotificationKind = "temporary_password"
	NotifyCharacterApproved  NotificationKind = "character_approved"
	NotifyCharacterRejected  NotificationKind = "character_rejected"
	NotifyCommentApproved    NotificationKind = "comment_approved"
	NotifyCommentRejected    NotificationKind = "comment_rejected"
	NotifyAccountSuspended   NotificationKind = "account_suspended"
	NotifyAccountReactivated NotificationKind = "account_reactivated"
	NotifyAccountDeleted     NotificationKind = "account_deleted"
	NotifyContactMessage     NotificationKind = "contact_message"
)

// Notifier はテンプレート通知を送る窓口（メール・キューなど）。
// 失敗しても呼び出し側の操作を止めるかどうかは呼び出し側が決める。
type Notifier interface {
	Welcome(ctx context.Context, to Recipient) error
	PasswordReset(ctx context.Context, to Recipient, token string) error
	TemporaryPassword(ctx context.Context, to Recipient, temporaryPassword string) error
	CharacterApproved(ctx context.Context, to Recipient, characterName string) error
	CharacterRejected(ctx context.Context, to Recipient, characterName string, reason string) error
	CommentApproved(ctx context.Context, to Recipient, characterName string) error
	CommentRejected(ctx context.Context, to Recipient, characterName string, reason string) error
	AccountSuspended(ctx context.Context, to Recipient, reason string) error
	AccountReactivated(ctx context.Context, to Recipient) error
	AccountDeleted(ctx context.Context, to Recipient) error
	ContactMessage(ctx context.Context, msg ContactMessage) error
}

// notifyBestEffort は通知を送り、失敗したらログに残して続行する。
// 戻り値はない：呼び出し側の結果に通知の成否は影響しない。
func notifyBestEffort(ctx context.Context, logger *zap.Logger, kind NotificationKind, to Recipient, send func(ctx context.Context) error) {
	if err := send(ctx); err != nil {
		metrics.NotificationsTotal.WithLabelValues(string(kind), metrics.OutcomeFailed).Inc()
		logger.Warn("notification failed",
			zap.String("notification.kind", string(kind)),
			zap.String("recipient", to.Email),
			zap.Error(err),
		)
		return
	}
	metrics.NotificationsTotal.WithLabelValues(string(kind), metrics.OutcomeSent).Inc()
}

func recipientOf(email, name string) Recipient {
	return Recipient{Email: email, Name: name}
}
