package usecase

import (
	"context"
	"net/mail"
	"strings"
	"unicode/utf8"

	"charforge/internal/domain/model"
	"charforge/internal/metrics"

	"go.uber.org/zap"
)

// 問い合わせフォーム。ここだけは通知の失敗を呼び出し側に返す。
type ContactUsecase struct {
	notifier Notifier
	logger   *zap.Logger
}

func NewContactUsecase(notifier Notifier, logger *zap.Logger) *ContactUsecase {
	return &ContactUsecase{notifier: notifier, logger: logger}
}

func (u *ContactUsecase) Send(ctx context.Context, in ContactMessage) error {
	msg := ContactMessage{
		Name:    strings.TrimSpace(in.Name),
		Email:   model.NormalizeEmail(in.Email),
		Subject: strings.TrimSpace(in.Subject),
		Message: strings.TrimSpace(in.Message),
	}

	if msg.Name == "" || utf8.RuneCountInString(msg.Name) > 100 {
		return Validation("name is required (max 100 characters)")
	}
	if _, err := mail.ParseAddress(msg.Email); err != nil {
		return Validation("invalid email format")
	}
	if msg.Subject == "" || utf8.RuneCountInString(msg.Subject) > 200 {
		return Validation("subject is required (max 200 characters)")
	}
	if n := utf8.RuneCountInString(msg.Message); n < 10 || n > 5000 {
		return Validation("message must be between 10 and 5000 characters")
	}

	if err := u.notifier.ContactMessage(ctx, msg); err != nil {
		metrics.NotificationsTotal.WithLabelValues(string(NotifyContactMessage), metrics.OutcomeFailed).Inc()
		u.logger.Error("contact message failed", zap.String("from", msg.Email), zap.Error(err))
		return Internal("failed to send message", err)
	}
	metrics.NotificationsTotal.WithLabelValues(string(NotifyContactMessage), metrics.OutcomeSent).Inc()
	return nil
}
