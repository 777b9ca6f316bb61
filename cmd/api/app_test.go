package main

import (
	"context"
	"errors"
	"testing"

	"charforge/internal/config"
	"charforge/internal/infra/notification"
	"charforge/internal/usecase"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testQueue = "charforge:notifications"

type failingMailer struct {
	calls int
}

func (m *failingMailer) Send(context.Context, notification.Mail) error {
	m.calls++
	return errors.New("smtp: 554 transaction failed")
}

func redisApp(t *testing.T, mailer notification.Mailer) (*app, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	a := &app{
		cfg: config.Config{
			Notification: config.NotificationConfig{Mode: config.NotificationModeRedis},
			Redis:        config.RedisConfig{Addr: mr.Addr(), Channel: testQueue},
			App:          config.AppConfig{BaseURL: "https://charforge.example"},
			Contact:      config.ContactConfig{Inbox: "support@charforge.example"},
		},
		logger: zap.NewNop(),
		mailer: mailer,
	}
	t.Cleanup(func() {
		if a.redis != nil {
			_ = a.redis.Close()
		}
	})
	return a, mr
}

// redisモードでも問い合わせはキューに積まず同期で送るので、配送失敗は500になる
func TestBuildNotifiers_RedisMode_ContactDeliveryFailureIsInternal(t *testing.T) {
	mailer := &failingMailer{}
	a, mr := redisApp(t, mailer)
	ctx := context.Background()

	ns, err := a.buildNotifiers(ctx)
	require.NoError(t, err)

	contact := usecase.NewContactUsecase(ns.contact, zap.NewNop())
	err = contact.Send(ctx, usecase.ContactMessage{
		Name:    "Aria",
		Email:   "aria@example.com",
		Subject: "Broken gallery",
		Message: "The gallery page shows nothing since this morning.",
	})
	assert.Equal(t, usecase.CodeInternal, usecase.CodeOf(err))
	assert.Equal(t, 1, mailer.calls)
	assert.False(t, mr.Exists(testQueue))
}

// それ以外の通知はキューに積むだけでSMTPには触らない
func TestBuildNotifiers_RedisMode_GeneralNotificationsAreQueued(t *testing.T) {
	mailer := &failingMailer{}
	a, mr := redisApp(t, mailer)
	ctx := context.Background()

	ns, err := a.buildNotifiers(ctx)
	require.NoError(t, err)
	assert.IsType(t, &notification.RedisQueue{}, ns.general)

	err = ns.general.CharacterApproved(ctx, usecase.Recipient{Email: "aria@example.com", Name: "aria"}, "Lyra")
	require.NoError(t, err)

	items, err := mr.List(testQueue)
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Zero(t, mailer.calls)
}

func TestBuildNotifiers_LogMode_SharesGateway(t *testing.T) {
	a := &app{
		cfg:    config.Config{Notification: config.NotificationConfig{Mode: config.NotificationModeLog}},
		logger: zap.NewNop(),
	}

	ns, err := a.buildNotifiers(context.Background())
	require.NoError(t, err)
	assert.Same(t, ns.general, ns.contact)
}
