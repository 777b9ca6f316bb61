// Package metrics はモデレーションと通知の結果をPrometheusに公開する。
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "charforge"

var (
	// 通知の送信結果（kind, outcome=sent|failed）
	NotificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "Notification attempts by kind and outcome.",
	}, []string{"kind", "outcome"})

	// 審査の判定（target=character|comment, decision=approved|rejected）
	ModerationDecisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "moderation_decisions_total",
		Help:      "Moderation decisions by target and decision.",
	}, []string{"target", "decision"})

	// アカウント操作（role, action=created|suspended|reactivated|deleted|password_reset）
	AccountActionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "account_actions_total",
		Help:      "Account moderation actions by role and action.",
	}, []string{"role", "action"})

	// Redisキューに積まれた通知の処理結果
	QueueDeliveriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notification_queue_deliveries_total",
		Help:      "Queued notification deliveries by outcome.",
	}, []string{"outcome"})
)

const (
	OutcomeSent   = "sent"
	OutcomeFailed = "failed"
)
