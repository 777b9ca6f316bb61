package repository

import (
	"context"
	"time"

	"charforge/internal/domain/model"
)

// 監査ログの絞り込み条件。
type ActivityLogFilter struct {
	ActorUserID *int64
	Action      *model.ActivityAction
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Page        int
	Limit       int
}

// 監査ログは追記のみ。更新・削除のメソッドは持たない。
type ActivityLogRepository interface {
	//監査ログを1件保存
	Create(ctx context.Context, log model.ActivityLog) error

	//監査ログを条件で一覧取得（新しい順）。
	List(ctx context.Context, filter ActivityLogFilter) ([]model.ActivityLog, int64, error)
}
