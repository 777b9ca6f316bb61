package usecase

import (
	"context"
	"time"

	"charforge/internal/domain/model"
	repo "charforge/internal/repository"

	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// 監査ログの対象
type ActivityTarget struct {
	Type model.ActivityTargetType
	ID   int64
	Name string
}

type ActivityLogUsecase struct {
	logs   repo.ActivityLogRepository
	clock  Clock
	pager  Pager
	logger *zap.Logger
}

func NewActivityLogUsecase(logs repo.ActivityLogRepository, clock Clock, pager Pager, logger *zap.Logger) *ActivityLogUsecase {
	return &ActivityLogUsecase{logs: logs, clock: clock, pager: pager, logger: logger}
}

// Record は監査ログを1件書く。操作者のid/pseudoは呼び出し時点のPrincipalから取る。
// 書き込み先はtx内のリポジトリ（状態変更と同じTx）。
func (u *ActivityLogUsecase) Record(
	ctx context.Context,
	logs repo.ActivityLogRepository,
	actor model.Principal,
	action model.ActivityAction,
	target ActivityTarget,
	details map[string]any,
) error {
	entry := model.ActivityLog{
		ActorUserID: actor.UserID,
		ActorPseudo: actor.Pseudo,
		Action:      action,
		TargetType:  target.Type,
		TargetID:    target.ID,
		TargetName:  target.Name,
		CreatedAt:   u.clock.Now(),
	}
	if len(details) > 0 {
		entry.Details = datatypes.JSONMap(details)
	}

	if err := logs.Create(ctx, entry); err != nil {
		u.logger.Error("activity log write failed",
			zap.String("action", string(action)),
			zap.Int64("actor_id", actor.UserID),
			zap.Int64("target_id", target.ID),
			zap.Error(err),
		)
		return Internal("activity log write failed", err)
	}
	return nil
}

type ListActivityLogsInput struct {
	Action      string
	ActorUserID *int64
	From        *time.Time
	To          *time.Time
	Page        int
}

func (u *ActivityLogUsecase) List(ctx context.Context, actor model.Principal, in ListActivityLogsInput) (Page[model.ActivityLog], error) {
	if err := requireReviewer(actor); err != nil {
		return Page[model.ActivityLog]{}, err
	}
	if err := u.pager.Validate(in.Page); err != nil {
		return Page[model.ActivityLog]{}, err
	}

	f := repo.ActivityLogFilter{
		ActorUserID: in.ActorUserID,
		CreatedFrom: in.From,
		CreatedTo:   in.To,
		Page:        in.Page,
		Limit:       u.pager.PageSize,
	}
	if in.Action != "" {
		action := model.ActivityAction(in.Action)
		if !action.Valid() {
			return Page[model.ActivityLog]{}, Validation("invalid action")
		}
		f.Action = &action
	}
	if in.ActorUserID != nil && *in.ActorUserID <= 0 {
		return Page[model.ActivityLog]{}, Validation("invalid actor id")
	}
	if in.From != nil && in.To != nil && in.From.After(*in.To) {
		return Page[model.ActivityLog]{}, Validation("from must be before to")
	}

	items, total, err := u.logs.List(ctx, f)
	if err != nil {
		u.logger.Error("activity log list failed", zap.Error(err))
		return Page[model.ActivityLog]{}, Internal("db error", err)
	}
	return Page[model.ActivityLog]{Items: items, Total: total, Page: in.Page, Limit: u.pager.PageSize}, nil
}
