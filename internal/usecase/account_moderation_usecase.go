package usecase

import (
	"context"
	"errors"
	"strings"

	"charforge/internal/domain/model"
	"charforge/internal/metrics"
	repo "charforge/internal/repository"

	"go.uber.org/zap"
)

// accountActions はロールごとの監査アクション
type accountActions struct {
	suspended   model.ActivityAction
	reactivated model.ActivityAction
	deleted     model.ActivityAction
}

// AccountModerationUsecase は1つのロール（USER または EMPLOYEE）のアカウントだけを扱う。
// NewUserModeration / NewEmployeeManagement で作る。
type AccountModerationUsecase struct {
	role      model.Role
	authorize func(model.Principal) error
	actions   accountActions

	tx       repo.TransactionManager
	users    repo.UserRepository
	notifier Notifier
	audit    *ActivityLogUsecase
	pager    Pager
	logger   *zap.Logger
}

// 審査担当者（EMPLOYEE/ADMIN）が一般ユーザーを停止・再開・削除する
func NewUserModeration(
	tx repo.TransactionManager,
	users repo.UserRepository,
	notifier Notifier,
	audit *ActivityLogUsecase,
	pager Pager,
	logger *zap.Logger,
) *AccountModerationUsecase {
	return &AccountModerationUsecase{
		role:      model.RoleUser,
		authorize: requireReviewer,
		actions: accountActions{
			suspended:   model.ActivityUserSuspended,
			reactivated: model.ActivityUserReactivated,
			deleted:     model.ActivityUserDeleted,
		},
		tx:       tx,
		users:    users,
		notifier: notifier,
		audit:    audit,
		pager:    pager,
		logger:   logger,
	}
}

// 管理者が従業員アカウントを停止・再開・削除する
func NewEmployeeManagement(
	tx repo.TransactionManager,
	users repo.UserRepository,
	notifier Notifier,
	audit *ActivityLogUsecase,
	pager Pager,
	logger *zap.Logger,
) *AccountModerationUsecase {
	return &AccountModerationUsecase{
		role:      model.RoleEmployee,
		authorize: requireAdmin,
		actions: accountActions{
			suspended:   model.ActivityEmployeeSuspended,
			reactivated: model.ActivityEmployeeReactivated,
			deleted:     model.ActivityEmployeeDeleted,
		},
		tx:       tx,
		users:    users,
		notifier: notifier,
		audit:    audit,
		pager:    pager,
		logger:   logger,
	}
}

func (u *AccountModerationUsecase) List(ctx context.Context, actor model.Principal, page int, search string) (Page[model.User], error) {
	if err := u.authorize(actor); err != nil {
		return Page[model.User]{}, err
	}
	if err := u.pager.Validate(page); err != nil {
		return Page[model.User]{}, err
	}
	role := u.role
	items, total, err := u.users.List(ctx, repo.UserListFilter{
		Role:   &role,
		Search: strings.TrimSpace(search),
		Page:   page,
		Limit:  u.pager.PageSize,
	})
	if err != nil {
		u.logger.Error("account list failed", zap.String("role", string(u.role)), zap.Error(err))
		return Page[model.User]{}, Internal("db error", err)
	}
	return Page[model.User]{Items: items, Total: total, Page: page, Limit: u.pager.PageSize}, nil
}

func (u *AccountModerationUsecase) Get(ctx context.Context, actor model.Principal, userID int64) (model.User, error) {
	if err := u.authorize(actor); err != nil {
		return model.User{}, err
	}
	target, err := u.load(ctx, u.users.FindByID, userID)
	if err != nil {
		return model.User{}, err
	}
	return *target, nil
}

// Suspend は対象を停止し、TokenVersionを上げて発行済みトークンを無効にする。
func (u *AccountModerationUsecase) Suspend(ctx context.Context, actor model.Principal, userID int64, reason string) (model.User, error) {
	if err := u.authorize(actor); err != nil {
		return model.User{}, err
	}
	if err := u.checkNotSelf(actor, userID); err != nil {
		return model.User{}, err
	}
	r, err := normalizeReason(reason)
	if err != nil {
		return model.User{}, err
	}

	var out model.User
	err = u.tx.WithinTx(ctx, func(tx repo.TxRepos) error {
		target, err := u.load(ctx, tx.Users().FindByIDForUpdate, userID)
		if err != nil {
			return err
		}
		if target.IsSuspended {
			return Validation("account is already suspended")
		}

		target.IsSuspended = true
		target.SuspensionReason = r
		target.TokenVersion++
		if err := tx.Users().Update(ctx, target); err != nil {
			return Internal("db error", err)
		}

		if err := u.audit.Record(ctx, tx.ActivityLogs(), actor, u.actions.suspended, userTarget(target), map[string]any{
			"reason": r,
		}); err != nil {
			return err
		}
		out = *target
		return nil
	})
	if err != nil {
		return model.User{}, u.txError("account suspend failed", userID, err)
	}
	metrics.AccountActionsTotal.WithLabelValues(string(u.role), "suspended").Inc()

	to := recipientOf(out.Email, out.Pseudo)
	notifyBestEffort(ctx, u.logger, NotifyAccountSuspended, to, func(ctx context.Context) error {
		return u.notifier.AccountSuspended(ctx, to, r)
	})
	return out, nil
}

func (u *AccountModerationUsecase) Reactivate(ctx context.Context, actor model.Principal, userID int64) (model.User, error) {
	if err := u.authorize(actor); err != nil {
		return model.User{}, err
	}
	if err := u.checkNotSelf(actor, userID); err != nil {
		return model.User{}, err
	}

	var out model.User
	err := u.tx.WithinTx(ctx, func(tx repo.TxRepos) error {
		target, err := u.load(ctx, tx.Users().FindByIDForUpdate, userID)
		if err != nil {
			return err
		}
		if !target.IsSuspended {
			return Validation("account is not suspended")
		}

		target.IsSuspended = false
		target.SuspensionReason = ""
		if err := tx.Users().Update(ctx, target); err != nil {
			return Internal("db error", err)
		}

		if err := u.audit.Record(ctx, tx.ActivityLogs(), actor, u.actions.reactivated, userTarget(target), nil); err != nil {
			return err
		}
		out = *target
		return nil
	})
	if err != nil {
		return model.User{}, u.txError("account reactivate failed", userID, err)
	}
	metrics.AccountActionsTotal.WithLabelValues(string(u.role), "reactivated").Inc()

	to := recipientOf(out.Email, out.Pseudo)
	notifyBestEffort(ctx, u.logger, NotifyAccountReactivated, to, func(ctx context.Context) error {
		return u.notifier.AccountReactivated(ctx, to)
	})
	return out, nil
}

// Delete は削除通知を先に送り、その後でアカウントを消す。
// 通知が失敗しても削除は続ける。監査ログの対象名は削除前に取っておく。
func (u *AccountModerationUsecase) Delete(ctx context.Context, actor model.Principal, userID int64) error {
	if err := u.authorize(actor); err != nil {
		return err
	}
	if err := u.checkNotSelf(actor, userID); err != nil {
		return err
	}

	target, err := u.load(ctx, u.users.FindByID, userID)
	if err != nil {
		return err
	}
	captured := userTarget(target)
	email := target.Email

	to := recipientOf(email, target.Pseudo)
	notifyBestEffort(ctx, u.logger, NotifyAccountDeleted, to, func(ctx context.Context) error {
		return u.notifier.AccountDeleted(ctx, to)
	})

	err = u.tx.WithinTx(ctx, func(tx repo.TxRepos) error {
		if err := u.audit.Record(ctx, tx.ActivityLogs(), actor, u.actions.deleted, captured, map[string]any{
			"email": email,
		}); err != nil {
			return err
		}
		if err := tx.Users().Delete(ctx, userID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return NotFound("account not found")
			}
			return Internal("db error", err)
		}
		return nil
	})
	if err != nil {
		return u.txError("account delete failed", userID, err)
	}
	metrics.AccountActionsTotal.WithLabelValues(string(u.role), "deleted").Inc()
	return nil
}

// load は対象を取得し、このサービスが扱うロールか確かめる。
// 停止・再開ではTx内の行ロック付き取得を渡す。
func (u *AccountModerationUsecase) load(ctx context.Context, find func(context.Context, int64) (*model.User, error), userID int64) (*model.User, error) {
	if userID <= 0 {
		return nil, Validation("invalid user id")
	}
	target, err := find(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, NotFound("account not found")
	}
	if err != nil {
		u.logger.Error("account lookup failed", zap.Int64("user_id", userID), zap.Error(err))
		return nil, Internal("db error", err)
	}
	if target.Role != u.role {
		return nil, Forbidden("account role not managed here")
	}
	return target, nil
}

func (u *AccountModerationUsecase) checkNotSelf(actor model.Principal, userID int64) error {
	if actor.UserID == userID {
		return Forbidden("cannot target your own account")
	}
	return nil
}

func (u *AccountModerationUsecase) txError(msg string, userID int64, err error) error {
	if CodeOf(err) == CodeInternal {
		u.logger.Error(msg, zap.Int64("user_id", userID), zap.Error(err))
	}
	return passAppError(err, "db error")
}

func userTarget(user *model.User) ActivityTarget {
	return ActivityTarget{Type: model.ActivityTargetUser, ID: user.ID, Name: user.Pseudo}
}
