package usecase

import (
	"context"
	"errors"

	"charforge/internal/domain/model"
	"charforge/internal/metrics"
	repo "charforge/internal/repository"

	"go.uber.org/zap"
)

// 本人のアカウント操作と、審査担当者による一時パスワード発行
type AccountUsecase struct {
	tx       repo.TransactionManager
	users    repo.UserRepository
	hasher   PasswordHasher
	verifier PasswordVerifier
	secrets  SecretGenerator
	notifier Notifier
	audit    *ActivityLogUsecase
	logger   *zap.Logger
}

func NewAccountUsecase(
	tx repo.TransactionManager,
	users repo.UserRepository,
	hasher PasswordHasher,
	verifier PasswordVerifier,
	secrets SecretGenerator,
	notifier Notifier,
	audit *ActivityLogUsecase,
	logger *zap.Logger,
) *AccountUsecase {
	return &AccountUsecase{
		tx:       tx,
		users:    users,
		hasher:   hasher,
		verifier: verifier,
		secrets:  secrets,
		notifier: notifier,
		audit:    audit,
		logger:   logger,
	}
}

// DeleteOwnAccount は一般ユーザーが自分のアカウントを消す。
// 従業員・管理者は自分では消せない。監査ログの操作者は削除される本人。
func (u *AccountUsecase) DeleteOwnAccount(ctx context.Context, actor model.Principal, currentPassword string) error {
	if err := requireAuthenticated(actor); err != nil {
		return err
	}
	if actor.Role != model.RoleUser {
		return Forbidden("staff accounts cannot delete themselves")
	}

	user, err := u.users.FindByID(ctx, actor.UserID)
	if errors.Is(err, repo.ErrNotFound) {
		return NotFound("account not found")
	}
	if err != nil {
		u.logger.Error("account lookup failed", zap.Int64("user_id", actor.UserID), zap.Error(err))
		return Internal("db error", err)
	}
	if !u.verifier.Verify(currentPassword, user.PasswordHash) {
		return Unauthenticated("invalid password")
	}

	// 削除後は引けないので先に控える
	self := model.Principal{UserID: user.ID, Pseudo: user.Pseudo, Role: user.Role}
	target := userTarget(user)
	to := recipientOf(user.Email, user.Pseudo)

	notifyBestEffort(ctx, u.logger, NotifyAccountDeleted, to, func(ctx context.Context) error {
		return u.notifier.AccountDeleted(ctx, to)
	})

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := u.audit.Record(ctx, r.ActivityLogs(), self, model.ActivityUserDeleted, target, map[string]any{
			"self": true,
		}); err != nil {
			return err
		}
		if err := r.Users().Delete(ctx, user.ID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return NotFound("account not found")
			}
			return Internal("db error", err)
		}
		return nil
	})
	if err != nil {
		if CodeOf(err) == CodeInternal {
			u.logger.Error("self delete failed", zap.Int64("user_id", user.ID), zap.Error(err))
		}
		return passAppError(err, "db error")
	}
	metrics.AccountActionsTotal.WithLabelValues(string(model.RoleUser), "deleted").Inc()
	return nil
}

// ResetPassword は一般ユーザーに一時パスワードを発行する。
// 次回ログイン時に変更が必要になり、発行済みトークンは無効になる。
func (u *AccountUsecase) ResetPassword(ctx context.Context, actor model.Principal, userID int64) error {
	if err := requireReviewer(actor); err != nil {
		return err
	}
	if userID <= 0 {
		return Validation("invalid user id")
	}
	if userID == actor.UserID {
		return Forbidden("cannot target your own account")
	}

	temporary := u.secrets.NewSecret()
	if len(temporary) > 12 {
		temporary = temporary[:12]
	}
	hashed, err := u.hasher.Hash(temporary)
	if err != nil {
		u.logger.Error("password hash failed", zap.Error(err))
		return Internal("password hash failed", err)
	}

	var target model.User
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		user, err := r.Users().FindByID(ctx, userID)
		if errors.Is(err, repo.ErrNotFound) {
			return NotFound("account not found")
		}
		if err != nil {
			return Internal("db error", err)
		}
		if user.Role != model.RoleUser {
			return Forbidden("account role not managed here")
		}

		user.PasswordHash = hashed
		user.MustChangePassword = true
		user.TokenVersion++
		if err := r.Users().Update(ctx, user); err != nil {
			return Internal("db error", err)
		}
		if err := u.audit.Record(ctx, r.ActivityLogs(), actor, model.ActivityUserPasswordReset, userTarget(user), nil); err != nil {
			return err
		}
		target = *user
		return nil
	})
	if err != nil {
		if CodeOf(err) == CodeInternal {
			u.logger.Error("password reset failed", zap.Int64("user_id", userID), zap.Error(err))
		}
		return passAppError(err, "db error")
	}
	metrics.AccountActionsTotal.WithLabelValues(string(model.RoleUser), "password_reset").Inc()

	to := recipientOf(target.Email, target.Pseudo)
	notifyBestEffort(ctx, u.logger, NotifyTemporaryPassword, to, func(ctx context.Context) error {
		return u.notifier.TemporaryPassword(ctx, to, temporary)
	})
	return nil
}
