package usecase

import (
	"context"
	"errors"

	"charforge/internal/domain/model"
	"charforge/internal/metrics"
	repo "charforge/internal/repository"

	"go.uber.org/zap"
)

// 審査担当者向けのキャラクター承認・却下
type ModerationUsecase struct {
	tx         repo.TransactionManager
	characters repo.CharacterRepository
	users      repo.UserRepository
	notifier   Notifier
	audit      *ActivityLogUsecase
	pager      Pager
	logger     *zap.Logger
}

func NewModerationUsecase(
	tx repo.TransactionManager,
	characters repo.CharacterRepository,
	users repo.UserRepository,
	notifier Notifier,
	audit *ActivityLogUsecase,
	pager Pager,
	logger *zap.Logger,
) *ModerationUsecase {
	return &ModerationUsecase{
		tx:         tx,
		characters: characters,
		users:      users,
		notifier:   notifier,
		audit:      audit,
		pager:      pager,
		logger:     logger,
	}
}

// 審査待ち一覧。ページ番号が範囲外ならDBに触らずに弾く。
func (u *ModerationUsecase) ListPending(ctx context.Context, actor model.Principal, page int) (Page[model.Character], error) {
	if err := requireReviewer(actor); err != nil {
		return Page[model.Character]{}, err
	}
	if err := u.pager.Validate(page); err != nil {
		return Page[model.Character]{}, err
	}

	status := model.CharacterStatusPending
	items, total, err := u.characters.List(ctx, repo.CharacterListFilter{
		Status: &status,
		Page:   page,
		Limit:  u.pager.PageSize,
	})
	if err != nil {
		u.logger.Error("pending characters list failed", zap.Error(err))
		return Page[model.Character]{}, Internal("db error", err)
	}
	return Page[model.Character]{Items: items, Total: total, Page: page, Limit: u.pager.PageSize}, nil
}

func (u *ModerationUsecase) Approve(ctx context.Context, actor model.Principal, characterID int64) (model.Character, error) {
	if err := requireReviewer(actor); err != nil {
		return model.Character{}, err
	}
	if characterID <= 0 {
		return model.Character{}, Validation("invalid character id")
	}

	c, err := u.decide(ctx, actor, characterID, model.CharacterStatusApproved, "")
	if err != nil {
		return model.Character{}, err
	}
	metrics.ModerationDecisionsTotal.WithLabelValues("character", "approved").Inc()

	u.notifyOwner(ctx, c, NotifyCharacterApproved, func(ctx context.Context, to Recipient) error {
		return u.notifier.CharacterApproved(ctx, to, c.Name)
	})
	return c, nil
}

func (u *ModerationUsecase) Reject(ctx context.Context, actor model.Principal, characterID int64, reason string) (model.Character, error) {
	if err := requireReviewer(actor); err != nil {
		return model.Character{}, err
	}
	if characterID <= 0 {
		return model.Character{}, Validation("invalid character id")
	}
	r, err := normalizeReason(reason)
	if err != nil {
		return model.Character{}, err
	}

	c, err := u.decide(ctx, actor, characterID, model.CharacterStatusRejected, r)
	if err != nil {
		return model.Character{}, err
	}
	metrics.ModerationDecisionsTotal.WithLabelValues("character", "rejected").Inc()

	u.notifyOwner(ctx, c, NotifyCharacterRejected, func(ctx context.Context, to Recipient) error {
		return u.notifier.CharacterRejected(ctx, to, c.Name, r)
	})
	return c, nil
}

// decide は審査待ちのキャラクターを next に遷移させ、監査ログと一緒に保存する。
// 審査待ち以外は（2回目の承認も含め）VALIDATION。
// 行ロックを取ってから状態を見るので、同時に審査した側は確定後の状態を読んで弾かれる。
func (u *ModerationUsecase) decide(ctx context.Context, actor model.Principal, characterID int64, next model.CharacterStatus, reason string) (model.Character, error) {
	var out model.Character

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		c, err := r.Characters().FindByIDForUpdate(ctx, characterID)
		if errors.Is(err, repo.ErrNotFound) {
			return NotFound("character not found")
		}
		if err != nil {
			return Internal("db error", err)
		}

		if c.Status != model.CharacterStatusPending || !c.Status.CanTransitionTo(next) {
			return Validation("character is not pending review")
		}

		c.Status = next
		c.RejectionReason = reason
		c.IsShared = false
		if err := r.Characters().Update(ctx, c); err != nil {
			return Internal("db error", err)
		}

		action := model.ActivityCharacterApproved
		details := map[string]any{"owner_id": c.OwnerID}
		if next == model.CharacterStatusRejected {
			action = model.ActivityCharacterRejected
			details["reason"] = reason
		}
		if err := u.audit.Record(ctx, r.ActivityLogs(), actor, action, ActivityTarget{
			Type: model.ActivityTargetCharacter,
			ID:   c.ID,
			Name: c.Name,
		}, details); err != nil {
			return err
		}

		out = c
		return nil
	})
	if err != nil {
		if CodeOf(err) == CodeInternal {
			u.logger.Error("character moderation failed", zap.Int64("character_id", characterID), zap.Error(err))
		}
		return model.Character{}, passAppError(err, "db error")
	}
	return out, nil
}

// 持ち主へ通知（ベストエフォート）。持ち主が引けなくても操作は成功のまま。
func (u *ModerationUsecase) notifyOwner(ctx context.Context, c model.Character, kind NotificationKind, send func(ctx context.Context, to Recipient) error) {
	owner, err := u.users.FindByID(ctx, c.OwnerID)
	if err != nil {
		u.logger.Warn("notification skipped: owner lookup failed",
			zap.String("notification.kind", string(kind)),
			zap.Int64("owner_id", c.OwnerID),
			zap.Error(err),
		)
		return
	}
	to := recipientOf(owner.Email, owner.Pseudo)
	notifyBestEffort(ctx, u.logger, kind, to, func(ctx context.Context) error {
		return send(ctx, to)
	})
}
