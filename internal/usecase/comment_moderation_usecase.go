package usecase

import (
	"context"
	"errors"

	"charforge/internal/domain/model"
	"charforge/internal/metrics"
	repo "charforge/internal/repository"

	"go.uber.org/zap"
)

// 審査担当者向けのコメント承認・却下
type CommentModerationUsecase struct {
	tx       repo.TransactionManager
	comments repo.CommentRepository
	users    repo.UserRepository
	notifier Notifier
	audit    *ActivityLogUsecase
	clock    Clock
	pager    Pager
	logger   *zap.Logger
}

func NewCommentModerationUsecase(
	tx repo.TransactionManager,
	comments repo.CommentRepository,
	users repo.UserRepository,
	notifier Notifier,
	audit *ActivityLogUsecase,
	clock Clock,
	pager Pager,
	logger *zap.Logger,
) *CommentModerationUsecase {
	return &CommentModerationUsecase{
		tx:       tx,
		comments: comments,
		users:    users,
		notifier: notifier,
		audit:    audit,
		clock:    clock,
		pager:    pager,
		logger:   logger,
	}
}

func (u *CommentModerationUsecase) ListPending(ctx context.Context, actor model.Principal, page int) (Page[model.Comment], error) {
	if err := requireReviewer(actor); err != nil {
		return Page[model.Comment]{}, err
	}
	if err := u.pager.Validate(page); err != nil {
		return Page[model.Comment]{}, err
	}
	items, total, err := u.comments.ListPending(ctx, page, u.pager.PageSize)
	if err != nil {
		u.logger.Error("pending comments list failed", zap.Error(err))
		return Page[model.Comment]{}, Internal("db error", err)
	}
	return Page[model.Comment]{Items: items, Total: total, Page: page, Limit: u.pager.PageSize}, nil
}

func (u *CommentModerationUsecase) Approve(ctx context.Context, actor model.Principal, commentID int64) (model.Comment, error) {
	if err := requireReviewer(actor); err != nil {
		return model.Comment{}, err
	}
	if commentID <= 0 {
		return model.Comment{}, Validation("invalid comment id")
	}

	c, characterName, err := u.decide(ctx, actor, commentID, model.CommentStatusApproved, "")
	if err != nil {
		return model.Comment{}, err
	}
	metrics.ModerationDecisionsTotal.WithLabelValues("comment", "approved").Inc()

	u.notifyAuthor(ctx, c, NotifyCommentApproved, func(ctx context.Context, to Recipient) error {
		return u.notifier.CommentApproved(ctx, to, characterName)
	})
	return c, nil
}

func (u *CommentModerationUsecase) Reject(ctx context.Context, actor model.Principal, commentID int64, reason string) (model.Comment, error) {
	if err := requireReviewer(actor); err != nil {
		return model.Comment{}, err
	}
	if commentID <= 0 {
		return model.Comment{}, Validation("invalid comment id")
	}
	r, err := normalizeReason(reason)
	if err != nil {
		return model.Comment{}, err
	}

	c, characterName, err := u.decide(ctx, actor, commentID, model.CommentStatusRejected, r)
	if err != nil {
		return model.Comment{}, err
	}
	metrics.ModerationDecisionsTotal.WithLabelValues("comment", "rejected").Inc()

	u.notifyAuthor(ctx, c, NotifyCommentRejected, func(ctx context.Context, to Recipient) error {
		return u.notifier.CommentRejected(ctx, to, characterName, r)
	})
	return c, nil
}

// decide は審査待ちコメントを遷移させ、審査者と日時をコメントに記録する。
// 通知用にキャラクター名も返す。
func (u *CommentModerationUsecase) decide(ctx context.Context, actor model.Principal, commentID int64, next model.CommentStatus, reason string) (model.Comment, string, error) {
	var (
		out           model.Comment
		characterName string
	)

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		c, err := r.Comments().FindByIDForUpdate(ctx, commentID)
		if errors.Is(err, repo.ErrNotFound) {
			return NotFound("comment not found")
		}
		if err != nil {
			return Internal("db error", err)
		}
		if !c.Status.CanTransitionTo(next) {
			return Validation("comment is not pending review")
		}

		character, err := r.Characters().FindByID(ctx, c.CharacterID)
		if err != nil && !errors.Is(err, repo.ErrNotFound) {
			return Internal("db error", err)
		}
		characterName = character.Name

		c.MarkReviewed(next, actor.UserID, u.clock.Now())
		c.RejectionReason = reason
		if err := r.Comments().Update(ctx, c); err != nil {
			return Internal("db error", err)
		}

		action := model.ActivityCommentApproved
		details := map[string]any{
			"character_id": c.CharacterID,
			"author_id":    c.AuthorID,
		}
		if next == model.CommentStatusRejected {
			action = model.ActivityCommentRejected
			details["reason"] = reason
		}
		if err := u.audit.Record(ctx, r.ActivityLogs(), actor, action, ActivityTarget{
			Type: model.ActivityTargetComment,
			ID:   c.ID,
			Name: characterName,
		}, details); err != nil {
			return err
		}

		out = c
		return nil
	})
	if err != nil {
		if CodeOf(err) == CodeInternal {
			u.logger.Error("comment moderation failed", zap.Int64("comment_id", commentID), zap.Error(err))
		}
		return model.Comment{}, "", passAppError(err, "db error")
	}
	return out, characterName, nil
}

func (u *CommentModerationUsecase) notifyAuthor(ctx context.Context, c model.Comment, kind NotificationKind, send func(ctx context.Context, to Recipient) error) {
	author, err := u.users.FindByID(ctx, c.AuthorID)
	if err != nil {
		u.logger.Warn("notification skipped: author lookup failed",
			zap.String("notification.kind", string(kind)),
			zap.Int64("author_id", c.AuthorID),
			zap.Error(err),
		)
		return
	}
	to := recipientOf(author.Email, author.Pseudo)
	notifyBestEffort(ctx, u.logger, kind, to, func(ctx context.Context) error {
		return send(ctx, to)
	})
}
