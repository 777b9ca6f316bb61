package usecase

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"charforge/internal/domain/model"
	repo "charforge/internal/repository"

	"go.uber.org/zap"
)

const (
	MinCommentTextLength = 10
	MaxCommentTextLength = 1000
)

type CreateCommentInput struct {
	Rating int
	Text   string
}

// コメント投稿・閲覧・削除
type CommentUsecase struct {
	comments   repo.CommentRepository
	characters repo.CharacterRepository
	logger     *zap.Logger
}

func NewCommentUsecase(comments repo.CommentRepository, characters repo.CharacterRepository, logger *zap.Logger) *CommentUsecase {
	return &CommentUsecase{comments: comments, characters: characters, logger: logger}
}

// Create は承認済みキャラクターへのコメントを審査待ちで作る。
// 持ち主本人は不可、同じキャラクターへの2件目は CONFLICT。
func (u *CommentUsecase) Create(ctx context.Context, actor model.Principal, characterID int64, in CreateCommentInput) (model.Comment, error) {
	if err := requireAuthenticated(actor); err != nil {
		return model.Comment{}, err
	}
	if characterID <= 0 {
		return model.Comment{}, Validation("invalid character id")
	}
	if in.Rating < model.MinRating || in.Rating > model.MaxRating {
		return model.Comment{}, Validation("rating must be between 1 and 5")
	}
	text := strings.TrimSpace(in.Text)
	if utf8.RuneCountInString(text) < MinCommentTextLength {
		return model.Comment{}, Validation("text must be at least 10 characters")
	}
	if utf8.RuneCountInString(text) > MaxCommentTextLength {
		return model.Comment{}, Validation("text must be at most 1000 characters")
	}

	c, err := u.characters.FindByID(ctx, characterID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Comment{}, NotFound("character not found")
	}
	if err != nil {
		return model.Comment{}, u.dbError("character lookup failed", err)
	}
	if c.OwnerID == actor.UserID {
		return model.Comment{}, Forbidden("cannot comment on your own character")
	}
	if c.Status != model.CharacterStatusApproved {
		return model.Comment{}, Validation("character is not approved")
	}

	exists, err := u.comments.ExistsByCharacterAndAuthor(ctx, characterID, actor.UserID)
	if err != nil {
		return model.Comment{}, u.dbError("comment lookup failed", err)
	}
	if exists {
		return model.Comment{}, Conflict("you already commented on this character")
	}

	created, err := u.comments.Create(ctx, model.Comment{
		Rating:      in.Rating,
		Text:        text,
		Status:      model.CommentStatusPending,
		CharacterID: characterID,
		AuthorID:    actor.UserID,
	})
	if errors.Is(err, repo.ErrDuplicate) {
		return model.Comment{}, Conflict("you already commented on this character")
	}
	if err != nil {
		return model.Comment{}, u.dbError("comment create failed", err)
	}
	return created, nil
}

// 承認済みコメントのみ、投稿順。キャラクター自体が見えない場合はNOT_FOUND。
func (u *CommentUsecase) ListApprovedForCharacter(ctx context.Context, viewer model.Principal, characterID int64) ([]model.Comment, error) {
	if characterID <= 0 {
		return nil, NotFound("character not found")
	}
	c, err := u.characters.FindByID(ctx, characterID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, NotFound("character not found")
	}
	if err != nil {
		return nil, u.dbError("character lookup failed", err)
	}
	if !c.VisibleTo(viewer.UserID) {
		return nil, NotFound("character not found")
	}

	items, err := u.comments.ListApprovedByCharacter(ctx, characterID)
	if err != nil {
		return nil, u.dbError("comment list failed", err)
	}
	return items, nil
}

func (u *CommentUsecase) ListMine(ctx context.Context, actor model.Principal) ([]model.Comment, error) {
	if err := requireAuthenticated(actor); err != nil {
		return nil, err
	}
	items, err := u.comments.ListByAuthor(ctx, actor.UserID)
	if err != nil {
		return nil, u.dbError("comment list failed", err)
	}
	return items, nil
}

// Delete は投稿者本人のみ。状態は問わない。
func (u *CommentUsecase) Delete(ctx context.Context, actor model.Principal, commentID int64) error {
	if err := requireAuthenticated(actor); err != nil {
		return err
	}
	if commentID <= 0 {
		return Validation("invalid comment id")
	}
	c, err := u.comments.FindByID(ctx, commentID)
	if errors.Is(err, repo.ErrNotFound) {
		return NotFound("comment not found")
	}
	if err != nil {
		return u.dbError("comment lookup failed", err)
	}
	if c.AuthorID != actor.UserID {
		return Forbidden("not the author of this comment")
	}
	if err := u.comments.Delete(ctx, commentID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return NotFound("comment not found")
		}
		return u.dbError("comment delete failed", err)
	}
	return nil
}

func (u *CommentUsecase) dbError(msg string, err error) error {
	u.logger.Error(msg, zap.Error(err))
	return Internal("db error", err)
}
