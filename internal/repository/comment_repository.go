package repository

import (
	"context"

	"charforge/internal/domain/model"
)

type CommentRepository interface {
	FindByID(ctx context.Context, id int64) (model.Comment, error)
	// 行ロック付き。審査の直前にTx内で使う
	FindByIDForUpdate(ctx context.Context, id int64) (model.Comment, error)

	// (character, author) の組でコメントが既にあるか
	ExistsByCharacterAndAuthor(ctx context.Context, characterID, authorID int64) (bool, error)

	Create(ctx context.Context, c model.Comment) (model.Comment, error)
	Update(ctx context.Context, c model.Comment) error
	Delete(ctx context.Context, id int64) error

	// 承認済みコメントを投稿順（古い順）で返す
	ListApprovedByCharacter(ctx context.Context, characterID int64) ([]model.Comment, error)
	ListByAuthor(ctx context.Context, authorID int64) ([]model.Comment, error)
	ListPending(ctx context.Context, page int, limit int) ([]model.Comment, int64, error)
}
