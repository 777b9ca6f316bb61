package repository

import (
	"context"

	repo "charforge/internal/repository"

	"gorm.io/gorm"
)

type txReposGorm struct {
	characters   repo.CharacterRepository
	comments     repo.CommentRepository
	users        repo.UserRepository
	activityLogs repo.ActivityLogRepository
}

func (r *txReposGorm) Characters() repo.CharacterRepository     { return r.characters }
func (r *txReposGorm) Comments() repo.CommentRepository         { return r.comments }
func (r *txReposGorm) Users() repo.UserRepository               { return r.users }
func (r *txReposGorm) ActivityLogs() repo.ActivityLogRepository { return r.activityLogs }

type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(db *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: db}
}

func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		//repoはtxを持ったDBで作り直す
		r := &txReposGorm{
			characters:   NewCharacterGormRepository(tx),
			comments:     NewCommentGormRepository(tx),
			users:        NewUserGormRepository(tx),
			activityLogs: NewActivityLogGormRepository(tx),
		}
		return fn(r)
	})
}
