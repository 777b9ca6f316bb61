package repository

import (
	"context"

	"charforge/internal/domain/model"
)

// アカウント一覧の絞り込み条件
type UserListFilter struct {
	Role   *model.Role
	Search string // pseudo / email の部分一致
	Page   int
	Limit  int
}

// 保存・取得を約束
type UserRepository interface {
	//新規ユーザー作成
	Create(ctx context.Context, user *model.User) error
	// IDからユーザーを1件取得する。
	FindByID(ctx context.Context, userID int64) (*model.User, error)
	// 停止・再開の前にTx内で行ロックを取って読む
	FindByIDForUpdate(ctx context.Context, userID int64) (*model.User, error)
	//メール（正規化済み）からユーザーを一件取得する。
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByResetTokenHash(ctx context.Context, tokenHash string) (*model.User, error)

	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByPseudo(ctx context.Context, pseudo string) (bool, error)

	// ユーザー情報の更新=>停止・パスワード・最後のログインなど
	Update(ctx context.Context, user *model.User) error

	// ユーザーと所有するキャラクター・コメントを削除する
	Delete(ctx context.Context, userID int64) error

	List(ctx context.Context, f UserListFilter) ([]model.User, int64, error)
}
