package repository

import (
	"context"

	"charforge/internal/domain/model"
)

// キャラクター一覧の絞り込み条件。
type CharacterListFilter struct {
	OwnerID  *int64
	Status   *model.CharacterStatus
	IsShared *bool
	Page     int
	Limit    int
}

// キャラクターの永続化の約束。
type CharacterRepository interface {
	FindByID(ctx context.Context, id int64) (model.Character, error)
	// Tx内で行ロック（SELECT ... FOR UPDATE）を取って読む。状態遷移の前に使う。
	FindByIDForUpdate(ctx context.Context, id int64) (model.Character, error)

	// 同じ持ち主の中で名前が使われているか（大文字小文字を区別しない）。
	// excludeID > 0 のときはそのIDを除外する。
	ExistsByOwnerAndName(ctx context.Context, ownerID int64, name string, excludeID int64) (bool, error)

	Create(ctx context.Context, c model.Character) (model.Character, error)
	Update(ctx context.Context, c model.Character) error

	// キャラクターとそのコメントを削除する
	Delete(ctx context.Context, id int64) error

	List(ctx context.Context, f CharacterListFilter) ([]model.Character, int64, error)
}

// 職業（クラス）の参照データ
type CharacterClassRepository interface {
	Exists(ctx context.Context, id int64) (bool, error)
	List(ctx context.Context) ([]model.CharacterClass, error)
}
