package repository

import (
	"errors"

	repo "charforge/internal/repository"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// 一意制約違反（postgres）
const pgUniqueViolation = "23505"

// gormのエラーをリポジトリの番兵エラーに寄せる。
// 一意制約違反は TranslateError=true なら ErrDuplicatedKey、生SQLやトランザクション内では
// pgconn.PgError のまま来ることがあるのでコードでも見る。
func mapGormError(err error) error {
	var pgErr *pgconn.PgError
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return repo.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return repo.ErrDuplicate
	case errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation:
		return repo.ErrDuplicate
	default:
		return err
	}
}
