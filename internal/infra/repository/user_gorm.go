package repository

import (
	"context"
	"strings"

	"charforge/internal/domain/model"
	domainrepo "charforge/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type userGormRepository struct {
	db *gorm.DB
}

// DI
// main.goでこれをnewしてusecaseに注入します。
func NewUserGormRepository(db *gorm.DB) domainrepo.UserRepository {
	return &userGormRepository{db: db}
}

// Create はユーザーを新規作成
func (r *userGormRepository) Create(ctx context.Context, user *model.User) error {
	return mapGormError(r.db.WithContext(ctx).Create(user).Error)
}

// emailでユーザーを1件取得（見つからなければErrNotFound）
func (r *userGormRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, "email = ?", email)
}

// IDでユーザーを1件取得
func (r *userGormRepository) FindByID(ctx context.Context, id int64) (*model.User, error) {
	return r.findOne(ctx, "id = ?", id)
}

// 行ロック付きで1件取得（Tx内で使う）
func (r *userGormRepository) FindByIDForUpdate(ctx context.Context, id int64) (*model.User, error) {
	var u model.User
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&u).Error
	if err != nil {
		return nil, mapGormError(err)
	}
	return &u, nil
}

func (r *userGormRepository) FindByResetTokenHash(ctx context.Context, tokenHash string) (*model.User, error) {
	return r.findOne(ctx, "reset_token_hash = ?", tokenHash)
}

func (r *userGormRepository) findOne(ctx context.Context, query string, arg interface{}) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).Where(query, arg).First(&u).Error; err != nil {
		return nil, mapGormError(err)
	}
	return &u, nil
}

func (r *userGormRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, "email = ?", email)
}

func (r *userGormRepository) ExistsByPseudo(ctx context.Context, pseudo string) (bool, error) {
	return r.exists(ctx, "LOWER(pseudo) = ?", strings.ToLower(pseudo))
}

func (r *userGormRepository) exists(ctx context.Context, query string, arg interface{}) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.User{}).Where(query, arg).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// ユーザーを更新。
func (r *userGormRepository) Update(ctx context.Context, user *model.User) error {
	return mapGormError(r.db.WithContext(ctx).Save(user).Error)
}

// ユーザーと、その人のコメント・キャラクター（についたコメントも）を削除する
func (r *userGormRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		owned := tx.Model(&model.Character{}).Select("id").Where("owner_id = ?", id)

		if err := tx.Where("user_id = ?", id).Delete(&model.RefreshToken{}).Error; err != nil {
			return err
		}

		if err := tx.Where("author_id = ? OR character_id IN (?)", id, owned).Delete(&model.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("owner_id = ?", id).Delete(&model.Character{}).Error; err != nil {
			return err
		}

		res := tx.Delete(&model.User{}, id)
		if res.Error != nil {
			return res.Error
		}
		// 0件削除は「対象がない」
		if res.RowsAffected == 0 {
			return domainrepo.ErrNotFound
		}
		return nil
	})
}

// pseudo/email の部分一致、新しい順
func (r *userGormRepository) List(ctx context.Context, f domainrepo.UserListFilter) ([]model.User, int64, error) {
	var users []model.User
	var total int64

	tx := r.db.WithContext(ctx).Model(&model.User{})
	if f.Role != nil {
		tx = tx.Where("role = ?", *f.Role)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + s + "%"
		tx = tx.Where("pseudo ILIKE ? OR email ILIKE ?", like, like)
	}

	if err := tx.Count(&total).Error; err != nil {
		return []model.User{}, 0, err
	}

	offset := (f.Page - 1) * f.Limit
	if err := tx.Order("created_at desc").Order("id desc").Offset(offset).Limit(f.Limit).Find(&users).Error; err != nil {
		return []model.User{}, 0, err
	}
	return users, total, nil
}
