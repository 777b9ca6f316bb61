package repository

import (
	"context"
	"strings"

	"charforge/internal/domain/model"
	repo "charforge/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CharacterGormRepository struct {
	db *gorm.DB
}

// DI
func NewCharacterGormRepository(db *gorm.DB) *CharacterGormRepository {
	return &CharacterGormRepository{db: db}
}

func (r *CharacterGormRepository) FindByID(ctx context.Context, id int64) (model.Character, error) {
	var c model.Character
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return model.Character{}, mapGormError(err)
	}
	return c, nil
}

// 同じ行を審査しようとする別のTxは、こちらのcommitまで待たされる
func (r *CharacterGormRepository) FindByIDForUpdate(ctx context.Context, id int64) (model.Character, error) {
	var c model.Character
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&c, id).Error
	if err != nil {
		return model.Character{}, mapGormError(err)
	}
	return c, nil
}

// 名前の重複は大文字小文字を区別しない
func (r *CharacterGormRepository) ExistsByOwnerAndName(ctx context.Context, ownerID int64, name string, excludeID int64) (bool, error) {
	q := r.db.WithContext(ctx).Model(&model.Character{}).
		Where("owner_id = ?", ownerID).
		Where("LOWER(name) = ?", strings.ToLower(name))
	if excludeID > 0 {
		q = q.Where("id <> ?", excludeID)
	}

	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *CharacterGormRepository) Create(ctx context.Context, c model.Character) (model.Character, error) {
	if err := r.db.WithContext(ctx).Create(&c).Error; err != nil {
		return model.Character{}, mapGormError(err)
	}
	return c, nil
}

// Select("*") でゼロ値（is_shared=false、空の却下理由）も書き込む
func (r *CharacterGormRepository) Update(ctx context.Context, c model.Character) error {
	res := r.db.WithContext(ctx).Model(&model.Character{}).
		Where("id = ?", c.ID).
		Select("*").Omit("id", "owner_id", "created_at").
		Updates(&c)
	if res.Error != nil {
		return mapGormError(res.Error)
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// コメントと一緒に削除する
func (r *CharacterGormRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("character_id = ?", id).Delete(&model.Comment{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Character{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return repo.ErrNotFound
		}
		return nil
	})
}

// 新しい順 + 件数
func (r *CharacterGormRepository) List(ctx context.Context, f repo.CharacterListFilter) ([]model.Character, int64, error) {
	var items []model.Character
	var total int64

	tx := r.db.WithContext(ctx).Model(&model.Character{})
	if f.OwnerID != nil {
		tx = tx.Where("owner_id = ?", *f.OwnerID)
	}
	if f.Status != nil {
		tx = tx.Where("status = ?", *f.Status)
	}
	if f.IsShared != nil {
		tx = tx.Where("is_shared = ?", *f.IsShared)
	}

	if err := tx.Count(&total).Error; err != nil {
		return []model.Character{}, 0, err
	}

	offset := (f.Page - 1) * f.Limit
	if err := tx.Order("created_at desc").Order("id desc").
		Offset(offset).Limit(f.Limit).Find(&items).Error; err != nil {
		return []model.Character{}, 0, err
	}
	return items, total, nil
}

type CharacterClassGormRepository struct {
	db *gorm.DB
}

func NewCharacterClassGormRepository(db *gorm.DB) *CharacterClassGormRepository {
	return &CharacterClassGormRepository{db: db}
}

func (r *CharacterClassGormRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.CharacterClass{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *CharacterClassGormRepository) List(ctx context.Context) ([]model.CharacterClass, error) {
	var items []model.CharacterClass
	if err := r.db.WithContext(ctx).Order("id asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
