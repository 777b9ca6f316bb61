package repository

import (
	"context"

	"charforge/internal/domain/model"
	repo "charforge/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CommentGormRepository struct {
	db *gorm.DB
}

// DI
func NewCommentGormRepository(db *gorm.DB) *CommentGormRepository {
	return &CommentGormRepository{db: db}
}

func (r *CommentGormRepository) FindByID(ctx context.Context, id int64) (model.Comment, error) {
	var c model.Comment
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return model.Comment{}, mapGormError(err)
	}
	return c, nil
}

func (r *CommentGormRepository) FindByIDForUpdate(ctx context.Context, id int64) (model.Comment, error) {
	var c model.Comment
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&c, id).Error
	if err != nil {
		return model.Comment{}, mapGormError(err)
	}
	return c, nil
}

func (r *CommentGormRepository) ExistsByCharacterAndAuthor(ctx context.Context, characterID, authorID int64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Comment{}).
		Where("character_id = ? AND author_id = ?", characterID, authorID).
		Count(&n).Error
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *CommentGormRepository) Create(ctx context.Context, c model.Comment) (model.Comment, error) {
	if err := r.db.WithContext(ctx).Create(&c).Error; err != nil {
		return model.Comment{}, mapGormError(err)
	}
	return c, nil
}

// 審査結果（状態・理由・審査者・日時）を書く
func (r *CommentGormRepository) Update(ctx context.Context, c model.Comment) error {
	res := r.db.WithContext(ctx).Model(&model.Comment{}).Where("id = ?", c.ID).Updates(map[string]interface{}{
		"rating":           c.Rating,
		"text":             c.Text,
		"status":           c.Status,
		"rejection_reason": c.RejectionReason,
		"reviewed_by_id":   c.ReviewedByID,
		"reviewed_at":      c.ReviewedAt,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *CommentGormRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&model.Comment{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 古い順
func (r *CommentGormRepository) ListApprovedByCharacter(ctx context.Context, characterID int64) ([]model.Comment, error) {
	var items []model.Comment
	err := r.db.WithContext(ctx).
		Where("character_id = ? AND status = ?", characterID, model.CommentStatusApproved).
		Order("created_at asc").Order("id asc").
		Find(&items).Error
	if err != nil {
		return []model.Comment{}, err
	}
	return items, nil
}

func (r *CommentGormRepository) ListByAuthor(ctx context.Context, authorID int64) ([]model.Comment, error) {
	var items []model.Comment
	err := r.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("created_at desc").Order("id desc").
		Find(&items).Error
	if err != nil {
		return []model.Comment{}, err
	}
	return items, nil
}

// 審査待ちは古い順（先に投稿されたものから審査する）
func (r *CommentGormRepository) ListPending(ctx context.Context, page int, limit int) ([]model.Comment, int64, error) {
	var items []model.Comment
	var total int64

	tx := r.db.WithContext(ctx).Model(&model.Comment{}).Where("status = ?", model.CommentStatusPending)
	if err := tx.Count(&total).Error; err != nil {
		return []model.Comment{}, 0, err
	}

	offset := (page - 1) * limit
	if err := tx.Order("created_at asc").Order("id asc").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return []model.Comment{}, 0, err
	}
	return items, total, nil
}
