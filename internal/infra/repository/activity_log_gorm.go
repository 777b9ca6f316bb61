package repository

import (
	"context"

	"charforge/internal/domain/model"
	repo "charforge/internal/repository"

	"gorm.io/gorm"
)

type activityLogGormRepository struct {
	db *gorm.DB
}

func NewActivityLogGormRepository(db *gorm.DB) repo.ActivityLogRepository {
	return &activityLogGormRepository{db: db}
}

func (r *activityLogGormRepository) Create(ctx context.Context, log model.ActivityLog) error {
	if err := r.db.WithContext(ctx).Create(&log).Error; err != nil {
		return err
	}
	return nil
}

func (r *activityLogGormRepository) List(ctx context.Context, filter repo.ActivityLogFilter) ([]model.ActivityLog, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.ActivityLog{})

	if filter.ActorUserID != nil {
		q = q.Where("actor_user_id = ?", *filter.ActorUserID)
	}
	if filter.Action != nil {
		q = q.Where("action = ?", *filter.Action)
	}
	if filter.CreatedFrom != nil {
		q = q.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		q = q.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	//新しい順
	offset := (filter.Page - 1) * filter.Limit
	var logs []model.ActivityLog
	if err := q.Order("created_at DESC").Order("id DESC").
		Limit(filter.Limit).Offset(offset).
		Find(&logs).Error; err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}
