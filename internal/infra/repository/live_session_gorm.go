package repository

import (
	"context"

	"juneberry/internal/domain/model"

	"gorm.io/gorm"
)

type LiveSessionGormRepository struct {
	db *gorm.DB
}

func NewLiveSessionGormRepository(db *gorm.DB) *LiveSessionGormRepository {
	return &LiveSessionGormRepository{db: db}
}

// 公開中のライブ配信（新しい順）
func (r *LiveSessionGormRepository) ListActive(ctx context.Context) ([]model.LiveSession, error) {
	var sessions []model.LiveSession
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("starts_at desc").
		Find(&sessions).Error
	if err != nil {
		return []model.LiveSession{}, err
	}
	return sessions, nil
}
