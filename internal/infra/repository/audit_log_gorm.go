package repository

import (
	"context"
	"fmt"

	"juneberry/internal/domain/model"
	repo "juneberry/internal/repository"

	"gorm.io/gorm"
)

const (
	defaultAuditLogLimit = 50
	maxAuditLogLimit     = 200
)

type auditLogGormRepository struct {
	db *gorm.DB
}

func NewAuditLogGormRepository(db *gorm.DB) repo.AuditLogRepository {
	return &auditLogGormRepository{db: db}
}

// Create は操作と対象の種類が合っているログだけを保存する。
func (r *auditLogGormRepository) Create(ctx context.Context, log model.AuditLog) error {
	if err := checkAuditLog(log); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(&log).Error
}

func (r *auditLogGormRepository) List(ctx context.Context, f repo.AuditLogFilter) ([]model.AuditLog, error) {
	if f.ResourceType != nil && !f.ResourceType.Valid() {
		return nil, fmt.Errorf("%w: resource type %q", repo.ErrInvalidAuditLog, *f.ResourceType)
	}
	if f.Action != nil {
		rt, ok := f.Action.ResourceType()
		if !ok {
			return nil, fmt.Errorf("%w: action %q", repo.ErrInvalidAuditLog, *f.Action)
		}
		//操作が決まれば対象の種類も決まる
		if f.ResourceType != nil && *f.ResourceType != rt {
			return []model.AuditLog{}, nil
		}
	}

	var logs []model.AuditLog
	err := r.db.WithContext(ctx).
		Scopes(auditAction(f.Action), auditResource(f.ResourceType, f.ResourceID), auditPage(f.Limit, f.Offset)).
		Order("created_at DESC, id DESC").
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}

func checkAuditLog(log model.AuditLog) error {
	rt, ok := log.Action.ResourceType()
	if !ok || rt != log.ResourceType {
		return fmt.Errorf("%w: action %q on %q", repo.ErrInvalidAuditLog, log.Action, log.ResourceType)
	}
	if log.ActorUserID <= 0 || log.ResourceID == "" {
		return fmt.Errorf("%w: actor and resource id required", repo.ErrInvalidAuditLog)
	}
	return nil
}

func auditAction(a *model.AuditAction) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if a == nil {
			return db
		}
		return db.Where("action = ?", *a)
	}
}

// 商品・注文ごとの履歴
func auditResource(rt *model.AuditResourceType, id *string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if rt != nil {
			db = db.Where("resource_type = ?", *rt)
		}
		if id != nil {
			db = db.Where("resource_id = ?", *id)
		}
		return db
	}
}

func auditPage(limit, offset int) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if limit <= 0 || limit > maxAuditLogLimit {
			limit = defaultAuditLogLimit
		}
		return db.Limit(limit).Offset(max(offset, 0))
	}
}
