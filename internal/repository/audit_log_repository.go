package repository

import (
	"context"
	"errors"

	"juneberry/internal/domain/model"
)

// 操作と対象の組み合わせが正しくない監査ログ
var ErrInvalidAuditLog = errors.New("invalid audit log")

// 監査ログの絞り込み条件（商品・注文の変更履歴）。
type AuditLogFilter struct {
	Action       *model.AuditAction
	ResourceType *model.AuditResourceType
	ResourceID   *string
	Limit        int
	Offset       int
}

type AuditLogRepository interface {
	Create(ctx context.Context, log model.AuditLog) error

	//新しい順
	List(ctx context.Context, filter AuditLogFilter) ([]model.AuditLog, error)
}
