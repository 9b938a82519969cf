package model

import "time"

type AuditAction string

const (
	//在庫フラグ・サイズを更新した操作。
	AuditActionUpdateAvailability AuditAction = "UPDATE_ARTICLE_AVAILABILITY"
	//注文ステータスを更新した操作。
	AuditActionUpdateOrderStatus AuditAction = "UPDATE_ORDER_STATUS"
)

type AuditResourceType string

const (
	AuditResourceArticle AuditResourceType = "article"
	AuditResourceOrder   AuditResourceType = "order"
)

func (t AuditResourceType) Valid() bool {
	return t == AuditResourceArticle || t == AuditResourceOrder
}

// 操作ごとに対象の種類は1つに決まる
func (a AuditAction) ResourceType() (AuditResourceType, bool) {
	switch a {
	case AuditActionUpdateAvailability:
		return AuditResourceArticle, true
	case AuditActionUpdateOrderStatus:
		return AuditResourceOrder, true
	}
	return "", false
}

// 監査ログ（管理者操作ログ）。
// 「誰が」「何を」「どの対象に」「どう変えたか」を残す。
type AuditLog struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	//操作した管理者のID（JWTのsub）。
	ActorUserID int64 `gorm:"not null;index" json:"actor_user_id"`

	Action AuditAction `gorm:"type:varchar(50);not null;index" json:"action"`

	ResourceType AuditResourceType `gorm:"type:varchar(50);not null;index" json:"resource_type"`

	//対象のID（uuid）。
	ResourceID string `gorm:"type:varchar(64);not null;index" json:"resource_id"`

	//JSON文字列で保存する。
	BeforeJSON string `gorm:"type:text" json:"before_json"`
	AfterJSON  string `gorm:"type:text" json:"after_json"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}
