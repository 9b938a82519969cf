package model

import "time"

// 価格は注文時点の値。あとからカタログの価格が変わっても変えない。
type OrderItem struct {
	ID                  int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID             string    `gorm:"type:uuid;not null;index" json:"order_id"`
	ArticleID           string    `gorm:"type:uuid;not null;index" json:"article_id"`
	ArticleNameSnapshot string    `gorm:"type:varchar(255);not null" json:"article_name_snapshot"`
	Size                string    `gorm:"type:varchar(20);not null" json:"size"`
	Quantity            int64     `gorm:"not null" json:"quantity"`
	Price               int64     `gorm:"not null" json:"price"`
	CreatedAt           time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
