package model

import "time"

// ライブ配信で紹介する商品のまとまり
type LiveSession struct {
	ID        string     `gorm:"type:uuid;primaryKey" json:"id"`
	Title     string     `gorm:"type:varchar(255);not null" json:"title"`
	StartsAt  time.Time  `gorm:"not null;index" json:"starts_at"`
	EndsAt    *time.Time `json:"ends_at,omitempty"`
	IsActive  bool       `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time  `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
