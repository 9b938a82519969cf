package model

import (
	"time"

	"gorm.io/gorm"
)

// 商品（アパレル）
type Article struct {
	ID            string  `gorm:"type:uuid;primaryKey" json:"id"`
	Name          string  `gorm:"type:varchar(255);not null" json:"name"`
	Description   string  `gorm:"type:text" json:"description"`
	Price         int64   `gorm:"not null" json:"price"`
	InStock       bool    `gorm:"not null;index" json:"in_stock"`
	IsActive      bool    `gorm:"not null;default:false" json:"is_active"`
	LiveSessionID *string `gorm:"type:uuid;index" json:"live_session_id,omitempty"`

	Images []ArticleImage `gorm:"foreignKey:ArticleID;constraint:OnDelete:CASCADE" json:"images"`
	Sizes  []ArticleSize  `gorm:"foreignKey:ArticleID;constraint:OnDelete:CASCADE" json:"sizes"`

	CreatedAt time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// 現在設定されているサイズか
func (a Article) HasSize(label string) bool {
	for _, s := range a.Sizes {
		if s.Label == label {
			return true
		}
	}
	return false
}

// SizeLabels は設定済みサイズの一覧。
func (a Article) SizeLabels() []string {
	out := make([]string, 0, len(a.Sizes))
	for _, s := range a.Sizes {
		out = append(out, s.Label)
	}
	return out
}

// カートのサムネイル用（position が一番小さい画像）
func (a Article) PrimaryImageURL() string {
	var best *ArticleImage
	for i := range a.Images {
		if best == nil || a.Images[i].Position < best.Position {
			best = &a.Images[i]
		}
	}
	if best == nil {
		return ""
	}
	return best.URL
}

type ArticleSize struct {
	ID        int64  `gorm:"primaryKey;autoIncrement" json:"-"`
	ArticleID string `gorm:"type:uuid;not null;uniqueIndex:idx_article_size" json:"-"`
	Label     string `gorm:"type:varchar(20);not null;uniqueIndex:idx_article_size" json:"label"`
}

// 画像はホスティングサービス上のURLだけを持つ
type ArticleImage struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"-"`
	ArticleID string    `gorm:"type:uuid;not null;index" json:"-"`
	URL       string    `gorm:"type:text;not null" json:"url"`
	Position  int       `gorm:"not null;default:0" json:"position"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"-"`
}
