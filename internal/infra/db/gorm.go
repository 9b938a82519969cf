package db

import (
	"juneberry/internal/config"
	"juneberry/internal/domain/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Connect はDBに接続して *gorm.DB を返す。
func Connect(cfg config.Config) (*gorm.DB, error) {
	level := gormlogger.Warn
	if cfg.IsProduction() {
		level = gormlogger.Error
	}

	return gorm.Open(postgres.Open(cfg.PostgresDSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(level),
	})
}

// テーブル作成（本番のマイグレーションは別管理）
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.LiveSession{},
		&model.Article{},
		&model.ArticleSize{},
		&model.ArticleImage{},
		&model.Order{},
		&model.OrderItem{},
		&model.AuditLog{},
	)
}
