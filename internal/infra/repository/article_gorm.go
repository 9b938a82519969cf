package repository

import (
	"context"
	"errors"
	"strings"

	"juneberry/internal/domain/model"
	repo "juneberry/internal/repository"

	"gorm.io/gorm"
)

type ArticleGormRepository struct {
	db *gorm.DB
}

// DI
func NewArticleGormRepository(db *gorm.DB) *ArticleGormRepository {
	return &ArticleGormRepository{db: db}
}

// 画像は表示順、サイズは登録順で読み込む
func withArticleAssociations(tx *gorm.DB) *gorm.DB {
	return tx.
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("position asc").Order("id asc") }).
		Preload("Sizes", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") })
}

// 公開商品のみを、ライブ配信/ソート/ページング付きで返す。
func (r *ArticleGormRepository) ListPublic(ctx context.Context, q repo.ArticleListQuery) ([]model.Article, int64, error) {
	var articles []model.Article
	var total int64

	tx := r.db.WithContext(ctx).Model(&model.Article{}).Where("is_active = ?", true)

	//ライブ配信で絞り込み
	if s := strings.TrimSpace(q.LiveSessionID); s != "" {
		tx = tx.Where("live_session_id = ?", s)
	}

	if err := tx.Count(&total).Error; err != nil {
		return []model.Article{}, 0, err
	}

	switch q.Sort {
	case "price_asc":
		tx = tx.Order("price asc").Order("id asc")
	case "price_desc":
		tx = tx.Order("price desc").Order("id desc")
	default:
		tx = tx.Order("created_at desc").Order("id desc")
	}

	offset := (q.Page - 1) * q.Limit
	if err := withArticleAssociations(tx).Offset(offset).Limit(q.Limit).Find(&articles).Error; err != nil {
		return []model.Article{}, 0, err
	}

	return articles, total, nil
}

// IDで商品を取得（削除済みは見つからない扱い）
func (r *ArticleGormRepository) FindByID(ctx context.Context, id string) (model.Article, error) {
	var a model.Article
	err := withArticleAssociations(r.db.WithContext(ctx)).Where("id = ?", id).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Article{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Article{}, err
	}
	return a, nil
}

// 在庫フラグを更新し、サイズを丸ごと置き換える
func (r *ArticleGormRepository) UpdateAvailability(ctx context.Context, id string, inStock bool, sizes []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Article{}).Where("id = ?", id).Update("in_stock", inStock)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return repo.ErrNotFound
		}

		if err := tx.Where("article_id = ?", id).Delete(&model.ArticleSize{}).Error; err != nil {
			return err
		}

		if len(sizes) == 0 {
			return nil
		}
		rows := make([]model.ArticleSize, 0, len(sizes))
		for _, s := range sizes {
			rows = append(rows, model.ArticleSize{ArticleID: id, Label: s})
		}
		return tx.Create(&rows).Error
	})
}
