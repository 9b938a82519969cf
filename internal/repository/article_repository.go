package repository

import (
	"context"
	"errors"

	"juneberry/internal/domain/model"
)

var ErrNotFound = errors.New("not found")

// 一覧検索
type ArticleListQuery struct {
	Page          int
	Limit         int
	LiveSessionID string
	Sort          string
}

// 商品の読み取りと在庫/サイズ更新を約束。
type ArticleRepository interface {
	// 公開商品のみ（画像・サイズ付き）
	ListPublic(ctx context.Context, q ArticleListQuery) ([]model.Article, int64, error)
	// 現在のカタログの値（画像・サイズ付き）。無ければ ErrNotFound
	FindByID(ctx context.Context, id string) (model.Article, error)
	// 在庫フラグとサイズ一覧を置き換える
	UpdateAvailability(ctx context.Context, id string, inStock bool, sizes []string) error
}
