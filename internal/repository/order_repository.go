package repository

import (
	"context"
	"errors"
	"time"

	"juneberry/internal/domain/model"
)

// 読んだ後に別の操作でステータスが変わっていた
var ErrStatusChanged = errors.New("order status changed concurrently")

type AdminOrderListFilter struct {
	Page   int
	Limit  int
	Status string
	// 購入者名・メール・電話の部分一致
	Customer string
	From     *time.Time
	To       *time.Time
}

type OrderRepository interface {
	FindByID(ctx context.Context, orderID string) (model.Order, error)
	Create(ctx context.Context, order model.Order) (string, error)
	//from のときだけ to に変える
	UpdateStatus(ctx context.Context, orderID string, from, to model.OrderStatus) error

	//検索（同じキーなら同じ結果を返す）
	FindByIdempotencyKey(ctx context.Context, key string) (model.Order, bool, error)
	//管理者用の注文一覧
	ListAdmin(ctx context.Context, f AdminOrderListFilter) ([]model.Order, int64, error)
}
