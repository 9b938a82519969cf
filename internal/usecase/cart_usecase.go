package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"juneberry/internal/domain/cart"
	"juneberry/internal/domain/model"
)

// カタログの現状で1明細を確認する（CheckoutUsecase が満たす）
type LineValidator interface {
	ValidateLineItem(ctx context.Context, articleID, selectedSize string) (model.Article, error)
}

// CartUsecase は Cookie カートへの操作をまとめる。
// Store はリクエストごとに handler が作って渡す。
type CartUsecase struct {
	lines LineValidator
}

func NewCartUsecase(lines LineValidator) *CartUsecase {
	return &CartUsecase{lines: lines}
}

type AddCartInput struct {
	ArticleID string
	Size      string
	Quantity  int64
}

type UpdateCartItemInput struct {
	ArticleID string
	Size      string
	Quantity  int64
}

type CartItemResponse struct {
	ArticleID    string `json:"article_id"`
	Name         string `json:"name"`
	UnitPrice    int64  `json:"unit_price"`
	ImageURL     string `json:"image_url"`
	SelectedSize string `json:"selected_size"`
	Quantity     int64  `json:"quantity"`
	Subtotal     int64  `json:"subtotal"`
}

type CartResponse struct {
	Items          []CartItemResponse `json:"items"`
	TotalItemCount int64              `json:"total_item_count"`
	TotalPrice     int64              `json:"total_price"`
}

func (u *CartUsecase) View(store *cart.Store) CartResponse {
	return toCartResponse(store.State())
}

// Add はカタログから名前・価格・画像を引いて追加する（同じキーは数量加算）。
func (u *CartUsecase) Add(ctx context.Context, store *cart.Store, in AddCartInput) (CartResponse, error) {
	articleID := strings.TrimSpace(in.ArticleID)
	size := strings.TrimSpace(in.Size)
	if articleID == "" {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid article_id")
	}
	if size == "" {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "size required")
	}
	qty := in.Quantity
	if qty == 0 {
		qty = 1
	}
	if qty < 0 || qty > cart.MaxQuantity {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}

	a, err := u.lines.ValidateLineItem(ctx, articleID, size)
	if err != nil {
		return CartResponse{}, lineErrorToHTTP(err)
	}

	item, err := cart.NewLineItem(a.ID, a.Name, a.Price, a.PrimaryImageURL(), size, qty)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid")
	}

	st, err := store.AddItem(item)
	if errors.Is(err, cart.ErrCartTooLarge) {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "cart is full")
	}
	if errors.Is(err, cart.ErrQuantityLimit) {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, fmt.Sprintf("quantity per item is limited to %d", cart.MaxQuantity))
	}
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid")
	}
	return toCartResponse(st), nil
}

// 0以下は削除になる
func (u *CartUsecase) UpdateQuantity(store *cart.Store, in UpdateCartItemInput) (CartResponse, error) {
	articleID := strings.TrimSpace(in.ArticleID)
	size := strings.TrimSpace(in.Size)
	if articleID == "" || size == "" {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "article_id and size required")
	}
	if in.Quantity > cart.MaxQuantity {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}
	if !store.IsInCart(articleID, size) {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "not in cart")
	}
	return toCartResponse(store.UpdateQuantity(articleID, size, in.Quantity)), nil
}

// 無い明細の削除はそのまま返す
func (u *CartUsecase) Remove(store *cart.Store, articleID, size string) (CartResponse, error) {
	articleID = strings.TrimSpace(articleID)
	size = strings.TrimSpace(size)
	if articleID == "" || size == "" {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "article_id and size required")
	}
	return toCartResponse(store.RemoveItem(articleID, size)), nil
}

func (u *CartUsecase) Clear(store *cart.Store) CartResponse {
	return toCartResponse(store.Clear())
}

func lineErrorToHTTP(err error) error {
	le, ok := AsLineError(err)
	if !ok {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	switch le.Kind {
	case LineNotFound:
		return NewHTTPError(http.StatusNotFound, "not found")
	case LineOutOfStock:
		return NewHTTPError(http.StatusConflict, "out of stock")
	case LineSizeUnavailable:
		return NewHTTPError(http.StatusBadRequest, "size not available")
	default:
		return NewHTTPError(http.StatusBadRequest, "invalid")
	}
}

func toCartResponse(st cart.State) CartResponse {
	items := make([]CartItemResponse, 0, len(st.Items))
	for _, it := range st.Items {
		items = append(items, CartItemResponse{
			ArticleID:    it.ArticleID,
			Name:         it.Name,
			UnitPrice:    it.UnitPrice,
			ImageURL:     it.ImageURL,
			SelectedSize: it.SelectedSize,
			Quantity:     it.Quantity,
			Subtotal:     it.Subtotal(),
		})
	}
	return CartResponse{
		Items:          items,
		TotalItemCount: st.TotalItemCount,
		TotalPrice:     st.TotalPrice,
	}
}
