package cart

import (
	"errors"
	"strings"
)

var (
	ErrInvalidLineItem = errors.New("invalid cart line item")
	ErrQuantityLimit   = errors.New("cart line quantity exceeds limit")
)

// 1明細あたりの上限
const (
	MaxQuantity  int64 = 99
	MaxUnitPrice int64 = 1_000_000_000_000
)

// カートの明細
// (ArticleID, SelectedSize) の組で1行。名前・価格・画像は追加時点の値を保持する。
type LineItem struct {
	ArticleID    string `json:"articleId"`
	Name         string `json:"name"`
	UnitPrice    int64  `json:"unitPrice"`
	ImageURL     string `json:"imageUrl"`
	SelectedSize string `json:"selectedSize"`
	Quantity     int64  `json:"quantity"`
}

// Key は明細の同一性を表す。
type Key struct {
	ArticleID    string
	SelectedSize string
}

func (it LineItem) Key() Key {
	return Key{ArticleID: it.ArticleID, SelectedSize: it.SelectedSize}
}

// 小計
func (it LineItem) Subtotal() int64 {
	return it.UnitPrice * it.Quantity
}

// NewLineItem は必須項目をそろえた明細を作る。
// 画像が無い商品もあるので ImageURL だけは空を許す。
func NewLineItem(articleID, name string, unitPrice int64, imageURL, selectedSize string, quantity int64) (LineItem, error) {
	it := LineItem{
		ArticleID:    strings.TrimSpace(articleID),
		Name:         strings.TrimSpace(name),
		UnitPrice:    unitPrice,
		ImageURL:     strings.TrimSpace(imageURL),
		SelectedSize: strings.TrimSpace(selectedSize),
		Quantity:     quantity,
	}
	if err := it.validate(); err != nil {
		return LineItem{}, err
	}
	return it, nil
}

func (it LineItem) validate() error {
	if it.ArticleID == "" || it.Name == "" || it.SelectedSize == "" {
		return ErrInvalidLineItem
	}
	if it.UnitPrice < 0 || it.UnitPrice > MaxUnitPrice {
		return ErrInvalidLineItem
	}
	if it.Quantity < 1 || it.Quantity > MaxQuantity {
		return ErrInvalidLineItem
	}
	return nil
}
