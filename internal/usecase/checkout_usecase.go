package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"juneberry/internal/domain/cart"
	"juneberry/internal/domain/model"
	repo "juneberry/internal/repository"
	"juneberry/internal/validator"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

var (
	ErrEmptyCart           = errors.New("cart is empty")
	ErrOrderCreationFailed = errors.New("order creation failed")
	ErrInvalidQuantity     = errors.New("line quantity out of range")
)

// 利用者向けの汎用メッセージ
const (
	msgOrderCreationFailed = "We could not place your order. Please try again."
	msgEmptyCart           = "Your cart is empty."
)

// 1注文で同時に読むカタログの上限
const validateConcurrency = 8

type LineErrorKind string

const (
	LineNotFound        LineErrorKind = "NOT_FOUND"
	LineOutOfStock      LineErrorKind = "OUT_OF_STOCK"
	LineSizeUnavailable LineErrorKind = "SIZE_UNAVAILABLE"
)

// カート明細がカタログの現状と合わない
type LineError struct {
	Kind      LineErrorKind
	ArticleID string
	Size      string
	Name      string
}

func (e *LineError) Error() string {
	name := e.Name
	if name == "" {
		name = e.ArticleID
	}
	switch e.Kind {
	case LineNotFound:
		return fmt.Sprintf("%s (%s) is no longer available. Please remove it from your cart.", name, e.Size)
	case LineOutOfStock:
		return fmt.Sprintf("%s (%s) is out of stock. Please remove it from your cart.", name, e.Size)
	case LineSizeUnavailable:
		return fmt.Sprintf("%s is no longer offered in size %s. Please remove it from your cart.", name, e.Size)
	default:
		return fmt.Sprintf("%s (%s) cannot be ordered. Please remove it from your cart.", name, e.Size)
	}
}

func AsLineError(err error) (*LineError, bool) {
	var le *LineError
	ok := errors.As(err, &le)
	return le, ok
}

// 注文者・配送先
type CustomerInfo struct {
	Name       string `json:"name" validate:"required,max=255"`
	Phone      string `json:"phone" validate:"required,max=30"`
	Email      string `json:"email" validate:"omitempty,email,max=255"`
	Address    string `json:"address" validate:"required,max=255"`
	City       string `json:"city" validate:"required,max=255"`
	Province   string `json:"province" validate:"required,max=255"`
	PostalCode string `json:"postal_code" validate:"required,max=20"`
	Country    string `json:"country" validate:"required,max=100"`
}

func (c CustomerInfo) normalized() CustomerInfo {
	return CustomerInfo{
		Name:       strings.TrimSpace(c.Name),
		Phone:      strings.TrimSpace(c.Phone),
		Email:      strings.TrimSpace(c.Email),
		Address:    strings.TrimSpace(c.Address),
		City:       strings.TrimSpace(c.City),
		Province:   strings.TrimSpace(c.Province),
		PostalCode: strings.TrimSpace(c.PostalCode),
		Country:    strings.TrimSpace(c.Country),
	}
}

// 検証済みの明細（カタログのスナップショット付き）
type ValidatedLine struct {
	Line    cart.LineItem
	Article model.Article
}

// 価格はカタログの値を正とする
func (v ValidatedLine) UnitPrice() int64 { return v.Article.Price }

type CheckoutInput struct {
	Customer       CustomerInfo
	Lines          []cart.LineItem
	ComputedTotal  int64
	IdempotencyKey string
}

type CreateOrderInput struct {
	Customer       CustomerInfo
	Lines          []ValidatedLine
	ComputedTotal  int64
	ShippingCost   int64
	IdempotencyKey string
}

type CheckoutFailure string

const (
	FailureInvalidCustomer CheckoutFailure = "INVALID_CUSTOMER"
	FailureEmptyCart       CheckoutFailure = "EMPTY_CART"
	FailureInvalidLines    CheckoutFailure = "INVALID_LINES"
	FailureOrderCreation   CheckoutFailure = "ORDER_CREATION_FAILED"
)

// 成功/失敗のどちらかを表す。失敗時は Errors に利用者向けメッセージが並ぶ。
type CheckoutResult struct {
	Success    bool            `json:"success"`
	Order      *OrderOutput    `json:"order,omitempty"`
	Failure    CheckoutFailure `json:"failure,omitempty"`
	Errors     []string        `json:"errors,omitempty"`
	LineErrors []*LineError    `json:"-"`
}

type OrderItemOutput struct {
	ArticleID string `json:"article_id"`
	Name      string `json:"name"`
	Size      string `json:"size"`
	Price     int64  `json:"price"`
	Quantity  int64  `json:"quantity"`
}

type OrderOutput struct {
	ID           string            `json:"id"`
	Status       string            `json:"status"`
	CustomerName string            `json:"customer_name"`
	Phone        string            `json:"phone"`
	Email        string            `json:"email,omitempty"`
	Address      string            `json:"address"`
	City         string            `json:"city"`
	Province     string            `json:"province"`
	PostalCode   string            `json:"postal_code"`
	Country      string            `json:"country"`
	Total        int64             `json:"total"`
	ShippingCost int64             `json:"shipping_cost"`
	GrandTotal   int64             `json:"grand_total"`
	CreatedAt    time.Time         `json:"created_at"`
	Items        []OrderItemOutput `json:"items"`
}

// 注文確定後の通知先（失敗しても注文は取り消さない）
type OrderNotifier interface {
	OrderPlaced(ctx context.Context, order OrderOutput) error
}

type NopOrderNotifier struct{}

func (NopOrderNotifier) OrderPlaced(context.Context, OrderOutput) error { return nil }

type CheckoutUsecase struct {
	articles repo.ArticleRepository
	tx       repo.TransactionManager
	shipping ShippingPolicy
	notifier OrderNotifier
	log      logrus.FieldLogger
}

func NewCheckoutUsecase(
	articles repo.ArticleRepository,
	tx repo.TransactionManager,
	shipping ShippingPolicy,
	notifier OrderNotifier,
	log logrus.FieldLogger,
) *CheckoutUsecase {
	if notifier == nil {
		notifier = NopOrderNotifier{}
	}
	return &CheckoutUsecase{
		articles: articles,
		tx:       tx,
		shipping: shipping,
		notifier: notifier,
		log:      log,
	}
}

func (u *CheckoutUsecase) Shipping() ShippingPolicy { return u.shipping }

// ValidateLineItem はカタログの現状で1明細を確認する。
// 明細の問題は *LineError、DBなどの失敗はそれ以外のエラー。
func (u *CheckoutUsecase) ValidateLineItem(ctx context.Context, articleID, selectedSize string) (model.Article, error) {
	//形式が違うIDはカタログに存在しない
	if _, err := uuid.Parse(articleID); err != nil {
		return model.Article{}, &LineError{Kind: LineNotFound, ArticleID: articleID, Size: selectedSize}
	}
	a, err := u.articles.FindByID(ctx, articleID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Article{}, &LineError{Kind: LineNotFound, ArticleID: articleID, Size: selectedSize}
	}
	if err != nil {
		return model.Article{}, fmt.Errorf("fetching article[%s]: %w", articleID, err)
	}

	//非公開は存在しない扱い
	if !a.IsActive {
		return model.Article{}, &LineError{Kind: LineNotFound, ArticleID: articleID, Size: selectedSize, Name: a.Name}
	}
	if !a.InStock {
		return model.Article{}, &LineError{Kind: LineOutOfStock, ArticleID: articleID, Size: selectedSize, Name: a.Name}
	}
	if !a.HasSize(selectedSize) {
		return model.Article{}, &LineError{Kind: LineSizeUnavailable, ArticleID: articleID, Size: selectedSize, Name: a.Name}
	}
	return a, nil
}

// ValidateCart は全明細を並行に確認し、明細エラーをカート順にすべて集める。
func (u *CheckoutUsecase) ValidateCart(ctx context.Context, lines []cart.LineItem) ([]ValidatedLine, []*LineError, error) {
	articles := make([]model.Article, len(lines))
	lineErrs := make([]*LineError, len(lines))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(validateConcurrency)

	for i, l := range lines {
		i, l := i, l
		g.Go(func() error {
			a, err := u.ValidateLineItem(gctx, l.ArticleID, l.SelectedSize)
			if le, ok := AsLineError(err); ok {
				if le.Name == "" {
					le.Name = l.Name
				}
				lineErrs[i] = le
				return nil
			}
			if err != nil {
				return err
			}
			articles[i] = a
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var valid []ValidatedLine
	var invalid []*LineError
	for i, l := range lines {
		if lineErrs[i] != nil {
			invalid = append(invalid, lineErrs[i])
			continue
		}
		valid = append(valid, ValidatedLine{Line: l, Article: articles[i]})
	}
	return valid, invalid, nil
}

// Checkout は検証→合計計算→注文作成を行う。
// 明細が1つでも不正なら書き込みは行わない。
func (u *CheckoutUsecase) Checkout(ctx context.Context, in CheckoutInput) CheckoutResult {
	customer := in.Customer.normalized()
	if msgs := validator.Check(customer); len(msgs) > 0 {
		return CheckoutResult{Failure: FailureInvalidCustomer, Errors: msgs}
	}
	if len(in.Lines) == 0 {
		return CheckoutResult{Failure: FailureEmptyCart, Errors: []string{msgEmptyCart}}
	}

	valid, lineErrs, err := u.ValidateCart(ctx, in.Lines)
	if err != nil {
		u.log.WithError(err).Error("checkout validation failed")
		return CheckoutResult{Failure: FailureOrderCreation, Errors: []string{msgOrderCreationFailed}}
	}
	if len(lineErrs) > 0 {
		msgs := make([]string, 0, len(lineErrs))
		for _, le := range lineErrs {
			msgs = append(msgs, le.Error())
		}
		return CheckoutResult{Failure: FailureInvalidLines, Errors: msgs, LineErrors: lineErrs}
	}

	quote := u.shipping.Quote(customer.Country)

	out, err := u.CreateOrder(ctx, CreateOrderInput{
		Customer:       customer,
		Lines:          valid,
		ComputedTotal:  in.ComputedTotal,
		ShippingCost:   quote.Cost,
		IdempotencyKey: in.IdempotencyKey,
	})
	if err != nil {
		u.log.WithError(err).Error("order creation failed")
		return CheckoutResult{Failure: FailureOrderCreation, Errors: []string{msgOrderCreationFailed}}
	}

	if err := u.notifier.OrderPlaced(ctx, out); err != nil {
		u.log.WithError(err).WithField("order_id", out.ID).Warn("order placed notification failed")
	}

	return CheckoutResult{Success: true, Order: &out}
}

// CreateOrder は検証済みの明細で注文と明細を1トランザクションで保存する。
// 価格はカタログのスナップショットを使い、クライアントの値と違えばログに残す。
func (u *CheckoutUsecase) CreateOrder(ctx context.Context, in CreateOrderInput) (OrderOutput, error) {
	if len(in.Lines) == 0 {
		return OrderOutput{}, ErrEmptyCart
	}

	var total int64
	items := make([]model.OrderItem, 0, len(in.Lines))
	for _, vl := range in.Lines {
		if q := vl.Line.Quantity; q < 1 || q > cart.MaxQuantity {
			return OrderOutput{}, fmt.Errorf("%w: article[%s] size[%s] quantity %d", ErrInvalidQuantity, vl.Line.ArticleID, vl.Line.SelectedSize, q)
		}
		price := vl.UnitPrice()
		if price != vl.Line.UnitPrice {
			u.log.WithFields(logrus.Fields{
				"article_id":    vl.Line.ArticleID,
				"size":          vl.Line.SelectedSize,
				"cart_price":    vl.Line.UnitPrice,
				"catalog_price": price,
			}).Warn("cart price differs from catalog, using catalog price")
		}

		items = append(items, model.OrderItem{
			ArticleID:           vl.Article.ID,
			ArticleNameSnapshot: vl.Article.Name,
			Size:                vl.Line.SelectedSize,
			Quantity:            vl.Line.Quantity,
			Price:               price,
		})
		total += price * vl.Line.Quantity
	}

	if in.ComputedTotal != 0 && in.ComputedTotal != total {
		u.log.WithFields(logrus.Fields{
			"submitted_total": in.ComputedTotal,
			"catalog_total":   total,
		}).Warn("submitted total differs from catalog total")
	}

	var key *string
	if k := strings.TrimSpace(in.IdempotencyKey); k != "" {
		key = &k
	}

	customer := in.Customer.normalized()
	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		// 同じキーなら同じ結果
		if key != nil {
			existing, found, err := r.Orders().FindByIdempotencyKey(ctx, *key)
			if err != nil {
				return err
			}
			if found {
				existingItems, err := r.OrderItems().ListByOrderID(ctx, existing.ID)
				if err != nil {
					return err
				}
				out = toOrderOutput(existing, existingItems)
				return nil
			}
		}

		now := time.Now()
		order := model.Order{
			ID:             uuid.NewString(),
			CustomerName:   customer.Name,
			Phone:          customer.Phone,
			Email:          customer.Email,
			Address:        customer.Address,
			City:           customer.City,
			Province:       customer.Province,
			PostalCode:     customer.PostalCode,
			Country:        customer.Country,
			Total:          total,
			ShippingCost:   in.ShippingCost,
			Status:         model.OrderStatusPending,
			IdempotencyKey: key,
			CreatedAt:      now,
			UpdatedAt:      now,
		}

		orderID, err := r.Orders().Create(ctx, order)
		if err != nil {
			return fmt.Errorf("creating order: %w", err)
		}
		order.ID = orderID

		if err := r.OrderItems().CreateBulk(ctx, orderID, items); err != nil {
			return fmt.Errorf("creating order items: %w", err)
		}

		out = toOrderOutput(order, items)
		return nil
	})
	if err != nil {
		return OrderOutput{}, fmt.Errorf("%w: %v", ErrOrderCreationFailed, err)
	}
	return out, nil
}

func toOrderOutput(o model.Order, items []model.OrderItem) OrderOutput {
	outItems := make([]OrderItemOutput, 0, len(items))
	for _, it := range items {
		outItems = append(outItems, OrderItemOutput{
			ArticleID: it.ArticleID,
			Name:      it.ArticleNameSnapshot,
			Size:      it.Size,
			Price:     it.Price,
			Quantity:  it.Quantity,
		})
	}

	return OrderOutput{
		ID:           o.ID,
		Status:       string(o.Status),
		CustomerName: o.CustomerName,
		Phone:        o.Phone,
		Email:        o.Email,
		Address:      o.Address,
		City:         o.City,
		Province:     o.Province,
		PostalCode:   o.PostalCode,
		Country:      o.Country,
		Total:        o.Total,
		ShippingCost: o.ShippingCost,
		GrandTotal:   o.Total + o.ShippingCost,
		CreatedAt:    o.CreatedAt,
		Items:        outItems,
	}
}
