package usecase_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"juneberry/internal/domain/model"
	repo "juneberry/internal/repository"
	"juneberry/internal/usecase"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// TxManager / TxRepos mocks
// =====================

// TxManagerMock は WithinTx の中で渡す repos を固定して unit テストを回す
type TxManagerMock struct {
	mock.Mock
	Repos repo.TxRepos
}

func (m *TxManagerMock) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	m.Called(ctx)
	return fn(m.Repos)
}

type TxReposMock struct {
	orders     repo.OrderRepository
	orderItems repo.OrderItemRepository
	auditLogs  repo.AuditLogRepository
}

func (r *TxReposMock) Orders() repo.OrderRepository         { return r.orders }
func (r *TxReposMock) OrderItems() repo.OrderItemRepository { return r.orderItems }
func (r *TxReposMock) AuditLogs() repo.AuditLogRepository   { return r.auditLogs }

// =====================
// Repository mocks
// =====================

type ArticleRepoMock struct{ mock.Mock }

func (m *ArticleRepoMock) ListPublic(ctx context.Context, q repo.ArticleListQuery) ([]model.Article, int64, error) {
	args := m.Called(ctx, q)
	items, _ := args.Get(0).([]model.Article)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *ArticleRepoMock) FindByID(ctx context.Context, id string) (model.Article, error) {
	args := m.Called(ctx, id)
	a, _ := args.Get(0).(model.Article)
	return a, args.Error(1)
}

func (m *ArticleRepoMock) UpdateAvailability(ctx context.Context, id string, inStock bool, sizes []string) error {
	args := m.Called(ctx, id, inStock, sizes)
	return args.Error(0)
}

type LiveSessionRepoMock struct{ mock.Mock }

func (m *LiveSessionRepoMock) ListActive(ctx context.Context) ([]model.LiveSession, error) {
	args := m.Called(ctx)
	s, _ := args.Get(0).([]model.LiveSession)
	return s, args.Error(1)
}

type OrderRepoMock struct{ mock.Mock }

func (m *OrderRepoMock) FindByID(ctx context.Context, orderID string) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) Create(ctx context.Context, order model.Order) (string, error) {
	args := m.Called(ctx, order)
	return args.String(0), args.Error(1)
}

func (m *OrderRepoMock) UpdateStatus(ctx context.Context, orderID string, from, to model.OrderStatus) error {
	args := m.Called(ctx, orderID, from, to)
	return args.Error(0)
}

func (m *OrderRepoMock) FindByIdempotencyKey(ctx context.Context, key string) (model.Order, bool, error) {
	args := m.Called(ctx, key)
	o, _ := args.Get(0).(model.Order)
	return o, args.Bool(1), args.Error(2)
}

func (m *OrderRepoMock) ListAdmin(ctx context.Context, f repo.AdminOrderListFilter) ([]model.Order, int64, error) {
	args := m.Called(ctx, f)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Get(1).(int64), args.Error(2)
}

type OrderItemRepoMock struct{ mock.Mock }

func (m *OrderItemRepoMock) CreateBulk(ctx context.Context, orderID string, items []model.OrderItem) error {
	args := m.Called(ctx, orderID, items)
	return args.Error(0)
}

func (m *OrderItemRepoMock) ListByOrderID(ctx context.Context, orderID string) ([]model.OrderItem, error) {
	args := m.Called(ctx, orderID)
	items, _ := args.Get(0).([]model.OrderItem)
	return items, args.Error(1)
}

type AuditRepoMock struct{ mock.Mock }

func (m *AuditRepoMock) Create(ctx context.Context, log model.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *AuditRepoMock) List(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, error) {
	args := m.Called(ctx, filter)
	logs, _ := args.Get(0).([]model.AuditLog)
	return logs, args.Error(1)
}

type NotifierMock struct{ mock.Mock }

func (m *NotifierMock) OrderPlaced(ctx context.Context, order usecase.OrderOutput) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

// =====================
// Helpers
// =====================

func assertErrContains(t *testing.T, err error, wantSubstr string) {
	t.Helper()
	if assert.Error(t, err) {
		assert.True(t, strings.Contains(err.Error(), wantSubstr), "err=%q want contains %q", err.Error(), wantSubstr)
	}
}

func assertHTTPStatus(t *testing.T, err error, want int) {
	t.Helper()
	he, ok := usecase.AsHTTPError(err)
	if assert.True(t, ok, "err=%v is not HTTPError", err) {
		assert.Equal(t, want, he.Status)
	}
}

// 出力は捨ててエントリだけ拾うロガー
func newTestLogger() (*logrus.Logger, *test.Hook) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	hook := test.NewLocal(log)
	return log, hook
}

const (
	articleA1 = "0b9d8f5e-1c2a-4e7f-8a6b-3d4c5e6f7a81"
	articleA2 = "0b9d8f5e-1c2a-4e7f-8a6b-3d4c5e6f7a82"
	articleA3 = "0b9d8f5e-1c2a-4e7f-8a6b-3d4c5e6f7a83"

	articleBroken = "0b9d8f5e-1c2a-4e7f-8a6b-3d4c5e6f7a8f"
)

func article(id, name string, price int64, inStock bool, sizes ...string) model.Article {
	a := model.Article{
		ID:       id,
		Name:     name,
		Price:    price,
		InStock:  inStock,
		IsActive: true,
		Images: []model.ArticleImage{
			{URL: "https://img.example/" + id + "-2.jpg", Position: 2},
			{URL: "https://img.example/" + id + "-1.jpg", Position: 1},
		},
	}
	for _, s := range sizes {
		a.Sizes = append(a.Sizes, model.ArticleSize{ArticleID: id, Label: s})
	}
	return a
}
