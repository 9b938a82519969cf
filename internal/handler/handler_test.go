package handler_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"juneberry/internal/config"
	"juneberry/internal/domain/cart"
	"juneberry/internal/domain/model"
	"juneberry/internal/handler"
	repo "juneberry/internal/repository"
	"juneberry/internal/server"
	"juneberry/internal/usecase"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// =====================
// mocks
// =====================

type articleRepoMock struct{ mock.Mock }

func (m *articleRepoMock) ListPublic(ctx context.Context, q repo.ArticleListQuery) ([]model.Article, int64, error) {
	args := m.Called(ctx, q)
	items, _ := args.Get(0).([]model.Article)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *articleRepoMock) FindByID(ctx context.Context, id string) (model.Article, error) {
	args := m.Called(ctx, id)
	a, _ := args.Get(0).(model.Article)
	return a, args.Error(1)
}

func (m *articleRepoMock) UpdateAvailability(ctx context.Context, id string, inStock bool, sizes []string) error {
	args := m.Called(ctx, id, inStock, sizes)
	return args.Error(0)
}

type liveSessionRepoMock struct{ mock.Mock }

func (m *liveSessionRepoMock) ListActive(ctx context.Context) ([]model.LiveSession, error) {
	args := m.Called(ctx)
	s, _ := args.Get(0).([]model.LiveSession)
	return s, args.Error(1)
}

type orderRepoMock struct{ mock.Mock }

func (m *orderRepoMock) FindByID(ctx context.Context, orderID string) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *orderRepoMock) Create(ctx context.Context, order model.Order) (string, error) {
	args := m.Called(ctx, order)
	return args.String(0), args.Error(1)
}

func (m *orderRepoMock) UpdateStatus(ctx context.Context, orderID string, from, to model.OrderStatus) error {
	args := m.Called(ctx, orderID, from, to)
	return args.Error(0)
}

func (m *orderRepoMock) FindByIdempotencyKey(ctx context.Context, key string) (model.Order, bool, error) {
	args := m.Called(ctx, key)
	o, _ := args.Get(0).(model.Order)
	return o, args.Bool(1), args.Error(2)
}

func (m *orderRepoMock) ListAdmin(ctx context.Context, f repo.AdminOrderListFilter) ([]model.Order, int64, error) {
	args := m.Called(ctx, f)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Get(1).(int64), args.Error(2)
}

type orderItemRepoMock struct{ mock.Mock }

func (m *orderItemRepoMock) CreateBulk(ctx context.Context, orderID string, items []model.OrderItem) error {
	args := m.Called(ctx, orderID, items)
	return args.Error(0)
}

func (m *orderItemRepoMock) ListByOrderID(ctx context.Context, orderID string) ([]model.OrderItem, error) {
	args := m.Called(ctx, orderID)
	items, _ := args.Get(0).([]model.OrderItem)
	return items, args.Error(1)
}

type auditRepoMock struct{ mock.Mock }

func (m *auditRepoMock) Create(ctx context.Context, log model.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *auditRepoMock) List(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, error) {
	args := m.Called(ctx, filter)
	logs, _ := args.Get(0).([]model.AuditLog)
	return logs, args.Error(1)
}

type txRepos struct {
	orders     *orderRepoMock
	orderItems *orderItemRepoMock
	audit      *auditRepoMock
}

func (r *txRepos) Orders() repo.OrderRepository         { return r.orders }
func (r *txRepos) OrderItems() repo.OrderItemRepository { return r.orderItems }
func (r *txRepos) AuditLogs() repo.AuditLogRepository   { return r.audit }

// コミット/ロールバックは無く、そのまま fn を呼ぶ
type txManager struct{ repos *txRepos }

func (m *txManager) WithinTx(_ context.Context, fn func(r repo.TxRepos) error) error {
	return fn(m.repos)
}

// =====================
// app
// =====================

const (
	testSecret = "test-secret"
	articleA1  = "0b9d8f5e-1c2a-4e7f-8a6b-3d4c5e6f7a81"
)

type testApp struct {
	e        *echo.Echo
	articles *articleRepoMock
	sessions *liveSessionRepoMock
	repos    *txRepos
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	cfg := config.Config{
		JWTSecret:            testSecret,
		CartCookieName:       "cart",
		CartCookieTTL:        time.Hour,
		CookieSecure:         true,
		DomesticCountry:      "Philippines",
		DomesticShippingCost: 300,
	}

	app := &testApp{
		articles: new(articleRepoMock),
		sessions: new(liveSessionRepoMock),
		repos:    &txRepos{orders: new(orderRepoMock), orderItems: new(orderItemRepoMock), audit: new(auditRepoMock)},
	}
	txm := &txManager{repos: app.repos}

	checkoutUC := usecase.NewCheckoutUsecase(app.articles, txm, usecase.ShippingPolicy{DomesticCountry: "Philippines", DomesticCost: 300}, nil, log)
	cartUC := usecase.NewCartUsecase(checkoutUC)
	cookies := handler.NewCartCookies(cfg, log)

	app.e = server.New(cfg, log, server.Handlers{
		Catalog:      handler.NewCatalogHandler(usecase.NewCatalogUsecase(app.articles, app.sessions)),
		Cart:         handler.NewCartHandler(cartUC, cookies),
		Checkout:     handler.NewCheckoutHandler(checkoutUC, cartUC, cookies),
		AdminOrder:   handler.NewAdminOrderHandler(usecase.NewAdminOrderUsecase(txm, log)),
		AdminArticle: handler.NewAdminArticleHandler(usecase.NewAdminArticleUsecase(app.articles, app.repos.audit, log)),
	})
	return app
}

func (a *testApp) do(method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func cartCookie(t *testing.T, items ...cart.LineItem) *http.Cookie {
	t.Helper()
	raw, err := cart.Encode(items)
	require.NoError(t, err)
	return &http.Cookie{Name: "cart", Value: raw}
}

func responseCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func linenDress(inStock bool) model.Article {
	return model.Article{
		ID:       articleA1,
		Name:     "Linen Dress",
		Price:    1000,
		InStock:  inStock,
		IsActive: true,
		Sizes:    []model.ArticleSize{{Label: "S"}, {Label: "M"}},
		Images:   []model.ArticleImage{{URL: "https://img.example/a1.jpg"}},
	}
}

func adminToken(t *testing.T, role string) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  int64(9),
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return "Bearer " + s
}

// =====================
// cart
// =====================

func TestCart_AddWritesCookie(t *testing.T) {
	app := newTestApp(t)
	app.articles.On("FindByID", mock.Anything, articleA1).Return(linenDress(true), nil)

	rec := app.do(http.MethodPost, "/cart/items", `{"article_id":"`+articleA1+`","size":"M","quantity":2}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out usecase.CartResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, int64(2000), out.TotalPrice)

	ck := responseCookie(rec, "cart")
	require.NotNil(t, ck)
	assert.Equal(t, 3600, ck.MaxAge)
	assert.Equal(t, "/", ck.Path)
	assert.False(t, ck.HttpOnly)
	assert.True(t, ck.Secure)
	assert.Equal(t, http.SameSiteLaxMode, ck.SameSite)
	assert.Len(t, rec.Result().Header.Values("Set-Cookie"), 1)

	items, err := cart.Decode(ck.Value)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Linen Dress", items[0].Name)
	assert.Equal(t, "https://img.example/a1.jpg", items[0].ImageURL)
}

func TestCart_AddOutOfStockLeavesCookie(t *testing.T) {
	app := newTestApp(t)
	app.articles.On("FindByID", mock.Anything, articleA1).Return(linenDress(false), nil)

	rec := app.do(http.MethodPost, "/cart/items", `{"article_id":"`+articleA1+`","size":"M"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Nil(t, responseCookie(rec, "cart"))
}

func TestCart_AddQuantityLimit(t *testing.T) {
	app := newTestApp(t)
	app.articles.On("FindByID", mock.Anything, articleA1).Return(linenDress(true), nil)

	rec := app.do(http.MethodPost, "/cart/items", `{"article_id":"`+articleA1+`","size":"M","quantity":100}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, responseCookie(rec, "cart"))

	full := cartCookie(t, cart.LineItem{
		ArticleID: articleA1, Name: "Linen Dress", UnitPrice: 1000, SelectedSize: "M", Quantity: cart.MaxQuantity,
	})
	rec = app.do(http.MethodPost, "/cart/items", `{"article_id":"`+articleA1+`","size":"M","quantity":1}`, full)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, responseCookie(rec, "cart"))
}

func TestCart_AddMalformedArticleID(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(http.MethodPost, "/cart/items", `{"article_id":"A1","size":"M"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	app.articles.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestCart_GetReadsCookieAndToleratesGarbage(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(http.MethodGet, "/cart", "", cartCookie(t, cart.LineItem{
		ArticleID: articleA1, Name: "Linen Dress", UnitPrice: 1000, SelectedSize: "M", Quantity: 3,
	}))
	require.Equal(t, http.StatusOK, rec.Code)
	var out usecase.CartResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, int64(3), out.TotalItemCount)

	rec = app.do(http.MethodGet, "/cart", "", &http.Cookie{Name: "cart", Value: "garbage"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Empty(t, out.Items)
}

func TestCart_UpdateRemoveAndClear(t *testing.T) {
	app := newTestApp(t)
	ck := cartCookie(t,
		cart.LineItem{ArticleID: articleA1, Name: "Linen Dress", UnitPrice: 1000, SelectedSize: "M", Quantity: 1},
		cart.LineItem{ArticleID: articleA1, Name: "Linen Dress", UnitPrice: 1000, SelectedSize: "S", Quantity: 1},
	)

	rec := app.do(http.MethodPatch, "/cart/items", `{"article_id":"`+articleA1+`","size":"M","quantity":0}`, ck)
	require.Equal(t, http.StatusOK, rec.Code)
	items, err := cart.Decode(responseCookie(rec, "cart").Value)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "S", items[0].SelectedSize)

	rec = app.do(http.MethodDelete, "/cart/items?article_id="+articleA1+"&size=S", "", ck)
	require.Equal(t, http.StatusOK, rec.Code)
	items, err = cart.Decode(responseCookie(rec, "cart").Value)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	rec = app.do(http.MethodDelete, "/cart", "", ck)
	require.Equal(t, http.StatusOK, rec.Code)
	cleared := responseCookie(rec, "cart")
	require.NotNil(t, cleared)
	assert.Equal(t, -1, cleared.MaxAge)
}

// =====================
// checkout
// =====================

func TestCheckout_FormSeedsFromCookie(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(http.MethodGet, "/checkout", "", cartCookie(t, cart.LineItem{
		ArticleID: articleA1, Name: "Linen Dress", UnitPrice: 1000, SelectedSize: "M", Quantity: 2,
	}))
	require.Equal(t, http.StatusOK, rec.Code)

	var out handler.CheckoutFormResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, int64(2000), out.Cart.TotalPrice)
	assert.Equal(t, "Philippines", out.DomesticCountry)
	assert.Equal(t, int64(300), out.DomesticCost)
}

const customerJSON = `{"name":"Maria Santos","phone":"09123456789","address":"12 Mabini St.","city":"Quezon City","province":"Metro Manila","postal_code":"1100","country":"Philippines"}`

func TestCheckout_DomesticSuccessClearsCookie(t *testing.T) {
	app := newTestApp(t)
	app.articles.On("FindByID", mock.Anything, articleA1).Return(linenDress(true), nil)
	app.repos.orders.On("Create", mock.Anything, mock.Anything).Return("order-1", nil)
	app.repos.orderItems.On("CreateBulk", mock.Anything, "order-1", mock.Anything).Return(nil)

	rec := app.do(http.MethodPost, "/checkout", `{"customer":`+customerJSON+`,"computed_total":2000}`, cartCookie(t, cart.LineItem{
		ArticleID: articleA1, Name: "Linen Dress", UnitPrice: 1000, SelectedSize: "M", Quantity: 2,
	}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out handler.CheckoutSuccessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.True(t, out.Success)
	require.NotNil(t, out.Order)
	assert.Equal(t, int64(2000), out.Order.Total)
	assert.Equal(t, int64(300), out.Order.ShippingCost)

	ck := responseCookie(rec, "cart")
	require.NotNil(t, ck)
	assert.Equal(t, -1, ck.MaxAge)
}

func TestCheckout_OutOfStockKeepsCookie(t *testing.T) {
	app := newTestApp(t)
	app.articles.On("FindByID", mock.Anything, articleA1).Return(linenDress(false), nil)

	rec := app.do(http.MethodPost, "/checkout", `{"customer":`+customerJSON+`}`, cartCookie(t, cart.LineItem{
		ArticleID: articleA1, Name: "Linen Dress", UnitPrice: 1000, SelectedSize: "M", Quantity: 2,
	}))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var out handler.CheckoutFailureResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.False(t, out.Success)
	require.Len(t, out.Errors, 1)
	assert.Contains(t, out.Errors[0], "out of stock")

	assert.Nil(t, responseCookie(rec, "cart"))
	app.repos.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCheckout_MalformedArticleIDIsLineError(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(http.MethodPost, "/checkout", `{"customer":`+customerJSON+`}`, cartCookie(t, cart.LineItem{
		ArticleID: "A1", Name: "Old Dress", UnitPrice: 1000, SelectedSize: "M", Quantity: 1,
	}))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), `"failure":"INVALID_LINES"`)
	assert.Contains(t, rec.Body.String(), "Please remove it from your cart.")
	app.repos.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCheckout_EmptyCart(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(http.MethodPost, "/checkout", `{"customer":`+customerJSON+`}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), `"failure":"EMPTY_CART"`)
}

// =====================
// catalog / admin
// =====================

func TestCatalog_ListArticles(t *testing.T) {
	app := newTestApp(t)
	app.articles.On("ListPublic", mock.Anything, repo.ArticleListQuery{Page: 1, Limit: 20}).
		Return([]model.Article{linenDress(true)}, int64(1), nil)

	rec := app.do(http.MethodGet, "/articles", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Linen Dress")

	rec = app.do(http.MethodGet, "/articles?page=x", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"invalid page"}`, rec.Body.String())
}

func TestAdmin_RequiresAdminToken(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(http.MethodGet, "/admin/orders", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/admin/orders", nil)
	req.Header.Set("Authorization", adminToken(t, "USER"))
	rec = httptest.NewRecorder()
	app.e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdmin_UpdateAvailability(t *testing.T) {
	app := newTestApp(t)
	app.articles.On("FindByID", mock.Anything, articleA1).Return(linenDress(true), nil)
	app.articles.On("UpdateAvailability", mock.Anything, articleA1, false, []string{"M"}).Return(nil)
	app.repos.audit.On("Create", mock.Anything, mock.Anything).Return(nil)

	req := httptest.NewRequest(http.MethodPut, "/admin/articles/"+articleA1+"/availability", strings.NewReader(`{"in_stock":false,"sizes":["M"]}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set("Authorization", adminToken(t, "ADMIN"))
	rec := httptest.NewRecorder()
	app.e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	app.articles.AssertExpectations(t)
	app.repos.audit.AssertExpectations(t)
}
