package handler

import (
	"net/http"

	"juneberry/internal/usecase"

	"github.com/labstack/echo/v4"
)

type CheckoutHandler struct {
	uc      *usecase.CheckoutUsecase
	cart    *usecase.CartUsecase
	cookies *CartCookies
}

func NewCheckoutHandler(uc *usecase.CheckoutUsecase, cart *usecase.CartUsecase, cookies *CartCookies) *CheckoutHandler {
	return &CheckoutHandler{uc: uc, cart: cart, cookies: cookies}
}

type CheckoutRequest struct {
	Customer      usecase.CustomerInfo `json:"customer"`
	ComputedTotal int64                `json:"computed_total"`
}

// 注文フォームの初期表示用
type CheckoutFormResponse struct {
	Cart              usecase.CartResponse `json:"cart"`
	DomesticCountry   string               `json:"domestic_country"`
	DomesticCost      int64                `json:"domestic_shipping_cost"`
	InternationalNote string               `json:"international_shipping_note"`
}

type CheckoutFailureResponse struct {
	Success bool     `json:"success"`
	Failure string   `json:"failure"`
	Errors  []string `json:"errors"`
}

type CheckoutSuccessResponse struct {
	Success bool                 `json:"success"`
	Order   *usecase.OrderOutput `json:"order"`
}

func (h *CheckoutHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/checkout", h.form)
	e.POST("/checkout", h.submit)
}

func (h *CheckoutHandler) form(c echo.Context) error {
	store := h.cookies.Load(c)
	policy := h.uc.Shipping()

	return c.JSON(http.StatusOK, CheckoutFormResponse{
		Cart:              h.cart.View(store),
		DomesticCountry:   policy.DomesticCountry,
		DomesticCost:      policy.DomesticCost,
		InternationalNote: usecase.ShippingNoteContactUs,
	})
}

func (h *CheckoutHandler) submit(c echo.Context) error {
	var req CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	//二重送信防止キーはヘッダーから受け取る（bodyには入れない）
	idemKey := c.Request().Header.Get("X-Idempotency-Key")

	// Cookie はここでは書き換えない（失敗時はそのまま残す）
	store := h.cookies.Load(c)

	res := h.uc.Checkout(c.Request().Context(), usecase.CheckoutInput{
		Customer:       req.Customer,
		Lines:          store.Items(),
		ComputedTotal:  req.ComputedTotal,
		IdempotencyKey: idemKey,
	})
	if !res.Success {
		status := http.StatusUnprocessableEntity
		if res.Failure == usecase.FailureOrderCreation {
			status = http.StatusInternalServerError
		}
		return c.JSON(status, CheckoutFailureResponse{
			Success: false,
			Failure: string(res.Failure),
			Errors:  res.Errors,
		})
	}

	h.cookies.Clear(c)
	return c.JSON(http.StatusOK, CheckoutSuccessResponse{Success: true, Order: res.Order})
}
