package handler

import (
	"net/http"

	"juneberry/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /cart（ログイン不要、状態は Cookie のみ）
type CartHandler struct {
	uc      *usecase.CartUsecase
	cookies *CartCookies
}

func NewCartHandler(uc *usecase.CartUsecase, cookies *CartCookies) *CartHandler {
	return &CartHandler{uc: uc, cookies: cookies}
}

type AddCartRequest struct {
	ArticleID string `json:"article_id"`
	Size      string `json:"size"`
	Quantity  int64  `json:"quantity"`
}

type UpdateCartItemRequest struct {
	ArticleID string `json:"article_id"`
	Size      string `json:"size"`
	Quantity  int64  `json:"quantity"`
}

type RemoveCartItemRequest struct {
	ArticleID string `json:"article_id" query:"article_id"`
	Size      string `json:"size" query:"size"`
}

func (h *CartHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/cart")

	g.GET("", h.get)
	g.DELETE("", h.clear)
	g.POST("/items", h.add)
	g.PATCH("/items", h.update)
	g.DELETE("/items", h.remove)
}

func (h *CartHandler) get(c echo.Context) error {
	store := h.cookies.Load(c)
	return c.JSON(http.StatusOK, h.uc.View(store))
}

func (h *CartHandler) add(c echo.Context) error {
	var req AddCartRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	store := h.cookies.Load(c)
	out, err := h.uc.Add(c.Request().Context(), store, usecase.AddCartInput{
		ArticleID: req.ArticleID,
		Size:      req.Size,
		Quantity:  req.Quantity,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) update(c echo.Context) error {
	var req UpdateCartItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	store := h.cookies.Load(c)
	out, err := h.uc.UpdateQuantity(store, usecase.UpdateCartItemInput{
		ArticleID: req.ArticleID,
		Size:      req.Size,
		Quantity:  req.Quantity,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) remove(c echo.Context) error {
	var req RemoveCartItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	store := h.cookies.Load(c)
	out, err := h.uc.Remove(store, req.ArticleID, req.Size)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) clear(c echo.Context) error {
	store := h.cookies.Load(c)
	out := h.uc.Clear(store)
	return c.JSON(http.StatusOK, out)
}
