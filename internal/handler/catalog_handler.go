package handler

import (
	"net/http"

	"juneberry/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 公開カタログ
type CatalogHandler struct {
	uc *usecase.CatalogUsecase
}

// DI
func NewCatalogHandler(uc *usecase.CatalogUsecase) *CatalogHandler {
	return &CatalogHandler{uc: uc}
}

func (h *CatalogHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/articles", h.list)
	e.GET("/articles/:id", h.detail)
	e.GET("/live-sessions", h.liveSessions)
}

func (h *CatalogHandler) list(c echo.Context) error {
	// page（default 1）
	page, ok := queryInt(c, "page", 1)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid page"})
	}

	// limit（default 20）
	limit, ok := queryInt(c, "limit", 20)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
	}

	out, err := h.uc.ListArticles(c.Request().Context(), usecase.ListArticlesInput{
		Page:          page,
		Limit:         limit,
		LiveSessionID: c.QueryParam("live_session"),
		Sort:          c.QueryParam("sort"),
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *CatalogHandler) detail(c echo.Context) error {
	a, err := h.uc.GetArticle(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *CatalogHandler) liveSessions(c echo.Context) error {
	out, err := h.uc.ListLiveSessions(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
