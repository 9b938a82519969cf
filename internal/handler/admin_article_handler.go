package handler

import (
	"net/http"

	"juneberry/internal/config"
	"juneberry/internal/middleware"
	"juneberry/internal/usecase"

	"github.com/labstack/echo/v4"
)

type AdminArticleHandler struct {
	uc *usecase.AdminArticleUsecase
}

func NewAdminArticleHandler(uc *usecase.AdminArticleUsecase) *AdminArticleHandler {
	return &AdminArticleHandler{uc: uc}
}

type AvailabilityUpdateRequest struct {
	InStock *bool    `json:"in_stock"`
	Sizes   []string `json:"sizes"`
}

func (h *AdminArticleHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	admin := e.Group("/admin")
	admin.Use(middleware.AuthJWT(cfg))
	admin.Use(middleware.AdminRoleGuard())

	admin.PUT("/articles/:id/availability", h.updateAvailability)
	admin.GET("/audit-logs", h.auditLogs)
}

func (h *AdminArticleHandler) updateAvailability(c echo.Context) error {
	var req AvailabilityUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if req.InStock == nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "in_stock required"})
	}

	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	a, err := h.uc.UpdateAvailability(c.Request().Context(), adminID, c.Param("id"), usecase.AdminUpdateAvailabilityInput{
		InStock: *req.InStock,
		Sizes:   req.Sizes,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *AdminArticleHandler) auditLogs(c echo.Context) error {
	limit, ok := queryInt(c, "limit", 50)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
	}
	offset, ok := queryInt(c, "offset", 0)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid offset"})
	}

	logs, err := h.uc.ListAuditLogs(c.Request().Context(), usecase.AdminAuditLogQuery{
		Action:       c.QueryParam("action"),
		ResourceType: c.QueryParam("resource_type"),
		ResourceID:   c.QueryParam("resource_id"),
		Limit:        limit,
		Offset:       offset,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, logs)
}
