package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"storefront/internal/config"
	"storefront/internal/domain/model"
	"storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

type FulfillmentService interface {
	Fulfill(ctx context.Context, actorID string, orderID string) (usecase.FulfillOutput, error)
}

type LedgerAdminService interface {
	MarkTransactionSeen(ctx context.Context, actorID string, id string) error
	MarkReceiptSeen(ctx context.Context, actorID string, id string) error
	ListAuditLogs(ctx context.Context, filter repository.AuditLogFilter) ([]model.AuditLog, error)
}

// Operator routes under /admin: fulfillment and ledger status.
type AdminOrderHandler struct {
	fulfillment FulfillmentService
	ledger      LedgerAdminService
}

// DI
func NewAdminOrderHandler(fulfillment FulfillmentService, ledger LedgerAdminService) *AdminOrderHandler {
	return &AdminOrderHandler{fulfillment: fulfillment, ledger: ledger}
}

// adminを登録
func (h *AdminOrderHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	admin := e.Group("/admin")
	admin.Use(middleware.AuthJWT(cfg))
	admin.Use(middleware.KnownUserGuard(userRepo))
	admin.Use(middleware.AdminRoleGuard())

	admin.POST("/orders/:id/fulfill", h.fulfill)
	admin.PATCH("/transactions/:id/seen", h.markTransactionSeen)
	admin.PATCH("/receipts/:id/seen", h.markReceiptSeen)
	admin.GET("/audit-logs", h.listAuditLogs)
}

func (h *AdminOrderHandler) fulfill(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	out, err := h.fulfillment.Fulfill(c.Request().Context(), adminID, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *AdminOrderHandler) markTransactionSeen(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	if err := h.ledger.MarkTransactionSeen(c.Request().Context(), adminID, c.Param("id")); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "updated"})
}

func (h *AdminOrderHandler) markReceiptSeen(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	if err := h.ledger.MarkReceiptSeen(c.Request().Context(), adminID, c.Param("id")); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "updated"})
}

func (h *AdminOrderHandler) listAuditLogs(c echo.Context) error {
	var filter repository.AuditLogFilter

	if v := c.QueryParam("action"); v != "" {
		a := model.AuditAction(v)
		filter.Action = &a
	}
	if v := c.QueryParam("resource_type"); v != "" {
		rt := model.AuditResourceType(v)
		filter.ResourceType = &rt
	}
	if v := c.QueryParam("resource_id"); v != "" {
		filter.ResourceID = &v
	}
	if v := c.QueryParam("since"); v != "" {
		tm, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return badRequest(c, "invalid since")
		}
		filter.Since = &tm
	}
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return badRequest(c, "invalid limit")
		}
		filter.Limit = l
	}

	out, err := h.ledger.ListAuditLogs(c.Request().Context(), filter)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}
