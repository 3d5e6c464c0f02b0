package handler

import (
	"context"
	"net/http"

	"storefront/internal/config"
	"storefront/internal/domain/model"
	"storefront/internal/middleware"
	"storefront/internal/repository"

	"github.com/labstack/echo/v4"
)

type ReceiptService interface {
	GetReceipt(ctx context.Context, userID string, receiptID string) (model.Receipt, error)
}

type ReceiptHandler struct {
	uc ReceiptService
}

// DIコンストラクタ
func NewReceiptHandler(uc ReceiptService) *ReceiptHandler {
	return &ReceiptHandler{uc: uc}
}

func (h *ReceiptHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	g := e.Group("/receipts")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.KnownUserGuard(userRepo))

	g.GET("/:id", h.get)
}

func (h *ReceiptHandler) get(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	r, err := h.uc.GetReceipt(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, r)
}
