package handler

import (
	"context"
	"net/http"

	"storefront/internal/config"
	"storefront/internal/domain/model"
	"storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type DiscountService interface {
	Apply(ctx context.Context, userID string, code string) (usecase.ApplyDiscountOutput, error)
	Reset(ctx context.Context, userID string) error
	Current(ctx context.Context, userID string) (usecase.CurrentDiscountOutput, error)
	Create(ctx context.Context, actorID string, in usecase.CreateDiscountInput) (model.Discount, error)
	Detail(ctx context.Context, code string) (usecase.DiscountDetail, error)
}

type DiscountHandler struct {
	uc DiscountService
}

func NewDiscountHandler(uc DiscountService) *DiscountHandler {
	return &DiscountHandler{uc: uc}
}

type ApplyDiscountRequest struct {
	Code string `json:"code"`
}

type CreateDiscountRequest struct {
	Code       string          `json:"code"`
	Percentage decimal.Decimal `json:"percentage"`
	Limit      int64           `json:"limit"`
}

// /discounts と /admin/discounts を登録
func (h *DiscountHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	g := e.Group("/discounts")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.KnownUserGuard(userRepo))

	g.PATCH("/apply", h.apply)
	g.PATCH("/reset", h.reset)
	g.GET("/current", h.current)

	admin := e.Group("/admin/discounts")
	admin.Use(middleware.AuthJWT(cfg))
	admin.Use(middleware.KnownUserGuard(userRepo))
	admin.Use(middleware.AdminRoleGuard())

	admin.POST("", h.create)
	admin.GET("/:code", h.detail)
}

func (h *DiscountHandler) apply(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req ApplyDiscountRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	out, err := h.uc.Apply(c.Request().Context(), userID, req.Code)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *DiscountHandler) reset(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	if err := h.uc.Reset(c.Request().Context(), userID); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "discount removed"})
}

func (h *DiscountHandler) current(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	out, err := h.uc.Current(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *DiscountHandler) create(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req CreateDiscountRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	d, err := h.uc.Create(c.Request().Context(), adminID, usecase.CreateDiscountInput{
		Code:       req.Code,
		Percentage: req.Percentage,
		Limit:      req.Limit,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, d)
}

func (h *DiscountHandler) detail(c echo.Context) error {
	out, err := h.uc.Detail(c.Request().Context(), c.Param("code"))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}
