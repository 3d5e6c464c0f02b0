package handler

import (
	"context"
	"net/http"

	"storefront/internal/config"
	"storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

type CartService interface {
	GetCart(ctx context.Context, userID string) (usecase.CartResponse, error)
	AddToCart(ctx context.Context, userID string, in usecase.AddCartInput) (usecase.CartResponse, error)
	ListPurchases(ctx context.Context, userID string, state string) (usecase.PurchasesResponse, error)
}

// /cart and the buyer's pending/history lines
type CartHandler struct {
	uc CartService
}

// DI
func NewCartHandler(uc CartService) *CartHandler {
	return &CartHandler{uc: uc}
}

type AddCartRequest struct {
	ProductID string `json:"productId"`
	Quantity  int64  `json:"quantity"`
}

// /cart, /me/purchases を登録
func (h *CartHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	g := e.Group("/cart")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.KnownUserGuard(userRepo))

	g.GET("", h.getCart)
	g.POST("", h.addToCart)

	me := e.Group("/me")
	me.Use(middleware.AuthJWT(cfg))
	me.Use(middleware.KnownUserGuard(userRepo))

	me.GET("/purchases", h.listPurchases)
}

func (h *CartHandler) getCart(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	out, err := h.uc.GetCart(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) addToCart(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req AddCartRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	out, err := h.uc.AddToCart(c.Request().Context(), userID, usecase.AddCartInput{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) listPurchases(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	out, err := h.uc.ListPurchases(c.Request().Context(), userID, c.QueryParam("state"))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}
