package handler

import (
	"context"
	"net/http"
	"strings"

	"storefront/internal/config"
	"storefront/internal/domain/model"
	"storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

type CheckoutService interface {
	InitializeCheckout(ctx context.Context, userID string, in usecase.InitializeCheckoutInput) (usecase.InitializeCheckoutOutput, error)
	VerifyCheckout(ctx context.Context, userID string, reference string) (usecase.VerifyCheckoutOutput, error)
}

type CheckoutHandler struct {
	uc CheckoutService
}

// DI
func NewCheckoutHandler(uc CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{uc: uc}
}

type InitializeCheckoutRequest struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Address       string `json:"address"`
	PhoneNumber   string `json:"phoneNumber"`
	City          string `json:"city"`
	State         string `json:"state"`
	PostalCode    string `json:"postalCode"`
	PaymentMethod string `json:"paymentMethod"`
}

type VerifyCheckoutRequest struct {
	Reference string `json:"reference"`
}

// /checkout/initialize, /checkout/verify を登録
func (h *CheckoutHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	g := e.Group("/checkout")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.KnownUserGuard(userRepo))

	g.POST("/initialize", h.initialize)
	g.POST("/verify", h.verify)
}

func (h *CheckoutHandler) initialize(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req InitializeCheckoutRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	out, err := h.uc.InitializeCheckout(c.Request().Context(), userID, usecase.InitializeCheckoutInput{
		Shipping: model.ShippingDetails{
			Name:        req.Name,
			Email:       req.Email,
			Address:     req.Address,
			PhoneNumber: req.PhoneNumber,
			City:        req.City,
			State:       req.State,
			PostalCode:  req.PostalCode,
		},
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, out)
}

// The reference comes in the body, or as the query string Paystack appends
// to the callback URL (?reference= / ?trxref=).
func (h *CheckoutHandler) verify(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req VerifyCheckoutRequest
	if c.Request().ContentLength != 0 {
		if err := c.Bind(&req); err != nil {
			return badRequest(c, "invalid body")
		}
	}
	ref := strings.TrimSpace(req.Reference)
	if ref == "" {
		ref = strings.TrimSpace(c.QueryParam("reference"))
	}
	if ref == "" {
		ref = strings.TrimSpace(c.QueryParam("trxref"))
	}

	out, err := h.uc.VerifyCheckout(c.Request().Context(), userID, ref)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}
