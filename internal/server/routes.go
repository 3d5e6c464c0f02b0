package server

import (
	"net/http"

	"storefront/internal/handler"
	"storefront/internal/middleware"

	"github.com/labstack/echo/v4"
)

func NewEcho(a *App) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.RequestLog(a.Log, a.Metrics))

	RegisterRoutes(e, a)
	return e
}

func RegisterRoutes(e *echo.Echo, a *App) {
	e.GET("/healthz", func(c echo.Context) error {
		sqlDB, err := a.DB.DB()
		if err != nil || sqlDB.PingContext(c.Request().Context()) != nil {
			return c.JSON(http.StatusServiceUnavailable, handler.ErrorResponse{Error: "database unavailable"})
		}
		return c.JSON(http.StatusOK, handler.SuccessResponse{Message: "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(a.Metrics.Handler()))

	handler.NewCartHandler(a.Cart).RegisterRoutes(e, a.Cfg, a.Users)
	handler.NewCheckoutHandler(a.Checkout).RegisterRoutes(e, a.Cfg, a.Users)
	handler.NewDiscountHandler(a.Discount).RegisterRoutes(e, a.Cfg, a.Users)
	handler.NewReceiptHandler(a.Ledger).RegisterRoutes(e, a.Cfg, a.Users)
	handler.NewAdminOrderHandler(a.Fulfillment, a.Ledger).RegisterRoutes(e, a.Cfg, a.Users)
	handler.NewWebhookHandler(a.Checkout, a.Cfg.PaystackSecretKey, a.Log).RegisterRoutes(e)
}
