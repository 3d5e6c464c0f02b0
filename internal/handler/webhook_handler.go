package handler

import (
	"net/http"
	"strings"

	"storefront/internal/middleware"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const eventChargeSuccess = "charge.success"

// Paystack calls this after a charge; it verifies the reference the same way
// the buyer's own verify call does.
type WebhookHandler struct {
	checkout  CheckoutService
	secretKey string
	log       *zap.Logger
}

func NewWebhookHandler(checkout CheckoutService, secretKey string, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{checkout: checkout, secretKey: secretKey, log: logger.With(zap.String("component", "webhook"))}
}

type PaystackEvent struct {
	Event string `json:"event"`
	Data  struct {
		Reference string `json:"reference"`
	} `json:"data"`
}

func (h *WebhookHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/webhooks/paystack", h.paystack, middleware.PaystackSignature(h.secretKey))
}

func (h *WebhookHandler) paystack(c echo.Context) error {
	var ev PaystackEvent
	if err := c.Bind(&ev); err != nil {
		return badRequest(c, "invalid body")
	}

	ref := strings.TrimSpace(ev.Data.Reference)
	if ev.Event != eventChargeSuccess || ref == "" {
		return c.JSON(http.StatusOK, SuccessResponse{Message: "ignored"})
	}

	out, err := h.checkout.VerifyCheckout(c.Request().Context(), "", ref)
	if err != nil {
		ae, ok := usecase.AsAppError(err)
		// 5xx makes Paystack retry; anything else would fail the same way again
		if !ok || ae.Status() >= http.StatusInternalServerError {
			h.log.Error("webhook verification failed", zap.String("reference", ref), zap.Error(err))
			return writeError(c, err)
		}
		h.log.Warn("webhook verification rejected",
			zap.String("reference", ref),
			zap.String("reason", ae.Reason),
		)
		return c.JSON(http.StatusOK, SuccessResponse{Message: "ignored"})
	}

	h.log.Info("webhook verified",
		zap.String("reference", ref),
		zap.String("receipt_id", out.ReceiptID),
		zap.Bool("already_verified", out.AlreadyVerified),
	)
	return c.JSON(http.StatusOK, SuccessResponse{Message: "verified"})
}
