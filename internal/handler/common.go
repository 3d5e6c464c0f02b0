package handler

import (
	"net/http"

	"storefront/internal/middleware"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if ae, ok := usecase.AsAppError(err); ok {
		return c.JSON(ae.Status(), ErrorResponse{Error: ae.Message, Reason: ae.Reason})
	}

	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg, Reason: usecase.ReasonInvalidInput})
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Reason: usecase.ReasonUnauthorized})
}

func getUserIDFromContext(c echo.Context) (string, bool) {
	id, ok := c.Get(middleware.CtxUserIDKey).(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}
