package middleware

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

const PaystackSignatureHeader = "x-paystack-signature"

// 1 MiB is far above any charge event.
const maxWebhookBody = 1 << 20

// PaystackSignature verifies the HMAC-SHA512 of the raw body against the
// x-paystack-signature header. The body is put back for the handler.
func PaystackSignature(secretKey string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			provided := strings.TrimSpace(c.Request().Header.Get(PaystackSignatureHeader))
			if provided == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("missing webhook signature"))
			}

			body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody))
			if err != nil {
				return c.JSON(http.StatusBadRequest, errorJSON("invalid body"))
			}
			c.Request().Body = io.NopCloser(bytes.NewReader(body))

			want, err := hex.DecodeString(strings.ToLower(provided))
			if err != nil || !hmac.Equal(want, SignPaystack(secretKey, body)) {
				return c.JSON(http.StatusUnauthorized, errorJSON("invalid webhook signature"))
			}

			return next(c)
		}
	}
}

func SignPaystack(secretKey string, body []byte) []byte {
	mac := hmac.New(sha512.New, []byte(secretKey))
	mac.Write(body)
	return mac.Sum(nil)
}
