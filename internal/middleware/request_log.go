package middleware

import (
	"strconv"
	"time"

	"storefront/internal/metrics"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const RequestIDHeader = "X-Request-ID"

// RequestLog writes one line per request and feeds the request metrics.
// The route label is the registered path, not the raw URL.
func RequestLog(logger *zap.Logger, m *metrics.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			reqID := c.Request().Header.Get(RequestIDHeader)
			if reqID == "" {
				reqID = uuid.NewString()
			}
			c.Response().Header().Set(RequestIDHeader, reqID)

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			status := c.Response().Status
			elapsed := time.Since(start)

			m.Requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
			m.LatencyMS.WithLabelValues(route).Observe(float64(elapsed.Milliseconds()))

			fields := []zap.Field{
				zap.String("request_id", reqID),
				zap.String("method", c.Request().Method),
				zap.String("route", route),
				zap.Int("status", status),
				zap.Duration("elapsed", elapsed),
			}
			if id, ok := c.Get(CtxUserIDKey).(string); ok {
				fields = append(fields, zap.String("user_id", id))
			}
			switch {
			case status >= 500:
				logger.Error("request", append(fields, zap.Error(err))...)
			case status >= 400:
				logger.Warn("request", fields...)
			default:
				logger.Info("request", fields...)
			}
			return nil
		}
	}
}
