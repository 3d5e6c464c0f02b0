package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront/internal/config"
	"storefront/internal/metrics"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestRegisterRoutes(t *testing.T) {
	a := &App{
		Cfg:     config.Config{JWTSecret: "s", PaystackSecretKey: "sk"},
		Log:     zap.NewNop(),
		Metrics: metrics.NewNop(),
	}
	e := NewEcho(a)

	got := map[string]bool{}
	for _, r := range e.Routes() {
		got[r.Method+" "+r.Path] = true
	}
	for _, want := range []string{
		"GET /healthz",
		"GET /metrics",
		"GET /cart",
		"POST /cart",
		"GET /me/purchases",
		"POST /checkout/initialize",
		"POST /checkout/verify",
		"PATCH /discounts/apply",
		"PATCH /discounts/reset",
		"GET /discounts/current",
		"POST /admin/discounts",
		"GET /admin/discounts/:code",
		"GET /admin/audit-logs",
		"GET /receipts/:id",
		"POST /admin/orders/:id/fulfill",
		"PATCH /admin/transactions/:id/seen",
		"PATCH /admin/receipts/:id/seen",
		"POST /webhooks/paystack",
	} {
		assert.True(t, got[want], "route %s not registered", want)
	}

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/checkout/initialize", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
