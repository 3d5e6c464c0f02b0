package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaystackInitialize(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/transaction/initialize", r.URL.Path)
		assert.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		_, _ = w.Write([]byte(`{"status":true,"message":"Authorization URL created","data":{"authorization_url":"https://checkout.paystack.com/abc","access_code":"abc","reference":"ref-1"}}`))
	}))
	defer srv.Close()

	p := NewPaystack(srv.URL, "sk_test", time.Second)
	res, err := p.Initialize(context.Background(), usecase.GatewayInitRequest{
		Email:       "ada@example.com",
		AmountMinor: 375190000,
		SessionID:   "sess-1",
		CallbackURL: "https://shop.example.com/cb",
		Currency:    "NGN",
	})
	require.NoError(t, err)

	assert.Equal(t, "https://checkout.paystack.com/abc", res.CheckoutURL)
	assert.Equal(t, "ref-1", res.Reference)
	assert.Equal(t, "ada@example.com", got["email"])
	assert.Equal(t, "375190000", got["amount"])
	assert.Equal(t, "https://shop.example.com/cb", got["callback_url"])
	assert.Equal(t, "NGN", got["currency"])
	assert.Equal(t, map[string]any{"session_id": "sess-1"}, got["metadata"])
}

func TestPaystackVerify(t *testing.T) {
	tests := []struct {
		name     string
		metadata string
		want     string
	}{
		{"object metadata", `{"session_id":"sess-1"}`, "sess-1"},
		{"string metadata", `"{\"session_id\":\"sess-2\"}"`, "sess-2"},
		{"empty string metadata", `""`, ""},
		{"null metadata", `null`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				assert.Equal(t, "/transaction/verify/ref-1", r.URL.Path)
				_, _ = w.Write([]byte(`{"status":true,"message":"Verification successful","data":{
					"reference":"ref-1","status":"success","amount":220700,"currency":"NGN",
					"metadata":` + tt.metadata + `,"customer":{"email":"Ada@Example.com"}}}`))
			}))
			defer srv.Close()

			v, err := NewPaystack(srv.URL, "sk_test", time.Second).Verify(context.Background(), "ref-1")
			require.NoError(t, err)

			assert.True(t, v.Succeeded())
			assert.Equal(t, int64(220700), v.ChargedAmountMinor)
			assert.Equal(t, "ada@example.com", v.PayerEmail)
			assert.Equal(t, "NGN", v.Currency)
			assert.Equal(t, tt.want, v.SessionID)
		})
	}
}

func TestPaystackErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"non 2xx", http.StatusUnauthorized, `{"status":false,"message":"Invalid key"}`},
		{"status false", http.StatusOK, `{"status":false,"message":"Transaction reference not found"}`},
		{"missing data", http.StatusOK, `{"status":true,"message":"ok"}`},
		{"garbage", http.StatusOK, `<html>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewPaystack(srv.URL, "sk_test", time.Second).Verify(context.Background(), "ref-1")
			assert.Error(t, err)
		})
	}
}

func TestPaystackTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	_, err := NewPaystack(srv.URL, "sk_test", 20*time.Millisecond).Initialize(context.Background(), usecase.GatewayInitRequest{Email: "a@b.c", AmountMinor: 1})
	assert.Error(t, err)
}
