package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"storefront/internal/usecase"
)

const DefaultBaseURL = "https://api.paystack.co"

// Paystack implements usecase.PaymentGateway over the Paystack REST API.
// Calls are bounded by the client timeout and never retried here.
type Paystack struct {
	baseURL   string
	secretKey string
	client    *http.Client
}

func NewPaystack(baseURL, secretKey string, timeout time.Duration) *Paystack {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Paystack{
		baseURL:   strings.TrimRight(baseURL, "/"),
		secretKey: secretKey,
		client:    &http.Client{Timeout: timeout},
	}
}

type envelope[T any] struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    *T     `json:"data"`
}

type initializeData struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

type verifyData struct {
	Reference string          `json:"reference"`
	Status    string          `json:"status"`
	Amount    int64           `json:"amount"`
	Currency  string          `json:"currency"`
	Metadata  json.RawMessage `json:"metadata"`
	Customer  struct {
		Email string `json:"email"`
	} `json:"customer"`
}

type checkoutMetadata struct {
	SessionID string `json:"session_id"`
}

func (p *Paystack) Initialize(ctx context.Context, req usecase.GatewayInitRequest) (usecase.GatewayInitResult, error) {
	body := map[string]any{
		"email":    req.Email,
		"amount":   strconv.FormatInt(req.AmountMinor, 10),
		"metadata": checkoutMetadata{SessionID: req.SessionID},
	}
	if req.CallbackURL != "" {
		body["callback_url"] = req.CallbackURL
	}
	if req.Currency != "" {
		body["currency"] = req.Currency
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return usecase.GatewayInitResult{}, err
	}

	var env envelope[initializeData]
	if err := p.do(ctx, http.MethodPost, "/transaction/initialize", bytes.NewReader(raw), &env); err != nil {
		return usecase.GatewayInitResult{}, fmt.Errorf("paystack initialize: %w", err)
	}
	if env.Data.AuthorizationURL == "" {
		return usecase.GatewayInitResult{}, errors.New("paystack initialize: empty authorization_url")
	}
	return usecase.GatewayInitResult{
		CheckoutURL: env.Data.AuthorizationURL,
		Reference:   env.Data.Reference,
	}, nil
}

func (p *Paystack) Verify(ctx context.Context, reference string) (usecase.GatewayVerification, error) {
	var env envelope[verifyData]
	path := "/transaction/verify/" + url.PathEscape(reference)
	if err := p.do(ctx, http.MethodGet, path, nil, &env); err != nil {
		return usecase.GatewayVerification{}, fmt.Errorf("paystack verify: %w", err)
	}

	d := env.Data
	ref := d.Reference
	if ref == "" {
		ref = reference
	}
	return usecase.GatewayVerification{
		Reference:          ref,
		PayerEmail:         strings.ToLower(strings.TrimSpace(d.Customer.Email)),
		ChargedAmountMinor: d.Amount,
		Currency:           d.Currency,
		Status:             d.Status,
		SessionID:          sessionIDFrom(d.Metadata),
	}, nil
}

// do sends the request and decodes a successful envelope into out. Transport
// errors, non-2xx answers, status:false and a missing data object are errors.
func (p *Paystack) do(ctx context.Context, method, path string, body io.Reader, out interface{ ok() error }) error {
	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+p.secretKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, truncate(raw, 200))
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return out.ok()
}

func (e *envelope[T]) ok() error {
	if !e.Status {
		if e.Message == "" {
			return errors.New("status false")
		}
		return fmt.Errorf("status false: %s", e.Message)
	}
	if e.Data == nil {
		return errors.New("response has no data")
	}
	return nil
}

// Paystack returns metadata either as an object or as a JSON-encoded string.
func sessionIDFrom(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var md checkoutMetadata
	if err := json.Unmarshal(raw, &md); err == nil {
		return md.SessionID
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil && s != "" {
		if err := json.Unmarshal([]byte(s), &md); err == nil {
			return md.SessionID
		}
	}
	return ""
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}

var _ usecase.PaymentGateway = (*Paystack)(nil)
