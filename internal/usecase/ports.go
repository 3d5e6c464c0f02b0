package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// PaymentGateway is the card processor. Implementations must bound every call
// with a timeout and must not retry on their own.
type PaymentGateway interface {
	Initialize(ctx context.Context, req GatewayInitRequest) (GatewayInitResult, error)
	Verify(ctx context.Context, reference string) (GatewayVerification, error)
}

type GatewayInitRequest struct {
	Email       string
	AmountMinor int64
	// echoed back as metadata on verify
	SessionID   string
	CallbackURL string
	// empty leaves the merchant default
	Currency string
}

type GatewayInitResult struct {
	CheckoutURL string
	Reference   string
}

const GatewayStatusSuccess = "success"

type GatewayVerification struct {
	Reference          string
	PayerEmail         string
	ChargedAmountMinor int64
	Currency           string
	Status             string
	SessionID          string
}

func (v GatewayVerification) Succeeded() bool {
	return v.Status == GatewayStatusSuccess
}

type Message struct {
	From    string
	To      string
	Subject string
	Body    string
}

type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

type IDGenerator interface {
	NewID() string
}

type Clock interface {
	Now() time.Time
}

type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string { return uuid.NewString() }

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }
