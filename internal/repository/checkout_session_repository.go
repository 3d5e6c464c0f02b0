package repository

import (
	"context"
	"time"

	"storefront/internal/domain/model"
)

type CheckoutSessionRepository interface {
	Create(ctx context.Context, s model.CheckoutSession) error
	FindByID(ctx context.Context, id string) (model.CheckoutSession, error)
	FindLatestByEmail(ctx context.Context, email string) (model.CheckoutSession, error)
	// STAGED/VERIFYING -> VERIFYING with the gateway reference.
	MarkVerifying(ctx context.Context, id string, reference string, now time.Time) error
	Delete(ctx context.Context, id string) error
	DeleteExpiredStaged(ctx context.Context, now time.Time) (int64, error)
	ListVerifyingBefore(ctx context.Context, before time.Time, limit int) ([]model.CheckoutSession, error)
}
