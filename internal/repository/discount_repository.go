package repository

import (
	"context"

	"storefront/internal/domain/model"
)

type DiscountRepository interface {
	FindByCode(ctx context.Context, code string) (model.Discount, error)
	Create(ctx context.Context, d model.Discount) (model.Discount, error)
	HasRedeemed(ctx context.Context, code string, userID string) (bool, error)
	// ErrDuplicate when the user already redeemed the code.
	RecordRedemption(ctx context.Context, code string, userID string) error
	// Single conditional UPDATE: current_use_count < usage_limit.
	IncrementUsageIfBelowLimit(ctx context.Context, code string) (bool, error)
	ListRedeemers(ctx context.Context, code string) ([]string, error)
}
