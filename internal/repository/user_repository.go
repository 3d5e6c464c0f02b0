package repository

import (
	"context"

	"storefront/internal/domain/model"
)

// The slice of the user directory the pipeline uses.
type UserRepository interface {
	FindByID(ctx context.Context, userID string) (model.User, error)
	// code may be model.NoDiscountCode.
	SetDiscountCode(ctx context.Context, userID string, code string) error
}
