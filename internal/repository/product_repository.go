package repository

import (
	"context"
	"errors"

	"storefront/internal/domain/model"
)

var ErrNotFound = errors.New("not found")

// unique constraint hit
var ErrDuplicate = errors.New("duplicate")

// Catalog reads.
type ProductRepository interface {
	FindByID(ctx context.Context, id string) (model.Product, error)
}

// Restock credits keyed by order id.
type InventoryRepository interface {
	// applied=false when this order line was already credited.
	// ErrNotFound when the product no longer exists.
	CreditOnce(ctx context.Context, orderID string, productID string, qty int64) (applied bool, err error)
}
