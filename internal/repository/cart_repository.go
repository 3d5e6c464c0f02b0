package repository

import (
	"context"

	"storefront/internal/domain/model"
)

type CartRepository interface {
	ListByUserID(ctx context.Context, userID string) ([]model.CartItem, error)
	// Adds line.Amount to the existing row for the same product, or inserts it.
	AddLine(ctx context.Context, userID string, line model.CartLine) error
	// Subtracts each line's amount and drops rows that reach zero.
	RemoveLines(ctx context.Context, userID string, lines []model.CartLine) error
}

// pending / history lists
type PurchaseLineRepository interface {
	AddPending(ctx context.Context, userID string, orderID string, lines []model.CartLine) error
	// Moves the order's pending lines to history. Returns how many moved.
	MoveToHistory(ctx context.Context, orderID string) (int64, error)
	ListByUser(ctx context.Context, userID string, state model.PurchaseState) ([]model.PurchaseLine, error)
}
