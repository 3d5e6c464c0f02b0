package repository

import (
	"context"

	"storefront/internal/domain/model"
)

type TransactionRepository interface {
	Create(ctx context.Context, t model.Transaction) error
	FindByID(ctx context.Context, id string) (model.Transaction, error)
	UpdateStatus(ctx context.Context, id string, status model.LedgerStatus) error
}

type ReceiptRepository interface {
	Create(ctx context.Context, r model.Receipt) error
	FindByID(ctx context.Context, id string) (model.Receipt, error)
	UpdateStatus(ctx context.Context, id string, status model.LedgerStatus) error
}

type OrderRepository interface {
	Create(ctx context.Context, o model.Order) error
	// Row lock for the fulfillment transaction.
	FindByIDForUpdate(ctx context.Context, id string) (model.Order, error)
	Delete(ctx context.Context, id string) error
}

type FulfilledRepository interface {
	Create(ctx context.Context, f model.Fulfilled) error
	FindByOrderID(ctx context.Context, orderID string) (model.Fulfilled, error)
}

type VerifiedTransactionRepository interface {
	FindByReference(ctx context.Context, reference string) (model.VerifiedTransaction, error)
	// ErrDuplicate when the reference is already recorded.
	Create(ctx context.Context, v model.VerifiedTransaction) error
}
