package repository

import "context"

// Repositories bound to one database transaction.
type TxRepos interface {
	Users() UserRepository
	Carts() CartRepository
	Purchases() PurchaseLineRepository
	Products() ProductRepository
	Inventory() InventoryRepository
	Discounts() DiscountRepository
	Sessions() CheckoutSessionRepository
	Transactions() TransactionRepository
	Receipts() ReceiptRepository
	Orders() OrderRepository
	Fulfilled() FulfilledRepository
	Verified() VerifiedTransactionRepository
	Outbox() OutboxRepository
	AuditLogs() AuditLogRepository
}

// Hides begin/commit/rollback from the usecases.
type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(r TxRepos) error) error
}
