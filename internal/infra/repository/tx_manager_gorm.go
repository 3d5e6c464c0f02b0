package repository

import (
	"context"

	repo "storefront/internal/repository"

	"gorm.io/gorm"
)

type txReposGorm struct {
	users        repo.UserRepository
	carts        repo.CartRepository
	purchases    repo.PurchaseLineRepository
	products     repo.ProductRepository
	inventory    repo.InventoryRepository
	discounts    repo.DiscountRepository
	sessions     repo.CheckoutSessionRepository
	transactions repo.TransactionRepository
	receipts     repo.ReceiptRepository
	orders       repo.OrderRepository
	fulfilled    repo.FulfilledRepository
	verified     repo.VerifiedTransactionRepository
	outbox       repo.OutboxRepository
	auditLogs    repo.AuditLogRepository
}

func (r *txReposGorm) Users() repo.UserRepository                   { return r.users }
func (r *txReposGorm) Carts() repo.CartRepository                   { return r.carts }
func (r *txReposGorm) Purchases() repo.PurchaseLineRepository       { return r.purchases }
func (r *txReposGorm) Products() repo.ProductRepository             { return r.products }
func (r *txReposGorm) Inventory() repo.InventoryRepository          { return r.inventory }
func (r *txReposGorm) Discounts() repo.DiscountRepository           { return r.discounts }
func (r *txReposGorm) Sessions() repo.CheckoutSessionRepository     { return r.sessions }
func (r *txReposGorm) Transactions() repo.TransactionRepository     { return r.transactions }
func (r *txReposGorm) Receipts() repo.ReceiptRepository             { return r.receipts }
func (r *txReposGorm) Orders() repo.OrderRepository                 { return r.orders }
func (r *txReposGorm) Fulfilled() repo.FulfilledRepository          { return r.fulfilled }
func (r *txReposGorm) Verified() repo.VerifiedTransactionRepository { return r.verified }
func (r *txReposGorm) Outbox() repo.OutboxRepository                { return r.outbox }
func (r *txReposGorm) AuditLogs() repo.AuditLogRepository           { return r.auditLogs }

// NewRepos binds every repository to db. Passing a *gorm.DB that is already
// inside a transaction yields transaction-scoped repositories.
func NewRepos(db *gorm.DB) repo.TxRepos {
	return &txReposGorm{
		users:        NewUserGormRepository(db),
		carts:        NewCartGormRepository(db),
		purchases:    NewPurchaseLineGormRepository(db),
		products:     NewProductGormRepository(db),
		inventory:    NewInventoryGormRepository(db),
		discounts:    NewDiscountGormRepository(db),
		sessions:     NewCheckoutSessionGormRepository(db),
		transactions: NewTransactionGormRepository(db),
		receipts:     NewReceiptGormRepository(db),
		orders:       NewOrderGormRepository(db),
		fulfilled:    NewFulfilledGormRepository(db),
		verified:     NewVerifiedTransactionGormRepository(db),
		outbox:       NewOutboxGormRepository(db),
		auditLogs:    NewAuditLogGormRepository(db),
	}
}

type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(db *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: db}
}

func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// rebuild the repos on the tx handle
		return fn(NewRepos(tx))
	})
}
