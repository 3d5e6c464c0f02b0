package usecase_test

import (
	"context"
	"errors"
	"testing"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
	"storefront/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// Gateway / Notifier
// =====================

type GatewayMock struct{ mock.Mock }

func (m *GatewayMock) Initialize(ctx context.Context, req usecase.GatewayInitRequest) (usecase.GatewayInitResult, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(usecase.GatewayInitResult)
	return res, args.Error(1)
}

func (m *GatewayMock) Verify(ctx context.Context, reference string) (usecase.GatewayVerification, error) {
	args := m.Called(ctx, reference)
	v, _ := args.Get(0).(usecase.GatewayVerification)
	return v, args.Error(1)
}

type NotifierMock struct{ mock.Mock }

func (m *NotifierMock) Send(ctx context.Context, msg usecase.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

// =====================
// TxManager / TxRepos mocks
// =====================

// TxManagerMock runs fn against fixed repos.
type TxManagerMock struct {
	mock.Mock
	Repos repo.TxRepos
}

func (m *TxManagerMock) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	m.Called(ctx)
	return fn(m.Repos)
}

// Only the repositories a test sets are non-nil.
type TxReposMock struct {
	orders    repo.OrderRepository
	fulfilled repo.FulfilledRepository
	purchases repo.PurchaseLineRepository
	inventory repo.InventoryRepository
	outbox    repo.OutboxRepository
	audit     repo.AuditLogRepository
}

func (r *TxReposMock) Users() repo.UserRepository                   { return nil }
func (r *TxReposMock) Carts() repo.CartRepository                   { return nil }
func (r *TxReposMock) Purchases() repo.PurchaseLineRepository       { return r.purchases }
func (r *TxReposMock) Products() repo.ProductRepository             { return nil }
func (r *TxReposMock) Inventory() repo.InventoryRepository          { return r.inventory }
func (r *TxReposMock) Discounts() repo.DiscountRepository           { return nil }
func (r *TxReposMock) Sessions() repo.CheckoutSessionRepository     { return nil }
func (r *TxReposMock) Transactions() repo.TransactionRepository     { return nil }
func (r *TxReposMock) Receipts() repo.ReceiptRepository             { return nil }
func (r *TxReposMock) Orders() repo.OrderRepository                 { return r.orders }
func (r *TxReposMock) Fulfilled() repo.FulfilledRepository          { return r.fulfilled }
func (r *TxReposMock) Verified() repo.VerifiedTransactionRepository { return nil }
func (r *TxReposMock) Outbox() repo.OutboxRepository                { return r.outbox }
func (r *TxReposMock) AuditLogs() repo.AuditLogRepository           { return r.audit }

// =====================
// Repository mocks
// =====================

type OrderRepoMock struct{ mock.Mock }

func (m *OrderRepoMock) Create(ctx context.Context, o model.Order) error {
	panic("not used in fulfillment tests")
}

func (m *OrderRepoMock) FindByIDForUpdate(ctx context.Context, id string) (model.Order, error) {
	args := m.Called(ctx, id)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type FulfilledRepoMock struct{ mock.Mock }

func (m *FulfilledRepoMock) Create(ctx context.Context, f model.Fulfilled) error {
	args := m.Called(ctx, f)
	return args.Error(0)
}

func (m *FulfilledRepoMock) FindByOrderID(ctx context.Context, orderID string) (model.Fulfilled, error) {
	args := m.Called(ctx, orderID)
	f, _ := args.Get(0).(model.Fulfilled)
	return f, args.Error(1)
}

type PurchaseRepoMock struct{ mock.Mock }

func (m *PurchaseRepoMock) AddPending(ctx context.Context, userID string, orderID string, lines []model.CartLine) error {
	panic("not used in fulfillment tests")
}

func (m *PurchaseRepoMock) MoveToHistory(ctx context.Context, orderID string) (int64, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *PurchaseRepoMock) ListByUser(ctx context.Context, userID string, state model.PurchaseState) ([]model.PurchaseLine, error) {
	panic("not used in fulfillment tests")
}

type InventoryRepoMock struct{ mock.Mock }

func (m *InventoryRepoMock) CreditOnce(ctx context.Context, orderID string, productID string, qty int64) (bool, error) {
	args := m.Called(ctx, orderID, productID, qty)
	return args.Bool(0), args.Error(1)
}

type OutboxRepoMock struct{ mock.Mock }

func (m *OutboxRepoMock) Insert(ctx context.Context, topic string, key string, payload any) error {
	args := m.Called(ctx, topic, key, payload)
	return args.Error(0)
}

func (m *OutboxRepoMock) FetchPending(ctx context.Context, limit int) ([]model.OutboxEvent, error) {
	panic("not used in fulfillment tests")
}

func (m *OutboxRepoMock) MarkSent(ctx context.Context, id int64) error {
	panic("not used in fulfillment tests")
}

type AuditRepoMock struct{ mock.Mock }

func (m *AuditRepoMock) Create(ctx context.Context, log model.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *AuditRepoMock) List(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, error) {
	panic("not used in fulfillment tests")
}

// =====================
// Helpers
// =====================

func assertKind(t *testing.T, err error, kind usecase.ErrorKind, reason string) {
	t.Helper()
	var ae *usecase.AppError
	if assert.True(t, errors.As(err, &ae), "err=%v is not an AppError", err) {
		assert.Equal(t, kind, ae.Kind)
		if reason != "" {
			assert.Equal(t, reason, ae.Reason)
		}
	}
}
