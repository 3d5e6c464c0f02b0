package usecase_test

import (
	"context"
	"testing"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
	"storefront/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLedgerFixture() (*memStore, *usecase.LedgerUsecase) {
	s := newMemStore()
	s.transactions["t-1"] = model.Transaction{ID: "t-1", PayersID: "u-1", Status: model.LedgerStatusCurrent}
	s.receipts["r-1"] = model.Receipt{ID: "r-1", PayersID: "u-1", TransactionID: "t-1", Status: model.LedgerStatusCurrent}
	clock := &fixedClock{t: time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)}
	return s, usecase.NewLedgerUsecase(memTx{s}, (&memRepos{s}).Receipts(), (&memRepos{s}).AuditLogs(), clock)
}

func TestGetReceipt_OwnerOnly(t *testing.T) {
	_, uc := newLedgerFixture()

	rc, err := uc.GetReceipt(context.Background(), "u-1", "r-1")
	require.NoError(t, err)
	assert.Equal(t, "t-1", rc.TransactionID)

	_, err = uc.GetReceipt(context.Background(), "u-2", "r-1")
	assertKind(t, err, usecase.KindNotFound, usecase.ReasonNotFound)

	_, err = uc.GetReceipt(context.Background(), "u-1", "r-404")
	assertKind(t, err, usecase.KindNotFound, usecase.ReasonNotFound)
}

func TestMarkTransactionSeen(t *testing.T) {
	s, uc := newLedgerFixture()

	require.NoError(t, uc.MarkTransactionSeen(context.Background(), "admin-1", "t-1"))

	assert.Equal(t, model.LedgerStatusSeen, s.transactions["t-1"].Status)
	require.Len(t, s.audits, 1)
	a := s.audits[0]
	assert.Equal(t, model.AuditActionMarkTransactionSeen, a.Action)
	assert.Equal(t, model.AuditResourceTransaction, a.ResourceType)
	assert.Equal(t, `{"status":"current"}`, a.BeforeJSON)
	assert.Equal(t, `{"status":"seen"}`, a.AfterJSON)

	// second call is a no-op
	require.NoError(t, uc.MarkTransactionSeen(context.Background(), "admin-1", "t-1"))
	assert.Len(t, s.audits, 1)
}

func TestMarkReceiptSeen(t *testing.T) {
	s, uc := newLedgerFixture()

	require.NoError(t, uc.MarkReceiptSeen(context.Background(), "admin-1", "r-1"))
	assert.Equal(t, model.LedgerStatusSeen, s.receipts["r-1"].Status)
	assert.Equal(t, model.LedgerStatusCurrent, s.transactions["t-1"].Status)

	err := uc.MarkReceiptSeen(context.Background(), "admin-1", "r-404")
	assertKind(t, err, usecase.KindNotFound, usecase.ReasonNotFound)

	err = uc.MarkReceiptSeen(context.Background(), "", "r-1")
	assertKind(t, err, usecase.KindUnauthorized, "")
}

func TestListAuditLogs(t *testing.T) {
	_, uc := newLedgerFixture()
	require.NoError(t, uc.MarkTransactionSeen(context.Background(), "admin-1", "t-1"))
	require.NoError(t, uc.MarkReceiptSeen(context.Background(), "admin-1", "r-1"))

	action := model.AuditActionMarkReceiptSeen
	logs, err := uc.ListAuditLogs(context.Background(), repo.AuditLogFilter{Action: &action})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "r-1", logs[0].ResourceID)

	all, err := uc.ListAuditLogs(context.Background(), repo.AuditLogFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = uc.ListAuditLogs(context.Background(), repo.AuditLogFilter{Limit: 500})
	assertKind(t, err, usecase.KindValidation, usecase.ReasonInvalidInput)
}
