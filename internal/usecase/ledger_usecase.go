package usecase

import (
	"context"
	"errors"
	"strings"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

// Read access to receipts and the operator's current -> seen marking.
type LedgerUsecase struct {
	tx       repo.TransactionManager
	receipts repo.ReceiptRepository
	audits   repo.AuditLogRepository
	clock    Clock
}

func NewLedgerUsecase(tx repo.TransactionManager, receipts repo.ReceiptRepository, audits repo.AuditLogRepository, clock Clock) *LedgerUsecase {
	return &LedgerUsecase{tx: tx, receipts: receipts, audits: audits, clock: clock}
}

// GetReceipt returns the receipt only to its payer.
func (u *LedgerUsecase) GetReceipt(ctx context.Context, userID string, receiptID string) (model.Receipt, error) {
	if userID == "" {
		return model.Receipt{}, UnauthorizedError()
	}
	rc, err := u.receipts.FindByID(ctx, strings.TrimSpace(receiptID))
	if errors.Is(err, repo.ErrNotFound) {
		return model.Receipt{}, NotFoundError(ReasonNotFound, "receipt not found")
	}
	if err != nil {
		return model.Receipt{}, dbError(err)
	}
	if rc.PayersID != userID {
		return model.Receipt{}, NotFoundError(ReasonNotFound, "receipt not found")
	}
	return rc, nil
}

// ListAuditLogs returns the newest entries first.
func (u *LedgerUsecase) ListAuditLogs(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, error) {
	if filter.Limit < 0 || filter.Limit > 200 {
		return nil, ValidationError(ReasonInvalidInput, "limit must be between 1 and 200")
	}
	logs, err := u.audits.List(ctx, filter)
	if err != nil {
		return nil, dbError(err)
	}
	return logs, nil
}

func (u *LedgerUsecase) MarkTransactionSeen(ctx context.Context, actorID string, id string) error {
	return u.markSeen(ctx, actorID, id, model.AuditResourceTransaction)
}

func (u *LedgerUsecase) MarkReceiptSeen(ctx context.Context, actorID string, id string) error {
	return u.markSeen(ctx, actorID, id, model.AuditResourceReceipt)
}

func (u *LedgerUsecase) markSeen(ctx context.Context, actorID string, id string, kind model.AuditResourceType) error {
	if actorID == "" {
		return UnauthorizedError()
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return ValidationError(ReasonInvalidInput, "invalid id")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var (
			before model.LedgerStatus
			action model.AuditAction
			err    error
		)
		switch kind {
		case model.AuditResourceTransaction:
			action = model.AuditActionMarkTransactionSeen
			var t model.Transaction
			if t, err = r.Transactions().FindByID(ctx, id); err == nil {
				before = t.Status
			}
		default:
			action = model.AuditActionMarkReceiptSeen
			var rc model.Receipt
			if rc, err = r.Receipts().FindByID(ctx, id); err == nil {
				before = rc.Status
			}
		}
		if errors.Is(err, repo.ErrNotFound) {
			return NotFoundError(ReasonNotFound, string(kind)+" not found")
		}
		if err != nil {
			return dbError(err)
		}

		// already seen, nothing to do
		if before == model.LedgerStatusSeen {
			return nil
		}

		if kind == model.AuditResourceTransaction {
			err = r.Transactions().UpdateStatus(ctx, id, model.LedgerStatusSeen)
		} else {
			err = r.Receipts().UpdateStatus(ctx, id, model.LedgerStatusSeen)
		}
		if err != nil {
			return dbError(err)
		}

		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  actorID,
			Action:       action,
			ResourceType: kind,
			ResourceID:   id,
			BeforeJSON:   `{"status":"` + string(before) + `"}`,
			AfterJSON:    `{"status":"` + string(model.LedgerStatusSeen) + `"}`,
			CreatedAt:    u.clock.Now(),
		}); err != nil {
			return dbError(err)
		}
		return nil
	})
}
