package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"storefront/internal/domain/model"
	"storefront/internal/metrics"
	repo "storefront/internal/repository"

	"go.uber.org/zap"
)

// Operator-triggered fulfillment of a paid order.
type FulfillmentUsecase struct {
	tx      repo.TransactionManager
	ids     IDGenerator
	clock   Clock
	log     *zap.Logger
	metrics *metrics.Metrics
}

// DI
func NewFulfillmentUsecase(tx repo.TransactionManager, ids IDGenerator, clock Clock, logger *zap.Logger, m *metrics.Metrics) *FulfillmentUsecase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if m == nil {
		m = metrics.NewNop()
	}
	return &FulfillmentUsecase{tx: tx, ids: ids, clock: clock, log: logger.With(zap.String("component", "fulfillment")), metrics: m}
}

// A line whose restock could not be applied.
type FailedLine struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Amount    int64  `json:"amount"`
	Reason    string `json:"reason"`
}

type FulfillOutput struct {
	OrderID     string       `json:"orderId"`
	FulfilledID string       `json:"fulfilledId"`
	Restocked   int          `json:"restocked"`
	FailedLines []FailedLine `json:"failedLines"`
}

// Fulfill converts the order into a Fulfilled record, moves its pending lines
// to history and credits the stock of every line once.
func (u *FulfillmentUsecase) Fulfill(ctx context.Context, actorID string, orderID string) (FulfillOutput, error) {
	if actorID == "" {
		return FulfillOutput{}, UnauthorizedError()
	}
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return FulfillOutput{}, ValidationError(ReasonInvalidInput, "invalid id")
	}

	out := FulfillOutput{OrderID: orderID, FailedLines: []FailedLine{}}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByIDForUpdate(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			if _, ferr := r.Fulfilled().FindByOrderID(ctx, orderID); ferr == nil {
				return ConflictError(ReasonAlreadyFulfilled, "order already fulfilled")
			}
			return NotFoundError(ReasonNotFound, "order not found")
		}
		if err != nil {
			return dbError(err)
		}

		now := u.clock.Now()
		f := model.Fulfilled{
			ID:            u.ids.NewID(),
			OrderID:       o.ID,
			PayersID:      o.PayersID,
			ReceiptID:     o.ReceiptID,
			Shipping:      o.Shipping,
			PaymentMethod: o.PaymentMethod,
			ItemNum:       o.ItemNum,
			TotalAmount:   o.TotalAmount,
			Products:      o.Products,
			Date:          o.Date,
			FulfilledAt:   now,
		}
		if err := r.Fulfilled().Create(ctx, f); err != nil {
			if errors.Is(err, repo.ErrDuplicate) {
				return ConflictError(ReasonAlreadyFulfilled, "order already fulfilled")
			}
			return dbError(err)
		}
		out.FulfilledID = f.ID

		if _, err := r.Purchases().MoveToHistory(ctx, o.ID); err != nil {
			return dbError(err)
		}

		// restock, one credit per (order, product)
		for _, l := range o.Products {
			applied, err := r.Inventory().CreditOnce(ctx, o.ID, l.ProductID, l.Amount)
			switch {
			case errors.Is(err, repo.ErrNotFound):
				out.FailedLines = append(out.FailedLines, FailedLine{
					ProductID: l.ProductID, Name: l.Name, Amount: l.Amount, Reason: "product not found",
				})
				u.metrics.Restocks.WithLabelValues("missing_product").Inc()
			case err != nil:
				return dbError(err)
			case applied:
				out.Restocked++
				u.metrics.Restocks.WithLabelValues("ok").Inc()
			default:
				u.metrics.Restocks.WithLabelValues("already_credited").Inc()
			}
		}

		if err := r.Orders().Delete(ctx, o.ID); err != nil {
			return dbError(err)
		}

		before, _ := json.Marshal(map[string]any{"order_id": o.ID, "total_amount": o.TotalAmount})
		after, _ := json.Marshal(map[string]any{"fulfilled_id": f.ID, "failed_lines": out.FailedLines})
		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  actorID,
			Action:       model.AuditActionFulfillOrder,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   o.ID,
			BeforeJSON:   string(before),
			AfterJSON:    string(after),
			CreatedAt:    now,
		}); err != nil {
			return dbError(err)
		}

		if err := r.Outbox().Insert(ctx, model.TopicOrderFulfilled, o.ID, OrderFulfilledEvent{
			OrderID:     o.ID,
			FulfilledID: f.ID,
			PayersID:    o.PayersID,
			ItemNum:     o.ItemNum,
			FailedLines: out.FailedLines,
			FulfilledAt: now,
		}); err != nil {
			return dbError(err)
		}
		return nil
	})
	if err != nil {
		return FulfillOutput{}, err
	}

	if len(out.FailedLines) > 0 {
		u.log.Warn("order fulfilled with unrestocked lines",
			zap.String("order_id", orderID),
			zap.Int("failed", len(out.FailedLines)),
		)
	}
	return out, nil
}
