package worker

import (
	"context"
	"fmt"

	"storefront/internal/metrics"
	repo "storefront/internal/repository"

	"go.uber.org/zap"
)

type Publisher interface {
	Publish(ctx context.Context, topic, key string, payload []byte) error
}

// OutboxRelay publishes outbox rows in id order and marks them sent. A row is
// marked only after the broker accepted it, so delivery is at least once.
type OutboxRelay struct {
	outbox    repo.OutboxRepository
	publisher Publisher
	batch     int
	metrics   *metrics.Metrics
	log       *zap.Logger
}

func NewOutboxRelay(outbox repo.OutboxRepository, publisher Publisher, batch int, m *metrics.Metrics, logger *zap.Logger) *OutboxRelay {
	if batch <= 0 {
		batch = 100
	}
	return &OutboxRelay{
		outbox:    outbox,
		publisher: publisher,
		batch:     batch,
		metrics:   m,
		log:       logger.With(zap.String("component", "outbox_relay")),
	}
}

// RelayOnce sends one batch. It stops at the first publish failure so later
// events are not sent ahead of an earlier one.
func (r *OutboxRelay) RelayOnce(ctx context.Context) (int, error) {
	events, err := r.outbox.FetchPending(ctx, r.batch)
	if err != nil {
		return 0, fmt.Errorf("fetch pending: %w", err)
	}

	sent := 0
	for _, e := range events {
		if err := r.publisher.Publish(ctx, e.Topic, e.Key, e.Payload); err != nil {
			r.metrics.OutboxPublished.WithLabelValues(e.Topic, "error").Inc()
			return sent, fmt.Errorf("publish event %s: %w", e.EventID, err)
		}
		if err := r.outbox.MarkSent(ctx, e.ID); err != nil {
			return sent, fmt.Errorf("mark sent %d: %w", e.ID, err)
		}
		r.metrics.OutboxPublished.WithLabelValues(e.Topic, "ok").Inc()
		sent++
	}
	if sent > 0 {
		r.log.Debug("outbox relayed", zap.Int("sent", sent))
	}
	return sent, nil
}

func (r *OutboxRelay) Pass(ctx context.Context) error {
	_, err := r.RelayOnce(ctx)
	return err
}
