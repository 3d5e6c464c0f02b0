package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"storefront/internal/domain/model"
	"storefront/internal/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

type OutboxRepoMock struct{ mock.Mock }

func (m *OutboxRepoMock) Insert(ctx context.Context, topic string, key string, payload any) error {
	panic("not used in relay tests")
}

func (m *OutboxRepoMock) FetchPending(ctx context.Context, limit int) ([]model.OutboxEvent, error) {
	args := m.Called(ctx, limit)
	ev, _ := args.Get(0).([]model.OutboxEvent)
	return ev, args.Error(1)
}

func (m *OutboxRepoMock) MarkSent(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type PublisherMock struct{ mock.Mock }

func (m *PublisherMock) Publish(ctx context.Context, topic, key string, payload []byte) error {
	args := m.Called(ctx, topic, key, payload)
	return args.Error(0)
}

func pendingEvents() []model.OutboxEvent {
	return []model.OutboxEvent{
		{ID: 1, EventID: "e1", Topic: model.TopicCheckoutVerified, Key: "r-1", Payload: datatypes.JSON(`{"receiptId":"r-1"}`)},
		{ID: 2, EventID: "e2", Topic: model.TopicOrderFulfilled, Key: "o-1", Payload: datatypes.JSON(`{"orderId":"o-1"}`)},
	}
}

func TestRelayOnce_PublishesAndMarks(t *testing.T) {
	ob := new(OutboxRepoMock)
	pub := new(PublisherMock)
	m := metrics.NewNop()

	ob.On("FetchPending", mock.Anything, 10).Return(pendingEvents(), nil)
	pub.On("Publish", mock.Anything, model.TopicCheckoutVerified, "r-1", []byte(`{"receiptId":"r-1"}`)).Return(nil)
	pub.On("Publish", mock.Anything, model.TopicOrderFulfilled, "o-1", []byte(`{"orderId":"o-1"}`)).Return(nil)
	ob.On("MarkSent", mock.Anything, int64(1)).Return(nil)
	ob.On("MarkSent", mock.Anything, int64(2)).Return(nil)

	n, err := NewOutboxRelay(ob, pub, 10, m, zap.NewNop()).RelayOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, n)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.OutboxPublished.WithLabelValues(model.TopicOrderFulfilled, "ok")))
	ob.AssertExpectations(t)
	pub.AssertExpectations(t)
}

func TestRelayOnce_StopsAtFirstFailure(t *testing.T) {
	ob := new(OutboxRepoMock)
	pub := new(PublisherMock)

	ob.On("FetchPending", mock.Anything, 10).Return(pendingEvents(), nil)
	pub.On("Publish", mock.Anything, model.TopicCheckoutVerified, "r-1", mock.Anything).Return(errors.New("broker down"))

	n, err := NewOutboxRelay(ob, pub, 10, metrics.NewNop(), zap.NewNop()).RelayOnce(context.Background())

	assert.Error(t, err)
	assert.Equal(t, 0, n)
	ob.AssertNotCalled(t, "MarkSent", mock.Anything, mock.Anything)
	pub.AssertNumberOfCalls(t, "Publish", 1)
}

func TestEvery_RunsUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	done := make(chan struct{})

	go func() {
		Every(ctx, "test", time.Millisecond, zap.NewNop(), func(ctx context.Context) error {
			calls++
			if calls == 3 {
				cancel()
			}
			return errors.New("ignored")
		})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}
	assert.GreaterOrEqual(t, calls, 3)
}
