package mq

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/library/internal/domain/borrow"
	"github.com/xiebiao/library/internal/infrastructure/config"
	"github.com/xiebiao/library/pkg/circuitbreaker"
)

type MockMessagePublisher struct {
	mock.Mock
}

func (m *MockMessagePublisher) Publish(ctx context.Context, routingKey string, message interface{}) error {
	args := m.Called(ctx, routingKey, message)
	return args.Error(0)
}

func newBreaker() *circuitbreaker.CircuitBreaker {
	return circuitbreaker.NewCircuitBreaker("borrow-events-test", circuitbreaker.Config{
		FailureThreshold: 2,
		OpenTimeout:      time.Minute,
	})
}

func TestBorrowEventPublisher_RoutesByEventType(t *testing.T) {
	pub := new(MockMessagePublisher)
	event := borrow.Event{Type: borrow.EventSlipCreated, SlipID: 9, SlipCode: "SLIP-ABCDEF12", BookIDs: []uint{1, 2}}
	pub.On("Publish", mock.Anything, borrow.EventSlipCreated, event).Return(nil).Once()

	NewBorrowEventPublisher(pub, newBreaker()).Publish(context.Background(), event)

	pub.AssertExpectations(t)
}

func TestBorrowEventPublisher_BreakerStopsCallingBroker(t *testing.T) {
	pub := new(MockMessagePublisher)
	pub.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("connection reset"))

	p := NewBorrowEventPublisher(pub, newBreaker())
	for i := 0; i < 5; i++ {
		p.Publish(context.Background(), borrow.Event{Type: borrow.EventDetailReturned, DetailID: uint(i)})
	}

	// 连续失败2次后熔断，其余请求不再打到 Broker
	pub.AssertNumberOfCalls(t, "Publish", 2)
}

func TestBorrowEventPublisher_IgnoresCanceledRequest(t *testing.T) {
	pub := new(MockMessagePublisher)
	pub.On("Publish", mock.MatchedBy(func(ctx context.Context) bool { return ctx.Err() == nil }), mock.Anything, mock.Anything).
		Return(nil).Once()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	NewBorrowEventPublisher(pub, newBreaker()).Publish(ctx, borrow.Event{Type: borrow.EventSlipDeleted, SlipID: 1})

	pub.AssertExpectations(t)
}

func TestPublishOutcome(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantBreaker string
		wantPublish string
	}{
		{"成功", nil, "success", "success"},
		{"熔断拒绝", circuitbreaker.ErrOpenState, "rejected", "failure"},
		{"包装后的熔断拒绝", fmt.Errorf("publish borrow event: %w", circuitbreaker.ErrOpenState), "rejected", "failure"},
		{"投递失败", errors.New("connection reset"), "failure", "failure"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			breaker, publish := publishOutcome(tt.err)
			assert.Equal(t, tt.wantBreaker, breaker)
			assert.Equal(t, tt.wantPublish, publish)
		})
	}
}

func TestNewEventPublisher_Disabled(t *testing.T) {
	p, cleanup, err := NewEventPublisher(&config.Config{})
	require.NoError(t, err)
	defer cleanup()

	assert.IsType(t, NoopPublisher{}, p)
	p.Publish(context.Background(), borrow.Event{Type: borrow.EventSlipCreated})
}
