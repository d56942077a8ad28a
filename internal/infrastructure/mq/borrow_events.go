package mq

import (
	"context"
	"errors"
	"time"

	"github.com/xiebiao/library/internal/domain/borrow"
	"github.com/xiebiao/library/internal/infrastructure/config"
	"github.com/xiebiao/library/pkg/circuitbreaker"
	"github.com/xiebiao/library/pkg/logger"
	"github.com/xiebiao/library/pkg/metrics"
	pkgmq "github.com/xiebiao/library/pkg/mq"
)

const publishTimeout = 3 * time.Second

// messagePublisher pkg/mq.Publisher 满足该接口
type messagePublisher interface {
	Publish(ctx context.Context, routingKey string, message interface{}) error
}

// BorrowEventPublisher 把借阅事件投递到 RabbitMQ
//
// 经熔断器调用：Broker 不可用时快速失败，不拖慢借还请求。
type BorrowEventPublisher struct {
	publisher messagePublisher
	breaker   *circuitbreaker.CircuitBreaker
}

func NewBorrowEventPublisher(publisher messagePublisher, breaker *circuitbreaker.CircuitBreaker) *BorrowEventPublisher {
	metrics.InitMetrics()
	breaker.OnStateChange(func(name string, from, to circuitbreaker.State) {
		metrics.SetGaugeVec(metrics.CircuitBreakerState, map[string]string{"name": name}, float64(to))
		logger.Warn("熔断器状态变化", map[string]interface{}{
			"name": name,
			"from": from.String(),
			"to":   to.String(),
		})
	})
	return &BorrowEventPublisher{publisher: publisher, breaker: breaker}
}

// Publish 事件已在事务外，使用独立超时，请求被取消也尽量投递
func (p *BorrowEventPublisher) Publish(ctx context.Context, event borrow.Event) {
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	err := p.breaker.Execute(func() error {
		return p.publisher.Publish(pubCtx, event.Type, event)
	})

	breakerResult, publishResult := publishOutcome(err)
	metrics.IncCounterVec(metrics.CircuitBreakerRequests, map[string]string{"name": p.breaker.Name(), "result": breakerResult})
	metrics.IncCounterVec(metrics.MessagesPublishedTotal, map[string]string{"routing_key": event.Type, "result": publishResult})

	if err != nil {
		logger.FromContext(ctx).Warn().Err(err).
			Str("event", event.Type).
			Uint("slip_id", event.SlipID).
			Msg("借阅事件发布失败")
	}
}

// publishOutcome 熔断拒绝与投递失败分开计数；熔断错误可能被包装
func publishOutcome(err error) (breakerResult, publishResult string) {
	switch {
	case err == nil:
		return "success", "success"
	case errors.Is(err, circuitbreaker.ErrOpenState):
		return "rejected", "failure"
	default:
		return "failure", "failure"
	}
}

// NoopPublisher 未启用 MQ 时使用
type NoopPublisher struct{}

func (NoopPublisher) Publish(ctx context.Context, event borrow.Event) {
	logger.FromContext(ctx).Debug().Str("event", event.Type).Uint("slip_id", event.SlipID).Msg("借阅事件(未投递)")
}

// NewEventPublisher 按配置创建事件发布者，返回的 cleanup 负责关闭连接
func NewEventPublisher(cfg *config.Config) (borrow.EventPublisher, func(), error) {
	if !cfg.RabbitMQ.Enabled {
		return NoopPublisher{}, func() {}, nil
	}

	publisher, err := pkgmq.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, "topic")
	if err != nil {
		return nil, nil, err
	}

	breaker := circuitbreaker.NewCircuitBreaker("borrow-events", circuitbreaker.Config{
		FailureThreshold: 5,
		OpenTimeout:      30 * time.Second,
		HalfOpenMaxCalls: 1,
	})

	cleanup := func() {
		if err := publisher.Close(); err != nil {
			logger.Error("关闭RabbitMQ连接失败", err)
		}
	}
	return NewBorrowEventPublisher(publisher, breaker), cleanup, nil
}
