package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	once sync.Once

	// HTTP
	HTTPRequestsTotal      *prometheus.CounterVec   // method, path, status
	HTTPRequestDuration    *prometheus.HistogramVec // method, path
	HTTPRequestsInProgress prometheus.Gauge

	// 借阅流程
	BorrowOperationsTotal   *prometheus.CounterVec   // operation, result
	BorrowOperationDuration *prometheus.HistogramVec // operation
	CopiesLentTotal         prometheus.Counter       // 借出册数
	CopiesRestoredTotal     *prometheus.CounterVec   // reason: return | update | delete | delete_user

	// 熔断器
	CircuitBreakerState    *prometheus.GaugeVec   // name；0=CLOSED 1=OPEN 2=HALF_OPEN
	CircuitBreakerRequests *prometheus.CounterVec // name, result: success | failure | rejected

	// 消息
	MessagesPublishedTotal *prometheus.CounterVec // routing_key, result
)

// InitMetrics 注册全部指标到默认 Registry，重复调用无副作用
func InitMetrics() {
	once.Do(func() {
		HTTPRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "HTTP请求总数",
			},
			[]string{"method", "path", "status"},
		)

		HTTPRequestDuration = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP请求耗时（秒）",
				Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10},
			},
			[]string{"method", "path"},
		)

		HTTPRequestsInProgress = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_progress",
				Help: "正在处理的HTTP请求数",
			},
		)

		BorrowOperationsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "library_borrow_operations_total",
				Help: "借阅流程执行次数",
			},
			[]string{"operation", "result"},
		)

		BorrowOperationDuration = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "library_borrow_operation_duration_seconds",
				Help:    "借阅流程耗时（秒，含事务）",
				Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
			[]string{"operation"},
		)

		CopiesLentTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "library_copies_lent_total",
				Help: "借出册数",
			},
		)

		CopiesRestoredTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "library_copies_restored_total",
				Help: "回到在架的册数",
			},
			[]string{"reason"},
		)

		CircuitBreakerState = promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "circuit_breaker_state",
				Help: "熔断器状态（0=CLOSED, 1=OPEN, 2=HALF_OPEN）",
			},
			[]string{"name"},
		)

		CircuitBreakerRequests = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "circuit_breaker_requests_total",
				Help: "熔断器请求总数",
			},
			[]string{"name", "result"},
		)

		MessagesPublishedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "messages_published_total",
				Help: "消息发布总数",
			},
			[]string{"routing_key", "result"},
		)
	})
}

// ObserveBorrowOperation 记录一次借阅流程的结果与耗时
func ObserveBorrowOperation(operation string, start time.Time, err error) {
	InitMetrics()
	result := "success"
	if err != nil {
		result = "failure"
	}
	BorrowOperationsTotal.WithLabelValues(operation, result).Inc()
	BorrowOperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// AddCopiesLent 借出 n 册
func AddCopiesLent(n int) {
	InitMetrics()
	CopiesLentTotal.Add(float64(n))
}

// AddCopiesRestored n 册回到在架
func AddCopiesRestored(reason string, n int) {
	InitMetrics()
	CopiesRestoredTotal.WithLabelValues(reason).Add(float64(n))
}

func IncCounterVec(counter *prometheus.CounterVec, labels map[string]string) {
	counter.With(labels).Inc()
}

func SetGaugeVec(gauge *prometheus.GaugeVec, labels map[string]string, value float64) {
	gauge.With(labels).Set(value)
}
