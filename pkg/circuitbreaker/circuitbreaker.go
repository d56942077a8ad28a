package circuitbreaker

import (
	"errors"
	"sync"
	"time"
)

// State 熔断器状态
type State int

const (
	StateClosed   State = iota // 正常放行
	StateOpen                  // 熔断，直接拒绝
	StateHalfOpen              // 试探，放行少量请求
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF_OPEN"
	default:
		return "UNKNOWN"
	}
}

// ErrOpenState 熔断期间的请求被拒绝
var ErrOpenState = errors.New("circuit breaker is open")

// Config 熔断参数
type Config struct {
	FailureThreshold uint32        // 连续失败多少次后熔断
	OpenTimeout      time.Duration // 熔断持续时间，之后进入半开
	HalfOpenMaxCalls uint32        // 半开时最多同时放行的试探请求
}

// CircuitBreaker 基于连续失败次数的熔断器
//
//	CLOSED --连续失败达到阈值--> OPEN --超时--> HALF_OPEN
//	HALF_OPEN --试探成功--> CLOSED
//	HALF_OPEN --试探失败--> OPEN
type CircuitBreaker struct {
	name string
	cfg  Config

	mu            sync.Mutex
	state         State
	failures      uint32
	halfOpenCalls uint32
	openedAt      time.Time
	now           func() time.Time
	onStateChange func(name string, from, to State)
}

func NewCircuitBreaker(name string, cfg Config) *CircuitBreaker {
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}
	if cfg.HalfOpenMaxCalls == 0 {
		cfg.HalfOpenMaxCalls = 1
	}
	return &CircuitBreaker{
		name: name,
		cfg:  cfg,
		now:  time.Now,
	}
}

// OnStateChange 注册状态变化回调（如上报 prometheus）
func (cb *CircuitBreaker) OnStateChange(fn func(name string, from, to State)) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.onStateChange = fn
}

func (cb *CircuitBreaker) Name() string {
	return cb.name
}

// Execute 熔断时返回 ErrOpenState，否则执行 fn 并记录结果
func (cb *CircuitBreaker) Execute(fn func() error) error {
	if err := cb.acquire(); err != nil {
		return err
	}
	err := fn()
	cb.record(err == nil)
	return err
}

func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.refresh()
	return cb.state
}

func (cb *CircuitBreaker) acquire() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.refresh()
	switch cb.state {
	case StateOpen:
		return ErrOpenState
	case StateHalfOpen:
		if cb.halfOpenCalls >= cb.cfg.HalfOpenMaxCalls {
			return ErrOpenState
		}
		cb.halfOpenCalls++
	}
	return nil
}

func (cb *CircuitBreaker) record(success bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		if success {
			cb.failures = 0
			return
		}
		cb.failures++
		if cb.failures >= cb.cfg.FailureThreshold {
			cb.transition(StateOpen)
		}
	case StateHalfOpen:
		if success {
			cb.transition(StateClosed)
		} else {
			cb.transition(StateOpen)
		}
	}
}

// refresh 熔断超时后转为半开；调用方持有锁
func (cb *CircuitBreaker) refresh() {
	if cb.state == StateOpen && cb.now().Sub(cb.openedAt) >= cb.cfg.OpenTimeout {
		cb.transition(StateHalfOpen)
	}
}

// transition 调用方持有锁
func (cb *CircuitBreaker) transition(to State) {
	from := cb.state
	if from == to {
		return
	}
	cb.state = to
	cb.failures = 0
	cb.halfOpenCalls = 0
	if to == StateOpen {
		cb.openedAt = cb.now()
	}
	if cb.onStateChange != nil {
		cb.onStateChange(cb.name, from, to)
	}
}
