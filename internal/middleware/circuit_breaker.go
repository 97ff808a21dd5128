package middleware

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrCircuitOpen is returned without calling Redis while the breaker is open.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// CircuitBreakerState represents the current state of the circuit breaker
type CircuitBreakerState int

const (
	StateClosed CircuitBreakerState = iota
	StateOpen
	StateHalfOpen
)

func (s CircuitBreakerState) String() string {
	switch s {
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF_OPEN"
	default:
		return "CLOSED"
	}
}

// CircuitBreaker guards the Redis calls made by rate limiting and idempotency.
// Both fail open, so an open breaker only skips work.
type CircuitBreaker struct {
	logger            *logrus.Logger
	state             CircuitBreakerState
	failureCount      int
	successCount      int
	lastFailureTime   time.Time
	mu                sync.Mutex
	maxFailures       int           // open after N consecutive failures
	resetTimeout      time.Duration // wait before trying half-open
	halfOpenSuccesses int           // successes needed to close again
	now               func() time.Time
}

func NewCircuitBreaker(logger *logrus.Logger) *CircuitBreaker {
	return &CircuitBreaker{
		logger:            logger,
		state:             StateClosed,
		maxFailures:       5,
		resetTimeout:      10 * time.Second,
		halfOpenSuccesses: 3,
		now:               time.Now,
	}
}

// Execute runs fn unless the breaker is open.
func (cb *CircuitBreaker) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	cb.mu.Lock()
	if cb.state == StateOpen {
		if cb.now().Sub(cb.lastFailureTime) <= cb.resetTimeout {
			cb.mu.Unlock()
			return ErrCircuitOpen
		}
		cb.state = StateHalfOpen
		cb.successCount = 0
		cb.logger.Info("Circuit breaker: OPEN → HALF_OPEN")
	}
	cb.mu.Unlock()

	err := fn(ctx)

	cb.mu.Lock()
	defer cb.mu.Unlock()

	if err != nil {
		cb.onFailure(err)
		return err
	}

	cb.onSuccess()
	return nil
}

func (cb *CircuitBreaker) onFailure(err error) {
	cb.failureCount++
	cb.lastFailureTime = cb.now()

	switch cb.state {
	case StateClosed:
		if cb.failureCount >= cb.maxFailures {
			cb.state = StateOpen
			cb.logger.WithFields(logrus.Fields{
				"failure_count": cb.failureCount,
				"error":         err.Error(),
			}).Error("Circuit breaker: CLOSED → OPEN")
		}

	case StateHalfOpen:
		cb.state = StateOpen
		cb.failureCount = 0
		cb.logger.WithError(err).Error("Circuit breaker: HALF_OPEN → OPEN")
	}
}

func (cb *CircuitBreaker) onSuccess() {
	cb.successCount++

	switch cb.state {
	case StateClosed:
		cb.failureCount = 0

	case StateHalfOpen:
		if cb.successCount >= cb.halfOpenSuccesses {
			cb.state = StateClosed
			cb.failureCount = 0
			cb.successCount = 0
			cb.logger.Info("Circuit breaker: HALF_OPEN → CLOSED")
		}
	}
}

// GetState returns the current circuit breaker state
func (cb *CircuitBreaker) GetState() CircuitBreakerState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// GetStats is reported by /readyz.
func (cb *CircuitBreaker) GetStats() map[string]interface{} {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	return map[string]interface{}{
		"state":         cb.state.String(),
		"failure_count": cb.failureCount,
		"max_failures":  cb.maxFailures,
		"reset_timeout": cb.resetTimeout.String(),
	}
}
