package util

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// CircuitState represents the state of the circuit breaker
type CircuitState string

const (
	CircuitStateClosed   CircuitState = "CLOSED"
	CircuitStateOpen     CircuitState = "OPEN"
	CircuitStateHalfOpen CircuitState = "HALF_OPEN"
)

func (s CircuitState) String() string {
	return string(s)
}

// CircuitBreaker stops calls to a failing dependency for resetTimeout after
// failureThreshold consecutive failures, then lets one trial call through.
type CircuitBreaker struct {
	name             string
	state            CircuitState
	failureCount     int
	failureThreshold int
	resetTimeout     time.Duration
	openedAt         time.Time
	now              func() time.Time
	logger           *zap.Logger
	mu               sync.Mutex
}

func NewCircuitBreaker(name string, failureThreshold int, resetTimeout time.Duration, logger *zap.Logger) *CircuitBreaker {
	if failureThreshold <= 0 {
		failureThreshold = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CircuitBreaker{
		name:             name,
		state:            CircuitStateClosed,
		failureThreshold: failureThreshold,
		resetTimeout:     resetTimeout,
		now:              time.Now,
		logger:           logger,
	}
}

// WithClock replaces the time source. Intended for tests.
func (cb *CircuitBreaker) WithClock(now func() time.Time) *CircuitBreaker {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if now != nil {
		cb.now = now
	}
	return cb
}

// State returns the current state, moving OPEN to HALF_OPEN once the reset
// timeout has elapsed.
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.maybeHalfOpen()
	return cb.state
}

// CanExecute checks if requests can be executed
func (cb *CircuitBreaker) CanExecute() bool {
	return cb.State() != CircuitStateOpen
}

func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.maybeHalfOpen()

	if cb.state == CircuitStateHalfOpen {
		cb.logger.Info("Circuit breaker recovered", zap.String("name", cb.name))
		cb.transitionTo(CircuitStateClosed)
	}
	cb.failureCount = 0
}

func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.maybeHalfOpen()

	cb.failureCount++

	switch {
	case cb.state == CircuitStateHalfOpen:
		cb.logger.Warn("Circuit breaker trial failed, reopening", zap.String("name", cb.name))
		cb.open()
	case cb.state == CircuitStateClosed && cb.failureCount >= cb.failureThreshold:
		cb.logger.Error("Circuit breaker threshold reached",
			zap.String("name", cb.name),
			zap.Int("threshold", cb.failureThreshold),
		)
		cb.open()
	}
}

// Reset manually resets the circuit breaker
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.failureCount = 0
	cb.transitionTo(CircuitStateClosed)
}

func (cb *CircuitBreaker) open() {
	cb.openedAt = cb.now()
	cb.transitionTo(CircuitStateOpen)
}

// maybeHalfOpen must be called with cb.mu held.
func (cb *CircuitBreaker) maybeHalfOpen() {
	if cb.state == CircuitStateOpen && cb.now().Sub(cb.openedAt) >= cb.resetTimeout {
		cb.transitionTo(CircuitStateHalfOpen)
	}
}

// transitionTo must be called with cb.mu held.
func (cb *CircuitBreaker) transitionTo(newState CircuitState) {
	if cb.state == newState {
		return
	}
	oldState := cb.state
	cb.state = newState

	cb.logger.Info("Circuit breaker state transition",
		zap.String("name", cb.name),
		zap.String("from", oldState.String()),
		zap.String("to", newState.String()),
		zap.Int("failure_count", cb.failureCount),
	)
}
