package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fairyhunter13/ai-mock-interview/internal/adapter/observability"
	"github.com/fairyhunter13/ai-mock-interview/internal/domain"
)

// CircuitState represents the state of a circuit breaker
type CircuitState int

const (
	// CircuitClosed indicates the circuit is allowing requests to pass through.
	CircuitClosed CircuitState = iota
	// CircuitOpen indicates the circuit is blocking requests due to failures.
	CircuitOpen
	// CircuitHalfOpen indicates one trial request is allowed through.
	CircuitHalfOpen
)

// String returns a string representation of the circuit state
func (cs CircuitState) String() string {
	switch cs {
	case CircuitClosed:
		return "closed"
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitBreaker opens after a run of consecutive failures and lets a single
// trial call through once the recovery timeout has elapsed.
type CircuitBreaker struct {
	mu               sync.Mutex
	name             string
	failureThreshold int
	recoveryTimeout  time.Duration
	state            CircuitState
	failureCount     int
	openedAt         time.Time
	trialInFlight    bool
	now              func() time.Time
}

// NewCircuitBreaker creates a breaker for the named transport.
func NewCircuitBreaker(name string, threshold int, recovery time.Duration) *CircuitBreaker {
	if threshold <= 0 {
		threshold = 3
	}
	if recovery <= 0 {
		recovery = 30 * time.Second
	}
	return &CircuitBreaker{
		name:             name,
		failureThreshold: threshold,
		recoveryTimeout:  recovery,
		state:            CircuitClosed,
		now:              time.Now,
	}
}

// Allow reports whether a call may proceed. An open breaker whose recovery
// timeout has elapsed moves to half-open and admits exactly one trial.
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CircuitClosed:
		return true
	case CircuitOpen:
		if cb.now().Sub(cb.openedAt) < cb.recoveryTimeout {
			return false
		}
		cb.setState(CircuitHalfOpen)
		cb.trialInFlight = true
		return true
	case CircuitHalfOpen:
		if cb.trialInFlight {
			return false
		}
		cb.trialInFlight = true
		return true
	default:
		return false
	}
}

// RecordSuccess closes the breaker and resets the failure run.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failureCount = 0
	cb.trialInFlight = false
	if cb.state != CircuitClosed {
		cb.setState(CircuitClosed)
		slog.Info("circuit breaker closed after successful recovery", slog.String("name", cb.name))
	}
}

// RecordFailure extends the failure run; a failed trial reopens the breaker.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failureCount++
	cb.trialInFlight = false
	switch {
	case cb.state == CircuitHalfOpen:
		cb.open()
	case cb.state == CircuitClosed && cb.failureCount >= cb.failureThreshold:
		cb.open()
	}
}

// release ends a trial whose outcome says nothing about the backend.
func (cb *CircuitBreaker) release() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.trialInFlight = false
}

// State returns the current circuit state
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

func (cb *CircuitBreaker) open() {
	cb.openedAt = cb.now()
	cb.setState(CircuitOpen)
	slog.Warn("circuit breaker opened",
		slog.String("name", cb.name),
		slog.Int("failure_count", cb.failureCount),
		slog.Int("threshold", cb.failureThreshold),
		slog.Duration("recovery", cb.recoveryTimeout))
}

func (cb *CircuitBreaker) setState(s CircuitState) {
	cb.state = s
	observability.RecordCircuitBreakerState(cb.name, int(s))
}

// breakerTransport short-circuits GenerateText while the breaker is open.
// Probes always pass through and never change breaker state.
type breakerTransport struct {
	base domain.Transport
	cb   *CircuitBreaker
}

// NewBreakerTransport wraps base with a circuit breaker. When threshold <= 0
// base is returned unmodified.
func NewBreakerTransport(base domain.Transport, name string, threshold int, recovery time.Duration) domain.Transport {
	if threshold <= 0 || base == nil {
		return base
	}
	return &breakerTransport{base: base, cb: NewCircuitBreaker(name, threshold, recovery)}
}

func (b *breakerTransport) GenerateText(ctx domain.Context, p domain.Prompt, timeout time.Duration) (domain.RawModelResponse, error) {
	if !b.cb.Allow() {
		observability.RecordCircuitBreakerRejection(b.cb.name)
		return domain.RawModelResponse{Provider: b.cb.name, ErrKind: domain.TransportErrUnavailable},
			fmt.Errorf("%w: circuit breaker %s is %s", domain.ErrUpstreamUnavailable, b.cb.name, b.cb.State())
	}
	resp, err := b.base.GenerateText(ctx, p, timeout)
	switch {
	case err == nil && resp.Cached:
		b.cb.release()
	case err == nil:
		b.cb.RecordSuccess()
	case errors.Is(err, context.Canceled), errors.Is(err, ErrQuotaExceeded):
		b.cb.release()
	default:
		b.cb.RecordFailure()
	}
	return resp, err
}

func (b *breakerTransport) ProbeAvailability(ctx domain.Context, timeout time.Duration) bool {
	return b.base.ProbeAvailability(ctx, timeout)
}
