package llm

import (
	"errors"
	"time"

	"github.com/sony/gobreaker"
)

// ErrCircuitOpen is returned when the circuit breaker rejects a request
// to prevent cascading failures against a struggling upstream.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// CircuitBreakerConfig holds configuration for the circuit breaker.
type CircuitBreakerConfig struct {
	// MaxFailures is the number of consecutive failures before the circuit trips.
	MaxFailures uint32
	// Timeout is the duration the circuit stays open before transitioning to half-open.
	Timeout time.Duration
	// HalfOpenMaxRequests is how many test requests are allowed in half-open state.
	HalfOpenMaxRequests uint32
}

// DefaultCircuitBreakerConfig returns sensible defaults for the circuit breaker.
func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		MaxFailures:         5,
		Timeout:             30 * time.Second,
		HalfOpenMaxRequests: 2,
	}
}

// CircuitBreaker wraps gobreaker to protect LLM calls. When closed,
// requests pass through; after MaxFailures consecutive failures the
// circuit opens and rejects requests until Timeout elapses.
type CircuitBreaker struct {
	breaker *gobreaker.CircuitBreaker
}

// NewCircuitBreaker creates a circuit breaker with the given configuration.
func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	if cfg.MaxFailures == 0 {
		cfg.MaxFailures = 5
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.HalfOpenMaxRequests == 0 {
		cfg.HalfOpenMaxRequests = 2
	}

	settings := gobreaker.Settings{
		Name:        "llm",
		MaxRequests: cfg.HalfOpenMaxRequests,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
	}

	return &CircuitBreaker{breaker: gobreaker.NewCircuitBreaker(settings)}
}

// Execute runs fn through the breaker, translating gobreaker's open-state
// errors into ErrCircuitOpen.
func (cb *CircuitBreaker) Execute(fn func() (any, error)) (any, error) {
	result, err := cb.breaker.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, ErrCircuitOpen
	}
	return result, err
}

// State returns the current breaker state as a string.
func (cb *CircuitBreaker) State() string {
	return cb.breaker.State().String()
}
