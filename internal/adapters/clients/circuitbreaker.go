package clients

import (
	"sync"
	"time"
)

// State is where a circuit breaker is in its cycle.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

var stateNames = [...]string{
	StateClosed:   "closed",
	StateOpen:     "open",
	StateHalfOpen: "half-open",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}

	return stateNames[s]
}

// Zero-value CircuitBreakerConfig fields fall back to these.
const (
	defaultBreakerMaxFailures   = 5
	defaultBreakerTimeout       = 30 * time.Second
	defaultBreakerHalfOpenLimit = 1
)

type CircuitBreakerConfig struct {
	// MaxFailures is how many failures in a row open the circuit.
	MaxFailures int

	// Timeout is how long the circuit stays open before the first probe.
	Timeout time.Duration

	// HalfOpenLimit caps the probes in flight while half-open, and is also
	// the number of probe successes that close the circuit.
	HalfOpenLimit int
}

// CircuitBreaker stops calling an upstream that keeps failing.
//
//	closed    --MaxFailures failures in a row-->  open
//	open      --Timeout elapsed, next Allow-->    half-open
//	half-open --HalfOpenLimit successes-->        closed
//	half-open --any failure-->                    open
type CircuitBreaker struct {
	mu  sync.Mutex
	cfg CircuitBreakerConfig

	state     State
	failures  int
	successes int
	inFlight  int
	openedAt  time.Time

	listener func(from, to State)
	now      func() time.Time
}

func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = defaultBreakerMaxFailures
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultBreakerTimeout
	}

	if cfg.HalfOpenLimit <= 0 {
		cfg.HalfOpenLimit = defaultBreakerHalfOpenLimit
	}

	return &CircuitBreaker{cfg: cfg, now: time.Now}
}

// OnStateChange sets fn to run after each transition, outside the lock.
func (cb *CircuitBreaker) OnStateChange(fn func(from, to State)) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.listener = fn
}

// Allow reports whether a request may go out. Each allowed request must be
// settled with exactly one RecordSuccess, RecordFailure or Release.
func (cb *CircuitBreaker) Allow() (allowed bool) {
	cb.guard(func() {
		switch cb.state {
		case StateClosed:
			allowed = true

		case StateOpen:
			if cb.now().Sub(cb.openedAt) < cb.cfg.Timeout {
				return
			}

			cb.moveTo(StateHalfOpen)

			fallthrough

		case StateHalfOpen:
			if cb.inFlight < cb.cfg.HalfOpenLimit {
				cb.inFlight++
				allowed = true
			}
		}
	})

	return allowed
}

func (cb *CircuitBreaker) RecordSuccess() {
	cb.guard(func() {
		switch cb.state {
		case StateClosed:
			cb.failures = 0

		case StateHalfOpen:
			cb.inFlight = max(cb.inFlight-1, 0)

			if cb.successes++; cb.successes >= cb.cfg.HalfOpenLimit {
				cb.moveTo(StateClosed)
			}
		}
	})
}

func (cb *CircuitBreaker) RecordFailure() {
	cb.guard(func() {
		switch cb.state {
		case StateClosed:
			if cb.failures++; cb.failures >= cb.cfg.MaxFailures {
				cb.moveTo(StateOpen)
			}

		case StateHalfOpen:
			cb.moveTo(StateOpen)
		}
	})
}

// Release settles an allowed request whose outcome says nothing about the
// upstream, freeing its half-open slot.
func (cb *CircuitBreaker) Release() {
	cb.guard(func() {
		if cb.state == StateHalfOpen {
			cb.inFlight = max(cb.inFlight-1, 0)
		}
	})
}

func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	return cb.state
}

// guard runs fn under the lock, then tells the listener if fn changed state.
func (cb *CircuitBreaker) guard(fn func()) {
	cb.mu.Lock()
	from := cb.state
	fn()
	to, listener := cb.state, cb.listener
	cb.mu.Unlock()

	if from != to && listener != nil {
		listener(from, to)
	}
}

// moveTo resets the counters for the new state. Callers hold the lock.
func (cb *CircuitBreaker) moveTo(to State) {
	cb.state = to
	cb.failures, cb.successes, cb.inFlight = 0, 0, 0

	if to == StateOpen {
		cb.openedAt = cb.now()
	}
}
