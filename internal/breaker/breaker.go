// Package breaker implements a per-dependency circuit breaker: closed,
// open, and half-open states with a consecutive-failure threshold to
// open, a cooldown before attempting recovery, and a consecutive-success
// threshold to close again. One Breaker guards one named dependency (an
// LLM provider, or an expensive gate); Manager holds a breaker per name
// and is the unit callers typically depend on.
package breaker

import (
	"errors"
	"sync"
	"time"

	"github.com/ukcompliance/complianceengine/internal/auditlog"
)

// State represents the state of a circuit breaker.
type State int

const (
	// Closed - normal operation, calls are allowed.
	Closed State = iota
	// Open - calls are rejected immediately.
	Open
	// HalfOpen - a limited number of calls are allowed to test recovery.
	HalfOpen
)

// String returns a string representation of the state.
func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// ErrOpen is returned by Allow when the circuit is open and the cooldown
// has not yet elapsed. Callers (a gate, or the provider router) must
// treat this as a degraded condition - fall back to a local heuristic or
// emit a warning finding, never a silent pass.
var ErrOpen = errors.New("circuit breaker open")

// Config parameterizes a single Breaker. Zero values fall back to the
// package defaults (3 consecutive failures to open, 30s cooldown, 2
// consecutive successes to close).
type Config struct {
	FailureThreshold int
	Timeout          time.Duration
	SuccessThreshold int
}

// DefaultConfig returns the spec's default circuit breaker parameters.
func DefaultConfig() Config {
	return Config{
		FailureThreshold: 3,
		Timeout:          30 * time.Second,
		SuccessThreshold: 2,
	}
}

func (c Config) withDefaults() Config {
	if c.FailureThreshold <= 0 {
		c.FailureThreshold = 3
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.SuccessThreshold <= 0 {
		c.SuccessThreshold = 2
	}
	return c
}

// Breaker is a single named circuit breaker.
type Breaker struct {
	mu                  sync.Mutex
	name                string
	state               State
	consecutiveFailures int
	consecutiveSuccess  int
	openedAt            time.Time
	cfg                 Config
	now                 func() time.Time
	emitter             auditlog.Emitter
}

// New creates a Breaker for the named dependency. emitter may be nil, in
// which case transitions are not audited (tests commonly pass nil).
func New(name string, cfg Config, emitter auditlog.Emitter) *Breaker {
	if emitter == nil {
		emitter = auditlog.NewNoopEmitter()
	}
	return &Breaker{
		name:    name,
		cfg:     cfg.withDefaults(),
		now:     time.Now,
		emitter: emitter,
	}
}

// WithClock overrides the time source, for deterministic tests.
func (b *Breaker) WithClock(now func() time.Time) *Breaker {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.now = now
	return b
}

// State returns the breaker's current state, resolving an Open -> HalfOpen
// transition if the cooldown has elapsed.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.maybeTransitionToHalfOpen()
	return b.state
}

// Allow reports whether a call may proceed, and transitions Open ->
// HalfOpen first if the cooldown has elapsed. It returns ErrOpen when
// the circuit is open and the caller must not proceed.
func (b *Breaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.maybeTransitionToHalfOpen()
	if b.state == Open {
		return ErrOpen
	}
	return nil
}

// maybeTransitionToHalfOpen must be called with b.mu held.
func (b *Breaker) maybeTransitionToHalfOpen() {
	if b.state == Open && b.now().Sub(b.openedAt) >= b.cfg.Timeout {
		b.state = HalfOpen
		b.consecutiveSuccess = 0
	}
}

// RecordSuccess reports a successful call. In HalfOpen, the circuit
// closes once SuccessThreshold consecutive successes are observed.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.consecutiveFailures = 0

	switch b.state {
	case HalfOpen:
		b.consecutiveSuccess++
		if b.consecutiveSuccess >= b.cfg.SuccessThreshold {
			b.state = Closed
			b.consecutiveSuccess = 0
			b.emit(auditlog.EventCircuitClosed)
		}
	case Closed:
		// already healthy, nothing to do
	case Open:
		// a success while open should not occur (Allow would have
		// rejected the call), but guard against a racing caller.
	}
}

// RecordFailure reports a failed call. Any failure while HalfOpen
// re-opens the circuit and resets the cooldown clock; in Closed, the
// circuit opens once FailureThreshold consecutive failures accrue.
func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case HalfOpen:
		b.open()
	case Closed:
		b.consecutiveFailures++
		if b.consecutiveFailures >= b.cfg.FailureThreshold {
			b.open()
		}
	case Open:
		// already open; nothing further to do.
	}
}

// open must be called with b.mu held.
func (b *Breaker) open() {
	b.state = Open
	b.openedAt = b.now()
	b.consecutiveFailures = 0
	b.consecutiveSuccess = 0
	b.emit(auditlog.EventCircuitOpened)
}

// emit must be called with b.mu held.
func (b *Breaker) emit(eventType auditlog.EventType) {
	b.emitter.Emit(auditlog.Event{
		Ts:        b.now(),
		EventType: eventType,
		Detail:    map[string]interface{}{"dependency": b.name},
	})
}

// Do runs fn only if the circuit allows it, recording the outcome
// against the breaker. It returns ErrOpen without invoking fn when the
// circuit is open.
func (b *Breaker) Do(fn func() error) error {
	if err := b.Allow(); err != nil {
		return err
	}
	err := fn()
	if err != nil {
		b.RecordFailure()
		return err
	}
	b.RecordSuccess()
	return nil
}
