package breaker

import (
	"sync"

	"github.com/ukcompliance/complianceengine/internal/auditlog"
)

// Manager holds one Breaker per dependency name, constructing it lazily
// on first use with a shared Config and Emitter.
type Manager struct {
	mu       sync.Mutex
	breakers map[string]*Breaker
	cfg      Config
	emitter  auditlog.Emitter
}

// NewManager creates a Manager. emitter may be nil (audit events are
// then discarded).
func NewManager(cfg Config, emitter auditlog.Emitter) *Manager {
	if emitter == nil {
		emitter = auditlog.NewNoopEmitter()
	}
	return &Manager{
		breakers: make(map[string]*Breaker),
		cfg:      cfg.withDefaults(),
		emitter:  emitter,
	}
}

// Get returns the Breaker for name, constructing it on first use.
func (m *Manager) Get(name string) *Breaker {
	m.mu.Lock()
	defer m.mu.Unlock()

	if b, ok := m.breakers[name]; ok {
		return b
	}
	b := New(name, m.cfg, m.emitter)
	m.breakers[name] = b
	return b
}

// States returns a snapshot of every breaker's current state, keyed by
// dependency name - used by the /health contract's circuit_states field.
func (m *Manager) States() map[string]State {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]State, len(m.breakers))
	for name, b := range m.breakers {
		out[name] = b.State()
	}
	return out
}
