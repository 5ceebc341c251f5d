// Package cache implements the result cache described in the engine
// spec: a namespaced get/set/invalidate/stats interface, backed by a
// layered strategy that prefers an external shared store and falls
// back silently to a bounded local map when no such store is
// configured or it is failing.
package cache

import (
	"sync"
	"time"

	"github.com/ukcompliance/complianceengine/internal/auditlog"
)

// Store is the abstract result cache contract. Keys are opaque byte
// strings to the cache; callers (the engine) construct them.
type Store interface {
	Get(namespace, key string) (value []byte, ok bool)
	Set(namespace, key string, value []byte, ttl time.Duration)
	Invalidate(namespace, key string)
	Stats() Stats
}

// Stats summarizes cache activity since construction.
type Stats struct {
	Hits       uint64
	Misses     uint64
	Sets       uint64
	Evictions  uint64
	Degraded   bool
	EntryCount int
}

// External is the interface an external shared store (a network
// key-value cache with TTL) must satisfy to back a Layered cache. No
// concrete implementation ships here: the corpus this engine was built
// from carries no network cache client, so External is left as a seam
// for a deployment to plug one in. See DESIGN.md.
type External interface {
	Get(namespace, key string) ([]byte, bool, error)
	Set(namespace, key string, value []byte, ttl time.Duration) error
	Invalidate(namespace, key string) error
}

var _ Store = (*Layered)(nil)

// Layered prefers an External store when one is configured and
// healthy, and falls back to a bounded Local map otherwise. A failing
// External store degrades to Local silently, logging at most once per
// minute, and never fails a Get/Set call outright.
type Layered struct {
	external   External
	local      *Local
	warn       func(format string, args ...interface{})
	emitter    auditlog.Emitter
	mu         sync.Mutex
	lastWarnAt time.Time
	warnEvery  time.Duration
}

// NewLayered constructs a Layered cache. external may be nil, in which
// case the Local map is used exclusively. warn is called at most once
// per minute when the external store degrades; it may be nil. emitter
// receives an EventCacheDegraded audit event on the same throttle; it
// may also be nil, in which case no event is emitted.
func NewLayered(external External, local *Local, warn func(format string, args ...interface{}), emitter auditlog.Emitter) *Layered {
	if warn == nil {
		warn = func(string, ...interface{}) {}
	}
	return &Layered{external: external, local: local, warn: warn, emitter: emitter, warnEvery: time.Minute}
}

func (l *Layered) Get(namespace, key string) ([]byte, bool) {
	if l.external != nil {
		v, ok, err := l.external.Get(namespace, key)
		if err == nil {
			return v, ok
		}
		l.degrade(err)
	}
	return l.local.Get(namespace, key)
}

func (l *Layered) Set(namespace, key string, value []byte, ttl time.Duration) {
	if l.external != nil {
		if err := l.external.Set(namespace, key, value, ttl); err == nil {
			return
		} else {
			l.degrade(err)
		}
	}
	l.local.Set(namespace, key, value, ttl)
}

func (l *Layered) Invalidate(namespace, key string) {
	if l.external != nil {
		if err := l.external.Invalidate(namespace, key); err == nil {
			return
		}
		l.degrade(nil)
	}
	l.local.Invalidate(namespace, key)
}

func (l *Layered) Stats() Stats {
	s := l.local.Stats()
	l.mu.Lock()
	s.Degraded = !l.lastWarnAt.IsZero()
	l.mu.Unlock()
	return s
}

// degrade logs at most once per warnEvery that the external store is
// unavailable and this call fell back to the local map. err may be
// nil when the caller already knows the cause.
func (l *Layered) degrade(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if !l.lastWarnAt.IsZero() && now.Sub(l.lastWarnAt) < l.warnEvery {
		return
	}
	l.lastWarnAt = now
	detail := map[string]interface{}{}
	if err != nil {
		l.warn("cache: external store unavailable, falling back to local map: %v", err)
		detail["error"] = err.Error()
	} else {
		l.warn("cache: external store unavailable, falling back to local map")
	}
	if l.emitter != nil {
		l.emitter.Emit(auditlog.Event{
			Ts:        now,
			EventType: auditlog.EventCacheDegraded,
			Detail:    detail,
		})
	}
}
