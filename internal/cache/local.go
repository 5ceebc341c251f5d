package cache

import (
	"sync"
	"time"

	"github.com/golang/groupcache/lru"
)

// DefaultMaxEntries and DefaultMaxBytes are the local cache's default
// bounds from the spec.
const (
	DefaultMaxEntries = 10000
	DefaultMaxBytes   = 64 * 1024 * 1024
)

// Local is a bounded, in-process TTL+LRU result cache. It is the
// fallback tier of Layered, and can also be used standalone in a
// single-instance deployment.
type Local struct {
	mu         sync.Mutex
	ll         *lru.Cache
	maxBytes   int
	usedBytes  int
	stats      Stats
	now        func() time.Time
}

type localEntry struct {
	value     []byte
	expiresAt time.Time
}

// NewLocal constructs a Local cache bounded by maxEntries and
// maxBytes. A zero or negative value for either uses the package
// default.
func NewLocal(maxEntries int, maxBytes int) *Local {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}

	l := &Local{maxBytes: maxBytes, now: time.Now}
	l.ll = lru.New(maxEntries)
	l.ll.OnEvicted = func(key lru.Key, value interface{}) {
		if e, ok := value.(*localEntry); ok {
			l.usedBytes -= len(e.value)
			l.stats.Evictions++
		}
	}
	return l
}

func namespacedKey(namespace, key string) string {
	return namespace + "\x00" + key
}

// Get returns the cached value for (namespace, key), or ok=false on a
// miss or an expired entry.
func (l *Local) Get(namespace, key string) ([]byte, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	v, ok := l.ll.Get(namespacedKey(namespace, key))
	if !ok {
		l.stats.Misses++
		return nil, false
	}
	entry := v.(*localEntry)
	if l.now().After(entry.expiresAt) {
		l.ll.Remove(namespacedKey(namespace, key))
		l.stats.Misses++
		return nil, false
	}
	l.stats.Hits++
	return entry.value, true
}

// Set stores value under (namespace, key) with the given TTL, evicting
// the least-recently-used entry as needed to respect max_bytes.
func (l *Local) Set(namespace, key string, value []byte, ttl time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	nk := namespacedKey(namespace, key)
	if existing, ok := l.ll.Get(nk); ok {
		l.usedBytes -= len(existing.(*localEntry).value)
	}

	entry := &localEntry{value: value, expiresAt: l.now().Add(ttl)}
	l.ll.Add(nk, entry)
	l.usedBytes += len(value)

	for l.usedBytes > l.maxBytes && l.ll.Len() > 0 {
		l.ll.RemoveOldest()
	}
	l.stats.Sets++
}

// Invalidate removes (namespace, key) if present.
func (l *Local) Invalidate(namespace, key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ll.Remove(namespacedKey(namespace, key))
}

// Stats returns a snapshot of cumulative cache activity.
func (l *Local) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	s := l.stats
	s.EntryCount = l.ll.Len()
	return s
}
