package cache

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukcompliance/complianceengine/internal/auditlog"
)

func TestLocal_SetGet(t *testing.T) {
	l := NewLocal(0, 0)
	l.Set("validation", "fp1", []byte("result"), time.Minute)

	v, ok := l.Get("validation", "fp1")
	require.True(t, ok)
	assert.Equal(t, []byte("result"), v)
}

func TestLocal_MissOnUnknownKey(t *testing.T) {
	l := NewLocal(0, 0)
	_, ok := l.Get("validation", "missing")
	assert.False(t, ok)
}

func TestLocal_ExpiresByTTL(t *testing.T) {
	l := NewLocal(0, 0)
	fake := time.Now()
	l.now = func() time.Time { return fake }

	l.Set("validation", "fp1", []byte("result"), time.Second)
	fake = fake.Add(2 * time.Second)

	_, ok := l.Get("validation", "fp1")
	assert.False(t, ok)
}

func TestLocal_NamespacesAreIsolated(t *testing.T) {
	l := NewLocal(0, 0)
	l.Set("validation", "k", []byte("a"), time.Minute)
	l.Set("other", "k", []byte("b"), time.Minute)

	va, _ := l.Get("validation", "k")
	vb, _ := l.Get("other", "k")
	assert.Equal(t, []byte("a"), va)
	assert.Equal(t, []byte("b"), vb)
}

func TestLocal_EvictsOldestWhenOverMaxBytes(t *testing.T) {
	l := NewLocal(100, 10)
	l.Set("ns", "a", []byte("12345"), time.Minute)
	l.Set("ns", "b", []byte("12345"), time.Minute)
	l.Set("ns", "c", []byte("12345"), time.Minute)

	_, ok := l.Get("ns", "a")
	assert.False(t, ok, "oldest entry should have been evicted to stay under max_bytes")
	_, ok = l.Get("ns", "c")
	assert.True(t, ok)
}

func TestLocal_Invalidate(t *testing.T) {
	l := NewLocal(0, 0)
	l.Set("ns", "k", []byte("v"), time.Minute)
	l.Invalidate("ns", "k")

	_, ok := l.Get("ns", "k")
	assert.False(t, ok)
}

func TestLocal_Stats(t *testing.T) {
	l := NewLocal(0, 0)
	l.Set("ns", "k", []byte("v"), time.Minute)
	l.Get("ns", "k")
	l.Get("ns", "missing")

	s := l.Stats()
	assert.Equal(t, uint64(1), s.Hits)
	assert.Equal(t, uint64(1), s.Misses)
	assert.Equal(t, uint64(1), s.Sets)
	assert.Equal(t, 1, s.EntryCount)
}

type fakeExternal struct {
	failGet, failSet bool
	store            map[string][]byte
}

func newFakeExternal() *fakeExternal { return &fakeExternal{store: make(map[string][]byte)} }

func (f *fakeExternal) Get(namespace, key string) ([]byte, bool, error) {
	if f.failGet {
		return nil, false, errors.New("external store unreachable")
	}
	v, ok := f.store[namespace+key]
	return v, ok, nil
}

func (f *fakeExternal) Set(namespace, key string, value []byte, ttl time.Duration) error {
	if f.failSet {
		return errors.New("external store unreachable")
	}
	f.store[namespace+key] = value
	return nil
}

func (f *fakeExternal) Invalidate(namespace, key string) error {
	delete(f.store, namespace+key)
	return nil
}

func TestLayered_PrefersExternal(t *testing.T) {
	ext := newFakeExternal()
	l := NewLayered(ext, NewLocal(0, 0), nil, nil)

	l.Set("ns", "k", []byte("v"), time.Minute)
	v, ok := l.Get("ns", "k")
	require.True(t, ok)
	assert.Equal(t, []byte("v"), v)
}

func TestLayered_DegradesToLocalOnExternalFailure(t *testing.T) {
	ext := newFakeExternal()
	ext.failGet = true
	ext.failSet = true
	local := NewLocal(0, 0)
	var warned int
	l := NewLayered(ext, local, func(string, ...interface{}) { warned++ }, nil)

	l.Set("ns", "k", []byte("v"), time.Minute)
	v, ok := l.Get("ns", "k")
	require.True(t, ok)
	assert.Equal(t, []byte("v"), v)
	assert.True(t, l.Stats().Degraded)
	assert.Greater(t, warned, 0)
}

func TestLayered_WarnsAtMostOncePerInterval(t *testing.T) {
	ext := newFakeExternal()
	ext.failGet = true
	l := NewLayered(ext, NewLocal(0, 0), func(string, ...interface{}) {}, nil)
	l.warnEvery = time.Hour

	var warned int
	l.warn = func(string, ...interface{}) { warned++ }

	l.Get("ns", "k")
	l.Get("ns", "k")
	l.Get("ns", "k")

	assert.Equal(t, 1, warned)
}

type recordingEmitter struct {
	events []auditlog.Event
}

func (r *recordingEmitter) Emit(e auditlog.Event) { r.events = append(r.events, e) }
func (r *recordingEmitter) Dropped() uint64       { return 0 }
func (r *recordingEmitter) Close() error          { return nil }

func TestLayered_EmitsCacheDegradedEvent(t *testing.T) {
	ext := newFakeExternal()
	ext.failGet = true
	rec := &recordingEmitter{}
	l := NewLayered(ext, NewLocal(0, 0), nil, rec)

	l.Get("ns", "k")

	require.Len(t, rec.events, 1)
	assert.Equal(t, auditlog.EventCacheDegraded, rec.events[0].EventType)
}

func TestLayered_NilExternalUsesLocalOnly(t *testing.T) {
	l := NewLayered(nil, NewLocal(0, 0), nil, nil)
	l.Set("ns", "k", []byte("v"), time.Minute)
	v, ok := l.Get("ns", "k")
	require.True(t, ok)
	assert.Equal(t, []byte("v"), v)
}
