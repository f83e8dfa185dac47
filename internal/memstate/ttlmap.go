// Package memstate holds short-lived per-member state (XP cooldowns,
// active game sessions) in an explicit TTL map instead of ambient
// package-level globals. Entries expire on read and on Sweep.
package memstate

import (
	"sync"
	"time"
)

// Key identifies an entry by guild and user.
type Key struct {
	GuildID string
	UserID  string
}

// TTLMap is a mutex-guarded map of per-member values with an expiry per
// entry. The zero value is not usable; call New.
type TTLMap[V any] struct {
	mu      sync.Mutex
	entries map[Key]entry[V]
	now     func() time.Time
}

type entry[V any] struct {
	value   V
	expires time.Time
}

// New creates an empty TTLMap.
func New[V any]() *TTLMap[V] {
	return &TTLMap[V]{
		entries: make(map[Key]entry[V]),
		now:     time.Now,
	}
}

// Get returns the live value for the key. Expired entries are removed and
// reported as absent.
func (m *TTLMap[V]) Get(k Key) (V, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[k]
	if !ok {
		var zero V
		return zero, false
	}
	if m.now().After(e.expires) {
		delete(m.entries, k)
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores the value with the given time-to-live.
func (m *TTLMap[V]) Set(k Key, v V, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[k] = entry[V]{value: v, expires: m.now().Add(ttl)}
}

// Delete removes the entry if present.
func (m *TTLMap[V]) Delete(k Key) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, k)
}

// Sweep removes all expired entries and returns how many were dropped.
// Long-running owners call this periodically so abandoned entries do not
// accumulate between reads.
func (m *TTLMap[V]) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	dropped := 0
	for k, e := range m.entries {
		if now.After(e.expires) {
			delete(m.entries, k)
			dropped++
		}
	}
	return dropped
}

// Len returns the number of stored entries, including any not yet swept.
func (m *TTLMap[V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
