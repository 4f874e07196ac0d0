package memocache

import (
	"sync"
	"time"

	"github.com/burpeebet/foodsearch/internal/domain"
)

// Clock returns the current time. Injectable for deterministic TTL tests.
type Clock func() time.Time

type memoKey struct {
	query string
	limit int
}

type memoEntry struct {
	results  []domain.FoodRecord
	storedAt time.Time
}

// Memo is a thread-safe, short-TTL in-process cache for provider search
// results, keyed by (normalized query, limit). Entries are not persisted
// and are lost on restart. Expired entries are swept opportunistically on
// every write rather than by a background goroutine.
type Memo struct {
	ttl   time.Duration
	now   Clock
	mutex sync.RWMutex
	data  map[memoKey]memoEntry
}

// New creates a memo cache with the given TTL. A nil clock uses time.Now.
func New(ttl time.Duration, now Clock) *Memo {
	if now == nil {
		now = time.Now
	}
	return &Memo{
		ttl:  ttl,
		now:  now,
		data: make(map[memoKey]memoEntry),
	}
}

// Get returns the memoized results for (query, limit) if present and
// younger than the TTL.
func (m *Memo) Get(query string, limit int) ([]domain.FoodRecord, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	entry, exists := m.data[memoKey{query: query, limit: limit}]
	if !exists {
		return nil, false
	}
	if m.now().Sub(entry.storedAt) >= m.ttl {
		return nil, false
	}
	return entry.results, true
}

// Set memoizes results for (query, limit) and sweeps expired entries.
func (m *Memo) Set(query string, limit int, results []domain.FoodRecord) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.data[memoKey{query: query, limit: limit}] = memoEntry{
		results:  results,
		storedAt: m.now(),
	}
	m.sweepLocked()
}

// Sweep removes all expired entries.
func (m *Memo) Sweep() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.sweepLocked()
}

func (m *Memo) sweepLocked() {
	now := m.now()
	for key, entry := range m.data {
		if now.Sub(entry.storedAt) >= m.ttl {
			delete(m.data, key)
		}
	}
}

// Clear removes all entries.
func (m *Memo) Clear() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.data = make(map[memoKey]memoEntry)
}

// Len returns the current number of entries, expired or not.
func (m *Memo) Len() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.data)
}
