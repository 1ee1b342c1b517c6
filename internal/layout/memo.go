package layout

import (
	"sync"

	"github.com/cpuguy83/calpager/internal/daterange"
)

// memoSize covers the visible page and its neighbours during a swipe.
const memoSize = 8

type memoKey struct {
	start, end int64
}

// Memo caches layouts by visible range for one store version. A new
// version drops every cached entry.
type Memo[R any] struct {
	mu      sync.Mutex
	version uint64
	entries map[memoKey]R
	order   []memoKey
	hits    uint64
}

// Get returns the cached result for (visible, version), calling compute on
// a miss. compute runs without the lock held.
func (m *Memo[R]) Get(visible daterange.Range, version uint64, compute func() R) R {
	key := memoKey{visible.Start.UnixNano(), visible.End.UnixNano()}

	m.mu.Lock()
	if m.entries == nil || m.version != version {
		m.entries = make(map[memoKey]R, memoSize)
		m.order = m.order[:0]
		m.version = version
	}
	if r, ok := m.entries[key]; ok {
		m.hits++
		m.mu.Unlock()
		return r
	}
	m.mu.Unlock()

	r := compute()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.version != version {
		return r
	}
	if _, ok := m.entries[key]; !ok {
		if len(m.order) == memoSize {
			delete(m.entries, m.order[0])
			m.order = m.order[1:]
		}
		m.order = append(m.order, key)
	}
	m.entries[key] = r
	return r
}

// Hits returns how many lookups were served from the cache.
func (m *Memo[R]) Hits() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hits
}
