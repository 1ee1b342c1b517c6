package calendar

import (
	"sync"
	"time"

	"github.com/google/btree"

	"github.com/cpuguy83/calpager/internal/daterange"
)

// storeItem orders items by (start, id) in the index.
type storeItem[T any] struct {
	Item[T]
}

func (a storeItem[T]) Less(than btree.Item) bool {
	b := than.(storeItem[T])
	if !a.Span.Start.Equal(b.Span.Start) {
		return a.Span.Start.Before(b.Span.Start)
	}
	return a.ID < b.ID
}

// pivot builds a search key sorting before every item starting at t.
func pivot[T any](t time.Time) storeItem[T] {
	return storeItem[T]{Item[T]{Span: daterange.Range{Start: t}}}
}

// Store is an in-memory event store indexed by start time. It answers
// "items intersecting R" exactly and bumps a version on every mutation so
// that cached layouts can be invalidated.
type Store[T any] struct {
	mu      sync.RWMutex
	tree    *btree.BTree
	byID    map[string]storeItem[T]
	maxSpan time.Duration
	version uint64
}

// NewStore creates an empty store.
func NewStore[T any]() *Store[T] {
	return &Store[T]{
		tree: btree.New(16),
		byID: make(map[string]storeItem[T]),
	}
}

// Put inserts or replaces an item by ID.
func (s *Store[T]) Put(items ...Item[T]) {
	if len(items) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range items {
		s.put(it)
	}
	s.version++
}

// Replace swaps the whole content of the store in one mutation.
func (s *Store[T]) Replace(items []Item[T]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tree = btree.New(16)
	s.byID = make(map[string]storeItem[T], len(items))
	s.maxSpan = 0
	for _, it := range items {
		s.put(it)
	}
	s.version++
}

// Delete removes items by ID. It reports how many were present.
func (s *Store[T]) Delete(ids ...string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, id := range ids {
		old, ok := s.byID[id]
		if !ok {
			continue
		}
		s.tree.Delete(old)
		delete(s.byID, id)
		n++
	}
	if n > 0 {
		s.version++
	}
	return n
}

// Get returns the item with id.
func (s *Store[T]) Get(id string) (Item[T], bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	it, ok := s.byID[id]
	return it.Item, ok
}

// Between returns the items intersecting r, ordered by (start, id).
// A zero-length item at t intersects r iff r.Start <= t < r.End.
func (s *Store[T]) Between(r daterange.Range) []Item[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Item[T]
	// No item starting before r.Start-maxSpan can reach into r.
	from := pivot[T](r.Start.Add(-s.maxSpan))
	s.tree.AscendGreaterOrEqual(from, func(i btree.Item) bool {
		it := i.(storeItem[T])
		if !it.Span.Start.Before(r.End) && !(r.IsEmpty() && it.Span.Start.Equal(r.Start)) {
			return false
		}
		if it.Span.Overlaps(r) {
			out = append(out, it.Item)
		}
		return true
	})
	return out
}

// All returns every item ordered by (start, id).
func (s *Store[T]) All() []Item[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Item[T], 0, s.tree.Len())
	s.tree.Ascend(func(i btree.Item) bool {
		out = append(out, i.(storeItem[T]).Item)
		return true
	})
	return out
}

// Version increases on every mutation.
func (s *Store[T]) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Len returns the number of stored items.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree.Len()
}

// put inserts it. Caller holds mu.
func (s *Store[T]) put(it Item[T]) {
	if old, ok := s.byID[it.ID]; ok {
		s.tree.Delete(old)
	}
	si := storeItem[T]{it}
	s.tree.ReplaceOrInsert(si)
	s.byID[it.ID] = si
	if d := it.Span.Duration(); d > s.maxSpan {
		s.maxSpan = d
	}
}
