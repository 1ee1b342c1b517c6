// Package observe provides a small publish/subscribe value container.
package observe

import (
	"slices"
	"sync"
)

// Value holds a value and notifies subscribers each time it changes.
//
// Subscribers run synchronously on the publishing goroutine, in publish
// order, after the new value is visible to Get. A subscriber may call Get
// (or read other state) but must not publish to the same Value.
type Value[T any] struct {
	equal func(a, b T) bool

	notify sync.Mutex // serializes publish + fan-out

	mu      sync.RWMutex
	v       T
	version uint64
	subs    map[uint64]func(T)
	nextID  uint64
}

// NewValue creates a Value holding initial. equal decides whether a Set is a
// change; if nil, every Set publishes.
func NewValue[T any](initial T, equal func(a, b T) bool) *Value[T] {
	return &Value[T]{
		equal: equal,
		v:     initial,
		subs:  make(map[uint64]func(T)),
	}
}

// Get returns the current value.
func (v *Value[T]) Get() T {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.v
}

// Version returns how many changes have been published.
func (v *Value[T]) Version() uint64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.version
}

// Set stores x and publishes it if it differs from the current value.
// It reports whether a change was published.
func (v *Value[T]) Set(x T) bool {
	changed, _ := v.Update(func(T) (T, error) { return x, nil })
	return changed
}

// Update atomically derives the next value from the current one and
// publishes it once. If fn returns an error nothing changes.
func (v *Value[T]) Update(fn func(cur T) (T, error)) (bool, error) {
	v.notify.Lock()
	defer v.notify.Unlock()

	v.mu.Lock()
	next, err := fn(v.v)
	if err != nil {
		v.mu.Unlock()
		return false, err
	}
	if v.equal != nil && v.equal(v.v, next) {
		v.mu.Unlock()
		return false, nil
	}
	v.v = next
	v.version++
	subs := v.snapshotSubs()
	v.mu.Unlock()

	for _, fn := range subs {
		fn(next)
	}
	return true, nil
}

// Subscribe registers fn for future changes and returns a function that
// removes it. fn is not called with the current value.
func (v *Value[T]) Subscribe(fn func(T)) (cancel func()) {
	v.mu.Lock()
	id := v.nextID
	v.nextID++
	v.subs[id] = fn
	v.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			v.mu.Lock()
			delete(v.subs, id)
			v.mu.Unlock()
		})
	}
}

// snapshotSubs returns subscribers in registration order. Caller holds mu.
func (v *Value[T]) snapshotSubs() []func(T) {
	if len(v.subs) == 0 {
		return nil
	}
	ids := make([]uint64, 0, len(v.subs))
	for id := range v.subs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	out := make([]func(T), 0, len(ids))
	for _, id := range ids {
		out = append(out, v.subs[id])
	}
	return out
}

// Derive returns a Value that tracks fn(src) and publishes only when the
// derived value changes according to equal. The returned cancel detaches it.
func Derive[S, T any](src *Value[S], fn func(S) T, equal func(a, b T) bool) (*Value[T], func()) {
	d := NewValue(fn(src.Get()), equal)
	cancel := src.Subscribe(func(s S) {
		d.Set(fn(s))
	})
	return d, cancel
}
