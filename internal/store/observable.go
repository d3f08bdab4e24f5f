// Package store implements the storefront's reactive client-state engine:
// observable cart and wishlist collections persisted through a durable
// key-value backend.
package store

import "sync"

// Observable holds a current value and a list of subscribers notified
// synchronously, in registration order, on every published value. A new
// subscriber immediately receives the current value.
//
// Callbacks run while the observable's lock is held: they must not call back
// into the same observable.
type Observable[T any] struct {
	mu     sync.Mutex
	value  T
	subs   []subscription[T]
	nextID int
}

type subscription[T any] struct {
	id int
	fn func(T)
}

// NewObservable creates an observable holding the given initial value.
func NewObservable[T any](initial T) *Observable[T] {
	return &Observable[T]{value: initial}
}

// Get returns the current value.
func (o *Observable[T]) Get() T {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.value
}

// Set stores v as the current value and notifies every subscriber, in
// registration order, before returning.
func (o *Observable[T]) Set(v T) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.value = v
	for _, s := range o.subs {
		s.fn(v)
	}
}

// Subscribe registers fn and immediately invokes it with the current value.
// The returned function unsubscribes; calling it more than once is harmless.
func (o *Observable[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	o.mu.Lock()
	id := o.nextID
	o.nextID++
	o.subs = append(o.subs, subscription[T]{id: id, fn: fn})
	current := o.value
	fn(current)
	o.mu.Unlock()

	return func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		for i, s := range o.subs {
			if s.id == id {
				o.subs = append(o.subs[:i], o.subs[i+1:]...)
				return
			}
		}
	}
}

// Derive returns an observable whose value is transform applied to src's
// current value, recomputed on every publish of src. The derived observable
// stays subscribed for the lifetime of src and cannot be detached, so it is
// meant for long-lived views created once per store, not per call.
func Derive[T, U any](src *Observable[T], transform func(T) U) *Observable[U] {
	d := NewObservable(transform(src.Get()))
	src.Subscribe(func(v T) {
		d.Set(transform(v))
	})
	return d
}
