// Package reactive provides minimal notifiers for demos and tests: a writable
// Signal and a Computed cell recomputed from explicitly listed sources. It
// does no dependency tracking.
package reactive

import "sync"

// listeners keeps callbacks in registration order.
type listeners struct {
	mu   sync.Mutex
	next uint64
	fns  []entry
}

type entry struct {
	id uint64
	fn func()
}

func (l *listeners) add(fn func()) func() {
	l.mu.Lock()
	l.next++
	id := l.next
	l.fns = append(l.fns, entry{id: id, fn: fn})
	l.mu.Unlock()
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		for i, e := range l.fns {
			if e.id == id {
				l.fns = append(l.fns[:i:i], l.fns[i+1:]...)
				return
			}
		}
	}
}

func (l *listeners) snapshot() []func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]func(), len(l.fns))
	for i, e := range l.fns {
		out[i] = e.fn
	}
	return out
}

func (l *listeners) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.fns)
}

// notify runs callbacks without holding any lock.
func (l *listeners) notify() {
	for _, fn := range l.snapshot() {
		fn()
	}
}

// Signal is a writable reactive value.
type Signal[T comparable] struct {
	mu sync.RWMutex
	v  T
	ls listeners
}

// NewSignal returns a Signal holding v.
func NewSignal[T comparable](v T) *Signal[T] { return &Signal[T]{v: v} }

// Get returns the current value.
func (s *Signal[T]) Get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.v
}

// Set stores v and notifies listeners when it differs from the current value.
func (s *Signal[T]) Set(v T) {
	s.mu.Lock()
	if s.v == v {
		s.mu.Unlock()
		return
	}
	s.v = v
	s.mu.Unlock()
	s.ls.notify()
}

// Update applies fn to the current value and stores the result. fn runs under
// the signal's lock and must not call back into s.
func (s *Signal[T]) Update(fn func(T) T) {
	s.mu.Lock()
	next := fn(s.v)
	if next == s.v {
		s.mu.Unlock()
		return
	}
	s.v = next
	s.mu.Unlock()
	s.ls.notify()
}

// Value implements the registry Notifier contract.
func (s *Signal[T]) Value() any { return s.Get() }

// AddListener registers fn and returns its remover.
func (s *Signal[T]) AddListener(fn func()) func() { return s.ls.add(fn) }

// Listeners reports how many listeners are attached.
func (s *Signal[T]) Listeners() int { return s.ls.count() }

// Source is anything a Computed can depend on.
type Source interface {
	AddListener(fn func()) func()
}

// Computed caches fn's result and recomputes it whenever a source changes.
type Computed[T comparable] struct {
	mu      sync.RWMutex
	v       T
	fn      func() T
	ls      listeners
	removes []func()
}

// NewComputed evaluates fn once and subscribes to sources.
func NewComputed[T comparable](fn func() T, sources ...Source) *Computed[T] {
	c := &Computed[T]{fn: fn, v: fn()}
	for _, s := range sources {
		c.removes = append(c.removes, s.AddListener(c.recompute))
	}
	return c
}

func (c *Computed[T]) recompute() {
	next := c.fn()
	c.mu.Lock()
	if next == c.v {
		c.mu.Unlock()
		return
	}
	c.v = next
	c.mu.Unlock()
	c.ls.notify()
}

// Get returns the cached value.
func (c *Computed[T]) Get() T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.v
}

// Value implements the registry Notifier contract.
func (c *Computed[T]) Value() any { return c.Get() }

// AddListener registers fn and returns its remover.
func (c *Computed[T]) AddListener(fn func()) func() { return c.ls.add(fn) }

// Listeners reports how many listeners are attached.
func (c *Computed[T]) Listeners() int { return c.ls.count() }

// Dispose unsubscribes from every source.
func (c *Computed[T]) Dispose() {
	c.mu.Lock()
	removes := c.removes
	c.removes = nil
	c.mu.Unlock()
	for _, rm := range removes {
		rm()
	}
}
