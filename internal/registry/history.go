package registry

import "github.com/eapache/queue"

// ring is a FIFO capped at limit: append, then evict from the front.
type ring[T any] struct {
	q     *queue.Queue
	limit int
}

func newRing[T any](limit int) *ring[T] {
	return &ring[T]{q: queue.New(), limit: limit}
}

func (r *ring[T]) push(v T) {
	r.q.Add(v)
	r.trim()
}

func (r *ring[T]) setLimit(n int) {
	if n <= 0 {
		return
	}
	r.limit = n
	r.trim()
}

func (r *ring[T]) trim() {
	for r.q.Length() > r.limit {
		r.q.Remove()
	}
}

func (r *ring[T]) len() int { return r.q.Length() }

func (r *ring[T]) clear() { r.q = queue.New() }

// items copies the ring contents, oldest first.
func (r *ring[T]) items() []T {
	out := make([]T, r.q.Length())
	for i := range out {
		out[i] = r.q.Get(i).(T)
	}
	return out
}
