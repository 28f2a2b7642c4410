// Package stream fans recorded events out to live subscribers.
//
// Publish never blocks: each subscriber owns a bounded buffer and events that
// do not fit are dropped (newest first) and counted, so a slow debug client
// sees a gap instead of stalling the instrumented application.
package stream

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"signalscope/internal/event"
)

// DefaultBuffer is the per-subscriber queue length used when Subscribe gets a
// non-positive size.
const DefaultBuffer = 256

var (
	publishedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "signalscope",
		Subsystem: "stream",
		Name:      "published_total",
		Help:      "Events offered to the stream",
	})
	droppedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "signalscope",
		Subsystem: "stream",
		Name:      "dropped_total",
		Help:      "Events dropped because a subscriber buffer was full",
	})
	subscribersGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "signalscope",
		Subsystem: "stream",
		Name:      "subscribers",
		Help:      "Live stream subscribers",
	})
)

func init() {
	prometheus.MustRegister(publishedTotal, droppedTotal, subscribersGauge)
}

// Broadcaster is a single-producer, many-consumer live tap.
type Broadcaster struct {
	mu     sync.RWMutex
	subs   map[string]*Subscription
	closed bool
}

// New returns an empty Broadcaster.
func New() *Broadcaster {
	return &Broadcaster{subs: make(map[string]*Subscription)}
}

// Subscription receives events published after it joined.
type Subscription struct {
	id      string
	ch      chan event.Event
	dropped atomic.Uint64
	b       *Broadcaster
	once    sync.Once
}

// ID is a unique subscription identifier.
func (s *Subscription) ID() string { return s.id }

// C is closed when the subscription or the broadcaster is closed.
func (s *Subscription) C() <-chan event.Event { return s.ch }

// Dropped reports how many events this subscriber missed.
func (s *Subscription) Dropped() uint64 { return s.dropped.Load() }

// Close leaves the broadcaster. Safe to call more than once.
func (s *Subscription) Close() {
	s.b.remove(s)
}

// Subscribe joins the broadcaster. Subscribing to a closed broadcaster
// returns a subscription whose channel is already closed.
func (b *Broadcaster) Subscribe(buffer int) *Subscription {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	s := &Subscription{id: uuid.NewString(), ch: make(chan event.Event, buffer), b: b}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		s.once.Do(func() { close(s.ch) })
		return s
	}
	b.subs[s.id] = s
	subscribersGauge.Inc()
	return s
}

// Publish offers e to every subscriber without blocking.
func (b *Broadcaster) Publish(e event.Event) {
	publishedTotal.Inc()
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, s := range b.subs {
		select {
		case s.ch <- e:
		default:
			s.dropped.Add(1)
			droppedTotal.Inc()
		}
	}
}

// Len returns the number of live subscribers.
func (b *Broadcaster) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Close disconnects every subscriber. Later subscriptions are closed on arrival.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, s := range b.subs {
		delete(b.subs, id)
		subscribersGauge.Dec()
		s.once.Do(func() { close(s.ch) })
	}
}

func (b *Broadcaster) remove(s *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[s.id]; ok {
		delete(b.subs, s.id)
		subscribersGauge.Dec()
	}
	s.once.Do(func() { close(s.ch) })
}
