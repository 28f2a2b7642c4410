package registry

import (
	"signalscope/internal/event"
	"signalscope/pkg/types"
)

// recordEvent appends e to the global history and, for notifier events, to
// its per-id bucket, then hands it to the publisher. Callers hold r.mu.
func (r *Registry) recordEvent(e event.Event) {
	r.global.push(e)
	if e.Kind.NotifierScoped() && e.ID != "" {
		r.bucket(e.ID).push(e)
	}
	eventsRecordedTotal.WithLabelValues(e.Kind.String()).Inc()
	func() {
		defer r.recoverPanic("publisher", e.ID)
		r.pub.Publish(e)
	}()
}

func (r *Registry) bucket(id string) *ring[event.Event] {
	b, ok := r.perID[id]
	if !ok {
		b = newRing[event.Event](r.limitFor(id))
		r.perID[id] = b
	}
	return b
}

func (r *Registry) limitFor(id string) int {
	if n, ok := r.limits[id]; ok {
		return n
	}
	if r.perIDLimit > 0 {
		return r.perIDLimit
	}
	return r.historyLimit
}

// RecordMiddlewareEvent records a middleware activity. Ignored while disabled.
func (r *Registry) RecordMiddlewareEvent(name string, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.enabled {
		return
	}
	at := r.now()
	v := r.codec.Value(payload)
	r.recordEvent(event.NewMiddleware(name, v, at, event.Meta{"middleware": name}))
	r.activity.push(types.MiddlewareActivity{Name: name, Payload: v, Timestamp: event.Millis(at)})
}

// SetHistoryLimitFor overrides the cap of one per-id bucket and trims it
// immediately. Non-positive limits are ignored.
func (r *Registry) SetHistoryLimitFor(id string, limit int) {
	if limit <= 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.limits[id] = limit
	if b, ok := r.perID[id]; ok {
		b.setLimit(limit)
	}
}

// SetHistoryLimit changes the global cap. Per-id buckets without an override
// follow it unless a per-id default was configured. Non-positive limits are
// ignored.
func (r *Registry) SetHistoryLimit(limit int) {
	if limit <= 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.historyLimit = limit
	r.global.setLimit(limit)
	r.activity.setLimit(limit)
	for id, b := range r.perID {
		b.setLimit(r.limitFor(id))
	}
}

// HistoryLimit returns the global cap.
func (r *Registry) HistoryLimit() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.historyLimit
}

// ClearHistory empties global and per-id history and the middleware activity
// log. Registered controllers and notifiers are untouched.
func (r *Registry) ClearHistory() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.global.clear()
	r.activity.clear()
	r.perID = make(map[string]*ring[event.Event])
}

// History returns a copy of the global history, oldest first.
func (r *Registry) History() []event.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.global.items()
}

// HistoryFor returns a copy of one per-id bucket, oldest first.
func (r *Registry) HistoryFor(id string) []event.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.perID[id]
	if !ok {
		return nil
	}
	return b.items()
}

// SetPerIDHistoryLimit changes the default cap of per-id buckets without an
// override. Zero makes them follow the global cap; negative values are
// ignored.
func (r *Registry) SetPerIDHistoryLimit(limit int) {
	if limit < 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.perIDLimit = limit
	for id, b := range r.perID {
		b.setLimit(r.limitFor(id))
	}
}
