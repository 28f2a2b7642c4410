package registry

import (
	"sort"

	"signalscope/internal/encode"
	"signalscope/internal/event"
	"signalscope/pkg/types"
)

// Snapshot copies the current state. Later registry mutations never show up
// in a returned Snapshot. The metrics provider runs after the lock is
// released so it may query the registry itself.
func (r *Registry) Snapshot() types.Snapshot {
	r.mu.Lock()
	s := types.Snapshot{
		Signals:          make(map[string]types.NotifierView),
		Computed:         make(map[string]types.NotifierView),
		Controllers:      r.controllerSummaries(),
		Middlewares:      r.activity.items(),
		History:          event.MapAll(r.global.items()),
		PerSignalHistory: make(map[string][]map[string]any, len(r.perID)),
		Timestamp:        event.Millis(r.now()),
	}
	for id, rec := range r.notifiers {
		v := types.NotifierView{
			ID:         id,
			Kind:       string(rec.kind),
			Controller: rec.controller.name,
			Label:      rec.label,
			Value:      r.read(rec),
			UpdatedAt:  event.Millis(rec.updatedAt),
		}
		if rec.kind.computed() {
			s.Computed[id] = v
		} else {
			s.Signals[id] = v
		}
	}
	for id, b := range r.perID {
		s.PerSignalHistory[id] = event.MapAll(b.items())
	}
	provider, codec := r.metrics, r.codec
	r.mu.Unlock()

	s.Metrics = collectMetrics(provider, codec)
	return s
}

func collectMetrics(provider func() map[string]any, codec *encode.Codec) (out map[string]any) {
	out = map[string]any{}
	if provider == nil {
		return out
	}
	defer func() {
		if p := recover(); p != nil {
			recoveredPanicsTotal.WithLabelValues("metrics").Inc()
			out = map[string]any{"error": "metrics provider panicked"}
		}
	}()
	for k, v := range provider() {
		out[k] = codec.Value(v)
	}
	return out
}

// controllerSummaries lists live controllers by creation order. Callers hold r.mu.
func (r *Registry) controllerSummaries() []types.ControllerSummary {
	cs := make([]*controller, 0, len(r.controllers))
	for _, c := range r.controllers {
		cs = append(cs, c)
	}
	sort.Slice(cs, func(i, j int) bool { return cs[i].seq < cs[j].seq })
	out := make([]types.ControllerSummary, len(cs))
	for i, c := range cs {
		out[i] = types.ControllerSummary{
			ID:          c.name,
			CreatedAt:   event.Millis(c.createdAt),
			SignalCount: len(c.ids),
		}
	}
	return out
}

// Controllers returns the controller summaries.
func (r *Registry) Controllers() []types.ControllerSummary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.controllerSummaries()
}

// Counts summarizes registry size. Middlewares counts distinct middleware
// names in the activity log.
func (r *Registry) Counts() types.Counts {
	r.mu.Lock()
	defer r.mu.Unlock()
	var c types.Counts
	for _, rec := range r.notifiers {
		if rec.kind.computed() {
			c.Computed++
		} else {
			c.Signals++
		}
	}
	c.Controllers = len(r.controllers)
	seen := make(map[string]struct{})
	for _, a := range r.activity.items() {
		seen[a.Name] = struct{}{}
	}
	c.Middlewares = len(seen)
	return c
}
