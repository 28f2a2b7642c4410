// Package event defines the closed set of debug events recorded by the
// registry. Events are values: once constructed they are never mutated.
package event

import (
	"encoding/json"
	"time"
)

// Kind identifies what happened. The numeric value is internal; only the wire
// name (see String) crosses the process boundary.
type Kind int

const (
	Register Kind = iota + 1
	RegisterController
	UnregisterController
	SignalEmit
	ComputedUpdate
	MiddlewareEvent
)

var wireNames = map[Kind]string{
	Register:             "register",
	RegisterController:   "registerController",
	UnregisterController: "unregisterController",
	SignalEmit:           "signalEmit",
	ComputedUpdate:       "computedUpdate",
	MiddlewareEvent:      "middlewareEvent",
}

// order is the declaration order advertised to clients.
var order = []Kind{Register, RegisterController, UnregisterController, SignalEmit, ComputedUpdate, MiddlewareEvent}

// String returns the stable wire name, or "unknown".
func (k Kind) String() string {
	if s, ok := wireNames[k]; ok {
		return s
	}
	return "unknown"
}

// ParseKind maps a wire name back to its Kind.
func ParseKind(s string) (Kind, bool) {
	for k, name := range wireNames {
		if name == s {
			return k, true
		}
	}
	return 0, false
}

// AllKinds returns every declared kind in declaration order.
func AllKinds() []Kind {
	return append([]Kind(nil), order...)
}

// WireNames returns the wire names of AllKinds.
func WireNames() []string {
	out := make([]string, len(order))
	for i, k := range order {
		out[i] = k.String()
	}
	return out
}

// NotifierScoped reports whether events of this kind belong to a notifier's
// per-id history bucket.
func (k Kind) NotifierScoped() bool {
	switch k {
	case Register, SignalEmit, ComputedUpdate:
		return true
	}
	return false
}

// Meta carries optional context (controller, kind, label).
type Meta map[string]any

// Event is a single recorded occurrence. Value is already encoded.
type Event struct {
	Kind      Kind
	ID        string
	Value     any
	Timestamp int64 // unix milliseconds
	Meta      Meta
}

// Millis converts t into the event timestamp unit.
func Millis(t time.Time) int64 { return t.UnixMilli() }

func build(k Kind, id string, value any, at time.Time, meta Meta) Event {
	return Event{Kind: k, ID: id, Value: value, Timestamp: Millis(at), Meta: cloneMeta(meta)}
}

// NewRegister records that a notifier became observable, carrying the value it
// held at that moment.
func NewRegister(id string, value any, at time.Time, meta Meta) Event {
	return build(Register, id, value, at, meta)
}

// NewControllerRegistered records a controller coming into existence. The id is
// the controller name.
func NewControllerRegistered(name string, at time.Time, meta Meta) Event {
	return build(RegisterController, name, nil, at, meta)
}

// NewControllerUnregistered records a controller teardown.
func NewControllerUnregistered(name string, at time.Time, meta Meta) Event {
	return build(UnregisterController, name, nil, at, meta)
}

// NewSignalEmit records a signal change with the value read when it fired.
func NewSignalEmit(id string, value any, at time.Time, meta Meta) Event {
	return build(SignalEmit, id, value, at, meta)
}

// NewComputedUpdate records a computed cell change with its fresh value.
func NewComputedUpdate(id string, value any, at time.Time, meta Meta) Event {
	return build(ComputedUpdate, id, value, at, meta)
}

// NewMiddleware records a middleware activity. The id is the middleware name.
func NewMiddleware(name string, payload any, at time.Time, meta Meta) Event {
	return build(MiddlewareEvent, name, payload, at, meta)
}

// Map serializes the event into its wire shape.
func (e Event) Map() map[string]any {
	meta := cloneMeta(e.Meta)
	if meta == nil {
		meta = Meta{}
	}
	return map[string]any{
		"kind":      e.Kind.String(),
		"id":        e.ID,
		"value":     e.Value,
		"timestamp": e.Timestamp,
		"meta":      map[string]any(meta),
	}
}

// MarshalJSON encodes the same shape as Map.
func (e Event) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.Map())
}

// MapAll serializes a slice of events.
func MapAll(events []Event) []map[string]any {
	out := make([]map[string]any, len(events))
	for i, e := range events {
		out[i] = e.Map()
	}
	return out
}

func cloneMeta(m Meta) Meta {
	if m == nil {
		return nil
	}
	out := make(Meta, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
