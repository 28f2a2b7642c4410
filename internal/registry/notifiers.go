package registry

import (
	"strconv"
	"strings"

	"signalscope/internal/encode"
	"signalscope/internal/event"
)

// RegisterNotifier records n under owner's controller and returns its id.
//
// With a label containing Separator the label is the id; any other label is
// namespaced as "<controller>.<label>". Without a label the id is
// "<controller>.<signal|computed>_<counter>". Registering a notifier that is
// already known returns its existing id without attaching another listener.
// A nil notifier yields "".
func (r *Registry) RegisterNotifier(owner any, n Notifier, label string, kind Kind) string {
	if n == nil {
		return ""
	}
	kind = kind.orDefault()
	r.mu.Lock()
	defer r.mu.Unlock()

	c := r.ensureController(owner)
	key, keyed := identity(n)
	if keyed {
		if id, ok := r.byNotifier[key]; ok {
			if rec, live := r.notifiers[id]; live {
				r.relink(rec, c)
				return id
			}
			delete(r.byNotifier, key)
		}
	}

	id := r.freeID(r.deriveID(c, label, kind))
	rec := &record{
		id:         id,
		n:          n,
		kind:       kind,
		controller: c,
		label:      label,
		updatedAt:  r.now(),
		seq:        r.nextSeq(),
	}
	if keyed {
		rec.key = key
		r.byNotifier[key] = id
	}
	r.notifiers[id] = rec
	c.ids[id] = struct{}{}

	if r.enabled {
		r.attach(rec)
		r.recordEvent(event.NewRegister(id, r.read(rec), rec.updatedAt, rec.meta()))
	}
	r.log.Debug().Str("id", id).Str("kind", string(kind)).Bool("enabled", r.enabled).Msg("notifier registered")
	return id
}

// IDForNotifier returns the id n is registered under.
func (r *Registry) IDForNotifier(n Notifier) (string, bool) {
	if n == nil {
		return "", false
	}
	key, ok := identity(n)
	if !ok {
		return "", false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byNotifier[key]
	if !ok {
		return "", false
	}
	if _, live := r.notifiers[id]; !live {
		return "", false
	}
	return id, true
}

func (r *Registry) deriveID(c *controller, label string, kind Kind) string {
	if label != "" {
		if strings.Contains(label, Separator) {
			return label
		}
		return c.name + Separator + label
	}
	c.counter++
	prefix := "signal"
	if kind.computed() {
		prefix = "computed"
	}
	return c.name + Separator + prefix + "_" + strconv.Itoa(c.counter)
}

// freeID suffixes id with "#n" when a different notifier already holds it.
func (r *Registry) freeID(id string) string {
	if _, taken := r.notifiers[id]; !taken {
		return id
	}
	for n := 2; ; n++ {
		cand := id + "#" + strconv.Itoa(n)
		if _, taken := r.notifiers[cand]; !taken {
			return cand
		}
	}
}

// relink restores the controller linkage of an existing record when the
// owning controller was recreated or the record was claimed by another owner.
func (r *Registry) relink(rec *record, c *controller) {
	if rec.controller == c {
		c.ids[rec.id] = struct{}{}
		return
	}
	if _, live := r.controllers[rec.controller.key]; live {
		return
	}
	rec.controller = c
	c.ids[rec.id] = struct{}{}
}

func (r *Registry) attach(rec *record) {
	id := rec.id
	remove := func() {}
	func() {
		defer r.recoverPanic("add_listener", id)
		if fn := rec.n.AddListener(func() { r.onChange(rec) }); fn != nil {
			remove = fn
		}
	}()
	rec.detach = remove
	listenersAttachedTotal.Inc()
}

func (r *Registry) detach(rec *record) {
	if rec.detach == nil {
		return
	}
	func() {
		defer r.recoverPanic("remove_listener", rec.id)
		rec.detach()
	}()
	rec.detach = nil
	listenersDetachedTotal.Inc()
}

func (r *Registry) removeRecord(rec *record) {
	r.detach(rec)
	delete(r.notifiers, rec.id)
	if rec.key != nil {
		delete(r.byNotifier, rec.key)
	}
	delete(rec.controller.ids, rec.id)
	rec.n = nil
}

// onChange is the single listener attached per live record.
func (r *Registry) onChange(rec *record) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, live := r.notifiers[rec.id]; !live || cur != rec {
		return
	}
	rec.updatedAt = r.now()
	if !r.enabled {
		return
	}
	v := r.read(rec)
	if rec.kind.computed() {
		r.recordEvent(event.NewComputedUpdate(rec.id, v, rec.updatedAt, rec.meta()))
		return
	}
	r.recordEvent(event.NewSignalEmit(rec.id, v, rec.updatedAt, rec.meta()))
}

// read returns the encoded current value of rec's notifier.
func (r *Registry) read(rec *record) (v any) {
	defer func() {
		if p := recover(); p != nil {
			recoveredPanicsTotal.WithLabelValues("value").Inc()
			r.log.Debug().Str("id", rec.id).Interface("panic", p).Msg("notifier value read panicked")
			v = map[string]any{"type": encode.TypeName(rec.n), "value": "<unreadable>"}
		}
	}()
	return r.codec.Value(rec.n.Value())
}

func (r *Registry) recoverPanic(source, id string) {
	if p := recover(); p != nil {
		recoveredPanicsTotal.WithLabelValues(source).Inc()
		r.log.Debug().Str("id", id).Str("source", source).Interface("panic", p).Msg("recovered notifier panic")
	}
}

func (rec *record) meta() event.Meta {
	m := event.Meta{
		"controller": rec.controller.name,
		"kind":       string(rec.kind),
	}
	if rec.label != "" {
		m["label"] = rec.label
	}
	return m
}
