package registry

import (
	"reflect"
	"strconv"
	"strings"

	"signalscope/internal/event"
)

// Namer lets an owner choose its controller display name.
type Namer interface {
	DebugName() string
}

// globalOwner stands in for a nil owner.
type globalOwner struct{}

// typeOwner groups owners that have no identity of their own by type.
type typeOwner struct{ t reflect.Type }

const globalName = "Global"

// RegisterController ensures a controller record exists for owner and
// returns its name. Idempotent per owner identity.
func (r *Registry) RegisterController(owner any) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ensureController(owner).name
}

// UnregisterController removes owner's controller and detaches every notifier
// it owns. Unknown owners are ignored.
func (r *Registry) UnregisterController(owner any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.controllers[ownerKey(owner)]
	if !ok {
		return
	}
	owned := len(c.ids)
	for id := range c.ids {
		if rec, ok := r.notifiers[id]; ok && rec.controller == c {
			r.removeRecord(rec)
		}
	}
	delete(r.controllers, c.key)
	delete(r.names, c.name)
	if r.enabled {
		r.recordEvent(event.NewControllerUnregistered(c.name, r.now(), event.Meta{"controller": c.name}))
	}
	r.log.Debug().Str("controller", c.name).Int("notifiers", owned).Msg("controller unregistered")
}

func ownerKey(owner any) any {
	if owner == nil {
		return globalOwner{}
	}
	if key, ok := identity(owner); ok {
		return key
	}
	return typeOwner{t: reflect.TypeOf(owner)}
}

func (r *Registry) ensureController(owner any) *controller {
	key := ownerKey(owner)
	if c, ok := r.controllers[key]; ok {
		return c
	}
	c := &controller{
		key:       key,
		name:      r.uniqueName(displayName(owner)),
		createdAt: r.now(),
		seq:       r.nextSeq(),
		ids:       make(map[string]struct{}),
	}
	r.controllers[key] = c
	r.names[c.name] = c
	if r.enabled {
		r.recordEvent(event.NewControllerRegistered(c.name, c.createdAt, event.Meta{"controller": c.name}))
	}
	return c
}

func (r *Registry) uniqueName(base string) string {
	if _, taken := r.names[base]; !taken {
		return base
	}
	for n := 2; ; n++ {
		name := base + "#" + strconv.Itoa(n)
		if _, taken := r.names[name]; !taken {
			return name
		}
	}
}

// displayName derives a controller name: DebugName when provided, else the
// bare Go type name.
func displayName(owner any) (name string) {
	if owner == nil {
		return globalName
	}
	if n, ok := owner.(Namer); ok {
		func() {
			defer func() { _ = recover() }()
			name = n.DebugName()
		}()
		if name != "" {
			return name
		}
	}
	t := reflect.TypeOf(owner)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	name = t.Name()
	if name == "" {
		name = t.Kind().String()
	}
	if i := strings.IndexByte(name, '['); i > 0 {
		name = name[:i]
	}
	return name
}
