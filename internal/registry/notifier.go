package registry

import "reflect"

// Notifier is the contract consumed from the reactive core. AddListener
// registers a change callback, fired with no arguments after the value
// changed, and returns the func that removes it.
type Notifier interface {
	Value() any
	AddListener(fn func()) (remove func())
}

// Kind classifies a notifier.
type Kind string

const (
	KindSignal   Kind = "signal"
	KindComputed Kind = "computed"
	// KindValue is used for plain value holders that are neither signals
	// nor computed cells. They are reported with the signals.
	KindValue Kind = "value"
)

func (k Kind) computed() bool { return k == KindComputed }

func (k Kind) orDefault() Kind {
	if k == "" {
		return KindSignal
	}
	return k
}

// ptrKey identifies reference values that are not comparable with ==.
type ptrKey struct {
	t reflect.Type
	p uintptr
}

// identity returns a map key standing for v's identity. Comparable values are
// their own key; maps, slices, funcs and chans are keyed by address. ok is
// false for values with no usable identity.
func identity(v any) (key any, ok bool) {
	if v == nil {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Comparable() {
		return v, true
	}
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Pointer, reflect.UnsafePointer:
		return ptrKey{t: rv.Type(), p: rv.Pointer()}, true
	}
	return nil, false
}
