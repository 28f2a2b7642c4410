// Package encode converts arbitrary application values into transport-safe
// structural values: primitives, []any and map[string]any. Encoding is total;
// values it does not understand degrade to a {type, value} pair.
package encode

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// Defaults applied when corresponding options are unset.
const (
	DefaultMaxDepth = 8
	maxShortRunes   = 120
)

// Placeholder replaces any value nested deeper than the configured limit.
const Placeholder = "<max depth>"

// Encoder is implemented by values that know their own debug representation.
// The returned value is encoded again, one level deeper.
type Encoder interface {
	DebugValue() any
}

// Codec holds encoding options. The zero value is not usable; call New.
type Codec struct {
	maxDepth int
}

// Option configures a Codec.
type Option func(*Codec)

// WithMaxDepth sets the recursion limit. Non-positive values keep the default.
func WithMaxDepth(n int) Option {
	return func(c *Codec) {
		if n > 0 {
			c.maxDepth = n
		}
	}
}

// New builds a Codec with the given options applied over the defaults.
func New(opts ...Option) *Codec {
	c := &Codec{maxDepth: DefaultMaxDepth}
	for _, fn := range opts {
		fn(c)
	}
	return c
}

// MaxDepth reports the configured recursion limit.
func (c *Codec) MaxDepth() int { return c.maxDepth }

var std = New()

// Value encodes v with the default Codec.
func Value(v any) any { return std.Value(v) }

// Value encodes v. It never panics.
func (c *Codec) Value(v any) (out any) {
	defer func() {
		if r := recover(); r != nil {
			out = fallback(v)
		}
	}()
	return c.encode(v, 0)
}

func (c *Codec) encode(v any, depth int) any {
	if depth > c.maxDepth {
		return Placeholder
	}
	switch x := v.(type) {
	case nil:
		return nil
	case bool, string,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, uintptr:
		return x
	case float64:
		return finite(x)
	case float32:
		return finite(float64(x))
	case Encoder:
		return c.encode(x.DebugValue(), depth+1)
	case time.Time:
		return x.Format(time.RFC3339Nano)
	case time.Duration:
		return x.String()
	case json.Number:
		return x.String()
	case error:
		return fallback(x)
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = c.encode(e, depth+1)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = c.encode(e, depth+1)
		}
		return out
	}
	return c.reflectValue(reflect.ValueOf(v), depth)
}

func (c *Codec) reflectValue(rv reflect.Value, depth int) any {
	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool()
	case reflect.String:
		return rv.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint()
	case reflect.Float32, reflect.Float64:
		return finite(rv.Float())
	case reflect.Slice:
		if rv.IsNil() {
			return nil
		}
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return fallback(rv.Interface())
		}
		fallthrough
	case reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = c.element(rv.Index(i), depth+1)
		}
		return out
	case reflect.Map:
		if rv.IsNil() {
			return nil
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[mapKey(iter.Key())] = c.element(iter.Value(), depth+1)
		}
		return out
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil
		}
		return c.element(rv.Elem(), depth+1)
	}
	if rv.IsValid() && rv.CanInterface() {
		return fallback(rv.Interface())
	}
	return fallback(nil)
}

// element re-enters the type switch so capability checks apply to nested values.
func (c *Codec) element(rv reflect.Value, depth int) any {
	if !rv.IsValid() {
		return nil
	}
	if rv.CanInterface() {
		return c.encode(rv.Interface(), depth)
	}
	if depth > c.maxDepth {
		return Placeholder
	}
	return c.reflectValue(rv, depth)
}

func mapKey(k reflect.Value) string {
	if k.Kind() == reflect.String {
		return k.String()
	}
	if k.CanInterface() {
		return fmt.Sprint(k.Interface())
	}
	return k.String()
}

func finite(f float64) any {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return f
}

// fallback is the closed branch for opaque values.
func fallback(v any) map[string]any {
	return map[string]any{
		"type":  TypeName(v),
		"value": ShortString(v),
	}
}

// TypeName returns the Go type of v, or "nil".
func TypeName(v any) string {
	if v == nil {
		return "nil"
	}
	return reflect.TypeOf(v).String()
}

// ShortString renders v for humans, truncated to a bounded number of runes.
func ShortString(v any) (s string) {
	defer func() {
		if r := recover(); r != nil {
			s = "<unprintable>"
		}
	}()
	switch x := v.(type) {
	case nil:
		s = "nil"
	case error:
		s = x.Error()
	case fmt.Stringer:
		s = x.String()
	case []byte:
		s = fmt.Sprintf("%d bytes", len(x))
	default:
		s = shallow(reflect.ValueOf(v), true)
	}
	if utf8.RuneCountInString(s) > maxShortRunes {
		r := []rune(s)
		s = string(r[:maxShortRunes]) + "…"
	}
	return s
}

// shallow renders rv without descending into containers, so self-referential
// values cannot recurse. Struct fields are expanded one level only.
func shallow(rv reflect.Value, expand bool) string {
	switch rv.Kind() {
	case reflect.Invalid:
		return "nil"
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool())
	case reflect.String:
		return rv.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'g', -1, 64)
	case reflect.Slice, reflect.Array, reflect.Map, reflect.Chan:
		return fmt.Sprintf("%s(len=%d)", rv.Type(), rv.Len())
	case reflect.Pointer:
		if rv.IsNil() {
			return "nil"
		}
		if expand {
			return "&" + shallow(rv.Elem(), rv.Elem().Kind() == reflect.Struct)
		}
		return "*" + rv.Type().Elem().String()
	case reflect.Struct:
		if !expand {
			return rv.Type().String()
		}
		var b strings.Builder
		b.WriteByte('{')
		for i := 0; i < rv.NumField(); i++ {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(rv.Type().Field(i).Name)
			b.WriteByte(':')
			b.WriteString(shallow(rv.Field(i), false))
			if b.Len() > maxShortRunes*4 {
				break
			}
		}
		b.WriteByte('}')
		return b.String()
	}
	return rv.Type().String()
}
