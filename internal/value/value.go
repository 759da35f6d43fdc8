// Package value defines the tagged Value union produced by every generator
// node, and the structural-equality rules used by the uniqueness modifier.
package value

import (
	"fmt"
	"sort"
	"time"
)

// Kind tags the variant a Value holds.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindDateTime
	KindArray
	KindObject
)

// String returns the lowercase name of the kind, used in diagnostics.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindDateTime:
		return "date_time"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is the tagged union produced by a generator node's single Produce
// step. Only the field matching Kind is meaningful.
type Value struct {
	Kind   Kind
	Bool   bool
	Number float64
	// Int reports whether Number should be rendered without a fractional
	// part; set by integer-subtyped number generators.
	Int      bool
	Str      string
	Time     time.Time
	TimeForm string // declared DateTime.format, used when rendering
	Array    []Value
	// Object keeps its fields in the order they were produced (the schema
	// loader sorts an object's fields by name); ordering carries no
	// comparison semantics (see Equal).
	Object []Field
}

// Field is one named entry of an Object value.
type Field struct {
	Name  string
	Value Value
}

// Null is the singular Null value.
var Null = Value{Kind: KindNull}

// NewBool wraps a bool.
func NewBool(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// NewInt wraps an integer-subtyped number.
func NewInt(n int64) Value { return Value{Kind: KindNumber, Number: float64(n), Int: true} }

// NewFloat wraps a float-subtyped number.
func NewFloat(f float64) Value { return Value{Kind: KindNumber, Number: f} }

// NewString wraps a string.
func NewString(s string) Value { return Value{Kind: KindString, Str: s} }

// NewDateTime wraps a time.Time rendered with the given format string.
func NewDateTime(t time.Time, format string) Value {
	return Value{Kind: KindDateTime, Time: t, TimeForm: format}
}

// NewArray wraps an ordered slice of Values.
func NewArray(vs []Value) Value { return Value{Kind: KindArray, Array: vs} }

// NewObject wraps an ordered set of fields.
func NewObject(fields []Field) Value { return Value{Kind: KindObject, Object: fields} }

// Get returns the value of the named field and whether it was present.
func (v Value) Get(name string) (Value, bool) {
	for _, f := range v.Object {
		if f.Name == name {
			return f.Value, true
		}
	}
	return Value{}, false
}

// Equal reports structural equality, the convention this engine uses for
// the uniqueness modifier (see SPEC_FULL.md §3). Object comparison is
// order-independent: two objects are equal iff they have the same set of
// field names, each mapping to structurally equal values.
func Equal(a, b Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindNull:
		return true
	case KindBool:
		return a.Bool == b.Bool
	case KindNumber:
		return a.Number == b.Number
	case KindString:
		return a.Str == b.Str
	case KindDateTime:
		return a.Time.Equal(b.Time)
	case KindArray:
		if len(a.Array) != len(b.Array) {
			return false
		}
		for i := range a.Array {
			if !Equal(a.Array[i], b.Array[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(a.Object) != len(b.Object) {
			return false
		}
		am := make(map[string]Value, len(a.Object))
		for _, f := range a.Object {
			am[f.Name] = f.Value
		}
		for _, f := range b.Object {
			av, ok := am[f.Name]
			if !ok || !Equal(av, f.Value) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Key renders a Value into a comparable string suitable for use as a map
// key in the uniqueness memory (internal/runtime). It is derived from, but
// distinct from, JSON encoding: field order is normalized so that Key
// respects the same order-independent equality as Equal.
func Key(v Value) string {
	switch v.Kind {
	case KindNull:
		return "n:"
	case KindBool:
		return fmt.Sprintf("b:%v", v.Bool)
	case KindNumber:
		return fmt.Sprintf("#:%v", v.Number)
	case KindString:
		return "s:" + v.Str
	case KindDateTime:
		return "t:" + v.Time.UTC().Format(time.RFC3339Nano)
	case KindArray:
		out := "a:["
		for i, e := range v.Array {
			if i > 0 {
				out += ","
			}
			out += Key(e)
		}
		return out + "]"
	case KindObject:
		names := make([]string, len(v.Object))
		byName := make(map[string]Value, len(v.Object))
		for i, f := range v.Object {
			names[i] = f.Name
			byName[f.Name] = f.Value
		}
		sort.Strings(names)
		out := "o:{"
		for i, n := range names {
			if i > 0 {
				out += ","
			}
			out += n + "=" + Key(byName[n])
		}
		return out + "}"
	default:
		return "?"
	}
}
