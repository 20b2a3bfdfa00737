// Package values defines the tagged runtime value representation shared by
// the compiler, the virtual machine, and native functions.
package values

import (
	"fmt"
	"math"
)

// Kind discriminates the variants of Value.
type Kind byte

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindHandle
	KindObject
)

// Value is a discriminated union: a 64-bit float, a boolean, null, an opaque
// handle (for host-owned resources that are not heap Objects), or a
// reference to a heap Object. Implementations are free to use NaN-boxing;
// this one uses a tagged struct, which is simpler to read and debug and is
// the representation the teacher's own Value type uses.
type Value struct {
	kind   Kind
	number float64
	handle interface{}
	obj    *Object
}

// Null returns the null value.
func Null() Value { return Value{kind: KindNull} }

// Bool wraps a boolean.
func Bool(b bool) Value {
	n := 0.0
	if b {
		n = 1.0
	}
	return Value{kind: KindBool, number: n}
}

// Number wraps a float64.
func Number(f float64) Value { return Value{kind: KindNumber, number: f} }

// Handle wraps an opaque host value that is not a heap Object (e.g. a raw Go
// value passed through from a native without being promoted to a language
// object).
func Handle(h interface{}) Value { return Value{kind: KindHandle, handle: h} }

// FromObject wraps a heap object reference.
func FromObject(o *Object) Value {
	if o == nil {
		return Null()
	}
	return Value{kind: KindObject, obj: o}
}

func (v Value) Kind() Kind    { return v.kind }
func (v Value) IsNull() bool  { return v.kind == KindNull }
func (v Value) IsBool() bool  { return v.kind == KindBool }
func (v Value) IsNumber() bool { return v.kind == KindNumber }
func (v Value) IsHandle() bool { return v.kind == KindHandle }
func (v Value) IsObject() bool { return v.kind == KindObject }

// AsBool returns the boolean payload; only valid when IsBool.
func (v Value) AsBool() bool { return v.number != 0 }

// AsNumber returns the float64 payload; only valid when IsNumber.
func (v Value) AsNumber() float64 { return v.number }

// AsHandle returns the opaque handle payload; only valid when IsHandle.
func (v Value) AsHandle() interface{} { return v.handle }

// AsObject returns the heap object pointer; only valid when IsObject.
func (v Value) AsObject() *Object { return v.obj }

// ObjectKind returns the object's kind tag, or ObjNone if v is not an
// object.
func (v Value) ObjectKind() ObjKind {
	if v.obj == nil {
		return ObjNone
	}
	return v.obj.Kind
}

// Truthy implements the language's boolean-coercion rule: null and false are
// falsy, the number zero and NaN are falsy, every object reference and every
// non-zero number is truthy. This is used directly by the iterator protocol
// (§4.8), where the iteration state is tested for truthiness each pass.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindNull:
		return false
	case KindBool:
		return v.number != 0
	case KindNumber:
		return v.number != 0 && !math.IsNaN(v.number)
	case KindHandle:
		return v.handle != nil
	case KindObject:
		return v.obj != nil
	}
	return false
}

// IsInt implements the spec's integer predicate: trunc(x) == x.
func IsInt(v Value) bool {
	if !v.IsNumber() {
		return false
	}
	f := v.number
	return !math.IsInf(f, 0) && !math.IsNaN(f) && math.Trunc(f) == f
}

func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindBool:
		if v.AsBool() {
			return "true"
		}
		return "false"
	case KindNumber:
		return formatNumber(v.number)
	case KindHandle:
		return fmt.Sprintf("<handle %v>", v.handle)
	case KindObject:
		return v.obj.String()
	}
	return "<invalid>"
}

func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case f == math.Trunc(f) && math.Abs(f) < 1e15:
		return fmt.Sprintf("%d", int64(f))
	default:
		return fmt.Sprintf("%g", f)
	}
}

// RawEquals implements the spec's value-equality table (§6 "Value
// equality"): numbers via IEEE-754 (so NaN != NaN), null/bool via payload
// equality, handles and objects via identity. It deliberately does not
// consult __eq__ — that dispatch lives in the vm package's overload
// resolution, which falls back to RawEquals for the built-in short-circuit
// types per §4.5.
func RawEquals(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNull:
		return true
	case KindBool, KindNumber:
		return a.number == b.number
	case KindHandle:
		return a.handle == b.handle
	case KindObject:
		return a.obj == b.obj
	}
	return false
}
