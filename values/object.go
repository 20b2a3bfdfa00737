package values

import "fmt"

// ObjKind tags the variant of a heap Object.
type ObjKind byte

const (
	ObjNone ObjKind = iota
	ObjString
	ObjFunction
	ObjNative
	ObjClosure
	ObjUpvalue
	ObjClass
	ObjInstance
	ObjList
	ObjTuple
	ObjModule
	ObjBoundMethod
	ObjStackTrace
	ObjTable
)

func (k ObjKind) String() string {
	switch k {
	case ObjString:
		return "string"
	case ObjFunction:
		return "function"
	case ObjNative:
		return "native"
	case ObjClosure:
		return "closure"
	case ObjUpvalue:
		return "upvalue"
	case ObjClass:
		return "class"
	case ObjInstance:
		return "instance"
	case ObjList:
		return "list"
	case ObjTuple:
		return "tuple"
	case ObjModule:
		return "module"
	case ObjBoundMethod:
		return "bound method"
	case ObjStackTrace:
		return "stacktrace"
	case ObjTable:
		return "table"
	default:
		return "none"
	}
}

// Object is the header shared by every heap object kind (§3 "Object
// header"): a kind tag, the class the object belongs to, a GC mark bit, and
// the sweep-list link. The actual per-kind payload lives in Payload as a
// concrete pointer type (*String, *Function, *Closure, ...); callers type-
// assert via the Kind tag, mirroring the teacher's approach of a single
// Value.Data interface{} field but centralizing the bookkeeping every kind
// needs (class ref + GC bits) instead of duplicating it per struct.
type Object struct {
	Kind    ObjKind
	Class   *Class
	Payload interface{}

	// marked and next support an external mark-sweep collector walking the
	// VM's roots (§6 GC collaborator contract); this module does not
	// implement the collector itself (out of scope per §1), only the
	// bookkeeping fields and allocation primitives a collector would use.
	marked bool
	next   *Object
}

func newObject(kind ObjKind, class *Class, payload interface{}) *Object {
	return &Object{Kind: kind, Class: class, Payload: payload}
}

// Marked reports the GC mark bit.
func (o *Object) Marked() bool { return o.marked }

// SetMarked sets the GC mark bit.
func (o *Object) SetMarked(m bool) { o.marked = m }

// Next returns the next object in the allocator's sweep list.
func (o *Object) Next() *Object { return o.next }

func (o *Object) String() string {
	switch o.Kind {
	case ObjString:
		return o.Payload.(*String).Value
	case ObjFunction:
		return fmt.Sprintf("<fn %s>", o.Payload.(*Function).Name)
	case ObjNative:
		return fmt.Sprintf("<native %s>", o.Payload.(*Native).Name)
	case ObjClosure:
		return fmt.Sprintf("<closure %s>", o.Payload.(*Closure).Function.Name)
	case ObjUpvalue:
		return "<upvalue>"
	case ObjClass:
		return fmt.Sprintf("<class %s>", o.Payload.(*Class).Name)
	case ObjInstance:
		return fmt.Sprintf("<instance of %s>", o.Payload.(*Instance).Class.Name)
	case ObjList:
		return o.Payload.(*List).String()
	case ObjTuple:
		return o.Payload.(*Tuple).String()
	case ObjModule:
		return fmt.Sprintf("<module %s>", o.Payload.(*Module).Name)
	case ObjBoundMethod:
		return "<bound method>"
	case ObjStackTrace:
		return "<stacktrace>"
	case ObjTable:
		return o.Payload.(*Table).String()
	default:
		return "<object>"
	}
}
