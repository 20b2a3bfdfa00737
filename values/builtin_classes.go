package values

// Built-in class singletons. §3 invariant 1 requires the class of every
// value to be non-null and reachable, and that built-in class objects
// outlive all user values; as package-level vars they live for the process
// lifetime, which satisfies that trivially for an embedded single-VM-per-
// process model and is cheap to generalize to multi-VM (§5) since classes
// here carry no per-VM state.
//
// These are deliberately NOT wrapped as ObjClass Values at package-init time
// (a *Class is reachable as a plain Go pointer, which is all GetClass and
// is-a checks need); code that needs a first-class class Value (e.g. "is"
// against a builtin type) wraps one with Class.AsValue.
var (
	NullClass     = NewClass("Null", nil, InstantiableNever)
	BoolClass     = NewClass("Bool", nil, InstantiableBuiltinValue)
	NumberClass   = NewClass("Number", nil, InstantiableBuiltinValue)
	StringClass   = NewClass("String", nil, InstantiableBuiltinValue)
	ListClass     = NewClass("List", nil, InstantiableBuiltinValue)
	TupleClass    = NewClass("Tuple", nil, InstantiableBuiltinValue)
	TableClass    = NewClass("Table", nil, InstantiableNever)
	FunctionClass = NewClass("Function", nil, InstantiableNever)
	NativeClass   = NewClass("Native", nil, InstantiableNever)
	ClosureClass  = NewClass("Closure", nil, InstantiableNever)
	UpvalueClass  = NewClass("Upvalue", nil, InstantiableNever)
	ClassClass    = NewClass("Class", nil, InstantiableNever)
	ModuleClass   = NewClass("Module", nil, InstantiableNever)
	BoundMethodClass = NewClass("BoundMethod", nil, InstantiableNever)
	StackTraceClass = NewClass("StackTrace", nil, InstantiableNever)

	// HandleClass covers opaque host resources passed through as
	// KindHandle values that are not heap Objects (e.g. raw file
	// descriptors returned by a native before being wrapped).
	HandleClass = NewClass("Handle", nil, InstantiableNever)
)

// GetClass returns the class of any value in O(1) (§3 "getClass(v)").
func GetClass(v Value) *Class {
	switch v.kind {
	case KindNull:
		return NullClass
	case KindBool:
		return BoolClass
	case KindNumber:
		return NumberClass
	case KindHandle:
		return HandleClass
	case KindObject:
		return v.obj.Class
	}
	return NullClass
}

// Process-wide interned symbol names (§6 "Process-wide sentinels"). These
// are plain Go string constants rather than pre-interned Objects: every
// call site that needs the interned Object form calls values.Intern(name),
// which is itself idempotent, so there is no meaningful difference in
// identity semantics and no separate bootstrap ordering constraint is
// introduced (package var initialization order would otherwise matter if
// these were Object vars referencing the intern pool).
const (
	SymStackTrace   = "stacktrace"
	SymConstructor  = "init"
	SymIter         = "__iter__"
	SymNext         = "__next__"
	SymAdd          = "__add__"
	SymSub          = "__sub__"
	SymMul          = "__mul__"
	SymDiv          = "__div__"
	SymMod          = "__mod__"
	SymRAdd         = "__radd__"
	SymRSub         = "__rsub__"
	SymRMul         = "__rmul__"
	SymRDiv         = "__rdiv__"
	SymRMod         = "__rmod__"
	SymGet          = "__get__"
	SymSet          = "__set__"
	SymEq           = "__eq__"
	SymLt           = "__lt__"
	SymLe           = "__le__"
	SymGt           = "__gt__"
	SymGe           = "__ge__"
	SymNeg          = "__neg__"
)

// ReverseOf maps a direct binary-operator overload symbol to its reverse
// counterpart (§4.5); ok is false for symbols with no reverse form
// (comparisons have no reverse form per §4.5).
func ReverseOf(sym string) (string, bool) {
	switch sym {
	case SymAdd:
		return SymRAdd, true
	case SymSub:
		return SymRSub, true
	case SymMul:
		return SymRMul, true
	case SymDiv:
		return SymRDiv, true
	case SymMod:
		return SymRMod, true
	default:
		return "", false
	}
}
