package values

// Function is a compiled function body (§3 "Function (compiled)"):
// bytecode blob (opaque to this package — opcodes.Instruction, referenced by
// interface{} to avoid an import cycle with the opcodes package, which does
// not need to know about values.Function), a constant pool, and the
// arity/defaults/vararg contract shared with Native.
type Function struct {
	Name        string
	Module      *Module
	Code        interface{} // []*opcodes.Instruction, set by the vm/asm packages
	Constants   []Value
	ArgsCount   int     // "most": declared positional parameter count
	DefaultArgs []Value // length == DefaultCount; defaults[i] is the value for parameter (ArgsCount-DefaultCount+i)
	Vararg      bool
	UpvalueC    int // number of upvalues this function's closures capture
	Lines       []int

	// SuperClass is the frozen lexical superclass reference of §4.7
	// ("stores the declaring class's superclass as the first constant in
	// the method's function"), kept as a dedicated field rather than an
	// actual constant-pool slot so that attaching it at DEF_METHOD time
	// never perturbs the bytecode's existing OP_GET_CONST indices. Nil for
	// functions that are not class methods, or whose class has no super.
	SuperClass *Class
}

// LeastArgs returns the minimum number of positional arguments this
// function accepts without triggering TypeException "at least" (§4.2).
func (f *Function) LeastArgs() int {
	return f.ArgsCount - len(f.DefaultArgs)
}

// NewFunction allocates a Function object.
func NewFunction(fn *Function) Value {
	return FromObject(newObject(ObjFunction, FunctionClass, fn))
}

// AsFunction extracts the *Function payload.
func AsFunction(v Value) *Function { return v.AsObject().Payload.(*Function) }

// IsFunction reports whether v is a compiled-function object.
func IsFunction(v Value) bool { return v.IsObject() && v.ObjectKind() == ObjFunction }

// NativeFunc is the Go-side implementation signature for a Native object.
// args excludes the receiver; for bound/method natives the receiver is
// passed separately by the call protocol via NativeCallContext.
type NativeFunc func(ctx NativeCallContext, args []Value) (Value, error)

// NativeCallContext exposes exactly the services a native needs, mirroring
// the teacher's BuiltinCallContext narrow-interface pattern so that the
// values package does not need to import vm.
type NativeCallContext interface {
	Receiver() Value
	Raise(exceptionClass *Class, message string) error
}

// Native is an external callable descriptor (§3 "Native") sharing the
// arity/defaults/vararg contract with Function, plus a resolved Go function
// pointer.
type Native struct {
	Name        string
	ArgsCount   int
	DefaultArgs []Value
	Vararg      bool
	Fn          NativeFunc
}

// LeastArgs mirrors Function.LeastArgs.
func (n *Native) LeastArgs() int { return n.ArgsCount - len(n.DefaultArgs) }

// NewNative allocates a Native object.
func NewNative(n *Native) Value {
	return FromObject(newObject(ObjNative, NativeClass, n))
}

// AsNative extracts the *Native payload.
func AsNative(v Value) *Native { return v.AsObject().Payload.(*Native) }

// IsNative reports whether v is a native-callable object.
func IsNative(v Value) bool { return v.IsObject() && v.ObjectKind() == ObjNative }
