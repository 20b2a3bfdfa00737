package values

// Module is a loaded module (§3 "Module"): its name, globals table,
// native-symbol registry, and the main-function reference consumed on first
// run by the import protocol (§4.10).
type Module struct {
	Name    string
	Globals map[string]Value
	Natives map[string]*Native // native symbols for this module; the vm resolves natives through registry.Registry, not this map
	Main    Value               // the compiled module body; the vm's import path neither reads nor clears it
	Ran     bool                // set by the import path once the module initializer has been started
}

// NewModule allocates a module object.
func NewModule(name string) Value {
	m := &Module{Name: name, Globals: make(map[string]Value), Natives: make(map[string]*Native), Main: Null()}
	return FromObject(newObject(ObjModule, ModuleClass, m))
}

// AsModule extracts the *Module payload.
func AsModule(v Value) *Module { return v.AsObject().Payload.(*Module) }

// IsModule reports whether v is a module object.
func IsModule(v Value) bool { return v.IsObject() && v.ObjectKind() == ObjModule }

// BoundMethod pairs a receiver value with a method callable (closure or
// native) — §3 "BoundMethod".
type BoundMethod struct {
	Receiver Value
	Method   Value // Closure or Native
}

// NewBoundMethod allocates a bound-method object.
func NewBoundMethod(receiver, method Value) Value {
	return FromObject(newObject(ObjBoundMethod, BoundMethodClass, &BoundMethod{Receiver: receiver, Method: method}))
}

// AsBoundMethod extracts the *BoundMethod payload.
func AsBoundMethod(v Value) *BoundMethod { return v.AsObject().Payload.(*BoundMethod) }

// IsBoundMethod reports whether v is a bound-method object.
func IsBoundMethod(v Value) bool { return v.IsObject() && v.ObjectKind() == ObjBoundMethod }

// StackFrameRecord is one entry of a StackTrace (§3 "StackTrace").
type StackFrameRecord struct {
	Module   string
	Function string
	Line     int
	Depth    int
}

// StackTrace is an ordered sequence of frame records, innermost-first,
// attached to raised exception instances under the interned `stacktrace`
// field name (§3 invariant 6).
type StackTrace struct {
	Records []StackFrameRecord
}

// NewStackTrace allocates an (initially empty) stack trace object.
func NewStackTrace() Value {
	return FromObject(newObject(ObjStackTrace, StackTraceClass, &StackTrace{}))
}

// AsStackTrace extracts the *StackTrace payload.
func AsStackTrace(v Value) *StackTrace { return v.AsObject().Payload.(*StackTrace) }

// IsStackTrace reports whether v is a stack-trace object.
func IsStackTrace(v Value) bool { return v.IsObject() && v.ObjectKind() == ObjStackTrace }

// Record appends a frame entry — stRecordFrame of §6.
func (st *StackTrace) Record(module, function string, line, depth int) {
	st.Records = append(st.Records, StackFrameRecord{Module: module, Function: function, Line: line, Depth: depth})
}
