package values

// Upvalue is either open (pointing at a live stack slot, identified by
// absolute stack index) or closed (owning the migrated value) — §3
// "Upvalue". The open-upvalue list maintained by the vm package keeps these
// sorted by descending StackIndex and never duplicates an index (§3
// invariant 3); this struct only carries the per-upvalue state, not the
// list itself.
type Upvalue struct {
	Closed     bool
	StackIndex int // meaningful only while Closed == false
	Value      Value
}

// Get returns the upvalue's current value. stack is the VM's operand stack,
// needed to read an open upvalue's live slot.
func (u *Upvalue) Get(stack []Value) Value {
	if u.Closed {
		return u.Value
	}
	return stack[u.StackIndex]
}

// Set writes the upvalue's current value.
func (u *Upvalue) Set(stack []Value, v Value) {
	if u.Closed {
		u.Value = v
		return
	}
	stack[u.StackIndex] = v
}

// Close migrates an open upvalue's value out of the stack into its own
// storage and marks it closed. Called by closeUpvalues (§4.6).
func (u *Upvalue) Close(stack []Value) {
	if u.Closed {
		return
	}
	u.Value = stack[u.StackIndex]
	u.Closed = true
}

// NewUpvalue allocates an open upvalue pointing at the given stack index.
func NewUpvalue(stackIndex int) Value {
	return FromObject(newObject(ObjUpvalue, UpvalueClass, &Upvalue{StackIndex: stackIndex}))
}

// AsUpvalue extracts the *Upvalue payload.
func AsUpvalue(v Value) *Upvalue { return v.AsObject().Payload.(*Upvalue) }

// IsUpvalue reports whether v is an upvalue object.
func IsUpvalue(v Value) bool { return v.IsObject() && v.ObjectKind() == ObjUpvalue }

// Closure is a Function plus an array of captured Upvalue references (§3
// "Closure").
type Closure struct {
	Function  *Function
	Upvalues  []Value // each a Value of kind ObjUpvalue
}

// NewClosure allocates a closure over fn with the given upvalue array.
func NewClosure(fn *Function, upvalues []Value) Value {
	return FromObject(newObject(ObjClosure, ClosureClass, &Closure{Function: fn, Upvalues: upvalues}))
}

// AsClosure extracts the *Closure payload.
func AsClosure(v Value) *Closure { return v.AsObject().Payload.(*Closure) }

// IsClosure reports whether v is a closure object.
func IsClosure(v Value) bool { return v.IsObject() && v.ObjectKind() == ObjClosure }
