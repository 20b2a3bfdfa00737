package vm

import "github.com/jstar-lang/jstar/values"

// MaxLocals bounds the locals window of a single frame (§4.1, stackSize is
// rounded to a multiple of MAX_LOCALS+1).
const MaxLocals = 255

// HandlerMax bounds the number of outstanding except/ensure handlers a
// single frame may carry (§4.9 "fixed-capacity array of up to HANDLER_MAX").
const HandlerMax = 16

// handlerKind distinguishes an except handler from an ensure handler; both
// share the same record shape but only except handlers carry a class filter.
type handlerKind byte

const (
	handlerExcept handlerKind = iota
	handlerEnsure
)

// handler is one `(type, address, savedSp)` record of §4.9, pushed by
// OP_SETUP_EXCEPT / OP_SETUP_ENSURE and popped by OP_POP_HANDLER.
type handler struct {
	kind    handlerKind
	class   *values.Class // exception-class filter; nil means catch-all
	address int           // bytecode address of the handler body
	savedSp int            // absolute stack index to restore on entry
}

// frame is a per-call record (§4.1, §4.2): instruction pointer, base of the
// operand window, the executing callable, and a handler stack. Grounded on
// wudi-hey/vm/context.go's CallFrame, collapsed to the single-VM-owns-its-
// state model of §5 (no per-frame mutex: the VM is single-threaded).
type frame struct {
	closure *values.Closure // nil for a native frame
	fn      *values.Function
	native  *values.Native // non-nil for a native frame
	ip      int
	base    int // absolute stack index of slot 0 (the callee/this slot)

	// module is the module this frame executes against, captured at call
	// time so OP_GET_GLOBAL/OP_IMPORT resolve against the right globals
	// table even when a call crosses module boundaries.
	module *values.Module

	handlers []handler
}

func (f *frame) pushHandler(h handler) bool {
	if len(f.handlers) >= HandlerMax {
		return false
	}
	f.handlers = append(f.handlers, h)
	return true
}

func (f *frame) popHandler() {
	if len(f.handlers) > 0 {
		f.handlers = f.handlers[:len(f.handlers)-1]
	}
}

func (f *frame) topHandler() (handler, bool) {
	if len(f.handlers) == 0 {
		return handler{}, false
	}
	return f.handlers[len(f.handlers)-1], true
}
