package vm

import "github.com/jstar-lang/jstar/values"

// cause discriminates why a handler is being (re-)entered (§4.9 glossary
// "Cause").
type cause int

const (
	causeExcept cause = 0
	causeReturn cause = 1
)

// raise implements OP_RAISE (§4.9): top of stack must be an Exception
// instance. A fresh StackTrace is allocated (overwriting any prior one)
// and unwinding begins from the current frame depth.
func (vm *VM) raise() error {
	exc := vm.peek()
	if !values.IsInstance(exc) {
		vm.pop()
		return vm.raiseNew("TypeException", "can only raise Exception instances")
	}
	inst := values.AsInstance(exc)
	if !inst.Class.IsSubclassOf(vm.exceptionRoot) {
		vm.pop()
		return vm.raiseNew("TypeException", "can only raise Exception instances")
	}
	inst.Fields[values.SymStackTrace] = values.NewStackTrace()
	return errRaised
}

// enterHandler implements the "entering a handler" steps of §4.9: close
// upvalues above savedSp-1, reset sp to savedSp, then push the exception
// (or pending return value) and the numeric cause code.
func (vm *VM) enterHandler(f *frame, h handler, payload values.Value, c cause) {
	vm.closeUpvalues(h.savedSp)
	vm.setSp(h.savedSp)
	vm.push(payload)
	vm.push(values.Number(float64(c)))
	f.ip = h.address
}

// unwindStack implements §4.9's unwind state machine: while the current
// frame count exceeds depth, record the frame in the exception's stack
// trace, then either resume at a pending handler or discard the frame.
// Returns false if no handler is found before reaching depth (the
// exception propagates past the evaluator, §7 "runEval returns false").
func (vm *VM) unwindStack(depth int) bool {
	exc := vm.peek()
	inst := values.AsInstance(exc)
	var trace *values.StackTrace
	if tv, ok := inst.Fields[values.SymStackTrace]; ok && values.IsStackTrace(tv) {
		trace = values.AsStackTrace(tv)
	}

	for len(vm.frame) > depth {
		f := vm.frame[len(vm.frame)-1]
		if trace != nil {
			module := ""
			name := ""
			if f.module != nil {
				module = f.module.Name
			}
			if f.fn != nil {
				name = f.fn.Name
			} else if f.native != nil {
				name = f.native.Name
			}
			trace.Record(module, name, vm.curLine(f), len(vm.frame))
		}
		if h, ok := vm.popMatchingHandler(f, inst.Class); ok {
			exc := vm.pop() // lift exception off the stack before reseating it post-reset
			vm.enterHandler(f, h, exc, causeExcept)
			vm.curModule = f.module
			return true
		}
		vm.closeUpvalues(f.base)
		vm.frame = vm.frame[:len(vm.frame)-1]
	}
	return false
}

// popMatchingHandler pops handlers off f until it finds one whose class
// filter accepts excClass (nil filter = catch-all ensure/except), or the
// handler stack is exhausted.
func (vm *VM) popMatchingHandler(f *frame, excClass *values.Class) (handler, bool) {
	for {
		h, ok := f.topHandler()
		if !ok {
			return handler{}, false
		}
		f.popHandler()
		if h.kind == handlerEnsure {
			return h, true
		}
		if h.class == nil || excClass.IsSubclassOf(h.class) {
			return h, true
		}
		// Non-matching except handler: keep looking further down this
		// frame's handler stack before giving up on the frame.
	}
}

func (vm *VM) curLine(f *frame) int {
	if f.fn == nil || f.ip-1 < 0 || f.ip-1 >= len(f.fn.Lines) {
		return 0
	}
	return f.fn.Lines[f.ip-1]
}

// endTry implements OP_END_TRY (§4.9): consult the cause marker left on
// the stack by enterHandler; EXCEPT continues unwinding (the handler body
// completed without resolving), RETURN falls through to return-propagation
// with the pending value.
func (vm *VM) endTry() error {
	c := cause(int(vm.pop().AsNumber()))
	if c == causeReturn {
		retVal := vm.pop()
		return vm.doReturn(retVal)
	}
	// causeExcept: the exception value below the cause marker resumes
	// unwinding from the current frame.
	depth := len(vm.frame) - 1
	if ok := vm.unwindStack(depth); !ok {
		return errRaised
	}
	return nil
}

// doReturn implements §4.9's OP_RETURN semantics: scan outstanding
// handlers top-down for an ENSURE entry before actually returning; once
// none remain, close upvalues to the frame base and pop it, delivering the
// return value to the caller (or signalling evaluator completion).
func (vm *VM) doReturn(retVal values.Value) error {
	f := vm.curFrame()
	for {
		h, ok := f.topHandler()
		if !ok {
			break
		}
		f.popHandler()
		if h.kind == handlerEnsure {
			vm.enterHandler(f, h, retVal, causeReturn)
			return nil
		}
	}
	vm.closeUpvalues(f.base)
	vm.frame = vm.frame[:len(vm.frame)-1]
	if len(vm.frame) > 0 {
		vm.curModule = vm.frame[len(vm.frame)-1].module
	}
	vm.setSp(f.base)
	vm.push(retVal)
	return errFrameReturned
}

// errFrameReturned is a sentinel used internally by the dispatch loop to
// tell runEval "a frame just returned, check whether we've unwound back to
// the starting depth" without a second explicit return channel.
var errFrameReturned = errSentinel("jstar: frame returned")

type errSentinel string

func (e errSentinel) Error() string { return string(e) }
