package vm

import (
	"fmt"

	"github.com/jstar-lang/jstar/values"
)

// normalizeIndex implements the index-normalization contract referenced by
// §4.4: negative indices count from the end; out-of-range indices raise
// IndexOutOfBoundException.
func (vm *VM) normalizeIndex(idx float64, length int) (int, error) {
	if !values.IsInt(values.Number(idx)) {
		return 0, vm.raiseNew("TypeException", "index must be an integer")
	}
	i := int(idx)
	if i < 0 {
		i += length
	}
	if i < 0 || i >= length {
		return 0, vm.raiseNew("IndexOutOfBoundException", fmt.Sprintf("index %d out of bounds (length %d)", int(idx), length))
	}
	return i, nil
}

// getSubscriptOfValue implements §4.4's read path.
func (vm *VM) getSubscriptOfValue(target, index values.Value) (values.Value, error) {
	switch {
	case values.IsList(target):
		if !index.IsNumber() {
			return values.Null(), vm.raiseNew("TypeException", "list index must be a number")
		}
		l := values.AsList(target)
		i, err := vm.normalizeIndex(index.AsNumber(), len(l.Elements))
		if err != nil {
			return values.Null(), err
		}
		return l.Elements[i], nil
	case values.IsTuple(target):
		if !index.IsNumber() {
			return values.Null(), vm.raiseNew("TypeException", "tuple index must be a number")
		}
		t := values.AsTuple(target)
		i, err := vm.normalizeIndex(index.AsNumber(), len(t.Elements))
		if err != nil {
			return values.Null(), err
		}
		return t.Elements[i], nil
	case values.IsString(target):
		if !index.IsNumber() {
			return values.Null(), vm.raiseNew("TypeException", "string index must be a number")
		}
		s := values.AsString(target)
		i, err := vm.normalizeIndex(index.AsNumber(), len(s))
		if err != nil {
			return values.Null(), err
		}
		return values.NewString(string(s[i])), nil
	default:
		return vm.invokeMethodReturning(target, values.SymGet, index)
	}
}

// setSubscriptOfValue implements §4.4's write path.
func (vm *VM) setSubscriptOfValue(target, index, val values.Value) error {
	switch {
	case values.IsList(target):
		if !index.IsNumber() {
			return vm.raiseNew("TypeException", "list index must be a number")
		}
		l := values.AsList(target)
		i, err := vm.normalizeIndex(index.AsNumber(), len(l.Elements))
		if err != nil {
			return err
		}
		l.Elements[i] = val
		return nil
	case values.IsTuple(target), values.IsString(target):
		return vm.raiseNew("TypeException", fmt.Sprintf("%s is immutable", values.GetClass(target).Name))
	default:
		_, err := vm.invokeMethodReturning2(target, values.SymSet, index, val)
		return err
	}
}

// invokeMethodReturning calls a one-argument overload method (e.g.
// __get__) and returns its result synchronously. Opcode handlers that are
// themselves inside the dispatch loop call this rather than hand-rolling
// the "push frame, resume loop" dance a second time; a closure callee's
// bytecode is driven to completion by a nested runEval, which is safe
// because the VM's evaluator is reentrant over Go's own call stack (§5:
// single-threaded, so nesting introduces no concurrency concerns, only
// additional Go stack depth bounded by the same MaxFrames limit).
func (vm *VM) invokeMethodReturning(target values.Value, name string, arg values.Value) (values.Value, error) {
	cls := values.GetClass(target)
	m, ok := cls.Method(name)
	if !ok {
		return values.Null(), vm.raiseNew("TypeException", fmt.Sprintf("%s has no method %q", cls.Name, name))
	}
	vm.push(target)
	vm.push(arg)
	return vm.awaitCall(m, 1)
}

// invokeMethodReturning0 calls a zero-argument overload method (e.g.
// __neg__) and returns its result synchronously.
func (vm *VM) invokeMethodReturning0(target values.Value, name string) (values.Value, error) {
	cls := values.GetClass(target)
	m, ok := cls.Method(name)
	if !ok {
		return values.Null(), vm.raiseNew("TypeException", fmt.Sprintf("%s has no method %q", cls.Name, name))
	}
	vm.push(target)
	return vm.awaitCall(m, 0)
}

func (vm *VM) invokeMethodReturning2(target values.Value, name string, a, b values.Value) (values.Value, error) {
	cls := values.GetClass(target)
	m, ok := cls.Method(name)
	if !ok {
		return values.Null(), vm.raiseNew("TypeException", fmt.Sprintf("%s has no method %q", cls.Name, name))
	}
	vm.push(target)
	vm.push(a)
	vm.push(b)
	return vm.awaitCall(m, 2)
}

// awaitCall invokes callValue(callee, argc) — the receiver/args must
// already be pushed at stack[-argc-1:] — and drives any resulting closure
// frame to completion, returning its single result value.
func (vm *VM) awaitCall(callee values.Value, argc int) (values.Value, error) {
	framesBefore := len(vm.frame)
	if err := vm.callValue(callee, argc); err != nil {
		return values.Null(), err
	}
	if len(vm.frame) == framesBefore {
		// Native call already ran synchronously; result is on top.
		return vm.pop(), nil
	}
	ok, err := vm.runEval(framesBefore)
	if err != nil {
		return values.Null(), err
	}
	if !ok {
		// exc is already on top of the stack, left there by unwindStack's
		// caller; propagate the same errRaised sentinel every other raise
		// path uses so dispatch.go's error handling stays uniform.
		return values.Null(), errRaised
	}
	return vm.pop(), nil
}
