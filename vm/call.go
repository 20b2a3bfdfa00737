package vm

import (
	"fmt"

	"github.com/jstar-lang/jstar/values"
)

// MaxFrames bounds recursion depth (§4.2 "Recursion depth is bounded: on
// entry, if framecount would reach the limit, raise StackOverflowException").
const MaxFrames = 2000

// callValue resolves and invokes a callable per the dispatch table of §4.2.
func (vm *VM) callValue(callee values.Value, argc int) error {
	switch {
	case values.IsClosure(callee):
		return vm.callClosure(values.AsClosure(callee), argc)
	case values.IsNative(callee):
		return vm.callNative(values.AsNative(callee), argc)
	case values.IsBoundMethod(callee):
		bm := values.AsBoundMethod(callee)
		vm.setPeekN(argc, bm.Receiver)
		return vm.callValue(bm.Method, argc)
	case values.IsClass(callee):
		return vm.instantiate(values.AsClass(callee), argc)
	default:
		return vm.raiseNew("TypeException", fmt.Sprintf("%s is not callable", values.GetClass(callee).Name))
	}
}

// adjustArguments implements the argument-adjustment law of §4.2/§8: pads
// defaults, collects a vararg tuple, or raises TypeException on arity
// mismatch. argc is the number of positional args already on the stack
// above the receiver slot.
func (vm *VM) adjustArguments(most int, defaults []values.Value, vararg bool, argc int) (int, error) {
	least := most - len(defaults)
	if !vararg {
		if len(defaults) == 0 && argc != most {
			return 0, vm.raiseNew("TypeException", fmt.Sprintf("expected exactly %d args, got %d", most, argc))
		}
		if argc > most {
			return 0, vm.raiseNew("TypeException", fmt.Sprintf("expected at most %d args, got %d", most, argc))
		}
	}
	if argc < least {
		return 0, vm.raiseNew("TypeException", fmt.Sprintf("expected at least %d args, got %d", least, argc))
	}
	for i := argc; i < most && i >= least; i++ {
		vm.push(defaults[i-least])
	}
	newArgc := most
	if vararg {
		extra := argc - most
		if extra < 0 {
			extra = 0
		}
		elems := make([]values.Value, extra)
		for i := extra - 1; i >= 0; i-- {
			elems[i] = vm.pop()
		}
		vm.push(values.NewTuple(elems))
		newArgc = most + 1
	}
	return newArgc, nil
}

func (vm *VM) callClosure(cl *values.Closure, argc int) error {
	if len(vm.frame)+1 >= MaxFrames {
		return vm.raiseNew("StackOverflowException", "stack overflow")
	}
	fn := cl.Function
	newArgc, err := vm.adjustArguments(fn.ArgsCount, fn.DefaultArgs, fn.Vararg, argc)
	if err != nil {
		return err
	}
	base := vm.sp() - newArgc - 1
	f := &frame{closure: cl, fn: fn, ip: 0, base: base, module: fn.Module}
	vm.frame = append(vm.frame, f)
	vm.curModule = fn.Module
	return nil
}

// callNative implements the native return protocol of §4.2: the native
// reads arguments via its own window, pushes exactly one return value, and
// the VM restores the caller's module/apiStack afterward.
func (vm *VM) callNative(n *values.Native, argc int) error {
	newArgc, err := vm.adjustArguments(n.ArgsCount, n.DefaultArgs, n.Vararg, argc)
	if err != nil {
		return err
	}
	window := vm.sp() - newArgc - 1
	savedAPI := vm.apiStack
	savedModule := vm.curModule
	vm.apiStack = window
	receiver := vm.stack[window]

	ctx := &nativeCallContext{vm: vm, receiver: receiver}
	args := append([]values.Value(nil), vm.stack[window+1:vm.sp()]...)
	result, callErr := n.Fn(ctx, args)

	vm.apiStack = savedAPI
	vm.curModule = savedModule
	vm.setSp(window)
	if callErr != nil {
		if le, ok := callErr.(*values.LangError); ok {
			vm.push(le.Exception)
			return errRaised
		}
		return callErr
	}
	vm.push(result)
	return nil
}

// nativeCallContext implements values.NativeCallContext, binding a native
// Go function back to the VM that invoked it without leaking VM internals
// into the values package (§4.2's "native reads arguments via its frame's
// window").
type nativeCallContext struct {
	vm       *VM
	receiver values.Value
}

func (c *nativeCallContext) Receiver() values.Value { return c.receiver }

func (c *nativeCallContext) Raise(exceptionClass *values.Class, message string) error {
	return values.NewLangError(c.vm.makeException(exceptionClass, message))
}

// instantiate implements the Class branch of §4.2's callValue dispatch.
func (vm *VM) instantiate(cls *values.Class, argc int) error {
	switch cls.Instantiable {
	case values.InstantiableNever:
		return vm.raiseNew("TypeException", fmt.Sprintf("%s is not instantiable", cls.Name))
	case values.InstantiableBuiltinValue:
		vm.setPeekN(argc, values.Null())
	default:
		vm.setPeekN(argc, values.NewInstance(cls))
	}
	if ctor, ok := cls.Method(values.SymConstructor); ok {
		return vm.callValue(ctor, argc)
	}
	if argc != 0 {
		return vm.raiseNew("TypeException", fmt.Sprintf("%s takes no arguments", cls.Name))
	}
	receiver := vm.pop()
	vm.push(receiver)
	return nil
}

// invokeValue implements §4.3's method-invocation fast path: `x.name(args)`
// without materializing an intermediate BoundMethod.
func (vm *VM) invokeValue(name string, argc int) error {
	receiver := vm.peekN(argc)
	switch {
	case values.IsInstance(receiver):
		inst := values.AsInstance(receiver)
		if fv, ok := inst.Fields[name]; ok {
			return vm.callValue(fv, argc)
		}
		if m, ok := inst.Class.Method(name); ok {
			return vm.callValue(m, argc)
		}
		return vm.raiseNew("MethodException", fmt.Sprintf("%s has no method %q", inst.Class.Name, name))
	case values.IsModule(receiver):
		mod := values.AsModule(receiver)
		if m, ok := values.ModuleClass.Method(name); ok {
			return vm.callValue(m, argc)
		}
		if g, ok := mod.Globals[name]; ok {
			return vm.callValue(g, argc)
		}
		return vm.raiseNew("NameException", fmt.Sprintf("name %q is not defined in module %s", name, mod.Name))
	default:
		cls := values.GetClass(receiver)
		if m, ok := cls.Method(name); ok {
			return vm.callValue(m, argc)
		}
		return vm.raiseNew("MethodException", fmt.Sprintf("%s has no method %q", cls.Name, name))
	}
}

// getFieldFromValue implements §4.3's getFieldFromValue(name).
func (vm *VM) getFieldFromValue(target values.Value, name string) (values.Value, error) {
	switch {
	case values.IsInstance(target):
		inst := values.AsInstance(target)
		if fv, ok := inst.Fields[name]; ok {
			return fv, nil
		}
		if m, ok := inst.Class.Method(name); ok {
			return values.NewBoundMethod(target, m), nil
		}
		return values.Null(), vm.raiseNew("FieldException", fmt.Sprintf("%s has no field %q", inst.Class.Name, name))
	case values.IsModule(target):
		mod := values.AsModule(target)
		if g, ok := mod.Globals[name]; ok {
			return g, nil
		}
		return values.Null(), vm.raiseNew("NameException", fmt.Sprintf("name %q is not defined in module %s", name, mod.Name))
	default:
		if m, ok := values.GetClass(target).Method(name); ok {
			return values.NewBoundMethod(target, m), nil
		}
		return values.Null(), vm.raiseNew("FieldException", fmt.Sprintf("%s has no field %q", values.GetClass(target).Name, name))
	}
}

// setFieldOfValue implements §4.3's setFieldOfValue(name).
func (vm *VM) setFieldOfValue(target values.Value, name string, val values.Value) error {
	switch {
	case values.IsInstance(target):
		values.AsInstance(target).Fields[name] = val
		return nil
	case values.IsModule(target):
		values.AsModule(target).Globals[name] = val
		return nil
	default:
		return vm.raiseNew("FieldException", fmt.Sprintf("%s fields are not writable", values.GetClass(target).Name))
	}
}
