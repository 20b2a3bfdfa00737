package vm

import (
	"fmt"

	"github.com/jstar-lang/jstar/opcodes"
	"github.com/jstar-lang/jstar/values"
)

// code returns the decoded instruction stream of a bytecode frame. Native
// frames never reach this; dispatch only calls it for frames with fn!=nil.
func code(f *frame) []*opcodes.Instruction {
	return f.fn.Code.([]*opcodes.Instruction)
}

// runEval is the evaluator of §4.11: it holds hot state in fast locals
// (frame, closure, fn, ip — reloaded from vm.frame[len(vm.frame)-1] after
// every control-flow event) and dispatches via a tight switch, the
// fallback strategy §4.11 requires when first-class labels are
// unavailable (Go has no computed goto; the direct-threaded strategy is
// therefore not applicable here and this switch is the sole dispatch
// path — semantically identical to what a jump table would produce, per
// §9 "switch-based fallback must be semantically identical").
//
// It runs until the frame count drops back to depth (a normal return
// unwound past the caller) or an unhandled exception reaches depth, and
// reports which via the bool result.
func (vm *VM) runEval(depth int) (bool, error) {
	for {
		f := vm.curFrame()
		if f.fn == nil {
			// Defensive: a native frame should never be left on top of the
			// call stack mid-dispatch; callNative runs to completion inline.
			return false, newVMError(ErrDispatchCorrupted, "", 0, 0, "dispatch loop re-entered with a native frame on top")
		}
		insts := code(f)
		if f.ip >= len(insts) {
			return false, newVMError(ErrInstructionPointerOOB, f.fn.Name, 0, f.ip, "ip %d, %d instructions", f.ip, len(insts))
		}
		inst := insts[f.ip]
		f.ip++
		vm.recordDispatch(inst.Op)

		if vm.checkEvalBreak() {
			vm.SetEvalBreak(false)
			vm.raiseNew("ProgramInterrupt", "execution interrupted")
			if ok := vm.unwindStack(depth); !ok {
				return false, nil
			}
			continue
		}

		var err error
		switch inst.Op {
		case opcodes.OP_NOP:

		case opcodes.OP_ADD:
			err = vm.binaryOp(values.SymAdd, func(a, b float64) float64 { return a + b })
		case opcodes.OP_SUB:
			err = vm.binaryOp(values.SymSub, func(a, b float64) float64 { return a - b })
		case opcodes.OP_MUL:
			err = vm.binaryOp(values.SymMul, func(a, b float64) float64 { return a * b })
		case opcodes.OP_DIV:
			err = vm.binaryOp(values.SymDiv, func(a, b float64) float64 { return a / b })
		case opcodes.OP_MOD:
			err = vm.binaryOp(values.SymMod, func(a, b float64) float64 {
				m := int64(a) % int64(b)
				return float64(m)
			})
		case opcodes.OP_POW:
			err = vm.opPow()
		case opcodes.OP_NEG:
			err = vm.opNeg()

		case opcodes.OP_LT:
			err = vm.compareOp(values.SymLt, func(a, b float64) bool { return a < b })
		case opcodes.OP_LE:
			err = vm.compareOp(values.SymLe, func(a, b float64) bool { return a <= b })
		case opcodes.OP_GT:
			err = vm.compareOp(values.SymGt, func(a, b float64) bool { return a > b })
		case opcodes.OP_GE:
			err = vm.compareOp(values.SymGe, func(a, b float64) bool { return a >= b })
		case opcodes.OP_EQ:
			err = vm.opEq()
		case opcodes.OP_NOT:
			v := vm.pop()
			vm.push(values.Bool(!v.Truthy()))
		case opcodes.OP_IS:
			err = vm.opIs()

		case opcodes.OP_SUBSCR_GET:
			idx := vm.pop()
			target := vm.pop()
			var v values.Value
			v, err = vm.getSubscriptOfValue(target, idx)
			if err == nil {
				vm.push(v)
			}
		case opcodes.OP_SUBSCR_SET:
			val := vm.pop()
			idx := vm.pop()
			target := vm.pop()
			err = vm.setSubscriptOfValue(target, idx, val)
			if err == nil {
				vm.push(val)
			}

		case opcodes.OP_GET_FIELD:
			name := values.AsString(f.fn.Constants[inst.A])
			target := vm.pop()
			var v values.Value
			v, err = vm.getFieldFromValue(target, name)
			if err == nil {
				vm.push(v)
			}
		case opcodes.OP_SET_FIELD:
			name := values.AsString(f.fn.Constants[inst.A])
			val := vm.pop()
			target := vm.pop()
			err = vm.setFieldOfValue(target, name, val)
			if err == nil {
				vm.push(val)
			}

		case opcodes.OP_JUMP:
			f.ip = int(inst.A)
		case opcodes.OP_JUMPF:
			if !vm.pop().Truthy() {
				f.ip = int(inst.A)
			}
		case opcodes.OP_JUMPT:
			if vm.pop().Truthy() {
				f.ip = int(inst.A)
			}
		case opcodes.OP_FOR_ITER:
			state := vm.pop()
			iterable := vm.peek()
			var newState values.Value
			newState, err = vm.invokeMethodReturning(iterable, values.SymIter, state)
			if err == nil {
				vm.push(newState)
			}
		case opcodes.OP_FOR_NEXT:
			state := vm.pop()
			iterable := vm.peek()
			var v values.Value
			v, err = vm.invokeMethodReturning(iterable, values.SymNext, state)
			if err == nil {
				vm.push(v)
			}

		case opcodes.OP_SUPER_BIND:
			name := values.AsString(f.fn.Constants[inst.A])
			_, m, ok := vm.superMethod(name)
			if !ok {
				err = vm.raiseNew("MethodException", fmt.Sprintf("no such super method %q", name))
			} else {
				receiver := vm.pop()
				vm.push(values.NewBoundMethod(receiver, m))
			}

		case opcodes.OP_NULL:
			vm.push(values.Null())
		case opcodes.OP_TRUE:
			vm.push(values.Bool(true))
		case opcodes.OP_FALSE:
			vm.push(values.Bool(false))
		case opcodes.OP_GET_CONST:
			vm.push(f.fn.Constants[inst.A])
		case opcodes.OP_GET_LOCAL:
			vm.push(vm.stack[f.base+int(inst.A)])
		case opcodes.OP_SET_LOCAL:
			vm.stack[f.base+int(inst.A)] = vm.peek()
		case opcodes.OP_GET_UPVALUE:
			uv := values.AsUpvalue(f.closure.Upvalues[inst.A])
			vm.push(uv.Get(vm.stack))
		case opcodes.OP_SET_UPVALUE:
			uv := values.AsUpvalue(f.closure.Upvalues[inst.A])
			uv.Set(vm.stack, vm.peek())
		case opcodes.OP_GET_GLOBAL:
			name := values.AsString(f.fn.Constants[inst.A])
			v, ok := f.module.Globals[name]
			if !ok {
				err = vm.raiseNew("NameException", fmt.Sprintf("name %q is not defined", name))
			} else {
				vm.push(v)
			}
		case opcodes.OP_SET_GLOBAL:
			name := values.AsString(f.fn.Constants[inst.A])
			if _, ok := f.module.Globals[name]; !ok {
				err = vm.raiseNew("NameException", fmt.Sprintf("name %q is not defined", name))
			} else {
				f.module.Globals[name] = vm.peek()
			}
		case opcodes.OP_DEFINE_GLOBAL:
			name := values.AsString(f.fn.Constants[inst.A])
			f.module.Globals[name] = vm.pop()

		case opcodes.OP_NEW_LIST:
			vm.push(values.NewList())
		case opcodes.OP_APPEND_LIST:
			v := vm.pop()
			l := vm.peek()
			values.AsList(l).Elements = append(values.AsList(l).Elements, v)
		case opcodes.OP_NEW_TUPLE:
			n := int(inst.A)
			elems := make([]values.Value, n)
			for i := n - 1; i >= 0; i-- {
				elems[i] = vm.pop()
			}
			vm.push(values.NewTuple(elems))
		case opcodes.OP_NEW_TABLE:
			vm.push(values.NewTable())

		case opcodes.OP_NEW_CLASS, opcodes.OP_NEW_SUBCLASS:
			name := values.AsString(f.fn.Constants[inst.A])
			var super values.Value
			if inst.B != 0 || inst.Op == opcodes.OP_NEW_SUBCLASS {
				super = vm.pop()
			} else {
				super = values.Null()
			}
			var cls *values.Class
			cls, err = vm.createClass(name, super)
			if err == nil {
				vm.push(cls.AsValue())
			}
		case opcodes.OP_DEF_METHOD:
			name := values.AsString(f.fn.Constants[inst.A])
			method := vm.pop()
			clsVal := vm.peek()
			vm.defMethod(values.AsClass(clsVal), name, method)
		case opcodes.OP_NAT_METHOD:
			methodName := values.AsString(f.fn.Constants[inst.A])
			nativeName := values.AsString(f.fn.Constants[inst.B])
			clsVal := vm.peek()
			err = vm.natMethod(values.AsClass(clsVal), methodName, nativeName)
		case opcodes.OP_NEW:
			argc := int(inst.A)
			cls := vm.peekN(argc)
			err = vm.instantiate(values.AsClass(cls), argc)

		case opcodes.OP_CLOSURE:
			fn := values.AsFunction(f.fn.Constants[inst.A])
			upvalues := make([]values.Value, len(inst.Upvalues))
			for i, d := range inst.Upvalues {
				if d.IsLocal {
					upvalues[i] = vm.captureUpvalue(f.base + int(d.Index))
				} else {
					upvalues[i] = f.closure.Upvalues[d.Index]
				}
			}
			vm.push(values.NewClosure(fn, upvalues))
		case opcodes.OP_CLOSE_UPVALUE:
			vm.closeUpvalues(vm.sp() - 1)
			vm.pop()

		case opcodes.OP_SETUP_EXCEPT:
			var filter *values.Class
			if inst.A != 0 {
				filter = values.AsClass(f.fn.Constants[inst.A])
			}
			if !f.pushHandler(handler{kind: handlerExcept, class: filter, address: int(inst.B), savedSp: vm.sp()}) {
				err = vm.raiseNew("MethodException", "too many exception handlers")
			}
		case opcodes.OP_SETUP_ENSURE:
			if !f.pushHandler(handler{kind: handlerEnsure, address: int(inst.B), savedSp: vm.sp()}) {
				err = vm.raiseNew("MethodException", "too many exception handlers")
			}
		case opcodes.OP_POP_HANDLER:
			f.popHandler()
		case opcodes.OP_END_TRY:
			err = vm.endTry()
		case opcodes.OP_RAISE:
			err = vm.raise()

		case opcodes.OP_POP:
			vm.pop()
		case opcodes.OP_DUP:
			vm.push(vm.peek())

		case opcodes.OP_RETURN:
			retVal := vm.pop()
			err = vm.doReturn(retVal)
		case opcodes.OP_UNPACK:
			target := int(inst.A)
			v := vm.pop()
			var elems []values.Value
			switch {
			case values.IsList(v):
				elems = values.AsList(v).Elements
			case values.IsTuple(v):
				elems = values.AsTuple(v).Elements
			default:
				err = vm.raiseNew("TypeException", "can only unpack list or tuple")
			}
			if err == nil {
				if len(elems) != target {
					err = vm.raiseNew("TypeException", fmt.Sprintf("expected %d values to unpack, got %d", target, len(elems)))
				} else {
					for _, e := range elems {
						vm.push(e)
					}
				}
			}

		case opcodes.OP_IMPORT:
			name := values.AsString(f.fn.Constants[inst.A])
			err = vm.doImport(name, name)
		case opcodes.OP_IMPORT_AS:
			name := values.AsString(f.fn.Constants[inst.A])
			alias := values.AsString(f.fn.Constants[inst.B])
			err = vm.doImport(name, alias)
		case opcodes.OP_IMPORT_FROM:
			name := values.AsString(f.fn.Constants[inst.A])
			err = vm.doImport(name, name)
			if err == nil {
				vm.push(f.module.Globals[name])
			}
		case opcodes.OP_IMPORT_NAME:
			name := values.AsString(f.fn.Constants[inst.A])
			moduleVal := vm.peek()
			err = vm.importName(moduleVal, name)

		default:
			if inst.Op >= opcodes.OP_CALL && inst.Op <= opcodes.OP_CALL_10 {
				argc := opcodes.CallArgc(inst)
				callee := vm.peekN(argc)
				err = vm.callValue(callee, argc)
			} else if inst.Op >= opcodes.OP_INVOKE && inst.Op <= opcodes.OP_INVOKE_10 {
				argc := opcodes.CallArgc(inst)
				name := values.AsString(f.fn.Constants[inst.A])
				err = vm.invokeValue(name, argc)
			} else if inst.Op >= opcodes.OP_SUPER && inst.Op <= opcodes.OP_SUPER_10 {
				argc := opcodes.CallArgc(inst)
				name := values.AsString(f.fn.Constants[inst.A])
				_, m, ok := vm.superMethod(name)
				if !ok {
					err = vm.raiseNew("MethodException", fmt.Sprintf("no such super method %q", name))
				} else {
					err = vm.callValue(m, argc)
				}
			} else {
				err = newVMError(ErrOpcodeNotImplemented, f.fn.Name, inst.Op, f.ip-1, "opcode %s", inst.Op)
			}
		}

		if err != nil {
			switch err {
			case errRaised:
				if ok := vm.unwindStack(depth); !ok {
					return false, nil
				}
			case errFrameReturned:
				if len(vm.frame) <= depth {
					return true, nil
				}
			default:
				return false, err
			}
		}
	}
}
