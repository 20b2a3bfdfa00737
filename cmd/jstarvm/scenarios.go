package main

import (
	"bufio"
	"fmt"

	"github.com/jstar-lang/jstar/asm"
	"github.com/jstar-lang/jstar/opcodes"
	"github.com/jstar-lang/jstar/values"
)

// scenario pairs a §8 concrete-scenario name with the top-level Function
// asm assembles for it, standing in for the source text a front end would
// otherwise compile (§1 treats the compiler as an out-of-scope
// collaborator; asm is this module's own substitute, see DESIGN.md).
type scenario struct {
	name string
	doc  string
	fn   *values.Function
}

// printNative is the one free function every scenario below calls; it is
// embedded directly into each function's own constant pool rather than
// resolved through a module global, sidestepping the need to thread a
// compiled front end's OP_DEFINE_GLOBAL bookkeeping through hand-assembled
// bytecode.
func printNative(out *bufio.Writer) values.Value {
	return values.NewNative(&values.Native{
		Name:      "print",
		ArgsCount: 1,
		Fn: func(ctx values.NativeCallContext, args []values.Value) (values.Value, error) {
			fmt.Fprintln(out, args[0].String())
			return values.Null(), nil
		},
	})
}

// scenarios builds the six concrete scenarios of §8, each printing to out.
func scenarios(out *bufio.Writer) []scenario {
	return []scenario{
		{"fibonacci", "recursive fib(10) via a self-referencing upvalue", fibonacciScenario(out)},
		{"ensure-return", "ensure block runs before a pending return is delivered", ensureReturnScenario(out)},
		{"except-handoff", "an except handler catches, prints, and normal flow continues", exceptHandoffScenario(out)},
		{"closure-counter", "three calls into a closure sharing one closed-over upvalue", closureCounterScenario(out)},
		{"reverse-overload", "1 + N() falls back to N's __radd__", reverseOverloadScenario(out)},
		{"list-iteration", "for-loop over a list via the __iter__/__next__ protocol", listIterationScenario(out)},
	}
}

// fibonacciScenario: fun fib(n) if n<2 return n end return fib(n-1)+fib(n-2) end; print(fib(10))
func fibonacciScenario(out *bufio.Writer) *values.Function {
	fibB := asm.NewBuilder("fib").Args(1).Upvalues(1)
	two := fibB.Const(values.Number(2))
	one := fibB.Const(values.Number(1))
	fibB.Emit(opcodes.OP_GET_LOCAL, 1, 0)
	fibB.Emit(opcodes.OP_GET_CONST, two, 0)
	fibB.Emit0(opcodes.OP_LT)
	fibB.EmitJump(opcodes.OP_JUMPF, "else")
	fibB.Emit(opcodes.OP_GET_LOCAL, 1, 0)
	fibB.Emit0(opcodes.OP_RETURN)
	fibB.Mark("else")
	fibB.Emit(opcodes.OP_GET_UPVALUE, 0, 0)
	fibB.Emit(opcodes.OP_GET_LOCAL, 1, 0)
	fibB.Emit(opcodes.OP_GET_CONST, one, 0)
	fibB.Emit0(opcodes.OP_SUB)
	fibB.Emit(opcodes.OP_CALL_1, 0, 0)
	fibB.Emit(opcodes.OP_GET_UPVALUE, 0, 0)
	fibB.Emit(opcodes.OP_GET_LOCAL, 1, 0)
	fibB.Emit(opcodes.OP_GET_CONST, two, 0)
	fibB.Emit0(opcodes.OP_SUB)
	fibB.Emit(opcodes.OP_CALL_1, 0, 0)
	fibB.Emit0(opcodes.OP_ADD)
	fibB.Emit0(opcodes.OP_RETURN)
	fibFn := fibB.Build()

	mainB := asm.NewBuilder("main")
	fibConst := mainB.Const(values.NewFunction(fibFn))
	printConst := mainB.Const(printNative(out))
	ten := mainB.Const(values.Number(10))

	mainB.Emit0(opcodes.OP_NULL) // reserve local slot 1 for the "fib" letrec binding
	mainB.EmitClosure(fibConst, []opcodes.UpvalueDesc{{IsLocal: true, Index: 1}})
	mainB.Emit(opcodes.OP_SET_LOCAL, 1, 0)
	mainB.Emit0(opcodes.OP_POP)
	mainB.Emit(opcodes.OP_GET_CONST, printConst, 0)
	mainB.Emit(opcodes.OP_GET_LOCAL, 1, 0)
	mainB.Emit(opcodes.OP_GET_CONST, ten, 0)
	mainB.Emit(opcodes.OP_CALL_1, 0, 0)
	mainB.Emit(opcodes.OP_CALL_1, 0, 0)
	mainB.Emit0(opcodes.OP_RETURN)
	return mainB.Build()
}

// ensureReturnScenario: fun f() try return 1 ensure print("e") end end; f()
func ensureReturnScenario(out *bufio.Writer) *values.Function {
	fB := asm.NewBuilder("f")
	one := fB.Const(values.Number(1))
	msg := fB.Const(values.NewString("e"))
	fPrint := fB.Const(printNative(out))
	fB.EmitSetupEnsure("ensure")
	fB.Emit(opcodes.OP_GET_CONST, one, 0)
	fB.Emit0(opcodes.OP_RETURN)
	fB.Mark("ensure")
	fB.Emit(opcodes.OP_GET_CONST, fPrint, 0)
	fB.Emit(opcodes.OP_GET_CONST, msg, 0)
	fB.Emit(opcodes.OP_CALL_1, 0, 0)
	fB.Emit0(opcodes.OP_POP)
	fB.Emit0(opcodes.OP_END_TRY)
	fFn := fB.Build()

	mainB := asm.NewBuilder("main")
	fConst := mainB.Const(values.NewFunction(fFn))
	printConst := mainB.Const(printNative(out))
	mainB.Emit(opcodes.OP_GET_CONST, printConst, 0) // local slot 1 = print, pushed early so CALL_0 doesn't disturb it
	mainB.EmitClosure(fConst, nil)                  // local slot 2 = f's closure, then its own result after the call
	mainB.Emit(opcodes.OP_CALL_0, 0, 0)
	mainB.Emit(opcodes.OP_GET_LOCAL, 1, 0)
	mainB.Emit(opcodes.OP_GET_LOCAL, 2, 0)
	mainB.Emit(opcodes.OP_CALL_1, 0, 0)
	mainB.Emit0(opcodes.OP_RETURN)
	return mainB.Build()
}

// exceptHandoffScenario: try raise Exception("x") except Exception e print(e.err()) end
func exceptHandoffScenario(out *bufio.Writer) *values.Function {
	mainB := asm.NewBuilder("main")
	printConst := mainB.Const(printNative(out))
	excClassConst := mainB.Const(values.ExceptionClass.AsValue())
	msg := mainB.Const(values.NewString("x"))
	errSym := mainB.Const(values.NewString("err"))

	mainB.Emit(opcodes.OP_GET_CONST, printConst, 0)
	mainB.EmitSetupExcept(excClassConst, "handler")
	mainB.Emit(opcodes.OP_GET_CONST, excClassConst, 0)
	mainB.Emit(opcodes.OP_GET_CONST, msg, 0)
	mainB.Emit(opcodes.OP_NEW, 1, 0)
	mainB.Emit0(opcodes.OP_RAISE)
	mainB.Mark("handler")
	// stack here: [print, exc, causeNum]
	mainB.Emit0(opcodes.OP_POP) // discard the EXCEPT cause marker
	mainB.Emit(opcodes.OP_INVOKE_0, errSym, 0)
	mainB.Emit(opcodes.OP_CALL_1, 0, 0)
	mainB.Emit0(opcodes.OP_RETURN)
	return mainB.Build()
}

// closureCounterScenario: fun mkCounter() var i = 0; return |=| => i += 1 end
// var c = mkCounter(); c(); c(); print(c())
func closureCounterScenario(out *bufio.Writer) *values.Function {
	incrB := asm.NewBuilder("incr").Upvalues(1)
	one := incrB.Const(values.Number(1))
	incrB.Emit(opcodes.OP_GET_UPVALUE, 0, 0)
	incrB.Emit(opcodes.OP_GET_CONST, one, 0)
	incrB.Emit0(opcodes.OP_ADD)
	incrB.Emit(opcodes.OP_SET_UPVALUE, 0, 0)
	incrB.Emit0(opcodes.OP_RETURN)
	incrFn := incrB.Build()

	mkCounterB := asm.NewBuilder("mkCounter")
	zero := mkCounterB.Const(values.Number(0))
	incrConst := mkCounterB.Const(values.NewFunction(incrFn))
	mkCounterB.Emit(opcodes.OP_GET_CONST, zero, 0) // local slot 1 = i
	mkCounterB.EmitClosure(incrConst, []opcodes.UpvalueDesc{{IsLocal: true, Index: 1}})
	mkCounterB.Emit0(opcodes.OP_RETURN)
	mkCounterFn := mkCounterB.Build()

	mainB := asm.NewBuilder("main")
	mkCounterConst := mainB.Const(values.NewFunction(mkCounterFn))
	printConst := mainB.Const(printNative(out))

	mainB.EmitClosure(mkCounterConst, nil)
	mainB.Emit(opcodes.OP_CALL_0, 0, 0) // local slot 1 = c
	mainB.Emit(opcodes.OP_GET_LOCAL, 1, 0)
	mainB.Emit(opcodes.OP_CALL_0, 0, 0) // c() #1, discarded
	mainB.Emit0(opcodes.OP_POP)
	mainB.Emit(opcodes.OP_GET_LOCAL, 1, 0)
	mainB.Emit(opcodes.OP_CALL_0, 0, 0) // c() #2, discarded
	mainB.Emit0(opcodes.OP_POP)
	mainB.Emit(opcodes.OP_GET_CONST, printConst, 0)
	mainB.Emit(opcodes.OP_GET_LOCAL, 1, 0)
	mainB.Emit(opcodes.OP_CALL_0, 0, 0) // c() #3
	mainB.Emit(opcodes.OP_CALL_1, 0, 0)
	mainB.Emit0(opcodes.OP_RETURN)
	return mainB.Build()
}

// reverseOverloadScenario: class N fun __radd__(o) return "r" end end
// print(1 + N())
func reverseOverloadScenario(out *bufio.Writer) *values.Function {
	raddB := asm.NewBuilder("__radd__").Args(1)
	r := raddB.Const(values.NewString("r"))
	raddB.Emit(opcodes.OP_GET_CONST, r, 0)
	raddB.Emit0(opcodes.OP_RETURN)
	raddFn := raddB.Build()

	mainB := asm.NewBuilder("main")
	className := mainB.Const(values.NewString("N"))
	raddName := mainB.Const(values.NewString(values.SymRAdd))
	raddConst := mainB.Const(values.NewFunction(raddFn))
	printConst := mainB.Const(printNative(out))
	one := mainB.Const(values.Number(1))

	mainB.Emit(opcodes.OP_NEW_CLASS, className, 0)
	mainB.EmitClosure(raddConst, nil)
	mainB.Emit(opcodes.OP_DEF_METHOD, raddName, 0)
	mainB.Emit(opcodes.OP_NEW, 0, 0) // local slot 1 = the N instance (OP_NEW replaces the class value in place)
	mainB.Emit(opcodes.OP_GET_CONST, printConst, 0)
	mainB.Emit(opcodes.OP_GET_CONST, one, 0)
	mainB.Emit(opcodes.OP_GET_LOCAL, 1, 0)
	mainB.Emit0(opcodes.OP_ADD)
	mainB.Emit(opcodes.OP_CALL_1, 0, 0)
	mainB.Emit0(opcodes.OP_RETURN)
	return mainB.Build()
}

// listIterationScenario: for var v in [10,20,30] print(v) end
func listIterationScenario(out *bufio.Writer) *values.Function {
	mainB := asm.NewBuilder("main")
	ten := mainB.Const(values.Number(10))
	twenty := mainB.Const(values.Number(20))
	thirty := mainB.Const(values.Number(30))
	printConst := mainB.Const(printNative(out))

	mainB.Emit0(opcodes.OP_NEW_LIST) // local slot 1 = list
	mainB.Emit(opcodes.OP_GET_CONST, ten, 0)
	mainB.Emit0(opcodes.OP_APPEND_LIST)
	mainB.Emit(opcodes.OP_GET_CONST, twenty, 0)
	mainB.Emit0(opcodes.OP_APPEND_LIST)
	mainB.Emit(opcodes.OP_GET_CONST, thirty, 0)
	mainB.Emit0(opcodes.OP_APPEND_LIST)
	mainB.Emit0(opcodes.OP_NULL) // local slot 2 = iterator state
	mainB.Emit0(opcodes.OP_NULL) // local slot 3 = loop variable v

	mainB.Mark("cond")
	mainB.Emit(opcodes.OP_GET_LOCAL, 1, 0)
	mainB.Emit(opcodes.OP_GET_LOCAL, 2, 0)
	mainB.Emit0(opcodes.OP_FOR_ITER)
	mainB.Emit(opcodes.OP_SET_LOCAL, 2, 0)
	mainB.EmitJump(opcodes.OP_JUMPF, "end")
	mainB.Emit0(opcodes.OP_POP)

	mainB.Emit(opcodes.OP_GET_LOCAL, 1, 0)
	mainB.Emit(opcodes.OP_GET_LOCAL, 2, 0)
	mainB.Emit0(opcodes.OP_FOR_NEXT)
	mainB.Emit(opcodes.OP_SET_LOCAL, 3, 0)
	mainB.Emit0(opcodes.OP_POP)
	mainB.Emit0(opcodes.OP_POP)

	mainB.Emit(opcodes.OP_GET_CONST, printConst, 0)
	mainB.Emit(opcodes.OP_GET_LOCAL, 3, 0)
	mainB.Emit(opcodes.OP_CALL_1, 0, 0)
	mainB.Emit0(opcodes.OP_POP)
	mainB.EmitJump(opcodes.OP_JUMP, "cond")

	mainB.Mark("end")
	mainB.Emit0(opcodes.OP_POP)
	mainB.Emit0(opcodes.OP_NULL)
	mainB.Emit0(opcodes.OP_RETURN)
	return mainB.Build()
}
