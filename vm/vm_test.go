package vm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jstar-lang/jstar/asm"
	"github.com/jstar-lang/jstar/opcodes"
	"github.com/jstar-lang/jstar/values"
	"github.com/jstar-lang/jstar/vm"
)

func newTestVM() *vm.VM {
	conf := vm.DefaultConfig()
	conf.StackSize = 512
	return vm.New(conf, nil)
}

// TestArgumentAdjustmentFillsDefaults covers the argument-adjustment law of
// §4.2: a call shorter than the declared arity is padded from defaults.
func TestArgumentAdjustmentFillsDefaults(t *testing.T) {
	fB := asm.NewBuilder("f").Args(2).Defaults(values.Number(5))
	fB.Emit(opcodes.OP_GET_LOCAL, 1, 0)
	fB.Emit(opcodes.OP_GET_LOCAL, 2, 0)
	fB.Emit0(opcodes.OP_ADD)
	fB.Emit0(opcodes.OP_RETURN)
	fn := fB.Build()

	mainB := asm.NewBuilder("main")
	fConst := mainB.Const(values.NewFunction(fn))
	ten := mainB.Const(values.Number(10))
	mainB.EmitClosure(fConst, nil)
	mainB.Emit(opcodes.OP_GET_CONST, ten, 0)
	mainB.Emit(opcodes.OP_CALL_1, 0, 0)
	mainB.Emit0(opcodes.OP_RETURN)

	result, err := newTestVM().Run("main", mainB.Build(), nil)
	require.NoError(t, err)
	assert.Equal(t, float64(15), result.AsNumber())
}

// TestArgumentAdjustmentRaisesOnArityMismatch covers the other half of the
// law: too few args for a non-vararg, no-default function is a
// TypeException, surfaced to Run as an UncaughtException when nothing
// catches it.
func TestArgumentAdjustmentRaisesOnArityMismatch(t *testing.T) {
	fB := asm.NewBuilder("f").Args(2)
	fB.Emit(opcodes.OP_GET_LOCAL, 1, 0)
	fB.Emit0(opcodes.OP_RETURN)
	fn := fB.Build()

	mainB := asm.NewBuilder("main")
	fConst := mainB.Const(values.NewFunction(fn))
	one := mainB.Const(values.Number(1))
	mainB.EmitClosure(fConst, nil)
	mainB.Emit(opcodes.OP_GET_CONST, one, 0)
	mainB.Emit(opcodes.OP_CALL_1, 0, 0)
	mainB.Emit0(opcodes.OP_RETURN)

	_, err := newTestVM().Run("main", mainB.Build(), nil)
	require.Error(t, err)
	uncaught, ok := err.(*vm.UncaughtException)
	require.True(t, ok, "expected *vm.UncaughtException, got %T", err)
	assert.Equal(t, "TypeException", uncaught.Kind)
}

// TestArgumentAdjustmentCollectsVararg covers the vararg branch: extra
// positional args beyond the declared arity are collected into a trailing
// tuple instead of raising.
func TestArgumentAdjustmentCollectsVararg(t *testing.T) {
	fB := asm.NewBuilder("f").Args(1).Vararg()
	fB.Emit(opcodes.OP_GET_LOCAL, 1, 0)
	fB.Emit0(opcodes.OP_RETURN)
	fn := fB.Build()

	mainB := asm.NewBuilder("main")
	fConst := mainB.Const(values.NewFunction(fn))
	ten := mainB.Const(values.Number(10))
	twenty := mainB.Const(values.Number(20))
	thirty := mainB.Const(values.Number(30))
	mainB.EmitClosure(fConst, nil)
	mainB.Emit(opcodes.OP_GET_CONST, ten, 0)
	mainB.Emit(opcodes.OP_GET_CONST, twenty, 0)
	mainB.Emit(opcodes.OP_GET_CONST, thirty, 0)
	mainB.Emit(opcodes.OP_CALL_3, 0, 0)
	mainB.Emit0(opcodes.OP_RETURN)

	result, err := newTestVM().Run("main", mainB.Build(), nil)
	require.NoError(t, err, "a vararg function accepts more positional args than its declared arity")
	assert.Equal(t, float64(10), result.AsNumber())
}

// TestClosureUpvalueIdentity covers §4.6: two invocations sharing one
// closed-over upvalue observe each other's mutations.
func TestClosureUpvalueIdentity(t *testing.T) {
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
	mainB.EmitClosure(mkCounterConst, nil)
	mainB.Emit(opcodes.OP_CALL_0, 0, 0) // local slot 1 = c
	mainB.Emit(opcodes.OP_GET_LOCAL, 1, 0)
	mainB.Emit(opcodes.OP_CALL_0, 0, 0)
	mainB.Emit0(opcodes.OP_POP)
	mainB.Emit(opcodes.OP_GET_LOCAL, 1, 0)
	mainB.Emit(opcodes.OP_CALL_0, 0, 0)
	mainB.Emit0(opcodes.OP_POP)
	mainB.Emit(opcodes.OP_GET_LOCAL, 1, 0)
	mainB.Emit(opcodes.OP_CALL_0, 0, 0)
	mainB.Emit0(opcodes.OP_RETURN)

	result, err := newTestVM().Run("main", mainB.Build(), nil)
	require.NoError(t, err)
	assert.Equal(t, float64(3), result.AsNumber(), "three calls into the shared upvalue should accumulate 1+1+1")
}

// TestEnsureRunsBeforeFrameIsPopped covers §4.9's ensure-ordering law: an
// ensure block attached to a returning frame executes (here, recording a
// side effect into a captured list) before the frame is actually popped.
func TestEnsureRunsBeforeFrameIsPopped(t *testing.T) {
	fB := asm.NewBuilder("f").Upvalues(1)
	one := fB.Const(values.Number(1))
	marker := fB.Const(values.NewString("e"))
	fB.EmitSetupEnsure("ensure")
	fB.Emit(opcodes.OP_GET_CONST, one, 0)
	fB.Emit0(opcodes.OP_RETURN)
	fB.Mark("ensure")
	fB.Emit(opcodes.OP_GET_UPVALUE, 0, 0)
	fB.Emit(opcodes.OP_GET_CONST, marker, 0)
	fB.Emit0(opcodes.OP_APPEND_LIST)
	fB.Emit0(opcodes.OP_POP)
	fB.Emit0(opcodes.OP_END_TRY)
	fFn := fB.Build()

	mainB := asm.NewBuilder("main")
	fConst := mainB.Const(values.NewFunction(fFn))
	mainB.Emit0(opcodes.OP_NEW_LIST) // local slot 1 = log
	mainB.EmitClosure(fConst, []opcodes.UpvalueDesc{{IsLocal: true, Index: 1}})
	mainB.Emit(opcodes.OP_CALL_0, 0, 0)
	mainB.Emit0(opcodes.OP_POP)
	mainB.Emit(opcodes.OP_GET_LOCAL, 1, 0)
	mainB.Emit0(opcodes.OP_RETURN)

	result, err := newTestVM().Run("main", mainB.Build(), nil)
	require.NoError(t, err)
	log := values.AsList(result)
	require.Len(t, log.Elements, 1)
	assert.Equal(t, "e", values.AsString(log.Elements[0]))
}

// TestOperatorOverloadReverseFallback covers §4.5: `1 + instance` falls
// back to the instance's __radd__ when it has no __add__.
func TestOperatorOverloadReverseFallback(t *testing.T) {
	raddB := asm.NewBuilder("__radd__").Args(1)
	r := raddB.Const(values.NewString("r"))
	raddB.Emit(opcodes.OP_GET_CONST, r, 0)
	raddB.Emit0(opcodes.OP_RETURN)
	raddFn := raddB.Build()

	mainB := asm.NewBuilder("main")
	className := mainB.Const(values.NewString("N"))
	raddName := mainB.Const(values.NewString(values.SymRAdd))
	raddConst := mainB.Const(values.NewFunction(raddFn))
	one := mainB.Const(values.Number(1))

	mainB.Emit(opcodes.OP_NEW_CLASS, className, 0)
	mainB.EmitClosure(raddConst, nil)
	mainB.Emit(opcodes.OP_DEF_METHOD, raddName, 0)
	mainB.Emit(opcodes.OP_NEW, 0, 0) // local slot 1 = instance
	mainB.Emit(opcodes.OP_GET_CONST, one, 0)
	mainB.Emit(opcodes.OP_GET_LOCAL, 1, 0)
	mainB.Emit0(opcodes.OP_ADD)
	mainB.Emit0(opcodes.OP_RETURN)

	result, err := newTestVM().Run("main", mainB.Build(), nil)
	require.NoError(t, err)
	assert.Equal(t, "r", values.AsString(result))
}

// TestForIterTerminates covers §4.8: a for-loop over a 3-element list runs
// exactly three iterations and then stops.
func TestForIterTerminates(t *testing.T) {
	mainB := asm.NewBuilder("main")
	ten := mainB.Const(values.Number(10))
	twenty := mainB.Const(values.Number(20))
	thirty := mainB.Const(values.Number(30))
	zero := mainB.Const(values.Number(0))

	mainB.Emit0(opcodes.OP_NEW_LIST) // local 1 = list
	mainB.Emit(opcodes.OP_GET_CONST, ten, 0)
	mainB.Emit0(opcodes.OP_APPEND_LIST)
	mainB.Emit(opcodes.OP_GET_CONST, twenty, 0)
	mainB.Emit0(opcodes.OP_APPEND_LIST)
	mainB.Emit(opcodes.OP_GET_CONST, thirty, 0)
	mainB.Emit0(opcodes.OP_APPEND_LIST)
	mainB.Emit0(opcodes.OP_NULL) // local 2 = state
	mainB.Emit0(opcodes.OP_NULL) // local 3 = v
	mainB.Emit(opcodes.OP_GET_CONST, zero, 0) // local 4 = total

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

	mainB.Emit(opcodes.OP_GET_LOCAL, 4, 0)
	mainB.Emit(opcodes.OP_GET_LOCAL, 3, 0)
	mainB.Emit0(opcodes.OP_ADD)
	mainB.Emit(opcodes.OP_SET_LOCAL, 4, 0)
	mainB.Emit0(opcodes.OP_POP)
	mainB.EmitJump(opcodes.OP_JUMP, "cond")

	mainB.Mark("end")
	mainB.Emit0(opcodes.OP_POP)
	mainB.Emit(opcodes.OP_GET_LOCAL, 4, 0)
	mainB.Emit0(opcodes.OP_RETURN)

	result, err := newTestVM().Run("main", mainB.Build(), nil)
	require.NoError(t, err)
	assert.Equal(t, float64(60), result.AsNumber())
}

// TestExceptHandlerCatches covers §4.9's normal handoff path: a raised
// exception that matches a SETUP_EXCEPT filter resumes at the handler
// rather than propagating past Run.
func TestExceptHandlerCatches(t *testing.T) {
	mainB := asm.NewBuilder("main")
	msg := mainB.Const(values.NewString("x"))
	excClassConst := mainB.Const(values.ExceptionClass.AsValue()) // non-zero index: 0 would mean catch-all
	errSym := mainB.Const(values.NewString("err"))

	mainB.EmitSetupExcept(excClassConst, "handler")
	mainB.Emit(opcodes.OP_GET_CONST, excClassConst, 0)
	mainB.Emit(opcodes.OP_GET_CONST, msg, 0)
	mainB.Emit(opcodes.OP_NEW, 1, 0)
	mainB.Emit0(opcodes.OP_RAISE)
	mainB.Mark("handler")
	mainB.Emit0(opcodes.OP_POP) // discard the cause marker
	mainB.Emit(opcodes.OP_INVOKE_0, errSym, 0)
	mainB.Emit0(opcodes.OP_RETURN)

	result, err := newTestVM().Run("main", mainB.Build(), nil)
	require.NoError(t, err)
	assert.Equal(t, "x", values.AsString(result))
}

// TestUnhandledExceptionPropagatesToRun covers §7's "runEval returns false
// when an unhandled exception reaches depth" contract: calling a
// non-callable value raises TypeException, and with no handler installed
// it reaches Run as an UncaughtException.
func TestUnhandledExceptionPropagatesToRun(t *testing.T) {
	mainB := asm.NewBuilder("main")
	five := mainB.Const(values.Number(5))
	mainB.Emit(opcodes.OP_GET_CONST, five, 0)
	mainB.Emit(opcodes.OP_CALL_0, 0, 0)
	mainB.Emit0(opcodes.OP_RETURN)

	_, err := newTestVM().Run("main", mainB.Build(), nil)
	require.Error(t, err)
	uncaught, ok := err.(*vm.UncaughtException)
	require.True(t, ok)
	assert.Equal(t, "TypeException", uncaught.Kind)
}

// TestRunSeedsGlobals covers Run's globals-seeding contract for
// hand-assembled driver programs that have no front end to emit
// OP_DEFINE_GLOBAL for host-injected names.
func TestRunSeedsGlobals(t *testing.T) {
	mainB := asm.NewBuilder("main")
	name := mainB.Const(values.NewString("injected"))
	mainB.Emit(opcodes.OP_GET_GLOBAL, name, 0)
	mainB.Emit0(opcodes.OP_RETURN)

	globals := map[string]values.Value{"injected": values.Number(42)}
	result, err := newTestVM().Run("main", mainB.Build(), globals)
	require.NoError(t, err)
	assert.Equal(t, float64(42), result.AsNumber())
}

// TestRunRejectsNilMain covers the "host misuse" half of the ambient
// error-handling contract: Run with a nil main function is a Go-level VM
// fault, not a language-level exception, and comes back as a *vm.VMError
// wrapping vm.ErrNilContext.
func TestRunRejectsNilMain(t *testing.T) {
	_, err := newTestVM().Run("main", nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, vm.ErrNilContext)
	var vmErr *vm.VMError
	require.ErrorAs(t, err, &vmErr)
}
