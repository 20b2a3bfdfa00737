package vm

import (
	"errors"
	"fmt"
	"os"

	"github.com/jstar-lang/jstar/opcodes"
	"github.com/jstar-lang/jstar/values"
)

// errRaised is the sentinel every raise-producing helper returns: it tells
// the dispatch loop "an exception instance is already on top of the
// operand stack, begin unwindStack" without threading a second return
// value through every call site (mirrors wudi-hey/vm/errors.go's pattern
// of a distinguished sentinel error for VM-level control transfer).
var errRaised = errors.New("jstar: exception raised")

// Base sentinels for the Go-level faults runEval can report — as opposed
// to a raised language-level exception, these mean the embedding Go
// program's VM invocation itself failed (nil context, a corrupted
// dispatch state, an opcode this build doesn't implement). Compare
// against these with errors.Is, not the formatted message.
var (
	ErrDispatchCorrupted     = errors.New("native frame left on dispatch stack")
	ErrInstructionPointerOOB = errors.New("instruction pointer past end of function")
	ErrOpcodeNotImplemented  = errors.New("opcode not implemented")
	ErrNilContext            = errors.New("nil execution context")
)

// VMError wraps a Go-level VM fault with the dispatch context active when
// it was detected. Grounded on wudi-hey/vm/errors.go's *VMError
// (Type/Message/Context/Frame/Opcode/IP), trimmed to the fault categories
// this VM can actually produce; Unwrap/Is keep it errors.Is/errors.As
// compatible with the base sentinels above.
type VMError struct {
	Type    error // base sentinel, compared via errors.Is
	Message string
	Frame   string // function name active when the fault occurred, if known
	Opcode  opcodes.Opcode
	IP      int
}

func (e *VMError) Error() string {
	if e.Frame != "" {
		return fmt.Sprintf("vm error in %s: %s: %s", e.Frame, e.Type.Error(), e.Message)
	}
	return fmt.Sprintf("vm error: %s: %s", e.Type.Error(), e.Message)
}

func (e *VMError) Unwrap() error { return e.Type }

func (e *VMError) Is(target error) bool { return errors.Is(e.Type, target) }

// newVMError builds a *VMError carrying whatever dispatch context the
// caller has on hand; frame/opcode are best-effort and may be zero values.
func newVMError(base error, frame string, op opcodes.Opcode, ip int, format string, args ...interface{}) *VMError {
	return &VMError{Type: base, Message: fmt.Sprintf(format, args...), Frame: frame, Opcode: op, IP: ip}
}

// bootstrapExceptions points the VM at the process-wide Exception class
// hierarchy (§7) defined once in values/exceptions.go — process-wide
// singletons rather than per-VM classes, so that a native registered
// outside this package (natives/text) can raise values.InvalidArgExceptionClass
// and have it compare equal to the class a try/except filter in this VM
// was constructed against.
func (vm *VM) bootstrapExceptions() {
	vm.exceptionRoot = values.ExceptionClass
	vm.builtinExceptions = values.ExceptionClasses
}

// makeException constructs an Exception instance carrying a message and a
// freshly attached (still-empty, populated by unwindStack) StackTrace,
// satisfying §4.9 "a fresh StackTrace is allocated and stored in the
// instance's stacktrace field".
func (vm *VM) makeException(cls *values.Class, message string) values.Value {
	inst := values.NewInstance(cls)
	i := values.AsInstance(inst)
	i.Fields["msg"] = values.NewString(message)
	i.Fields[values.SymStackTrace] = values.NewStackTrace()
	return inst
}

// raiseNew looks up a builtin exception kind by name, constructs an
// instance, pushes it, and returns the unwind sentinel — the common path
// used by every VM-internal error condition (§7 "The VM raises by
// constructing a message and pushing an exception instance").
func (vm *VM) raiseNew(kind, message string) error {
	cls, ok := vm.builtinExceptions[kind]
	if !ok {
		// An unregistered exception kind means bootstrap itself is broken —
		// an invariant violation, not something a J* program triggered, so
		// §7's fatal-abort path applies rather than raising.
		vm.fatal(fmt.Sprintf("unknown builtin exception kind %q", kind), vm.builtinExceptions)
	}
	vm.push(vm.makeException(cls, message))
	return errRaised
}

// fatal reports a non-recoverable invariant violation (§7 "Fatal
// conditions... abort the process; they never surface as exceptions") and
// exits: there is no well-defined VM state to resume evaluation from once
// one of these fires. ctx is whatever diagnostic value is most useful to
// dump alongside the Go-level call stack that led here.
func (vm *VM) fatal(reason string, ctx interface{}) {
	fmt.Fprintf(os.Stderr, "jstar: fatal [vm %s]: %s\n", vm.ID, reason)
	DumpValueGraph(os.Stderr, "diagnostic context", ctx)
	fmt.Fprintln(os.Stderr, CaptureFatalTrace(2))
	os.Exit(2)
}
