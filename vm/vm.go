// Package vm implements the J* bytecode virtual machine: value/object
// model consumers, the call protocol, the dispatch loop, the exception
// unwinder, the upvalue manager, and the import protocol (§4). It consumes
// the compiler, module loader, GC sweep mechanics, and hash-table primitive
// as narrow external collaborators (§6) rather than implementing them.
package vm

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/jstar-lang/jstar/registry"
	"github.com/jstar-lang/jstar/values"
)

// Importer resolves, loads, compiles, and registers a module (§6 "Importer").
// On success it returns the module's initializer closure ready to invoke
// with zero arguments; ok is false if the module could not be found.
type Importer interface {
	ImportModule(vm *VM, name string) (initializer values.Value, ok bool, err error)
}

// VM is one J* virtual machine instance — the unit of isolation of §5: all
// mutable state here belongs to exactly one VM, and nothing is safe for
// concurrent access across VMs (or within one). Grounded on
// wudi-hey/vm/context.go's ExecutionContext, stripped of its sync.Map/mutex
// apparatus since §5 rules out native thread parallelism for this VM.
type VM struct {
	// ID is a diagnostic identifier surfaced in error reports and profiling
	// output; it has no semantic role in evaluation.
	ID uuid.UUID

	conf     Config
	registry *registry.Registry

	stack []values.Value
	frame []*frame // the frame ring; top is frame[len(frame)-1]

	apiStack int // absolute stack index marking the window visible to the currently executing native

	modules   map[string]values.Value // name -> Module object Value
	curModule *values.Module

	openUpvalues []*openUpvalue

	importer Importer

	// evalBreak is polled before every dispatched instruction (§5
	// "External interruption"); set concurrently from a signal handler in
	// embedding code, hence the separate flag rather than folding it into
	// VM's otherwise single-threaded state.
	evalBreak boolFlag

	allocBytes  int64
	gcThreshold int64

	// builtinExceptions indexes the root Exception class and its twelve
	// named subclasses (§7) by name, set once during bootstrap.
	builtinExceptions map[string]*values.Class
	exceptionRoot     *values.Class

	profiler *profiler
}

// boolFlag is a minimal flag; evalBreak only ever transitions
// false->true->(observed)->false from Go code, so a plain int32 behind no
// lock is sufficient for the "polled, not latched" contract of §5 — there
// is exactly one evaluator goroutine per VM, and the setter is expected to
// run from a signal handler where a torn read/write of a single word is
// not a correctness concern in practice for this embedding.
type boolFlag struct{ v int32 }

// New constructs a VM from configuration, registers the process-wide
// builtins tier (the shared registry.Global) as its default native
// registry, and bootstraps built-in classes and exception types.
func New(conf Config, importer Importer) *VM {
	stackSize := conf.StackSize
	if stackSize < MaxLocals+1 {
		stackSize = MaxLocals + 1
	}
	if rem := stackSize % (MaxLocals + 1); rem != 0 {
		stackSize += (MaxLocals + 1) - rem
	}
	vm := &VM{
		ID:          uuid.New(),
		conf:        conf,
		registry:    registry.Global,
		stack:       make([]values.Value, 0, stackSize),
		frame:       make([]*frame, 0, 8),
		modules:     make(map[string]values.Value),
		importer:    importer,
		gcThreshold: conf.InitGC,
	}
	vm.bootstrap()
	return vm
}

// Registry exposes the VM's native-symbol resolver, overridable by
// embedders that want a private registry instead of registry.Global.
func (vm *VM) Registry() *registry.Registry { return vm.registry }

func (vm *VM) SetRegistry(r *registry.Registry) { vm.registry = r }

// RegisterModule records a loaded module under name, for Importer
// implementations to call once they have compiled and constructed the
// module object (§6 "Importer... registers a module").
func (vm *VM) RegisterModule(name string, modVal values.Value) {
	vm.modules[name] = modVal
}

// Module looks up an already-registered module by name.
func (vm *VM) Module(name string) (values.Value, bool) {
	v, ok := vm.modules[name]
	return v, ok
}

// --- operand stack primitives (§4.1, §6 "push/pop/peek/peekN") ---

func (vm *VM) push(v values.Value) { vm.stack = append(vm.stack, v) }

func (vm *VM) pop() values.Value {
	n := len(vm.stack) - 1
	v := vm.stack[n]
	vm.stack = vm.stack[:n]
	return v
}

func (vm *VM) peek() values.Value { return vm.stack[len(vm.stack)-1] }

// peekN returns the slot n below top; peekN(0) is top, peekN(1) is "peek2".
func (vm *VM) peekN(n int) values.Value { return vm.stack[len(vm.stack)-1-n] }

func (vm *VM) setPeekN(n int, v values.Value) { vm.stack[len(vm.stack)-1-n] = v }

func (vm *VM) sp() int { return len(vm.stack) }

func (vm *VM) setSp(n int) { vm.stack = vm.stack[:n] }

// reserveStack ensures n additional slots are available without
// reallocating mid-call (§4.1).
func (vm *VM) reserveStack(n int) {
	if cap(vm.stack)-len(vm.stack) >= n {
		return
	}
	grown := make([]values.Value, len(vm.stack), cap(vm.stack)*2+n)
	copy(grown, vm.stack)
	vm.stack = grown
}

func (vm *VM) curFrame() *frame { return vm.frame[len(vm.frame)-1] }

// GetClass returns the class of any value in O(1) (§6 "getClass(v)").
func (vm *VM) GetClass(v values.Value) *values.Class { return values.GetClass(v) }

// IsInstance reports whether v's class chain contains cls (§6 "isInstance").
func (vm *VM) IsInstance(v values.Value, cls *values.Class) bool {
	return vm.GetClass(v).IsSubclassOf(cls)
}

// SetEvalBreak sets or clears the asynchronous interrupt flag (§5, §6
// "evalBreak setter"). A signal handler in embedding code calls this; the
// dispatch loop polls it before every instruction.
func (vm *VM) SetEvalBreak(b bool) {
	if b {
		vm.evalBreak.v = 1
	} else {
		vm.evalBreak.v = 0
	}
}

func (vm *VM) checkEvalBreak() bool { return vm.evalBreak.v != 0 }

// Run wraps an already-assembled top-level Function (compilation is an
// external collaborator, §6 "Compiler") in a closure and executes it to
// completion, returning the module's result value or an unhandled-
// exception error. globals seeds the module's global table before main
// runs (e.g. a host-provided "print" native) — compilation normally emits
// OP_DEFINE_GLOBAL for every top-level binding, but a hand-assembled
// driver program has no front end to do that for host-injected names.
func (vm *VM) Run(moduleName string, main *values.Function, globals map[string]values.Value) (values.Value, error) {
	if main == nil {
		return values.Null(), newVMError(ErrNilContext, "", 0, 0, "Run called with a nil main function for module %q", moduleName)
	}
	modVal := values.NewModule(moduleName)
	mod := values.AsModule(modVal)
	for name, v := range globals {
		mod.Globals[name] = v
	}
	vm.modules[moduleName] = modVal
	main.Module = mod
	vm.curModule = main.Module
	closureVal := values.NewClosure(main, nil)
	return vm.callTopLevel(closureVal)
}

func (vm *VM) callTopLevel(callee values.Value) (values.Value, error) {
	startDepth := len(vm.frame)
	vm.push(callee)
	if err := vm.callValue(callee, 0); err != nil {
		return values.Null(), err
	}
	ok, err := vm.runEval(startDepth)
	if err != nil {
		return values.Null(), err
	}
	if !ok {
		exc := vm.pop()
		return values.Null(), vm.describeUncaught(exc)
	}
	return vm.pop(), nil
}

func (vm *VM) describeUncaught(exc values.Value) error {
	inst := values.AsInstance(exc)
	msg := ""
	if mv, ok := inst.Fields["msg"]; ok {
		msg = mv.String()
	}
	kind := inst.Class.Name
	module, line := "?", 0
	if st, ok := inst.Fields[values.SymStackTrace]; ok && values.IsStackTrace(st) {
		trace := values.AsStackTrace(st)
		if len(trace.Records) > 0 {
			module = trace.Records[0].Module
			line = trace.Records[0].Line
		}
	}
	formatted := fmt.Sprintf("File %s [line %d]: %s: %s", module, line, kind, msg)
	if vm.conf.ErrorCallback != nil {
		vm.conf.ErrorCallback(kind, module, line, msg)
	}
	return &UncaughtException{Kind: kind, Module: module, Line: line, Message: msg, Formatted: formatted, Value: exc}
}

// UncaughtException is returned by Run when an exception reaches the API
// boundary unhandled (§7 "runEval returns false when an unhandled exception
// reaches depth; the exception remains on top of the stack").
type UncaughtException struct {
	Kind      string
	Module    string
	Line      int
	Message   string
	Formatted string
	Value     values.Value
}

func (e *UncaughtException) Error() string { return e.Formatted }
