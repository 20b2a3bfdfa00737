// Package asm is a programmatic bytecode-assembler for the J* virtual
// machine: a builder API that emits opcodes.Instruction sequences and
// produces a values.Function, standing in for the lexer/parser/compiler
// front end that §1 of the VM specification explicitly treats as an
// external collaborator out of scope for this module. It is grounded on
// wudi-hey/vm/instruction_factory.go's programmatic instruction-builder
// pattern, generalized from PHP opcode construction to label-based jump
// patching over the fixed J* instruction set.
package asm

import (
	"fmt"

	"github.com/jstar-lang/jstar/opcodes"
	"github.com/jstar-lang/jstar/values"
)

// field identifies which operand of a pending instruction a label patch
// targets.
type field byte

const (
	fieldA field = iota
	fieldB
)

type patch struct {
	instIdx int
	f       field
	label   string
}

// Builder assembles one Function body.
type Builder struct {
	name        string
	argsCount   int
	defaults    []values.Value
	vararg      bool
	upvalueC    int

	consts []values.Value
	insts  []*opcodes.Instruction
	lines  []int

	labels  map[string]int
	patches []patch

	curLine int
}

// NewBuilder starts assembling a function named name.
func NewBuilder(name string) *Builder {
	return &Builder{name: name, labels: make(map[string]int)}
}

// Args sets the declared positional-parameter count ("most" of §4.2).
func (b *Builder) Args(n int) *Builder { b.argsCount = n; return b }

// Defaults sets the trailing default-argument values, in order.
func (b *Builder) Defaults(vals ...values.Value) *Builder { b.defaults = vals; return b }

// Vararg marks the function as accepting a trailing vararg tuple.
func (b *Builder) Vararg() *Builder { b.vararg = true; return b }

// Upvalues sets the number of upvalues closures over this function
// capture.
func (b *Builder) Upvalues(n int) *Builder { b.upvalueC = n; return b }

// Line sets the source line recorded against subsequently emitted
// instructions (§6 "stRecordFrame"), until changed again.
func (b *Builder) Line(n int) *Builder { b.curLine = n; return b }

// Const appends a constant-pool entry and returns its index; equal values
// added twice get two entries.
func (b *Builder) Const(v values.Value) int32 {
	b.consts = append(b.consts, v)
	return int32(len(b.consts) - 1)
}

// Emit appends an instruction with concrete operands and returns its
// address (instruction index).
func (b *Builder) Emit(op opcodes.Opcode, a, bOperand int32) int {
	idx := len(b.insts)
	b.insts = append(b.insts, &opcodes.Instruction{Op: op, A: a, B: bOperand, Line: b.curLine})
	b.lines = append(b.lines, b.curLine)
	return idx
}

// Emit0 appends a bare instruction (no operands).
func (b *Builder) Emit0(op opcodes.Opcode) int { return b.Emit(op, 0, 0) }

// EmitClosure appends OP_CLOSURE over fn with the given upvalue
// descriptors.
func (b *Builder) EmitClosure(fnConstIdx int32, upvalues []opcodes.UpvalueDesc) int {
	idx := len(b.insts)
	b.insts = append(b.insts, &opcodes.Instruction{Op: opcodes.OP_CLOSURE, A: fnConstIdx, Upvalues: upvalues, Line: b.curLine})
	b.lines = append(b.lines, b.curLine)
	return idx
}

// Mark binds label to the address of the next instruction to be emitted.
func (b *Builder) Mark(label string) *Builder {
	b.labels[label] = len(b.insts)
	return b
}

// EmitJump appends a jump-family instruction (JUMP/JUMPF/JUMPT) whose
// target is resolved from label at Build time.
func (b *Builder) EmitJump(op opcodes.Opcode, label string) int {
	idx := b.Emit(op, -1, 0)
	b.patches = append(b.patches, patch{instIdx: idx, f: fieldA, label: label})
	return idx
}

// EmitSetupExcept appends OP_SETUP_EXCEPT; filterConstIdx is 0 for a
// catch-all handler, the constant-pool index of the exception class
// otherwise. The handler address is resolved from label at Build time.
func (b *Builder) EmitSetupExcept(filterConstIdx int32, label string) int {
	idx := b.Emit(opcodes.OP_SETUP_EXCEPT, filterConstIdx, -1)
	b.patches = append(b.patches, patch{instIdx: idx, f: fieldB, label: label})
	return idx
}

// EmitSetupEnsure appends OP_SETUP_ENSURE with its handler address
// resolved from label at Build time.
func (b *Builder) EmitSetupEnsure(label string) int {
	idx := b.Emit(opcodes.OP_SETUP_ENSURE, 0, -1)
	b.patches = append(b.patches, patch{instIdx: idx, f: fieldB, label: label})
	return idx
}

// Build resolves every pending label patch and returns the assembled
// Function. It panics on an unresolved label — a hand-assembled bytecode
// programming error, not a runtime condition the VM needs to recover from.
func (b *Builder) Build() *values.Function {
	for _, p := range b.patches {
		addr, ok := b.labels[p.label]
		if !ok {
			panic(fmt.Sprintf("asm: unresolved label %q in function %q", p.label, b.name))
		}
		switch p.f {
		case fieldA:
			b.insts[p.instIdx].A = int32(addr)
		case fieldB:
			b.insts[p.instIdx].B = int32(addr)
		}
	}
	return &values.Function{
		Name:        b.name,
		Code:        b.insts,
		Constants:   b.consts,
		ArgsCount:   b.argsCount,
		DefaultArgs: b.defaults,
		Vararg:      b.vararg,
		UpvalueC:    b.upvalueC,
		Lines:       b.lines,
	}
}
