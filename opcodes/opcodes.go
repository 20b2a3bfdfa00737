// Package opcodes defines the J* VM's fixed bytecode instruction set (§4.11)
// and the Instruction encoding the dispatch loop consumes.
package opcodes

import "fmt"

// Opcode identifies a bytecode instruction. Grouped by family in declaration
// order, mirroring the teacher's grouped-iota block style
// (wudi-hey/opcodes/opcodes.go), generalized from PHP's opcode-cache-derived
// set to the stack-machine set §4.11 enumerates.
type Opcode byte

const (
	OP_NOP Opcode = iota

	// Arithmetic (stack: pop b, pop a, push a OP b)
	OP_ADD
	OP_SUB
	OP_MUL
	OP_DIV
	OP_MOD
	OP_POW
	OP_NEG // unary -value

	// Comparison (stack: pop b, pop a, push bool)
	OP_LT
	OP_LE
	OP_GT
	OP_GE
	OP_EQ
	OP_NOT // unary boolean not
	OP_IS  // a is b (RHS must be a class)

	// Subscript
	OP_SUBSCR_GET // pop index, pop target, push target[index]
	OP_SUBSCR_SET // pop value, pop index, pop target; target[index] = value; push value

	// Field access
	OP_GET_FIELD // operand: constant-pool index of field-name string; pop target, push target.field
	OP_SET_FIELD // operand: constant-pool index of field-name string; pop value, pop target; target.field = value; push value

	// Control flow
	OP_JUMP     // unconditional; A = absolute instruction index
	OP_JUMPF    // pop condition; jump to A if falsy
	OP_JUMPT    // pop condition; jump to A if truthy
	OP_FOR_ITER // §4.8: peek (iterable, state); call iter(state); replace state
	OP_FOR_NEXT // §4.8: call __next__(state); push result

	// Call family. CALL/INVOKE/SUPER take argc from A; the *_0.._10
	// variants fold a literal argc 0..10 into the opcode itself (§4.11
	// "small-arity call specializations fold argc into the opcode") so the
	// common case of a handful of fixed-arity calls skips an operand fetch.
	OP_CALL
	OP_CALL_0
	OP_CALL_1
	OP_CALL_2
	OP_CALL_3
	OP_CALL_4
	OP_CALL_5
	OP_CALL_6
	OP_CALL_7
	OP_CALL_8
	OP_CALL_9
	OP_CALL_10

	OP_INVOKE // A = constant-pool index of method-name string, B = argc
	OP_INVOKE_0
	OP_INVOKE_1
	OP_INVOKE_2
	OP_INVOKE_3
	OP_INVOKE_4
	OP_INVOKE_5
	OP_INVOKE_6
	OP_INVOKE_7
	OP_INVOKE_8
	OP_INVOKE_9
	OP_INVOKE_10

	OP_SUPER // A = constant-pool index of method-name string, B = argc
	OP_SUPER_0
	OP_SUPER_1
	OP_SUPER_2
	OP_SUPER_3
	OP_SUPER_4
	OP_SUPER_5
	OP_SUPER_6
	OP_SUPER_7
	OP_SUPER_8
	OP_SUPER_9
	OP_SUPER_10

	OP_SUPER_BIND // materialize a BoundMethod against the frozen super reference

	// Data
	OP_NULL        // push null
	OP_TRUE        // push true
	OP_FALSE       // push false
	OP_GET_CONST   // A = constant-pool index; push constant
	OP_GET_LOCAL   // A = frame-relative local slot; push
	OP_SET_LOCAL   // A = frame-relative local slot; pop, store, push value back
	OP_GET_UPVALUE // A = upvalue index in current closure
	OP_SET_UPVALUE // A = upvalue index in current closure
	OP_GET_GLOBAL  // A = constant-pool index of name string
	OP_SET_GLOBAL  // A = constant-pool index of name string
	OP_DEFINE_GLOBAL

	// Aggregate construction
	OP_NEW_LIST        // push new empty List
	OP_APPEND_LIST      // pop value, pop list, append, push list
	OP_NEW_TUPLE       // A = element count; pop A values, push Tuple
	OP_NEW_TABLE       // push new empty Table

	// Class construction
	OP_NEW_CLASS    // A = constant-pool index of name; B = 1 if superclass is on stack (pop it), push new Class
	OP_NEW_SUBCLASS // alias of NEW_CLASS with B always 1; kept distinct for readability of compiled output
	OP_DEF_METHOD   // A = constant-pool index of method name; pop closure, pop class, attach, push class
	OP_NAT_METHOD   // A = constant-pool index of method name; B = constant-pool index of native symbol name; resolve via native registry, attach, push class
	OP_NEW          // A = argc; call-protocol class instantiation (§4.2 "Class")

	// Closures
	OP_CLOSURE       // A = constant-pool index of Function; upvalue descriptors carried on Instruction.Upvalues
	OP_CLOSE_UPVALUE // close every open upvalue at/above the current top-of-stack slot

	// Exceptions
	OP_SETUP_EXCEPT // A = exception-class constant index (0 = catch-all), B = catch handler address
	OP_SETUP_ENSURE // B = ensure handler address
	OP_POP_HANDLER
	OP_END_TRY
	OP_RAISE

	// Stack
	OP_POP
	OP_DUP

	// Function
	OP_RETURN
	OP_UNPACK // A = target count; pop tuple/list, push its elements

	// Import
	OP_IMPORT      // A = constant-pool index of module-name string
	OP_IMPORT_AS   // A = module-name constant index, B = alias-name constant index
	OP_IMPORT_FROM // A = constant-pool index of module-name string
	OP_IMPORT_NAME // A = constant-pool index of binding name, or "*" for wildcard
)

var names = map[Opcode]string{
	OP_NOP: "NOP", OP_ADD: "ADD", OP_SUB: "SUB", OP_MUL: "MUL", OP_DIV: "DIV",
	OP_MOD: "MOD", OP_POW: "POW", OP_NEG: "NEG", OP_LT: "LT", OP_LE: "LE",
	OP_GT: "GT", OP_GE: "GE", OP_EQ: "EQ", OP_NOT: "NOT", OP_IS: "IS",
	OP_SUBSCR_GET: "SUBSCR_GET", OP_SUBSCR_SET: "SUBSCR_SET",
	OP_GET_FIELD: "GET_FIELD", OP_SET_FIELD: "SET_FIELD",
	OP_JUMP: "JUMP", OP_JUMPF: "JUMPF", OP_JUMPT: "JUMPT",
	OP_FOR_ITER: "FOR_ITER", OP_FOR_NEXT: "FOR_NEXT",
	OP_CALL: "CALL", OP_INVOKE: "INVOKE", OP_SUPER: "SUPER", OP_SUPER_BIND: "SUPER_BIND",
	OP_NULL: "NULL", OP_TRUE: "TRUE", OP_FALSE: "FALSE",
	OP_GET_CONST: "GET_CONST", OP_GET_LOCAL: "GET_LOCAL", OP_SET_LOCAL: "SET_LOCAL",
	OP_GET_UPVALUE: "GET_UPVALUE", OP_SET_UPVALUE: "SET_UPVALUE",
	OP_GET_GLOBAL: "GET_GLOBAL", OP_SET_GLOBAL: "SET_GLOBAL", OP_DEFINE_GLOBAL: "DEFINE_GLOBAL",
	OP_NEW_LIST: "NEW_LIST", OP_APPEND_LIST: "APPEND_LIST", OP_NEW_TUPLE: "NEW_TUPLE", OP_NEW_TABLE: "NEW_TABLE",
	OP_NEW_CLASS: "NEW_CLASS", OP_NEW_SUBCLASS: "NEW_SUBCLASS", OP_DEF_METHOD: "DEF_METHOD",
	OP_NAT_METHOD: "NAT_METHOD", OP_NEW: "NEW",
	OP_CLOSURE: "CLOSURE", OP_CLOSE_UPVALUE: "CLOSE_UPVALUE",
	OP_SETUP_EXCEPT: "SETUP_EXCEPT", OP_SETUP_ENSURE: "SETUP_ENSURE",
	OP_POP_HANDLER: "POP_HANDLER", OP_END_TRY: "END_TRY", OP_RAISE: "RAISE",
	OP_POP: "POP", OP_DUP: "DUP", OP_RETURN: "RETURN", OP_UNPACK: "UNPACK",
	OP_IMPORT: "IMPORT", OP_IMPORT_AS: "IMPORT_AS", OP_IMPORT_FROM: "IMPORT_FROM", OP_IMPORT_NAME: "IMPORT_NAME",
}

func (op Opcode) String() string {
	if op >= OP_CALL_0 && op <= OP_CALL_10 {
		return fmt.Sprintf("CALL_%d", int(op-OP_CALL_0))
	}
	if op >= OP_INVOKE_0 && op <= OP_INVOKE_10 {
		return fmt.Sprintf("INVOKE_%d", int(op-OP_INVOKE_0))
	}
	if op >= OP_SUPER_0 && op <= OP_SUPER_10 {
		return fmt.Sprintf("SUPER_%d", int(op-OP_SUPER_0))
	}
	if n, ok := names[op]; ok {
		return n
	}
	return fmt.Sprintf("OP(%d)", byte(op))
}

// UpvalueDesc describes one captured upvalue for an OP_CLOSURE instruction
// (§4.6): IsLocal true means capture frame.base+Index of the *enclosing*
// frame; false means reuse the enclosing closure's upvalue at Index.
type UpvalueDesc struct {
	IsLocal bool
	Index   int32
}

// Instruction is one bytecode instruction. A and B are generic operands
// whose meaning depends on Op (documented alongside each Opcode above).
// Upvalues is only populated for OP_CLOSURE. Line supports stack-trace
// recording (§6 stRecordFrame).
type Instruction struct {
	Op       Opcode
	A        int32
	B        int32
	Upvalues []UpvalueDesc
	Line     int
}

// CallArgc resolves the argument count for any member of the CALL/INVOKE/
// SUPER opcode families, folding the small-arity specializations back to a
// plain integer (§4.11).
func CallArgc(inst *Instruction) int {
	switch {
	case inst.Op >= OP_CALL_0 && inst.Op <= OP_CALL_10:
		return int(inst.Op - OP_CALL_0)
	case inst.Op >= OP_INVOKE_0 && inst.Op <= OP_INVOKE_10:
		return int(inst.Op - OP_INVOKE_0)
	case inst.Op >= OP_SUPER_0 && inst.Op <= OP_SUPER_10:
		return int(inst.Op - OP_SUPER_0)
	case inst.Op == OP_INVOKE || inst.Op == OP_SUPER:
		return int(inst.B)
	default: // OP_CALL
		return int(inst.A)
	}
}
