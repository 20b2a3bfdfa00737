package vm

import (
	"fmt"

	"github.com/jstar-lang/jstar/values"
)

// bootstrap wires the built-in classes' iterator protocol (§4.8) and the
// exception hierarchy (§7) before any user code runs (§6 "Process-wide
// sentinels... created at VM init before any user code executes").
func (vm *VM) bootstrap() {
	vm.bootstrapExceptions()
	bootstrapIndexable(values.ListClass, func(v values.Value) int { return len(values.AsList(v).Elements) },
		func(v values.Value, i int) values.Value { return values.AsList(v).Elements[i] })
	bootstrapIndexable(values.TupleClass, func(v values.Value) int { return len(values.AsTuple(v).Elements) },
		func(v values.Value, i int) values.Value { return values.AsTuple(v).Elements[i] })
	bootstrapIndexable(values.StringClass, func(v values.Value) int { return len(values.AsString(v)) },
		func(v values.Value, i int) values.Value { return values.NewString(string(values.AsString(v)[i])) })
}

// bootstrapIndexable attaches __iter__/__next__ to a sequence-like builtin
// class. The state tunneled between them is the real index offset by one
// (`encoded = idx + 1`): Truthy() (values/value.go) treats Number(0) as
// false, and OP_JUMPF pops an __iter__ result and tests it with Truthy(),
// so idx 0 — the very first element of any non-empty sequence — must
// never be carried as a bare 0. __next__ decodes the offset back.
func bootstrapIndexable(cls *values.Class, length func(values.Value) int, at func(values.Value, int) values.Value) {
	cls.Methods[values.SymIter] = values.NewNative(&values.Native{
		Name:      values.SymIter,
		ArgsCount: 1,
		Fn: func(ctx values.NativeCallContext, args []values.Value) (values.Value, error) {
			self := ctx.Receiver()
			n := length(self)
			state := args[0]
			if state.IsNull() {
				if n == 0 {
					return values.Bool(false), nil
				}
				return values.Number(1), nil // encodes idx 0
			}
			idx := int(state.AsNumber()) // the index __next__ is about to serve
			if idx >= n {
				return values.Bool(false), nil
			}
			return values.Number(float64(idx + 1)), nil // encodes idx
		},
	})
	cls.Methods[values.SymNext] = values.NewNative(&values.Native{
		Name:      values.SymNext,
		ArgsCount: 1,
		Fn: func(ctx values.NativeCallContext, args []values.Value) (values.Value, error) {
			self := ctx.Receiver()
			idx := int(args[0].AsNumber()) - 1 // decode
			n := length(self)
			if idx < 0 || idx >= n {
				vmRef := ctx.(*nativeCallContext).vm
				return values.Null(), ctx.Raise(vmRef.builtinExceptions["IndexOutOfBoundException"], fmt.Sprintf("index %d out of bounds", idx))
			}
			return at(self, idx), nil
		},
	})
}
