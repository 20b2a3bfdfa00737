package vm

import (
	"fmt"
	"math"

	"github.com/jstar-lang/jstar/values"
)

// binaryOp implements §4.5's dispatch order: fast numeric path, then string
// `+` concatenation, then direct/reverse overload, then TypeException.
func (vm *VM) binaryOp(sym string, apply func(a, b float64) float64) error {
	b := vm.pop()
	a := vm.pop()
	if a.IsNumber() && b.IsNumber() {
		vm.push(values.Number(apply(a.AsNumber(), b.AsNumber())))
		return nil
	}
	if sym == values.SymAdd && values.IsString(a) && values.IsString(b) {
		vm.push(values.NewString(values.AsString(a) + values.AsString(b)))
		return nil
	}
	return vm.dispatchOverload(sym, a, b)
}

// dispatchOverload implements the direct/reverse fallback of §4.5 and §8's
// "operator fallback" law.
func (vm *VM) dispatchOverload(sym string, a, b values.Value) error {
	if m, ok := values.GetClass(a).Method(sym); ok {
		result, err := vm.invokeMethodReturning(a, sym, b)
		if err != nil {
			return err
		}
		_ = m
		vm.push(result)
		return nil
	}
	if rsym, ok := values.ReverseOf(sym); ok {
		if _, ok := values.GetClass(b).Method(rsym); ok {
			result, err := vm.invokeMethodReturning(b, rsym, a)
			if err != nil {
				return err
			}
			vm.push(result)
			return nil
		}
	}
	return vm.raiseNew("TypeException", fmt.Sprintf("unsupported operand types for %s: %s and %s",
		sym, values.GetClass(a).Name, values.GetClass(b).Name))
}

// OP_POW has no overload form (§4.5 "^ (exponent) has no overload; both
// sides must be numeric").
func (vm *VM) opPow() error {
	b := vm.pop()
	a := vm.pop()
	if !a.IsNumber() || !b.IsNumber() {
		return vm.raiseNew("TypeException", "** requires two numbers")
	}
	vm.push(values.Number(math.Pow(a.AsNumber(), b.AsNumber())))
	return nil
}

// compareOp implements comparison overloads, which have no reverse form
// (§4.5).
func (vm *VM) compareOp(sym string, numCmp func(a, b float64) bool) error {
	b := vm.pop()
	a := vm.pop()
	if a.IsNumber() && b.IsNumber() {
		vm.push(values.Bool(numCmp(a.AsNumber(), b.AsNumber())))
		return nil
	}
	if m, ok := values.GetClass(a).Method(sym); ok {
		_ = m
		result, err := vm.invokeMethodReturning(a, sym, b)
		if err != nil {
			return err
		}
		vm.push(result)
		return nil
	}
	return vm.raiseNew("TypeException", fmt.Sprintf("unsupported operand types for %s: %s and %s",
		sym, values.GetClass(a).Name, values.GetClass(b).Name))
}

// opEq implements §6's "==" short-circuit: number/null/boolean compare
// structurally; everything else is identity unless __eq__ is defined.
func (vm *VM) opEq() error {
	b := vm.pop()
	a := vm.pop()
	if a.IsNumber() || a.IsNull() || a.IsBool() {
		vm.push(values.Bool(values.RawEquals(a, b)))
		return nil
	}
	if m, ok := values.GetClass(a).Method(values.SymEq); ok {
		_ = m
		result, err := vm.invokeMethodReturning(a, values.SymEq, b)
		if err != nil {
			return err
		}
		vm.push(result)
		return nil
	}
	vm.push(values.Bool(values.RawEquals(a, b)))
	return nil
}

// opIs implements `is` (§4.5): RHS must be a class; tests membership along
// the superclass chain.
func (vm *VM) opIs() error {
	b := vm.pop()
	a := vm.pop()
	if !values.IsClass(b) {
		return vm.raiseNew("TypeException", "right-hand side of 'is' must be a class")
	}
	vm.push(values.Bool(values.GetClass(a).IsSubclassOf(values.AsClass(b))))
	return nil
}

// opNeg implements unary `-`: numeric fast path, then __neg__.
func (vm *VM) opNeg() error {
	a := vm.pop()
	if a.IsNumber() {
		vm.push(values.Number(-a.AsNumber()))
		return nil
	}
	if _, ok := values.GetClass(a).Method(values.SymNeg); ok {
		result, err := vm.invokeMethodReturning0(a, values.SymNeg)
		if err != nil {
			return err
		}
		vm.push(result)
		return nil
	}
	return vm.raiseNew("TypeException", fmt.Sprintf("bad operand type for unary -: %s", values.GetClass(a).Name))
}
