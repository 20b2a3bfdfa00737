package vm

import (
	"fmt"

	"github.com/jstar-lang/jstar/values"
)

// createClass implements §4.7: allocate a class and merge the superclass
// method table (shallow copy). The frozen super reference consumed by
// OP_SUPER is recorded per method by defMethod, not here.
func (vm *VM) createClass(name string, super values.Value) (*values.Class, error) {
	var superCls *values.Class
	if !super.IsNull() {
		if !values.IsClass(super) {
			return nil, vm.raiseNew("TypeException", "superclass in declaration must be a class")
		}
		superCls = values.AsClass(super)
		if superCls.Instantiable != values.InstantiableInstance {
			// Builtin value classes (List/Number/...) and never-instantiable
			// classes (Module/Class/Table/...) may not be subclassed. Every
			// Exception class (root and subclasses) is itself
			// InstantiableInstance, so this never fires for the exception
			// hierarchy.
			return nil, vm.raiseNew("TypeException", fmt.Sprintf("cannot subclass built-in class %s", superCls.Name))
		}
	}
	cls := values.NewClass(name, superCls, values.InstantiableInstance)
	if superCls != nil {
		for k, v := range superCls.Methods {
			cls.Methods[k] = v
		}
	}
	return cls, nil
}

// defMethod attaches a compiled closure as a method, recording the frozen
// super reference consulted by OP_SUPER (§4.7).
func (vm *VM) defMethod(cls *values.Class, name string, method values.Value) {
	if values.IsClosure(method) {
		values.AsClosure(method).Function.SuperClass = cls.Super
	}
	cls.Methods[name] = method
}

// natMethod resolves a native method by (module, class, name) against the
// native registry, builtins-first (§4.7, §6 "resolveNative").
func (vm *VM) natMethod(cls *values.Class, methodName, nativeName string) error {
	moduleName := ""
	if vm.curModule != nil {
		moduleName = vm.curModule.Name
	}
	n, err := vm.registry.Resolve(moduleName, cls.Name, nativeName)
	if err != nil {
		return vm.raiseNew("ImportException", fmt.Sprintf("unresolved native %s::%s: %v", cls.Name, nativeName, err))
	}
	cls.Methods[methodName] = values.NewNative(n)
	return nil
}

// superMethod looks up a method on the frozen super reference stored in the
// closure's Function.SuperClass field, implementing §4.7's "super.m() binds lexically,
// not by receiver class".
func (vm *VM) superMethod(name string) (*values.Class, values.Value, bool) {
	f := vm.curFrame()
	if f.closure == nil || f.closure.Function.SuperClass == nil {
		return nil, values.Value{}, false
	}
	superCls := f.closure.Function.SuperClass
	m, ok := superCls.Method(name)
	return superCls, m, ok
}
