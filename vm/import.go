package vm

import (
	"fmt"

	"github.com/jstar-lang/jstar/values"
)

// doImport implements the shared load step of §4.10: ask the external
// importer to resolve/load/compile/register the module (the importer
// calls vm.RegisterModule itself), then bind it into the current module's
// globals under bindAs. If this is the first load, the returned
// initializer closure is run to completion (invoked with zero arguments,
// §4.10 "running the module initializer").
func (vm *VM) doImport(name, bindAs string) error {
	if vm.importer == nil {
		return vm.raiseNew("ImportException", "no importer configured")
	}
	if modVal, ok := vm.modules[name]; ok && values.AsModule(modVal).Ran {
		vm.curFrame().module.Globals[bindAs] = modVal
		return nil
	}
	initializer, found, err := vm.importer.ImportModule(vm, name)
	if err != nil {
		return vm.raiseNew("ImportException", fmt.Sprintf("failed to import %q: %v", name, err))
	}
	if !found {
		return vm.raiseNew("ImportException", fmt.Sprintf("module %q not found", name))
	}
	modVal, ok := vm.modules[name]
	if !ok {
		return vm.raiseNew("ImportException", fmt.Sprintf("importer did not register module %q", name))
	}
	vm.curFrame().module.Globals[bindAs] = modVal
	mod := values.AsModule(modVal)
	if mod.Ran {
		return nil
	}
	mod.Ran = true
	if initializer.IsNull() {
		return nil // a natives-only module has no body to run
	}
	vm.push(initializer)
	if _, err := vm.awaitCall(initializer, 0); err != nil {
		return err
	}
	return nil
}

// importName implements OP_IMPORT_NAME (§4.10): copy one named binding
// from the imported module's globals, or every binding when name is "*".
func (vm *VM) importName(moduleVal values.Value, name string) error {
	mod := values.AsModule(moduleVal)
	if name == "*" {
		for k, v := range mod.Globals {
			vm.curFrame().module.Globals[k] = v
		}
		return nil
	}
	v, ok := mod.Globals[name]
	if !ok {
		return vm.raiseNew("ImportException", fmt.Sprintf("module %q has no name %q", mod.Name, name))
	}
	vm.curFrame().module.Globals[name] = v
	return nil
}
