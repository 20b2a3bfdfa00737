package vm

import "github.com/jstar-lang/jstar/values"

// The mark-sweep mechanics themselves are an external collaborator (§6
// "GC: allocation primitives... roots the VM via its stack/frames/
// tables"); Go's own garbage collector reclaims values.Object memory for
// us, so this file models only the narrow surface the VM core owns: byte
// accounting against the configured thresholds, and root enumeration for
// an external collector that wants to cooperate with (rather than replace)
// Go's collector — e.g. to free native-side resources pinned by a handle
// value when its wrapping Object becomes unreachable.

// accountAlloc records n allocated bytes against the GC threshold,
// reporting whether a collection is due (conf.initGC / heapGrowRate, §6
// "Configuration options").
func (vm *VM) accountAlloc(n int64) (collectDue bool) {
	vm.allocBytes += n
	return vm.allocBytes >= vm.gcThreshold
}

// noteCollection resets the allocation counter and grows the threshold by
// the configured rate, mirroring the bump-allocator accounting of a
// generational collector's young-generation promotion step.
func (vm *VM) noteCollection() {
	vm.allocBytes = 0
	vm.gcThreshold *= int64(vm.conf.HeapGrowRate)
	if vm.gcThreshold <= 0 {
		vm.gcThreshold = vm.conf.InitGC
	}
}

// Roots enumerates every GC root this VM instance owns (§3 "Lifecycles":
// "GC reclaims via mark-sweep rooted in the stack, frames, open upvalues,
// modules table, interned string pool, and VM-held built-in class
// references"). An external collector walks the returned slice and the
// object graph reachable from it; values.Object's own mark bit and sweep-
// list link (§3 "Object header") are the primitives it mutates along the
// way.
func (vm *VM) Roots() []values.Value {
	roots := make([]values.Value, 0, len(vm.stack)+len(vm.modules))
	roots = append(roots, vm.stack...)
	for _, m := range vm.modules {
		roots = append(roots, m)
	}
	for _, ou := range vm.openUpvalues {
		roots = append(roots, ou.val)
	}
	return roots
}
