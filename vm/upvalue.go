package vm

import "github.com/jstar-lang/jstar/values"

// openUpvalue tracks one still-open Upvalue Value together with the
// absolute stack index it currently observes. The set of openUpvalues
// forms the "single doubly-reachable list sorted by descending stack
// address" of §3 invariant 3; here it is a slice kept in that order rather
// than a linked list threaded through the stack itself, since Go slices
// make capture/close a straightforward scan without needing raw pointers
// into a movable stack.
type openUpvalue struct {
	index int // absolute stack index this upvalue currently observes
	val   values.Value
}

// captureUpvalue implements §4.6: scan the open list for an existing
// upvalue at the given absolute stack index, inserting a new one
// preserving descending-address order if none exists.
func (vm *VM) captureUpvalue(index int) values.Value {
	i := 0
	for ; i < len(vm.openUpvalues); i++ {
		if vm.openUpvalues[i].index == index {
			return vm.openUpvalues[i].val
		}
		if vm.openUpvalues[i].index < index {
			break
		}
	}
	entry := &openUpvalue{index: index, val: values.NewUpvalue(index)}
	vm.openUpvalues = append(vm.openUpvalues, nil)
	copy(vm.openUpvalues[i+1:], vm.openUpvalues[i:])
	vm.openUpvalues[i] = entry
	return entry.val
}

// closeUpvalues implements §4.6: close every open upvalue whose address is
// >= limit, migrating the live stack value into the upvalue's own cell, and
// drops them from the open list (invariant 1 of §8: after closeUpvalues(L)
// no open upvalue has address >= L).
func (vm *VM) closeUpvalues(limit int) {
	i := 0
	for i < len(vm.openUpvalues) && vm.openUpvalues[i].index >= limit {
		values.AsUpvalue(vm.openUpvalues[i].val).Close(vm.stack)
		i++
	}
	vm.openUpvalues = vm.openUpvalues[i:]
}
