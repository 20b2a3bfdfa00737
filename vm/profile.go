package vm

import (
	"fmt"
	"io"
	"sort"

	"github.com/davecgh/go-spew/spew"
	"github.com/fatih/color"
	"github.com/go-stack/stack"
	"github.com/mattn/go-isatty"
	"github.com/olekukonko/tablewriter"

	"github.com/jstar-lang/jstar/opcodes"
)

// profiler accumulates per-opcode dispatch counts, the ambient diagnostics
// layer SPEC_FULL.md adds over the teacher's wudi-hey/vm/profiling.go
// hot-path counters, generalized from per-PHP-opcode counts to per-J*-
// opcode counts.
type profiler struct {
	counts map[opcodes.Opcode]int64
}

func newProfiler() *profiler { return &profiler{counts: make(map[opcodes.Opcode]int64)} }

// EnableProfiling turns on opcode-dispatch counting for this VM instance.
func (vm *VM) EnableProfiling() { vm.profiler = newProfiler() }

func (vm *VM) recordDispatch(op opcodes.Opcode) {
	if vm.profiler != nil {
		vm.profiler.counts[op]++
	}
}

// ReportProfile renders the hottest opcodes as an olekukonko/tablewriter
// table (grounded on wudi-hey/vm/profiling.go's hot-spot report, which the
// teacher prints with plain fmt), highlighting the top row when the writer
// is a terminal.
func (vm *VM) ReportProfile(w io.Writer) {
	if vm.profiler == nil {
		fmt.Fprintln(w, "profiling not enabled")
		return
	}
	type row struct {
		op    opcodes.Opcode
		count int64
	}
	rows := make([]row, 0, len(vm.profiler.counts))
	for op, n := range vm.profiler.counts {
		rows = append(rows, row{op, n})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].count > rows[j].count })

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Opcode", "Dispatches"})
	highlight := color.New(color.FgGreen).SprintFunc()
	useColor := false
	if f, ok := w.(interface{ Fd() uintptr }); ok {
		useColor = isatty.IsTerminal(f.Fd())
	}
	for i, r := range rows {
		name := r.op.String()
		if useColor && i == 0 {
			name = highlight(name)
		}
		table.Append([]string{name, fmt.Sprintf("%d", r.count)})
	}
	table.Render()
}

// CaptureFatalTrace returns a Go-level call stack for a fatal, non-
// recoverable VM condition (§7 "Fatal conditions... are not recoverable
// and abort the process; they never surface as exceptions"), grounded on
// ProbeChain-go-probe's use of go-stack/stack for panic diagnostics.
func CaptureFatalTrace(skip int) string {
	return fmt.Sprintf("%+v", stack.Trace().TrimBelow(stack.Caller(skip)))
}

// DumpValueGraph renders a value's full object graph for debugging
// (grounded on ProbeChain-go-probe and the testify ecosystem's reliance on
// davecgh/go-spew for deep struct dumps).
func DumpValueGraph(w io.Writer, label string, v interface{}) {
	fmt.Fprintf(w, "%s:\n%s\n", label, spew.Sdump(v))
}
