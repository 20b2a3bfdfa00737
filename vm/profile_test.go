package vm

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestCaptureFatalTraceIncludesCaller covers the fatal-abort diagnostics
// path of §7: the captured Go-level stack names the function that asked
// for it.
func TestCaptureFatalTraceIncludesCaller(t *testing.T) {
	trace := CaptureFatalTrace(0)
	assert.Contains(t, trace, "TestCaptureFatalTraceIncludesCaller")
}

// TestDumpValueGraphWritesLabelAndContent covers the deep-debug-dump half
// of the same diagnostics layer.
func TestDumpValueGraphWritesLabelAndContent(t *testing.T) {
	var buf bytes.Buffer
	DumpValueGraph(&buf, "builtin exceptions", map[string]int{"a": 1})

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "builtin exceptions:\n"))
	assert.Contains(t, out, "\"a\"")
}
