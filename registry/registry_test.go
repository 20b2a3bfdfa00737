package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jstar-lang/jstar/values"
)

func TestResolveBuiltinBeatsModuleSpecific(t *testing.T) {
	r := New()
	builtin := &values.Native{Name: "len", ArgsCount: 0}
	override := &values.Native{Name: "len", ArgsCount: 0}
	own := &values.Native{Name: "sum", ArgsCount: 0}

	r.RegisterBuiltin("List", "len", builtin)
	r.Register("mymod", "List", "len", override)
	r.Register("mymod", "List", "sum", own)

	got, err := r.Resolve("mymod", "List", "len")
	require.NoError(t, err)
	assert.Same(t, builtin, got, "the builtins tier is consulted before the module's own registrations")

	got, err = r.Resolve("mymod", "List", "sum")
	require.NoError(t, err)
	assert.Same(t, own, got, "falls back to the module's own registration when no builtin matches")
}

func TestResolveUnknownReturnsError(t *testing.T) {
	r := New()
	_, err := r.Resolve("mymod", "List", "nope")
	assert.Error(t, err)

	_, err = r.Resolve("mymod", "", "alsoNope")
	assert.Error(t, err)
}

func TestRegisterBuiltinUsesEmptyModule(t *testing.T) {
	r := New()
	n := &values.Native{Name: "free"}
	r.RegisterBuiltin("", "free", n)

	got, err := r.Resolve("anything", "", "free")
	require.NoError(t, err)
	assert.Same(t, n, got)
}
