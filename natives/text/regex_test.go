package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jstar-lang/jstar/registry"
	"github.com/jstar-lang/jstar/values"
)

// fakeCtx drives a *values.Native directly without a running VM; Receiver
// returns the preset instance and Raise reports whether it was called.
type fakeCtx struct {
	receiver values.Value
	raised   bool
	class    *values.Class
	message  string
}

func (c *fakeCtx) Receiver() values.Value { return c.receiver }
func (c *fakeCtx) Raise(cls *values.Class, msg string) error {
	c.raised = true
	c.class = cls
	c.message = msg
	return values.NewLangError(values.NewInstance(cls))
}

func regexClass() *values.Class {
	return values.NewClass(ClassName, nil, values.InstantiableInstance)
}

func TestRegisterAddsAllFourNatives(t *testing.T) {
	reg := registry.New()
	Register(reg)

	for _, name := range []string{"init", "match", "find", "replace"} {
		_, err := reg.Resolve(ModuleName, ClassName, name)
		assert.NoError(t, err, "expected %q to be registered", name)
	}
}

func TestInitCompilesPattern(t *testing.T) {
	inst := values.NewInstance(regexClass())
	ctx := &fakeCtx{receiver: inst}

	result, err := initNative().Fn(ctx, []values.Value{values.NewString("[0-9]+")})
	require.NoError(t, err)
	assert.Equal(t, inst, result)
	assert.False(t, ctx.raised)
	assert.NotNil(t, compiledOf(inst))
}

func TestInitRaisesOnInvalidPattern(t *testing.T) {
	inst := values.NewInstance(regexClass())
	ctx := &fakeCtx{receiver: inst}

	_, err := initNative().Fn(ctx, []values.Value{values.NewString("[unterminated")})
	require.Error(t, err)
	assert.True(t, ctx.raised)
	assert.Equal(t, values.InvalidArgExceptionClass, ctx.class)
}

func TestMatchAndFind(t *testing.T) {
	inst := values.NewInstance(regexClass())
	initCtx := &fakeCtx{receiver: inst}
	_, err := initNative().Fn(initCtx, []values.Value{values.NewString(`\d+`)})
	require.NoError(t, err)

	matchCtx := &fakeCtx{receiver: inst}
	matched, err := matchNative().Fn(matchCtx, []values.Value{values.NewString("abc123")})
	require.NoError(t, err)
	assert.True(t, matched.AsBool())

	findCtx := &fakeCtx{receiver: inst}
	found, err := findNative().Fn(findCtx, []values.Value{values.NewString("abc123def")})
	require.NoError(t, err)
	assert.Equal(t, "123", values.AsString(found))

	noMatchCtx := &fakeCtx{receiver: inst}
	notFound, err := findNative().Fn(noMatchCtx, []values.Value{values.NewString("no digits here")})
	require.NoError(t, err)
	assert.True(t, notFound.IsNull())
}

func TestReplaceSubstitutesAllMatches(t *testing.T) {
	inst := values.NewInstance(regexClass())
	initCtx := &fakeCtx{receiver: inst}
	_, err := initNative().Fn(initCtx, []values.Value{values.NewString(`\d+`)})
	require.NoError(t, err)

	replaceCtx := &fakeCtx{receiver: inst}
	out, err := replaceNative().Fn(replaceCtx, []values.Value{values.NewString("a1b22c333"), values.NewString("#")})
	require.NoError(t, err)
	assert.Equal(t, "a#b#c#", values.AsString(out))
}
