package values

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCtx is the minimal NativeCallContext a test needs to drive a native
// Fn directly, without spinning up a VM.
type fakeCtx struct {
	receiver Value
}

func (c *fakeCtx) Receiver() Value { return c.receiver }
func (c *fakeCtx) Raise(cls *Class, msg string) error {
	return NewLangError(FromObject(nil))
}

func TestExceptionClassesShareOneRoot(t *testing.T) {
	for name, cls := range ExceptionClasses {
		if name == "Exception" {
			continue
		}
		assert.True(t, cls.IsSubclassOf(ExceptionClass), "%s must descend from the shared Exception root", name)
	}
}

func TestExceptionConstructorSetsMessage(t *testing.T) {
	inst := NewInstance(TypeExceptionClass)
	ctor, ok := TypeExceptionClass.Method(SymConstructor)
	require.True(t, ok)

	ctx := &fakeCtx{receiver: inst}
	result, err := AsNative(ctor).Fn(ctx, []Value{NewString("bad type")})
	require.NoError(t, err)
	assert.Equal(t, inst, result, "the constructor native returns the receiver")
	assert.Equal(t, "bad type", AsString(AsInstance(inst).Fields["msg"]))
}

func TestExceptionErrMethodReturnsMessage(t *testing.T) {
	inst := NewInstance(NameExceptionClass)
	AsInstance(inst).Fields["msg"] = NewString("no such name")

	errMethod, ok := NameExceptionClass.Method("err")
	require.True(t, ok)

	ctx := &fakeCtx{receiver: inst}
	result, err := AsNative(errMethod).Fn(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, "no such name", AsString(result))
}

func TestExceptionClassesAreDistinctFromBuiltinValueClasses(t *testing.T) {
	assert.NotEqual(t, ExceptionClass, NumberClass)
	assert.Equal(t, InstantiableInstance, ExceptionClass.Instantiable)
}
