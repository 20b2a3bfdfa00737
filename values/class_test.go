package values

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassIsSubclassOf(t *testing.T) {
	base := NewClass("Base", nil, InstantiableInstance)
	mid := NewClass("Mid", base, InstantiableInstance)
	leaf := NewClass("Leaf", mid, InstantiableInstance)

	assert.True(t, leaf.IsSubclassOf(leaf))
	assert.True(t, leaf.IsSubclassOf(mid))
	assert.True(t, leaf.IsSubclassOf(base))
	assert.False(t, base.IsSubclassOf(leaf))

	other := NewClass("Other", nil, InstantiableInstance)
	assert.False(t, leaf.IsSubclassOf(other))
}

func TestInstanceFieldsAreIndependentPerInstance(t *testing.T) {
	cls := NewClass("Point", nil, InstantiableInstance)
	a := NewInstance(cls)
	b := NewInstance(cls)

	AsInstance(a).Fields["x"] = Number(1)
	_, ok := AsInstance(b).Fields["x"]
	assert.False(t, ok, "fields live on the Instance payload, not the shared Class")
}

func TestMethodLooksUpOwnTableOnly(t *testing.T) {
	cls := NewClass("C", nil, InstantiableInstance)
	m, ok := cls.Method("missing")
	require.False(t, ok)
	assert.True(t, m.IsNull())

	cls.Methods["greet"] = NewString("not really a closure, just a placeholder value")
	got, ok := cls.Method("greet")
	require.True(t, ok)
	assert.True(t, IsString(got))
}
