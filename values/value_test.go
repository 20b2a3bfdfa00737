package values

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruthy(t *testing.T) {
	assert.False(t, Null().Truthy())
	assert.False(t, Bool(false).Truthy())
	assert.True(t, Bool(true).Truthy())
	assert.False(t, Number(0).Truthy())
	assert.True(t, Number(-1).Truthy())
	assert.True(t, NewString("").Truthy(), "a string object reference is truthy regardless of content")
}

func TestIsInt(t *testing.T) {
	assert.True(t, IsInt(Number(3)))
	assert.True(t, IsInt(Number(-4)))
	assert.False(t, IsInt(Number(3.5)))
	assert.False(t, IsInt(Bool(true)))
}

func TestRawEqualsNumbers(t *testing.T) {
	assert.True(t, RawEquals(Number(1), Number(1)))
	assert.False(t, RawEquals(Number(1), Number(2)))
	nan := Number(nan())
	assert.False(t, RawEquals(nan, nan), "NaN != NaN under IEEE-754, per the spec's equality table")
}

func TestRawEqualsObjectsAreIdentity(t *testing.T) {
	a := NewList()
	b := NewList()
	assert.True(t, a.IsObject(), "sanity: lists are objects")
	assert.True(t, RawEquals(a, a))
	assert.False(t, RawEquals(a, b), "two distinct List objects are not raw-equal even though both are empty")
}

func TestStringInterning(t *testing.T) {
	a := NewString("hello")
	b := NewString("hello")
	assert.Equal(t, a.AsObject(), b.AsObject(), "two interned strings with equal content share one Object")
	assert.True(t, RawEquals(a, b), "interned identity makes RawEquals agree with content equality")
}

func nan() float64 {
	var zero float64
	return zero / zero
}
