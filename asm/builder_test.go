package asm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jstar-lang/jstar/opcodes"
	"github.com/jstar-lang/jstar/values"
)

func TestBuilderResolvesForwardJumpLabels(t *testing.T) {
	b := NewBuilder("f")
	b.EmitJump(opcodes.OP_JUMP, "end")
	b.Emit0(opcodes.OP_NOP)
	b.Mark("end")
	b.Emit0(opcodes.OP_RETURN)

	fn := b.Build()
	code := fn.Code.([]*opcodes.Instruction)
	require.Len(t, code, 3)
	assert.Equal(t, int32(2), code[0].A, "the jump target resolves to the RETURN's address")
}

func TestBuilderResolvesSetupExceptHandlerAddress(t *testing.T) {
	b := NewBuilder("f")
	filter := b.Const(values.Number(1))
	b.EmitSetupExcept(filter, "handler")
	b.Emit0(opcodes.OP_NOP)
	b.Mark("handler")
	b.Emit0(opcodes.OP_POP)

	fn := b.Build()
	code := fn.Code.([]*opcodes.Instruction)
	assert.Equal(t, filter, code[0].A)
	assert.Equal(t, int32(2), code[0].B)
}

func TestBuilderPanicsOnUnresolvedLabel(t *testing.T) {
	b := NewBuilder("f")
	b.EmitJump(opcodes.OP_JUMP, "nowhere")

	assert.Panics(t, func() { b.Build() })
}

func TestBuilderConstPoolIndicesAreStable(t *testing.T) {
	b := NewBuilder("f")
	i0 := b.Const(values.Number(1))
	i1 := b.Const(values.NewString("x"))
	assert.Equal(t, int32(0), i0)
	assert.Equal(t, int32(1), i1)

	fn := b.Build()
	assert.Equal(t, float64(1), fn.Constants[i0].AsNumber())
	assert.Equal(t, "x", values.AsString(fn.Constants[i1]))
}

func TestBuilderFunctionMetadata(t *testing.T) {
	fn := NewBuilder("named").Args(2).Vararg().Upvalues(3).Defaults(values.Null()).Build()
	assert.Equal(t, "named", fn.Name)
	assert.Equal(t, 2, fn.ArgsCount)
	assert.True(t, fn.Vararg)
	assert.Equal(t, 3, fn.UpvalueC)
	assert.Len(t, fn.DefaultArgs, 1)
}
