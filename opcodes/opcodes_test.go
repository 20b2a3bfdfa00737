package opcodes

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCallArgcFoldsSmallArityVariants(t *testing.T) {
	assert.Equal(t, 0, CallArgc(&Instruction{Op: OP_CALL_0}))
	assert.Equal(t, 3, CallArgc(&Instruction{Op: OP_CALL_3}))
	assert.Equal(t, 10, CallArgc(&Instruction{Op: OP_CALL_10}))
	assert.Equal(t, 7, CallArgc(&Instruction{Op: OP_CALL, A: 7}))
}

func TestCallArgcInvokeAndSuper(t *testing.T) {
	assert.Equal(t, 2, CallArgc(&Instruction{Op: OP_INVOKE_2}))
	assert.Equal(t, 5, CallArgc(&Instruction{Op: OP_INVOKE, B: 5}))
	assert.Equal(t, 1, CallArgc(&Instruction{Op: OP_SUPER_1}))
	assert.Equal(t, 4, CallArgc(&Instruction{Op: OP_SUPER, B: 4}))
}

func TestOpcodeStringFoldsFamilies(t *testing.T) {
	assert.Equal(t, "CALL_4", OP_CALL_4.String())
	assert.Equal(t, "INVOKE_0", OP_INVOKE_0.String())
	assert.Equal(t, "SUPER_10", OP_SUPER_10.String())
	assert.Equal(t, "ADD", OP_ADD.String())
}

func TestOpcodeStringUnknownFallback(t *testing.T) {
	var bogus Opcode = 255
	assert.Contains(t, bogus.String(), "OP(255)")
}
