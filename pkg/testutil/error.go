package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/soltips-server/pkg/solana"
	"github.com/code-payments/soltips-server/pkg/solana/crowdfunding"
)

// AssertProgramError verifies that err carries the provided crowdfunding
// program error code.
func AssertProgramError(t *testing.T, err error, code crowdfunding.ErrorCode) {
	require.Error(t, err)
	actual, ok := crowdfunding.GetErrorCode(err)
	require.True(t, ok, "not a program error: %v", err)
	assert.Equal(t, code, actual)
}

// AssertInstructionError verifies that err is a transaction error raised by a
// builtin instruction error.
func AssertInstructionError(t *testing.T, err error, key solana.InstructionErrorKey) {
	require.Error(t, err)
	txErr, ok := err.(*solana.TransactionError)
	require.True(t, ok, "not a transaction error: %v", err)
	require.NotNil(t, txErr.InstructionError())
	assert.Equal(t, key, txErr.InstructionError().ErrorKey())
}
