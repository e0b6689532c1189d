package ledger

import (
	"github.com/pkg/errors"

	"github.com/code-payments/soltips-server/pkg/solana"
)

var (
	ErrInsufficientFunds        = errors.New("insufficient funds")
	ErrAccountAlreadyInUse      = errors.New("account already in use")
	ErrMissingRequiredSignature = errors.New("missing required signature")
	ErrReadonlyAccountModified  = errors.New("readonly account modified")
	ErrExternalAccountModified  = errors.New("account not owned by the invoking program")
	ErrAccountNotReferenced     = errors.New("account not referenced by the transaction")
	ErrAccountDataSizeChanged   = errors.New("account data size changed")
	ErrLamportOverflow          = errors.New("lamport balance overflow")
	ErrUnbalancedInstruction    = errors.New("sum of account balances changed")
	ErrInvalidInstructionData   = errors.New("invalid instruction data")
	ErrInvalidAccountData       = errors.New("invalid account data")
	ErrUnsupportedProgram       = errors.New("unsupported program")

	ErrAirdropsDisabled     = errors.New("airdrops are disabled")
	ErrAirdropLimitExceeded = errors.New("airdrop exceeds the configured limit")
)

// customError is implemented by program errors that are reported to clients
// as custom instruction errors.
type customError interface {
	error
	CustomErrorCode() uint32
}

var instructionErrorKeys = []struct {
	err error
	key solana.InstructionErrorKey
}{
	{ErrInsufficientFunds, solana.InstructionErrorInsufficientFunds},
	{ErrAccountAlreadyInUse, solana.InstructionErrorAccountAlreadyInUse},
	{ErrMissingRequiredSignature, solana.InstructionErrorMissingRequiredSignature},
	{ErrReadonlyAccountModified, solana.InstructionErrorReadonlyDataModified},
	{ErrExternalAccountModified, solana.InstructionErrorExternalAccountDataModified},
	{ErrAccountNotReferenced, solana.InstructionErrorNotEnoughAccountKeys},
	{ErrAccountDataSizeChanged, solana.InstructionErrorInvalidAccountData},
	{ErrLamportOverflow, solana.InstructionErrorArithmeticOverflow},
	{ErrUnbalancedInstruction, solana.InstructionErrorUnbalancedInstruction},
	{ErrInvalidInstructionData, solana.InstructionErrorInvalidInstructionData},
	{ErrInvalidAccountData, solana.InstructionErrorInvalidAccountData},
	{ErrUnsupportedProgram, solana.InstructionErrorUnsupportedProgramID},
}

// toInstructionError converts an error returned while processing the
// instruction at index into the error reported to clients.
func toInstructionError(index int, err error) *solana.InstructionError {
	var custom customError
	if errors.As(err, &custom) {
		return solana.NewInstructionError(index, solana.CustomError(custom.CustomErrorCode()))
	}

	for _, mapping := range instructionErrorKeys {
		if errors.Is(err, mapping.err) {
			return solana.NewInstructionError(index, errors.New(string(mapping.key)))
		}
	}

	return solana.NewInstructionError(index, errors.New(string(solana.InstructionErrorGenericError)))
}
