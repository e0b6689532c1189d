package crowdfunding

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/code-payments/soltips-server/pkg/solana"
)

// ErrorCode is a program error surfaced to clients as
// {"InstructionError":[index,{"Custom":code}]}. Codes start at 6000 to match
// the custom error range used by Anchor programs.
type ErrorCode uint32

const (
	ErrorCodeUsernameAlreadyExists ErrorCode = iota + 6000
	ErrorCodeInvalidAmount
	ErrorCodeInvalidSigner
	ErrorCodeInsufficientFundsAfterWithdraw
	ErrorCodeInsufficientFunds
	ErrorCodeArithmeticOverflow
	ErrorCodeAddressMismatch
	ErrorCodeInvalidFieldLength
	ErrorCodeCreatorAlreadyExists
)

var errorCodeNames = map[ErrorCode]string{
	ErrorCodeUsernameAlreadyExists:          "UsernameAlreadyExists",
	ErrorCodeInvalidAmount:                  "InvalidAmount",
	ErrorCodeInvalidSigner:                  "InvalidSigner",
	ErrorCodeInsufficientFundsAfterWithdraw: "InsufficientFundsAfterWithdraw",
	ErrorCodeInsufficientFunds:              "InsufficientFunds",
	ErrorCodeArithmeticOverflow:             "ArithmeticOverflow",
	ErrorCodeAddressMismatch:                "AddressMismatch",
	ErrorCodeInvalidFieldLength:             "InvalidFieldLength",
	ErrorCodeCreatorAlreadyExists:           "CreatorAlreadyExists",
}

var errorCodeMessages = map[ErrorCode]string{
	ErrorCodeUsernameAlreadyExists:          "Username already exists",
	ErrorCodeInvalidAmount:                  "The provided amount must be greater than zero",
	ErrorCodeInvalidSigner:                  "Signer does not have access to call this instruction.",
	ErrorCodeInsufficientFundsAfterWithdraw: "Insufficient funds after withdrawal",
	ErrorCodeInsufficientFunds:              "Insufficient funds to cover the transfer",
	ErrorCodeArithmeticOverflow:             "Arithmetic overflow",
	ErrorCodeAddressMismatch:                "Account does not match its derived address",
	ErrorCodeInvalidFieldLength:             "Field length is out of bounds",
	ErrorCodeCreatorAlreadyExists:           "Creator already registered for this owner",
}

func (e ErrorCode) Error() string {
	if msg, ok := errorCodeMessages[e]; ok {
		return msg
	}
	return fmt.Sprintf("unknown crowdfunding error: %d", uint32(e))
}

// Name is the identifier clients use to match the error.
func (e ErrorCode) Name() string {
	if name, ok := errorCodeNames[e]; ok {
		return name
	}
	return "Unknown"
}

// CustomErrorCode is used by the ledger to encode the error as a custom
// instruction error.
func (e ErrorCode) CustomErrorCode() uint32 {
	return uint32(e)
}

// GetErrorCode extracts a program error code from err, which may be the code
// itself, a wrapped code, or an instruction/transaction error carrying a
// custom error returned by the program.
func GetErrorCode(err error) (ErrorCode, bool) {
	if err == nil {
		return 0, false
	}

	var code ErrorCode
	if errors.As(err, &code) {
		return code, isKnownErrorCode(code)
	}

	var custom solana.CustomError
	if errors.As(err, &custom) {
		code = ErrorCode(custom)
		return code, isKnownErrorCode(code)
	}

	var instructionErr solana.InstructionError
	if errors.As(err, &instructionErr) && instructionErr.CustomError() != nil {
		code = ErrorCode(*instructionErr.CustomError())
		return code, isKnownErrorCode(code)
	}

	var instructionErrPtr *solana.InstructionError
	if errors.As(err, &instructionErrPtr) && instructionErrPtr.CustomError() != nil {
		code = ErrorCode(*instructionErrPtr.CustomError())
		return code, isKnownErrorCode(code)
	}

	var txErr *solana.TransactionError
	if errors.As(err, &txErr) && txErr.InstructionError() != nil && txErr.InstructionError().CustomError() != nil {
		code = ErrorCode(*txErr.InstructionError().CustomError())
		return code, isKnownErrorCode(code)
	}

	return 0, false
}

// IsErrorCode reports whether err carries the given program error code.
func IsErrorCode(err error, code ErrorCode) bool {
	actual, ok := GetErrorCode(err)
	return ok && actual == code
}

func isKnownErrorCode(code ErrorCode) bool {
	_, ok := errorCodeNames[code]
	return ok
}
