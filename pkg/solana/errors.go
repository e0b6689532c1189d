package solana

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/pkg/errors"
	"github.com/ybbus/jsonrpc"
)

// TransactionErrorKey is the name of a transaction level error as it appears
// in RPC "err" fields.
type TransactionErrorKey string

const (
	TransactionErrorAccountInUse           TransactionErrorKey = "AccountInUse"
	TransactionErrorAccountLoadedTwice     TransactionErrorKey = "AccountLoadedTwice"
	TransactionErrorAccountNotFound        TransactionErrorKey = "AccountNotFound"
	TransactionErrorProgramAccountNotFound TransactionErrorKey = "ProgramAccountNotFound"
	TransactionErrorDuplicateSignature     TransactionErrorKey = "DuplicateSignature"
	TransactionErrorInstructionError       TransactionErrorKey = "InstructionError"
	TransactionErrorInvalidAccountIndex    TransactionErrorKey = "InvalidAccountIndex"
	TransactionErrorSignatureFailure       TransactionErrorKey = "SignatureFailure"
	TransactionErrorSanitizeFailure        TransactionErrorKey = "SanitizeFailure"
	TransactionErrorInsufficientFundsRent  TransactionErrorKey = "InsufficientFundsForRent"
)

// InstructionErrorKey is the name of a builtin instruction error.
type InstructionErrorKey string

const (
	InstructionErrorGenericError                InstructionErrorKey = "GenericError"
	InstructionErrorInvalidArgument             InstructionErrorKey = "InvalidArgument"
	InstructionErrorInvalidInstructionData      InstructionErrorKey = "InvalidInstructionData"
	InstructionErrorInvalidAccountData          InstructionErrorKey = "InvalidAccountData"
	InstructionErrorInsufficientFunds           InstructionErrorKey = "InsufficientFunds"
	InstructionErrorMissingRequiredSignature    InstructionErrorKey = "MissingRequiredSignature"
	InstructionErrorUnbalancedInstruction       InstructionErrorKey = "UnbalancedInstruction"
	InstructionErrorExternalAccountDataModified InstructionErrorKey = "ExternalAccountDataModified"
	InstructionErrorReadonlyDataModified        InstructionErrorKey = "ReadonlyDataModified"
	InstructionErrorNotEnoughAccountKeys        InstructionErrorKey = "NotEnoughAccountKeys"
	InstructionErrorCustom                      InstructionErrorKey = "Custom"
	InstructionErrorUnsupportedProgramID        InstructionErrorKey = "UnsupportedProgramId"
	InstructionErrorAccountAlreadyInUse         InstructionErrorKey = "AccountAlreadyInUse"
	InstructionErrorArithmeticOverflow          InstructionErrorKey = "ArithmeticOverflow"
)

// CustomError is a program specific error code.
type CustomError int

func (c CustomError) Error() string {
	return fmt.Sprintf("custom program error: %x", int(c))
}

// InstructionError is the failure of the instruction at Index. Err is either a
// CustomError or an error whose text is an InstructionErrorKey.
type InstructionError struct {
	Index int
	Err   error
}

func NewInstructionError(index int, err error) *InstructionError {
	return &InstructionError{Index: index, Err: err}
}

func (i InstructionError) Error() string {
	return fmt.Sprintf("Error processing Instruction %d: %v", i.Index, i.Err)
}

func (i InstructionError) ErrorKey() InstructionErrorKey {
	switch i.Err.(type) {
	case nil:
		return ""
	case CustomError:
		return InstructionErrorCustom
	default:
		return InstructionErrorKey(i.Err.Error())
	}
}

func (i InstructionError) CustomError() *CustomError {
	if ce, ok := i.Err.(CustomError); ok {
		return &ce
	}
	return nil
}

// raw returns the JSON shaped [index, "Key"] or [index, {"Custom": code}]
// tuple. Numbers are float64 to match what encoding/json decodes into.
func (i InstructionError) raw() []interface{} {
	if ce, ok := i.Err.(CustomError); ok {
		return []interface{}{
			float64(i.Index),
			map[string]interface{}{string(InstructionErrorCustom): float64(ce)},
		}
	}
	return []interface{}{float64(i.Index), string(i.ErrorKey())}
}

// TransactionError is a failed transaction's error, retaining the JSON
// compatible form served by RPC.
type TransactionError struct {
	key              TransactionErrorKey
	instructionError *InstructionError
	raw              interface{}
}

func NewTransactionError(key TransactionErrorKey) *TransactionError {
	return &TransactionError{key: key, raw: string(key)}
}

// TransactionErrorFromInstructionError wraps an instruction failure as an
// InstructionError transaction error.
func TransactionErrorFromInstructionError(err *InstructionError) (*TransactionError, error) {
	if err == nil || err.Err == nil {
		return nil, errors.New("instruction error is required")
	}

	return &TransactionError{
		key:              TransactionErrorInstructionError,
		instructionError: err,
		raw: map[string]interface{}{
			string(TransactionErrorInstructionError): err.raw(),
		},
	}, nil
}

// ParseRPCError extracts the transaction error carried in the data of a
// simulation or preflight RPC error, if any.
func ParseRPCError(err *jsonrpc.RPCError) (*TransactionError, error) {
	if err == nil {
		return nil, nil
	}

	data, ok := err.Data.(map[string]interface{})
	if !ok {
		return nil, errors.New("expected map type")
	}

	txErr, ok := data["err"]
	if !ok || txErr == nil {
		return nil, nil
	}
	return ParseTransactionError(txErr)
}

// ParseTransactionError parses the decoded JSON value of an "err" field.
func ParseTransactionError(raw interface{}) (*TransactionError, error) {
	switch t := raw.(type) {
	case nil:
		return nil, nil
	case string:
		return &TransactionError{key: TransactionErrorKey(t), raw: raw}, nil
	case map[string]interface{}:
		key, value, err := singleEntry(t)
		if err != nil {
			return &TransactionError{key: "unhandled transaction error", raw: raw}, errors.Wrap(err, "invalid transaction error")
		}

		if key != string(TransactionErrorInstructionError) {
			return &TransactionError{key: TransactionErrorKey(key), raw: raw}, nil
		}

		instructionErr, err := parseInstructionError(value)
		if err != nil {
			return &TransactionError{key: "unhandled transaction error", raw: raw}, errors.Wrap(err, "failed to parse instruction error")
		}

		return &TransactionError{
			key:              TransactionErrorInstructionError,
			instructionError: instructionErr,
			raw:              raw,
		}, nil
	default:
		return nil, errors.Errorf("unhandled error type %T", raw)
	}
}

func (t TransactionError) Error() string {
	if t.instructionError != nil {
		return t.instructionError.Error()
	}
	return string(t.key)
}

func (t TransactionError) ErrorKey() TransactionErrorKey {
	return t.key
}

func (t TransactionError) InstructionError() *InstructionError {
	return t.instructionError
}

// Raw returns the JSON compatible value served in RPC error payloads and
// transaction status "err" fields.
func (t TransactionError) Raw() interface{} {
	return t.raw
}

func parseInstructionError(v interface{}) (*InstructionError, error) {
	tuple, ok := v.([]interface{})
	if !ok {
		return nil, errors.New("unexpected instruction error format")
	}
	if len(tuple) != 2 {
		return nil, errors.Errorf("unexpected InstructionError tuple size: %d", len(tuple))
	}

	index, err := parseJSONNumber(tuple[0])
	if err != nil {
		return nil, err
	}

	result := &InstructionError{Index: index}
	switch detail := tuple[1].(type) {
	case string:
		result.Err = errors.New(detail)
	case map[string]interface{}:
		key, value, err := singleEntry(detail)
		if err != nil {
			return nil, err
		}

		if key != string(InstructionErrorCustom) {
			result.Err = errors.New(key)
			break
		}

		code, err := parseJSONNumber(value)
		if err != nil {
			return nil, errors.Wrap(err, "invalid custom error code")
		}
		result.Err = CustomError(code)
	default:
		return nil, errors.Errorf("unhandled instruction error detail %T", detail)
	}

	return result, nil
}

func singleEntry(m map[string]interface{}) (string, interface{}, error) {
	if len(m) != 1 {
		return "", nil, errors.Errorf("expected a single entry, got %d", len(m))
	}
	for k, v := range m {
		return k, v, nil
	}
	return "", nil, nil
}

func parseJSONNumber(v interface{}) (int, error) {
	switch n := v.(type) {
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, errors.Errorf("non int64 value: %v", v)
		}
		return int(i), nil
	case string:
		i, err := strconv.ParseInt(n, 10, 64)
		if err != nil {
			return 0, errors.Errorf("non numeric value: %v", v)
		}
		return int(i), nil
	case float64:
		return int(n), nil
	default:
		return 0, errors.Errorf("non numeric value: %v", v)
	}
}
