package rpc

import (
	"encoding/base64"
	"encoding/json"

	"github.com/mr-tron/base58"

	"github.com/code-payments/soltips-server/pkg/ledger"
)

const jsonRPCVersion = "2.0"

// Error codes follow JSON-RPC 2.0, plus the custom server error codes used by
// Solana RPC nodes.
//
// Reference: https://github.com/solana-labs/solana/blob/master/rpc-client-api/src/custom_error.rs
const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeInternalError  = -32603

	codeTransactionFailed = -32002
	codeRateLimited       = 429
)

const (
	encodingBase58 = "base58"
	encodingBase64 = "base64"
)

type request struct {
	JSONRPC string            `json:"jsonrpc"`
	ID      json.RawMessage   `json:"id"`
	Method  string            `json:"method"`
	Params  []json.RawMessage `json:"params"`
}

type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  interface{}     `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// Error is a JSON-RPC error object.
type Error struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func (e *Error) Error() string {
	return e.Message
}

func newError(code int, message string) *Error {
	return &Error{Code: code, Message: message}
}

func invalidParams(message string) *Error {
	return newError(codeInvalidParams, message)
}

type responseContext struct {
	Slot uint64 `json:"slot"`
}

type contextResult struct {
	Context responseContext `json:"context"`
	Value   interface{}     `json:"value"`
}

// accountInfo is the encoded account returned by the account query methods.
type accountInfo struct {
	Lamports   uint64   `json:"lamports"`
	Owner      string   `json:"owner"`
	Data       []string `json:"data"`
	Executable bool     `json:"executable"`
	RentEpoch  uint64   `json:"rentEpoch"`
	Space      int      `json:"space"`
}

func toAccountInfo(account *ledger.Account, encoding string) *accountInfo {
	if account == nil {
		return nil
	}

	var data []string
	switch encoding {
	case encodingBase58:
		data = []string{base58.Encode(account.Data), encodingBase58}
	default:
		data = []string{base64.StdEncoding.EncodeToString(account.Data), encodingBase64}
	}

	return &accountInfo{
		Lamports: account.Lamports,
		Owner:    base58.Encode(account.Owner),
		Data:     data,
		Space:    len(account.Data),
	}
}

type keyedAccountInfo struct {
	Pubkey  string       `json:"pubkey"`
	Account *accountInfo `json:"account"`
}

type accountConfig struct {
	Encoding   string `json:"encoding,omitempty"`
	Commitment string `json:"commitment,omitempty"`
}

type transactionConfig struct {
	Encoding            string `json:"encoding,omitempty"`
	SkipPreflight       bool   `json:"skipPreflight,omitempty"`
	PreflightCommitment string `json:"preflightCommitment,omitempty"`
	SigVerify           bool   `json:"sigVerify,omitempty"`
}

type memcmpFilter struct {
	Offset uint   `json:"offset"`
	Bytes  string `json:"bytes"`
}

type programAccountsFilter struct {
	Memcmp   *memcmpFilter `json:"memcmp,omitempty"`
	DataSize *int          `json:"dataSize,omitempty"`
}

type programAccountsConfig struct {
	Encoding    string                  `json:"encoding,omitempty"`
	Commitment  string                  `json:"commitment,omitempty"`
	Filters     []programAccountsFilter `json:"filters,omitempty"`
	WithContext bool                    `json:"withContext,omitempty"`
}

type simulationResult struct {
	Err  interface{} `json:"err"`
	Logs []string    `json:"logs"`
}

type blockhashResult struct {
	Blockhash            string `json:"blockhash"`
	LastValidBlockHeight uint64 `json:"lastValidBlockHeight"`
}
