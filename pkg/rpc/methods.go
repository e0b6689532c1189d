package rpc

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/mr-tron/base58"

	"github.com/code-payments/soltips-server/pkg/ledger"
	"github.com/code-payments/soltips-server/pkg/solana"
)

// Blockhashes are not checked by the ledger, so the advertised validity
// window is nominal.
const blockhashValidity = 150

func (s *Server) getHealth(_ context.Context, _ []json.RawMessage) (interface{}, *Error) {
	return "ok", nil
}

func (s *Server) getSlot(_ context.Context, _ []json.RawMessage) (interface{}, *Error) {
	return s.executor.Slot(), nil
}

func (s *Server) getLatestBlockhash(_ context.Context, _ []json.RawMessage) (interface{}, *Error) {
	slot := s.executor.Slot()

	var seed [8]byte
	binary.LittleEndian.PutUint64(seed[:], slot)
	blockhash := sha256.Sum256(seed[:])

	return &contextResult{
		Context: responseContext{Slot: slot},
		Value: &blockhashResult{
			Blockhash:            base58.Encode(blockhash[:]),
			LastValidBlockHeight: slot + blockhashValidity,
		},
	}, nil
}

func (s *Server) getAccountInfo(ctx context.Context, params []json.RawMessage) (interface{}, *Error) {
	var address string
	if err := requireParam(params, 0, &address, "address"); err != nil {
		return nil, err
	}

	var config accountConfig
	if err := optionalParam(params, 1, &config); err != nil {
		return nil, err
	}
	if err := validateEncoding(config.Encoding); err != nil {
		return nil, err
	}

	key, rpcErr := decodeAddress(address)
	if rpcErr != nil {
		return nil, rpcErr
	}

	account, rpcErr := s.getAccount(ctx, key)
	if rpcErr != nil {
		return nil, rpcErr
	}

	return &contextResult{
		Context: responseContext{Slot: s.executor.Slot()},
		Value:   toAccountInfo(account, config.Encoding),
	}, nil
}

func (s *Server) getMultipleAccounts(ctx context.Context, params []json.RawMessage) (interface{}, *Error) {
	var addresses []string
	if err := requireParam(params, 0, &addresses, "addresses"); err != nil {
		return nil, err
	}
	if uint64(len(addresses)) > s.conf.maxMultipleAccounts.Get(ctx) {
		return nil, invalidParams(fmt.Sprintf("Too many inputs provided; max %d", s.conf.maxMultipleAccounts.Get(ctx)))
	}

	var config accountConfig
	if err := optionalParam(params, 1, &config); err != nil {
		return nil, err
	}
	if err := validateEncoding(config.Encoding); err != nil {
		return nil, err
	}

	values := make([]*accountInfo, len(addresses))
	for i, address := range addresses {
		key, rpcErr := decodeAddress(address)
		if rpcErr != nil {
			return nil, rpcErr
		}

		account, rpcErr := s.getAccount(ctx, key)
		if rpcErr != nil {
			return nil, rpcErr
		}
		values[i] = toAccountInfo(account, config.Encoding)
	}

	return &contextResult{
		Context: responseContext{Slot: s.executor.Slot()},
		Value:   values,
	}, nil
}

func (s *Server) getProgramAccounts(ctx context.Context, params []json.RawMessage) (interface{}, *Error) {
	var program string
	if err := requireParam(params, 0, &program, "program"); err != nil {
		return nil, err
	}

	var config programAccountsConfig
	if err := optionalParam(params, 1, &config); err != nil {
		return nil, err
	}
	if err := validateEncoding(config.Encoding); err != nil {
		return nil, err
	}

	key, rpcErr := decodeAddress(program)
	if rpcErr != nil {
		return nil, rpcErr
	}

	filters, rpcErr := decodeFilters(config.Filters)
	if rpcErr != nil {
		return nil, rpcErr
	}

	// A memcmp at offset zero is a discriminator match, which the store can
	// evaluate directly. Everything else is applied to the results.
	var prefix []byte
	for _, f := range filters {
		if f.memcmp != nil && f.offset == 0 {
			prefix = f.memcmp
			break
		}
	}

	accounts, err := s.executor.Store().GetAllByOwner(ctx, key, prefix)
	if err != nil {
		return nil, internalError(err)
	}

	values := make([]*keyedAccountInfo, 0, len(accounts))
	for _, account := range accounts {
		if !matchesFilters(account, filters) {
			continue
		}

		values = append(values, &keyedAccountInfo{
			Pubkey:  account.AddressString(),
			Account: toAccountInfo(account, config.Encoding),
		})
	}

	if config.WithContext {
		return &contextResult{
			Context: responseContext{Slot: s.executor.Slot()},
			Value:   values,
		}, nil
	}
	return values, nil
}

func (s *Server) getBalance(ctx context.Context, params []json.RawMessage) (interface{}, *Error) {
	var address string
	if err := requireParam(params, 0, &address, "address"); err != nil {
		return nil, err
	}

	key, rpcErr := decodeAddress(address)
	if rpcErr != nil {
		return nil, rpcErr
	}

	account, rpcErr := s.getAccount(ctx, key)
	if rpcErr != nil {
		return nil, rpcErr
	}

	var lamports uint64
	if account != nil {
		lamports = account.Lamports
	}

	return &contextResult{
		Context: responseContext{Slot: s.executor.Slot()},
		Value:   lamports,
	}, nil
}

func (s *Server) getMinimumBalanceForRentExemption(ctx context.Context, params []json.RawMessage) (interface{}, *Error) {
	var size uint64
	if err := requireParam(params, 0, &size, "data size"); err != nil {
		return nil, err
	}

	return s.executor.Rent(ctx).MinimumBalance(int(size)), nil
}

func (s *Server) sendTransaction(ctx context.Context, params []json.RawMessage) (interface{}, *Error) {
	tx, rpcErr := decodeTransactionParams(params)
	if rpcErr != nil {
		return nil, rpcErr
	}

	res, err := s.executor.Execute(ctx, tx)
	if err != nil {
		return nil, internalError(err)
	}

	if res.Err != nil {
		return nil, &Error{
			Code:    codeTransactionFailed,
			Message: fmt.Sprintf("Transaction simulation failed: %s", res.Err.Error()),
			Data: map[string]interface{}{
				"err":  res.Err.Raw(),
				"logs": res.Logs,
			},
		}
	}

	return base58.Encode(res.Signature[:]), nil
}

func (s *Server) simulateTransaction(ctx context.Context, params []json.RawMessage) (interface{}, *Error) {
	tx, rpcErr := decodeTransactionParams(params)
	if rpcErr != nil {
		return nil, rpcErr
	}

	res, err := s.executor.Simulate(ctx, tx)
	if err != nil {
		return nil, internalError(err)
	}

	value := &simulationResult{
		Logs: res.Logs,
	}
	if res.Err != nil {
		value.Err = res.Err.Raw()
	}

	return &contextResult{
		Context: responseContext{Slot: res.Slot},
		Value:   value,
	}, nil
}

func (s *Server) requestAirdrop(ctx context.Context, params []json.RawMessage) (interface{}, *Error) {
	var address string
	if err := requireParam(params, 0, &address, "address"); err != nil {
		return nil, err
	}

	var lamports uint64
	if err := requireParam(params, 1, &lamports, "lamports"); err != nil {
		return nil, err
	}

	if lamports == 0 {
		return nil, invalidParams("lamports must be positive")
	}

	key, rpcErr := decodeAddress(address)
	if rpcErr != nil {
		return nil, rpcErr
	}

	sig, err := s.executor.Airdrop(ctx, key, lamports)
	switch err {
	case nil:
	case ledger.ErrAirdropsDisabled:
		return nil, newError(codeInvalidRequest, err.Error())
	case ledger.ErrAirdropLimitExceeded:
		return nil, invalidParams(err.Error())
	default:
		return nil, internalError(err)
	}

	return base58.Encode(sig[:]), nil
}

func (s *Server) getAccount(ctx context.Context, address ed25519.PublicKey) (*ledger.Account, *Error) {
	account, err := s.executor.Store().Get(ctx, address)
	if err == ledger.ErrAccountNotFound {
		return nil, nil
	} else if err != nil {
		return nil, internalError(err)
	}
	return account, nil
}

type filter struct {
	offset   uint
	memcmp   []byte
	dataSize *int
}

func decodeFilters(raw []programAccountsFilter) ([]filter, *Error) {
	filters := make([]filter, 0, len(raw))
	for _, f := range raw {
		switch {
		case f.Memcmp != nil:
			decoded, err := base58.Decode(f.Memcmp.Bytes)
			if err != nil {
				return nil, invalidParams("invalid memcmp bytes")
			}
			filters = append(filters, filter{offset: f.Memcmp.Offset, memcmp: decoded})
		case f.DataSize != nil:
			filters = append(filters, filter{dataSize: f.DataSize})
		default:
			return nil, invalidParams("unsupported filter")
		}
	}
	return filters, nil
}

func matchesFilters(account *ledger.Account, filters []filter) bool {
	for _, f := range filters {
		if f.dataSize != nil && len(account.Data) != *f.dataSize {
			return false
		}

		if f.memcmp != nil {
			end := int(f.offset) + len(f.memcmp)
			if end > len(account.Data) || !bytes.Equal(account.Data[f.offset:end], f.memcmp) {
				return false
			}
		}
	}
	return true
}

func decodeTransactionParams(params []json.RawMessage) (solana.Transaction, *Error) {
	var tx solana.Transaction

	var encoded string
	if err := requireParam(params, 0, &encoded, "transaction"); err != nil {
		return tx, err
	}

	var config transactionConfig
	if err := optionalParam(params, 1, &config); err != nil {
		return tx, err
	}

	var raw []byte
	var err error
	switch config.Encoding {
	case "", encodingBase58:
		raw, err = base58.Decode(encoded)
	case encodingBase64:
		raw, err = base64.StdEncoding.DecodeString(encoded)
	default:
		return tx, invalidParams("unsupported encoding")
	}
	if err != nil {
		return tx, invalidParams("invalid transaction encoding")
	}

	if len(raw) > solana.MaxTransactionSize {
		return tx, invalidParams(fmt.Sprintf("transaction too large: %d bytes (max %d)", len(raw), solana.MaxTransactionSize))
	}

	if err := tx.Unmarshal(raw); err != nil {
		return tx, invalidParams("failed to deserialize transaction")
	}
	return tx, nil
}

func decodeAddress(value string) (ed25519.PublicKey, *Error) {
	decoded, err := base58.Decode(value)
	if err != nil || len(decoded) != ed25519.PublicKeySize {
		return nil, invalidParams("Invalid param: Invalid")
	}
	return decoded, nil
}

func validateEncoding(encoding string) *Error {
	switch encoding {
	case "", encodingBase64, encodingBase58:
		return nil
	}
	return invalidParams("unsupported encoding")
}

func requireParam(params []json.RawMessage, index int, dst interface{}, name string) *Error {
	if len(params) <= index {
		return invalidParams(fmt.Sprintf("%s parameter required", name))
	}
	if err := json.Unmarshal(params[index], dst); err != nil {
		return invalidParams(fmt.Sprintf("invalid %s parameter", name))
	}
	return nil
}

func optionalParam(params []json.RawMessage, index int, dst interface{}) *Error {
	if len(params) <= index || string(params[index]) == "null" {
		return nil
	}
	if err := json.Unmarshal(params[index], dst); err != nil {
		return invalidParams("invalid config parameter")
	}
	return nil
}

func internalError(err error) *Error {
	return &Error{
		Code:    codeInternalError,
		Message: err.Error(),
	}
}
