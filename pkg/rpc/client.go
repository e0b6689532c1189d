package rpc

import (
	"crypto/ed25519"
	"encoding/base64"
	"time"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/ybbus/jsonrpc"

	"github.com/code-payments/soltips-server/pkg/retry"
	"github.com/code-payments/soltips-server/pkg/retry/backoff"
	"github.com/code-payments/soltips-server/pkg/solana"
)

var (
	ErrNoAccountInfo = errors.New("no account info")
)

// AccountInfo is an account as returned by the account query methods.
type AccountInfo struct {
	Address    ed25519.PublicKey
	Lamports   uint64
	Owner      ed25519.PublicKey
	Data       []byte
	Executable bool
}

// SimulationResult is the outcome of a simulated transaction.
type SimulationResult struct {
	Slot uint64
	Err  *solana.TransactionError
	Logs []string
}

// Client provides an interaction with the JSON-RPC API served by Server, or
// any Solana compatible RPC node.
type Client interface {
	GetHealth() error
	GetSlot() (uint64, error)
	GetLatestBlockhash() (solana.Blockhash, error)
	GetAccountInfo(ed25519.PublicKey) (*AccountInfo, error)
	GetMultipleAccounts(...ed25519.PublicKey) ([]*AccountInfo, error)
	GetProgramAccounts(program ed25519.PublicKey, discriminator []byte) ([]*AccountInfo, error)
	GetBalance(ed25519.PublicKey) (uint64, error)
	GetMinimumBalanceForRentExemption(size uint64) (uint64, error)
	RequestAirdrop(ed25519.PublicKey, uint64) (solana.Signature, error)
	SimulateTransaction(solana.Transaction) (*SimulationResult, error)
	SubmitTransaction(solana.Transaction) (solana.Signature, error)
}

var (
	errRateLimited  = errors.New("rate limited")
	errServiceError = errors.New("service error")
)

type rawAccountInfo struct {
	Lamports   uint64   `json:"lamports"`
	Owner      string   `json:"owner"`
	Data       []string `json:"data"`
	Executable bool     `json:"executable"`
}

type client struct {
	log     *logrus.Entry
	client  jsonrpc.RPCClient
	retrier retry.Retrier
}

// NewClient returns a client using the specified endpoint.
func NewClient(endpoint string) Client {
	return NewClientWithRPCOptions(endpoint, nil)
}

// NewClientWithRPCOptions returns a client configured with the specified RPC
// options.
func NewClientWithRPCOptions(endpoint string, opts *jsonrpc.RPCClientOpts) Client {
	return &client{
		log:    logrus.StandardLogger().WithField("type", "rpc/client"),
		client: jsonrpc.NewClientWithOpts(endpoint, opts),
		retrier: retry.NewRetrier(
			retry.RetriableErrors(errRateLimited, errServiceError),
			retry.Limit(3),
			retry.BackoffWithJitter(backoff.BinaryExponential(time.Second), 10*time.Second, 0.1),
		),
	}
}

func (c *client) call(out interface{}, method string, params ...interface{}) error {
	_, err := c.retrier.Retry(func() error {
		err := c.client.CallFor(out, method, params...)
		if err == nil {
			return nil
		}

		return c.handleRpcError(method, err)
	})

	return err
}

func (c *client) handleRpcError(method string, err error) error {
	if httpErr, ok := err.(*jsonrpc.HTTPError); ok {
		if httpErr.Code == 429 {
			c.log.WithField("method", method).Warn("rate limited")
			return errRateLimited
		}
		if httpErr.Code >= 500 {
			return errServiceError
		}
		return err
	}

	rpcErr, ok := err.(*jsonrpc.RPCError)
	if !ok {
		return err
	}
	if rpcErr.Code == codeRateLimited {
		c.log.WithField("method", method).Warn("rate limited")
		return errRateLimited
	}

	return err
}

func (c *client) GetHealth() error {
	var status string
	if err := c.call(&status, "getHealth"); err != nil {
		return errors.Wrap(err, "getHealth() failed to send request")
	}
	if status != "ok" {
		return errors.Errorf("unhealthy: %s", status)
	}
	return nil
}

func (c *client) GetSlot() (slot uint64, err error) {
	if err := c.call(&slot, "getSlot"); err != nil {
		return 0, errors.Wrap(err, "getSlot() failed to send request")
	}

	return slot, nil
}

func (c *client) GetLatestBlockhash() (hash solana.Blockhash, err error) {
	type response struct {
		Value struct {
			Blockhash string `json:"blockhash"`
		} `json:"value"`
	}

	var resp response
	if err := c.call(&resp, "getLatestBlockhash"); err != nil {
		return hash, errors.Wrap(err, "getLatestBlockhash() failed to send request")
	}

	hashBytes, err := base58.Decode(resp.Value.Blockhash)
	if err != nil {
		return hash, errors.Wrap(err, "invalid base58 encoded hash in response")
	}

	copy(hash[:], hashBytes)
	return hash, nil
}

func (c *client) GetAccountInfo(account ed25519.PublicKey) (*AccountInfo, error) {
	type response struct {
		Value *rawAccountInfo `json:"value"`
	}

	var resp response
	if err := c.call(&resp, "getAccountInfo", base58.Encode(account), accountConfig{Encoding: encodingBase64}); err != nil {
		return nil, errors.Wrap(err, "getAccountInfo() failed to send request")
	}

	if resp.Value == nil {
		return nil, ErrNoAccountInfo
	}

	return parseAccountInfo(account, resp.Value)
}

// GetMultipleAccounts returns the accounts in the order requested. Accounts
// that don't exist are returned as nil.
func (c *client) GetMultipleAccounts(accounts ...ed25519.PublicKey) ([]*AccountInfo, error) {
	type response struct {
		Value []*rawAccountInfo `json:"value"`
	}

	addresses := make([]string, len(accounts))
	for i, account := range accounts {
		addresses[i] = base58.Encode(account)
	}

	var resp response
	if err := c.call(&resp, "getMultipleAccounts", addresses, accountConfig{Encoding: encodingBase64}); err != nil {
		return nil, errors.Wrap(err, "getMultipleAccounts() failed to send request")
	}

	if len(resp.Value) != len(accounts) {
		return nil, errors.Errorf("expected %d accounts, got %d", len(accounts), len(resp.Value))
	}

	res := make([]*AccountInfo, len(accounts))
	for i, raw := range resp.Value {
		if raw == nil {
			continue
		}

		info, err := parseAccountInfo(accounts[i], raw)
		if err != nil {
			return nil, err
		}
		res[i] = info
	}
	return res, nil
}

func (c *client) GetProgramAccounts(program ed25519.PublicKey, discriminator []byte) ([]*AccountInfo, error) {
	config := programAccountsConfig{
		Encoding: encodingBase64,
	}
	if len(discriminator) > 0 {
		config.Filters = []programAccountsFilter{
			{
				Memcmp: &memcmpFilter{
					Offset: 0,
					Bytes:  base58.Encode(discriminator),
				},
			},
		}
	}

	var resp []struct {
		Pubkey  string          `json:"pubkey"`
		Account *rawAccountInfo `json:"account"`
	}
	if err := c.call(&resp, "getProgramAccounts", base58.Encode(program), config); err != nil {
		return nil, errors.Wrap(err, "getProgramAccounts() failed to send request")
	}

	res := make([]*AccountInfo, 0, len(resp))
	for _, keyed := range resp {
		address, err := base58.Decode(keyed.Pubkey)
		if err != nil {
			return nil, errors.Wrap(err, "invalid base58 encoded pubkey")
		}

		info, err := parseAccountInfo(address, keyed.Account)
		if err != nil {
			return nil, err
		}
		res = append(res, info)
	}
	return res, nil
}

func (c *client) GetBalance(account ed25519.PublicKey) (uint64, error) {
	var resp struct {
		Value uint64 `json:"value"`
	}
	if err := c.call(&resp, "getBalance", base58.Encode(account), accountConfig{}); err != nil {
		return 0, errors.Wrap(err, "getBalance() failed to send request")
	}

	return resp.Value, nil
}

func (c *client) GetMinimumBalanceForRentExemption(dataSize uint64) (lamports uint64, err error) {
	if err := c.call(&lamports, "getMinimumBalanceForRentExemption", dataSize); err != nil {
		return 0, errors.Wrap(err, "getMinimumBalanceForRentExemption() failed to send request")
	}

	return lamports, nil
}

func (c *client) RequestAirdrop(account ed25519.PublicKey, lamports uint64) (solana.Signature, error) {
	var sigStr string
	if err := c.call(&sigStr, "requestAirdrop", base58.Encode(account), lamports); err != nil {
		return solana.Signature{}, errors.Wrap(err, "requestAirdrop() failed to send request")
	}

	return parseSignature(sigStr)
}

func (c *client) SimulateTransaction(txn solana.Transaction) (*SimulationResult, error) {
	var resp struct {
		Context responseContext `json:"context"`
		Value   struct {
			Err  interface{} `json:"err"`
			Logs []string    `json:"logs"`
		} `json:"value"`
	}

	config := transactionConfig{
		Encoding:  encodingBase64,
		SigVerify: true,
	}
	if err := c.call(&resp, "simulateTransaction", base64.StdEncoding.EncodeToString(txn.Marshal()), config); err != nil {
		return nil, errors.Wrap(err, "simulateTransaction() failed to send request")
	}

	txErr, err := solana.ParseTransactionError(resp.Value.Err)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse transaction error")
	}

	return &SimulationResult{
		Slot: resp.Context.Slot,
		Err:  txErr,
		Logs: resp.Value.Logs,
	}, nil
}

// SubmitTransaction submits txn for execution. If the transaction fails, the
// returned error is a *solana.TransactionError describing the failure.
func (c *client) SubmitTransaction(txn solana.Transaction) (solana.Signature, error) {
	sig := txn.Signatures[0]

	config := transactionConfig{
		Encoding: encodingBase58,
	}

	var sigStr string
	err := c.call(&sigStr, "sendTransaction", base58.Encode(txn.Marshal()), config)
	if err != nil {
		jsonRPCErr, ok := errors.Cause(err).(*jsonrpc.RPCError)
		if !ok {
			return sig, errors.Wrap(err, "sendTransaction() failed to send request")
		}

		txResult, parseErr := solana.ParseRPCError(jsonRPCErr)
		if parseErr != nil || txResult == nil {
			return sig, err
		}
		return sig, txResult
	}

	return sig, nil
}

func parseAccountInfo(address ed25519.PublicKey, raw *rawAccountInfo) (*AccountInfo, error) {
	if raw == nil {
		return nil, ErrNoAccountInfo
	}

	owner, err := base58.Decode(raw.Owner)
	if err != nil {
		return nil, errors.Wrap(err, "invalid base58 encoded owner")
	}

	if len(raw.Data) != 2 {
		return nil, errors.New("unexpected data format")
	}

	var data []byte
	switch raw.Data[1] {
	case encodingBase64:
		data, err = base64.StdEncoding.DecodeString(raw.Data[0])
	case encodingBase58:
		data, err = base58.Decode(raw.Data[0])
	default:
		err = errors.Errorf("unsupported encoding: %s", raw.Data[1])
	}
	if err != nil {
		return nil, errors.Wrap(err, "invalid account data")
	}

	return &AccountInfo{
		Address:    address,
		Lamports:   raw.Lamports,
		Owner:      owner,
		Data:       data,
		Executable: raw.Executable,
	}, nil
}

func parseSignature(value string) (solana.Signature, error) {
	var sig solana.Signature

	sigBytes, err := base58.Decode(value)
	if err != nil {
		return sig, errors.Wrap(err, "invalid signature in response")
	}
	if len(sigBytes) != len(sig) {
		return sig, errors.Errorf("invalid signature length: %d", len(sigBytes))
	}

	copy(sig[:], sigBytes)
	return sig, nil
}
