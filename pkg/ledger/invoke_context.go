package ledger

import (
	"bytes"
	"crypto/ed25519"
	"fmt"
	"math"
	"time"

	"github.com/mr-tron/base58"

	"github.com/code-payments/soltips-server/pkg/solana"
)

// InvokeContext is the working set of a single transaction. Programs read
// accounts through it and may only change them through its methods, which
// enforce signer, writable and ownership rules. Nothing is persisted until
// every instruction in the transaction has succeeded.
type InvokeContext struct {
	message *solana.Message
	rent    Rent
	now     time.Time
	slot    uint64

	program ed25519.PublicKey

	loaded   map[string]*Account
	accounts map[string]*Account

	logs []string
}

func newInvokeContext(message *solana.Message, loaded []*Account, rent Rent, now time.Time, slot uint64) *InvokeContext {
	ic := &InvokeContext{
		message:  message,
		rent:     rent,
		now:      now,
		slot:     slot,
		loaded:   make(map[string]*Account),
		accounts: make(map[string]*Account),
	}

	for _, account := range loaded {
		original := account.Clone()
		working := account.Clone()
		ic.loaded[string(account.Address)] = &original
		ic.accounts[string(account.Address)] = &working
	}

	return ic
}

// ProgramID is the program currently being invoked.
func (ic *InvokeContext) ProgramID() ed25519.PublicKey {
	return ic.program
}

// Now is the block time the transaction executes at.
func (ic *InvokeContext) Now() time.Time {
	return ic.now
}

func (ic *InvokeContext) Slot() uint64 {
	return ic.slot
}

func (ic *InvokeContext) Rent() Rent {
	return ic.rent
}

// Log appends a program log line to the transaction result.
func (ic *InvokeContext) Log(format string, args ...interface{}) {
	ic.logs = append(ic.logs, "Program log: "+fmt.Sprintf(format, args...))
}

func (ic *InvokeContext) IsSigner(address ed25519.PublicKey) bool {
	return ic.message.IsSigner(ic.indexOf(address))
}

func (ic *InvokeContext) IsWritable(address ed25519.PublicKey) bool {
	return ic.message.IsWritable(ic.indexOf(address))
}

// Account returns a copy of the current state of an account referenced by
// the transaction. Accounts that were never created are returned empty and
// owned by the system program.
func (ic *InvokeContext) Account(address ed25519.PublicKey) (*Account, error) {
	account, err := ic.get(address)
	if err != nil {
		return nil, err
	}

	cloned := account.Clone()
	return &cloned, nil
}

// Transfer moves lamports between two writable accounts. The source must
// either be a wallet that signed the transaction, or be owned by the invoking
// program.
func (ic *InvokeContext) Transfer(from, to ed25519.PublicKey, lamports uint64) error {
	source, err := ic.getWritable(from)
	if err != nil {
		return err
	}

	destination, err := ic.getWritable(to)
	if err != nil {
		return err
	}

	if source.IsSystemOwned() {
		if !ic.IsSigner(from) {
			return ErrMissingRequiredSignature
		}
	} else if !bytes.Equal(source.Owner, ic.program) {
		return ErrExternalAccountModified
	}

	if source.Lamports < lamports {
		return ErrInsufficientFunds
	}
	if bytes.Equal(from, to) {
		return nil
	}
	if destination.Lamports > math.MaxUint64-lamports {
		return ErrLamportOverflow
	}

	source.Lamports -= lamports
	destination.Lamports += lamports
	return nil
}

// CreateAccount allocates space bytes at address, assigns it to owner and
// funds it up to the rent exempt minimum from payer.
func (ic *InvokeContext) CreateAccount(payer, address, owner ed25519.PublicKey, space int) error {
	if !ic.IsSigner(payer) {
		return ErrMissingRequiredSignature
	}

	target, err := ic.getWritable(address)
	if err != nil {
		return err
	}

	if !bytes.Equal(ic.program, SystemProgramID) && !bytes.Equal(owner, ic.program) {
		return ErrExternalAccountModified
	}

	if target.IsInUse() {
		return ErrAccountAlreadyInUse
	}

	required := ic.rent.MinimumBalance(space)
	if target.Lamports < required {
		// The transfer is made on behalf of the system program, since the
		// payer is a wallet.
		invoker := ic.program
		ic.program = SystemProgramID
		err = ic.Transfer(payer, address, required-target.Lamports)
		ic.program = invoker
		if err != nil {
			return err
		}
	}

	target.Owner = owner
	target.Data = make([]byte, space)
	return nil
}

// Debit removes lamports from an account owned by the invoking program. The
// caller is responsible for crediting them elsewhere.
func (ic *InvokeContext) Debit(address ed25519.PublicKey, lamports uint64) error {
	account, err := ic.getOwned(address)
	if err != nil {
		return err
	}

	if account.Lamports < lamports {
		return ErrInsufficientFunds
	}

	account.Lamports -= lamports
	return nil
}

// Credit adds lamports to any writable account.
func (ic *InvokeContext) Credit(address ed25519.PublicKey, lamports uint64) error {
	account, err := ic.getWritable(address)
	if err != nil {
		return err
	}

	if account.Lamports > math.MaxUint64-lamports {
		return ErrLamportOverflow
	}

	account.Lamports += lamports
	return nil
}

// SetData overwrites the data of an account owned by the invoking program.
// The data length is fixed at allocation.
func (ic *InvokeContext) SetData(address ed25519.PublicKey, data []byte) error {
	account, err := ic.getOwned(address)
	if err != nil {
		return err
	}

	if len(data) != len(account.Data) {
		return ErrAccountDataSizeChanged
	}

	copy(account.Data, data)
	return nil
}

func (ic *InvokeContext) get(address ed25519.PublicKey) (*Account, error) {
	account, ok := ic.accounts[string(address)]
	if !ok {
		return nil, ErrAccountNotReferenced
	}
	return account, nil
}

func (ic *InvokeContext) getWritable(address ed25519.PublicKey) (*Account, error) {
	account, err := ic.get(address)
	if err != nil {
		return nil, err
	}

	if !ic.IsWritable(address) {
		return nil, ErrReadonlyAccountModified
	}
	return account, nil
}

func (ic *InvokeContext) getOwned(address ed25519.PublicKey) (*Account, error) {
	account, err := ic.getWritable(address)
	if err != nil {
		return nil, err
	}

	if !bytes.Equal(account.Owner, ic.program) {
		return nil, ErrExternalAccountModified
	}
	return account, nil
}

func (ic *InvokeContext) indexOf(address ed25519.PublicKey) int {
	for i, key := range ic.message.Accounts {
		if bytes.Equal(key, address) {
			return i
		}
	}
	return -1
}

func (ic *InvokeContext) totalLamports() (uint64, bool) {
	var total uint64
	for _, account := range ic.accounts {
		if total > math.MaxUint64-account.Lamports {
			return 0, false
		}
		total += account.Lamports
	}
	return total, true
}

// dirty returns the accounts whose state differs from what was loaded.
func (ic *InvokeContext) dirty() []*Account {
	var res []*Account
	for _, key := range ic.message.Accounts {
		working, ok := ic.accounts[string(key)]
		if !ok {
			continue
		}
		original := ic.loaded[string(key)]

		if working.Lamports == original.Lamports &&
			bytes.Equal(working.Owner, original.Owner) &&
			bytes.Equal(working.Data, original.Data) {
			continue
		}

		res = append(res, working)
	}
	return res
}

func (ic *InvokeContext) logInvoke(program ed25519.PublicKey) {
	ic.logs = append(ic.logs, fmt.Sprintf("Program %s invoke [1]", base58.Encode(program)))
}

func (ic *InvokeContext) logResult(program ed25519.PublicKey, err error) {
	if err != nil {
		ic.logs = append(ic.logs, fmt.Sprintf("Program %s failed: %s", base58.Encode(program), err.Error()))
		return
	}
	ic.logs = append(ic.logs, fmt.Sprintf("Program %s success", base58.Encode(program)))
}
