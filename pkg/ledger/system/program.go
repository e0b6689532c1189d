package system

import (
	"context"
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/code-payments/soltips-server/pkg/ledger"
	"github.com/code-payments/soltips-server/pkg/solana"
	solana_system "github.com/code-payments/soltips-server/pkg/solana/system"
)

// MaxPermittedDataLength is the largest allocation a single account can hold.
const MaxPermittedDataLength = 10 * 1024 * 1024

type program struct{}

// New returns the built-in system program, which supports transfers between
// wallets and account creation.
func New() ledger.Program {
	return &program{}
}

// ProgramID implements ledger.Program.ProgramID
func (p *program) ProgramID() ed25519.PublicKey {
	return ledger.SystemProgramID
}

// Process implements ledger.Program.Process
func (p *program) Process(_ context.Context, ic *ledger.InvokeContext, instruction solana.Instruction) error {
	switch {
	case solana_system.IsTransfer(instruction.Data):
		transfer, err := solana_system.DecodeTransfer(instruction)
		if err != nil {
			return errors.Wrap(ledger.ErrInvalidInstructionData, err.Error())
		}
		return p.transfer(ic, transfer)
	case solana_system.IsCreateAccount(instruction.Data):
		create, err := solana_system.DecodeCreateAccount(instruction)
		if err != nil {
			return errors.Wrap(ledger.ErrInvalidInstructionData, err.Error())
		}
		return p.createAccount(ic, create)
	default:
		return ledger.ErrInvalidInstructionData
	}
}

func (p *program) transfer(ic *ledger.InvokeContext, transfer *solana_system.DecompiledTransfer) error {
	from, err := ic.Account(transfer.From)
	if err != nil {
		return err
	}
	if len(from.Data) > 0 {
		return errors.Wrap(ledger.ErrInvalidAccountData, "from must not carry data")
	}

	ic.Log("Transfer: %d lamports", transfer.Lamports)
	return ic.Transfer(transfer.From, transfer.To, transfer.Lamports)
}

func (p *program) createAccount(ic *ledger.InvokeContext, create *solana_system.DecompiledCreateAccount) error {
	if !ic.IsSigner(create.Address) {
		return ledger.ErrMissingRequiredSignature
	}

	if create.Size > MaxPermittedDataLength {
		return errors.Wrap(ledger.ErrInvalidAccountData, "requested allocation too large")
	}

	target, err := ic.Account(create.Address)
	if err != nil {
		return err
	}
	if target.Lamports > 0 || target.IsInUse() {
		return ledger.ErrAccountAlreadyInUse
	}

	minimum := ic.Rent().MinimumBalance(int(create.Size))
	if create.Lamports < minimum {
		return ledger.ErrInsufficientFunds
	}

	if err := ic.CreateAccount(create.Funder, create.Address, create.Owner, int(create.Size)); err != nil {
		return err
	}
	return ic.Transfer(create.Funder, create.Address, create.Lamports-minimum)
}
