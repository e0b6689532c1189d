package ledger

import (
	"context"
	"crypto/ed25519"

	"github.com/code-payments/soltips-server/pkg/solana"
	"github.com/code-payments/soltips-server/pkg/solana/system"
)

// SystemProgramID owns every wallet account until it is assigned to a program.
var SystemProgramID = system.SystemAccount

// Program processes instructions addressed to its program id.
type Program interface {
	ProgramID() ed25519.PublicKey

	// Process executes a single instruction. Any returned error aborts the
	// whole transaction.
	Process(ctx context.Context, ic *InvokeContext, instruction solana.Instruction) error
}
