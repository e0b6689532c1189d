package crowdfunding

import (
	"context"
	"crypto/ed25519"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/soltips-server/pkg/ledger"
	"github.com/code-payments/soltips-server/pkg/solana"
	"github.com/code-payments/soltips-server/pkg/solana/crowdfunding"
)

type program struct {
	log  *logrus.Entry
	conf *conf
}

// New returns the crowdfunding program, executed by the ledger for every
// instruction addressed to crowdfunding.PROGRAM_ID.
func New(configProvider ConfigProvider) ledger.Program {
	return &program{
		log:  logrus.StandardLogger().WithField("type", "program/crowdfunding"),
		conf: configProvider(),
	}
}

// ProgramID implements ledger.Program.ProgramID
func (p *program) ProgramID() ed25519.PublicKey {
	return crowdfunding.PROGRAM_ID
}

// Process implements ledger.Program.Process
func (p *program) Process(ctx context.Context, ic *ledger.InvokeContext, instruction solana.Instruction) error {
	decoded, err := crowdfunding.DecodeInstruction(instruction)
	if err != nil {
		return errors.Wrap(ledger.ErrInvalidInstructionData, err.Error())
	}

	ic.Log("Instruction: %s", decoded.Type())

	switch typed := decoded.(type) {
	case *crowdfunding.RegisterCreatorInstruction:
		err = p.registerCreator(ic, typed)
	case *crowdfunding.UpdateCreatorProfileInstruction:
		err = p.updateCreatorProfile(ic, typed)
	case *crowdfunding.UpdateCreatorPageInstruction:
		err = p.updateCreatorPage(ic, typed)
	case *crowdfunding.SendSupporterDonationInstruction:
		err = p.sendSupporterDonation(ctx, ic, typed)
	case *crowdfunding.CreateCampaignInstruction:
		err = p.createCampaign(ic, typed)
	case *crowdfunding.MakeCampaignDonationInstruction:
		err = p.makeCampaignDonation(ic, typed)
	case *crowdfunding.WithdrawCampaignFundsInstruction:
		err = p.withdrawCampaignFunds(ic, typed)
	default:
		return ledger.ErrInvalidInstructionData
	}

	// Lamport movements requested by the program fail with the program's own
	// error, rather than the generic ledger error.
	if errors.Is(err, ledger.ErrInsufficientFunds) {
		return crowdfunding.ErrorCodeInsufficientFunds
	}
	if err != nil {
		var code crowdfunding.ErrorCode
		if errors.As(err, &code) {
			ic.Log("Error Code: %s. Error Number: %d. Error Message: %s.", code.Name(), uint32(code), code.Error())
		}
	}
	return err
}
