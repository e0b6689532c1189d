package crowdfunding

import (
	"crypto/ed25519"

	"github.com/code-payments/soltips-server/pkg/solana"
	"github.com/code-payments/soltips-server/pkg/solana/binary"
)

type WithdrawCampaignFundsInstructionArgs struct {
	Amount uint64
}

type WithdrawCampaignFundsInstructionAccounts struct {
	Signer   ed25519.PublicKey
	Campaign ed25519.PublicKey
}

type WithdrawCampaignFundsInstruction struct {
	Accounts WithdrawCampaignFundsInstructionAccounts
	Args     WithdrawCampaignFundsInstructionArgs
}

func (*WithdrawCampaignFundsInstruction) Type() InstructionType {
	return InstructionTypeWithdrawCampaignFunds
}

func NewWithdrawCampaignFundsInstruction(
	accounts *WithdrawCampaignFundsInstructionAccounts,
	args *WithdrawCampaignFundsInstructionArgs,
) solana.Instruction {
	data, offset := newInstructionData(WithdrawCampaignFundsInstructionDiscriminator, 8)

	binary.PutUint64(data[offset:], args.Amount, &offset)

	return solana.Instruction{
		Program: PROGRAM_ADDRESS,

		// Instruction args
		Data: data,

		// Instruction accounts
		Accounts: []solana.AccountMeta{
			{
				PublicKey:  accounts.Signer,
				IsWritable: true,
				IsSigner:   true,
			},
			{
				PublicKey:  accounts.Campaign,
				IsWritable: true,
				IsSigner:   false,
			},
		},
	}
}

func decodeWithdrawCampaignFundsInstruction(i solana.Instruction) (DecodedInstruction, error) {
	keys, err := accountKeys(i, 2)
	if err != nil {
		return nil, err
	}

	var decoded WithdrawCampaignFundsInstruction
	decoded.Accounts.Signer = keys[0]
	decoded.Accounts.Campaign = keys[1]

	d := newArgDecoder(i.Data)
	d.readUint64(&decoded.Args.Amount)
	if err := d.finish(); err != nil {
		return nil, err
	}

	return &decoded, nil
}
