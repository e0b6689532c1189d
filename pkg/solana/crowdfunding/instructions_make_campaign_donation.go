package crowdfunding

import (
	"crypto/ed25519"

	"github.com/code-payments/soltips-server/pkg/solana"
	"github.com/code-payments/soltips-server/pkg/solana/binary"
)

type MakeCampaignDonationInstructionArgs struct {
	Amount uint64
}

type MakeCampaignDonationInstructionAccounts struct {
	Signer   ed25519.PublicKey
	Campaign ed25519.PublicKey
}

type MakeCampaignDonationInstruction struct {
	Accounts MakeCampaignDonationInstructionAccounts
	Args     MakeCampaignDonationInstructionArgs
}

func (*MakeCampaignDonationInstruction) Type() InstructionType {
	return InstructionTypeMakeCampaignDonation
}

func NewMakeCampaignDonationInstruction(
	accounts *MakeCampaignDonationInstructionAccounts,
	args *MakeCampaignDonationInstructionArgs,
) solana.Instruction {
	data, offset := newInstructionData(MakeCampaignDonationInstructionDiscriminator, 8)

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
			{
				PublicKey:  SYSTEM_PROGRAM_ID,
				IsWritable: false,
				IsSigner:   false,
			},
		},
	}
}

func decodeMakeCampaignDonationInstruction(i solana.Instruction) (DecodedInstruction, error) {
	keys, err := accountKeys(i, 3)
	if err != nil {
		return nil, err
	}

	var decoded MakeCampaignDonationInstruction
	decoded.Accounts.Signer = keys[0]
	decoded.Accounts.Campaign = keys[1]

	d := newArgDecoder(i.Data)
	d.readUint64(&decoded.Args.Amount)
	if err := d.finish(); err != nil {
		return nil, err
	}

	return &decoded, nil
}
