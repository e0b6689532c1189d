package crowdfunding

import (
	"crypto/ed25519"

	"github.com/code-payments/soltips-server/pkg/solana"
	"github.com/code-payments/soltips-server/pkg/solana/binary"
)

type CreateCampaignInstructionArgs struct {
	Name                  string
	Description           string
	TargetAmount          uint64
	IsTargetAmountVisible bool
}

type CreateCampaignInstructionAccounts struct {
	Signer   ed25519.PublicKey
	Creator  ed25519.PublicKey
	Campaign ed25519.PublicKey
}

type CreateCampaignInstruction struct {
	Accounts CreateCampaignInstructionAccounts
	Args     CreateCampaignInstructionArgs
}

func (*CreateCampaignInstruction) Type() InstructionType {
	return InstructionTypeCreateCampaign
}

func NewCreateCampaignInstruction(
	accounts *CreateCampaignInstructionAccounts,
	args *CreateCampaignInstructionArgs,
) solana.Instruction {
	data, offset := newInstructionData(
		CreateCampaignInstructionDiscriminator,
		4+len(args.Name)+4+len(args.Description)+8+1,
	)

	binary.PutString(data[offset:], args.Name, &offset)
	binary.PutString(data[offset:], args.Description, &offset)
	binary.PutUint64(data[offset:], args.TargetAmount, &offset)
	binary.PutBool(data[offset:], args.IsTargetAmountVisible, &offset)

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
				PublicKey:  accounts.Creator,
				IsWritable: true,
				IsSigner:   false,
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

func decodeCreateCampaignInstruction(i solana.Instruction) (DecodedInstruction, error) {
	keys, err := accountKeys(i, 4)
	if err != nil {
		return nil, err
	}

	var decoded CreateCampaignInstruction
	decoded.Accounts.Signer = keys[0]
	decoded.Accounts.Creator = keys[1]
	decoded.Accounts.Campaign = keys[2]

	d := newArgDecoder(i.Data)
	d.readString(&decoded.Args.Name)
	d.readString(&decoded.Args.Description)
	d.readUint64(&decoded.Args.TargetAmount)
	d.readBool(&decoded.Args.IsTargetAmountVisible)
	if err := d.finish(); err != nil {
		return nil, err
	}

	return &decoded, nil
}
