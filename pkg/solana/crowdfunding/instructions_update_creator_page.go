package crowdfunding

import (
	"crypto/ed25519"

	"github.com/code-payments/soltips-server/pkg/solana"
	"github.com/code-payments/soltips-server/pkg/solana/binary"
)

type UpdateCreatorPageInstructionArgs struct {
	IsSupportersCountVisible bool
	PricePerDonation         uint64
	DonationItem             string
	ThemeColor               string
	ThanksMessage            string
}

type UpdateCreatorPageInstructionAccounts struct {
	Signer  ed25519.PublicKey
	Creator ed25519.PublicKey
}

type UpdateCreatorPageInstruction struct {
	Accounts UpdateCreatorPageInstructionAccounts
	Args     UpdateCreatorPageInstructionArgs
}

func (*UpdateCreatorPageInstruction) Type() InstructionType {
	return InstructionTypeUpdateCreatorPage
}

func NewUpdateCreatorPageInstruction(
	accounts *UpdateCreatorPageInstructionAccounts,
	args *UpdateCreatorPageInstructionArgs,
) solana.Instruction {
	data, offset := newInstructionData(
		UpdateCreatorPageInstructionDiscriminator,
		1+8+4+len(args.DonationItem)+4+len(args.ThemeColor)+4+len(args.ThanksMessage),
	)

	binary.PutBool(data[offset:], args.IsSupportersCountVisible, &offset)
	binary.PutUint64(data[offset:], args.PricePerDonation, &offset)
	binary.PutString(data[offset:], args.DonationItem, &offset)
	binary.PutString(data[offset:], args.ThemeColor, &offset)
	binary.PutString(data[offset:], args.ThanksMessage, &offset)

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
		},
	}
}

func decodeUpdateCreatorPageInstruction(i solana.Instruction) (DecodedInstruction, error) {
	keys, err := accountKeys(i, 2)
	if err != nil {
		return nil, err
	}

	var decoded UpdateCreatorPageInstruction
	decoded.Accounts.Signer = keys[0]
	decoded.Accounts.Creator = keys[1]

	d := newArgDecoder(i.Data)
	d.readBool(&decoded.Args.IsSupportersCountVisible)
	d.readUint64(&decoded.Args.PricePerDonation)
	d.readString(&decoded.Args.DonationItem)
	d.readString(&decoded.Args.ThemeColor)
	d.readString(&decoded.Args.ThanksMessage)
	if err := d.finish(); err != nil {
		return nil, err
	}

	return &decoded, nil
}
