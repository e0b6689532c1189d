package crowdfunding

import (
	"crypto/ed25519"

	"github.com/code-payments/soltips-server/pkg/solana"
	"github.com/code-payments/soltips-server/pkg/solana/binary"
)

type SendSupporterDonationInstructionArgs struct {
	Name     string
	Message  string
	Quantity uint16
}

type SendSupporterDonationInstructionAccounts struct {
	Signer            ed25519.PublicKey
	Creator           ed25519.PublicKey
	SupporterDonation ed25519.PublicKey
	Receiver          ed25519.PublicKey
	FeeCollector      ed25519.PublicKey
}

type SendSupporterDonationInstruction struct {
	Accounts SendSupporterDonationInstructionAccounts
	Args     SendSupporterDonationInstructionArgs
}

func (*SendSupporterDonationInstruction) Type() InstructionType {
	return InstructionTypeSendSupporterDonation
}

func NewSendSupporterDonationInstruction(
	accounts *SendSupporterDonationInstructionAccounts,
	args *SendSupporterDonationInstructionArgs,
) solana.Instruction {
	data, offset := newInstructionData(
		SendSupporterDonationInstructionDiscriminator,
		4+len(args.Name)+4+len(args.Message)+2,
	)

	binary.PutString(data[offset:], args.Name, &offset)
	binary.PutString(data[offset:], args.Message, &offset)
	binary.PutUint16(data[offset:], args.Quantity, &offset)

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
				PublicKey:  accounts.SupporterDonation,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.Receiver,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.FeeCollector,
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

func decodeSendSupporterDonationInstruction(i solana.Instruction) (DecodedInstruction, error) {
	keys, err := accountKeys(i, 6)
	if err != nil {
		return nil, err
	}

	var decoded SendSupporterDonationInstruction
	decoded.Accounts.Signer = keys[0]
	decoded.Accounts.Creator = keys[1]
	decoded.Accounts.SupporterDonation = keys[2]
	decoded.Accounts.Receiver = keys[3]
	decoded.Accounts.FeeCollector = keys[4]

	d := newArgDecoder(i.Data)
	d.readString(&decoded.Args.Name)
	d.readString(&decoded.Args.Message)
	d.readUint16(&decoded.Args.Quantity)
	if err := d.finish(); err != nil {
		return nil, err
	}

	return &decoded, nil
}
