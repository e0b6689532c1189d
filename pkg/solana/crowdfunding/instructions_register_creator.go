package crowdfunding

import (
	"crypto/ed25519"

	"github.com/code-payments/soltips-server/pkg/solana"
	"github.com/code-payments/soltips-server/pkg/solana/binary"
)

type RegisterCreatorInstructionArgs struct {
	Username string
	Fullname string
	Bio      string
}

type RegisterCreatorInstructionAccounts struct {
	Signer          ed25519.PublicKey
	Creator         ed25519.PublicKey
	CreatorUsername ed25519.PublicKey
}

type RegisterCreatorInstruction struct {
	Accounts RegisterCreatorInstructionAccounts
	Args     RegisterCreatorInstructionArgs
}

func (*RegisterCreatorInstruction) Type() InstructionType {
	return InstructionTypeRegisterCreator
}

func NewRegisterCreatorInstruction(
	accounts *RegisterCreatorInstructionAccounts,
	args *RegisterCreatorInstructionArgs,
) solana.Instruction {
	data, offset := newInstructionData(
		RegisterCreatorInstructionDiscriminator,
		4+len(args.Username)+4+len(args.Fullname)+4+len(args.Bio),
	)

	binary.PutString(data[offset:], args.Username, &offset)
	binary.PutString(data[offset:], args.Fullname, &offset)
	binary.PutString(data[offset:], args.Bio, &offset)

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
				PublicKey:  accounts.CreatorUsername,
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

func decodeRegisterCreatorInstruction(i solana.Instruction) (DecodedInstruction, error) {
	keys, err := accountKeys(i, 4)
	if err != nil {
		return nil, err
	}

	var decoded RegisterCreatorInstruction
	decoded.Accounts.Signer = keys[0]
	decoded.Accounts.Creator = keys[1]
	decoded.Accounts.CreatorUsername = keys[2]

	d := newArgDecoder(i.Data)
	d.readString(&decoded.Args.Username)
	d.readString(&decoded.Args.Fullname)
	d.readString(&decoded.Args.Bio)
	if err := d.finish(); err != nil {
		return nil, err
	}

	return &decoded, nil
}
