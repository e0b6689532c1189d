package crowdfunding

import (
	"crypto/ed25519"

	"github.com/code-payments/soltips-server/pkg/solana"
	"github.com/code-payments/soltips-server/pkg/solana/binary"
)

type UpdateCreatorProfileInstructionArgs struct {
	Fullname    string
	Bio         string
	ImageUrl    string
	SocialLinks []string
}

type UpdateCreatorProfileInstructionAccounts struct {
	Signer  ed25519.PublicKey
	Creator ed25519.PublicKey
}

type UpdateCreatorProfileInstruction struct {
	Accounts UpdateCreatorProfileInstructionAccounts
	Args     UpdateCreatorProfileInstructionArgs
}

func (*UpdateCreatorProfileInstruction) Type() InstructionType {
	return InstructionTypeUpdateCreatorProfile
}

func NewUpdateCreatorProfileInstruction(
	accounts *UpdateCreatorProfileInstructionAccounts,
	args *UpdateCreatorProfileInstructionArgs,
) solana.Instruction {
	data, offset := newInstructionData(
		UpdateCreatorProfileInstructionDiscriminator,
		4+len(args.Fullname)+4+len(args.Bio)+4+len(args.ImageUrl)+stringVecSize(args.SocialLinks),
	)

	binary.PutString(data[offset:], args.Fullname, &offset)
	binary.PutString(data[offset:], args.Bio, &offset)
	binary.PutString(data[offset:], args.ImageUrl, &offset)
	binary.PutStringVec(data[offset:], args.SocialLinks, &offset)

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

func decodeUpdateCreatorProfileInstruction(i solana.Instruction) (DecodedInstruction, error) {
	keys, err := accountKeys(i, 2)
	if err != nil {
		return nil, err
	}

	var decoded UpdateCreatorProfileInstruction
	decoded.Accounts.Signer = keys[0]
	decoded.Accounts.Creator = keys[1]

	d := newArgDecoder(i.Data)
	d.readString(&decoded.Args.Fullname)
	d.readString(&decoded.Args.Bio)
	d.readString(&decoded.Args.ImageUrl)
	d.readStringVec(&decoded.Args.SocialLinks)
	if err := d.finish(); err != nil {
		return nil, err
	}

	return &decoded, nil
}
