package crowdfunding

import (
	"crypto/ed25519"
	"encoding/binary"

	"github.com/code-payments/soltips-server/pkg/solana"
)

var (
	CreatorPrefix           = []byte("creator")
	UsernamePrefix          = []byte("username")
	SupporterDonationPrefix = []byte("supporterDonation")
	CampaignPrefix          = []byte("campaign")
)

type GetCreatorAddressArgs struct {
	Owner ed25519.PublicKey
}

func GetCreatorAddress(args *GetCreatorAddressArgs) (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(
		PROGRAM_ID,
		CreatorPrefix,
		args.Owner,
	)
}

type GetUsernameAddressArgs struct {
	Username string
}

func GetUsernameAddress(args *GetUsernameAddressArgs) (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(
		PROGRAM_ID,
		UsernamePrefix,
		[]byte(args.Username),
	)
}

type GetSupporterDonationAddressArgs struct {
	Creator ed25519.PublicKey
	Index   uint64
}

func GetSupporterDonationAddress(args *GetSupporterDonationAddressArgs) (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(
		PROGRAM_ID,
		SupporterDonationPrefix,
		args.Creator,
		ordinalSeed(args.Index),
	)
}

type GetCampaignAddressArgs struct {
	Creator ed25519.PublicKey
	Index   uint64
}

func GetCampaignAddress(args *GetCampaignAddressArgs) (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(
		PROGRAM_ID,
		CampaignPrefix,
		args.Creator,
		ordinalSeed(args.Index),
	)
}

// VerifyCreatorAddress checks address against the creator PDA for owner using
// the bump stored in the account.
func VerifyCreatorAddress(address, owner ed25519.PublicKey, bump uint8) bool {
	return solana.VerifyProgramAddress(PROGRAM_ID, address, bump, CreatorPrefix, owner)
}

func ordinalSeed(index uint64) []byte {
	seed := make([]byte, 8)
	binary.LittleEndian.PutUint64(seed, index)
	return seed
}
