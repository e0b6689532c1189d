package crowdfunding

import (
	"crypto/ed25519"
	"errors"
)

var (
	ErrInvalidProgram         = errors.New("invalid program id")
	ErrInvalidAccountData     = errors.New("unexpected account data")
	ErrInvalidInstructionData = errors.New("unexpected instruction data")
	ErrUnknownInstruction     = errors.New("unknown instruction")
)

var (
	PROGRAM_ADDRESS = mustBase58Decode("5dWX9UvibREvTPvU1zC7woKngTV1YfsXAqm1rDzezNSg")
	PROGRAM_ID      = ed25519.PublicKey(PROGRAM_ADDRESS)
)

var (
	SYSTEM_PROGRAM_ID = ed25519.PublicKey(mustBase58Decode("11111111111111111111111111111111"))
)

const (
	// FeePercent of every supporter donation is routed to the fee collector.
	FeePercent = 1

	DefaultPricePerDonation = 100_000_000 // 0.1 SOL
	DefaultDonationItem     = "coffee"
	DefaultThemeColor       = "#794BC4"
)

const (
	MinUsernameLength = 3
	MaxUsernameLength = 20

	MaxFullnameLength      = 100
	MaxBioLength           = 250
	MaxImageUrlLength      = 2048
	MaxDonationItemLength  = 10
	MaxThemeColorLength    = 7
	MaxThanksMessageLength = 250
	MaxSocialLinks         = 5
	MaxSocialLinkLength    = 250

	MaxDonationNameLength    = 50
	MaxDonationMessageLength = 250

	MaxCampaignNameLength        = 50
	MaxCampaignDescriptionLength = 250
)
