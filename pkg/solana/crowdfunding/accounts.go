package crowdfunding

import (
	"bytes"
)

type AccountType uint8

const (
	AccountTypeUnknown AccountType = iota
	AccountTypeCreator
	AccountTypeCreatorUsername
	AccountTypeSupporterDonation
	AccountTypeCampaign
)

// GetAccountType identifies the account layout from its discriminator.
func GetAccountType(data []byte) AccountType {
	if len(data) < discriminatorSize {
		return AccountTypeUnknown
	}

	switch discriminator := data[:discriminatorSize]; {
	case bytes.Equal(discriminator, CreatorAccountDiscriminator):
		return AccountTypeCreator
	case bytes.Equal(discriminator, CreatorUsernameAccountDiscriminator):
		return AccountTypeCreatorUsername
	case bytes.Equal(discriminator, SupporterDonationAccountDiscriminator):
		return AccountTypeSupporterDonation
	case bytes.Equal(discriminator, CampaignAccountDiscriminator):
		return AccountTypeCampaign
	default:
		return AccountTypeUnknown
	}
}

// Discriminator returns the 8 byte prefix shared by every account of type t.
func (t AccountType) Discriminator() []byte {
	switch t {
	case AccountTypeCreator:
		return CreatorAccountDiscriminator
	case AccountTypeCreatorUsername:
		return CreatorUsernameAccountDiscriminator
	case AccountTypeSupporterDonation:
		return SupporterDonationAccountDiscriminator
	case AccountTypeCampaign:
		return CampaignAccountDiscriminator
	}
	return nil
}

// Size is the allocated data length for accounts of type t.
func (t AccountType) Size() int {
	switch t {
	case AccountTypeCreator:
		return CreatorAccountSize
	case AccountTypeCreatorUsername:
		return CreatorUsernameAccountSize
	case AccountTypeSupporterDonation:
		return SupporterDonationAccountSize
	case AccountTypeCampaign:
		return CampaignAccountSize
	}
	return 0
}

func (t AccountType) String() string {
	switch t {
	case AccountTypeCreator:
		return "creator"
	case AccountTypeCreatorUsername:
		return "creator_username"
	case AccountTypeSupporterDonation:
		return "supporter_donation"
	case AccountTypeCampaign:
		return "campaign"
	}
	return "unknown"
}
