package crowdfunding

import (
	"crypto/sha256"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountSizes(t *testing.T) {
	assert.Equal(t, 4061, CreatorAccountSize)
	assert.Equal(t, 41, CreatorUsernameAccountSize)
	assert.Equal(t, 421, SupporterDonationAccountSize)
	assert.Equal(t, 374, CampaignAccountSize)
}

func TestAccountDiscriminators(t *testing.T) {
	h := sha256.Sum256([]byte("account:Creator"))
	assert.Equal(t, h[:8], CreatorAccountDiscriminator)

	for _, accountType := range []AccountType{
		AccountTypeCreator,
		AccountTypeCreatorUsername,
		AccountTypeSupporterDonation,
		AccountTypeCampaign,
	} {
		data := make([]byte, accountType.Size())
		copy(data, accountType.Discriminator())
		assert.Equal(t, accountType, GetAccountType(data))
		assert.NotEqual(t, "unknown", accountType.String())
	}

	assert.Equal(t, AccountTypeUnknown, GetAccountType(nil))
	assert.Equal(t, AccountTypeUnknown, GetAccountType(make([]byte, 8)))
}

func TestCreatorAccount(t *testing.T) {
	expected := NewCreatorAccount(newKey(t), "alice", "Alice Liddell", "down the rabbit hole", 254)
	expected.ImageUrl = "https://example.com/alice.png"
	expected.PricePerDonation = 100_000
	expected.ThanksMessage = "thank you!"
	expected.SupportersCount = 3
	expected.CampaignsCount = 2
	expected.SupporterDonationsAmount = 300_000
	expected.SocialLinks = []string{"https://x.com/alice", "https://github.com/alice"}

	data := expected.Marshal()
	require.Len(t, data, CreatorAccountSize)
	assert.Equal(t, AccountTypeCreator, GetAccountType(data))

	var actual CreatorAccount
	require.NoError(t, actual.Unmarshal(data))
	assert.Equal(t, expected, &actual)

	assert.Contains(t, actual.String(), "username=alice")

	defaults := NewCreatorAccount(newKey(t), "bob", "", "", 1)
	assert.True(t, defaults.IsSupportersCountVisible)
	assert.EqualValues(t, 100_000_000, defaults.PricePerDonation)
	assert.Equal(t, "coffee", defaults.DonationItem)
	assert.Equal(t, "#794BC4", defaults.ThemeColor)
	assert.Zero(t, defaults.SupportersCount)
	assert.Zero(t, defaults.CampaignsCount)
	assert.Zero(t, defaults.SupporterDonationsAmount)
}

func TestCreatorAccount_MaxLengths(t *testing.T) {
	expected := NewCreatorAccount(
		newKey(t),
		string(repeat('u', MaxUsernameLength)),
		string(repeat('f', MaxFullnameLength)),
		string(repeat('b', MaxBioLength)),
		255,
	)
	expected.ImageUrl = string(repeat('i', MaxImageUrlLength))
	expected.DonationItem = string(repeat('d', MaxDonationItemLength))
	expected.ThemeColor = string(repeat('t', MaxThemeColorLength))
	expected.ThanksMessage = string(repeat('m', MaxThanksMessageLength))
	for i := 0; i < MaxSocialLinks; i++ {
		expected.SocialLinks = append(expected.SocialLinks, string(repeat('s', MaxSocialLinkLength)))
	}

	var actual CreatorAccount
	require.NoError(t, actual.Unmarshal(expected.Marshal()))
	assert.Equal(t, expected, &actual)
	assert.EqualValues(t, 255, actual.Bump)
}

func TestCreatorUsernameAccount(t *testing.T) {
	expected := &CreatorUsernameAccount{Owner: newKey(t), Bump: 253}

	data := expected.Marshal()
	require.Len(t, data, CreatorUsernameAccountSize)

	var actual CreatorUsernameAccount
	require.NoError(t, actual.Unmarshal(data))
	assert.Equal(t, expected, &actual)
}

func TestSupporterDonationAccount(t *testing.T) {
	expected := &SupporterDonationAccount{
		Supporter: newKey(t),
		Creator:   newKey(t),
		Name:      "bob",
		Message:   "keep it up",
		Amount:    300_000,
		Fees:      3_000,
		Item:      "coffee",
		Quantity:  3,
		Timestamp: 1_700_000_000,
		Bump:      250,
	}

	data := expected.Marshal()
	require.Len(t, data, SupporterDonationAccountSize)

	var actual SupporterDonationAccount
	require.NoError(t, actual.Unmarshal(data))
	assert.Equal(t, expected, &actual)
	assert.EqualValues(t, 297_000, actual.NetAmount())
}

func TestCampaignAccount(t *testing.T) {
	expected := &CampaignAccount{
		Owner:                 newKey(t),
		Name:                  "new album",
		Description:           "help me record",
		TargetAmount:          1_000_000_000,
		AmountDonated:         500_000_000,
		AmountWithdrawn:       200_000_000,
		IsTargetAmountVisible: true,
		Bump:                  251,
	}

	data := expected.Marshal()
	require.Len(t, data, CampaignAccountSize)

	var actual CampaignAccount
	require.NoError(t, actual.Unmarshal(data))
	assert.Equal(t, expected, &actual)
}

func TestUnmarshal_InvalidData(t *testing.T) {
	campaign := (&CampaignAccount{Owner: newKey(t)}).Marshal()

	var creator CreatorAccount
	assert.Equal(t, ErrInvalidAccountData, creator.Unmarshal(campaign))
	assert.Equal(t, ErrInvalidAccountData, creator.Unmarshal(nil))

	var parsed CampaignAccount
	assert.Equal(t, ErrInvalidAccountData, parsed.Unmarshal(campaign[:CampaignAccountSize-1]))

	// Name length prefix beyond the field maximum
	corrupted := make([]byte, len(campaign))
	copy(corrupted, campaign)
	corrupted[8+32] = MaxCampaignNameLength + 1
	assert.Equal(t, ErrInvalidAccountData, parsed.Unmarshal(corrupted))

	var username CreatorUsernameAccount
	assert.Equal(t, ErrInvalidAccountData, username.Unmarshal(campaign))

	var donation SupporterDonationAccount
	assert.Equal(t, ErrInvalidAccountData, donation.Unmarshal(campaign))
}

func repeat(b byte, n int) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = b
	}
	return data
}
