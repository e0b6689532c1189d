package crowdfunding

import (
	"bytes"
	"crypto/ed25519"
	"fmt"

	"github.com/mr-tron/base58"

	"github.com/code-payments/soltips-server/pkg/solana/binary"
)

const (
	CreatorAccountSize = (8 + // discriminator
		32 + // owner
		4 + MaxUsernameLength + // username
		4 + MaxFullnameLength + // fullname
		4 + MaxBioLength + // bio
		4 + MaxImageUrlLength + // image_url
		1 + // is_supporters_count_visible
		8 + // price_per_donation
		4 + MaxDonationItemLength + // donation_item
		4 + MaxThemeColorLength + // theme_color
		4 + MaxThanksMessageLength + // thanks_message
		8 + // supporters_count
		8 + // campaigns_count
		8 + // supporter_donations_amount
		4 + MaxSocialLinks*(4+MaxSocialLinkLength) + // social_links
		1) // bump
)

var CreatorAccountDiscriminator = accountDiscriminator("Creator")

type CreatorAccount struct {
	Owner    ed25519.PublicKey
	Username string
	Fullname string
	Bio      string
	ImageUrl string

	IsSupportersCountVisible bool
	PricePerDonation         uint64
	DonationItem             string
	ThemeColor               string
	ThanksMessage            string

	SupportersCount          uint64
	CampaignsCount           uint64
	SupporterDonationsAmount uint64

	SocialLinks []string

	Bump uint8
}

// NewCreatorAccount returns a freshly registered creator with default page
// settings and zeroed counters.
func NewCreatorAccount(owner ed25519.PublicKey, username, fullname, bio string, bump uint8) *CreatorAccount {
	return &CreatorAccount{
		Owner:                    owner,
		Username:                 username,
		Fullname:                 fullname,
		Bio:                      bio,
		IsSupportersCountVisible: true,
		PricePerDonation:         DefaultPricePerDonation,
		DonationItem:             DefaultDonationItem,
		ThemeColor:               DefaultThemeColor,
		SocialLinks:              []string{},
		Bump:                     bump,
	}
}

func (obj *CreatorAccount) Marshal() []byte {
	data := make([]byte, CreatorAccountSize)

	var offset int

	putDiscriminator(data, CreatorAccountDiscriminator, &offset)
	binary.PutKey32(data[offset:], obj.Owner, &offset)
	binary.PutString(data[offset:], obj.Username, &offset)
	binary.PutString(data[offset:], obj.Fullname, &offset)
	binary.PutString(data[offset:], obj.Bio, &offset)
	binary.PutString(data[offset:], obj.ImageUrl, &offset)
	binary.PutBool(data[offset:], obj.IsSupportersCountVisible, &offset)
	binary.PutUint64(data[offset:], obj.PricePerDonation, &offset)
	binary.PutString(data[offset:], obj.DonationItem, &offset)
	binary.PutString(data[offset:], obj.ThemeColor, &offset)
	binary.PutString(data[offset:], obj.ThanksMessage, &offset)
	binary.PutUint64(data[offset:], obj.SupportersCount, &offset)
	binary.PutUint64(data[offset:], obj.CampaignsCount, &offset)
	binary.PutUint64(data[offset:], obj.SupporterDonationsAmount, &offset)
	binary.PutStringVec(data[offset:], obj.SocialLinks, &offset)
	binary.PutUint8(data[offset:], obj.Bump, &offset)

	return data
}

func (obj *CreatorAccount) Unmarshal(data []byte) error {
	if len(data) < CreatorAccountSize {
		return ErrInvalidAccountData
	}

	var offset int

	var discriminator []byte
	getDiscriminator(data, &discriminator, &offset)
	if !bytes.Equal(discriminator, CreatorAccountDiscriminator) {
		return ErrInvalidAccountData
	}

	binary.GetKey32(data[offset:], &obj.Owner, &offset)
	if err := binary.GetString(data[offset:], &obj.Username, &offset, MaxUsernameLength); err != nil {
		return ErrInvalidAccountData
	}
	if err := binary.GetString(data[offset:], &obj.Fullname, &offset, MaxFullnameLength); err != nil {
		return ErrInvalidAccountData
	}
	if err := binary.GetString(data[offset:], &obj.Bio, &offset, MaxBioLength); err != nil {
		return ErrInvalidAccountData
	}
	if err := binary.GetString(data[offset:], &obj.ImageUrl, &offset, MaxImageUrlLength); err != nil {
		return ErrInvalidAccountData
	}
	binary.GetBool(data[offset:], &obj.IsSupportersCountVisible, &offset)
	binary.GetUint64(data[offset:], &obj.PricePerDonation, &offset)
	if err := binary.GetString(data[offset:], &obj.DonationItem, &offset, MaxDonationItemLength); err != nil {
		return ErrInvalidAccountData
	}
	if err := binary.GetString(data[offset:], &obj.ThemeColor, &offset, MaxThemeColorLength); err != nil {
		return ErrInvalidAccountData
	}
	if err := binary.GetString(data[offset:], &obj.ThanksMessage, &offset, MaxThanksMessageLength); err != nil {
		return ErrInvalidAccountData
	}
	binary.GetUint64(data[offset:], &obj.SupportersCount, &offset)
	binary.GetUint64(data[offset:], &obj.CampaignsCount, &offset)
	binary.GetUint64(data[offset:], &obj.SupporterDonationsAmount, &offset)
	if err := binary.GetStringVec(data[offset:], &obj.SocialLinks, &offset, MaxSocialLinks, MaxSocialLinkLength); err != nil {
		return ErrInvalidAccountData
	}
	binary.GetUint8(data[offset:], &obj.Bump, &offset)

	return nil
}

func (obj *CreatorAccount) String() string {
	return fmt.Sprintf(
		"CreatorAccount{owner=%s,username=%s,fullname=%s,bio=%s,image_url=%s,is_supporters_count_visible=%v,price_per_donation=%d,donation_item=%s,theme_color=%s,thanks_message=%s,supporters_count=%d,campaigns_count=%d,supporter_donations_amount=%d,social_links=%s,bump=%d}",
		base58.Encode(obj.Owner),
		obj.Username,
		obj.Fullname,
		obj.Bio,
		obj.ImageUrl,
		obj.IsSupportersCountVisible,
		obj.PricePerDonation,
		obj.DonationItem,
		obj.ThemeColor,
		obj.ThanksMessage,
		obj.SupportersCount,
		obj.CampaignsCount,
		obj.SupporterDonationsAmount,
		stringSliceString(obj.SocialLinks),
		obj.Bump,
	)
}
