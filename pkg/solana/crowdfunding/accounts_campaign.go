package crowdfunding

import (
	"bytes"
	"crypto/ed25519"
	"fmt"

	"github.com/mr-tron/base58"

	"github.com/code-payments/soltips-server/pkg/solana/binary"
)

const (
	CampaignAccountSize = (8 + // discriminator
		32 + // owner
		4 + MaxCampaignNameLength + // name
		4 + MaxCampaignDescriptionLength + // description
		8 + // target_amount
		8 + // amount_donated
		8 + // amount_withdrawn
		1 + // is_target_amount_visible
		1) // bump
)

var CampaignAccountDiscriminator = accountDiscriminator("Campaign")

// CampaignAccount tracks donation totals for a campaign. The donated lamports
// themselves are held in the account's balance, on top of its rent floor.
type CampaignAccount struct {
	Owner ed25519.PublicKey

	Name        string
	Description string

	TargetAmount    uint64
	AmountDonated   uint64
	AmountWithdrawn uint64

	IsTargetAmountVisible bool

	Bump uint8
}

func (obj *CampaignAccount) Marshal() []byte {
	data := make([]byte, CampaignAccountSize)

	var offset int

	putDiscriminator(data, CampaignAccountDiscriminator, &offset)
	binary.PutKey32(data[offset:], obj.Owner, &offset)
	binary.PutString(data[offset:], obj.Name, &offset)
	binary.PutString(data[offset:], obj.Description, &offset)
	binary.PutUint64(data[offset:], obj.TargetAmount, &offset)
	binary.PutUint64(data[offset:], obj.AmountDonated, &offset)
	binary.PutUint64(data[offset:], obj.AmountWithdrawn, &offset)
	binary.PutBool(data[offset:], obj.IsTargetAmountVisible, &offset)
	binary.PutUint8(data[offset:], obj.Bump, &offset)

	return data
}

func (obj *CampaignAccount) Unmarshal(data []byte) error {
	if len(data) < CampaignAccountSize {
		return ErrInvalidAccountData
	}

	var offset int

	var discriminator []byte
	getDiscriminator(data, &discriminator, &offset)
	if !bytes.Equal(discriminator, CampaignAccountDiscriminator) {
		return ErrInvalidAccountData
	}

	binary.GetKey32(data[offset:], &obj.Owner, &offset)
	if err := binary.GetString(data[offset:], &obj.Name, &offset, MaxCampaignNameLength); err != nil {
		return ErrInvalidAccountData
	}
	if err := binary.GetString(data[offset:], &obj.Description, &offset, MaxCampaignDescriptionLength); err != nil {
		return ErrInvalidAccountData
	}
	binary.GetUint64(data[offset:], &obj.TargetAmount, &offset)
	binary.GetUint64(data[offset:], &obj.AmountDonated, &offset)
	binary.GetUint64(data[offset:], &obj.AmountWithdrawn, &offset)
	binary.GetBool(data[offset:], &obj.IsTargetAmountVisible, &offset)
	binary.GetUint8(data[offset:], &obj.Bump, &offset)

	return nil
}

func (obj *CampaignAccount) String() string {
	return fmt.Sprintf(
		"CampaignAccount{owner=%s,name=%s,description=%s,target_amount=%d,amount_donated=%d,amount_withdrawn=%d,is_target_amount_visible=%v,bump=%d}",
		base58.Encode(obj.Owner),
		obj.Name,
		obj.Description,
		obj.TargetAmount,
		obj.AmountDonated,
		obj.AmountWithdrawn,
		obj.IsTargetAmountVisible,
		obj.Bump,
	)
}
