package crowdfunding

import (
	"bytes"
	"crypto/ed25519"
	"fmt"

	"github.com/mr-tron/base58"

	"github.com/code-payments/soltips-server/pkg/solana/binary"
)

const (
	SupporterDonationAccountSize = (8 + // discriminator
		32 + // supporter
		32 + // creator
		4 + MaxDonationNameLength + // name
		4 + MaxDonationMessageLength + // message
		8 + // amount
		8 + // fees
		4 + MaxDonationItemLength + // item
		2 + // quantity
		8 + // timestamp
		1) // bump
)

var SupporterDonationAccountDiscriminator = accountDiscriminator("SupporterDonation")

type SupporterDonationAccount struct {
	Supporter ed25519.PublicKey
	Creator   ed25519.PublicKey

	Name    string
	Message string

	Amount   uint64
	Fees     uint64
	Item     string
	Quantity uint16

	Timestamp int64

	Bump uint8
}

func (obj *SupporterDonationAccount) Marshal() []byte {
	data := make([]byte, SupporterDonationAccountSize)

	var offset int

	putDiscriminator(data, SupporterDonationAccountDiscriminator, &offset)
	binary.PutKey32(data[offset:], obj.Supporter, &offset)
	binary.PutKey32(data[offset:], obj.Creator, &offset)
	binary.PutString(data[offset:], obj.Name, &offset)
	binary.PutString(data[offset:], obj.Message, &offset)
	binary.PutUint64(data[offset:], obj.Amount, &offset)
	binary.PutUint64(data[offset:], obj.Fees, &offset)
	binary.PutString(data[offset:], obj.Item, &offset)
	binary.PutUint16(data[offset:], obj.Quantity, &offset)
	binary.PutInt64(data[offset:], obj.Timestamp, &offset)
	binary.PutUint8(data[offset:], obj.Bump, &offset)

	return data
}

func (obj *SupporterDonationAccount) Unmarshal(data []byte) error {
	if len(data) < SupporterDonationAccountSize {
		return ErrInvalidAccountData
	}

	var offset int

	var discriminator []byte
	getDiscriminator(data, &discriminator, &offset)
	if !bytes.Equal(discriminator, SupporterDonationAccountDiscriminator) {
		return ErrInvalidAccountData
	}

	binary.GetKey32(data[offset:], &obj.Supporter, &offset)
	binary.GetKey32(data[offset:], &obj.Creator, &offset)
	if err := binary.GetString(data[offset:], &obj.Name, &offset, MaxDonationNameLength); err != nil {
		return ErrInvalidAccountData
	}
	if err := binary.GetString(data[offset:], &obj.Message, &offset, MaxDonationMessageLength); err != nil {
		return ErrInvalidAccountData
	}
	binary.GetUint64(data[offset:], &obj.Amount, &offset)
	binary.GetUint64(data[offset:], &obj.Fees, &offset)
	if err := binary.GetString(data[offset:], &obj.Item, &offset, MaxDonationItemLength); err != nil {
		return ErrInvalidAccountData
	}
	binary.GetUint16(data[offset:], &obj.Quantity, &offset)
	binary.GetInt64(data[offset:], &obj.Timestamp, &offset)
	binary.GetUint8(data[offset:], &obj.Bump, &offset)

	return nil
}

// NetAmount is the portion of the donation that reached the creator.
func (obj *SupporterDonationAccount) NetAmount() uint64 {
	return obj.Amount - obj.Fees
}

func (obj *SupporterDonationAccount) String() string {
	return fmt.Sprintf(
		"SupporterDonationAccount{supporter=%s,creator=%s,name=%s,message=%s,amount=%d,fees=%d,item=%s,quantity=%d,timestamp=%d,bump=%d}",
		base58.Encode(obj.Supporter),
		base58.Encode(obj.Creator),
		obj.Name,
		obj.Message,
		obj.Amount,
		obj.Fees,
		obj.Item,
		obj.Quantity,
		obj.Timestamp,
		obj.Bump,
	)
}
