package crowdfunding

import (
	"bytes"
	"crypto/ed25519"

	"github.com/code-payments/soltips-server/pkg/solana"
	"github.com/code-payments/soltips-server/pkg/solana/binary"
)

type InstructionType uint8

const (
	InstructionTypeUnknown InstructionType = iota
	InstructionTypeRegisterCreator
	InstructionTypeUpdateCreatorProfile
	InstructionTypeUpdateCreatorPage
	InstructionTypeSendSupporterDonation
	InstructionTypeCreateCampaign
	InstructionTypeMakeCampaignDonation
	InstructionTypeWithdrawCampaignFunds
)

var (
	RegisterCreatorInstructionDiscriminator       = instructionDiscriminator("register_creator")
	UpdateCreatorProfileInstructionDiscriminator  = instructionDiscriminator("update_creator_profile")
	UpdateCreatorPageInstructionDiscriminator     = instructionDiscriminator("update_creator_page")
	SendSupporterDonationInstructionDiscriminator = instructionDiscriminator("send_supporter_donation")
	CreateCampaignInstructionDiscriminator        = instructionDiscriminator("create_campaign")
	MakeCampaignDonationInstructionDiscriminator  = instructionDiscriminator("make_campaign_donation")
	WithdrawCampaignFundsInstructionDiscriminator = instructionDiscriminator("withdraw_campaign_funds")
)

// Upper bound applied to string arguments while decoding. Field specific
// limits are enforced by the program so that violations surface as
// ErrorCodeInvalidFieldLength rather than malformed instruction data.
const maxArgStringLength = solana.MaxTransactionSize

// DecodedInstruction is implemented by every decoded crowdfunding instruction.
type DecodedInstruction interface {
	Type() InstructionType
}

// GetInstructionType identifies an instruction from its data discriminator.
func GetInstructionType(data []byte) InstructionType {
	if len(data) < discriminatorSize {
		return InstructionTypeUnknown
	}

	switch discriminator := data[:discriminatorSize]; {
	case bytes.Equal(discriminator, RegisterCreatorInstructionDiscriminator):
		return InstructionTypeRegisterCreator
	case bytes.Equal(discriminator, UpdateCreatorProfileInstructionDiscriminator):
		return InstructionTypeUpdateCreatorProfile
	case bytes.Equal(discriminator, UpdateCreatorPageInstructionDiscriminator):
		return InstructionTypeUpdateCreatorPage
	case bytes.Equal(discriminator, SendSupporterDonationInstructionDiscriminator):
		return InstructionTypeSendSupporterDonation
	case bytes.Equal(discriminator, CreateCampaignInstructionDiscriminator):
		return InstructionTypeCreateCampaign
	case bytes.Equal(discriminator, MakeCampaignDonationInstructionDiscriminator):
		return InstructionTypeMakeCampaignDonation
	case bytes.Equal(discriminator, WithdrawCampaignFundsInstructionDiscriminator):
		return InstructionTypeWithdrawCampaignFunds
	default:
		return InstructionTypeUnknown
	}
}

// DecodeInstruction parses a decompiled instruction addressed to the
// crowdfunding program.
func DecodeInstruction(i solana.Instruction) (DecodedInstruction, error) {
	if !bytes.Equal(i.Program, PROGRAM_ID) {
		return nil, ErrInvalidProgram
	}

	switch GetInstructionType(i.Data) {
	case InstructionTypeRegisterCreator:
		return decodeRegisterCreatorInstruction(i)
	case InstructionTypeUpdateCreatorProfile:
		return decodeUpdateCreatorProfileInstruction(i)
	case InstructionTypeUpdateCreatorPage:
		return decodeUpdateCreatorPageInstruction(i)
	case InstructionTypeSendSupporterDonation:
		return decodeSendSupporterDonationInstruction(i)
	case InstructionTypeCreateCampaign:
		return decodeCreateCampaignInstruction(i)
	case InstructionTypeMakeCampaignDonation:
		return decodeMakeCampaignDonationInstruction(i)
	case InstructionTypeWithdrawCampaignFunds:
		return decodeWithdrawCampaignFundsInstruction(i)
	default:
		return nil, ErrUnknownInstruction
	}
}

func (t InstructionType) String() string {
	switch t {
	case InstructionTypeRegisterCreator:
		return "register_creator"
	case InstructionTypeUpdateCreatorProfile:
		return "update_creator_profile"
	case InstructionTypeUpdateCreatorPage:
		return "update_creator_page"
	case InstructionTypeSendSupporterDonation:
		return "send_supporter_donation"
	case InstructionTypeCreateCampaign:
		return "create_campaign"
	case InstructionTypeMakeCampaignDonation:
		return "make_campaign_donation"
	case InstructionTypeWithdrawCampaignFunds:
		return "withdraw_campaign_funds"
	}
	return "unknown"
}

// argDecoder reads borsh arguments following the instruction discriminator,
// remembering the first failure.
type argDecoder struct {
	data   []byte
	offset int
	err    error
}

func newArgDecoder(data []byte) *argDecoder {
	return &argDecoder{data: data, offset: discriminatorSize}
}

func (d *argDecoder) remaining(n int) bool {
	if d.err != nil {
		return false
	}
	if len(d.data)-d.offset < n {
		d.err = ErrInvalidInstructionData
		return false
	}
	return true
}

func (d *argDecoder) readString(dst *string) {
	if !d.remaining(4) {
		return
	}
	if err := binary.GetString(d.data[d.offset:], dst, &d.offset, maxArgStringLength); err != nil {
		d.err = ErrInvalidInstructionData
	}
}

func (d *argDecoder) readStringVec(dst *[]string) {
	if !d.remaining(4) {
		return
	}
	if err := binary.GetStringVec(d.data[d.offset:], dst, &d.offset, maxArgStringLength, maxArgStringLength); err != nil {
		d.err = ErrInvalidInstructionData
	}
}

func (d *argDecoder) readUint64(dst *uint64) {
	if d.remaining(8) {
		binary.GetUint64(d.data[d.offset:], dst, &d.offset)
	}
}

func (d *argDecoder) readUint16(dst *uint16) {
	if d.remaining(2) {
		binary.GetUint16(d.data[d.offset:], dst, &d.offset)
	}
}

func (d *argDecoder) readBool(dst *bool) {
	if !d.remaining(1) {
		return
	}
	if d.data[d.offset] > 1 {
		d.err = ErrInvalidInstructionData
		return
	}
	binary.GetBool(d.data[d.offset:], dst, &d.offset)
}

// finish reports the first decoding failure, or trailing bytes.
func (d *argDecoder) finish() error {
	if d.err != nil {
		return d.err
	}
	if d.offset != len(d.data) {
		return ErrInvalidInstructionData
	}
	return nil
}

// accountKeys returns the public keys of i's accounts after checking the
// expected count.
func accountKeys(i solana.Instruction, expected int) ([]ed25519.PublicKey, error) {
	if len(i.Accounts) != expected {
		return nil, ErrInvalidInstructionData
	}

	keys := make([]ed25519.PublicKey, len(i.Accounts))
	for j, account := range i.Accounts {
		keys[j] = account.PublicKey
	}
	return keys, nil
}

func newInstructionData(discriminator []byte, argsSize int) ([]byte, int) {
	data := make([]byte, discriminatorSize+argsSize)
	var offset int
	putDiscriminator(data, discriminator, &offset)
	return data, offset
}

func stringVecSize(values []string) int {
	size := 4
	for _, v := range values {
		size += 4 + len(v)
	}
	return size
}
