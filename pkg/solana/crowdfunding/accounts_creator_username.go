package crowdfunding

import (
	"bytes"
	"crypto/ed25519"
	"fmt"

	"github.com/mr-tron/base58"

	"github.com/code-payments/soltips-server/pkg/solana/binary"
)

const (
	CreatorUsernameAccountSize = (8 + // discriminator
		32 + // owner
		1) // bump
)

var CreatorUsernameAccountDiscriminator = accountDiscriminator("CreatorUsername")

// CreatorUsernameAccount reserves a username. Its existence at the username
// PDA is what makes usernames unique.
type CreatorUsernameAccount struct {
	Owner ed25519.PublicKey
	Bump  uint8
}

func (obj *CreatorUsernameAccount) Marshal() []byte {
	data := make([]byte, CreatorUsernameAccountSize)

	var offset int

	putDiscriminator(data, CreatorUsernameAccountDiscriminator, &offset)
	binary.PutKey32(data[offset:], obj.Owner, &offset)
	binary.PutUint8(data[offset:], obj.Bump, &offset)

	return data
}

func (obj *CreatorUsernameAccount) Unmarshal(data []byte) error {
	if len(data) < CreatorUsernameAccountSize {
		return ErrInvalidAccountData
	}

	var offset int

	var discriminator []byte
	getDiscriminator(data, &discriminator, &offset)
	if !bytes.Equal(discriminator, CreatorUsernameAccountDiscriminator) {
		return ErrInvalidAccountData
	}

	binary.GetKey32(data[offset:], &obj.Owner, &offset)
	binary.GetUint8(data[offset:], &obj.Bump, &offset)

	return nil
}

func (obj *CreatorUsernameAccount) String() string {
	return fmt.Sprintf(
		"CreatorUsernameAccount{owner=%s,bump=%d}",
		base58.Encode(obj.Owner),
		obj.Bump,
	)
}
