package crowdfunding

import (
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/soltips-server/pkg/solana"
)

func TestGetCreatorAddress(t *testing.T) {
	owner := newKey(t)

	address, bump, err := GetCreatorAddress(&GetCreatorAddressArgs{Owner: owner})
	require.NoError(t, err)

	again, againBump, err := GetCreatorAddress(&GetCreatorAddressArgs{Owner: owner})
	require.NoError(t, err)
	assert.EqualValues(t, address, again)
	assert.Equal(t, bump, againBump)

	assert.True(t, VerifyCreatorAddress(address, owner, bump))
	assert.False(t, VerifyCreatorAddress(address, newKey(t), bump))

	expected, err := solana.CreateProgramAddress(PROGRAM_ID, []byte("creator"), owner, []byte{bump})
	require.NoError(t, err)
	assert.EqualValues(t, expected, address)
}

func TestGetUsernameAddress(t *testing.T) {
	alice, _, err := GetUsernameAddress(&GetUsernameAddressArgs{Username: "alice"})
	require.NoError(t, err)
	bob, _, err := GetUsernameAddress(&GetUsernameAddressArgs{Username: "bob"})
	require.NoError(t, err)
	aliceAgain, _, err := GetUsernameAddress(&GetUsernameAddressArgs{Username: "alice"})
	require.NoError(t, err)

	assert.EqualValues(t, alice, aliceAgain)
	assert.NotEqual(t, alice, bob)

	_, _, err = GetUsernameAddress(&GetUsernameAddressArgs{Username: string(make([]byte, 33))})
	assert.Equal(t, solana.ErrMaxSeedLengthExceeded, err)
}

func TestOrdinalAddresses(t *testing.T) {
	creator := newKey(t)

	seen := make(map[string]struct{})
	for i := uint64(0); i < 50; i++ {
		donation, _, err := GetSupporterDonationAddress(&GetSupporterDonationAddressArgs{Creator: creator, Index: i})
		require.NoError(t, err)
		campaign, _, err := GetCampaignAddress(&GetCampaignAddressArgs{Creator: creator, Index: i})
		require.NoError(t, err)

		again, _, err := GetSupporterDonationAddress(&GetSupporterDonationAddressArgs{Creator: creator, Index: i})
		require.NoError(t, err)
		assert.EqualValues(t, donation, again)

		for _, address := range []ed25519.PublicKey{donation, campaign} {
			_, ok := seen[string(address)]
			assert.False(t, ok)
			seen[string(address)] = struct{}{}
		}
	}

	otherCreator, _, err := GetSupporterDonationAddress(&GetSupporterDonationAddressArgs{Creator: newKey(t), Index: 0})
	require.NoError(t, err)
	_, ok := seen[string(otherCreator)]
	assert.False(t, ok)
}

func newKey(t *testing.T) ed25519.PublicKey {
	pub, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	return pub
}
