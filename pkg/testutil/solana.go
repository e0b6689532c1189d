package testutil

import (
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/require"
)

func GenerateSolanaKeypair(t *testing.T) ed25519.PrivateKey {
	_, p, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	return p
}

func GenerateSolanaKeys(t *testing.T, n int) []ed25519.PublicKey {
	keys := make([]ed25519.PublicKey, n)
	for i := 0; i < n; i++ {
		p, _, err := ed25519.GenerateKey(nil)
		require.NoError(t, err)
		keys[i] = p
	}
	return keys
}

// NewFundedWallet returns a new keypair whose account holds lamports on the
// ledger served by s.
func NewFundedWallet(t *testing.T, s *LedgerServer, lamports uint64) ed25519.PrivateKey {
	wallet := GenerateSolanaKeypair(t)

	_, err := s.Client.RequestAirdrop(wallet.Public().(ed25519.PublicKey), lamports)
	require.NoError(t, err)

	return wallet
}
