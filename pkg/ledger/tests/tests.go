package tests

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/soltips-server/pkg/ledger"
)

func RunTests(t *testing.T, s ledger.Store, teardown func()) {
	for _, tf := range []func(t *testing.T, s ledger.Store){
		testRoundTrip,
		testVersioning,
		testAtomicCommit,
		testGetAllByOwner,
	} {
		tf(t, s)
		teardown()
	}
}

func testRoundTrip(t *testing.T, s ledger.Store) {
	t.Run("testRoundTrip", func(t *testing.T) {
		ctx := context.Background()

		address := newKey(t)
		owner := newKey(t)

		_, err := s.Get(ctx, address)
		assert.Equal(t, ledger.ErrAccountNotFound, err)

		start := time.Now().Add(-time.Second)

		expected := &ledger.Account{
			Address:  address,
			Lamports: 1_000_000,
			Owner:    owner,
			Data:     []byte{1, 2, 3, 4, 0, 0, 0},
		}
		cloned := expected.Clone()

		require.NoError(t, s.Commit(ctx, expected))
		assert.EqualValues(t, 1, expected.Version)
		assert.True(t, expected.CreatedAt.After(start))
		assert.Equal(t, expected.CreatedAt.Unix(), expected.UpdatedAt.Unix())

		actual, err := s.Get(ctx, address)
		require.NoError(t, err)
		assertEquivalentAccounts(t, &cloned, actual)
		assert.EqualValues(t, 1, actual.Version)

		cloned.Version = 0
		assert.Equal(t, ledger.ErrAccountExists, s.Commit(ctx, &cloned))

		wallet := &ledger.Account{
			Address:  newKey(t),
			Lamports: 42,
			Owner:    ledger.SystemProgramID,
		}
		require.NoError(t, s.Commit(ctx, wallet))

		actual, err = s.Get(ctx, wallet.Address)
		require.NoError(t, err)
		assert.EqualValues(t, 42, actual.Lamports)
		assert.Empty(t, actual.Data)
		assert.True(t, actual.IsSystemOwned())
	})
}

func testVersioning(t *testing.T, s ledger.Store) {
	t.Run("testVersioning", func(t *testing.T) {
		ctx := context.Background()

		account := &ledger.Account{
			Address:  newKey(t),
			Lamports: 10,
			Owner:    newKey(t),
			Data:     make([]byte, 16),
		}
		require.NoError(t, s.Commit(ctx, account))

		stale := account.Clone()

		account.Lamports = 20
		account.Data[0] = 0xff
		require.NoError(t, s.Commit(ctx, account))
		assert.EqualValues(t, 2, account.Version)

		stale.Lamports = 30
		assert.Equal(t, ledger.ErrStaleVersion, s.Commit(ctx, &stale))

		actual, err := s.Get(ctx, account.Address)
		require.NoError(t, err)
		assert.EqualValues(t, 20, actual.Lamports)
		assert.EqualValues(t, 2, actual.Version)
		assert.EqualValues(t, 0xff, actual.Data[0])

		missing := &ledger.Account{
			Address: newKey(t),
			Owner:   ledger.SystemProgramID,
			Version: 3,
		}
		assert.Equal(t, ledger.ErrStaleVersion, s.Commit(ctx, missing))
	})
}

func testAtomicCommit(t *testing.T, s ledger.Store) {
	t.Run("testAtomicCommit", func(t *testing.T) {
		ctx := context.Background()

		existing := &ledger.Account{
			Address:  newKey(t),
			Lamports: 100,
			Owner:    ledger.SystemProgramID,
		}
		other := &ledger.Account{
			Address:  newKey(t),
			Lamports: 1,
			Owner:    ledger.SystemProgramID,
		}
		require.NoError(t, s.Commit(ctx, existing, other))

		existing.Lamports = 50
		created := &ledger.Account{
			Address:  newKey(t),
			Lamports: 50,
			Owner:    ledger.SystemProgramID,
		}
		collision := &ledger.Account{
			Address:  other.Address,
			Lamports: 1,
			Owner:    ledger.SystemProgramID,
		}
		assert.Equal(t, ledger.ErrAccountExists, s.Commit(ctx, existing, created, collision))

		actual, err := s.Get(ctx, existing.Address)
		require.NoError(t, err)
		assert.EqualValues(t, 100, actual.Lamports)
		assert.EqualValues(t, 1, actual.Version)

		_, err = s.Get(ctx, created.Address)
		assert.Equal(t, ledger.ErrAccountNotFound, err)

		assert.Equal(t, ledger.ErrStaleVersion, s.Commit(ctx, existing, existing))

		require.NoError(t, s.Commit(ctx, existing, created))
		assert.EqualValues(t, 2, existing.Version)
		assert.EqualValues(t, 1, created.Version)

		actual, err = s.Get(ctx, existing.Address)
		require.NoError(t, err)
		assert.EqualValues(t, 50, actual.Lamports)

		actual, err = s.Get(ctx, created.Address)
		require.NoError(t, err)
		assert.EqualValues(t, 50, actual.Lamports)
	})
}

func testGetAllByOwner(t *testing.T, s ledger.Store) {
	t.Run("testGetAllByOwner", func(t *testing.T) {
		ctx := context.Background()

		program := newKey(t)
		otherProgram := newKey(t)

		discriminator1 := []byte{1, 1, 1, 1, 1, 1, 1, 1}
		discriminator2 := []byte{2, 2, 2, 2, 2, 2, 2, 2}

		var expected1, expected2 []*ledger.Account
		for i := 0; i < 3; i++ {
			account := &ledger.Account{
				Address:  newKey(t),
				Lamports: uint64(i + 1),
				Owner:    program,
				Data:     append(append([]byte{}, discriminator1...), byte(i)),
			}
			require.NoError(t, s.Commit(ctx, account))
			expected1 = append(expected1, account)
		}
		for i := 0; i < 2; i++ {
			account := &ledger.Account{
				Address:  newKey(t),
				Lamports: uint64(i + 1),
				Owner:    program,
				Data:     append(append([]byte{}, discriminator2...), byte(i)),
			}
			require.NoError(t, s.Commit(ctx, account))
			expected2 = append(expected2, account)
		}
		require.NoError(t, s.Commit(ctx, &ledger.Account{
			Address: newKey(t),
			Owner:   otherProgram,
			Data:    discriminator1,
		}))

		actual, err := s.GetAllByOwner(ctx, program, discriminator1)
		require.NoError(t, err)
		assertSameAddresses(t, expected1, actual)

		actual, err = s.GetAllByOwner(ctx, program, discriminator2)
		require.NoError(t, err)
		assertSameAddresses(t, expected2, actual)

		actual, err = s.GetAllByOwner(ctx, program, nil)
		require.NoError(t, err)
		assertSameAddresses(t, append(expected1, expected2...), actual)

		actual, err = s.GetAllByOwner(ctx, newKey(t), discriminator1)
		require.NoError(t, err)
		assert.Empty(t, actual)
	})
}

func assertEquivalentAccounts(t *testing.T, obj1, obj2 *ledger.Account) {
	assert.EqualValues(t, obj1.Address, obj2.Address)
	assert.Equal(t, obj1.Lamports, obj2.Lamports)
	assert.EqualValues(t, obj1.Owner, obj2.Owner)
	assert.Equal(t, obj1.Data, obj2.Data)
}

func assertSameAddresses(t *testing.T, expected, actual []*ledger.Account) {
	require.Len(t, actual, len(expected))

	byAddress := make(map[string]*ledger.Account)
	for _, account := range actual {
		byAddress[string(account.Address)] = account
	}

	for _, account := range expected {
		found, ok := byAddress[string(account.Address)]
		require.True(t, ok)
		assertEquivalentAccounts(t, account, found)
	}
}

func newKey(t *testing.T) ed25519.PublicKey {
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	return pub
}
