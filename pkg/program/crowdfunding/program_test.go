package crowdfunding_test

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/soltips-server/pkg/ledger"
	"github.com/code-payments/soltips-server/pkg/ledger/memory"
	"github.com/code-payments/soltips-server/pkg/ledger/system"
	crowdfunding_program "github.com/code-payments/soltips-server/pkg/program/crowdfunding"
	"github.com/code-payments/soltips-server/pkg/solana"
	"github.com/code-payments/soltips-server/pkg/solana/crowdfunding"
	solana_system "github.com/code-payments/soltips-server/pkg/solana/system"
)

const startingBalance = 10_000_000_000

type wallet struct {
	pub  ed25519.PublicKey
	priv ed25519.PrivateKey
}

type testEnv struct {
	ctx          context.Context
	store        ledger.Store
	executor     *ledger.Executor
	feeCollector ed25519.PublicKey
}

func setup(t *testing.T) *testEnv {
	feeCollector := newKey(t)
	store := memory.New()

	return &testEnv{
		ctx:          context.Background(),
		store:        store,
		feeCollector: feeCollector,
		executor: ledger.NewExecutor(
			store,
			ledger.WithTestOverrides(&ledger.TestOverrides{
				EnableAirdrops:     true,
				MaxAirdropLamports: startingBalance,
			}),
			system.New(),
			crowdfunding_program.New(crowdfunding_program.WithTestOverrides(&crowdfunding_program.TestOverrides{
				FeeCollector: feeCollector,
			})),
		),
	}
}

func TestRegisterCreator(t *testing.T) {
	env := setup(t)

	alice := env.newFundedWallet(t)
	bob := env.newFundedWallet(t)

	res := env.execute(t, []wallet{alice}, registerCreator(t, alice.pub, "alice", "Alice", "writes things"))
	require.Nil(t, res.Err)

	creatorAddress := getCreatorAddress(t, alice.pub)
	creator := env.getCreator(t, creatorAddress)
	assert.EqualValues(t, alice.pub, creator.Owner)
	assert.Equal(t, "alice", creator.Username)
	assert.Equal(t, "Alice", creator.Fullname)
	assert.Equal(t, "writes things", creator.Bio)
	assert.True(t, creator.IsSupportersCountVisible)
	assert.EqualValues(t, crowdfunding.DefaultPricePerDonation, creator.PricePerDonation)
	assert.Equal(t, crowdfunding.DefaultDonationItem, creator.DonationItem)
	assert.Equal(t, crowdfunding.DefaultThemeColor, creator.ThemeColor)
	assert.Zero(t, creator.SupportersCount)
	assert.Zero(t, creator.CampaignsCount)
	assert.Zero(t, creator.SupporterDonationsAmount)
	assert.Empty(t, creator.SocialLinks)

	reservationAccount, err := env.store.Get(env.ctx, getUsernameAddress(t, "alice"))
	require.NoError(t, err)
	var reservation crowdfunding.CreatorUsernameAccount
	require.NoError(t, reservation.Unmarshal(reservationAccount.Data))
	assert.EqualValues(t, alice.pub, reservation.Owner)

	rent := env.executor.Rent(env.ctx)
	expectedRent := rent.MinimumBalance(crowdfunding.CreatorAccountSize) + rent.MinimumBalance(crowdfunding.CreatorUsernameAccountSize)
	assert.EqualValues(t, startingBalance-expectedRent, env.balance(t, alice.pub))

	res = env.execute(t, []wallet{bob}, registerCreator(t, bob.pub, "alice", "", ""))
	assertProgramError(t, res, 0, crowdfunding.ErrorCodeUsernameAlreadyExists)

	res = env.execute(t, []wallet{alice}, registerCreator(t, alice.pub, "alice", "", ""))
	assertProgramError(t, res, 0, crowdfunding.ErrorCodeUsernameAlreadyExists)

	res = env.execute(t, []wallet{alice}, registerCreator(t, alice.pub, "alice2", "", ""))
	assertProgramError(t, res, 0, crowdfunding.ErrorCodeCreatorAlreadyExists)

	_, err = env.store.Get(env.ctx, getUsernameAddress(t, "alice2"))
	assert.Equal(t, ledger.ErrAccountNotFound, err)
}

func TestRegisterCreator_Validation(t *testing.T) {
	env := setup(t)

	alice := env.newFundedWallet(t)
	bob := env.newFundedWallet(t)

	for _, username := range []string{"", "ab", string(repeat('u', crowdfunding.MaxUsernameLength+1))} {
		res := env.execute(t, []wallet{alice}, registerCreator(t, alice.pub, username, "", ""))
		assertProgramError(t, res, 0, crowdfunding.ErrorCodeInvalidFieldLength)
	}

	res := env.execute(t, []wallet{alice}, registerCreator(t, alice.pub, "alice", string(repeat('f', crowdfunding.MaxFullnameLength+1)), ""))
	assertProgramError(t, res, 0, crowdfunding.ErrorCodeInvalidFieldLength)

	res = env.execute(t, []wallet{alice}, registerCreator(t, alice.pub, "alice", "", string(repeat('b', crowdfunding.MaxBioLength+1))))
	assertProgramError(t, res, 0, crowdfunding.ErrorCodeInvalidFieldLength)

	// Registering into someone else's creator address
	instruction := crowdfunding.NewRegisterCreatorInstruction(
		&crowdfunding.RegisterCreatorInstructionAccounts{
			Signer:          alice.pub,
			Creator:         getCreatorAddress(t, bob.pub),
			CreatorUsername: getUsernameAddress(t, "alice"),
		},
		&crowdfunding.RegisterCreatorInstructionArgs{
			Username: "alice",
		},
	)
	res = env.execute(t, []wallet{alice}, instruction)
	assertProgramError(t, res, 0, crowdfunding.ErrorCodeAddressMismatch)

	instruction = crowdfunding.NewRegisterCreatorInstruction(
		&crowdfunding.RegisterCreatorInstructionAccounts{
			Signer:          alice.pub,
			Creator:         getCreatorAddress(t, alice.pub),
			CreatorUsername: getUsernameAddress(t, "bob"),
		},
		&crowdfunding.RegisterCreatorInstructionArgs{
			Username: "alice",
		},
	)
	res = env.execute(t, []wallet{alice}, instruction)
	assertProgramError(t, res, 0, crowdfunding.ErrorCodeAddressMismatch)

	assert.EqualValues(t, startingBalance, env.balance(t, alice.pub))
}

func TestUpdateCreator(t *testing.T) {
	env := setup(t)

	alice := env.newFundedWallet(t)
	mallory := env.newFundedWallet(t)
	creatorAddress := env.registerCreator(t, alice, "alice")

	profile := &crowdfunding.UpdateCreatorProfileInstructionArgs{
		Fullname:    "Alice Liddell",
		Bio:         "down the rabbit hole",
		ImageUrl:    "https://example.com/alice.png",
		SocialLinks: []string{"https://x.com/alice", "https://github.com/alice"},
	}
	res := env.execute(t, []wallet{alice}, updateCreatorProfile(alice.pub, creatorAddress, profile))
	require.Nil(t, res.Err)

	page := &crowdfunding.UpdateCreatorPageInstructionArgs{
		IsSupportersCountVisible: false,
		PricePerDonation:         5_000_000,
		DonationItem:             "tea",
		ThemeColor:               "#000000",
		ThanksMessage:            "thank you!",
	}
	res = env.execute(t, []wallet{alice}, updateCreatorPage(alice.pub, creatorAddress, page))
	require.Nil(t, res.Err)

	creator := env.getCreator(t, creatorAddress)
	assert.Equal(t, "alice", creator.Username)
	assert.Equal(t, profile.Fullname, creator.Fullname)
	assert.Equal(t, profile.Bio, creator.Bio)
	assert.Equal(t, profile.ImageUrl, creator.ImageUrl)
	assert.Equal(t, profile.SocialLinks, creator.SocialLinks)
	assert.False(t, creator.IsSupportersCountVisible)
	assert.EqualValues(t, 5_000_000, creator.PricePerDonation)
	assert.Equal(t, "tea", creator.DonationItem)
	assert.Equal(t, "#000000", creator.ThemeColor)
	assert.Equal(t, "thank you!", creator.ThanksMessage)

	res = env.execute(t, []wallet{mallory}, updateCreatorProfile(mallory.pub, creatorAddress, &crowdfunding.UpdateCreatorProfileInstructionArgs{Fullname: "pwned"}))
	assertProgramError(t, res, 0, crowdfunding.ErrorCodeInvalidSigner)

	res = env.execute(t, []wallet{mallory}, updateCreatorPage(mallory.pub, creatorAddress, &crowdfunding.UpdateCreatorPageInstructionArgs{PricePerDonation: 1}))
	assertProgramError(t, res, 0, crowdfunding.ErrorCodeInvalidSigner)

	res = env.execute(t, []wallet{alice}, updateCreatorPage(alice.pub, creatorAddress, &crowdfunding.UpdateCreatorPageInstructionArgs{PricePerDonation: 0}))
	assertProgramError(t, res, 0, crowdfunding.ErrorCodeInvalidAmount)

	res = env.execute(t, []wallet{alice}, updateCreatorPage(alice.pub, creatorAddress, &crowdfunding.UpdateCreatorPageInstructionArgs{
		PricePerDonation: 1,
		ThemeColor:       "#0000000",
	}))
	assertProgramError(t, res, 0, crowdfunding.ErrorCodeInvalidFieldLength)

	res = env.execute(t, []wallet{alice}, updateCreatorProfile(alice.pub, creatorAddress, &crowdfunding.UpdateCreatorProfileInstructionArgs{
		SocialLinks: []string{"1", "2", "3", "4", "5", "6"},
	}))
	assertProgramError(t, res, 0, crowdfunding.ErrorCodeInvalidFieldLength)

	res = env.execute(t, []wallet{alice}, updateCreatorProfile(alice.pub, creatorAddress, &crowdfunding.UpdateCreatorProfileInstructionArgs{
		ImageUrl: string(repeat('i', crowdfunding.MaxImageUrlLength+1)),
	}))
	require.NotNil(t, res.Err)

	assert.Equal(t, creator, env.getCreator(t, creatorAddress))
}

func TestSendSupporterDonation(t *testing.T) {
	env := setup(t)

	alice := env.newFundedWallet(t)
	bob := env.newFundedWallet(t)
	creatorAddress := env.registerCreator(t, alice, "alice")

	res := env.execute(t, []wallet{alice}, updateCreatorPage(alice.pub, creatorAddress, &crowdfunding.UpdateCreatorPageInstructionArgs{
		IsSupportersCountVisible: true,
		PricePerDonation:         100_000,
		DonationItem:             "coffee",
	}))
	require.Nil(t, res.Err)

	aliceBalance := env.balance(t, alice.pub)

	res = env.execute(t, []wallet{bob}, env.sendSupporterDonation(t, bob.pub, creatorAddress, alice.pub, 0, "bob", "keep it up", 3))
	require.Nil(t, res.Err)

	donationRent := env.executor.Rent(env.ctx).MinimumBalance(crowdfunding.SupporterDonationAccountSize)
	assert.EqualValues(t, aliceBalance+297_000, env.balance(t, alice.pub))
	assert.EqualValues(t, 3_000, env.balance(t, env.feeCollector))
	assert.EqualValues(t, startingBalance-300_000-donationRent, env.balance(t, bob.pub))

	creator := env.getCreator(t, creatorAddress)
	assert.EqualValues(t, 1, creator.SupportersCount)
	assert.EqualValues(t, 300_000, creator.SupporterDonationsAmount)

	donation := env.getSupporterDonation(t, getSupporterDonationAddress(t, creatorAddress, 0))
	assert.EqualValues(t, bob.pub, donation.Supporter)
	assert.EqualValues(t, creatorAddress, donation.Creator)
	assert.Equal(t, "bob", donation.Name)
	assert.Equal(t, "keep it up", donation.Message)
	assert.EqualValues(t, 300_000, donation.Amount)
	assert.EqualValues(t, 3_000, donation.Fees)
	assert.Equal(t, "coffee", donation.Item)
	assert.EqualValues(t, 3, donation.Quantity)
	assert.InDelta(t, time.Now().Unix(), donation.Timestamp, 60)

	// A stale ordinal, as submitted by a client that lost a race
	res = env.execute(t, []wallet{bob}, env.sendSupporterDonation(t, bob.pub, creatorAddress, alice.pub, 0, "bob", "", 1))
	assertProgramError(t, res, 0, crowdfunding.ErrorCodeAddressMismatch)

	res = env.execute(t, []wallet{bob}, env.sendSupporterDonation(t, bob.pub, creatorAddress, alice.pub, 1, "bob", "again", 1))
	require.Nil(t, res.Err)

	creator = env.getCreator(t, creatorAddress)
	assert.EqualValues(t, 2, creator.SupportersCount)
	assert.EqualValues(t, 400_000, creator.SupporterDonationsAmount)
	assert.EqualValues(t, 4_000, env.balance(t, env.feeCollector))
}

func TestSendSupporterDonation_Validation(t *testing.T) {
	env := setup(t)

	alice := env.newFundedWallet(t)
	bob := env.newFundedWallet(t)
	creatorAddress := env.registerCreator(t, alice, "alice")

	res := env.execute(t, []wallet{bob}, env.sendSupporterDonation(t, bob.pub, creatorAddress, alice.pub, 0, "bob", "", 0))
	assertProgramError(t, res, 0, crowdfunding.ErrorCodeInvalidAmount)

	res = env.execute(t, []wallet{bob}, env.sendSupporterDonation(t, bob.pub, creatorAddress, bob.pub, 0, "bob", "", 1))
	assertProgramError(t, res, 0, crowdfunding.ErrorCodeAddressMismatch)

	instruction := env.sendSupporterDonation(t, bob.pub, creatorAddress, alice.pub, 0, "bob", "", 1)
	instruction.Accounts[4].PublicKey = bob.pub
	res = env.execute(t, []wallet{bob}, instruction)
	assertProgramError(t, res, 0, crowdfunding.ErrorCodeAddressMismatch)

	res = env.execute(t, []wallet{bob}, env.sendSupporterDonation(t, bob.pub, creatorAddress, alice.pub, 0, string(repeat('n', crowdfunding.MaxDonationNameLength+1)), "", 1))
	assertProgramError(t, res, 0, crowdfunding.ErrorCodeInvalidFieldLength)

	poor := newWallet(t)
	_, err := env.executor.Airdrop(env.ctx, poor.pub, 1_000)
	require.NoError(t, err)
	res = env.execute(t, []wallet{poor}, env.sendSupporterDonation(t, poor.pub, creatorAddress, alice.pub, 0, "poor", "", 1))
	assertProgramError(t, res, 0, crowdfunding.ErrorCodeInsufficientFunds)
	assert.EqualValues(t, 1_000, env.balance(t, poor.pub))

	res = env.execute(t, []wallet{alice}, updateCreatorPage(alice.pub, creatorAddress, &crowdfunding.UpdateCreatorPageInstructionArgs{
		PricePerDonation: math.MaxUint64/2 + 1,
	}))
	require.Nil(t, res.Err)

	res = env.execute(t, []wallet{bob}, env.sendSupporterDonation(t, bob.pub, creatorAddress, alice.pub, 0, "bob", "", 2))
	assertProgramError(t, res, 0, crowdfunding.ErrorCodeArithmeticOverflow)

	creator := env.getCreator(t, creatorAddress)
	assert.Zero(t, creator.SupportersCount)
	assert.Zero(t, creator.SupporterDonationsAmount)
	assert.EqualValues(t, startingBalance, env.balance(t, bob.pub))
	assert.Zero(t, env.balance(t, env.feeCollector))
}

func TestCampaign(t *testing.T) {
	env := setup(t)

	alice := env.newFundedWallet(t)
	bob := env.newFundedWallet(t)
	creatorAddress := env.registerCreator(t, alice, "alice")
	campaignAddress := getCampaignAddress(t, creatorAddress, 0)

	res := env.execute(t, []wallet{bob}, createCampaign(bob.pub, creatorAddress, campaignAddress, "stolen", 1))
	assertProgramError(t, res, 0, crowdfunding.ErrorCodeInvalidSigner)

	res = env.execute(t, []wallet{alice}, createCampaign(alice.pub, creatorAddress, campaignAddress, "new album", 1_000_000_000))
	require.Nil(t, res.Err)

	assert.EqualValues(t, 1, env.getCreator(t, creatorAddress).CampaignsCount)

	campaign := env.getCampaign(t, campaignAddress)
	assert.EqualValues(t, alice.pub, campaign.Owner)
	assert.Equal(t, "new album", campaign.Name)
	assert.EqualValues(t, 1_000_000_000, campaign.TargetAmount)
	assert.True(t, campaign.IsTargetAmountVisible)
	assert.Zero(t, campaign.AmountDonated)
	assert.Zero(t, campaign.AmountWithdrawn)

	rentFloor := env.executor.Rent(env.ctx).MinimumBalance(crowdfunding.CampaignAccountSize)
	assert.EqualValues(t, rentFloor, env.balance(t, campaignAddress))

	res = env.execute(t, []wallet{alice}, createCampaign(alice.pub, creatorAddress, campaignAddress, "again", 1))
	assertProgramError(t, res, 0, crowdfunding.ErrorCodeAddressMismatch)

	res = env.execute(t, []wallet{bob}, makeCampaignDonation(bob.pub, campaignAddress, 0))
	assertProgramError(t, res, 0, crowdfunding.ErrorCodeInvalidAmount)

	res = env.execute(t, []wallet{bob}, makeCampaignDonation(bob.pub, campaignAddress, 500_000_000))
	require.Nil(t, res.Err)
	assert.EqualValues(t, rentFloor+500_000_000, env.balance(t, campaignAddress))
	assert.EqualValues(t, startingBalance-500_000_000, env.balance(t, bob.pub))
	assert.EqualValues(t, 500_000_000, env.getCampaign(t, campaignAddress).AmountDonated)

	res = env.execute(t, []wallet{bob}, withdrawCampaignFunds(bob.pub, campaignAddress, 100_000_000))
	assertProgramError(t, res, 0, crowdfunding.ErrorCodeInvalidSigner)

	res = env.execute(t, []wallet{alice}, withdrawCampaignFunds(alice.pub, campaignAddress, 0))
	assertProgramError(t, res, 0, crowdfunding.ErrorCodeInvalidAmount)

	res = env.execute(t, []wallet{alice}, withdrawCampaignFunds(alice.pub, campaignAddress, 700_000_000))
	assertProgramError(t, res, 0, crowdfunding.ErrorCodeInsufficientFundsAfterWithdraw)

	aliceBalance := env.balance(t, alice.pub)

	res = env.execute(t, []wallet{alice}, withdrawCampaignFunds(alice.pub, campaignAddress, 200_000_000))
	require.Nil(t, res.Err)
	assert.EqualValues(t, aliceBalance+200_000_000, env.balance(t, alice.pub))
	assert.EqualValues(t, rentFloor+300_000_000, env.balance(t, campaignAddress))

	campaign = env.getCampaign(t, campaignAddress)
	assert.EqualValues(t, 500_000_000, campaign.AmountDonated)
	assert.EqualValues(t, 200_000_000, campaign.AmountWithdrawn)

	res = env.execute(t, []wallet{alice}, withdrawCampaignFunds(alice.pub, campaignAddress, 300_000_001))
	assertProgramError(t, res, 0, crowdfunding.ErrorCodeInsufficientFundsAfterWithdraw)

	res = env.execute(t, []wallet{alice}, withdrawCampaignFunds(alice.pub, campaignAddress, 300_000_000))
	require.Nil(t, res.Err)
	assert.EqualValues(t, rentFloor, env.balance(t, campaignAddress))
	assert.EqualValues(t, 500_000_000, env.getCampaign(t, campaignAddress).AmountWithdrawn)
}

func TestCampaign_WithdrawBoundedByDonations(t *testing.T) {
	env := setup(t)

	alice := env.newFundedWallet(t)
	bob := env.newFundedWallet(t)
	creatorAddress := env.registerCreator(t, alice, "alice")
	campaignAddress := getCampaignAddress(t, creatorAddress, 0)

	res := env.execute(t, []wallet{alice}, createCampaign(alice.pub, creatorAddress, campaignAddress, "zine", 1_000))
	require.Nil(t, res.Err)

	res = env.execute(t, []wallet{bob}, makeCampaignDonation(bob.pub, campaignAddress, 100))
	require.Nil(t, res.Err)

	res = env.execute(t, []wallet{bob}, solana_system.Transfer(bob.pub, campaignAddress, 1_000_000))
	require.Nil(t, res.Err)

	rentFloor := env.executor.Rent(env.ctx).MinimumBalance(crowdfunding.CampaignAccountSize)
	assert.EqualValues(t, rentFloor+1_000_100, env.balance(t, campaignAddress))

	for _, amount := range []uint64{1_000_100, 101} {
		res = env.execute(t, []wallet{alice}, withdrawCampaignFunds(alice.pub, campaignAddress, amount))
		assertProgramError(t, res, 0, crowdfunding.ErrorCodeInsufficientFundsAfterWithdraw)
	}

	campaign := env.getCampaign(t, campaignAddress)
	assert.EqualValues(t, 100, campaign.AmountDonated)
	assert.Zero(t, campaign.AmountWithdrawn)
	assert.EqualValues(t, rentFloor+1_000_100, env.balance(t, campaignAddress))

	res = env.execute(t, []wallet{alice}, withdrawCampaignFunds(alice.pub, campaignAddress, 100))
	require.Nil(t, res.Err)

	res = env.execute(t, []wallet{alice}, withdrawCampaignFunds(alice.pub, campaignAddress, 1))
	assertProgramError(t, res, 0, crowdfunding.ErrorCodeInsufficientFundsAfterWithdraw)

	campaign = env.getCampaign(t, campaignAddress)
	assert.EqualValues(t, 100, campaign.AmountWithdrawn)
	assert.EqualValues(t, rentFloor+1_000_000, env.balance(t, campaignAddress))
}

func TestCampaign_RejectsSubstitutedAccounts(t *testing.T) {
	env := setup(t)

	alice := env.newFundedWallet(t)
	bob := env.newFundedWallet(t)
	creatorAddress := env.registerCreator(t, alice, "alice")

	for _, address := range []ed25519.PublicKey{creatorAddress, bob.pub, newKey(t)} {
		res := env.execute(t, []wallet{bob}, makeCampaignDonation(bob.pub, address, 100))
		require.NotNil(t, res.Err)
		require.NotNil(t, res.Err.InstructionError())
		assert.Equal(t, solana.InstructionErrorInvalidAccountData, res.Err.InstructionError().ErrorKey())

		res = env.execute(t, []wallet{alice}, withdrawCampaignFunds(alice.pub, address, 100))
		require.NotNil(t, res.Err)
		require.NotNil(t, res.Err.InstructionError())
		assert.Equal(t, solana.InstructionErrorInvalidAccountData, res.Err.InstructionError().ErrorKey())
	}

	assert.EqualValues(t, startingBalance, env.balance(t, bob.pub))
}

func TestCampaign_AtomicTransaction(t *testing.T) {
	env := setup(t)

	alice := env.newFundedWallet(t)
	bob := env.newFundedWallet(t)
	creatorAddress := env.registerCreator(t, alice, "alice")
	campaignAddress := getCampaignAddress(t, creatorAddress, 0)

	res := env.execute(t, []wallet{alice}, createCampaign(alice.pub, creatorAddress, campaignAddress, "tour", 0))
	require.Nil(t, res.Err)

	res = env.execute(
		t,
		[]wallet{bob},
		makeCampaignDonation(bob.pub, campaignAddress, 100_000_000),
		withdrawCampaignFunds(bob.pub, campaignAddress, 100_000_000),
	)
	assertProgramError(t, res, 1, crowdfunding.ErrorCodeInvalidSigner)

	assert.EqualValues(t, startingBalance, env.balance(t, bob.pub))
	assert.Zero(t, env.getCampaign(t, campaignAddress).AmountDonated)

	secondCampaign := getCampaignAddress(t, creatorAddress, 1)
	res = env.execute(
		t,
		[]wallet{alice},
		createCampaign(alice.pub, creatorAddress, secondCampaign, "merch", 0),
		makeCampaignDonation(alice.pub, secondCampaign, 1_000),
	)
	require.Nil(t, res.Err)
	assert.EqualValues(t, 2, env.getCreator(t, creatorAddress).CampaignsCount)
	assert.EqualValues(t, 1_000, env.getCampaign(t, secondCampaign).AmountDonated)
}

func TestUnknownInstruction(t *testing.T) {
	env := setup(t)

	alice := env.newFundedWallet(t)

	res := env.execute(t, []wallet{alice}, solana.NewInstruction(
		crowdfunding.PROGRAM_ID,
		[]byte{1, 2, 3, 4, 5, 6, 7, 8},
		solana.NewAccountMeta(alice.pub, true),
	))
	require.NotNil(t, res.Err)
	require.NotNil(t, res.Err.InstructionError())
	assert.Equal(t, solana.InstructionErrorInvalidInstructionData, res.Err.InstructionError().ErrorKey())
}

func newWallet(t *testing.T) wallet {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	return wallet{pub: pub, priv: priv}
}

func newKey(t *testing.T) ed25519.PublicKey {
	return newWallet(t).pub
}

func (e *testEnv) newFundedWallet(t *testing.T) wallet {
	w := newWallet(t)
	_, err := e.executor.Airdrop(e.ctx, w.pub, startingBalance)
	require.NoError(t, err)
	return w
}

func (e *testEnv) execute(t *testing.T, signers []wallet, instructions ...solana.Instruction) *ledger.ExecutionResult {
	tx := solana.NewTransaction(signers[0].pub, instructions...)

	var blockhash solana.Blockhash
	_, err := rand.Read(blockhash[:])
	require.NoError(t, err)
	tx.SetBlockhash(blockhash)

	var keys []ed25519.PrivateKey
	for _, signer := range signers {
		keys = append(keys, signer.priv)
	}
	require.NoError(t, tx.Sign(keys...))

	res, err := e.executor.Execute(e.ctx, tx)
	require.NoError(t, err)
	return res
}

func (e *testEnv) balance(t *testing.T, address ed25519.PublicKey) uint64 {
	account, err := e.store.Get(e.ctx, address)
	if err == ledger.ErrAccountNotFound {
		return 0
	}
	require.NoError(t, err)
	return account.Lamports
}

func (e *testEnv) registerCreator(t *testing.T, w wallet, username string) ed25519.PublicKey {
	res := e.execute(t, []wallet{w}, registerCreator(t, w.pub, username, "", ""))
	require.Nil(t, res.Err)
	return getCreatorAddress(t, w.pub)
}

func (e *testEnv) getCreator(t *testing.T, address ed25519.PublicKey) *crowdfunding.CreatorAccount {
	account, err := e.store.Get(e.ctx, address)
	require.NoError(t, err)
	assert.EqualValues(t, crowdfunding.PROGRAM_ID, account.Owner)

	var creator crowdfunding.CreatorAccount
	require.NoError(t, creator.Unmarshal(account.Data))
	return &creator
}

func (e *testEnv) getSupporterDonation(t *testing.T, address ed25519.PublicKey) *crowdfunding.SupporterDonationAccount {
	account, err := e.store.Get(e.ctx, address)
	require.NoError(t, err)

	var donation crowdfunding.SupporterDonationAccount
	require.NoError(t, donation.Unmarshal(account.Data))
	return &donation
}

func (e *testEnv) getCampaign(t *testing.T, address ed25519.PublicKey) *crowdfunding.CampaignAccount {
	account, err := e.store.Get(e.ctx, address)
	require.NoError(t, err)

	var campaign crowdfunding.CampaignAccount
	require.NoError(t, campaign.Unmarshal(account.Data))
	return &campaign
}

func (e *testEnv) sendSupporterDonation(t *testing.T, supporter, creator, receiver ed25519.PublicKey, index uint64, name, message string, quantity uint16) solana.Instruction {
	return crowdfunding.NewSendSupporterDonationInstruction(
		&crowdfunding.SendSupporterDonationInstructionAccounts{
			Signer:            supporter,
			Creator:           creator,
			SupporterDonation: getSupporterDonationAddress(t, creator, index),
			Receiver:          receiver,
			FeeCollector:      e.feeCollector,
		},
		&crowdfunding.SendSupporterDonationInstructionArgs{
			Name:     name,
			Message:  message,
			Quantity: quantity,
		},
	)
}

func registerCreator(t *testing.T, owner ed25519.PublicKey, username, fullname, bio string) solana.Instruction {
	return crowdfunding.NewRegisterCreatorInstruction(
		&crowdfunding.RegisterCreatorInstructionAccounts{
			Signer:          owner,
			Creator:         getCreatorAddress(t, owner),
			CreatorUsername: getUsernameAddress(t, username),
		},
		&crowdfunding.RegisterCreatorInstructionArgs{
			Username: username,
			Fullname: fullname,
			Bio:      bio,
		},
	)
}

func updateCreatorProfile(signer, creator ed25519.PublicKey, args *crowdfunding.UpdateCreatorProfileInstructionArgs) solana.Instruction {
	return crowdfunding.NewUpdateCreatorProfileInstruction(
		&crowdfunding.UpdateCreatorProfileInstructionAccounts{
			Signer:  signer,
			Creator: creator,
		},
		args,
	)
}

func updateCreatorPage(signer, creator ed25519.PublicKey, args *crowdfunding.UpdateCreatorPageInstructionArgs) solana.Instruction {
	return crowdfunding.NewUpdateCreatorPageInstruction(
		&crowdfunding.UpdateCreatorPageInstructionAccounts{
			Signer:  signer,
			Creator: creator,
		},
		args,
	)
}

func createCampaign(signer, creator, campaign ed25519.PublicKey, name string, target uint64) solana.Instruction {
	return crowdfunding.NewCreateCampaignInstruction(
		&crowdfunding.CreateCampaignInstructionAccounts{
			Signer:   signer,
			Creator:  creator,
			Campaign: campaign,
		},
		&crowdfunding.CreateCampaignInstructionArgs{
			Name:                  name,
			Description:           "",
			TargetAmount:          target,
			IsTargetAmountVisible: true,
		},
	)
}

func makeCampaignDonation(signer, campaign ed25519.PublicKey, amount uint64) solana.Instruction {
	return crowdfunding.NewMakeCampaignDonationInstruction(
		&crowdfunding.MakeCampaignDonationInstructionAccounts{
			Signer:   signer,
			Campaign: campaign,
		},
		&crowdfunding.MakeCampaignDonationInstructionArgs{
			Amount: amount,
		},
	)
}

func withdrawCampaignFunds(signer, campaign ed25519.PublicKey, amount uint64) solana.Instruction {
	return crowdfunding.NewWithdrawCampaignFundsInstruction(
		&crowdfunding.WithdrawCampaignFundsInstructionAccounts{
			Signer:   signer,
			Campaign: campaign,
		},
		&crowdfunding.WithdrawCampaignFundsInstructionArgs{
			Amount: amount,
		},
	)
}

func getCreatorAddress(t *testing.T, owner ed25519.PublicKey) ed25519.PublicKey {
	address, _, err := crowdfunding.GetCreatorAddress(&crowdfunding.GetCreatorAddressArgs{Owner: owner})
	require.NoError(t, err)
	return address
}

func getUsernameAddress(t *testing.T, username string) ed25519.PublicKey {
	address, _, err := crowdfunding.GetUsernameAddress(&crowdfunding.GetUsernameAddressArgs{Username: username})
	require.NoError(t, err)
	return address
}

func getSupporterDonationAddress(t *testing.T, creator ed25519.PublicKey, index uint64) ed25519.PublicKey {
	address, _, err := crowdfunding.GetSupporterDonationAddress(&crowdfunding.GetSupporterDonationAddressArgs{
		Creator: creator,
		Index:   index,
	})
	require.NoError(t, err)
	return address
}

func getCampaignAddress(t *testing.T, creator ed25519.PublicKey, index uint64) ed25519.PublicKey {
	address, _, err := crowdfunding.GetCampaignAddress(&crowdfunding.GetCampaignAddressArgs{
		Creator: creator,
		Index:   index,
	})
	require.NoError(t, err)
	return address
}

func assertProgramError(t *testing.T, res *ledger.ExecutionResult, index int, code crowdfunding.ErrorCode) {
	require.NotNil(t, res.Err)
	require.NotNil(t, res.Err.InstructionError())
	assert.Equal(t, index, res.Err.InstructionError().Index)

	actual, ok := crowdfunding.GetErrorCode(res.Err)
	require.True(t, ok, "expected %s, got %v", code.Name(), res.Err)
	assert.Equal(t, code, actual)
}

func repeat(b byte, n int) []byte {
	res := make([]byte, n)
	for i := range res {
		res[i] = b
	}
	return res
}
