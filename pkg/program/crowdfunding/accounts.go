package crowdfunding

import (
	"bytes"
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/code-payments/soltips-server/pkg/ledger"
	"github.com/code-payments/soltips-server/pkg/solana/crowdfunding"
)

// loadCreator reads the creator record at address and checks that address is
// the creator PDA of the stored owner.
func loadCreator(ic *ledger.InvokeContext, address ed25519.PublicKey) (*crowdfunding.CreatorAccount, error) {
	data, err := loadProgramAccountData(ic, address)
	if err != nil {
		return nil, err
	}

	var creator crowdfunding.CreatorAccount
	if err := creator.Unmarshal(data); err != nil {
		return nil, errors.Wrap(ledger.ErrInvalidAccountData, err.Error())
	}

	if !crowdfunding.VerifyCreatorAddress(address, creator.Owner, creator.Bump) {
		return nil, crowdfunding.ErrorCodeAddressMismatch
	}
	return &creator, nil
}

func loadCampaign(ic *ledger.InvokeContext, address ed25519.PublicKey) (*crowdfunding.CampaignAccount, *ledger.Account, error) {
	data, err := loadProgramAccountData(ic, address)
	if err != nil {
		return nil, nil, err
	}

	var campaign crowdfunding.CampaignAccount
	if err := campaign.Unmarshal(data); err != nil {
		return nil, nil, errors.Wrap(ledger.ErrInvalidAccountData, err.Error())
	}

	account, err := ic.Account(address)
	if err != nil {
		return nil, nil, err
	}
	return &campaign, account, nil
}

func loadProgramAccountData(ic *ledger.InvokeContext, address ed25519.PublicKey) ([]byte, error) {
	account, err := ic.Account(address)
	if err != nil {
		return nil, err
	}

	if !bytes.Equal(account.Owner, crowdfunding.PROGRAM_ID) {
		return nil, errors.Wrap(ledger.ErrInvalidAccountData, "account not owned by program")
	}
	return account.Data, nil
}

// initAccount allocates a new program account at address, paid for by payer.
// An address already holding data or owned by another program fails with
// inUseErr.
func initAccount(ic *ledger.InvokeContext, payer, address ed25519.PublicKey, space int, inUseErr error) error {
	account, err := ic.Account(address)
	if err != nil {
		return err
	}
	if account.IsInUse() {
		return inUseErr
	}

	return ic.CreateAccount(payer, address, crowdfunding.PROGRAM_ID, space)
}
