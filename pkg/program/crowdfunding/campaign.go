package crowdfunding

import (
	"github.com/code-payments/soltips-server/pkg/ledger"
	"github.com/code-payments/soltips-server/pkg/solana/crowdfunding"
)

func (p *program) createCampaign(ic *ledger.InvokeContext, instruction *crowdfunding.CreateCampaignInstruction) error {
	accounts := instruction.Accounts
	args := instruction.Args

	creator, err := loadCreatorForOwner(ic, accounts.Signer, accounts.Creator)
	if err != nil {
		return err
	}

	if err := requireMaxLength(args.Name, crowdfunding.MaxCampaignNameLength); err != nil {
		return err
	}
	if err := requireMaxLength(args.Description, crowdfunding.MaxCampaignDescriptionLength); err != nil {
		return err
	}

	campaignAddress, campaignBump, err := crowdfunding.GetCampaignAddress(&crowdfunding.GetCampaignAddressArgs{
		Creator: accounts.Creator,
		Index:   creator.CampaignsCount,
	})
	if err != nil {
		return err
	}
	if err := requireAddress(campaignAddress, accounts.Campaign); err != nil {
		return err
	}

	if err := initAccount(ic, accounts.Signer, accounts.Campaign, crowdfunding.CampaignAccountSize, ledger.ErrAccountAlreadyInUse); err != nil {
		return err
	}

	campaign := &crowdfunding.CampaignAccount{
		Owner:                 accounts.Signer,
		Name:                  args.Name,
		Description:           args.Description,
		TargetAmount:          args.TargetAmount,
		IsTargetAmountVisible: args.IsTargetAmountVisible,
		Bump:                  campaignBump,
	}
	if err := ic.SetData(accounts.Campaign, campaign.Marshal()); err != nil {
		return err
	}

	creator.CampaignsCount, err = checkedAdd(creator.CampaignsCount, 1)
	if err != nil {
		return err
	}
	return ic.SetData(accounts.Creator, creator.Marshal())
}

func (p *program) makeCampaignDonation(ic *ledger.InvokeContext, instruction *crowdfunding.MakeCampaignDonationInstruction) error {
	accounts := instruction.Accounts
	args := instruction.Args

	if err := requireSigner(ic, accounts.Signer); err != nil {
		return err
	}

	campaign, _, err := loadCampaign(ic, accounts.Campaign)
	if err != nil {
		return err
	}

	if err := requirePositive(args.Amount); err != nil {
		return err
	}

	campaign.AmountDonated, err = checkedAdd(campaign.AmountDonated, args.Amount)
	if err != nil {
		return err
	}

	if err := ic.Transfer(accounts.Signer, accounts.Campaign, args.Amount); err != nil {
		return err
	}
	return ic.SetData(accounts.Campaign, campaign.Marshal())
}

func (p *program) withdrawCampaignFunds(ic *ledger.InvokeContext, instruction *crowdfunding.WithdrawCampaignFundsInstruction) error {
	accounts := instruction.Accounts
	args := instruction.Args

	if err := requireSigner(ic, accounts.Signer); err != nil {
		return err
	}

	campaign, account, err := loadCampaign(ic, accounts.Campaign)
	if err != nil {
		return err
	}

	if err := requireOwner(campaign.Owner, accounts.Signer); err != nil {
		return err
	}
	if err := requirePositive(args.Amount); err != nil {
		return err
	}

	// Lamports sent to the campaign outside of donations are never withdrawable.
	amountWithdrawn, err := checkedAdd(campaign.AmountWithdrawn, args.Amount)
	if err != nil {
		return err
	}
	if amountWithdrawn > campaign.AmountDonated {
		return crowdfunding.ErrorCodeInsufficientFundsAfterWithdraw
	}

	// The campaign must stay rent exempt after the withdrawal.
	rentFloor := ic.Rent().MinimumBalance(len(account.Data))
	if args.Amount > account.Lamports || account.Lamports-args.Amount < rentFloor {
		return crowdfunding.ErrorCodeInsufficientFundsAfterWithdraw
	}

	campaign.AmountWithdrawn = amountWithdrawn

	if err := ic.Transfer(accounts.Campaign, accounts.Signer, args.Amount); err != nil {
		return err
	}
	return ic.SetData(accounts.Campaign, campaign.Marshal())
}
