package crowdfunding

import (
	"context"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/soltips-server/pkg/ledger"
	"github.com/code-payments/soltips-server/pkg/solana/crowdfunding"
)

func (p *program) sendSupporterDonation(ctx context.Context, ic *ledger.InvokeContext, instruction *crowdfunding.SendSupporterDonationInstruction) error {
	accounts := instruction.Accounts
	args := instruction.Args

	log := p.log.WithFields(logrus.Fields{
		"method":  "sendSupporterDonation",
		"creator": base58.Encode(accounts.Creator),
	})

	if err := requireSigner(ic, accounts.Signer); err != nil {
		return err
	}

	creator, err := loadCreator(ic, accounts.Creator)
	if err != nil {
		return err
	}

	if err := requireAddress(creator.Owner, accounts.Receiver); err != nil {
		return err
	}

	feeCollector, err := p.conf.getFeeCollector(ctx)
	if err != nil {
		log.WithError(err).Warn("fee collector is unavailable")
		return errors.Wrap(ledger.ErrInvalidAccountData, err.Error())
	}
	if err := requireAddress(feeCollector, accounts.FeeCollector); err != nil {
		return err
	}

	if err := requireMaxLength(args.Name, crowdfunding.MaxDonationNameLength); err != nil {
		return err
	}
	if err := requireMaxLength(args.Message, crowdfunding.MaxDonationMessageLength); err != nil {
		return err
	}

	if err := requirePositive(uint64(args.Quantity)); err != nil {
		return err
	}
	amount, err := checkedMul(creator.PricePerDonation, uint64(args.Quantity))
	if err != nil {
		return err
	}
	if err := requirePositive(amount); err != nil {
		return err
	}

	fees, err := checkedMul(amount, crowdfunding.FeePercent)
	if err != nil {
		return err
	}
	fees /= 100
	net, err := checkedSub(amount, fees)
	if err != nil {
		return err
	}

	// The record lives at the next ordinal. A client that raced another
	// donation derived a stale address and must resubmit.
	donationAddress, donationBump, err := crowdfunding.GetSupporterDonationAddress(&crowdfunding.GetSupporterDonationAddressArgs{
		Creator: accounts.Creator,
		Index:   creator.SupportersCount,
	})
	if err != nil {
		return err
	}
	if err := requireAddress(donationAddress, accounts.SupporterDonation); err != nil {
		return err
	}

	if err := ic.Transfer(accounts.Signer, accounts.FeeCollector, fees); err != nil {
		return err
	}
	if err := ic.Transfer(accounts.Signer, accounts.Receiver, net); err != nil {
		return err
	}

	if err := initAccount(ic, accounts.Signer, accounts.SupporterDonation, crowdfunding.SupporterDonationAccountSize, ledger.ErrAccountAlreadyInUse); err != nil {
		return err
	}

	record := &crowdfunding.SupporterDonationAccount{
		Supporter: accounts.Signer,
		Creator:   accounts.Creator,
		Name:      args.Name,
		Message:   args.Message,
		Amount:    amount,
		Fees:      fees,
		Item:      creator.DonationItem,
		Quantity:  args.Quantity,
		Timestamp: ic.Now().Unix(),
		Bump:      donationBump,
	}
	if err := ic.SetData(accounts.SupporterDonation, record.Marshal()); err != nil {
		return err
	}

	creator.SupporterDonationsAmount, err = checkedAdd(creator.SupporterDonationsAmount, amount)
	if err != nil {
		return err
	}
	creator.SupportersCount, err = checkedAdd(creator.SupportersCount, 1)
	if err != nil {
		return err
	}
	if err := ic.SetData(accounts.Creator, creator.Marshal()); err != nil {
		return err
	}

	ic.Log("Donation of %d lamports (%d fees) to %s", amount, fees, creator.Username)
	return nil
}
