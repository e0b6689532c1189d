package crowdfunding

import (
	"crypto/ed25519"

	"github.com/code-payments/soltips-server/pkg/ledger"
	"github.com/code-payments/soltips-server/pkg/solana/crowdfunding"
)

func (p *program) registerCreator(ic *ledger.InvokeContext, instruction *crowdfunding.RegisterCreatorInstruction) error {
	accounts := instruction.Accounts
	args := instruction.Args

	if err := requireSigner(ic, accounts.Signer); err != nil {
		return err
	}

	if err := requireLength(args.Username, crowdfunding.MinUsernameLength, crowdfunding.MaxUsernameLength); err != nil {
		return err
	}
	if err := requireMaxLength(args.Fullname, crowdfunding.MaxFullnameLength); err != nil {
		return err
	}
	if err := requireMaxLength(args.Bio, crowdfunding.MaxBioLength); err != nil {
		return err
	}

	creatorAddress, creatorBump, err := crowdfunding.GetCreatorAddress(&crowdfunding.GetCreatorAddressArgs{
		Owner: accounts.Signer,
	})
	if err != nil {
		return err
	}
	if err := requireAddress(creatorAddress, accounts.Creator); err != nil {
		return err
	}

	usernameAddress, usernameBump, err := crowdfunding.GetUsernameAddress(&crowdfunding.GetUsernameAddressArgs{
		Username: args.Username,
	})
	if err != nil {
		return err
	}
	if err := requireAddress(usernameAddress, accounts.CreatorUsername); err != nil {
		return err
	}

	// The reservation is checked first, so that a taken username is reported
	// as such even when the signer is already registered.
	if err := initAccount(ic, accounts.Signer, accounts.CreatorUsername, crowdfunding.CreatorUsernameAccountSize, crowdfunding.ErrorCodeUsernameAlreadyExists); err != nil {
		return err
	}
	if err := initAccount(ic, accounts.Signer, accounts.Creator, crowdfunding.CreatorAccountSize, crowdfunding.ErrorCodeCreatorAlreadyExists); err != nil {
		return err
	}

	reservation := &crowdfunding.CreatorUsernameAccount{
		Owner: accounts.Signer,
		Bump:  usernameBump,
	}
	if err := ic.SetData(accounts.CreatorUsername, reservation.Marshal()); err != nil {
		return err
	}

	creator := crowdfunding.NewCreatorAccount(accounts.Signer, args.Username, args.Fullname, args.Bio, creatorBump)
	if err := ic.SetData(accounts.Creator, creator.Marshal()); err != nil {
		return err
	}

	ic.Log("Registered creator %s", args.Username)
	return nil
}

func (p *program) updateCreatorProfile(ic *ledger.InvokeContext, instruction *crowdfunding.UpdateCreatorProfileInstruction) error {
	accounts := instruction.Accounts
	args := instruction.Args

	creator, err := loadCreatorForOwner(ic, accounts.Signer, accounts.Creator)
	if err != nil {
		return err
	}

	if err := requireMaxLength(args.Fullname, crowdfunding.MaxFullnameLength); err != nil {
		return err
	}
	if err := requireMaxLength(args.Bio, crowdfunding.MaxBioLength); err != nil {
		return err
	}
	if err := requireMaxLength(args.ImageUrl, crowdfunding.MaxImageUrlLength); err != nil {
		return err
	}
	if err := requireLinks(args.SocialLinks); err != nil {
		return err
	}

	creator.Fullname = args.Fullname
	creator.Bio = args.Bio
	creator.ImageUrl = args.ImageUrl
	creator.SocialLinks = args.SocialLinks

	return ic.SetData(accounts.Creator, creator.Marshal())
}

func (p *program) updateCreatorPage(ic *ledger.InvokeContext, instruction *crowdfunding.UpdateCreatorPageInstruction) error {
	accounts := instruction.Accounts
	args := instruction.Args

	creator, err := loadCreatorForOwner(ic, accounts.Signer, accounts.Creator)
	if err != nil {
		return err
	}

	if err := requirePositive(args.PricePerDonation); err != nil {
		return err
	}
	if err := requireMaxLength(args.DonationItem, crowdfunding.MaxDonationItemLength); err != nil {
		return err
	}
	if err := requireMaxLength(args.ThemeColor, crowdfunding.MaxThemeColorLength); err != nil {
		return err
	}
	if err := requireMaxLength(args.ThanksMessage, crowdfunding.MaxThanksMessageLength); err != nil {
		return err
	}

	creator.IsSupportersCountVisible = args.IsSupportersCountVisible
	creator.PricePerDonation = args.PricePerDonation
	creator.DonationItem = args.DonationItem
	creator.ThemeColor = args.ThemeColor
	creator.ThanksMessage = args.ThanksMessage

	return ic.SetData(accounts.Creator, creator.Marshal())
}

// loadCreatorForOwner loads the creator at address and requires the signer to
// be its owner.
func loadCreatorForOwner(ic *ledger.InvokeContext, signer, address ed25519.PublicKey) (*crowdfunding.CreatorAccount, error) {
	if err := requireSigner(ic, signer); err != nil {
		return nil, err
	}

	creator, err := loadCreator(ic, address)
	if err != nil {
		return nil, err
	}

	if err := requireOwner(creator.Owner, signer); err != nil {
		return nil, err
	}
	return creator, nil
}
