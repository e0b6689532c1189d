package crowdfunding

import (
	"context"
	"crypto/ed25519"
	"time"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/soltips-server/pkg/metrics"
	"github.com/code-payments/soltips-server/pkg/retry"
	"github.com/code-payments/soltips-server/pkg/retry/backoff"
	"github.com/code-payments/soltips-server/pkg/rpc"
	"github.com/code-payments/soltips-server/pkg/solana"
	"github.com/code-payments/soltips-server/pkg/solana/crowdfunding"
)

const (
	clientMetricsStructName = "crowdfunding.client"

	defaultMaxOrdinalAttempts = 5
)

// Client builds, signs and submits crowdfunding instructions. Instructions
// that allocate an ordinal account are resubmitted against fresh counters when
// another transaction claimed the ordinal first.
type Client struct {
	log          *logrus.Entry
	rpc          rpc.Client
	reader       *Reader
	feeCollector ed25519.PublicKey

	ordinalRetryStrategies []retry.Strategy
}

func NewClient(rpcClient rpc.Client, feeCollector ed25519.PublicKey) *Client {
	return &Client{
		log:          logrus.StandardLogger().WithField("type", "crowdfunding/client"),
		rpc:          rpcClient,
		reader:       NewReader(NewRPCAccountGetter(rpcClient)),
		feeCollector: feeCollector,
		ordinalRetryStrategies: []retry.Strategy{
			retry.RetriableWhen(IsOrdinalRace),
			retry.Limit(defaultMaxOrdinalAttempts),
			retry.BackoffWithJitter(backoff.BinaryExponential(25*time.Millisecond), 500*time.Millisecond, 0.1),
		},
	}
}

// Reader returns a reader over the same RPC endpoint.
func (c *Client) Reader() *Reader {
	return c.reader
}

// IsOrdinalRace reports whether err was caused by a concurrent transaction
// claiming the same ordinal account.
func IsOrdinalRace(err error) bool {
	if crowdfunding.IsErrorCode(err, crowdfunding.ErrorCodeAddressMismatch) {
		return true
	}

	txErr, ok := errors.Cause(err).(*solana.TransactionError)
	if !ok || txErr.InstructionError() == nil {
		return false
	}
	return txErr.InstructionError().ErrorKey() == solana.InstructionErrorAccountAlreadyInUse
}

// RegisterCreator registers the signer as a creator with a unique username.
func (c *Client) RegisterCreator(ctx context.Context, signer ed25519.PrivateKey, args *crowdfunding.RegisterCreatorInstructionArgs) (solana.Signature, error) {
	tracer := metrics.TraceMethodCall(ctx, clientMetricsStructName, "RegisterCreator")
	defer tracer.End()

	owner := signer.Public().(ed25519.PublicKey)

	creator, _, err := crowdfunding.GetCreatorAddress(&crowdfunding.GetCreatorAddressArgs{Owner: owner})
	if err != nil {
		tracer.OnError(err)
		return solana.Signature{}, err
	}

	reservation, _, err := crowdfunding.GetUsernameAddress(&crowdfunding.GetUsernameAddressArgs{Username: args.Username})
	if err != nil {
		tracer.OnError(err)
		return solana.Signature{}, err
	}

	sig, err := c.submit(signer, crowdfunding.NewRegisterCreatorInstruction(
		&crowdfunding.RegisterCreatorInstructionAccounts{
			Signer:          owner,
			Creator:         creator,
			CreatorUsername: reservation,
		},
		args,
	))
	if err != nil {
		tracer.OnError(err)
	}
	return sig, err
}

// UpdateProfile replaces the signer's public profile.
func (c *Client) UpdateProfile(ctx context.Context, signer ed25519.PrivateKey, args *crowdfunding.UpdateCreatorProfileInstructionArgs) (solana.Signature, error) {
	tracer := metrics.TraceMethodCall(ctx, clientMetricsStructName, "UpdateProfile")
	defer tracer.End()

	owner := signer.Public().(ed25519.PublicKey)

	creator, _, err := crowdfunding.GetCreatorAddress(&crowdfunding.GetCreatorAddressArgs{Owner: owner})
	if err != nil {
		tracer.OnError(err)
		return solana.Signature{}, err
	}

	sig, err := c.submit(signer, crowdfunding.NewUpdateCreatorProfileInstruction(
		&crowdfunding.UpdateCreatorProfileInstructionAccounts{
			Signer:  owner,
			Creator: creator,
		},
		args,
	))
	if err != nil {
		tracer.OnError(err)
	}
	return sig, err
}

// UpdatePage replaces the signer's donation page settings.
func (c *Client) UpdatePage(ctx context.Context, signer ed25519.PrivateKey, args *crowdfunding.UpdateCreatorPageInstructionArgs) (solana.Signature, error) {
	tracer := metrics.TraceMethodCall(ctx, clientMetricsStructName, "UpdatePage")
	defer tracer.End()

	owner := signer.Public().(ed25519.PublicKey)

	creator, _, err := crowdfunding.GetCreatorAddress(&crowdfunding.GetCreatorAddressArgs{Owner: owner})
	if err != nil {
		tracer.OnError(err)
		return solana.Signature{}, err
	}

	sig, err := c.submit(signer, crowdfunding.NewUpdateCreatorPageInstruction(
		&crowdfunding.UpdateCreatorPageInstructionAccounts{
			Signer:  owner,
			Creator: creator,
		},
		args,
	))
	if err != nil {
		tracer.OnError(err)
	}
	return sig, err
}

// SendSupporterDonation pays the creator registered by creatorOwner for
// args.Quantity items at the creator's current price. The donation record is
// allocated at the creator's next supporter ordinal.
func (c *Client) SendSupporterDonation(ctx context.Context, signer ed25519.PrivateKey, creatorOwner ed25519.PublicKey, args *crowdfunding.SendSupporterDonationInstructionArgs) (*SupporterDonation, solana.Signature, error) {
	tracer := metrics.TraceMethodCall(ctx, clientMetricsStructName, "SendSupporterDonation")
	defer tracer.End()

	var donation ed25519.PublicKey
	var index uint64
	var sig solana.Signature
	_, err := retry.RetryContext(ctx, func() error {
		creator, err := c.reader.GetCreatorByOwner(ctx, creatorOwner)
		if err != nil {
			return err
		}

		index = creator.State.SupportersCount
		donation, _, err = crowdfunding.GetSupporterDonationAddress(&crowdfunding.GetSupporterDonationAddressArgs{
			Creator: creator.Address,
			Index:   index,
		})
		if err != nil {
			return err
		}

		sig, err = c.submit(signer, crowdfunding.NewSendSupporterDonationInstruction(
			&crowdfunding.SendSupporterDonationInstructionAccounts{
				Signer:            signer.Public().(ed25519.PublicKey),
				Creator:           creator.Address,
				SupporterDonation: donation,
				Receiver:          creator.State.Owner,
				FeeCollector:      c.feeCollector,
			},
			args,
		))
		if IsOrdinalRace(err) {
			c.log.WithFields(logrus.Fields{
				"method":  "SendSupporterDonation",
				"creator": base58.Encode(creator.Address),
				"index":   index,
			}).Debug("supporter ordinal was claimed concurrently")
		}
		return err
	}, c.ordinalRetryStrategies...)
	if err != nil {
		tracer.OnError(err)
		return nil, sig, err
	}

	data, _, err := c.reader.getProgramAccount(ctx, donation)
	if err != nil {
		tracer.OnError(err)
		return nil, sig, errors.Wrap(err, "error getting supporter donation")
	}

	var state crowdfunding.SupporterDonationAccount
	if err := state.Unmarshal(data); err != nil {
		tracer.OnError(err)
		return nil, sig, err
	}

	return &SupporterDonation{
		Address: donation,
		Index:   index,
		State:   &state,
	}, sig, nil
}

// CreateCampaign creates a campaign at the signer's next campaign ordinal and
// returns its address.
func (c *Client) CreateCampaign(ctx context.Context, signer ed25519.PrivateKey, args *crowdfunding.CreateCampaignInstructionArgs) (ed25519.PublicKey, solana.Signature, error) {
	tracer := metrics.TraceMethodCall(ctx, clientMetricsStructName, "CreateCampaign")
	defer tracer.End()

	owner := signer.Public().(ed25519.PublicKey)

	var campaign ed25519.PublicKey
	var sig solana.Signature
	_, err := retry.RetryContext(ctx, func() error {
		creator, err := c.reader.GetCreatorByOwner(ctx, owner)
		if err != nil {
			return err
		}

		campaign, _, err = crowdfunding.GetCampaignAddress(&crowdfunding.GetCampaignAddressArgs{
			Creator: creator.Address,
			Index:   creator.State.CampaignsCount,
		})
		if err != nil {
			return err
		}

		sig, err = c.submit(signer, crowdfunding.NewCreateCampaignInstruction(
			&crowdfunding.CreateCampaignInstructionAccounts{
				Signer:   owner,
				Creator:  creator.Address,
				Campaign: campaign,
			},
			args,
		))
		return err
	}, c.ordinalRetryStrategies...)
	if err != nil {
		tracer.OnError(err)
		return nil, sig, err
	}

	return campaign, sig, nil
}

// DonateToCampaign moves amount lamports from the signer into the campaign.
func (c *Client) DonateToCampaign(ctx context.Context, signer ed25519.PrivateKey, campaign ed25519.PublicKey, amount uint64) (solana.Signature, error) {
	tracer := metrics.TraceMethodCall(ctx, clientMetricsStructName, "DonateToCampaign")
	defer tracer.End()

	sig, err := c.submit(signer, crowdfunding.NewMakeCampaignDonationInstruction(
		&crowdfunding.MakeCampaignDonationInstructionAccounts{
			Signer:   signer.Public().(ed25519.PublicKey),
			Campaign: campaign,
		},
		&crowdfunding.MakeCampaignDonationInstructionArgs{
			Amount: amount,
		},
	))
	if err != nil {
		tracer.OnError(err)
	}
	return sig, err
}

// WithdrawCampaignFunds moves amount lamports from the campaign to its owner.
func (c *Client) WithdrawCampaignFunds(ctx context.Context, signer ed25519.PrivateKey, campaign ed25519.PublicKey, amount uint64) (solana.Signature, error) {
	tracer := metrics.TraceMethodCall(ctx, clientMetricsStructName, "WithdrawCampaignFunds")
	defer tracer.End()

	sig, err := c.submit(signer, crowdfunding.NewWithdrawCampaignFundsInstruction(
		&crowdfunding.WithdrawCampaignFundsInstructionAccounts{
			Signer:   signer.Public().(ed25519.PublicKey),
			Campaign: campaign,
		},
		&crowdfunding.WithdrawCampaignFundsInstructionArgs{
			Amount: amount,
		},
	))
	if err != nil {
		tracer.OnError(err)
	}
	return sig, err
}

// Withdrawable returns the lamports that can be withdrawn from campaign. It is
// bounded by the donations not yet withdrawn and by the rent floor.
func (c *Client) Withdrawable(campaign *Campaign) (uint64, error) {
	floor, err := c.rpc.GetMinimumBalanceForRentExemption(uint64(crowdfunding.CampaignAccountSize))
	if err != nil {
		return 0, errors.Wrap(err, "error getting rent exemption")
	}

	if campaign.Lamports <= floor || campaign.State.AmountWithdrawn >= campaign.State.AmountDonated {
		return 0, nil
	}

	withdrawable := campaign.Lamports - floor
	if remaining := campaign.State.AmountDonated - campaign.State.AmountWithdrawn; remaining < withdrawable {
		withdrawable = remaining
	}
	return withdrawable, nil
}

// submit signs a transaction paid for by signer. Program failures are returned
// as *solana.TransactionError.
func (c *Client) submit(signer ed25519.PrivateKey, instructions ...solana.Instruction) (solana.Signature, error) {
	blockhash, err := c.rpc.GetLatestBlockhash()
	if err != nil {
		return solana.Signature{}, errors.Wrap(err, "error getting latest blockhash")
	}

	tx := solana.NewTransaction(signer.Public().(ed25519.PublicKey), instructions...)
	tx.SetBlockhash(blockhash)
	if err := tx.Sign(signer); err != nil {
		return solana.Signature{}, errors.Wrap(err, "error signing transaction")
	}

	return c.rpc.SubmitTransaction(tx)
}
