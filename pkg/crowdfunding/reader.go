package crowdfunding

import (
	"bytes"
	"context"
	"crypto/ed25519"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/soltips-server/pkg/cache"
	"github.com/code-payments/soltips-server/pkg/ledger"
	"github.com/code-payments/soltips-server/pkg/metrics"
	"github.com/code-payments/soltips-server/pkg/solana/crowdfunding"
)

const (
	readerMetricsStructName = "crowdfunding.reader"

	usernameCacheBudget = 10_000
)

var (
	ErrCreatorNotFound  = errors.New("creator not found")
	ErrCampaignNotFound = errors.New("campaign not found")
	ErrInvalidUsername  = errors.New("invalid username")
)

type Creator struct {
	Address ed25519.PublicKey
	State   *crowdfunding.CreatorAccount
}

type SupporterDonation struct {
	Address ed25519.PublicKey
	Index   uint64
	State   *crowdfunding.SupporterDonationAccount
}

type Campaign struct {
	Address ed25519.PublicKey
	Index   uint64

	// Lamports is the campaign's balance, which includes its rent floor.
	Lamports uint64

	State *crowdfunding.CampaignAccount
}

// Reader resolves crowdfunding program state from committed accounts.
// Clients iterate ordinal accounts up to the counters stored on the creator.
type Reader struct {
	log       *logrus.Entry
	accounts  AccountGetter
	usernames cache.Cache
}

func NewReader(accounts AccountGetter) *Reader {
	return &Reader{
		log:       logrus.StandardLogger().WithField("type", "crowdfunding/reader"),
		accounts:  accounts,
		usernames: cache.NewCache(usernameCacheBudget),
	}
}

// GetCreatorByOwner returns the creator registered by owner.
func (r *Reader) GetCreatorByOwner(ctx context.Context, owner ed25519.PublicKey) (*Creator, error) {
	tracer := metrics.TraceMethodCall(ctx, readerMetricsStructName, "GetCreatorByOwner")
	defer tracer.End()

	creator, err := r.getCreatorByOwner(ctx, owner)
	if err != nil && err != ErrCreatorNotFound {
		tracer.OnError(err)
	}
	return creator, err
}

// GetCreatorByUsername returns the creator that reserved username.
func (r *Reader) GetCreatorByUsername(ctx context.Context, username string) (*Creator, error) {
	tracer := metrics.TraceMethodCall(ctx, readerMetricsStructName, "GetCreatorByUsername")
	defer tracer.End()

	owner, err := r.getUsernameOwner(ctx, username)
	if err != nil {
		if err != ErrCreatorNotFound {
			tracer.OnError(err)
		}
		return nil, err
	}

	creator, err := r.getCreatorByOwner(ctx, owner)
	if err != nil && err != ErrCreatorNotFound {
		tracer.OnError(err)
	}
	return creator, err
}

// IsUsernameAvailable reports whether username can still be registered.
// ErrInvalidUsername is returned for names that could never be registered.
func (r *Reader) IsUsernameAvailable(ctx context.Context, username string) (bool, error) {
	if len(username) < crowdfunding.MinUsernameLength || len(username) > crowdfunding.MaxUsernameLength {
		return false, ErrInvalidUsername
	}

	if _, ok := r.usernames.Retrieve(username); ok {
		return false, nil
	}

	address, _, err := crowdfunding.GetUsernameAddress(&crowdfunding.GetUsernameAddressArgs{Username: username})
	if err != nil {
		return false, err
	}

	account, err := r.accounts.Get(ctx, address)
	if err == ledger.ErrAccountNotFound {
		return true, nil
	} else if err != nil {
		return false, errors.Wrap(err, "error getting username account")
	}

	return !account.IsInUse(), nil
}

// GetSupporterDonations returns every donation made to the creator registered
// by owner, in the order they were made.
func (r *Reader) GetSupporterDonations(ctx context.Context, owner ed25519.PublicKey) ([]*SupporterDonation, error) {
	tracer := metrics.TraceMethodCall(ctx, readerMetricsStructName, "GetSupporterDonations")
	defer tracer.End()

	creator, err := r.getCreatorByOwner(ctx, owner)
	if err != nil {
		if err != ErrCreatorNotFound {
			tracer.OnError(err)
		}
		return nil, err
	}

	res := make([]*SupporterDonation, 0, creator.State.SupportersCount)
	for i := uint64(0); i < creator.State.SupportersCount; i++ {
		address, _, err := crowdfunding.GetSupporterDonationAddress(&crowdfunding.GetSupporterDonationAddressArgs{
			Creator: creator.Address,
			Index:   i,
		})
		if err != nil {
			tracer.OnError(err)
			return nil, err
		}

		data, _, err := r.getProgramAccount(ctx, address)
		if err != nil {
			tracer.OnError(err)
			return nil, errors.Wrapf(err, "error getting supporter donation %d", i)
		}

		var state crowdfunding.SupporterDonationAccount
		if err := state.Unmarshal(data); err != nil {
			tracer.OnError(err)
			return nil, errors.Wrapf(err, "invalid supporter donation %d", i)
		}

		res = append(res, &SupporterDonation{
			Address: address,
			Index:   i,
			State:   &state,
		})
	}
	return res, nil
}

// GetCampaigns returns every campaign created by the creator registered by
// owner, in creation order.
func (r *Reader) GetCampaigns(ctx context.Context, owner ed25519.PublicKey) ([]*Campaign, error) {
	tracer := metrics.TraceMethodCall(ctx, readerMetricsStructName, "GetCampaigns")
	defer tracer.End()

	creator, err := r.getCreatorByOwner(ctx, owner)
	if err != nil {
		if err != ErrCreatorNotFound {
			tracer.OnError(err)
		}
		return nil, err
	}

	res := make([]*Campaign, 0, creator.State.CampaignsCount)
	for i := uint64(0); i < creator.State.CampaignsCount; i++ {
		address, _, err := crowdfunding.GetCampaignAddress(&crowdfunding.GetCampaignAddressArgs{
			Creator: creator.Address,
			Index:   i,
		})
		if err != nil {
			tracer.OnError(err)
			return nil, err
		}

		campaign, err := r.getCampaign(ctx, address)
		if err != nil {
			tracer.OnError(err)
			return nil, errors.Wrapf(err, "error getting campaign %d", i)
		}
		campaign.Index = i

		res = append(res, campaign)
	}
	return res, nil
}

// GetCampaign returns the campaign at address. The ordinal index is not
// recoverable from the account alone and is left unset.
func (r *Reader) GetCampaign(ctx context.Context, address ed25519.PublicKey) (*Campaign, error) {
	tracer := metrics.TraceMethodCall(ctx, readerMetricsStructName, "GetCampaign")
	defer tracer.End()

	campaign, err := r.getCampaign(ctx, address)
	if err == ledger.ErrAccountNotFound {
		return nil, ErrCampaignNotFound
	} else if err != nil {
		tracer.OnError(err)
		return nil, err
	}
	return campaign, nil
}

// GetAllCreators scans every creator account owned by the program.
func (r *Reader) GetAllCreators(ctx context.Context) ([]*Creator, error) {
	tracer := metrics.TraceMethodCall(ctx, readerMetricsStructName, "GetAllCreators")
	defer tracer.End()

	accounts, err := r.accounts.GetAllByOwner(ctx, crowdfunding.PROGRAM_ID, crowdfunding.CreatorAccountDiscriminator)
	if err != nil {
		tracer.OnError(err)
		return nil, errors.Wrap(err, "error getting creator accounts")
	}

	res := make([]*Creator, 0, len(accounts))
	for _, account := range accounts {
		var state crowdfunding.CreatorAccount
		if err := state.Unmarshal(account.Data); err != nil {
			r.log.WithError(err).WithField("address", base58.Encode(account.Address)).Warn("skipping invalid creator account")
			continue
		}

		res = append(res, &Creator{
			Address: account.Address,
			State:   &state,
		})
	}

	tracer.AddAttribute("count", len(res))
	return res, nil
}

func (r *Reader) getCreatorByOwner(ctx context.Context, owner ed25519.PublicKey) (*Creator, error) {
	address, _, err := crowdfunding.GetCreatorAddress(&crowdfunding.GetCreatorAddressArgs{Owner: owner})
	if err != nil {
		return nil, err
	}

	data, _, err := r.getProgramAccount(ctx, address)
	if err == ledger.ErrAccountNotFound {
		return nil, ErrCreatorNotFound
	} else if err != nil {
		return nil, err
	}

	var state crowdfunding.CreatorAccount
	if err := state.Unmarshal(data); err != nil {
		return nil, errors.Wrap(err, "invalid creator account")
	}

	return &Creator{
		Address: address,
		State:   &state,
	}, nil
}

// getUsernameOwner resolves the owner that reserved username. Reservations
// never change hands, so resolved owners are cached.
func (r *Reader) getUsernameOwner(ctx context.Context, username string) (ed25519.PublicKey, error) {
	if cached, ok := r.usernames.Retrieve(username); ok {
		return cached.(ed25519.PublicKey), nil
	}

	address, _, err := crowdfunding.GetUsernameAddress(&crowdfunding.GetUsernameAddressArgs{Username: username})
	if err != nil {
		return nil, err
	}

	data, _, err := r.getProgramAccount(ctx, address)
	if err == ledger.ErrAccountNotFound {
		return nil, ErrCreatorNotFound
	} else if err != nil {
		return nil, err
	}

	var state crowdfunding.CreatorUsernameAccount
	if err := state.Unmarshal(data); err != nil {
		return nil, errors.Wrap(err, "invalid username account")
	}

	if err := r.usernames.Insert(username, state.Owner, 1); err != nil && err != cache.ErrKeyExists {
		r.log.WithError(err).Warn("failure caching username owner")
	}
	return state.Owner, nil
}

func (r *Reader) getCampaign(ctx context.Context, address ed25519.PublicKey) (*Campaign, error) {
	data, lamports, err := r.getProgramAccount(ctx, address)
	if err != nil {
		return nil, err
	}

	var state crowdfunding.CampaignAccount
	if err := state.Unmarshal(data); err != nil {
		return nil, errors.Wrap(err, "invalid campaign account")
	}

	return &Campaign{
		Address:  address,
		Lamports: lamports,
		State:    &state,
	}, nil
}

// getProgramAccount returns ledger.ErrAccountNotFound for accounts that don't
// exist or aren't owned by the crowdfunding program.
func (r *Reader) getProgramAccount(ctx context.Context, address ed25519.PublicKey) ([]byte, uint64, error) {
	account, err := r.accounts.Get(ctx, address)
	if err != nil {
		return nil, 0, err
	}

	if !bytes.Equal(account.Owner, crowdfunding.PROGRAM_ID) {
		return nil, 0, ledger.ErrAccountNotFound
	}

	return account.Data, account.Lamports, nil
}
