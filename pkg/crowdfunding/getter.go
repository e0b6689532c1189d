package crowdfunding

import (
	"context"
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/code-payments/soltips-server/pkg/ledger"
	"github.com/code-payments/soltips-server/pkg/rpc"
)

// AccountGetter provides read access to committed accounts. It is satisfied by
// ledger.Store for in-process readers and by NewRPCAccountGetter for remote
// ones.
type AccountGetter interface {
	// Get returns ledger.ErrAccountNotFound if the account doesn't exist.
	Get(ctx context.Context, address ed25519.PublicKey) (*ledger.Account, error)

	GetAllByOwner(ctx context.Context, owner ed25519.PublicKey, discriminator []byte) ([]*ledger.Account, error)
}

type rpcAccountGetter struct {
	client rpc.Client
}

// NewRPCAccountGetter returns an AccountGetter backed by a JSON-RPC endpoint.
func NewRPCAccountGetter(client rpc.Client) AccountGetter {
	return &rpcAccountGetter{
		client: client,
	}
}

func (g *rpcAccountGetter) Get(_ context.Context, address ed25519.PublicKey) (*ledger.Account, error) {
	info, err := g.client.GetAccountInfo(address)
	if err == rpc.ErrNoAccountInfo {
		return nil, ledger.ErrAccountNotFound
	} else if err != nil {
		return nil, err
	}

	return toLedgerAccount(info), nil
}

func (g *rpcAccountGetter) GetAllByOwner(_ context.Context, owner ed25519.PublicKey, discriminator []byte) ([]*ledger.Account, error) {
	infos, err := g.client.GetProgramAccounts(owner, discriminator)
	if err != nil {
		return nil, errors.Wrap(err, "error getting program accounts")
	}

	res := make([]*ledger.Account, len(infos))
	for i, info := range infos {
		res[i] = toLedgerAccount(info)
	}
	return res, nil
}

func toLedgerAccount(info *rpc.AccountInfo) *ledger.Account {
	return &ledger.Account{
		Address:  info.Address,
		Lamports: info.Lamports,
		Owner:    info.Owner,
		Data:     info.Data,
	}
}
