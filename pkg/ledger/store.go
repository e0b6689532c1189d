package ledger

import (
	"context"
	"crypto/ed25519"
	"errors"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrAccountExists   = errors.New("account already exists")
	ErrStaleVersion    = errors.New("account version is stale")
)

type Store interface {
	// Get returns the last committed state of the account at address.
	// ErrAccountNotFound is returned if the account has never been committed.
	Get(ctx context.Context, address ed25519.PublicKey) (*Account, error)

	// GetAllByOwner returns every account owned by owner whose data starts with
	// discriminator. An empty discriminator matches all accounts of the owner.
	GetAllByOwner(ctx context.Context, owner ed25519.PublicKey, discriminator []byte) ([]*Account, error)

	// Commit atomically writes all accounts. Accounts with a zero version are
	// created and fail with ErrAccountExists if already present. All other
	// accounts must match the stored version, otherwise ErrStaleVersion is
	// returned. On success, the versions and timestamps of the provided
	// accounts are updated to the committed state.
	Commit(ctx context.Context, accounts ...*Account) error
}
