package ledger

import (
	"bytes"
	"crypto/ed25519"
	"errors"
	"time"

	"github.com/mr-tron/base58"
)

// Account is the persisted state of a single address on the ledger.
type Account struct {
	Address ed25519.PublicKey

	Lamports uint64
	Owner    ed25519.PublicKey
	Data     []byte

	// Version is incremented on every commit. A zero version refers to an
	// account that has never been committed.
	Version uint64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewAccount returns an uncommitted, empty account at address owned by the
// system program.
func NewAccount(address ed25519.PublicKey) *Account {
	return &Account{
		Address: address,
		Owner:   SystemProgramID,
	}
}

func (a *Account) Validate() error {
	if len(a.Address) != ed25519.PublicKeySize {
		return errors.New("address is required")
	}

	if len(a.Owner) != ed25519.PublicKeySize {
		return errors.New("owner is required")
	}

	return nil
}

// IsSystemOwned reports whether the account is a plain wallet owned by the
// system program.
func (a *Account) IsSystemOwned() bool {
	return bytes.Equal(a.Owner, SystemProgramID)
}

// IsInUse reports whether the account holds data or has been assigned to a
// program, in which case it cannot be allocated again.
func (a *Account) IsInUse() bool {
	return len(a.Data) > 0 || !a.IsSystemOwned()
}

// HasDiscriminator reports whether the account data starts with prefix.
func (a *Account) HasDiscriminator(prefix []byte) bool {
	return bytes.HasPrefix(a.Data, prefix)
}

func (a *Account) AddressString() string {
	return base58.Encode(a.Address)
}

func (a *Account) Clone() Account {
	var cloned Account
	a.CopyTo(&cloned)
	return cloned
}

func (a *Account) CopyTo(dst *Account) {
	dst.Address = cloneKey(a.Address)

	dst.Lamports = a.Lamports
	dst.Owner = cloneKey(a.Owner)
	if a.Data != nil {
		dst.Data = make([]byte, len(a.Data))
		copy(dst.Data, a.Data)
	} else {
		dst.Data = nil
	}

	dst.Version = a.Version

	dst.CreatedAt = a.CreatedAt
	dst.UpdatedAt = a.UpdatedAt
}

func cloneKey(key ed25519.PublicKey) ed25519.PublicKey {
	if key == nil {
		return nil
	}

	cloned := make(ed25519.PublicKey, len(key))
	copy(cloned, key)
	return cloned
}
