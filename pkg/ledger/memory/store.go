package memory

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"sort"
	"sync"
	"time"

	"github.com/code-payments/soltips-server/pkg/ledger"
)

type store struct {
	mu       sync.Mutex
	accounts map[string]*ledger.Account
}

// New returns a new in memory ledger.Store
func New() ledger.Store {
	return &store{
		accounts: make(map[string]*ledger.Account),
	}
}

func (s *store) reset() {
	s.mu.Lock()
	s.accounts = make(map[string]*ledger.Account)
	s.mu.Unlock()
}

// Get implements ledger.Store.Get
func (s *store) Get(_ context.Context, address ed25519.PublicKey) (*ledger.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.accounts[string(address)]
	if !ok {
		return nil, ledger.ErrAccountNotFound
	}

	cloned := item.Clone()
	return &cloned, nil
}

// GetAllByOwner implements ledger.Store.GetAllByOwner
func (s *store) GetAllByOwner(_ context.Context, owner ed25519.PublicKey, discriminator []byte) ([]*ledger.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var res []*ledger.Account
	for _, item := range s.accounts {
		if !bytes.Equal(item.Owner, owner) {
			continue
		}
		if !item.HasDiscriminator(discriminator) {
			continue
		}

		cloned := item.Clone()
		res = append(res, &cloned)
	}

	sort.Slice(res, func(i, j int) bool {
		if !res[i].CreatedAt.Equal(res[j].CreatedAt) {
			return res[i].CreatedAt.Before(res[j].CreatedAt)
		}
		return bytes.Compare(res[i].Address, res[j].Address) < 0
	})

	return res, nil
}

// Commit implements ledger.Store.Commit
func (s *store) Commit(_ context.Context, accounts ...*ledger.Account) error {
	for _, account := range accounts {
		if err := account.Validate(); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Check everything before writing anything, so a failure leaves the
	// store untouched.
	seen := make(map[string]struct{})
	for _, account := range accounts {
		key := string(account.Address)
		if _, ok := seen[key]; ok {
			return ledger.ErrStaleVersion
		}
		seen[key] = struct{}{}

		existing, ok := s.accounts[key]
		if account.Version == 0 {
			if ok {
				return ledger.ErrAccountExists
			}
			continue
		}

		if !ok || existing.Version != account.Version {
			return ledger.ErrStaleVersion
		}
	}

	now := time.Now()
	for _, account := range accounts {
		if account.Version == 0 {
			account.CreatedAt = now
		}
		account.Version++
		account.UpdatedAt = now

		cloned := account.Clone()
		s.accounts[string(account.Address)] = &cloned
	}

	return nil
}
