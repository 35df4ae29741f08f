package memory

import (
	"context"
	"sync"
	"time"

	"github.com/code-payments/affiliate-market/pkg/code/data/token"
	"github.com/code-payments/affiliate-market/pkg/pointer"
)

type store struct {
	mu            sync.Mutex
	mints         []*token.MintRecord
	tokenAccounts []*token.AccountRecord
	last          uint64
}

// New returns a new in memory token.Store
func New() token.Store {
	return &store{}
}

// SaveMint implements token.Store.SaveMint
func (s *store) SaveMint(_ context.Context, data *token.MintRecord) error {
	if err := data.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item := s.findMint(data.Address)
	if item == nil {
		if data.Version != 0 {
			return token.ErrStaleVersion
		}

		s.last++

		data.Id = s.last
		data.Version = 1
		data.CreatedAt = time.Now()
		data.LastUpdatedAt = data.CreatedAt

		c := data.Clone()
		s.mints = append(s.mints, &c)

		return nil
	}

	if item.Version != data.Version {
		return token.ErrStaleVersion
	}

	item.Supply = data.Supply
	item.MintAuthority = pointer.Copy(data.MintAuthority)
	item.FreezeAuthority = pointer.Copy(data.FreezeAuthority)
	item.Version++
	item.LastUpdatedAt = time.Now()
	item.CopyTo(data)

	return nil
}

// GetMint implements token.Store.GetMint
func (s *store) GetMint(_ context.Context, address string) (*token.MintRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if item := s.findMint(address); item != nil {
		cloned := item.Clone()
		return &cloned, nil
	}
	return nil, token.ErrMintNotFound
}

// SaveTokenAccount implements token.Store.SaveTokenAccount
func (s *store) SaveTokenAccount(_ context.Context, data *token.AccountRecord) error {
	if err := data.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item := s.findTokenAccount(data.Address)
	if item == nil {
		if data.Version != 0 {
			return token.ErrStaleVersion
		}

		s.last++

		data.Id = s.last
		data.Version = 1
		data.CreatedAt = time.Now()
		data.LastUpdatedAt = data.CreatedAt

		c := data.Clone()
		s.tokenAccounts = append(s.tokenAccounts, &c)

		return nil
	}

	if item.Version != data.Version {
		return token.ErrStaleVersion
	}

	item.Amount = data.Amount
	item.Version++
	item.LastUpdatedAt = time.Now()
	item.CopyTo(data)

	return nil
}

// GetTokenAccount implements token.Store.GetTokenAccount
func (s *store) GetTokenAccount(_ context.Context, address string) (*token.AccountRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if item := s.findTokenAccount(address); item != nil {
		cloned := item.Clone()
		return &cloned, nil
	}
	return nil, token.ErrTokenAccountNotFound
}

// GetTokenAccountsByOwner implements token.Store.GetTokenAccountsByOwner
func (s *store) GetTokenAccountsByOwner(_ context.Context, owner string) ([]*token.AccountRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var res []*token.AccountRecord
	for _, item := range s.tokenAccounts {
		if item.Owner == owner {
			cloned := item.Clone()
			res = append(res, &cloned)
		}
	}

	if len(res) == 0 {
		return nil, token.ErrTokenAccountNotFound
	}
	return res, nil
}

// Snapshot captures the current state of the store, and returns a function
// that restores it.
func (s *store) Snapshot() func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	mints := make([]*token.MintRecord, len(s.mints))
	for i, item := range s.mints {
		cloned := item.Clone()
		mints[i] = &cloned
	}
	tokenAccounts := make([]*token.AccountRecord, len(s.tokenAccounts))
	for i, item := range s.tokenAccounts {
		cloned := item.Clone()
		tokenAccounts[i] = &cloned
	}
	last := s.last

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		s.mints = mints
		s.tokenAccounts = tokenAccounts
		s.last = last
	}
}

func (s *store) findMint(address string) *token.MintRecord {
	for _, item := range s.mints {
		if item.Address == address {
			return item
		}
	}
	return nil
}

func (s *store) findTokenAccount(address string) *token.AccountRecord {
	for _, item := range s.tokenAccounts {
		if item.Address == address {
			return item
		}
	}
	return nil
}

func (s *store) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mints = nil
	s.tokenAccounts = nil
	s.last = 0
}
