package memory

import (
	"context"
	"sync"
	"time"

	"github.com/code-payments/affiliate-market/pkg/code/data/account"
)

type store struct {
	mu      sync.Mutex
	records []*account.Record
	last    uint64
}

// New returns a new in memory account.Store
func New() account.Store {
	return &store{}
}

// Save implements account.Store.Save
func (s *store) Save(_ context.Context, data *account.Record) error {
	if err := data.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item := s.find(data.Address)
	if item == nil {
		if data.Version != 0 {
			return account.ErrStaleVersion
		}

		s.last++

		data.Id = s.last
		data.Version = 1
		data.CreatedAt = time.Now()
		data.LastUpdatedAt = data.CreatedAt

		c := data.Clone()
		s.records = append(s.records, &c)

		return nil
	}

	if item.Version != data.Version {
		return account.ErrStaleVersion
	}

	item.Owner = data.Owner
	item.Lamports = data.Lamports
	item.DataSize = data.DataSize
	item.Version++
	item.LastUpdatedAt = time.Now()
	item.CopyTo(data)

	return nil
}

// Get implements account.Store.Get
func (s *store) Get(_ context.Context, address string) (*account.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if item := s.find(address); item != nil {
		cloned := item.Clone()
		return &cloned, nil
	}
	return nil, account.ErrAccountNotFound
}

// Snapshot captures the current state of the store, and returns a function
// that restores it.
func (s *store) Snapshot() func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := make([]*account.Record, len(s.records))
	for i, item := range s.records {
		cloned := item.Clone()
		records[i] = &cloned
	}
	last := s.last

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		s.records = records
		s.last = last
	}
}

func (s *store) find(address string) *account.Record {
	for _, item := range s.records {
		if item.Address == address {
			return item
		}
	}
	return nil
}

func (s *store) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = nil
	s.last = 0
}
