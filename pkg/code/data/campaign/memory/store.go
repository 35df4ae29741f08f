package memory

import (
	"context"
	"sync"
	"time"

	"github.com/code-payments/affiliate-market/pkg/code/data/campaign"
)

type store struct {
	mu      sync.Mutex
	records []*campaign.Record
	last    uint64
}

// New returns a new in memory campaign.Store
func New() campaign.Store {
	return &store{}
}

// Put implements campaign.Store.Put
func (s *store) Put(_ context.Context, data *campaign.Record) error {
	if err := data.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if item := s.findByAddress(data.Address); item != nil {
		return campaign.ErrCampaignExists
	}
	if item := s.findByCollectionMint(data.CollectionMint); item != nil {
		return campaign.ErrCampaignExists
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

// Update implements campaign.Store.Update
func (s *store) Update(_ context.Context, data *campaign.Record) error {
	if err := data.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item := s.findByAddress(data.Address)
	if item == nil {
		return campaign.ErrCampaignNotFound
	}
	if item.Version != data.Version {
		return campaign.ErrStaleVersion
	}

	item.Minted = data.Minted
	item.Version++
	item.LastUpdatedAt = time.Now()
	item.CopyTo(data)

	return nil
}

// GetByAddress implements campaign.Store.GetByAddress
func (s *store) GetByAddress(_ context.Context, address string) (*campaign.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if item := s.findByAddress(address); item != nil {
		cloned := item.Clone()
		return &cloned, nil
	}
	return nil, campaign.ErrCampaignNotFound
}

// GetByCollectionMint implements campaign.Store.GetByCollectionMint
func (s *store) GetByCollectionMint(_ context.Context, collectionMint string) (*campaign.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if item := s.findByCollectionMint(collectionMint); item != nil {
		cloned := item.Clone()
		return &cloned, nil
	}
	return nil, campaign.ErrCampaignNotFound
}

// Snapshot captures the current state of the store, and returns a function
// that restores it.
func (s *store) Snapshot() func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := make([]*campaign.Record, len(s.records))
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

func (s *store) findByAddress(address string) *campaign.Record {
	for _, item := range s.records {
		if item.Address == address {
			return item
		}
	}
	return nil
}

func (s *store) findByCollectionMint(collectionMint string) *campaign.Record {
	for _, item := range s.records {
		if item.CollectionMint == collectionMint {
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
