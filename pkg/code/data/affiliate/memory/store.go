package memory

import (
	"context"
	"sync"
	"time"

	"github.com/code-payments/affiliate-market/pkg/code/data/affiliate"
)

type store struct {
	mu      sync.Mutex
	records []*affiliate.Record
	last    uint64
}

// New returns a new in memory affiliate.Store
func New() affiliate.Store {
	return &store{}
}

// InitializeIfAbsent implements affiliate.Store.InitializeIfAbsent
func (s *store) InitializeIfAbsent(_ context.Context, data *affiliate.Record) error {
	if err := data.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if item := s.find(data.Campaign, data.Affiliate); item != nil {
		item.CopyTo(data)
		return nil
	}

	s.last++

	data.Id = s.last
	data.TotalMints = 0
	data.TotalEarned = 0
	data.Version = 1
	data.CreatedAt = time.Now()
	data.LastUpdatedAt = data.CreatedAt

	c := data.Clone()
	s.records = append(s.records, &c)

	return nil
}

// Update implements affiliate.Store.Update
func (s *store) Update(_ context.Context, data *affiliate.Record) error {
	if err := data.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item := s.find(data.Campaign, data.Affiliate)
	if item == nil {
		return affiliate.ErrStatsNotFound
	}
	if item.Version != data.Version {
		return affiliate.ErrStaleVersion
	}

	item.TotalMints = data.TotalMints
	item.TotalEarned = data.TotalEarned
	item.Version++
	item.LastUpdatedAt = time.Now()
	item.CopyTo(data)

	return nil
}

// Get implements affiliate.Store.Get
func (s *store) Get(_ context.Context, campaign, affiliateAccount string) (*affiliate.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if item := s.find(campaign, affiliateAccount); item != nil {
		cloned := item.Clone()
		return &cloned, nil
	}
	return nil, affiliate.ErrStatsNotFound
}

// GetAllByCampaign implements affiliate.Store.GetAllByCampaign
func (s *store) GetAllByCampaign(_ context.Context, campaign string) ([]*affiliate.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var res []*affiliate.Record
	for _, item := range s.records {
		if item.Campaign == campaign {
			cloned := item.Clone()
			res = append(res, &cloned)
		}
	}

	if len(res) == 0 {
		return nil, affiliate.ErrStatsNotFound
	}
	return res, nil
}

// Snapshot captures the current state of the store, and returns a function
// that restores it.
func (s *store) Snapshot() func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := make([]*affiliate.Record, len(s.records))
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

func (s *store) find(campaign, affiliateAccount string) *affiliate.Record {
	for _, item := range s.records {
		if item.Campaign == campaign && item.Affiliate == affiliateAccount {
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
