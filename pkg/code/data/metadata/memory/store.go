package memory

import (
	"context"
	"sync"
	"time"

	"github.com/code-payments/affiliate-market/pkg/code/data/metadata"
)

type store struct {
	mu       sync.Mutex
	records  []*metadata.Record
	editions []*metadata.EditionRecord
	last     uint64
}

// New returns a new in memory metadata.Store
func New() metadata.Store {
	return &store{}
}

// SaveMetadata implements metadata.Store.SaveMetadata
func (s *store) SaveMetadata(_ context.Context, data *metadata.Record) error {
	if err := data.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item := s.findMetadata(data.Address)
	if item == nil {
		if data.Version != 0 {
			return metadata.ErrStaleVersion
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
		return metadata.ErrStaleVersion
	}

	id := item.Id
	mint := item.Mint
	createdAt := item.CreatedAt
	version := item.Version

	data.CopyTo(item)
	item.Id = id
	item.Mint = mint
	item.CreatedAt = createdAt
	item.Version = version + 1
	item.LastUpdatedAt = time.Now()
	item.CopyTo(data)

	return nil
}

// GetMetadata implements metadata.Store.GetMetadata
func (s *store) GetMetadata(_ context.Context, address string) (*metadata.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if item := s.findMetadata(address); item != nil {
		cloned := item.Clone()
		return &cloned, nil
	}
	return nil, metadata.ErrMetadataNotFound
}

// SaveEdition implements metadata.Store.SaveEdition
func (s *store) SaveEdition(_ context.Context, data *metadata.EditionRecord) error {
	if err := data.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if item := s.findEdition(data.Address); item != nil {
		return metadata.ErrEditionExists
	}

	s.last++

	data.Id = s.last
	data.CreatedAt = time.Now()

	c := data.Clone()
	s.editions = append(s.editions, &c)

	return nil
}

// GetEdition implements metadata.Store.GetEdition
func (s *store) GetEdition(_ context.Context, address string) (*metadata.EditionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if item := s.findEdition(address); item != nil {
		cloned := item.Clone()
		return &cloned, nil
	}
	return nil, metadata.ErrEditionNotFound
}

// Snapshot captures the current state of the store, and returns a function
// that restores it.
func (s *store) Snapshot() func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := make([]*metadata.Record, len(s.records))
	for i, item := range s.records {
		cloned := item.Clone()
		records[i] = &cloned
	}
	editions := make([]*metadata.EditionRecord, len(s.editions))
	for i, item := range s.editions {
		cloned := item.Clone()
		editions[i] = &cloned
	}
	last := s.last

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		s.records = records
		s.editions = editions
		s.last = last
	}
}

func (s *store) findMetadata(address string) *metadata.Record {
	for _, item := range s.records {
		if item.Address == address {
			return item
		}
	}
	return nil
}

func (s *store) findEdition(address string) *metadata.EditionRecord {
	for _, item := range s.editions {
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
	s.editions = nil
	s.last = 0
}
