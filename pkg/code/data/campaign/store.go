package campaign

import (
	"context"
	"errors"
)

var (
	ErrCampaignNotFound = errors.New("campaign not found")
	ErrCampaignExists   = errors.New("campaign already exists")
	ErrStaleVersion     = errors.New("campaign version is stale")
)

type Store interface {
	// Put creates a new campaign. ErrCampaignExists is returned if a campaign
	// already exists at the address or for the collection mint.
	Put(ctx context.Context, record *Record) error

	// Update saves the mutable state of a campaign. ErrStaleVersion is returned
	// if the record was modified since it was read.
	Update(ctx context.Context, record *Record) error

	// GetByAddress gets a campaign by its address. ErrCampaignNotFound is
	// returned if no DB record exists.
	GetByAddress(ctx context.Context, address string) (*Record, error)

	// GetByCollectionMint gets a campaign by the collection it sells into.
	// ErrCampaignNotFound is returned if no DB record exists.
	GetByCollectionMint(ctx context.Context, collectionMint string) (*Record, error)
}
