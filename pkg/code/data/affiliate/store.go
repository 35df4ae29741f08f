package affiliate

import (
	"context"
	"errors"
)

var (
	ErrStatsNotFound = errors.New("affiliate stats not found")
	ErrStaleVersion  = errors.New("affiliate stats version is stale")
)

type Store interface {
	// InitializeIfAbsent creates zeroed stats for an affiliate if none exist.
	// Existing stats are never overwritten. The record is populated with the
	// stored state either way.
	InitializeIfAbsent(ctx context.Context, record *Record) error

	// Update saves the running totals of an affiliate. ErrStaleVersion is
	// returned if the record was modified since it was read.
	Update(ctx context.Context, record *Record) error

	// Get gets the stats of an affiliate within a campaign. ErrStatsNotFound is
	// returned if no DB record exists.
	Get(ctx context.Context, campaign, affiliate string) (*Record, error)

	// GetAllByCampaign gets the stats of every affiliate that referred a sale
	// for a campaign. ErrStatsNotFound is returned if there are none.
	GetAllByCampaign(ctx context.Context, campaign string) ([]*Record, error)
}
