package metadata

import (
	"context"
	"errors"
)

var (
	ErrMetadataNotFound = errors.New("metadata not found")
	ErrEditionNotFound  = errors.New("master edition not found")
	ErrEditionExists    = errors.New("master edition already exists")
	ErrStaleVersion     = errors.New("metadata version is stale")
)

type Store interface {
	// SaveMetadata creates or updates a metadata record. New records must be
	// saved with a zero version. ErrStaleVersion is returned on a version
	// mismatch.
	SaveMetadata(ctx context.Context, record *Record) error

	// GetMetadata gets a metadata record by its address. ErrMetadataNotFound is
	// returned if no DB record exists.
	GetMetadata(ctx context.Context, address string) (*Record, error)

	// SaveEdition creates a master edition. Editions are immutable once
	// created, and ErrEditionExists is returned if one already exists.
	SaveEdition(ctx context.Context, record *EditionRecord) error

	// GetEdition gets a master edition by its address. ErrEditionNotFound is
	// returned if no DB record exists.
	GetEdition(ctx context.Context, address string) (*EditionRecord, error)
}
