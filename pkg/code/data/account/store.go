package account

import (
	"context"
	"errors"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrStaleVersion    = errors.New("account version is stale")
)

type Store interface {
	// Save creates or updates an account. New accounts must be saved with a
	// zero version, existing accounts with the version that was read.
	// ErrStaleVersion is returned otherwise.
	Save(ctx context.Context, record *Record) error

	// Get gets an account by its address. ErrAccountNotFound is returned if
	// no DB record exists.
	Get(ctx context.Context, address string) (*Record, error)
}
