package token

import (
	"context"
	"errors"
)

var (
	ErrMintNotFound         = errors.New("mint not found")
	ErrTokenAccountNotFound = errors.New("token account not found")
	ErrStaleVersion         = errors.New("token record version is stale")
)

type Store interface {
	// SaveMint creates or updates a mint. New mints must be saved with a zero
	// version. ErrStaleVersion is returned on a version mismatch.
	SaveMint(ctx context.Context, record *MintRecord) error

	// GetMint gets a mint by its address. ErrMintNotFound is returned if no DB
	// record exists.
	GetMint(ctx context.Context, address string) (*MintRecord, error)

	// SaveTokenAccount creates or updates a token account. New accounts must be
	// saved with a zero version. ErrStaleVersion is returned on a version
	// mismatch.
	SaveTokenAccount(ctx context.Context, record *AccountRecord) error

	// GetTokenAccount gets a token account by its address. ErrTokenAccountNotFound
	// is returned if no DB record exists.
	GetTokenAccount(ctx context.Context, address string) (*AccountRecord, error)

	// GetTokenAccountsByOwner gets all token accounts held by an owner.
	// ErrTokenAccountNotFound is returned if there are none.
	GetTokenAccountsByOwner(ctx context.Context, owner string) ([]*AccountRecord, error)
}
