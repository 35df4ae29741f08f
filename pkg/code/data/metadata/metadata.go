package metadata

import (
	"errors"
	"time"

	"github.com/code-payments/affiliate-market/pkg/pointer"
)

const (
	MaxNameLength        = 32
	MaxSymbolLength      = 10
	MaxUriLength         = 200
	MaxSellerFeeBasisPts = 10000
)

// Record is the token metadata registered for a mint.
type Record struct {
	Id uint64

	Address         string
	Mint            string
	UpdateAuthority string

	Name                 string
	Symbol               string
	Uri                  string
	SellerFeeBasisPoints uint16
	IsMutable            bool

	// Set when the mint is a member of a collection
	CollectionMint     *string
	CollectionVerified bool

	// Set when the mint is itself a sized collection
	CollectionSize *uint64

	Version uint64

	CreatedAt     time.Time
	LastUpdatedAt time.Time
}

// EditionRecord is a master edition. Once created, the edition holds the
// mint and freeze authorities of its mint.
type EditionRecord struct {
	Id uint64

	Address string
	Mint    string

	MaxSupply *uint64
	Supply    uint64

	CreatedAt time.Time
}

func (r *Record) Validate() error {
	if len(r.Address) == 0 {
		return errors.New("address is required")
	}

	if len(r.Mint) == 0 {
		return errors.New("mint is required")
	}

	if len(r.UpdateAuthority) == 0 {
		return errors.New("update authority is required")
	}

	if len(r.Name) > MaxNameLength {
		return errors.New("name is too long")
	}

	if len(r.Symbol) > MaxSymbolLength {
		return errors.New("symbol is too long")
	}

	if len(r.Uri) > MaxUriLength {
		return errors.New("uri is too long")
	}

	if r.SellerFeeBasisPoints > MaxSellerFeeBasisPts {
		return errors.New("seller fee basis points exceeds maximum")
	}

	if r.CollectionMint != nil && len(*r.CollectionMint) == 0 {
		return errors.New("collection mint is required when set")
	}

	if r.CollectionMint == nil && r.CollectionVerified {
		return errors.New("collection cannot be verified without a collection mint")
	}

	return nil
}

func (r *Record) Clone() Record {
	return Record{
		Id: r.Id,

		Address:         r.Address,
		Mint:            r.Mint,
		UpdateAuthority: r.UpdateAuthority,

		Name:                 r.Name,
		Symbol:               r.Symbol,
		Uri:                  r.Uri,
		SellerFeeBasisPoints: r.SellerFeeBasisPoints,
		IsMutable:            r.IsMutable,

		CollectionMint:     pointer.Copy(r.CollectionMint),
		CollectionVerified: r.CollectionVerified,

		CollectionSize: pointer.Copy(r.CollectionSize),

		Version: r.Version,

		CreatedAt:     r.CreatedAt,
		LastUpdatedAt: r.LastUpdatedAt,
	}
}

func (r *Record) CopyTo(dst *Record) {
	dst.Id = r.Id

	dst.Address = r.Address
	dst.Mint = r.Mint
	dst.UpdateAuthority = r.UpdateAuthority

	dst.Name = r.Name
	dst.Symbol = r.Symbol
	dst.Uri = r.Uri
	dst.SellerFeeBasisPoints = r.SellerFeeBasisPoints
	dst.IsMutable = r.IsMutable

	dst.CollectionMint = pointer.Copy(r.CollectionMint)
	dst.CollectionVerified = r.CollectionVerified

	dst.CollectionSize = pointer.Copy(r.CollectionSize)

	dst.Version = r.Version

	dst.CreatedAt = r.CreatedAt
	dst.LastUpdatedAt = r.LastUpdatedAt
}

func (r *EditionRecord) Validate() error {
	if len(r.Address) == 0 {
		return errors.New("address is required")
	}

	if len(r.Mint) == 0 {
		return errors.New("mint is required")
	}

	if r.MaxSupply != nil && r.Supply > *r.MaxSupply {
		return errors.New("supply exceeds max supply")
	}

	return nil
}

func (r *EditionRecord) Clone() EditionRecord {
	return EditionRecord{
		Id: r.Id,

		Address: r.Address,
		Mint:    r.Mint,

		MaxSupply: pointer.Copy(r.MaxSupply),
		Supply:    r.Supply,

		CreatedAt: r.CreatedAt,
	}
}

func (r *EditionRecord) CopyTo(dst *EditionRecord) {
	dst.Id = r.Id

	dst.Address = r.Address
	dst.Mint = r.Mint

	dst.MaxSupply = pointer.Copy(r.MaxSupply)
	dst.Supply = r.Supply

	dst.CreatedAt = r.CreatedAt
}
