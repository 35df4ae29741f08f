package campaign

import (
	"errors"
	"time"
)

const (
	MaxAffiliateFeeBps = 10_000
)

type Record struct {
	Id uint64

	Address      string
	CampaignBump uint8

	Creator        string
	CollectionMint string

	Price           uint64
	AffiliateFeeBps uint16

	Minted    uint64
	MaxSupply uint64

	MintAuthorityBump       uint8
	CollectionAuthorityBump uint8

	Version uint64

	CreatedAt     time.Time
	LastUpdatedAt time.Time
}

func (r *Record) Validate() error {
	if len(r.Address) == 0 {
		return errors.New("address is required")
	}

	if len(r.Creator) == 0 {
		return errors.New("creator is required")
	}

	if len(r.CollectionMint) == 0 {
		return errors.New("collection mint is required")
	}

	if r.AffiliateFeeBps > MaxAffiliateFeeBps {
		return errors.New("affiliate fee exceeds 100%")
	}

	if r.Minted > r.MaxSupply {
		return errors.New("minted count exceeds max supply")
	}

	return nil
}

func (r *Record) IsSoldOut() bool {
	return r.Minted >= r.MaxSupply
}

func (r *Record) Clone() Record {
	return Record{
		Id: r.Id,

		Address:      r.Address,
		CampaignBump: r.CampaignBump,

		Creator:        r.Creator,
		CollectionMint: r.CollectionMint,

		Price:           r.Price,
		AffiliateFeeBps: r.AffiliateFeeBps,

		Minted:    r.Minted,
		MaxSupply: r.MaxSupply,

		MintAuthorityBump:       r.MintAuthorityBump,
		CollectionAuthorityBump: r.CollectionAuthorityBump,

		Version: r.Version,

		CreatedAt:     r.CreatedAt,
		LastUpdatedAt: r.LastUpdatedAt,
	}
}

func (r *Record) CopyTo(dst *Record) {
	dst.Id = r.Id

	dst.Address = r.Address
	dst.CampaignBump = r.CampaignBump

	dst.Creator = r.Creator
	dst.CollectionMint = r.CollectionMint

	dst.Price = r.Price
	dst.AffiliateFeeBps = r.AffiliateFeeBps

	dst.Minted = r.Minted
	dst.MaxSupply = r.MaxSupply

	dst.MintAuthorityBump = r.MintAuthorityBump
	dst.CollectionAuthorityBump = r.CollectionAuthorityBump

	dst.Version = r.Version

	dst.CreatedAt = r.CreatedAt
	dst.LastUpdatedAt = r.LastUpdatedAt
}
