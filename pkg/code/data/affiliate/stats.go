package affiliate

import (
	"errors"
	"time"
)

type Record struct {
	Id uint64

	Address string
	Bump    uint8

	Campaign  string
	Affiliate string

	TotalMints  uint64
	TotalEarned uint64

	Version uint64

	CreatedAt     time.Time
	LastUpdatedAt time.Time
}

func (r *Record) Validate() error {
	if len(r.Address) == 0 {
		return errors.New("address is required")
	}

	if len(r.Campaign) == 0 {
		return errors.New("campaign is required")
	}

	if len(r.Affiliate) == 0 {
		return errors.New("affiliate is required")
	}

	return nil
}

func (r *Record) Clone() Record {
	return Record{
		Id: r.Id,

		Address: r.Address,
		Bump:    r.Bump,

		Campaign:  r.Campaign,
		Affiliate: r.Affiliate,

		TotalMints:  r.TotalMints,
		TotalEarned: r.TotalEarned,

		Version: r.Version,

		CreatedAt:     r.CreatedAt,
		LastUpdatedAt: r.LastUpdatedAt,
	}
}

func (r *Record) CopyTo(dst *Record) {
	dst.Id = r.Id

	dst.Address = r.Address
	dst.Bump = r.Bump

	dst.Campaign = r.Campaign
	dst.Affiliate = r.Affiliate

	dst.TotalMints = r.TotalMints
	dst.TotalEarned = r.TotalEarned

	dst.Version = r.Version

	dst.CreatedAt = r.CreatedAt
	dst.LastUpdatedAt = r.LastUpdatedAt
}
