package token

import (
	"errors"
	"time"

	"github.com/code-payments/affiliate-market/pkg/pointer"
)

type MintRecord struct {
	Id uint64

	Address string

	Decimals uint8
	Supply   uint64

	// Authorities are cleared when revoked
	MintAuthority   *string
	FreezeAuthority *string

	Version uint64

	CreatedAt     time.Time
	LastUpdatedAt time.Time
}

func (r *MintRecord) Validate() error {
	if len(r.Address) == 0 {
		return errors.New("address is required")
	}

	if r.MintAuthority != nil && len(*r.MintAuthority) == 0 {
		return errors.New("mint authority is required when set")
	}

	if r.FreezeAuthority != nil && len(*r.FreezeAuthority) == 0 {
		return errors.New("freeze authority is required when set")
	}

	return nil
}

func (r *MintRecord) Clone() MintRecord {
	return MintRecord{
		Id: r.Id,

		Address: r.Address,

		Decimals: r.Decimals,
		Supply:   r.Supply,

		MintAuthority:   pointer.Copy(r.MintAuthority),
		FreezeAuthority: pointer.Copy(r.FreezeAuthority),

		Version: r.Version,

		CreatedAt:     r.CreatedAt,
		LastUpdatedAt: r.LastUpdatedAt,
	}
}

func (r *MintRecord) CopyTo(dst *MintRecord) {
	dst.Id = r.Id

	dst.Address = r.Address

	dst.Decimals = r.Decimals
	dst.Supply = r.Supply

	dst.MintAuthority = pointer.Copy(r.MintAuthority)
	dst.FreezeAuthority = pointer.Copy(r.FreezeAuthority)

	dst.Version = r.Version

	dst.CreatedAt = r.CreatedAt
	dst.LastUpdatedAt = r.LastUpdatedAt
}

type AccountRecord struct {
	Id uint64

	Address string
	Mint    string
	Owner   string

	Amount uint64

	Version uint64

	CreatedAt     time.Time
	LastUpdatedAt time.Time
}

func (r *AccountRecord) Validate() error {
	if len(r.Address) == 0 {
		return errors.New("address is required")
	}

	if len(r.Mint) == 0 {
		return errors.New("mint is required")
	}

	if len(r.Owner) == 0 {
		return errors.New("owner is required")
	}

	return nil
}

func (r *AccountRecord) Clone() AccountRecord {
	return AccountRecord{
		Id: r.Id,

		Address: r.Address,
		Mint:    r.Mint,
		Owner:   r.Owner,

		Amount: r.Amount,

		Version: r.Version,

		CreatedAt:     r.CreatedAt,
		LastUpdatedAt: r.LastUpdatedAt,
	}
}

func (r *AccountRecord) CopyTo(dst *AccountRecord) {
	dst.Id = r.Id

	dst.Address = r.Address
	dst.Mint = r.Mint
	dst.Owner = r.Owner

	dst.Amount = r.Amount

	dst.Version = r.Version

	dst.CreatedAt = r.CreatedAt
	dst.LastUpdatedAt = r.LastUpdatedAt
}
