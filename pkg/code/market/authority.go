package market

import (
	"github.com/pkg/errors"

	"github.com/code-payments/affiliate-market/pkg/code/common"
	"github.com/code-payments/affiliate-market/pkg/solana"
	"github.com/code-payments/affiliate-market/pkg/solana/affiliatemarket"
)

// Authority is an address derived from the market program and a set of seeds.
// It has no private key. The market program signs for it by passing
// SignerSeeds to the runtime.
type Authority struct {
	Address *common.Account
	Bump    uint8

	seeds [][]byte
}

// DeriveAuthority finds the canonical authority for the seeds, searching bumps
// from 255 downwards.
func DeriveAuthority(seeds ...[]byte) (*Authority, error) {
	address, bump, err := solana.FindProgramAddressAndBump(affiliatemarket.PROGRAM_ID, seeds...)
	if err != nil {
		return nil, errors.Wrap(err, "error deriving authority")
	}

	account, err := common.NewAccountFromPublicKeyBytes(address)
	if err != nil {
		return nil, err
	}

	return &Authority{
		Address: account,
		Bump:    bump,
		seeds:   seeds,
	}, nil
}

// VerifyAuthority recomputes the authority for the seeds using a stored bump.
// ErrAuthorityMismatch is returned if it doesn't produce the candidate.
func VerifyAuthority(candidate *common.Account, bump uint8, seeds ...[]byte) (*Authority, error) {
	if candidate == nil || !solana.VerifyProgramAddress(affiliatemarket.PROGRAM_ID, candidate.PublicKey().ToBytes(), bump, seeds...) {
		return nil, ErrAuthorityMismatch
	}

	return &Authority{
		Address: candidate,
		Bump:    bump,
		seeds:   seeds,
	}, nil
}

// SignerSeeds returns the seeds, including the bump, that re-derive the
// authority.
func (a *Authority) SignerSeeds() [][]byte {
	seeds := make([][]byte, 0, len(a.seeds)+1)
	seeds = append(seeds, a.seeds...)
	return append(seeds, []byte{a.Bump})
}

func campaignSeeds(collectionMint *common.Account) [][]byte {
	return [][]byte{affiliatemarket.CampaignPrefix, collectionMint.PublicKey().ToBytes()}
}

func mintAuthoritySeeds(campaign *common.Account) [][]byte {
	return [][]byte{affiliatemarket.MintAuthorityPrefix, campaign.PublicKey().ToBytes()}
}

func collectionAuthoritySeeds(campaign *common.Account) [][]byte {
	return [][]byte{affiliatemarket.CollectionAuthorityPrefix, campaign.PublicKey().ToBytes()}
}

func nftMintSeeds(campaign *common.Account, index uint64) [][]byte {
	return [][]byte{affiliatemarket.NftMintPrefix, campaign.PublicKey().ToBytes(), affiliatemarket.NftMintIndexSeed(index)}
}
