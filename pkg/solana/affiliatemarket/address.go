package affiliatemarket

import (
	"crypto/ed25519"
	"encoding/binary"

	"github.com/code-payments/affiliate-market/pkg/solana"
	"github.com/code-payments/affiliate-market/pkg/solana/tokenmetadata"
)

var (
	CampaignPrefix            = []byte("campaign")
	MintAuthorityPrefix       = []byte("mint_auth")
	CollectionAuthorityPrefix = []byte("collection_auth")
	NftMintPrefix             = []byte("nft_mint")
	AffiliatePrefix           = []byte("affiliate")
)

type GetCampaignAddressArgs struct {
	CollectionMint ed25519.PublicKey
}

func GetCampaignAddress(args *GetCampaignAddressArgs) (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(
		PROGRAM_ID,
		CampaignPrefix,
		args.CollectionMint,
	)
}

type GetMintAuthorityAddressArgs struct {
	Campaign ed25519.PublicKey
}

func GetMintAuthorityAddress(args *GetMintAuthorityAddressArgs) (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(
		PROGRAM_ID,
		MintAuthorityPrefix,
		args.Campaign,
	)
}

type GetCollectionAuthorityAddressArgs struct {
	Campaign ed25519.PublicKey
}

func GetCollectionAuthorityAddress(args *GetCollectionAuthorityAddressArgs) (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(
		PROGRAM_ID,
		CollectionAuthorityPrefix,
		args.Campaign,
	)
}

type GetNftMintAddressArgs struct {
	Campaign ed25519.PublicKey
	Minted   uint64
}

// GetNftMintAddress derives the mint of the next collectible. The index is
// the campaign's minted count at the time of purchase.
func GetNftMintAddress(args *GetNftMintAddressArgs) (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(
		PROGRAM_ID,
		NftMintPrefix,
		args.Campaign,
		NftMintIndexSeed(args.Minted),
	)
}

// NftMintIndexSeed encodes the mint index as a little endian u64 seed
func NftMintIndexSeed(minted uint64) []byte {
	seed := make([]byte, 8)
	binary.LittleEndian.PutUint64(seed, minted)
	return seed
}

type GetAffiliateStatsAddressArgs struct {
	Campaign  ed25519.PublicKey
	Affiliate ed25519.PublicKey
}

func GetAffiliateStatsAddress(args *GetAffiliateStatsAddressArgs) (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(
		PROGRAM_ID,
		AffiliatePrefix,
		args.Campaign,
		args.Affiliate,
	)
}

type GetMetadataAddressArgs struct {
	Mint ed25519.PublicKey
}

func GetMetadataAddress(args *GetMetadataAddressArgs) (ed25519.PublicKey, uint8, error) {
	return tokenmetadata.GetMetadataAddress(&tokenmetadata.GetMetadataAddressArgs{
		Mint: args.Mint,
	})
}

type GetMasterEditionAddressArgs struct {
	Mint ed25519.PublicKey
}

func GetMasterEditionAddress(args *GetMasterEditionAddressArgs) (ed25519.PublicKey, uint8, error) {
	return tokenmetadata.GetMasterEditionAddress(&tokenmetadata.GetMasterEditionAddressArgs{
		Mint: args.Mint,
	})
}
