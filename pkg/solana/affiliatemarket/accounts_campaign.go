package affiliatemarket

import (
	"bytes"
	"crypto/ed25519"
	"fmt"

	"github.com/mr-tron/base58"
)

const (
	CampaignAccountSize = (8 + // discriminator
		32 + // creator
		32 + // collection_mint
		8 + // price
		2 + // affiliate_fee_bps
		8 + // minted
		8 + // max_supply
		1 + // mint_authority_bump
		1) // collection_auth_bump
)

var CampaignAccountDiscriminator = anchorDiscriminator("account", "Campaign")

type CampaignAccount struct {
	Creator            ed25519.PublicKey
	CollectionMint     ed25519.PublicKey
	Price              uint64
	AffiliateFeeBps    uint16
	Minted             uint64
	MaxSupply          uint64
	MintAuthorityBump  uint8
	CollectionAuthBump uint8
}

func (obj *CampaignAccount) Marshal() []byte {
	data := make([]byte, CampaignAccountSize)

	var offset int

	putDiscriminator(data, CampaignAccountDiscriminator, &offset)
	putKey(data, obj.Creator, &offset)
	putKey(data, obj.CollectionMint, &offset)
	putUint64(data, obj.Price, &offset)
	putUint16(data, obj.AffiliateFeeBps, &offset)
	putUint64(data, obj.Minted, &offset)
	putUint64(data, obj.MaxSupply, &offset)
	putUint8(data, obj.MintAuthorityBump, &offset)
	putUint8(data, obj.CollectionAuthBump, &offset)

	return data
}

func (obj *CampaignAccount) Unmarshal(data []byte) error {
	if len(data) < CampaignAccountSize {
		return ErrInvalidAccountData
	}

	var offset int

	var discriminator []byte
	getDiscriminator(data, &discriminator, &offset)
	if !bytes.Equal(discriminator, CampaignAccountDiscriminator) {
		return ErrInvalidAccountData
	}

	getKey(data, &obj.Creator, &offset)
	getKey(data, &obj.CollectionMint, &offset)
	getUint64(data, &obj.Price, &offset)
	getUint16(data, &obj.AffiliateFeeBps, &offset)
	getUint64(data, &obj.Minted, &offset)
	getUint64(data, &obj.MaxSupply, &offset)
	getUint8(data, &obj.MintAuthorityBump, &offset)
	getUint8(data, &obj.CollectionAuthBump, &offset)

	return nil
}

func (obj *CampaignAccount) String() string {
	return fmt.Sprintf(
		"Campaign{creator=%s,collection_mint=%s,price=%d,affiliate_fee_bps=%d,minted=%d,max_supply=%d,mint_authority_bump=%d,collection_auth_bump=%d}",
		base58.Encode(obj.Creator),
		base58.Encode(obj.CollectionMint),
		obj.Price,
		obj.AffiliateFeeBps,
		obj.Minted,
		obj.MaxSupply,
		obj.MintAuthorityBump,
		obj.CollectionAuthBump,
	)
}
