package market

import (
	"github.com/mr-tron/base58"

	"github.com/code-payments/affiliate-market/pkg/code/common"
	"github.com/code-payments/affiliate-market/pkg/code/data/affiliate"
	"github.com/code-payments/affiliate-market/pkg/code/data/campaign"
	code_market "github.com/code-payments/affiliate-market/pkg/code/market"
	"github.com/code-payments/affiliate-market/pkg/solana/affiliatemarket"
)

type campaignView struct {
	Address         string `json:"address"`
	Creator         string `json:"creator"`
	CollectionMint  string `json:"collectionMint"`
	Price           uint64 `json:"price"`
	AffiliateFeeBps uint16 `json:"affiliateFeeBps"`
	Minted          uint64 `json:"minted"`
	MaxSupply       uint64 `json:"maxSupply"`
	SoldOut         bool   `json:"soldOut"`
}

func toCampaignView(record *campaign.Record) *campaignView {
	return &campaignView{
		Address:         record.Address,
		Creator:         record.Creator,
		CollectionMint:  record.CollectionMint,
		Price:           record.Price,
		AffiliateFeeBps: record.AffiliateFeeBps,
		Minted:          record.Minted,
		MaxSupply:       record.MaxSupply,
		SoldOut:         record.IsSoldOut(),
	}
}

type affiliateStatsView struct {
	Address     string `json:"address"`
	Campaign    string `json:"campaign"`
	Affiliate   string `json:"affiliate"`
	TotalMints  uint64 `json:"totalMints"`
	TotalEarned uint64 `json:"totalEarned"`
}

func toAffiliateStatsView(record *affiliate.Record) *affiliateStatsView {
	return &affiliateStatsView{
		Address:     record.Address,
		Campaign:    record.Campaign,
		Affiliate:   record.Affiliate,
		TotalMints:  record.TotalMints,
		TotalEarned: record.TotalEarned,
	}
}

type mintResultView struct {
	RequestId         string              `json:"requestId"`
	Campaign          string              `json:"campaign"`
	Mint              string              `json:"mint"`
	Metadata          string              `json:"metadata"`
	MasterEdition     string              `json:"masterEdition"`
	BuyerTokenAccount string              `json:"buyerTokenAccount"`
	Affiliate         *string             `json:"affiliate"`
	AffiliateCut      uint64              `json:"affiliateCut"`
	CreatorCut        uint64              `json:"creatorCut"`
	AffiliateStats    *affiliateStatsView `json:"affiliateStats,omitempty"`
	Minted            uint64              `json:"minted"`
}

func toMintResultView(result *code_market.MintResult) *mintResultView {
	view := &mintResultView{
		RequestId:         result.RequestId,
		Campaign:          result.Campaign.PublicKey().ToBase58(),
		Mint:              result.Mint.PublicKey().ToBase58(),
		Metadata:          result.Metadata.PublicKey().ToBase58(),
		MasterEdition:     result.MasterEdition.PublicKey().ToBase58(),
		BuyerTokenAccount: result.BuyerTokenAccount.PublicKey().ToBase58(),
		AffiliateCut:      result.AffiliateCut,
		CreatorCut:        result.CreatorCut,
		Minted:            result.Minted,
	}

	if referrer, ok := result.Affiliate.Account(); ok {
		address := referrer.PublicKey().ToBase58()
		view.Affiliate = &address
	}
	if result.AffiliateStats != nil {
		view.AffiliateStats = toAffiliateStatsView(result.AffiliateStats)
	}
	return view
}

// toMintAccountsView lists the accounts a process_mint instruction for the
// next collectible needs. Without an affiliate, the creator receives the whole
// price and the program id stands in for the unused stats account.
func toMintAccountsView(accounts *code_market.MintAccounts, referrer *common.Account) (*mintAccountsJson, error) {
	creator, err := common.NewAccountFromPublicKeyString(accounts.Campaign.Creator)
	if err != nil {
		return nil, err
	}

	affiliateReceiver := creator.PublicKey().ToBase58()
	affiliateStats := affiliatemarket.PROGRAM_ID
	if referrer != nil {
		stats, _, err := accounts.CampaignAccounts.GetAffiliateStatsAccount(referrer)
		if err != nil {
			return nil, err
		}

		affiliateReceiver = referrer.PublicKey().ToBase58()
		affiliateStats = stats.PublicKey().ToBytes()
	}

	campaignAccounts := accounts.CampaignAccounts
	nftAccounts := accounts.NftAccounts
	return &mintAccountsJson{
		Buyer:                   nftAccounts.Owner.PublicKey().ToBase58(),
		Campaign:                campaignAccounts.Campaign.PublicKey().ToBase58(),
		Creator:                 creator.PublicKey().ToBase58(),
		AffiliateReceiver:       affiliateReceiver,
		AffiliateStats:          base58.Encode(affiliateStats),
		NftMint:                 nftAccounts.Mint.PublicKey().ToBase58(),
		BuyerNftAccount:         nftAccounts.OwnerTokenAccount.PublicKey().ToBase58(),
		MintAuthority:           campaignAccounts.MintAuthority.PublicKey().ToBase58(),
		Metadata:                nftAccounts.Metadata.PublicKey().ToBase58(),
		MasterEdition:           nftAccounts.MasterEdition.PublicKey().ToBase58(),
		CollectionMint:          campaignAccounts.CollectionMint.PublicKey().ToBase58(),
		CollectionMetadata:      campaignAccounts.CollectionMetadata.PublicKey().ToBase58(),
		CollectionMasterEdition: campaignAccounts.CollectionMasterEdition.PublicKey().ToBase58(),
		CollectionAuthority:     campaignAccounts.CollectionAuthority.PublicKey().ToBase58(),
	}, nil
}
