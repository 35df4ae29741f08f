package market

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/affiliate-market/pkg/cache"
	"github.com/code-payments/affiliate-market/pkg/code/common"
	code_data "github.com/code-payments/affiliate-market/pkg/code/data"
	"github.com/code-payments/affiliate-market/pkg/code/data/campaign"
	"github.com/code-payments/affiliate-market/pkg/metrics"
)

// CampaignRegistry creates campaigns and reads them back
type CampaignRegistry struct {
	log  *logrus.Entry
	data code_data.DatabaseData

	// Derived accounts never change for a collection mint
	accounts *cache.Cache[*common.CampaignAccounts]
}

func NewCampaignRegistry(data code_data.DatabaseData, cacheBudget int) *CampaignRegistry {
	return &CampaignRegistry{
		log:      logrus.StandardLogger().WithField("type", "market/campaign_registry"),
		data:     data,
		accounts: cache.New[*common.CampaignAccounts]("campaign_accounts", cacheBudget),
	}
}

// CreateCampaign creates a campaign selling into the collection. The campaign
// starts with nothing minted and stores the bumps of its derived authorities.
func (r *CampaignRegistry) CreateCampaign(ctx context.Context, creator, collectionMint *common.Account, price uint64, affiliateFeeBps uint16, maxSupply uint64) (*campaign.Record, error) {
	log := r.log.WithFields(logrus.Fields{
		"method":          "CreateCampaign",
		"creator":         creator.PublicKey().ToBase58(),
		"collection_mint": collectionMint.PublicKey().ToBase58(),
	})

	if affiliateFeeBps > campaign.MaxAffiliateFeeBps {
		return nil, ErrInvalidFee
	}

	accounts, err := r.GetCampaignAccounts(collectionMint)
	if err != nil {
		log.WithError(err).Warn("failure deriving campaign accounts")
		return nil, err
	}

	record := &campaign.Record{
		Address:      accounts.Campaign.PublicKey().ToBase58(),
		CampaignBump: accounts.CampaignBump,

		Creator:        creator.PublicKey().ToBase58(),
		CollectionMint: collectionMint.PublicKey().ToBase58(),

		Price:           price,
		AffiliateFeeBps: affiliateFeeBps,

		Minted:    0,
		MaxSupply: maxSupply,

		MintAuthorityBump:       accounts.MintAuthorityBump,
		CollectionAuthorityBump: accounts.CollectionAuthorityBump,
	}

	err = r.data.CreateCampaign(ctx, record)
	if err == campaign.ErrCampaignExists {
		return nil, ErrCampaignAlreadyExists
	} else if err != nil {
		log.WithError(err).Warn("failure creating campaign")
		return nil, errors.Wrap(err, "error creating campaign")
	}

	log.WithField("campaign", record.Address).Info("campaign created")

	metrics.RecordEvent(ctx, campaignCreatedEventName, map[string]interface{}{
		"campaign":          record.Address,
		"price":             record.Price,
		"affiliate_fee_bps": record.AffiliateFeeBps,
		"max_supply":        record.MaxSupply,
	})

	return record, nil
}

// GetCampaign gets a campaign by its address
func (r *CampaignRegistry) GetCampaign(ctx context.Context, address *common.Account) (*campaign.Record, error) {
	record, err := r.data.GetCampaignByAddress(ctx, address.PublicKey().ToBase58())
	if err == campaign.ErrCampaignNotFound {
		return nil, ErrCampaignNotFound
	} else if err != nil {
		return nil, err
	}
	return record, nil
}

// GetCampaignByCollection gets the campaign selling into a collection
func (r *CampaignRegistry) GetCampaignByCollection(ctx context.Context, collectionMint *common.Account) (*campaign.Record, error) {
	record, err := r.data.GetCampaignByCollectionMint(ctx, collectionMint.PublicKey().ToBase58())
	if err == campaign.ErrCampaignNotFound {
		return nil, ErrCampaignNotFound
	} else if err != nil {
		return nil, err
	}
	return record, nil
}

// GetCampaignAccounts derives the program accounts of the campaign selling
// into a collection.
func (r *CampaignRegistry) GetCampaignAccounts(collectionMint *common.Account) (*common.CampaignAccounts, error) {
	key := collectionMint.PublicKey().ToBase58()

	cached, ok := r.accounts.Retrieve(key)
	if ok {
		return cached, nil
	}

	accounts, err := collectionMint.GetCampaignAccounts()
	if err != nil {
		return nil, err
	}

	// A concurrent insert of the same accounts is fine
	_ = r.accounts.Insert(key, accounts, 1)

	return accounts, nil
}
