package market

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/affiliate-market/pkg/code/common"
	code_data "github.com/code-payments/affiliate-market/pkg/code/data"
	"github.com/code-payments/affiliate-market/pkg/code/data/affiliate"
	"github.com/code-payments/affiliate-market/pkg/code/data/campaign"
	"github.com/code-payments/affiliate-market/pkg/code/ledger"
	"github.com/code-payments/affiliate-market/pkg/lock"
	sync_util "github.com/code-payments/affiliate-market/pkg/sync"
)

// Market sells collectibles through campaigns. Each sale pays the creator and
// an optional affiliate, then issues a new collectible verified into the
// campaign's collection.
type Market struct {
	log  *logrus.Entry
	conf *conf

	data    code_data.DatabaseData
	runtime *ledger.Runtime

	locks      lock.Manager
	localLocks *sync_util.StripedLock

	campaigns   *CampaignRegistry
	affiliates  *AffiliateLedger
	collections *CollectionVerifier
}

func NewMarket(data code_data.DatabaseData, runtime *ledger.Runtime, locks lock.Manager, configProvider ConfigProvider) *Market {
	ctx := context.Background()
	conf := configProvider()

	return &Market{
		log:  logrus.StandardLogger().WithField("type", "market/market"),
		conf: conf,

		data:    data,
		runtime: runtime,

		locks:      locks,
		localLocks: sync_util.NewStripedLock(uint(conf.campaignLockStripes.Get(ctx))),

		campaigns:   NewCampaignRegistry(data, int(conf.campaignAccountCacheBudget.Get(ctx))),
		affiliates:  NewAffiliateLedger(data),
		collections: NewCollectionVerifier(),
	}
}

// CreateCampaign creates a campaign selling into a collection. See
// CampaignRegistry.CreateCampaign.
func (m *Market) CreateCampaign(ctx context.Context, creator, collectionMint *common.Account, price uint64, affiliateFeeBps uint16, maxSupply uint64) (*campaign.Record, error) {
	return m.campaigns.CreateCampaign(ctx, creator, collectionMint, price, affiliateFeeBps, maxSupply)
}

func (m *Market) GetCampaign(ctx context.Context, address *common.Account) (*campaign.Record, error) {
	return m.campaigns.GetCampaign(ctx, address)
}

func (m *Market) GetCampaignByCollection(ctx context.Context, collectionMint *common.Account) (*campaign.Record, error) {
	return m.campaigns.GetCampaignByCollection(ctx, collectionMint)
}

func (m *Market) GetAffiliateStats(ctx context.Context, campaign, referrer *common.Account) (*affiliate.Record, error) {
	return m.affiliates.GetStats(ctx, campaign, referrer)
}

func (m *Market) GetAllAffiliateStats(ctx context.Context, campaign *common.Account) ([]*affiliate.Record, error) {
	return m.affiliates.GetAllStats(ctx, campaign)
}

// MintAccounts are the accounts a buyer supplies to purchase the next
// collectible of a campaign.
type MintAccounts struct {
	Campaign *campaign.Record

	CampaignAccounts *common.CampaignAccounts
	NftAccounts      *common.NftAccounts
}

// GetMintAccounts derives the accounts of the next collectible a buyer would
// receive. ErrSoldOut is returned if there is none.
func (m *Market) GetMintAccounts(ctx context.Context, campaignAddress, buyer *common.Account) (*MintAccounts, error) {
	record, err := m.campaigns.GetCampaign(ctx, campaignAddress)
	if err != nil {
		return nil, err
	}

	if record.IsSoldOut() {
		return nil, ErrSoldOut
	}

	collectionMint, err := common.NewAccountFromPublicKeyString(record.CollectionMint)
	if err != nil {
		return nil, err
	}

	campaignAccounts, err := m.campaigns.GetCampaignAccounts(collectionMint)
	if err != nil {
		return nil, err
	}

	nftAccounts, err := campaignAccounts.GetNftAccounts(record.Minted, buyer)
	if err != nil {
		return nil, err
	}

	return &MintAccounts{
		Campaign:         record,
		CampaignAccounts: campaignAccounts,
		NftAccounts:      nftAccounts,
	}, nil
}

// lockCampaign serializes workflows against a campaign, first within the
// process and then across processes. The returned context is cancelled if the
// distributed lock is lost before unlock is called.
func (m *Market) lockCampaign(ctx context.Context, campaign string) (context.Context, func(), error) {
	log := m.log.WithFields(logrus.Fields{
		"method":   "lockCampaign",
		"campaign": campaign,
	})

	start := time.Now()

	lockCtx, cancelLockCtx := context.WithTimeout(ctx, m.conf.campaignLockTimeout.Get(ctx))
	defer cancelLockCtx()

	localUnlock := m.localLocks.Lock(campaign)

	distributedLock, err := m.locks.Create(lockCtx, "campaign/"+campaign)
	if err != nil {
		localUnlock()
		return nil, nil, errors.Wrap(err, "error creating campaign lock")
	}

	lost, err := distributedLock.Acquire(lockCtx)
	recordLockWait(ctx, time.Since(start), lockCtx.Err() == context.DeadlineExceeded)
	if err != nil {
		localUnlock()
		return nil, nil, errors.Wrap(err, "error acquiring campaign lock")
	}

	lockedCtx, cancelLockedCtx := context.WithCancel(ctx)
	go func() {
		select {
		case <-lost:
			cancelLockedCtx()
		case <-lockedCtx.Done():
		}
	}()

	unlock := func() {
		cancelLockedCtx()

		if err := distributedLock.Unlock(context.Background()); err != nil {
			log.WithError(err).Warn("failure releasing campaign lock")
		}
		localUnlock()
	}
	return lockedCtx, unlock, nil
}
