package market

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/affiliate-market/pkg/code/common"
	code_data "github.com/code-payments/affiliate-market/pkg/code/data"
	"github.com/code-payments/affiliate-market/pkg/code/data/affiliate"
	"github.com/code-payments/affiliate-market/pkg/code/data/campaign"
)

// Affiliate designates who referred a sale. It's either NoAffiliate or
// ReferredBy an account.
type Affiliate struct {
	account *common.Account
}

// NoAffiliate is a sale without a referrer. The affiliate cut is paid to the
// creator and no stats are recorded.
func NoAffiliate() Affiliate {
	return Affiliate{}
}

// ReferredBy is a sale referred by the provided account
func ReferredBy(account *common.Account) Affiliate {
	return Affiliate{account: account}
}

// Account returns the referring account, and whether there is one
func (a Affiliate) Account() (*common.Account, bool) {
	return a.account, a.account != nil
}

// IsPresent reports whether the sale was referred
func (a Affiliate) IsPresent() bool {
	return a.account != nil
}

// Receiver returns the account that receives the affiliate cut
func (a Affiliate) Receiver(creator *common.Account) *common.Account {
	if a.account != nil {
		return a.account
	}
	return creator
}

func (a Affiliate) String() string {
	if a.account == nil {
		return "none"
	}
	return a.account.PublicKey().ToBase58()
}

// AffiliateLedger keeps the running totals of sales referred by each affiliate
// of a campaign.
type AffiliateLedger struct {
	log  *logrus.Entry
	data code_data.DatabaseData
}

func NewAffiliateLedger(data code_data.DatabaseData) *AffiliateLedger {
	return &AffiliateLedger{
		log:  logrus.StandardLogger().WithField("type", "market/affiliate_ledger"),
		data: data,
	}
}

// Record credits an affiliate with a referred sale and the cut it earned. The
// stats record is lazily created on first use. Concurrent creation never
// clobbers an existing record.
func (l *AffiliateLedger) Record(ctx context.Context, campaignRecord *campaign.Record, campaignAccounts *common.CampaignAccounts, referrer *common.Account, cut uint64) (*affiliate.Record, error) {
	statsAccount, bump, err := campaignAccounts.GetAffiliateStatsAccount(referrer)
	if err != nil {
		return nil, err
	}

	record := &affiliate.Record{
		Address:   statsAccount.PublicKey().ToBase58(),
		Bump:      bump,
		Campaign:  campaignRecord.Address,
		Affiliate: referrer.PublicKey().ToBase58(),
	}
	if err := l.data.InitializeAffiliateStatsIfAbsent(ctx, record); err != nil {
		return nil, errors.Wrap(err, "error initializing affiliate stats")
	}

	totalMints, err := checkedAdd(record.TotalMints, 1)
	if err != nil {
		return nil, err
	}
	totalEarned, err := checkedAdd(record.TotalEarned, cut)
	if err != nil {
		return nil, err
	}

	record.TotalMints = totalMints
	record.TotalEarned = totalEarned
	if err := l.data.UpdateAffiliateStats(ctx, record); err != nil {
		return nil, errors.Wrap(err, "error updating affiliate stats")
	}

	l.log.WithFields(logrus.Fields{
		"method":       "Record",
		"campaign":     record.Campaign,
		"affiliate":    record.Affiliate,
		"total_mints":  record.TotalMints,
		"total_earned": record.TotalEarned,
	}).Debug("recorded referred sale")

	return record, nil
}

// GetStats gets the stats of an affiliate. ErrAffiliateStatsNotFound is
// returned if the affiliate never referred a sale.
func (l *AffiliateLedger) GetStats(ctx context.Context, campaign, referrer *common.Account) (*affiliate.Record, error) {
	record, err := l.data.GetAffiliateStats(ctx, campaign.PublicKey().ToBase58(), referrer.PublicKey().ToBase58())
	if err == affiliate.ErrStatsNotFound {
		return nil, ErrAffiliateStatsNotFound
	} else if err != nil {
		return nil, err
	}
	return record, nil
}

// GetAllStats gets the stats of every affiliate of a campaign
func (l *AffiliateLedger) GetAllStats(ctx context.Context, campaign *common.Account) ([]*affiliate.Record, error) {
	records, err := l.data.GetAllAffiliateStatsByCampaign(ctx, campaign.PublicKey().ToBase58())
	if err == affiliate.ErrStatsNotFound {
		return nil, ErrAffiliateStatsNotFound
	} else if err != nil {
		return nil, err
	}
	return records, nil
}
