package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAffiliate(t *testing.T) {
	env := setup(t)

	creator := env.newAccount(t)
	referrer := env.newAccount(t)

	none := NoAffiliate()
	assert.False(t, none.IsPresent())
	_, ok := none.Account()
	assert.False(t, ok)
	assert.True(t, none.Receiver(creator).Equals(creator))
	assert.Equal(t, "none", none.String())

	referred := ReferredBy(referrer)
	assert.True(t, referred.IsPresent())
	account, ok := referred.Account()
	require.True(t, ok)
	assert.True(t, account.Equals(referrer))
	assert.True(t, referred.Receiver(creator).Equals(referrer))
	assert.Equal(t, referrer.PublicKey().ToBase58(), referred.String())
}

func TestAffiliateLedger_Record(t *testing.T) {
	env := setup(t)
	c := env.createCampaign(t, 1000, 500, 10)

	referrer := env.newAccount(t)
	env.assertNoAffiliateStats(t, c, referrer)

	ledger := env.market.affiliates

	record, err := ledger.Record(env.ctx, c.record, c.accounts, referrer, 50)
	require.NoError(t, err)
	assert.EqualValues(t, 1, record.TotalMints)
	assert.EqualValues(t, 50, record.TotalEarned)

	record, err = ledger.Record(env.ctx, c.record, c.accounts, referrer, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 2, record.TotalMints)
	assert.EqualValues(t, 50, record.TotalEarned)

	env.assertAffiliateStats(t, c, referrer, 2, 50)

	// Totals never wrap
	_, err = ledger.Record(env.ctx, c.record, c.accounts, referrer, ^uint64(0))
	assert.Equal(t, ErrMathOverflow, err)
	env.assertAffiliateStats(t, c, referrer, 2, 50)
}
