package tests

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/affiliate-market/pkg/code/data/campaign"
)

func RunTests(t *testing.T, s campaign.Store, teardown func()) {
	for _, tf := range []func(t *testing.T, s campaign.Store){
		testHappyPath,
		testUniqueness,
		testOptimisticUpdates,
		testInvalidRecords,
	} {
		tf(t, s)
		teardown()
	}
}

func testHappyPath(t *testing.T, s campaign.Store) {
	t.Run("testHappyPath", func(t *testing.T) {
		ctx := context.Background()

		_, err := s.GetByAddress(ctx, "campaign")
		assert.Equal(t, campaign.ErrCampaignNotFound, err)

		_, err = s.GetByCollectionMint(ctx, "collection_mint")
		assert.Equal(t, campaign.ErrCampaignNotFound, err)

		start := time.Now()

		expected := newTestRecord(0)
		require.NoError(t, s.Put(ctx, expected))
		assert.EqualValues(t, 1, expected.Id)
		assert.EqualValues(t, 1, expected.Version)
		assert.True(t, expected.CreatedAt.After(start))
		cloned := expected.Clone()

		actual, err := s.GetByAddress(ctx, "campaign0")
		require.NoError(t, err)
		assertEquivalentRecords(t, &cloned, actual)

		actual, err = s.GetByCollectionMint(ctx, "collection_mint0")
		require.NoError(t, err)
		assertEquivalentRecords(t, &cloned, actual)

		for i := 1; i <= 3; i++ {
			actual.Minted++
			require.NoError(t, s.Update(ctx, actual))
			assert.EqualValues(t, i, actual.Minted)
			assert.EqualValues(t, i+1, actual.Version)

			refetched, err := s.GetByAddress(ctx, "campaign0")
			require.NoError(t, err)
			assertEquivalentRecords(t, actual, refetched)
		}
	})
}

func testUniqueness(t *testing.T, s campaign.Store) {
	t.Run("testUniqueness", func(t *testing.T) {
		ctx := context.Background()

		record := newTestRecord(0)
		require.NoError(t, s.Put(ctx, record))

		sameAddress := newTestRecord(1)
		sameAddress.Address = record.Address
		assert.Equal(t, campaign.ErrCampaignExists, s.Put(ctx, sameAddress))

		sameCollection := newTestRecord(2)
		sameCollection.CollectionMint = record.CollectionMint
		assert.Equal(t, campaign.ErrCampaignExists, s.Put(ctx, sameCollection))

		_, err := s.GetByAddress(ctx, sameCollection.Address)
		assert.Equal(t, campaign.ErrCampaignNotFound, err)

		other := newTestRecord(3)
		require.NoError(t, s.Put(ctx, other))
	})
}

func testOptimisticUpdates(t *testing.T, s campaign.Store) {
	t.Run("testOptimisticUpdates", func(t *testing.T) {
		ctx := context.Background()

		missing := newTestRecord(0)
		missing.Version = 1
		assert.Equal(t, campaign.ErrCampaignNotFound, s.Update(ctx, missing))

		require.NoError(t, s.Put(ctx, newTestRecord(0)))

		reader1, err := s.GetByAddress(ctx, "campaign0")
		require.NoError(t, err)
		reader2, err := s.GetByAddress(ctx, "campaign0")
		require.NoError(t, err)

		reader1.Minted++
		require.NoError(t, s.Update(ctx, reader1))

		reader2.Minted++
		assert.Equal(t, campaign.ErrStaleVersion, s.Update(ctx, reader2))

		actual, err := s.GetByAddress(ctx, "campaign0")
		require.NoError(t, err)
		assert.EqualValues(t, 1, actual.Minted)
		assert.EqualValues(t, 2, actual.Version)

		// Only the minted count is mutable
		actual.Price = 1
		actual.Minted = 2
		require.NoError(t, s.Update(ctx, actual))

		actual, err = s.GetByAddress(ctx, "campaign0")
		require.NoError(t, err)
		assert.EqualValues(t, 2, actual.Minted)
		assert.EqualValues(t, 1000, actual.Price)
	})
}

func testInvalidRecords(t *testing.T, s campaign.Store) {
	t.Run("testInvalidRecords", func(t *testing.T) {
		ctx := context.Background()

		invalidFee := newTestRecord(0)
		invalidFee.AffiliateFeeBps = 10_001
		assert.Error(t, s.Put(ctx, invalidFee))

		oversold := newTestRecord(0)
		oversold.Minted = oversold.MaxSupply + 1
		assert.Error(t, s.Put(ctx, oversold))

		_, err := s.GetByAddress(ctx, "campaign0")
		assert.Equal(t, campaign.ErrCampaignNotFound, err)

		record := newTestRecord(0)
		record.MaxSupply = 1
		require.NoError(t, s.Put(ctx, record))

		record.Minted = 2
		assert.Error(t, s.Update(ctx, record))

		actual, err := s.GetByAddress(ctx, "campaign0")
		require.NoError(t, err)
		assert.EqualValues(t, 0, actual.Minted)
	})
}

func newTestRecord(i int) *campaign.Record {
	return &campaign.Record{
		Address:                 fmt.Sprintf("campaign%d", i),
		CampaignBump:            255,
		Creator:                 fmt.Sprintf("creator%d", i),
		CollectionMint:          fmt.Sprintf("collection_mint%d", i),
		Price:                   1000,
		AffiliateFeeBps:         500,
		MaxSupply:               10,
		MintAuthorityBump:       254,
		CollectionAuthorityBump: 253,
	}
}

func assertEquivalentRecords(t *testing.T, obj1, obj2 *campaign.Record) {
	assert.Equal(t, obj1.Id, obj2.Id)
	assert.Equal(t, obj1.Address, obj2.Address)
	assert.Equal(t, obj1.CampaignBump, obj2.CampaignBump)
	assert.Equal(t, obj1.Creator, obj2.Creator)
	assert.Equal(t, obj1.CollectionMint, obj2.CollectionMint)
	assert.Equal(t, obj1.Price, obj2.Price)
	assert.Equal(t, obj1.AffiliateFeeBps, obj2.AffiliateFeeBps)
	assert.Equal(t, obj1.Minted, obj2.Minted)
	assert.Equal(t, obj1.MaxSupply, obj2.MaxSupply)
	assert.Equal(t, obj1.MintAuthorityBump, obj2.MintAuthorityBump)
	assert.Equal(t, obj1.CollectionAuthorityBump, obj2.CollectionAuthorityBump)
	assert.Equal(t, obj1.Version, obj2.Version)
}
