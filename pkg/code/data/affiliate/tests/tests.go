package tests

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/affiliate-market/pkg/code/data/affiliate"
)

func RunTests(t *testing.T, s affiliate.Store, teardown func()) {
	for _, tf := range []func(t *testing.T, s affiliate.Store){
		testHappyPath,
		testInitializeNeverClobbers,
		testConcurrentInitialization,
		testOptimisticUpdates,
		testGetAllByCampaign,
	} {
		tf(t, s)
		teardown()
	}
}

func testHappyPath(t *testing.T, s affiliate.Store) {
	t.Run("testHappyPath", func(t *testing.T) {
		ctx := context.Background()

		_, err := s.Get(ctx, "campaign", "affiliate0")
		assert.Equal(t, affiliate.ErrStatsNotFound, err)

		record := newTestRecord("campaign", 0)
		require.NoError(t, s.InitializeIfAbsent(ctx, record))
		assert.EqualValues(t, 1, record.Id)
		assert.EqualValues(t, 1, record.Version)
		assert.EqualValues(t, 0, record.TotalMints)
		assert.EqualValues(t, 0, record.TotalEarned)

		actual, err := s.Get(ctx, "campaign", "affiliate0")
		require.NoError(t, err)
		assertEquivalentRecords(t, record, actual)

		for i := 1; i <= 3; i++ {
			actual.TotalMints++
			actual.TotalEarned += 50
			require.NoError(t, s.Update(ctx, actual))
			assert.EqualValues(t, i+1, actual.Version)

			refetched, err := s.Get(ctx, "campaign", "affiliate0")
			require.NoError(t, err)
			assertEquivalentRecords(t, actual, refetched)
		}

		assert.EqualValues(t, 3, actual.TotalMints)
		assert.EqualValues(t, 150, actual.TotalEarned)
	})
}

func testInitializeNeverClobbers(t *testing.T, s affiliate.Store) {
	t.Run("testInitializeNeverClobbers", func(t *testing.T) {
		ctx := context.Background()

		record := newTestRecord("campaign", 0)
		require.NoError(t, s.InitializeIfAbsent(ctx, record))

		record.TotalMints = 2
		record.TotalEarned = 100
		require.NoError(t, s.Update(ctx, record))

		again := newTestRecord("campaign", 0)
		require.NoError(t, s.InitializeIfAbsent(ctx, again))
		assertEquivalentRecords(t, record, again)

		actual, err := s.Get(ctx, "campaign", "affiliate0")
		require.NoError(t, err)
		assert.EqualValues(t, 2, actual.TotalMints)
		assert.EqualValues(t, 100, actual.TotalEarned)
	})
}

func testConcurrentInitialization(t *testing.T, s affiliate.Store) {
	t.Run("testConcurrentInitialization", func(t *testing.T) {
		ctx := context.Background()

		var wg sync.WaitGroup
		ids := make([]uint64, 10)
		for i := range ids {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()

				record := newTestRecord("campaign", 0)
				assert.NoError(t, s.InitializeIfAbsent(ctx, record))
				ids[i] = record.Id
			}(i)
		}
		wg.Wait()

		for _, id := range ids {
			assert.Equal(t, ids[0], id)
		}

		all, err := s.GetAllByCampaign(ctx, "campaign")
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})
}

func testOptimisticUpdates(t *testing.T, s affiliate.Store) {
	t.Run("testOptimisticUpdates", func(t *testing.T) {
		ctx := context.Background()

		missing := newTestRecord("campaign", 0)
		missing.Version = 1
		assert.Equal(t, affiliate.ErrStatsNotFound, s.Update(ctx, missing))

		require.NoError(t, s.InitializeIfAbsent(ctx, newTestRecord("campaign", 0)))

		reader1, err := s.Get(ctx, "campaign", "affiliate0")
		require.NoError(t, err)
		reader2, err := s.Get(ctx, "campaign", "affiliate0")
		require.NoError(t, err)

		reader1.TotalMints++
		reader1.TotalEarned += 10
		require.NoError(t, s.Update(ctx, reader1))

		reader2.TotalMints++
		reader2.TotalEarned += 20
		assert.Equal(t, affiliate.ErrStaleVersion, s.Update(ctx, reader2))

		actual, err := s.Get(ctx, "campaign", "affiliate0")
		require.NoError(t, err)
		assert.EqualValues(t, 1, actual.TotalMints)
		assert.EqualValues(t, 10, actual.TotalEarned)
	})
}

func testGetAllByCampaign(t *testing.T, s affiliate.Store) {
	t.Run("testGetAllByCampaign", func(t *testing.T) {
		ctx := context.Background()

		_, err := s.GetAllByCampaign(ctx, "campaign1")
		assert.Equal(t, affiliate.ErrStatsNotFound, err)

		for i := 0; i < 3; i++ {
			require.NoError(t, s.InitializeIfAbsent(ctx, newTestRecord("campaign1", i)))
		}
		require.NoError(t, s.InitializeIfAbsent(ctx, newTestRecord("campaign2", 0)))

		actual, err := s.GetAllByCampaign(ctx, "campaign1")
		require.NoError(t, err)
		require.Len(t, actual, 3)
		for i, record := range actual {
			assert.Equal(t, "campaign1", record.Campaign)
			assert.Equal(t, fmt.Sprintf("affiliate%d", i), record.Affiliate)
		}

		actual, err = s.GetAllByCampaign(ctx, "campaign2")
		require.NoError(t, err)
		require.Len(t, actual, 1)
	})
}

func newTestRecord(campaign string, i int) *affiliate.Record {
	return &affiliate.Record{
		Address:   fmt.Sprintf("%s_stats%d", campaign, i),
		Bump:      255,
		Campaign:  campaign,
		Affiliate: fmt.Sprintf("affiliate%d", i),
	}
}

func assertEquivalentRecords(t *testing.T, obj1, obj2 *affiliate.Record) {
	assert.Equal(t, obj1.Id, obj2.Id)
	assert.Equal(t, obj1.Address, obj2.Address)
	assert.Equal(t, obj1.Bump, obj2.Bump)
	assert.Equal(t, obj1.Campaign, obj2.Campaign)
	assert.Equal(t, obj1.Affiliate, obj2.Affiliate)
	assert.Equal(t, obj1.TotalMints, obj2.TotalMints)
	assert.Equal(t, obj1.TotalEarned, obj2.TotalEarned)
	assert.Equal(t, obj1.Version, obj2.Version)
}
