package tests

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/affiliate-market/pkg/code/data/account"
)

func RunTests(t *testing.T, s account.Store, teardown func()) {
	for _, tf := range []func(t *testing.T, s account.Store){
		testHappyPath,
		testVersioning,
	} {
		tf(t, s)
		teardown()
	}
}

func testHappyPath(t *testing.T, s account.Store) {
	t.Run("testHappyPath", func(t *testing.T) {
		ctx := context.Background()

		_, err := s.Get(ctx, "wallet")
		assert.Equal(t, account.ErrAccountNotFound, err)

		start := time.Now()

		expected := &account.Record{
			Address:  "wallet",
			Owner:    "system",
			Lamports: 1_000_000,
		}
		require.NoError(t, s.Save(ctx, expected))
		assert.EqualValues(t, 1, expected.Id)
		assert.EqualValues(t, 1, expected.Version)
		assert.True(t, expected.CreatedAt.After(start))

		actual, err := s.Get(ctx, "wallet")
		require.NoError(t, err)
		assertEquivalentRecords(t, expected, actual)

		actual.Lamports -= 1_000
		actual.Owner = "token"
		actual.DataSize = 82
		require.NoError(t, s.Save(ctx, actual))
		assert.EqualValues(t, 2, actual.Version)

		refetched, err := s.Get(ctx, "wallet")
		require.NoError(t, err)
		assertEquivalentRecords(t, actual, refetched)
		assert.EqualValues(t, 999_000, refetched.Lamports)
		assert.Equal(t, "token", refetched.Owner)
		assert.EqualValues(t, 82, refetched.DataSize)
	})
}

func testVersioning(t *testing.T, s account.Store) {
	t.Run("testVersioning", func(t *testing.T) {
		ctx := context.Background()

		neverCreated := &account.Record{
			Address: "wallet",
			Owner:   "system",
			Version: 1,
		}
		assert.Equal(t, account.ErrStaleVersion, s.Save(ctx, neverCreated))

		_, err := s.Get(ctx, "wallet")
		assert.Equal(t, account.ErrAccountNotFound, err)

		created := &account.Record{
			Address:  "wallet",
			Owner:    "system",
			Lamports: 10,
		}
		require.NoError(t, s.Save(ctx, created))

		duplicate := &account.Record{
			Address:  "wallet",
			Owner:    "system",
			Lamports: 20,
		}
		assert.Equal(t, account.ErrStaleVersion, s.Save(ctx, duplicate))

		reader1, err := s.Get(ctx, "wallet")
		require.NoError(t, err)
		reader2, err := s.Get(ctx, "wallet")
		require.NoError(t, err)

		reader1.Lamports = 5
		require.NoError(t, s.Save(ctx, reader1))

		reader2.Lamports = 0
		assert.Equal(t, account.ErrStaleVersion, s.Save(ctx, reader2))

		actual, err := s.Get(ctx, "wallet")
		require.NoError(t, err)
		assert.EqualValues(t, 5, actual.Lamports)
		assert.EqualValues(t, 2, actual.Version)
	})
}

func assertEquivalentRecords(t *testing.T, obj1, obj2 *account.Record) {
	assert.Equal(t, obj1.Id, obj2.Id)
	assert.Equal(t, obj1.Address, obj2.Address)
	assert.Equal(t, obj1.Owner, obj2.Owner)
	assert.Equal(t, obj1.Lamports, obj2.Lamports)
	assert.Equal(t, obj1.DataSize, obj2.DataSize)
	assert.Equal(t, obj1.Version, obj2.Version)
}
