package tests

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/affiliate-market/pkg/code/data/token"
	"github.com/code-payments/affiliate-market/pkg/pointer"
)

func RunTests(t *testing.T, s token.Store, teardown func()) {
	for _, tf := range []func(t *testing.T, s token.Store){
		testMintHappyPath,
		testTokenAccountHappyPath,
		testGetTokenAccountsByOwner,
		testVersioning,
	} {
		tf(t, s)
		teardown()
	}
}

func testMintHappyPath(t *testing.T, s token.Store) {
	t.Run("testMintHappyPath", func(t *testing.T) {
		ctx := context.Background()

		_, err := s.GetMint(ctx, "mint")
		assert.Equal(t, token.ErrMintNotFound, err)

		expected := &token.MintRecord{
			Address:         "mint",
			Decimals:        0,
			MintAuthority:   pointer.To("mint_auth"),
			FreezeAuthority: pointer.To("mint_auth"),
		}
		require.NoError(t, s.SaveMint(ctx, expected))
		assert.True(t, expected.Id > 0)
		assert.EqualValues(t, 1, expected.Version)

		actual, err := s.GetMint(ctx, "mint")
		require.NoError(t, err)
		assertEquivalentMints(t, expected, actual)

		actual.Supply = 1
		actual.MintAuthority = pointer.To("edition")
		actual.FreezeAuthority = nil
		require.NoError(t, s.SaveMint(ctx, actual))
		assert.EqualValues(t, 2, actual.Version)

		refetched, err := s.GetMint(ctx, "mint")
		require.NoError(t, err)
		assertEquivalentMints(t, actual, refetched)
		assert.EqualValues(t, 1, refetched.Supply)
		require.NotNil(t, refetched.MintAuthority)
		assert.Equal(t, "edition", *refetched.MintAuthority)
		assert.Nil(t, refetched.FreezeAuthority)
	})
}

func testTokenAccountHappyPath(t *testing.T, s token.Store) {
	t.Run("testTokenAccountHappyPath", func(t *testing.T) {
		ctx := context.Background()

		_, err := s.GetTokenAccount(ctx, "ata")
		assert.Equal(t, token.ErrTokenAccountNotFound, err)

		expected := &token.AccountRecord{
			Address: "ata",
			Mint:    "mint",
			Owner:   "buyer",
		}
		require.NoError(t, s.SaveTokenAccount(ctx, expected))
		assert.True(t, expected.Id > 0)
		assert.EqualValues(t, 1, expected.Version)

		actual, err := s.GetTokenAccount(ctx, "ata")
		require.NoError(t, err)
		assertEquivalentTokenAccounts(t, expected, actual)

		actual.Amount = 1
		require.NoError(t, s.SaveTokenAccount(ctx, actual))
		assert.EqualValues(t, 2, actual.Version)

		refetched, err := s.GetTokenAccount(ctx, "ata")
		require.NoError(t, err)
		assertEquivalentTokenAccounts(t, actual, refetched)
		assert.EqualValues(t, 1, refetched.Amount)
	})
}

func testGetTokenAccountsByOwner(t *testing.T, s token.Store) {
	t.Run("testGetTokenAccountsByOwner", func(t *testing.T) {
		ctx := context.Background()

		_, err := s.GetTokenAccountsByOwner(ctx, "buyer")
		assert.Equal(t, token.ErrTokenAccountNotFound, err)

		var expected []*token.AccountRecord
		for i := 0; i < 5; i++ {
			record := &token.AccountRecord{
				Address: fmt.Sprintf("ata%d", i),
				Mint:    fmt.Sprintf("mint%d", i),
				Owner:   "buyer",
				Amount:  1,
			}
			require.NoError(t, s.SaveTokenAccount(ctx, record))
			expected = append(expected, record)
		}

		require.NoError(t, s.SaveTokenAccount(ctx, &token.AccountRecord{
			Address: "other_ata",
			Mint:    "mint0",
			Owner:   "other",
		}))

		actual, err := s.GetTokenAccountsByOwner(ctx, "buyer")
		require.NoError(t, err)
		require.Len(t, actual, len(expected))
		for i := range expected {
			assertEquivalentTokenAccounts(t, expected[i], actual[i])
		}

		actual, err = s.GetTokenAccountsByOwner(ctx, "other")
		require.NoError(t, err)
		require.Len(t, actual, 1)
		assert.Equal(t, "other_ata", actual[0].Address)
	})
}

func testVersioning(t *testing.T, s token.Store) {
	t.Run("testVersioning", func(t *testing.T) {
		ctx := context.Background()

		assert.Equal(t, token.ErrStaleVersion, s.SaveMint(ctx, &token.MintRecord{
			Address: "mint",
			Version: 1,
		}))
		assert.Equal(t, token.ErrStaleVersion, s.SaveTokenAccount(ctx, &token.AccountRecord{
			Address: "ata",
			Mint:    "mint",
			Owner:   "buyer",
			Version: 1,
		}))

		require.NoError(t, s.SaveMint(ctx, &token.MintRecord{Address: "mint"}))
		assert.Equal(t, token.ErrStaleVersion, s.SaveMint(ctx, &token.MintRecord{Address: "mint", Supply: 5}))

		reader1, err := s.GetMint(ctx, "mint")
		require.NoError(t, err)
		reader2, err := s.GetMint(ctx, "mint")
		require.NoError(t, err)

		reader1.Supply = 1
		require.NoError(t, s.SaveMint(ctx, reader1))

		reader2.Supply = 2
		assert.Equal(t, token.ErrStaleVersion, s.SaveMint(ctx, reader2))

		actual, err := s.GetMint(ctx, "mint")
		require.NoError(t, err)
		assert.EqualValues(t, 1, actual.Supply)

		require.NoError(t, s.SaveTokenAccount(ctx, &token.AccountRecord{Address: "ata", Mint: "mint", Owner: "buyer"}))
		assert.Equal(t, token.ErrStaleVersion, s.SaveTokenAccount(ctx, &token.AccountRecord{Address: "ata", Mint: "mint", Owner: "buyer"}))
	})
}

func assertEquivalentMints(t *testing.T, obj1, obj2 *token.MintRecord) {
	assert.Equal(t, obj1.Id, obj2.Id)
	assert.Equal(t, obj1.Address, obj2.Address)
	assert.Equal(t, obj1.Decimals, obj2.Decimals)
	assert.Equal(t, obj1.Supply, obj2.Supply)
	assert.EqualValues(t, obj1.MintAuthority, obj2.MintAuthority)
	assert.EqualValues(t, obj1.FreezeAuthority, obj2.FreezeAuthority)
	assert.Equal(t, obj1.Version, obj2.Version)
}

func assertEquivalentTokenAccounts(t *testing.T, obj1, obj2 *token.AccountRecord) {
	assert.Equal(t, obj1.Id, obj2.Id)
	assert.Equal(t, obj1.Address, obj2.Address)
	assert.Equal(t, obj1.Mint, obj2.Mint)
	assert.Equal(t, obj1.Owner, obj2.Owner)
	assert.Equal(t, obj1.Amount, obj2.Amount)
	assert.Equal(t, obj1.Version, obj2.Version)
}
