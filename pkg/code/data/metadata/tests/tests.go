package tests

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/affiliate-market/pkg/code/data/metadata"
	"github.com/code-payments/affiliate-market/pkg/pointer"
)

func RunTests(t *testing.T, s metadata.Store, teardown func()) {
	for _, tf := range []func(t *testing.T, s metadata.Store){
		testMetadataHappyPath,
		testMetadataVersioning,
		testEditionHappyPath,
		testInvalidRecords,
	} {
		tf(t, s)
		teardown()
	}
}

func testMetadataHappyPath(t *testing.T, s metadata.Store) {
	t.Run("testMetadataHappyPath", func(t *testing.T) {
		ctx := context.Background()

		_, err := s.GetMetadata(ctx, "collection_metadata")
		assert.Equal(t, metadata.ErrMetadataNotFound, err)

		collection := &metadata.Record{
			Address:         "collection_metadata",
			Mint:            "collection_mint",
			UpdateAuthority: "collection_auth",
			Name:            "Collection",
			Symbol:          "COL",
			Uri:             "https://example.com/collection.json",
			IsMutable:       true,
			CollectionSize:  pointer.To(uint64(0)),
		}
		require.NoError(t, s.SaveMetadata(ctx, collection))
		assert.True(t, collection.Id > 0)
		assert.EqualValues(t, 1, collection.Version)

		item := &metadata.Record{
			Address:              "item_metadata",
			Mint:                 "item_mint",
			UpdateAuthority:      "mint_auth",
			Name:                 "Item #1",
			Symbol:               "ITEM",
			Uri:                  "https://example.com/1.json",
			SellerFeeBasisPoints: 0,
			IsMutable:            true,
			CollectionMint:       pointer.To("collection_mint"),
		}
		require.NoError(t, s.SaveMetadata(ctx, item))

		actual, err := s.GetMetadata(ctx, "item_metadata")
		require.NoError(t, err)
		assertEquivalentMetadata(t, item, actual)
		assert.False(t, actual.CollectionVerified)
		assert.Nil(t, actual.CollectionSize)

		actual.CollectionVerified = true
		require.NoError(t, s.SaveMetadata(ctx, actual))
		assert.EqualValues(t, 2, actual.Version)

		fetchedCollection, err := s.GetMetadata(ctx, "collection_metadata")
		require.NoError(t, err)
		assertEquivalentMetadata(t, collection, fetchedCollection)

		*fetchedCollection.CollectionSize++
		require.NoError(t, s.SaveMetadata(ctx, fetchedCollection))

		refetched, err := s.GetMetadata(ctx, "item_metadata")
		require.NoError(t, err)
		assertEquivalentMetadata(t, actual, refetched)
		assert.True(t, refetched.CollectionVerified)

		refetched, err = s.GetMetadata(ctx, "collection_metadata")
		require.NoError(t, err)
		require.NotNil(t, refetched.CollectionSize)
		assert.EqualValues(t, 1, *refetched.CollectionSize)
	})
}

func testMetadataVersioning(t *testing.T, s metadata.Store) {
	t.Run("testMetadataVersioning", func(t *testing.T) {
		ctx := context.Background()

		record := &metadata.Record{
			Address:         "metadata",
			Mint:            "mint",
			UpdateAuthority: "auth",
			Name:            "name",
			Version:         1,
		}
		assert.Equal(t, metadata.ErrStaleVersion, s.SaveMetadata(ctx, record))

		record.Version = 0
		require.NoError(t, s.SaveMetadata(ctx, record))

		duplicate := record.Clone()
		duplicate.Version = 0
		assert.Equal(t, metadata.ErrStaleVersion, s.SaveMetadata(ctx, &duplicate))

		reader1, err := s.GetMetadata(ctx, "metadata")
		require.NoError(t, err)
		reader2, err := s.GetMetadata(ctx, "metadata")
		require.NoError(t, err)

		reader1.Name = "first"
		require.NoError(t, s.SaveMetadata(ctx, reader1))

		reader2.Name = "second"
		assert.Equal(t, metadata.ErrStaleVersion, s.SaveMetadata(ctx, reader2))

		actual, err := s.GetMetadata(ctx, "metadata")
		require.NoError(t, err)
		assert.Equal(t, "first", actual.Name)
	})
}

func testEditionHappyPath(t *testing.T, s metadata.Store) {
	t.Run("testEditionHappyPath", func(t *testing.T) {
		ctx := context.Background()

		_, err := s.GetEdition(ctx, "edition")
		assert.Equal(t, metadata.ErrEditionNotFound, err)

		expected := &metadata.EditionRecord{
			Address:   "edition",
			Mint:      "mint",
			MaxSupply: pointer.To(uint64(0)),
		}
		require.NoError(t, s.SaveEdition(ctx, expected))
		assert.True(t, expected.Id > 0)

		actual, err := s.GetEdition(ctx, "edition")
		require.NoError(t, err)
		assertEquivalentEditions(t, expected, actual)

		assert.Equal(t, metadata.ErrEditionExists, s.SaveEdition(ctx, &metadata.EditionRecord{
			Address: "edition",
			Mint:    "mint",
		}))

		unbounded := &metadata.EditionRecord{
			Address: "unbounded_edition",
			Mint:    "other_mint",
		}
		require.NoError(t, s.SaveEdition(ctx, unbounded))

		actual, err = s.GetEdition(ctx, "unbounded_edition")
		require.NoError(t, err)
		assert.Nil(t, actual.MaxSupply)
	})
}

func testInvalidRecords(t *testing.T, s metadata.Store) {
	t.Run("testInvalidRecords", func(t *testing.T) {
		ctx := context.Background()

		for _, record := range []*metadata.Record{
			{Mint: "mint", UpdateAuthority: "auth"},
			{Address: "metadata", UpdateAuthority: "auth"},
			{Address: "metadata", Mint: "mint"},
			{Address: "metadata", Mint: "mint", UpdateAuthority: "auth", Name: "this name is far too long to fit in metadata"},
			{Address: "metadata", Mint: "mint", UpdateAuthority: "auth", SellerFeeBasisPoints: 10001},
			{Address: "metadata", Mint: "mint", UpdateAuthority: "auth", CollectionVerified: true},
		} {
			assert.Error(t, s.SaveMetadata(ctx, record))
		}

		_, err := s.GetMetadata(ctx, "metadata")
		assert.Equal(t, metadata.ErrMetadataNotFound, err)

		assert.Error(t, s.SaveEdition(ctx, &metadata.EditionRecord{
			Address:   "edition",
			Mint:      "mint",
			MaxSupply: pointer.To(uint64(0)),
			Supply:    1,
		}))
	})
}

func assertEquivalentMetadata(t *testing.T, obj1, obj2 *metadata.Record) {
	assert.Equal(t, obj1.Id, obj2.Id)
	assert.Equal(t, obj1.Address, obj2.Address)
	assert.Equal(t, obj1.Mint, obj2.Mint)
	assert.Equal(t, obj1.UpdateAuthority, obj2.UpdateAuthority)
	assert.Equal(t, obj1.Name, obj2.Name)
	assert.Equal(t, obj1.Symbol, obj2.Symbol)
	assert.Equal(t, obj1.Uri, obj2.Uri)
	assert.Equal(t, obj1.SellerFeeBasisPoints, obj2.SellerFeeBasisPoints)
	assert.Equal(t, obj1.IsMutable, obj2.IsMutable)
	assert.EqualValues(t, obj1.CollectionMint, obj2.CollectionMint)
	assert.Equal(t, obj1.CollectionVerified, obj2.CollectionVerified)
	assert.EqualValues(t, obj1.CollectionSize, obj2.CollectionSize)
	assert.Equal(t, obj1.Version, obj2.Version)
}

func assertEquivalentEditions(t *testing.T, obj1, obj2 *metadata.EditionRecord) {
	assert.Equal(t, obj1.Id, obj2.Id)
	assert.Equal(t, obj1.Address, obj2.Address)
	assert.Equal(t, obj1.Mint, obj2.Mint)
	assert.EqualValues(t, obj1.MaxSupply, obj2.MaxSupply)
	assert.Equal(t, obj1.Supply, obj2.Supply)
}
