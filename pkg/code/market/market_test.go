package market

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/affiliate-market/pkg/code/common"
	code_data "github.com/code-payments/affiliate-market/pkg/code/data"
	"github.com/code-payments/affiliate-market/pkg/code/data/affiliate"
	"github.com/code-payments/affiliate-market/pkg/code/data/campaign"
	"github.com/code-payments/affiliate-market/pkg/code/ledger"
	memory_lock "github.com/code-payments/affiliate-market/pkg/lock/memory"
	"github.com/code-payments/affiliate-market/pkg/solana/system"
	"github.com/code-payments/affiliate-market/pkg/solana/token"
	"github.com/code-payments/affiliate-market/pkg/solana/tokenmetadata"
)

// mintRent is what a buyer pays to fund the accounts of a new collectible
var mintRent = system.MinimumBalanceForRentExemption(token.MintSize) +
	system.MinimumBalanceForRentExemption(token.AccountSize) +
	system.MinimumBalanceForRentExemption(tokenmetadata.MaxMetadataAccountSize) +
	system.MinimumBalanceForRentExemption(tokenmetadata.MaxMasterEditionAccountSize)

type testEnv struct {
	ctx     context.Context
	data    code_data.Provider
	runtime *ledger.Runtime
	locks   *memory_lock.Manager
	market  *Market
}

type testCampaign struct {
	creator        *common.Account
	collectionMint *common.Account
	accounts       *common.CampaignAccounts
	record         *campaign.Record
}

func setup(t *testing.T) *testEnv {
	return setupWithOverrides(t, &testOverrides{})
}

func setupWithOverrides(t *testing.T, overrides *testOverrides) *testEnv {
	data := code_data.NewTestDataProvider()
	runtime := ledger.NewRuntime(data)
	locks := memory_lock.NewLockManager()

	return &testEnv{
		ctx:     context.Background(),
		data:    data,
		runtime: runtime,
		locks:   locks,
		market:  NewMarket(data, runtime, locks, withManualTestOverrides(overrides)),
	}
}

func (e *testEnv) newAccount(t *testing.T) *common.Account {
	account, err := common.NewRandomAccount()
	require.NoError(t, err)
	return account
}

func (e *testEnv) newFundedAccount(t *testing.T, lamports uint64) *common.Account {
	account := e.newAccount(t)
	if lamports > 0 {
		require.NoError(t, e.runtime.Airdrop(e.ctx, account.PublicKey().ToBytes(), lamports))
	}
	return account
}

// createCampaign issues a sized collection owned by the campaign's collection
// authority, then creates the campaign selling into it.
func (e *testEnv) createCampaign(t *testing.T, price uint64, affiliateFeeBps uint16, maxSupply uint64) *testCampaign {
	creator := e.newAccount(t)
	collectionMint := e.newAccount(t)

	accounts, err := collectionMint.GetCampaignAccounts()
	require.NoError(t, err)

	payer := e.newFundedAccount(t, 1_000_000_000)
	require.NoError(t, e.runtime.IssueSizedCollection(
		e.ctx,
		payer.PublicKey().ToBytes(),
		collectionMint.PublicKey().ToBytes(),
		accounts.CollectionAuthority.PublicKey().ToBytes(),
		&ledger.CollectionArgs{
			Name:   "Collection",
			Symbol: "COL",
			Uri:    "https://example.com/collection.json",
		},
	))

	record, err := e.market.CreateCampaign(e.ctx, creator, collectionMint, price, affiliateFeeBps, maxSupply)
	require.NoError(t, err)

	return &testCampaign{
		creator:        creator,
		collectionMint: collectionMint,
		accounts:       accounts,
		record:         record,
	}
}

func (e *testEnv) newMintRequest(t *testing.T, c *testCampaign, buyer *common.Account, referrer Affiliate) *ProcessMintRequest {
	mintAccounts, err := e.market.GetMintAccounts(e.ctx, c.accounts.Campaign, buyer)
	require.NoError(t, err)

	return &ProcessMintRequest{
		Buyer:     buyer,
		Campaign:  c.accounts.Campaign,
		Creator:   c.creator,
		Affiliate: referrer,

		NftMint:       mintAccounts.NftAccounts.Mint,
		Metadata:      mintAccounts.NftAccounts.Metadata,
		MasterEdition: mintAccounts.NftAccounts.MasterEdition,

		CollectionMint:          c.collectionMint,
		CollectionMetadata:      c.accounts.CollectionMetadata,
		CollectionMasterEdition: c.accounts.CollectionMasterEdition,

		Name:   "Collectible",
		Symbol: "NFT",
		Uri:    "https://example.com/collectible.json",
	}
}

func (e *testEnv) assertBalance(t *testing.T, account *common.Account, expected uint64) {
	balance, err := e.runtime.GetBalance(e.ctx, account.PublicKey().ToBytes())
	require.NoError(t, err)
	assert.Equal(t, expected, balance, account.PublicKey().ToBase58())
}

func (e *testEnv) assertMinted(t *testing.T, c *testCampaign, expected uint64) {
	record, err := e.market.GetCampaign(e.ctx, c.accounts.Campaign)
	require.NoError(t, err)
	assert.Equal(t, expected, record.Minted)
	assert.True(t, record.Minted <= record.MaxSupply)
}

func (e *testEnv) assertAffiliateStats(t *testing.T, c *testCampaign, referrer *common.Account, totalMints, totalEarned uint64) *affiliate.Record {
	stats, err := e.market.GetAffiliateStats(e.ctx, c.accounts.Campaign, referrer)
	require.NoError(t, err)
	assert.Equal(t, totalMints, stats.TotalMints)
	assert.Equal(t, totalEarned, stats.TotalEarned)
	return stats
}

func (e *testEnv) assertNoAffiliateStats(t *testing.T, c *testCampaign, referrer *common.Account) {
	_, err := e.market.GetAffiliateStats(e.ctx, c.accounts.Campaign, referrer)
	assert.Equal(t, ErrAffiliateStatsNotFound, err)
}

// assertCollectible verifies the state of an issued collectible
func (e *testEnv) assertCollectible(t *testing.T, c *testCampaign, result *MintResult, buyer *common.Account) {
	tokenAccount, err := e.data.GetTokenAccount(e.ctx, result.BuyerTokenAccount.PublicKey().ToBase58())
	require.NoError(t, err)
	assert.EqualValues(t, 1, tokenAccount.Amount)
	assert.Equal(t, buyer.PublicKey().ToBase58(), tokenAccount.Owner)
	assert.Equal(t, result.Mint.PublicKey().ToBase58(), tokenAccount.Mint)

	mint, err := e.data.GetTokenMint(e.ctx, result.Mint.PublicKey().ToBase58())
	require.NoError(t, err)
	assert.EqualValues(t, 1, mint.Supply)
	assert.EqualValues(t, 0, mint.Decimals)
	require.NotNil(t, mint.MintAuthority)
	assert.Equal(t, result.MasterEdition.PublicKey().ToBase58(), *mint.MintAuthority)

	metadata, err := e.data.GetTokenMetadata(e.ctx, result.Metadata.PublicKey().ToBase58())
	require.NoError(t, err)
	assert.Equal(t, "Collectible", metadata.Name)
	assert.Equal(t, "NFT", metadata.Symbol)
	assert.Equal(t, "https://example.com/collectible.json", metadata.Uri)
	assert.EqualValues(t, 0, metadata.SellerFeeBasisPoints)
	assert.True(t, metadata.IsMutable)
	assert.Equal(t, c.accounts.MintAuthority.PublicKey().ToBase58(), metadata.UpdateAuthority)
	require.NotNil(t, metadata.CollectionMint)
	assert.Equal(t, c.collectionMint.PublicKey().ToBase58(), *metadata.CollectionMint)
	assert.True(t, metadata.CollectionVerified)

	edition, err := e.data.GetMasterEdition(e.ctx, result.MasterEdition.PublicKey().ToBase58())
	require.NoError(t, err)
	require.NotNil(t, edition.MaxSupply)
	assert.EqualValues(t, 0, *edition.MaxSupply)
}

func (e *testEnv) assertCollectionSize(t *testing.T, c *testCampaign, expected uint64) {
	metadata, err := e.data.GetTokenMetadata(e.ctx, c.accounts.CollectionMetadata.PublicKey().ToBase58())
	require.NoError(t, err)
	require.NotNil(t, metadata.CollectionSize)
	assert.Equal(t, expected, *metadata.CollectionSize)
}
