package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/affiliate-market/pkg/code/common"
	"github.com/code-payments/affiliate-market/pkg/solana"
	"github.com/code-payments/affiliate-market/pkg/solana/affiliatemarket"
)

func TestAuthority_DeriveAndVerify(t *testing.T) {
	collectionMint, err := common.NewRandomAccount()
	require.NoError(t, err)

	accounts, err := collectionMint.GetCampaignAccounts()
	require.NoError(t, err)

	campaignAuthority, err := DeriveAuthority(campaignSeeds(collectionMint)...)
	require.NoError(t, err)
	assert.True(t, campaignAuthority.Address.Equals(accounts.Campaign))
	assert.Equal(t, accounts.CampaignBump, campaignAuthority.Bump)
	assert.False(t, campaignAuthority.Address.IsOnCurve())

	mintAuthority, err := DeriveAuthority(mintAuthoritySeeds(accounts.Campaign)...)
	require.NoError(t, err)
	assert.True(t, mintAuthority.Address.Equals(accounts.MintAuthority))
	assert.Equal(t, accounts.MintAuthorityBump, mintAuthority.Bump)

	collectionAuthority, err := DeriveAuthority(collectionAuthoritySeeds(accounts.Campaign)...)
	require.NoError(t, err)
	assert.True(t, collectionAuthority.Address.Equals(accounts.CollectionAuthority))
	assert.False(t, collectionAuthority.Address.Equals(mintAuthority.Address))

	verified, err := VerifyAuthority(accounts.MintAuthority, accounts.MintAuthorityBump, mintAuthoritySeeds(accounts.Campaign)...)
	require.NoError(t, err)
	assert.Equal(t, mintAuthority.SignerSeeds(), verified.SignerSeeds())

	_, err = VerifyAuthority(accounts.MintAuthority, accounts.MintAuthorityBump-1, mintAuthoritySeeds(accounts.Campaign)...)
	assert.Equal(t, ErrAuthorityMismatch, err)

	_, err = VerifyAuthority(accounts.CollectionAuthority, accounts.MintAuthorityBump, mintAuthoritySeeds(accounts.Campaign)...)
	assert.Equal(t, ErrAuthorityMismatch, err)

	_, err = VerifyAuthority(nil, accounts.MintAuthorityBump, mintAuthoritySeeds(accounts.Campaign)...)
	assert.Equal(t, ErrAuthorityMismatch, err)
}

func TestAuthority_SignerSeedsRederive(t *testing.T) {
	campaign, err := common.NewRandomAccount()
	require.NoError(t, err)

	for index := uint64(0); index < 5; index++ {
		authority, err := DeriveAuthority(nftMintSeeds(campaign, index)...)
		require.NoError(t, err)

		seeds := authority.SignerSeeds()
		require.Len(t, seeds, 4)
		assert.Equal(t, []byte{authority.Bump}, seeds[3])

		rederived, err := solana.CreateProgramAddress(affiliatemarket.PROGRAM_ID, seeds...)
		require.NoError(t, err)
		assert.EqualValues(t, authority.Address.PublicKey().ToBytes(), rederived)

		// Signer seeds must not alias the authority's own seeds
		seeds[0] = []byte("tampered")
		assert.Equal(t, affiliatemarket.NftMintPrefix, authority.SignerSeeds()[0])
	}
}
