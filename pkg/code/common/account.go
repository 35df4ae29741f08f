package common

import (
	"bytes"
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/code-payments/affiliate-market/pkg/solana"
	"github.com/code-payments/affiliate-market/pkg/solana/affiliatemarket"
	"github.com/code-payments/affiliate-market/pkg/solana/token"
)

type Account struct {
	publicKey  *Key
	privateKey *Key // Optional
}

// CampaignAccounts are the program derived accounts owned by a campaign.
// They're fully determined by the campaign's collection mint.
type CampaignAccounts struct {
	CollectionMint *Account

	Campaign     *Account
	CampaignBump uint8

	MintAuthority     *Account
	MintAuthorityBump uint8

	CollectionAuthority     *Account
	CollectionAuthorityBump uint8

	CollectionMetadata      *Account
	CollectionMasterEdition *Account
}

// NftAccounts are the accounts of a single collectible issued by a campaign
type NftAccounts struct {
	Index uint64

	Mint     *Account
	MintBump uint8

	Metadata      *Account
	MasterEdition *Account

	Owner             *Account
	OwnerTokenAccount *Account
}

func NewAccountFromPublicKey(publicKey *Key) (*Account, error) {
	account := &Account{
		publicKey: publicKey,
	}

	if err := account.Validate(); err != nil {
		return nil, err
	}
	return account, nil
}

func NewAccountFromPublicKeyBytes(publicKey []byte) (*Account, error) {
	key, err := NewKeyFromBytes(publicKey)
	if err != nil {
		return nil, err
	}

	return NewAccountFromPublicKey(key)
}

func NewAccountFromPublicKeyString(publicKey string) (*Account, error) {
	key, err := NewKeyFromString(publicKey)
	if err != nil {
		return nil, err
	}

	return NewAccountFromPublicKey(key)
}

func NewAccountFromPrivateKey(privateKey *Key) (*Account, error) {
	publicKeyBytes := ed25519.PrivateKey(privateKey.ToBytes()).Public().(ed25519.PublicKey)
	publicKey, err := NewKeyFromBytes(publicKeyBytes)
	if err != nil {
		return nil, errors.Wrap(err, "error creating public key from private key")
	}

	account := &Account{
		publicKey:  publicKey,
		privateKey: privateKey,
	}

	if err := account.Validate(); err != nil {
		return nil, err
	}
	return account, nil
}

func NewAccountFromPrivateKeyBytes(privateKey []byte) (*Account, error) {
	key, err := NewKeyFromBytes(privateKey)
	if err != nil {
		return nil, err
	}

	return NewAccountFromPrivateKey(key)
}

func NewAccountFromPrivateKeyString(privateKey string) (*Account, error) {
	key, err := NewKeyFromString(privateKey)
	if err != nil {
		return nil, err
	}

	return NewAccountFromPrivateKey(key)
}

func NewRandomAccount() (*Account, error) {
	key, err := NewRandomKey()
	if err != nil {
		return nil, err
	}

	account, err := NewAccountFromPrivateKey(key)
	if err != nil {
		return nil, errors.Wrap(err, "invalid account")
	}

	return account, nil
}

func (a *Account) PublicKey() *Key {
	return a.publicKey
}

func (a *Account) PrivateKey() *Key {
	return a.privateKey
}

func (a *Account) Sign(message []byte) ([]byte, error) {
	if a.privateKey == nil {
		return nil, errors.New("private key not available")
	}

	signature := ed25519.Sign(a.privateKey.ToBytes(), message)
	return signature, nil
}

// IsOnCurve reports whether the account could have a private key. Program
// derived addresses are never on the curve.
func (a *Account) IsOnCurve() bool {
	return solana.IsOnCurve(a.PublicKey().ToBytes())
}

func (a *Account) Equals(other *Account) bool {
	if a == nil || other == nil {
		return a == other
	}
	return a.PublicKey().Equals(other.PublicKey())
}

func (a *Account) ToAssociatedTokenAccount(mint *Account) (*Account, error) {
	if err := a.Validate(); err != nil {
		return nil, errors.Wrap(err, "error validating owner account")
	}

	ata, err := token.GetAssociatedAccount(a.PublicKey().ToBytes(), mint.PublicKey().ToBytes())
	if err != nil {
		return nil, err
	}

	return NewAccountFromPublicKeyBytes(ata)
}

// GetCampaignAccounts derives the campaign accounts for a collection mint
func (a *Account) GetCampaignAccounts() (*CampaignAccounts, error) {
	if err := a.Validate(); err != nil {
		return nil, errors.Wrap(err, "error validating collection mint account")
	}

	campaignAddress, campaignBump, err := affiliatemarket.GetCampaignAddress(&affiliatemarket.GetCampaignAddressArgs{
		CollectionMint: a.PublicKey().ToBytes(),
	})
	if err != nil {
		return nil, errors.Wrap(err, "error getting campaign address")
	}

	mintAuthorityAddress, mintAuthorityBump, err := affiliatemarket.GetMintAuthorityAddress(&affiliatemarket.GetMintAuthorityAddressArgs{
		Campaign: campaignAddress,
	})
	if err != nil {
		return nil, errors.Wrap(err, "error getting mint authority address")
	}

	collectionAuthorityAddress, collectionAuthorityBump, err := affiliatemarket.GetCollectionAuthorityAddress(&affiliatemarket.GetCollectionAuthorityAddressArgs{
		Campaign: campaignAddress,
	})
	if err != nil {
		return nil, errors.Wrap(err, "error getting collection authority address")
	}

	collectionMetadataAddress, _, err := affiliatemarket.GetMetadataAddress(&affiliatemarket.GetMetadataAddressArgs{
		Mint: a.PublicKey().ToBytes(),
	})
	if err != nil {
		return nil, errors.Wrap(err, "error getting collection metadata address")
	}

	collectionMasterEditionAddress, _, err := affiliatemarket.GetMasterEditionAddress(&affiliatemarket.GetMasterEditionAddressArgs{
		Mint: a.PublicKey().ToBytes(),
	})
	if err != nil {
		return nil, errors.Wrap(err, "error getting collection master edition address")
	}

	campaignAccount, err := NewAccountFromPublicKeyBytes(campaignAddress)
	if err != nil {
		return nil, err
	}
	mintAuthorityAccount, err := NewAccountFromPublicKeyBytes(mintAuthorityAddress)
	if err != nil {
		return nil, err
	}
	collectionAuthorityAccount, err := NewAccountFromPublicKeyBytes(collectionAuthorityAddress)
	if err != nil {
		return nil, err
	}
	collectionMetadataAccount, err := NewAccountFromPublicKeyBytes(collectionMetadataAddress)
	if err != nil {
		return nil, err
	}
	collectionMasterEditionAccount, err := NewAccountFromPublicKeyBytes(collectionMasterEditionAddress)
	if err != nil {
		return nil, err
	}

	return &CampaignAccounts{
		CollectionMint: a,

		Campaign:     campaignAccount,
		CampaignBump: campaignBump,

		MintAuthority:     mintAuthorityAccount,
		MintAuthorityBump: mintAuthorityBump,

		CollectionAuthority:     collectionAuthorityAccount,
		CollectionAuthorityBump: collectionAuthorityBump,

		CollectionMetadata:      collectionMetadataAccount,
		CollectionMasterEdition: collectionMasterEditionAccount,
	}, nil
}

// GetNftAccounts derives the accounts for the collectible at the provided
// index, held by the owner.
func (c *CampaignAccounts) GetNftAccounts(index uint64, owner *Account) (*NftAccounts, error) {
	mintAddress, mintBump, err := affiliatemarket.GetNftMintAddress(&affiliatemarket.GetNftMintAddressArgs{
		Campaign: c.Campaign.PublicKey().ToBytes(),
		Minted:   index,
	})
	if err != nil {
		return nil, errors.Wrap(err, "error getting nft mint address")
	}

	metadataAddress, _, err := affiliatemarket.GetMetadataAddress(&affiliatemarket.GetMetadataAddressArgs{
		Mint: mintAddress,
	})
	if err != nil {
		return nil, errors.Wrap(err, "error getting metadata address")
	}

	masterEditionAddress, _, err := affiliatemarket.GetMasterEditionAddress(&affiliatemarket.GetMasterEditionAddressArgs{
		Mint: mintAddress,
	})
	if err != nil {
		return nil, errors.Wrap(err, "error getting master edition address")
	}

	mintAccount, err := NewAccountFromPublicKeyBytes(mintAddress)
	if err != nil {
		return nil, err
	}
	metadataAccount, err := NewAccountFromPublicKeyBytes(metadataAddress)
	if err != nil {
		return nil, err
	}
	masterEditionAccount, err := NewAccountFromPublicKeyBytes(masterEditionAddress)
	if err != nil {
		return nil, err
	}
	ownerTokenAccount, err := owner.ToAssociatedTokenAccount(mintAccount)
	if err != nil {
		return nil, errors.Wrap(err, "error getting owner token account")
	}

	return &NftAccounts{
		Index: index,

		Mint:     mintAccount,
		MintBump: mintBump,

		Metadata:      metadataAccount,
		MasterEdition: masterEditionAccount,

		Owner:             owner,
		OwnerTokenAccount: ownerTokenAccount,
	}, nil
}

// GetAffiliateStatsAccount derives the stats account of an affiliate
func (c *CampaignAccounts) GetAffiliateStatsAccount(affiliate *Account) (*Account, uint8, error) {
	address, bump, err := affiliatemarket.GetAffiliateStatsAddress(&affiliatemarket.GetAffiliateStatsAddressArgs{
		Campaign:  c.Campaign.PublicKey().ToBytes(),
		Affiliate: affiliate.PublicKey().ToBytes(),
	})
	if err != nil {
		return nil, 0, errors.Wrap(err, "error getting affiliate stats address")
	}

	account, err := NewAccountFromPublicKeyBytes(address)
	if err != nil {
		return nil, 0, err
	}
	return account, bump, nil
}

func (a *Account) Validate() error {
	if a == nil {
		return errors.New("account is nil")
	}

	if err := a.PublicKey().Validate(); err != nil {
		return errors.Wrap(err, "error validating public key")
	}

	if !a.PublicKey().IsPublic() {
		return errors.New("public key isn't public")
	}

	// Private keys are optional
	if a.privateKey == nil {
		return nil
	}

	if err := a.privateKey.Validate(); err != nil {
		return errors.Wrap(err, "error validating private key")
	}

	if a.privateKey.IsPublic() {
		return errors.New("private key isn't private")
	}

	expectedPublicKey := ed25519.PrivateKey(a.privateKey.ToBytes()).Public().(ed25519.PublicKey)
	if !bytes.Equal(a.PublicKey().ToBytes(), expectedPublicKey) {
		return errors.New("private key doesn't map to public key")
	}

	return nil
}

func (a *Account) String() string {
	return a.PublicKey().ToBase58()
}
