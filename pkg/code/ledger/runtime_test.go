package ledger

import (
	"context"
	"crypto/ed25519"
	"errors"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	code_data "github.com/code-payments/affiliate-market/pkg/code/data"
	"github.com/code-payments/affiliate-market/pkg/solana"
	"github.com/code-payments/affiliate-market/pkg/solana/system"
	"github.com/code-payments/affiliate-market/pkg/solana/token"
	"github.com/code-payments/affiliate-market/pkg/solana/tokenmetadata"
)

type testEnv struct {
	ctx     context.Context
	data    code_data.DatabaseData
	runtime *Runtime
}

func setup(t *testing.T) testEnv {
	data := code_data.NewTestDatabaseProvider()
	return testEnv{
		ctx:     context.Background(),
		data:    data,
		runtime: NewRuntime(data),
	}
}

func newKey(t *testing.T) ed25519.PublicKey {
	pub, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	return pub
}

func (e testEnv) assertBalance(t *testing.T, address ed25519.PublicKey, expected uint64) {
	balance, err := e.runtime.GetBalance(e.ctx, address)
	require.NoError(t, err)
	assert.Equal(t, expected, balance)
}

func TestTransfer(t *testing.T) {
	env := setup(t)

	from := newKey(t)
	to := newKey(t)

	env.assertBalance(t, from, 0)

	err := env.runtime.Invoke(env.ctx, system.Transfer(from, to, 1), from)
	assert.True(t, errors.Is(err, ErrInsufficientFunds))

	require.NoError(t, env.runtime.Airdrop(env.ctx, from, 1_000))

	require.NoError(t, env.runtime.Invoke(env.ctx, system.Transfer(from, to, 400), from))
	env.assertBalance(t, from, 600)
	env.assertBalance(t, to, 400)

	err = env.runtime.Invoke(env.ctx, system.Transfer(from, to, 601), from)
	assert.True(t, errors.Is(err, ErrInsufficientFunds))
	env.assertBalance(t, from, 600)

	require.NoError(t, env.runtime.Invoke(env.ctx, system.Transfer(from, to, 0), from))
	env.assertBalance(t, from, 600)
	env.assertBalance(t, to, 400)
}

func TestMissingSignature(t *testing.T) {
	env := setup(t)

	from := newKey(t)
	to := newKey(t)
	require.NoError(t, env.runtime.Airdrop(env.ctx, from, 1_000))

	err := env.runtime.Invoke(env.ctx, system.Transfer(from, to, 1))
	assert.True(t, errors.Is(err, ErrMissingSignature))

	err = env.runtime.Invoke(env.ctx, system.Transfer(from, to, 1), to)
	assert.True(t, errors.Is(err, ErrMissingSignature))

	env.assertBalance(t, from, 1_000)
}

func TestInvokeSigned_ProgramDerivedSigner(t *testing.T) {
	env := setup(t)

	program := newKey(t)
	payer := newKey(t)
	require.NoError(t, env.runtime.Airdrop(env.ctx, payer, 10_000_000))

	seed := newKey(t)
	derived, bump, err := solana.FindProgramAddressAndBump(program, []byte("nft_mint"), seed)
	require.NoError(t, err)

	size := uint64(token.MintSize)
	lamports := system.MinimumBalanceForRentExemption(size)
	ix := system.CreateAccount(payer, derived, token.ProgramKey, lamports, size)

	err = env.runtime.InvokeSigned(env.ctx, program, ix, []ed25519.PublicKey{payer})
	assert.True(t, errors.Is(err, ErrMissingSignature))

	err = env.runtime.InvokeSigned(env.ctx, program, ix, []ed25519.PublicKey{payer}, [][]byte{[]byte("nft_mint"), seed, {bump - 1}})
	assert.Error(t, err)

	err = env.runtime.InvokeSigned(env.ctx, newKey(t), ix, []ed25519.PublicKey{payer}, [][]byte{[]byte("nft_mint"), seed, {bump}})
	assert.True(t, errors.Is(err, ErrMissingSignature))

	err = env.runtime.InvokeSigned(env.ctx, program, ix, []ed25519.PublicKey{payer}, [][]byte{[]byte("nft_mint"), seed, {bump}})
	require.NoError(t, err)

	env.assertBalance(t, payer, 10_000_000-lamports)

	info, err := env.data.GetAccountInfo(env.ctx, base58.Encode(derived))
	require.NoError(t, err)
	assert.Equal(t, tokenProgramOwner, info.Owner)
	assert.Equal(t, lamports, info.Lamports)
	assert.Equal(t, size, info.DataSize)

	err = env.runtime.InvokeSigned(env.ctx, program, ix, []ed25519.PublicKey{payer}, [][]byte{[]byte("nft_mint"), seed, {bump}})
	assert.True(t, errors.Is(err, ErrAccountInUse))
}

func TestCreateAccount_RentExemption(t *testing.T) {
	env := setup(t)

	payer := newKey(t)
	address := newKey(t)
	require.NoError(t, env.runtime.Airdrop(env.ctx, payer, 10_000_000))

	ix := system.CreateAccount(payer, address, token.ProgramKey, system.MinimumBalanceForRentExemption(token.MintSize)-1, token.MintSize)
	err := env.runtime.Invoke(env.ctx, ix, payer, address)
	assert.True(t, errors.Is(err, ErrNotRentExempt))

	env.assertBalance(t, payer, 10_000_000)
}

func TestTokenIssuance(t *testing.T) {
	env := setup(t)

	payer := newKey(t)
	mint := newKey(t)
	holder := newKey(t)
	require.NoError(t, env.runtime.Airdrop(env.ctx, payer, 100_000_000))

	require.NoError(t, env.runtime.Invoke(
		env.ctx,
		system.CreateAccount(payer, mint, token.ProgramKey, system.MinimumBalanceForRentExemption(token.MintSize), token.MintSize),
		payer,
		mint,
	))

	createAta, ata, err := token.CreateAssociatedTokenAccountIdempotent(payer, holder, mint)
	require.NoError(t, err)

	err = env.runtime.Invoke(env.ctx, createAta, payer)
	assert.True(t, errors.Is(err, ErrAccountNotFound))

	require.NoError(t, env.runtime.Invoke(env.ctx, token.InitializeMint(mint, payer, payer, 0)))

	err = env.runtime.Invoke(env.ctx, token.InitializeMint(mint, payer, payer, 0))
	assert.True(t, errors.Is(err, ErrAccountInUse))

	require.NoError(t, env.runtime.Invoke(env.ctx, createAta, payer))
	require.NoError(t, env.runtime.Invoke(env.ctx, createAta, payer))

	strictCreateAta, _, err := token.CreateAssociatedTokenAccount(payer, holder, mint)
	require.NoError(t, err)
	err = env.runtime.Invoke(env.ctx, strictCreateAta, payer)
	assert.True(t, errors.Is(err, ErrAccountInUse))

	imposter := newKey(t)
	err = env.runtime.Invoke(env.ctx, token.MintTo(mint, ata, imposter, 1), imposter)
	assert.True(t, errors.Is(err, ErrOwnerMismatch))

	require.NoError(t, env.runtime.Invoke(env.ctx, token.MintTo(mint, ata, payer, 1), payer))

	mintRecord, err := env.data.GetTokenMint(env.ctx, base58.Encode(mint))
	require.NoError(t, err)
	assert.EqualValues(t, 1, mintRecord.Supply)
	assert.EqualValues(t, 0, mintRecord.Decimals)

	tokenAccount, err := env.data.GetTokenAccount(env.ctx, base58.Encode(ata))
	require.NoError(t, err)
	assert.EqualValues(t, 1, tokenAccount.Amount)
	assert.Equal(t, base58.Encode(holder), tokenAccount.Owner)

	expectedRent := system.MinimumBalanceForRentExemption(token.MintSize) + system.MinimumBalanceForRentExemption(token.AccountSize)
	env.assertBalance(t, payer, 100_000_000-expectedRent)
}

func TestSizedCollection(t *testing.T) {
	env := setup(t)

	payer := newKey(t)
	collectionMint := newKey(t)
	collectionAuthority := newKey(t)
	require.NoError(t, env.runtime.Airdrop(env.ctx, payer, 1_000_000_000))

	require.NoError(t, env.runtime.IssueSizedCollection(env.ctx, payer, collectionMint, collectionAuthority, &CollectionArgs{
		Name:   "Collection",
		Symbol: "COL",
		Uri:    "https://example.com/collection.json",
	}))

	collectionMetadata, _, err := tokenmetadata.GetMetadataAddress(&tokenmetadata.GetMetadataAddressArgs{Mint: collectionMint})
	require.NoError(t, err)
	collectionEdition, _, err := tokenmetadata.GetMasterEditionAddress(&tokenmetadata.GetMasterEditionAddressArgs{Mint: collectionMint})
	require.NoError(t, err)

	collection, err := env.data.GetTokenMetadata(env.ctx, base58.Encode(collectionMetadata))
	require.NoError(t, err)
	require.NotNil(t, collection.CollectionSize)
	assert.EqualValues(t, 0, *collection.CollectionSize)
	assert.Equal(t, base58.Encode(collectionAuthority), collection.UpdateAuthority)

	collectionMintRecord, err := env.data.GetTokenMint(env.ctx, base58.Encode(collectionMint))
	require.NoError(t, err)
	require.NotNil(t, collectionMintRecord.MintAuthority)
	assert.Equal(t, base58.Encode(collectionEdition), *collectionMintRecord.MintAuthority)
	assert.EqualValues(t, 1, collectionMintRecord.Supply)

	collectionMintAccount, err := env.data.GetAccountInfo(env.ctx, base58.Encode(collectionMint))
	require.NoError(t, err)
	assert.Equal(t, base58.Encode(token.ProgramKey), collectionMintAccount.Owner)
	assert.EqualValues(t, token.MintSize, collectionMintAccount.DataSize)
	assert.Equal(t, system.MinimumBalanceForRentExemption(token.MintSize), collectionMintAccount.Lamports)

	// Issue an item that claims membership of the collection
	item := newKey(t)
	itemMetadata, _, err := tokenmetadata.GetMetadataAddress(&tokenmetadata.GetMetadataAddressArgs{Mint: item})
	require.NoError(t, err)
	itemEdition, _, err := tokenmetadata.GetMasterEditionAddress(&tokenmetadata.GetMasterEditionAddressArgs{Mint: item})
	require.NoError(t, err)

	createAta, ata, err := token.CreateAssociatedTokenAccountIdempotent(payer, payer, item)
	require.NoError(t, err)

	var collectionKey [32]byte
	copy(collectionKey[:], collectionMint)
	createMetadata, err := tokenmetadata.NewCreateMetadataAccountV3Instruction(
		&tokenmetadata.CreateMetadataAccountV3InstructionAccounts{
			Metadata:        itemMetadata,
			Mint:            item,
			MintAuthority:   payer,
			Payer:           payer,
			UpdateAuthority: payer,
		},
		&tokenmetadata.CreateMetadataAccountV3InstructionArgs{
			Data: tokenmetadata.DataV2{
				Name:       "Item",
				Symbol:     "ITEM",
				Uri:        "https://example.com/item.json",
				Collection: &tokenmetadata.Collection{Key: collectionKey},
			},
			IsMutable: true,
		},
	)
	require.NoError(t, err)

	maxSupply := uint64(0)
	createEdition, err := tokenmetadata.NewCreateMasterEditionV3Instruction(
		&tokenmetadata.CreateMasterEditionV3InstructionAccounts{
			Edition:         itemEdition,
			Mint:            item,
			UpdateAuthority: payer,
			MintAuthority:   payer,
			Payer:           payer,
			Metadata:        itemMetadata,
		},
		&tokenmetadata.CreateMasterEditionV3InstructionArgs{MaxSupply: &maxSupply},
	)
	require.NoError(t, err)

	for _, ix := range []solana.Instruction{
		system.CreateAccount(payer, item, token.ProgramKey, system.MinimumBalanceForRentExemption(token.MintSize), token.MintSize),
		token.InitializeMint(item, payer, payer, 0),
		createAta,
		createMetadata,
	} {
		require.NoError(t, env.runtime.Invoke(env.ctx, ix, payer, item))
	}

	// A master edition requires the supply to be exactly one
	err = env.runtime.Invoke(env.ctx, createEdition, payer)
	assert.True(t, errors.Is(err, ErrInvalidEditionSupply))

	require.NoError(t, env.runtime.Invoke(env.ctx, token.MintTo(item, ata, payer, 1), payer))
	require.NoError(t, env.runtime.Invoke(env.ctx, createEdition, payer))

	// The edition now holds the mint authority
	err = env.runtime.Invoke(env.ctx, token.MintTo(item, ata, payer, 1), payer)
	assert.True(t, errors.Is(err, ErrOwnerMismatch))

	verifyAccounts := &tokenmetadata.VerifySizedCollectionItemInstructionAccounts{
		Metadata:                itemMetadata,
		CollectionAuthority:     payer,
		Payer:                   payer,
		CollectionMint:          collectionMint,
		CollectionMetadata:      collectionMetadata,
		CollectionMasterEdition: collectionEdition,
	}
	err = env.runtime.Invoke(env.ctx, tokenmetadata.NewVerifySizedCollectionItemInstruction(verifyAccounts), payer)
	assert.True(t, errors.Is(err, ErrOwnerMismatch))

	verifyAccounts.CollectionAuthority = collectionAuthority
	verify := tokenmetadata.NewVerifySizedCollectionItemInstruction(verifyAccounts)

	err = env.runtime.Invoke(env.ctx, verify, payer)
	assert.True(t, errors.Is(err, ErrMissingSignature))

	require.NoError(t, env.runtime.Invoke(env.ctx, verify, payer, collectionAuthority))

	err = env.runtime.Invoke(env.ctx, verify, payer, collectionAuthority)
	assert.True(t, errors.Is(err, ErrAlreadyVerified))

	itemRecord, err := env.data.GetTokenMetadata(env.ctx, base58.Encode(itemMetadata))
	require.NoError(t, err)
	assert.True(t, itemRecord.CollectionVerified)

	collection, err = env.data.GetTokenMetadata(env.ctx, base58.Encode(collectionMetadata))
	require.NoError(t, err)
	assert.EqualValues(t, 1, *collection.CollectionSize)
}

func TestUnsupportedProgram(t *testing.T) {
	env := setup(t)

	err := env.runtime.Invoke(env.ctx, solana.NewInstruction(newKey(t), nil))
	assert.True(t, errors.Is(err, ErrUnsupportedProgram))
}
