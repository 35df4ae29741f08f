package tokenmetadata

import (
	"crypto/ed25519"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/affiliate-market/pkg/solana"
)

func TestCreateMetadataAccountV3Instruction(t *testing.T) {
	keys := generateKeys(t, 5)

	var collectionMint [32]byte
	copy(collectionMint[:], keys[4])

	ix, err := NewCreateMetadataAccountV3Instruction(
		&CreateMetadataAccountV3InstructionAccounts{
			Metadata:        keys[0],
			Mint:            keys[1],
			MintAuthority:   keys[2],
			Payer:           keys[3],
			UpdateAuthority: keys[2],
		},
		&CreateMetadataAccountV3InstructionArgs{
			Data: DataV2{
				Name:   "Affiliate Pass",
				Symbol: "PASS",
				Uri:    "https://example.com/pass.json",
				Collection: &Collection{
					Key: collectionMint,
				},
			},
			IsMutable: true,
		},
	)
	require.NoError(t, err)

	assert.EqualValues(t, PROGRAM_ID, ix.Program)
	assert.EqualValues(t, InstructionTypeCreateMetadataAccountV3, ix.Data[0])

	// Borsh strings are prefixed with a little endian u32 length
	assert.EqualValues(t, len("Affiliate Pass"), binary.LittleEndian.Uint32(ix.Data[1:5]))
	assert.Equal(t, "Affiliate Pass", string(ix.Data[5:5+len("Affiliate Pass")]))

	require.Len(t, ix.Accounts, 7)
	assert.True(t, ix.Accounts[0].IsWritable)
	assert.False(t, ix.Accounts[0].IsSigner)
	assert.True(t, ix.Accounts[2].IsSigner)
	assert.True(t, ix.Accounts[3].IsSigner)
	assert.True(t, ix.Accounts[3].IsWritable)
	assert.EqualValues(t, SYSTEM_PROGRAM_ID, ix.Accounts[5].PublicKey)
	assert.EqualValues(t, SYSVAR_RENT_PUBKEY, ix.Accounts[6].PublicKey)

	accounts, args, err := DecompileCreateMetadataAccountV3Instruction(ix)
	require.NoError(t, err)
	assert.EqualValues(t, keys[0], accounts.Metadata)
	assert.EqualValues(t, keys[1], accounts.Mint)
	assert.EqualValues(t, keys[2], accounts.MintAuthority)
	assert.EqualValues(t, keys[3], accounts.Payer)
	assert.EqualValues(t, keys[2], accounts.UpdateAuthority)
	assert.Equal(t, "Affiliate Pass", args.Data.Name)
	assert.Equal(t, "PASS", args.Data.Symbol)
	assert.Equal(t, "https://example.com/pass.json", args.Data.Uri)
	assert.EqualValues(t, 0, args.Data.SellerFeeBasisPoints)
	assert.Nil(t, args.Data.Creators)
	require.NotNil(t, args.Data.Collection)
	assert.False(t, args.Data.Collection.Verified)
	assert.Equal(t, collectionMint, args.Data.Collection.Key)
	assert.Nil(t, args.Data.Uses)
	assert.True(t, args.IsMutable)
	assert.Nil(t, args.CollectionDetails)
}

func TestCreateMetadataAccountV3Instruction_SizedCollection(t *testing.T) {
	keys := generateKeys(t, 4)

	ix, err := NewCreateMetadataAccountV3Instruction(
		&CreateMetadataAccountV3InstructionAccounts{
			Metadata:        keys[0],
			Mint:            keys[1],
			MintAuthority:   keys[2],
			Payer:           keys[3],
			UpdateAuthority: keys[2],
		},
		&CreateMetadataAccountV3InstructionArgs{
			Data:              DataV2{Name: "Collection", Symbol: "COL"},
			CollectionDetails: NewSizedCollectionDetails(0),
		},
	)
	require.NoError(t, err)

	_, args, err := DecompileCreateMetadataAccountV3Instruction(ix)
	require.NoError(t, err)
	require.NotNil(t, args.CollectionDetails)
	assert.EqualValues(t, 0, args.CollectionDetails.Variant)
	assert.EqualValues(t, 0, args.CollectionDetails.Size)
	assert.False(t, args.IsMutable)
}

func TestCreateMasterEditionV3Instruction(t *testing.T) {
	keys := generateKeys(t, 5)

	maxSupply := uint64(0)
	ix, err := NewCreateMasterEditionV3Instruction(
		&CreateMasterEditionV3InstructionAccounts{
			Edition:         keys[0],
			Mint:            keys[1],
			UpdateAuthority: keys[2],
			MintAuthority:   keys[2],
			Payer:           keys[3],
			Metadata:        keys[4],
		},
		&CreateMasterEditionV3InstructionArgs{
			MaxSupply: &maxSupply,
		},
	)
	require.NoError(t, err)

	// Discriminator, Some tag, u64 supply
	assert.Equal(t, []byte{17, 1, 0, 0, 0, 0, 0, 0, 0, 0}, ix.Data)
	require.Len(t, ix.Accounts, 9)
	assert.True(t, ix.Accounts[1].IsWritable)
	assert.EqualValues(t, SPL_TOKEN_PROGRAM_ID, ix.Accounts[6].PublicKey)

	accounts, args, err := DecompileCreateMasterEditionV3Instruction(ix)
	require.NoError(t, err)
	assert.EqualValues(t, keys[0], accounts.Edition)
	assert.EqualValues(t, keys[1], accounts.Mint)
	assert.EqualValues(t, keys[2], accounts.UpdateAuthority)
	assert.EqualValues(t, keys[2], accounts.MintAuthority)
	assert.EqualValues(t, keys[3], accounts.Payer)
	assert.EqualValues(t, keys[4], accounts.Metadata)
	require.NotNil(t, args.MaxSupply)
	assert.EqualValues(t, 0, *args.MaxSupply)

	ix, err = NewCreateMasterEditionV3Instruction(accounts, &CreateMasterEditionV3InstructionArgs{})
	require.NoError(t, err)
	assert.Equal(t, []byte{17, 0}, ix.Data)
}

func TestVerifySizedCollectionItemInstruction(t *testing.T) {
	keys := generateKeys(t, 7)

	accounts := &VerifySizedCollectionItemInstructionAccounts{
		Metadata:                keys[0],
		CollectionAuthority:     keys[1],
		Payer:                   keys[2],
		CollectionMint:          keys[3],
		CollectionMetadata:      keys[4],
		CollectionMasterEdition: keys[5],
	}

	ix := NewVerifySizedCollectionItemInstruction(accounts)
	assert.Equal(t, []byte{30}, ix.Data)
	require.Len(t, ix.Accounts, 6)
	assert.True(t, ix.Accounts[1].IsSigner)
	assert.True(t, ix.Accounts[4].IsWritable)

	decompiled, err := DecompileVerifySizedCollectionItemInstruction(ix)
	require.NoError(t, err)
	assert.Equal(t, accounts, decompiled)

	accounts.CollectionAuthorityRecord = keys[6]
	ix = NewVerifySizedCollectionItemInstruction(accounts)
	require.Len(t, ix.Accounts, 7)

	decompiled, err = DecompileVerifySizedCollectionItemInstruction(ix)
	require.NoError(t, err)
	assert.EqualValues(t, keys[6], decompiled.CollectionAuthorityRecord)
}

func TestDecompile_Invalid(t *testing.T) {
	keys := generateKeys(t, 7)

	ix := NewVerifySizedCollectionItemInstruction(&VerifySizedCollectionItemInstructionAccounts{
		Metadata:                keys[0],
		CollectionAuthority:     keys[1],
		Payer:                   keys[2],
		CollectionMint:          keys[3],
		CollectionMetadata:      keys[4],
		CollectionMasterEdition: keys[5],
	})

	_, _, err := DecompileCreateMetadataAccountV3Instruction(ix)
	assert.Equal(t, ErrInvalidInstructionData, err)
	_, _, err = DecompileCreateMasterEditionV3Instruction(ix)
	assert.Equal(t, ErrInvalidInstructionData, err)

	wrongProgram := ix
	wrongProgram.Program = keys[6]
	_, err = DecompileVerifySizedCollectionItemInstruction(wrongProgram)
	assert.Equal(t, ErrInvalidProgram, err)

	wrongAccounts := ix
	wrongAccounts.Accounts = ix.Accounts[:5]
	_, err = DecompileVerifySizedCollectionItemInstruction(wrongAccounts)
	assert.Equal(t, ErrInvalidAccounts, err)

	_, err = GetInstructionType(nil)
	assert.Equal(t, ErrInvalidInstructionData, err)
}

func TestGetAddresses(t *testing.T) {
	mint := generateKeys(t, 1)[0]

	metadata, metadataBump, err := GetMetadataAddress(&GetMetadataAddressArgs{Mint: mint})
	require.NoError(t, err)
	assert.True(t, solana.VerifyProgramAddress(PROGRAM_ID, metadata, metadataBump, MetadataPrefix, PROGRAM_ID, mint))

	edition, editionBump, err := GetMasterEditionAddress(&GetMasterEditionAddressArgs{Mint: mint})
	require.NoError(t, err)
	assert.True(t, solana.VerifyProgramAddress(PROGRAM_ID, edition, editionBump, MetadataPrefix, PROGRAM_ID, mint, EditionPrefix))

	assert.NotEqual(t, metadata, edition)
}

func generateKeys(t *testing.T, amount int) []ed25519.PublicKey {
	keys := make([]ed25519.PublicKey, amount)

	for i := range keys {
		pub, _, err := ed25519.GenerateKey(nil)
		require.NoError(t, err)

		keys[i] = pub
	}

	return keys
}
