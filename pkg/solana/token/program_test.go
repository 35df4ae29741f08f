package token

import (
	"crypto/ed25519"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/affiliate-market/pkg/solana"
	"github.com/code-payments/affiliate-market/pkg/solana/system"
)

func TestInitializeMint(t *testing.T) {
	keys := generateKeys(t, 3)

	instruction := InitializeMint(keys[0], keys[1], keys[2], 0)
	assert.EqualValues(t, CommandInitializeMint, instruction.Data[0])
	assert.EqualValues(t, 0, instruction.Data[1])
	assert.Equal(t, system.RentSysVar, instruction.Accounts[1].PublicKey)

	decompiled, err := DecompileInitializeMint(instruction)
	require.NoError(t, err)
	assert.Equal(t, keys[0], decompiled.Mint)
	assert.Equal(t, keys[1], decompiled.MintAuthority)
	assert.Equal(t, keys[2], decompiled.FreezeAuthority)
	assert.EqualValues(t, 0, decompiled.Decimals)

	instruction = InitializeMint(keys[0], keys[1], nil, 6)
	decompiled, err = DecompileInitializeMint(instruction)
	require.NoError(t, err)
	assert.Nil(t, decompiled.FreezeAuthority)
	assert.EqualValues(t, 6, decompiled.Decimals)
}

func TestMintTo(t *testing.T) {
	keys := generateKeys(t, 3)

	instruction := MintTo(keys[0], keys[1], keys[2], 1)
	assert.EqualValues(t, CommandMintTo, instruction.Data[0])
	assert.Equal(t, []ed25519.PublicKey{keys[2]}, instruction.Signers())

	decompiled, err := DecompileMintTo(instruction)
	require.NoError(t, err)
	assert.Equal(t, keys[0], decompiled.Mint)
	assert.Equal(t, keys[1], decompiled.Destination)
	assert.Equal(t, keys[2], decompiled.MintAuthority)
	assert.EqualValues(t, 1, decompiled.Amount)

	_, err = DecompileInitializeMint(instruction)
	assert.Equal(t, solana.ErrIncorrectInstruction, err)

	instruction.Program = keys[0]
	_, err = DecompileMintTo(instruction)
	assert.Equal(t, solana.ErrIncorrectProgram, err)

	instruction = MintTo(keys[0], keys[1], keys[2], 1)
	instruction.Data = append(instruction.Data, 0)
	_, err = DecompileMintTo(instruction)
	assert.Error(t, err)

	amount := make([]byte, 8)
	binary.LittleEndian.PutUint64(amount, 1)
	assert.Equal(t, amount, MintTo(keys[0], keys[1], keys[2], 1).Data[1:])
}

func generateKeys(t *testing.T, amount int) []ed25519.PublicKey {
	keys := make([]ed25519.PublicKey, amount)

	for i := 0; i < amount; i++ {
		pub, _, err := ed25519.GenerateKey(nil)
		require.NoError(t, err)

		keys[i] = pub
	}

	return keys
}
