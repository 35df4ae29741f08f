package token

import (
	"testing"

	"github.com/mr-tron/base58/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/affiliate-market/pkg/solana/system"
)

func TestGetAssociatedAccount(t *testing.T) {
	// Values generated from taken from spl code.
	wallet, err := base58.Decode("4uQeVj5tqViQh7yWWGStvkEG1Zmhx6uasJtWCJziofM")
	require.NoError(t, err)
	mint, err := base58.Decode("8opHzTAnfzRpPEx21XtnrVTX28YQuCpAjcn1PczScKh")
	require.NoError(t, err)
	addr, err := base58.Decode("H7MQwEzt97tUJryocn3qaEoy2ymWstwyEk1i9Yv3EmuZ")
	require.NoError(t, err)

	actual, err := GetAssociatedAccount(wallet, mint)
	require.NoError(t, err)
	assert.EqualValues(t, addr, actual)
}

func TestCreateAssociatedAccount(t *testing.T) {
	keys := generateKeys(t, 3)

	expectedAddr, err := GetAssociatedAccount(keys[1], keys[2])
	require.NoError(t, err)

	for _, idempotent := range []bool{false, true} {
		create := CreateAssociatedTokenAccount
		if idempotent {
			create = CreateAssociatedTokenAccountIdempotent
		}

		instruction, addr, err := create(keys[0], keys[1], keys[2])
		require.NoError(t, err)
		assert.Equal(t, expectedAddr, addr)
		assert.Len(t, instruction.Accounts, 6)
		assert.Equal(t, system.ProgramKey[:], []byte(instruction.Accounts[4].PublicKey))

		decompiled, err := DecompileCreateAssociatedAccount(instruction)
		require.NoError(t, err)
		assert.Equal(t, keys[0], decompiled.Subsidizer)
		assert.Equal(t, addr, decompiled.Address)
		assert.Equal(t, keys[1], decompiled.Owner)
		assert.Equal(t, keys[2], decompiled.Mint)
		assert.Equal(t, idempotent, decompiled.Idempotent)
	}

	instruction, _, err := CreateAssociatedTokenAccount(keys[0], keys[1], keys[2])
	require.NoError(t, err)
	instruction.Accounts = instruction.Accounts[:5]
	_, err = DecompileCreateAssociatedAccount(instruction)
	assert.Error(t, err)
}
