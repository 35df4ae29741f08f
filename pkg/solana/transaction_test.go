package solana

import (
	"crypto/ed25519"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Generated by the Solana SDK's transaction tests with a corrected keypair.
//
// Reference: https://github.com/solana-labs/solana/blob/14339dec0a960e8161d1165b6a8e5cfb73e78f23/sdk/src/transaction.rs#L523
const sdkGeneratedTransaction = "ATMfBMZ8phHEheLph8K9TJhRKhnE4qNZvWiXdUdJRmlTCRsQjWmW2CkQJeRHBCcsqFm2gynjL40M9mTe0Dxp4QIBAAEDfEya6wnC7f3Cv53qnOEywwIJ928rIdqAlfXYI1adXroBAQEEBQYHCAkJCQkJCQkJCQkJCQkJCQkIBwYFBAEBAQICAgQFBgcICQEBAQEBAQEBAQEBAQEBCQgHBgUEAgICAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAABAgIAAQMBAgM="

func TestTransaction_CrossImpl(t *testing.T) {
	keypair := ed25519.NewKeyFromSeed([]byte{48, 83, 2, 1, 1, 48, 5, 6, 3, 43, 101, 112, 4, 34, 4, 32, 255, 101, 36, 24, 124, 23,
		167, 21, 132, 204, 155, 5, 185, 58, 121, 75})
	programID := ed25519.PublicKey{2, 2, 2, 4, 5, 6, 7, 8, 9, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 9, 8, 7, 6, 5, 4,
		2, 2, 2}
	to := ed25519.PublicKey{1, 1, 1, 4, 5, 6, 7, 8, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 8, 7, 6, 5, 4, 1, 1, 1}

	tx := NewTransaction(
		public(keypair),
		NewInstruction(
			programID,
			[]byte{1, 2, 3},
			NewAccountMeta(public(keypair), true),
			NewAccountMeta(to, false),
		),
	)
	require.NoError(t, tx.Sign(keypair))
	assert.Equal(t, sdkGeneratedTransaction, base64.StdEncoding.EncodeToString(tx.Marshal()))
	assert.NoError(t, tx.Verify())

	decoded, err := base64.StdEncoding.DecodeString(sdkGeneratedTransaction)
	require.NoError(t, err)

	var rtt Transaction
	require.NoError(t, rtt.Unmarshal(decoded))
	assert.Equal(t, tx, rtt)
	assert.NoError(t, rtt.Verify())
}

func TestTransaction_AccountOrdering(t *testing.T) {
	keys := generateKeys(t, 2)
	payer := keys[0]
	program := keys[1]

	keys = generateKeys(t, 4)
	data := []byte{1, 2, 3}

	tx := NewTransaction(
		public(payer),
		NewInstruction(
			public(program),
			data,
			NewReadonlyAccountMeta(public(keys[0]), true),
			NewReadonlyAccountMeta(public(keys[1]), false),
			NewAccountMeta(public(keys[2]), false),
			NewAccountMeta(public(keys[3]), true),
		),
	)

	// Signing order doesn't matter
	require.NoError(t, tx.Sign(keys[0], keys[3], payer))
	require.NoError(t, tx.Verify())

	require.Len(t, tx.Signatures, 3)
	require.Len(t, tx.Message.Accounts, 6)
	assert.EqualValues(t, 3, tx.Message.Header.NumSignatures)
	assert.EqualValues(t, 1, tx.Message.Header.NumReadonlySigned)
	assert.EqualValues(t, 2, tx.Message.Header.NumReadOnly)

	assert.Equal(t, []ed25519.PublicKey{public(payer), public(keys[3]), public(keys[0])}, tx.Signers())
	assert.Equal(t, public(keys[2]), tx.Message.Accounts[3])
	assert.Equal(t, public(keys[1]), tx.Message.Accounts[4])
	assert.Equal(t, public(program), tx.Message.Accounts[5])

	assert.Equal(t, byte(5), tx.Message.Instructions[0].ProgramIndex)
	assert.Equal(t, data, tx.Message.Instructions[0].Data)
	assert.Equal(t, []byte{2, 4, 3, 1}, tx.Message.Instructions[0].Accounts)
}

func TestTransaction_DuplicateAccountsArePromoted(t *testing.T) {
	keys := generateKeys(t, 4)
	payer, program, a, b := keys[0], keys[1], keys[2], keys[3]

	tx := NewTransaction(
		public(payer),
		NewInstruction(
			public(program),
			nil,
			NewReadonlyAccountMeta(public(a), false),
			NewReadonlyAccountMeta(public(b), true),
			NewAccountMeta(public(a), false),
			NewReadonlyAccountMeta(public(payer), false),
		),
	)

	require.Len(t, tx.Message.Accounts, 4)
	assert.EqualValues(t, 2, tx.Message.Header.NumSignatures)
	assert.EqualValues(t, 1, tx.Message.Header.NumReadonlySigned)
	assert.EqualValues(t, 1, tx.Message.Header.NumReadOnly)
	assert.Equal(t, []ed25519.PublicKey{public(payer), public(b)}, tx.Signers())
	assert.Equal(t, public(a), tx.Message.Accounts[2])
}

func TestTransaction_Verify(t *testing.T) {
	keys := generateKeys(t, 4)
	payer, program, signer, other := keys[0], keys[1], keys[2], keys[3]

	newTx := func() Transaction {
		return NewTransaction(
			public(payer),
			NewInstruction(
				public(program),
				[]byte{4, 5, 6},
				NewAccountMeta(public(signer), true),
				NewAccountMeta(public(other), false),
			),
		)
	}

	tx := newTx()
	assert.ErrorIs(t, tx.Verify(), ErrInvalidSignature)

	require.NoError(t, tx.Sign(payer))
	assert.ErrorIs(t, tx.Verify(), ErrInvalidSignature)

	require.NoError(t, tx.Sign(signer))
	require.NoError(t, tx.Verify())

	assert.Error(t, tx.Sign(other))

	tx.Message.Instructions[0].Data = []byte{7}
	assert.ErrorIs(t, tx.Verify(), ErrInvalidSignature)

	tx = newTx()
	message := tx.Message.Marshal()
	require.NoError(t, tx.SetSignature(public(payer), ed25519.Sign(payer, message)))
	require.NoError(t, tx.SetSignature(public(signer), ed25519.Sign(signer, message)))
	assert.NoError(t, tx.Verify())

	assert.Error(t, tx.SetSignature(public(other), ed25519.Sign(other, message)))
	assert.ErrorIs(t, tx.SetSignature(public(payer), []byte{1, 2, 3}), ErrInvalidSignature)

	require.NoError(t, tx.SetSignature(public(signer), ed25519.Sign(other, message)))
	assert.ErrorIs(t, tx.Verify(), ErrInvalidSignature)
}

func TestTransaction_Instructions(t *testing.T) {
	keys := generateKeys(t, 6)
	payer := keys[0]

	expected := []Instruction{
		NewInstruction(
			public(keys[1]),
			[]byte{1},
			NewAccountMeta(public(payer), true),
			NewReadonlyAccountMeta(public(keys[2]), true),
			NewAccountMeta(public(keys[3]), false),
		),
		NewInstruction(
			public(keys[4]),
			[]byte{2, 3},
			NewReadonlyAccountMeta(public(keys[5]), false),
			NewAccountMeta(public(keys[3]), false),
		),
	}

	tx := NewTransaction(public(payer), expected...)
	require.NoError(t, tx.Sign(payer, keys[2]))

	var rtt Transaction
	require.NoError(t, rtt.Unmarshal(tx.Marshal()))
	require.NoError(t, rtt.Verify())

	actual, err := rtt.Instructions()
	require.NoError(t, err)
	assert.Equal(t, expected, actual)
}

func TestTransaction_InvalidMessages(t *testing.T) {
	keys := generateKeys(t, 2)

	newTx := func() Transaction {
		return NewTransaction(
			public(keys[0]),
			NewInstruction(
				public(keys[1]),
				nil,
				NewAccountMeta(public(keys[0]), true),
			),
		)
	}

	tx := newTx()
	tx.Message.Instructions[0].ProgramIndex = 2
	assert.Error(t, tx.Unmarshal(tx.Marshal()))

	tx = newTx()
	tx.Message.Instructions[0].Accounts = []byte{2}
	_, err := tx.Instructions()
	assert.Error(t, err)
	assert.Error(t, tx.Unmarshal(tx.Marshal()))

	tx = newTx()
	tx.Message.Header.NumSignatures = 3
	assert.Error(t, tx.Unmarshal(tx.Marshal()))

	encoded := newTx().Marshal()
	encoded[1+ed25519.SignatureSize] = 128
	assert.Error(t, tx.Unmarshal(encoded))
}

func TestTransaction_EmptyAccount(t *testing.T) {
	keys := generateKeys(t, 2)

	tx := NewTransaction(
		public(keys[0]),
		NewInstruction(
			public(keys[1]),
			[]byte{1, 2, 3},
			NewAccountMeta(nil, false),
		),
	)
	require.NoError(t, tx.Sign(keys[0]))

	var rtt Transaction
	require.NoError(t, rtt.Unmarshal(tx.Marshal()))
	assert.NoError(t, rtt.Verify())
}

func public(priv ed25519.PrivateKey) ed25519.PublicKey {
	return priv.Public().(ed25519.PublicKey)
}

func generateKeys(t *testing.T, amount int) []ed25519.PrivateKey {
	keys := make([]ed25519.PrivateKey, amount)

	for i := 0; i < amount; i++ {
		_, priv, err := ed25519.GenerateKey(nil)
		require.NoError(t, err)
		keys[i] = priv
	}

	return keys
}
