package common

import (
	"crypto/ed25519"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey_Encodings(t *testing.T) {
	publicKey, privateKey, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	for _, tc := range []struct {
		raw      []byte
		isPublic bool
	}{
		{publicKey, true},
		{privateKey, false},
	} {
		fromBytes, err := NewKeyFromBytes(tc.raw)
		require.NoError(t, err)

		fromString, err := NewKeyFromString(base58.Encode(tc.raw))
		require.NoError(t, err)

		for _, key := range []*Key{fromBytes, fromString} {
			require.NoError(t, key.Validate())
			assert.Equal(t, tc.isPublic, key.IsPublic())
			assert.EqualValues(t, tc.raw, key.ToBytes())
			assert.Equal(t, base58.Encode(tc.raw), key.ToBase58())
		}
		assert.True(t, fromBytes.Equals(fromString))
	}
}

func TestKey_CopiesInput(t *testing.T) {
	publicKey, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	key, err := NewKeyFromBytes(publicKey)
	require.NoError(t, err)

	publicKey[0] ^= 0xff
	assert.NotEqual(t, publicKey[0], key.ToBytes()[0])
	assert.NoError(t, key.Validate())
}

func TestKey_Equals(t *testing.T) {
	key1, err := NewRandomKey()
	require.NoError(t, err)
	key2, err := NewRandomKey()
	require.NoError(t, err)

	var nilKey *Key
	assert.True(t, key1.Equals(key1))
	assert.False(t, key1.Equals(key2))
	assert.False(t, key1.Equals(nilKey))
	assert.True(t, nilKey.Equals(nil))
}

func TestKey_Invalid(t *testing.T) {
	for _, value := range []string{
		"",
		"invalid-key",
		base58.Encode(make([]byte, 31)),
		"1" + base58.Encode(append([]byte{1}, make([]byte, 31)...)),
	} {
		_, err := NewKeyFromString(value)
		assert.Error(t, err, value)
	}

	for _, value := range [][]byte{
		nil,
		[]byte("invalid-key"),
		make([]byte, 33),
	} {
		_, err := NewKeyFromBytes(value)
		assert.Error(t, err)
	}

	var nilKey *Key
	assert.Error(t, nilKey.Validate())
}
