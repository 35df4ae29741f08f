package common

import (
	"bytes"
	"crypto/ed25519"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
)

var errInvalidKeyLength = errors.New("key must be an ed25519 public or private key")

// Key is an ed25519 public or private key along with its base58 encoding,
// which is how keys are stored and exchanged with clients.
type Key struct {
	raw     []byte
	encoded string
}

func NewKeyFromBytes(value []byte) (*Key, error) {
	if !isValidKeyLength(len(value)) {
		return nil, errInvalidKeyLength
	}

	raw := make([]byte, len(value))
	copy(raw, value)

	return &Key{
		raw:     raw,
		encoded: base58.Encode(raw),
	}, nil
}

func NewKeyFromString(value string) (*Key, error) {
	raw, err := base58.Decode(value)
	if err != nil {
		return nil, errors.Wrap(err, "error decoding key as base58")
	}

	if !isValidKeyLength(len(raw)) {
		return nil, errInvalidKeyLength
	}

	// Only the canonical encoding is accepted, so two equal keys always have
	// equal string values in stores
	if base58.Encode(raw) != value {
		return nil, errors.New("key is not canonically base58 encoded")
	}

	return &Key{
		raw:     raw,
		encoded: value,
	}, nil
}

func NewRandomKey() (*Key, error) {
	_, privateKey, err := ed25519.GenerateKey(nil)
	if err != nil {
		return nil, errors.Wrap(err, "error generating private key")
	}
	return NewKeyFromBytes(privateKey)
}

func (k *Key) ToBytes() []byte {
	return k.raw
}

func (k *Key) ToBase58() string {
	return k.encoded
}

func (k *Key) IsPublic() bool {
	return len(k.raw) == ed25519.PublicKeySize
}

func (k *Key) Equals(other *Key) bool {
	if k == nil || other == nil {
		return k == other
	}
	return bytes.Equal(k.raw, other.raw)
}

func (k *Key) Validate() error {
	if k == nil {
		return errors.New("key is nil")
	}

	if !isValidKeyLength(len(k.raw)) {
		return errInvalidKeyLength
	}

	if base58.Encode(k.raw) != k.encoded {
		return errors.New("bytes and string representation don't match")
	}

	return nil
}

func isValidKeyLength(length int) bool {
	return length == ed25519.PublicKeySize || length == ed25519.PrivateKeySize
}
