package tokenmetadata

import (
	"crypto/ed25519"
	"errors"

	"github.com/mr-tron/base58"
)

var (
	ErrInvalidProgram         = errors.New("invalid program id")
	ErrInvalidInstructionData = errors.New("unexpected instruction data")
	ErrInvalidAccounts        = errors.New("unexpected instruction accounts")
)

// PROGRAM_ID is the Metaplex token metadata program
var PROGRAM_ID = ed25519.PublicKey(mustBase58Decode("metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s"))

var (
	SYSTEM_PROGRAM_ID    = ed25519.PublicKey(mustBase58Decode("11111111111111111111111111111111"))
	SPL_TOKEN_PROGRAM_ID = ed25519.PublicKey(mustBase58Decode("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"))

	SYSVAR_RENT_PUBKEY = ed25519.PublicKey(mustBase58Decode("SysvarRent111111111111111111111111111111111"))
)

// Reference: https://github.com/metaplex-foundation/mpl-token-metadata/blob/a7ee5e17a0fd4e3ce0b2be2ec3ed9a8f1fd2d2b7/programs/token-metadata/program/src/state/mod.rs
const (
	MaxNameLength   = 32
	MaxSymbolLength = 10
	MaxUriLength    = 200

	MaxMetadataAccountSize      = 679
	MaxMasterEditionAccountSize = 282

	MaxSellerFeeBasisPoints = 10_000
)

func mustBase58Decode(value string) []byte {
	decoded, err := base58.Decode(value)
	if err != nil {
		panic(err)
	}
	return decoded
}
