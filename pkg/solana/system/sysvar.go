package system

import (
	"crypto/ed25519"

	"github.com/mr-tron/base58"
)

// RentSysVar is the address of the rent sysvar, which the token program reads
// when initializing mints and token accounts
var RentSysVar = mustDecodeSysVar("SysvarRent111111111111111111111111111111111")

func mustDecodeSysVar(address string) ed25519.PublicKey {
	decoded, err := base58.Decode(address)
	if err != nil || len(decoded) != ed25519.PublicKeySize {
		panic("invalid sysvar address: " + address)
	}
	return decoded
}
