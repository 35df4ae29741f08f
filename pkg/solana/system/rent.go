package system

import "math"

// Default rent parameters for mainnet.
//
// Reference: https://github.com/solana-labs/solana/blob/f02a78d8fff2dd7297dc6ce6eb5a68a3002f5359/sdk/program/src/rent.rs#L30-L42
const (
	LamportsPerByteYear     = 3480
	ExemptionThresholdYears = 2
	AccountStorageOverhead  = 128
)

// MinimumBalanceForRentExemption returns the number of lamports an account of
// the provided data size must hold to be exempt from rent collection.
func MinimumBalanceForRentExemption(size uint64) uint64 {
	if size > math.MaxUint64/(LamportsPerByteYear*ExemptionThresholdYears)-AccountStorageOverhead {
		return math.MaxUint64
	}
	return (size + AccountStorageOverhead) * LamportsPerByteYear * ExemptionThresholdYears
}
