package market

import (
	"github.com/holiman/uint256"

	"github.com/code-payments/affiliate-market/pkg/code/data/campaign"
)

// Split divides a unit price between the affiliate and the creator. The
// affiliate receives floor(price * feeBps / 10000) and the creator receives
// the remainder, so the two cuts always sum to the price.
func Split(price uint64, feeBps uint16) (affiliateCut, creatorCut uint64, err error) {
	if feeBps > campaign.MaxAffiliateFeeBps {
		return 0, 0, ErrInvalidFee
	}

	product, overflow := new(uint256.Int).MulOverflow(uint256.NewInt(price), uint256.NewInt(uint64(feeBps)))
	if overflow {
		return 0, 0, ErrMathOverflow
	}

	quotient := new(uint256.Int).Div(product, uint256.NewInt(campaign.MaxAffiliateFeeBps))
	if !quotient.IsUint64() {
		return 0, 0, ErrMathOverflow
	}
	affiliateCut = quotient.Uint64()

	if affiliateCut > price {
		return 0, 0, ErrMathOverflow
	}
	creatorCut = price - affiliateCut

	return affiliateCut, creatorCut, nil
}

func checkedAdd(a, b uint64) (uint64, error) {
	sum := a + b
	if sum < a {
		return 0, ErrMathOverflow
	}
	return sum, nil
}
