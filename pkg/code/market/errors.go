package market

import (
	"fmt"

	"github.com/pkg/errors"
)

// Error is a market failure identified by a stable custom error code. Codes
// start at 6000 so they line up with the custom program errors reported by
// the on-chain market.
type Error struct {
	Code    uint32
	Name    string
	Message string
}

func newError(code uint32, name, message string) *Error {
	return &Error{
		Code:    code,
		Name:    name,
		Message: message,
	}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Name, e.Message)
}

var (
	ErrInvalidFee                     = newError(6000, "InvalidFee", "affiliate fee exceeds 100%")
	ErrSoldOut                        = newError(6001, "SoldOut", "campaign is sold out")
	ErrMathOverflow                   = newError(6002, "MathOverflow", "arithmetic overflow")
	ErrInvalidMintAccount             = newError(6003, "InvalidMintAccount", "mint account does not match the next campaign mint")
	ErrInvalidMetadata                = newError(6004, "InvalidMetadata", "metadata account does not match the mint")
	ErrInvalidMasterEdition           = newError(6005, "InvalidMasterEdition", "master edition account does not match the mint")
	ErrInvalidCollectionMetadata      = newError(6006, "InvalidCollectionMetadata", "collection metadata account does not match the collection")
	ErrInvalidCollectionMasterEdition = newError(6007, "InvalidCollectionMasterEdition", "collection master edition account does not match the collection")
	ErrAuthorityMismatch              = newError(6008, "AuthorityMismatch", "derived authority does not match")
	ErrCampaignAlreadyExists          = newError(6009, "CampaignAlreadyExists", "campaign already exists for the collection")
	ErrCampaignNotFound               = newError(6010, "CampaignNotFound", "campaign not found")
	ErrAffiliateStatsNotFound         = newError(6011, "AffiliateStatsNotFound", "affiliate stats not found")
)

// GetError returns the market error in err's chain, if there is one
func GetError(err error) (*Error, bool) {
	var marketErr *Error
	if errors.As(err, &marketErr) {
		return marketErr, true
	}
	return nil, false
}
