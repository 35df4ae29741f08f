package market

import (
	"github.com/code-payments/affiliate-market/pkg/code/common"
)

// CollectionVerifier checks that the collection accounts supplied to a mint
// are the ones derived from the campaign's collection.
type CollectionVerifier struct{}

func NewCollectionVerifier() *CollectionVerifier {
	return &CollectionVerifier{}
}

func (v *CollectionVerifier) Verify(accounts *common.CampaignAccounts, collectionMetadata, collectionMasterEdition *common.Account) error {
	if !accounts.CollectionMetadata.Equals(collectionMetadata) {
		return ErrInvalidCollectionMetadata
	}
	if !accounts.CollectionMasterEdition.Equals(collectionMasterEdition) {
		return ErrInvalidCollectionMasterEdition
	}
	return nil
}
