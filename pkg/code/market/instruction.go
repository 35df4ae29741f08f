package market

import (
	"bytes"
	"context"
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/code-payments/affiliate-market/pkg/code/common"
	"github.com/code-payments/affiliate-market/pkg/code/ledger"
	"github.com/code-payments/affiliate-market/pkg/solana"
	"github.com/code-payments/affiliate-market/pkg/solana/affiliatemarket"
)

// ExecuteInstruction executes an encoded market program instruction on behalf
// of the transaction signers. It's the entry point for clients that build
// instructions with pkg/solana/affiliatemarket.
//
// A nil MintResult is returned for instructions that don't mint.
func (m *Market) ExecuteInstruction(ctx context.Context, ix solana.Instruction, signers ...ed25519.PublicKey) (*MintResult, error) {
	if !ix.IsProgram(affiliatemarket.PROGRAM_ID) {
		return nil, ledger.ErrUnsupportedProgram
	}

	for _, required := range ix.Signers() {
		if !containsSigner(signers, required) {
			return nil, ledger.ErrMissingSignature
		}
	}

	switch affiliatemarket.GetInstructionType(ix.Data) {
	case affiliatemarket.InstructionTypeCreateCampaign:
		return nil, m.executeCreateCampaign(ctx, ix)
	case affiliatemarket.InstructionTypeProcessMint:
		return m.executeProcessMint(ctx, ix)
	default:
		return nil, ledger.ErrUnsupportedInstruction
	}
}

func (m *Market) executeCreateCampaign(ctx context.Context, ix solana.Instruction) error {
	accounts, args, err := affiliatemarket.DecompileCreateCampaignInstruction(ix)
	if err != nil {
		return err
	}

	creator, err := common.NewAccountFromPublicKeyBytes(accounts.Creator)
	if err != nil {
		return err
	}
	collectionMint, err := common.NewAccountFromPublicKeyBytes(accounts.CollectionMint)
	if err != nil {
		return err
	}

	derived, err := m.campaigns.GetCampaignAccounts(collectionMint)
	if err != nil {
		return err
	}

	switch {
	case !bytes.Equal(derived.Campaign.PublicKey().ToBytes(), accounts.Campaign),
		!bytes.Equal(derived.MintAuthority.PublicKey().ToBytes(), accounts.MintAuthority),
		!bytes.Equal(derived.CollectionAuthority.PublicKey().ToBytes(), accounts.CollectionAuthority):
		return ErrAuthorityMismatch
	}

	_, err = m.CreateCampaign(ctx, creator, collectionMint, args.Price, args.AffiliateFeeBps, args.MaxSupply)
	return err
}

func (m *Market) executeProcessMint(ctx context.Context, ix solana.Instruction) (*MintResult, error) {
	accounts, args, err := affiliatemarket.DecompileProcessMintInstruction(ix)
	if err != nil {
		return nil, err
	}

	keys := []ed25519.PublicKey{
		accounts.Buyer,
		accounts.Campaign,
		accounts.Creator,
		accounts.AffiliateReceiver,
		accounts.NftMint,
		accounts.BuyerNftAccount,
		accounts.MintAuthority,
		accounts.Metadata,
		accounts.MasterEdition,
		accounts.CollectionMint,
		accounts.CollectionMetadata,
		accounts.CollectionMasterEdition,
		accounts.CollectionAuthority,
	}
	converted := make([]*common.Account, len(keys))
	for i, key := range keys {
		converted[i], err = common.NewAccountFromPublicKeyBytes(key)
		if err != nil {
			return nil, errors.Wrap(affiliatemarket.ErrInvalidAccounts, err.Error())
		}
	}

	req := &ProcessMintRequest{
		Buyer:    converted[0],
		Campaign: converted[1],
		Creator:  converted[2],

		AffiliateReceiver: converted[3],
		NftMint:           converted[4],
		BuyerNftAccount:   converted[5],
		MintAuthority:     converted[6],
		Metadata:          converted[7],
		MasterEdition:     converted[8],

		CollectionMint:          converted[9],
		CollectionMetadata:      converted[10],
		CollectionMasterEdition: converted[11],
		CollectionAuthority:     converted[12],

		Affiliate: NoAffiliate(),

		Name:   args.Name,
		Symbol: args.Symbol,
		Uri:    args.Uri,
	}

	if args.Affiliate != nil {
		referrer, err := common.NewAccountFromPublicKeyBytes(args.Affiliate[:])
		if err != nil {
			return nil, errors.Wrap(affiliatemarket.ErrInvalidInstructionData, err.Error())
		}
		req.Affiliate = ReferredBy(referrer)

		expectedStats, _, err := affiliatemarket.GetAffiliateStatsAddress(&affiliatemarket.GetAffiliateStatsAddressArgs{
			Campaign:  accounts.Campaign,
			Affiliate: referrer.PublicKey().ToBytes(),
		})
		if err != nil {
			return nil, err
		}
		if !bytes.Equal(expectedStats, accounts.AffiliateStats) {
			return nil, errors.Wrap(ErrAuthorityMismatch, "affiliate stats")
		}
	}

	return m.ProcessMint(ctx, req)
}

func containsSigner(signers []ed25519.PublicKey, key ed25519.PublicKey) bool {
	for _, signer := range signers {
		if bytes.Equal(signer, key) {
			return true
		}
	}
	return false
}
