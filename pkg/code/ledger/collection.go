package ledger

import (
	"context"
	"crypto/ed25519"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/code-payments/affiliate-market/pkg/pointer"
	"github.com/code-payments/affiliate-market/pkg/solana"
	"github.com/code-payments/affiliate-market/pkg/solana/system"
	"github.com/code-payments/affiliate-market/pkg/solana/token"
	"github.com/code-payments/affiliate-market/pkg/solana/tokenmetadata"
)

type CollectionArgs struct {
	Name   string
	Symbol string
	Uri    string
}

// IssueSizedCollection creates a collection parent token: a mint with a
// supply of one held by the payer, sized metadata and a master edition. Item
// membership can later be verified by updateAuthority.
func (r *Runtime) IssueSizedCollection(ctx context.Context, payer, collectionMint, updateAuthority ed25519.PublicKey, args *CollectionArgs) error {
	metadataAddress, _, err := tokenmetadata.GetMetadataAddress(&tokenmetadata.GetMetadataAddressArgs{
		Mint: collectionMint,
	})
	if err != nil {
		return err
	}

	editionAddress, _, err := tokenmetadata.GetMasterEditionAddress(&tokenmetadata.GetMasterEditionAddressArgs{
		Mint: collectionMint,
	})
	if err != nil {
		return err
	}

	createAta, ata, err := token.CreateAssociatedTokenAccountIdempotent(payer, payer, collectionMint)
	if err != nil {
		return err
	}

	createMetadata, err := tokenmetadata.NewCreateMetadataAccountV3Instruction(
		&tokenmetadata.CreateMetadataAccountV3InstructionAccounts{
			Metadata:        metadataAddress,
			Mint:            collectionMint,
			MintAuthority:   payer,
			Payer:           payer,
			UpdateAuthority: updateAuthority,
		},
		&tokenmetadata.CreateMetadataAccountV3InstructionArgs{
			Data: tokenmetadata.DataV2{
				Name:   args.Name,
				Symbol: args.Symbol,
				Uri:    args.Uri,
			},
			IsMutable:         true,
			CollectionDetails: tokenmetadata.NewSizedCollectionDetails(0),
		},
	)
	if err != nil {
		return err
	}

	createEdition, err := tokenmetadata.NewCreateMasterEditionV3Instruction(
		&tokenmetadata.CreateMasterEditionV3InstructionAccounts{
			Edition:         editionAddress,
			Mint:            collectionMint,
			UpdateAuthority: updateAuthority,
			MintAuthority:   payer,
			Payer:           payer,
			Metadata:        metadataAddress,
		},
		&tokenmetadata.CreateMasterEditionV3InstructionArgs{
			MaxSupply: pointer.To(uint64(0)),
		},
	)
	if err != nil {
		return err
	}

	instructions := []solana.Instruction{
		system.CreateAccount(payer, collectionMint, token.ProgramKey, system.MinimumBalanceForRentExemption(token.MintSize), token.MintSize),
		token.InitializeMint(collectionMint, payer, payer, 0),
		createAta,
		token.MintTo(collectionMint, ata, payer, 1),
		createMetadata,
		createEdition,
	}

	return r.data.ExecuteInTx(ctx, sql.LevelSerializable, func(ctx context.Context) error {
		for _, ix := range instructions {
			if err := r.Invoke(ctx, ix, payer, collectionMint, updateAuthority); err != nil {
				return errors.Wrap(err, "error issuing collection")
			}
		}
		return nil
	})
}
