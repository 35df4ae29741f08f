package ledger

import (
	"context"
	"crypto/ed25519"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/affiliate-market/pkg/code/data/metadata"
	"github.com/code-payments/affiliate-market/pkg/pointer"
	"github.com/code-payments/affiliate-market/pkg/solana"
	"github.com/code-payments/affiliate-market/pkg/solana/system"
	"github.com/code-payments/affiliate-market/pkg/solana/tokenmetadata"
)

func (r *Runtime) executeTokenMetadata(ctx context.Context, ix solana.Instruction) error {
	instructionType, err := tokenmetadata.GetInstructionType(ix.Data)
	if err != nil {
		return err
	}

	switch instructionType {
	case tokenmetadata.InstructionTypeCreateMetadataAccountV3:
		accounts, args, err := tokenmetadata.DecompileCreateMetadataAccountV3Instruction(ix)
		if err != nil {
			return err
		}
		return r.createMetadata(ctx, accounts, args)
	case tokenmetadata.InstructionTypeCreateMasterEditionV3:
		accounts, args, err := tokenmetadata.DecompileCreateMasterEditionV3Instruction(ix)
		if err != nil {
			return err
		}
		return r.createMasterEdition(ctx, accounts, args)
	case tokenmetadata.InstructionTypeVerifySizedCollectionItem:
		accounts, err := tokenmetadata.DecompileVerifySizedCollectionItemInstruction(ix)
		if err != nil {
			return err
		}
		return r.verifySizedCollectionItem(ctx, accounts)
	default:
		return ErrUnsupportedInstruction
	}
}

func (r *Runtime) createMetadata(ctx context.Context, accounts *tokenmetadata.CreateMetadataAccountV3InstructionAccounts, args *tokenmetadata.CreateMetadataAccountV3InstructionArgs) error {
	expected, _, err := tokenmetadata.GetMetadataAddress(&tokenmetadata.GetMetadataAddressArgs{
		Mint: accounts.Mint,
	})
	if err != nil {
		return err
	}
	if !expected.Equal(accounts.Metadata) {
		return errors.Wrap(ErrInvalidAddress, "metadata")
	}

	data := args.Data
	switch {
	case len(data.Name) > tokenmetadata.MaxNameLength,
		len(data.Symbol) > tokenmetadata.MaxSymbolLength,
		len(data.Uri) > tokenmetadata.MaxUriLength,
		data.SellerFeeBasisPoints > tokenmetadata.MaxSellerFeeBasisPoints:
		return ErrInvalidMetadata
	case data.Collection != nil && data.Collection.Verified:
		// Membership is only verified by the collection authority
		return errors.Wrap(ErrInvalidMetadata, "collection cannot be verified on creation")
	}

	mint, err := r.getMint(ctx, accounts.Mint)
	if err != nil {
		return err
	}
	if mint.MintAuthority == nil || *mint.MintAuthority != base58.Encode(accounts.MintAuthority) {
		return errors.Wrap(ErrOwnerMismatch, "mint authority")
	}

	_, err = r.data.GetTokenMetadata(ctx, base58.Encode(accounts.Metadata))
	if err == nil {
		return errors.Wrap(ErrAccountInUse, base58.Encode(accounts.Metadata))
	} else if err != metadata.ErrMetadataNotFound {
		return err
	}

	err = r.allocate(
		ctx,
		accounts.Payer,
		accounts.Metadata,
		system.MinimumBalanceForRentExemption(tokenmetadata.MaxMetadataAccountSize),
		tokenmetadata.MaxMetadataAccountSize,
		metadataProgramOwner,
	)
	if err != nil {
		return err
	}

	record := &metadata.Record{
		Address:         base58.Encode(accounts.Metadata),
		Mint:            mint.Address,
		UpdateAuthority: base58.Encode(accounts.UpdateAuthority),

		Name:                 data.Name,
		Symbol:               data.Symbol,
		Uri:                  data.Uri,
		SellerFeeBasisPoints: data.SellerFeeBasisPoints,
		IsMutable:            args.IsMutable,
	}
	if data.Collection != nil {
		record.CollectionMint = pointer.To(base58.Encode(data.Collection.Key[:]))
	}
	if args.CollectionDetails != nil {
		record.CollectionSize = pointer.To(args.CollectionDetails.Size)
	}

	r.log.WithFields(logrus.Fields{
		"method":   "CreateMetadataAccountV3",
		"metadata": record.Address,
		"mint":     record.Mint,
	}).Trace("creating metadata")

	return r.data.SaveTokenMetadata(ctx, record)
}

func (r *Runtime) createMasterEdition(ctx context.Context, accounts *tokenmetadata.CreateMasterEditionV3InstructionAccounts, args *tokenmetadata.CreateMasterEditionV3InstructionArgs) error {
	expected, _, err := tokenmetadata.GetMasterEditionAddress(&tokenmetadata.GetMasterEditionAddressArgs{
		Mint: accounts.Mint,
	})
	if err != nil {
		return err
	}
	if !expected.Equal(accounts.Edition) {
		return errors.Wrap(ErrInvalidAddress, "master edition")
	}

	metadataRecord, err := r.getMetadata(ctx, accounts.Metadata)
	if err != nil {
		return err
	}
	if metadataRecord.Mint != base58.Encode(accounts.Mint) {
		return errors.Wrap(ErrMintMismatch, "metadata")
	}
	if metadataRecord.UpdateAuthority != base58.Encode(accounts.UpdateAuthority) {
		return errors.Wrap(ErrOwnerMismatch, "update authority")
	}

	mint, err := r.getMint(ctx, accounts.Mint)
	if err != nil {
		return err
	}
	if mint.MintAuthority == nil || *mint.MintAuthority != base58.Encode(accounts.MintAuthority) {
		return errors.Wrap(ErrOwnerMismatch, "mint authority")
	}
	if mint.Decimals != 0 || mint.Supply != 1 {
		return ErrInvalidEditionSupply
	}

	err = r.allocate(
		ctx,
		accounts.Payer,
		accounts.Edition,
		system.MinimumBalanceForRentExemption(tokenmetadata.MaxMasterEditionAccountSize),
		tokenmetadata.MaxMasterEditionAccountSize,
		metadataProgramOwner,
	)
	if err != nil {
		return err
	}

	err = r.data.CreateMasterEdition(ctx, &metadata.EditionRecord{
		Address:   base58.Encode(accounts.Edition),
		Mint:      mint.Address,
		MaxSupply: pointer.Copy(args.MaxSupply),
	})
	if err == metadata.ErrEditionExists {
		return errors.Wrap(ErrAccountInUse, base58.Encode(accounts.Edition))
	} else if err != nil {
		return err
	}

	// The edition takes over both authorities, which fixes the supply at one
	edition := base58.Encode(accounts.Edition)
	mint.MintAuthority = pointer.To(edition)
	mint.FreezeAuthority = pointer.To(edition)
	return r.data.SaveTokenMint(ctx, mint)
}

func (r *Runtime) verifySizedCollectionItem(ctx context.Context, accounts *tokenmetadata.VerifySizedCollectionItemInstructionAccounts) error {
	item, err := r.getMetadata(ctx, accounts.Metadata)
	if err != nil {
		return err
	}

	collectionMint := base58.Encode(accounts.CollectionMint)
	if item.CollectionMint == nil || *item.CollectionMint != collectionMint {
		return errors.Wrap(ErrInvalidCollection, "item does not belong to the collection")
	}
	if item.CollectionVerified {
		return ErrAlreadyVerified
	}

	expectedMetadata, _, err := tokenmetadata.GetMetadataAddress(&tokenmetadata.GetMetadataAddressArgs{
		Mint: accounts.CollectionMint,
	})
	if err != nil {
		return err
	}
	if !expectedMetadata.Equal(accounts.CollectionMetadata) {
		return errors.Wrap(ErrInvalidAddress, "collection metadata")
	}

	expectedEdition, _, err := tokenmetadata.GetMasterEditionAddress(&tokenmetadata.GetMasterEditionAddressArgs{
		Mint: accounts.CollectionMint,
	})
	if err != nil {
		return err
	}
	if !expectedEdition.Equal(accounts.CollectionMasterEdition) {
		return errors.Wrap(ErrInvalidAddress, "collection master edition")
	}

	collection, err := r.getMetadata(ctx, accounts.CollectionMetadata)
	if err != nil {
		return err
	}
	if collection.CollectionSize == nil {
		return errors.Wrap(ErrInvalidCollection, "collection is not sized")
	}
	if collection.UpdateAuthority != base58.Encode(accounts.CollectionAuthority) {
		return errors.Wrap(ErrOwnerMismatch, "collection authority")
	}

	if _, err := r.data.GetMasterEdition(ctx, base58.Encode(accounts.CollectionMasterEdition)); err == metadata.ErrEditionNotFound {
		return errors.Wrap(ErrAccountNotFound, "collection master edition")
	} else if err != nil {
		return err
	}

	size := *collection.CollectionSize
	if size+1 < size {
		return ErrArithmeticOverflow
	}
	collection.CollectionSize = pointer.To(size + 1)

	item.CollectionVerified = true
	if err := r.data.SaveTokenMetadata(ctx, item); err != nil {
		return err
	}
	return r.data.SaveTokenMetadata(ctx, collection)
}

func (r *Runtime) getMetadata(ctx context.Context, address ed25519.PublicKey) (*metadata.Record, error) {
	record, err := r.data.GetTokenMetadata(ctx, base58.Encode(address))
	if err == metadata.ErrMetadataNotFound {
		return nil, errors.Wrap(ErrAccountNotFound, base58.Encode(address))
	}
	return record, err
}
