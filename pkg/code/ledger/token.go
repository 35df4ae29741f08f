package ledger

import (
	"context"
	"crypto/ed25519"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"

	"github.com/code-payments/affiliate-market/pkg/code/data/token"
	"github.com/code-payments/affiliate-market/pkg/pointer"
	"github.com/code-payments/affiliate-market/pkg/solana"
	"github.com/code-payments/affiliate-market/pkg/solana/system"
	token_program "github.com/code-payments/affiliate-market/pkg/solana/token"
)

func (r *Runtime) executeToken(ctx context.Context, ix solana.Instruction) error {
	command, err := token_program.GetCommand(ix)
	if err != nil {
		return err
	}

	switch command {
	case token_program.CommandInitializeMint:
		decompiled, err := token_program.DecompileInitializeMint(ix)
		if err != nil {
			return err
		}
		return r.initializeMint(ctx, decompiled)
	case token_program.CommandMintTo:
		decompiled, err := token_program.DecompileMintTo(ix)
		if err != nil {
			return err
		}
		return r.mintTo(ctx, decompiled)
	default:
		return ErrUnsupportedInstruction
	}
}

func (r *Runtime) initializeMint(ctx context.Context, ix *token_program.DecompiledInitializeMint) error {
	info, err := r.getAccount(ctx, ix.Mint)
	if err != nil {
		return err
	}

	if info.Owner != tokenProgramOwner {
		return errors.Wrap(ErrInvalidAccountOwner, info.Address)
	}
	if info.DataSize != token_program.MintSize {
		return errors.Wrap(ErrInvalidAccountData, info.Address)
	}

	_, err = r.data.GetTokenMint(ctx, info.Address)
	if err == nil {
		return errors.Wrap(ErrAccountInUse, info.Address)
	} else if err != token.ErrMintNotFound {
		return err
	}

	record := &token.MintRecord{
		Address:       info.Address,
		Decimals:      ix.Decimals,
		MintAuthority: pointer.To(base58.Encode(ix.MintAuthority)),
	}
	if len(ix.FreezeAuthority) > 0 {
		record.FreezeAuthority = pointer.To(base58.Encode(ix.FreezeAuthority))
	}
	return r.data.SaveTokenMint(ctx, record)
}

func (r *Runtime) mintTo(ctx context.Context, ix *token_program.DecompiledMintTo) error {
	mint, err := r.getMint(ctx, ix.Mint)
	if err != nil {
		return err
	}

	if mint.MintAuthority == nil || *mint.MintAuthority != base58.Encode(ix.MintAuthority) {
		return errors.Wrap(ErrOwnerMismatch, "mint authority")
	}

	destination, err := r.data.GetTokenAccount(ctx, base58.Encode(ix.Destination))
	if err == token.ErrTokenAccountNotFound {
		return errors.Wrap(ErrAccountNotFound, base58.Encode(ix.Destination))
	} else if err != nil {
		return err
	}

	if destination.Mint != mint.Address {
		return ErrMintMismatch
	}

	if mint.Supply+ix.Amount < mint.Supply || destination.Amount+ix.Amount < destination.Amount {
		return ErrArithmeticOverflow
	}

	mint.Supply += ix.Amount
	destination.Amount += ix.Amount

	if err := r.data.SaveTokenMint(ctx, mint); err != nil {
		return err
	}
	return r.data.SaveTokenAccount(ctx, destination)
}

func (r *Runtime) executeAssociatedTokenAccount(ctx context.Context, ix solana.Instruction) error {
	decompiled, err := token_program.DecompileCreateAssociatedAccount(ix)
	if err != nil {
		return err
	}

	expected, err := token_program.GetAssociatedAccount(decompiled.Owner, decompiled.Mint)
	if err != nil {
		return err
	}
	if !expected.Equal(decompiled.Address) {
		return errors.Wrap(ErrInvalidAddress, "associated token account")
	}

	if _, err := r.getMint(ctx, decompiled.Mint); err != nil {
		return err
	}

	existing, err := r.data.GetTokenAccount(ctx, base58.Encode(decompiled.Address))
	switch err {
	case nil:
		if !decompiled.Idempotent {
			return errors.Wrap(ErrAccountInUse, existing.Address)
		}
		if existing.Owner != base58.Encode(decompiled.Owner) || existing.Mint != base58.Encode(decompiled.Mint) {
			return errors.Wrap(ErrInvalidAccountData, existing.Address)
		}
		return nil
	case token.ErrTokenAccountNotFound:
	default:
		return err
	}

	err = r.allocate(
		ctx,
		decompiled.Subsidizer,
		decompiled.Address,
		system.MinimumBalanceForRentExemption(token_program.AccountSize),
		token_program.AccountSize,
		tokenProgramOwner,
	)
	if err != nil {
		return err
	}

	return r.data.SaveTokenAccount(ctx, &token.AccountRecord{
		Address: base58.Encode(decompiled.Address),
		Mint:    base58.Encode(decompiled.Mint),
		Owner:   base58.Encode(decompiled.Owner),
	})
}

func (r *Runtime) getMint(ctx context.Context, address ed25519.PublicKey) (*token.MintRecord, error) {
	mint, err := r.data.GetTokenMint(ctx, base58.Encode(address))
	if err == token.ErrMintNotFound {
		return nil, errors.Wrap(ErrAccountNotFound, base58.Encode(address))
	}
	return mint, err
}
