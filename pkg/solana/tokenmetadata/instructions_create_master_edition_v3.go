package tokenmetadata

import (
	"bytes"
	"crypto/ed25519"

	"github.com/near/borsh-go"
	"github.com/pkg/errors"

	"github.com/code-payments/affiliate-market/pkg/solana"
)

type CreateMasterEditionV3InstructionArgs struct {
	MaxSupply *uint64
}

type CreateMasterEditionV3InstructionAccounts struct {
	Edition         ed25519.PublicKey
	Mint            ed25519.PublicKey
	UpdateAuthority ed25519.PublicKey
	MintAuthority   ed25519.PublicKey
	Payer           ed25519.PublicKey
	Metadata        ed25519.PublicKey
}

func NewCreateMasterEditionV3Instruction(
	accounts *CreateMasterEditionV3InstructionAccounts,
	args *CreateMasterEditionV3InstructionArgs,
) (solana.Instruction, error) {
	encoded, err := borsh.Serialize(*args)
	if err != nil {
		return solana.Instruction{}, errors.Wrap(err, "error encoding create master edition args")
	}

	data := append([]byte{byte(InstructionTypeCreateMasterEditionV3)}, encoded...)

	return solana.Instruction{
		Program: PROGRAM_ID,

		// Instruction args
		Data: data,

		// Instruction accounts
		Accounts: []solana.AccountMeta{
			{
				PublicKey:  accounts.Edition,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.Mint,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.UpdateAuthority,
				IsWritable: false,
				IsSigner:   true,
			},
			{
				PublicKey:  accounts.MintAuthority,
				IsWritable: false,
				IsSigner:   true,
			},
			{
				PublicKey:  accounts.Payer,
				IsWritable: true,
				IsSigner:   true,
			},
			{
				PublicKey:  accounts.Metadata,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  SPL_TOKEN_PROGRAM_ID,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  SYSTEM_PROGRAM_ID,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  SYSVAR_RENT_PUBKEY,
				IsWritable: false,
				IsSigner:   false,
			},
		},
	}, nil
}

func DecompileCreateMasterEditionV3Instruction(i solana.Instruction) (*CreateMasterEditionV3InstructionAccounts, *CreateMasterEditionV3InstructionArgs, error) {
	if !bytes.Equal(i.Program, PROGRAM_ID) {
		return nil, nil, ErrInvalidProgram
	}

	instructionType, err := GetInstructionType(i.Data)
	if err != nil {
		return nil, nil, err
	}
	if instructionType != InstructionTypeCreateMasterEditionV3 {
		return nil, nil, ErrInvalidInstructionData
	}
	if len(i.Accounts) != 9 {
		return nil, nil, ErrInvalidAccounts
	}

	var args CreateMasterEditionV3InstructionArgs
	if err := borsh.Deserialize(&args, i.Data[1:]); err != nil {
		return nil, nil, errors.Wrap(ErrInvalidInstructionData, err.Error())
	}

	return &CreateMasterEditionV3InstructionAccounts{
		Edition:         i.Accounts[0].PublicKey,
		Mint:            i.Accounts[1].PublicKey,
		UpdateAuthority: i.Accounts[2].PublicKey,
		MintAuthority:   i.Accounts[3].PublicKey,
		Payer:           i.Accounts[4].PublicKey,
		Metadata:        i.Accounts[5].PublicKey,
	}, &args, nil
}
