package tokenmetadata

import (
	"bytes"
	"crypto/ed25519"

	"github.com/near/borsh-go"
	"github.com/pkg/errors"

	"github.com/code-payments/affiliate-market/pkg/solana"
)

type CreateMetadataAccountV3InstructionArgs struct {
	Data              DataV2
	IsMutable         bool
	CollectionDetails *CollectionDetails
}

type CreateMetadataAccountV3InstructionAccounts struct {
	Metadata        ed25519.PublicKey
	Mint            ed25519.PublicKey
	MintAuthority   ed25519.PublicKey
	Payer           ed25519.PublicKey
	UpdateAuthority ed25519.PublicKey
}

func NewCreateMetadataAccountV3Instruction(
	accounts *CreateMetadataAccountV3InstructionAccounts,
	args *CreateMetadataAccountV3InstructionArgs,
) (solana.Instruction, error) {
	encoded, err := borsh.Serialize(*args)
	if err != nil {
		return solana.Instruction{}, errors.Wrap(err, "error encoding create metadata args")
	}

	data := append([]byte{byte(InstructionTypeCreateMetadataAccountV3)}, encoded...)

	return solana.Instruction{
		Program: PROGRAM_ID,

		// Instruction args
		Data: data,

		// Instruction accounts
		Accounts: []solana.AccountMeta{
			{
				PublicKey:  accounts.Metadata,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.Mint,
				IsWritable: false,
				IsSigner:   false,
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
				PublicKey:  accounts.UpdateAuthority,
				IsWritable: false,
				IsSigner:   true,
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

func DecompileCreateMetadataAccountV3Instruction(i solana.Instruction) (*CreateMetadataAccountV3InstructionAccounts, *CreateMetadataAccountV3InstructionArgs, error) {
	if !bytes.Equal(i.Program, PROGRAM_ID) {
		return nil, nil, ErrInvalidProgram
	}

	instructionType, err := GetInstructionType(i.Data)
	if err != nil {
		return nil, nil, err
	}
	if instructionType != InstructionTypeCreateMetadataAccountV3 {
		return nil, nil, ErrInvalidInstructionData
	}
	if len(i.Accounts) != 7 {
		return nil, nil, ErrInvalidAccounts
	}

	var args CreateMetadataAccountV3InstructionArgs
	if err := borsh.Deserialize(&args, i.Data[1:]); err != nil {
		return nil, nil, errors.Wrap(ErrInvalidInstructionData, err.Error())
	}

	return &CreateMetadataAccountV3InstructionAccounts{
		Metadata:        i.Accounts[0].PublicKey,
		Mint:            i.Accounts[1].PublicKey,
		MintAuthority:   i.Accounts[2].PublicKey,
		Payer:           i.Accounts[3].PublicKey,
		UpdateAuthority: i.Accounts[4].PublicKey,
	}, &args, nil
}
