package tokenmetadata

import (
	"bytes"
	"crypto/ed25519"

	"github.com/code-payments/affiliate-market/pkg/solana"
)

type VerifySizedCollectionItemInstructionAccounts struct {
	Metadata                  ed25519.PublicKey
	CollectionAuthority       ed25519.PublicKey
	Payer                     ed25519.PublicKey
	CollectionMint            ed25519.PublicKey
	CollectionMetadata        ed25519.PublicKey
	CollectionMasterEdition   ed25519.PublicKey
	CollectionAuthorityRecord ed25519.PublicKey // Optional
}

func NewVerifySizedCollectionItemInstruction(
	accounts *VerifySizedCollectionItemInstructionAccounts,
) solana.Instruction {
	instructionAccounts := []solana.AccountMeta{
		{
			PublicKey:  accounts.Metadata,
			IsWritable: true,
			IsSigner:   false,
		},
		{
			PublicKey:  accounts.CollectionAuthority,
			IsWritable: false,
			IsSigner:   true,
		},
		{
			PublicKey:  accounts.Payer,
			IsWritable: true,
			IsSigner:   true,
		},
		{
			PublicKey:  accounts.CollectionMint,
			IsWritable: false,
			IsSigner:   false,
		},
		{
			PublicKey:  accounts.CollectionMetadata,
			IsWritable: true,
			IsSigner:   false,
		},
		{
			PublicKey:  accounts.CollectionMasterEdition,
			IsWritable: false,
			IsSigner:   false,
		},
	}
	if len(accounts.CollectionAuthorityRecord) > 0 {
		instructionAccounts = append(instructionAccounts, solana.AccountMeta{
			PublicKey:  accounts.CollectionAuthorityRecord,
			IsWritable: false,
			IsSigner:   false,
		})
	}

	return solana.Instruction{
		Program: PROGRAM_ID,

		// Instruction args
		Data: []byte{byte(InstructionTypeVerifySizedCollectionItem)},

		// Instruction accounts
		Accounts: instructionAccounts,
	}
}

func DecompileVerifySizedCollectionItemInstruction(i solana.Instruction) (*VerifySizedCollectionItemInstructionAccounts, error) {
	if !bytes.Equal(i.Program, PROGRAM_ID) {
		return nil, ErrInvalidProgram
	}
	if !bytes.Equal(i.Data, []byte{byte(InstructionTypeVerifySizedCollectionItem)}) {
		return nil, ErrInvalidInstructionData
	}
	if len(i.Accounts) != 6 && len(i.Accounts) != 7 {
		return nil, ErrInvalidAccounts
	}

	decompiled := &VerifySizedCollectionItemInstructionAccounts{
		Metadata:                i.Accounts[0].PublicKey,
		CollectionAuthority:     i.Accounts[1].PublicKey,
		Payer:                   i.Accounts[2].PublicKey,
		CollectionMint:          i.Accounts[3].PublicKey,
		CollectionMetadata:      i.Accounts[4].PublicKey,
		CollectionMasterEdition: i.Accounts[5].PublicKey,
	}
	if len(i.Accounts) == 7 {
		decompiled.CollectionAuthorityRecord = i.Accounts[6].PublicKey
	}
	return decompiled, nil
}
