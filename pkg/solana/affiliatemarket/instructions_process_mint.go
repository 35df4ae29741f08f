package affiliatemarket

import (
	"bytes"
	"crypto/ed25519"

	"github.com/near/borsh-go"
	"github.com/pkg/errors"

	"github.com/code-payments/affiliate-market/pkg/solana"
)

// ProcessMintInstructionArgs is borsh encoded after the sighash. Affiliate is
// an optional referrer.
type ProcessMintInstructionArgs struct {
	Name      string
	Symbol    string
	Uri       string
	Affiliate *[32]byte
}

type ProcessMintInstructionAccounts struct {
	Buyer                   ed25519.PublicKey
	Campaign                ed25519.PublicKey
	Creator                 ed25519.PublicKey
	AffiliateReceiver       ed25519.PublicKey
	AffiliateStats          ed25519.PublicKey
	NftMint                 ed25519.PublicKey
	BuyerNftAccount         ed25519.PublicKey
	MintAuthority           ed25519.PublicKey
	Metadata                ed25519.PublicKey
	MasterEdition           ed25519.PublicKey
	CollectionMint          ed25519.PublicKey
	CollectionMetadata      ed25519.PublicKey
	CollectionMasterEdition ed25519.PublicKey
	CollectionAuthority     ed25519.PublicKey
}

const processMintInstructionAccountCount = 19

func NewProcessMintInstruction(
	accounts *ProcessMintInstructionAccounts,
	args *ProcessMintInstructionArgs,
) (solana.Instruction, error) {
	encoded, err := borsh.Serialize(*args)
	if err != nil {
		return solana.Instruction{}, errors.Wrap(err, "error encoding process mint args")
	}

	data := append(append([]byte{}, InstructionTypeProcessMint.discriminator()...), encoded...)

	return solana.Instruction{
		Program: PROGRAM_ADDRESS,

		// Instruction args
		Data: data,

		// Instruction accounts
		Accounts: []solana.AccountMeta{
			{
				PublicKey:  accounts.Buyer,
				IsWritable: true,
				IsSigner:   true,
			},
			{
				PublicKey:  accounts.Campaign,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.Creator,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.AffiliateReceiver,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.AffiliateStats,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.NftMint,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.BuyerNftAccount,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.MintAuthority,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.Metadata,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.MasterEdition,
				IsWritable: true,
				IsSigner:   false,
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
			{
				PublicKey:  accounts.CollectionAuthority,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  SPL_TOKEN_PROGRAM_ID,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  ASSOCIATED_TOKEN_PROGRAM_ID,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  METADATA_PROGRAM_ID,
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

func DecompileProcessMintInstruction(i solana.Instruction) (*ProcessMintInstructionAccounts, *ProcessMintInstructionArgs, error) {
	if !bytes.Equal(i.Program, PROGRAM_ID) {
		return nil, nil, ErrInvalidProgram
	}
	if GetInstructionType(i.Data) != InstructionTypeProcessMint {
		return nil, nil, ErrInvalidInstructionData
	}
	if len(i.Accounts) != processMintInstructionAccountCount {
		return nil, nil, ErrInvalidAccounts
	}

	var args ProcessMintInstructionArgs
	if err := borsh.Deserialize(&args, i.Data[8:]); err != nil {
		return nil, nil, errors.Wrap(ErrInvalidInstructionData, err.Error())
	}

	return &ProcessMintInstructionAccounts{
		Buyer:                   i.Accounts[0].PublicKey,
		Campaign:                i.Accounts[1].PublicKey,
		Creator:                 i.Accounts[2].PublicKey,
		AffiliateReceiver:       i.Accounts[3].PublicKey,
		AffiliateStats:          i.Accounts[4].PublicKey,
		NftMint:                 i.Accounts[5].PublicKey,
		BuyerNftAccount:         i.Accounts[6].PublicKey,
		MintAuthority:           i.Accounts[7].PublicKey,
		Metadata:                i.Accounts[8].PublicKey,
		MasterEdition:           i.Accounts[9].PublicKey,
		CollectionMint:          i.Accounts[10].PublicKey,
		CollectionMetadata:      i.Accounts[11].PublicKey,
		CollectionMasterEdition: i.Accounts[12].PublicKey,
		CollectionAuthority:     i.Accounts[13].PublicKey,
	}, &args, nil
}
