package affiliatemarket

import (
	"bytes"
	"crypto/ed25519"

	"github.com/code-payments/affiliate-market/pkg/solana"
)

const (
	CreateCampaignInstructionArgsSize = (8 + // price
		2 + // affiliate_fee_bps
		8) // max_supply
)

type CreateCampaignInstructionArgs struct {
	Price           uint64
	AffiliateFeeBps uint16
	MaxSupply       uint64
}

type CreateCampaignInstructionAccounts struct {
	Creator             ed25519.PublicKey
	Campaign            ed25519.PublicKey
	CollectionMint      ed25519.PublicKey
	CollectionAuthority ed25519.PublicKey
	MintAuthority       ed25519.PublicKey
}

func NewCreateCampaignInstruction(
	accounts *CreateCampaignInstructionAccounts,
	args *CreateCampaignInstructionArgs,
) solana.Instruction {
	var offset int

	// Serialize instruction arguments
	data := make([]byte, 8+CreateCampaignInstructionArgsSize)

	putDiscriminator(data, InstructionTypeCreateCampaign.discriminator(), &offset)
	putUint64(data, args.Price, &offset)
	putUint16(data, args.AffiliateFeeBps, &offset)
	putUint64(data, args.MaxSupply, &offset)

	return solana.Instruction{
		Program: PROGRAM_ADDRESS,

		// Instruction args
		Data: data,

		// Instruction accounts
		Accounts: []solana.AccountMeta{
			{
				PublicKey:  accounts.Creator,
				IsWritable: true,
				IsSigner:   true,
			},
			{
				PublicKey:  accounts.Campaign,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.CollectionMint,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.CollectionAuthority,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.MintAuthority,
				IsWritable: true,
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
	}
}

func DecompileCreateCampaignInstruction(i solana.Instruction) (*CreateCampaignInstructionAccounts, *CreateCampaignInstructionArgs, error) {
	if !bytes.Equal(i.Program, PROGRAM_ID) {
		return nil, nil, ErrInvalidProgram
	}
	if GetInstructionType(i.Data) != InstructionTypeCreateCampaign {
		return nil, nil, ErrInvalidInstructionData
	}
	if len(i.Data) != 8+CreateCampaignInstructionArgsSize {
		return nil, nil, ErrInvalidInstructionData
	}
	if len(i.Accounts) != 7 {
		return nil, nil, ErrInvalidAccounts
	}

	var args CreateCampaignInstructionArgs
	offset := 8
	getUint64(i.Data, &args.Price, &offset)
	getUint16(i.Data, &args.AffiliateFeeBps, &offset)
	getUint64(i.Data, &args.MaxSupply, &offset)

	return &CreateCampaignInstructionAccounts{
		Creator:             i.Accounts[0].PublicKey,
		Campaign:            i.Accounts[1].PublicKey,
		CollectionMint:      i.Accounts[2].PublicKey,
		CollectionAuthority: i.Accounts[3].PublicKey,
		MintAuthority:       i.Accounts[4].PublicKey,
	}, &args, nil
}
