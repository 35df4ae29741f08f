package affiliatemarket

import "bytes"

type InstructionType uint8

const (
	Unknown InstructionType = iota

	InstructionTypeCreateCampaign
	InstructionTypeProcessMint
)

var (
	createCampaignInstructionDiscriminator = anchorDiscriminator("global", "create_campaign")
	processMintInstructionDiscriminator    = anchorDiscriminator("global", "process_mint")
)

func (t InstructionType) discriminator() []byte {
	switch t {
	case InstructionTypeCreateCampaign:
		return createCampaignInstructionDiscriminator
	case InstructionTypeProcessMint:
		return processMintInstructionDiscriminator
	}
	return nil
}

// GetInstructionType resolves the instruction from its 8 byte sighash prefix
func GetInstructionType(data []byte) InstructionType {
	if len(data) < 8 {
		return Unknown
	}

	for _, t := range []InstructionType{InstructionTypeCreateCampaign, InstructionTypeProcessMint} {
		if bytes.Equal(data[:8], t.discriminator()) {
			return t
		}
	}
	return Unknown
}

func (t InstructionType) String() string {
	switch t {
	case InstructionTypeCreateCampaign:
		return "create_campaign"
	case InstructionTypeProcessMint:
		return "process_mint"
	}
	return "unknown"
}
