package tokenmetadata

// InstructionType is the single byte discriminator of a token metadata
// instruction. Only the instructions used for issuing collection items are
// listed.
type InstructionType uint8

const (
	InstructionTypeCreateMasterEditionV3     InstructionType = 17
	InstructionTypeVerifySizedCollectionItem InstructionType = 30
	InstructionTypeCreateMetadataAccountV3   InstructionType = 33
)

// GetInstructionType returns the discriminator of a token metadata instruction
func GetInstructionType(data []byte) (InstructionType, error) {
	if len(data) == 0 {
		return 0, ErrInvalidInstructionData
	}
	return InstructionType(data[0]), nil
}
