package ledger

import "errors"

var (
	ErrUnsupportedProgram     = errors.New("unsupported program")
	ErrUnsupportedInstruction = errors.New("unsupported instruction")
	ErrMissingSignature       = errors.New("missing required signature")
	ErrInvalidSignerSeeds     = errors.New("signer seeds do not derive a program address")
	ErrInsufficientFunds      = errors.New("insufficient funds")
	ErrNotRentExempt          = errors.New("account would not be rent exempt")
	ErrAccountInUse           = errors.New("account already in use")
	ErrAccountNotFound        = errors.New("account not found")
	ErrInvalidAccountOwner    = errors.New("invalid account owner")
	ErrInvalidAccountData     = errors.New("invalid account data")
	ErrInvalidAddress         = errors.New("account does not match its derived address")
	ErrOwnerMismatch          = errors.New("authority does not match")
	ErrMintMismatch           = errors.New("token account mint does not match")
	ErrArithmeticOverflow     = errors.New("arithmetic overflow")
	ErrInvalidMetadata        = errors.New("invalid metadata arguments")
	ErrInvalidEditionSupply   = errors.New("master edition mint supply must be exactly one")
	ErrInvalidCollection      = errors.New("invalid collection")
	ErrAlreadyVerified        = errors.New("collection item already verified")
)
