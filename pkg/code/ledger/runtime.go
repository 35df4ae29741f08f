package ledger

import (
	"bytes"
	"context"
	"crypto/ed25519"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	code_data "github.com/code-payments/affiliate-market/pkg/code/data"
	"github.com/code-payments/affiliate-market/pkg/code/data/account"
	"github.com/code-payments/affiliate-market/pkg/metrics"
	"github.com/code-payments/affiliate-market/pkg/solana"
	"github.com/code-payments/affiliate-market/pkg/solana/system"
	"github.com/code-payments/affiliate-market/pkg/solana/token"
	"github.com/code-payments/affiliate-market/pkg/solana/tokenmetadata"
)

const (
	metricsStructName = "ledger.runtime"
)

var (
	systemProgramOwner   = base58.Encode(system.ProgramKey[:])
	tokenProgramOwner    = base58.Encode(token.ProgramKey)
	metadataProgramOwner = base58.Encode(tokenmetadata.PROGRAM_ID)
)

// Runtime executes native program instructions against the account, token and
// metadata stores. It does not open transactions of its own. Callers that need
// several instructions to apply atomically invoke them within
// DatabaseData.ExecuteInTx.
type Runtime struct {
	log  *logrus.Entry
	data code_data.DatabaseData
}

func NewRuntime(data code_data.DatabaseData) *Runtime {
	return &Runtime{
		log:  logrus.StandardLogger().WithField("type", "ledger/runtime"),
		data: data,
	}
}

// Invoke executes an instruction authorized by the provided transaction
// signers.
func (r *Runtime) Invoke(ctx context.Context, ix solana.Instruction, signers ...ed25519.PublicKey) error {
	return r.InvokeSigned(ctx, nil, ix, signers)
}

// InvokeSigned executes an instruction on behalf of a calling program. Each
// account the instruction requires as a signer must either be one of the
// transaction signers, or be the program address derived from the caller and
// one of the sets of signer seeds.
func (r *Runtime) InvokeSigned(ctx context.Context, caller ed25519.PublicKey, ix solana.Instruction, signers []ed25519.PublicKey, signerSeeds ...[][]byte) (err error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "InvokeSigned")
	defer func() {
		tracer.OnError(err)
		tracer.End()
	}()

	if err := verifySigners(caller, ix, signers, signerSeeds); err != nil {
		return err
	}

	switch {
	case ix.IsProgram(system.ProgramKey[:]):
		return r.executeSystem(ctx, ix)
	case ix.IsProgram(token.ProgramKey):
		return r.executeToken(ctx, ix)
	case ix.IsProgram(token.AssociatedTokenAccountProgramKey):
		return r.executeAssociatedTokenAccount(ctx, ix)
	case ix.IsProgram(tokenmetadata.PROGRAM_ID):
		return r.executeTokenMetadata(ctx, ix)
	default:
		return errors.Wrap(ErrUnsupportedProgram, base58.Encode(ix.Program))
	}
}

// Airdrop credits lamports to an address, creating a system account if none
// exists.
func (r *Runtime) Airdrop(ctx context.Context, address ed25519.PublicKey, lamports uint64) error {
	return r.credit(ctx, address, lamports)
}

// GetBalance returns the lamport balance of an address. Addresses that were
// never funded have a zero balance.
func (r *Runtime) GetBalance(ctx context.Context, address ed25519.PublicKey) (uint64, error) {
	record, err := r.data.GetAccountInfo(ctx, base58.Encode(address))
	if err == account.ErrAccountNotFound {
		return 0, nil
	} else if err != nil {
		return 0, err
	}
	return record.Lamports, nil
}

func verifySigners(caller ed25519.PublicKey, ix solana.Instruction, signers []ed25519.PublicKey, signerSeeds [][][]byte) error {
	var derived []ed25519.PublicKey
	for _, seeds := range signerSeeds {
		if caller == nil {
			return ErrInvalidSignerSeeds
		}

		address, err := solana.CreateProgramAddress(caller, seeds...)
		if err != nil {
			return errors.Wrap(ErrInvalidSignerSeeds, err.Error())
		}
		derived = append(derived, address)
	}

	for _, required := range ix.Signers() {
		if !containsKey(signers, required) && !containsKey(derived, required) {
			return errors.Wrap(ErrMissingSignature, base58.Encode(required))
		}
	}
	return nil
}

func containsKey(keys []ed25519.PublicKey, key ed25519.PublicKey) bool {
	for _, k := range keys {
		if bytes.Equal(k, key) {
			return true
		}
	}
	return false
}

func (r *Runtime) getAccount(ctx context.Context, address ed25519.PublicKey) (*account.Record, error) {
	record, err := r.data.GetAccountInfo(ctx, base58.Encode(address))
	if err == account.ErrAccountNotFound {
		return nil, errors.Wrap(ErrAccountNotFound, base58.Encode(address))
	}
	return record, err
}

func (r *Runtime) credit(ctx context.Context, address ed25519.PublicKey, lamports uint64) error {
	record, err := r.data.GetAccountInfo(ctx, base58.Encode(address))
	if err == account.ErrAccountNotFound {
		record = &account.Record{
			Address: base58.Encode(address),
			Owner:   systemProgramOwner,
		}
	} else if err != nil {
		return err
	}

	if record.Lamports+lamports < record.Lamports {
		return ErrArithmeticOverflow
	}
	record.Lamports += lamports

	return r.data.SaveAccountInfo(ctx, record)
}

func (r *Runtime) debit(ctx context.Context, address ed25519.PublicKey, lamports uint64) error {
	record, err := r.data.GetAccountInfo(ctx, base58.Encode(address))
	if err == account.ErrAccountNotFound {
		return errors.Wrap(ErrInsufficientFunds, base58.Encode(address))
	} else if err != nil {
		return err
	}

	// Only plain wallets can be debited by the system program
	if record.Owner != systemProgramOwner || record.DataSize > 0 {
		return errors.Wrap(ErrInvalidAccountOwner, base58.Encode(address))
	}

	if record.Lamports < lamports {
		return errors.Wrap(ErrInsufficientFunds, base58.Encode(address))
	}
	record.Lamports -= lamports

	return r.data.SaveAccountInfo(ctx, record)
}

// allocate creates a program owned account funded by the payer
func (r *Runtime) allocate(ctx context.Context, payer, address ed25519.PublicKey, lamports, size uint64, owner string) error {
	if lamports < system.MinimumBalanceForRentExemption(size) {
		return errors.Wrap(ErrNotRentExempt, base58.Encode(address))
	}

	existing, err := r.data.GetAccountInfo(ctx, base58.Encode(address))
	if err == nil && (existing.Lamports > 0 || existing.DataSize > 0 || existing.Owner != systemProgramOwner) {
		return errors.Wrap(ErrAccountInUse, base58.Encode(address))
	} else if err != nil && err != account.ErrAccountNotFound {
		return err
	}

	if err := r.debit(ctx, payer, lamports); err != nil {
		return err
	}

	record := &account.Record{
		Address:  base58.Encode(address),
		Owner:    owner,
		Lamports: lamports,
		DataSize: size,
	}
	if existing != nil {
		record = existing
		record.Owner = owner
		record.Lamports = lamports
		record.DataSize = size
	}
	return r.data.SaveAccountInfo(ctx, record)
}
