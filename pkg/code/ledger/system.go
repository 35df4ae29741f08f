package ledger

import (
	"context"

	"github.com/mr-tron/base58"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/affiliate-market/pkg/solana"
	"github.com/code-payments/affiliate-market/pkg/solana/system"
)

func (r *Runtime) executeSystem(ctx context.Context, ix solana.Instruction) error {
	switch {
	case system.IsCreateAccount(ix):
		decompiled, err := system.DecompileCreateAccount(ix)
		if err != nil {
			return err
		}

		r.log.WithFields(logrus.Fields{
			"method":  "CreateAccount",
			"address": base58.Encode(decompiled.Address),
			"size":    decompiled.Size,
		}).Trace("creating account")

		return r.allocate(
			ctx,
			decompiled.Funder,
			decompiled.Address,
			decompiled.Lamports,
			decompiled.Size,
			base58.Encode(decompiled.Owner),
		)
	case system.IsTransfer(ix):
		decompiled, err := system.DecompileTransfer(ix)
		if err != nil {
			return err
		}

		if decompiled.Lamports == 0 {
			return nil
		}

		if err := r.debit(ctx, decompiled.From, decompiled.Lamports); err != nil {
			return err
		}
		return r.credit(ctx, decompiled.To, decompiled.Lamports)
	default:
		return ErrUnsupportedInstruction
	}
}
