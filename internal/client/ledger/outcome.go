// Package ledger wraps value transfers against an ICP-compatible ledger.
// Both observed wire dialects (variant result and legacy bare-height) are
// adapted to one canonical outcome: a block height on success, a typed
// *TransferError on ledger rejection.
package ledger

import (
	"errors"
	"fmt"

	"github.com/modelmart/modelmart/internal/rpc"
)

var (
	// ErrStatusUnknown means the call timed out: the transfer may or may
	// not have landed. Callers must not treat it as a plain failure.
	ErrStatusUnknown = errors.New("transfer timed out, payment status unknown")

	// ErrInvalidAmount rejects negative or out-of-range amounts before
	// any network call.
	ErrInvalidAmount = errors.New("invalid transfer amount")
)

// TransferError is a ledger-reported rejection. The transfer did not
// happen; no funds moved.
type TransferError struct {
	Kind string

	// Variant payloads; meaningful per Kind.
	BalanceE8s     uint64
	ExpectedFeeE8s uint64
	DuplicateOf    uint64
}

func (e *TransferError) Error() string {
	switch e.Kind {
	case rpc.FaultInsufficientFunds:
		return fmt.Sprintf("transfer rejected: insufficient funds (balance %d e8s)", e.BalanceE8s)
	case rpc.FaultBadFee:
		return fmt.Sprintf("transfer rejected: bad fee (expected %d e8s)", e.ExpectedFeeE8s)
	case rpc.FaultTxDuplicate:
		return fmt.Sprintf("transfer rejected: duplicate of block %d", e.DuplicateOf)
	case rpc.FaultTxTooOld:
		return "transfer rejected: transaction too old"
	case rpc.FaultTxCreatedInFuture:
		return "transfer rejected: transaction created in future"
	default:
		return fmt.Sprintf("transfer rejected: %s", e.Kind)
	}
}

func faultToError(f *rpc.TransferFault) error {
	if f == nil {
		return nil
	}
	return &TransferError{
		Kind:           f.Kind,
		BalanceE8s:     f.BalanceE8s,
		ExpectedFeeE8s: f.ExpectedFeeE8s,
		DuplicateOf:    f.DuplicateOf,
	}
}
