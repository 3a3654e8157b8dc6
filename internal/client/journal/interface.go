// Package journal records transfers whose broker confirmation has not
// been acknowledged yet. The record is written before ConfirmPayment is
// attempted, so a crash between the ledger transfer and the confirmation
// can be resumed without paying a second time.
package journal

import (
	"context"
	"time"
)

// PendingPayment is a transfer that landed on the ledger but whose
// confirmation outcome is unknown. At most one exists per principal.
type PendingPayment struct {
	Principal   string
	AmountE8s   uint64
	BlockHeight uint64
	CreatedAt   time.Time
}

type Repository interface {
	// Pending returns the pending payment for principal, or nil when
	// there is none.
	Pending(ctx context.Context, principal string) (*PendingPayment, error)
	Record(ctx context.Context, p *PendingPayment) error
	Clear(ctx context.Context, principal string) error
}
