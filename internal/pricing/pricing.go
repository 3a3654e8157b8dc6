// Package pricing implements the broker's storage cost function: payload
// bytes are priced in cycles, converted into ledger minor units (e8s), and
// finally into a decimal ICP amount for the transfer call.
//
// The constants are wire-compatibility values shared with the broker; any
// change breaks interop with deployed brokers.
package pricing

import "github.com/shopspring/decimal"

const (
	// CyclesPerByte is the broker's storage price per payload byte.
	CyclesPerByte uint64 = 200_000

	// CyclesPerE8s converts cycle cost into ledger minor units: one e8s
	// buys this many cycles. The division rounds up.
	CyclesPerE8s uint64 = 10_000

	// E8sPerICP is the ledger's minor-unit scale: 1 ICP = 10^8 e8s.
	E8sPerICP uint64 = 100_000_000

	// TransferFeeE8s is the ledger's fixed per-transfer fee.
	TransferFeeE8s uint64 = 10_000
)

// Quote is the cost of storing a payload of a given size.
type Quote struct {
	SizeBytes  uint64
	PaymentE8s uint64
	FeeE8s     uint64
}

// QuoteFor prices a payload of n bytes:
//
//	cycles = n * CyclesPerByte
//	e8s    = ceil(cycles / CyclesPerE8s)
func QuoteFor(n uint64) Quote {
	cycles := n * CyclesPerByte
	e8s := cycles / CyclesPerE8s
	if cycles%CyclesPerE8s != 0 {
		e8s++
	}
	return Quote{SizeBytes: n, PaymentE8s: e8s, FeeE8s: TransferFeeE8s}
}

// PaymentICP is the broker payment as a decimal ICP amount
// (PaymentE8s / E8sPerICP). This is the amount handed to the ledger
// transfer client; the fee is charged by the ledger on top.
func (q Quote) PaymentICP() decimal.Decimal {
	return decimal.New(int64(q.PaymentE8s), -8)
}

// TotalE8s is the full cost to the payer including the ledger fee.
// Nonzero even for an empty payload: the fee is the cost floor.
func (q Quote) TotalE8s() uint64 {
	return q.PaymentE8s + q.FeeE8s
}
