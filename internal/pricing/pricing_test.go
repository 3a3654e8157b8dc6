package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestQuoteFor_KnownSize(t *testing.T) {
	// 2000 bytes -> 400,000,000 cycles -> 40,000 e8s -> 0.0004 ICP.
	q := QuoteFor(2000)
	require.Equal(t, uint64(40_000), q.PaymentE8s)
	require.True(t, q.PaymentICP().Equal(decimal.RequireFromString("0.0004")),
		"got %s", q.PaymentICP())
}

func TestQuoteFor_Monotone(t *testing.T) {
	prev := uint64(0)
	for _, n := range []uint64{0, 1, 2, 10, 99, 100, 1000, 2000, 65536, 1 << 20} {
		q := QuoteFor(n)
		require.GreaterOrEqual(t, q.PaymentE8s, prev, "size %d", n)
		prev = q.PaymentE8s
	}
}

func TestQuoteFor_FeeFloor(t *testing.T) {
	q := QuoteFor(0)
	require.Zero(t, q.PaymentE8s)
	require.Equal(t, TransferFeeE8s, q.TotalE8s())
	require.Positive(t, q.TotalE8s())
}

func TestQuoteFor_Deterministic(t *testing.T) {
	a, b := QuoteFor(31_337), QuoteFor(31_337)
	require.Equal(t, a, b)
	require.True(t, a.PaymentICP().Equal(b.PaymentICP()))
}

func TestQuoteFor_RoundsUp(t *testing.T) {
	// CyclesPerByte is an exact multiple of CyclesPerE8s, so every byte
	// costs exactly 20 e8s and no rounding occurs on whole bytes.
	require.Equal(t, uint64(20), QuoteFor(1).PaymentE8s)
	require.Equal(t, uint64(20*7), QuoteFor(7).PaymentE8s)
}
