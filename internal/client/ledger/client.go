package ledger

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"github.com/modelmart/modelmart/internal/client/wallet"
	"github.com/modelmart/modelmart/internal/icp"
	"github.com/modelmart/modelmart/internal/pricing"
	"github.com/modelmart/modelmart/internal/rpc"
)

// Dialect selects the ledger endpoint wire shape.
type Dialect string

const (
	// DialectTransfer is the modern endpoint with a variant result.
	DialectTransfer Dialect = "transfer"
	// DialectSendDfx is the legacy endpoint returning a bare height.
	DialectSendDfx Dialect = "send_dfx"
)

// Client submits transfers on behalf of the connected wallet identity.
type Client struct {
	session *wallet.Session
	dialect Dialect
	timeout time.Duration
	conn    *grpc.ClientConn

	// invoke is a seam for tests; defaults to conn.Invoke.
	invoke func(ctx context.Context, method string, req, resp any) error
}

// NewClient dials the ledger endpoint. The session gates every transfer:
// no call leaves the process without a connected identity.
func NewClient(endpoint string, dialect Dialect, session *wallet.Session, timeout time.Duration) (*Client, error) {
	conn, err := grpc.NewClient(endpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.ForceCodec(rpc.Codec{})),
	)
	if err != nil {
		return nil, err
	}

	c := &Client{session: session, dialect: dialect, timeout: timeout, conn: conn}
	c.invoke = func(ctx context.Context, method string, req, resp any) error {
		return conn.Invoke(ctx, method, req, resp)
	}
	return c, nil
}

func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// AmountE8s converts a decimal ICP amount into ledger minor units,
// flooring sub-e8s precision.
func AmountE8s(amount decimal.Decimal) (uint64, error) {
	if amount.IsNegative() {
		return 0, ErrInvalidAmount
	}
	shifted := amount.Shift(8).Floor()
	if !shifted.IsInteger() || shifted.Cmp(decimal.NewFromInt(math.MaxInt64)) > 0 {
		return 0, ErrInvalidAmount
	}
	return uint64(shifted.IntPart()), nil
}

// Transfer sends amount ICP to the account of the destination principal.
// It returns the ledger block height on success.
//
// The fee is the ledger's fixed fee, the memo is zero, and the created-at
// timestamp is left for the ledger to assign. The transfer is
// irreversible; a later protocol-step failure cannot roll it back.
func (c *Client) Transfer(ctx context.Context, destinationPrincipal string, amount decimal.Decimal) (uint64, error) {
	if _, ok := c.session.Principal(); !ok {
		return 0, wallet.ErrNotConnected
	}

	dest, err := icp.FromText(destinationPrincipal)
	if err != nil {
		return 0, fmt.Errorf("bad destination: %w", err)
	}

	e8s, err := AmountE8s(amount)
	if err != nil {
		return 0, err
	}

	req := &rpc.TransferRequest{
		To:        icp.AccountIdentifier(dest, icp.DefaultSubaccount),
		AmountE8s: e8s,
		FeeE8s:    pricing.TransferFeeE8s,
		Memo:      0,
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var height uint64
	switch c.dialect {
	case DialectSendDfx:
		resp := &rpc.SendDfxResponse{}
		if err := c.invoke(ctx, rpc.LedgerSendDfxMethod, req, resp); err != nil {
			return 0, c.mapRPCError(err)
		}
		height = resp.Height
	default:
		resp := &rpc.TransferResponse{}
		if err := c.invoke(ctx, rpc.LedgerTransferMethod, req, resp); err != nil {
			return 0, c.mapRPCError(err)
		}
		if err := faultToError(resp.Fault); err != nil {
			return 0, err
		}
		height = resp.Height
	}

	return height, nil
}

func (c *Client) mapRPCError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || status.Code(err) == codes.DeadlineExceeded {
		return fmt.Errorf("%w: %v", ErrStatusUnknown, err)
	}
	return fmt.Errorf("ledger rpc error: %w", err)
}
