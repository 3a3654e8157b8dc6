// Package publisher drives the paid listing mutations: publish, update
// and delete. Every mutation runs the same protocol: price the payload,
// settle the payment (reusing a confirmed or journaled one when present),
// then ask the broker to apply the change.
package publisher

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/shopspring/decimal"

	"github.com/modelmart/modelmart/internal/client/broker"
	"github.com/modelmart/modelmart/internal/client/journal"
	"github.com/modelmart/modelmart/internal/client/wallet"
	"github.com/modelmart/modelmart/internal/logging"
	"github.com/modelmart/modelmart/internal/pricing"
	"github.com/modelmart/modelmart/internal/rpc"
)

var (
	// ErrBusy means a paid mutation is already in flight. The protocol
	// is strictly serial per wallet.
	ErrBusy = errors.New("another paid operation is in progress")
)

// Broker is the slice of the broker client the publisher needs.
type Broker interface {
	HasPayment(ctx context.Context, principal string) (bool, uint64, error)
	ConfirmPayment(ctx context.Context, amountE8s uint64) (string, error)
	StoreListing(ctx context.Context, draft rpc.ListingDraft, sizeBytes uint64) (string, uint64, error)
	UpdateListing(ctx context.Context, index uint64, draft rpc.ListingDraft, sizeBytes uint64) (string, error)
	DeleteListing(ctx context.Context, index uint64) (string, error)
	GetListing(ctx context.Context, index uint64) (*rpc.Listing, error)
}

// Ledger submits value transfers from the connected wallet.
type Ledger interface {
	Transfer(ctx context.Context, destinationPrincipal string, amount decimal.Decimal) (uint64, error)
}

type Publisher struct {
	broker  Broker
	ledger  Ledger
	journal journal.Repository
	session *wallet.Session
	logger  logging.Logger

	// paymentPrincipal receives publishing fees.
	paymentPrincipal string

	// newBackoff is a seam for tests; defaults to capped exponential.
	newBackoff func() retry.Backoff

	mu sync.Mutex
}

func NewPublisher(b Broker, l Ledger, j journal.Repository, s *wallet.Session, paymentPrincipal string, logger logging.Logger) *Publisher {
	return &Publisher{
		broker:           b,
		ledger:           l,
		journal:          j,
		session:          s,
		logger:           logger,
		paymentPrincipal: paymentPrincipal,
		newBackoff: func() retry.Backoff {
			return retry.WithMaxRetries(4, retry.NewExponential(500*time.Millisecond))
		},
	}
}

// Quote prices a draft without touching the network.
func (p *Publisher) Quote(draft rpc.ListingDraft) (pricing.Quote, error) {
	size, err := rpc.PayloadSize(&draft)
	if err != nil {
		return pricing.Quote{}, fmt.Errorf("failed to size payload: %w", err)
	}
	return pricing.QuoteFor(size), nil
}

// Publish creates a new listing. It returns the listing index assigned by
// the broker.
func (p *Publisher) Publish(ctx context.Context, draft rpc.ListingDraft) (uint64, error) {
	if !p.mu.TryLock() {
		return 0, ErrBusy
	}
	defer p.mu.Unlock()

	principal, ok := p.session.Principal()
	if !ok {
		return 0, wallet.ErrNotConnected
	}

	quote, err := p.Quote(draft)
	if err != nil {
		return 0, err
	}
	p.logger.Debug(ctx, "quoted publish", "size_bytes", quote.SizeBytes, "payment_e8s", quote.PaymentE8s)

	if err := p.settlePayment(ctx, principal, quote); err != nil {
		return 0, err
	}

	_, index, err := p.broker.StoreListing(ctx, draft, quote.SizeBytes)
	if err != nil {
		// The confirmed payment survives on the broker; re-running the
		// publish picks it up without a second transfer.
		return 0, fmt.Errorf("failed to store listing: %w", err)
	}

	p.logger.Info(ctx, "listing published", "index", index)
	return index, nil
}

// Update replaces the draft of an existing listing.
func (p *Publisher) Update(ctx context.Context, index uint64, draft rpc.ListingDraft) error {
	if !p.mu.TryLock() {
		return ErrBusy
	}
	defer p.mu.Unlock()

	principal, ok := p.session.Principal()
	if !ok {
		return wallet.ErrNotConnected
	}

	quote, err := p.Quote(draft)
	if err != nil {
		return err
	}

	if err := p.settlePayment(ctx, principal, quote); err != nil {
		return err
	}

	if _, err := p.broker.UpdateListing(ctx, index, draft, quote.SizeBytes); err != nil {
		return fmt.Errorf("failed to update listing: %w", err)
	}

	p.logger.Info(ctx, "listing updated", "index", index)
	return nil
}

// Delete removes a listing. The price is derived from the stored payload
// size, not from anything the caller supplies.
func (p *Publisher) Delete(ctx context.Context, index uint64) error {
	if !p.mu.TryLock() {
		return ErrBusy
	}
	defer p.mu.Unlock()

	principal, ok := p.session.Principal()
	if !ok {
		return wallet.ErrNotConnected
	}

	listing, err := p.broker.GetListing(ctx, index)
	if err != nil {
		return err
	}
	quote := pricing.QuoteFor(listing.SizeBytes)

	if err := p.settlePayment(ctx, principal, quote); err != nil {
		return err
	}

	if _, err := p.broker.DeleteListing(ctx, index); err != nil {
		return fmt.Errorf("failed to delete listing: %w", err)
	}

	p.logger.Info(ctx, "listing deleted", "index", index)
	return nil
}

// settlePayment makes sure the broker holds a confirmed payment for
// principal before the mutation is attempted. Order matters:
//
//  1. a journaled transfer is confirmed first, without paying again;
//  2. an already-confirmed payment on the broker is reused, with
//     confirmation re-issued but no second transfer;
//  3. otherwise funds are transferred, journaled, then confirmed.
func (p *Publisher) settlePayment(ctx context.Context, principal string, quote pricing.Quote) error {
	pending, err := p.journal.Pending(ctx, principal)
	if err != nil {
		return err
	}
	if pending != nil {
		p.logger.Info(ctx, "resuming journaled payment", "block_height", pending.BlockHeight)
		return p.confirmAndClear(ctx, principal, pending.AmountE8s)
	}

	exists, _, err := p.broker.HasPayment(ctx, principal)
	if err != nil {
		return err
	}
	if exists {
		// No new transfer, but confirmation is re-issued; the broker
		// upsert makes it idempotent.
		p.logger.Info(ctx, "reusing confirmed payment", "principal", principal)
		return p.confirmAndClear(ctx, principal, quote.PaymentE8s)
	}

	// The session may have been torn down while the user was deciding.
	// Check once more before money moves.
	if _, ok := p.session.Principal(); !ok {
		return wallet.ErrCancelled
	}

	height, err := p.ledger.Transfer(ctx, p.paymentPrincipal, quote.PaymentICP())
	if err != nil {
		return err
	}
	p.logger.Info(ctx, "payment transferred", "block_height", height, "amount_e8s", quote.PaymentE8s)

	if err := p.journal.Record(ctx, &journal.PendingPayment{
		Principal:   principal,
		AmountE8s:   quote.PaymentE8s,
		BlockHeight: height,
	}); err != nil {
		return fmt.Errorf("transfer landed at block %d but journaling failed: %w", height, err)
	}

	return p.confirmAndClear(ctx, principal, quote.PaymentE8s)
}

func (p *Publisher) confirmAndClear(ctx context.Context, principal string, amountE8s uint64) error {
	err := retry.Do(ctx, p.newBackoff(), func(ctx context.Context) error {
		_, err := p.broker.ConfirmPayment(ctx, amountE8s)
		if errors.Is(err, broker.ErrUnavailable) {
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		// The journal entry stays; the next run resumes from here.
		return fmt.Errorf("failed to confirm payment: %w", err)
	}

	if err := p.journal.Clear(ctx, principal); err != nil {
		p.logger.Error(ctx, "failed to clear payment journal", "error", err)
	}
	return nil
}
