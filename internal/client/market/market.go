// Package market is the buyer side of the marketplace: browsing
// listings, purchasing access to a model and fetching its artifact.
package market

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/modelmart/modelmart/internal/client/wallet"
	"github.com/modelmart/modelmart/internal/common"
	"github.com/modelmart/modelmart/internal/logging"
	"github.com/modelmart/modelmart/internal/rpc"
)

// Broker is the slice of the broker client the market needs.
type Broker interface {
	GetListing(ctx context.Context, index uint64) (*rpc.Listing, error)
	ListListings(ctx context.Context, uploader string) ([]rpc.Listing, error)
	HasPurchased(ctx context.Context, principal string, index uint64) (bool, error)
	RecordPurchase(ctx context.Context, index uint64, amountE8s uint64) (string, error)
	PresignDownload(ctx context.Context, index uint64) (string, error)
}

// Ledger submits value transfers from the connected wallet.
type Ledger interface {
	Transfer(ctx context.Context, destinationPrincipal string, amount decimal.Decimal) (uint64, error)
}

type Market struct {
	broker  Broker
	ledger  Ledger
	session *wallet.Session
	logger  logging.Logger
}

func NewMarket(b Broker, l Ledger, s *wallet.Session, logger logging.Logger) *Market {
	return &Market{broker: b, ledger: l, session: s, logger: logger}
}

// Listings returns everything currently on the market.
func (m *Market) Listings(ctx context.Context) ([]rpc.Listing, error) {
	return m.broker.ListListings(ctx, "")
}

// Mine returns the connected wallet's own listings.
func (m *Market) Mine(ctx context.Context) ([]rpc.Listing, error) {
	principal, ok := m.session.Principal()
	if !ok {
		return nil, wallet.ErrNotConnected
	}
	return m.broker.ListListings(ctx, principal)
}

func (m *Market) Get(ctx context.Context, index uint64) (*rpc.Listing, error) {
	return m.broker.GetListing(ctx, index)
}

func (m *Market) HasPurchased(ctx context.Context, index uint64) (bool, error) {
	principal, ok := m.session.Principal()
	if !ok {
		return false, wallet.ErrNotConnected
	}
	return m.broker.HasPurchased(ctx, principal, index)
}

// Buy pays the listing price to the vendor's wallet and records the
// purchase. Buying something already owned is rejected before any funds
// move.
func (m *Market) Buy(ctx context.Context, index uint64) error {
	principal, ok := m.session.Principal()
	if !ok {
		return wallet.ErrNotConnected
	}

	listing, err := m.broker.GetListing(ctx, index)
	if err != nil {
		return err
	}

	purchased, err := m.broker.HasPurchased(ctx, principal, index)
	if err != nil {
		return err
	}
	if purchased {
		return common.ErrorAlreadyPurchased
	}

	price, err := decimal.NewFromString(listing.Price)
	if err != nil {
		return fmt.Errorf("listing %d has malformed price %q: %w", index, listing.Price, err)
	}

	amountE8s := uint64(price.Shift(8).Floor().IntPart())
	if price.IsPositive() {
		height, err := m.ledger.Transfer(ctx, listing.WalletPrincipal, price)
		if err != nil {
			return err
		}
		m.logger.Info(ctx, "purchase paid", "index", index, "block_height", height)
	}

	if _, err := m.broker.RecordPurchase(ctx, index, amountE8s); err != nil {
		return err
	}

	m.logger.Info(ctx, "purchase recorded", "index", index)
	return nil
}

// Download returns a presigned URL for the listing's artifact. The broker
// enforces that the caller bought it.
func (m *Market) Download(ctx context.Context, index uint64) (string, error) {
	if _, ok := m.session.Principal(); !ok {
		return "", wallet.ErrNotConnected
	}
	return m.broker.PresignDownload(ctx, index)
}
