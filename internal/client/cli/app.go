// Package cli is the interactive vendor/buyer console for modelmart.
package cli

import (
	"bufio"
	"context"
	"log"
	"os"

	"github.com/modelmart/modelmart/internal/client/broker"
	"github.com/modelmart/modelmart/internal/client/config"
	"github.com/modelmart/modelmart/internal/client/journal"
	"github.com/modelmart/modelmart/internal/client/ledger"
	"github.com/modelmart/modelmart/internal/client/market"
	"github.com/modelmart/modelmart/internal/client/publisher"
	"github.com/modelmart/modelmart/internal/client/wallet"
	"github.com/modelmart/modelmart/internal/logging"

	_ "modernc.org/sqlite"
)

type App struct {
	config    *config.Config
	session   *wallet.Session
	broker    *broker.Client
	ledger    *ledger.Client
	publisher *publisher.Publisher
	market    *market.Market
	reader    *bufio.Reader
}

func NewApp(c *config.Config, logger logging.Logger) (*App, error) {
	ctx := context.Background()

	repo, err := journal.InitDatabase(ctx, c.JournalPath)
	if err != nil {
		log.Printf("error initializing journal database: %s", err.Error())
		return nil, err
	}

	a := &App{config: c, reader: bufio.NewReader(os.Stdin)}
	a.session = wallet.NewSession(wallet.ConnectorFunc(a.openWallet))

	a.broker, err = broker.NewClient(c.BrokerEndpointAddr, a.session, c.RequestTimeout)
	if err != nil {
		return nil, err
	}

	a.ledger, err = ledger.NewClient(c.LedgerEndpointAddr, ledger.Dialect(c.LedgerDialect), a.session, c.TransferTimeout)
	if err != nil {
		return nil, err
	}

	a.publisher = publisher.NewPublisher(a.broker, a.ledger, repo, a.session, c.FeeWalletPrincipal, logger)
	a.market = market.NewMarket(a.broker, a.ledger, a.session, logger)

	return a, nil
}

func (a *App) Run(ctx context.Context) {
	defer a.broker.Close()
	defer a.ledger.Close()
	a.Root(ctx)
}
