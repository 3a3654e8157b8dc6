// Package server initializes and runs the broker application: database,
// migrations, services, and the gRPC endpoint, with graceful shutdown on
// OS signals.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/modelmart/modelmart/internal/logging"
	"github.com/modelmart/modelmart/internal/server/artifacts"
	"github.com/modelmart/modelmart/internal/server/config"
	"github.com/modelmart/modelmart/internal/server/repositories/repomanager"
	"github.com/modelmart/modelmart/internal/server/services"

	gs "github.com/modelmart/modelmart/internal/server/grpc"
)

type App struct {
	config          *config.Config
	logger          logging.Logger
	db              *sql.DB
	sessionService  *services.SessionService
	listingService  *services.ListingService
	purchaseService *services.PurchaseService
}

func NewApp(c *config.Config) (*App, error) {

	ctx := context.Background()

	sl := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(sl)

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm, err := repomanager.NewPostgresRepositoryManager(db)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	store := artifacts.NewStore(c)

	ss := services.NewSessionService(c)
	ls := services.NewListingService(db, rm, store, logger)
	ps := services.NewPurchaseService(db, rm, store)

	return &App{
		config:          c,
		logger:          logger,
		db:              db,
		sessionService:  ss,
		listingService:  ls,
		purchaseService: ps,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s, err := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger,
		app.sessionService, app.listingService, app.purchaseService, app.config.SecretKey)

	if err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
		return
	}

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, err.Error())
	}
}
