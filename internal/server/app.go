// Package server initializes and runs the custody server: it opens the
// database, applies migrations, wires the engines and serves the HTTP API
// until shutdown.
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

	"github.com/dmitrijs2005/govkeeper/internal/logging"
	"github.com/dmitrijs2005/govkeeper/internal/server/config"
	"github.com/dmitrijs2005/govkeeper/internal/server/httpapi"
	"github.com/dmitrijs2005/govkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/govkeeper/internal/server/services"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	server *httpapi.Server
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	sl := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(sl)

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	clock := services.SystemClock{}

	svcs := &httpapi.Services{
		Users:      services.NewUserService(db, rm, c),
		Config:     services.NewConfigService(db, rm),
		Deposits:   services.NewDepositService(db, rm, clock),
		Claims:     services.NewClaimService(db, rm, clock),
		Burns:      services.NewBurnService(db, rm, clock),
		Redeems:    services.NewRedeemService(db, rm, clock),
		Statements: services.NewStatementService(db, rm, c, clock),
	}

	srv := httpapi.NewServer(c.EndpointAddr, logger, svcs, c.SecretKey)

	return &App{config: c, logger: logger, db: db, server: srv}, nil
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

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.server.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, err.Error())
	}
}
