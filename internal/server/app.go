// Package server wires the imagevault server: it opens the database, the blob
// store and the access ledger, builds the domain services and serves them
// over gRPC until a shutdown signal arrives.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/imagevault/internal/logging"
	"github.com/dmitrijs2005/imagevault/internal/server/blobstore"
	"github.com/dmitrijs2005/imagevault/internal/server/config"
	"github.com/dmitrijs2005/imagevault/internal/server/ledger"
	"github.com/dmitrijs2005/imagevault/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/imagevault/internal/server/services"

	gs "github.com/dmitrijs2005/imagevault/internal/server/grpc"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	blobs    blobstore.Store
	ledger   ledger.Ledger
	services gs.Services
}

var openDB = sql.Open

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.New(c.LogBackend, os.Stdout)

	db, err := openDB("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm, err := repomanager.NewPostgresRepositoryManager(db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	blobs, err := openBlobStore(ctx, c)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	l, err := openLedger(ctx, c)
	if err != nil {
		_ = blobs.Close()
		_ = db.Close()
		return nil, err
	}

	access := services.NewAccessService(db, rm, l, logger)

	app := &App{
		config: c,
		logger: logger,
		db:     db,
		blobs:  blobs,
		ledger: l,
		services: gs.Services{
			Accounts: services.NewAccountService(db, rm, c),
			Custody:  services.NewCustodyService(db, rm, logger),
			Access:   access,
			Vaults:   services.NewVaultService(db, rm, l, access),
			Images:   services.NewImageService(db, rm, blobs, access),
		},
	}

	return app, nil
}

func openBlobStore(ctx context.Context, c *config.Config) (blobstore.Store, error) {
	switch c.BlobBackend {
	case config.BlobBackendS3:
		s, err := blobstore.NewS3Store(ctx, blobstore.S3Config{
			Region:       c.S3Region,
			AccessKey:    c.S3RootUser,
			SecretKey:    c.S3RootPassword,
			BaseEndpoint: c.S3BaseEndpoint,
			Bucket:       c.S3Bucket,
		})
		if err != nil {
			return nil, fmt.Errorf("blob store init error: %w", err)
		}
		return s, nil
	case config.BlobBackendBadger:
		s, err := blobstore.OpenBadgerStore(c.BadgerBlobPath)
		if err != nil {
			return nil, fmt.Errorf("blob store init error: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown blob backend %q", c.BlobBackend)
	}
}

func openLedger(ctx context.Context, c *config.Config) (ledger.Ledger, error) {
	switch c.LedgerBackend {
	case config.LedgerBackendLocal:
		l, err := ledger.OpenBadgerLedger(c.LedgerPath)
		if err != nil {
			return nil, fmt.Errorf("ledger init error: %w", err)
		}
		return l, nil
	case config.LedgerBackendEVM:
		l, err := ledger.NewEVMLedger(ctx, ledger.EVMConfig{
			RPCURL:          c.EVMRPCURL,
			ContractAddress: c.ContractAddress,
			OperatorKey:     c.OperatorKey,
			ChainID:         c.ChainID,
		})
		if err != nil {
			return nil, fmt.Errorf("ledger init error: %w", err)
		}
		return l, nil
	default:
		return nil, fmt.Errorf("unknown ledger backend %q", c.LedgerBackend)
	}
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

	s, err := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.services, app.config.SecretKey)

	if err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	} else {

		if err := s.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}
}

// Close releases the ledger, the blob store and the database, in that order.
func (app *App) Close() error {
	var errs []error
	if app.ledger != nil {
		errs = append(errs, app.ledger.Close())
	}
	if app.blobs != nil {
		errs = append(errs, app.blobs.Close())
	}
	if app.db != nil {
		errs = append(errs, app.db.Close())
	}
	return errors.Join(errs...)
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.Close(); err != nil {
		app.logger.Error(ctx, "shutdown error", "error", err.Error())
	}

	app.logger.Info(ctx, "App stopped")
}
