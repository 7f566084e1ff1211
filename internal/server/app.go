// Package server wires configuration, storage, the token engine and both
// transports into a runnable application.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/signmanager/internal/logging"
	"github.com/dmitrijs2005/signmanager/internal/server/auth"
	"github.com/dmitrijs2005/signmanager/internal/server/config"
	"github.com/dmitrijs2005/signmanager/internal/server/passwords"
	"github.com/dmitrijs2005/signmanager/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/signmanager/internal/server/rest"
	"github.com/dmitrijs2005/signmanager/internal/server/services"

	gs "github.com/dmitrijs2005/signmanager/internal/server/grpc"
)

// ErrInvalidTokenTTL is returned by NewApp when the access token validity
// is not positive.
var ErrInvalidTokenTTL = errors.New("access token validity must be positive")

type App struct {
	config     *config.Config
	logger     logging.Logger
	db         *sql.DB
	grpcServer *gs.GRPCServer
	httpServer *rest.HTTPServer
}

// NewApp validates the signing key and token lifetime, opens and migrates the database and
// builds both servers. A bad key aborts before any I/O.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	return newApp(ctx, c, os.Stdout)
}

func newApp(ctx context.Context, c *config.Config, logOut io.Writer) (*App, error) {
	logger, err := logging.NewJSONLogger(logOut, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	key, err := auth.InitSigningKey(c.SecretKey)
	if err != nil {
		return nil, err
	}
	if c.AccessTokenValidityDuration <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidTokenTTL, c.AccessTokenValidityDuration)
	}
	engine := auth.NewEngine(key)

	db, rm, err := repomanager.Open(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	us, err := services.NewUserService(db, rm, engine, passwords.NewBcryptHasher(c.BcryptCost), c.AccessTokenValidityDuration)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &App{
		config:     c,
		logger:     logger,
		db:         db,
		grpcServer: gs.NewGRPCServer(c.EndpointAddrGRPC, logger, us, engine),
		httpServer: rest.NewHTTPServer(c.EndpointAddrHTTP, logger, us, engine),
	}, nil
}

type runner interface {
	Run(ctx context.Context) error
}

// Run serves gRPC and HTTP until ctx is cancelled, a termination signal
// arrives, or either server fails. The database is closed on return.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)

	for _, r := range []runner{app.grpcServer, app.httpServer} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := r.Run(ctx); err != nil {
				app.logger.Error(ctx, "server failed", "error", err)
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
				cancelFunc()
			}
		}()
	}

	wg.Wait()

	if err := app.db.Close(); err != nil {
		errs = append(errs, fmt.Errorf("db close: %w", err))
	}

	app.logger.Info(context.Background(), "App stopped")
	return errors.Join(errs...)
}
