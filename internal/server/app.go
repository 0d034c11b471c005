// Package server wires the PointGate server together: storage, the
// challenge store and code delivery, the ledger, sessions, the gRPC API and
// the operations HTTP endpoint. It also handles graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/pointgate/internal/cryptox"
	"github.com/dmitrijs2005/pointgate/internal/logging"
	"github.com/dmitrijs2005/pointgate/internal/server/config"
	"github.com/dmitrijs2005/pointgate/internal/server/ledger"
	"github.com/dmitrijs2005/pointgate/internal/server/metrics"
	"github.com/dmitrijs2005/pointgate/internal/server/otp"
	"github.com/dmitrijs2005/pointgate/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/pointgate/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/pointgate/internal/server/services"
	"github.com/dmitrijs2005/pointgate/internal/server/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	gs "github.com/dmitrijs2005/pointgate/internal/server/grpc"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	repos   repomanager.RepositoryManager
	redis   redis.UniversalClient
	metrics *metrics.Metrics
	grpc    *gs.GRPCServer
}

type options struct {
	logger    logging.Logger
	deliverer otp.Deliverer
	hasher    cryptox.Hasher
}

type Option func(*options)

// WithLogger replaces the logger built from the configuration.
func WithLogger(l logging.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithDeliverer replaces the configured code delivery channel.
func WithDeliverer(d otp.Deliverer) Option {
	return func(o *options) { o.deliverer = d }
}

// WithCodesTo delivers one-time codes as text lines to w.
func WithCodesTo(w io.Writer) Option {
	return WithDeliverer(otp.NewWriterDeliverer(w))
}

// WithHasher replaces the default argon2id password hasher.
func WithHasher(h cryptox.Hasher) Option {
	return func(o *options) { o.hasher = h }
}

// NewApp validates c and builds every component. Storage is migrated and the
// administrator account is created on an empty identity store.
func NewApp(ctx context.Context, c *config.Config, opts ...Option) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logging.New(os.Stdout, c.LogFormat, c.LogLevel)
	}
	if o.hasher == nil {
		o.hasher = cryptox.NewArgon2Hasher(cryptox.DefaultParams)
	}

	app := &App{config: c, logger: o.logger}

	m, err := metrics.New(prometheus.NewRegistry())
	if err != nil {
		return nil, fmt.Errorf("metrics init error: %w", err)
	}
	app.metrics = m

	if err := app.openStorage(ctx); err != nil {
		return nil, err
	}

	store, err := app.openChallengeStore(ctx)
	if err != nil {
		app.Close()
		return nil, err
	}

	accs := app.repos.Repositories().Accounts
	deliverer := o.deliverer
	if deliverer == nil {
		deliverer = app.newDeliverer(accs)
	}

	engine := otp.NewEngine(store, deliverer,
		otp.WithValidity(c.ChallengeValidityDuration),
		otp.WithRetention(c.ChallengeRetention),
		otp.WithTOTP(otp.TOTP{Step: c.TOTPStep, Digits: c.TOTPDigits, Window: c.TOTPWindow}),
		otp.WithLogger(app.logger),
		otp.WithObserver(m),
	)
	coordinator := ledger.NewCoordinator(app.repos, engine, ledger.WithLogger(app.logger), ledger.WithObserver(m))

	as := services.NewAccountService(accs, o.hasher, engine, coordinator, app.logger)
	sm := session.NewManager(accs, o.hasher, engine,
		session.WithLogger(app.logger),
		session.WithObserver(m),
		session.WithIssuer(c.TOTPIssuer),
		session.WithSecretLength(c.TOTPSecretLength),
	)

	created, err := as.BootstrapAdmin(ctx, c.AdminUserName, c.AdminPassword)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("admin bootstrap error: %w", err)
	}
	if created {
		app.logger.Warn(ctx, "Created administrator account, change its password", "username", c.AdminUserName)
	}

	srv, err := gs.NewGRPCServer(c.EndpointAddrGRPC, app.logger, as, services.NewWalletService(coordinator), sm,
		c.SecretKey, c.SessionValidityDuration)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.grpc = srv

	return app, nil
}

func (app *App) openStorage(ctx context.Context) error {
	switch app.config.StorageDriver {
	case config.StoragePostgres:
		pm, err := repomanager.OpenPostgres(ctx, app.config.DatabaseDSN)
		if err != nil {
			return err
		}
		app.repos = pm
	default:
		app.repos = repomanager.NewMemoryRepositoryManager()
	}

	if err := app.repos.RunMigrations(ctx); err != nil {
		_ = app.repos.Close()
		return fmt.Errorf("migrations error: %w", err)
	}

	app.logger.Info(ctx, "Storage ready", "driver", app.config.StorageDriver)
	return nil
}

func (app *App) openChallengeStore(ctx context.Context) (otp.ChallengeStore, error) {
	if app.config.ChallengeStore != config.ChallengeStoreRedis {
		return otp.NewMemoryStore(), nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     app.config.RedisAddr,
		Password: app.config.RedisPassword,
		DB:       app.config.RedisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping error: %w", err)
	}
	app.redis = rdb

	app.logger.Info(ctx, "Challenge store ready", "store", "redis", "address", app.config.RedisAddr)
	return otp.NewRedisStore(rdb), nil
}

func (app *App) newDeliverer(accs accounts.Repository) otp.Deliverer {
	if app.config.CodeDelivery != config.DeliveryMail {
		return otp.NewLogDeliverer(app.logger)
	}

	book := otp.AddressBookFunc(func(ctx context.Context, userName string) (string, error) {
		a, err := accs.Get(ctx, userName)
		if err != nil {
			return "", err
		}
		return a.Email, nil
	})

	return otp.NewMailDeliverer(otp.SMTPConfig{
		Host:     app.config.SMTPHost,
		Port:     app.config.SMTPPort,
		User:     app.config.SMTPUser,
		Password: app.config.SMTPPassword,
		From:     app.config.SMTPFrom,
	}, book, app.logger)
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

// Run serves the gRPC API and the operations endpoint until ctx is done or a
// termination signal arrives, then releases storage.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.grpc.Run(ctx); err != nil {
			app.logger.Error(ctx, "gRPC server error", "error", err)
			cancelFunc()
		}
	}()

	if app.config.MetricsAddr != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := app.runOpsServer(ctx); err != nil {
				app.logger.Error(ctx, "Operations server error", "error", err)
				cancelFunc()
			}
		}()
	}

	wg.Wait()

	if err := app.Close(); err != nil {
		app.logger.Error(ctx, "Shutdown error", "error", err)
	}
	app.logger.Info(ctx, "Stopped")
}

// Serve serves the gRPC API on lis until ctx is done. The console uses it
// to run a server in-process on a loopback listener.
func (app *App) Serve(ctx context.Context, lis net.Listener) error {
	return app.grpc.Serve(ctx, lis)
}

// Close releases storage and the Redis connection.
func (app *App) Close() error {
	var errs []error
	if app.repos != nil {
		errs = append(errs, app.repos.Close())
	}
	if app.redis != nil {
		errs = append(errs, app.redis.Close())
	}
	return errors.Join(errs...)
}
