package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"github.com/utafrali/storefront/pkg/database"
	"github.com/utafrali/storefront/pkg/health"
	pkgkafka "github.com/utafrali/storefront/pkg/kafka"
	"github.com/utafrali/storefront/pkg/tracing"

	"github.com/utafrali/storefront/internal/account"
	"github.com/utafrali/storefront/internal/auth"
	"github.com/utafrali/storefront/internal/catalog"
	"github.com/utafrali/storefront/internal/config"
	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/event"
	handler "github.com/utafrali/storefront/internal/handler/http"
	"github.com/utafrali/storefront/internal/kv"
	"github.com/utafrali/storefront/internal/order"
	"github.com/utafrali/storefront/internal/store"
)

// App wires together all dependencies and runs the storefront.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	producer       *pkgkafka.Producer
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tracerShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    "storefront",
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.TracingEndpoint,
		SampleRate:     cfg.TracingSample,
		Enabled:        cfg.TracingEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	healthHandler := health.NewHandler()

	// Session state storage backend.
	storage, err := newStorage(ctx, cfg, healthHandler, logger)
	if err != nil {
		return nil, fmt.Errorf("init storage backend: %w", err)
	}

	// Kafka producer, optional.
	var producer *pkgkafka.Producer
	var publisher *event.Producer
	if cfg.KafkaEnabled {
		producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		publisher = event.NewProducer(producer, logger)
		healthHandler.Register("kafka", func(ctx context.Context) error {
			return producer.Ping(ctx)
		})
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	}

	// Orders persistence, optional Postgres.
	var pool *pgxpool.Pool
	var orderRepo order.Repository
	if cfg.PostgresEnabled {
		pgCfg := cfg.Postgres()
		pool, err = database.NewPostgresPool(ctx, &pgCfg, logger)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		logger.Info("connected to PostgreSQL",
			slog.String("host", cfg.PostgresHost),
			slog.String("database", cfg.PostgresDB),
		)
		healthHandler.Register("postgres", func(ctx context.Context) error {
			return pool.Ping(ctx)
		})
		orderRepo = order.NewPostgresRepository(pool)
	} else {
		orderRepo = order.NewMemoryRepository(nil)
	}

	// User accounts, seeded with the bootstrap admin.
	users, err := seededUsers()
	if err != nil {
		return nil, fmt.Errorf("seed users: %w", err)
	}

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiry)

	catalogClient := catalog.NewClient(cfg.CatalogURL, logger)
	catalogService := catalog.NewService(catalogClient, cfg.CatalogTTL, logger)

	router := handler.NewRouter(handler.Deps{
		Catalog:  catalogService,
		Registry: store.NewRegistry(storage, logger),
		Auth:     auth.NewService(users, jwtManager, storage, logger),
		Account:  account.NewService(users, logger),
		Orders:   order.NewService(orderRepo, publisher, logger),
		Producer: publisher,
		Health:   healthHandler,
		Logger:   logger,

		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	})

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		pool:           pool,
		producer:       producer,
		httpServer:     httpServer,
		tracerShutdown: tracerShutdown,
	}, nil
}

// newStorage builds the configured key-value backend and registers its
// readiness check.
func newStorage(ctx context.Context, cfg *config.Config, h *health.Handler, logger *slog.Logger) (kv.Store, error) {
	switch cfg.StorageBackend {
	case config.StorageRedis:
		client, err := database.NewRedisClient(ctx, cfg.Redis())
		if err != nil {
			return nil, err
		}
		h.Register("redis", func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		})
		logger.Info("using redis storage", slog.String("addr", cfg.RedisAddr))
		return kv.NewRedis(client, cfg.StorageTTL), nil

	case config.StorageFile:
		store, err := kv.NewFile(cfg.StorageDir)
		if err != nil {
			return nil, err
		}
		logger.Info("using file storage", slog.String("dir", cfg.StorageDir))
		return store, nil

	default:
		logger.Info("using in-memory storage")
		return kv.NewMemory(), nil
	}
}

// seededUsers creates the user repository with the bootstrap admin account.
func seededUsers() (account.Repository, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), 12)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}
	return account.NewMemoryRepository([]domain.User{
		{
			ID:           1,
			Email:        "admin@storefront.local",
			PasswordHash: string(hash),
			FirstName:    "Store",
			LastName:     "Admin",
			Role:         domain.RoleAdmin,
			Status:       domain.UserStatusActive,
			CreatedAt:    time.Now().UTC(),
		},
	}), nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server", slog.String("addr", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components: drain HTTP, flush spans, close
// the Kafka producer, close the database pool.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	httpCtx, httpCancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if a.pool != nil {
		a.pool.Close()
	}

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
