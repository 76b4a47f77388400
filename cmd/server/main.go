package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/iho/cashbook/internal/adapter/http"
	"github.com/iho/cashbook/internal/adapter/http/handler"
	"github.com/iho/cashbook/internal/adapter/http/middleware"
	"github.com/iho/cashbook/internal/adapter/repository/memory"
	postgresRepo "github.com/iho/cashbook/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/cashbook/internal/adapter/repository/redis"
	"github.com/iho/cashbook/internal/infrastructure/auth"
	"github.com/iho/cashbook/internal/infrastructure/config"
	"github.com/iho/cashbook/internal/infrastructure/eventpublisher"
	"github.com/iho/cashbook/internal/infrastructure/logger"
	"github.com/iho/cashbook/internal/infrastructure/metrics"
	"github.com/iho/cashbook/internal/infrastructure/postgres"
	"github.com/iho/cashbook/internal/infrastructure/redis"
	"github.com/iho/cashbook/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	l := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	zerolog.DefaultContextLogger = &l

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, l); err != nil {
		l.Fatal().Err(err).Msg("server failed")
	}
}

// run serves until ctx is cancelled, then drains in-flight requests.
func run(ctx context.Context, cfg *config.Config, l zerolog.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	a, err := newApp(ctx, cfg, l, reg)
	if err != nil {
		return err
	}
	defer a.Close()

	workers, cancelWorkers := context.WithCancel(ctx)
	defer cancelWorkers()
	a.startWorkers(workers)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      a.handler,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		l.Info().Str("port", cfg.HTTPPort).Str("storage", cfg.StorageDriver).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	l.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	l.Info().Msg("server stopped")

	return nil
}

// storage is the set of ports one driver provides.
type storage struct {
	txManager    usecase.TransactionManager
	retrier      usecase.Retrier
	accounts     usecase.AccountRepository
	transactions usecase.TransactionRepository
	transfers    usecase.TransferRepository
	invoices     usecase.InvoiceRepository
	payments     usecase.PaymentRepository
	outbox       usecase.OutboxRepository
	pool         *pgxpool.Pool
}

// app holds the wired server and everything that must be closed with it.
type app struct {
	handler     http.Handler
	publisher   *eventpublisher.EventPublisher
	rateLimiter *middleware.RateLimiter
	metrics     *metrics.Metrics
	pool        *pgxpool.Pool
	closers     []func() error
	logger      zerolog.Logger
}

func newApp(ctx context.Context, cfg *config.Config, l zerolog.Logger, reg *prometheus.Registry) (*app, error) {
	m := metrics.NewWithRegisterer(reg)
	a := &app{metrics: m, logger: l}

	st, err := openStorage(ctx, cfg, l)
	if err != nil {
		return nil, err
	}
	if st.pool != nil {
		a.pool = st.pool
		a.closers = append(a.closers, func() error { st.pool.Close(); return nil })
	}

	var redisClient *goredis.Client
	if cfg.RedisURL != "" {
		redisClient, err = redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		a.closers = append(a.closers, redisClient.Close)
		l.Info().Msg("connected to redis")
	}

	sink, err := newSink(cfg, redisClient, l)
	if err != nil {
		a.Close()
		return nil, err
	}
	if c, ok := sink.(interface{ Close() error }); ok {
		a.closers = append(a.closers, c.Close)
	}

	a.publisher = eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: st.outbox,
		Publisher:  sink,
		Logger:     l,
		Metrics:    m,
		BatchSize:  cfg.OutboxBatchSize,
		Interval:   cfg.OutboxPollInterval,
		Retention:  cfg.OutboxRetention,
	})

	idGen := postgresRepo.NewULIDGenerator()
	uow := usecase.NewUnitOfWork(st.txManager, st.retrier, cfg.TxTimeout, m)

	var (
		cache       usecase.Cache
		idempotency usecase.IdempotencyStore
	)
	if redisClient != nil {
		idempotency = redisRepo.NewIdempotencyStore(redisClient)
		if cfg.CacheEnabled {
			cache = redisRepo.NewCache(redisClient)
		}
	}

	accountUC := usecase.NewAccountUseCase(uow, st.accounts, st.outbox, middleware.BranchResolver{}, idGen, m)
	ledgerUC := usecase.NewLedgerUseCase(uow, st.accounts, st.transactions, st.outbox, idGen, m)
	transferUC := usecase.NewTransferUseCase(uow, st.accounts, st.transactions, st.transfers, st.outbox, idGen, m)
	paymentUC := usecase.NewPaymentUseCase(uow, st.accounts, st.transactions, st.invoices, st.payments, st.outbox, idGen, m)
	invoiceUC := usecase.NewInvoiceUseCase(uow, st.invoices, st.outbox, idGen)
	reconUC := usecase.NewReconciliationUseCase(st.accounts, st.transactions, m)
	statementUC := usecase.NewStatementUseCase(st.accounts, st.transactions, cache, cfg.StatementCacheTTL, m)

	var jwtManager *auth.JWTManager
	if cfg.AuthEnabled {
		jwtManager = auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
	}

	if cfg.RateLimitRPS > 0 {
		a.rateLimiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, m)
	}

	a.handler = httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AccountHandler:     handler.NewAccountHandler(accountUC),
		TransactionHandler: handler.NewTransactionHandler(ledgerUC),
		StatementHandler:   handler.NewStatementHandler(statementUC, reconUC),
		TransferHandler:    handler.NewTransferHandler(transferUC),
		PaymentHandler:     handler.NewPaymentHandler(paymentUC),
		InvoiceHandler:     handler.NewInvoiceHandler(invoiceUC),
		HealthHandler:      handler.NewHealthHandler(st.pool, redisClient),
		Logger:             l,
		Metrics:            m,
		MetricsHandler:     promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		RateLimiter:        a.rateLimiter,
		IdempotencyStore:   idempotency,
		IdempotencyTTL:     cfg.IdempotencyTTL,
		JWTManager:         jwtManager,
	})

	return a, nil
}

// openStorage connects the configured driver. Postgres migrations run first
// when enabled.
func openStorage(ctx context.Context, cfg *config.Config, l zerolog.Logger) (*storage, error) {
	if cfg.StorageDriver == config.StorageMemory {
		store := memory.NewStore()
		l.Warn().Msg("using in-memory storage, data is lost on exit")

		return &storage{
			txManager:    memory.NewTxManager(store),
			accounts:     memory.NewAccountRepository(store),
			transactions: memory.NewTransactionRepository(store),
			transfers:    memory.NewTransferRepository(store),
			invoices:     memory.NewInvoiceRepository(store),
			payments:     memory.NewPaymentRepository(store),
			outbox:       memory.NewOutboxRepository(store),
		}, nil
	}

	if cfg.MigrateOnStart {
		if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, l); err != nil {
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL:    cfg.DatabaseURL,
		MaxConns:       cfg.DatabaseMaxConns,
		MinConns:       cfg.DatabaseMinConns,
		ConnectTimeout: cfg.DatabaseTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	l.Info().Msg("connected to postgres")

	return &storage{
		txManager:    postgresRepo.NewTxManager(pool),
		retrier:      postgresRepo.NewRetrier(cfg.RetryMaxAttempts),
		accounts:     postgresRepo.NewAccountRepository(pool),
		transactions: postgresRepo.NewTransactionRepository(pool),
		transfers:    postgresRepo.NewTransferRepository(pool),
		invoices:     postgresRepo.NewInvoiceRepository(pool),
		payments:     postgresRepo.NewPaymentRepository(pool),
		outbox:       postgresRepo.NewOutboxRepository(pool),
		pool:         pool,
	}, nil
}

// newSink picks where relayed outbox events go.
func newSink(cfg *config.Config, client *goredis.Client, l zerolog.Logger) (eventpublisher.Publisher, error) {
	switch cfg.EventSink {
	case config.SinkRedis:
		if client == nil {
			return nil, errors.New("EVENT_SINK=redis requires REDIS_URL")
		}
		return eventpublisher.NewRedisPublisher(client, cfg.EventRedisChannel), nil
	case config.SinkKafka:
		return eventpublisher.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, l), nil
	default:
		return eventpublisher.NewLogPublisher(l), nil
	}
}

// startWorkers runs the outbox relay, limiter cleanup and pool sampling
// until ctx is done.
func (a *app) startWorkers(ctx context.Context) {
	go func() {
		if err := a.publisher.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			a.logger.Error().Err(err).Msg("event publisher stopped")
		}
	}()

	if a.rateLimiter != nil {
		go a.rateLimiter.RunCleanup(ctx, time.Minute, 10*time.Minute)
	}

	if a.pool != nil {
		go samplePool(ctx, a.pool, a.metrics, 15*time.Second)
	}
}

func samplePool(ctx context.Context, pool *pgxpool.Pool, m *metrics.Metrics, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		m.DBConnections.Set(float64(pool.Stat().AcquiredConns()))

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Close releases connections in reverse order of opening.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn().Err(err).Msg("close failed")
		}
	}
	a.closers = nil
}
