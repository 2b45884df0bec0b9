package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc/credentials"

	"github.com/bibbank/mortgage-advisor/internal/application/usecase"
	"github.com/bibbank/mortgage-advisor/internal/domain/event"
	"github.com/bibbank/mortgage-advisor/internal/domain/port"
	"github.com/bibbank/mortgage-advisor/internal/domain/service"
	"github.com/bibbank/mortgage-advisor/internal/infrastructure/cache"
	"github.com/bibbank/mortgage-advisor/internal/infrastructure/catalog"
	"github.com/bibbank/mortgage-advisor/internal/infrastructure/config"
	advisorkafka "github.com/bibbank/mortgage-advisor/internal/infrastructure/kafka"
	pgRepo "github.com/bibbank/mortgage-advisor/internal/infrastructure/persistence/postgres"
	"github.com/bibbank/mortgage-advisor/internal/infrastructure/scheduler"
	grpcPresentation "github.com/bibbank/mortgage-advisor/internal/presentation/grpc"
	"github.com/bibbank/mortgage-advisor/internal/presentation/rest"
	"github.com/bibbank/mortgage-advisor/pkg/auth"
	pkgkafka "github.com/bibbank/mortgage-advisor/pkg/kafka"
	"github.com/bibbank/mortgage-advisor/pkg/observability"
	pkgpostgres "github.com/bibbank/mortgage-advisor/pkg/postgres"
	"github.com/bibbank/mortgage-advisor/pkg/tlsutil"
)

func main() {
	if err := run(); err != nil {
		slog.Error("mortgage-advisor stopped with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Configuration.
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := observability.InitLogger(observability.LogConfig{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: cfg.ServiceName,
	})
	logger.Info("starting mortgage-advisor",
		"grpc_port", cfg.Server.GRPCPort,
		"http_port", cfg.Server.HTTPPort,
		"catalog", cfg.Catalog.Path,
	)

	// Tracing and metrics.
	tracerProvider, err := observability.InitTracer(ctx, observability.TracingConfig{
		ServiceName: cfg.ServiceName,
		Endpoint:    cfg.Tracing.Endpoint,
		Insecure:    cfg.Tracing.Insecure,
		SampleRatio: cfg.Tracing.SampleRatio,
	})
	if err != nil {
		logger.Warn("failed to initialize tracer, continuing without tracing", "error", err)
	} else {
		defer func() { _ = tracerProvider.Shutdown(context.Background()) }() //nolint:errcheck // best-effort flush
	}

	meterProvider, metricsHandler, err := observability.InitMetrics(observability.MetricsConfig{ServiceName: cfg.ServiceName})
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}
	defer func() { _ = meterProvider.Shutdown(context.Background()) }() //nolint:errcheck // best-effort flush
	metrics, err := observability.NewAdvisorMetrics(meterProvider, cfg.ServiceName)
	if err != nil {
		return fmt.Errorf("create metrics: %w", err)
	}

	// Database.
	dbCtx, dbCancel := context.WithTimeout(ctx, 10*time.Second)
	defer dbCancel()
	pgCfg := cfg.PostgresConfig()
	pool, err := pkgpostgres.NewPool(dbCtx, pgCfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()
	logger.Info("connected to database")

	if cfg.Database.MigrateOnStart {
		if err := pkgpostgres.RunMigrations(pgCfg.DSN(), pgRepo.Migrations, pgRepo.MigrationsDir); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		logger.Info("database migrations applied")
	}

	// Redis.
	redisClient, err := cache.NewRedisClient(dbCtx, cache.RedisOptions{
		Address:  cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer func() { _ = redisClient.Close() }()
	productCache := cache.NewProductCache(redisClient, cfg.Redis.KeyPrefix, cfg.Catalog.CacheTTL)

	// Kafka.
	producer, err := pkgkafka.NewProducer(cfg.KafkaConfig())
	if err != nil {
		return fmt.Errorf("create kafka producer: %w", err)
	}
	defer func() { _ = producer.Close() }()

	// Repositories and domain services.
	appRepo := pgRepo.NewApplicationRepo(pool)
	productRepo := pgRepo.NewProductRepo(pool)
	runRepo := pgRepo.NewRecommendationRunRepo(pool)
	outboxRepo := pgRepo.NewOutboxRepo(pool)
	clock := port.SystemClock{}
	calculator := service.NewMetricsCalculator()
	engine := service.NewRecommendationEngine(cfg.Engine.TopN, cfg.Engine.Workers)

	// Use cases.
	submitUC := usecase.NewSubmitApplicationUseCase(appRepo, calculator, clock, logger)
	getAppUC := usecase.NewGetApplicationUseCase(appRepo, calculator)
	generateUC := usecase.NewGenerateRecommendationsUseCase(appRepo, productRepo, productCache, runRepo,
		calculator, engine, clock, metrics, logger)
	getRecUC := usecase.NewGetRecommendationUseCase(runRepo)
	listUC := usecase.NewListProductsUseCase(productRepo, productCache, logger)
	simulateUC := usecase.NewSimulateScheduleUseCase(productRepo, service.NewStressRunner())
	syncUC := usecase.NewSyncCatalogUseCase(catalog.NewFileSource(cfg.Catalog.Path, logger),
		productRepo, productCache, clock, metrics, logger)
	relayUC := usecase.NewRelayOutboxUseCase(outboxRepo,
		advisorkafka.NewOutboxPublisher(producer, logger), cfg.Outbox.BatchSize, metrics, logger)

	// Background jobs.
	jobs := scheduler.New(ctx, syncUC, relayUC, logger)
	if err := jobs.RegisterAll(cfg.Catalog.Schedule, cfg.Outbox.Schedule); err != nil {
		return err
	}
	if cfg.Catalog.SyncOnStart {
		if err := jobs.RunCatalogSyncNow(scheduler.TriggerStartup); err != nil {
			logger.Warn("initial catalog sync failed, serving the stored catalog", "error", err)
		}
	}

	// Auth.
	jwtCfg, err := cfg.AuthConfig()
	if err != nil {
		return err
	}
	jwtSvc, err := auth.NewJWTService(jwtCfg)
	if err != nil {
		return fmt.Errorf("init jwt service: %w", err)
	}

	// gRPC server.
	var creds credentials.TransportCredentials
	certFile, keyFile := cfg.Server.TLSCertFile, cfg.Server.TLSKeyFile
	if cfg.Server.TLSDevCertDir != "" {
		devCerts, err := tlsutil.GenerateSelfSignedCert([]string{"localhost", "127.0.0.1"}, cfg.Server.TLSDevCertDir)
		if err != nil {
			return fmt.Errorf("generate dev certificates: %w", err)
		}
		certFile, keyFile = devCerts.ServerCert, devCerts.ServerKey
		logger.Warn("serving gRPC with a self-signed development certificate", "ca_file", devCerts.CA)
	}
	if certFile != "" {
		creds, err = tlsutil.ServerTLSConfig(certFile, keyFile, cfg.Server.TLSClientCAFile)
		if err != nil {
			return fmt.Errorf("load tls credentials: %w", err)
		}
	}
	handler := grpcPresentation.NewAdvisorHandler(grpcPresentation.UseCases{
		SubmitApplication:       submitUC,
		GetApplication:          getAppUC,
		GenerateRecommendations: generateUC,
		GetRecommendation:       getRecUC,
		ListProducts:            listUC,
		SimulateSchedule:        simulateUC,
		SyncCatalog:             syncUC,
	}, logger)
	grpcServer := grpcPresentation.NewServer(handler, jwtSvc, grpcPresentation.ServerOptions{
		ServiceName: cfg.ServiceName,
		Creds:       creds,
		Reflection:  cfg.Server.Reflection,
	}, logger)

	// HTTP server (health checks and metrics).
	mux := http.NewServeMux()
	rest.NewHealthHandler(cfg.ServiceName, map[string]rest.Check{
		"postgres": func(ctx context.Context) error { return pkgpostgres.HealthCheck(ctx, pool) },
		"redis":    productCache.Ping,
	}, metricsHandler, logger).RegisterRoutes(mux)
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start everything.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := grpcServer.Serve(cfg.GRPCAddr()); err != nil {
			return fmt.Errorf("gRPC server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		logger.Info("HTTP server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server: %w", err)
		}
		return nil
	})
	if cfg.Kafka.AutoRecommend {
		consumer, err := pkgkafka.NewConsumer(cfg.KafkaConfig(), event.TypeApplicationSubmitted,
			advisorkafka.NewApplicationSubmittedHandler(generateUC, logger).Handle, logger,
			pkgkafka.WithRetry(cfg.Kafka.HandlerAttempts, cfg.Kafka.HandlerBackoff))
		if err != nil {
			return fmt.Errorf("create kafka consumer: %w", err)
		}
		defer func() { _ = consumer.Close() }()
		g.Go(func() error { return consumer.Start(gctx) })
	}
	jobs.Start()

	// Wait for a signal or the first component failure, then drain.
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		grpcServer.GracefulStop()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", "error", err)
		}
		jobs.Stop(shutdownCtx)
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("mortgage-advisor stopped")
	return nil
}
