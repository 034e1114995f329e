// Command apiserver runs the verification REST API with its full
// infrastructure stack.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	appverification "github.com/veriflowhq/veriflow/internal/application/verification"
	"github.com/veriflowhq/veriflow/internal/config"
	"github.com/veriflowhq/veriflow/internal/domain/risk"
	"github.com/veriflowhq/veriflow/internal/infrastructure/database/neo4j"
	"github.com/veriflowhq/veriflow/internal/infrastructure/database/postgres"
	"github.com/veriflowhq/veriflow/internal/infrastructure/database/postgres/repositories"
	"github.com/veriflowhq/veriflow/internal/infrastructure/database/redis"
	"github.com/veriflowhq/veriflow/internal/infrastructure/messaging/kafka"
	"github.com/veriflowhq/veriflow/internal/infrastructure/monitoring/logging"
	"github.com/veriflowhq/veriflow/internal/infrastructure/monitoring/prometheus"
	"github.com/veriflowhq/veriflow/internal/infrastructure/providers"
	"github.com/veriflowhq/veriflow/internal/infrastructure/search/opensearch"
	"github.com/veriflowhq/veriflow/internal/infrastructure/storage/minio"
	httpiface "github.com/veriflowhq/veriflow/internal/interfaces/http"
	"github.com/veriflowhq/veriflow/internal/interfaces/http/handlers"
	"github.com/veriflowhq/veriflow/internal/interfaces/http/middleware"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file; env-only when empty")
	flag.Parse()

	var (
		cfg *config.Config
		err error
	)
	if *configPath != "" {
		cfg, err = config.Load(*configPath)
	} else {
		cfg, err = config.LoadFromEnv()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logging.MustNew(logging.Config{
		Level:        cfg.Log.Level,
		Format:       cfg.Log.Format,
		EnableCaller: cfg.Log.EnableCaller,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal("apiserver failed", logging.Err(err))
	}
}

func run(ctx context.Context, cfg *config.Config, log logging.Logger) error {
	// Postgres is the record of truth; refuse to start without it.
	db, err := postgres.NewConnection(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := postgres.NewMigrator(cfg.MigrationsPath, cfg.Database, log).Up(); err != nil {
		return err
	}
	repo := repositories.NewVerificationRepository(db.Pool(), log)

	redisClient, err := redis.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	provider := buildProvider(cfg, redisClient, log)
	engine := risk.NewEngine(cfg.Risk.Tables())

	// The side channels are best-effort: a missing broker or cluster
	// degrades audit/search/graph/evidence, never verification itself.
	var orchestratorOpts []appverification.Option

	if producer, err := kafka.NewProducer(cfg.Kafka, log); err != nil {
		log.Warn("audit stream disabled", logging.Err(err))
	} else {
		defer producer.Close()
		orchestratorOpts = append(orchestratorOpts,
			appverification.WithAuditPublisher(kafka.NewAuditPublisher(producer)))
	}

	graphDriver, err := neo4j.NewDriver(ctx, cfg.Neo4j, log)
	if err != nil {
		log.Warn("ownership graph disabled", logging.Err(err))
	} else {
		defer graphDriver.Close(context.Background())
		orchestratorOpts = append(orchestratorOpts,
			appverification.WithGraphWriter(neo4j.NewOwnershipGraph(graphDriver, log)))
	}

	if store, err := minio.NewClient(ctx, cfg.MinIO, log); err != nil {
		log.Warn("evidence archive disabled", logging.Err(err))
	} else {
		orchestratorOpts = append(orchestratorOpts,
			appverification.WithEvidenceArchiver(minio.NewEvidenceArchive(store, log)))
	}

	var searchHandler *handlers.SearchHandler
	if search, err := opensearch.NewClient(ctx, cfg.OpenSearch, log); err != nil {
		log.Warn("verdict search disabled", logging.Err(err))
	} else {
		orchestratorOpts = append(orchestratorOpts,
			appverification.WithVerdictIndexer(opensearch.NewVerdictIndexer(search, log)))
		searchHandler = handlers.NewSearchHandler(opensearch.NewVerdictSearcher(search, log))
	}

	orchestrator := appverification.NewOrchestrator(provider, repo, engine, log, orchestratorOpts...)

	metrics := prometheus.New()
	limiter := redis.NewLimiter(redisClient, log, int64(cfg.Auth.RateLimit), cfg.Auth.RateWindow)

	router := httpiface.NewRouter(httpiface.RouterConfig{
		Mode:                cfg.Server.Mode,
		VerificationHandler: handlers.NewVerificationHandler(orchestrator, log),
		HealthHandler: handlers.NewHealthHandler(map[string]handlers.Pinger{
			"postgres": db,
			"redis":    redisClient,
		}, log),
		SearchHandler:   searchHandler,
		Auth:            middleware.NewAuthMiddleware(cfg.Auth.APIKeys, cfg.Auth.DisableAuth, log),
		Logging:         middleware.NewLoggingMiddleware(log),
		RateLimit:       middleware.NewRateLimitMiddleware(limiter, log),
		Metrics:         middleware.NewMetricsMiddleware(metrics),
		MetricsRegistry: metrics,
	})

	server := httpiface.NewServer(httpiface.ServerConfig{
		Port:            cfg.Server.Port,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, router, log)

	serverErr := make(chan error, 1)
	go func() { serverErr <- server.Start() }()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		log.Info("shutdown signal received")
		return server.Shutdown(context.Background())
	}
}

func buildProvider(cfg *config.Config, redisClient *redis.Client, log logging.Logger) providers.Provider {
	var provider providers.Provider
	switch cfg.Provider.Name {
	case "verifyme":
		provider = providers.NewVerifyMeProvider(providers.VerifyMeConfig{
			BaseURL: cfg.Provider.BaseURL,
			Secret:  cfg.Provider.Secret,
			Timeout: cfg.Provider.Timeout,
		}, log)
	default:
		provider = providers.NewMockProvider(log)
	}

	cache := redis.NewCache(redisClient, log, redis.WithPrefix("veriflow:provider:"))
	return providers.NewCachedProvider(provider, cache, cfg.Provider.CacheTTL, log)
}
