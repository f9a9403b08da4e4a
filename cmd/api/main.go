package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/defidash/portfolio-engine/internal/application/services"
	"github.com/defidash/portfolio-engine/internal/config"
	"github.com/defidash/portfolio-engine/internal/infrastructure/cache"
	"github.com/defidash/portfolio-engine/internal/infrastructure/database"
	"github.com/defidash/portfolio-engine/internal/infrastructure/providers"
	"github.com/defidash/portfolio-engine/internal/presentation/handlers"
	"github.com/defidash/portfolio-engine/internal/presentation/middleware"
)

func main() {
	// Load .env when present, then configuration from the environment
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg.Log.Level)
	defer logger.Sync()

	logger.Info("Starting portfolio-engine API",
		zap.Int("port", cfg.API.Port),
	)

	// Connect to the wallet registry database
	db, err := database.NewPostgresDB(cfg.Database, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Connect to the snapshot cache (optional; the aggregator degrades
	// to always-recompute without it)
	var snapshotCache *cache.RedisSnapshotCache
	snapshotCache, err = cache.NewRedisSnapshotCache(cfg.Redis, logger)
	if err != nil {
		logger.Warn("Failed to connect to Redis, running without snapshot cache", zap.Error(err))
		snapshotCache = nil
	} else {
		defer snapshotCache.Close()
	}

	// Optional on-chain native balance reader
	var onchain *providers.OnchainReader
	if cfg.Providers.EthRPCURL != "" {
		onchain, err = providers.NewOnchainReader(cfg.Providers.EthRPCURL, logger)
		if err != nil {
			logger.Warn("Failed to dial Ethereum RPC, using indexed balances only", zap.Error(err))
			onchain = nil
		} else {
			defer onchain.Close()
		}
	}

	// Upstream clients
	balanceClient := providers.NewBalanceClient(cfg.Providers, onchain, logger)
	securityClient := providers.NewSecurityClient(cfg.Providers, logger)
	opportunityClient := providers.NewOpportunityClient(cfg.Providers, logger)
	taxClient := providers.NewTaxClient(cfg.Providers, logger)

	priceOracle := providers.NewCachingOracle(
		providers.NewHTTPPriceSource("primary", cfg.Providers.PricePrimaryURL, cfg.Providers, logger),
		providers.NewHTTPPriceSource("secondary", cfg.Providers.PriceSecondaryURL, cfg.Providers, logger),
		cfg.Providers.PriceCacheTTL,
		logger,
	)

	// Services
	walletRegistry := database.NewWalletRegistryRepo(db.DB())
	resolver := services.NewResolverService(walletRegistry, logger)
	valuer := services.NewValuationService(priceOracle, logger)

	var aggregatorCache services.SnapshotCache
	if snapshotCache != nil {
		aggregatorCache = snapshotCache
	}
	aggregator := services.NewAggregatorService(
		resolver,
		valuer,
		balanceClient,
		securityClient,
		opportunityClient,
		taxClient,
		aggregatorCache,
		cfg.Aggregator,
		logger,
	)

	// Handlers
	snapshotHandler := handlers.NewSnapshotHandler(aggregator, logger)

	var cacheChecker handlers.HealthChecker
	if snapshotCache != nil {
		cacheChecker = snapshotCache
	}
	healthHandler := handlers.NewHealthHandler(db, cacheChecker)

	// Router
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics())
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RateLimiter(cfg.API.RateLimitRPS))

	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)
	r.Get("/live", healthHandler.Live)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		snapshotHandler.RegisterRoutes(r)
	})

	addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.API.ReadTimeout,
		WriteTimeout: cfg.API.WriteTimeout,
	}

	go func() {
		logger.Info("API server starting", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server error", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("Received shutdown signal, shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.API.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", zap.Error(err))
	}

	logger.Info("Server stopped")
}

func setupLogger(level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      false,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, _ := config.Build()
	return logger
}
