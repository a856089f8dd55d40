package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/nordicgem/diamond-indexer/internal/adapter"
	"github.com/nordicgem/diamond-indexer/internal/api/middleware"
	"github.com/nordicgem/diamond-indexer/internal/api/server"
	"github.com/nordicgem/diamond-indexer/internal/config"
	"github.com/nordicgem/diamond-indexer/internal/currency"
	"github.com/nordicgem/diamond-indexer/internal/feed"
	"github.com/nordicgem/diamond-indexer/internal/importer"
	"github.com/nordicgem/diamond-indexer/internal/logger"
	"github.com/nordicgem/diamond-indexer/internal/pricing"
	"github.com/nordicgem/diamond-indexer/internal/store"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadAPIConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:     cfg.Debug,
		SentryDSN: cfg.SentryDSN,
		Tags: map[string]string{
			"service": "api-server",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.Info("Starting diamond indexer API")

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}

	// Configure connection pool
	if err := store.ConfigureConnectionPool(db, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime, cfg.Database.ConnMaxIdleTime); err != nil {
		logger.Fatal("Failed to configure connection pool", zap.Error(err))
	}
	logger.Info("Connected to database",
		zap.Int("max_open_conns", cfg.Database.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.Database.MaxIdleConns),
	)

	// Initialize store and adapters
	dataStore := store.NewPGStore(db)
	clock := adapter.NewClock()
	fs := adapter.NewFileSystem()

	// Wire the refresh pipeline behind the trigger endpoint
	feedClient := feed.NewClient(
		adapter.NewHTTPClient(cfg.Feed.HTTPTimeout),
		fs,
		cfg.Feed.BaseURL,
		cfg.Feed.APIKey,
		cfg.Feed.APISecret,
	)
	rateProvider := currency.NewOpenExchangeRatesProvider(
		adapter.NewHTTPClient(cfg.ExchangeRate.HTTPTimeout),
		cfg.ExchangeRate.BaseURL,
		cfg.ExchangeRate.AppID,
	)
	converter := currency.NewConverter(
		dataStore,
		rateProvider,
		clock,
		cfg.ExchangeRate.FromCurrency,
		cfg.ExchangeRate.ToCurrency,
		cfg.ExchangeRate.CacheTTL,
	)
	calculator := pricing.NewCalculator(dataStore, clock, cfg.Import.MarkupCacheTTL)

	writer := importer.NewWriter(dataStore, clock, cfg.Import.BatchSize, cfg.Import.BatchDelay)
	refresher := importer.NewService(
		dataStore,
		feedClient,
		feed.NewParser(cfg.Import.ChunkSize),
		converter,
		calculator,
		writer,
		clock,
		importer.Options{PoolSize: cfg.Import.PoolSize},
	)
	defer refresher.Stop()

	// Create server config
	serverConfig := server.Config{
		Debug:        cfg.Debug,
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
		Auth: middleware.AuthConfig{
			JWTPublicKey: cfg.Auth.JWTPublicKey,
			APIKeys:      cfg.Auth.APIKeys,
		},
	}

	// Create and start server
	srv := server.New(serverConfig, dataStore, refresher, calculator)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			errCh <- err
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.Info("Received shutdown signal", zap.String("signal", sig.String()))
	case err := <-errCh:
		logger.Error(err, zap.String("component", "server"))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("API server stopped")
}
