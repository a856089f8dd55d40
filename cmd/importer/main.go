// The importer runs catalog refreshes from the command line, for cron jobs
// and one-off operational reloads. It refreshes one feed type or both
// sequentially, optionally seeding the default markup ladder first, then
// exits non-zero if any refresh failed.
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
	"github.com/nordicgem/diamond-indexer/internal/config"
	"github.com/nordicgem/diamond-indexer/internal/currency"
	"github.com/nordicgem/diamond-indexer/internal/domain"
	"github.com/nordicgem/diamond-indexer/internal/feed"
	"github.com/nordicgem/diamond-indexer/internal/importer"
	"github.com/nordicgem/diamond-indexer/internal/logger"
	"github.com/nordicgem/diamond-indexer/internal/pricing"
	"github.com/nordicgem/diamond-indexer/internal/store"
)

var (
	configFile   = flag.String("config", "", "Path to configuration file")
	envPath      = flag.String("env", "config/", "Path to environment files")
	feedTypeFlag = flag.String("type", "all", "Feed type to refresh: natural, lab, or all")
	seedDefaults = flag.Bool("seed-defaults", false, "Seed the default markup ladder for types without one before refreshing")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadImporterConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:     cfg.Debug,
		SentryDSN: cfg.SentryDSN,
		Tags: map[string]string{
			"service": "importer",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)

	// Cancel in-flight work on SIGINT/SIGTERM
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := store.ConfigureConnectionPool(db, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime, cfg.Database.ConnMaxIdleTime); err != nil {
		logger.Fatal("Failed to configure connection pool", zap.Error(err))
	}

	dataStore := store.NewPGStore(db)
	clock := adapter.NewClock()

	if *seedDefaults {
		if err := pricing.SeedDefaultIntervals(ctx, dataStore); err != nil {
			logger.Fatal("Failed to seed markup intervals", zap.Error(err))
		}
		logger.Info("Seeded default markup intervals")
	}

	feedClient := feed.NewClient(
		adapter.NewHTTPClient(cfg.Feed.HTTPTimeout),
		adapter.NewFileSystem(),
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
	service := importer.NewService(
		dataStore,
		feedClient,
		feed.NewParser(cfg.Import.ChunkSize),
		converter,
		calculator,
		writer,
		clock,
		importer.Options{
			PoolSize:  cfg.Import.PoolSize,
			TypePause: cfg.Import.TypePause,
		},
	)
	defer service.Stop()

	var results []domain.RefreshResult
	switch *feedTypeFlag {
	case "all":
		results = service.RefreshAll(ctx)
	case string(domain.FeedTypeNatural), string(domain.FeedTypeLab):
		result, err := service.Refresh(ctx, domain.FeedType(*feedTypeFlag))
		if err != nil {
			logger.Error(err, zap.String("type", *feedTypeFlag))
		}
		results = append(results, result)
	default:
		logger.Fatal("Unknown feed type", zap.String("type", *feedTypeFlag))
	}

	failed := false
	for _, result := range results {
		logger.Info("refresh result",
			zap.String("type", string(result.Type)),
			zap.Bool("success", result.Success),
			zap.Int("updated", result.UpdatedCount),
			zap.String("message", result.Message),
		)
		if !result.Success {
			failed = true
		}
	}

	if failed {
		logger.Flush(2 * time.Second)
		os.Exit(1)
	}
}
