package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Adarsh-S-Nair/finance-next-sub000/internal/clients/coinbase"
	"github.com/Adarsh-S-Nair/finance-next-sub000/internal/clients/eodhd"
	"github.com/Adarsh-S-Nair/finance-next-sub000/internal/common"
	"github.com/Adarsh-S-Nair/finance-next-sub000/internal/interfaces"
	"github.com/Adarsh-S-Nair/finance-next-sub000/internal/services/market"
	"github.com/Adarsh-S-Nair/finance-next-sub000/internal/services/quote"
	"github.com/Adarsh-S-Nair/finance-next-sub000/internal/services/valuation"
	"github.com/Adarsh-S-Nair/finance-next-sub000/internal/storage"
)

// App holds all initialized services, clients and storage.
// It is the shared core used by both cmd/finance-server and cmd/finance-cli.
type App struct {
	Config           *common.Config
	Logger           *common.Logger
	Storage          interfaces.StorageManager
	EODHDClient      interfaces.EODHDClient
	CandleClient     interfaces.CandleClient
	MarketService    *market.Service
	QuoteService     interfaces.QuoteService
	ValuationService interfaces.ValuationService
	StartupTime      time.Time

	schedulerCancel context.CancelFunc
	schedulerDone   chan struct{}
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// ResolveConfigPath picks the config file: explicit path, FINANCE_CONFIG,
// finance.toml beside the binary, then config/finance.toml.
func ResolveConfigPath(configPath string) string {
	if configPath == "" {
		configPath = os.Getenv("FINANCE_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(getBinaryDir(), "finance.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/finance.toml" // fallback for development
		}
	}
	return configPath
}

// NewApp loads configuration and initializes everything.
// configPath may be empty, in which case ResolveConfigPath decides.
func NewApp(configPath string) (*App, error) {
	config, err := common.LoadConfig(ResolveConfigPath(configPath))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := common.NewLoggerFromConfig(config.Logging)
	return NewAppWithConfig(config, logger)
}

// NewAppWithConfig initializes storage, clients and services from a loaded config.
func NewAppWithConfig(config *common.Config, logger *common.Logger) (*App, error) {
	startupStart := time.Now()

	storageManager, err := storage.NewStorageManager(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	if config.Clients.EODHD.APIKey == "" {
		logger.Warn().Msg("EODHD API key not configured - stock prices will fall back to cost basis")
	}

	eodhdClient := eodhd.NewClient(config.Clients.EODHD.APIKey,
		eodhd.WithBaseURL(config.Clients.EODHD.BaseURL),
		eodhd.WithLogger(logger),
		eodhd.WithRateLimit(config.Clients.EODHD.RateLimit),
		eodhd.WithTimeout(config.Clients.EODHD.GetTimeout()),
	)

	coinbaseClient := coinbase.NewClient(
		coinbase.WithBaseURL(config.Clients.Coinbase.BaseURL),
		coinbase.WithLogger(logger),
		coinbase.WithRateLimit(config.Clients.Coinbase.RateLimit),
		coinbase.WithTimeout(config.Clients.Coinbase.GetTimeout()),
		coinbase.WithQuoteCurrency(config.Clients.Coinbase.QuoteCurrency),
	)

	marketService := market.NewService(eodhdClient, coinbaseClient, logger)
	marketService.SetConcurrency(config.Valuation.MaxConcurrency)

	quoteService := quote.NewService(eodhdClient, logger,
		quote.WithTTL(config.Valuation.GetQuoteCacheTTL()),
		quote.WithCacheSize(config.Valuation.QuoteCacheSize),
		quote.WithConcurrency(config.Valuation.MaxConcurrency),
	)

	valuationService := valuation.NewService(
		storageManager,
		marketService,
		marketService,
		quoteService,
		marketService,
		logger,
		valuation.OptionsFromConfig(config.Valuation),
	)

	a := &App{
		Config:           config,
		Logger:           logger,
		Storage:          storageManager,
		EODHDClient:      eodhdClient,
		CandleClient:     coinbaseClient,
		MarketService:    marketService,
		QuoteService:     quoteService,
		ValuationService: valuationService,
		StartupTime:      startupStart,
	}

	logger.Info().
		Str("storage", storageManager.Backend()).
		Dur("startup", time.Since(startupStart)).
		Msg("App initialized")

	return a, nil
}

// Close releases all resources held by the App.
// Shutdown order: stop scheduler, close storage.
func (a *App) Close() {
	if a.schedulerCancel != nil {
		a.schedulerCancel()
		<-a.schedulerDone
		a.schedulerCancel = nil
	}
	if a.Storage != nil {
		a.Storage.Close()
		a.Storage = nil
	}
}

// StartSnapshotScheduler launches the daily snapshot recorder if enabled.
func (a *App) StartSnapshotScheduler() {
	if !a.Config.Snapshots.Enabled {
		a.Logger.Info().Msg("Snapshot scheduler: disabled")
		return
	}
	schedulerCtx, schedulerCancel := context.WithCancel(context.Background())
	a.schedulerCancel = schedulerCancel
	a.schedulerDone = make(chan struct{})

	sched := &snapshotScheduler{
		valuation: a.ValuationService,
		storage:   a.Storage,
		logger:    a.Logger,
		interval:  a.Config.Snapshots.GetInterval(),
		hour:      a.Config.Snapshots.Hour,
		now:       time.Now,
	}
	go func() {
		defer close(a.schedulerDone)
		sched.run(schedulerCtx)
	}()
}

// RecordSnapshots appends today's snapshot for every portfolio now.
func (a *App) RecordSnapshots(ctx context.Context) (recorded, skipped, failed int) {
	return recordSnapshots(ctx, a.ValuationService, a.Storage, a.Logger)
}
