package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"cryptoTA/config"
	"cryptoTA/internal/adapters/csvfile"
	"cryptoTA/internal/adapters/logger"
	"cryptoTA/internal/adapters/report"
	"cryptoTA/internal/adapters/sqlite"
	"cryptoTA/internal/app"
	"cryptoTA/internal/domain"
	"cryptoTA/internal/num"
	"cryptoTA/internal/ports"
	"cryptoTA/internal/strategy/backtesting"
	"cryptoTA/internal/strategy/indicators"
	"cryptoTA/internal/strategy/optimization"
	"cryptoTA/internal/strategy/strategies"
)

func main() {
	configPath := flag.String("config", "", "optional YAML config file")
	fromCSV := flag.Bool("csv", false, "read series from the CSV directory instead of the database")
	strategyName := flag.String("strategy", "sar", "strategy to backtest: sar|ma")
	tail := flag.Int("tail", 20, "SAR rows to print per symbol (0 = all)")
	trades := flag.Bool("trades", false, "list every trade")
	optimize := flag.Bool("optimize", false, "grid search the SAR accelerations")
	top := flag.Int("top", 10, "optimization results to print")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}
	appLogger := logger.NewStdLogger(cfg.LogLevel())
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, appLogger, options{
		fromCSV:  *fromCSV,
		strategy: *strategyName,
		tail:     *tail,
		trades:   *trades,
		optimize: *optimize,
		top:      *top,
	}); err != nil {
		appLogger.Error(ctx, err, "Report failed")
		os.Exit(1)
	}
}

type options struct {
	fromCSV  bool
	strategy string
	tail     int
	trades   bool
	optimize bool
	top      int
}

func run(ctx context.Context, cfg *config.Config, appLogger ports.Logger, opts options) error {
	sarConfig, err := cfg.ParabolicSAR()
	if err != nil {
		return err
	}
	btConfig := backtesting.BacktestConfig{
		Amount:       cfg.OrderAmount(),
		StartingType: domain.Buy,
		Logger:       appLogger,
	}
	if cfg.Backtest.Short {
		btConfig.StartingType = domain.Sell
	}

	var factory strategies.Factory
	switch opts.strategy {
	case "sar":
		factory = strategies.SARReversalFactory(sarConfig, appLogger)
	case "ma":
		factory = strategies.MACrossoverFactory(strategies.DefaultMACrossoverConfig(), appLogger)
	default:
		return fmt.Errorf("unknown strategy %q: %w", opts.strategy, ports.ErrConfigurationError)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Storage.DBPath), 0o755); err != nil {
		return err
	}
	repo, err := sqlite.NewRepository(sqlite.Config{DBPath: cfg.Storage.DBPath, Logger: appLogger})
	if err != nil {
		return err
	}
	defer func() {
		if err := repo.Close(); err != nil {
			appLogger.Error(ctx, err, "Error closing database repository")
		}
	}()

	service, err := app.NewAnalysisService(appLogger, nil, repo, repo)
	if err != nil {
		return err
	}

	var (
		symbols []string
		series  []*domain.TimeSeries
	)
	if opts.fromCSV {
		symbols, series, err = loadCSV(cfg)
	} else {
		symbols, series, err = service.LoadSeries(ctx, cfg.Market.Symbols, cfg.Market.Interval)
	}
	if err != nil {
		return err
	}

	console := report.NewConsole(os.Stdout)
	for i, s := range series {
		sar, err := indicators.NewParabolicSAR(s, sarConfig)
		if err != nil {
			return err
		}
		if err := console.PrintSAR(symbols[i], sar, opts.tail); err != nil {
			return err
		}
	}

	rep, err := service.Backtest(ctx, symbols, series, factory, btConfig)
	if err != nil {
		return err
	}
	fmt.Println()
	if err := console.PrintReport(rep); err != nil {
		return err
	}
	if opts.trades {
		if err := console.PrintTrades(rep); err != nil {
			return err
		}
	}

	if !opts.optimize {
		return nil
	}
	btConfig.Logger = nil // quiet per-backtest logs
	optimizer, err := optimization.NewOptimizer(optimization.OptimizerConfig{
		ParameterRanges: []optimization.ParameterRange{
			{Name: optimization.ParamInitial, Min: num.MustParse("0.01"), Max: num.MustParse("0.04"), Step: num.MustParse("0.01")},
			{Name: optimization.ParamStep, Min: num.MustParse("0.01"), Max: num.MustParse("0.04"), Step: num.MustParse("0.01")},
			{Name: optimization.ParamMax, Min: num.MustParse("0.1"), Max: num.MustParse("0.4"), Step: num.MustParse("0.1")},
		},
		Backtest: btConfig,
		Build:    optimization.SARReversalBuilder(nil),
		Logger:   appLogger,
	})
	if err != nil {
		return err
	}
	results, err := optimizer.Optimize(ctx, series)
	if err != nil {
		return err
	}
	fmt.Println()
	return console.PrintOptimization(results, opts.top)
}

func loadCSV(cfg *config.Config) ([]string, []*domain.TimeSeries, error) {
	symbols := make([]string, 0, len(cfg.Market.Symbols))
	series := make([]*domain.TimeSeries, 0, len(cfg.Market.Symbols))
	for _, symbol := range cfg.Market.Symbols {
		name := fmt.Sprintf("%s_%s", symbol, cfg.Market.Interval)
		s, err := csvfile.ReadFile(filepath.Join(cfg.Storage.CSVDir, name+".csv"), csvfile.DefaultFormat(name))
		if err != nil {
			return nil, nil, err
		}
		symbols = append(symbols, symbol)
		series = append(series, s)
	}
	return symbols, series, nil
}
