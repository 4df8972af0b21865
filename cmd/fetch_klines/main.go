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
	"cryptoTA/internal/adapters/binanceclient"
	"cryptoTA/internal/adapters/csvfile"
	"cryptoTA/internal/adapters/logger"
	"cryptoTA/internal/adapters/sqlite"
	"cryptoTA/internal/app"
)

func main() {
	configPath := flag.String("config", "", "optional YAML config file")
	writeCSV := flag.Bool("csv", false, "also export every series to the CSV directory")
	flag.Parse()

	// 1. Load Configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err) // Use standard log before logger is ready
	}

	// 2. Initialize Logger
	appLogger := logger.NewStdLogger(cfg.LogLevel())
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// 3. Initialize Repository
	if err := os.MkdirAll(filepath.Dir(cfg.Storage.DBPath), 0o755); err != nil {
		log.Fatalf("FATAL: Failed to create database directory: %v", err)
	}
	repo, err := sqlite.NewRepository(sqlite.Config{DBPath: cfg.Storage.DBPath, Logger: appLogger})
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize database repository: %v", err)
	}
	defer func() {
		if err := repo.Close(); err != nil {
			appLogger.Error(ctx, err, "Error closing database repository")
		}
	}()

	// 4. Initialize Exchange Client
	binanceClient, err := binanceclient.New(binanceclient.Config{
		APIKey:            cfg.Binance.APIKey,
		SecretKey:         cfg.Binance.SecretKey,
		UseTestnet:        cfg.Binance.Testnet,
		RequestsPerSecond: cfg.Binance.RequestsPerSecond,
		Logger:            appLogger,
	})
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize Binance client: %v", err)
	}

	service, err := app.NewAnalysisService(appLogger, binanceClient, repo, repo)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize analysis service: %v", err)
	}

	// 5. Fetch and store
	series, err := service.Sync(ctx, cfg.Market.Symbols, cfg.Market.Interval, cfg.Market.Lookback)
	if err != nil {
		appLogger.Error(ctx, err, "Sync failed")
		os.Exit(1)
	}

	if !*writeCSV {
		return
	}
	if err := os.MkdirAll(cfg.Storage.CSVDir, 0o755); err != nil {
		log.Fatalf("FATAL: Failed to create CSV directory: %v", err)
	}
	for i, s := range series {
		filename := filepath.Join(cfg.Storage.CSVDir, fmt.Sprintf("%s_%s.csv", cfg.Market.Symbols[i], cfg.Market.Interval))
		if err := csvfile.WriteFile(filename, s, csvfile.DefaultFormat(s.Name())); err != nil {
			appLogger.Error(ctx, err, "Error writing CSV", map[string]interface{}{"filename": filename})
			os.Exit(1)
		}
		appLogger.Info(ctx, "Saved to", map[string]interface{}{"filename": filename})
	}
}
