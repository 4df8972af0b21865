package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"cryptoTA/internal/adapters/logger"
	"cryptoTA/internal/ports"
	"cryptoTA/internal/strategy/indicators"
)

// Config holds all application configuration.
type Config struct {
	Binance  BinanceConfig  `yaml:"binance"`
	Market   MarketConfig   `yaml:"market"`
	Storage  StorageConfig  `yaml:"storage"`
	SAR      SARConfig      `yaml:"sar"`
	Backtest BacktestConfig `yaml:"backtest"`
	Log      LogConfig      `yaml:"log"`
}

// BinanceConfig configures the kline loader.
type BinanceConfig struct {
	APIKey            string  `yaml:"api_key"`
	SecretKey         string  `yaml:"secret_key"`
	Testnet           bool    `yaml:"testnet"`
	RequestsPerSecond float64 `yaml:"requests_per_second" validate:"gt=0"`
}

// MarketConfig selects the series to load.
type MarketConfig struct {
	Symbols  []string      `yaml:"symbols" validate:"min=1,dive,required"`
	Interval string        `yaml:"interval" validate:"required,oneof=1m 3m 5m 15m 30m 1h 2h 4h 6h 8h 12h 1d 3d 1w 1M"`
	Lookback time.Duration `yaml:"lookback" validate:"gt=0"` // How far back to fetch, e.g. 720h
}

// StorageConfig controls where series are kept.
type StorageConfig struct {
	DBPath string `yaml:"db_path" validate:"required"`
	CSVDir string `yaml:"csv_dir"`
}

// SARConfig holds Parabolic SAR parameters. Decimals are strings so that
// "0.02" stays exactly 0.02.
type SARConfig struct {
	Window              int    `yaml:"window"`
	InitialAcceleration string `yaml:"initial_acceleration"`
	AccelerationStep    string `yaml:"acceleration_step"`
	MaxAcceleration     string `yaml:"max_acceleration"`
}

// BacktestConfig configures strategy replays.
type BacktestConfig struct {
	OrderAmount string `yaml:"order_amount"`
	Short       bool   `yaml:"short"` // Start trades with SELL instead of BUY
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `yaml:"level" validate:"oneof=debug info warn warning error"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	sar := indicators.DefaultParabolicSARConfig()
	return &Config{
		Binance: BinanceConfig{RequestsPerSecond: 5},
		Market: MarketConfig{
			Symbols:  []string{"BTCUSDT"},
			Interval: "1h",
			Lookback: 30 * 24 * time.Hour,
		},
		Storage: StorageConfig{
			DBPath: "./data/cryptota.db",
			CSVDir: "./data/csv",
		},
		SAR: SARConfig{
			Window:              sar.Window,
			InitialAcceleration: sar.InitialAcceleration.String(),
			AccelerationStep:    sar.AccelerationStep.String(),
			MaxAcceleration:     sar.MaxAcceleration.String(),
		},
		Backtest: BacktestConfig{OrderAmount: "1"},
		Log:      LogConfig{Level: "info"},
	}
}

// LoadConfig builds the configuration from defaults, the optional YAML file
// at path, a .env file if present, and environment variables, in increasing
// order of precedence. All validation problems are reported together.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %q: %w: %w", path, ports.ErrConfigurationError, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse YAML: %w: %w", ports.ErrConfigurationError, err)
		}
	}

	// Load .env file, but don't fail if it doesn't exist (allow pure env vars)
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w: %w", ports.ErrConfigurationError, err)
	}

	var errs []string
	applyEnvOverrides(cfg, &errs)
	cfg.validate(&errs)

	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %s: %w", strings.Join(errs, "; "), ports.ErrConfigurationError)
	}
	return cfg, nil
}

// applyEnvOverrides lets environment variables win over file values. A
// malformed value is recorded in errs.
func applyEnvOverrides(cfg *Config, errs *[]string) {
	setString("BINANCE_API_KEY", &cfg.Binance.APIKey)
	setString("BINANCE_API_SECRET", &cfg.Binance.SecretKey)
	setBool("IS_TESTNET", &cfg.Binance.Testnet, errs)
	setFloat("REQUESTS_PER_SECOND", &cfg.Binance.RequestsPerSecond, errs)

	if v := os.Getenv("SYMBOLS"); v != "" {
		cfg.Market.Symbols = splitList(v)
	}
	setString("INTERVAL", &cfg.Market.Interval)
	if v := os.Getenv("LOOKBACK"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			*errs = append(*errs, fmt.Sprintf("invalid LOOKBACK: %v", err))
		} else {
			cfg.Market.Lookback = d
		}
	}

	setString("DB_PATH", &cfg.Storage.DBPath)
	setString("CSV_DIR", &cfg.Storage.CSVDir)

	if v := os.Getenv("SAR_WINDOW"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			*errs = append(*errs, fmt.Sprintf("invalid SAR_WINDOW: %v", err))
		} else {
			cfg.SAR.Window = n
		}
	}
	setString("SAR_INITIAL_ACCELERATION", &cfg.SAR.InitialAcceleration)
	setString("SAR_ACCELERATION_STEP", &cfg.SAR.AccelerationStep)
	setString("SAR_MAX_ACCELERATION", &cfg.SAR.MaxAcceleration)

	setString("ORDER_AMOUNT", &cfg.Backtest.OrderAmount)
	setBool("BACKTEST_SHORT", &cfg.Backtest.Short, errs)
	setString("LOG_LEVEL", &cfg.Log.Level)
}

var structValidator = validator.New(validator.WithRequiredStructEnabled())

func (c *Config) validate(errs *[]string) {
	c.Log.Level = strings.ToLower(c.Log.Level)
	if err := structValidator.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			*errs = append(*errs, err.Error())
		}
		for _, fe := range fieldErrs {
			rule := fe.Tag()
			if fe.Param() != "" {
				rule += "=" + fe.Param()
			}
			*errs = append(*errs, fmt.Sprintf("%s=%v violates %q", fe.Namespace(), fe.Value(), rule))
		}
	}
	if _, err := c.ParabolicSAR(); err != nil {
		*errs = append(*errs, err.Error())
	}
	if amount, err := decimal.NewFromString(c.Backtest.OrderAmount); err != nil {
		*errs = append(*errs, fmt.Sprintf("invalid ORDER_AMOUNT: %v", err))
	} else if !amount.IsPositive() {
		*errs = append(*errs, "ORDER_AMOUNT must be positive")
	}
}

// ParabolicSAR returns the indicator configuration.
func (c *Config) ParabolicSAR() (indicators.ParabolicSARConfig, error) {
	out := indicators.ParabolicSARConfig{Window: c.SAR.Window}
	fields := []struct {
		name string
		src  string
		dst  *decimal.Decimal
	}{
		{"SAR_INITIAL_ACCELERATION", c.SAR.InitialAcceleration, &out.InitialAcceleration},
		{"SAR_ACCELERATION_STEP", c.SAR.AccelerationStep, &out.AccelerationStep},
		{"SAR_MAX_ACCELERATION", c.SAR.MaxAcceleration, &out.MaxAcceleration},
	}
	for _, f := range fields {
		v, err := decimal.NewFromString(f.src)
		if err != nil {
			return out, fmt.Errorf("invalid %s %q: %w", f.name, f.src, ports.ErrConfigurationError)
		}
		*f.dst = v
	}
	return out, out.Validate()
}

// OrderAmount returns the parsed order amount. It is valid once LoadConfig succeeded.
func (c *Config) OrderAmount() decimal.Decimal {
	return decimal.RequireFromString(c.Backtest.OrderAmount)
}

// LogLevel returns the parsed log level.
func (c *Config) LogLevel() logger.LogLevel {
	return logger.ParseLevel(c.Log.Level)
}

// --- Env Var Helpers ---

func setString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setBool(key string, dst *bool, errs *[]string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("invalid %s: %v", key, err))
		return
	}
	*dst = b
}

func setFloat(key string, dst *float64, errs *[]string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("invalid %s: %v", key, err))
		return
	}
	*dst = f
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, strings.ToUpper(s))
		}
	}
	return out
}
