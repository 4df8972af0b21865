package binanceclient

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/adshao/go-binance/v2/common"
	"github.com/adshao/go-binance/v2/futures"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"cryptoTA/internal/domain"
	"cryptoTA/internal/ports"
)

const (
	// Base URLs
	baseURLProduction = "https://fapi.binance.com"
	baseURLTestnet    = "https://testnet.binancefuture.com"

	// maxLimit is the largest page the klines endpoint serves.
	maxLimit = 1500
)

// klinePager fetches one page of klines. It is satisfied by the futures
// klines service and replaced in tests.
type klinePager func(ctx context.Context, symbol, interval string, startMs, endMs int64, limit int) ([]*futures.Kline, error)

// Client loads historical klines from Binance USD-M futures.
type Client struct {
	futuresClient *futures.Client
	fetchPage     klinePager
	limiter       *rate.Limiter
	logger        ports.Logger
}

// Config holds configuration specific to the Binance client adapter.
type Config struct {
	APIKey            string
	SecretKey         string
	UseTestnet        bool
	RequestsPerSecond float64 // Page requests per second (e.g., 5)
	Logger            ports.Logger
}

// New creates a new Binance client adapter.
func New(cfg Config) (*Client, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for Binance client: %w", ports.ErrConfigurationError)
	}
	if cfg.APIKey == "" || cfg.SecretKey == "" {
		// Klines are public; keys only raise the request weight limits.
		cfg.Logger.Warn(context.Background(), "APIKey or SecretKey is empty. Client will only work for public endpoints.")
	}

	client := futures.NewClient(cfg.APIKey, cfg.SecretKey)
	if cfg.UseTestnet {
		client.BaseURL = baseURLTestnet
	} else {
		client.BaseURL = baseURLProduction
	}
	cfg.Logger.Info(context.Background(), "Binance client configured", map[string]interface{}{"baseURL": client.BaseURL})

	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 5
	}

	c := &Client{
		futuresClient: client,
		limiter:       rate.NewLimiter(rate.Limit(rps), 1),
		logger:        cfg.Logger,
	}
	c.fetchPage = c.klinesPage
	return c, nil
}

func (c *Client) klinesPage(ctx context.Context, symbol, interval string, startMs, endMs int64, limit int) ([]*futures.Kline, error) {
	return c.futuresClient.NewKlinesService().
		Symbol(symbol).
		Interval(interval).
		StartTime(startMs).
		EndTime(endMs).
		Limit(limit).
		Do(ctx)
}

// handleError translates common Binance API errors into standardized ports errors.
func (c *Client) handleError(ctx context.Context, err error, operation string) error {
	if err == nil {
		return nil
	}

	fields := map[string]interface{}{"operation": operation, "originalError": err.Error()}

	var apiErr *common.APIError
	if errors.As(err, &apiErr) {
		fields["apiErrorCode"] = apiErr.Code
		fields["apiErrorMessage"] = apiErr.Message

		var mappedErr error
		switch apiErr.Code {
		case -1003: // Too many requests
			mappedErr = ports.ErrRateLimited
		case -1021: // Timestamp for this request is outside of the recvWindow
			mappedErr = ports.ErrTimeout
		case -1022, -2014, -2015: // Bad signature, malformed or rejected API key
			mappedErr = ports.ErrAuthenticationFailed
		case -1100, -1101, -1102, -1103, -1104, -1105, -1106, -1111, -1120, -1121, -1130: // Parameter/Request format errors
			mappedErr = ports.ErrInvalidRequest
		default:
			mappedErr = ports.ErrUnknown
		}
		c.logger.Error(ctx, err, fmt.Sprintf("%s failed with API error", operation), fields)
		return fmt.Errorf("%s failed: %w: %w", operation, mappedErr, err)
	}

	// Handle non-API errors (network, context cancellation, etc.)
	var finalErr error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrTimeout, err)
	case errors.Is(err, context.Canceled):
		// no log, the caller asked for it
		return fmt.Errorf("%s canceled: %w", operation, err)
	case strings.Contains(err.Error(), "connection refused"),
		strings.Contains(err.Error(), "connection reset by peer"),
		strings.Contains(err.Error(), "no such host"):
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrConnectionFailed, err)
	default:
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrUnknown, err)
	}

	c.logger.Error(ctx, err, fmt.Sprintf("%s failed", operation), fields)
	return finalErr
}

// FetchSeries loads every kline of symbol and interval opening in [start, end]
// and returns them as a series named "<symbol>-<interval>". Pages are paced by
// the client's rate limiter. Klines still open at the time of the request are
// dropped, since their close is not final.
func (c *Client) FetchSeries(ctx context.Context, symbol, interval string, start, end time.Time) (*domain.TimeSeries, error) {
	op := "FetchSeries"
	if !end.After(start) {
		return nil, fmt.Errorf("%s: end %s is not after start %s: %w", op, end, start, ports.ErrInvalidRequest)
	}

	var ticks []domain.Tick
	now := time.Now()
	from := start.UnixMilli()
	for page := 1; ; page++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, c.handleError(ctx, err, op)
		}
		klines, err := c.fetchPage(ctx, symbol, interval, from, end.UnixMilli(), maxLimit)
		if err != nil {
			return nil, c.handleError(ctx, err, op)
		}
		c.logger.Debug(ctx, "Fetched kline page", map[string]interface{}{
			"symbol": symbol,
			"page":   page,
			"klines": len(klines),
		})
		if len(klines) == 0 {
			break
		}
		for _, bk := range klines {
			tick, err := translateKline(bk)
			if err != nil {
				return nil, c.handleError(ctx, fmt.Errorf("failed to translate historical kline: %w", err), op)
			}
			if tick.EndTime.After(now) {
				continue
			}
			ticks = append(ticks, tick)
		}
		last := klines[len(klines)-1]
		from = last.CloseTime + 1
		if from > end.UnixMilli() || len(klines) < maxLimit {
			break
		}
	}

	series, err := domain.NewTimeSeries(symbol+"-"+interval, ticks)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	c.logger.Info(ctx, "Kline series loaded", map[string]interface{}{
		"symbol":   symbol,
		"interval": interval,
		"ticks":    series.TickCount(),
	})
	return series, nil
}

// translateKline maps a Binance kline to a tick ending at the kline close.
// Binance close times are the last millisecond of the period, so the tick
// ends one millisecond later.
func translateKline(bk *futures.Kline) (domain.Tick, error) {
	if bk == nil {
		return domain.Tick{}, errors.New("received nil historical kline")
	}
	values := make([]decimal.Decimal, 5)
	for i, raw := range []string{bk.Open, bk.High, bk.Low, bk.Close, bk.Volume} {
		v, err := decimal.NewFromString(raw)
		if err != nil {
			return domain.Tick{}, fmt.Errorf("parsing kline value '%s': %w", raw, err)
		}
		values[i] = v
	}
	end := time.UnixMilli(bk.CloseTime + 1).UTC()
	return domain.Tick{
		EndTime: end,
		Period:  end.Sub(time.UnixMilli(bk.OpenTime).UTC()),
		Open:    values[0],
		High:    values[1],
		Low:     values[2],
		Close:   values[3],
		Volume:  values[4],
	}, nil
}
