package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"cryptoTA/internal/domain"
	"cryptoTA/internal/ports"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Repository stores tick series and trading records in SQLite. Prices and
// amounts are kept as TEXT so decimals round-trip without loss.
type Repository struct {
	db     *sql.DB
	logger ports.Logger
}

// Config holds configuration for the SQLite repository.
type Config struct {
	DBPath string
	Logger ports.Logger
}

// NewRepository creates a new SQLite repository instance.
func NewRepository(cfg Config) (*Repository, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for SQLite repository: %w", ports.ErrConfigurationError)
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "./data/cryptota.db" // Default path
	}

	// Create data directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		err = fmt.Errorf("failed to create data directory '%s': %w", filepath.Dir(dbPath), err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		err = fmt.Errorf("failed to open database at '%s': %w: %w", dbPath, ports.ErrDBConnection, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		err = fmt.Errorf("failed to ping database at '%s': %w: %w", dbPath, ports.ErrDBConnection, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// One writer at a time; the driver serialises anyway.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	repo := &Repository{db: db, logger: cfg.Logger}
	if err := repo.initializeSchema(context.Background()); err != nil {
		db.Close()
		err = fmt.Errorf("failed to initialize database schema: %w", err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}
	cfg.Logger.Info(context.Background(), "SQLite database ready", map[string]interface{}{"path": dbPath})
	return repo, nil
}

// initializeSchema creates tables if they don't exist.
func (r *Repository) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS ticks (
		symbol TEXT NOT NULL,
		interval TEXT NOT NULL,
		end_time INTEGER NOT NULL, -- unix milliseconds
		period_ms INTEGER NOT NULL,
		open TEXT NOT NULL,
		high TEXT NOT NULL,
		low TEXT NOT NULL,
		close TEXT NOT NULL,
		volume TEXT NOT NULL,
		PRIMARY KEY (symbol, interval, end_time)
	);

	CREATE TABLE IF NOT EXISTS trading_records (
		id TEXT PRIMARY KEY,
		symbol TEXT NOT NULL,
		starting_type TEXT NOT NULL,
		saved_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS record_orders (
		record_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		tick_index INTEGER NOT NULL,
		type TEXT NOT NULL,
		price TEXT NOT NULL,
		amount TEXT NOT NULL,
		PRIMARY KEY (record_id, seq)
	);
	CREATE INDEX IF NOT EXISTS idx_trading_records_symbol ON trading_records (symbol);
	`
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to execute schema initialization: %w: %w", ports.ErrQueryFailed, err)
	}
	return nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	if r.db != nil {
		r.logger.Info(context.Background(), "Closing SQLite database connection")
		return r.db.Close()
	}
	return nil
}

// SaveSeries upserts every tick of series under symbol and interval.
func (r *Repository) SaveSeries(ctx context.Context, symbol, interval string, series *domain.TimeSeries) error {
	const query = `
	INSERT OR REPLACE INTO ticks (symbol, interval, end_time, period_ms, open, high, low, close, volume)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w: %w", ports.ErrQueryFailed, err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare tick insert: %w: %w", ports.ErrQueryFailed, err)
	}
	defer stmt.Close()

	for i := 0; i < series.TickCount(); i++ {
		t, err := series.Tick(i)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, symbol, interval, t.EndTime.UnixMilli(), t.Period.Milliseconds(),
			t.Open.String(), t.High.String(), t.Low.String(), t.Close.String(), t.Volume.String()); err != nil {
			return fmt.Errorf("failed to insert tick %d of %s: %w: %w", i, symbol, ports.ErrQueryFailed, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit ticks of %s: %w: %w", symbol, ports.ErrQueryFailed, err)
	}
	r.logger.Debug(ctx, "Series saved", map[string]interface{}{
		"symbol":   symbol,
		"interval": interval,
		"ticks":    series.TickCount(),
	})
	return nil
}

// LoadSeries reads the ticks stored for symbol and interval, oldest first.
// The series is named "<symbol>-<interval>". ErrNotFound is returned when
// nothing is stored.
func (r *Repository) LoadSeries(ctx context.Context, symbol, interval string) (*domain.TimeSeries, error) {
	const query = `
	SELECT end_time, period_ms, open, high, low, close, volume
	FROM ticks
	WHERE symbol = ? AND interval = ?
	ORDER BY end_time ASC`

	rows, err := r.db.QueryContext(ctx, query, symbol, interval)
	if err != nil {
		return nil, fmt.Errorf("failed to query ticks of %s %s: %w: %w", symbol, interval, ports.ErrQueryFailed, err)
	}
	defer rows.Close()

	var ticks []domain.Tick
	for rows.Next() {
		var endMs, periodMs int64
		var open, high, low, closeP, volume string
		if err := rows.Scan(&endMs, &periodMs, &open, &high, &low, &closeP, &volume); err != nil {
			return nil, fmt.Errorf("failed to scan tick: %w: %w", ports.ErrQueryFailed, err)
		}
		tick := domain.Tick{
			EndTime: time.UnixMilli(endMs).UTC(),
			Period:  time.Duration(periodMs) * time.Millisecond,
		}
		fields := []struct {
			dst *decimal.Decimal
			src string
		}{
			{&tick.Open, open}, {&tick.High, high}, {&tick.Low, low}, {&tick.Close, closeP}, {&tick.Volume, volume},
		}
		for _, f := range fields {
			if *f.dst, err = decimal.NewFromString(f.src); err != nil {
				return nil, fmt.Errorf("stored tick at %d of %s: %w: %w", endMs, symbol, ports.ErrMalformedSeries, err)
			}
		}
		ticks = append(ticks, tick)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tick rows: %w: %w", ports.ErrQueryFailed, err)
	}
	if len(ticks) == 0 {
		return nil, fmt.Errorf("no ticks stored for %s %s: %w", symbol, interval, ports.ErrNotFound)
	}
	return domain.NewTimeSeries(symbol+"-"+interval, ticks)
}

// SaveRecord stores the orders of record under its id, replacing any
// previous copy.
func (r *Repository) SaveRecord(ctx context.Context, symbol string, record *domain.TradingRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w: %w", ports.ErrQueryFailed, err)
	}
	defer tx.Rollback()

	id := record.ID().String()
	if _, err := tx.ExecContext(ctx, `DELETE FROM record_orders WHERE record_id = ?`, id); err != nil {
		return fmt.Errorf("failed to clear orders of record %s: %w: %w", id, ports.ErrQueryFailed, err)
	}
	if _, err := tx.ExecContext(ctx, `
	INSERT OR REPLACE INTO trading_records (id, symbol, starting_type, saved_at)
	VALUES (?, ?, ?, ?)`, id, symbol, string(record.StartingType()), time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to insert record %s: %w: %w", id, ports.ErrQueryFailed, err)
	}
	for seq, o := range record.Orders() {
		if _, err := tx.ExecContext(ctx, `
		INSERT INTO record_orders (record_id, seq, tick_index, type, price, amount)
		VALUES (?, ?, ?, ?, ?, ?)`, id, seq, o.Index, string(o.Type), o.Price.String(), o.Amount.String()); err != nil {
			return fmt.Errorf("failed to insert order %d of record %s: %w: %w", seq, id, ports.ErrQueryFailed, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit record %s: %w: %w", id, ports.ErrQueryFailed, err)
	}
	r.logger.Debug(ctx, "Trading record saved", map[string]interface{}{
		"recordID": id,
		"symbol":   symbol,
		"orders":   len(record.Orders()),
	})
	return nil
}

// LoadRecord rebuilds the trading record stored under id.
func (r *Repository) LoadRecord(ctx context.Context, id uuid.UUID) (*domain.TradingRecord, error) {
	var startingType string
	err := r.db.QueryRowContext(ctx, `SELECT starting_type FROM trading_records WHERE id = ?`, id.String()).Scan(&startingType)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("trading record %s: %w", id, ports.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query record %s: %w: %w", id, ports.ErrQueryFailed, err)
	}

	rows, err := r.db.QueryContext(ctx, `
	SELECT tick_index, type, price, amount
	FROM record_orders
	WHERE record_id = ?
	ORDER BY seq ASC`, id.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query orders of record %s: %w: %w", id, ports.ErrQueryFailed, err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var (
			o             domain.Order
			orderType     string
			price, amount string
		)
		if err := rows.Scan(&o.Index, &orderType, &price, &amount); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w: %w", ports.ErrQueryFailed, err)
		}
		o.Type = domain.OrderType(orderType)
		if o.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("stored order price %q: %w", price, err)
		}
		if o.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("stored order amount %q: %w", amount, err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order rows: %w: %w", ports.ErrQueryFailed, err)
	}
	return domain.RestoreTradingRecord(id, domain.OrderType(startingType), orders...)
}
