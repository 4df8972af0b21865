// Package csvfile reads and writes tick series as CSV.
//
// Rows hold, in order: end time, open, high, low, close, volume and,
// optionally, the tick period as a Go duration ("1m0s").
package csvfile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"cryptoTA/internal/domain"
	"cryptoTA/internal/ports"
)

var header = []string{"end_time", "open", "high", "low", "close", "volume", "period"}

// Format describes a CSV layout. The zero value is not usable; start from
// DefaultFormat.
type Format struct {
	Name       string // Series name given to loaded series
	TimeLayout string // time.Parse layout of the first column
	Location   *time.Location
	Comma      rune
	HasHeader  bool
}

// DefaultFormat is RFC3339 times, comma separated, with a header row.
func DefaultFormat(name string) Format {
	return Format{
		Name:       name,
		TimeLayout: time.RFC3339,
		Location:   time.UTC,
		Comma:      ',',
		HasHeader:  true,
	}
}

// ReadSeries parses r into a series. End times must be strictly increasing.
func ReadSeries(r io.Reader, format Format) (*domain.TimeSeries, error) {
	if format.TimeLayout == "" || format.Comma == 0 {
		return nil, fmt.Errorf("csv format needs a time layout and a separator: %w", ports.ErrConfigurationError)
	}
	loc := format.Location
	if loc == nil {
		loc = time.UTC
	}

	reader := csv.NewReader(r)
	reader.Comma = format.Comma
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var ticks []domain.Tick
	for line := 1; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w: %w", format.Name, ports.ErrMalformedSeries, err)
		}
		if line == 1 && format.HasHeader {
			continue
		}
		tick, err := parseRow(record, format.TimeLayout, loc)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w: %w", format.Name, line, ports.ErrMalformedSeries, err)
		}
		ticks = append(ticks, tick)
	}
	return domain.NewTimeSeries(format.Name, ticks)
}

func parseRow(record []string, layout string, loc *time.Location) (domain.Tick, error) {
	if len(record) < 6 {
		return domain.Tick{}, fmt.Errorf("expected at least 6 columns, got %d", len(record))
	}
	end, err := time.ParseInLocation(layout, strings.TrimSpace(record[0]), loc)
	if err != nil {
		return domain.Tick{}, err
	}
	values := make([]decimal.Decimal, 5)
	for i := range values {
		v, err := decimal.NewFromString(strings.TrimSpace(record[i+1]))
		if err != nil {
			return domain.Tick{}, fmt.Errorf("column %s: %w", header[i+1], err)
		}
		values[i] = v
	}
	tick := domain.NewTick(end, values[0], values[1], values[2], values[3], values[4])
	if len(record) > 6 && strings.TrimSpace(record[6]) != "" {
		period, err := time.ParseDuration(strings.TrimSpace(record[6]))
		if err != nil {
			return domain.Tick{}, fmt.Errorf("column period: %w", err)
		}
		tick.Period = period
	}
	return tick, nil
}

// WriteSeries writes every tick of series to w.
func WriteSeries(w io.Writer, series *domain.TimeSeries, format Format) error {
	writer := csv.NewWriter(w)
	if format.Comma != 0 {
		writer.Comma = format.Comma
	}
	layout := format.TimeLayout
	if layout == "" {
		layout = time.RFC3339
	}

	if format.HasHeader {
		if err := writer.Write(header); err != nil {
			return err
		}
	}
	for i := 0; i < series.TickCount(); i++ {
		t, err := series.Tick(i)
		if err != nil {
			return err
		}
		period := ""
		if t.Period > 0 {
			period = t.Period.String()
		}
		if err := writer.Write([]string{
			t.EndTime.Format(layout),
			t.Open.String(),
			t.High.String(),
			t.Low.String(),
			t.Close.String(),
			t.Volume.String(),
			period,
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// ReadFile opens path and reads it with format.
func ReadFile(path string, format Format) (*domain.TimeSeries, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadSeries(f, format)
}

// WriteFile creates path and writes series to it.
func WriteFile(path string, series *domain.TimeSeries, format Format) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteSeries(f, series, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
