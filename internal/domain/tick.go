package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Tick represents one OHLCV observation ending at EndTime.
// OHLC consistency (high >= open/close >= low) is the loader's responsibility
// and is not checked here.
type Tick struct {
	EndTime time.Time       // End of the observation period
	Period  time.Duration   // Length of the period (zero when unknown)
	Open    decimal.Decimal // Opening price
	High    decimal.Decimal // Highest price
	Low     decimal.Decimal // Lowest price
	Close   decimal.Decimal // Closing price
	Volume  decimal.Decimal // Traded volume
}

// NewTick builds a tick with an unknown period.
func NewTick(endTime time.Time, open, high, low, close, volume decimal.Decimal) Tick {
	return Tick{
		EndTime: endTime,
		Open:    open,
		High:    high,
		Low:     low,
		Close:   close,
		Volume:  volume,
	}
}

// BeginTime is EndTime minus Period.
func (t Tick) BeginTime() time.Time {
	return t.EndTime.Add(-t.Period)
}

func (t Tick) String() string {
	return fmt.Sprintf("{end: %s, o: %s, h: %s, l: %s, c: %s, v: %s}",
		t.EndTime.Format(time.RFC3339), t.Open, t.High, t.Low, t.Close, t.Volume)
}
