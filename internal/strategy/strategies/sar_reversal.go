package strategies

import (
	"context"
	"fmt"

	"cryptoTA/internal/domain"
	"cryptoTA/internal/ports"
	"cryptoTA/internal/strategy/indicators"
)

// SARReversal enters when the close crosses above the Parabolic SAR and exits
// when it crosses back below.
type SARReversal struct {
	*BaseStrategy
	close *indicators.PriceIndicator
	sar   *indicators.ParabolicSAR
}

// NewSARReversal creates the strategy over series.
func NewSARReversal(series *domain.TimeSeries, config indicators.ParabolicSARConfig, logger ports.Logger) (*SARReversal, error) {
	sar, err := indicators.NewParabolicSAR(series, config)
	if err != nil {
		return nil, fmt.Errorf("creating SAR reversal strategy: %w", err)
	}
	return &SARReversal{
		BaseStrategy: NewBaseStrategy(series, logger),
		close:        indicators.ClosePrice(series),
		sar:          sar,
	}, nil
}

// SARReversalFactory returns a Factory building SARReversal strategies with config.
func SARReversalFactory(config indicators.ParabolicSARConfig, logger ports.Logger) Factory {
	return func(series *domain.TimeSeries) (Strategy, error) {
		return NewSARReversal(series, config, logger)
	}
}

func (s *SARReversal) Name() string {
	return "SARReversal/" + s.sar.Name()
}

// Unstable covers the two seed ticks of the SAR.
func (s *SARReversal) Unstable() int {
	return 2
}

// SAR exposes the underlying indicator, e.g. for reporting.
func (s *SARReversal) SAR() *indicators.ParabolicSAR {
	return s.sar
}

func (s *SARReversal) ShouldEnter(index int, record *domain.TradingRecord) (bool, error) {
	if index < s.Unstable() {
		return false, nil
	}
	ok, err := crossedOver(s.close.Value, s.sar.Value, index)
	if err != nil {
		return false, err
	}
	if ok {
		s.logger.Debug(context.Background(), "Close crossed above SAR", map[string]interface{}{
			"series": s.series.Name(),
			"index":  index,
		})
	}
	return ok, nil
}

func (s *SARReversal) ShouldExit(index int, record *domain.TradingRecord) (bool, error) {
	if index < s.Unstable() {
		return false, nil
	}
	ok, err := crossedUnder(s.close.Value, s.sar.Value, index)
	if err != nil {
		return false, err
	}
	if ok {
		s.logger.Debug(context.Background(), "Close crossed below SAR", map[string]interface{}{
			"series": s.series.Name(),
			"index":  index,
		})
	}
	return ok, nil
}
