package indicators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptoTA/internal/ports"
)

func TestATR_Value(t *testing.T) {
	series := seriesOf(t,
		bar{0, 10, 13, 8},
		bar{0, 8, 11, 6},
		bar{0, 6, 9, 4},
		bar{0, 11, 15, 9},
		bar{0, 13, 15, 9},
	)
	atr, err := NewATR(series, ATRConfig{IndicatorConfig{Period: 3}})
	require.NoError(t, err)

	trueRanges := []string{"5", "5", "5", "9", "6"}
	for i, want := range trueRanges {
		got, err := atr.TrueRange(i)
		require.NoError(t, err)
		assertDecimal(t, want, got)
	}

	expected := []string{"5", "5", "5", "6.333333", "6.222222"}
	for i := len(expected) - 1; i >= 0; i-- {
		got, err := atr.Value(i)
		require.NoError(t, err)
		assertClose(t, expected[i], got, 6)
	}
}

func TestATR_Config(t *testing.T) {
	_, err := NewATR(closeSeries(t, 1), ATRConfig{IndicatorConfig{Period: 0}})
	assert.ErrorIs(t, err, ports.ErrConfigurationError)

	_, err = NewATR(nil, ATRConfig{IndicatorConfig{Period: 14}})
	assert.ErrorIs(t, err, ports.ErrConfigurationError)
}
