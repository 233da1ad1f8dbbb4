package formulas

import (
	"math"

	"github.com/markcheno/go-talib"
)

// SMA returns the simple moving average of the last `period` values.
// Falls back to the plain mean when there are fewer values than the period.
// Returns nil for empty input.
func SMA(values []float64, period int) *float64 {
	if len(values) == 0 || period <= 0 {
		return nil
	}
	if len(values) < period || period < 2 {
		mean := Mean(values[max(0, len(values)-max(period, 1)):])
		return &mean
	}

	sma := talib.Sma(values, period)
	if len(sma) > 0 && !math.IsNaN(sma[len(sma)-1]) {
		result := sma[len(sma)-1]
		return &result
	}

	mean := Mean(values[len(values)-period:])
	return &mean
}

// EMA returns the exponential moving average of the series.
// Falls back to SMA when there is not enough data.
func EMA(values []float64, period int) *float64 {
	if len(values) == 0 || period <= 0 {
		return nil
	}
	if len(values) < period || period < 2 {
		return SMA(values, period)
	}

	ema := talib.Ema(values, period)
	if len(ema) > 0 && !math.IsNaN(ema[len(ema)-1]) {
		result := ema[len(ema)-1]
		return &result
	}

	return SMA(values, period)
}
