package financial

import (
	"math"

	"github.com/markcheno/go-talib"
	"gonum.org/v1/gonum/stat"
)

const tradingDaysPerYear = 252

// SMA returns the simple moving average over the last N closes,
// or nil if there is insufficient data.
func SMA(closes []float64, length int) *float64 {
	if length <= 0 || len(closes) < length {
		return nil
	}

	sma := talib.Sma(closes, length)
	if len(sma) > 0 && !math.IsNaN(sma[len(sma)-1]) {
		result := sma[len(sma)-1]
		return &result
	}
	return nil
}

// RSI returns the Relative Strength Index over the last N closes,
// or nil if there is insufficient data.
func RSI(closes []float64, length int) *float64 {
	if length <= 0 || len(closes) < length+1 {
		return nil
	}

	rsi := talib.Rsi(closes, length)
	if len(rsi) > 0 && !math.IsNaN(rsi[len(rsi)-1]) {
		result := rsi[len(rsi)-1]
		return &result
	}
	return nil
}

// AnnualizedVolatility computes the annualized standard deviation of daily
// log returns, in percent. Returns nil with fewer than two closes.
func AnnualizedVolatility(closes []float64) *float64 {
	if len(closes) < 2 {
		return nil
	}

	returns := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] <= 0 || closes[i] <= 0 {
			continue
		}
		returns = append(returns, math.Log(closes[i]/closes[i-1]))
	}
	if len(returns) < 2 {
		return nil
	}

	sd := stat.StdDev(returns, nil)
	vol := sd * math.Sqrt(tradingDaysPerYear) * 100
	return &vol
}
