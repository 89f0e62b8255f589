package analytics

import "math"

// TradingDaysPerYear annualizes daily return statistics.
const TradingDaysPerYear = 252

// minVolObs is the minimum overlapping return count for a vol
// decomposition worth reporting.
const minVolObs = 20

// VolResult is the volatility decomposition for a symbol, both values
// annualized percentages.
type VolResult struct {
	IdioVol  float64 `json:"idio_vol"`
	TotalVol float64 `json:"total_vol"`
}

// Returns converts a close series into simple day-over-day returns.
// Zero closes terminate the series early rather than dividing by zero.
func Returns(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}

	returns := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] == 0 {
			break
		}
		returns = append(returns, (closes[i]-closes[i-1])/closes[i-1])
	}
	return returns
}

// IdioVol decomposes a symbol's return volatility against a benchmark.
// Total vol is the annualized standard deviation of the symbol's
// returns; the systematic share is beta times the benchmark's vol,
// from a linear regression of symbol returns on benchmark returns over
// the overlapping tail; what remains is idiosyncratic. Both outputs
// are non-negative percentages. Requires at least 20 overlapping
// observations.
func IdioVol(returns, benchmark []float64) (VolResult, bool) {
	n := len(returns)
	if len(benchmark) < n {
		n = len(benchmark)
	}
	if n < minVolObs {
		return VolResult{}, false
	}

	// Align on the most recent n observations.
	y := returns[len(returns)-n:]
	x := benchmark[len(benchmark)-n:]

	meanX, meanY := mean(x), mean(y)

	var sxx, syy, sxy float64
	for i := 0; i < n; i++ {
		dx := x[i] - meanX
		dy := y[i] - meanY
		sxx += dx * dx
		syy += dy * dy
		sxy += dx * dy
	}

	denom := float64(n - 1)
	totalVar := syy / denom

	// A flat benchmark leaves no systematic component to strip out.
	residVar := totalVar
	if sxx > 0 {
		beta := sxy / sxx
		residVar = (syy - beta*sxy) / denom
		if residVar < 0 {
			residVar = 0
		}
	}

	return VolResult{
		IdioVol:  math.Sqrt(residVar*TradingDaysPerYear) * 100,
		TotalVol: math.Sqrt(totalVar*TradingDaysPerYear) * 100,
	}, true
}

func mean(xs []float64) float64 {
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
