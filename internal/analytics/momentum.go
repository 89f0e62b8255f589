// Package analytics provides the stateless numerical functions that
// turn raw quote and history data into derived fields. Every function
// is pure and reports ok=false instead of failing when the inputs are
// too thin to support the calculation.
package analytics

// Momentum horizons in trading observations.
const (
	HorizonWeek  = 5
	HorizonMonth = 21
	HorizonYear  = 252
)

// Momentum returns the percentage change between the most recent close
// and the close horizon observations back. A week is five trading
// observations, a month roughly twenty-one, a year roughly 252.
// Requires at least horizon+1 closes.
func Momentum(closes []float64, horizon int) (float64, bool) {
	if horizon <= 0 || len(closes) < horizon+1 {
		return 0, false
	}

	last := closes[len(closes)-1]
	base := closes[len(closes)-1-horizon]
	if base == 0 {
		return 0, false
	}

	return (last - base) / base * 100, true
}
